package orchestrator

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"stackup/internal/dependency"
	"stackup/internal/descriptor"
	"stackup/internal/services"
	"stackup/pkg/logging"
)

// Member binds a descriptor to its runtime service and readiness probe.
type Member struct {
	Descriptor descriptor.ServiceDescriptor
	Service    services.Service
	Check      CheckFunc
}

// NewMember builds a member with the readiness probe derived from the
// descriptor's effective ready check.
func NewMember(desc descriptor.ServiceDescriptor, svc services.Service) Member {
	return Member{
		Descriptor: desc,
		Service:    svc,
		Check:      CheckFor(desc),
	}
}

// Outcome is the overall verdict of a run.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomeCancelled Outcome = "cancelled"
)

// ServiceStatus is the final view of one service after a run.
type ServiceStatus struct {
	Name  string
	Kind  descriptor.ServiceKind
	State services.ServiceState
	PID   int
	Err   error
}

// TierStatus groups the final service statuses of one execution tier.
type TierStatus struct {
	Services []ServiceStatus
}

// RunResult is the full report of a run attempt.
type RunResult struct {
	RunID         string
	Outcome       Outcome
	FailedService string
	Cause         error
	// ReadyOrder lists long-running services in the order they became ready.
	// Teardown walks it in reverse.
	ReadyOrder []string
	Tiers      []TierStatus
}

// Err returns the failure cause for non-successful outcomes, nil otherwise.
func (r *RunResult) Err() error {
	if r.Outcome == OutcomeSucceeded {
		return nil
	}
	return r.Cause
}

// stateUpdater is satisfied by services embedding BaseService; the controller
// uses it to promote a long-running service to ready once its check passes.
type stateUpdater interface {
	UpdateState(state services.ServiceState, health services.HealthStatus, err error)
}

// Orchestrator drives an execution plan: tiers strictly in sequence, members
// of a tier concurrently. It is the single writer of the run's ready order.
type Orchestrator struct {
	plan     dependency.ExecutionPlan
	members  map[string]Member
	registry services.ServiceRegistry
	gate     HealthGate

	readyOrder []string
}

// New creates an orchestrator for a plan. Every service named by the plan
// must have a member; member services are registered so duplicates are
// rejected up front.
func New(plan dependency.ExecutionPlan, members []Member, gate HealthGate) (*Orchestrator, error) {
	registry := services.NewRegistry()
	byName := make(map[string]Member, len(members))
	for _, m := range members {
		if err := registry.Register(m.Service); err != nil {
			return nil, err
		}
		byName[m.Descriptor.Name] = m
	}
	for _, name := range plan.StartOrder() {
		if _, ok := byName[name]; !ok {
			return nil, fmt.Errorf("plan names service %s but no member was provided", name)
		}
	}
	return &Orchestrator{
		plan:     plan,
		members:  byName,
		registry: registry,
		gate:     gate,
	}, nil
}

// Registry exposes the run's services for status inspection.
func (o *Orchestrator) Registry() services.ServiceRegistry {
	return o.registry
}

// Run executes the plan. Any member failure aborts the run and tears down
// everything already ready, in reverse ready order. Cancellation through ctx
// stops new work, tears down, and yields a cancelled outcome.
func (o *Orchestrator) Run(ctx context.Context) *RunResult {
	result := &RunResult{
		RunID:   uuid.NewString(),
		Outcome: OutcomeSucceeded,
	}
	logging.Info("Orchestrator", "Starting run %s: %d tier(s), %d service(s)",
		result.RunID, len(o.plan.Tiers), len(o.members))

	for i, tier := range o.plan.Tiers {
		if err := ctx.Err(); err != nil {
			result.Outcome = OutcomeCancelled
			result.Cause = err
			break
		}

		logging.Info("Orchestrator", "Starting tier %d/%d: %v", i+1, len(o.plan.Tiers), []string(tier))
		if err := o.runTier(ctx, tier); err != nil {
			if ctx.Err() != nil {
				result.Outcome = OutcomeCancelled
				result.Cause = ctx.Err()
			} else {
				result.Outcome = OutcomeFailed
				result.Cause = err
				if svcErr, ok := err.(*ServiceError); ok {
					result.FailedService = svcErr.Service
				}
			}
			break
		}
	}

	if result.Outcome != OutcomeSucceeded {
		logging.Warn("Orchestrator", "Run %s aborted (%s), tearing down", result.RunID, result.Outcome)
		// Teardown must proceed even when the run context is cancelled.
		o.Teardown(context.WithoutCancel(ctx))
	}

	result.ReadyOrder = append([]string(nil), o.readyOrder...)
	result.Tiers = o.snapshotTiers()
	return result
}

// report is how tier member goroutines feed the controller. The controller
// loop is the only writer of readyOrder.
type report struct {
	name  string
	ready bool
	err   error
}

func (o *Orchestrator) runTier(ctx context.Context, tier dependency.Tier) error {
	reports := make(chan report, len(tier))

	g, gctx := errgroup.WithContext(ctx)
	for _, name := range tier {
		m := o.members[name]
		g.Go(func() error {
			err := o.startMember(gctx, m)
			reports <- report{
				name:  m.Descriptor.Name,
				ready: err == nil && !m.Descriptor.IsOneShot(),
				err:   err,
			}
			return err
		})
	}

	go func() {
		_ = g.Wait()
		close(reports)
	}()

	for r := range reports {
		if r.err != nil {
			continue
		}
		if r.ready {
			o.readyOrder = append(o.readyOrder, r.name)
			logging.Info("Orchestrator", "Service %s is ready", r.name)
		} else {
			logging.Info("Orchestrator", "Service %s completed", r.name)
		}
	}

	return g.Wait()
}

// startMember brings one service up: one-shot members run to completion
// inside their retry window, long-running members start and then hold at the
// health gate until their readiness check passes.
func (o *Orchestrator) startMember(ctx context.Context, m Member) error {
	if m.Descriptor.IsOneShot() {
		return o.runOneShot(ctx, m)
	}

	name := m.Descriptor.Name
	if err := m.Service.Start(ctx); err != nil {
		return &ServiceError{Service: name, Reason: ReasonStartFailed, Err: err}
	}

	if err := o.gate.AwaitReady(ctx, name, m.Check); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &ServiceError{Service: name, Reason: ReasonReadyTimeout, Err: err}
	}

	if updater, ok := m.Service.(stateUpdater); ok {
		updater.UpdateState(services.StateReady, services.HealthHealthy, nil)
	}
	return nil
}

func (o *Orchestrator) runOneShot(ctx context.Context, m Member) error {
	name := m.Descriptor.Name
	runner, ok := m.Service.(services.OneShotRunner)
	if !ok {
		return &ServiceError{
			Service: name,
			Reason:  ReasonStartFailed,
			Err:     fmt.Errorf("service %s is declared one-shot but cannot run to completion", name),
		}
	}

	attempts := m.Descriptor.Retry.Attempts
	var err error
	for try := 0; try <= attempts; try++ {
		if try > 0 {
			logging.Warn("Orchestrator", "Retrying one-shot %s (attempt %d/%d): %v", name, try+1, attempts+1, err)
			if m.Descriptor.Retry.Backoff > 0 {
				select {
				case <-time.After(m.Descriptor.Retry.Backoff):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}

		err = runner.Run(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	return &ServiceError{Service: name, Reason: ReasonOneShotNonZeroExit, Err: err}
}

// Teardown stops services from the failed run: members still mid-start first,
// then everything ready in reverse ready order.
func (o *Orchestrator) Teardown(ctx context.Context) {
	started := make(map[string]bool, len(o.readyOrder))
	for _, name := range o.readyOrder {
		started[name] = true
	}

	order := o.plan.StartOrder()
	for i := len(order) - 1; i >= 0; i-- {
		name := order[i]
		if started[name] {
			continue
		}
		m := o.members[name]
		if m.Service.GetState() == services.StateStarting {
			o.stopService(ctx, name)
		}
	}

	for i := len(o.readyOrder) - 1; i >= 0; i-- {
		o.stopService(ctx, o.readyOrder[i])
	}
}

func (o *Orchestrator) stopService(ctx context.Context, name string) {
	svc, ok := o.registry.Get(name)
	if !ok {
		return
	}
	logging.Info("Orchestrator", "Stopping service %s", name)
	if err := svc.Stop(ctx); err != nil {
		logging.Error("Orchestrator", err, "Failed to stop service %s", name)
	}
}

// snapshotTiers captures the final state of every planned service.
func (o *Orchestrator) snapshotTiers() []TierStatus {
	tiers := make([]TierStatus, 0, len(o.plan.Tiers))
	for _, tier := range o.plan.Tiers {
		status := TierStatus{Services: make([]ServiceStatus, 0, len(tier))}
		names := append([]string(nil), tier...)
		sort.Strings(names)
		for _, name := range names {
			m := o.members[name]
			s := ServiceStatus{
				Name:  name,
				Kind:  m.Descriptor.Kind,
				State: m.Service.GetState(),
				Err:   m.Service.GetLastError(),
			}
			if p, ok := m.Service.(services.PIDProvider); ok {
				s.PID = p.PID()
			}
			status.Services = append(status.Services, s)
		}
		tiers = append(tiers, status)
	}
	return tiers
}
