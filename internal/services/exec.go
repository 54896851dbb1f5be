package services

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"sync"
	"syscall"
	"time"

	"stackup/internal/descriptor"
	"stackup/pkg/logging"
)

// StopGracePeriod is how long Stop waits after SIGTERM before escalating to
// SIGKILL.
const StopGracePeriod = 5 * time.Second

// ExecService runs a descriptor's command as an OS process. It backs both
// service kinds: long-running services are started with Start and terminated
// with Stop; one-shot services are driven to completion with Run.
//
// The process is placed in its own process group so that Stop can signal the
// whole tree, including children the command may have spawned.
type ExecService struct {
	*BaseService

	command string
	args    []string
	env     map[string]string

	mu      sync.Mutex
	cmd     *exec.Cmd
	pid     int
	done    chan struct{}
	exitErr error
}

// NewExecService creates a process-backed service from a descriptor and its
// rendered environment entries. env values must already be expanded; the
// entries are appended over the inherited process environment.
func NewExecService(desc descriptor.ServiceDescriptor, env map[string]string) *ExecService {
	return &ExecService{
		BaseService: NewBaseService(desc.Name, desc.Kind, desc.DependsOn),
		command:     desc.Command,
		args:        desc.Args,
		env:         env,
	}
}

// Start launches the process. The context bounds the launch itself; process
// lifetime is controlled through Stop, not through ctx, so that a tier-scoped
// context can be cancelled without killing services that already came up.
func (s *ExecService) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done != nil {
		select {
		case <-s.done:
			// Previous run finished; allow a fresh start (one-shot retries).
		default:
			return fmt.Errorf("service %s already started", s.GetName())
		}
	}

	cmd := exec.Command(s.command, s.args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Env = append(os.Environ(), s.envEntries()...)

	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe for %s: %w", s.GetName(), err)
	}
	stderrPipe, err := cmd.StderrPipe()
	if err != nil {
		stdoutPipe.Close()
		return fmt.Errorf("stderr pipe for %s: %w", s.GetName(), err)
	}

	s.UpdateState(StateStarting, HealthChecking, nil)

	if err := cmd.Start(); err != nil {
		stdoutPipe.Close()
		stderrPipe.Close()
		startErr := fmt.Errorf("failed to start %s (%s): %w", s.GetName(), s.command, err)
		s.UpdateState(StateFailed, HealthUnhealthy, startErr)
		return startErr
	}

	s.cmd = cmd
	s.pid = cmd.Process.Pid
	s.done = make(chan struct{})
	s.exitErr = nil
	done := s.done

	logging.Debug("Service", "Started %s (PID %d): %s %v", s.GetName(), s.pid, s.command, s.args)

	go s.scanOutput("stdout", stdoutPipe)
	go s.scanOutput("stderr", stderrPipe)

	go func() {
		err := cmd.Wait()
		s.mu.Lock()
		s.exitErr = err
		s.mu.Unlock()
		close(done)
		s.handleExit(err)
	}()

	return nil
}

// scanOutput streams one process pipe into the logger line by line.
func (s *ExecService) scanOutput(stream string, pipe io.Reader) {
	scanner := bufio.NewScanner(pipe)
	for scanner.Scan() {
		logging.Debug("Service", "[%s %s] %s", s.GetName(), stream, scanner.Text())
	}
}

// handleExit reacts to unexpected process exit. One-shot completion is
// handled by Run; a long-running service that exits while starting or ready
// has failed.
func (s *ExecService) handleExit(exitErr error) {
	if s.GetKind() != descriptor.KindLongRunning {
		return
	}
	state := s.GetState()
	if state != StateStarting && state != StateReady {
		return
	}
	if exitErr == nil {
		exitErr = fmt.Errorf("process for %s exited unexpectedly", s.GetName())
	}
	s.UpdateState(StateFailed, HealthUnhealthy, exitErr)
}

// Wait blocks until the process exits or ctx is done. It returns the process
// exit error (nil for exit code 0).
func (s *ExecService) Wait(ctx context.Context) error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	if done == nil {
		return fmt.Errorf("service %s was never started", s.GetName())
	}

	select {
	case <-done:
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.exitErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run implements OneShotRunner: it starts the process and blocks until
// completion. A nil return means the task exited with code 0 and the service
// is in the stopped (completed) state.
func (s *ExecService) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}

	err := s.Wait(ctx)
	if ctx.Err() != nil {
		// Interrupted: make sure the process does not outlive the run.
		s.signalGroup(syscall.SIGKILL)
		s.UpdateState(StateFailed, HealthUnknown, ctx.Err())
		return ctx.Err()
	}
	if err != nil {
		s.UpdateState(StateFailed, HealthUnhealthy, err)
		return err
	}

	s.UpdateState(StateStopped, HealthUnknown, nil)
	return nil
}

// Stop terminates the process: SIGTERM to the process group, a grace period,
// then SIGKILL. Stopping a service that never started or already exited is a
// no-op that still settles the state to stopped.
func (s *ExecService) Stop(ctx context.Context) error {
	s.mu.Lock()
	done := s.done
	pid := s.pid
	s.mu.Unlock()

	if done == nil {
		s.UpdateState(StateStopped, HealthUnknown, nil)
		return nil
	}

	select {
	case <-done:
		s.UpdateState(StateStopped, HealthUnknown, nil)
		return nil
	default:
	}

	s.UpdateState(StateStopping, HealthUnknown, nil)
	logging.Debug("Service", "Stopping %s (PID %d)", s.GetName(), pid)

	if err := syscall.Kill(-pid, syscall.SIGTERM); err != nil {
		logging.Warn("Service", "SIGTERM for %s (PID %d) failed: %v", s.GetName(), pid, err)
	}

	select {
	case <-done:
	case <-time.After(StopGracePeriod):
		logging.Warn("Service", "%s did not exit within %s, sending SIGKILL", s.GetName(), StopGracePeriod)
		s.signalGroup(syscall.SIGKILL)
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	case <-ctx.Done():
		s.signalGroup(syscall.SIGKILL)
		return ctx.Err()
	}

	s.UpdateState(StateStopped, HealthUnknown, nil)
	return nil
}

// PID returns the OS process ID, or 0 if the service never started.
func (s *ExecService) PID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pid
}

func (s *ExecService) signalGroup(sig syscall.Signal) {
	s.mu.Lock()
	pid := s.pid
	s.mu.Unlock()
	if pid > 0 {
		_ = syscall.Kill(-pid, sig)
	}
}

// envEntries renders the env map as KEY=VALUE entries in ascending key order
// so the composed environment is deterministic.
func (s *ExecService) envEntries() []string {
	keys := make([]string, 0, len(s.env))
	for k := range s.env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]string, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, fmt.Sprintf("%s=%s", k, s.env[k]))
	}
	return entries
}
