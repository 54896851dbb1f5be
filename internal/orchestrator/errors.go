package orchestrator

import "fmt"

// ServiceErrorReason classifies why a service took its run down.
type ServiceErrorReason string

const (
	// ReasonStartFailed means the service process could not be launched.
	ReasonStartFailed ServiceErrorReason = "start_failed"
	// ReasonReadyTimeout means the service started but its readiness check
	// never passed within the health gate's attempt budget.
	ReasonReadyTimeout ServiceErrorReason = "ready_timeout"
	// ReasonOneShotNonZeroExit means a one-shot task exited with a non-zero
	// code after exhausting its retry budget.
	ReasonOneShotNonZeroExit ServiceErrorReason = "one_shot_non_zero_exit"
)

// ServiceError describes a service failure that aborted a run.
type ServiceError struct {
	Service string
	Reason  ServiceErrorReason
	Err     error
}

func (e *ServiceError) Error() string {
	switch e.Reason {
	case ReasonStartFailed:
		return fmt.Sprintf("service %s failed to start: %v", e.Service, e.Err)
	case ReasonReadyTimeout:
		return fmt.Sprintf("service %s did not become ready: %v", e.Service, e.Err)
	case ReasonOneShotNonZeroExit:
		return fmt.Sprintf("one-shot service %s failed: %v", e.Service, e.Err)
	default:
		return fmt.Sprintf("service %s failed: %v", e.Service, e.Err)
	}
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}
