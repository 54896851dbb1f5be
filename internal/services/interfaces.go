package services

import (
	"context"

	"stackup/internal/descriptor"
)

// ServiceState represents the lifecycle state of a service within a run.
type ServiceState string

const (
	StatePending  ServiceState = "pending"
	StateStarting ServiceState = "starting"
	StateReady    ServiceState = "ready"
	StateStopping ServiceState = "stopping"
	// StateStopped means "torn down" for long-running services and
	// "completed" for one-shot services.
	StateStopped ServiceState = "stopped"
	StateFailed  ServiceState = "failed"
)

// HealthStatus represents the readiness assessment of a service.
type HealthStatus string

const (
	HealthUnknown   HealthStatus = "unknown"
	HealthChecking  HealthStatus = "checking"
	HealthHealthy   HealthStatus = "healthy"
	HealthDegraded  HealthStatus = "degraded"
	HealthUnhealthy HealthStatus = "unhealthy"
)

// Service is the core interface that all services must implement
type Service interface {
	// Lifecycle management
	Start(ctx context.Context) error
	Stop(ctx context.Context) error

	// State management
	GetState() ServiceState
	GetHealth() HealthStatus
	GetLastError() error

	// Service metadata
	GetName() string
	GetKind() descriptor.ServiceKind
	GetDependencies() []string

	// State change notifications
	// The service should call this callback when its state changes
	SetStateChangeCallback(callback StateChangeCallback)
}

// StateChangeCallback is called when a service's state changes
type StateChangeCallback func(name string, oldState, newState ServiceState, health HealthStatus, err error)

// OneShotRunner is implemented by services that run to completion. Run starts
// the task and blocks until it exits; a nil return means exit code 0.
type OneShotRunner interface {
	Run(ctx context.Context) error
}

// PIDProvider is an optional interface for services backed by an OS process.
// The orchestrator records PIDs in the run state file so a later teardown can
// find the processes again.
type PIDProvider interface {
	PID() int
}

// ServiceRegistry manages all registered services
type ServiceRegistry interface {
	// Register adds a service to the registry
	Register(service Service) error

	// Unregister removes a service from the registry
	Unregister(name string) error

	// Get returns a service by name
	Get(name string) (Service, bool)

	// GetAll returns all registered services
	GetAll() []Service

	// GetByKind returns all services of a specific kind
	GetByKind(kind descriptor.ServiceKind) []Service
}
