package descriptor

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// ServiceKind distinguishes services that run indefinitely from tasks that
// run to completion and exit.
type ServiceKind string

const (
	// KindLongRunning is a service that stays up and must pass a readiness
	// check before dependents may start.
	KindLongRunning ServiceKind = "long-running"
	// KindOneShot is a task that runs to completion; exit code 0 means done.
	KindOneShot ServiceKind = "one-shot"
)

// ReadyCheckType identifies the readiness predicate for a service.
type ReadyCheckType string

const (
	// ReadyCheckTCP succeeds when a TCP connect to the declared port succeeds.
	ReadyCheckTCP ReadyCheckType = "tcp"
	// ReadyCheckHTTP succeeds when a GET to the declared URL returns 2xx.
	ReadyCheckHTTP ReadyCheckType = "http"
	// ReadyCheckExit succeeds when the process exits with code 0. This is the
	// implicit check for one-shot services.
	ReadyCheckExit ReadyCheckType = "exit"
	// ReadyCheckNone marks a service ready as soon as its process is up.
	ReadyCheckNone ReadyCheckType = "none"
)

// ReadyCheck describes how to decide that a service is safe to depend on.
type ReadyCheck struct {
	Type ReadyCheckType `yaml:"type" validate:"required,oneof=tcp http exit none"`
	Port int            `yaml:"port,omitempty" validate:"omitempty,min=1,max=65535"`
	URL  string         `yaml:"url,omitempty" validate:"omitempty,url"`
}

// RetryPolicy bounds the retry window a one-shot task owns before its failure
// is reported upward. Attempts is the number of additional runs after the
// first failure; zero means fail fast.
type RetryPolicy struct {
	Attempts int           `yaml:"attempts,omitempty" validate:"min=0,max=10"`
	Backoff  time.Duration `yaml:"backoff,omitempty"`
}

// UnmarshalYAML accepts the backoff as a duration string ("2s", "500ms").
func (r *RetryPolicy) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Attempts int    `yaml:"attempts"`
		Backoff  string `yaml:"backoff"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}

	r.Attempts = raw.Attempts
	if raw.Backoff != "" {
		d, err := time.ParseDuration(raw.Backoff)
		if err != nil {
			return fmt.Errorf("invalid retry backoff %q: %w", raw.Backoff, err)
		}
		r.Backoff = d
	}
	return nil
}

// ServiceDescriptor is the static declaration of a single service.
type ServiceDescriptor struct {
	Name      string            `yaml:"name" validate:"required"`
	Kind      ServiceKind       `yaml:"kind" validate:"required,oneof=long-running one-shot"`
	Command   string            `yaml:"command" validate:"required"`
	Args      []string          `yaml:"args,omitempty"`
	Ports     []int             `yaml:"ports,omitempty" validate:"dive,min=1,max=65535"`
	DependsOn []string          `yaml:"dependsOn,omitempty"`
	Env       map[string]string `yaml:"env,omitempty"`

	// ReadyCheck may be omitted: long-running services default to a TCP check
	// on their first declared port, one-shot services always use exit code 0.
	ReadyCheck *ReadyCheck `yaml:"readyCheck,omitempty"`

	// Retry applies to one-shot services only.
	Retry RetryPolicy `yaml:"retry,omitempty"`
}

// IsOneShot reports whether the service runs to completion.
func (d ServiceDescriptor) IsOneShot() bool {
	return d.Kind == KindOneShot
}

// EffectiveReadyCheck returns the readiness check for the service, applying
// the defaulting rules when none is declared.
func (d ServiceDescriptor) EffectiveReadyCheck() ReadyCheck {
	if d.IsOneShot() {
		return ReadyCheck{Type: ReadyCheckExit}
	}
	if d.ReadyCheck != nil {
		return *d.ReadyCheck
	}
	if len(d.Ports) > 0 {
		return ReadyCheck{Type: ReadyCheckTCP, Port: d.Ports[0]}
	}
	// No ports and no declared check: the service is considered ready as soon
	// as its process is up.
	return ReadyCheck{Type: ReadyCheckNone}
}

// StackFile is the top-level structure of a stack declaration file.
type StackFile struct {
	// RequiredEnv lists configuration keys that must be present in the
	// resolved configuration before any service starts.
	RequiredEnv []string `yaml:"requiredEnv,omitempty"`

	Services []ServiceDescriptor `yaml:"services" validate:"required,min=1,dive"`
}
