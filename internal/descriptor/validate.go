package descriptor

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks a stack file structurally (via validator tags) and
// semantically. Semantic rules:
//
//   - service names are unique
//   - a service never depends on itself
//   - readiness check fields match the declared type
//   - retry policies appear on one-shot services only
//
// Dependency existence and acyclicity are the dependency package's concern,
// not checked here.
func Validate(stack StackFile) error {
	if err := validate.Struct(stack); err != nil {
		return err
	}

	seen := make(map[string]bool, len(stack.Services))
	for _, svc := range stack.Services {
		if seen[svc.Name] {
			return fmt.Errorf("duplicate service name %q", svc.Name)
		}
		seen[svc.Name] = true

		for _, dep := range svc.DependsOn {
			if dep == svc.Name {
				return fmt.Errorf("service %q depends on itself", svc.Name)
			}
		}

		if err := validateReadyCheck(svc); err != nil {
			return err
		}

		if !svc.IsOneShot() && (svc.Retry.Attempts != 0 || svc.Retry.Backoff != 0) {
			return fmt.Errorf("service %q: retry policy is only valid for one-shot services", svc.Name)
		}
	}

	return nil
}

func validateReadyCheck(svc ServiceDescriptor) error {
	if svc.ReadyCheck == nil {
		return nil
	}
	check := *svc.ReadyCheck

	switch check.Type {
	case ReadyCheckTCP:
		if check.Port == 0 {
			return fmt.Errorf("service %q: tcp ready check requires a port", svc.Name)
		}
	case ReadyCheckHTTP:
		if check.URL == "" {
			return fmt.Errorf("service %q: http ready check requires a url", svc.Name)
		}
	case ReadyCheckExit:
		if !svc.IsOneShot() {
			return fmt.Errorf("service %q: exit ready check is only valid for one-shot services", svc.Name)
		}
	}

	return nil
}
