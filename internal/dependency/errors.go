package dependency

import (
	"fmt"
	"strings"
)

// UnknownDependencyError indicates a dependsOn entry that references a
// service not present in the descriptor set.
type UnknownDependencyError struct {
	Service    string
	Dependency string
}

// Error implements the error interface.
func (e *UnknownDependencyError) Error() string {
	return fmt.Sprintf("service %q depends on unknown service %q", e.Service, e.Dependency)
}

// CycleError indicates a dependency cycle. Path lists the services along the
// cycle, ending with the service that closes it.
type CycleError struct {
	Path []string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Path, " -> "))
}
