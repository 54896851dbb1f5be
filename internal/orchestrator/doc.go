// Package orchestrator drives service startup along an execution plan.
//
// Tiers run strictly in sequence; members of a tier start concurrently.
// Long-running services must pass their readiness check before the tier is
// considered complete, one-shot services must exit with code zero. Any
// failure aborts the run and tears down everything already ready, in reverse
// ready order.
//
// A successful run is recorded in a YAML state file so a later teardown
// invocation can stop the processes it started.
package orchestrator
