// Package dependency builds a directed acyclic graph from service
// descriptors and derives the execution plan that drives startup.
//
// # Core Concepts
//
// Graph: a DAG in which each node is a service and each edge a declared
// dependency. The graph validates that every dependency references an
// existing service and that no cycle exists.
//
// ExecutionPlan: an ordered sequence of tiers. A tier is a set of services
// with no dependency among them, so its members can start concurrently.
// Every dependency of a service in tier k appears in a tier strictly
// before k. Teardown uses the reverse order.
//
// # Tier Rules
//
//  1. Tiers are computed with Kahn's algorithm: repeatedly select the
//     services whose dependencies have all been placed.
//  2. Within a tier, services are ordered by ascending name. The same
//     descriptor set always yields the same plan, so logs and tests are
//     reproducible.
//  3. One-shot services occupy their own singleton tier immediately after
//     the tier containing their last dependency. They are never merged with
//     long-running services, because a one-shot must complete (not merely
//     become ready) before later tiers start.
//
// # Errors
//
// BuildPlan fails with UnknownDependencyError when a dependsOn entry names a
// missing service, and with CycleError (carrying the cyclic path for
// diagnostics) when the graph is not acyclic. On error no partial plan is
// returned.
package dependency
