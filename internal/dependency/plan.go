package dependency

import (
	"sort"
	"strings"

	"stackup/internal/descriptor"
)

// Tier is a set of service names with no dependency among them, listed in
// ascending order. All members of a tier may start concurrently.
type Tier []string

// ExecutionPlan is the ordered sequence of tiers derived from a descriptor
// set. It is immutable once built; teardown uses the reverse order.
type ExecutionPlan struct {
	Tiers []Tier
}

// StartOrder returns every service name in start order, tiers flattened.
func (p ExecutionPlan) StartOrder() []string {
	var order []string
	for _, tier := range p.Tiers {
		order = append(order, tier...)
	}
	return order
}

// TierOf returns the zero-based tier index containing the named service, or
// -1 if the service is not in the plan.
func (p ExecutionPlan) TierOf(name string) int {
	for i, tier := range p.Tiers {
		for _, svc := range tier {
			if svc == name {
				return i
			}
		}
	}
	return -1
}

// String renders the plan as "[db] [migrate] [api cache]" for logs.
func (p ExecutionPlan) String() string {
	parts := make([]string, len(p.Tiers))
	for i, tier := range p.Tiers {
		parts[i] = "[" + strings.Join(tier, " ") + "]"
	}
	return strings.Join(parts, " ")
}

// BuildPlan validates the descriptor set and computes the execution plan.
// It fails with UnknownDependencyError or CycleError before returning any
// tiers; a partial plan is never produced.
func BuildPlan(descs []descriptor.ServiceDescriptor) (ExecutionPlan, error) {
	return FromDescriptors(descs).BuildPlan()
}

// BuildPlan computes the execution plan for the graph.
func (g *Graph) BuildPlan() (ExecutionPlan, error) {
	if err := g.validate(); err != nil {
		return ExecutionPlan{}, err
	}
	if err := g.detectCycle(); err != nil {
		return ExecutionPlan{}, err
	}

	placed := make(map[string]bool, len(g.nodes))
	remaining := len(g.nodes)
	var tiers []Tier

	for remaining > 0 {
		ready := g.readyNodes(placed)

		// One-shot services take their own singleton tier immediately after
		// the tier that satisfied their last dependency. They must complete,
		// not just become ready, before anything placed later starts.
		var oneShots []string
		for _, name := range ready {
			if g.nodes[name].Kind == descriptor.KindOneShot {
				oneShots = append(oneShots, name)
			}
		}
		if len(oneShots) > 0 {
			for _, name := range oneShots {
				tiers = append(tiers, Tier{name})
				placed[name] = true
				remaining--
			}
			continue
		}

		tiers = append(tiers, Tier(ready))
		for _, name := range ready {
			placed[name] = true
			remaining--
		}
	}

	return ExecutionPlan{Tiers: tiers}, nil
}

// readyNodes returns the not-yet-placed services whose dependencies are all
// placed, in ascending name order.
func (g *Graph) readyNodes(placed map[string]bool) []string {
	var ready []string
	for name, n := range g.nodes {
		if placed[name] {
			continue
		}
		ok := true
		for _, dep := range n.DependsOn {
			if !placed[dep] {
				ok = false
				break
			}
		}
		if ok {
			ready = append(ready, name)
		}
	}
	sort.Strings(ready)
	return ready
}
