package dependency

import (
	"sort"

	"stackup/internal/descriptor"
)

// Node represents a service inside the dependency graph together with its
// dependency list.
type Node struct {
	Name      string
	Kind      descriptor.ServiceKind
	DependsOn []string
}

// Graph answers dependency queries over a set of nodes. It is not thread-safe
// by itself; callers must synchronise if they write concurrently. In practice
// the graph is built once at load time and read-only afterwards.
type Graph struct {
	nodes map[string]*Node
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*Node)}
}

// FromDescriptors builds a graph from a descriptor set.
func FromDescriptors(descs []descriptor.ServiceDescriptor) *Graph {
	g := New()
	for _, d := range descs {
		g.AddNode(Node{Name: d.Name, Kind: d.Kind, DependsOn: d.DependsOn})
	}
	return g
}

// AddNode adds (or replaces) a node in the graph.
func (g *Graph) AddNode(n Node) {
	if g.nodes == nil {
		g.nodes = make(map[string]*Node)
	}
	// Copy to avoid external mutations
	copied := n
	copied.DependsOn = append([]string(nil), n.DependsOn...)
	g.nodes[n.Name] = &copied
}

// Get returns a pointer to the stored node or nil if it does not exist.
func (g *Graph) Get(name string) *Node {
	return g.nodes[name]
}

// Names returns all node names in ascending order.
func (g *Graph) Names() []string {
	names := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dependencies returns a copy of the immediate dependency names for the
// given node.
func (g *Graph) Dependencies(name string) []string {
	if n, ok := g.nodes[name]; ok {
		return append([]string(nil), n.DependsOn...)
	}
	return nil
}

// Dependents returns all node names that have a direct dependency on the
// given node, in ascending order. An O(n) walk, but the graph is tiny.
func (g *Graph) Dependents(name string) []string {
	var res []string
	for _, n := range g.nodes {
		for _, dep := range n.DependsOn {
			if dep == name {
				res = append(res, n.Name)
				break
			}
		}
	}
	sort.Strings(res)
	return res
}

// validate checks that every dependency references an existing node. Nodes
// are visited in ascending name order so the first error is deterministic.
func (g *Graph) validate() error {
	for _, name := range g.Names() {
		for _, dep := range g.nodes[name].DependsOn {
			if _, ok := g.nodes[dep]; !ok {
				return &UnknownDependencyError{Service: name, Dependency: dep}
			}
		}
	}
	return nil
}

// detectCycle runs a depth-first traversal tracking an in-progress set and
// returns a CycleError carrying the cyclic path if one exists.
func (g *Graph) detectCycle() error {
	const (
		unvisited = iota
		inProgress
		done
	)

	state := make(map[string]int, len(g.nodes))
	var stack []string

	var visit func(name string) *CycleError
	visit = func(name string) *CycleError {
		state[name] = inProgress
		stack = append(stack, name)

		deps := append([]string(nil), g.nodes[name].DependsOn...)
		sort.Strings(deps)
		for _, dep := range deps {
			switch state[dep] {
			case inProgress:
				// Slice the stack from the first occurrence of dep to show
				// the full cycle, closing it with dep itself.
				start := 0
				for i, s := range stack {
					if s == dep {
						start = i
						break
					}
				}
				path := append([]string(nil), stack[start:]...)
				path = append(path, dep)
				return &CycleError{Path: path}
			case unvisited:
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		stack = stack[:len(stack)-1]
		state[name] = done
		return nil
	}

	for _, name := range g.Names() {
		if state[name] == unvisited {
			if err := visit(name); err != nil {
				return err
			}
		}
	}
	return nil
}
