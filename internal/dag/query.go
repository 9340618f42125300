package dag

import (
	"fmt"
	"sort"
)

// Sorted returns every node ordered by name.
func (g *Graph) Sorted() []*Node {
	out := make([]*Node, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

// Closure returns the named targets plus every transitive prerequisite,
// ordered so that each node comes after all of its prerequisites.
func (g *Graph) Closure(targets ...string) ([]*Node, error) {
	var order []*Node
	seen := make(map[*Node]bool)

	var visit func(n *Node)
	visit = func(n *Node) {
		if seen[n] {
			return
		}
		seen[n] = true
		for _, dep := range n.Deps {
			visit(dep)
		}
		order = append(order, n)
	}

	for _, name := range targets {
		n, ok := g.Nodes[name]
		if !ok {
			return nil, fmt.Errorf("task '%s': %w", name, ErrUnknownTask)
		}
		visit(n)
	}
	return order, nil
}
