package dag

import (
	"context"
	"fmt"

	"github.com/specialistvlad/sitegridgo/internal/ctxlog"
	"github.com/specialistvlad/sitegridgo/internal/registry"
)

// Build constructs a complete, validated dependency graph from the registry.
func Build(ctx context.Context, r *registry.Registry) (*Graph, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Build: Starting graph construction.")
	graph := &Graph{Nodes: make(map[string]*Node)}

	// First pass: one node per task.
	createNodes(r, graph)
	logger.Debug("Build: Node creation complete.", "node_count", len(graph.Nodes))

	// Second pass: link dependencies.
	for _, node := range graph.Nodes {
		if err := linkExplicitDeps(ctx, node, graph); err != nil {
			return nil, err
		}
	}
	logger.Debug("Build: Node linking complete.")

	if err := graph.detectCycles(); err != nil {
		return nil, fmt.Errorf("error validating dependency graph: %w", err)
	}
	logger.Debug("Build: Graph construction successful.")
	return graph, nil
}

// createNodes performs the first pass of graph creation.
func createNodes(r *registry.Registry, graph *Graph) {
	for _, t := range r.All() {
		graph.Nodes[t.Name.String()] = &Node{ID: t.Name, Task: t}
	}
}

// detectCycles checks for circular dependencies in the graph using DFS.
func (g *Graph) detectCycles() error {
	visiting := make(map[string]bool)
	visited := make(map[string]bool)

	var visit func(node *Node) error
	visit = func(node *Node) error {
		id := node.ID.String()
		visiting[id] = true
		for _, dep := range node.Deps {
			depID := dep.ID.String()
			if visiting[depID] {
				return fmt.Errorf("cycle detected involving '%s'", depID)
			}
			if !visited[depID] {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}
		delete(visiting, id)
		visited[id] = true
		return nil
	}

	for _, node := range g.Sorted() {
		if !visited[node.ID.String()] {
			if err := visit(node); err != nil {
				return err
			}
		}
	}
	return nil
}
