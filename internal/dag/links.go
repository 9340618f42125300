package dag

import (
	"context"
	"fmt"

	"github.com/specialistvlad/sitegridgo/internal/ctxlog"
)

// linkExplicitDeps resolves the prerequisites a task declared.
func linkExplicitDeps(ctx context.Context, node *Node, graph *Graph) error {
	logger := ctxlog.FromContext(ctx).With("node_id", node.ID.String())

	for _, depAddr := range node.Task.DependsOn {
		depNode, found := graph.Nodes[depAddr.String()]
		if !found {
			return fmt.Errorf("task '%s' depends on non-existent task '%s': %w", node.ID, depAddr, ErrUnknownTask)
		}
		if depNode == node {
			return fmt.Errorf("cycle detected involving '%s'", node.ID)
		}
		if containsNode(node.Deps, depNode) {
			continue
		}
		logger.Debug("Linking explicit dependency.", "to_node_id", depNode.ID.String())
		node.Deps = append(node.Deps, depNode)
		depNode.Dependents = append(depNode.Dependents, node)
	}
	return nil
}

func containsNode(nodes []*Node, n *Node) bool {
	for _, x := range nodes {
		if x == n {
			return true
		}
	}
	return false
}
