package depgraph

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Validation limits to prevent pathological cases.
const (
	MaxNodesPerGraph = 10000
	MaxDepth         = 500
)

// validate performs all structural validations: cycle detection and size
// limits. Unknown-dependency checks already happened during newGraph.
func (g *Graph) validate() error {
	if len(g.Nodes) > MaxNodesPerGraph {
		return fmt.Errorf("%w: node count %d exceeds maximum %d",
			ErrInvalidTopology, len(g.Nodes), MaxNodesPerGraph)
	}

	if err := g.detectCycles(); err != nil {
		return fmt.Errorf("dependency graph validation failed: %w", err)
	}

	return nil
}

// detectCycles uses depth-first search to find cycles in the graph.
// Time complexity: O(V + E).
func (g *Graph) detectCycles() error {
	visited := make(map[NodeID]bool, len(g.Nodes))
	recStack := make(map[NodeID]bool, len(g.Nodes))

	var dfs func(NodeID, []NodeID, int) error
	dfs = func(nodeID NodeID, path []NodeID, depth int) error {
		if depth > MaxDepth {
			return fmt.Errorf("%w: maximum depth %d exceeded", ErrInvalidTopology, MaxDepth)
		}

		visited[nodeID] = true
		recStack[nodeID] = true
		path = append(path, nodeID)

		node := g.Nodes[nodeID]
		for _, childID := range node.Children {
			if !visited[childID] {
				if err := dfs(childID, path, depth+1); err != nil {
					return err
				}
			} else if recStack[childID] {
				cyclePath := append(path, childID)
				pathStr := make([]string, len(cyclePath))
				for i, id := range cyclePath {
					pathStr[i] = string(id)
				}
				return fmt.Errorf("%w: %s", ErrCycleDetected, strings.Join(pathStr, " -> "))
			}
		}

		recStack[nodeID] = false
		return nil
	}

	// Sort root iteration for a deterministic error path when multiple
	// disjoint cycles exist.
	ids := make([]NodeID, 0, len(g.Nodes))
	for id := range g.Nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, nodeID := range ids {
		if !visited[nodeID] {
			if err := dfs(nodeID, nil, 0); err != nil {
				return err
			}
		}
	}

	return nil
}

// insertSorted inserts item into a sorted slice, maintaining sort order.
func insertSorted(slice []NodeID, item NodeID) []NodeID {
	idx := sort.Search(len(slice), func(i int) bool {
		return slice[i] >= item
	})
	return slices.Insert(slice, idx, item)
}

// topologicalOrder computes a deterministic topological ordering using
// Kahn's algorithm: at each step the ready queue is kept sorted
// lexicographically, so two DepMaps with identical edges always yield the
// identical order regardless of Go's unordered map iteration.
func (g *Graph) topologicalOrder() ([]NodeID, error) {
	inDegree := make(map[NodeID]int, len(g.Nodes))
	for nodeID := range g.Nodes {
		inDegree[nodeID] = 0
	}
	for _, node := range g.Nodes {
		for _, childID := range node.Children {
			inDegree[childID]++
		}
	}

	queue := make([]NodeID, 0, len(g.Nodes))
	for nodeID, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, nodeID)
		}
	}
	slices.Sort(queue)

	result := make([]NodeID, 0, len(g.Nodes))
	for len(queue) > 0 {
		nodeID := queue[0]
		queue = queue[1:]
		result = append(result, nodeID)

		node := g.Nodes[nodeID]
		children := make([]NodeID, len(node.Children))
		copy(children, node.Children)
		slices.Sort(children)

		for _, childID := range children {
			inDegree[childID]--
			if inDegree[childID] == 0 {
				queue = insertSorted(queue, childID)
			}
		}
	}

	if len(result) != len(g.Nodes) {
		return nil, fmt.Errorf("%w: topological sort failed", ErrCycleDetected)
	}

	return result, nil
}

// layers groups the topological order into waves of mutually independent
// nodes: a node's layer is one more than the deepest layer among its
// dependencies, so every node in a layer may be evaluated concurrently
// without violating dependency order.
func (g *Graph) layers(order []NodeID) [][]NodeID {
	level := make(map[NodeID]int, len(order))
	maxLevel := 0

	for _, id := range order {
		node := g.Nodes[id]
		lvl := 0
		for _, p := range node.Parents {
			if level[p]+1 > lvl {
				lvl = level[p] + 1
			}
		}
		level[id] = lvl
		if lvl > maxLevel {
			maxLevel = lvl
		}
	}

	layers := make([][]NodeID, maxLevel+1)
	for _, id := range order {
		lvl := level[id]
		layers[lvl] = append(layers[lvl], id)
	}
	return layers
}
