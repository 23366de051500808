// Package graph implements traversal over a graph-store snapshot.
package graph

import (
	"math"
	"sort"

	"github.com/siherrmann/graphrag/model"
)

// Filters restricts a traversal. Nil budgets mean unlimited; an empty
// relation allow-list admits every relation.
type Filters struct {
	AllowedRelations []string
	MaxDepth         *int
	MaxNodes         *int
	MaxEdges         *int
}

// TraversalResult holds the visited node and edge ids, sorted for
// deterministic output.
type TraversalResult struct {
	VisitedNodes []string
	VisitedEdges []string
}

type frontierEntry struct {
	nodeID string
	depth  int
}

// buildAdjacency builds the undirected adjacency view: each edge appears in
// both endpoints' neighbor lists.
func buildAdjacency(snapshot *model.GraphSnapshot) map[string][]*model.GraphEdge {
	adjacency := make(map[string][]*model.GraphEdge)
	for _, e := range snapshot.Edges {
		adjacency[e.From] = append(adjacency[e.From], e)
		adjacency[e.To] = append(adjacency[e.To], e)
	}
	return adjacency
}

func relationAllowed(e *model.GraphEdge, filters *Filters) bool {
	if len(filters.AllowedRelations) == 0 {
		return true
	}
	for _, r := range filters.AllowedRelations {
		if r == e.Relation {
			return true
		}
	}
	return false
}

func budget(v *int) int {
	if v == nil {
		return math.MaxInt
	}
	return *v
}

// BFS walks the snapshot breadth-first from startID. A missing start node
// yields empty sets, not an error.
func BFS(snapshot *model.GraphSnapshot, startID string, filters *Filters) *TraversalResult {
	if filters == nil {
		filters = &Filters{}
	}
	if !snapshot.HasNode(startID) {
		return &TraversalResult{VisitedNodes: []string{}, VisitedEdges: []string{}}
	}

	adjacency := buildAdjacency(snapshot)
	maxDepth := budget(filters.MaxDepth)
	maxNodes := budget(filters.MaxNodes)
	maxEdges := budget(filters.MaxEdges)

	visitedNodes := map[string]struct{}{startID: {}}
	visitedEdges := make(map[string]struct{})
	queue := []frontierEntry{{nodeID: startID, depth: 0}}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if current.depth >= maxDepth {
			continue
		}
		for _, e := range adjacency[current.nodeID] {
			if !relationAllowed(e, filters) {
				continue
			}
			if len(visitedEdges) >= maxEdges {
				break
			}
			other := e.To
			if e.From != current.nodeID {
				other = e.From
			}
			_, nodeSeen := visitedNodes[other]
			_, edgeSeen := visitedEdges[e.ID]
			if nodeSeen && edgeSeen {
				continue
			}
			visitedEdges[e.ID] = struct{}{}
			if !nodeSeen && len(visitedNodes) < maxNodes {
				visitedNodes[other] = struct{}{}
				queue = append(queue, frontierEntry{nodeID: other, depth: current.depth + 1})
			}
		}
		if len(visitedNodes) >= maxNodes {
			break
		}
	}

	return collect(visitedNodes, visitedEdges)
}

// DFS walks the snapshot depth-first from startID with the same filter
// semantics as BFS.
func DFS(snapshot *model.GraphSnapshot, startID string, filters *Filters) *TraversalResult {
	if filters == nil {
		filters = &Filters{}
	}
	if !snapshot.HasNode(startID) {
		return &TraversalResult{VisitedNodes: []string{}, VisitedEdges: []string{}}
	}

	adjacency := buildAdjacency(snapshot)
	maxDepth := budget(filters.MaxDepth)
	maxNodes := budget(filters.MaxNodes)
	maxEdges := budget(filters.MaxEdges)

	visitedNodes := make(map[string]struct{})
	visitedEdges := make(map[string]struct{})
	stack := []frontierEntry{{nodeID: startID, depth: 0}}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if len(visitedNodes) >= maxNodes {
			break
		}
		if _, seen := visitedNodes[current.nodeID]; seen {
			continue
		}
		visitedNodes[current.nodeID] = struct{}{}
		if current.depth >= maxDepth {
			continue
		}
		for _, e := range adjacency[current.nodeID] {
			if !relationAllowed(e, filters) {
				continue
			}
			if len(visitedEdges) >= maxEdges {
				break
			}
			other := e.To
			if e.From != current.nodeID {
				other = e.From
			}
			_, nodeSeen := visitedNodes[other]
			_, edgeSeen := visitedEdges[e.ID]
			if nodeSeen && edgeSeen {
				continue
			}
			visitedEdges[e.ID] = struct{}{}
			stack = append(stack, frontierEntry{nodeID: other, depth: current.depth + 1})
		}
	}

	return collect(visitedNodes, visitedEdges)
}

func collect(nodes, edges map[string]struct{}) *TraversalResult {
	result := &TraversalResult{
		VisitedNodes: make([]string, 0, len(nodes)),
		VisitedEdges: make([]string, 0, len(edges)),
	}
	for id := range nodes {
		result.VisitedNodes = append(result.VisitedNodes, id)
	}
	for id := range edges {
		result.VisitedEdges = append(result.VisitedEdges, id)
	}
	sort.Strings(result.VisitedNodes)
	sort.Strings(result.VisitedEdges)
	return result
}
