package rank

import "github.com/siherrmann/graphrag/model"

// AdjacencyGraph is an index-based adjacency list satisfying GraphAccess.
type AdjacencyGraph struct {
	ids       []string
	index     map[string]int
	neighbors [][]int
}

// NewAdjacencyGraph creates an empty graph with n unnamed nodes.
func NewAdjacencyGraph(n int) *AdjacencyGraph {
	return &AdjacencyGraph{
		ids:       make([]string, n),
		index:     make(map[string]int, n),
		neighbors: make([][]int, n),
	}
}

// AddEdge adds a directed edge between two node indices. Out-of-range
// indices are ignored.
func (g *AdjacencyGraph) AddEdge(u, v int) {
	if u < 0 || u >= len(g.neighbors) || v < 0 || v >= len(g.neighbors) {
		return
	}
	g.neighbors[u] = append(g.neighbors[u], v)
}

// BuildAdjacencyGraph builds the directed adjacency view of a graph
// snapshot, preserving node order. Edges with unknown endpoints are skipped.
func BuildAdjacencyGraph(snapshot *model.GraphSnapshot) *AdjacencyGraph {
	g := NewAdjacencyGraph(len(snapshot.Nodes))
	for i, n := range snapshot.Nodes {
		g.ids[i] = n.ID
		g.index[n.ID] = i
	}
	for _, e := range snapshot.Edges {
		from, ok := g.index[e.From]
		if !ok {
			continue
		}
		to, ok := g.index[e.To]
		if !ok {
			continue
		}
		g.neighbors[from] = append(g.neighbors[from], to)
	}
	return g
}

// NodeCount implements GraphAccess.
func (g *AdjacencyGraph) NodeCount() int {
	return len(g.neighbors)
}

// OutNeighbors implements GraphAccess.
func (g *AdjacencyGraph) OutNeighbors(u int) []int {
	return g.neighbors[u]
}

// NodeID returns the graph-store id of a node index, if the graph was built
// from a snapshot.
func (g *AdjacencyGraph) NodeID(u int) string {
	if u < 0 || u >= len(g.ids) {
		return ""
	}
	return g.ids[u]
}
