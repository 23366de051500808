// Package rank implements centrality and community detection over an
// abstract directed graph view.
package rank

import "math"

// GraphAccess is the minimal read-only view the ranking algorithms need.
// Implementations index nodes 0..NodeCount()-1.
type GraphAccess interface {
	NodeCount() int
	OutNeighbors(u int) []int
}

// PageRankConfig configures the power iteration.
// Personalization and DanglingDistribution are optional length-N vectors;
// malformed vectors (wrong length, negative or zero mass) fall back to the
// uniform distribution instead of failing.
type PageRankConfig struct {
	Damping              float64
	Iterations           int
	Convergence          float64
	Personalization      []float64
	DanglingDistribution []float64
}

// DefaultPageRankConfig returns the standard PageRank parameters.
func DefaultPageRankConfig() PageRankConfig {
	return PageRankConfig{
		Damping:     0.85,
		Iterations:  50,
		Convergence: 1e-6,
	}
}

// PageRankEngine computes node centrality by power iteration.
type PageRankEngine struct {
	Config PageRankConfig
}

// NewPageRankEngine creates an engine with the given configuration.
func NewPageRankEngine(config PageRankConfig) *PageRankEngine {
	return &PageRankEngine{Config: config}
}

// ScoreNodes runs PageRank over the graph and returns one rank per node.
// Ranks are non-negative and sum to 1 regardless of dangling nodes,
// personalization or topology. A zero-node graph yields an empty slice.
func (e *PageRankEngine) ScoreNodes(graph GraphAccess) []float64 {
	n := graph.NodeCount()
	if n == 0 {
		return []float64{}
	}

	d := e.Config.Damping
	teleport := normalizeDistribution(e.Config.Personalization, n)
	dangling := normalizeDistribution(e.Config.DanglingDistribution, n)

	rank := make([]float64, n)
	next := make([]float64, n)
	for i := range rank {
		rank[i] = 1.0 / float64(n)
	}

	for iter := 0; iter < e.Config.Iterations; iter++ {
		// Teleport mass according to the personalization vector.
		for i := range next {
			next[i] = (1 - d) * teleport[i]
		}

		for u, ru := range rank {
			outs := graph.OutNeighbors(u)
			if len(outs) == 0 {
				// Dangling node: redistribute its full damped mass.
				add := d * ru
				for i, dv := range dangling {
					next[i] += add * dv
				}
				continue
			}
			share := d * ru / float64(len(outs))
			for _, v := range outs {
				next[v] += share
			}
		}

		diff := 0.0
		for i := range rank {
			diff += math.Abs(next[i] - rank[i])
		}
		copy(rank, next)
		if diff < e.Config.Convergence {
			break
		}
	}

	return rank
}

// normalizeDistribution clamps negative entries to zero and renormalizes the
// vector to sum 1, falling back to uniform when the vector is missing, has
// the wrong length, or carries no positive mass.
func normalizeDistribution(v []float64, n int) []float64 {
	out := make([]float64, n)
	if len(v) != n {
		for i := range out {
			out[i] = 1.0 / float64(n)
		}
		return out
	}

	sum := 0.0
	for i, x := range v {
		if x > 0 {
			out[i] = x
			sum += x
		}
	}
	if sum <= 0 {
		for i := range out {
			out[i] = 1.0 / float64(n)
		}
		return out
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
