package rank

// CommunityConfig configures label propagation.
// SeedLabels optionally provides the starting labels; it is used only when
// its length matches the node count.
type CommunityConfig struct {
	MaxIterations      int
	StabilityThreshold float64
	SeedLabels         []int
}

// validSeedLabels reports whether the seed vector matches the node count
// and stays within the label range 0..n-1.
func validSeedLabels(seeds []int, n int) bool {
	if len(seeds) != n {
		return false
	}
	for _, s := range seeds {
		if s < 0 || s >= n {
			return false
		}
	}
	return true
}

// DefaultCommunityConfig returns the standard LPA parameters.
func DefaultCommunityConfig() CommunityConfig {
	return CommunityConfig{
		MaxIterations:      50,
		StabilityThreshold: 1e-4,
	}
}

// CommunityEngine partitions graph nodes via the Label Propagation
// Algorithm.
type CommunityEngine struct {
	Config CommunityConfig
}

// NewCommunityEngine creates an engine with the given configuration.
func NewCommunityEngine(config CommunityConfig) *CommunityEngine {
	return &CommunityEngine{Config: config}
}

// DetectCommunities runs LPA and returns the partition as groups of node
// indices. Every node appears in exactly one group; an empty graph yields an
// empty partition. Iteration order is deterministic and ties break toward
// the smallest label.
func (e *CommunityEngine) DetectCommunities(graph GraphAccess) [][]int {
	n := graph.NodeCount()
	if n == 0 {
		return [][]int{}
	}

	labels := make([]int, n)
	if validSeedLabels(e.Config.SeedLabels, n) {
		copy(labels, e.Config.SeedLabels)
	} else {
		for i := range labels {
			labels[i] = i
		}
	}
	next := make([]int, n)
	copy(next, labels)

	for iter := 0; iter < e.Config.MaxIterations; iter++ {
		unchanged := 0
		for u := 0; u < n; u++ {
			neighbors := graph.OutNeighbors(u)
			if len(neighbors) == 0 {
				next[u] = labels[u]
				unchanged++
				continue
			}

			// Labels live in 0..n, so a plain slice works as histogram.
			counts := make([]int, n)
			for _, v := range neighbors {
				counts[labels[v]]++
			}
			bestLabel := labels[u]
			bestCount := 0
			for label, c := range counts {
				if c > bestCount || (c == bestCount && c > 0 && label < bestLabel) {
					bestCount = c
					bestLabel = label
				}
			}
			if bestCount == 0 {
				next[u] = labels[u]
			} else {
				next[u] = bestLabel
			}
			if next[u] == labels[u] {
				unchanged++
			}
		}

		copy(labels, next)
		if float64(unchanged)/float64(n) >= 1-e.Config.StabilityThreshold {
			break
		}
	}

	groups := make([][]int, n)
	for node, label := range labels {
		groups[label] = append(groups[label], node)
	}
	partition := make([][]int, 0, n)
	for _, g := range groups {
		if len(g) > 0 {
			partition = append(partition, g)
		}
	}
	return partition
}
