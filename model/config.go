package model

import "encoding/json"

// Config holds the engine feature toggles, fusion weights and budgets.
// It is passed explicitly into the retriever, one per engine instance.
type Config struct {
	// Feature toggles
	HyDEEnabled               bool `json:"hyde_enabled"`
	CommunityDetectionEnabled bool `json:"community_detection_enabled"`
	PageRankEnabled           bool `json:"pagerank_enabled"`
	RerankingEnabled          bool `json:"reranking_enabled"`
	SynthesisEnabled          bool `json:"synthesis_enabled"`

	// Hybrid retrieval toggle and fusion weights
	HybridEnabled     bool    `json:"hybrid_enabled"`
	FusionTextWeight  float64 `json:"fusion_text_weight"`
	FusionGraphWeight float64 `json:"fusion_graph_weight"`

	// Default search strategy
	SearchStrategy SearchStrategy `json:"search_strategy"`

	// Budgets
	MaxQueryTimeMS int `json:"max_query_time_ms"`
	MaxMemoryMB    int `json:"max_memory_mb"`
	BatchSize      int `json:"batch_size"`
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() *Config {
	return &Config{
		HyDEEnabled:               true,
		CommunityDetectionEnabled: true,
		PageRankEnabled:           true,
		RerankingEnabled:          false, // computationally expensive
		SynthesisEnabled:          true,
		HybridEnabled:             true,
		FusionTextWeight:          0.7,
		FusionGraphWeight:         0.3,
		SearchStrategy:            StrategyAutomatic,
		MaxQueryTimeMS:            5000,
		MaxMemoryMB:               100,
		BatchSize:                 10,
	}
}

// Export serializes the configuration to indented JSON.
func (c *Config) Export() (string, error) {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Reset restores all fields to their default values.
func (c *Config) Reset() {
	*c = *DefaultConfig()
}

// ImportConfig parses a configuration from JSON. Missing fields keep their
// default values.
func ImportConfig(data string) (*Config, error) {
	config := DefaultConfig()
	if err := json.Unmarshal([]byte(data), config); err != nil {
		return nil, err
	}
	return config, nil
}

// PerformanceMetrics records per-stage timing for a single query, in
// milliseconds. Stages that did not run stay zero.
type PerformanceMetrics struct {
	HyDETimeMS               float64 `json:"hyde_time_ms"`
	CommunityDetectionTimeMS float64 `json:"community_detection_time_ms"`
	PageRankTimeMS           float64 `json:"pagerank_time_ms"`
	RerankingTimeMS          float64 `json:"reranking_time_ms"`
	HybridFusionTimeMS       float64 `json:"hybrid_fusion_time_ms"`
	SynthesisTimeMS          float64 `json:"synthesis_time_ms"`
	TotalTimeMS              float64 `json:"total_time_ms"`
}
