package model

import (
	"time"

	"github.com/google/uuid"
)

// SearchStrategy selects the retrieval scope for a query.
type SearchStrategy string

const (
	StrategyLocal     SearchStrategy = "local"
	StrategyGlobal    SearchStrategy = "global"
	StrategyCombined  SearchStrategy = "combined"
	StrategyAutomatic SearchStrategy = "automatic"
)

// QueryConfig holds the per-query options.
type QueryConfig struct {
	MaxResults            int     `json:"max_results"`
	SimilarityThreshold   float64 `json:"similarity_threshold,omitempty"`
	UseReranking          bool    `json:"use_reranking"`
	UseHyDE               bool    `json:"use_hyde"`
	UseCommunityDetection bool    `json:"use_community_detection"`
}

// DefaultQueryConfig returns a sensible default configuration.
func DefaultQueryConfig() QueryConfig {
	return QueryConfig{
		MaxResults:          5,
		SimilarityThreshold: 0.3,
	}
}

// Query is a retrieval request against the indexed corpus.
type Query struct {
	ID        string         `json:"id"`
	Text      string         `json:"text"`
	Strategy  SearchStrategy `json:"strategy"`
	Config    QueryConfig    `json:"config"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewQuery creates a query with a generated id and default config.
func NewQuery(text string, strategy SearchStrategy) *Query {
	return &Query{
		ID:        uuid.NewString(),
		Text:      text,
		Strategy:  strategy,
		Config:    DefaultQueryConfig(),
		CreatedAt: time.Now(),
	}
}
