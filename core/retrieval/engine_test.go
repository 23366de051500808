package retrieval

import (
	"context"
	"fmt"
	"testing"

	"github.com/siherrmann/graphrag/model"
	"github.com/siherrmann/graphrag/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// plainConfig returns a config with every pipeline stage switched off.
func plainConfig() *model.Config {
	config := model.DefaultConfig()
	config.HyDEEnabled = false
	config.CommunityDetectionEnabled = false
	config.PageRankEnabled = false
	config.RerankingEnabled = false
	config.SynthesisEnabled = false
	config.HybridEnabled = false
	return config
}

func seedDocuments(t *testing.T, memory *store.MemoryStore, docs ...*model.Document) {
	t.Helper()
	for _, d := range docs {
		require.NoError(t, memory.UpsertDocument(context.Background(), d), "failed to seed document")
	}
}

type failingDocumentSource struct{}

func (failingDocumentSource) SelectAllDocuments(ctx context.Context) ([]*model.Document, error) {
	return nil, fmt.Errorf("boom")
}

type failingGraphSource struct{}

func (failingGraphSource) SelectGraph(ctx context.Context) (*model.GraphSnapshot, error) {
	return nil, fmt.Errorf("boom")
}

func TestRetrieverSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("Empty corpus degrades to an empty result", func(t *testing.T) {
		memory := store.NewMemoryStore()
		retriever := NewRetriever(plainConfig(), memory, memory, nil, nil)

		result := retriever.Search(ctx, model.NewQuery("anything", model.StrategyAutomatic))

		require.NotNil(t, result, "Expected a result even for an empty corpus")
		assert.Empty(t, result.Nodes, "Expected no result nodes")
		assert.Empty(t, result.Scores, "Expected no scores")
		assert.Zero(t, result.Metadata.TotalDocumentsSearched, "Expected zero searched documents")
		assert.Contains(t, result.Metadata.AlgorithmsUsed, "tfidf", "Expected tfidf to always be listed")
		assert.Greater(t, result.Metadata.ProcessingTimeMS, 0.0, "Expected a positive processing time")
	})

	t.Run("Failing document source degrades to an empty corpus", func(t *testing.T) {
		retriever := NewRetriever(plainConfig(), failingDocumentSource{}, store.NewMemoryStore(), nil, nil)

		result := retriever.Search(ctx, model.NewQuery("anything", model.StrategyAutomatic))

		require.NotNil(t, result, "Expected a result despite the store failure")
		assert.Empty(t, result.Nodes, "Expected no result nodes")
		assert.Zero(t, result.Metadata.TotalDocumentsSearched, "Expected zero searched documents")
	})

	t.Run("More relevant documents rank first", func(t *testing.T) {
		memory := store.NewMemoryStore()
		seedDocuments(t, memory,
			&model.Document{ID: "d1", Title: "mixed", Content: "graphs and other things"},
			&model.Document{ID: "d2", Title: "focused", Content: "graphs graphs graphs everywhere"},
			&model.Document{ID: "d3", Title: "unrelated", Content: "cooking recipes"},
		)
		retriever := NewRetriever(plainConfig(), memory, memory, nil, nil)

		result := retriever.Search(ctx, model.NewQuery("graphs", model.StrategyAutomatic))

		require.NotEmpty(t, result.Nodes, "Expected matching documents")
		assert.Equal(t, "d2", result.Nodes[0].ID, "Expected the term-heavy document first")
		assert.Equal(t, 1.0, result.Scores[0], "Expected the top score normalized to 1")
		assert.Equal(t, 3, result.Metadata.TotalDocumentsSearched, "Expected the whole corpus to be scored")
	})

	t.Run("MaxResults caps the result set", func(t *testing.T) {
		memory := store.NewMemoryStore()
		for i := 0; i < 10; i++ {
			seedDocuments(t, memory, &model.Document{
				ID:      fmt.Sprintf("d%d", i),
				Title:   "doc",
				Content: "shared topic text",
			})
		}
		retriever := NewRetriever(plainConfig(), memory, memory, nil, nil)

		query := model.NewQuery("topic", model.StrategyAutomatic)
		query.Config.MaxResults = 3

		result := retriever.Search(ctx, query)

		assert.Len(t, result.Nodes, 3, "Expected the result capped at MaxResults")
		assert.Len(t, result.Scores, 3, "Expected one score per node")
	})

	t.Run("HyDE flag follows query and engine config", func(t *testing.T) {
		memory := store.NewMemoryStore()
		seedDocuments(t, memory, &model.Document{ID: "d1", Title: "t", Content: "graph retrieval"})
		retriever := NewRetriever(plainConfig(), memory, memory, nil, nil)

		plain := retriever.Search(ctx, model.NewQuery("graph", model.StrategyAutomatic))
		assert.False(t, plain.Metadata.HyDEEnhanced, "Expected HyDE off by default in a plain config")
		assert.NotContains(t, plain.Metadata.AlgorithmsUsed, "hyde", "Expected no hyde stage")

		query := model.NewQuery("graph", model.StrategyAutomatic)
		query.Config.UseHyDE = true
		enhanced := retriever.Search(ctx, query)
		assert.True(t, enhanced.Metadata.HyDEEnhanced, "Expected the per-query HyDE flag to apply")
		assert.Contains(t, enhanced.Metadata.AlgorithmsUsed, "hyde", "Expected the hyde stage to be listed")
	})

	t.Run("Reranking flag is reported both ways", func(t *testing.T) {
		memory := store.NewMemoryStore()
		seedDocuments(t, memory, &model.Document{ID: "d1", Title: "t", Content: "graph retrieval"})
		retriever := NewRetriever(plainConfig(), memory, memory, nil, nil)

		off := retriever.Search(ctx, model.NewQuery("graph", model.StrategyAutomatic))
		assert.False(t, off.Metadata.Reranked, "Expected no reranking by default")

		query := model.NewQuery("graph", model.StrategyAutomatic)
		query.Config.UseReranking = true
		on := retriever.Search(ctx, query)
		assert.True(t, on.Metadata.Reranked, "Expected the reranking flag to be set")
		assert.Contains(t, on.Metadata.AlgorithmsUsed, "advanced_rerank", "Expected the rerank stage to be listed")
	})

	t.Run("Community boost stage is annotated", func(t *testing.T) {
		memory := store.NewMemoryStore()
		seedDocuments(t, memory,
			&model.Document{ID: "d1", Title: "t", Content: "graph retrieval pipeline"},
			&model.Document{ID: "d2", Title: "t", Content: "graph retrieval pipeline again"},
		)
		config := plainConfig()
		config.CommunityDetectionEnabled = true
		retriever := NewRetriever(config, memory, memory, nil, nil)

		result := retriever.Search(ctx, model.NewQuery("graph", model.StrategyAutomatic))

		assert.True(t, result.Metadata.CommunityFiltered, "Expected the community flag to be set")
		assert.Contains(t, result.Metadata.AlgorithmsUsed, "community_boost", "Expected the community stage to be listed")
	})

	t.Run("Synthesis produces a bounded summary", func(t *testing.T) {
		memory := store.NewMemoryStore()
		seedDocuments(t, memory, &model.Document{
			ID:      "d1",
			Title:   "t",
			Content: "Graphs connect documents. They also connect entities.",
		})
		config := plainConfig()
		config.SynthesisEnabled = true
		retriever := NewRetriever(config, memory, memory, nil, nil)

		result := retriever.Search(ctx, model.NewQuery("graphs", model.StrategyAutomatic))

		require.NotNil(t, result.Metadata.Summary, "Expected a summary")
		assert.Equal(t, "Graphs connect documents.", *result.Metadata.Summary, "Expected the leading sentence of the top document")
		assert.LessOrEqual(t, len(*result.Metadata.Summary), 512, "Expected the summary bounded at 512 bytes")
		assert.Contains(t, result.Metadata.AlgorithmsUsed, "synthesis", "Expected the synthesis stage to be listed")
	})

	t.Run("Summary is nil when synthesis is off", func(t *testing.T) {
		memory := store.NewMemoryStore()
		seedDocuments(t, memory, &model.Document{ID: "d1", Title: "t", Content: "graph text."})
		retriever := NewRetriever(plainConfig(), memory, memory, nil, nil)

		result := retriever.Search(ctx, model.NewQuery("graph", model.StrategyAutomatic))

		assert.Nil(t, result.Metadata.Summary, "Expected no summary with synthesis disabled")
	})

	t.Run("Similar results gain co-occurrence edges", func(t *testing.T) {
		memory := store.NewMemoryStore()
		seedDocuments(t, memory,
			&model.Document{ID: "d1", Title: "t", Content: "graph retrieval pipeline ranking"},
			&model.Document{ID: "d2", Title: "t", Content: "graph retrieval pipeline scoring"},
		)
		retriever := NewRetriever(plainConfig(), memory, memory, nil, nil)

		result := retriever.Search(ctx, model.NewQuery("graph", model.StrategyAutomatic))

		require.NotEmpty(t, result.Edges, "Expected co-occurrence edges between overlapping results")
		edge := result.Edges[0]
		assert.Equal(t, model.RelationRelatedTo, edge.Relation, "Expected the related_to relation")
		assert.Contains(t, edge.ID, "-rel-", "Expected the co-occurrence edge id scheme")
		assert.Greater(t, edge.Weight, 0.0, "Expected the similarity as edge weight")
		assert.Contains(t, result.Metadata.AlgorithmsUsed, "cooccurrence_edges", "Expected the stage to be listed")
	})

	t.Run("Hybrid fusion favors graph-connected documents", func(t *testing.T) {
		memory := store.NewMemoryStore()
		seedDocuments(t, memory,
			&model.Document{ID: "d1", Title: "t", Content: "shared topic"},
			&model.Document{ID: "d2", Title: "t", Content: "shared topic"},
		)
		// d2 is heavily mentioned in the graph.
		require.NoError(t, memory.InsertEdges(ctx, []*model.GraphEdge{
			{ID: "e1", From: "d2", To: "ent:X", Relation: model.RelationMentions},
			{ID: "e2", From: "d2", To: "ent:Y", Relation: model.RelationMentions},
		}), "failed to seed edges")

		config := plainConfig()
		config.HybridEnabled = true
		retriever := NewRetriever(config, memory, memory, nil, nil)

		result := retriever.Search(ctx, model.NewQuery("topic", model.StrategyAutomatic))

		require.Len(t, result.Nodes, 2, "Expected both documents in the result")
		assert.Equal(t, "d2", result.Nodes[0].ID, "Expected the graph-connected document to win the fusion")
		assert.Contains(t, result.Metadata.AlgorithmsUsed, "hybrid_fusion", "Expected the fusion stage to be listed")
	})

	t.Run("Failing graph source degrades fusion instead of aborting", func(t *testing.T) {
		memory := store.NewMemoryStore()
		seedDocuments(t, memory, &model.Document{ID: "d1", Title: "t", Content: "graph text"})
		config := plainConfig()
		config.HybridEnabled = true
		retriever := NewRetriever(config, memory, failingGraphSource{}, nil, nil)

		result := retriever.Search(ctx, model.NewQuery("graph", model.StrategyAutomatic))

		require.Len(t, result.Nodes, 1, "Expected the text result to survive the graph failure")
	})

	t.Run("Strategy is annotated first and tagged last", func(t *testing.T) {
		memory := store.NewMemoryStore()
		seedDocuments(t, memory, &model.Document{ID: "d1", Title: "t", Content: "graph text"})
		retriever := NewRetriever(plainConfig(), memory, memory, nil, nil)

		result := retriever.Search(ctx, model.NewQuery("graph", model.StrategyLocal))

		algorithms := result.Metadata.AlgorithmsUsed
		require.NotEmpty(t, algorithms, "Expected algorithm annotations")
		assert.Equal(t, "strategy:local", algorithms[0], "Expected the strategy annotation first")
		assert.Contains(t, algorithms, "local", "Expected the strategy tag")
	})

	t.Run("Default pipeline records per-stage timings", func(t *testing.T) {
		memory := store.NewMemoryStore()
		seedDocuments(t, memory,
			&model.Document{ID: "d1", Title: "t", Content: "graph retrieval pipeline"},
			&model.Document{ID: "d2", Title: "t", Content: "graph retrieval pipeline again"},
		)
		retriever := NewRetriever(model.DefaultConfig(), memory, memory, nil, nil)

		result := retriever.Search(ctx, model.NewQuery("graph retrieval", model.StrategyAutomatic))

		require.NotEmpty(t, result.Nodes, "Expected results from the default pipeline")
		perf := retriever.LastPerformance()
		assert.Greater(t, perf.TotalTimeMS, 0.0, "Expected a positive total time")
		assert.Greater(t, perf.HyDETimeMS, 0.0, "Expected the hyde stage to be timed")
		assert.Greater(t, perf.PageRankTimeMS, 0.0, "Expected the centrality stage to be timed")
		assert.Zero(t, perf.RerankingTimeMS, "Expected the disabled rerank stage to stay zero")
	})
}

func TestExpandHyDE(t *testing.T) {
	t.Run("Doubles tokens and appends adjacent pairs", func(t *testing.T) {
		expanded := expandHyDE([]string{"graph", "rag"})

		assert.Equal(t, []string{"graph", "rag", "graph", "rag", "graphrag"}, expanded, "Expected duplicated tokens plus pair concatenations")
	})

	t.Run("Single token has no pairs", func(t *testing.T) {
		expanded := expandHyDE([]string{"graph"})

		assert.Equal(t, []string{"graph", "graph"}, expanded, "Expected only the duplicated token")
	})

	t.Run("Empty query stays empty", func(t *testing.T) {
		assert.Empty(t, expandHyDE(nil), "Expected no expansion for an empty query")
	})
}

func TestFusionWeights(t *testing.T) {
	t.Run("Weights are normalized to sum one", func(t *testing.T) {
		config := plainConfig()
		config.FusionTextWeight = 2
		config.FusionGraphWeight = 2
		retriever := NewRetriever(config, store.NewMemoryStore(), store.NewMemoryStore(), nil, nil)

		textWeight, graphWeight := retriever.fusionWeights()

		assert.InDelta(t, 0.5, textWeight, 1e-9, "Expected the text weight normalized")
		assert.InDelta(t, 0.5, graphWeight, 1e-9, "Expected the graph weight normalized")
	})

	t.Run("Degenerate weights fall back to the defaults", func(t *testing.T) {
		config := plainConfig()
		config.FusionTextWeight = 0
		config.FusionGraphWeight = 0
		retriever := NewRetriever(config, store.NewMemoryStore(), store.NewMemoryStore(), nil, nil)

		textWeight, graphWeight := retriever.fusionWeights()

		assert.InDelta(t, 0.7, textWeight, 1e-9, "Expected the default text weight")
		assert.InDelta(t, 0.3, graphWeight, 1e-9, "Expected the default graph weight")
	})

	t.Run("Negative weights are clamped", func(t *testing.T) {
		config := plainConfig()
		config.FusionTextWeight = -1
		config.FusionGraphWeight = 1
		retriever := NewRetriever(config, store.NewMemoryStore(), store.NewMemoryStore(), nil, nil)

		textWeight, graphWeight := retriever.fusionWeights()

		assert.Zero(t, textWeight, "Expected the negative weight clamped to zero")
		assert.InDelta(t, 1.0, graphWeight, 1e-9, "Expected the remaining weight to carry all mass")
	})
}
