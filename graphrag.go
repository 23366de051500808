package graphrag

import (
	"context"
	"log/slog"
	"os"

	"github.com/siherrmann/graphrag/core/graph"
	"github.com/siherrmann/graphrag/core/pipeline"
	"github.com/siherrmann/graphrag/core/rank"
	"github.com/siherrmann/graphrag/core/retrieval"
	"github.com/siherrmann/graphrag/database"
	"github.com/siherrmann/graphrag/helper"
	"github.com/siherrmann/graphrag/metrics"
	"github.com/siherrmann/graphrag/model"
	"go.opentelemetry.io/otel/metric"
)

// DocumentBackend is the full document storage surface the engine needs.
type DocumentBackend interface {
	pipeline.DocumentStore
	retrieval.DocumentSource
	SelectDocument(ctx context.Context, id string) (*model.Document, error)
}

// GraphBackend is the full graph storage surface the engine needs.
type GraphBackend interface {
	pipeline.GraphStore
	retrieval.GraphSource
}

// GraphRAG provides a unified interface to indexing, retrieval and graph
// analytics over a document corpus.
type GraphRAG struct {
	DB        *helper.Database
	Documents DocumentBackend
	Graph     GraphBackend
	Indexer   *pipeline.Indexer
	Retriever *retrieval.Retriever
	Config    *model.Config
	Metrics   *metrics.Recorder
	// Logging
	log *slog.Logger
}

// NewGraphRAG creates a new GraphRAG instance backed by postgres with all
// handlers initialized. A nil engine config falls back to the defaults and a
// nil meter disables metric export.
func NewGraphRAG(dbConfig *helper.DatabaseConfiguration, config *model.Config, meter metric.Meter) (*GraphRAG, error) {
	// Logger
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	// Initialize database
	db := helper.NewDatabase("graphrag", dbConfig, logger)

	// Create all handlers, force=false to not reload if functions already exist
	documents, err := database.NewDocumentsDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create documents handler", err)
	}

	graphHandler, err := database.NewGraphDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create graph handler", err)
	}

	g, err := NewGraphRAGWithStores(documents, graphHandler, config, meter)
	if err != nil {
		return nil, err
	}
	g.DB = db
	g.log = logger
	return g, nil
}

// NewGraphRAGWithStores creates a GraphRAG instance on top of caller-supplied
// stores, for example the in-memory store from the store package.
func NewGraphRAGWithStores(documents DocumentBackend, graphBackend GraphBackend, config *model.Config, meter metric.Meter) (*GraphRAG, error) {
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	if config == nil {
		config = model.DefaultConfig()
	}

	var recorder *metrics.Recorder
	if meter == nil {
		recorder = metrics.NewNoopRecorder()
	} else {
		var err error
		recorder, err = metrics.NewRecorder(meter)
		if err != nil {
			return nil, helper.NewError("create metrics recorder", err)
		}
	}

	indexer := pipeline.NewIndexer(documents, graphBackend, config.BatchSize, logger)
	retriever := retrieval.NewRetriever(config, documents, graphBackend, recorder, logger)

	return &GraphRAG{
		Documents: documents,
		Graph:     graphBackend,
		Indexer:   indexer,
		Retriever: retriever,
		Config:    config,
		Metrics:   recorder,
		log:       logger,
	}, nil
}

// Close closes the database connection
func (g *GraphRAG) Close() error {
	if g.DB != nil && g.DB.Instance != nil {
		return g.DB.Instance.Close()
	}
	return nil
}

// IndexDocuments indexes the given documents and extracts their graph
// nodes and edges. Reindexing a document replaces its previous extraction.
func (g *GraphRAG) IndexDocuments(ctx context.Context, docs []*model.Document) error {
	return g.Indexer.Index(ctx, docs)
}

// DeleteDocuments removes documents and everything extracted from them.
func (g *GraphRAG) DeleteDocuments(ctx context.Context, ids []string) error {
	return g.Indexer.Delete(ctx, ids)
}

// Search runs the staged retrieval pipeline for the given query.
func (g *GraphRAG) Search(ctx context.Context, query *model.Query) *model.Result {
	return g.Retriever.Search(ctx, query)
}

// SearchText is a convenience wrapper running Search for a plain text query
// with the engine's default strategy.
func (g *GraphRAG) SearchText(ctx context.Context, text string) *model.Result {
	return g.Retriever.Search(ctx, model.NewQuery(text, g.Config.SearchStrategy))
}

// BFSTraversal performs a breadth-first traversal from the given node over
// the current graph snapshot.
func (g *GraphRAG) BFSTraversal(ctx context.Context, startID string, filters *graph.Filters) (*graph.TraversalResult, error) {
	snapshot, err := g.Graph.SelectGraph(ctx)
	if err != nil {
		return nil, helper.NewError("select graph", err)
	}
	return graph.BFS(snapshot, startID, filters), nil
}

// DFSTraversal performs a depth-first traversal from the given node over
// the current graph snapshot.
func (g *GraphRAG) DFSTraversal(ctx context.Context, startID string, filters *graph.Filters) (*graph.TraversalResult, error) {
	snapshot, err := g.Graph.SelectGraph(ctx)
	if err != nil {
		return nil, helper.NewError("select graph", err)
	}
	return graph.DFS(snapshot, startID, filters), nil
}

// PageRank computes pagerank scores over the current graph snapshot and
// returns them keyed by node id.
func (g *GraphRAG) PageRank(ctx context.Context, config rank.PageRankConfig) (map[string]float64, error) {
	snapshot, err := g.Graph.SelectGraph(ctx)
	if err != nil {
		return nil, helper.NewError("select graph", err)
	}

	adjacency := rank.BuildAdjacencyGraph(snapshot)
	scores := rank.NewPageRankEngine(config).ScoreNodes(adjacency)

	ranked := make(map[string]float64, len(scores))
	for i, score := range scores {
		ranked[adjacency.NodeID(i)] = score
	}
	return ranked, nil
}

// DetectCommunities runs label propagation over the current graph snapshot
// and returns the non-empty communities as groups of node ids.
func (g *GraphRAG) DetectCommunities(ctx context.Context, config rank.CommunityConfig) ([][]string, error) {
	snapshot, err := g.Graph.SelectGraph(ctx)
	if err != nil {
		return nil, helper.NewError("select graph", err)
	}

	adjacency := rank.BuildAdjacencyGraph(snapshot)
	partition := rank.NewCommunityEngine(config).DetectCommunities(adjacency)

	communities := make([][]string, 0, len(partition))
	for _, community := range partition {
		ids := make([]string, 0, len(community))
		for _, u := range community {
			ids = append(ids, adjacency.NodeID(u))
		}
		communities = append(communities, ids)
	}
	return communities, nil
}

// LastPerformance returns the per stage timings of the most recent search.
func (g *GraphRAG) LastPerformance() model.PerformanceMetrics {
	return g.Retriever.LastPerformance()
}
