package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/siherrmann/graphrag/helper"
	"github.com/siherrmann/graphrag/model"
)

// DocumentStore is the write surface of a document store.
type DocumentStore interface {
	UpsertDocument(ctx context.Context, doc *model.Document) error
	DeleteDocuments(ctx context.Context, ids []string) error
}

// GraphStore persists extracted nodes and edges and supports cascade
// deletion by document id.
type GraphStore interface {
	InsertNodes(ctx context.Context, nodes []*model.GraphNode) error
	InsertEdges(ctx context.Context, edges []*model.GraphEdge) error
	DeleteDocumentCascade(ctx context.Context, documentID string) error
}

// Indexer maintains the document index and the derived knowledge graph.
// Callers must serialize Index/Delete calls; retrieval runs on snapshots and
// needs no coordination.
type Indexer struct {
	documents DocumentStore
	graph     GraphStore
	batchSize int
	log       *slog.Logger
}

// NewIndexer creates an indexer writing to the given stores.
func NewIndexer(documents DocumentStore, graph GraphStore, batchSize int, logger *slog.Logger) *Indexer {
	if batchSize < 1 {
		batchSize = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Indexer{
		documents: documents,
		graph:     graph,
		batchSize: batchSize,
		log:       logger,
	}
}

// Index upserts documents by id in batches, stamping indexed_at and marking
// them completed, then re-extracts their graph nodes and edges. Reindexing a
// document replaces its previous extraction.
func (i *Indexer) Index(ctx context.Context, docs []*model.Document) error {
	if len(docs) == 0 {
		return nil
	}

	now := time.Now()
	for start := 0; start < len(docs); start += i.batchSize {
		end := start + i.batchSize
		if end > len(docs) {
			end = len(docs)
		}
		for _, d := range docs[start:end] {
			d.IndexedAt = now
			d.ProcessingStatus = model.ProcessingStatusCompleted
			if d.SizeBytes == 0 {
				d.SizeBytes = int64(len(d.Content))
			}
			if err := i.documents.UpsertDocument(ctx, d); err != nil {
				return helper.NewError("upsert document", err)
			}
		}
	}

	// Drop stale extractions before re-extracting, so reindexing does not
	// duplicate nodes.
	for _, d := range docs {
		if err := i.graph.DeleteDocumentCascade(ctx, d.ID); err != nil {
			return helper.NewError("cascade delete before reindex", err)
		}
	}

	nodes, edges := ExtractEntitiesRelations(docs)
	if err := i.graph.InsertNodes(ctx, nodes); err != nil {
		return helper.NewError("insert nodes", err)
	}
	if err := i.graph.InsertEdges(ctx, edges); err != nil {
		return helper.NewError("insert edges", err)
	}

	i.log.Info("Indexed documents",
		slog.Int("documents", len(docs)),
		slog.Int("nodes", len(nodes)),
		slog.Int("edges", len(edges)))

	return nil
}

// Delete removes documents by id and cascade-deletes their graph nodes and
// edges. Absent ids are not an error.
func (i *Indexer) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	if err := i.documents.DeleteDocuments(ctx, ids); err != nil {
		return helper.NewError("delete documents", err)
	}
	for _, id := range ids {
		if err := i.graph.DeleteDocumentCascade(ctx, id); err != nil {
			return helper.NewError("cascade delete", err)
		}
	}

	i.log.Info("Deleted documents", slog.Int("documents", len(ids)))

	return nil
}
