package retrieval

import (
	"context"

	"github.com/siherrmann/graphrag/model"
)

// DocumentSource supplies the indexed corpus. The retriever treats the
// returned slice as an immutable snapshot.
type DocumentSource interface {
	SelectAllDocuments(ctx context.Context) ([]*model.Document, error)
}

// GraphSource supplies a read-only snapshot of the persisted graph.
type GraphSource interface {
	SelectGraph(ctx context.Context) (*model.GraphSnapshot, error)
}
