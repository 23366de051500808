// Package store provides an in-process document and graph store. It backs
// tests and embedded use; the database package provides the Postgres
// equivalent.
package store

import (
	"context"
	"sync"

	"github.com/siherrmann/graphrag/model"
)

// MemoryStore keeps documents and the graph in memory. Reads hand out
// copies, so retrieval works on stable snapshots while the single writer
// mutates the store.
type MemoryStore struct {
	mu        sync.RWMutex
	documents []*model.Document
	docIndex  map[string]int
	nodes     []*model.GraphNode
	edges     []*model.GraphEdge
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docIndex: make(map[string]int),
	}
}

// UpsertDocument inserts or replaces a document by id.
func (s *MemoryStore) UpsertDocument(ctx context.Context, doc *model.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *doc
	if i, ok := s.docIndex[doc.ID]; ok {
		s.documents[i] = &stored
		return nil
	}
	s.docIndex[doc.ID] = len(s.documents)
	s.documents = append(s.documents, &stored)
	return nil
}

// DeleteDocuments removes documents by id. Absent ids are ignored.
func (s *MemoryStore) DeleteDocuments(ctx context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	kept := s.documents[:0]
	for _, d := range s.documents {
		if _, ok := drop[d.ID]; !ok {
			kept = append(kept, d)
		}
	}
	s.documents = kept
	s.docIndex = make(map[string]int, len(s.documents))
	for i, d := range s.documents {
		s.docIndex[d.ID] = i
	}
	return nil
}

// SelectDocument returns a copy of a document, or nil when absent.
func (s *MemoryStore) SelectDocument(ctx context.Context, id string) (*model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.docIndex[id]
	if !ok {
		return nil, nil
	}
	doc := *s.documents[i]
	return &doc, nil
}

// SelectAllDocuments returns a copy of the corpus in insertion order.
func (s *MemoryStore) SelectAllDocuments(ctx context.Context) ([]*model.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]*model.Document, len(s.documents))
	for i, d := range s.documents {
		doc := *d
		docs[i] = &doc
	}
	return docs, nil
}

// InsertNodes appends graph nodes. Nodes with an already-present id are
// replaced in place.
func (s *MemoryStore) InsertNodes(ctx context.Context, nodes []*model.GraphNode) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range nodes {
		stored := *n
		replaced := false
		for i, existing := range s.nodes {
			if existing.ID == n.ID {
				s.nodes[i] = &stored
				replaced = true
				break
			}
		}
		if !replaced {
			s.nodes = append(s.nodes, &stored)
		}
	}
	return nil
}

// InsertEdges appends graph edges, replacing edges with an existing id.
func (s *MemoryStore) InsertEdges(ctx context.Context, edges []*model.GraphEdge) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range edges {
		stored := *e
		replaced := false
		for i, existing := range s.edges {
			if existing.ID == e.ID {
				s.edges[i] = &stored
				replaced = true
				break
			}
		}
		if !replaced {
			s.edges = append(s.edges, &stored)
		}
	}
	return nil
}

// SelectGraph returns a snapshot copy of the graph.
func (s *MemoryStore) SelectGraph(ctx context.Context) (*model.GraphSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := &model.GraphSnapshot{
		Nodes: make([]*model.GraphNode, len(s.nodes)),
		Edges: make([]*model.GraphEdge, len(s.edges)),
	}
	for i, n := range s.nodes {
		node := *n
		snapshot.Nodes[i] = &node
	}
	for i, e := range s.edges {
		edge := *e
		snapshot.Edges[i] = &edge
	}
	return snapshot, nil
}

// DeleteDocumentCascade removes all nodes and edges associated with a
// document id.
func (s *MemoryStore) DeleteDocumentCascade(ctx context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := &model.GraphSnapshot{Nodes: s.nodes, Edges: s.edges}
	snapshot.RemoveDocumentCascade(documentID)
	s.nodes = snapshot.Nodes
	s.edges = snapshot.Edges
	return nil
}
