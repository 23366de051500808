package store

import (
	"context"
	"testing"

	"github.com/siherrmann/graphrag/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreDocuments(t *testing.T) {
	ctx := context.Background()

	t.Run("Upsert inserts and replaces by id", func(t *testing.T) {
		memory := NewMemoryStore()
		doc := &model.Document{ID: "d1", Title: "first"}

		require.NoError(t, memory.UpsertDocument(ctx, doc), "Expected insert to succeed")

		doc.Title = "second"
		require.NoError(t, memory.UpsertDocument(ctx, doc), "Expected replace to succeed")

		stored, err := memory.SelectDocument(ctx, "d1")
		require.NoError(t, err, "Expected select to succeed")
		require.NotNil(t, stored, "Expected the document to exist")
		assert.Equal(t, "second", stored.Title, "Expected the replaced title")

		docs, err := memory.SelectAllDocuments(ctx)
		require.NoError(t, err, "Expected select all to succeed")
		assert.Len(t, docs, 1, "Expected no duplicate after the upsert")
	})

	t.Run("Select returns copies", func(t *testing.T) {
		memory := NewMemoryStore()
		require.NoError(t, memory.UpsertDocument(ctx, &model.Document{ID: "d1", Title: "original"}), "Expected insert to succeed")

		stored, err := memory.SelectDocument(ctx, "d1")
		require.NoError(t, err, "Expected select to succeed")
		stored.Title = "mutated"

		again, err := memory.SelectDocument(ctx, "d1")
		require.NoError(t, err, "Expected select to succeed")
		assert.Equal(t, "original", again.Title, "Expected the store to hand out copies")
	})

	t.Run("Selecting an unknown id yields nil", func(t *testing.T) {
		memory := NewMemoryStore()

		stored, err := memory.SelectDocument(ctx, "ghost")
		require.NoError(t, err, "Expected no error for an unknown id")
		assert.Nil(t, stored, "Expected nil for an unknown id")
	})

	t.Run("Delete removes by id and ignores unknown ids", func(t *testing.T) {
		memory := NewMemoryStore()
		require.NoError(t, memory.UpsertDocument(ctx, &model.Document{ID: "d1"}), "Expected insert to succeed")
		require.NoError(t, memory.UpsertDocument(ctx, &model.Document{ID: "d2"}), "Expected insert to succeed")

		require.NoError(t, memory.DeleteDocuments(ctx, []string{"d1", "ghost"}), "Expected delete to succeed")

		docs, err := memory.SelectAllDocuments(ctx)
		require.NoError(t, err, "Expected select all to succeed")
		require.Len(t, docs, 1, "Expected one remaining document")
		assert.Equal(t, "d2", docs[0].ID, "Expected the untouched document to survive")
	})
}

func TestMemoryStoreGraph(t *testing.T) {
	ctx := context.Background()

	t.Run("InsertNodes replaces by id", func(t *testing.T) {
		memory := NewMemoryStore()
		require.NoError(t, memory.InsertNodes(ctx, []*model.GraphNode{{ID: "n1", Label: "first"}}), "Expected insert to succeed")
		require.NoError(t, memory.InsertNodes(ctx, []*model.GraphNode{{ID: "n1", Label: "second"}}), "Expected replace to succeed")

		snapshot, err := memory.SelectGraph(ctx)
		require.NoError(t, err, "Expected a snapshot")
		require.Len(t, snapshot.Nodes, 1, "Expected no duplicate node")
		assert.Equal(t, "second", snapshot.Nodes[0].Label, "Expected the replaced label")
	})

	t.Run("Snapshot is decoupled from the store", func(t *testing.T) {
		memory := NewMemoryStore()
		require.NoError(t, memory.InsertNodes(ctx, []*model.GraphNode{{ID: "n1", Label: "original"}}), "Expected insert to succeed")

		snapshot, err := memory.SelectGraph(ctx)
		require.NoError(t, err, "Expected a snapshot")
		snapshot.Nodes[0].Label = "mutated"

		again, err := memory.SelectGraph(ctx)
		require.NoError(t, err, "Expected a snapshot")
		assert.Equal(t, "original", again.Nodes[0].Label, "Expected snapshot mutations to stay local")
	})

	t.Run("Cascade removes document nodes and touching edges", func(t *testing.T) {
		memory := NewMemoryStore()
		require.NoError(t, memory.InsertNodes(ctx, []*model.GraphNode{
			{ID: "doc:d1", NodeType: model.NodeTypeDocument, SourceDocumentID: "d1"},
			{ID: "ent:Alice", NodeType: model.NodeTypeEntity},
			{ID: "doc:d2", NodeType: model.NodeTypeDocument, SourceDocumentID: "d2"},
		}), "Expected nodes to insert")
		require.NoError(t, memory.InsertEdges(ctx, []*model.GraphEdge{
			{ID: "e1", From: "doc:d1", To: "ent:Alice", Relation: model.RelationMentions},
			{ID: "e2", From: "doc:d2", To: "ent:Alice", Relation: model.RelationMentions},
		}), "Expected edges to insert")

		require.NoError(t, memory.DeleteDocumentCascade(ctx, "d1"), "Expected cascade to succeed")

		snapshot, err := memory.SelectGraph(ctx)
		require.NoError(t, err, "Expected a snapshot")
		assert.False(t, snapshot.HasNode("doc:d1"), "Expected the document node to be removed")
		assert.True(t, snapshot.HasNode("ent:Alice"), "Expected the shared entity to survive")
		assert.True(t, snapshot.HasNode("doc:d2"), "Expected the other document node to survive")
		require.Len(t, snapshot.Edges, 1, "Expected only the other document's edge to survive")
		assert.Equal(t, "e2", snapshot.Edges[0].ID, "Expected the surviving edge to belong to the other document")
	})
}
