package database

import (
	"context"
	"fmt"

	"github.com/siherrmann/graphrag/helper"
	"github.com/siherrmann/graphrag/model"
	"github.com/siherrmann/graphrag/sql"
)

// GraphDBHandlerFunctions defines the interface for graph database operations.
type GraphDBHandlerFunctions interface {
	InsertNodes(ctx context.Context, nodes []*model.GraphNode) error
	InsertEdges(ctx context.Context, edges []*model.GraphEdge) error
	SelectGraph(ctx context.Context) (*model.GraphSnapshot, error)
	DeleteDocumentCascade(ctx context.Context, documentID string) error
}

// GraphDBHandler handles graph-related database operations
type GraphDBHandler struct {
	db *helper.Database
}

// NewGraphDBHandler creates a new graph database handler.
// It initializes the database connection and loads graph-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewGraphDBHandler(db *helper.Database, force bool) (*GraphDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	graphDbHandler := &GraphDBHandler{
		db: db,
	}

	err := sql.LoadGraphSql(graphDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load graph sql", err)
	}

	err = graphDbHandler.CreateTables()
	if err != nil {
		return nil, helper.NewError("create tables", err)
	}

	db.Logger.Info("Initialized GraphDBHandler")

	return graphDbHandler, nil
}

// CreateTables creates the 'graph_nodes' and 'graph_edges' tables in the
// database. If the tables already exist, it does not create them again.
func (h *GraphDBHandler) CreateTables() error {
	_, err := h.db.Instance.Exec(`SELECT init_graph();`)
	if err != nil {
		return helper.NewError("init graph tables", err)
	}

	h.db.Logger.Info("Checked/created tables graph_nodes and graph_edges")

	return nil
}

// InsertNodes upserts all given nodes by id.
func (h *GraphDBHandler) InsertNodes(ctx context.Context, nodes []*model.GraphNode) error {
	for _, node := range nodes {
		row := h.db.Instance.QueryRowContext(
			ctx,
			`SELECT * FROM insert_node($1, $2, $3, $4, $5)`,
			node.ID,
			node.Label,
			string(node.NodeType),
			node.SourceDocumentID,
			node.Metadata,
		)

		err := row.Scan(
			&node.ID,
			&node.Label,
			&node.NodeType,
			&node.SourceDocumentID,
			&node.Metadata,
		)
		if err != nil {
			return helper.NewError("scan", err)
		}
	}

	return nil
}

// InsertEdges upserts all given edges by id.
func (h *GraphDBHandler) InsertEdges(ctx context.Context, edges []*model.GraphEdge) error {
	for _, edge := range edges {
		row := h.db.Instance.QueryRowContext(
			ctx,
			`SELECT * FROM insert_edge($1, $2, $3, $4, $5, $6)`,
			edge.ID,
			edge.From,
			edge.To,
			edge.Relation,
			edge.Weight,
			edge.Metadata,
		)

		err := row.Scan(
			&edge.ID,
			&edge.From,
			&edge.To,
			&edge.Relation,
			&edge.Weight,
			&edge.Metadata,
		)
		if err != nil {
			return helper.NewError("scan", err)
		}
	}

	return nil
}

// SelectGraph retrieves all nodes and edges as a snapshot.
func (h *GraphDBHandler) SelectGraph(ctx context.Context) (*model.GraphSnapshot, error) {
	snapshot := &model.GraphSnapshot{}

	rows, err := h.db.Instance.QueryContext(ctx, `SELECT * FROM select_nodes()`)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	for rows.Next() {
		node := &model.GraphNode{}
		err := rows.Scan(
			&node.ID,
			&node.Label,
			&node.NodeType,
			&node.SourceDocumentID,
			&node.Metadata,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		snapshot.Nodes = append(snapshot.Nodes, node)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	edgeRows, err := h.db.Instance.QueryContext(ctx, `SELECT * FROM select_edges()`)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer edgeRows.Close()

	for edgeRows.Next() {
		edge := &model.GraphEdge{}
		err := edgeRows.Scan(
			&edge.ID,
			&edge.From,
			&edge.To,
			&edge.Relation,
			&edge.Weight,
			&edge.Metadata,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		snapshot.Edges = append(snapshot.Edges, edge)
	}

	err = edgeRows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return snapshot, nil
}

// DeleteDocumentCascade removes the document's nodes, every node extracted
// from it and all edges touching any of them.
func (h *GraphDBHandler) DeleteDocumentCascade(ctx context.Context, documentID string) error {
	_, err := h.db.Instance.ExecContext(
		ctx,
		`SELECT delete_document_cascade($1)`,
		documentID,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}

	return nil
}
