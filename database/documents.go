package database

import (
	"context"
	"fmt"

	"github.com/lib/pq"
	"github.com/siherrmann/graphrag/helper"
	"github.com/siherrmann/graphrag/model"
	"github.com/siherrmann/graphrag/sql"
)

// DocumentsDBHandlerFunctions defines the interface for Documents database operations.
type DocumentsDBHandlerFunctions interface {
	UpsertDocument(ctx context.Context, doc *model.Document) error
	SelectDocument(ctx context.Context, id string) (*model.Document, error)
	SelectAllDocuments(ctx context.Context) ([]*model.Document, error)
	DeleteDocuments(ctx context.Context, ids []string) error
}

// DocumentsDBHandler handles document-related database operations
type DocumentsDBHandler struct {
	db *helper.Database
}

// NewDocumentsDBHandler creates a new documents database handler.
// It initializes the database connection and loads document-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewDocumentsDBHandler(db *helper.Database, force bool) (*DocumentsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	documentsDbHandler := &DocumentsDBHandler{
		db: db,
	}

	err := sql.LoadDocumentsSql(documentsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load documents sql", err)
	}

	err = documentsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized DocumentsDBHandler")

	return documentsDbHandler, nil
}

// CreateTable creates the 'documents' table in the database.
// If the table already exists, it does not create it again.
func (h *DocumentsDBHandler) CreateTable() error {
	_, err := h.db.Instance.Exec(`SELECT init_documents();`)
	if err != nil {
		return helper.NewError("init documents table", err)
	}

	h.db.Logger.Info("Checked/created table documents")

	return nil
}

// UpsertDocument inserts a document or updates it in place by id.
func (h *DocumentsDBHandler) UpsertDocument(ctx context.Context, doc *model.Document) error {
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM upsert_document($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		doc.ID,
		doc.Title,
		doc.Content,
		doc.FileType,
		doc.SizeBytes,
		string(doc.ProcessingStatus),
		doc.Metadata,
		doc.CreatedAt,
		doc.IndexedAt,
	)

	err := row.Scan(
		&doc.ID,
		&doc.Title,
		&doc.Content,
		&doc.FileType,
		&doc.SizeBytes,
		&doc.ProcessingStatus,
		&doc.Metadata,
		&doc.CreatedAt,
		&doc.IndexedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectDocument retrieves a document by id
func (h *DocumentsDBHandler) SelectDocument(ctx context.Context, id string) (*model.Document, error) {
	doc := &model.Document{}
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM select_document($1)`,
		id,
	)

	err := row.Scan(
		&doc.ID,
		&doc.Title,
		&doc.Content,
		&doc.FileType,
		&doc.SizeBytes,
		&doc.ProcessingStatus,
		&doc.Metadata,
		&doc.CreatedAt,
		&doc.IndexedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return doc, nil
}

// SelectAllDocuments retrieves all documents in insertion order
func (h *DocumentsDBHandler) SelectAllDocuments(ctx context.Context) ([]*model.Document, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM select_all_documents()`,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var documents []*model.Document
	for rows.Next() {
		doc := &model.Document{}
		err := rows.Scan(
			&doc.ID,
			&doc.Title,
			&doc.Content,
			&doc.FileType,
			&doc.SizeBytes,
			&doc.ProcessingStatus,
			&doc.Metadata,
			&doc.CreatedAt,
			&doc.IndexedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		documents = append(documents, doc)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return documents, nil
}

// DeleteDocuments deletes all documents with the given ids
func (h *DocumentsDBHandler) DeleteDocuments(ctx context.Context, ids []string) error {
	_, err := h.db.Instance.ExecContext(
		ctx,
		`SELECT delete_documents($1)`,
		pq.Array(ids),
	)
	if err != nil {
		return helper.NewError("exec", err)
	}

	return nil
}
