package model

import (
	"time"

	"github.com/google/uuid"
)

// ProcessingStatus tracks where a document is in the indexing lifecycle.
type ProcessingStatus string

const (
	ProcessingStatusPending    ProcessingStatus = "pending"
	ProcessingStatusProcessing ProcessingStatus = "processing"
	ProcessingStatusCompleted  ProcessingStatus = "completed"
	ProcessingStatusFailed     ProcessingStatus = "failed"
)

// Document represents an indexed source document.
// The ID is caller-supplied and stays stable across reindexing.
type Document struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	Content          string           `json:"content"`
	FileType         string           `json:"file_type,omitempty"`
	SizeBytes        int64            `json:"size_bytes"`
	ProcessingStatus ProcessingStatus `json:"processing_status"`
	Metadata         Metadata         `json:"metadata,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	IndexedAt        time.Time        `json:"indexed_at"`
}

// NewDocument creates a pending document with a generated id.
func NewDocument(title, content, fileType string) *Document {
	return &Document{
		ID:               uuid.NewString(),
		Title:            title,
		Content:          content,
		FileType:         fileType,
		SizeBytes:        int64(len(content)),
		ProcessingStatus: ProcessingStatusPending,
		Metadata:         Metadata{},
		CreatedAt:        time.Now(),
	}
}

// Body returns the text used for scoring and extraction, falling back to the
// title when the document has no content.
func (d *Document) Body() string {
	if d.Content == "" {
		return d.Title
	}
	return d.Content
}
