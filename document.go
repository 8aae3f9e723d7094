package docsync

import (
	"context"
	"time"
)

// Document is a committed documentation file.
type Document struct {
	Filename   string    `json:"filename"`
	Title      string    `json:"title,omitempty"`
	Content    string    `json:"content"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// StoreStats describes the committed store.
type StoreStats struct {
	Documents  int       `json:"documents"`
	Bytes      int64     `json:"bytes"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// DocumentStore is the committed store: one file per manifest filename.
// It is mutated only by a commit.
type DocumentStore interface {
	// ReadDocument returns a committed document.
	// Returns ENOTFOUND if the document does not exist.
	ReadDocument(ctx context.Context, filename string) (*Document, error)

	// WriteDocument creates or replaces a document.
	WriteDocument(ctx context.Context, filename, content string) error

	// DeleteDocument removes a document.
	// Returns ENOTFOUND if the document does not exist.
	DeleteDocument(ctx context.Context, filename string) error

	// ListDocuments returns all committed filenames in alphabetical order.
	ListDocuments(ctx context.Context) ([]string, error)

	// Stats summarizes the store. A missing store reports zero documents.
	Stats(ctx context.Context) (*StoreStats, error)
}
