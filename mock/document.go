package mock

import (
	"context"

	"github.com/fwojciec/docsync"
)

var _ docsync.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is a mock implementation of docsync.DocumentStore.
type DocumentStore struct {
	ReadDocumentFn   func(ctx context.Context, filename string) (*docsync.Document, error)
	WriteDocumentFn  func(ctx context.Context, filename, content string) error
	DeleteDocumentFn func(ctx context.Context, filename string) error
	ListDocumentsFn  func(ctx context.Context) ([]string, error)
	StatsFn          func(ctx context.Context) (*docsync.StoreStats, error)
}

func (s *DocumentStore) ReadDocument(ctx context.Context, filename string) (*docsync.Document, error) {
	return s.ReadDocumentFn(ctx, filename)
}

func (s *DocumentStore) WriteDocument(ctx context.Context, filename, content string) error {
	return s.WriteDocumentFn(ctx, filename, content)
}

func (s *DocumentStore) DeleteDocument(ctx context.Context, filename string) error {
	return s.DeleteDocumentFn(ctx, filename)
}

func (s *DocumentStore) ListDocuments(ctx context.Context) ([]string, error) {
	return s.ListDocumentsFn(ctx)
}

func (s *DocumentStore) Stats(ctx context.Context) (*docsync.StoreStats, error) {
	return s.StatsFn(ctx)
}
