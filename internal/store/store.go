package store

import (
	"context"

	"github.com/starford/portal/internal/document"
)

// PageStore is the persistence contract the page service depends on.
type PageStore interface {
	ListPages(ctx context.Context, includeDocument bool) ([]document.Page, error)
	GetPage(ctx context.Context, slug string) (*document.Page, error)
	UpsertPage(ctx context.Context, slug, title string, doc document.Document) error
	DeletePage(ctx context.Context, slug string) error
	CountPages(ctx context.Context) (int, error)
	SeedIfEmpty(ctx context.Context, slug, title string, doc document.Document) (bool, error)
	Ping(ctx context.Context) error
	Close() error
}

var _ PageStore = (*DB)(nil)
