// Package pageservice enforces the page rules on top of the store: slug
// validation, the non-empty page set, first-run seeding, and a snapshot
// re-export after every mutation.
package pageservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/portal/internal/apperr"
	"github.com/starford/portal/internal/document"
	"github.com/starford/portal/internal/store"
)

// Seed page identity.
const (
	HomeSlug  = "home"
	HomeTitle = "主页"
)

// User-facing validation messages.
const (
	MsgBadSlug       = "Slug 仅能包含小写字母、数字或连字符，且长度不超过 48。"
	MsgDuplicateSlug = "该 Slug 已存在。"
	MsgLastPage      = "至少需要保留一个页面。"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9-]{1,48}$`)

// Event kinds passed to EventCallback.
const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// EventCallback is called after a successful mutation.
type EventCallback func(kind, slug string)

// Exporter rebuilds the snapshot and exposes its current contents, which
// double as the legacy seed on first run.
type Exporter interface {
	Export(ctx context.Context) error
	Read() ([]byte, error)
}

// Service coordinates the page store and the snapshot exporter.
type Service struct {
	db       store.PageStore
	exporter Exporter
	logger   *slog.Logger
	onEvent  EventCallback
	sanitize func(string) string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithEventCallback registers a mutation listener.
func WithEventCallback(cb EventCallback) Option {
	return func(s *Service) { s.onEvent = cb }
}

// WithSanitizer filters the free-text fields of every saved document.
func WithSanitizer(fn func(string) string) Option {
	return func(s *Service) { s.sanitize = fn }
}

// New creates a page service.
func New(db store.PageStore, exporter Exporter, opts ...Option) *Service {
	s := &Service{db: db, exporter: exporter, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ValidateSlug checks the slug pattern.
func ValidateSlug(slug string) error {
	err := validation.Validate(slug,
		validation.Required,
		validation.Match(slugPattern),
	)
	if err != nil {
		return apperr.Validation(MsgBadSlug)
	}
	return nil
}

// EnsureSeeded inserts the home page when the store is empty. The seed is
// the legacy snapshot document when one can be read, otherwise the
// built-in default.
func (s *Service) EnsureSeeded(ctx context.Context) error {
	n, err := s.db.CountPages(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	seeded, err := s.db.SeedIfEmpty(ctx, HomeSlug, HomeTitle, s.seedDocument())
	if err != nil {
		return err
	}
	if !seeded {
		return nil
	}
	s.logger.Info("seeded home page", slog.String("slug", HomeSlug))
	s.notify(EventCreated, HomeSlug)
	return s.export(ctx)
}

func (s *Service) seedDocument() document.Document {
	data, err := s.exporter.Read()
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("read legacy snapshot failed", slog.String("error", err.Error()))
		}
		return document.DefaultDocument()
	}
	doc, err := document.LoadLegacy(data)
	if err != nil {
		s.logger.Warn("legacy snapshot unusable, using default", slog.String("error", err.Error()))
		return document.DefaultDocument()
	}
	return doc
}

// ListPages returns all pages ordered by title.
func (s *Service) ListPages(ctx context.Context, includeDocument bool) ([]document.Page, error) {
	if err := s.EnsureSeeded(ctx); err != nil {
		return nil, err
	}
	return s.db.ListPages(ctx, includeDocument)
}

// GetPage returns a page or apperr.ErrNotFound.
func (s *Service) GetPage(ctx context.Context, slug string) (*document.Page, error) {
	if err := s.EnsureSeeded(ctx); err != nil {
		return nil, err
	}
	return s.db.GetPage(ctx, slug)
}

// SavePage upserts a page wholesale and re-exports the snapshot.
func (s *Service) SavePage(ctx context.Context, slug, title string, doc document.Document) error {
	if err := s.EnsureSeeded(ctx); err != nil {
		return err
	}
	if s.sanitize != nil {
		doc = doc.Clone()
		doc.MapText(s.sanitize)
	}
	_, getErr := s.db.GetPage(ctx, slug)
	created := errors.Is(getErr, apperr.ErrNotFound)

	if err := s.db.UpsertPage(ctx, slug, title, doc); err != nil {
		return err
	}
	if created {
		s.notify(EventCreated, slug)
	} else {
		s.notify(EventUpdated, slug)
	}
	return s.export(ctx)
}

// CreatePage adds a page with a fresh default document. The slug must
// match the slug pattern and be unused; a blank title falls back to the
// slug.
func (s *Service) CreatePage(ctx context.Context, slug, title string) error {
	if err := ValidateSlug(slug); err != nil {
		return err
	}
	_, err := s.GetPage(ctx, slug)
	switch {
	case err == nil:
		return apperr.Validation(MsgDuplicateSlug)
	case !errors.Is(err, apperr.ErrNotFound):
		return err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = slug
	}
	return s.SavePage(ctx, slug, title, document.NewPageDocument(title))
}

// DeletePage removes a page unless it is the last one.
func (s *Service) DeletePage(ctx context.Context, slug string) error {
	pages, err := s.ListPages(ctx, false)
	if err != nil {
		return err
	}
	if len(pages) <= 1 {
		return apperr.Validation(MsgLastPage)
	}
	if err := s.db.DeletePage(ctx, slug); err != nil {
		return err
	}
	s.notify(EventDeleted, slug)
	return s.export(ctx)
}

// CurrentSlug resolves the page an admin request operates on: the requested
// slug when it exists, otherwise the first page, otherwise "home".
func (s *Service) CurrentSlug(ctx context.Context, requested string) (string, []document.Page, error) {
	pages, err := s.ListPages(ctx, false)
	if err != nil {
		return "", nil, err
	}
	if requested != "" {
		for _, p := range pages {
			if p.Slug == requested {
				return requested, pages, nil
			}
		}
	}
	if len(pages) > 0 {
		return pages[0].Slug, pages, nil
	}
	return HomeSlug, pages, nil
}

// Export rebuilds the snapshot on demand.
func (s *Service) Export(ctx context.Context) error {
	if err := s.EnsureSeeded(ctx); err != nil {
		return err
	}
	return s.export(ctx)
}

// Ping checks the store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *Service) export(ctx context.Context) error {
	if err := s.exporter.Export(ctx); err != nil {
		return fmt.Errorf("pageservice: export: %w", err)
	}
	return nil
}

func (s *Service) notify(kind, slug string) {
	if s.onEvent != nil {
		s.onEvent(kind, slug)
	}
}
