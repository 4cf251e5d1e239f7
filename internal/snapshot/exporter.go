// Package snapshot writes every page to a single JSON file for static
// consumers. The file is a derived cache: it can always be rebuilt from the
// store.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/starford/portal/internal/checksum"
	"github.com/starford/portal/internal/document"
	"github.com/starford/portal/internal/storage"
)

// Source lists pages for export.
type Source interface {
	ListPages(ctx context.Context, includeDocument bool) ([]document.Page, error)
}

// Snapshot is the exported file layout: {"pages": {slug: {title, data}}}.
type Snapshot struct {
	Pages map[string]Entry `json:"pages"`
}

// Entry is one page in a snapshot.
type Entry struct {
	Title string            `json:"title"`
	Data  document.Document `json:"data"`
}

// Build assembles a snapshot from pages listed with their documents.
func Build(pages []document.Page) Snapshot {
	s := Snapshot{Pages: make(map[string]Entry, len(pages))}
	for _, p := range pages {
		var doc document.Document
		if p.Document != nil {
			doc = *p.Document
		}
		s.Pages[p.Slug] = Entry{Title: p.Title, Data: doc}
	}
	return s
}

// Exporter writes the snapshot file.
type Exporter struct {
	src  Source
	fs   storage.Provider
	name string

	mu      sync.Mutex // serialises Export
	lastSum atomic.Value
}

// NewExporter returns an exporter writing to path. The parent directory is
// created if missing and temp files left by an interrupted write are removed.
func NewExporter(src Source, path string) (*Exporter, error) {
	fs, err := storage.NewFS(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	e := &Exporter{src: src, fs: fs, name: filepath.Base(path)}
	e.lastSum.Store("")
	if err := e.removeTemps(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Exporter) removeTemps() error {
	entries, err := os.ReadDir(e.fs.Root())
	if err != nil {
		return fmt.Errorf("snapshot: scan dir: %w", err)
	}
	for _, ent := range entries {
		if ent.IsDir() || !storage.IsTemp(ent.Name()) {
			continue
		}
		if err := e.fs.Delete(ent.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("snapshot: %w", err)
		}
	}
	return nil
}

// Path returns the absolute snapshot path.
func (e *Exporter) Path() string {
	return filepath.Join(e.fs.Root(), e.name)
}

// Export rebuilds the snapshot from the source.
func (e *Exporter) Export(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	pages, err := e.src.ListPages(ctx, true)
	if err != nil {
		return fmt.Errorf("snapshot: list pages: %w", err)
	}
	data, err := document.Marshal(Build(pages))
	if err != nil {
		return fmt.Errorf("snapshot: encode: %w", err)
	}
	// Recorded before the rename so a watcher never sees our own file as foreign.
	e.lastSum.Store(checksum.Sum(data))
	if err := e.fs.Write(e.name, data); err != nil {
		return fmt.Errorf("snapshot: %w", err)
	}
	return nil
}

// Read returns the current snapshot file contents. A missing file yields
// an error matching os.ErrNotExist.
func (e *Exporter) Read() ([]byte, error) {
	return e.fs.Read(e.name)
}

// LastChecksum is the checksum of the most recent export, or "" before the
// first one.
func (e *Exporter) LastChecksum() string {
	return e.lastSum.Load().(string)
}

// Stale reports whether the file on disk is missing or differs from the
// last export.
func (e *Exporter) Stale() (bool, error) {
	data, err := e.Read()
	if errors.Is(err, os.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return !checksum.Matches(data, e.LastChecksum()), nil
}
