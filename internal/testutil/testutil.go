// Package testutil provides shared test helpers for setting up a page store,
// snapshot exporter and page service.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/starford/portal/internal/pageservice"
	"github.com/starford/portal/internal/snapshot"
	"github.com/starford/portal/internal/store"
)

// Env bundles the pieces of a temporary portal instance.
type Env struct {
	DB           *store.DB
	Exporter     *snapshot.Exporter
	Service      *pageservice.Service
	SnapshotPath string
	DBPath       string
}

// TestDB opens a SQLite database in a temp dir that is closed on cleanup.
func TestDB(t *testing.T) *store.DB {
	t.Helper()
	db, _ := openDB(t)
	return db
}

func openDB(t *testing.T) (*store.DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pages.db")
	db, err := store.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db, path
}

// NewEnv builds a page service over a temp database and snapshot path.
// The store is not seeded until the first service call.
func NewEnv(t *testing.T, opts ...pageservice.Option) *Env {
	t.Helper()
	db, dbPath := openDB(t)
	path := filepath.Join(t.TempDir(), "portal_data.json")
	exp, err := snapshot.NewExporter(db, path)
	if err != nil {
		t.Fatal(err)
	}
	return &Env{
		DB:           db,
		Exporter:     exp,
		Service:      pageservice.New(db, exp, opts...),
		SnapshotPath: path,
		DBPath:       dbPath,
	}
}
