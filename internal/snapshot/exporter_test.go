package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/starford/portal/internal/document"
)

type fakeSource struct {
	pages []document.Page
	err   error
}

func (f *fakeSource) ListPages(_ context.Context, _ bool) ([]document.Page, error) {
	return f.pages, f.err
}

func homeSource() *fakeSource {
	doc := document.DefaultDocument()
	return &fakeSource{pages: []document.Page{{Slug: "home", Title: "主页", Document: &doc}}}
}

func testExporter(t *testing.T, src Source) *Exporter {
	t.Helper()
	e, err := NewExporter(src, filepath.Join(t.TempDir(), "out", "portal_data.json"))
	if err != nil {
		t.Fatalf("NewExporter: %v", err)
	}
	return e
}

func TestExport_Layout(t *testing.T) {
	e := testExporter(t, homeSource())
	if err := e.Export(context.Background()); err != nil {
		t.Fatalf("Export: %v", err)
	}
	data, err := os.ReadFile(e.Path())
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	s := string(data)
	if !strings.HasPrefix(s, "{\n  \"pages\": {\n    \"home\": {\n      \"title\": \"主页\",") {
		t.Errorf("unexpected layout:\n%s", s)
	}
	if !strings.HasSuffix(s, "}\n") {
		t.Error("snapshot should end with a newline")
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	home, ok := snap.Pages["home"]
	if !ok || len(snap.Pages) != 1 {
		t.Fatalf("pages = %v", snap.Pages)
	}
	if home.Data.Meta.SectionLabel != "Tools Portal" || home.Data.Hero.Title != "工具面板" {
		t.Errorf("home data = %+v", home.Data)
	}
}

func TestExport_SourceError(t *testing.T) {
	e := testExporter(t, &fakeSource{err: errors.New("boom")})
	if err := e.Export(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if _, err := os.Stat(e.Path()); !os.IsNotExist(err) {
		t.Error("snapshot written despite source error")
	}
}

func TestNewExporter_RemovesLeftoverTemps(t *testing.T) {
	dir := t.TempDir()
	leftover := filepath.Join(dir, ".portal-tmp-123")
	keep := filepath.Join(dir, "notes.txt")
	for _, p := range []string{leftover, keep} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := NewExporter(homeSource(), filepath.Join(dir, "portal_data.json")); err != nil {
		t.Fatalf("NewExporter: %v", err)
	}
	if _, err := os.Stat(leftover); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("leftover temp file still present: %v", err)
	}
	if _, err := os.Stat(keep); err != nil {
		t.Errorf("unrelated file removed: %v", err)
	}
}

func TestStale(t *testing.T) {
	e := testExporter(t, homeSource())
	if stale, _ := e.Stale(); !stale {
		t.Error("missing snapshot should be stale")
	}
	_ = e.Export(context.Background())
	if stale, err := e.Stale(); err != nil || stale {
		t.Errorf("fresh snapshot stale = %v, %v", stale, err)
	}
	_ = os.WriteFile(e.Path(), []byte("{}\n"), 0o644)
	if stale, _ := e.Stale(); !stale {
		t.Error("externally modified snapshot should be stale")
	}
}

func eventually(t *testing.T, timeout time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(25 * time.Millisecond)
	}
	t.Error(msg)
}

func TestWatch_RebuildsRemovedAndTamperedSnapshot(t *testing.T) {
	e := testExporter(t, homeSource())
	if err := e.Export(context.Background()); err != nil {
		t.Fatalf("Export: %v", err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var rebuilt atomic.Int32
	done := make(chan struct{})
	go func() {
		_ = e.Watch(ctx, logger, func(string) { rebuilt.Add(1) })
		close(done)
	}()
	time.Sleep(100 * time.Millisecond)

	if err := os.Remove(e.Path()); err != nil {
		t.Fatal(err)
	}
	eventually(t, 3*time.Second, func() bool {
		_, err := os.Stat(e.Path())
		return err == nil && rebuilt.Load() >= 1
	}, "removed snapshot was not rebuilt")

	if err := os.WriteFile(e.Path(), []byte("tampered"), 0o644); err != nil {
		t.Fatal(err)
	}
	eventually(t, 3*time.Second, func() bool {
		stale, _ := e.Stale()
		return !stale && rebuilt.Load() >= 2
	}, "tampered snapshot was not rebuilt")

	cancel()
	<-done
}

func TestWatch_IgnoresOwnExports(t *testing.T) {
	e := testExporter(t, homeSource())
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	_ = e.Export(context.Background())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var rebuilt atomic.Int32
	go func() { _ = e.Watch(ctx, logger, func(string) { rebuilt.Add(1) }) }()
	time.Sleep(100 * time.Millisecond)

	for i := 0; i < 3; i++ {
		if err := e.Export(context.Background()); err != nil {
			t.Fatalf("Export: %v", err)
		}
	}
	time.Sleep(500 * time.Millisecond)
	if n := rebuilt.Load(); n != 0 {
		t.Errorf("guard rebuilt %d times after our own exports", n)
	}
}
