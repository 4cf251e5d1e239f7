package snapshot

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/portal/internal/storage"
)

const guardDebounce = 200 * time.Millisecond

// RebuildCallback is called after the guard rebuilt the snapshot.
type RebuildCallback func(path string)

// Watch watches the snapshot's directory until ctx is cancelled and
// re-exports whenever the file is removed, renamed away, or rewritten with
// content this exporter did not produce. Bursts of events are debounced.
func (e *Exporter) Watch(ctx context.Context, logger *slog.Logger, cb RebuildCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(e.fs.Root()); err != nil {
		return err
	}
	target := e.Path()
	logger.Info("snapshot guard: started", slog.String("path", target))

	var timer *time.Timer
	var timerCh <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(guardDebounce)
			timerCh = timer.C
		} else {
			timer.Reset(guardDebounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("snapshot guard: stopped")
			return nil

		case <-timerCh:
			e.rebuildIfStale(ctx, logger, cb)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if storage.IsTemp(ev.Name) || filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) != 0 {
				logger.Debug("snapshot guard: event", slog.String("op", ev.Op.String()))
				schedule()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("snapshot guard: error", slog.String("error", watchErr.Error()))
		}
	}
}

func (e *Exporter) rebuildIfStale(ctx context.Context, logger *slog.Logger, cb RebuildCallback) {
	stale, err := e.Stale()
	if err != nil {
		logger.Warn("snapshot guard: check failed", slog.String("error", err.Error()))
		return
	}
	if !stale {
		return
	}
	if err := e.Export(ctx); err != nil {
		logger.Warn("snapshot guard: rebuild failed", slog.String("error", err.Error()))
		return
	}
	logger.Info("snapshot guard: rebuilt", slog.String("path", e.Path()))
	if cb != nil {
		cb(e.Path())
	}
}
