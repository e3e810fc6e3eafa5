package static

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"rose-hq/rosegate/pkg/config"
	"rose-hq/rosegate/pkg/telemetry/metrics"
)

// watchDebounce coalesces bursts of filesystem events (editors and build
// tools typically emit several per save) into one reload.
const watchDebounce = 200 * time.Millisecond

// Watcher keeps a Manifest fresh in the background. It always polls on a
// fixed interval; when filesystem watching is enabled it additionally reloads
// shortly after the manifest file changes, so deploys take effect without
// waiting for the next tick. Reloads are idempotent because the manifest is
// guarded by its stored modification time.
type Watcher struct {
	manifest *Manifest
	interval time.Duration
	watchFS  bool
	logger   *slog.Logger
	metrics  *metrics.Collector
}

// NewWatcher builds a watcher for the given manifest. The poll interval is
// clamped to a minimum of one second.
func NewWatcher(manifest *Manifest, cfg *config.StaticConfig, collector *metrics.Collector) *Watcher {
	poll := cfg.ManifestPollSeconds
	if poll < 1 {
		poll = 1
	}
	return &Watcher{
		manifest: manifest,
		interval: time.Duration(poll) * time.Second,
		watchFS:  cfg.ManifestWatch,
		logger:   slog.Default().With("component", "static.watcher"),
		metrics:  collector,
	}
}

// Run polls until the context is cancelled. Cancellation is only observed
// between reload attempts; an in-flight reload finishes first. Run is meant
// to be launched as a goroutine and returns when ctx is done.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var events <-chan fsnotify.Event
	var watchErrors <-chan error
	if w.watchFS {
		// Watch the directory, not the file: atomic replaces (rename onto
		// the manifest path) would otherwise drop the watch.
		fw, err := fsnotify.NewWatcher()
		if err != nil {
			w.logger.Warn("filesystem watch unavailable, polling only", "error", err)
		} else {
			defer fw.Close()
			dir := filepath.Dir(w.manifest.Path())
			if err := fw.Add(dir); err != nil {
				w.logger.Warn("failed to watch manifest directory, polling only",
					"dir", dir, "error", err)
			} else {
				events = fw.Events
				watchErrors = fw.Errors
			}
		}
	}

	var debounce *time.Timer
	var pending <-chan time.Time

	w.logger.Info("manifest watcher started",
		"path", w.manifest.Path(), "interval", w.interval, "fs_watch", events != nil)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("manifest watcher stopped")
			return

		case <-ticker.C:
			w.reload()

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Base(ev.Name) != filepath.Base(w.manifest.Path()) {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(watchDebounce)
				pending = debounce.C
			} else {
				debounce.Reset(watchDebounce)
			}

		case <-pending:
			debounce = nil
			pending = nil
			w.reload()

		case err, ok := <-watchErrors:
			if !ok {
				watchErrors = nil
				continue
			}
			w.logger.Warn("filesystem watch error", "error", err)
		}
	}
}

func (w *Watcher) reload() {
	result := w.manifest.ReloadIfNeeded()
	w.metrics.RecordManifestReload(result, w.manifest.Len())
}
