package static

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"rose-hq/rosegate/pkg/config"
)

func TestNewWatcherClampsPollInterval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	writeManifest(t, path, `{}`)
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest failed: %v", err)
	}

	w := NewWatcher(m, &config.StaticConfig{ManifestPollSeconds: 0}, nil)
	if w.interval != time.Second {
		t.Errorf("interval = %v, want 1s", w.interval)
	}

	w = NewWatcher(m, &config.StaticConfig{ManifestPollSeconds: 30}, nil)
	if w.interval != 30*time.Second {
		t.Errorf("interval = %v, want 30s", w.interval)
	}
}

func TestWatcherPollsAndStops(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	writeManifest(t, path, `{"a.js": "a.1.js"}`)
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest failed: %v", err)
	}

	w := NewWatcher(m, &config.StaticConfig{ManifestPollSeconds: 1}, nil)
	w.interval = 20 * time.Millisecond // shorten for the test

	writeManifest(t, path, `{"a.js": "a.2.js"}`)
	next := m.lastModified.Add(2 * time.Second)
	if err := os.Chtimes(path, next, next); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for {
		if got, _ := m.Lookup("a.js"); got == "a.2.js" {
			break
		}
		select {
		case <-deadline:
			t.Fatal("watcher did not pick up the manifest change")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("watcher did not stop on context cancellation")
	}
}

func TestWatcherFilesystemTrigger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "manifest.json")
	writeManifest(t, path, `{"a.js": "a.1.js"}`)
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest failed: %v", err)
	}

	// Long poll interval: only the fsnotify path can pick the change up
	// within the test deadline.
	w := NewWatcher(m, &config.StaticConfig{ManifestPollSeconds: 3600, ManifestWatch: true}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	// Give the watcher a moment to install the watch.
	time.Sleep(100 * time.Millisecond)

	writeManifest(t, path, `{"a.js": "a.2.js"}`)
	next := m.lastModified.Add(2 * time.Second)
	if err := os.Chtimes(path, next, next); err != nil {
		t.Fatalf("Chtimes failed: %v", err)
	}

	deadline := time.After(3 * time.Second)
	for {
		if got, _ := m.Lookup("a.js"); got == "a.2.js" {
			return
		}
		select {
		case <-deadline:
			t.Fatal("filesystem trigger did not reload the manifest")
		case <-time.After(20 * time.Millisecond):
		}
	}
}
