package static

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// Reload outcomes reported by ReloadIfNeeded.
const (
	ReloadUnchanged = "unchanged"
	ReloadApplied   = "reloaded"
	ReloadFailed    = "error"
)

// manifestValue accepts the two manifest encodings: a bare string holding the
// physical filename, or an object with a "file" field. Both normalize to the
// same physical path.
type manifestValue struct {
	File string
}

// UnmarshalJSON implements the dual decoding described above.
func (v *manifestValue) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &v.File)
	}

	var entry struct {
		File string `json:"file"`
	}
	if err := json.Unmarshal(data, &entry); err != nil {
		return err
	}
	v.File = entry.File
	return nil
}

// Manifest owns the mapping from logical asset names to physical
// (content-hashed) filenames. The mapping is replaced wholesale on each
// successful reload, never mutated in place, so concurrent readers always see
// a self-consistent snapshot. Request handlers only ever read; the single
// background watcher is the only writer.
type Manifest struct {
	path   string
	logger *slog.Logger

	mu           sync.RWMutex
	entries      map[string]string
	lastModified time.Time
}

// LoadManifest reads and parses the manifest file at path. It is called
// synchronously at startup; a manifest that is configured but unreadable or
// malformed is a fatal configuration error.
func LoadManifest(path string) (*Manifest, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat manifest %q: %w", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest %q: %w", path, err)
	}

	entries, err := parseManifestEntries(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse manifest %q: %w", path, err)
	}

	return &Manifest{
		path:         path,
		logger:       slog.Default().With("component", "static.manifest"),
		entries:      entries,
		lastModified: info.ModTime(),
	}, nil
}

// Lookup returns the physical path mapped to the given logical path. It is a
// non-blocking read of the current snapshot.
func (m *Manifest) Lookup(logical string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	physical, ok := m.entries[logical]
	return physical, ok
}

// Len returns the number of entries in the current snapshot.
func (m *Manifest) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Path returns the manifest file path.
func (m *Manifest) Path() string {
	return m.path
}

// ReloadIfNeeded stats the manifest file and, when its modification time
// differs from the stored one, re-reads and re-parses it, atomically
// replacing the snapshot. On read or parse failure the previous snapshot is
// retained: availability is preferred over freshness. The returned value is
// one of ReloadUnchanged, ReloadApplied, or ReloadFailed.
func (m *Manifest) ReloadIfNeeded() string {
	info, err := os.Stat(m.path)
	if err != nil {
		m.logger.Error("manifest stat failed", "path", m.path, "error", err)
		return ReloadFailed
	}

	m.mu.RLock()
	unchanged := info.ModTime().Equal(m.lastModified)
	m.mu.RUnlock()
	if unchanged {
		return ReloadUnchanged
	}

	data, err := os.ReadFile(m.path)
	if err != nil {
		m.logger.Error("manifest read failed, retaining previous snapshot",
			"path", m.path, "error", err)
		return ReloadFailed
	}

	entries, err := parseManifestEntries(data)
	if err != nil {
		m.logger.Error("manifest parse failed, retaining previous snapshot",
			"path", m.path, "error", err)
		return ReloadFailed
	}

	m.mu.Lock()
	m.entries = entries
	m.lastModified = info.ModTime()
	m.mu.Unlock()

	m.logger.Info("manifest reloaded", "path", m.path, "entries", len(entries))
	return ReloadApplied
}

// parseManifestEntries decodes the manifest JSON object, accepting both value
// shapes, and returns the normalized lookup table.
func parseManifestEntries(data []byte) (map[string]string, error) {
	var raw map[string]manifestValue
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	entries := make(map[string]string, len(raw))
	for logical, value := range raw {
		entries[logical] = value.File
	}
	return entries, nil
}
