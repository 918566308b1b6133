package state

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/atomic"
)

const (
	prMapFile    = "pr_messages.json"
	statsMapFile = "stats_messages.json"
)

// FileStore persists the message maps as flat JSON dictionaries under a state
// directory. Every mutation rewrites the whole file through an atomic rename;
// all mutations serialize on a single mutex, so concurrent handler and cleanup
// writes cannot interleave a partial read-modify-write.
type FileStore struct {
	prMap    map[string]string
	statsMap map[string]string
	dir      string
	mu       sync.Mutex
}

// NewFileStore opens (or creates) a file store rooted at dir. Missing or
// corrupt map files are treated as empty maps.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}

	s := &FileStore{
		dir:      dir,
		prMap:    loadMap(filepath.Join(dir, prMapFile)),
		statsMap: loadMap(filepath.Join(dir, statsMapFile)),
	}

	slog.Info("opened file store",
		"dir", dir,
		"tracked_prs", len(s.prMap),
		"tracked_stats", len(s.statsMap))

	return s, nil
}

// loadMap reads a JSON dictionary from disk. Any failure yields an empty map:
// a missing file is the normal first-run case, and a corrupt file must not
// take the relay down - the cleanup job repairs drift from upstream state.
func loadMap(path string) map[string]string {
	data, err := os.ReadFile(path) //nolint:gosec // path is under the configured state dir
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("failed to read state file", "path", path, "error", err)
		}
		return map[string]string{}
	}

	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		slog.Warn("corrupt state file, starting empty", "path", path, "error", err)
		return map[string]string{}
	}
	if m == nil {
		m = map[string]string{}
	}
	return m
}

// saveMap writes a JSON dictionary with an atomic rename. Caller holds s.mu.
func saveMap(path string, m map[string]string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return nil
}

// PRMessage returns the tracked message ID for a PR key.
func (s *FileStore) PRMessage(_ context.Context, key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.prMap[key]
	return id, ok
}

// SavePRMessage upserts a PR key and persists the map.
func (s *FileStore) SavePRMessage(_ context.Context, key, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prMap[key] = messageID
	return saveMap(filepath.Join(s.dir, prMapFile), s.prMap)
}

// RemovePRMessage drops a PR key and persists the map. Removing an absent key
// is a no-op.
func (s *FileStore) RemovePRMessage(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.prMap[key]; !ok {
		return nil
	}
	delete(s.prMap, key)
	return saveMap(filepath.Join(s.dir, prMapFile), s.prMap)
}

// PRMessages returns a copy of the PR map.
func (s *FileStore) PRMessages(_ context.Context) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]string, len(s.prMap))
	for k, v := range s.prMap {
		out[k] = v
	}
	return out
}

// ReplacePRMessages overwrites the PR map in one batch save.
func (s *FileStore) ReplacePRMessages(_ context.Context, m map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prMap = make(map[string]string, len(m))
	for k, v := range m {
		s.prMap[k] = v
	}
	return saveMap(filepath.Join(s.dir, prMapFile), s.prMap)
}

// StatsMessage returns the tracked message ID for a stats key.
func (s *FileStore) StatsMessage(_ context.Context, key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.statsMap[key]
	return id, ok
}

// StatsMessages returns a copy of the stats map.
func (s *FileStore) StatsMessages(_ context.Context) map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]string, len(s.statsMap))
	for k, v := range s.statsMap {
		out[k] = v
	}
	return out
}

// SaveStatsMessages merges the given entries into the stats map and persists
// it once. Stats entries are never removed, only overwritten.
func (s *FileStore) SaveStatsMessages(_ context.Context, m map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, v := range m {
		s.statsMap[k] = v
	}
	return saveMap(filepath.Join(s.dir, statsMapFile), s.statsMap)
}

// Close is a no-op for the file store; every mutation is already durable.
func (*FileStore) Close() error {
	return nil
}
