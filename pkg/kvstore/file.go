package kvstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type fileEntry struct {
	Value     string     `json:"value"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// File is a Store persisted as a single JSON document, the non-browser
// analog of localStorage. Every mutation rewrites the file; the data volumes
// here (a handful of flags plus cached addresses) make that acceptable.
type File struct {
	mu      sync.Mutex
	path    string
	entries map[string]fileEntry
}

// NewFile loads or creates a file-backed store at path.
func NewFile(path string) (*File, error) {
	f := &File{
		path:    path,
		entries: make(map[string]fileEntry),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return nil, fmt.Errorf("kvstore: read %s: %w", path, err)
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &f.entries); err != nil {
			return nil, fmt.Errorf("kvstore: parse %s: %w", path, err)
		}
	}
	return f, nil
}

func (f *File) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entry, ok := f.entries[key]
	if !ok {
		return "", ErrNotFound
	}
	if entry.ExpiresAt != nil && time.Now().After(*entry.ExpiresAt) {
		delete(f.entries, key)
		_ = f.flushLocked()
		return "", ErrNotFound
	}
	return entry.Value, nil
}

func (f *File) Set(_ context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entry := fileEntry{Value: value}
	if ttl > 0 {
		exp := time.Now().Add(ttl)
		entry.ExpiresAt = &exp
	}
	f.entries[key] = entry
	return f.flushLocked()
}

func (f *File) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.entries, key)
	return f.flushLocked()
}

func (f *File) Close() error {
	return nil
}

func (f *File) flushLocked() error {
	data, err := json.Marshal(f.entries)
	if err != nil {
		return fmt.Errorf("kvstore: encode: %w", err)
	}
	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("kvstore: mkdir %s: %w", dir, err)
		}
	}
	// Write-then-rename keeps a crash from truncating the store.
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("kvstore: write %s: %w", tmp, err)
	}
	return os.Rename(tmp, f.path)
}
