// Package store implements the persistent key-value settings file. The file
// is a single JSON object mapping string keys to arbitrary JSON values.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// ErrNotFound is returned by Get and Delete for unknown keys.
var ErrNotFound = errors.New("key not found")

// IsNotFound reports whether err is a missing-key error, including one that
// crossed the IPC boundary as text.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrNotFound) || strings.Contains(err.Error(), ErrNotFound.Error())
}

// Store is a JSON key-value map backed by a file. Every mutation rewrites
// the file.
type Store struct {
	path string

	mu      sync.RWMutex
	entries map[string]json.RawMessage
	// saved holds the bytes of the last load or save so file events caused
	// by our own writes are not applied twice.
	saved []byte
}

// Open loads path into a new Store. A missing file yields an empty store; the
// file and its parent directories are created on the first write.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("store path is required")
	}
	s := &Store{
		path:    path,
		}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Reload replaces the in-memory map with the file contents.
func (s *Store) Reload() error {
	_, err := s.reload()
	return err
}

// reload reports whether the file differed from what the store last read or
// wrote. The lock is held across read and swap so a concurrent save cannot
// be overwritten with older contents.
func (s *Store) reload() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := readRaw(s.path)
	if err != nil {
		return false, err
	}
	if s.entries != nil && bytes.Equal(data, s.saved) {
		return false, nil
	}
	entries, err := decode(s.path, data)
	if err != nil {
		return false, err
	}
	s.entries = entries
	s.saved = data
	return true, nil
}

// Get returns the raw JSON value for key.
func (s *Store) Get(key string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.entries[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	out := make(json.RawMessage, len(v))
	copy(out, v)
	return out, nil
}

// GetInto decodes the value for key into dst.
func (s *Store) GetInto(key string, dst any) error {
	raw, err := s.Get(key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("failed to decode %q: %w", key, err)
	}
	return nil
}

// Has reports whether key is present.
func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[key]
	return ok
}

// Set encodes value as JSON, stores it under key and saves the file.
func (s *Store) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", key, err)
	}
	return s.SetRaw(key, raw)
}

// SetRaw stores an already-encoded JSON value under key and saves the file.
func (s *Store) SetRaw(key string, raw json.RawMessage) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}
	if !json.Valid(raw) {
		return fmt.Errorf("value for %q is not valid JSON", key)
	}
	var compact bytes.Buffer
	if err := json.Compact(&compact, raw); err != nil {
		return fmt.Errorf("failed to compact %q: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	prev, had := s.entries[key]
	s.entries[key] = json.RawMessage(compact.Bytes())
	if err := s.saveLocked(); err != nil {
		if had {
			s.entries[key] = prev
		} else {
			delete(s.entries, key)
		}
		return err
	}
	return nil
}

// Delete removes key and saves the file.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.entries[key]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	delete(s.entries, key)
	if err := s.saveLocked(); err != nil {
		s.entries[key] = prev
		return err
	}
	return nil
}

// Keys returns all keys in sorted order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Store) saveLocked() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode store: %w", err)
	}
	data = append(data, '\n')
	if err := writeFileAtomic(s.path, data); err != nil {
		return err
	}
	s.saved = data
	return nil
}

// readRaw returns nil for a missing file.
func readRaw(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read store %s: %w", path, err)
	}
	return data, nil
}

func decode(path string, data []byte) (map[string]json.RawMessage, error) {
	entries := make(map[string]json.RawMessage)
	if len(bytes.TrimSpace(data)) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse store %s: %w", path, err)
	}
	if entries == nil {
		entries = make(map[string]json.RawMessage)
	}
	return entries, nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write store: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set store permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace store %s: %w", path, err)
	}
	return nil
}
