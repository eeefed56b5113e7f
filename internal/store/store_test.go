package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestOpen_MissingFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "store.json")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty store, got %d keys", s.Len())
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("Open should not create the file, stat err = %v", err)
	}
}

func TestOpen_EmptyPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestOpen_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Open(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestOpen_WhitespaceFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	if err := os.WriteFile(path, []byte("\n  \n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty store")
	}
}

func TestSetPersistsAndReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "store.json")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if err := s.Set("demo", map[string]int{"value": 5}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set("theme", "dark"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	var demo struct {
		Value int `json:"value"`
	}
	if err := reopened.GetInto("demo", &demo); err != nil {
		t.Fatalf("GetInto: %v", err)
	}
	if demo.Value != 5 {
		t.Fatalf("demo.value = %d, want 5", demo.Value)
	}
	raw, err := reopened.Get("theme")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(raw) != `"dark"` {
		t.Fatalf("theme = %s", raw)
	}
	if !reflect.DeepEqual(reopened.Keys(), []string{"demo", "theme"}) {
		t.Fatalf("Keys() = %v", reopened.Keys())
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".tmp") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestSetRaw(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "store.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := s.SetRaw("list", json.RawMessage(`[ 1, 2,  3 ]`)); err != nil {
		t.Fatalf("SetRaw: %v", err)
	}
	raw, _ := s.Get("list")
	if string(raw) != "[1,2,3]" {
		t.Fatalf("expected compacted value, got %s", raw)
	}
	if err := s.SetRaw("bad", json.RawMessage(`{`)); err == nil {
		t.Fatalf("expected invalid JSON error")
	}
	if err := s.SetRaw("", json.RawMessage(`1`)); err == nil {
		t.Fatalf("expected empty key error")
	}
	if s.Has("bad") {
		t.Fatalf("invalid value must not be stored")
	}
}

func TestGetAndDeleteMissing(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "store.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, err := s.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get err = %v, want ErrNotFound", err)
	}
	if err := s.Delete("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Delete err = %v, want ErrNotFound", err)
	}
}

func TestDelete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	s, _ := Open(path)
	if err := s.Set("a", 1); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Delete("a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	reopened, _ := Open(path)
	if reopened.Has("a") {
		t.Fatalf("deleted key persisted")
	}
}

func TestGetReturnsCopy(t *testing.T) {
	s, _ := Open(filepath.Join(t.TempDir(), "store.json"))
	if err := s.Set("k", "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	raw, _ := s.Get("k")
	raw[1] = 'X'
	again, _ := s.Get("k")
	if string(again) != `"v"` {
		t.Fatalf("store mutated through returned slice: %s", again)
	}
}

func TestSetFailureRollsBack(t *testing.T) {
	sub := filepath.Join(t.TempDir(), "sub")
	s, err := Open(filepath.Join(sub, "store.json"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	// Occupy the parent directory path with a regular file so saving fails.
	if err := os.WriteFile(sub, []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := s.Set("k", 1); err == nil {
		t.Fatalf("expected save failure")
	}
	if s.Has("k") {
		t.Fatalf("failed Set must not leave the key in memory")
	}
}

func TestWatchReloadsExternalChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 8)
	if err := s.Watch(ctx, nil, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	if err := os.WriteFile(path, []byte(`{"external": true}`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for !s.Has("external") {
		select {
		case <-changed:
		case <-deadline:
			t.Fatalf("store did not reload external change")
		}
	}
}

func TestWatchKeepsOwnWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var reloads atomic.Int64
	if err := s.Watch(ctx, nil, func() { reloads.Add(1) }); err != nil {
		t.Fatalf("Watch: %v", err)
	}

	const n = 200
	for i := 0; i < n; i++ {
		if err := s.Set(fmt.Sprintf("k%03d", i), i); err != nil {
			t.Fatalf("Set %d: %v", i, err)
		}
	}
	// Give the watcher time to drain the events of our own saves.
	time.Sleep(200 * time.Millisecond)

	if s.Len() != n {
		t.Fatalf("in-memory keys = %d, want %d", s.Len(), n)
	}
	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.Len() != n {
		t.Fatalf("on-disk keys = %d, want %d", reopened.Len(), n)
	}
	if got := reloads.Load(); got != 0 {
		t.Fatalf("own saves triggered %d reloads", got)
	}
}

func TestReloadSkipsUnchangedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.json")
	s, _ := Open(path)
	if err := s.Set("a", 1); err != nil {
		t.Fatalf("Set: %v", err)
	}
	changed, err := s.reload()
	if err != nil || changed {
		t.Fatalf("reload after own save: changed=%v err=%v", changed, err)
	}

	if err := os.WriteFile(path, []byte(`{"b": 2}`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	changed, err = s.reload()
	if err != nil || !changed {
		t.Fatalf("reload after external write: changed=%v err=%v", changed, err)
	}
	if s.Has("a") || !s.Has("b") {
		t.Fatalf("keys = %v", s.Keys())
	}

	if err := os.Remove(path); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("removed file should empty the store, keys = %v", s.Keys())
	}
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{ErrNotFound, true},
		{fmt.Errorf("%w: %q", ErrNotFound, "x"), true},
		{errors.New(`daemon error: key not found: "x"`), true},
		{errors.New("permission denied"), false},
	}
	for _, tt := range tests {
		if got := IsNotFound(tt.err); got != tt.want {
			t.Errorf("IsNotFound(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
