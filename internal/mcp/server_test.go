package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/frogmemo/frogmemo/internal/ipc"
	"github.com/frogmemo/frogmemo/internal/memo"
)

type fakeDaemon struct {
	values    map[string]json.RawMessage
	toggles   int
	statusErr error
}

func newFakeDaemon() *fakeDaemon {
	return &fakeDaemon{values: map[string]json.RawMessage{}}
}

func (f *fakeDaemon) GetStatus() (*ipc.StatusData, error) {
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return &ipc.StatusData{
		DaemonRunning: true,
		Hotkey:        "Alt+Backquote",
		Toggles:       int64(f.toggles),
		LastAction:    "create",
		Window:        ipc.WindowData{Label: "main", Exists: true, Visible: true},
		StoreKeys:     len(f.values),
	}, nil
}

func (f *fakeDaemon) Toggle() (*ipc.ToggleData, error) {
	f.toggles++
	return &ipc.ToggleData{
		Action:   "restore",
		Before:   ipc.WindowData{Label: "main", Exists: true, Visible: true, Minimized: true},
		Failures: []string{"set_focus: no window manager"},
	}, nil
}

func (f *fakeDaemon) StoreGet(key string) (json.RawMessage, error) {
	v, ok := f.values[key]
	if !ok {
		return nil, fmt.Errorf("daemon error: key not found: %q", key)
	}
	return v, nil
}

func (f *fakeDaemon) StoreSet(key string, value json.RawMessage) error {
	f.values[key] = value
	return nil
}

func (f *fakeDaemon) StoreDelete(key string) error {
	if _, ok := f.values[key]; !ok {
		return fmt.Errorf("daemon error: key not found: %q", key)
	}
	delete(f.values, key)
	return nil
}

func (f *fakeDaemon) StoreList() ([]string, error) {
	keys := make([]string, 0, len(f.values))
	for k := range f.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func TestNewServerRegistersTools(t *testing.T) {
	if s := NewServer(newFakeDaemon()); s.mcpServer == nil {
		t.Fatalf("expected MCP server to be created")
	}
}

func TestHandleToggleWindow(t *testing.T) {
	d := newFakeDaemon()
	s := &Server{daemon: d}

	_, out, err := s.handleToggleWindow(context.Background(), nil, ToggleWindowInput{})
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if out.Action != "restore" || !out.Before.Minimized || len(out.Failures) != 1 {
		t.Fatalf("out = %+v", out)
	}
	if d.toggles != 1 {
		t.Fatalf("toggles = %d", d.toggles)
	}
}

func TestHandleWindowStatus(t *testing.T) {
	d := newFakeDaemon()
	s := &Server{daemon: d}

	_, out, err := s.handleWindowStatus(context.Background(), nil, WindowStatusInput{})
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if out.Hotkey != "Alt+Backquote" || out.LastAction != "create" || !out.Window.Visible {
		t.Fatalf("out = %+v", out)
	}

	d.statusErr = errors.New("failed to connect to daemon")
	if _, _, err := s.handleWindowStatus(context.Background(), nil, WindowStatusInput{}); err == nil {
		t.Fatalf("expected error when daemon is down")
	}
}

func TestStoreTools(t *testing.T) {
	d := newFakeDaemon()
	s := &Server{daemon: d}
	ctx := context.Background()

	if _, _, err := s.handleStoreSet(ctx, nil, StoreSetInput{Key: "demo", Value: map[string]any{"value": 5}}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if string(d.values["demo"]) != `{"value":5}` {
		t.Fatalf("stored %s", d.values["demo"])
	}

	_, got, err := s.handleStoreGet(ctx, nil, StoreGetInput{Key: "demo"})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	want := map[string]any{"value": float64(5)}
	if !got.Found || !reflect.DeepEqual(got.Value, want) {
		t.Fatalf("get = %+v", got)
	}

	_, missing, err := s.handleStoreGet(ctx, nil, StoreGetInput{Key: "nope"})
	if err != nil || missing.Found {
		t.Fatalf("missing get = %+v, %v", missing, err)
	}

	_, _, _ = s.handleStoreSet(ctx, nil, StoreSetInput{Key: "ui.theme", Value: "dark"})
	_, list, err := s.handleStoreList(ctx, nil, StoreListInput{Prefix: "ui."})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !reflect.DeepEqual(list.Keys, []string{"ui.theme"}) {
		t.Fatalf("list = %v", list.Keys)
	}

	_, del, err := s.handleStoreDelete(ctx, nil, StoreDeleteInput{Key: "demo"})
	if err != nil || !del.Deleted {
		t.Fatalf("delete = %+v, %v", del, err)
	}
	_, del, err = s.handleStoreDelete(ctx, nil, StoreDeleteInput{Key: "demo"})
	if err != nil || del.Deleted {
		t.Fatalf("second delete = %+v, %v", del, err)
	}
}

func TestStoreToolsRequireKey(t *testing.T) {
	s := &Server{daemon: newFakeDaemon()}
	ctx := context.Background()

	_, _, err := s.handleStoreGet(ctx, nil, StoreGetInput{Key: " "})
	if err == nil || !strings.Contains(err.Error(), "key is required") {
		t.Fatalf("get err = %v", err)
	}
	if _, _, err := s.handleStoreSet(ctx, nil, StoreSetInput{Value: 1}); err == nil {
		t.Fatalf("expected set error")
	}
	if _, _, err := s.handleStoreDelete(ctx, nil, StoreDeleteInput{}); err == nil {
		t.Fatalf("expected delete error")
	}
}

func seedMemo(t *testing.T, d *fakeDaemon) {
	t.Helper()
	blocks := `[
		{"id":"1","title":"Deploy notes","content":"kubectl apply","tags":["ops"],"format":"auto","height":200},
		{"id":"2","title":"Config","content":"{\"a\":1}","tags":["dev","ops"],"format":"json","height":200},
		{"id":"3","title":"Groceries","content":"eggs","tags":["未分類"],"format":"auto","height":200}
	]`
	d.values["memoBlocks"] = json.RawMessage(blocks)
	d.values["availableTags"] = json.RawMessage(`["未分類","ops","dev"]`)
}

func blockIDs(blocks []memo.Block) []string {
	ids := make([]string, 0, len(blocks))
	for _, b := range blocks {
		ids = append(ids, b.ID)
	}
	return ids
}

func TestHandleMemoList(t *testing.T) {
	d := newFakeDaemon()
	seedMemo(t, d)
	s := &Server{daemon: d}
	ctx := context.Background()

	tests := []struct {
		tag  string
		want []string
	}{
		{"", []string{"1", "2", "3"}},
		{"all", []string{"1", "2", "3"}},
		{"ops", []string{"1", "2"}},
		{"dev", []string{"2"}},
		{"missing", []string{}},
	}
	for _, tt := range tests {
		_, out, err := s.handleMemoList(ctx, nil, MemoListInput{Tag: tt.tag})
		if err != nil {
			t.Fatalf("list %q: %v", tt.tag, err)
		}
		if got := blockIDs(out.Blocks); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("list %q = %v, want %v", tt.tag, got, tt.want)
		}
		if !reflect.DeepEqual(out.AvailableTags, []string{"未分類", "ops", "dev"}) {
			t.Errorf("tags = %v", out.AvailableTags)
		}
	}
}

func TestHandleMemoListEmptyStore(t *testing.T) {
	s := &Server{daemon: newFakeDaemon()}

	_, out, err := s.handleMemoList(context.Background(), nil, MemoListInput{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out.Blocks) != 1 || out.Blocks[0].Title != memo.DefaultTitle {
		t.Fatalf("blocks = %+v", out.Blocks)
	}
}

func TestHandleMemoSearch(t *testing.T) {
	d := newFakeDaemon()
	seedMemo(t, d)
	s := &Server{daemon: d}
	ctx := context.Background()

	tests := []struct {
		query, scope string
		want         []string
	}{
		{"OPS", "", []string{"1", "2"}},
		{"ops", "title", []string{}},
		{"config", "title", []string{"2"}},
		{"kubectl", "content", []string{"1"}},
		{"kubectl", "tags", []string{}},
		{"分類", "tags", []string{"3"}},
	}
	for _, tt := range tests {
		_, out, err := s.handleMemoSearch(ctx, nil, MemoSearchInput{Query: tt.query, Scope: tt.scope})
		if err != nil {
			t.Fatalf("search %q/%q: %v", tt.query, tt.scope, err)
		}
		if got := blockIDs(out.Blocks); !reflect.DeepEqual(got, tt.want) || out.Count != len(tt.want) {
			t.Errorf("search %q/%q = %v (count %d), want %v", tt.query, tt.scope, got, out.Count, tt.want)
		}
	}

	if _, _, err := s.handleMemoSearch(ctx, nil, MemoSearchInput{Query: "  "}); err == nil {
		t.Errorf("expected error for blank query")
	}
	if _, _, err := s.handleMemoSearch(ctx, nil, MemoSearchInput{Query: "x", Scope: "body"}); err == nil {
		t.Errorf("expected error for unknown scope")
	}
}

func TestHandleMemoFormatBlock(t *testing.T) {
	d := newFakeDaemon()
	seedMemo(t, d)
	s := &Server{daemon: d}
	ctx := context.Background()

	_, out, err := s.handleMemoFormat(ctx, nil, MemoFormatInput{ID: "2"})
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if out.Format != "json" || out.Content != "{\n  \"a\": 1\n}" || !out.Changed || !out.Saved {
		t.Fatalf("out = %+v", out)
	}

	book, err := memo.Load(d)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	blk, _ := book.Get("2")
	if blk.Content != out.Content {
		t.Fatalf("stored content = %q", blk.Content)
	}

	_, again, err := s.handleMemoFormat(ctx, nil, MemoFormatInput{ID: "2"})
	if err != nil || again.Changed || again.Saved {
		t.Fatalf("second format = %+v, %v", again, err)
	}
}

func TestHandleMemoFormatContent(t *testing.T) {
	d := newFakeDaemon()
	s := &Server{daemon: d}
	ctx := context.Background()

	_, out, err := s.handleMemoFormat(ctx, nil, MemoFormatInput{Content: `{"b":[1]}`})
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	if out.Format != "json" || !out.Changed || out.Saved || !strings.Contains(out.Content, "\n  \"b\"") {
		t.Fatalf("out = %+v", out)
	}
	if len(d.values) != 0 {
		t.Fatalf("content-only format wrote to the store: %v", d.values)
	}

	_, sqlOut, err := s.handleMemoFormat(ctx, nil, MemoFormatInput{Content: "select 1 from t", Format: "sql"})
	if err != nil || !strings.HasPrefix(sqlOut.Content, "SELECT\n") {
		t.Fatalf("sql = %+v, %v", sqlOut, err)
	}
}

func TestHandleMemoFormatErrors(t *testing.T) {
	d := newFakeDaemon()
	seedMemo(t, d)
	s := &Server{daemon: d}
	ctx := context.Background()

	tests := []struct {
		name string
		in   MemoFormatInput
		msg  string
	}{
		{"nothing to format", MemoFormatInput{}, "id or content is required"},
		{"unknown format", MemoFormatInput{Content: "x", Format: "cobol"}, "unknown format"},
		{"unknown block", MemoFormatInput{ID: "42"}, "block not found"},
		{"invalid json", MemoFormatInput{Content: "{nope", Format: "json"}, "invalid JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := s.handleMemoFormat(ctx, nil, tt.in)
			if err == nil || !strings.Contains(err.Error(), tt.msg) {
				t.Fatalf("err = %v, want %q", err, tt.msg)
			}
		})
	}
}
