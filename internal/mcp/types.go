package mcp

import "github.com/frogmemo/frogmemo/internal/memo"

// ToggleWindowInput is the input for the toggle_window tool.
type ToggleWindowInput struct{}

// WindowState describes the managed window.
type WindowState struct {
	Label     string `json:"label"`
	Exists    bool   `json:"exists"`
	Visible   bool   `json:"visible"`
	Minimized bool   `json:"minimized"`
	Error     string `json:"error,omitempty"`
}

// ToggleWindowOutput is the output for the toggle_window tool.
type ToggleWindowOutput struct {
	Action   string      `json:"action"`
	Before   WindowState `json:"before"`
	Failures []string    `json:"failures,omitempty"`
}

// WindowStatusInput is the input for the window_status tool.
type WindowStatusInput struct{}

// WindowStatusOutput is the output for the window_status tool.
type WindowStatusOutput struct {
	Hotkey        string      `json:"hotkey"`
	UptimeSeconds int64       `json:"uptime_seconds"`
	Presses       int64       `json:"presses"`
	Toggles       int64       `json:"toggles"`
	LastAction    string      `json:"last_action,omitempty"`
	Window        WindowState `json:"window"`
	StorePath     string      `json:"store_path"`
	StoreKeys     int         `json:"store_keys"`
}

// StoreGetInput is the input for the store_get tool.
type StoreGetInput struct {
	Key string `json:"key" jsonschema:"required,Settings key to read"`
}

// StoreGetOutput is the output for the store_get tool.
type StoreGetOutput struct {
	Key   string `json:"key"`
	Found bool   `json:"found"`
	Value any    `json:"value,omitempty"`
}

// StoreSetInput is the input for the store_set tool.
type StoreSetInput struct {
	Key   string `json:"key" jsonschema:"required,Settings key to write"`
	Value any    `json:"value" jsonschema:"required,Any JSON value to store under the key"`
}

// StoreSetOutput is the output for the store_set tool.
type StoreSetOutput struct {
	Key string `json:"key"`
}

// StoreDeleteInput is the input for the store_delete tool.
type StoreDeleteInput struct {
	Key string `json:"key" jsonschema:"required,Settings key to remove"`
}

// StoreDeleteOutput is the output for the store_delete tool.
type StoreDeleteOutput struct {
	Key     string `json:"key"`
	Deleted bool   `json:"deleted"`
}

// StoreListInput is the input for the store_list tool.
type StoreListInput struct {
	Prefix string `json:"prefix,omitempty" jsonschema:"Only return keys starting with this prefix"`
}

// StoreListOutput is the output for the store_list tool.
type StoreListOutput struct {
	Keys []string `json:"keys"`
}

// MemoListInput is the input for the memo_list tool.
type MemoListInput struct {
	Tag string `json:"tag,omitempty" jsonschema:"Only return blocks carrying this tag (default: all blocks)"`
}

// MemoListOutput is the output for the memo_list tool.
type MemoListOutput struct {
	Blocks        []memo.Block `json:"memoBlocks"`
	AvailableTags []string     `json:"availableTags"`
}

// MemoSearchInput is the input for the memo_search tool.
type MemoSearchInput struct {
	Query string `json:"query" jsonschema:"required,Case-insensitive text to look for"`
	Scope string `json:"scope,omitempty" jsonschema:"Fields to search: all, content, title or tags (default: all)"`
}

// MemoSearchOutput is the output for the memo_search tool.
type MemoSearchOutput struct {
	Scope  string       `json:"scope"`
	Count  int          `json:"count"`
	Blocks []memo.Block `json:"memoBlocks"`
}

// MemoFormatInput is the input for the memo_format tool.
type MemoFormatInput struct {
	ID      string `json:"id,omitempty" jsonschema:"Block to beautify in place; its content is saved back to the store"`
	Content string `json:"content,omitempty" jsonschema:"Text to beautify without saving, used when id is empty"`
	Format  string `json:"format,omitempty" jsonschema:"Format to apply (default: the block's format, or auto detection)"`
}

// MemoFormatOutput is the output for the memo_format tool.
type MemoFormatOutput struct {
	ID      string `json:"id,omitempty"`
	Format  string `json:"format"`
	Content string `json:"content"`
	Changed bool   `json:"changed"`
	Saved   bool   `json:"saved"`
}
