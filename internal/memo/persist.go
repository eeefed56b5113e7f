package memo

import (
	"encoding/json"
	"fmt"

	"github.com/frogmemo/frogmemo/internal/store"
)

// Store keys holding the book. Together they make the store file read like
// an export.
const (
	BlocksKey = "memoBlocks"
	TagsKey   = "availableTags"
)

// KV is the settings store surface the book is kept in. The daemon, its IPC
// client and the file-backed adapter all satisfy it.
type KV interface {
	StoreGet(key string) (json.RawMessage, error)
	StoreSet(key string, value json.RawMessage) error
}

// Load reads the book from kv. Missing keys yield the default book.
func Load(kv KV) (*Book, error) {
	b := &Book{}
	if err := loadKey(kv, BlocksKey, &b.Blocks); err != nil {
		return nil, err
	}
	if err := loadKey(kv, TagsKey, &b.AvailableTags); err != nil {
		return nil, err
	}
	b.normalize()
	return b, nil
}

func loadKey(kv KV, key string, dst any) error {
	raw, err := kv.StoreGet(key)
	if err != nil {
		if store.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

// Save writes the book to kv.
func Save(kv KV, b *Book) error {
	blocks, err := json.Marshal(b.Blocks)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", BlocksKey, err)
	}
	tags, err := json.Marshal(b.AvailableTags)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", TagsKey, err)
	}
	if err := kv.StoreSet(BlocksKey, blocks); err != nil {
		return err
	}
	return kv.StoreSet(TagsKey, tags)
}

// Export renders the book in the export file layout.
func (b *Book) Export() ([]byte, error) {
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode memo export: %w", err)
	}
	return append(data, '\n'), nil
}
