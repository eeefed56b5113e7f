// Package memo holds the memo blocks shown in the frogmemo window: titled
// snippets with tags, a display format and editor settings. Blocks are kept
// in the settings store using the same shape as the JSON export.
package memo

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultTitle  = "新備忘錄"
	DefaultTag    = "未分類"
	DefaultHeight = 200
	MinHeight     = 100

	// AllTab is the tag tab that shows every block.
	AllTab = "all"
)

var (
	ErrBlockNotFound = errors.New("memo block not found")
	ErrLastBlock     = errors.New("cannot delete the last memo block")
)

// Block is one memo.
type Block struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Content         string   `json:"content"`
	Tags            []string `json:"tags"`
	Format          string   `json:"format"`
	ShowLineNumbers bool     `json:"showLineNumbers"`
	Height          int      `json:"height"`
}

// NewBlock returns an empty block with the default title and tag.
func NewBlock(id string) Block {
	return Block{
		ID:     id,
		Title:  DefaultTitle,
		Tags:   []string{DefaultTag},
		Format: FormatAuto,
		Height: DefaultHeight,
	}
}

// HasTag reports whether the block carries tag.
func (b Block) HasTag(tag string) bool {
	return slices.Contains(b.Tags, tag)
}

// EffectiveFormat resolves "auto" by inspecting the content.
func (b Block) EffectiveFormat() string {
	if b.Format == "" || b.Format == FormatAuto {
		return DetectFormat(b.Content)
	}
	return b.Format
}

// Book is every memo block plus the tags offered as tabs. Its JSON form is
// the export file layout.
type Book struct {
	Blocks        []Block  `json:"memoBlocks"`
	AvailableTags []string `json:"availableTags"`
}

// NewBook returns a book with a single empty block.
func NewBook() *Book {
	return &Book{
		Blocks:        []Block{NewBlock("1")},
		AvailableTags: []string{DefaultTag},
	}
}

// normalize repairs data written by hand or by older versions.
func (b *Book) normalize() {
	if len(b.Blocks) == 0 {
		b.Blocks = []Block{NewBlock("1")}
	}
	for i := range b.Blocks {
		blk := &b.Blocks[i]
		if len(blk.Tags) == 0 {
			blk.Tags = []string{DefaultTag}
		}
		if blk.Format == "" {
			blk.Format = FormatAuto
		}
		if blk.Height == 0 {
			blk.Height = DefaultHeight
		} else if blk.Height < MinHeight {
			blk.Height = MinHeight
		}
		for _, tag := range blk.Tags {
			b.addAvailable(tag)
		}
	}
	if len(b.AvailableTags) == 0 {
		b.AvailableTags = []string{DefaultTag}
	}
}

func (b *Book) addAvailable(tag string) {
	if !slices.Contains(b.AvailableTags, tag) {
		b.AvailableTags = append(b.AvailableTags, tag)
	}
}

// Get returns a copy of the block with id.
func (b *Book) Get(id string) (Block, error) {
	i := b.index(id)
	if i < 0 {
		return Block{}, fmt.Errorf("%w: %q", ErrBlockNotFound, id)
	}
	return b.Blocks[i], nil
}

func (b *Book) index(id string) int {
	return slices.IndexFunc(b.Blocks, func(blk Block) bool { return blk.ID == id })
}

func (b *Book) update(id string, fn func(*Block)) error {
	i := b.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrBlockNotFound, id)
	}
	fn(&b.Blocks[i])
	return nil
}

// Add appends a new empty block. Its id is the creation time in
// milliseconds, bumped until unique.
func (b *Book) Add(now time.Time) Block {
	n := now.UnixMilli()
	id := strconv.FormatInt(n, 10)
	for b.index(id) >= 0 {
		n++
		id = strconv.FormatInt(n, 10)
	}
	blk := NewBlock(id)
	b.Blocks = append(b.Blocks, blk)
	b.addAvailable(DefaultTag)
	return blk
}

// Delete removes a block. The last remaining block cannot be deleted.
func (b *Book) Delete(id string) error {
	i := b.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrBlockNotFound, id)
	}
	if len(b.Blocks) == 1 {
		return ErrLastBlock
	}
	b.Blocks = slices.Delete(b.Blocks, i, i+1)
	return nil
}

func (b *Book) SetTitle(id, title string) error {
	return b.update(id, func(blk *Block) { blk.Title = title })
}

func (b *Book) SetContent(id, content string) error {
	return b.update(id, func(blk *Block) { blk.Content = content })
}

// SetFormat selects the display format; it must be one of Formats.
func (b *Book) SetFormat(id, format string) error {
	if !IsKnownFormat(format) {
		return fmt.Errorf("unknown format %q", format)
	}
	return b.update(id, func(blk *Block) { blk.Format = format })
}

func (b *Book) ToggleLineNumbers(id string) error {
	return b.update(id, func(blk *Block) { blk.ShowLineNumbers = !blk.ShowLineNumbers })
}

// SetHeight resizes the editor, never below MinHeight.
func (b *Book) SetHeight(id string, height int) error {
	return b.update(id, func(blk *Block) { blk.Height = max(MinHeight, height) })
}

// AddTag tags a block and offers the tag as a tab. Blank tags are ignored.
func (b *Book) AddTag(id, tag string) error {
	tag = strings.TrimSpace(tag)
	if b.index(id) < 0 {
		return fmt.Errorf("%w: %q", ErrBlockNotFound, id)
	}
	if tag == "" {
		return nil
	}
	b.addAvailable(tag)
	return b.update(id, func(blk *Block) {
		if !blk.HasTag(tag) {
			blk.Tags = append(blk.Tags, tag)
		}
	})
}

// RemoveTag untags a block. A block left without tags gets DefaultTag back.
// The tag stays available as a tab.
func (b *Book) RemoveTag(id, tag string) error {
	return b.update(id, func(blk *Block) {
		tags := slices.DeleteFunc(slices.Clone(blk.Tags), func(t string) bool { return t == tag })
		if len(tags) == 0 {
			tags = []string{DefaultTag}
		}
		blk.Tags = tags
	})
}

// SetTags replaces a block's tags with the non-blank unique entries of tags.
func (b *Book) SetTags(id string, tags []string) error {
	if b.index(id) < 0 {
		return fmt.Errorf("%w: %q", ErrBlockNotFound, id)
	}
	clean := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" && !slices.Contains(clean, t) {
			clean = append(clean, t)
		}
	}
	if len(clean) == 0 {
		clean = []string{DefaultTag}
	}
	for _, t := range clean {
		b.addAvailable(t)
	}
	return b.update(id, func(blk *Block) { blk.Tags = clean })
}

// Beautify reformats a block's content using its effective format and
// returns that format.
func (b *Book) Beautify(id string) (string, error) {
	blk, err := b.Get(id)
	if err != nil {
		return "", err
	}
	format := blk.EffectiveFormat()
	out, err := Format(blk.Content, format)
	if err != nil {
		return format, err
	}
	return format, b.SetContent(id, out)
}
