package memo

import (
	"fmt"
	"strings"
)

// Scope selects which block fields a search term is matched against.
type Scope string

const (
	ScopeAll     Scope = "all"
	ScopeContent Scope = "content"
	ScopeTitle   Scope = "title"
	ScopeTags    Scope = "tags"
)

// Scopes lists the search scopes in cycling order.
var Scopes = []Scope{ScopeAll, ScopeContent, ScopeTitle, ScopeTags}

// ParseScope accepts a scope name; empty means ScopeAll.
func ParseScope(s string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(s))) {
	case "", ScopeAll:
		return ScopeAll, nil
	case ScopeContent:
		return ScopeContent, nil
	case ScopeTitle:
		return ScopeTitle, nil
	case ScopeTags:
		return ScopeTags, nil
	default:
		return ScopeAll, fmt.Errorf("scope must be one of: all, content, title, tags")
	}
}

// Next returns the scope after s in Scopes.
func (s Scope) Next() Scope {
	for i, sc := range Scopes {
		if sc == s {
			return Scopes[(i+1)%len(Scopes)]
		}
	}
	return ScopeAll
}

// Query filters the blocks of a book. While Term is set the tag tab is
// ignored, so a search always covers every block.
type Query struct {
	Tab   string
	Term  string
	Scope Scope
}

// Matches reports whether blk passes q.
func (q Query) Matches(blk Block) bool {
	if q.Term == "" {
		return q.Tab == "" || q.Tab == AllTab || blk.HasTag(q.Tab)
	}
	term := strings.ToLower(q.Term)
	scope := q.Scope
	if scope == "" {
		scope = ScopeAll
	}
	if (scope == ScopeAll || scope == ScopeTitle) && strings.Contains(strings.ToLower(blk.Title), term) {
		return true
	}
	if (scope == ScopeAll || scope == ScopeContent) && strings.Contains(strings.ToLower(blk.Content), term) {
		return true
	}
	if scope == ScopeAll || scope == ScopeTags {
		for _, tag := range blk.Tags {
			if strings.Contains(strings.ToLower(tag), term) {
				return true
			}
		}
	}
	return false
}

// Filter returns the blocks matching q in book order.
func (b *Book) Filter(q Query) []Block {
	out := make([]Block, 0, len(b.Blocks))
	for _, blk := range b.Blocks {
		if q.Matches(blk) {
			out = append(out, blk)
		}
	}
	return out
}
