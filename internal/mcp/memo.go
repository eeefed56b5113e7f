package mcp

import (
	"context"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/frogmemo/frogmemo/internal/memo"
)

func (s *Server) handleMemoList(_ context.Context, _ *mcpsdk.CallToolRequest, args MemoListInput) (*mcpsdk.CallToolResult, MemoListOutput, error) {
	book, err := memo.Load(s.daemon)
	if err != nil {
		return nil, MemoListOutput{}, err
	}
	return nil, MemoListOutput{
		Blocks:        book.Filter(memo.Query{Tab: strings.TrimSpace(args.Tag)}),
		AvailableTags: book.AvailableTags,
	}, nil
}

func (s *Server) handleMemoSearch(_ context.Context, _ *mcpsdk.CallToolRequest, args MemoSearchInput) (*mcpsdk.CallToolResult, MemoSearchOutput, error) {
	if strings.TrimSpace(args.Query) == "" {
		return nil, MemoSearchOutput{}, fmt.Errorf("query is required")
	}
	scope, err := memo.ParseScope(args.Scope)
	if err != nil {
		return nil, MemoSearchOutput{}, err
	}
	book, err := memo.Load(s.daemon)
	if err != nil {
		return nil, MemoSearchOutput{}, err
	}
	blocks := book.Filter(memo.Query{Term: args.Query, Scope: scope})
	return nil, MemoSearchOutput{Scope: string(scope), Count: len(blocks), Blocks: blocks}, nil
}

func (s *Server) handleMemoFormat(_ context.Context, _ *mcpsdk.CallToolRequest, args MemoFormatInput) (*mcpsdk.CallToolResult, MemoFormatOutput, error) {
	if args.Format != "" && !memo.IsKnownFormat(args.Format) {
		return nil, MemoFormatOutput{}, fmt.Errorf("unknown format %q", args.Format)
	}

	if args.ID == "" {
		if strings.TrimSpace(args.Content) == "" {
			return nil, MemoFormatOutput{}, fmt.Errorf("id or content is required")
		}
		format := resolveFormat(args.Format, args.Content)
		out, err := memo.Format(args.Content, format)
		if err != nil {
			return nil, MemoFormatOutput{}, err
		}
		return nil, MemoFormatOutput{Format: format, Content: out, Changed: out != args.Content}, nil
	}

	book, err := memo.Load(s.daemon)
	if err != nil {
		return nil, MemoFormatOutput{}, err
	}
	blk, err := book.Get(args.ID)
	if err != nil {
		return nil, MemoFormatOutput{}, err
	}
	format := blk.EffectiveFormat()
	if args.Format != "" {
		format = resolveFormat(args.Format, blk.Content)
	}
	out, err := memo.Format(blk.Content, format)
	if err != nil {
		return nil, MemoFormatOutput{}, err
	}

	res := MemoFormatOutput{ID: blk.ID, Format: format, Content: out, Changed: out != blk.Content}
	if res.Changed {
		if err := book.SetContent(blk.ID, out); err != nil {
			return nil, MemoFormatOutput{}, err
		}
		if err := memo.Save(s.daemon, book); err != nil {
			return nil, MemoFormatOutput{}, fmt.Errorf("failed to save memo: %w", err)
		}
		res.Saved = true
	}
	return nil, res, nil
}

func resolveFormat(format, content string) string {
	if format == "" || format == memo.FormatAuto {
		return memo.DetectFormat(content)
	}
	return format
}
