package memo

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format pretty-prints content as format. Formats without a formatter are
// returned unchanged, as is blank content.
func Format(content, format string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return content, nil
	}
	switch format {
	case "json":
		return formatJSON(content)
	case "yaml":
		return formatYAML(content)
	case "javascript", "typescript", "css":
		return formatBraces(content), nil
	case "html":
		return formatMarkup(content, true)
	case "xml":
		return formatMarkup(content, false)
	case "sql":
		return formatSQL(content), nil
	case "markdown":
		return formatMarkdown(content), nil
	case "python":
		return formatPython(content), nil
	default:
		return content, nil
	}
}

func formatJSON(content string) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(strings.TrimSpace(content)), "", "  "); err != nil {
		return "", fmt.Errorf("invalid JSON: %w", err)
	}
	return buf.String(), nil
}

// formatYAML re-encodes every document through yaml.Node so key order and
// comments survive.
func formatYAML(content string) (string, error) {
	dec := yaml.NewDecoder(strings.NewReader(content))
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("invalid YAML: %w", err)
		}
		if err := enc.Encode(&doc); err != nil {
			return "", fmt.Errorf("failed to encode YAML: %w", err)
		}
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to encode YAML: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

// formatBraces re-indents C-like code by bracket depth. Brackets inside
// string literals and line comments are ignored.
func formatBraces(content string) string {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	depth := 0
	for _, line := range lines {
		t := strings.TrimSpace(line)
		if t == "" {
			out = append(out, "")
			continue
		}
		indent := max(depth-leadingClosers(t), 0)
		out = append(out, strings.Repeat("  ", indent)+t)
		depth = max(depth+bracketDelta(t), 0)
	}
	return strings.Trim(strings.Join(out, "\n"), "\n")
}

func leadingClosers(s string) int {
	n := 0
	for _, r := range s {
		if !strings.ContainsRune("})]", r) {
			break
		}
		n++
	}
	return n
}

func bracketDelta(s string) int {
	delta := 0
	var quote rune
	escaped := false
	prev := rune(0)
	for _, r := range s {
		switch {
		case escaped:
			escaped = false
		case quote != 0:
			if r == '\\' {
				escaped = true
			} else if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'' || r == '`':
			quote = r
		case r == '/' && prev == '/':
			return delta
		case r == '{' || r == '(' || r == '[':
			delta++
		case r == '}' || r == ')' || r == ']':
			delta--
		}
		prev = r
	}
	return delta
}

// formatMarkup re-indents XML, or HTML when html is set (unclosed void
// elements and named entities allowed).
func formatMarkup(content string, html bool) (string, error) {
	dec := xml.NewDecoder(strings.NewReader(content))
	if html {
		dec.Strict = false
		dec.AutoClose = xml.HTMLAutoClose
		dec.Entity = xml.HTMLEntity
	}

	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("invalid markup: %w", err)
		}
		if text, ok := tok.(xml.CharData); ok {
			trimmed := bytes.TrimSpace(text)
			if len(trimmed) == 0 {
				continue
			}
			tok = xml.CharData(trimmed)
		}
		if err := enc.EncodeToken(xml.CopyToken(tok)); err != nil {
			return "", fmt.Errorf("invalid markup: %w", err)
		}
	}
	if err := enc.Flush(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var sqlKeywords = regexp.MustCompile(`(?i)\b(GROUP\s+BY|ORDER\s+BY|LEFT\s+JOIN|RIGHT\s+JOIN|INNER\s+JOIN|INSERT\s+INTO|DELETE\s+FROM|CREATE\s+TABLE|ALTER\s+TABLE|DROP\s+TABLE|SELECT|FROM|WHERE|HAVING|JOIN|LIMIT|OFFSET|VALUES|UPDATE|SET)\b`)

// formatSQL puts each clause keyword on its own upper-cased line with the
// clause body indented below it.
func formatSQL(content string) string {
	var lines []string
	addBody := func(s string, indent string) {
		if body := strings.Join(strings.Fields(s), " "); body != "" {
			lines = append(lines, indent+body)
		}
	}

	matches := sqlKeywords.FindAllStringIndex(content, -1)
	last := 0
	for i, m := range matches {
		indent := "  "
		if i == 0 {
			indent = ""
		}
		addBody(content[last:m[0]], indent)
		keyword := strings.ToUpper(strings.Join(strings.Fields(content[m[0]:m[1]]), " "))
		lines = append(lines, keyword)
		last = m[1]
	}
	indent := "  "
	if len(matches) == 0 {
		indent = ""
	}
	addBody(content[last:], indent)
	return strings.Join(lines, "\n")
}

var (
	mdHeading  = regexp.MustCompile(`^(#+)([^\s#])`)
	mdListItem = regexp.MustCompile(`^([-*]|\d+\.)`)
)

// formatMarkdown adds the space after heading markers and a blank line
// before headings and lists that directly follow a paragraph.
func formatMarkdown(content string) string {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = mdHeading.ReplaceAllString(line, "$1 $2")
		if n := len(out); n > 0 && out[n-1] != "" {
			prev := out[n-1]
			heading := strings.HasPrefix(line, "#") && !strings.HasPrefix(prev, "#")
			list := mdListItem.MatchString(line) && !mdListItem.MatchString(prev)
			if heading || list {
				out = append(out, "")
			}
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

var pythonDedent = map[string]bool{"else:": true, "elif:": true, "except:": true, "finally:": true}

// formatPython re-indents by block openers with four spaces. It cannot
// know where a block ends without a dedent keyword, so it only fixes
// obviously shallow lines.
func formatPython(content string) string {
	lines := strings.Split(content, "\n")
	out := make([]string, 0, len(lines))
	level := 0
	for _, line := range lines {
		t := strings.TrimSpace(line)
		if t == "" {
			out = append(out, "")
			continue
		}
		if strings.HasPrefix(t, "}") || strings.HasPrefix(t, ")") || strings.HasPrefix(t, "]") || pythonDedent[t] {
			level = max(level-1, 0)
		}
		out = append(out, strings.Repeat("    ", level)+t)
		if strings.HasSuffix(t, ":") || strings.HasSuffix(t, "{") || strings.HasSuffix(t, "(") || strings.HasSuffix(t, "[") {
			level++
		}
	}
	return strings.Join(out, "\n")
}
