package memo

import (
	"encoding/json"
	"regexp"
	"strings"
)

const (
	FormatAuto      = "auto"
	FormatPlaintext = "plaintext"
)

// FormatOption is a selectable block format.
type FormatOption struct {
	Value string
	Label string
}

// Formats lists every format a block may be set to, in menu order.
var Formats = []FormatOption{
	{FormatAuto, "Auto detect"},
	{"json", "JSON"},
	{"yaml", "YAML"},
	{"javascript", "JavaScript"},
	{"typescript", "TypeScript"},
	{"html", "HTML"},
	{"css", "CSS"},
	{"sql", "SQL"},
	{"markdown", "Markdown"},
	{"xml", "XML"},
	{"python", "Python"},
	{"java", "Java"},
	{"csharp", "C#"},
	{"cpp", "C++"},
	{"go", "Go"},
	{"rust", "Rust"},
	{"php", "PHP"},
	{"ruby", "Ruby"},
	{"swift", "Swift"},
	{"kotlin", "Kotlin"},
	{FormatPlaintext, "Plain text"},
}

// IsKnownFormat reports whether format is listed in Formats.
func IsKnownFormat(format string) bool {
	for _, f := range Formats {
		if f.Value == format {
			return true
		}
	}
	return false
}

// FormatLabel returns the display name for format.
func FormatLabel(format string) string {
	for _, f := range Formats {
		if f.Value == format {
			return f.Label
		}
	}
	return strings.ToUpper(format)
}

type detector struct {
	format string
	match  []*regexp.Regexp
	reject *regexp.Regexp
}

func (d detector) matches(s string) bool {
	for _, re := range d.match {
		if !re.MatchString(s) {
			return false
		}
	}
	return d.reject == nil || !d.reject.MatchString(s)
}

// detectors run in order after the JSON check; the first match wins.
var detectors = []detector{
	{
		format: "yaml",
		match: []*regexp.Regexp{
			regexp.MustCompile(`^[\w\s]+:[\s\w]`),
			regexp.MustCompile(`:\s*[\w\s.]+(\n|$)`),
		},
	},
	{
		format: "javascript",
		match: []*regexp.Regexp{
			regexp.MustCompile(`(let|const|function|=>|\bif\s*\(|\bfor\s*\(|console\.log|document\.|window\.)`),
		},
		reject: regexp.MustCompile(`(^\s*<|^\s*#include|^\s*import\s+[\w.]+;|^\s*package\s+[\w.]+;)`),
	},
	{
		format: "typescript",
		match: []*regexp.Regexp{
			regexp.MustCompile(`(interface|type|:\s*(string|number|boolean)|<[\w<>]+>)`),
		},
	},
	{
		format: "html",
		match: []*regexp.Regexp{
			regexp.MustCompile(`(?i)</?[a-z][\s\S]*>`),
			regexp.MustCompile(`<(html|body|div|span|h1|p|a|img)[\s>]`),
		},
	},
	{
		format: "css",
		match: []*regexp.Regexp{
			regexp.MustCompile(`([.#][\w-]+\s*\{|body\s*\{|@media|@keyframes|margin:|padding:|color:|background:)`),
			regexp.MustCompile(`\{[\s\S]*\}`),
		},
	},
	{
		format: "sql",
		match: []*regexp.Regexp{
			regexp.MustCompile(`(?i)(SELECT|INSERT|UPDATE|DELETE|CREATE|ALTER)[\s\S]*(FROM|INTO|TABLE|DATABASE)`),
		},
	},
	{
		format: "shell",
		match: []*regexp.Regexp{
			regexp.MustCompile(`(^|\n\s*)(#!/bin/(ba)?sh|apt|sudo|echo|export|cd|ls|grep|mkdir|rm|cp|chmod|chown|if\s+\[|for\s+\w+\s+in|while\s+\[|function\s+\w+\(\)|source|\./|\$\{|\$\(|&&|\|\|)`),
		},
	},
	{
		format: "python",
		match: []*regexp.Regexp{
			regexp.MustCompile(`(def |import |from .+ import|class .+:|if __name__ == ['"]__main__['"]|print\()`),
		},
		reject: regexp.MustCompile(`\{|\}|;$`),
	},
	{
		format: "java",
		match: []*regexp.Regexp{
			regexp.MustCompile(`(public\s+(class|interface)|import\s+java\.|package\s+[\w.]+;|@Override|class\s+\w+\s+(\{|extends))`),
		},
	},
	{
		format: "cpp",
		match: []*regexp.Regexp{
			regexp.MustCompile(`(#include\s*<[\w.]+>|using namespace|std::|int main\(\))`),
		},
	},
	{
		format: "go",
		match: []*regexp.Regexp{
			regexp.MustCompile(`(package\s+[\w.]+|func\s+\w+\(|import\s+\(|type\s+\w+\s+struct)`),
		},
	},
	{
		format: "rust",
		match: []*regexp.Regexp{
			regexp.MustCompile(`(fn\s+\w+|let\s+mut|impl\s+|use\s+[\w:]+;|->\s*[\w:<>]+)`),
			regexp.MustCompile(`[\w\s]+\{\s*$`),
		},
	},
	{
		format: "php",
		match: []*regexp.Regexp{
			regexp.MustCompile(`(<\?php|\$\w+\s*=|function\s+\w+\s*\(|namespace\s+[\w\\]+;|use\s+[\w\\]+;)`),
		},
	},
	{
		format: "groovy",
		match: []*regexp.Regexp{
			regexp.MustCompile(`(def\s+\w+\s*=|class\s+\w+|import\s+[\w.]+|@\w+)`),
		},
		reject: regexp.MustCompile(`<\?php`),
	},
}

// DetectFormat guesses the language of content. The checks are ordered
// heuristics; anything unrecognised is plaintext.
func DetectFormat(content string) string {
	s := strings.TrimSpace(content)
	if s == "" {
		return FormatPlaintext
	}
	if json.Valid([]byte(s)) {
		return "json"
	}
	for _, d := range detectors {
		if d.matches(s) {
			return d.format
		}
	}
	return FormatPlaintext
}

// CanBeautify reports whether Beautify has anything to work with: content
// must be non-blank and, for auto blocks, recognisable.
func CanBeautify(content, format string) bool {
	if strings.TrimSpace(content) == "" {
		return false
	}
	if format == FormatAuto || format == "" {
		return DetectFormat(content) != FormatPlaintext
	}
	return true
}
