package pipeline

import (
	"regexp"
	"strings"
)

// Precompiled regex patterns for performance.
var (
	// Line ending normalization
	crlfOrCR = regexp.MustCompile(`\r\n?`)

	// Leading frontmatter block: a fence of three or more hyphens, an optional
	// payload of whole lines, then the first closing fence followed by a newline.
	frontmatterPattern = regexp.MustCompile(`\A-{3,}[ \t]*\n((?s:.*?)\n)??-{3,}[ \t]*\n`)

	// key: value line inside a frontmatter payload
	keyValuePattern = regexp.MustCompile(`^(\w+):\s*(.*)$`)

	// Card separator: a newline followed by three or more hyphens
	cardSeparator = regexp.MustCompile(`\n-{3,}`)
)

// Metadata holds the flat key/value pairs read from a frontmatter block.
type Metadata map[string]string

// Recognized metadata keys.
const (
	MetaTitle    = "title"
	MetaSubtitle = "subtitle"
	MetaEmoji    = "emoji"
)

// Document is a raw markdown document split into metadata and body.
type Document struct {
	Metadata Metadata
	Body     string
}

// ExtractFrontmatter separates a leading frontmatter block from the body.
// Only a block at the very start of the input counts. An unterminated block
// is treated as ordinary body text. The body is always trimmed and this
// function never fails: malformed input degrades to empty metadata.
func ExtractFrontmatter(raw string) Document {
	raw = normalizeLineEndings(raw)

	m := frontmatterPattern.FindStringSubmatchIndex(raw)
	if m == nil {
		return Document{Metadata: Metadata{}, Body: strings.TrimSpace(raw)}
	}

	var payload string
	if m[2] >= 0 {
		payload = strings.TrimSuffix(raw[m[2]:m[3]], "\n")
	}
	return Document{
		Metadata: ParseKeyValues(payload),
		Body:     strings.TrimSpace(raw[m[1]:]),
	}
}

// ParseKeyValues reads a flat "key: value" payload.
// Blank lines, lines starting with '#' and lines without a key are skipped.
// One layer of matching single or double quotes is stripped from values.
// A later duplicate key overwrites an earlier one.
func ParseKeyValues(payload string) Metadata {
	meta := Metadata{}
	for _, line := range strings.Split(normalizeLineEndings(payload), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		m := keyValuePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		meta[m[1]] = unquote(strings.TrimSpace(m[2]))
	}
	return meta
}

// unquote strips one layer of matching surrounding quotes.
func unquote(v string) string {
	if len(v) < 2 {
		return v
	}
	first, last := v[0], v[len(v)-1]
	if (first == '"' || first == '\'') && first == last {
		return v[1 : len(v)-1]
	}
	return v
}

// SplitCards splits a document body into card contents on separator lines.
// Pieces are trimmed and empty ones dropped; order is preserved.
func SplitCards(body string) []string {
	parts := cardSeparator.Split(normalizeLineEndings(body), -1)
	cards := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			cards = append(cards, p)
		}
	}
	return cards
}

// normalizeLineEndings converts \r\n and \r to \n.
func normalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}
