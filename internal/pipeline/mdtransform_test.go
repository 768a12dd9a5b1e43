package pipeline

import (
	"reflect"
	"strings"
	"testing"
)

// Notes:
// - ExtractFrontmatter never fails; malformed blocks fall through to body text.
// - SplitCards separators need a preceding newline, so a leading "---" with no
//   closing fence stays inside the first piece.

// ---------------------------------------------------------------------------
// ExtractFrontmatter
// ---------------------------------------------------------------------------

func TestExtractFrontmatter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		wantMeta Metadata
		wantBody string
	}{
		{
			name:     "no frontmatter",
			input:    "# Hello\n\nworld",
			wantMeta: Metadata{},
			wantBody: "# Hello\n\nworld",
		},
		{
			name:     "simple block",
			input:    "---\ntitle: Hi\nemoji: 🎉\n---\nBody text",
			wantMeta: Metadata{"title": "Hi", "emoji": "🎉"},
			wantBody: "Body text",
		},
		{
			name:     "longer fences accepted",
			input:    "-----\ntitle: Long\n-----\n\nBody",
			wantMeta: Metadata{"title": "Long"},
			wantBody: "Body",
		},
		{
			name:     "CRLF line endings",
			input:    "---\r\ntitle: Win\r\n---\r\nBody\r\nmore",
			wantMeta: Metadata{"title": "Win"},
			wantBody: "Body\nmore",
		},
		{
			name:     "empty block",
			input:    "---\n---\nbody",
			wantMeta: Metadata{},
			wantBody: "body",
		},
		{
			name:     "empty block before separated cards",
			input:    "---\n---\nfirst\n---\nsecond",
			wantMeta: Metadata{},
			wantBody: "first\n---\nsecond",
		},
		{
			name:     "unterminated block is body",
			input:    "---\ntitle: Hi\nno closing fence",
			wantMeta: Metadata{},
			wantBody: "---\ntitle: Hi\nno closing fence",
		},
		{
			name:     "closing fence without trailing newline is body",
			input:    "---\ntitle: Hi\n---",
			wantMeta: Metadata{},
			wantBody: "---\ntitle: Hi\n---",
		},
		{
			name:     "block not at start is ignored",
			input:    "intro\n---\ntitle: Hi\n---\nBody",
			wantMeta: Metadata{},
			wantBody: "intro\n---\ntitle: Hi\n---\nBody",
		},
		{
			name:     "body is trimmed",
			input:    "---\ntitle: T\n---\n\n\n  Body  \n\n",
			wantMeta: Metadata{"title": "T"},
			wantBody: "Body",
		},
		{
			name:     "empty input",
			input:    "",
			wantMeta: Metadata{},
			wantBody: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ExtractFrontmatter(tt.input)
			if !reflect.DeepEqual(got.Metadata, tt.wantMeta) {
				t.Errorf("ExtractFrontmatter(%q).Metadata = %v, want %v", tt.input, got.Metadata, tt.wantMeta)
			}
			if got.Body != tt.wantBody {
				t.Errorf("ExtractFrontmatter(%q).Body = %q, want %q", tt.input, got.Body, tt.wantBody)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// ParseKeyValues
// ---------------------------------------------------------------------------

func TestParseKeyValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
		want    Metadata
	}{
		{
			name:    "empty payload",
			payload: "",
			want:    Metadata{},
		},
		{
			name:    "double quotes stripped",
			payload: `title: "Quoted"`,
			want:    Metadata{"title": "Quoted"},
		},
		{
			name:    "single quotes stripped",
			payload: `title: 'Quoted'`,
			want:    Metadata{"title": "Quoted"},
		},
		{
			name:    "mismatched quotes kept",
			payload: `title: "Half'`,
			want:    Metadata{"title": `"Half'`},
		},
		{
			name:    "only one quote layer stripped",
			payload: `title: ""inner""`,
			want:    Metadata{"title": `"inner"`},
		},
		{
			name:    "comments and blank lines skipped",
			payload: "# comment\n\ntitle: T\n   \n# other",
			want:    Metadata{"title": "T"},
		},
		{
			name:    "lines without key skipped",
			payload: "just text\n: no key\ntitle: T",
			want:    Metadata{"title": "T"},
		},
		{
			name:    "value keeps inner colons",
			payload: "subtitle: a: b: c",
			want:    Metadata{"subtitle": "a: b: c"},
		},
		{
			name:    "later duplicate wins",
			payload: "title: one\ntitle: two",
			want:    Metadata{"title": "two"},
		},
		{
			name:    "empty value kept",
			payload: "title:",
			want:    Metadata{"title": ""},
		},
		{
			name:    "unknown keys kept",
			payload: "author: me",
			want:    Metadata{"author": "me"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ParseKeyValues(tt.payload)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseKeyValues(%q) = %v, want %v", tt.payload, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// SplitCards
// ---------------------------------------------------------------------------

func TestSplitCards(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "empty body",
			input: "",
			want:  []string{},
		},
		{
			name:  "single card",
			input: "only one",
			want:  []string{"only one"},
		},
		{
			name:  "two cards",
			input: "first\n---\nsecond",
			want:  []string{"first", "second"},
		},
		{
			name:  "long separator",
			input: "first\n--------\nsecond",
			want:  []string{"first", "second"},
		},
		{
			name:  "empty pieces dropped",
			input: "first\n---\n\n---\n   \n---\nsecond",
			want:  []string{"first", "second"},
		},
		{
			name:  "two hyphens do not split",
			input: "first\n--\nsecond",
			want:  []string{"first\n--\nsecond"},
		},
		{
			name:  "CRLF separators",
			input: "first\r\n---\r\nsecond",
			want:  []string{"first", "second"},
		},
		{
			name:  "only separators",
			input: "\n---\n---\n",
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := SplitCards(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitCards(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSplitCards_PiecesAreTrimmedAndNonEmpty(t *testing.T) {
	t.Parallel()

	input := "  a \n---\n\n b\n\n---\n---\n c  "
	for i, piece := range SplitCards(input) {
		if piece == "" {
			t.Errorf("piece %d is empty", i)
		}
		if piece != strings.TrimSpace(piece) {
			t.Errorf("piece %d = %q, not trimmed", i, piece)
		}
	}
}

// ---------------------------------------------------------------------------
// normalizeLineEndings
// ---------------------------------------------------------------------------

func TestNormalizeLineEndings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"a\r\nb", "a\nb"},
		{"a\rb", "a\nb"},
		{"a\nb", "a\nb"},
		{"a\r\n\r\nb", "a\n\nb"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := normalizeLineEndings(tt.input); got != tt.want {
			t.Errorf("normalizeLineEndings(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
