// Package theme holds the card color themes.
package theme

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// DefaultName is the theme used when none or an unknown one is requested.
const DefaultName = "default"

// maxSuggestions bounds the names returned by Suggest.
const maxSuggestions = 3

// Theme describes the colors of one card theme.
type Theme struct {
	Name string

	// TitleGradient paints the cover title text.
	TitleGradient string
	// SolidColor replaces the gradient when gradient text cannot be captured.
	SolidColor string
	// CoverGradient fills the cover card behind the inner panel.
	CoverGradient string
	// Background fills content cards.
	Background string
	// CodeStyle is the chroma style used for highlighted code blocks.
	CodeStyle string
}

var themes = map[string]Theme{
	"default": {
		TitleGradient: "linear-gradient(180deg, #111827 0%, #4B5563 100%)",
		SolidColor:    "#1F2937",
		CoverGradient: "linear-gradient(180deg, #f3f3f3 0%, #f9f9f9 100%)",
		CodeStyle:     "native",
	},
	"playful-geometric": {
		TitleGradient: "linear-gradient(180deg, #7C3AED 0%, #F472B6 100%)",
		SolidColor:    "#7C3AED",
		CoverGradient: "linear-gradient(135deg, #8B5CF6 0%, #F472B6 100%)",
		CodeStyle:     "dracula",
	},
	"neo-brutalism": {
		TitleGradient: "linear-gradient(180deg, #000000 0%, #FF4757 100%)",
		SolidColor:    "#000000",
		CoverGradient: "linear-gradient(135deg, #FF4757 0%, #FECA57 100%)",
		CodeStyle:     "monokai",
	},
	"botanical": {
		TitleGradient: "linear-gradient(180deg, #1F2937 0%, #4A7C59 100%)",
		SolidColor:    "#1F2937",
		CoverGradient: "linear-gradient(135deg, #4A7C59 0%, #8FBC8F 100%)",
		CodeStyle:     "nord",
	},
	"professional": {
		TitleGradient: "linear-gradient(180deg, #1E3A8A 0%, #2563EB 100%)",
		SolidColor:    "#1E3A8A",
		CoverGradient: "linear-gradient(135deg, #2563EB 0%, #3B82F6 100%)",
		CodeStyle:     "native",
	},
	"retro": {
		TitleGradient: "linear-gradient(180deg, #8B4513 0%, #D35400 100%)",
		SolidColor:    "#8B4513",
		CoverGradient: "linear-gradient(135deg, #D35400 0%, #F39C12 100%)",
		CodeStyle:     "gruvbox",
	},
	"terminal": {
		TitleGradient: "linear-gradient(180deg, #39D353 0%, #58A6FF 100%)",
		SolidColor:    "#39D353",
		CoverGradient: "linear-gradient(135deg, #0D1117 0%, #161B22 100%)",
		CodeStyle:     "native",
	},
	"sketch": {
		TitleGradient: "linear-gradient(180deg, #111827 0%, #6B7280 100%)",
		SolidColor:    "#111827",
		CoverGradient: "linear-gradient(135deg, #555555 0%, #888888 100%)",
		CodeStyle:     "monokai",
	},
}

func init() {
	for name, t := range themes {
		t.Name = name
		if t.Background == "" {
			t.Background = "#ffffff"
		}
		themes[name] = t
	}
}

// Lookup returns the named theme. Names are matched case-insensitively and
// unknown names fall back to the default theme; ok reports whether the name
// was known.
func Lookup(name string) (t Theme, ok bool) {
	t, ok = themes[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return themes[DefaultName], false
	}
	return t, true
}

// Names returns every theme name in sorted order.
func Names() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns every theme sorted by name.
func All() []Theme {
	names := Names()
	out := make([]Theme, len(names))
	for i, name := range names {
		out[i] = themes[name]
	}
	return out
}

// Suggest returns up to three known names that fuzzy-match input, best first.
func Suggest(input string) []string {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return nil
	}
	matches := fuzzy.Find(input, Names())
	limit := min(len(matches), maxSuggestions)
	out := make([]string, limit)
	for i := 0; i < limit; i++ {
		out[i] = matches[i].Str
	}
	return out
}
