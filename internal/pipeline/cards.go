package pipeline

import (
	"strconv"
	"unicode/utf8"
)

// Cover defaults and limits.
const (
	DefaultCoverEmoji = "📝"
	DefaultCoverTitle = "Title"

	// MaxCoverRunes bounds the emoji, title and subtitle shown on a cover.
	MaxCoverRunes = 20
)

// CardKind distinguishes the cover from numbered content cards.
type CardKind int

const (
	KindContent CardKind = iota
	KindCover
)

// String returns the lowercase kind name.
func (k CardKind) String() string {
	if k == KindCover {
		return "cover"
	}
	return "content"
}

// Card is the presentation model of a single rendered card.
type Card struct {
	Kind CardKind

	// Cover fields.
	Emoji         string
	Title         string
	Subtitle      string
	TitleFontSize int

	// Content fields.
	HTML       string
	Tags       []string
	PageNumber int // 1-based
	TotalPages int
}

// Label names the card in exports: "cover" or "card N".
func (c Card) Label() string {
	if c.Kind == KindCover {
		return "cover"
	}
	return "card " + strconv.Itoa(c.PageNumber)
}

// PageIndicator returns "N/M", or "" when the deck has a single content card.
func (c Card) PageIndicator() string {
	if c.Kind == KindCover || c.TotalPages <= 1 {
		return ""
	}
	return strconv.Itoa(c.PageNumber) + "/" + strconv.Itoa(c.TotalPages)
}

// TitleFontSize returns the cover title font size in pixels for a title of n runes.
func TitleFontSize(n int) int {
	switch {
	case n <= 6:
		return 52
	case n <= 10:
		return 46
	case n <= 18:
		return 36
	default:
		return 28
	}
}

// HasCover reports whether metadata asks for a cover card.
func HasCover(meta Metadata) bool {
	return meta[MetaTitle] != "" || meta[MetaEmoji] != ""
}

// BuildCover derives the cover card from metadata.
// Callers decide whether a cover exists via HasCover.
func BuildCover(meta Metadata) Card {
	emoji := meta[MetaEmoji]
	if emoji == "" {
		emoji = DefaultCoverEmoji
	}
	title := meta[MetaTitle]
	if title == "" {
		title = DefaultCoverTitle
	}
	title = clipRunes(title, MaxCoverRunes)

	return Card{
		Kind:          KindCover,
		Emoji:         clipRunes(emoji, MaxCoverRunes),
		Title:         title,
		Subtitle:      clipRunes(meta[MetaSubtitle], MaxCoverRunes),
		TitleFontSize: TitleFontSize(utf8.RuneCountInString(title)),
	}
}

// BuildDeck assembles the ordered card list: an optional cover followed by
// one numbered content card per transformed segment.
func BuildDeck(meta Metadata, contents []Content) []Card {
	cards := make([]Card, 0, len(contents)+1)
	if HasCover(meta) {
		cards = append(cards, BuildCover(meta))
	}
	total := len(contents)
	for i, c := range contents {
		cards = append(cards, Card{
			Kind:       KindContent,
			HTML:       c.HTML,
			Tags:       c.Tags,
			PageNumber: i + 1,
			TotalPages: total,
		})
	}
	return cards
}

// clipRunes truncates s to at most n code points.
func clipRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
