package md2card

import (
	"fmt"
	"regexp"

	"github.com/alnah/go-md2card/internal/pipeline"
)

// Card geometry bounds and defaults in CSS pixels.
const (
	DefaultCardWidth  = 360
	DefaultCardHeight = 480
	MinCardSide       = 100
	MaxCardSide       = 4096
)

// Export scale bounds. Scale is the device scale factor used for PNG capture.
const (
	DefaultScale = 2.0
	MinScale     = 0.5
	MaxScale     = 4.0
)

// Default custom background, used when only the direction is omitted.
const DefaultBackgroundDirection = "135deg"

var (
	// colorPattern accepts hex colors, CSS color functions with plain numeric
	// arguments, and color keywords. Anything else could escape the rule.
	colorPattern = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|(rgb|rgba|hsl|hsla)\([0-9.,%\s]+\)|[a-zA-Z]{3,20})$`)

	directionPattern = regexp.MustCompile(`^(to (top|bottom|left|right)( (left|right))?|-?\d{1,3}deg)$`)
)

// Card is one rendered card of a deck.
type Card = pipeline.Card

// CardKind distinguishes the cover from numbered content cards.
type CardKind = pipeline.CardKind

// Card kinds.
const (
	KindCover   = pipeline.KindCover
	KindContent = pipeline.KindContent
)

// Metadata is the flat key/value frontmatter of a document.
type Metadata = pipeline.Metadata

// ImageWarning reports an image reference that could not be resolved or a
// remote image that could not be inlined. Warnings never fail a conversion.
type ImageWarning = pipeline.ImageError

// Input contains conversion parameters.
type Input struct {
	Markdown    string      // Required, not blank: card Markdown with optional frontmatter
	Theme       string      // Optional: theme name, unknown names fall back to "default"
	Size        *CardSize   // Optional: nil uses 360x480
	Background  *Background // Optional: custom gradient for every card
	CSS         string      // Optional: appended after the generated stylesheet
	Scale       float64     // Optional: PNG device scale factor, 0 uses 2
	Transparent bool        // Optional: capture PNGs without page background or shadows
	HTMLOnly    bool        // Optional: skip PNG export
}

// CardSize sets the card dimensions in CSS pixels. Zero fields use defaults.
type CardSize struct {
	Width  int
	Height int
}

// Resolved returns the size with defaults applied. A nil size is the default.
func (s *CardSize) Resolved() CardSize {
	out := CardSize{Width: DefaultCardWidth, Height: DefaultCardHeight}
	if s == nil {
		return out
	}
	if s.Width != 0 {
		out.Width = s.Width
	}
	if s.Height != 0 {
		out.Height = s.Height
	}
	return out
}

// Validate checks the card size. A nil size is valid.
func (s *CardSize) Validate() error {
	if s == nil {
		return nil
	}
	for _, side := range []struct {
		name string
		v    int
	}{{"width", s.Width}, {"height", s.Height}} {
		if side.v != 0 && (side.v < MinCardSide || side.v > MaxCardSide) {
			return fmt.Errorf("%w: %s %d must be between %d and %d", ErrInvalidCardSize, side.name, side.v, MinCardSide, MaxCardSide)
		}
	}
	return nil
}

// Background is a two-stop linear gradient applied to every card.
type Background struct {
	Color1    string // first stop, e.g. "#6366f1"
	Color2    string // second stop, e.g. "#8b5cf6"
	Direction string // "to right", "135deg"; empty uses 135deg
}

// Validate checks colors and direction. A nil background is valid.
func (b *Background) Validate() error {
	if b == nil {
		return nil
	}
	if !colorPattern.MatchString(b.Color1) {
		return fmt.Errorf("%w: color1 %q", ErrInvalidBackground, b.Color1)
	}
	if !colorPattern.MatchString(b.Color2) {
		return fmt.Errorf("%w: color2 %q", ErrInvalidBackground, b.Color2)
	}
	if b.Direction != "" && !directionPattern.MatchString(b.Direction) {
		return fmt.Errorf("%w: direction %q", ErrInvalidBackground, b.Direction)
	}
	return nil
}

func (b *Background) direction() string {
	if b.Direction == "" {
		return DefaultBackgroundDirection
	}
	return b.Direction
}

// resolveScale applies the default scale and validates bounds.
func resolveScale(scale float64) (float64, error) {
	if scale == 0 {
		return DefaultScale, nil
	}
	if scale < MinScale || scale > MaxScale {
		return 0, fmt.Errorf("%w: %.2f must be between %.1f and %.1f", ErrInvalidScale, scale, MinScale, MaxScale)
	}
	return scale, nil
}

// CardImage is the PNG export of one card.
type CardImage struct {
	Label    string // "cover" or "card N"
	Filename string // "cover.png" or "card_N.png"
	PNG      []byte // nil when Err is set
	Err      error  // capture failure after the fallback attempt
}

// ConvertResult contains the output of a conversion.
type ConvertResult struct {
	Metadata Metadata
	Cards    []Card
	HTML     []byte         // self-contained export document
	Images   []CardImage    // one per card, empty when Input.HTMLOnly
	Warnings []ImageWarning // non-fatal image problems
}

// FailedImages returns the cards whose PNG export failed.
func (r *ConvertResult) FailedImages() []CardImage {
	var failed []CardImage
	for _, img := range r.Images {
		if img.Err != nil {
			failed = append(failed, img)
		}
	}
	return failed
}

// imageFilename names a card's PNG file.
func imageFilename(c Card) string {
	if c.Kind == KindCover {
		return "cover.png"
	}
	return fmt.Sprintf("card_%d.png", c.PageNumber)
}
