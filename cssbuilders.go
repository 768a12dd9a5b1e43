package md2card

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/alnah/go-md2card/internal/theme"
)

// Card geometry ratios shared by every template set.
const (
	coverInnerWidthRatio  = 0.88
	coverInnerHeightRatio = 0.91
	cardInnerPadding      = 40
)

// Tag pill gradient stops.
const (
	tagGradientFrom = "#6366f1"
	tagGradientTo   = "#8b5cf6"
)

// styleParams holds everything that varies the generated stylesheet.
type styleParams struct {
	size       CardSize
	theme      theme.Theme
	background *Background
}

// buildStylesheet concatenates the card stylesheet in cascade order:
// geometry variables, base style, theme rules, custom background, code
// highlighting, then user CSS.
func buildStylesheet(base string, p styleParams, userCSS string) string {
	var buf strings.Builder
	buf.WriteString(buildRootVarsCSS(p.size))
	buf.WriteString(base)
	buf.WriteString(buildThemeCSS(p.theme))
	buf.WriteString(buildBackgroundCSS(p.background))
	buf.WriteString(buildHighlightCSS(p.theme.CodeStyle))
	if userCSS != "" {
		buf.WriteString("\n/* User CSS */\n")
		buf.WriteString(userCSS)
	}
	return buf.String()
}

// buildRootVarsCSS sets the card geometry custom properties.
func buildRootVarsCSS(s CardSize) string {
	return fmt.Sprintf(`:root {
  --card-width: %dpx;
  --card-height: %dpx;
  --card-inner-padding: %dpx;
  --cover-inner-width: %dpx;
  --cover-inner-height: %dpx;
}
`, s.Width, s.Height, cardInnerPadding,
		int(float64(s.Width)*coverInnerWidthRatio),
		int(float64(s.Height)*coverInnerHeightRatio))
}

// buildThemeCSS paints covers, content cards, titles and tag pills for one
// theme. The solid title color applies once the rasterizer switches the page
// to fallback mode.
func buildThemeCSS(t theme.Theme) string {
	scope := ".theme-" + t.Name
	return fmt.Sprintf(`
/* Theme: %[1]s */
%[2]s .cover-card { background: %[3]s; }
%[2]s .content-card { background: %[4]s; }
%[2]s .cover-title {
  background: %[5]s;
  -webkit-background-clip: text;
  background-clip: text;
  -webkit-text-fill-color: transparent;
}
%[2]s.raster-fallback .cover-title {
  background: none;
  -webkit-text-fill-color: currentColor;
  color: %[6]s;
}
%[2]s .tag { background: linear-gradient(135deg, %[7]s 0%%, %[8]s 100%%); }
`, t.Name, scope, t.CoverGradient, t.Background, t.TitleGradient, t.SolidColor, tagGradientFrom, tagGradientTo)
}

// buildBackgroundCSS overrides both card kinds with a custom gradient.
// Colors are validated by Background.Validate before reaching here.
func buildBackgroundCSS(bg *Background) string {
	if bg == nil {
		return ""
	}
	gradient := fmt.Sprintf("linear-gradient(%s, %s 0%%, %s 100%%)", bg.direction(), bg.Color1, bg.Color2)
	return fmt.Sprintf(`
/* Custom background */
.cover-card, .content-card { background: %s !important; }
`, gradient)
}

// buildHighlightCSS renders the chroma class stylesheet for a style name.
// Unknown names fall back to chroma's default style.
func buildHighlightCSS(styleName string) string {
	var buf strings.Builder
	buf.WriteString("\n/* Code highlighting: " + styleName + " */\n")
	formatter := html.New(html.WithClasses(true))
	if err := formatter.WriteCSS(&buf, styles.Get(styleName)); err != nil {
		return ""
	}
	return buf.String()
}

// buildTransparentCSS removes the page background and card shadows. The
// rasterizer adds it to the page for transparent captures only; the exported
// document keeps its regular look.
func buildTransparentCSS() string {
	return `
/* Transparent export */
html, body { background: transparent !important; }
.cover-card, .content-card { box-shadow: none !important; }
.card-label { display: none !important; }
`
}
