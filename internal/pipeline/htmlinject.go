package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"strings"
)

// Sentinel errors for template rendering.
var (
	ErrCoverRender    = errors.New("cover template rendering failed")
	ErrContentRender  = errors.New("content card template rendering failed")
	ErrDocumentRender = errors.New("document template rendering failed")
)

// CSSInjector defines the contract for CSS injection into HTML.
type CSSInjector interface {
	InjectCSS(ctx context.Context, htmlContent, cssContent string) string
}

// CSSInjection injects CSS as a <style> block into HTML content.
type CSSInjection struct{}

// InjectCSS inserts a <style> block into HTML content.
// Tries </head> first, then <body>, then prepends to the HTML.
// CSS content is sanitized to prevent injection attacks.
func (s *CSSInjection) InjectCSS(ctx context.Context, htmlContent, cssContent string) string {
	if cssContent == "" {
		return htmlContent
	}

	if ctx.Err() != nil {
		return htmlContent
	}

	styleBlock := "<style>" + sanitizeCSS(cssContent) + "</style>"
	lowerHTML := strings.ToLower(htmlContent)

	if idx := strings.Index(lowerHTML, "</head>"); idx != -1 {
		return htmlContent[:idx] + styleBlock + htmlContent[idx:]
	}

	if idx := strings.Index(lowerHTML, "<body"); idx != -1 {
		// Find the closing > of <body...>
		closeIdx := strings.Index(htmlContent[idx:], ">")
		if closeIdx != -1 {
			insertPos := idx + closeIdx + 1
			return htmlContent[:insertPos] + styleBlock + htmlContent[insertPos:]
		}
	}

	return styleBlock + htmlContent
}

// sanitizeCSS escapes sequences that could break out of a <style> block.
func sanitizeCSS(css string) string {
	return strings.ReplaceAll(css, "</", `<\/`)
}

// CardTemplates holds the raw HTML templates used to assemble an export document.
type CardTemplates struct {
	Cover    string
	Content  string
	Document string
}

// DocumentOptions configures one assembled document.
type DocumentOptions struct {
	Title string // <title> text
	Theme string // body class suffix: theme-<name>
	CSS   string // full stylesheet, injected into <head>
}

// DocumentAssembler renders cards into a single self-contained HTML document.
type DocumentAssembler struct {
	cover    *template.Template
	content  *template.Template
	document *template.Template
	css      CSSInjector
}

// NewDocumentAssembler parses the card templates.
// Returns error if any template cannot be parsed.
func NewDocumentAssembler(t CardTemplates) (*DocumentAssembler, error) {
	cover, err := template.New("cover").Parse(t.Cover)
	if err != nil {
		return nil, fmt.Errorf("parsing cover template: %w", err)
	}
	content, err := template.New("content").Parse(t.Content)
	if err != nil {
		return nil, fmt.Errorf("parsing content template: %w", err)
	}
	document, err := template.New("document").Parse(t.Document)
	if err != nil {
		return nil, fmt.Errorf("parsing document template: %w", err)
	}
	return &DocumentAssembler{
		cover:    cover,
		content:  content,
		document: document,
		css:      &CSSInjection{},
	}, nil
}

// coverView is the data passed to the cover template.
type coverView struct {
	Emoji         string
	Title         string
	Subtitle      string
	TitleFontSize int
}

// contentView is the data passed to the content template.
type contentView struct {
	Body          template.HTML
	PageIndicator string
}

// wrappedCard is one card inside the document template.
type wrappedCard struct {
	Label  string
	Kind   string
	Markup template.HTML
}

// documentView is the data passed to the document template.
type documentView struct {
	Title string
	Theme string
	Cards []wrappedCard
}

// RenderCard renders the markup of a single card.
// Content card bodies come from the Markdown renderer and are trusted as HTML.
func (a *DocumentAssembler) RenderCard(c Card) (string, error) {
	var buf bytes.Buffer
	if c.Kind == KindCover {
		v := coverView{Emoji: c.Emoji, Title: c.Title, Subtitle: c.Subtitle, TitleFontSize: c.TitleFontSize}
		if err := a.cover.Execute(&buf, v); err != nil {
			return "", fmt.Errorf("%w: %v", ErrCoverRender, err)
		}
		return buf.String(), nil
	}

	// #nosec G203 -- goldmark output without WithUnsafe, tags escaped by RenderTags
	v := contentView{Body: template.HTML(c.HTML), PageIndicator: c.PageIndicator()}
	if err := a.content.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("%w: %v", ErrContentRender, err)
	}
	return buf.String(), nil
}

// Assemble renders every card, wraps each with its label and returns the full
// HTML document with the stylesheet injected.
func (a *DocumentAssembler) Assemble(ctx context.Context, cards []Card, opts DocumentOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	view := documentView{
		Title: opts.Title,
		Theme: opts.Theme,
		Cards: make([]wrappedCard, 0, len(cards)),
	}
	for _, c := range cards {
		markup, err := a.RenderCard(c)
		if err != nil {
			return "", err
		}
		view.Cards = append(view.Cards, wrappedCard{
			Label:  c.Label(),
			Kind:   c.Kind.String(),
			Markup: template.HTML(markup), // #nosec G203 -- rendered by html/template above
		})
	}

	var buf bytes.Buffer
	if err := a.document.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDocumentRender, err)
	}

	return a.css.InjectCSS(ctx, buf.String(), opts.CSS), nil
}
