package md2card

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/alnah/go-md2card/internal/assets"
	"github.com/alnah/go-md2card/internal/fileutil"
	"github.com/alnah/go-md2card/internal/pipeline"
	"github.com/alnah/go-md2card/internal/theme"
)

// Compile-time interface implementation checks.
var (
	_ pipeline.HTMLConverter = (*pipeline.GoldmarkConverter)(nil)
	_ pipeline.CSSInjector   = (*pipeline.CSSInjection)(nil)
	_ AssetLoader            = (*assetLoaderAdapter)(nil)
	_ assets.AssetLoader     = (*publicToInternalAdapter)(nil)
)

// defaultDocumentTitle is the <title> of decks without a frontmatter title.
const defaultDocumentTitle = "md2card"

// Converter orchestrates the Markdown-to-card pipeline.
// Create with NewConverter(), use Convert() for conversion, and Close() when done.
// A Converter owns one browser. Concurrent Convert calls are safe but share
// it, so PNG exports are serialized; use a ConverterPool for parallel work.
type Converter struct {
	cfg               converterConfig
	assetLoader       assets.AssetLoader
	publicAssetLoader AssetLoader
	baseStyle         string
	htmlConverter     pipeline.HTMLConverter
	transformer       *pipeline.Transformer
	assembler         *pipeline.DocumentAssembler
	images            ImageSource
	remote            ImageFetcher
	rasterizer        cardRasterizer
	closed            atomic.Bool
}

// NewConverter creates a Converter with default configuration.
// Use options to customize behavior (e.g., WithImageStore, WithStyle, WithTimeout).
// Returns error if asset loading or template parsing fails.
func NewConverter(opts ...Option) (*Converter, error) {
	c := &Converter{
		cfg:           converterConfig{timeout: defaultTimeout},
		assetLoader:   assets.NewEmbeddedLoader(),
		htmlConverter: pipeline.NewGoldmarkConverter(),
	}

	for _, opt := range opts {
		opt(c)
	}

	// Handle WithAssetPath: resolve to internal loader
	if c.cfg.assetPath != "" {
		resolver, err := assets.NewAssetResolver(c.cfg.assetPath)
		if err != nil {
			return nil, convertAssetError(err)
		}
		c.assetLoader = resolver
	}

	// Handle WithAssetLoader (public interface): wrap to internal interface
	if c.publicAssetLoader != nil {
		c.assetLoader = &publicToInternalAdapter{pub: c.publicAssetLoader}
	}

	if err := c.resolveStyle(); err != nil {
		return nil, err
	}

	templateSet := c.cfg.templateSet
	if templateSet == nil {
		ts, err := c.assetLoader.LoadTemplateSet(assets.DefaultTemplateSetName)
		if err != nil {
			return nil, fmt.Errorf("loading default template set: %w", convertAssetError(err))
		}
		templateSet = fromInternalTemplateSet(ts)
	}

	assembler, err := pipeline.NewDocumentAssembler(pipeline.CardTemplates{
		Cover:    templateSet.Cover,
		Content:  templateSet.Content,
		Document: templateSet.Document,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDocumentRender, err)
	}
	c.assembler = assembler

	c.transformer = pipeline.NewTransformer(c.images, c.htmlConverter)
	c.transformer.SetConcurrency(c.cfg.concurrency)

	// Create rasterizer if not injected (e.g., by tests)
	if c.rasterizer == nil {
		c.rasterizer = newRodRasterizer(c.cfg.timeout)
	}

	return c, nil
}

// Convert runs the full pipeline: frontmatter, segmentation, content
// transformation, deck model, document assembly and, unless input.HTMLOnly is
// set, PNG export of every card.
//
// Image lookup failures and failed remote image downloads are reported in
// ConvertResult.Warnings. A card whose PNG capture fails carries the error in
// its CardImage; the other cards are still exported.
// Recovers from internal panics to prevent crashes from propagating to callers.
func (c *Converter) Convert(ctx context.Context, input Input) (result *ConvertResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()

	if c.closed.Load() {
		return nil, ErrConverterClosed
	}

	scale, err := c.validateInput(input)
	if err != nil {
		return nil, err
	}

	doc := pipeline.ExtractFrontmatter(input.Markdown)
	segments := pipeline.SplitCards(doc.Body)

	contents, err := c.transformer.TransformAll(ctx, segments)
	if err != nil {
		return nil, err
	}

	cards := pipeline.BuildDeck(doc.Metadata, contents)

	var warnings []ImageWarning
	for _, content := range contents {
		warnings = append(warnings, content.ImageErrors...)
	}

	th, _ := theme.Lookup(input.Theme)
	size := input.Size.Resolved()
	css := buildStylesheet(c.baseStyle, styleParams{
		size:       size,
		theme:      th,
		background: input.Background,
	}, input.CSS)

	htmlContent, err := c.assembler.Assemble(ctx, cards, pipeline.DocumentOptions{
		Title: documentTitle(doc.Metadata),
		Theme: th.Name,
		CSS:   css,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrDocumentRender, err)
	}

	if c.remote != nil {
		inlined, inlineWarnings, err := pipeline.InlineRemoteImages(ctx, htmlContent, c.remote)
		if err != nil {
			return nil, fmt.Errorf("%w: inlining remote images: %v", ErrDocumentRender, err)
		}
		htmlContent = inlined
		warnings = append(warnings, inlineWarnings...)
	}

	res := &ConvertResult{
		Metadata: doc.Metadata,
		Cards:    cards,
		HTML:     []byte(htmlContent),
		Warnings: warnings,
	}

	// Skip PNG export in HTMLOnly mode or for an empty deck
	if input.HTMLOnly || len(cards) == 0 {
		return res, nil
	}

	images, err := c.rasterizer.Rasterize(ctx, htmlContent, cards, rasterOptions{
		width:       size.Width,
		scale:       scale,
		transparent: input.Transparent,
	})
	if err != nil {
		return nil, fmt.Errorf("exporting PNG: %w", err)
	}
	res.Images = images

	return res, nil
}

// Close releases resources (headless Chrome browser). Convert fails with
// ErrConverterClosed afterwards. Close is idempotent.
func (c *Converter) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	if c.rasterizer != nil {
		return c.rasterizer.Close()
	}
	return nil
}

// resolveStyle resolves the style input (name, path, or CSS content) to CSS content.
// An empty input loads the built-in style.
func (c *Converter) resolveStyle() error {
	input := c.cfg.styleInput
	if input == "" {
		input = DefaultStyle
	}

	// CSS content? (contains {, checked first since CSS may contain slashes)
	if strings.Contains(input, "{") {
		c.baseStyle = input
		return nil
	}

	// File path? (contains / or \)
	if fileutil.IsFilePath(input) {
		content, err := os.ReadFile(input) // #nosec G304 -- user-provided path
		if err != nil {
			return fmt.Errorf("loading style file %q: %w", input, err)
		}
		c.baseStyle = string(content)
		return nil
	}

	// Style name -> use asset loader
	css, err := c.assetLoader.LoadStyle(input)
	if err != nil {
		return fmt.Errorf("loading style %q: %w", input, convertAssetError(err))
	}
	c.baseStyle = css
	return nil
}

// validateInput checks that required fields are present and valid and
// returns the resolved export scale. Markdown that is empty or only
// whitespace is rejected with ErrEmptyMarkdown.
//
// This is a TRUST BOUNDARY for direct library users who build Input manually.
// CLI and server input is validated earlier; both paths converge here.
func (c *Converter) validateInput(input Input) (float64, error) {
	if strings.TrimSpace(input.Markdown) == "" {
		return 0, ErrEmptyMarkdown
	}
	if err := input.Size.Validate(); err != nil {
		return 0, err
	}
	if err := input.Background.Validate(); err != nil {
		return 0, err
	}
	return resolveScale(input.Scale)
}

// documentTitle picks the <title> of the export document.
func documentTitle(meta Metadata) string {
	if t := strings.TrimSpace(meta["title"]); t != "" {
		return t
	}
	return defaultDocumentTitle
}

// IsBrowserError reports whether err comes from launching or driving the browser.
func IsBrowserError(err error) bool {
	return errors.Is(err, ErrBrowserConnect) ||
		errors.Is(err, ErrPageCreate) ||
		errors.Is(err, ErrPageLoad)
}
