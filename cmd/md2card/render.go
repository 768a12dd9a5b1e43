package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	flag "github.com/spf13/pflag"

	md2card "github.com/alnah/go-md2card"
	"github.com/alnah/go-md2card/internal/config"
	"github.com/alnah/go-md2card/internal/hints"
	"github.com/alnah/go-md2card/internal/imagestore"
	"github.com/alnah/go-md2card/internal/theme"
)

// Sentinel errors for reading inputs.
var (
	ErrReadMarkdown = errors.New("failed to read markdown file")
	ErrReadCSS      = errors.New("failed to read CSS file")
)

// deckSettings is the per-deck part of md2card.Input shared by every file.
type deckSettings struct {
	theme       string
	size        *md2card.CardSize
	background  *md2card.Background
	css         string
	scale       float64
	transparent bool
}

// input builds the conversion input for one Markdown document.
func (d deckSettings) input(markdown string, htmlOnly bool) md2card.Input {
	return md2card.Input{
		Markdown:    markdown,
		Theme:       d.theme,
		Size:        d.size,
		Background:  d.background,
		CSS:         d.css,
		Scale:       d.scale,
		Transparent: d.transparent,
		HTMLOnly:    htmlOnly,
	}
}

// mergeRenderFlags applies explicitly set flags over cfg and revalidates it.
func mergeRenderFlags(fs *flag.FlagSet, f *renderFlags, cfg *config.Config) error {
	if fs.Changed("theme") {
		cfg.Card.Theme = f.card.theme
	}
	if fs.Changed("width") {
		cfg.Card.Width = f.card.width
	}
	if fs.Changed("height") {
		cfg.Card.Height = f.card.height
	}
	if fs.Changed("scale") {
		cfg.Card.Scale = f.card.scale
	}
	if fs.Changed("transparent") {
		cfg.Card.Transparent = f.card.transparent
	}
	if fs.Changed("bg-from") {
		cfg.Background.From = f.background.from
	}
	if fs.Changed("bg-to") {
		cfg.Background.To = f.background.to
	}
	if fs.Changed("bg-direction") {
		cfg.Background.Direction = f.background.direction
	}
	if fs.Changed("style") {
		cfg.CSS.Style = f.assets.style
	}
	if fs.Changed("asset-path") {
		cfg.Assets.BasePath = f.assets.assetPath
	}
	if fs.Changed("store") {
		cfg.Images.Store = f.store.path
	}
	if fs.Changed("remote-images") {
		cfg.Images.Remote = f.store.remote
	}

	return cfg.Validate()
}

// buildDeckSettings turns the effective config into per-deck settings.
// cssFile, when set, is read and appended after the generated stylesheet.
func buildDeckSettings(cfg *config.Config, cssFile string) (deckSettings, error) {
	d := deckSettings{
		theme:       cfg.Card.Theme,
		scale:       cfg.Card.Scale,
		transparent: cfg.Card.Transparent,
	}
	if cfg.Card.Width != 0 || cfg.Card.Height != 0 {
		d.size = &md2card.CardSize{Width: cfg.Card.Width, Height: cfg.Card.Height}
	}
	if cfg.Background.Enabled() {
		d.background = &md2card.Background{
			Color1:    cfg.Background.From,
			Color2:    cfg.Background.To,
			Direction: cfg.Background.Direction,
		}
	}
	if cssFile != "" {
		content, err := os.ReadFile(cssFile) // #nosec G304 -- user-provided path
		if err != nil {
			return d, fmt.Errorf("%w: %v", ErrReadCSS, err)
		}
		d.css = string(content)
	}
	return d, nil
}

// converterOptions maps the effective config to converter options.
// store may be nil.
func converterOptions(cfg *config.Config, timeout time.Duration, store imagestore.Store, env *Environment) []md2card.Option {
	var opts []md2card.Option
	if timeout > 0 {
		opts = append(opts, md2card.WithTimeout(timeout))
	}
	if cfg.CSS.Style != "" {
		opts = append(opts, md2card.WithStyle(cfg.CSS.Style))
	}
	if cfg.Assets.BasePath != "" {
		opts = append(opts, md2card.WithAssetPath(cfg.Assets.BasePath))
	}
	if store != nil {
		opts = append(opts, md2card.WithImageStore(store))
	}
	if cfg.Images.Remote {
		opts = append(opts, md2card.WithRemoteImages(imagestore.NewFetcher(env.HTTPClient)))
	}
	return opts
}

// openStore opens the SQLite image store named by cfg.
func openStore(ctx context.Context, cfg *config.Config) (imagestore.Store, error) {
	store, err := imagestore.OpenSQLite(ctx, cfg.Images.Store, imagestore.Limits{
		MaxItems: cfg.Images.MaxItems,
		MaxBytes: cfg.Images.MaxBytes,
	})
	if err != nil {
		return nil, fmt.Errorf("opening image store: %w", err)
	}
	return store, nil
}

// warnUnknownTheme reports a theme name that will fall back to the default.
func warnUnknownTheme(w io.Writer, name string) {
	if name == "" {
		return
	}
	if _, ok := theme.Lookup(name); !ok {
		fmt.Fprintf(w, "warning: unknown theme %q, using %q%s\n", name, theme.DefaultName, hints.ForUnknownTheme(name))
	}
}

// printImageWarnings reports unresolved image references of one deck.
func printImageWarnings(w io.Writer, source string, warnings []md2card.ImageWarning, storePath string) {
	for _, warn := range warnings {
		fmt.Fprintf(w, "warning: %s: %v\n", source, warn)
	}
	if len(warnings) > 0 {
		fmt.Fprintf(w, "%s\n", hints.ForMissingImage(storePath)[1:])
	}
}
