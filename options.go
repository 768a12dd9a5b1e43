package md2card

import (
	"time"

	"github.com/alnah/go-md2card/internal/pipeline"
)

// ImageSource resolves pasted image ids to data URIs. A Get that reports
// ok=false removes the reference; an error removes it and adds a warning.
// Both image store backends in internal/imagestore satisfy it.
type ImageSource = pipeline.ImageSource

// ImageFetcher downloads a remote image as a data URI for self-contained exports.
type ImageFetcher = pipeline.ImageFetcher

// Option configures a Converter.
type Option func(*Converter)

// converterConfig holds internal configuration for Converter.
type converterConfig struct {
	timeout     time.Duration
	styleInput  string
	assetPath   string
	templateSet *TemplateSet
	concurrency int
}

// defaultTimeout is used when no timeout is specified.
const defaultTimeout = 30 * time.Second

// WithTimeout sets the page load timeout of the rasterizer.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("md2card: WithTimeout duration must be positive")
	}
	return func(c *Converter) {
		c.cfg.timeout = d
	}
}

// WithImageStore sets the source used to resolve ![img:<id>] references.
// Without it every reference is a miss and is removed.
func WithImageStore(src ImageSource) Option {
	return func(c *Converter) {
		c.images = src
	}
}

// WithRemoteImages inlines http(s) images of the export document as data URIs.
func WithRemoteImages(f ImageFetcher) Option {
	return func(c *Converter) {
		c.remote = f
	}
}

// WithStyle sets the base stylesheet: a style name, a path to a .css file,
// or raw CSS content.
func WithStyle(style string) Option {
	return func(c *Converter) {
		c.cfg.styleInput = style
	}
}

// WithAssetPath sets a directory holding styles/ and templates/ overrides.
// Missing assets fall back to the embedded ones.
func WithAssetPath(path string) Option {
	return func(c *Converter) {
		c.cfg.assetPath = path
	}
}

// WithAssetLoader sets a custom asset loader. It takes precedence over WithAssetPath.
func WithAssetLoader(loader AssetLoader) Option {
	return func(c *Converter) {
		c.publicAssetLoader = loader
	}
}

// WithTemplateSet sets the card templates directly.
func WithTemplateSet(ts *TemplateSet) Option {
	return func(c *Converter) {
		c.cfg.templateSet = ts
	}
}

// WithConcurrency bounds how many card segments are transformed in parallel.
func WithConcurrency(n int) Option {
	return func(c *Converter) {
		c.cfg.concurrency = n
	}
}
