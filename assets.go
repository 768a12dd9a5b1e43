package md2card

import (
	"errors"

	"github.com/alnah/go-md2card/internal/assets"
)

// Asset name constants for built-in styles and templates.
const (
	// DefaultStyle is the name of the built-in card stylesheet.
	DefaultStyle = "default"

	// DefaultTemplateSet is the name of the built-in card template set.
	DefaultTemplateSet = "default"
)

// SampleMarkdown returns the built-in example deck. It shows frontmatter,
// headings, emphasis, lists, quotes, card separators and tags.
func SampleMarkdown() string {
	return assets.Sample()
}

// AssetLoader defines the contract for loading card stylesheets and templates.
// Implementations may load from filesystem, embedded assets, a database, etc.
//
// NewAssetLoader provides filesystem-based loading with fallback to the
// embedded defaults. Implement this interface for custom backends.
type AssetLoader interface {
	// LoadStyle loads a CSS style by name (without .css extension).
	// Returns ErrStyleNotFound if the style doesn't exist.
	LoadStyle(name string) (string, error)

	// LoadTemplateSet loads the cover, content and document templates by name.
	// Returns ErrTemplateSetNotFound if the template set doesn't exist.
	// Returns ErrIncompleteTemplateSet if required templates are missing.
	LoadTemplateSet(name string) (*TemplateSet, error)
}

// TemplateSet holds the html/template sources used to assemble a deck.
//
// Cover receives .Emoji, .Title, .Subtitle and .TitleFontSize. Content
// receives .Body (trusted HTML) and .PageIndicator. Document receives .Title,
// .Theme and .Cards, each card with .Label, .Kind and .Markup.
type TemplateSet struct {
	Name     string // Identifier (name or path)
	Cover    string // Cover card template
	Content  string // Content card template
	Document string // Page template wrapping every card
}

// NewTemplateSet creates a TemplateSet from template sources.
func NewTemplateSet(name, cover, content, document string) *TemplateSet {
	return &TemplateSet{
		Name:     name,
		Cover:    cover,
		Content:  content,
		Document: document,
	}
}

// NewAssetLoader creates an AssetLoader for the given base path.
// If basePath is empty, returns a loader using only embedded assets.
// If basePath is set, custom assets take precedence with fallback to embedded.
//
// The basePath directory should contain:
//   - styles/{name}.css for stylesheets
//   - templates/{name}/cover.html, content.html and document.html for template sets
//
// Returns ErrInvalidAssetPath if basePath is set but not a valid, readable directory.
func NewAssetLoader(basePath string) (AssetLoader, error) {
	resolver, err := assets.NewAssetResolver(basePath)
	if err != nil {
		return nil, convertAssetError(err)
	}
	return &assetLoaderAdapter{resolver: resolver}, nil
}

// assetLoaderAdapter wraps the internal AssetResolver to return public types.
type assetLoaderAdapter struct {
	resolver *assets.AssetResolver
}

func (a *assetLoaderAdapter) LoadStyle(name string) (string, error) {
	content, err := a.resolver.LoadStyle(name)
	if err != nil {
		return "", convertAssetError(err)
	}
	return content, nil
}

func (a *assetLoaderAdapter) LoadTemplateSet(name string) (*TemplateSet, error) {
	ts, err := a.resolver.LoadTemplateSet(name)
	if err != nil {
		return nil, convertAssetError(err)
	}
	return fromInternalTemplateSet(ts), nil
}

// publicToInternalAdapter wraps a public AssetLoader as an internal assets.AssetLoader.
type publicToInternalAdapter struct {
	pub AssetLoader
}

func (a *publicToInternalAdapter) LoadStyle(name string) (string, error) {
	return a.pub.LoadStyle(name)
}

func (a *publicToInternalAdapter) LoadTemplateSet(name string) (*assets.TemplateSet, error) {
	ts, err := a.pub.LoadTemplateSet(name)
	if err != nil {
		return nil, err
	}
	return &assets.TemplateSet{
		Name:     ts.Name,
		Cover:    ts.Cover,
		Content:  ts.Content,
		Document: ts.Document,
	}, nil
}

func fromInternalTemplateSet(ts *assets.TemplateSet) *TemplateSet {
	return &TemplateSet{
		Name:     ts.Name,
		Cover:    ts.Cover,
		Content:  ts.Content,
		Document: ts.Document,
	}
}

// convertAssetError maps internal asset errors to public errors.
func convertAssetError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, assets.ErrStyleNotFound):
		return wrapError(ErrStyleNotFound, err)
	case errors.Is(err, assets.ErrTemplateSetNotFound):
		return wrapError(ErrTemplateSetNotFound, err)
	case errors.Is(err, assets.ErrIncompleteTemplateSet):
		return wrapError(ErrIncompleteTemplateSet, err)
	case errors.Is(err, assets.ErrInvalidBasePath):
		return wrapError(ErrInvalidAssetPath, err)
	case errors.Is(err, assets.ErrPathTraversal):
		return wrapError(ErrInvalidAssetPath, err)
	case errors.Is(err, assets.ErrInvalidAssetName):
		return wrapError(ErrStyleNotFound, err) // Invalid name means not found
	default:
		return err
	}
}

// wrapError creates an error that keeps the original message and matches the
// public sentinel with errors.Is.
func wrapError(sentinel, original error) error {
	return &wrappedAssetError{sentinel: sentinel, original: original}
}

type wrappedAssetError struct {
	sentinel error
	original error
}

func (e *wrappedAssetError) Error() string {
	return e.original.Error()
}

// Unwrap returns the public sentinel for errors.Is() matching.
// Internal errors are not exposed since they're in internal/ packages.
func (e *wrappedAssetError) Unwrap() error {
	return e.sentinel
}
