package md2card

import (
	"errors"

	"github.com/alnah/go-md2card/internal/pipeline"
)

// Sentinel errors for library operations.
var (
	ErrEmptyMarkdown   = errors.New("markdown content cannot be empty")
	ErrHTMLConversion  = pipeline.ErrHTMLConversion
	ErrDocumentRender  = errors.New("card document rendering failed")
	ErrRasterize       = errors.New("card rasterization failed")
	ErrBrowserConnect  = errors.New("failed to connect to browser")
	ErrPageCreate      = errors.New("failed to create browser page")
	ErrPageLoad        = errors.New("failed to load page")
	ErrCardNotFound    = errors.New("card element not found")
	ErrBlankCapture    = errors.New("captured image is blank")
	ErrConverterClosed = errors.New("converter is closed")

	// Input validation errors.
	ErrInvalidCardSize   = errors.New("invalid card size")
	ErrInvalidBackground = errors.New("invalid background")
	ErrInvalidScale      = errors.New("invalid scale")

	// Asset loading errors.
	ErrStyleNotFound         = errors.New("style not found")
	ErrTemplateSetNotFound   = errors.New("template set not found")
	ErrIncompleteTemplateSet = errors.New("template set missing required template")
	ErrInvalidAssetPath      = errors.New("invalid asset path")
)
