package main

import (
	"context"
	"errors"
	"os"

	md2card "github.com/alnah/go-md2card"
	"github.com/alnah/go-md2card/internal/config"
	"github.com/alnah/go-md2card/internal/hints"
	"github.com/alnah/go-md2card/internal/imagestore"
	"github.com/alnah/go-md2card/internal/search"
)

// Exit codes for the md2card CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage, and custom codes < 126.
const (
	ExitSuccess = 0 // Successful run
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or validation
	ExitIO      = 3 // File not found, permission denied
	ExitBrowser = 4 // Browser/Chrome errors
)

// ErrUsage marks invalid command lines.
var ErrUsage = errors.New("invalid usage")

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must use fmt.Errorf("%w", err).
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Browser errors (exit 4)
	if md2card.IsBrowserError(err) || errors.Is(err, md2card.ErrRasterize) {
		return ExitBrowser
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadMarkdown) ||
		errors.Is(err, ErrReadCSS) ||
		errors.Is(err, ErrWriteOutput) ||
		errors.Is(err, ErrNoInput) ||
		errors.Is(err, imagestore.ErrStoreFailure) {
		return ExitIO
	}

	// Usage/config/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrInvalidExtension) ||
		errors.Is(err, ErrInvalidWorkerCount) ||
		errors.Is(err, ErrUnsupportedShell) ||
		errors.Is(err, config.ErrConfigNotFound) ||
		errors.Is(err, config.ErrConfigParse) ||
		errors.Is(err, config.ErrConfigInvalid) ||
		errors.Is(err, md2card.ErrEmptyMarkdown) ||
		errors.Is(err, md2card.ErrInvalidCardSize) ||
		errors.Is(err, md2card.ErrInvalidBackground) ||
		errors.Is(err, md2card.ErrInvalidScale) ||
		errors.Is(err, md2card.ErrStyleNotFound) ||
		errors.Is(err, md2card.ErrTemplateSetNotFound) ||
		errors.Is(err, md2card.ErrIncompleteTemplateSet) ||
		errors.Is(err, md2card.ErrInvalidAssetPath) ||
		errors.Is(err, imagestore.ErrImageTooLarge) ||
		errors.Is(err, imagestore.ErrImageType) ||
		errors.Is(err, imagestore.ErrEmptyData) ||
		errors.Is(err, imagestore.ErrNotFound) ||
		errors.Is(err, search.ErrEmptyKeyword) {
		return ExitUsage
	}

	return ExitGeneral
}

// hintFor returns an actionable hint for err, or "".
func hintFor(err error) string {
	switch {
	case md2card.IsBrowserError(err):
		return hints.ForBrowserConnect()
	case errors.Is(err, config.ErrConfigNotFound):
		return hints.ForConfigNotFound(config.SearchPaths("md2card"))
	case errors.Is(err, md2card.ErrStyleNotFound):
		return hints.ForStyleNotFound([]string{md2card.DefaultStyle})
	case errors.Is(err, imagestore.ErrImageTooLarge), errors.Is(err, imagestore.ErrImageType):
		return hints.ForImageRejected()
	case errors.Is(err, context.DeadlineExceeded):
		return hints.ForTimeout()
	case errors.Is(err, ErrWriteOutput):
		return hints.ForOutputDirectory()
	}
	return ""
}
