package main

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/alnah/go-md2card/internal/search"
)

// Environment holds injectable dependencies for testability.
type Environment struct {
	Now    func() time.Time
	Stdout io.Writer
	Stderr io.Writer

	// NewSearchClient builds the image search client. Tests point it at a
	// local endpoint.
	NewSearchClient func() *search.Client

	// HTTPClient downloads remote images for `images add` and `search --download`.
	HTTPClient *http.Client
}

// DefaultEnv returns the production environment.
func DefaultEnv() *Environment {
	return &Environment{
		Now:             time.Now,
		Stdout:          os.Stdout,
		Stderr:          os.Stderr,
		NewSearchClient: func() *search.Client { return search.NewClient(nil) },
	}
}

// logger returns a text logger on Stderr. verbose enables debug records.
func (e *Environment) logger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(e.Stderr, &slog.HandlerOptions{Level: level}))
}
