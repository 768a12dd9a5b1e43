package main

// Notes:
// - Shared test infrastructure for the command tests: a captured Environment,
//   fake converters and small file helpers.
// No coverage gaps: this is test infrastructure, not production code.

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	md2card "github.com/alnah/go-md2card"
	"github.com/alnah/go-md2card/internal/search"
)

// fixedNow is the clock used by test environments.
var fixedNow = time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)

// pngBytes carries a real PNG signature so content sniffing accepts it.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

// ---------------------------------------------------------------------------
// Environment
// ---------------------------------------------------------------------------

// newTestEnv returns an Environment writing into buffers. The search client
// points at an unroutable endpoint unless a test replaces it.
func newTestEnv() (*Environment, *bytes.Buffer, *bytes.Buffer) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	env := &Environment{
		Now:    func() time.Time { return fixedNow },
		Stdout: stdout,
		Stderr: stderr,
		NewSearchClient: func() *search.Client {
			c := search.NewClient(nil)
			c.Endpoint = "http://127.0.0.1:1/acjson"
			return c
		},
	}
	return env, stdout, stderr
}

// writeFile creates parent directories and writes content.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

// isolateEnv clears MD2CARD_* variables that would leak into config loading.
// Callers cannot run in parallel.
func isolateEnv(t *testing.T) {
	t.Helper()
	for name := range knownEnvVars {
		t.Setenv(name, "")
	}
}

// ---------------------------------------------------------------------------
// Fake converters
// ---------------------------------------------------------------------------

// fakeConverter returns one card per call and records the inputs it saw.
type fakeConverter struct {
	mu     sync.Mutex
	inputs []md2card.Input

	err        error
	failImages bool
}

func (f *fakeConverter) Convert(_ context.Context, in md2card.Input) (*md2card.ConvertResult, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, in)
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	res := &md2card.ConvertResult{
		Cards: []md2card.Card{{Kind: md2card.KindContent, HTML: "<p>x</p>", PageNumber: 1, TotalPages: 1}},
		HTML:  []byte("<html>" + in.Markdown + "</html>"),
	}
	if in.HTMLOnly {
		return res, nil
	}
	img := md2card.CardImage{Label: "card 1", Filename: "card-01.png", PNG: pngBytes}
	if f.failImages {
		img.PNG = nil
		img.Err = errors.New("capture failed")
	}
	res.Images = []md2card.CardImage{img}
	return res, nil
}

// fakePool hands out one shared fakeConverter.
type fakePool struct {
	conv       *fakeConverter
	size       int
	acquireErr error
}

func (p *fakePool) Acquire() (CardConverter, error) {
	if p.acquireErr != nil {
		return nil, p.acquireErr
	}
	return p.conv, nil
}

func (p *fakePool) Release(CardConverter) {}

func (p *fakePool) Size() int { return p.size }
