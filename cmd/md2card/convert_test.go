package main

// Notes:
// - convertFile: we test the deck directory layout, --html-only, and partial
//   PNG failures (other files still written, error wraps ErrRasterize).
// - convertBatch: we test ordering, converter init failures and cancellation
//   with a fake pool.
// - printResults / firstFailure: we test output modes and the returned error.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	md2card "github.com/alnah/go-md2card"
)

// ---------------------------------------------------------------------------
// TestConvertFile - Deck directory output
// ---------------------------------------------------------------------------

func TestConvertFile(t *testing.T) {
	t.Parallel()

	t.Run("writes document and PNGs", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		input := filepath.Join(dir, "deck.md")
		writeFile(t, input, "hello")
		out := filepath.Join(dir, "out", "deck")

		conv := &fakeConverter{}
		res := convertFile(context.Background(), conv, FileToConvert{InputPath: input, OutputDir: out},
			&conversionParams{deck: deckSettings{theme: "ocean"}})

		if res.Err != nil {
			t.Fatalf("unexpected error: %v", res.Err)
		}
		if res.Cards != 1 || res.Images != 1 {
			t.Errorf("Cards = %d, Images = %d, want 1, 1", res.Cards, res.Images)
		}
		if res.Duration <= 0 {
			t.Errorf("Duration should be recorded")
		}
		html, err := os.ReadFile(filepath.Join(out, documentFilename))
		if err != nil || string(html) != "<html>hello</html>" {
			t.Errorf("cards.html = %q, %v", html, err)
		}
		if _, err := os.Stat(filepath.Join(out, "card-01.png")); err != nil {
			t.Errorf("PNG not written: %v", err)
		}
		if got := conv.inputs[0].Theme; got != "ocean" {
			t.Errorf("Theme passed to converter = %q, want ocean", got)
		}
	})

	t.Run("html only", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		input := filepath.Join(dir, "deck.md")
		writeFile(t, input, "hello")
		out := filepath.Join(dir, "deck")

		conv := &fakeConverter{}
		res := convertFile(context.Background(), conv, FileToConvert{InputPath: input, OutputDir: out},
			&conversionParams{htmlOnly: true})

		if res.Err != nil {
			t.Fatalf("unexpected error: %v", res.Err)
		}
		if !conv.inputs[0].HTMLOnly {
			t.Error("HTMLOnly should reach the converter")
		}
		if res.Images != 0 {
			t.Errorf("Images = %d, want 0", res.Images)
		}
	})

	t.Run("failed captures keep the document", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		input := filepath.Join(dir, "deck.md")
		writeFile(t, input, "hello")
		out := filepath.Join(dir, "deck")

		res := convertFile(context.Background(), &fakeConverter{failImages: true},
			FileToConvert{InputPath: input, OutputDir: out}, &conversionParams{})

		if !errors.Is(res.Err, md2card.ErrRasterize) {
			t.Fatalf("error = %v, want ErrRasterize", res.Err)
		}
		if !strings.Contains(res.Err.Error(), "card 1") {
			t.Errorf("error should name the failed card, got %v", res.Err)
		}
		if _, err := os.Stat(filepath.Join(out, documentFilename)); err != nil {
			t.Errorf("cards.html should still be written: %v", err)
		}
	})

	t.Run("missing input", func(t *testing.T) {
		t.Parallel()

		res := convertFile(context.Background(), &fakeConverter{},
			FileToConvert{InputPath: filepath.Join(t.TempDir(), "missing.md")}, &conversionParams{})
		if !errors.Is(res.Err, ErrReadMarkdown) {
			t.Errorf("error = %v, want ErrReadMarkdown", res.Err)
		}
	})

	t.Run("converter error", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		input := filepath.Join(dir, "deck.md")
		writeFile(t, input, "hello")

		res := convertFile(context.Background(), &fakeConverter{err: md2card.ErrInvalidCardSize},
			FileToConvert{InputPath: input, OutputDir: filepath.Join(dir, "deck")}, &conversionParams{})
		if !errors.Is(res.Err, md2card.ErrInvalidCardSize) {
			t.Errorf("error = %v, want ErrInvalidCardSize", res.Err)
		}
		if _, err := os.Stat(filepath.Join(dir, "deck")); !os.IsNotExist(err) {
			t.Errorf("no deck directory should be created on failure")
		}
	})
}

// ---------------------------------------------------------------------------
// TestConvertBatch - Worker pool
// ---------------------------------------------------------------------------

func TestConvertBatch(t *testing.T) {
	t.Parallel()

	newFiles := func(t *testing.T, n int) []FileToConvert {
		t.Helper()
		dir := t.TempDir()
		files := make([]FileToConvert, n)
		for i := range files {
			in := filepath.Join(dir, fmt.Sprintf("deck%d.md", i))
			writeFile(t, in, fmt.Sprintf("deck %d", i))
			files[i] = FileToConvert{InputPath: in, OutputDir: filepath.Join(dir, fmt.Sprintf("deck%d", i))}
		}
		return files
	}

	t.Run("results keep input order", func(t *testing.T) {
		t.Parallel()

		files := newFiles(t, 5)
		results := convertBatch(context.Background(), &fakePool{conv: &fakeConverter{}, size: 3}, files, &conversionParams{})

		if len(results) != len(files) {
			t.Fatalf("got %d results, want %d", len(results), len(files))
		}
		for i, r := range results {
			if r.InputPath != files[i].InputPath {
				t.Errorf("results[%d].InputPath = %q, want %q", i, r.InputPath, files[i].InputPath)
			}
			if r.Err != nil {
				t.Errorf("results[%d].Err = %v", i, r.Err)
			}
		}
	})

	t.Run("acquire failure marks files failed", func(t *testing.T) {
		t.Parallel()

		files := newFiles(t, 3)
		pool := &fakePool{size: 2, acquireErr: md2card.ErrBrowserConnect}
		results := convertBatch(context.Background(), pool, files, &conversionParams{})

		for i, r := range results {
			if !errors.Is(r.Err, ErrConverterInit) || !errors.Is(r.Err, md2card.ErrBrowserConnect) {
				t.Errorf("results[%d].Err = %v, want ErrConverterInit wrapping ErrBrowserConnect", i, r.Err)
			}
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		files := newFiles(t, 2)
		results := convertBatch(ctx, &fakePool{conv: &fakeConverter{}, size: 1}, files, &conversionParams{})
		for i, r := range results {
			if !errors.Is(r.Err, context.Canceled) {
				t.Errorf("results[%d].Err = %v, want context.Canceled", i, r.Err)
			}
		}
	})

	t.Run("no files", func(t *testing.T) {
		t.Parallel()

		if results := convertBatch(context.Background(), &fakePool{size: 1}, nil, &conversionParams{}); results != nil {
			t.Errorf("results = %v, want nil", results)
		}
	})
}

// ---------------------------------------------------------------------------
// TestPrintResults - Output modes
// ---------------------------------------------------------------------------

func TestPrintResults(t *testing.T) {
	t.Parallel()

	results := []ConversionResult{
		{InputPath: "a.md", OutputDir: "a", Cards: 3, Images: 3, Duration: 1500 * time.Millisecond},
		{InputPath: "b.md", Err: md2card.ErrInvalidCardSize},
		{InputPath: "c.md", OutputDir: "c", Cards: 1, Warnings: []md2card.ImageWarning{{ID: "img_1", Err: errors.New("not found")}}},
	}

	t.Run("normal", func(t *testing.T) {
		t.Parallel()

		env, stdout, stderr := newTestEnv()
		failed := printResults(results, "/tmp/images.db", false, false, env)

		if failed != 1 {
			t.Errorf("failed = %d, want 1", failed)
		}
		if !strings.Contains(stdout.String(), "Created a (3 cards)") {
			t.Errorf("stdout = %q", stdout.String())
		}
		if !strings.Contains(stdout.String(), "2 succeeded, 1 failed") {
			t.Errorf("stdout should contain summary, got %q", stdout.String())
		}
		if !strings.Contains(stderr.String(), "FAILED b.md") {
			t.Errorf("stderr = %q", stderr.String())
		}
		if !strings.Contains(stderr.String(), "img_1") || !strings.Contains(stderr.String(), "/tmp/images.db") {
			t.Errorf("stderr should report the image warning with the store path, got %q", stderr.String())
		}
	})

	t.Run("quiet", func(t *testing.T) {
		t.Parallel()

		env, stdout, stderr := newTestEnv()
		printResults(results, "", true, false, env)

		if stdout.Len() != 0 {
			t.Errorf("quiet stdout = %q, want empty", stdout.String())
		}
		if !strings.Contains(stderr.String(), "FAILED b.md") {
			t.Errorf("failures must still be reported, got %q", stderr.String())
		}
		if strings.Contains(stderr.String(), "img_1") {
			t.Errorf("quiet should hide warnings, got %q", stderr.String())
		}
	})

	t.Run("verbose", func(t *testing.T) {
		t.Parallel()

		env, stdout, _ := newTestEnv()
		printResults(results, "", false, true, env)

		if !strings.Contains(stdout.String(), "a.md -> a (3 cards, 3 PNG, 1.5s)") {
			t.Errorf("verbose stdout = %q", stdout.String())
		}
	})
}

func TestFirstFailure(t *testing.T) {
	t.Parallel()

	one := []ConversionResult{{InputPath: "a.md"}, {InputPath: "b.md", Err: ErrWriteOutput}}
	if err := firstFailure(one, 1); err != ErrWriteOutput {
		t.Errorf("single failure should be returned as is, got %v", err)
	}

	two := []ConversionResult{{Err: md2card.ErrRasterize}, {Err: ErrWriteOutput}}
	err := firstFailure(two, 2)
	if !errors.Is(err, md2card.ErrRasterize) || !strings.Contains(err.Error(), "2 of 2 files failed") {
		t.Errorf("firstFailure = %v", err)
	}

	if err := firstFailure([]ConversionResult{{}}, 0); err != nil {
		t.Errorf("no failure should return nil, got %v", err)
	}
}

func TestCountResults(t *testing.T) {
	t.Parallel()

	got := countResults([]ConversionResult{{}, {Err: ErrWriteOutput}, {}})
	if got.Succeeded != 2 || got.Failed != 1 {
		t.Errorf("countResults = %+v, want 2 succeeded, 1 failed", got)
	}
}
