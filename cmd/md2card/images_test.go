package main

// Notes:
// - runImages: we test add (file and URL), list and rm against a SQLite store
//   in a temp dir. Rejected images and unknown ids are reported after the
//   other arguments are processed.
// - Tests clear MD2CARD_* with t.Setenv and cannot run in parallel.
// These are acceptable gaps: we test observable behavior, not implementation details.

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/alnah/go-md2card/internal/imagestore"
)

var referencePattern = regexp.MustCompile(`!\[img:(img_[0-9]+_[0-9a-f-]+)\]`)

// ---------------------------------------------------------------------------
// TestRunImages - add, list, rm
// ---------------------------------------------------------------------------

func TestRunImages_Lifecycle(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	store := filepath.Join(dir, "images.db")
	img := filepath.Join(dir, "logo.png")
	writeFile(t, img, string(pngBytes))
	ctx := context.Background()

	// add
	env, stdout, stderr := newTestEnv()
	if err := runImages(ctx, []string{"add", img, "--store", store}, env); err != nil {
		t.Fatalf("add: %v\nstderr: %s", err, stderr.String())
	}
	m := referencePattern.FindStringSubmatch(stdout.String())
	if m == nil {
		t.Fatalf("add should print a reference, got %q", stdout.String())
	}
	id := m[1]

	// list
	env, stdout, _ = newTestEnv()
	if err := runImages(ctx, []string{"list", "--store", store}, env); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(stdout.String(), id) {
		t.Errorf("list should show %s, got %q", id, stdout.String())
	}
	if !strings.Contains(stdout.String(), "1 image") {
		t.Errorf("list should show the total, got %q", stdout.String())
	}

	// rm
	env, stdout, _ = newTestEnv()
	if err := runImages(ctx, []string{"rm", id, "--store", store}, env); err != nil {
		t.Fatalf("rm: %v", err)
	}
	if !strings.Contains(stdout.String(), "Removed "+id) {
		t.Errorf("rm output = %q", stdout.String())
	}

	// list again
	env, stdout, _ = newTestEnv()
	if err := runImages(ctx, []string{"ls", "--store", store}, env); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(stdout.String(), "No images stored.") {
		t.Errorf("empty list output = %q", stdout.String())
	}
}

func TestRunImages_AddURL(t *testing.T) {
	isolateEnv(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(pngBytes)
	}))
	defer srv.Close()

	store := filepath.Join(t.TempDir(), "images.db")
	env, stdout, _ := newTestEnv()
	env.HTTPClient = srv.Client()

	if err := runImages(context.Background(), []string{"add", srv.URL + "/a.png", "--store", store}, env); err != nil {
		t.Fatalf("add URL: %v", err)
	}
	if !referencePattern.MatchString(stdout.String()) {
		t.Errorf("add should print a reference, got %q", stdout.String())
	}
}

func TestRunImages_Errors(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	store := filepath.Join(dir, "images.db")
	good := filepath.Join(dir, "good.png")
	bad := filepath.Join(dir, "notes.txt")
	writeFile(t, good, string(pngBytes))
	writeFile(t, bad, "plain text is not an image")

	t.Run("rejected image does not stop the others", func(t *testing.T) {
		env, stdout, _ := newTestEnv()
		err := runImages(context.Background(), []string{"add", bad, good, "--store", store}, env)
		if !errors.Is(err, imagestore.ErrImageType) {
			t.Errorf("error = %v, want ErrImageType", err)
		}
		if !referencePattern.MatchString(stdout.String()) {
			t.Errorf("good image should still be added, got %q", stdout.String())
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		env, _, _ := newTestEnv()
		err := runImages(context.Background(), []string{"rm", "img_0_missing", "--store", store}, env)
		if !errors.Is(err, imagestore.ErrNotFound) {
			t.Errorf("error = %v, want ErrNotFound", err)
		}
	})

	t.Run("missing arguments", func(t *testing.T) {
		for _, sub := range []string{"add", "rm"} {
			env, _, _ := newTestEnv()
			err := runImages(context.Background(), []string{sub, "--store", store}, env)
			if !errors.Is(err, ErrUsage) {
				t.Errorf("%s without args: error = %v, want ErrUsage", sub, err)
			}
		}
	})

	t.Run("quiet add prints nothing", func(t *testing.T) {
		env, stdout, _ := newTestEnv()
		if err := runImages(context.Background(), []string{"add", "-q", good, "--store", store}, env); err != nil {
			t.Fatalf("add: %v", err)
		}
		if stdout.Len() != 0 {
			t.Errorf("stdout = %q, want empty", stdout.String())
		}
	})
}
