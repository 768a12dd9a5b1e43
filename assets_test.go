package md2card

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/go-md2card/internal/assets"
)

func TestNewAssetLoader_EmptyPath(t *testing.T) {
	t.Parallel()

	loader, err := NewAssetLoader("")
	if err != nil {
		t.Fatalf("NewAssetLoader(\"\") error = %v", err)
	}

	css, err := loader.LoadStyle(DefaultStyle)
	if err != nil {
		t.Errorf("LoadStyle(%q) error = %v", DefaultStyle, err)
	}
	if !strings.Contains(css, "--card-width") {
		t.Error("default style should use the card size variables")
	}

	ts, err := loader.LoadTemplateSet(DefaultTemplateSet)
	if err != nil {
		t.Fatalf("LoadTemplateSet(%q) error = %v", DefaultTemplateSet, err)
	}
	if !strings.Contains(ts.Cover, "cover-card") || !strings.Contains(ts.Content, "content-card") || !strings.Contains(ts.Document, "card-wrapper") {
		t.Errorf("default template set incomplete: %+v", ts)
	}
}

func TestNewAssetLoader_CustomPathWithFallback(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "styles"), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "styles", "mine.css"), []byte(".mine {}"), 0o600); err != nil {
		t.Fatal(err)
	}

	loader, err := NewAssetLoader(dir)
	if err != nil {
		t.Fatalf("NewAssetLoader() error = %v", err)
	}

	css, err := loader.LoadStyle("mine")
	if err != nil || css != ".mine {}" {
		t.Errorf("LoadStyle(mine) = %q, %v", css, err)
	}
	if _, err := loader.LoadStyle(DefaultStyle); err != nil {
		t.Errorf("LoadStyle(default) should fall back to embedded: %v", err)
	}
}

func TestNewAssetLoader_Errors(t *testing.T) {
	t.Parallel()

	if _, err := NewAssetLoader("/nonexistent/md2card"); !errors.Is(err, ErrInvalidAssetPath) {
		t.Errorf("NewAssetLoader(missing) error = %v, want ErrInvalidAssetPath", err)
	}

	loader, err := NewAssetLoader("")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := loader.LoadStyle("nonexistent"); !errors.Is(err, ErrStyleNotFound) {
		t.Errorf("LoadStyle(nonexistent) error = %v, want ErrStyleNotFound", err)
	}
	if _, err := loader.LoadStyle("../etc/passwd"); !errors.Is(err, ErrStyleNotFound) {
		t.Errorf("LoadStyle(traversal) error = %v, want ErrStyleNotFound", err)
	}
	if _, err := loader.LoadTemplateSet("nonexistent"); !errors.Is(err, ErrTemplateSetNotFound) {
		t.Errorf("LoadTemplateSet(nonexistent) error = %v, want ErrTemplateSetNotFound", err)
	}
}

func TestConvertAssetError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   error
		want error
	}{
		{"style", assets.ErrStyleNotFound, ErrStyleNotFound},
		{"template set", assets.ErrTemplateSetNotFound, ErrTemplateSetNotFound},
		{"incomplete", assets.ErrIncompleteTemplateSet, ErrIncompleteTemplateSet},
		{"base path", assets.ErrInvalidBasePath, ErrInvalidAssetPath},
		{"traversal", assets.ErrPathTraversal, ErrInvalidAssetPath},
		{"invalid name", assets.ErrInvalidAssetName, ErrStyleNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := convertAssetError(tt.in)
			if !errors.Is(got, tt.want) {
				t.Errorf("convertAssetError(%v) = %v, want %v", tt.in, got, tt.want)
			}
			if got.Error() != tt.in.Error() {
				t.Errorf("message = %q, want original %q", got.Error(), tt.in.Error())
			}
		})
	}

	if convertAssetError(nil) != nil {
		t.Error("convertAssetError(nil) should be nil")
	}
	other := errors.New("other")
	if convertAssetError(other) != other {
		t.Error("unknown errors should pass through")
	}
}

func TestNewTemplateSet(t *testing.T) {
	t.Parallel()

	ts := NewTemplateSet("n", "c", "b", "d")
	if ts.Name != "n" || ts.Cover != "c" || ts.Content != "b" || ts.Document != "d" {
		t.Errorf("NewTemplateSet() = %+v", ts)
	}
}
