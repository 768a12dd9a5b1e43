package assets

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// writeTemplateFiles creates the named files under templates/<set>/ in dir.
func writeTemplateFiles(t *testing.T, dir, set string, files ...string) {
	t.Helper()

	setDir := filepath.Join(dir, "templates", set)
	if err := os.MkdirAll(setDir, 0755); err != nil {
		t.Fatalf("failed to create template dir: %v", err)
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(setDir, f), []byte("<!-- "+f+" -->"), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", f, err)
		}
	}
}

func TestNewFilesystemLoader(t *testing.T) {
	t.Parallel()

	t.Run("valid directory", func(t *testing.T) {
		t.Parallel()

		loader, err := NewFilesystemLoader(t.TempDir())
		if err != nil {
			t.Fatalf("NewFilesystemLoader() error = %v", err)
		}
		if loader == nil {
			t.Fatal("NewFilesystemLoader() returned nil")
		}
	})

	t.Run("empty path returns error", func(t *testing.T) {
		t.Parallel()

		_, err := NewFilesystemLoader("")
		if !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("NewFilesystemLoader(\"\") error = %v, want ErrInvalidBasePath", err)
		}
	})

	t.Run("nonexistent directory returns error", func(t *testing.T) {
		t.Parallel()

		_, err := NewFilesystemLoader("/nonexistent/path/abc123xyz")
		if !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("NewFilesystemLoader() error = %v, want ErrInvalidBasePath", err)
		}
	})

	t.Run("file instead of directory returns error", func(t *testing.T) {
		t.Parallel()

		filePath := filepath.Join(t.TempDir(), "file.txt")
		if err := os.WriteFile(filePath, []byte("test"), 0644); err != nil {
			t.Fatalf("failed to create test file: %v", err)
		}

		_, err := NewFilesystemLoader(filePath)
		if !errors.Is(err, ErrInvalidBasePath) {
			t.Errorf("NewFilesystemLoader() error = %v, want ErrInvalidBasePath", err)
		}
	})
}

func TestFilesystemLoader_LoadStyle(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	stylesDir := filepath.Join(tmpDir, "styles")
	if err := os.MkdirAll(stylesDir, 0755); err != nil {
		t.Fatalf("failed to create styles dir: %v", err)
	}
	cssContent := ".card-content { color: red; }"
	if err := os.WriteFile(filepath.Join(stylesDir, "custom.css"), []byte(cssContent), 0644); err != nil {
		t.Fatalf("failed to write CSS file: %v", err)
	}

	loader, err := NewFilesystemLoader(tmpDir)
	if err != nil {
		t.Fatalf("NewFilesystemLoader() error = %v", err)
	}

	t.Run("loads existing style", func(t *testing.T) {
		t.Parallel()

		got, err := loader.LoadStyle("custom")
		if err != nil {
			t.Fatalf("LoadStyle() error = %v", err)
		}
		if got != cssContent {
			t.Errorf("LoadStyle() = %q, want %q", got, cssContent)
		}
	})

	t.Run("returns ErrStyleNotFound for nonexistent", func(t *testing.T) {
		t.Parallel()

		_, err := loader.LoadStyle("nonexistent")
		if !errors.Is(err, ErrStyleNotFound) {
			t.Errorf("LoadStyle() error = %v, want ErrStyleNotFound", err)
		}
	})

	t.Run("returns ErrInvalidAssetName for invalid name", func(t *testing.T) {
		t.Parallel()

		_, err := loader.LoadStyle("../escape")
		if !errors.Is(err, ErrInvalidAssetName) {
			t.Errorf("LoadStyle() error = %v, want ErrInvalidAssetName", err)
		}
	})
}

func TestFilesystemLoader_LoadTemplateSet(t *testing.T) {
	t.Parallel()

	t.Run("complete set", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeTemplateFiles(t, dir, "brand", templateFiles...)

		loader, err := NewFilesystemLoader(dir)
		if err != nil {
			t.Fatalf("NewFilesystemLoader() error = %v", err)
		}
		ts, err := loader.LoadTemplateSet("brand")
		if err != nil {
			t.Fatalf("LoadTemplateSet() error = %v", err)
		}
		if ts.Cover != "<!-- cover.html -->" || ts.Content != "<!-- content.html -->" || ts.Document != "<!-- document.html -->" {
			t.Errorf("LoadTemplateSet() = %+v, fields not mapped to files", ts)
		}
	})

	t.Run("missing set", func(t *testing.T) {
		t.Parallel()

		loader, err := NewFilesystemLoader(t.TempDir())
		if err != nil {
			t.Fatalf("NewFilesystemLoader() error = %v", err)
		}
		_, err = loader.LoadTemplateSet("absent")
		if !errors.Is(err, ErrTemplateSetNotFound) {
			t.Errorf("LoadTemplateSet() error = %v, want ErrTemplateSetNotFound", err)
		}
	})

	t.Run("incomplete set names missing files", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeTemplateFiles(t, dir, "partial", coverFile)

		loader, err := NewFilesystemLoader(dir)
		if err != nil {
			t.Fatalf("NewFilesystemLoader() error = %v", err)
		}
		_, err = loader.LoadTemplateSet("partial")
		if !errors.Is(err, ErrIncompleteTemplateSet) {
			t.Fatalf("LoadTemplateSet() error = %v, want ErrIncompleteTemplateSet", err)
		}
		for _, f := range []string{contentFile, documentFile} {
			if !strings.Contains(err.Error(), f) {
				t.Errorf("error %q does not name %s", err, f)
			}
		}
	})

	t.Run("symlink escaping base is rejected", func(t *testing.T) {
		t.Parallel()

		if runtime.GOOS == "windows" {
			t.Skip("symlinks need privileges on windows")
		}

		outside := t.TempDir()
		writeTemplateFiles(t, outside, "evil", templateFiles...)

		dir := t.TempDir()
		if err := os.MkdirAll(filepath.Join(dir, "templates"), 0755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.Symlink(filepath.Join(outside, "templates", "evil"), filepath.Join(dir, "templates", "evil")); err != nil {
			t.Fatalf("symlink: %v", err)
		}

		loader, err := NewFilesystemLoader(dir)
		if err != nil {
			t.Fatalf("NewFilesystemLoader() error = %v", err)
		}
		_, err = loader.LoadTemplateSet("evil")
		if !errors.Is(err, ErrPathTraversal) {
			t.Errorf("LoadTemplateSet() error = %v, want ErrPathTraversal", err)
		}
	})
}
