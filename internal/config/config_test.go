package config

// Notes:
// - LoadConfig name lookup tests use t.Chdir and t.Setenv, so they cannot run
//   in parallel.
// - goccy/go-yaml strict mode rejects unknown keys at any depth.

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return path
}

// ---------------------------------------------------------------------------
// DefaultConfig
// ---------------------------------------------------------------------------

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.Card.Theme != "default" {
		t.Errorf("Card.Theme = %q, want default", cfg.Card.Theme)
	}
	if cfg.Card.Width != DefaultCardWidth || cfg.Card.Height != DefaultCardHeight {
		t.Errorf("Card size = %dx%d, want %dx%d", cfg.Card.Width, cfg.Card.Height, DefaultCardWidth, DefaultCardHeight)
	}
	if cfg.Card.Scale != DefaultScale {
		t.Errorf("Card.Scale = %v, want %v", cfg.Card.Scale, DefaultScale)
	}
	if cfg.Background.Enabled() {
		t.Error("Background.Enabled() = true, want false")
	}
	if cfg.Images.Store != DefaultStorePath {
		t.Errorf("Images.Store = %q, want %q", cfg.Images.Store, DefaultStorePath)
	}
	if cfg.Server.Addr != DefaultServerAddr {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, DefaultServerAddr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
}

// ---------------------------------------------------------------------------
// Validate
// ---------------------------------------------------------------------------

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string // substring naming the section; empty = valid
	}{
		{
			name:   "zero card values use defaults",
			mutate: func(c *Config) { c.Card = CardConfig{} },
		},
		{
			name:    "card too narrow",
			mutate:  func(c *Config) { c.Card.Width = 50 },
			wantErr: "card",
		},
		{
			name:    "card too tall",
			mutate:  func(c *Config) { c.Card.Height = MaxCardSide + 1 },
			wantErr: "card",
		},
		{
			name:    "scale too large",
			mutate:  func(c *Config) { c.Card.Scale = 8 },
			wantErr: "card",
		},
		{
			name:    "theme name too long",
			mutate:  func(c *Config) { c.Card.Theme = strings.Repeat("x", MaxNameLength+1) },
			wantErr: "card",
		},
		{
			name: "background with both colors",
			mutate: func(c *Config) {
				c.Background = BackgroundConfig{From: "#ff0000", To: "#0000ff", Direction: "to right"}
			},
		},
		{
			name:    "background missing second color",
			mutate:  func(c *Config) { c.Background.From = "#ff0000" },
			wantErr: "background",
		},
		{
			name: "background direction not allowed",
			mutate: func(c *Config) {
				c.Background = BackgroundConfig{From: "#fff", To: "#000", Direction: "diagonal"}
			},
			wantErr: "background",
		},
		{
			name: "background angle direction",
			mutate: func(c *Config) {
				c.Background = BackgroundConfig{From: "#fff", To: "#000", Direction: "45deg"}
			},
		},
		{
			name:    "negative store ceiling",
			mutate:  func(c *Config) { c.Images.MaxItems = -1 },
			wantErr: "images",
		},
		{
			name:    "store path too long",
			mutate:  func(c *Config) { c.Images.Store = strings.Repeat("a", MaxPathLength+1) },
			wantErr: "images",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, ErrConfigInvalid) {
				t.Fatalf("Validate() error = %v, want ErrConfigInvalid", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to name %q", err, tt.wantErr)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// LoadConfig
// ---------------------------------------------------------------------------

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("empty name returns ErrEmptyConfigName", func(t *testing.T) {
		t.Parallel()

		if _, err := LoadConfig(""); !errors.Is(err, ErrEmptyConfigName) {
			t.Errorf("error = %v, want ErrEmptyConfigName", err)
		}
	})

	t.Run("file path overlays defaults", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, t.TempDir(), "cards.yaml", `card:
  theme: retro
  width: 400
background:
  from: "#ff0000"
  to: "#0000ff"
images:
  remote: true
`)
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Card.Theme != "retro" || cfg.Card.Width != 400 {
			t.Errorf("Card = %+v, want retro/400", cfg.Card)
		}
		if cfg.Card.Height != DefaultCardHeight {
			t.Errorf("Card.Height = %d, want default %d", cfg.Card.Height, DefaultCardHeight)
		}
		if cfg.Background.Direction != "135deg" {
			t.Errorf("Background.Direction = %q, want default", cfg.Background.Direction)
		}
		if !cfg.Images.Remote {
			t.Error("Images.Remote = false, want true")
		}
	})

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()

		if _, err := LoadConfig("/nonexistent/path/config.yaml"); !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("invalid YAML returns ErrConfigParse", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, t.TempDir(), "bad.yaml", "card: [unclosed")
		if _, err := LoadConfig(path); !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("unknown field returns ErrConfigParse", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, t.TempDir(), "typo.yaml", "card:\n  themes: retro\n")
		if _, err := LoadConfig(path); !errors.Is(err, ErrConfigParse) {
			t.Errorf("error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("invalid values return ErrConfigInvalid", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, t.TempDir(), "invalid.yaml", "card:\n  scale: 10\n")
		if _, err := LoadConfig(path); !errors.Is(err, ErrConfigInvalid) {
			t.Errorf("error = %v, want ErrConfigInvalid", err)
		}
	})
}

func TestLoadConfig_ByName(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME drives os.UserConfigDir only on linux")
	}
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))

	work := t.TempDir()
	t.Chdir(work)

	t.Run("user config directory", func(t *testing.T) {
		writeConfig(t, filepath.Join(home, ".config", "go-md2card"), "team.yml", "card:\n  theme: botanical\n")

		cfg, err := LoadConfig("team")
		if err != nil {
			t.Fatalf("LoadConfig(team) error = %v", err)
		}
		if cfg.Card.Theme != "botanical" {
			t.Errorf("Card.Theme = %q, want botanical", cfg.Card.Theme)
		}
	})

	t.Run("current directory wins", func(t *testing.T) {
		writeConfig(t, work, "team.yaml", "card:\n  theme: terminal\n")

		cfg, err := LoadConfig("team")
		if err != nil {
			t.Fatalf("LoadConfig(team) error = %v", err)
		}
		if cfg.Card.Theme != "terminal" {
			t.Errorf("Card.Theme = %q, want terminal", cfg.Card.Theme)
		}
	})

	t.Run("unknown name lists tried paths", func(t *testing.T) {
		_, err := LoadConfig("absent")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("error = %v, want ErrConfigNotFound", err)
		}
		if !strings.Contains(err.Error(), "absent.yaml") || !strings.Contains(err.Error(), "go-md2card") {
			t.Errorf("error = %q, want tried paths", err)
		}
	})
}

func TestSearchPaths(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME drives os.UserConfigDir only on linux")
	}
	t.Setenv("XDG_CONFIG_HOME", "/xdg")

	got := SearchPaths("cards")
	want := []string{"cards.yaml", "cards.yml", "/xdg/go-md2card/cards.yaml", "/xdg/go-md2card/cards.yml"}
	if len(got) != len(want) {
		t.Fatalf("SearchPaths() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SearchPaths()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
