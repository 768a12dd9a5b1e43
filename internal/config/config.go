// Package config loads and validates the md2card YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/alnah/go-md2card/internal/fileutil"
	"github.com/alnah/go-md2card/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrConfigInvalid   = errors.New("invalid config")
)

// Field limits.
const (
	MaxPathLength  = 4096
	MaxNameLength  = 64 // theme and style names
	MaxColorLength = 32 // "#6366f1", "rebeccapurple", "rgb(1,2,3)"
	MaxCardSide    = 4096
	MinCardSide    = 100
	MaxScale       = 4
	MaxStoreItems  = 10000
)

// Default card geometry and export settings.
const (
	DefaultCardWidth  = 360
	DefaultCardHeight = 480
	DefaultScale      = 2.0
	DefaultServerAddr = "127.0.0.1:8080"
	DefaultStorePath  = "~/.local/share/go-md2card/images.db"
)

// DirectionPattern matches the gradient directions accepted for custom
// backgrounds: a "to <side>" keyword or an angle in degrees.
var DirectionPattern = regexp.MustCompile(`^(to (top|bottom|left|right)( (left|right))?|-?\d{1,3}deg)$`)

// Config holds all configuration for card generation.
type Config struct {
	Input      InputConfig      `yaml:"input"`
	Output     OutputConfig     `yaml:"output"`
	Card       CardConfig       `yaml:"card"`
	Background BackgroundConfig `yaml:"background"`
	CSS        CSSConfig        `yaml:"css"`
	Assets     AssetsConfig     `yaml:"assets"`
	Images     ImagesConfig     `yaml:"images"`
	Server     ServerConfig     `yaml:"server"`
}

// InputConfig defines input source options.
type InputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // empty = must specify
}

// OutputConfig defines output destination options.
type OutputConfig struct {
	DefaultDir string `yaml:"defaultDir"` // empty = next to the source
}

// CardConfig defines card geometry and rendering.
type CardConfig struct {
	Theme       string  `yaml:"theme"`
	Width       int     `yaml:"width"`
	Height      int     `yaml:"height"`
	Scale       float64 `yaml:"scale"` // device scale factor for PNG export
	Transparent bool    `yaml:"transparent"`
}

// BackgroundConfig defines an optional custom card background gradient.
type BackgroundConfig struct {
	From      string `yaml:"from"`
	To        string `yaml:"to"`
	Direction string `yaml:"direction"`
}

// Enabled reports whether a custom background is configured.
func (b BackgroundConfig) Enabled() bool {
	return b.From != "" || b.To != ""
}

// CSSConfig defines CSS styling options.
type CSSConfig struct {
	Style string `yaml:"style"` // embedded style name or path to a .css file
}

// AssetsConfig defines asset loading options.
type AssetsConfig struct {
	BasePath string `yaml:"basePath"` // empty = embedded assets
}

// ImagesConfig defines the image store.
type ImagesConfig struct {
	Store    string `yaml:"store"` // SQLite database path
	MaxItems int    `yaml:"maxItems"`
	MaxBytes int64  `yaml:"maxBytes"`
	Remote   bool   `yaml:"remote"` // inline remote <img> sources on export
}

// ServerConfig defines the preview server.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Validate checks every section. Called by LoadConfig, but available for
// callers who build a Config by hand.
func (c *Config) Validate() error {
	sections := []struct {
		name string
		v    validation.Validatable
	}{
		{"input", &c.Input},
		{"output", &c.Output},
		{"card", &c.Card},
		{"background", &c.Background},
		{"css", &c.CSS},
		{"assets", &c.Assets},
		{"images", &c.Images},
		{"server", &c.Server},
	}
	for _, s := range sections {
		if err := s.v.Validate(); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrConfigInvalid, s.name, err)
		}
	}
	return nil
}

// Validate validates the input section.
func (c *InputConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DefaultDir, validation.Length(0, MaxPathLength)),
	)
}

// Validate validates the output section.
func (c *OutputConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.DefaultDir, validation.Length(0, MaxPathLength)),
	)
}

// Validate validates the card section. Zero values mean "use the default".
func (c *CardConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Theme, validation.Length(0, MaxNameLength)),
		validation.Field(&c.Width, validation.When(c.Width != 0, validation.Min(MinCardSide), validation.Max(MaxCardSide))),
		validation.Field(&c.Height, validation.When(c.Height != 0, validation.Min(MinCardSide), validation.Max(MaxCardSide))),
		validation.Field(&c.Scale, validation.When(c.Scale != 0, validation.Min(0.5), validation.Max(float64(MaxScale)))),
	)
}

// Validate validates the background section. Both colors are required once
// either one is set.
func (c *BackgroundConfig) Validate() error {
	enabled := c.Enabled()
	return validation.ValidateStruct(c,
		validation.Field(&c.From, validation.When(enabled, validation.Required), validation.Length(0, MaxColorLength)),
		validation.Field(&c.To, validation.When(enabled, validation.Required), validation.Length(0, MaxColorLength)),
		validation.Field(&c.Direction, validation.Match(DirectionPattern)),
	)
}

// Validate validates the css section.
func (c *CSSConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Style, validation.Length(0, MaxPathLength)),
	)
}

// Validate validates the assets section.
func (c *AssetsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BasePath, validation.Length(0, MaxPathLength)),
	)
}

// Validate validates the images section.
func (c *ImagesConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Store, validation.Length(0, MaxPathLength)),
		validation.Field(&c.MaxItems, validation.Min(0), validation.Max(MaxStoreItems)),
		validation.Field(&c.MaxBytes, validation.Min(int64(0))),
	)
}

// Validate validates the server section.
func (c *ServerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Addr, validation.Length(0, 255)),
	)
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Card: CardConfig{
			Theme:  "default",
			Width:  DefaultCardWidth,
			Height: DefaultCardHeight,
			Scale:  DefaultScale,
		},
		Background: BackgroundConfig{Direction: "135deg"},
		Images:     ImagesConfig{Store: DefaultStorePath},
		Server:     ServerConfig{Addr: DefaultServerAddr},
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator, it's treated as a file path.
// Otherwise it's searched by name in the standard locations.
// Fields missing from the file keep their DefaultConfig values.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !fileutil.IsFilePath(nameOrPath) {
		var err error
		if configPath, err = resolveConfigPath(nameOrPath); err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yamlutil.UnmarshalStrict(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SearchPaths returns the candidate files for a config name, in lookup order:
// current directory then the user config directory, .yaml before .yml.
func SearchPaths(name string) []string {
	extensions := []string{".yaml", ".yml"}
	paths := make([]string, 0, len(extensions)*2)
	for _, ext := range extensions {
		paths = append(paths, name+ext)
	}
	if dir, err := os.UserConfigDir(); err == nil {
		for _, ext := range extensions {
			paths = append(paths, filepath.Join(dir, "go-md2card", name+ext))
		}
	}
	return paths
}

func resolveConfigPath(name string) (string, error) {
	tried := SearchPaths(name)
	for _, p := range tried {
		if fileutil.FileExists(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}
