package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration structure.
// The page cache never reads it directly; internal/app turns it into
// constructor options.
type Config struct {
	TextColor       string `yaml:"text_color"`       // Foreground color of the app
	BackgroundColor string `yaml:"background_color"` // Background color of the app

	Reader struct {
		ShowBottomIndicator bool   `yaml:"show_bottom_indicator"` // Show "page N / total" under the page
		LookAround          int    `yaml:"look_around"`           // Pages buffered on each side of the current page
		Prefetch            bool   `yaml:"prefetch"`              // Replenish the window in the background
		Prewarm             bool   `yaml:"prewarm"`               // Keep the first document open after import
		Direction           string `yaml:"direction"`             // rtl (Left = next) or ltr (Right = next)
	} `yaml:"reader"`

	Decoder struct {
		DPI     float64 `yaml:"dpi"`     // Render resolution for documents
		Workers int     `yaml:"workers"` // Documents opened concurrently while importing
	} `yaml:"decoder"`

	Import struct {
		Documents []string `yaml:"documents"` // Glob patterns classified as documents
		Images    []string `yaml:"images"`    // Glob patterns classified as image pages
	} `yaml:"import"`

	Search struct {
		Enabled  bool   `yaml:"enabled"`
		BaseURL  string `yaml:"base_url"`  // Catalog API root
		CoverURL string `yaml:"cover_url"` // Cover image CDN root
		Timeout  int    `yaml:"timeout"`   // Request timeout in seconds
	} `yaml:"search"`

	Library struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"` // SQLite database holding import history
	} `yaml:"library"`

	Log struct {
		Debug bool   `yaml:"debug"`
		JSON  bool   `yaml:"json"`
		File  string `yaml:"file"`
	} `yaml:"log"`
}

// DefaultPath returns ~/.config/fiapo/config.yaml
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "fiapo", "config.yaml"), nil
}

// LoadConfig loads configuration from the default location
// (~/.config/fiapo/config.yaml).
func LoadConfig() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadConfigFile(path)
}

// LoadConfigFile loads configuration from a specific file path.
// If the file doesn't exist, returns default configuration.
func LoadConfigFile(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Decoding over the defaults keeps every field the file leaves out
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	cfg.Library.Path = ExpandHome(cfg.Library.Path)
	cfg.Log.File = ExpandHome(cfg.Log.File)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns the default configuration.
func defaultConfig() *Config {
	cfg := &Config{}

	cfg.TextColor = "#FFFFFF"
	cfg.BackgroundColor = "#111416"

	cfg.Reader.ShowBottomIndicator = true
	cfg.Reader.LookAround = 2 // previous two, current and next two
	cfg.Reader.Prefetch = false
	cfg.Reader.Prewarm = true
	cfg.Reader.Direction = "rtl"

	cfg.Decoder.DPI = 150
	cfg.Decoder.Workers = 4

	cfg.Import.Documents = []string{"*.{pdf,PDF}", "*.epub", "*.xps", "*.oxps", "*.cbz", "*.fb2", "*.mobi"}
	cfg.Import.Images = []string{"*.{png,PNG}", "*.{jpg,jpeg,JPG,JPEG}", "*.gif", "*.bmp", "*.{tif,tiff}", "*.webp"}

	cfg.Search.Enabled = true
	cfg.Search.BaseURL = "https://api.mangadex.org"
	cfg.Search.CoverURL = "https://uploads.mangadex.org"
	cfg.Search.Timeout = 5

	cfg.Library.Enabled = true
	if home, err := os.UserHomeDir(); err == nil {
		cfg.Library.Path = filepath.Join(home, ".local", "share", "fiapo", "library.db")
	}

	return cfg
}

// SaveConfig saves the configuration to the specified file.
// It creates parent directories if they don't exist.
func SaveConfig(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("nil config")
	}

	if c.Reader.LookAround < 0 {
		return fmt.Errorf("reader.look_around must be >= 0")
	}
	switch c.Reader.Direction {
	case "rtl", "ltr":
	default:
		return fmt.Errorf("invalid reader.direction: %s", c.Reader.Direction)
	}

	if c.Decoder.DPI <= 0 {
		return fmt.Errorf("decoder.dpi must be > 0")
	}
	if c.Decoder.Workers < 1 {
		return fmt.Errorf("decoder.workers must be >= 1")
	}

	for i, pattern := range append(append([]string{}, c.Import.Documents...), c.Import.Images...) {
		if strings.TrimSpace(pattern) == "" {
			return fmt.Errorf("import pattern %d is empty", i)
		}
	}

	if c.Search.Enabled {
		if c.Search.BaseURL == "" {
			return fmt.Errorf("search.base_url is required when search is enabled")
		}
		if c.Search.Timeout < 1 {
			return fmt.Errorf("search.timeout must be >= 1 second")
		}
	}

	if c.Library.Enabled && c.Library.Path == "" {
		return fmt.Errorf("library.path is required when the library is enabled")
	}

	return nil
}

// New creates a new configuration instance with default values.
func New() *Config {
	return defaultConfig()
}

// NewTestConfig creates a configuration instance for testing purposes:
// no library, no search, synchronous replenishment.
func NewTestConfig() *Config {
	cfg := defaultConfig()
	cfg.Library.Enabled = false
	cfg.Search.Enabled = false
	cfg.Reader.Prefetch = false
	cfg.Decoder.Workers = 2
	return cfg
}

// ExpandHome replaces a leading ~ with the user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// NextIsLeft reports whether the Left key turns to the next page
func (c *Config) NextIsLeft() bool {
	return c.Reader.Direction == "rtl"
}
