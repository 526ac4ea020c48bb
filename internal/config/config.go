package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

// Source kinds selectable in [source] kind.
const (
	SourceIndex    = "index"
	SourceManifest = "manifest"
	SourceListing  = "listing"
	SourceFeed     = "feed"
)

type Config struct {
	Source  SourceConfig  `mapstructure:"source"`
	Fetch   FetchConfig   `mapstructure:"fetch"`
	Extract ExtractConfig `mapstructure:"extract"`
	UI      UIConfig      `mapstructure:"ui"`
	Keys    KeyConfig     `mapstructure:"keys"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Open    OpenConfig    `mapstructure:"open"`
}

// SourceConfig selects where article locations come from. Index, Listing,
// Feed and Manifests may be absolute URLs or paths resolved against BaseURL.
type SourceConfig struct {
	Kind      string   `mapstructure:"kind"`
	BaseURL   string   `mapstructure:"base_url"`
	Index     string   `mapstructure:"index"`
	Manifests []string `mapstructure:"manifests"`
	Listing   string   `mapstructure:"listing"`
	Feed      string   `mapstructure:"feed"`
}

type FetchConfig struct {
	HTTPTimeout  time.Duration `mapstructure:"http_timeout"`
	UserAgent    string        `mapstructure:"user_agent"`
	Concurrency  int           `mapstructure:"concurrency"`
	AllowPrivate bool          `mapstructure:"allow_private"`
}

type ExtractConfig struct {
	TitleSelector    string `mapstructure:"title_selector"`
	SummarySelector  string `mapstructure:"summary_selector"`
	ReaderSelector   string `mapstructure:"reader_selector"`
	SummaryMaxLength int    `mapstructure:"summary_max_length"`
}

type UIConfig struct {
	PageSize         int      `mapstructure:"page_size"`
	MaxVisiblePages  int      `mapstructure:"max_visible_pages"`
	WordWrapMaxWidth int      `mapstructure:"word_wrap_max_width"`
	WordWrapMinWidth int      `mapstructure:"word_wrap_min_width"`
	Colors           UIColors `mapstructure:"colors"`
}

type UIColors struct {
	Primary   string `mapstructure:"primary"`
	Secondary string `mapstructure:"secondary"`
	Accent    string `mapstructure:"accent"`
	Text      string `mapstructure:"text"`
	Muted     string `mapstructure:"muted"`
	Error     string `mapstructure:"error"`
	Success   string `mapstructure:"success"`
}

type KeyConfig struct {
	Modifier string      `mapstructure:"modifier"`
	Bindings KeyBindings `mapstructure:"bindings"`
}

type KeyBindings struct {
	Quit   string `mapstructure:"quit"`
	Search string `mapstructure:"search"`
	Reload string `mapstructure:"reload"`
	Open   string `mapstructure:"open"`
	Back   string `mapstructure:"back"`
}

// CacheConfig controls the session page cache. An empty Path means a
// temporary file that is removed when the program exits.
type CacheConfig struct {
	Path    string        `mapstructure:"path"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

type OpenConfig struct {
	Command string `mapstructure:"command"`
}

func defaultConfig() *Config {
	return &Config{
		Source: SourceConfig{
			Kind:    SourceListing,
			BaseURL: "http://localhost:8080",
			Listing: "/articles",
		},
		Fetch: FetchConfig{
			HTTPTimeout: 30 * time.Second,
			UserAgent:   "shelf/1.0 (https://github.com/pders01/shelf)",
			Concurrency: 8,
			// The default base URL is a local development server.
			AllowPrivate: true,
		},
		Extract: ExtractConfig{
			TitleSelector:    "h1",
			SummarySelector:  ".madv p",
			ReaderSelector:   ".madv",
			SummaryMaxLength: 150,
		},
		UI: UIConfig{
			PageSize:         10,
			MaxVisiblePages:  5,
			WordWrapMaxWidth: 120,
			WordWrapMinWidth: 40,
			Colors: UIColors{
				Primary:   "#FF6B6B",
				Secondary: "#4ECDC4",
				Accent:    "#95E1D3",
				Text:      "#EAEAEA",
				Muted:     "#94A3B8",
				Error:     "#EF4444",
				Success:   "#10B981",
			},
		},
		Keys: KeyConfig{
			Modifier: "ctrl",
			Bindings: KeyBindings{
				Quit:   "q",
				Search: "/",
				Reload: "r",
				Open:   "o",
				Back:   "esc",
			},
		},
		Cache: CacheConfig{
			Timeout: 1 * time.Second,
		},
		Log: LogConfig{
			Level: "off",
		},
		Open: OpenConfig{
			Command: getDefaultOpener(),
		},
	}
}

func getDefaultOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "linux":
		return "xdg-open"
	case "windows":
		return "start"
	default:
		return "open"
	}
}

// Default returns a fresh copy of the built-in configuration.
func Default() *Config {
	return defaultConfig()
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v, defaultConfig())

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		homeDir, _ := os.UserHomeDir()
		configDir := filepath.Join(homeDir, ".config", "shelf")

		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("SHELF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	config.Cache.Path = expandPath(config.Cache.Path)
	config.Log.Path = expandPath(config.Log.Path)

	return &config, nil
}

// setDefaults registers every leaf key so partial files and SHELF_* env
// variables merge with the built-in values.
func setDefaults(v *viper.Viper, cfg *Config) {
	for key, value := range flatten("", toMap(cfg)) {
		v.SetDefault(key, value)
	}
}

func flatten(prefix string, m map[string]any) map[string]any {
	out := make(map[string]any)
	for k, val := range m {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if nested, ok := val.(map[string]any); ok {
			for nk, nv := range flatten(key, nested) {
				out[nk] = nv
			}
			continue
		}
		out[key] = val
	}
	return out
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

// Validate reports configuration that would make ingestion impossible.
func (c *Config) Validate() error {
	switch c.Source.Kind {
	case SourceIndex:
		if c.Source.Index == "" {
			return fmt.Errorf("source.index is required for kind %q", c.Source.Kind)
		}
	case SourceManifest:
		if len(c.Source.Manifests) == 0 {
			return fmt.Errorf("source.manifests is required for kind %q", c.Source.Kind)
		}
	case SourceListing:
		if c.Source.Listing == "" {
			return fmt.Errorf("source.listing is required for kind %q", c.Source.Kind)
		}
	case SourceFeed:
		if c.Source.Feed == "" {
			return fmt.Errorf("source.feed is required for kind %q", c.Source.Kind)
		}
	default:
		return fmt.Errorf("unknown source kind %q", c.Source.Kind)
	}
	if c.UI.PageSize < 1 {
		return fmt.Errorf("ui.page_size must be at least 1, got %d", c.UI.PageSize)
	}
	if c.UI.MaxVisiblePages < 1 {
		return fmt.Errorf("ui.max_visible_pages must be at least 1, got %d", c.UI.MaxVisiblePages)
	}
	if c.Fetch.Concurrency < 1 {
		return fmt.Errorf("fetch.concurrency must be at least 1, got %d", c.Fetch.Concurrency)
	}
	return nil
}

// toMap converts the config into TOML-friendly nested maps, rendering
// durations as strings for readability.
func toMap(c *Config) map[string]any {
	manifests := make([]any, 0, len(c.Source.Manifests))
	for _, m := range c.Source.Manifests {
		manifests = append(manifests, m)
	}

	return map[string]any{
		"source": map[string]any{
			"kind":      c.Source.Kind,
			"base_url":  c.Source.BaseURL,
			"index":     c.Source.Index,
			"manifests": manifests,
			"listing":   c.Source.Listing,
			"feed":      c.Source.Feed,
		},
		"fetch": map[string]any{
			"http_timeout":  c.Fetch.HTTPTimeout.String(),
			"user_agent":    c.Fetch.UserAgent,
			"concurrency":   c.Fetch.Concurrency,
			"allow_private": c.Fetch.AllowPrivate,
		},
		"extract": map[string]any{
			"title_selector":     c.Extract.TitleSelector,
			"summary_selector":   c.Extract.SummarySelector,
			"reader_selector":    c.Extract.ReaderSelector,
			"summary_max_length": c.Extract.SummaryMaxLength,
		},
		"ui": map[string]any{
			"page_size":           c.UI.PageSize,
			"max_visible_pages":   c.UI.MaxVisiblePages,
			"word_wrap_max_width": c.UI.WordWrapMaxWidth,
			"word_wrap_min_width": c.UI.WordWrapMinWidth,
			"colors": map[string]any{
				"primary":   c.UI.Colors.Primary,
				"secondary": c.UI.Colors.Secondary,
				"accent":    c.UI.Colors.Accent,
				"text":      c.UI.Colors.Text,
				"muted":     c.UI.Colors.Muted,
				"error":     c.UI.Colors.Error,
				"success":   c.UI.Colors.Success,
			},
		},
		"keys": map[string]any{
			"modifier": c.Keys.Modifier,
			"bindings": map[string]any{
				"quit":   c.Keys.Bindings.Quit,
				"search": c.Keys.Bindings.Search,
				"reload": c.Keys.Bindings.Reload,
				"open":   c.Keys.Bindings.Open,
				"back":   c.Keys.Bindings.Back,
			},
		},
		"cache": map[string]any{
			"path":    c.Cache.Path,
			"timeout": c.Cache.Timeout.String(),
		},
		"log": map[string]any{
			"level": c.Log.Level,
			"path":  c.Log.Path,
		},
		"metrics": map[string]any{
			"addr": c.Metrics.Addr,
		},
		"open": map[string]any{
			"command": c.Open.Command,
		},
	}
}

// Encode renders the config as TOML.
func Encode(c *Config) ([]byte, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(toMap(c)); err != nil {
		return nil, fmt.Errorf("encoding config: %w", err)
	}
	return buf.Bytes(), nil
}

func Save(config *Config, path string) error {
	data, err := Encode(config)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
