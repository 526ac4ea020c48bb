package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDefaultOpener(t *testing.T) {
	expected := map[string]string{
		"darwin":  "open",
		"linux":   "xdg-open",
		"windows": "start",
	}

	opener := getDefaultOpener()

	if expectedOpener, ok := expected[runtime.GOOS]; ok {
		assert.Equal(t, expectedOpener, opener)
	} else {
		assert.Equal(t, "open", opener)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	assert.Equal(t, SourceListing, cfg.Source.Kind)
	assert.Equal(t, 30*time.Second, cfg.Fetch.HTTPTimeout)
	assert.NotEmpty(t, cfg.Fetch.UserAgent)
	assert.Equal(t, 8, cfg.Fetch.Concurrency)
	assert.Equal(t, "h1", cfg.Extract.TitleSelector)
	assert.Equal(t, ".madv p", cfg.Extract.SummarySelector)
	assert.Equal(t, 150, cfg.Extract.SummaryMaxLength)
	assert.Equal(t, 10, cfg.UI.PageSize)
	assert.Equal(t, 5, cfg.UI.MaxVisiblePages)
	assert.Equal(t, "ctrl", cfg.Keys.Modifier)
	assert.Equal(t, "q", cfg.Keys.Bindings.Quit)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_DefaultConfig(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 10, cfg.UI.PageSize)
	assert.Equal(t, 30*time.Second, cfg.Fetch.HTTPTimeout)
}

func TestLoad_FromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "test-config.toml")
	configContent := `
[source]
kind = "manifest"
base_url = "https://docs.example.org"
manifests = ["/topic/a.txt", "/topic/b.txt"]

[fetch]
http_timeout = "60s"
user_agent = "test-agent"

[ui]
page_size = 5

[ui.colors]
primary = "#FF0000"
`
	require.NoError(t, os.WriteFile(configPath, []byte(configContent), 0o644))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, SourceManifest, cfg.Source.Kind)
	assert.Equal(t, []string{"/topic/a.txt", "/topic/b.txt"}, cfg.Source.Manifests)
	assert.Equal(t, 60*time.Second, cfg.Fetch.HTTPTimeout)
	assert.Equal(t, "test-agent", cfg.Fetch.UserAgent)
	assert.Equal(t, 5, cfg.UI.PageSize)
	assert.Equal(t, "#FF0000", cfg.UI.Colors.Primary)

	// untouched keys keep their defaults
	assert.Equal(t, 8, cfg.Fetch.Concurrency)
	assert.Equal(t, "#4ECDC4", cfg.UI.Colors.Secondary)
	assert.Equal(t, 5, cfg.UI.MaxVisiblePages)
}

func TestLoad_EnvOverride(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "env.toml")
	require.NoError(t, os.WriteFile(configPath, []byte("[ui]\npage_size = 7\n"), 0o644))
	t.Setenv("SHELF_UI_PAGE_SIZE", "3")

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.UI.PageSize)
}

func TestSave(t *testing.T) {
	cfg := defaultConfig()
	cfg.Source.Kind = SourceIndex
	cfg.Source.Index = "/search/ArticleSearchList.json"
	cfg.Fetch.UserAgent = "test-save-agent"
	cfg.Fetch.HTTPTimeout = 45 * time.Second
	cfg.Keys.Modifier = "alt"

	savePath := filepath.Join(t.TempDir(), "nested", "saved-config.toml")
	require.NoError(t, Save(cfg, savePath))

	_, statErr := os.Stat(savePath)
	require.NoError(t, statErr)

	loaded, err := Load(savePath)
	require.NoError(t, err)

	assert.Equal(t, SourceIndex, loaded.Source.Kind)
	assert.Equal(t, cfg.Source.Index, loaded.Source.Index)
	assert.Equal(t, cfg.Fetch.UserAgent, loaded.Fetch.UserAgent)
	assert.Equal(t, 45*time.Second, loaded.Fetch.HTTPTimeout)
	assert.Equal(t, "alt", loaded.Keys.Modifier)
}

func TestGenerateDefaultConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "generated.toml")
	require.NoError(t, GenerateDefaultConfig(configPath))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "http_timeout")
	assert.Contains(t, string(data), "30s")

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "ctrl", cfg.Keys.Modifier)
	assert.Equal(t, ".madv p", cfg.Extract.SummarySelector)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"unknown kind", func(c *Config) { c.Source.Kind = "ftp" }, "unknown source kind"},
		{"index without path", func(c *Config) { c.Source.Kind = SourceIndex }, "source.index is required"},
		{"manifest without files", func(c *Config) { c.Source.Kind = SourceManifest }, "source.manifests is required"},
		{"feed without url", func(c *Config) { c.Source.Kind = SourceFeed }, "source.feed is required"},
		{"listing without path", func(c *Config) { c.Source.Listing = "" }, "source.listing is required"},
		{"zero page size", func(c *Config) { c.UI.PageSize = 0 }, "ui.page_size"},
		{"zero visible pages", func(c *Config) { c.UI.MaxVisiblePages = 0 }, "ui.max_visible_pages"},
		{"zero concurrency", func(c *Config) { c.Fetch.Concurrency = 0 }, "fetch.concurrency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTestConfig(t *testing.T) {
	cfg := TestConfig()
	require.NotNil(t, cfg)

	assert.Equal(t, "shelf-test/1.0", cfg.Fetch.UserAgent)
	assert.True(t, cfg.Fetch.AllowPrivate)
	assert.Empty(t, cfg.Cache.Path)
	assert.NoError(t, cfg.Validate())
}
