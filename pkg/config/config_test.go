package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(content), 0o600))
	return dir
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SEEK_CONFIG_PATH", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.SearchPageSize)
	assert.True(t, cfg.SearchEnabled)
	assert.False(t, cfg.ExternalSearchEnabled)
	assert.Equal(t, "file", cfg.BlobDriver)
	assert.Equal(t, "default", cfg.Source("search_page_size"))
	assert.NoError(t, cfg.Validate())
}

func TestLoadFileThenEnvironment(t *testing.T) {
	dir := writeConfigFile(t, `
site_base_host: https://fairdomhub.org
search_enabled: false
search_page_size: 50
programmes_enabled: false
trusted_proxies:
  - 10.0.0.0/8
`)
	t.Setenv("SEEK_CONFIG_PATH", dir)
	t.Setenv("SEEK_SEARCH_PAGE_SIZE", "10")
	t.Setenv("SEEK_EXTERNAL_SEARCH_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://fairdomhub.org", cfg.SiteBaseHost)
	assert.Equal(t, "file", cfg.Source("site_base_host"))

	// explicit false in the file wins over the true default
	assert.False(t, cfg.SearchEnabled)
	assert.Equal(t, "file", cfg.Source("search_enabled"))
	assert.False(t, cfg.ProgrammesEnabled)

	assert.Equal(t, 10, cfg.SearchPageSize)
	assert.Equal(t, "environment", cfg.Source("search_page_size"))
	assert.True(t, cfg.ExternalSearchEnabled)

	assert.True(t, cfg.IsTrustedProxy("10.1.2.3"))
	assert.False(t, cfg.IsTrustedProxy("192.168.0.1"))
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := writeConfigFile(t, "search_page_size: [not, an, int")
	t.Setenv("SEEK_CONFIG_PATH", dir)

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *SeekConfig)
		wantErr string
	}{
		{"defaults", func(c *SeekConfig) {}, ""},
		{"bad driver", func(c *SeekConfig) { c.BlobDriver = "ftp" }, "invalid blob_driver"},
		{"s3 without bucket", func(c *SeekConfig) { c.BlobDriver = "s3" }, "s3_bucket is required"},
		{"zero page size", func(c *SeekConfig) { c.SearchPageSize = 0 }, "search_page_size"},
		{"bad proxy", func(c *SeekConfig) { c.TrustedProxies = []string{"nope"} }, "trusted_proxies"},
		{"bad host", func(c *SeekConfig) { c.SiteBaseHost = "not a url" }, "site_base_host"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefault()
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

func TestAttributesHideSecret(t *testing.T) {
	t.Setenv("SEEK_CONFIG_PATH", t.TempDir())
	t.Setenv("SEEK_SESSION_SECRET", "sekrit")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sekrit", cfg.SessionSecret)

	text := cfg.FormatText()
	assert.NotContains(t, text, "sekrit")
	assert.True(t, strings.Contains(text, "(hidden)"))

	js, err := cfg.FormatJSON()
	require.NoError(t, err)
	assert.NotContains(t, js, "sekrit")
	assert.Contains(t, js, `"config_file"`)
}
