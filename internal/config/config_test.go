package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pmerrors "github.com/thoreinstein/postmatter/internal/errors"
)

// isolate resets viper and moves into an empty working directory so no
// project or global config leaks into the test.
func isolate(t *testing.T) string {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	xdg.Reload()
	t.Cleanup(xdg.Reload)
	t.Chdir(dir)
	return dir
}

func TestInit_Defaults(t *testing.T) {
	isolate(t)
	Init()

	assert.Equal(t, 1, viper.GetInt("version"))
	assert.Equal(t, "src/pages", viper.GetString("content_dir"))
	assert.Equal(t, []string{".md", ".mdx"}, viper.GetStringSlice("extensions"))
	assert.Equal(t, 160, viper.GetInt("max_description_length"))
}

func TestLoad_NoConfigFile(t *testing.T) {
	isolate(t)
	Init()

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default().ContentDir, cfg.ContentDir)
	assert.Equal(t, Default().DefaultLayout, cfg.DefaultLayout)
}

func TestLoad_ProjectFile(t *testing.T) {
	dir := isolate(t)
	content := []byte("content_dir: content/posts\nstrict: true\nallowed_tags: [css, go]\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".postmatter.yaml"), content, 0o600))

	Init()
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "content/posts", cfg.ContentDir)
	assert.True(t, cfg.Strict)
	assert.Equal(t, []string{"css", "go"}, cfg.AllowedTags)
	// Unset keys keep their defaults.
	assert.Equal(t, []string{".astro"}, cfg.LayoutExtensions)
}

func TestLoad_EnvOverride(t *testing.T) {
	isolate(t)
	t.Setenv("POSTMATTER_CONTENT_DIR", "blog")

	Init()
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "blog", cfg.ContentDir)
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	isolate(t)
	Init()

	_, err := Load("/non/existent/path/config.yaml")
	require.Error(t, err)
	assert.True(t, errors.Is(err, pmerrors.ErrNotFound))
}

func TestLoad_InvalidValues(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("version: 0\ndefault_format: json\n"), 0o600))

	Init()
	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, pmerrors.ErrInvalidConfig))
	assert.Contains(t, err.Error(), "default_format")
}

func TestSave_RoundTrip(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "nested", ".postmatter.yaml")

	cfg := Default()
	cfg.ContentDir = "content"
	cfg.RequireSlug = true
	require.NoError(t, Save(cfg, path))

	Init()
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "content", loaded.ContentDir)
	assert.True(t, loaded.RequireSlug)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"defaults are valid", func(*Config) {}, nil},
		{"version zero", func(c *Config) { c.Version = 0 }, ErrVersionTooLow},
		{"empty content dir", func(c *Config) { c.ContentDir = "" }, ErrInvalidPath},
		{"extension without dot", func(c *Config) { c.Extensions = []string{"md"} }, ErrInvalidExtension},
		{"layout extension without dot", func(c *Config) { c.LayoutExtensions = []string{"astro"} }, ErrInvalidExtension},
		{"unknown format", func(c *Config) { c.DefaultFormat = "json" }, ErrInvalidFormat},
		{"negative limit", func(c *Config) { c.MaxTitleLength = -1 }, ErrNegativeLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			errs := Validate(cfg)
			if tt.wantErr == nil {
				assert.Empty(t, errs)
				return
			}
			require.Len(t, errs, 1)
			assert.ErrorIs(t, errs[0], tt.wantErr)
		})
	}
}

func TestValidate_Nil(t *testing.T) {
	assert.Len(t, Validate(nil), 1)
}
