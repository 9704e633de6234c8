package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/postmatter/internal/config"
	"github.com/thoreinstein/postmatter/internal/errors"
)

func setupTestConfig(t *testing.T) string {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	config.Init()
	return filepath.Join(t.TempDir(), ".postmatter.yaml")
}

func TestParseList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty string", "", []string{}},
		{"single", "css", []string{"css"}},
		{"whitespace handling", " css , go ", []string{"css", "go"}},
		{"empty elements filtered", "css,,go", []string{"css", "go"}},
		{"only commas", " , , ", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseList(tt.input))
		})
	}
}

func TestParseValue(t *testing.T) {
	v, err := parseValue(kindInt, " 120 ")
	require.NoError(t, err)
	assert.Equal(t, 120, v)

	v, err = parseValue(kindBool, "true")
	require.NoError(t, err)
	assert.Equal(t, true, v)

	_, err = parseValue(kindInt, "many")
	assert.Error(t, err)

	_, err = parseValue(kindBool, "sometimes")
	assert.Error(t, err)
}

func TestConfigGet(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		setupValue func()
		wantOutput string
	}{
		{
			name:       "unset key prints not set",
			key:        "nonexistent_key",
			setupValue: func() {},
			wantOutput: "not set\n",
		},
		{
			name:       "scalar value prints the value",
			key:        "content_dir",
			setupValue: func() { viper.Set("content_dir", "src/pages") },
			wantOutput: "src/pages\n",
		},
		{
			name:       "array value prints one per line",
			key:        "extensions",
			setupValue: func() { viper.Set("extensions", []string{".md", ".mdx"}) },
			wantOutput: ".md\n.mdx\n",
		},
		{
			name:       "empty array prints nothing",
			key:        "allowed_tags",
			setupValue: func() { viper.Set("allowed_tags", []string{}) },
			wantOutput: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			t.Cleanup(viper.Reset)
			tt.setupValue()

			var buf bytes.Buffer
			require.NoError(t, configGet(&buf, tt.key))
			assert.Equal(t, tt.wantOutput, buf.String())
		})
	}
}

func TestConfigSet(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr error
		check   func(t *testing.T, cfg *config.Config)
	}{
		{
			name:  "string",
			key:   "content_dir",
			value: "src/content/blog",
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, "src/content/blog", cfg.ContentDir)
			},
		},
		{
			name:  "list",
			key:   "allowed_tags",
			value: "css,go",
			check: func(t *testing.T, cfg *config.Config) {
				assert.Equal(t, []string{"css", "go"}, cfg.AllowedTags)
			},
		},
		{
			name:  "bool",
			key:   "check_layouts",
			value: "true",
			check: func(t *testing.T, cfg *config.Config) {
				assert.True(t, cfg.CheckLayouts)
			},
		},
		{
			name:    "invalid value is not written",
			key:     "default_format",
			value:   "json",
			wantErr: errors.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := setupTestConfig(t)

			err := configSet(tt.key, tt.value, path)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				_, statErr := os.Stat(path)
				assert.True(t, os.IsNotExist(statErr), "config file should not be written")
				return
			}
			require.NoError(t, err)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			var cfg config.Config
			require.NoError(t, yaml.Unmarshal(data, &cfg))
			tt.check(t, &cfg)
		})
	}
}

func TestConfigSet_UnknownKey(t *testing.T) {
	path := setupTestConfig(t)

	err := configSet("default_platforms", "claude", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown key")
	assert.Equal(t, errors.ExitUser, errors.ExitCode(err))
}

func TestTargetConfigPath(t *testing.T) {
	t.Cleanup(func() {
		configFile = ""
		configGlobal = false
	})

	configFile = "custom.yaml"
	assert.Equal(t, "custom.yaml", targetConfigPath())

	configFile = ""
	assert.Equal(t, ".postmatter.yaml", targetConfigPath())
}
