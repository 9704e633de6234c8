// Package config provides configuration management for postmatter using Viper.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"

	pmerrors "github.com/thoreinstein/postmatter/internal/errors"
	"github.com/thoreinstein/postmatter/internal/paths"
	"github.com/thoreinstein/postmatter/pkg/fileutil"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "POSTMATTER"

// Header formats accepted by default_format.
const (
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// Config represents the top-level configuration structure.
type Config struct {
	Version              int      `mapstructure:"version" yaml:"version"`
	ContentDir           string   `mapstructure:"content_dir" yaml:"content_dir"`
	Extensions           []string `mapstructure:"extensions" yaml:"extensions"`
	DefaultLayout        string   `mapstructure:"default_layout" yaml:"default_layout"`
	LayoutExtensions     []string `mapstructure:"layout_extensions" yaml:"layout_extensions"`
	CheckLayouts         bool     `mapstructure:"check_layouts" yaml:"check_layouts"`
	RequireSlug          bool     `mapstructure:"require_slug" yaml:"require_slug"`
	Strict               bool     `mapstructure:"strict" yaml:"strict"`
	AllowedTags          []string `mapstructure:"allowed_tags" yaml:"allowed_tags"`
	MaxTitleLength       int      `mapstructure:"max_title_length" yaml:"max_title_length"`
	MaxDescriptionLength int      `mapstructure:"max_description_length" yaml:"max_description_length"`
	DefaultFormat        string   `mapstructure:"default_format" yaml:"default_format"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Version:              1,
		ContentDir:           "src/pages",
		Extensions:           []string{".md", ".mdx"},
		DefaultLayout:        "../../layouts/BlogPostLayout.astro",
		LayoutExtensions:     []string{".astro"},
		MaxTitleLength:       100,
		MaxDescriptionLength: 160,
		DefaultFormat:        FormatYAML,
	}
}

// Init initializes Viper with default configuration.
// Call this once at application startup before accessing config values.
func Init() {
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()

	d := Default()
	viper.SetDefault("version", d.Version)
	viper.SetDefault("content_dir", d.ContentDir)
	viper.SetDefault("extensions", d.Extensions)
	viper.SetDefault("default_layout", d.DefaultLayout)
	viper.SetDefault("layout_extensions", d.LayoutExtensions)
	viper.SetDefault("check_layouts", d.CheckLayouts)
	viper.SetDefault("require_slug", d.RequireSlug)
	viper.SetDefault("strict", d.Strict)
	viper.SetDefault("allowed_tags", []string{})
	viper.SetDefault("max_title_length", d.MaxTitleLength)
	viper.SetDefault("max_description_length", d.MaxDescriptionLength)
	viper.SetDefault("default_format", d.DefaultFormat)
}

// Discover returns the config file that applies to dir: the project file if
// present, otherwise the global file if present, otherwise "".
func Discover(dir string) string {
	for _, candidate := range []string{paths.ProjectConfigFile(dir), paths.GlobalConfigFile()} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
	}
	return ""
}

// Load reads the configuration file.
// If path is provided, it reads from that specific file and a missing file is
// an error. If path is empty, it uses Discover(".") and falls back to defaults.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = Discover(".")
	}

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			if explicit && os.IsNotExist(err) {
				return nil, errors.Wrapf(pmerrors.ErrNotFound, "config file not found at %s", path)
			}
			if explicit {
				return nil, errors.Wrapf(err, "reading config file %s", path)
			}
		} else {
			viper.SetConfigFile(path)
			if err := viper.ReadInConfig(); err != nil {
				return nil, errors.Wrapf(err, "reading config file %s", path)
			}
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	if errs := Validate(&cfg); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		err := errors.Newf("%s", strings.Join(msgs, "; "))
		return &cfg, errors.Mark(errors.Wrap(err, "validating config"), pmerrors.ErrInvalidConfig)
	}

	return &cfg, nil
}

// Current returns the configuration Viper holds right now, without reading files.
func Current() *Config {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Default()
	}
	return &cfg
}

// Save writes cfg as YAML to path atomically, creating parent directories.
func Save(cfg *Config, path string) error {
	if err := paths.EnsureDir(filepath.Dir(path), 0); err != nil {
		return errors.Wrap(err, "creating config directory")
	}
	if err := fileutil.AtomicWriteYAML(path, cfg); err != nil {
		return errors.Wrap(err, "writing config file")
	}
	return nil
}
