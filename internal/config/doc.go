// Package config provides configuration management for the postmatter CLI.
//
// Configuration is resolved by Viper in this order: an explicit --config
// path, ./.postmatter.yaml, then $XDG_CONFIG_HOME/postmatter/config.yaml.
// Environment variables prefixed with POSTMATTER_ override file values
// (POSTMATTER_CONTENT_DIR, POSTMATTER_STRICT, ...).
//
// # Configuration File
//
//	version: 1
//	content_dir: src/pages
//	extensions: [.md, .mdx]
//	default_layout: ../../layouts/BlogPostLayout.astro
//	layout_extensions: [.astro]
//	check_layouts: false
//	require_slug: false
//	strict: false
//	allowed_tags: []
//	max_title_length: 100
//	max_description_length: 160
//	default_format: yaml
//
// # Validation
//
// [Validate] returns every problem it finds instead of stopping at the first:
//
//	for _, err := range config.Validate(cfg) {
//	    fmt.Println(err)
//	}
package config
