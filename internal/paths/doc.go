// Package paths provides path resolution for postmatter's own files and for
// the files referenced from article front matter.
//
// # XDG Base Directory Compliance
//
// The package wraps github.com/adrg/xdg for cross-platform XDG Base Directory
// Specification compliance. On Linux and macOS, paths follow XDG conventions
// (~/.config, ~/.cache).
//
// # Files
//
//	| Scope   | Location                                  |
//	|---------|-------------------------------------------|
//	| Project | ./.postmatter.yaml                        |
//	| Global  | $XDG_CONFIG_HOME/postmatter/config.yaml   |
//	| Backups | $XDG_CACHE_HOME/postmatter/backups/       |
//
// # Reference Resolution
//
// Layouts are referenced relative to the article file, the way Astro-style
// generators resolve them:
//
//	paths.ResolveReference("src/pages/blog/post.md", "../../layouts/Post.astro")
//	// src/layouts/Post.astro
package paths
