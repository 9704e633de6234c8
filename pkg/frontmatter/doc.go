// Package frontmatter reads and writes the delimited metadata header at the
// top of Markdown content files.
//
// Two header kinds are recognized by their opening line:
//
//   - "---" opens a YAML header, closed by another "---" line
//   - "+++" opens a TOML header, closed by another "+++" line
//
// Decoding is delegated to github.com/adrg/frontmatter with gopkg.in/yaml.v3
// and github.com/pelletier/go-toml/v2 as the unmarshalers. The remaining
// content after the closing delimiter is returned untouched as the body.
//
// # Basic Usage
//
//	type Meta struct {
//		Title string   `yaml:"title" toml:"title"`
//		Tags  []string `yaml:"tags" toml:"tags"`
//	}
//
//	var meta Meta
//	body, err := frontmatter.MustParse(f, &meta)
//	if errors.Is(err, frontmatter.ErrMissingFrontmatter) {
//		// handle files without a header
//	}
//
// # Error Handling
//
//   - [ErrMissingFrontmatter]: content does not open with a delimiter line
//   - [ErrUnclosedFrontmatter]: the opening delimiter is never closed
//   - [ErrInvalidFrontmatter]: the header exists but does not decode
//
// Both Unix (LF) and Windows (CRLF) line endings are handled.
package frontmatter
