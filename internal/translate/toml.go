// Package translate converts front matter headers between YAML and TOML.
package translate

import (
	"bytes"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/postmatter/internal/errors"
	"github.com/thoreinstein/postmatter/pkg/frontmatter"
)

// YAMLToTOML converts YAML data to TOML data. Null values are dropped since
// TOML cannot express them.
func YAMLToTOML(yamlData []byte) ([]byte, error) {
	var data map[string]any
	if err := yaml.Unmarshal(yamlData, &data); err != nil {
		return nil, errors.Wrap(err, "unmarshaling yaml")
	}
	out, err := frontmatter.Encode(frontmatter.KindTOML, normalize(data, true))
	if err != nil {
		return nil, errors.Wrap(err, "marshaling toml")
	}
	return out, nil
}

// TOMLToYAML converts TOML data to YAML data. TOML dates become plain
// YYYY-MM-DD strings.
func TOMLToYAML(tomlData []byte) ([]byte, error) {
	var data map[string]any
	if err := toml.Unmarshal(tomlData, &data); err != nil {
		return nil, errors.Wrap(err, "unmarshaling toml")
	}
	out, err := frontmatter.Encode(frontmatter.KindYAML, normalize(data, false))
	if err != nil {
		return nil, errors.Wrap(err, "marshaling yaml")
	}
	return out, nil
}

// Header re-encodes a raw header from one kind to another.
func Header(header []byte, from, to frontmatter.Kind) ([]byte, error) {
	switch {
	case from == to:
		return header, nil
	case from == frontmatter.KindYAML && to == frontmatter.KindTOML:
		return YAMLToTOML(header)
	case from == frontmatter.KindTOML && to == frontmatter.KindYAML:
		return TOMLToYAML(header)
	default:
		return nil, errors.Wrapf(frontmatter.ErrUnknownKind, "cannot convert %q to %q", string(from), string(to))
	}
}

// File rewrites the header of content as kind to. The body and the file's
// line endings are kept. It reports whether anything changed.
func File(content []byte, to frontmatter.Kind) ([]byte, bool, error) {
	header, body, from, err := frontmatter.Split(content)
	if err != nil {
		return nil, false, err
	}
	if from == frontmatter.KindNone {
		return nil, false, frontmatter.ErrMissingFrontmatter
	}
	if from == to {
		return content, false, nil
	}

	header = bytes.ReplaceAll(header, []byte("\r\n"), []byte("\n"))
	converted, err := Header(header, from, to)
	if err != nil {
		return nil, false, err
	}
	out, err := frontmatter.Replace(to, converted, body, frontmatter.Newline(content))
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func normalize(v any, dropNil bool) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			if item == nil && dropNil {
				continue
			}
			out[k] = normalize(item, dropNil)
		}
		return out
	case []any:
		out := make([]any, 0, len(val))
		for _, item := range val {
			if item == nil && dropNil {
				continue
			}
			out = append(out, normalize(item, dropNil))
		}
		return out
	case toml.LocalDate:
		return val.String()
	case toml.LocalDateTime:
		return val.String()
	case toml.LocalTime:
		return val.String()
	case time.Time:
		if h, m, s := val.Clock(); h == 0 && m == 0 && s == 0 && val.Nanosecond() == 0 {
			return val.Format(time.DateOnly)
		}
		return val.Format(time.RFC3339)
	default:
		return v
	}
}
