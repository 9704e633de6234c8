package article

import (
	"fmt"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/thoreinstein/postmatter/internal/validator"
)

// Decode type-checks a generically decoded header. Missing and mistyped
// fields are reported as error issues and left at their zero value. A
// missing slug is not reported because callers derive it from the path.
func Decode(raw map[string]any) (FrontMatter, *validator.Result) {
	result := &validator.Result{}
	var fm FrontMatter

	fm.Title = decodeString(raw, FieldTitle, result)
	fm.Date = decodeDate(raw, result)
	if _, ok := raw[FieldSlug]; ok {
		fm.Slug = decodeString(raw, FieldSlug, result)
	}
	fm.Description = decodeString(raw, FieldDescription, result)
	fm.Hero = decodeString(raw, FieldHero, result)
	fm.Tags = decodeTags(raw, result)
	fm.Layout = decodeString(raw, FieldLayout, result)

	return fm, result
}

func decodeString(raw map[string]any, field string, result *validator.Result) string {
	v, ok := raw[field]
	if !ok {
		result.AddError(field, "is required", nil)
		return ""
	}
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		result.AddError(field, "must be a string", typeName(v))
		return ""
	}
}

func decodeDate(raw map[string]any, result *validator.Result) string {
	v, ok := raw[FieldDate]
	if !ok {
		result.AddError(FieldDate, "is required", nil)
		return ""
	}
	switch d := v.(type) {
	case nil:
		return ""
	case string:
		return d
	case time.Time:
		if h, m, s := d.Clock(); h != 0 || m != 0 || s != 0 || d.Nanosecond() != 0 {
			result.AddError(FieldDate, "must be a calendar date without a time of day", d.Format(time.RFC3339))
			return ""
		}
		return d.Format(DateLayout)
	case toml.LocalDate:
		return d.String()
	default:
		result.AddError(FieldDate, "must be a YYYY-MM-DD date string", typeName(v))
		return ""
	}
}

func decodeTags(raw map[string]any, result *validator.Result) []string {
	v, ok := raw[FieldTags]
	if !ok {
		result.AddError(FieldTags, "is required", nil)
		return nil
	}
	switch list := v.(type) {
	case nil:
		return []string{}
	case []string:
		return list
	case []any:
		tags := make([]string, 0, len(list))
		for i, item := range list {
			s, ok := item.(string)
			if !ok {
				result.AddError(fmt.Sprintf("%s[%d]", FieldTags, i), "must be a string", typeName(item))
				continue
			}
			tags = append(tags, s)
		}
		return tags
	default:
		result.AddError(FieldTags, "must be a list of strings", typeName(v))
		return nil
	}
}

func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case int, int64, uint64:
		return "integer"
	case float64:
		return "number"
	case string:
		return "string"
	case []any:
		return "list"
	case map[string]any:
		return "mapping"
	case time.Time, toml.LocalDateTime, toml.LocalDate, toml.LocalTime:
		return "timestamp"
	default:
		return fmt.Sprintf("%T", v)
	}
}
