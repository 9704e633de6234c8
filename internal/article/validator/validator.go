// Package validator checks a single article header against the front
// matter rules.
package validator

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"slices"
	"strings"
	"time"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/goliatone/go-slug"

	"github.com/thoreinstein/postmatter/internal/article"
	"github.com/thoreinstein/postmatter/internal/config"
	"github.com/thoreinstein/postmatter/internal/errors"
	"github.com/thoreinstein/postmatter/internal/paths"
	"github.com/thoreinstein/postmatter/internal/validator"
)

// ImageExtensions lists the hero file extensions that do not produce a warning.
var ImageExtensions = []string{".avif", ".gif", ".jpeg", ".jpg", ".png", ".svg", ".webp"}

// Options tunes the rules applied by a Validator.
type Options struct {
	// Strict reports unknown header keys.
	Strict bool
	// RequireSlug turns a slug derived from the file name into an error.
	RequireSlug bool
	// CheckLayouts verifies that the layout file exists next to the article.
	CheckLayouts bool
	// AllowedTags restricts tags when non-empty.
	AllowedTags []string
	// LayoutExtensions lists accepted layout file extensions.
	LayoutExtensions []string
	// MaxTitleLength and MaxDescriptionLength produce warnings when exceeded.
	// Zero disables the check.
	MaxTitleLength       int
	MaxDescriptionLength int
	// Now returns the reference time for future-date warnings.
	Now func() time.Time
}

// OptionsFromConfig maps configuration onto validator options.
func OptionsFromConfig(cfg *config.Config) Options {
	if cfg == nil {
		cfg = config.Default()
	}
	return Options{
		Strict:               cfg.Strict,
		RequireSlug:          cfg.RequireSlug,
		CheckLayouts:         cfg.CheckLayouts,
		AllowedTags:          cfg.AllowedTags,
		LayoutExtensions:     cfg.LayoutExtensions,
		MaxTitleLength:       cfg.MaxTitleLength,
		MaxDescriptionLength: cfg.MaxDescriptionLength,
	}
}

// Validator validates article headers.
type Validator struct {
	opts Options
}

// New creates a new Validator.
func New(opts Options) *Validator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Validator{opts: opts}
}

// Validate checks a loaded article. Decode problems recorded on the article
// are included and the rules for those fields are skipped.
func (v *Validator) Validate(a *article.Article) *validator.Result {
	result := &validator.Result{}
	skip := make(map[string]bool)
	if a.Problems != nil {
		for _, issue := range a.Problems.Issues {
			result.Add(issue)
			skip[fieldRoot(issue.Field)] = true
		}
	}

	fm := a.FrontMatter
	errs := validation.ValidateStruct(&fm,
		field(skip, &fm.Title, article.FieldTitle, validation.Required.Error("is required"), validation.By(notBlank)),
		field(skip, &fm.Date, article.FieldDate, validation.Required.Error("is required"),
			validation.Date(article.DateLayout).Error("must be a YYYY-MM-DD calendar date")),
		field(skip, &fm.Slug, article.FieldSlug, validation.Required.Error("is required"), validation.By(urlSafeSlug)),
		field(skip, &fm.Description, article.FieldDescription, validation.Required.Error("is required"), validation.By(notBlank)),
		field(skip, &fm.Hero, article.FieldHero, validation.Required.Error("is required"), validation.By(heroReference)),
		field(skip, &fm.Tags, article.FieldTags, validation.Each(validation.By(notBlank))),
		field(skip, &fm.Layout, article.FieldLayout, validation.Required.Error("is required"), validation.By(layoutPath)),
	)
	addErrors(result, validator.SeverityError, errs, fm)

	v.slugOrigin(a, result)
	if !skip[article.FieldLayout] && !hasIssue(result, article.FieldLayout) {
		v.layoutFile(a, result)
	}

	for _, issue := range result.Errors() {
		skip[fieldRoot(issue.Field)] = true
	}

	warnings := validation.ValidateStruct(&fm,
		field(skip, &fm.Title, article.FieldTitle, maxRunes(v.opts.MaxTitleLength)),
		field(skip, &fm.Date, article.FieldDate, validation.By(v.notFuture)),
		field(skip, &fm.Description, article.FieldDescription, maxRunes(v.opts.MaxDescriptionLength)),
		field(skip, &fm.Hero, article.FieldHero, validation.By(imageExtension)),
		field(skip, &fm.Tags, article.FieldTags, validation.By(v.tagWarnings)),
		field(skip, &fm.Layout, article.FieldLayout, validation.By(v.layoutExtension)),
	)
	addErrors(result, validator.SeverityWarning, warnings, fm)

	if v.opts.Strict {
		for _, key := range a.UnknownKeys() {
			result.AddWarning(key, "is not a known front matter field", nil)
		}
	}

	return result
}

// field wraps validation.Field and drops all rules for fields that already
// failed to decode.
func field(skip map[string]bool, ptr any, name string, rules ...validation.Rule) *validation.FieldRules {
	if skip[name] {
		return validation.Field(ptr)
	}
	return validation.Field(ptr, rules...)
}

func (v *Validator) slugOrigin(a *article.Article, result *validator.Result) {
	if !a.SlugDerived {
		return
	}
	if v.opts.RequireSlug {
		result.AddError(article.FieldSlug, "must be set explicitly", a.Slug)
		return
	}
	result.AddInfo(article.FieldSlug, "derived from file name", a.Slug)
}

func (v *Validator) layoutFile(a *article.Article, result *validator.Result) {
	if !v.opts.CheckLayouts || a.Layout == "" || a.Path == "" {
		return
	}
	target := paths.ResolveReference(a.Path, a.Layout)
	info, err := os.Stat(target)
	switch {
	case err != nil:
		result.Add(validator.Issue{
			Severity: validator.SeverityError,
			Field:    article.FieldLayout,
			Message:  "layout file does not exist",
			Value:    a.Layout,
			Context:  map[string]string{"resolved": target},
		})
	case info.IsDir():
		result.AddError(article.FieldLayout, "layout is a directory", a.Layout)
	}
}

func (v *Validator) notFuture(value any) error {
	s, _ := value.(string)
	t, err := time.Parse(article.DateLayout, s)
	if err != nil {
		return nil
	}
	now := v.opts.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if t.After(today) {
		return validation.NewError("date_future", "is in the future")
	}
	return nil
}

func (v *Validator) tagWarnings(value any) error {
	tags, _ := value.([]string)
	var msgs []string
	if dups := duplicateTags(tags); len(dups) > 0 {
		msgs = append(msgs, "duplicate tag: "+strings.Join(dups, ", "))
	}
	if len(v.opts.AllowedTags) > 0 {
		var unknown []string
		for _, t := range tags {
			if !slices.ContainsFunc(v.opts.AllowedTags, func(a string) bool { return strings.EqualFold(a, t) }) {
				unknown = append(unknown, t)
			}
		}
		if len(unknown) > 0 {
			msgs = append(msgs, "not in allowed_tags: "+strings.Join(unknown, ", "))
		}
	}
	if len(msgs) > 0 {
		return validation.NewError("tags_warning", strings.Join(msgs, "; "))
	}
	return nil
}

func (v *Validator) layoutExtension(value any) error {
	s, _ := value.(string)
	if s == "" || len(v.opts.LayoutExtensions) == 0 {
		return nil
	}
	ext := strings.ToLower(path.Ext(s))
	if !slices.Contains(v.opts.LayoutExtensions, ext) {
		return validation.NewError("layout_extension", fmt.Sprintf("extension %q is not one of %s", ext, strings.Join(v.opts.LayoutExtensions, ", ")))
	}
	return nil
}

func notBlank(value any) error {
	if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
		return validation.NewError("blank", "must not be blank")
	}
	return nil
}

func urlSafeSlug(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if !slug.IsValid(s) {
		suggestion, err := slug.Normalize(s)
		if err == nil && suggestion != "" && suggestion != s {
			return validation.NewError("slug_invalid", fmt.Sprintf("is not URL-safe (try %q)", suggestion))
		}
		return validation.NewError("slug_invalid", "is not URL-safe")
	}
	return nil
}

func heroReference(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if strings.ContainsFunc(s, func(r rune) bool { return unicode.IsSpace(r) || r == 0 }) {
		return validation.NewError("hero_whitespace", "must not contain whitespace or control characters")
	}
	u, err := url.Parse(s)
	if err != nil {
		return validation.NewError("hero_malformed", "is not a valid URL or path")
	}
	if u.Scheme != "" {
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return validation.NewError("hero_scheme", "must be a path or an http(s) URL")
		}
	}
	if u.Path == "" || strings.HasSuffix(u.Path, "/") {
		return validation.NewError("hero_malformed", "must reference a file")
	}
	return nil
}

func imageExtension(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	p := s
	if u, err := url.Parse(s); err == nil {
		p = u.Path
	}
	ext := strings.ToLower(path.Ext(p))
	if !slices.Contains(ImageExtensions, ext) {
		return validation.NewError("hero_extension", "does not look like an image file")
	}
	return nil
}

func layoutPath(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if err := paths.ValidatePath(s); err != nil {
		return validation.NewError("layout_path", "is not a well-formed path")
	}
	if strings.HasSuffix(s, "/") {
		return validation.NewError("layout_path", "must reference a file, not a directory")
	}
	return nil
}

func duplicateTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	var dups []string
	for _, t := range tags {
		key := strings.ToLower(strings.TrimSpace(t))
		if key == "" {
			continue
		}
		if seen[key] && !slices.Contains(dups, t) {
			dups = append(dups, t)
		}
		seen[key] = true
	}
	return dups
}

func maxRunes(limit int) validation.Rule {
	return validation.By(func(value any) error {
		s, _ := value.(string)
		if limit <= 0 {
			return nil
		}
		if n := len([]rune(s)); n > limit {
			return validation.NewError("too_long", fmt.Sprintf("is %d characters, longer than %d", n, limit))
		}
		return nil
	})
}

// addErrors converts ozzo field errors into issues. Per-element errors from
// Each are reported as field[index].
func addErrors(result *validator.Result, sev validator.Severity, err error, fm article.FrontMatter) {
	if err == nil {
		return
	}
	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		result.Add(validator.Issue{Severity: sev, Message: err.Error()})
		return
	}

	for _, name := range article.Fields {
		fe, ok := fieldErrs[name]
		if !ok {
			continue
		}
		var nested validation.Errors
		if errors.As(fe, &nested) {
			for _, idx := range sortedKeys(nested) {
				result.Add(validator.Issue{
					Severity: sev,
					Field:    fmt.Sprintf("%s[%s]", name, idx),
					Message:  message(nested[idx]),
				})
			}
			continue
		}
		result.Add(validator.Issue{
			Severity: sev,
			Field:    name,
			Message:  message(fe),
			Value:    valueOf(fm, name),
		})
	}
}

func message(err error) string {
	var ve validation.Error
	if errors.As(err, &ve) {
		return ve.Message()
	}
	return err.Error()
}

func valueOf(fm article.FrontMatter, name string) any {
	var s string
	switch name {
	case article.FieldTitle:
		s = fm.Title
	case article.FieldDate:
		s = fm.Date
	case article.FieldSlug:
		s = fm.Slug
	case article.FieldDescription:
		s = fm.Description
	case article.FieldHero:
		s = fm.Hero
	case article.FieldLayout:
		s = fm.Layout
	default:
		return nil
	}
	if s == "" {
		return nil
	}
	return s
}

func sortedKeys(m validation.Errors) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		if len(a) != len(b) {
			return len(a) - len(b)
		}
		return strings.Compare(a, b)
	})
	return keys
}

func fieldRoot(name string) string {
	if i := strings.IndexByte(name, '['); i >= 0 {
		return name[:i]
	}
	return name
}

func hasIssue(result *validator.Result, name string) bool {
	return slices.ContainsFunc(result.Issues, func(i validator.Issue) bool {
		return i.Severity == validator.SeverityError && fieldRoot(i.Field) == name
	})
}
