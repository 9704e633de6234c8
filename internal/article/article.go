package article

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/goliatone/go-slug"

	"github.com/thoreinstein/postmatter/internal/errors"
	"github.com/thoreinstein/postmatter/internal/validator"
	"github.com/thoreinstein/postmatter/pkg/fileutil"
	"github.com/thoreinstein/postmatter/pkg/frontmatter"
)

// ErrInvalidSlug indicates an explicit slug that is not URL-safe.
var ErrInvalidSlug = errors.New("invalid slug")

// Header field names.
const (
	FieldTitle       = "title"
	FieldDate        = "date"
	FieldSlug        = "slug"
	FieldDescription = "description"
	FieldHero        = "hero"
	FieldTags        = "tags"
	FieldLayout      = "layout"
)

// Fields lists the header fields in canonical order.
var Fields = []string{
	FieldTitle,
	FieldDate,
	FieldSlug,
	FieldDescription,
	FieldHero,
	FieldTags,
	FieldLayout,
}

// DateLayout is the calendar date format accepted for the date field.
const DateLayout = "2006-01-02"

// FrontMatter is the article header.
type FrontMatter struct {
	Title       string   `yaml:"title" toml:"title" json:"title"`
	Date        string   `yaml:"date" toml:"date" json:"date"`
	Slug        string   `yaml:"slug,omitempty" toml:"slug,omitempty" json:"slug"`
	Description string   `yaml:"description" toml:"description" json:"description"`
	Hero        string   `yaml:"hero" toml:"hero" json:"hero"`
	Tags        []string `yaml:"tags" toml:"tags" json:"tags"`
	Layout      string   `yaml:"layout" toml:"layout" json:"layout"`
}

// Time parses Date. The zero time is returned for malformed dates.
func (fm FrontMatter) Time() time.Time {
	t, err := time.Parse(DateLayout, fm.Date)
	if err != nil {
		return time.Time{}
	}
	return t
}

// HasTag reports whether tag is listed, ignoring case.
func (fm FrontMatter) HasTag(tag string) bool {
	return slices.ContainsFunc(fm.Tags, func(t string) bool {
		return strings.EqualFold(t, tag)
	})
}

// Article is a content file with its decoded header.
type Article struct {
	// Path is the file the article was loaded from.
	Path string `json:"path"`

	FrontMatter

	// Body is the content after the header. Nil when only the header was read.
	Body []byte `json:"-"`

	// Kind is the header syntax found in the file.
	Kind frontmatter.Kind `json:"format"`

	// SlugDerived is set when slug was absent and derived from Path.
	SlugDerived bool `json:"slug_derived,omitempty"`

	// Extra holds header keys outside the schema.
	Extra map[string]any `json:"extra,omitempty"`

	// Problems holds decode issues such as missing or mistyped fields.
	Problems *validator.Result `json:"-"`
}

// UnknownKeys returns the sorted keys of Extra.
func (a *Article) UnknownKeys() []string {
	keys := make([]string, 0, len(a.Extra))
	for k := range a.Extra {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Load reads and decodes the article at path.
func Load(path string) (*Article, error) {
	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return parseBytes(data, path)
}

// Parse decodes an article from r. The path is used for slug derivation
// and layout resolution only.
func Parse(r io.Reader, path string) (*Article, error) {
	data, err := io.ReadAll(io.LimitReader(r, fileutil.MaxFileSize+1))
	if err != nil {
		return nil, errors.Wrap(err, "reading article")
	}
	if len(data) > fileutil.MaxFileSize {
		return nil, fileutil.ErrFileTooLarge
	}
	return parseBytes(data, path)
}

func parseBytes(data []byte, path string) (*Article, error) {
	_, _, kind, err := frontmatter.Split(data)
	if err != nil {
		return nil, err
	}

	raw := map[string]any{}
	body, err := frontmatter.MustParse(bytes.NewReader(data), &raw)
	if err != nil {
		return nil, err
	}

	a := fromRaw(raw, path, kind)
	a.Body = body
	return a, nil
}

// LoadHeader decodes only the header of the article at path and leaves Body
// nil. It is used for listings where bodies are never shown.
func LoadHeader(path string) (*Article, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	raw := map[string]any{}
	kind, err := frontmatter.ParseHeader(f, &raw)
	if err != nil {
		return nil, errors.Wrapf(err, "reading header of %s", path)
	}
	if kind == frontmatter.KindNone {
		return nil, frontmatter.ErrMissingFrontmatter
	}
	return fromRaw(raw, path, kind), nil
}

func fromRaw(raw map[string]any, path string, kind frontmatter.Kind) *Article {
	fm, problems := Decode(raw)

	a := &Article{
		Path:        path,
		FrontMatter: fm,
		Kind:        kind,
		Problems:    problems,
	}

	if _, ok := raw[FieldSlug]; !ok {
		if s, err := DeriveSlug(path); err == nil && s != "" {
			a.Slug = s
			a.SlugDerived = true
		} else {
			problems.AddError(FieldSlug, "is required and could not be derived from the file name", nil)
		}
	}

	for k, v := range raw {
		if !slices.Contains(Fields, k) {
			if a.Extra == nil {
				a.Extra = make(map[string]any)
			}
			a.Extra[k] = v
		}
	}

	return a
}

// DeriveSlug builds a slug from the file name in path. Index files take the
// name of their directory.
func DeriveSlug(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("empty path")
	}
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if strings.EqualFold(name, "index") {
		name = filepath.Base(filepath.Dir(path))
		if name == "." || name == string(filepath.Separator) {
			return "", errors.Newf("cannot derive slug from %s", path)
		}
	}
	return slug.Normalize(name)
}

// Options configures a freshly scaffolded header.
type Options struct {
	Date        time.Time
	Slug        string
	Description string
	Hero        string
	Tags        []string
	Layout      string
}

// New builds a header for a new article. The slug is normalized from title
// unless set, and the date defaults to today.
func New(title string, opts Options) (FrontMatter, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return FrontMatter{}, errors.New("title is required")
	}

	s := strings.TrimSpace(opts.Slug)
	if s != "" && !slug.IsValid(s) {
		if fixed, err := slug.Normalize(s); err == nil && fixed != s {
			return FrontMatter{}, errors.Wrapf(ErrInvalidSlug, "%q is not URL-safe (try %q)", s, fixed)
		}
		return FrontMatter{}, errors.Wrapf(ErrInvalidSlug, "%q is not URL-safe", s)
	}
	if s == "" {
		var err error
		if s, err = slug.Normalize(title); err != nil {
			return FrontMatter{}, errors.Wrapf(err, "deriving slug from %q", title)
		}
	}

	date := opts.Date
	if date.IsZero() {
		date = time.Now()
	}

	tags := make([]string, 0, len(opts.Tags))
	for _, t := range opts.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	return FrontMatter{
		Title:       title,
		Date:        date.Format(DateLayout),
		Slug:        s,
		Description: opts.Description,
		Hero:        opts.Hero,
		Tags:        tags,
		Layout:      opts.Layout,
	}, nil
}

// Encode renders fm and body as file content with a header of the given kind.
func Encode(kind frontmatter.Kind, fm FrontMatter, body string) ([]byte, error) {
	if fm.Tags == nil {
		fm.Tags = []string{}
	}
	return frontmatter.FormatAs(kind, fm, body)
}
