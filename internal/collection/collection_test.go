package collection

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	artvalidator "github.com/thoreinstein/postmatter/internal/article/validator"
	"github.com/thoreinstein/postmatter/internal/config"
	"github.com/thoreinstein/postmatter/internal/errors"
	"github.com/thoreinstein/postmatter/internal/logging"
)

func post(title, date, slug string, tags ...string) string {
	var sb strings.Builder
	sb.WriteString("---\n")
	fmt.Fprintf(&sb, "title: %q\n", title)
	fmt.Fprintf(&sb, "date: %q\n", date)
	if slug != "" {
		fmt.Fprintf(&sb, "slug: %q\n", slug)
	}
	sb.WriteString("description: \"A post\"\n")
	sb.WriteString("hero: \"/images/hero.jpg\"\n")
	fmt.Fprintf(&sb, "tags: [%s]\n", strings.Join(tags, ", "))
	sb.WriteString("layout: \"../../layouts/BlogPostLayout.astro\"\n")
	sb.WriteString("---\n\nBody\n")
	return sb.String()
}

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return root
}

func newScanner(opts Options) *Scanner {
	if opts.Validator == nil {
		vo := artvalidator.OptionsFromConfig(config.Default())
		vo.Now = func() time.Time { return time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC) }
		opts.Validator = artvalidator.New(vo)
	}
	return NewScanner(opts)
}

func TestScan_DiscoversAndSorts(t *testing.T) {
	root := writeTree(t, map[string]string{
		"blog/b.md":              post("B", "2022-01-02", "", "go"),
		"blog/a.mdx":             post("A", "2022-01-01", "", "css"),
		"blog/notes.txt":         "ignored",
		"blog/.drafts/hidden.md": post("H", "2022-01-03", ""),
		"node_modules/pkg/x.md":  post("X", "2022-01-03", ""),
		"blog/nested/index.md":   post("Nested", "2022-01-03", "", "go"),
	})

	c, err := newScanner(Options{}).Scan(t.Context(), root)
	require.NoError(t, err)

	var rel []string
	for _, e := range c.Entries {
		r, _ := filepath.Rel(root, e.Path)
		rel = append(rel, filepath.ToSlash(r))
	}
	assert.Equal(t, []string{"blog/a.mdx", "blog/b.md", "blog/nested/index.md"}, rel)
	assert.Equal(t, "nested", c.Entries[2].Article.Slug)
}

func TestScan_ExplicitFileAndMissingRoot(t *testing.T) {
	root := writeTree(t, map[string]string{"post.markdown": post("P", "2022-01-01", "p")})

	c, err := newScanner(Options{}).Scan(t.Context(), filepath.Join(root, "post.markdown"))
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())

	_, err = newScanner(Options{}).Scan(t.Context(), filepath.Join(root, "missing"))
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestScan_Cancelled(t *testing.T) {
	files := map[string]string{}
	for i := range 50 {
		files[fmt.Sprintf("p%02d.md", i)] = post("P", "2022-01-01", "")
	}
	root := writeTree(t, files)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := newScanner(Options{}).Scan(ctx, root)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestScan_HeadersOnly(t *testing.T) {
	root := writeTree(t, map[string]string{"a.md": post("A", "2022-01-01", "a")})

	c, err := newScanner(Options{HeadersOnly: true}).Scan(t.Context(), root)
	require.NoError(t, err)
	require.Len(t, c.Articles(), 1)
	assert.Nil(t, c.Articles()[0].Body)
	assert.Equal(t, "A", c.Articles()[0].Title)
}

func TestScan_UsesContextLogger(t *testing.T) {
	root := writeTree(t, map[string]string{"a.md": post("A", "2022-01-01", "a")})
	ctx := logging.NewContext(t.Context(), logging.ForTest(t))

	_, err := NewScanner(Options{}).Scan(ctx, root)
	require.NoError(t, err)
}

func TestValidate_DuplicateSlugsAndLoadErrors(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.md":      post("A", "2022-01-01", "same"),
		"b.md":      post("B", "2022-01-02", "same"),
		"c.md":      post("C", "2022-01-03", "unique"),
		"broken.md": "---\ntitle: x\n",
	})

	c, err := newScanner(Options{}).Scan(t.Context(), root)
	require.NoError(t, err)

	result := c.Validate()
	errs := result.Errors()
	require.Len(t, errs, 3, "issues: %+v", result.Issues)

	assert.Equal(t, filepath.Join(root, "a.md"), errs[0].File())
	assert.Equal(t, "slug", errs[0].Field)
	assert.Equal(t, filepath.Join(root, "b.md"), errs[0].Context["conflicts"])

	assert.Equal(t, filepath.Join(root, "b.md"), errs[1].File())
	assert.Equal(t, filepath.Join(root, "a.md"), errs[1].Context["conflicts"])

	assert.Equal(t, filepath.Join(root, "broken.md"), errs[2].File())
	assert.Contains(t, errs[2].Message, "missing closing frontmatter delimiter")
}

func TestValidate_PerFileIssuesCarryPath(t *testing.T) {
	root := writeTree(t, map[string]string{
		"bad-date.md": strings.Replace(post("A", "2022-01-01", "a"), "2022-01-01", "31/05/2022", 1),
	})

	c, err := newScanner(Options{}).Scan(t.Context(), root)
	require.NoError(t, err)

	errs := c.Validate().Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "date", errs[0].Field)
	assert.Equal(t, filepath.Join(root, "bad-date.md"), errs[0].File())
}

func TestTags(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a.md": post("A", "2022-01-01", "a", "css", "go"),
		"b.md": post("B", "2022-01-02", "b", "Go"),
		"c.md": post("C", "2022-01-03", "c", "astro", "go", "GO"),
	})

	c, err := newScanner(Options{}).Scan(t.Context(), root)
	require.NoError(t, err)

	assert.Equal(t, []TagCount{
		{Tag: "go", Count: 3, Slugs: []string{"a", "b", "c"}},
		{Tag: "astro", Count: 1, Slugs: []string{"c"}},
		{Tag: "css", Count: 1, Slugs: []string{"a"}},
	}, c.Tags())

	assert.Len(t, c.WithTag("GO"), 3)
	assert.Len(t, c.WithTag("css"), 1)
}

func TestSortedAndFind(t *testing.T) {
	root := writeTree(t, map[string]string{
		"blog/old.md":     post("Old Post", "2021-03-01", "old"),
		"blog/new.md":     post("New Post", "2023-03-01", "new"),
		"blog/bad.md":     post("Bad Date Post", "someday", "bad"),
		"blog/tied-b.md":  post("Tied B", "2022-01-01", "tied-b"),
		"blog/tied-a.md":  post("Tied A", "2022-01-01", "tied-a"),
		"other/new.md":    post("Another New", "2020-01-01", "another"),
		"blog/extra/x.md": post("Extending Tailwind", "2020-01-01", "x"),
	})

	c, err := newScanner(Options{}).Scan(t.Context(), root)
	require.NoError(t, err)

	var order []string
	for _, a := range c.Sorted() {
		order = append(order, a.Slug)
	}
	assert.Equal(t, []string{"new", "tied-a", "tied-b", "old", "another", "x", "bad"}, order)

	tests := []struct {
		query string
		want  []string
	}{
		{"old", []string{"old"}},
		{"new.md", []string{"new", "another"}},
		{"blog/new.md", []string{"new"}},
		{"tailwind", []string{"x"}},
		{"post", []string{"bad", "new", "old"}},
		{"nothing-here", nil},
		{"  ", nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var got []string
			for _, a := range c.Find(tt.query) {
				got = append(got, a.Slug)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFind_SharedSlug(t *testing.T) {
	root := writeTree(t, map[string]string{
		"2021/hello.md": post("Hello Again", "2021-01-01", "hello"),
		"2022/hello.md": post("Hello", "2022-01-01", "hello"),
		"2022/other.md": post("Other", "2022-02-01", "hello-world"),
	})

	c, err := newScanner(Options{}).Scan(t.Context(), root)
	require.NoError(t, err)

	found := c.Find("hello")
	require.Len(t, found, 2)
	assert.Equal(t, filepath.Join(root, "2021", "hello.md"), found[0].Path)
	assert.Equal(t, filepath.Join(root, "2022", "hello.md"), found[1].Path)
}

func TestValidate_EmptyCollection(t *testing.T) {
	c := &Collection{}
	assert.Empty(t, c.Validate().Issues)
	assert.Empty(t, c.Tags())
	assert.Nil(t, c.Find("x"))
}
