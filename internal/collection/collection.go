package collection

import (
	"cmp"
	"slices"
	"strings"

	"github.com/thoreinstein/postmatter/internal/article"
	"github.com/thoreinstein/postmatter/internal/validator"
)

// Entry is one scanned file.
type Entry struct {
	// Path is the file location.
	Path string
	// Article is nil when the file could not be loaded.
	Article *article.Article
	// Err holds the load failure, if any.
	Err error
	// Result holds single-file issues for loaded articles.
	Result *validator.Result
}

// Collection is the set of scanned articles, ordered by path.
type Collection struct {
	Entries []Entry
}

// TagCount is one row of the tag index.
type TagCount struct {
	Tag   string   `json:"tag"`
	Count int      `json:"count"`
	Slugs []string `json:"slugs"`
}

// Articles returns the successfully loaded articles in path order.
func (c *Collection) Articles() []*article.Article {
	var out []*article.Article
	for _, e := range c.Entries {
		if e.Article != nil {
			out = append(out, e.Article)
		}
	}
	return out
}

// Len returns the number of scanned files.
func (c *Collection) Len() int {
	return len(c.Entries)
}

// Validate returns every single-file issue plus collection-wide slug
// conflicts. Each issue carries its file path in context.
func (c *Collection) Validate() *validator.Result {
	result := &validator.Result{}

	for _, e := range c.Entries {
		ctx := map[string]string{validator.ContextFile: e.Path}
		if e.Err != nil {
			result.Merge(&validator.Result{Issues: []validator.Issue{{
				Severity: validator.SeverityError,
				Message:  e.Err.Error(),
			}}}, ctx)
			continue
		}
		result.Merge(e.Result, ctx)
	}

	for _, issue := range c.DuplicateSlugs() {
		result.Add(issue)
	}

	result.Sort()
	return result
}

// DuplicateSlugs reports one error per article whose slug is shared with
// another article. The other paths are listed in the "conflicts" context key.
func (c *Collection) DuplicateSlugs() []validator.Issue {
	bySlug := make(map[string][]string)
	var order []string
	for _, a := range c.Articles() {
		if a.Slug == "" {
			continue
		}
		if _, ok := bySlug[a.Slug]; !ok {
			order = append(order, a.Slug)
		}
		bySlug[a.Slug] = append(bySlug[a.Slug], a.Path)
	}

	var issues []validator.Issue
	for _, slug := range order {
		owners := bySlug[slug]
		if len(owners) < 2 {
			continue
		}
		for _, p := range owners {
			others := slices.DeleteFunc(slices.Clone(owners), func(o string) bool { return o == p })
			issues = append(issues, validator.Issue{
				Severity: validator.SeverityError,
				Field:    article.FieldSlug,
				Message:  "is not unique",
				Value:    slug,
				Context: map[string]string{
					validator.ContextFile: p,
					"conflicts":           strings.Join(others, ", "),
				},
			})
		}
	}
	return issues
}

// Tags builds the tag index, most used first and then by name. Tags are
// grouped case-insensitively and keep the first spelling seen.
func (c *Collection) Tags() []TagCount {
	index := make(map[string]*TagCount)
	for _, a := range c.Articles() {
		seen := make(map[string]bool)
		for _, t := range a.Tags {
			key := strings.ToLower(strings.TrimSpace(t))
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			tc, ok := index[key]
			if !ok {
				tc = &TagCount{Tag: strings.TrimSpace(t)}
				index[key] = tc
			}
			tc.Count++
			tc.Slugs = append(tc.Slugs, a.Slug)
		}
	}

	out := make([]TagCount, 0, len(index))
	for _, tc := range index {
		slices.Sort(tc.Slugs)
		out = append(out, *tc)
	}
	slices.SortFunc(out, func(a, b TagCount) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return cmp.Compare(strings.ToLower(a.Tag), strings.ToLower(b.Tag))
	})
	return out
}

// WithTag returns the articles carrying tag, ignoring case.
func (c *Collection) WithTag(tag string) []*article.Article {
	var out []*article.Article
	for _, a := range c.Articles() {
		if a.HasTag(tag) {
			out = append(out, a)
		}
	}
	return out
}

// Sorted returns the loaded articles newest first. Articles with malformed
// dates sort last; ties are broken by slug.
func (c *Collection) Sorted() []*article.Article {
	return SortByDate(c.Articles())
}

// SortByDate sorts articles newest first in place and returns them.
func SortByDate(articles []*article.Article) []*article.Article {
	slices.SortStableFunc(articles, func(a, b *article.Article) int {
		ta, tb := a.Time(), b.Time()
		switch {
		case ta.IsZero() && !tb.IsZero():
			return 1
		case !ta.IsZero() && tb.IsZero():
			return -1
		case !ta.Equal(tb):
			return tb.Compare(ta)
		}
		return cmp.Compare(a.Slug, b.Slug)
	})
	return articles
}

// Find returns the articles matching query. Exact slug matches win, all of
// them when a slug is shared; then path matches; otherwise titles containing
// query (case-insensitive) are returned.
func (c *Collection) Find(query string) []*article.Article {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	articles := c.Articles()
	var bySlug []*article.Article
	for _, a := range articles {
		if a.Slug == query {
			bySlug = append(bySlug, a)
		}
	}
	if len(bySlug) > 0 {
		return bySlug
	}

	var byPath []*article.Article
	for _, a := range articles {
		if matchesPath(a.Path, query) {
			byPath = append(byPath, a)
		}
	}
	if len(byPath) > 0 {
		return byPath
	}

	q := strings.ToLower(query)
	var byTitle []*article.Article
	for _, a := range articles {
		if strings.Contains(strings.ToLower(a.Title), q) || strings.Contains(a.Slug, q) {
			byTitle = append(byTitle, a)
		}
	}
	return byTitle
}

func matchesPath(path, query string) bool {
	if path == query {
		return true
	}
	p := strings.ReplaceAll(path, "\\", "/")
	q := strings.ReplaceAll(query, "\\", "/")
	return strings.HasSuffix(p, "/"+q)
}
