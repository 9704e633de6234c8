package prompt

import (
	"fmt"
	"strings"

	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/thoreinstein/postmatter/internal/article"
	"github.com/thoreinstein/postmatter/internal/errors"
)

// FuzzyFind opens a full-screen fuzzy finder over articles with a front
// matter preview. Aborting the finder returns ErrSelectionCancelled.
func FuzzyFind(articles []*article.Article) (*article.Article, error) {
	if len(articles) == 0 {
		return nil, ErrNoArticles
	}

	idx, err := fuzzyfinder.Find(
		articles,
		func(i int) string {
			return Label(articles[i])
		},
		fuzzyfinder.WithPromptString("article> "),
		fuzzyfinder.WithPreviewWindow(func(i, _, _ int) string {
			if i == -1 {
				return ""
			}
			return Preview(articles[i])
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil, ErrSelectionCancelled
		}
		return nil, errors.Wrap(err, "interactive selection failed")
	}

	return articles[idx], nil
}

// Label is the one-line finder entry for an article.
func Label(a *article.Article) string {
	return fmt.Sprintf("%s  %s  [%s]", a.Date, a.Title, a.Slug)
}

// Preview renders the header fields shown next to the finder list.
func Preview(a *article.Article) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Title:  %s\n", a.Title)
	fmt.Fprintf(&sb, "Date:   %s\n", a.Date)
	fmt.Fprintf(&sb, "Slug:   %s\n", a.Slug)
	fmt.Fprintf(&sb, "Hero:   %s\n", a.Hero)
	fmt.Fprintf(&sb, "Tags:   %s\n", strings.Join(a.Tags, ", "))
	fmt.Fprintf(&sb, "Layout: %s\n", a.Layout)
	fmt.Fprintf(&sb, "Path:   %s\n", a.Path)
	if a.Description != "" {
		fmt.Fprintf(&sb, "\n%s\n", a.Description)
	}
	return sb.String()
}
