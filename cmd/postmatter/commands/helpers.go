package commands

import (
	"context"
	"io"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/thoreinstein/postmatter/internal/article"
	artvalidator "github.com/thoreinstein/postmatter/internal/article/validator"
	"github.com/thoreinstein/postmatter/internal/cli/prompt"
	"github.com/thoreinstein/postmatter/internal/collection"
	"github.com/thoreinstein/postmatter/internal/config"
	"github.com/thoreinstein/postmatter/internal/errors"
)

// Terminal styles for tabular output. fatih/color disables them when
// stdout is not a terminal or NO_COLOR is set.
var (
	styleHeader = color.New(color.Bold).SprintFunc()
	styleSlug   = color.New(color.FgGreen).SprintFunc()
	styleMuted  = color.New(color.FgHiBlack).SprintFunc()
	styleTitle  = color.New(color.FgCyan, color.Bold).SprintFunc()
)

// truncate shortens a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// scanContent loads the articles under roots, or under content_dir when no
// roots are given.
func scanContent(ctx context.Context, cfg *config.Config, headersOnly bool, validate bool, roots ...string) (*collection.Collection, error) {
	if len(roots) == 0 {
		roots = []string{cfg.ContentDir}
	}

	opts := collection.Options{
		Extensions:  cfg.Extensions,
		HeadersOnly: headersOnly,
	}
	if validate {
		opts.Validator = artvalidator.New(artvalidator.OptionsFromConfig(cfg))
	}

	coll, err := collection.NewScanner(opts).Scan(ctx, roots...)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return nil, errors.NewUserError(err, "set content_dir with 'postmatter config set content_dir <dir>' or pass a path")
		}
		return nil, errors.NewSystemError(err, "")
	}
	return coll, nil
}

// resolveArticle finds the article matching query. Several matches prompt a
// numbered choice on in/out; interactive mode opens the fuzzy finder over
// the whole collection instead.
func resolveArticle(coll *collection.Collection, query string, interactive bool, in io.Reader, out io.Writer) (*article.Article, error) {
	if interactive {
		a, err := prompt.FuzzyFind(coll.Sorted())
		if err != nil {
			return nil, translatePromptErr(err)
		}
		return a, nil
	}

	matches := coll.Find(query)
	switch len(matches) {
	case 0:
		return nil, errors.NewUserError(
			errors.Wrapf(errors.ErrNotFound, "no article matches %q", query),
			"run 'postmatter list' to see available articles",
		)
	case 1:
		return matches[0], nil
	}

	a, err := prompt.NewSelectorWithIO(in, out).SelectArticle(query, matches)
	if err != nil {
		return nil, translatePromptErr(err)
	}
	return a, nil
}

func translatePromptErr(err error) error {
	switch {
	case errors.Is(err, prompt.ErrSelectionCancelled):
		return errors.NewExitError(nil, errors.ExitUser)
	case errors.Is(err, prompt.ErrNoArticles):
		return errors.NewUserError(err, "run 'postmatter new <title>' to create one")
	case errors.Is(err, prompt.ErrInvalidSelection):
		return errors.NewUserError(errors.Mark(err, errors.ErrAmbiguous), "pass a more specific query")
	default:
		return err
	}
}
