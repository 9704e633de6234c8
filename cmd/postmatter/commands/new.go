package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/postmatter/internal/article"
	"github.com/thoreinstein/postmatter/internal/config"
	"github.com/thoreinstein/postmatter/internal/editor"
	"github.com/thoreinstein/postmatter/internal/errors"
	"github.com/thoreinstein/postmatter/internal/paths"
	"github.com/thoreinstein/postmatter/pkg/fileutil"
	"github.com/thoreinstein/postmatter/pkg/frontmatter"
)

var (
	newTags        []string
	newHero        string
	newDescription string
	newLayout      string
	newFormat      string
	newSlug        string
	newDate        string
	newDir         string
	newEdit        bool
)

func init() {
	newCmd.Flags().StringSliceVarP(&newTags, "tags", "t", nil, "comma-separated tags")
	newCmd.Flags().StringVar(&newHero, "hero", "", "hero image path or URL")
	newCmd.Flags().StringVarP(&newDescription, "description", "d", "", "short summary")
	newCmd.Flags().StringVar(&newLayout, "layout", "", "layout path (default: default_layout)")
	newCmd.Flags().StringVar(&newFormat, "format", "", "header format: yaml, toml (default: default_format)")
	newCmd.Flags().StringVar(&newSlug, "slug", "", "slug (default: derived from the title)")
	newCmd.Flags().StringVar(&newDate, "date", "", "date as YYYY-MM-DD (default: today)")
	newCmd.Flags().StringVar(&newDir, "dir", "", "directory for the new file (default: content_dir)")
	newCmd.Flags().BoolVarP(&newEdit, "edit", "e", false, "open the new article in $EDITOR")
	rootCmd.AddCommand(newCmd)
}

var newCmd = &cobra.Command{
	Use:   "new <title>",
	Short: "Scaffold a new article",
	Long: `Create a new article file with all seven front matter fields.

The file is named after the slug and placed in content_dir (or --dir).
Existing files are never overwritten. The layout defaults to
default_layout and the header format to default_format.`,
	Example: `  postmatter new "Extending Tailwind CSS with Vanilla Extract" \
    --tags css --hero /images/tailwind-vanilla.jpg \
    --description "Using Vanilla Extract with Tailwind CSS..."

  # TOML header, opened in the editor
  postmatter new "Notes on Go" --format toml --edit

  See Also: postmatter validate, postmatter convert`,
	Args: cobra.ExactArgs(1),
	RunE: runNew,
}

// newRequest carries everything needed to scaffold one article.
type newRequest struct {
	Title   string
	Dir     string
	Format  string
	Date    string
	Options article.Options
}

func runNew(cmd *cobra.Command, args []string) error {
	cfg := currentConfig()
	req := newRequest{
		Title:  args[0],
		Dir:    newDir,
		Format: newFormat,
		Date:   newDate,
		Options: article.Options{
			Slug:        newSlug,
			Description: newDescription,
			Hero:        newHero,
			Tags:        newTags,
			Layout:      newLayout,
		},
	}

	path, err := createArticle(cfg, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)

	if newEdit {
		if err := editor.Open(cmd.Context(), path); err != nil {
			return errors.NewSystemError(err, "set $EDITOR or $POSTMATTER_EDITOR")
		}
	}
	return nil
}

// createArticle writes a new article for req and returns its path.
func createArticle(cfg *config.Config, req newRequest) (string, error) {
	if req.Dir == "" {
		req.Dir = cfg.ContentDir
	}
	if req.Format == "" {
		req.Format = cfg.DefaultFormat
	}
	if req.Options.Layout == "" {
		req.Options.Layout = cfg.DefaultLayout
	}
	if req.Date != "" {
		d, err := parseDate(req.Date)
		if err != nil {
			return "", err
		}
		req.Options.Date = d
	}

	kind, err := frontmatter.ParseKind(req.Format)
	if err != nil {
		return "", errors.NewUserError(err, "use --format yaml or --format toml")
	}

	fm, err := article.New(req.Title, req.Options)
	if err != nil {
		return "", errors.NewUserError(err, "")
	}

	ext := ".md"
	if len(cfg.Extensions) > 0 {
		ext = cfg.Extensions[0]
	}
	path := filepath.Join(req.Dir, fm.Slug+ext)

	data, err := article.Encode(kind, fm, "\n")
	if err != nil {
		return "", err
	}

	if err := paths.EnsureDir(req.Dir, 0); err != nil {
		return "", errors.NewSystemError(errors.Wrap(err, "creating content directory"), "")
	}
	if err := fileutil.CreateExclusive(path, data, 0o644); err != nil {
		if errors.Is(err, errors.ErrExists) {
			return "", errors.NewUserError(err, "choose another title or pass --slug")
		}
		return "", errors.NewSystemError(err, "")
	}
	return path, nil
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(article.DateLayout, s)
	if err != nil {
		return time.Time{}, errors.NewUserError(errors.Newf("invalid date %q", s), "use YYYY-MM-DD")
	}
	return d, nil
}
