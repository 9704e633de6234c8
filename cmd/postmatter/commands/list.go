package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/postmatter/internal/article"
	"github.com/thoreinstein/postmatter/internal/collection"
	"github.com/thoreinstein/postmatter/internal/errors"
)

var (
	listTag  string
	listJSON bool
)

func init() {
	listCmd.Flags().StringVarP(&listTag, "tag", "t", "", "only list articles with this tag")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list [paths...]",
	Short: "List articles, newest first",
	Long: `List articles with their date, slug, title and tags, newest first.

Only headers are read. Files whose header cannot be parsed are skipped;
run 'postmatter validate' to see why.`,
	Example: `  # List everything under content_dir
  postmatter list

  # Only articles tagged css
  postmatter list --tag css

  # Output as JSON
  postmatter list --json`,
	RunE: runList,
}

// listEntry represents an article in JSON output format.
type listEntry struct {
	Path string `json:"path"`
	article.FrontMatter
}

func runList(cmd *cobra.Command, args []string) error {
	coll, err := scanContent(cmd.Context(), currentConfig(), true, false, args...)
	if err != nil {
		return err
	}

	var articles []*article.Article
	if listTag != "" {
		articles = collection.SortByDate(coll.WithTag(listTag))
	} else {
		articles = coll.Sorted()
	}

	if listJSON {
		return outputListJSON(cmd.OutOrStdout(), articles)
	}
	return outputListTabular(cmd.OutOrStdout(), articles)
}

func outputListJSON(w io.Writer, articles []*article.Article) error {
	entries := make([]listEntry, len(articles))
	for i, a := range articles {
		entries[i] = listEntry{Path: a.Path, FrontMatter: a.FrontMatter}
		if entries[i].Tags == nil {
			entries[i].Tags = []string{}
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(entries), "encoding JSON")
}

func outputListTabular(w io.Writer, articles []*article.Article) error {
	if len(articles) == 0 {
		fmt.Fprintln(w, "No articles found")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", styleHeader("DATE"), styleHeader("SLUG"), styleHeader("TITLE"), styleHeader("TAGS"))
	for _, a := range articles {
		date := a.Date
		if date == "" {
			date = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			date,
			styleSlug(a.Slug),
			truncate(a.Title, 60),
			styleMuted(strings.Join(a.Tags, ", ")),
		)
	}
	return errors.Wrap(tw.Flush(), "writing table")
}
