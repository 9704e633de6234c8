package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/postmatter/internal/article"
	"github.com/thoreinstein/postmatter/internal/errors"
	"github.com/thoreinstein/postmatter/pkg/frontmatter"
)

var (
	showJSON        bool
	showInteractive bool
)

func init() {
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output as JSON")
	showCmd.Flags().BoolVarP(&showInteractive, "interactive", "i", false, "pick the article with a fuzzy finder")
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show <query>",
	Short: "Display an article's front matter",
	Long: `Display the front matter of one article.

The query is matched against slugs first, then path suffixes, then titles
and slugs containing it (case-insensitive). When several articles match,
a numbered list is shown to choose from. With -i the query is optional and
a fuzzy finder over all articles opens instead.`,
	Example: `  postmatter show tailwind-vanilla
  postmatter show blog/tailwind.md --json
  postmatter show -i`,
	Args: func(cmd *cobra.Command, args []string) error {
		if showInteractive {
			return cobra.MaximumNArgs(1)(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: runShow,
}

// showDetail holds article information for display.
type showDetail struct {
	Path        string   `json:"path"`
	Format      string   `json:"format"`
	SlugDerived bool     `json:"slug_derived,omitempty"`
	UnknownKeys []string `json:"unknown_keys,omitempty"`
	article.FrontMatter
}

func runShow(cmd *cobra.Command, args []string) error {
	coll, err := scanContent(cmd.Context(), currentConfig(), true, false)
	if err != nil {
		return err
	}

	query := ""
	if len(args) > 0 {
		query = args[0]
	}
	a, err := resolveArticle(coll, query, showInteractive, cmd.InOrStdin(), cmd.OutOrStdout())
	if err != nil {
		return err
	}

	detail := &showDetail{
		Path:        a.Path,
		Format:      string(a.Kind),
		SlugDerived: a.SlugDerived,
		UnknownKeys: a.UnknownKeys(),
		FrontMatter: a.FrontMatter,
	}
	if showJSON {
		return outputShowJSON(cmd.OutOrStdout(), detail)
	}
	return outputShowText(cmd.OutOrStdout(), detail)
}

func outputShowJSON(w io.Writer, detail *showDetail) error {
	data, err := json.MarshalIndent(detail, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshaling JSON")
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func outputShowText(w io.Writer, detail *showDetail) error {
	fmt.Fprintf(w, "%s\n", styleTitle(detail.Title))
	fmt.Fprintf(w, "%s\n\n", styleMuted(detail.Path))

	fm := detail.FrontMatter
	if fm.Tags == nil {
		fm.Tags = []string{}
	}
	header, err := frontmatter.Encode(frontmatter.KindYAML, fm)
	if err != nil {
		return err
	}
	fmt.Fprint(w, string(header))

	var notes []string
	if detail.SlugDerived {
		notes = append(notes, "slug derived from file name")
	}
	if len(detail.UnknownKeys) > 0 {
		notes = append(notes, "other keys: "+strings.Join(detail.UnknownKeys, ", "))
	}
	if len(notes) > 0 {
		fmt.Fprintln(w)
		for _, n := range notes {
			fmt.Fprintf(w, "  %s\n", styleMuted(n))
		}
	}
	return nil
}
