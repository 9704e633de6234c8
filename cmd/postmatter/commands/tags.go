package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/postmatter/internal/collection"
	"github.com/thoreinstein/postmatter/internal/errors"
)

var tagsJSON bool

func init() {
	tagsCmd.Flags().BoolVar(&tagsJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(tagsCmd)
}

var tagsCmd = &cobra.Command{
	Use:   "tags [paths...]",
	Short: "Show the tag index",
	Long: `Show every tag used across the articles, most used first, with the
number of articles carrying it. Tags that differ only in case are counted
together.`,
	Example: `  postmatter tags
  postmatter tags --json`,
	RunE: runTags,
}

func runTags(cmd *cobra.Command, args []string) error {
	coll, err := scanContent(cmd.Context(), currentConfig(), true, false, args...)
	if err != nil {
		return err
	}

	index := coll.Tags()
	if tagsJSON {
		return outputTagsJSON(cmd.OutOrStdout(), index)
	}
	return outputTagsTabular(cmd.OutOrStdout(), index)
}

func outputTagsJSON(w io.Writer, index []collection.TagCount) error {
	if index == nil {
		index = []collection.TagCount{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(index), "encoding JSON")
}

func outputTagsTabular(w io.Writer, index []collection.TagCount) error {
	if len(index) == 0 {
		fmt.Fprintln(w, "No tags found")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\n", styleHeader("TAG"), styleHeader("ARTICLES"))
	for _, tc := range index {
		fmt.Fprintf(tw, "%s\t%d\n", styleSlug(tc.Tag), tc.Count)
	}
	return errors.Wrap(tw.Flush(), "writing table")
}
