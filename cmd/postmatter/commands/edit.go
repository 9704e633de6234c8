package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/postmatter/internal/article"
	artvalidator "github.com/thoreinstein/postmatter/internal/article/validator"
	"github.com/thoreinstein/postmatter/internal/editor"
	"github.com/thoreinstein/postmatter/internal/errors"
	"github.com/thoreinstein/postmatter/internal/validator"
)

var editInteractive bool

func init() {
	editCmd.Flags().BoolVarP(&editInteractive, "interactive", "i", false, "pick the article with a fuzzy finder")
	rootCmd.AddCommand(editCmd)
}

var editCmd = &cobra.Command{
	Use:   "edit <query>",
	Short: "Open an article in $EDITOR",
	Long: `Open an article in your editor, then validate it.

The query is resolved like 'postmatter show'. The editor is taken from
$POSTMATTER_EDITOR, $EDITOR or $VISUAL, falling back to nano and then vi.
Validation problems are reported after the editor exits but do not fail
the command since the changes are already saved.`,
	Example: `  postmatter edit tailwind-vanilla
  postmatter edit -i
  EDITOR="code --wait" postmatter edit tailwind`,
	Args: func(cmd *cobra.Command, args []string) error {
		if editInteractive {
			return cobra.MaximumNArgs(1)(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: runEdit,
}

func runEdit(cmd *cobra.Command, args []string) error {
	cfg := currentConfig()
	coll, err := scanContent(cmd.Context(), cfg, true, false)
	if err != nil {
		return err
	}

	query := ""
	if len(args) > 0 {
		query = args[0]
	}
	a, err := resolveArticle(coll, query, editInteractive, cmd.InOrStdin(), cmd.OutOrStdout())
	if err != nil {
		return err
	}

	if err := editor.Open(cmd.Context(), a.Path); err != nil {
		return errors.NewSystemError(err, "set $EDITOR or $POSTMATTER_EDITOR")
	}

	w := cmd.OutOrStdout()
	edited, err := article.Load(a.Path)
	if err != nil {
		fmt.Fprintf(w, "\n%s could not be read back: %v\n", a.Path, err)
		return nil
	}
	result := &validator.Result{}
	result.Merge(artvalidator.New(artvalidator.OptionsFromConfig(cfg)).Validate(edited), map[string]string{
		validator.ContextFile: a.Path,
	})
	fmt.Fprintln(w)
	// The file is already saved, so problems are reported only.
	_ = validator.NewReporter(w, validator.FormatText).Report(result)
	return nil
}
