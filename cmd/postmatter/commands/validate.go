package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/postmatter/internal/errors"
	"github.com/thoreinstein/postmatter/internal/git"
	"github.com/thoreinstein/postmatter/internal/logging"
	"github.com/thoreinstein/postmatter/internal/validator"
)

var (
	validateStrict  bool
	validateJSON    bool
	validateChanged bool
)

func init() {
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false,
		"report unknown keys and fail on warnings")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false,
		"output results as JSON")
	validateCmd.Flags().BoolVar(&validateChanged, "changed", false,
		"only report files git considers modified or untracked")
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate [paths...]",
	Short: "Validate article front matter",
	Long: `Validate the front matter of articles against the schema.

Paths may be files or directories; directories are searched for the
configured extensions. Without paths, content_dir is validated.

Single-file rules cover every field. Across the whole set, every slug must
be unique. With --changed, the full set is still scanned so duplicates are
found, but only issues in files git reports as changed are shown.

Exit codes:
  0 - No errors (and no warnings in strict mode)
  1 - Validation errors, or warnings in strict mode
  2 - The content could not be read`,
	Example: `  # Validate content_dir
  postmatter validate

  # Validate one file as JSON
  postmatter validate src/pages/blog/tailwind.md --json

  # Fail on warnings too
  postmatter validate --strict

  See Also: postmatter doctor, postmatter list`,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	return runValidateWithWriter(cmd, args, cmd.OutOrStdout())
}

// runValidateWithWriter allows injecting a writer for testing.
func runValidateWithWriter(cmd *cobra.Command, args []string, w io.Writer) error {
	ctx := cmd.Context()
	logger := logging.FromContext(ctx)

	cfg := *currentConfig()
	if validateStrict {
		cfg.Strict = true
	}

	coll, err := scanContent(ctx, &cfg, false, true, args...)
	if err != nil {
		return err
	}
	result := coll.Validate()

	if validateChanged {
		roots := args
		if len(roots) == 0 {
			roots = []string{cfg.ContentDir}
		}
		changed, err := changedFiles(ctx, roots)
		if err != nil {
			return errors.NewUserError(errors.Wrap(err, "listing changed files"), "--changed needs a git work tree")
		}
		logger.Debug("filtering to changed files", "changed", len(changed))
		result = onlyFiles(result, changed)
	}

	format := validator.FormatText
	if validateJSON {
		format = validator.FormatJSON
	}
	if err := validator.NewReporter(w, format).Report(result); err != nil {
		return errors.NewSystemError(err, "")
	}

	logger.Info("validated articles", "files", coll.Len(), "issues", len(result.Issues))

	if result.HasErrors() || (cfg.Strict && result.HasWarnings()) {
		return errors.NewExitError(nil, errors.ExitUser)
	}
	if !validateJSON && coll.Len() == 0 {
		fmt.Fprintln(w, "No articles found")
	}
	return nil
}

// changedFiles asks git for the dirty files under each root. Roots may live
// in different work trees.
func changedFiles(ctx context.Context, roots []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, root := range roots {
		dir := root
		if info, err := os.Stat(dir); err == nil && !info.IsDir() {
			dir = filepath.Dir(dir)
		}
		changed, err := git.ChangedFiles(ctx, dir)
		if err != nil {
			return nil, errors.Wrapf(err, "%s", root)
		}
		for _, f := range changed {
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}
	return files, nil
}

// onlyFiles keeps the issues whose file is one of keep.
func onlyFiles(result *validator.Result, keep []string) *validator.Result {
	set := make(map[string]bool, len(keep))
	for _, p := range keep {
		set[absPath(p)] = true
	}

	filtered := &validator.Result{}
	for _, issue := range result.Issues {
		if set[absPath(issue.File())] {
			filtered.Add(issue)
		}
	}
	return filtered
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		return resolved
	}
	return p
}

