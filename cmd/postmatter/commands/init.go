package commands

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/postmatter/internal/config"
	"github.com/thoreinstein/postmatter/internal/errors"
	"github.com/thoreinstein/postmatter/internal/paths"
)

var (
	initYes        bool
	initForce      bool
	initGlobal     bool
	initContentDir string
	initLayout     string
)

func init() {
	initCmd.Flags().BoolVarP(&initYes, "yes", "y", false, "Non-interactive mode, accept all defaults")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite existing configuration")
	initCmd.Flags().BoolVarP(&initGlobal, "global", "g", false, "Write the global config instead of the project file")
	initCmd.Flags().StringVar(&initContentDir, "content-dir", "", "content directory (default: detected)")
	initCmd.Flags().StringVar(&initLayout, "layout", "", "default layout for new articles")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize postmatter configuration",
	Long: `Write a postmatter configuration file.

Creates .postmatter.yaml in the working directory (or the global config
with --global). The content directory is detected from common static-site
layouts when not given.`,
	Example: `  # Initialize with a confirmation prompt
  postmatter init

  # Non-interactive, with an explicit content directory
  postmatter init --yes --content-dir src/content/blog

  # Force overwrite existing configuration
  postmatter init --force

  See Also: postmatter config, postmatter doctor`,
	RunE: runInit,
}

// contentDirCandidates are checked in order when --content-dir is not given.
var contentDirCandidates = []string{
	"src/pages",
	"src/content/blog",
	"src/content",
	"content/posts",
	"content",
	"posts",
}

func runInit(cmd *cobra.Command, _ []string) error {
	path := paths.ProjectConfigFile(".")
	if initGlobal {
		path = paths.GlobalConfigFile()
	}
	return initConfigFile(cmd.InOrStdin(), cmd.OutOrStdout(), path)
}

func initConfigFile(in io.Reader, w io.Writer, path string) error {
	if _, err := os.Stat(path); err == nil && !initForce {
		fmt.Fprintf(w, "Configuration already exists at %s\n", path)
		fmt.Fprintln(w, "Use --force to overwrite")
		return nil
	}

	cfg := config.Default()
	cfg.ContentDir = detectContentDir(cfg.ContentDir)
	if initContentDir != "" {
		cfg.ContentDir = initContentDir
	}
	if initLayout != "" {
		cfg.DefaultLayout = initLayout
	}

	if errs := config.Validate(cfg); len(errs) > 0 {
		return errors.NewUserError(errors.Mark(errs[0], errors.ErrInvalidConfig), "")
	}

	fmt.Fprintf(w, "Content directory: %s\n", cfg.ContentDir)
	fmt.Fprintf(w, "Default layout:    %s\n", cfg.DefaultLayout)

	if !initYes {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "This will create:")
		fmt.Fprintf(w, "  %s\n", path)
		fmt.Fprintln(w)

		if !confirm(in, w, "Proceed?") {
			fmt.Fprintln(w, "Aborted")
			return nil
		}
	}

	if err := config.Save(cfg, path); err != nil {
		return errors.NewSystemError(err, "")
	}

	fmt.Fprintf(w, "Created %s\n", path)
	return nil
}

// detectContentDir returns the first candidate directory that exists.
func detectContentDir(fallback string) string {
	for _, dir := range contentDirCandidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return fallback
}

// confirm prompts the user for yes/no confirmation.
func confirm(in io.Reader, w io.Writer, prompt string) bool {
	fmt.Fprintf(w, "%s [y/N]: ", prompt)
	reader := bufio.NewReader(in)
	response, err := reader.ReadString('\n')
	if err != nil && response == "" {
		return false
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
