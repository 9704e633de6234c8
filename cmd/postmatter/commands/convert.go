package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/postmatter/internal/backup"
	"github.com/thoreinstein/postmatter/internal/errors"
	"github.com/thoreinstein/postmatter/internal/translate"
	"github.com/thoreinstein/postmatter/pkg/fileutil"
	"github.com/thoreinstein/postmatter/pkg/frontmatter"
)

var (
	convertTo       string
	convertDryRun   bool
	convertNoBackup bool
	convertRestore  string
	convertList     bool
)

func init() {
	convertCmd.Flags().StringVar(&convertTo, "to", "", "target header format: yaml, toml")
	convertCmd.Flags().BoolVar(&convertDryRun, "dry-run", false, "print the result instead of writing it")
	convertCmd.Flags().BoolVar(&convertNoBackup, "no-backup", false, "skip the snapshot taken before rewriting")
	convertCmd.Flags().StringVar(&convertRestore, "restore", "", "restore the files of a snapshot by ID")
	convertCmd.Flags().BoolVar(&convertList, "list-snapshots", false, "list saved snapshots, newest first")
	convertCmd.MarkFlagsMutuallyExclusive("to", "restore", "list-snapshots")
	convertCmd.MarkFlagsOneRequired("to", "restore", "list-snapshots")
	rootCmd.AddCommand(convertCmd)
}

var convertCmd = &cobra.Command{
	Use:   "convert <path>...",
	Short: "Rewrite article headers as YAML or TOML",
	Long: `Rewrite the front matter header of one or more files in another format.

Every key is kept, including keys outside the schema. Keys are written in
sorted order. TOML dates become YYYY-MM-DD strings in YAML, and null values
are dropped when writing TOML. The body is left untouched. Files already
in the target format are skipped.

Before any file is rewritten the originals are copied into a snapshot under
the user cache directory. Pass the printed snapshot ID to --restore to undo
the conversion, and --list-snapshots to see the snapshots kept.`,
	Example: `  postmatter convert src/pages/blog/tailwind.md --to toml
  postmatter convert src/pages/blog/*.md --to yaml --dry-run
  postmatter convert --list-snapshots
  postmatter convert --restore 20220531T100712`,
	Args: func(cmd *cobra.Command, args []string) error {
		if convertRestore != "" || convertList {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.MinimumNArgs(1)(cmd, args)
	},
	RunE: runConvert,
}

// conversion is a converted file waiting to be written.
type conversion struct {
	Path    string
	Out     []byte
	Perm    os.FileMode
	Changed bool
}

func runConvert(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	if convertList {
		return listSnapshots(w, backup.NewManager())
	}
	if convertRestore != "" {
		return restoreSnapshot(w, backup.NewManager(), convertRestore)
	}

	kind, err := frontmatter.ParseKind(convertTo)
	if err != nil {
		return errors.NewUserError(err, "use --to yaml or --to toml")
	}

	convs := make([]*conversion, 0, len(args))
	for _, path := range args {
		c, err := convertFile(path, kind)
		if err != nil {
			return err
		}
		convs = append(convs, c)
	}

	if convertDryRun {
		for _, c := range convs {
			if c.Changed {
				fmt.Fprint(w, string(c.Out))
			} else {
				fmt.Fprintf(w, "%s is already %s\n", c.Path, kind)
			}
		}
		return nil
	}

	var mgr *backup.Manager
	if !convertNoBackup {
		mgr = backup.NewManager()
	}
	return writeConversions(w, mgr, convs, kind)
}

// convertFile converts the header of path to kind without writing it.
func convertFile(path string, kind frontmatter.Kind) (*conversion, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewUserError(errors.Wrapf(errors.ErrNotFound, "%s", path), "")
		}
		return nil, errors.NewSystemError(err, "")
	}

	content, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		return nil, errors.NewSystemError(err, "")
	}

	out, changed, err := translate.File(content, kind)
	if err != nil {
		return nil, errors.NewUserError(errors.Wrapf(err, "converting %s", path), "run 'postmatter validate "+path+"' for details")
	}
	return &conversion{Path: path, Out: out, Perm: info.Mode().Perm(), Changed: changed}, nil
}

// writeConversions snapshots the files about to change when mgr is non-nil,
// then writes them.
func writeConversions(w io.Writer, mgr *backup.Manager, convs []*conversion, kind frontmatter.Kind) error {
	var changed []string
	for _, c := range convs {
		if c.Changed {
			changed = append(changed, c.Path)
		}
	}

	if mgr != nil && len(changed) > 0 {
		manifest, err := mgr.Backup("convert", changed)
		if manifest == nil {
			return errors.NewSystemError(errors.Wrap(err, "backing up articles"), "pass --no-backup to convert without a snapshot")
		}
		if err != nil {
			slog.Warn("snapshot saved but pruning failed", "error", err)
		}
		fmt.Fprintf(w, "Saved snapshot %s\n", manifest.ID)
	}

	for _, c := range convs {
		if !c.Changed {
			fmt.Fprintf(w, "%s is already %s\n", c.Path, kind)
			continue
		}
		if err := fileutil.AtomicWriteFile(c.Path, c.Out, c.Perm); err != nil {
			return errors.NewSystemError(err, "")
		}
		fmt.Fprintf(w, "Converted %s to %s\n", c.Path, kind)
	}
	return nil
}

func restoreSnapshot(w io.Writer, mgr *backup.Manager, id string) error {
	manifest, err := mgr.Restore(id)
	if err != nil {
		if errors.Is(err, backup.ErrNoBackupsFound) {
			return errors.NewUserError(err, "run 'postmatter convert --list-snapshots' to see saved snapshots")
		}
		return errors.NewSystemError(err, "")
	}
	for _, f := range manifest.Files {
		fmt.Fprintf(w, "Restored %s\n", f.OriginalPath)
	}
	return nil
}

func listSnapshots(w io.Writer, mgr *backup.Manager) error {
	manifests, err := mgr.List()
	if err != nil {
		if errors.Is(err, backup.ErrNoBackupsFound) {
			fmt.Fprintln(w, "No snapshots found")
			return nil
		}
		return errors.NewSystemError(err, "")
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", styleHeader("ID"), styleHeader("CREATED"), styleHeader("REASON"), styleHeader("FILES"))
	for _, m := range manifests {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", m.ID, m.CreatedAt.Local().Format(time.DateTime), m.Reason, len(m.Files))
	}
	return tw.Flush()
}
