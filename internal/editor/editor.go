// Package editor launches the user's preferred text editor on a content file.
package editor

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/thoreinstein/postmatter/internal/errors"
	"github.com/thoreinstein/postmatter/internal/logging"
)

// EnvEditor overrides $EDITOR and $VISUAL for postmatter only.
const EnvEditor = "POSTMATTER_EDITOR"

// Open launches the preferred editor for the given path and waits for it to
// exit. The editor command may carry arguments, e.g. "code --wait".
func Open(ctx context.Context, path string) error {
	editorCmd := Detect()
	args := strings.Fields(editorCmd)
	if len(args) == 0 {
		return errors.New("no editor configured")
	}

	logging.FromContext(ctx).Debug("launching editor", "editor", args[0], "path", path)

	cmd := exec.CommandContext(ctx, args[0], append(args[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, "running editor %s", args[0])
	}

	return nil
}

// Detect returns the editor command to use based on environment variables
// and available binaries. Fallback chain:
// $POSTMATTER_EDITOR → $EDITOR → $VISUAL → nano → vi
func Detect() string {
	for _, key := range []string{EnvEditor, "EDITOR", "VISUAL"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}

	// User-friendly fallback (nano is easier for beginners)
	if _, err := exec.LookPath("nano"); err == nil {
		return "nano"
	}

	// POSIX standard fallback
	return "vi"
}
