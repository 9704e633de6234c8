// Package git wraps the git commands postmatter needs to find work-in-progress
// content.
package git

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrNotWorkTree indicates a directory is outside any git work tree.
var ErrNotWorkTree = errors.New("not a git work tree")

// Available reports whether a git executable is on PATH.
func Available() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

func output(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", dir}, args...)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, errors.Wrapf(err, "git %s", args[0])
		}
		return nil, errors.Wrapf(err, "git %s: %s", args[0], msg)
	}
	return out, nil
}

// IsWorkTree reports whether dir is inside a git work tree.
func IsWorkTree(ctx context.Context, dir string) bool {
	out, err := output(ctx, dir, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(string(out)) == "true"
}

// TopLevel returns the root of the work tree containing dir.
func TopLevel(ctx context.Context, dir string) (string, error) {
	if !IsWorkTree(ctx, dir) {
		return "", errors.Wrapf(ErrNotWorkTree, "%s", dir)
	}
	out, err := output(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return filepath.FromSlash(strings.TrimSpace(string(out))), nil
}

// ChangedFiles returns the absolute paths of files under dir that are
// modified, added, renamed or untracked. Deleted files are left out because
// there is nothing left to read.
func ChangedFiles(ctx context.Context, dir string) ([]string, error) {
	top, err := TopLevel(ctx, dir)
	if err != nil {
		return nil, err
	}
	out, err := output(ctx, dir, "status", "--porcelain", "-z", "--untracked-files=all", "--", ".")
	if err != nil {
		return nil, err
	}

	rel := parsePorcelain(out)
	files := make([]string, 0, len(rel))
	for _, p := range rel {
		files = append(files, filepath.Join(top, filepath.FromSlash(p)))
	}
	return files, nil
}

// parsePorcelain parses `git status --porcelain -z` output into repo-relative
// paths. Entries are "XY path"; renames and copies are followed by the
// original path as a separate entry.
func parsePorcelain(out []byte) []string {
	var paths []string
	entries := strings.Split(string(out), "\x00")
	for i := 0; i < len(entries); i++ {
		entry := entries[i]
		if len(entry) < 4 {
			continue
		}
		x, y, path := entry[0], entry[1], entry[3:]
		if x == 'R' || x == 'C' {
			i++
		}
		if x == 'D' || y == 'D' {
			continue
		}
		paths = append(paths, path)
	}
	return paths
}
