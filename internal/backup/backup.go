// Package backup keeps snapshots of article files before postmatter rewrites
// them, so a conversion can be undone.
//
// Snapshots live under the XDG cache directory:
//
//	$XDG_CACHE_HOME/postmatter/backups/
//	└── {timestamp}/
//	    ├── manifest.json
//	    └── {copied files...}
package backup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/thoreinstein/postmatter/internal/paths"
	"github.com/thoreinstein/postmatter/pkg/fileutil"
)

// Version is set at build time via ldflags.
var Version = "dev"

const idLayout = "20060102T150405"

// Manager creates, restores and prunes snapshots.
type Manager struct {
	rootDir        string
	retentionCount int
	now            func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithBackupDir sets the root backup directory.
func WithBackupDir(dir string) Option {
	return func(m *Manager) {
		m.rootDir = dir
	}
}

// WithRetentionCount sets the number of snapshots kept by Backup.
func WithRetentionCount(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.retentionCount = n
		}
	}
}

// Dir returns the default backup root.
func Dir() string {
	return filepath.Join(paths.CacheHome(), paths.AppName, "backups")
}

// NewManager creates a Manager with the given options.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		rootDir:        Dir(),
		retentionCount: DefaultRetentionCount,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Backup copies files into a new snapshot and prunes snapshots beyond the
// retention count. Missing files are skipped.
func (m *Manager) Backup(reason string, files []string) (*Manifest, error) {
	if len(files) == 0 {
		return nil, errors.New("at least one file is required")
	}

	if err := paths.EnsureDir(m.rootDir, 0o700); err != nil {
		return nil, errors.Wrap(err, "creating backup directory")
	}
	id, err := m.reserveID()
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(m.rootDir, id)

	var copied []File
	for _, p := range files {
		abs, err := filepath.Abs(p)
		if err != nil {
			os.RemoveAll(dir)
			return nil, errors.Wrapf(err, "resolving %s", p)
		}
		if _, err := os.Stat(abs); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			os.RemoveAll(dir)
			return nil, errors.Wrapf(err, "stat %s", p)
		}

		rel := relPath(abs)
		hash, mode, err := copyFile(abs, filepath.Join(dir, rel))
		if err != nil {
			os.RemoveAll(dir)
			return nil, errors.Wrapf(err, "backing up %s", p)
		}
		copied = append(copied, File{
			OriginalPath: abs,
			RelPath:      rel,
			SHA256Hash:   hash,
			Mode:         mode,
		})
	}

	if len(copied) == 0 {
		os.RemoveAll(dir)
		return nil, errors.New("no files to back up")
	}

	manifest := &Manifest{
		Version:     ManifestVersion,
		CreatedAt:   m.now().UTC(),
		Reason:      reason,
		Files:       copied,
		ToolVersion: Version,
		ID:          id,
	}
	if err := fileutil.AtomicWriteJSON(filepath.Join(dir, "manifest.json"), manifest); err != nil {
		os.RemoveAll(dir)
		return nil, errors.Wrap(err, "writing manifest")
	}

	if err := m.Prune(m.retentionCount); err != nil {
		return manifest, errors.Wrap(err, "pruning old backups")
	}
	return manifest, nil
}

// reserveID creates the snapshot directory. Snapshots taken within the same
// second get a numeric suffix.
func (m *Manager) reserveID() (string, error) {
	base := m.now().UTC().Format(idLayout)
	id := base
	for i := 1; ; i++ {
		err := os.Mkdir(filepath.Join(m.rootDir, id), 0o700)
		if err == nil {
			return id, nil
		}
		if !os.IsExist(err) {
			return "", errors.Wrap(err, "creating snapshot directory")
		}
		id = base + "-" + strconv.Itoa(i)
	}
}

// Restore copies every file of a snapshot back to its original location
// after checking it against the recorded hash.
func (m *Manager) Restore(id string) (*Manifest, error) {
	manifest, err := m.Get(id)
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(m.rootDir, id)
	for _, f := range manifest.Files {
		src := filepath.Join(dir, f.RelPath)

		hash, err := hashFile(src)
		if err != nil {
			return nil, errors.Wrapf(err, "reading backup file %s", f.RelPath)
		}
		if hash != f.SHA256Hash {
			return nil, errors.Wrapf(ErrBackupCorrupted, "file %s hash mismatch", f.RelPath)
		}

		if err := paths.EnsureDir(filepath.Dir(f.OriginalPath), 0o755); err != nil {
			return nil, errors.Wrapf(err, "creating directory for %s", f.OriginalPath)
		}
		data, err := os.ReadFile(src)
		if err != nil {
			return nil, errors.Wrapf(err, "reading backup file %s", f.RelPath)
		}
		if err := fileutil.AtomicWriteFile(f.OriginalPath, data, f.Mode.Perm()); err != nil {
			return nil, errors.Wrapf(err, "restoring %s", f.OriginalPath)
		}
	}
	return manifest, nil
}

// List returns all snapshots, newest first.
func (m *Manager) List() ([]Manifest, error) {
	entries, err := os.ReadDir(m.rootDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoBackupsFound
		}
		return nil, errors.Wrap(err, "reading backup directory")
	}

	manifests := make([]Manifest, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		manifest, err := m.Get(entry.Name())
		if err != nil {
			continue
		}
		manifests = append(manifests, *manifest)
	}
	if len(manifests) == 0 {
		return nil, ErrNoBackupsFound
	}

	slices.SortFunc(manifests, func(a, b Manifest) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})
	return manifests, nil
}

// Prune removes all but the newest keep snapshots.
func (m *Manager) Prune(keep int) error {
	if keep < 0 {
		return errors.New("keep must be non-negative")
	}

	manifests, err := m.List()
	if err != nil {
		if errors.Is(err, ErrNoBackupsFound) {
			return nil
		}
		return err
	}

	for i := keep; i < len(manifests); i++ {
		if err := os.RemoveAll(filepath.Join(m.rootDir, manifests[i].ID)); err != nil {
			return errors.Wrapf(err, "removing backup %s", manifests[i].ID)
		}
	}
	return nil
}

// Get loads the manifest of one snapshot.
func (m *Manager) Get(id string) (*Manifest, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || id == "." || id == ".." {
		return nil, errors.Newf("invalid backup ID %q", id)
	}

	data, err := os.ReadFile(filepath.Join(m.rootDir, id, "manifest.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrNoBackupsFound, "backup %s not found", id)
		}
		return nil, errors.Wrap(err, "reading manifest")
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, errors.Wrap(err, "parsing manifest")
	}
	manifest.ID = id
	return &manifest, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(err, "opening file")
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.Wrap(err, "reading file")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// copyFile copies src to dst, creating parent directories, and returns the
// content hash and the source mode.
func copyFile(src, dst string) (hash string, mode fs.FileMode, err error) {
	srcFile, err := os.Open(src)
	if err != nil {
		return "", 0, errors.Wrap(err, "opening source file")
	}
	defer srcFile.Close()

	info, err := srcFile.Stat()
	if err != nil {
		return "", 0, errors.Wrap(err, "stat source file")
	}
	mode = info.Mode()

	if err := os.MkdirAll(filepath.Dir(dst), 0o700); err != nil {
		return "", 0, errors.Wrap(err, "creating parent directory")
	}
	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return "", 0, errors.Wrap(err, "creating destination file")
	}

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(dstFile, h), srcFile); err != nil {
		dstFile.Close()
		return "", 0, errors.Wrap(err, "copying file")
	}
	if err := dstFile.Close(); err != nil {
		return "", 0, errors.Wrap(err, "closing destination file")
	}
	return hex.EncodeToString(h.Sum(nil)), mode, nil
}

// relPath maps an absolute path to its location inside a snapshot. Volume
// names lose their colon.
func relPath(abs string) string {
	clean := filepath.Clean(abs)
	if vol := filepath.VolumeName(clean); vol != "" {
		clean = strings.ReplaceAll(vol, ":", "") + clean[len(vol):]
	}
	clean = strings.ReplaceAll(clean, ":", "")
	return strings.TrimLeft(clean, `/\`)
}
