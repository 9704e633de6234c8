package backup

import (
	"io/fs"
	"time"

	"github.com/cockroachdb/errors"
)

// ManifestVersion is the manifest format version.
const ManifestVersion = 1

// DefaultRetentionCount is the number of snapshots kept by default.
const DefaultRetentionCount = 10

var (
	// ErrNoBackupsFound indicates no snapshot exists.
	ErrNoBackupsFound = errors.New("no backups found")

	// ErrBackupCorrupted indicates a stored file no longer matches the hash
	// recorded in its manifest.
	ErrBackupCorrupted = errors.New("backup corrupted")
)

// Manifest describes one snapshot. It is stored as manifest.json in the
// snapshot directory.
type Manifest struct {
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"created_at"`

	// Reason records the operation that took the snapshot, e.g. "convert".
	Reason string `json:"reason"`
	Files  []File `json:"files"`

	// ToolVersion is the postmatter version that wrote the snapshot.
	ToolVersion string `json:"tool_version"`

	// ID is the snapshot directory name. Populated on load.
	ID string `json:"-"`
}

// File is one article copied into a snapshot.
type File struct {
	OriginalPath string      `json:"original_path"`
	RelPath      string      `json:"rel_path"`
	SHA256Hash   string      `json:"sha256_hash"`
	Mode         fs.FileMode `json:"mode"`
}
