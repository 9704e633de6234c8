package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/cockroachdb/errors"
)

// AppName is the directory name used under XDG base directories.
const AppName = "postmatter"

// ProjectConfigName is the file name of the per-project configuration.
const ProjectConfigName = ".postmatter.yaml"

// Sentinel errors for path resolution.
var (
	// ErrInvalidPath indicates the provided path is malformed or invalid.
	ErrInvalidPath = errors.New("invalid path")
)

// DefaultDirPerm is the default permission for newly created directories.
const DefaultDirPerm = 0o755

// EnsureDir creates the directory and any necessary parents with specified permissions.
// If perm is 0, DefaultDirPerm is used.
func EnsureDir(path string, perm os.FileMode) error {
	if perm == 0 {
		perm = DefaultDirPerm
	}
	return os.MkdirAll(path, perm)
}

// ConfigHome returns the XDG config home directory.
// On Linux: ~/.config
// On macOS: ~/Library/Application Support
// On Windows: %LOCALAPPDATA%
func ConfigHome() string {
	return xdg.ConfigHome
}

// CacheHome returns the XDG cache home directory.
func CacheHome() string {
	return xdg.CacheHome
}

// GlobalConfigDir returns <ConfigHome>/postmatter.
func GlobalConfigDir() string {
	return filepath.Join(ConfigHome(), AppName)
}

// GlobalConfigFile returns <ConfigHome>/postmatter/config.yaml.
func GlobalConfigFile() string {
	return filepath.Join(GlobalConfigDir(), "config.yaml")
}

// ProjectConfigFile returns the project config path inside dir.
func ProjectConfigFile(dir string) string {
	return filepath.Join(dir, ProjectConfigName)
}

// ValidatePath checks that p is syntactically usable as a path.
// It does not touch the file system.
func ValidatePath(p string) error {
	if strings.TrimSpace(p) == "" {
		return ErrInvalidPath
	}
	if strings.ContainsRune(p, '\x00') {
		return ErrInvalidPath
	}
	cleaned := filepath.Clean(filepath.FromSlash(p))
	if cleaned == "." {
		return ErrInvalidPath
	}
	return nil
}

// ResolveReference resolves ref against the directory of the file at from.
// Absolute refs are returned cleaned. Refs use forward slashes as written in
// front matter and are converted to the host separator.
func ResolveReference(from, ref string) string {
	native := filepath.FromSlash(ref)
	if filepath.IsAbs(native) {
		return filepath.Clean(native)
	}
	return filepath.Join(filepath.Dir(from), native)
}
