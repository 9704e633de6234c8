package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func writeArticle(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestBackup_SameSecond(t *testing.T) {
	m := NewManager(WithBackupDir(t.TempDir()))
	m.now = fixedClock(time.Date(2022, 5, 31, 10, 0, 0, 0, time.UTC))
	src := writeArticle(t, t.TempDir(), "post.md", "---\ntitle: A\n---\n")

	first, err := m.Backup("convert", []string{src})
	require.NoError(t, err)
	second, err := m.Backup("convert", []string{src})
	require.NoError(t, err)

	assert.Equal(t, "20220531T100000", first.ID)
	assert.Equal(t, "20220531T100000-1", second.ID)
}

func TestBackup_SkipsMissing(t *testing.T) {
	m := NewManager(WithBackupDir(t.TempDir()))
	dir := t.TempDir()
	src := writeArticle(t, dir, "post.md", "body")

	manifest, err := m.Backup("convert", []string{src, filepath.Join(dir, "gone.md")})
	require.NoError(t, err)
	require.Len(t, manifest.Files, 1)
	assert.Equal(t, "convert", manifest.Reason)
	assert.Equal(t, ManifestVersion, manifest.Version)

	_, err = m.Backup("convert", []string{filepath.Join(dir, "gone.md")})
	assert.Error(t, err)
}

func TestRestore(t *testing.T) {
	m := NewManager(WithBackupDir(t.TempDir()))
	src := writeArticle(t, t.TempDir(), "post.md", "---\ntitle: A\n---\n")

	manifest, err := m.Backup("convert", []string{src})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(src, []byte("+++\ntitle = \"A\"\n+++\n"), 0o644))

	restored, err := m.Restore(manifest.ID)
	require.NoError(t, err)
	assert.Len(t, restored.Files, 1)

	data, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, "---\ntitle: A\n---\n", string(data))
}

func TestRestore_Corrupted(t *testing.T) {
	root := t.TempDir()
	m := NewManager(WithBackupDir(root))
	src := writeArticle(t, t.TempDir(), "post.md", "original")

	manifest, err := m.Backup("convert", []string{src})
	require.NoError(t, err)

	stored := filepath.Join(root, manifest.ID, manifest.Files[0].RelPath)
	require.NoError(t, os.WriteFile(stored, []byte("tampered"), 0o600))

	_, err = m.Restore(manifest.ID)
	assert.True(t, errors.Is(err, ErrBackupCorrupted))
}

func TestGet_InvalidID(t *testing.T) {
	m := NewManager(WithBackupDir(t.TempDir()))

	for _, id := range []string{"", "..", "../etc", `a\b`} {
		_, err := m.Get(id)
		assert.Error(t, err, "id %q", id)
	}

	_, err := m.Get("20220531T100000")
	assert.True(t, errors.Is(err, ErrNoBackupsFound))
}

func TestPrune(t *testing.T) {
	m := NewManager(WithBackupDir(t.TempDir()), WithRetentionCount(2))
	src := writeArticle(t, t.TempDir(), "post.md", "body")

	start := time.Date(2022, 5, 31, 10, 0, 0, 0, time.UTC)
	for i := range 3 {
		m.now = fixedClock(start.Add(time.Duration(i) * time.Minute))
		_, err := m.Backup("convert", []string{src})
		require.NoError(t, err)
	}

	list, err := m.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "20220531T100200", list[0].ID)
	assert.Equal(t, "20220531T100100", list[1].ID)
}

func TestList_Empty(t *testing.T) {
	m := NewManager(WithBackupDir(filepath.Join(t.TempDir(), "none")))
	_, err := m.List()
	assert.True(t, errors.Is(err, ErrNoBackupsFound))
	assert.NoError(t, m.Prune(1))
}

func TestRelPath(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"/home/me/blog/post.md", filepath.FromSlash("home/me/blog/post.md")},
		{"/srv/file:name.md", filepath.FromSlash("srv/filename.md")},
	}
	for _, tt := range tests {
		if got := relPath(filepath.FromSlash(tt.input)); got != tt.want {
			t.Errorf("relPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
