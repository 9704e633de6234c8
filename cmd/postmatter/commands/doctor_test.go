package commands

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/postmatter/internal/doctor"
	"github.com/thoreinstein/postmatter/internal/errors"
)

func sampleReport() *doctor.DoctorReport {
	return &doctor.DoctorReport{
		Results: []*doctor.CheckResult{
			{Name: "config-file", Category: "config", Status: doctor.SeverityPass, Message: "config file is valid"},
			{Name: "slugs", Category: "content", Status: doctor.SeverityError, Message: "2 article(s) share a slug", FixHint: "give each article a unique slug"},
			{Name: "git", Category: "vcs", Status: doctor.SeverityInfo, Message: "content directory is not inside a git work tree"},
		},
		Summary: doctor.Summary{Passed: 1, Info: 1, Errors: 1},
	}
}

func TestValidateDoctorFlags(t *testing.T) {
	t.Cleanup(func() {
		doctorJSON = false
		doctorAll = false
		quiet = false
	})

	doctorJSON, doctorAll, quiet = true, false, false
	assert.NoError(t, validateDoctorFlags(nil, nil))

	doctorJSON, doctorAll = true, true
	assert.Error(t, validateDoctorFlags(nil, nil))

	doctorJSON, doctorAll, quiet = false, true, true
	assert.Error(t, validateDoctorFlags(nil, nil))
}

func TestOutputDoctorText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, outputDoctorText(&buf, sampleReport(), false))

	out := buf.String()
	assert.Contains(t, out, "✗ [content] slugs: 2 article(s) share a slug")
	assert.Contains(t, out, "hint: give each article a unique slug")
	assert.NotContains(t, out, "config-file")
	assert.Contains(t, out, "Summary: 1 passed, 1 info, 0 warnings, 1 errors")
}

func TestOutputDoctorText_All(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, outputDoctorText(&buf, sampleReport(), true))

	out := buf.String()
	assert.Contains(t, out, "✓ [config] config-file")
	assert.Contains(t, out, "ℹ [vcs] git")
}

func TestOutputDoctorJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, outputDoctorJSON(&buf, sampleReport()))

	var decoded doctor.DoctorReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Results, 3)
	assert.Equal(t, doctor.SeverityError, decoded.Results[1].Status)
	assert.True(t, strings.Contains(buf.String(), `"status": "error"`))
}

func TestDoctorExitCodes(t *testing.T) {
	assert.Equal(t, 1, errors.ExitCode(errDoctorWarnings))
	assert.Equal(t, 2, errors.ExitCode(errDoctorErrors))
}

func TestRunDoctor_HealthyProject(t *testing.T) {
	t.Cleanup(func() { doctorAll = false })
	isolateConfig(t)
	withContent(t, map[string]string{
		"blog/post.md": strings.Replace(tailwindArticle, "../../layouts/BlogPostLayout.astro", "../layouts/Post.astro", 1),
		"layouts/Post.astro": "---\n---\n<slot />\n",
	})

	doctorAll = true
	var out bytes.Buffer
	err := runDoctor(testCommand(&out), nil)

	// Only the missing config file (info) and git (info or pass) are allowed.
	require.NoError(t, err, out.String())
	assert.Contains(t, out.String(), "[config] config-file: no config file found")
	assert.Contains(t, out.String(), "[content] slugs")
}

func TestApplyFixes_NothingToFix(t *testing.T) {
	checks := []doctor.Check{doctor.NewConfigCheck(""), doctor.NewGitCheck(t.TempDir())}
	assert.Empty(t, applyFixes(checks))
}

// isolateConfig moves into an empty directory with an empty XDG config home
// so no project or global config is discovered.
func isolateConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	xdg.Reload()
	t.Cleanup(xdg.Reload)
	t.Chdir(dir)
	return dir
}
