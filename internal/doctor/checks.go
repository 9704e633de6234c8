package doctor

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/postmatter/internal/article"
	"github.com/thoreinstein/postmatter/internal/collection"
	"github.com/thoreinstein/postmatter/internal/config"
	"github.com/thoreinstein/postmatter/internal/git"
	"github.com/thoreinstein/postmatter/internal/logging"
	"github.com/thoreinstein/postmatter/internal/paths"
	"github.com/thoreinstein/postmatter/pkg/fileutil"
)

// Content lazily scans the content directory once and shares the result
// between the checks that need it.
type Content struct {
	Dir     string
	Scanner *collection.Scanner

	once sync.Once
	coll *collection.Collection
	err  error
}

// NewContent creates a Content for dir. Only headers are read.
func NewContent(dir string, extensions []string) *Content {
	return &Content{
		Dir:     dir,
		Scanner: collection.NewScanner(collection.Options{
			Extensions:  extensions,
			HeadersOnly: true,
			// Unreadable files surface through the check results.
			Logger: logging.NewDiscard(),
		}),
	}
}

// Collection returns the scanned collection, scanning on first use.
func (c *Content) Collection(ctx context.Context) (*collection.Collection, error) {
	c.once.Do(func() {
		c.coll, c.err = c.Scanner.Scan(ctx, c.Dir)
	})
	return c.coll, c.err
}

// pathIssue represents a single path or permission problem.
type pathIssue struct {
	Path        string
	Type        string // "file" or "directory"
	Problem     string
	Severity    Severity
	Permissions string
	Fixable     bool
	FixHint     string
}

// worldWritable reports a fixable issue when mode grants write to others.
func worldWritable(path, kind string, mode os.FileMode) *pathIssue {
	if runtime.GOOS == "windows" || mode.Perm()&0o002 == 0 {
		return nil
	}
	return &pathIssue{
		Path:        path,
		Type:        kind,
		Problem:     kind + " is world-writable",
		Severity:    SeverityWarning,
		Permissions: formatPermissions(mode),
		Fixable:     true,
		FixHint:     fmt.Sprintf("chmod %04o %s", secureMode(mode), path),
	}
}

func issueDetails(issues []pathIssue) []map[string]any {
	out := make([]map[string]any, 0, len(issues))
	for _, issue := range issues {
		m := map[string]any{
			"path":     issue.Path,
			"type":     issue.Type,
			"problem":  issue.Problem,
			"severity": issue.Severity.String(),
		}
		if issue.Permissions != "" {
			m["permissions"] = issue.Permissions
		}
		out = append(out, m)
	}
	return out
}

// ConfigCheck validates the discovered configuration file.
type ConfigCheck struct {
	PermissionFixer

	path string
}

var _ Check = (*ConfigCheck)(nil)
var _ Fixer = (*ConfigCheck)(nil)

// NewConfigCheck creates a check for the config file at path. An empty path
// means no file was found and defaults are in effect.
func NewConfigCheck(path string) *ConfigCheck {
	return &ConfigCheck{path: path}
}

// Name returns the unique identifier for this check.
func (c *ConfigCheck) Name() string {
	return "config-file"
}

// Category returns the grouping for this check.
func (c *ConfigCheck) Category() string {
	return "config"
}

// Run parses and validates the config file.
func (c *ConfigCheck) Run(_ context.Context) *CheckResult {
	c.setIssues(nil)

	if c.path == "" {
		return &CheckResult{
			Status:  SeverityInfo,
			Message: "no config file found, using defaults",
			FixHint: "run 'postmatter init' to create " + paths.ProjectConfigName,
		}
	}

	info, err := os.Stat(c.path)
	if err != nil {
		return &CheckResult{
			Status:  SeverityError,
			Message: fmt.Sprintf("cannot read %s: %v", c.path, err),
			Details: map[string]any{"path": c.path},
		}
	}

	data, err := fileutil.ReadFileWithLimit(c.path)
	if err != nil {
		return &CheckResult{
			Status:  SeverityError,
			Message: fmt.Sprintf("cannot read %s: %v", c.path, err),
			Details: map[string]any{"path": c.path},
		}
	}

	cfg := config.Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return &CheckResult{
			Status:  SeverityError,
			Message: "config file is not valid YAML",
			Details: map[string]any{"path": c.path, "error": err.Error()},
			FixHint: "fix the syntax error or run 'postmatter config edit'",
		}
	}

	if errs := config.Validate(cfg); len(errs) > 0 {
		problems := make([]string, len(errs))
		for i, e := range errs {
			problems[i] = e.Error()
		}
		return &CheckResult{
			Status:  SeverityError,
			Message: fmt.Sprintf("config has %d invalid value(s)", len(errs)),
			Details: map[string]any{"path": c.path, "errors": problems},
			FixHint: "run 'postmatter config set <key> <value>' to correct them",
		}
	}

	if issue := worldWritable(c.path, "file", info.Mode()); issue != nil {
		c.setIssues([]pathIssue{*issue})
		return &CheckResult{
			Status:  SeverityWarning,
			Message: "config file is valid but world-writable",
			Details: map[string]any{"path": c.path, "issues": issueDetails(c.issues)},
			Fixable: true,
			FixHint: issue.FixHint,
		}
	}

	return &CheckResult{
		Status:  SeverityPass,
		Message: "config file is valid",
		Details: map[string]any{"path": c.path},
	}
}

// ContentDirCheck verifies the content directory is usable.
type ContentDirCheck struct {
	PermissionFixer

	content *Content
}

var _ Check = (*ContentDirCheck)(nil)
var _ Fixer = (*ContentDirCheck)(nil)

// NewContentDirCheck creates a content directory check.
func NewContentDirCheck(content *Content) *ContentDirCheck {
	return &ContentDirCheck{content: content}
}

// Name returns the unique identifier for this check.
func (c *ContentDirCheck) Name() string {
	return "content-dir"
}

// Category returns the grouping for this check.
func (c *ContentDirCheck) Category() string {
	return "content"
}

// Run checks existence, type, permissions and file count.
func (c *ContentDirCheck) Run(_ context.Context) *CheckResult {
	c.setIssues(nil)
	dir := c.content.Dir

	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return &CheckResult{
			Status:  SeverityError,
			Message: "content directory does not exist: " + dir,
			FixHint: "create it or set content_dir with 'postmatter config set content_dir <dir>'",
		}
	}
	if err != nil {
		return &CheckResult{
			Status:  SeverityError,
			Message: fmt.Sprintf("cannot access content directory: %v", err),
		}
	}
	if !info.IsDir() {
		return &CheckResult{
			Status:  SeverityError,
			Message: "content_dir is not a directory: " + dir,
		}
	}

	var issues []pathIssue
	if !isDirectoryWritable(dir) {
		issues = append(issues, pathIssue{
			Path:        dir,
			Type:        "directory",
			Problem:     "directory is not writable",
			Severity:    SeverityWarning,
			Permissions: formatPermissions(info.Mode()),
			FixHint:     "chmod u+w " + dir,
		})
	}
	if issue := worldWritable(dir, "directory", info.Mode()); issue != nil {
		issues = append(issues, *issue)
	}
	c.setIssues(issues)

	files, err := c.content.Scanner.Discover(dir)
	if err != nil {
		return &CheckResult{
			Status:  SeverityError,
			Message: fmt.Sprintf("cannot list content directory: %v", err),
		}
	}

	details := map[string]any{"path": dir, "files": len(files)}
	if len(issues) > 0 {
		details["issues"] = issueDetails(issues)
		hints := make([]string, 0, len(issues))
		for _, issue := range issues {
			hints = append(hints, issue.FixHint)
		}
		return &CheckResult{
			Status:  SeverityWarning,
			Message: fmt.Sprintf("found %d permission issue(s) on %s", len(issues), dir),
			Details: details,
			Fixable: c.CanFix(),
			FixHint: strings.Join(hints, "; "),
		}
	}

	if len(files) == 0 {
		return &CheckResult{
			Status:  SeverityWarning,
			Message: "content directory has no articles",
			Details: details,
			FixHint: "run 'postmatter new <title>' to create one",
		}
	}

	return &CheckResult{
		Status:  SeverityPass,
		Message: fmt.Sprintf("%d article file(s) in %s", len(files), dir),
		Details: details,
	}
}

// isDirectoryWritable tests if a directory is writable by creating a temp file.
func isDirectoryWritable(path string) bool {
	tmpFile, err := os.CreateTemp(path, ".postmatter-doctor-*")
	if err != nil {
		return false
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	os.Remove(tmpPath)
	return true
}

// LayoutCheck verifies that every referenced layout resolves to a file.
type LayoutCheck struct {
	content *Content
}

var _ Check = (*LayoutCheck)(nil)

// NewLayoutCheck creates a layout check.
func NewLayoutCheck(content *Content) *LayoutCheck {
	return &LayoutCheck{content: content}
}

// Name returns the unique identifier for this check.
func (c *LayoutCheck) Name() string {
	return "layouts"
}

// Category returns the grouping for this check.
func (c *LayoutCheck) Category() string {
	return "content"
}

// Run resolves each layout relative to its article.
func (c *LayoutCheck) Run(ctx context.Context) *CheckResult {
	coll, err := c.content.Collection(ctx)
	if err != nil {
		return &CheckResult{
			Status:  SeverityInfo,
			Message: "skipped: content directory could not be scanned",
		}
	}

	checked := make(map[string]bool)
	var missing []map[string]any
	for _, a := range coll.Articles() {
		if a.Layout == "" {
			continue
		}
		target := paths.ResolveReference(a.Path, a.Layout)
		ok, seen := checked[target]
		if !seen {
			info, err := os.Stat(target)
			ok = err == nil && !info.IsDir()
			checked[target] = ok
		}
		if !ok {
			missing = append(missing, map[string]any{
				"article":  a.Path,
				"layout":   a.Layout,
				"resolved": target,
			})
		}
	}

	if len(missing) > 0 {
		return &CheckResult{
			Status:  SeverityError,
			Message: fmt.Sprintf("%d article(s) reference a missing layout", len(missing)),
			Details: map[string]any{"missing": missing},
			FixHint: "fix the layout field or create the layout file",
		}
	}

	return &CheckResult{
		Status:  SeverityPass,
		Message: fmt.Sprintf("%d layout(s) resolve", len(checked)),
	}
}

// SlugCheck reports slugs shared by more than one article.
type SlugCheck struct {
	content *Content
}

var _ Check = (*SlugCheck)(nil)

// NewSlugCheck creates a slug uniqueness check.
func NewSlugCheck(content *Content) *SlugCheck {
	return &SlugCheck{content: content}
}

// Name returns the unique identifier for this check.
func (c *SlugCheck) Name() string {
	return "slugs"
}

// Category returns the grouping for this check.
func (c *SlugCheck) Category() string {
	return "content"
}

// Run looks for duplicate slugs across the collection.
func (c *SlugCheck) Run(ctx context.Context) *CheckResult {
	coll, err := c.content.Collection(ctx)
	if err != nil {
		return &CheckResult{
			Status:  SeverityInfo,
			Message: "skipped: content directory could not be scanned",
		}
	}

	dups := coll.DuplicateSlugs()
	if len(dups) > 0 {
		conflicts := make([]map[string]any, 0, len(dups))
		for _, issue := range dups {
			conflicts = append(conflicts, map[string]any{
				"file": issue.File(),
				"slug": issue.Value,
			})
		}
		return &CheckResult{
			Status:  SeverityError,
			Message: fmt.Sprintf("%d article(s) share a slug", len(dups)),
			Details: map[string]any{"conflicts": conflicts},
			FixHint: "give each article a unique " + article.FieldSlug,
		}
	}

	return &CheckResult{
		Status:  SeverityPass,
		Message: fmt.Sprintf("%d slug(s) are unique", coll.Len()),
	}
}

// GitCheck reports whether the content directory is tracked by git.
type GitCheck struct {
	dir string
}

var _ Check = (*GitCheck)(nil)

// NewGitCheck creates a git check for dir.
func NewGitCheck(dir string) *GitCheck {
	return &GitCheck{dir: dir}
}

// Name returns the unique identifier for this check.
func (c *GitCheck) Name() string {
	return "git"
}

// Category returns the grouping for this check.
func (c *GitCheck) Category() string {
	return "vcs"
}

// Run inspects the work tree containing the content directory.
func (c *GitCheck) Run(ctx context.Context) *CheckResult {
	if !git.Available() {
		return &CheckResult{
			Status:  SeverityInfo,
			Message: "git not found in PATH; validate --changed is unavailable",
		}
	}
	if !git.IsWorkTree(ctx, c.dir) {
		return &CheckResult{
			Status:  SeverityInfo,
			Message: "content directory is not inside a git work tree",
		}
	}

	changed, err := git.ChangedFiles(ctx, c.dir)
	if err != nil {
		return &CheckResult{
			Status:  SeverityWarning,
			Message: fmt.Sprintf("git status failed: %v", err),
		}
	}

	return &CheckResult{
		Status:  SeverityPass,
		Message: fmt.Sprintf("git work tree, %d changed file(s)", len(changed)),
		Details: map[string]any{"changed": len(changed)},
	}
}

// Default returns the standard checks for cfg, loaded from configPath.
func Default(cfg *config.Config, configPath string) []Check {
	content := NewContent(cfg.ContentDir, cfg.Extensions)
	return []Check{
		NewConfigCheck(configPath),
		NewContentDirCheck(content),
		NewLayoutCheck(content),
		NewSlugCheck(content),
		NewGitCheck(cfg.ContentDir),
	}
}

// formatPermissions returns a human-readable permission string (e.g., "0644").
func formatPermissions(mode os.FileMode) string {
	return fmt.Sprintf("%04o", mode.Perm())
}
