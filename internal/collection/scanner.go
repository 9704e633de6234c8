package collection

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/thoreinstein/postmatter/internal/article"
	artvalidator "github.com/thoreinstein/postmatter/internal/article/validator"
	"github.com/thoreinstein/postmatter/internal/errors"
	"github.com/thoreinstein/postmatter/internal/logging"
	"github.com/thoreinstein/postmatter/internal/validator"
)

// DefaultExtensions are used when Options.Extensions is empty.
var DefaultExtensions = []string{".md", ".mdx"}

// Options configures a Scanner.
type Options struct {
	// Extensions selects content files during directory walks.
	Extensions []string
	// HeadersOnly skips reading article bodies.
	HeadersOnly bool
	// Validator runs single-file rules on each loaded article. Nil skips them.
	Validator *artvalidator.Validator
	// Logger overrides the logger carried by the scan context.
	Logger *slog.Logger
}

// Scanner discovers and loads articles.
type Scanner struct {
	opts Options
}

// NewScanner creates a new Scanner.
func NewScanner(opts Options) *Scanner {
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultExtensions
	}
	return &Scanner{opts: opts}
}

// Scan loads every content file under roots. Roots may be directories or
// individual files; files given explicitly are loaded regardless of their
// extension. A missing root is an error wrapping errors.ErrNotFound.
func (s *Scanner) Scan(ctx context.Context, roots ...string) (*Collection, error) {
	logger := s.opts.Logger
	if logger == nil {
		logger = logging.FromContext(ctx)
	}

	files, err := s.Discover(roots...)
	if err != nil {
		return nil, err
	}
	logger.Debug("discovered content files", "roots", len(roots), "files", len(files))

	entries, err := s.loadAll(ctx, logger, files)
	if err != nil {
		return nil, err
	}

	return &Collection{Entries: entries}, nil
}

// Discover lists the content files under roots, sorted and de-duplicated.
func (s *Scanner) Discover(roots ...string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.Wrapf(errors.ErrNotFound, "content path %s", root)
			}
			return nil, errors.Wrapf(err, "reading %s", root)
		}
		if !info.IsDir() {
			add(root)
			continue
		}

		err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if p != root && skipDir(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}
			if s.matches(d.Name()) {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "walking %s", root)
		}
	}

	sort.Strings(files)
	return files, nil
}

func (s *Scanner) matches(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return slices.Contains(s.opts.Extensions, ext)
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "node_modules"
}

// loadAll loads files concurrently using a worker pool limited to GOMAXPROCS.
func (s *Scanner) loadAll(ctx context.Context, logger *slog.Logger, files []string) ([]Entry, error) {
	entries := make([]Entry, len(files))
	if len(files) == 0 {
		return entries, nil
	}

	workers := runtime.GOMAXPROCS(0)
	if len(files) < workers {
		workers = len(files)
	}

	work := make(chan int)

	type loadResult struct {
		index int
		entry Entry
	}
	results := make(chan loadResult, len(files))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				results <- loadResult{index: i, entry: s.load(logger, files[i])}
			}
		}()
	}

	go func() {
		defer close(work)
		for i := range files {
			select {
			case <-ctx.Done():
				return
			case work <- i:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	loaded := 0
	for r := range results {
		entries[r.index] = r.entry
		loaded++
	}

	if err := ctx.Err(); err != nil {
		return nil, errors.Wrapf(err, "scan cancelled after %d of %d files", loaded, len(files))
	}
	return entries, nil
}

func (s *Scanner) load(logger *slog.Logger, path string) Entry {
	var (
		a   *article.Article
		err error
	)
	if s.opts.HeadersOnly {
		a, err = article.LoadHeader(path)
	} else {
		a, err = article.Load(path)
	}
	if err != nil {
		logger.Debug("failed to load article", "path", path, "error", err)
		return Entry{Path: path, Err: err}
	}

	entry := Entry{Path: path, Article: a}
	if s.opts.Validator != nil {
		entry.Result = s.opts.Validator.Validate(a)
	} else {
		entry.Result = &validator.Result{}
		entry.Result.Merge(a.Problems, nil)
	}
	logger.Log(context.Background(), logging.LevelTrace, "loaded article", "path", path, "slug", a.Slug)
	return entry
}
