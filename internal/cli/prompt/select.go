// Package prompt provides interactive CLI prompts for choosing articles.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/thoreinstein/postmatter/internal/article"
	"github.com/thoreinstein/postmatter/internal/errors"
)

// Sentinel errors for article selection.
var (
	ErrNoArticles         = errors.New("no articles to select from")
	ErrInvalidSelection   = errors.New("invalid selection")
	ErrSelectionCancelled = errors.New("selection cancelled")
)

// Selector handles interactive article selection prompts.
type Selector struct {
	reader io.Reader
	writer io.Writer
}

// NewSelectorWithIO creates a Selector with custom reader and writer for testing.
func NewSelectorWithIO(r io.Reader, w io.Writer) *Selector {
	return &Selector{
		reader: r,
		writer: w,
	}
}

// SelectArticle prompts the user to choose from a list of articles.
//
// Returns:
//   - ErrNoArticles if the list is empty
//   - The article if only one exists (auto-selects without prompting)
//   - The selected article based on user input
//   - ErrInvalidSelection if the selection is out of range
//   - ErrSelectionCancelled if input is EOF (e.g., Ctrl+D)
func (s *Selector) SelectArticle(query string, articles []*article.Article) (*article.Article, error) {
	if len(articles) == 0 {
		return nil, ErrNoArticles
	}

	if len(articles) == 1 {
		return articles[0], nil
	}

	fmt.Fprintf(s.writer, "Multiple articles match %q:\n", query)
	for i, a := range articles {
		fmt.Fprintf(s.writer, "  [%d] %s  %s (%s)\n", i+1, a.Date, a.Title, a.Path)
	}
	fmt.Fprintf(s.writer, "Select [1]: ")

	reader := bufio.NewReader(s.reader)
	input, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && strings.TrimSpace(input) == "" {
			return nil, ErrSelectionCancelled
		}
		if !errors.Is(err, io.EOF) {
			return nil, errors.Wrap(err, "reading selection")
		}
	}

	input = strings.TrimSpace(input)

	// Default to first option if empty
	if input == "" {
		return articles[0], nil
	}

	selection, err := strconv.Atoi(input)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidSelection, "%q is not a number", input)
	}

	// Validate range (1-indexed)
	if selection < 1 || selection > len(articles) {
		return nil, errors.Wrapf(ErrInvalidSelection, "%d is out of range [1-%d]", selection, len(articles))
	}

	return articles[selection-1], nil
}
