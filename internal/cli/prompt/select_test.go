package prompt

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/thoreinstein/postmatter/internal/article"
	"github.com/thoreinstein/postmatter/internal/errors"
)

func twoPosts() []*article.Article {
	return []*article.Article{
		{Path: "src/pages/blog/css-a.md", FrontMatter: article.FrontMatter{Title: "CSS Tips", Date: "2022-05-31", Slug: "css-a"}},
		{Path: "src/pages/blog/css-b.md", FrontMatter: article.FrontMatter{Title: "CSS Tricks", Date: "2023-01-02", Slug: "css-b"}},
	}
}

func TestSelectArticle_EmptyList(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := NewSelectorWithIO(strings.NewReader(""), &buf)

	_, err := s.SelectArticle("css", nil)
	if !errors.Is(err, ErrNoArticles) {
		t.Errorf("expected ErrNoArticles, got: %v", err)
	}
}

func TestSelectArticle_SingleItem(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := NewSelectorWithIO(strings.NewReader(""), &buf)

	posts := twoPosts()[:1]
	result, err := s.SelectArticle("css", posts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Slug != "css-a" {
		t.Errorf("expected 'css-a', got %q", result.Slug)
	}
	// Should not prompt for single item
	if buf.Len() > 0 {
		t.Errorf("expected no output for single item, got: %s", buf.String())
	}
}

func TestSelectArticle_ValidSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		wantSlug string
	}{
		{"explicit first", "1\n", "css-a"},
		{"explicit second", "2\n", "css-b"},
		{"default on empty", "\n", "css-a"},
		{"whitespace trimmed", "  2  \n", "css-b"},
		{"no trailing newline", "2", "css-b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			s := NewSelectorWithIO(strings.NewReader(tt.input), &buf)

			result, err := s.SelectArticle("css", twoPosts())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Slug != tt.wantSlug {
				t.Errorf("expected slug %q, got %q", tt.wantSlug, result.Slug)
			}
		})
	}
}

func TestSelectArticle_InvalidSelection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"too low", "0\n", "out of range"},
		{"too high", "3\n", "out of range"},
		{"negative", "-1\n", "out of range"},
		{"not a number", "abc\n", "not a number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			s := NewSelectorWithIO(strings.NewReader(tt.input), &buf)

			_, err := s.SelectArticle("css", twoPosts())
			if !errors.Is(err, ErrInvalidSelection) {
				t.Fatalf("expected ErrInvalidSelection, got: %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestSelectArticle_Cancelled(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := NewSelectorWithIO(&eofReader{}, &buf)

	_, err := s.SelectArticle("css", twoPosts())
	if !errors.Is(err, ErrSelectionCancelled) {
		t.Errorf("expected ErrSelectionCancelled, got: %v", err)
	}
}

func TestSelectArticle_OutputFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	s := NewSelectorWithIO(strings.NewReader("1\n"), &buf)

	if _, err := s.SelectArticle("css", twoPosts()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	output := buf.String()
	for _, want := range []string{
		`Multiple articles match "css":`,
		"[1] 2022-05-31  CSS Tips (src/pages/blog/css-a.md)",
		"[2] 2023-01-02  CSS Tricks (src/pages/blog/css-b.md)",
		"Select [1]: ",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
}

func TestLabelAndPreview(t *testing.T) {
	a := twoPosts()[0]
	a.Tags = []string{"css", "tailwind"}
	a.Description = "Using Vanilla Extract"

	if got := Label(a); got != "2022-05-31  CSS Tips  [css-a]" {
		t.Errorf("Label() = %q", got)
	}

	preview := Preview(a)
	for _, want := range []string{"Title:  CSS Tips", "Tags:   css, tailwind", "Using Vanilla Extract"} {
		if !strings.Contains(preview, want) {
			t.Errorf("Preview() missing %q:\n%s", want, preview)
		}
	}
}

func TestFuzzyFind_Empty(t *testing.T) {
	if _, err := FuzzyFind(nil); !errors.Is(err, ErrNoArticles) {
		t.Errorf("expected ErrNoArticles, got %v", err)
	}
}

type eofReader struct{}

func (r *eofReader) Read(_ []byte) (int, error) {
	return 0, io.EOF
}
