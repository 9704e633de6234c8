package commands

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/postmatter/internal/article"
)

func TestShowCommand_Metadata(t *testing.T) {
	if showCmd.Use != "show <query>" {
		t.Errorf("Use = %q, want %q", showCmd.Use, "show <query>")
	}
	for _, name := range []string{"json", "interactive"} {
		if showCmd.Flags().Lookup(name) == nil {
			t.Errorf("--%s flag should be defined", name)
		}
	}
}

func sampleDetail() *showDetail {
	return &showDetail{
		Path:        "src/pages/blog/tailwind-vanilla.md",
		Format:      "yaml",
		SlugDerived: true,
		UnknownKeys: []string{"draft"},
		FrontMatter: article.FrontMatter{
			Title:       "Extending Tailwind CSS with Vanilla Extract",
			Date:        "2022-05-31",
			Slug:        "tailwind-vanilla",
			Description: "Using Vanilla Extract with Tailwind CSS...",
			Hero:        "/images/tailwind-vanilla.jpg",
			Tags:        []string{"css"},
			Layout:      "../../layouts/BlogPostLayout.astro",
		},
	}
}

func TestOutputShowText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, outputShowText(&buf, sampleDetail()))

	out := buf.String()
	assert.Contains(t, out, "src/pages/blog/tailwind-vanilla.md")
	assert.Contains(t, out, "date: \"2022-05-31\"")
	assert.Contains(t, out, "slug: tailwind-vanilla")
	assert.Contains(t, out, "slug derived from file name")
	assert.Contains(t, out, "other keys: draft")
}

func TestOutputShowJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, outputShowJSON(&buf, sampleDetail()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "tailwind-vanilla", decoded["slug"])
	assert.Equal(t, true, decoded["slug_derived"])
	assert.Equal(t, []any{"css"}, decoded["tags"])
}

func TestRunShow(t *testing.T) {
	t.Cleanup(func() { showJSON = false })
	withContent(t, map[string]string{"blog/tailwind-vanilla.md": tailwindArticle})

	showJSON = true
	var out bytes.Buffer
	require.NoError(t, runShow(testCommand(&out), []string{"tailwind-vanilla"}))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "Extending Tailwind CSS with Vanilla Extract", decoded["title"])
	assert.Equal(t, "yaml", decoded["format"])
}
