package wizard

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNotes(t *testing.T) {
	t.Run("title and bullets", func(t *testing.T) {
		notes := ParseNotes(`# Orphaned at sea

Alex grew up on a fishing boat.

- lost parents in a storm
- adopted by the harbormaster
- learned to read the stars
`)

		assert.Equal(t, "Orphaned at sea", notes.Title)
		assert.Equal(t, []string{
			"lost parents in a storm",
			"adopted by the harbormaster",
			"learned to read the stars",
		}, notes.Bullets)
		assert.Contains(t, notes.Body, "fishing boat")
	})

	t.Run("first H1 wins", func(t *testing.T) {
		notes := ParseNotes("# First\n\n# Second\n")
		assert.Equal(t, "First", notes.Title)
	})

	t.Run("H2 is not a title", func(t *testing.T) {
		notes := ParseNotes("## Section\n\ntext\n")
		assert.Empty(t, notes.Title)
	})

	t.Run("frontmatter is stripped from body", func(t *testing.T) {
		notes := ParseNotes(`---
tags: [character]
---
# Backstory

content here
`)
		assert.Equal(t, "Backstory", notes.Title)
		assert.NotContains(t, notes.Body, "tags:")
		assert.Contains(t, notes.Body, "content here")
	})

	t.Run("plain text has no title or bullets", func(t *testing.T) {
		notes := ParseNotes("just some prose without structure")
		assert.Empty(t, notes.Title)
		assert.Empty(t, notes.Bullets)
		assert.Equal(t, "just some prose without structure", notes.Body)
	})
}

func TestParseNotesFile(t *testing.T) {
	t.Run("reads from disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "notes.md")
		require.NoError(t, os.WriteFile(path, []byte("# Title\n\n- one\n"), 0644))

		notes, err := ParseNotesFile(path)
		require.NoError(t, err)
		assert.Equal(t, "Title", notes.Title)
		assert.Equal(t, []string{"one"}, notes.Bullets)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ParseNotesFile(filepath.Join(t.TempDir(), "nope.md"))
		assert.Error(t, err)
	})
}

func TestSplitFrontmatter(t *testing.T) {
	t.Run("extracts frontmatter block", func(t *testing.T) {
		fm, body := splitFrontmatter("---\nkey: value\n---\nbody text")
		assert.Equal(t, "key: value", fm)
		assert.Equal(t, "body text", body)
	})

	t.Run("no frontmatter", func(t *testing.T) {
		fm, body := splitFrontmatter("plain content")
		assert.Empty(t, fm)
		assert.Equal(t, "plain content", body)
	})

	t.Run("unterminated frontmatter is kept as body", func(t *testing.T) {
		fm, body := splitFrontmatter("---\nkey: value\nno close")
		assert.Empty(t, fm)
		assert.Equal(t, "---\nkey: value\nno close", body)
	})
}
