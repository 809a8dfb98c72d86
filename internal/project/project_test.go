package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yshim/storyweaver/internal/storage"
	"github.com/yshim/storyweaver/pkg/types"
)

func TestCreate(t *testing.T) {
	t.Run("creates project skeleton", func(t *testing.T) {
		tmpDir := t.TempDir()

		path, err := Create("Moonlit Cafe", "Romance", "A barista falls for a regular.", tmpDir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(tmpDir, "moonlit_cafe"), path)

		assert.FileExists(t, filepath.Join(path, StoryFile))
		assert.DirExists(t, filepath.Join(path, DataDir, CharactersDir))
		assert.FileExists(t, filepath.Join(path, DataDir, IndexFile))

		var record types.Project
		require.NoError(t, storage.ReadJSON(filepath.Join(path, StoryFile), &record))
		assert.Equal(t, "Moonlit Cafe", record.Name)
		assert.Equal(t, "romance", record.Genre)

		var index types.CharacterIndex
		require.NoError(t, storage.ReadJSON(filepath.Join(path, DataDir, IndexFile), &index))
		assert.NotNil(t, index.Characters)
		assert.Empty(t, index.Characters)
	})

	t.Run("rejects duplicate project", func(t *testing.T) {
		tmpDir := t.TempDir()

		_, err := Create("Test Story", "fantasy", "x", tmpDir)
		require.NoError(t, err)

		_, err = Create("Test Story", "fantasy", "x", tmpDir)
		assert.ErrorIs(t, err, ErrProjectExists)
	})

	t.Run("rejects invalid metadata", func(t *testing.T) {
		tmpDir := t.TempDir()

		_, err := Create("", "fantasy", "x", tmpDir)
		var verr *types.ValidationError
		assert.ErrorAs(t, err, &verr)

		_, err = Create("Test", "fantasy", "", tmpDir)
		assert.ErrorAs(t, err, &verr)
	})
}

func TestValidate(t *testing.T) {
	t.Run("valid project passes", func(t *testing.T) {
		tmpDir := t.TempDir()
		path, err := Create("Test Story", "fantasy", "x", tmpDir)
		require.NoError(t, err)

		ok, problems := Validate(path)
		assert.True(t, ok)
		assert.Empty(t, problems)
	})

	t.Run("missing directory", func(t *testing.T) {
		ok, problems := Validate(filepath.Join(t.TempDir(), "nope"))
		assert.False(t, ok)
		require.Len(t, problems, 1)
		assert.Contains(t, problems[0], "does not exist")
	})

	t.Run("accumulates every problem", func(t *testing.T) {
		tmpDir := t.TempDir()

		ok, problems := Validate(tmpDir)
		assert.False(t, ok)
		assert.Len(t, problems, 2, "missing story.json and story_data both reported")
	})

	t.Run("corrupt story.json reported", func(t *testing.T) {
		tmpDir := t.TempDir()
		path, err := Create("Test Story", "fantasy", "x", tmpDir)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(path, StoryFile), []byte("{broken"), 0644))

		ok, problems := Validate(path)
		assert.False(t, ok)
		require.Len(t, problems, 1)
		assert.Contains(t, problems[0], "invalid JSON")
	})

	t.Run("missing characters dir reported", func(t *testing.T) {
		tmpDir := t.TempDir()
		path, err := Create("Test Story", "fantasy", "x", tmpDir)
		require.NoError(t, err)
		require.NoError(t, os.RemoveAll(filepath.Join(path, DataDir, CharactersDir)))

		ok, problems := Validate(path)
		assert.False(t, ok)
		require.Len(t, problems, 1)
		assert.Contains(t, problems[0], CharactersDir)
	})
}

func TestOpen(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		tmpDir := t.TempDir()
		path, err := Create("Moonlit Cafe", "romance", "A barista falls for a regular.", tmpDir)
		require.NoError(t, err)

		record, err := Open(path)
		require.NoError(t, err)
		assert.Equal(t, "Moonlit Cafe", record.Name)
		assert.Equal(t, "romance", record.Genre)
		assert.Equal(t, "A barista falls for a regular.", record.Synopsis)
	})

	t.Run("missing project", func(t *testing.T) {
		_, err := Open(filepath.Join(t.TempDir(), "nope"))
		assert.ErrorIs(t, err, ErrProjectNotFound)
	})

	t.Run("missing story.json", func(t *testing.T) {
		_, err := Open(t.TempDir())
		assert.ErrorIs(t, err, ErrProjectNotFound)
	})

	t.Run("broken structure yields InvalidProjectError", func(t *testing.T) {
		tmpDir := t.TempDir()
		path, err := Create("Test Story", "fantasy", "x", tmpDir)
		require.NoError(t, err)
		require.NoError(t, os.RemoveAll(filepath.Join(path, DataDir)))

		_, err = Open(path)
		var invalid *InvalidProjectError
		require.ErrorAs(t, err, &invalid)
		assert.NotEmpty(t, invalid.Problems)
	})
}

func TestGetSummary(t *testing.T) {
	t.Run("counts characters from index", func(t *testing.T) {
		tmpDir := t.TempDir()
		path, err := Create("Test Story", "fantasy", "x", tmpDir)
		require.NoError(t, err)

		index := types.CharacterIndex{Characters: []types.IndexEntry{
			{Name: "Alex", Path: "characters/alex"},
			{Name: "Mia", Path: "characters/mia"},
		}}
		require.NoError(t, storage.WriteJSON(filepath.Join(path, DataDir, IndexFile), &index))

		summary, err := GetSummary(path)
		require.NoError(t, err)
		assert.Equal(t, "Test Story", summary.Name)
		assert.Equal(t, 2, summary.CharacterCount)
		assert.False(t, summary.LastModified.IsZero())
	})

	t.Run("falls back to directory count when index unreadable", func(t *testing.T) {
		tmpDir := t.TempDir()
		path, err := Create("Test Story", "fantasy", "x", tmpDir)
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(filepath.Join(path, DataDir, IndexFile), []byte("{broken"), 0644))
		require.NoError(t, os.MkdirAll(filepath.Join(path, DataDir, CharactersDir, "alex"), 0755))

		summary, err := GetSummary(path)
		require.NoError(t, err)
		assert.Equal(t, 1, summary.CharacterCount)
	})
}
