package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicWriteFile(t *testing.T) {
	t.Run("writes content and creates parent dirs", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "dir", "out.txt")
		require.NoError(t, AtomicWriteFile(path, []byte("hello")))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(data))
	})

	t.Run("overwrites existing file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "out.txt")
		require.NoError(t, AtomicWriteFile(path, []byte("first")))
		require.NoError(t, AtomicWriteFile(path, []byte("second")))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "second", string(data))
	})

	t.Run("leaves no temp files behind", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, AtomicWriteFile(filepath.Join(dir, "out.txt"), []byte("x")))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "out.txt", entries[0].Name())
	})
}

func TestJSONRoundTrip(t *testing.T) {
	type record struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	t.Run("write and read back", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "record.json")
		require.NoError(t, WriteJSON(path, record{Name: "alex", Count: 3}))

		var got record
		require.NoError(t, ReadJSON(path, &got))
		assert.Equal(t, record{Name: "alex", Count: 3}, got)
	})

	t.Run("output is pretty-printed with trailing newline", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "record.json")
		require.NoError(t, WriteJSON(path, record{Name: "alex"}))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "\n  \"name\": \"alex\"")
		assert.Equal(t, byte('\n'), data[len(data)-1])
	})

	t.Run("missing file error satisfies IsNotExist", func(t *testing.T) {
		var got record
		err := ReadJSON(filepath.Join(t.TempDir(), "nope.json"), &got)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("malformed JSON reports the file name", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(path, []byte("{not json"), 0644))

		var got record
		err := ReadJSON(path, &got)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad.json")
	})
}

func TestSanitizeName(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Alex Chen", "alex_chen"},
		{"O'Hara", "ohara"},
		{"Lady D'Arcy Smith", "lady_darcy_smith"},
		{"simple", "simple"},
		{"UPPER", "upper"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SanitizeName(tc.in), "input %q", tc.in)
	}
}
