package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunInitCmd(t *testing.T) {
	t.Run("duplicate reports the sanitized directory", func(t *testing.T) {
		tmpDir := t.TempDir()
		require.NoError(t, initCmd.Flags().Set("genre", "fantasy"))
		require.NoError(t, initCmd.Flags().Set("synopsis", "a test story"))
		require.NoError(t, initCmd.Flags().Set("path", tmpDir))

		require.NoError(t, runInitCmd(initCmd, []string{"Test Story"}))

		err := runInitCmd(initCmd, []string{"Test Story"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), filepath.Join(tmpDir, "test_story"),
			"message names the directory the conflict was detected on")
		assert.NotContains(t, err.Error(), filepath.Join(tmpDir, "Test Story"))
	})
}
