package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testManager points the config manager at a temp XDG directory.
func testManager(t *testing.T) *ConfigManager {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cm, err := NewConfigManager()
	require.NoError(t, err)
	return cm
}

func TestConfigManager(t *testing.T) {
	t.Run("defaults when no file exists", func(t *testing.T) {
		cm := testManager(t)

		config, err := cm.Load()
		require.NoError(t, err)
		assert.Equal(t, "ollama", config.DefaultProvider)

		provider, err := cm.Provider("ollama")
		require.NoError(t, err)
		assert.Equal(t, "qwen3:32b", provider.Model)
		assert.Equal(t, "http://localhost:11434", provider.BaseURL)
	})

	t.Run("save and reload round trip", func(t *testing.T) {
		cm := testManager(t)

		config := DefaultGlobalConfig()
		config.DefaultProvider = "openai"
		config.Providers["openai"] = &ProviderConfig{APIKey: "sk-test", Model: "gpt-4o"}
		require.NoError(t, cm.Save(config))
		assert.FileExists(t, cm.Path())

		fresh, err := NewConfigManager()
		require.NoError(t, err)
		loaded, err := fresh.Load()
		require.NoError(t, err)
		assert.Equal(t, "openai", loaded.DefaultProvider)
		assert.Equal(t, "gpt-4o", loaded.Providers["openai"].Model)
	})

	t.Run("api key env expansion", func(t *testing.T) {
		cm := testManager(t)
		t.Setenv("TEST_API_KEY", "expanded-secret")

		yaml := `default_provider: openai
providers:
  openai:
    api_key: ${TEST_API_KEY}
    model: gpt-4o
`
		require.NoError(t, os.MkdirAll(filepath.Dir(cm.Path()), 0755))
		require.NoError(t, os.WriteFile(cm.Path(), []byte(yaml), 0644))

		provider, err := cm.Provider("openai")
		require.NoError(t, err)
		assert.Equal(t, "expanded-secret", provider.APIKey)
	})

	t.Run("literal api key untouched", func(t *testing.T) {
		cm := testManager(t)

		yaml := `default_provider: openai
providers:
  openai:
    api_key: sk-literal
`
		require.NoError(t, os.MkdirAll(filepath.Dir(cm.Path()), 0755))
		require.NoError(t, os.WriteFile(cm.Path(), []byte(yaml), 0644))

		provider, err := cm.Provider("openai")
		require.NoError(t, err)
		assert.Equal(t, "sk-literal", provider.APIKey)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		cm := testManager(t)

		require.NoError(t, os.MkdirAll(filepath.Dir(cm.Path()), 0755))
		require.NoError(t, os.WriteFile(cm.Path(), []byte("providers: [unclosed"), 0644))

		_, err := cm.Load()
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("unknown provider", func(t *testing.T) {
		cm := testManager(t)

		_, err := cm.Provider("mystery")
		assert.Error(t, err)
	})
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "stories"), expandPath("~/stories"))
	assert.Equal(t, "/absolute/path", expandPath("/absolute/path"))
	assert.Equal(t, "", expandPath(""))
}
