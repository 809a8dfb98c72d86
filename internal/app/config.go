// Package app provides application-level wiring: global configuration
// and provider selection.
package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yshim/storyweaver/internal/storage"
)

var ErrInvalidConfig = errors.New("invalid configuration")

// ProviderConfig configures one LLM backend.
type ProviderConfig struct {
	APIKey  string `yaml:"api_key,omitempty"`
	Model   string `yaml:"model,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
}

// GlobalConfig is the user-level configuration stored under the XDG
// config directory.
type GlobalConfig struct {
	ProjectsDir     string                     `yaml:"projects_dir,omitempty"`
	DefaultProvider string                     `yaml:"default_provider"`
	Providers       map[string]*ProviderConfig `yaml:"providers,omitempty"`
}

// DefaultGlobalConfig returns the configuration used when no config file
// exists: a local Ollama backend, no API keys.
func DefaultGlobalConfig() *GlobalConfig {
	return &GlobalConfig{
		DefaultProvider: "ollama",
		Providers: map[string]*ProviderConfig{
			"ollama": {Model: "qwen3:32b", BaseURL: "http://localhost:11434"},
		},
	}
}

// ConfigManager loads and saves the global configuration.
type ConfigManager struct {
	globalConfigPath string
	globalConfig     *GlobalConfig
}

// NewConfigManager creates a configuration manager rooted at the XDG
// config directory.
func NewConfigManager() (*ConfigManager, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}
	return &ConfigManager{
		globalConfigPath: filepath.Join(configDir, "config.yaml"),
	}, nil
}

func getConfigDir() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "storyweaver"), nil
}

// Load reads the global configuration, returning defaults when no file
// exists. API key values of the form ${ENV_VAR} are expanded from the
// environment.
func (cm *ConfigManager) Load() (*GlobalConfig, error) {
	if cm.globalConfig != nil {
		return cm.globalConfig, nil
	}

	data, err := os.ReadFile(cm.globalConfigPath)
	if err != nil {
		if os.IsNotExist(err) {
			cm.globalConfig = DefaultGlobalConfig()
			return cm.globalConfig, nil
		}
		return nil, fmt.Errorf("failed to read global config: %w", err)
	}

	var config GlobalConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	for name, provider := range config.Providers {
		if strings.HasPrefix(provider.APIKey, "${") && strings.HasSuffix(provider.APIKey, "}") {
			envVar := provider.APIKey[2 : len(provider.APIKey)-1]
			provider.APIKey = os.Getenv(envVar)
			config.Providers[name] = provider
		}
	}

	config.ProjectsDir = expandPath(config.ProjectsDir)

	cm.globalConfig = &config
	return cm.globalConfig, nil
}

// Save writes the global configuration atomically.
func (cm *ConfigManager) Save(config *GlobalConfig) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := storage.AtomicWriteFile(cm.globalConfigPath, data); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	cm.globalConfig = config
	return nil
}

// Path returns the global config file path.
func (cm *ConfigManager) Path() string {
	return cm.globalConfigPath
}

// Provider returns the configuration for a named provider.
func (cm *ConfigManager) Provider(name string) (*ProviderConfig, error) {
	config, err := cm.Load()
	if err != nil {
		return nil, err
	}
	provider, ok := config.Providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %q not configured", name)
	}
	return provider, nil
}

// expandPath expands a leading ~/ to the home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
