package app

import (
	"context"
	"fmt"
	"os"

	"github.com/yshim/storyweaver/internal/assist"
)

func envSet(name string) bool {
	_, ok := os.LookupEnv(name)
	return ok
}

// App wires the global configuration to a generation provider. The
// wizard and chat commands share one App per process so availability
// probing happens at most once.
type App struct {
	Config *ConfigManager
}

// New creates the application wiring.
func New() (*App, error) {
	cm, err := NewConfigManager()
	if err != nil {
		return nil, err
	}
	return &App{Config: cm}, nil
}

// Assistant builds the generation assistant for the configured default
// provider. Environment variables override the config file for the
// Ollama backend. Configuration errors for optional cloud providers are
// returned so callers can fall back to manual entry.
func (a *App) Assistant(ctx context.Context) (*assist.Assistant, error) {
	config, err := a.Config.Load()
	if err != nil {
		return nil, err
	}

	envCfg, err := assist.LoadConfig()
	if err != nil {
		return nil, err
	}

	name := config.DefaultProvider
	if name == "" {
		name = "ollama"
	}

	switch name {
	case "ollama":
		cfg := envCfg
		if pc, ok := config.Providers["ollama"]; ok {
			if pc.BaseURL != "" && !envSet("STORY_OLLAMA_HOST") {
				cfg.Host = pc.BaseURL
			}
			if pc.Model != "" && !envSet("STORY_MODEL") {
				cfg.Model = pc.Model
			}
		}
		return assist.NewAssistant(assist.NewOllamaProvider(cfg)), nil

	case "openai":
		pc, err := a.Config.Provider("openai")
		if err != nil {
			return nil, err
		}
		provider, err := assist.NewOpenAIProvider(pc.APIKey, pc.Model, pc.BaseURL)
		if err != nil {
			return nil, err
		}
		return assist.NewAssistant(provider), nil

	case "gemini":
		pc, err := a.Config.Provider("gemini")
		if err != nil {
			return nil, err
		}
		provider, err := assist.NewGeminiProvider(ctx, pc.APIKey, pc.Model)
		if err != nil {
			return nil, err
		}
		return assist.NewAssistant(provider), nil

	default:
		return nil, fmt.Errorf("unknown provider %q", name)
	}
}
