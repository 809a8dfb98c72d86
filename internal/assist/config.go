package assist

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the environment-level LLM configuration. Global config file
// values are applied first; these variables override them.
type Config struct {
	Host    string `env:"STORY_OLLAMA_HOST" envDefault:"http://localhost:11434"`
	Model   string `env:"STORY_MODEL" envDefault:"qwen3:32b"`
	Timeout int    `env:"STORY_LLM_TIMEOUT" envDefault:"10"`
}

// LoadConfig reads the LLM configuration from the environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse LLM environment config: %w", err)
	}
	return cfg, nil
}

// ConnectTimeout returns the configured timeout as a duration. It bounds
// connection establishment only; generation reads are unbounded.
func (c Config) ConnectTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}
