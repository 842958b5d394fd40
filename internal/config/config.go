package config

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// AI holds the completion-service settings read by the gateway at call time.
// It is passed and stored by value; a snapshot never changes after it is
// handed out.
type AI struct {
	Provider    string // "openai" or "anthropic"
	Model       string
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
}

// Chatlog holds the transcript-service settings.
type Chatlog struct {
	BaseURL string
	Timeout time.Duration
}

// Config holds all application configuration.
type Config struct {
	Addr       string
	Verbose    bool
	ConfigFile string

	AI      AI
	Chatlog Chatlog
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Addr: ":8080",
		AI: AI{
			Provider:    "openai",
			Model:       "gpt-4o-mini",
			BaseURL:     "https://api.openai.com/v1",
			Timeout:     60 * time.Second,
			Temperature: 0.7,
			MaxTokens:   12288,
		},
		Chatlog: Chatlog{
			BaseURL: "http://127.0.0.1:5030",
			Timeout: 30 * time.Second,
		},
	}
}

// Load reads configuration from environment variables and an optional YAML
// file on top of the defaults.
func Load() (*Config, error) {
	cfg := Default()

	viper.SetEnvPrefix("")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	envMappings := map[string]string{
		"CHATREPORT_ADDR":        "addr",
		"CHATREPORT_AI_PROVIDER": "ai-provider",
		"CHATREPORT_AI_MODEL":    "ai-model",
		"CHATREPORT_AI_BASE_URL": "ai-base-url",
		"OPENAI_API_KEY":         "openai-api-key",
		"ANTHROPIC_API_KEY":      "anthropic-api-key",
		"CHATREPORT_CHATLOG_URL": "chatlog-url",
		"CHATREPORT_VERBOSE":     "verbose",
	}
	for env, key := range envMappings {
		_ = viper.BindEnv(key, env)
	}

	if cfg.ConfigFile != "" {
		viper.SetConfigFile(cfg.ConfigFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfg.ConfigFile != "" {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	return cfg, nil
}

// Validate checks config for errors.
func (c *Config) Validate() error {
	if c.AI.Provider != "openai" && c.AI.Provider != "anthropic" {
		return fmt.Errorf("ai provider must be 'openai' or 'anthropic', got %q", c.AI.Provider)
	}
	if c.AI.Model == "" {
		return fmt.Errorf("ai model must not be empty")
	}
	if c.Chatlog.BaseURL == "" {
		return fmt.Errorf("chatlog base URL must not be empty")
	}
	if c.AI.Timeout <= 0 || c.Chatlog.Timeout <= 0 {
		return fmt.Errorf("timeouts must be positive")
	}
	return nil
}

// Runtime holds the process-wide AI and chatlog settings that can be
// overridden while the process runs. Reads return value snapshots; updates
// swap in a whole new snapshot (last-write-wins, no partial mutation).
type Runtime struct {
	mu      sync.RWMutex
	ai      AI
	chatlog Chatlog
}

// NewRuntime seeds a Runtime from the loaded configuration.
func NewRuntime(cfg *Config) *Runtime {
	return &Runtime{
		ai:      cfg.AI,
		chatlog: cfg.Chatlog,
	}
}

// AI returns the current completion-service snapshot.
func (r *Runtime) AI() AI {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ai
}

// SetAI replaces the completion-service settings and returns the new
// snapshot.
func (r *Runtime) SetAI(ai AI) AI {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ai = ai
	return r.ai
}

// Chatlog returns the current transcript-service snapshot.
func (r *Runtime) Chatlog() Chatlog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.chatlog
}

// SetChatlog replaces the transcript-service settings and returns the new
// snapshot.
func (r *Runtime) SetChatlog(c Chatlog) Chatlog {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chatlog = c
	return r.chatlog
}
