package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/kanda-lab/chatreport/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "chatreport",
	Short: "Chat transcript analysis report generator",
	Long: `A tool that fetches chat transcripts from a chatlog service for a
conversation and date range, runs a two-stage LLM pipeline (structured
extraction, then narrative generation), and produces a readable analysis
report. Reports can be generated from the command line or served over an
HTTP API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("chatlog-url", "http://127.0.0.1:5030", "Chatlog service base URL")
	pf.Duration("chatlog-timeout", 30*time.Second, "Chatlog service request timeout")
	pf.String("ai-provider", "openai", "Completion provider: openai, anthropic")
	pf.String("ai-model", "gpt-4o-mini", "Completion model to use")
	pf.String("ai-base-url", "", "Completion service base URL (OpenAI-compatible endpoints)")
	pf.String("openai-api-key", "", "OpenAI API key")
	pf.String("anthropic-api-key", "", "Anthropic API key")
	pf.Duration("ai-timeout", 60*time.Second, "Completion request timeout")
	pf.Float64("temperature", 0.7, "Completion sampling temperature")
	pf.Int("max-tokens", 12288, "Completion max output tokens")
	pf.String("addr", ":8080", "HTTP listen address for serve")
	pf.Bool("verbose", false, "Verbose logging")
	pf.String("config", "", "Path to YAML config file")

	// Bind flags to viper
	flags := []string{
		"chatlog-url", "chatlog-timeout", "ai-provider", "ai-model",
		"ai-base-url", "openai-api-key", "anthropic-api-key", "ai-timeout",
		"temperature", "max-tokens", "addr", "verbose", "config",
	}
	for _, f := range flags {
		_ = viper.BindPFlag(f, pf.Lookup(f))
	}
}

func initConfig() {
	cfg = config.Default()

	configFile := viper.GetString("config")
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("")
	viper.AutomaticEnv()

	// Bind environment variables
	_ = viper.BindEnv("openai-api-key", "OPENAI_API_KEY")
	_ = viper.BindEnv("anthropic-api-key", "ANTHROPIC_API_KEY")
	_ = viper.BindEnv("chatlog-url", "CHATREPORT_CHATLOG_URL")
	_ = viper.BindEnv("ai-provider", "CHATREPORT_AI_PROVIDER")
	_ = viper.BindEnv("ai-model", "CHATREPORT_AI_MODEL")
	_ = viper.BindEnv("ai-base-url", "CHATREPORT_AI_BASE_URL")
	_ = viper.BindEnv("addr", "CHATREPORT_ADDR")
	_ = viper.BindEnv("verbose", "CHATREPORT_VERBOSE")

	_ = viper.ReadInConfig()

	// Apply viper values to config
	if v := viper.GetString("chatlog-url"); v != "" {
		cfg.Chatlog.BaseURL = v
	}
	if v := viper.GetDuration("chatlog-timeout"); v > 0 {
		cfg.Chatlog.Timeout = v
	}
	if v := viper.GetString("ai-provider"); v != "" {
		cfg.AI.Provider = v
	}
	if v := viper.GetString("ai-model"); v != "" {
		cfg.AI.Model = v
	}
	if v := viper.GetString("ai-base-url"); v != "" {
		cfg.AI.BaseURL = v
	}
	if v := viper.GetDuration("ai-timeout"); v > 0 {
		cfg.AI.Timeout = v
	}
	if v := viper.GetFloat64("temperature"); v > 0 {
		cfg.AI.Temperature = v
	}
	if v := viper.GetInt("max-tokens"); v > 0 {
		cfg.AI.MaxTokens = v
	}
	if v := viper.GetString("addr"); v != "" {
		cfg.Addr = v
	}
	cfg.Verbose = viper.GetBool("verbose")

	// The credential follows the selected provider.
	switch cfg.AI.Provider {
	case "anthropic":
		cfg.AI.APIKey = viper.GetString("anthropic-api-key")
	default:
		cfg.AI.APIKey = viper.GetString("openai-api-key")
	}
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
