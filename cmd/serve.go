package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kanda-lab/chatreport/internal/analyzer"
	"github.com/kanda-lab/chatreport/internal/chatlog"
	"github.com/kanda-lab/chatreport/internal/config"
	"github.com/kanda-lab/chatreport/internal/llm"
	"github.com/kanda-lab/chatreport/internal/report"
	"github.com/kanda-lab/chatreport/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the analysis API over HTTP",
	Long: `Starts the JSON HTTP API: conversation search, report creation and
retrieval, and runtime configuration overrides. Reports live in memory for
the lifetime of the process.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
			os.Exit(3)
		}

		level := zerolog.InfoLevel
		if cfg.Verbose {
			level = zerolog.DebugLevel
		}
		logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

		runtime := config.NewRuntime(cfg)
		client := chatlog.NewClient(runtime)
		a := analyzer.New(client, llm.NewGateway(runtime), report.NewStore())

		api := server.NewWebAPI(logger, server.Config{
			Addr:            cfg.Addr,
			ShutdownTimeout: 10 * time.Second,
			Analysis:        a,
			Conversations:   client,
			Runtime:         runtime,
		})
		return api.Start()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
