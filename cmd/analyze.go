package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kanda-lab/chatreport/internal/analyzer"
	"github.com/kanda-lab/chatreport/internal/chatlog"
	"github.com/kanda-lab/chatreport/internal/config"
	"github.com/kanda-lab/chatreport/internal/llm"
	"github.com/kanda-lab/chatreport/internal/report"
)

var (
	analyzeDate   string
	analyzeStart  string
	analyzeEnd    string
	analyzeOutput string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <target>",
	Short: "Run the analysis pipeline for one conversation",
	Long: `Fetches the transcript of the given conversation for a single date
(--date) or a date range (--start/--end), runs structured extraction and
narrative generation, and prints the resulting report.

Exit codes:
  0 - Success
  2 - Analysis failed
  3 - Configuration error`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
			os.Exit(3)
		}

		dates := report.DateSpec{Date: analyzeDate, Start: analyzeStart, End: analyzeEnd}
		if err := dates.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
			os.Exit(3)
		}

		runtime := config.NewRuntime(cfg)
		a := analyzer.New(
			chatlog.NewClient(runtime),
			llm.NewGateway(runtime),
			report.NewStore(),
		)

		rep, err := a.Analyze(cmd.Context(), args[0], dates)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
			os.Exit(2)
		}

		fmt.Fprintf(os.Stdout, "Report %s for %s (%s): %s\n",
			rep.ID, rep.TargetName, rep.Dates, rep.Status)

		if analyzeOutput != "" {
			if err := os.WriteFile(analyzeOutput, []byte(rep.FinalReport), 0o644); err != nil {
				fmt.Fprintf(os.Stderr, "Fatal error: writing report file: %v\n", err)
				os.Exit(2)
			}
			fmt.Fprintf(os.Stdout, "Report written to: %s\n", analyzeOutput)
			return nil
		}

		fmt.Fprintln(os.Stdout)
		fmt.Fprintln(os.Stdout, rep.FinalReport)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeDate, "date", "", "Analysis date (YYYY-MM-DD)")
	analyzeCmd.Flags().StringVar(&analyzeStart, "start", "", "Range start date (YYYY-MM-DD)")
	analyzeCmd.Flags().StringVar(&analyzeEnd, "end", "", "Range end date (YYYY-MM-DD)")
	analyzeCmd.Flags().StringVar(&analyzeOutput, "output", "", "Write the final report to this file")
	rootCmd.AddCommand(analyzeCmd)
}
