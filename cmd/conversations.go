package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kanda-lab/chatreport/internal/chatlog"
	"github.com/kanda-lab/chatreport/internal/config"
)

var conversationsCmd = &cobra.Command{
	Use:   "conversations [name]",
	Short: "List conversations known to the chatlog service",
	Long: `Lists the conversations the chatlog service knows about. An optional
name argument filters the list by (partial) conversation name.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runtime := config.NewRuntime(cfg)
		client := chatlog.NewClient(runtime)

		filter := ""
		if len(args) > 0 {
			filter = args[0]
		}

		conversations, err := client.ListConversations(cmd.Context(), filter)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
			os.Exit(2)
		}

		if len(conversations) == 0 {
			fmt.Fprintln(os.Stdout, "No conversations found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tDISPLAY NAME\tMEMBERS")
		for _, c := range conversations {
			fmt.Fprintf(w, "%s\t%s\t%d\n", c.Name, c.DisplayName, len(c.Members))
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(conversationsCmd)
}
