package main

import (
	"fmt"
	"os"

	"github.com/paperchat-ai/paperchat/internal/cli"
	"github.com/paperchat-ai/paperchat/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "paperchat",
		Short: "Paperchat CLI - ask questions against an ingested document corpus",
		Long: `Paperchat CLI provides commands to ingest documents and hold
retrieval-grounded conversations with the paperchat server.

Environment variables:
  PAPERCHAT_API_URL   API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.AskCmd())
	rootCmd.AddCommand(client.IngestCmd())
	rootCmd.AddCommand(client.ResetCmd())
	rootCmd.AddCommand(client.HistoryCmd())
	rootCmd.AddCommand(client.HealthCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
