package main

import (
	"fmt"
	"os"

	"github.com/paperchat-ai/paperchat/internal/cli"
	"github.com/paperchat-ai/paperchat/internal/cli/admin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "paperchatd",
		Short: "Paperchat daemon",
		Long:  "Paperchat daemon for serving retrieval-augmented conversations over an ingested document corpus",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
