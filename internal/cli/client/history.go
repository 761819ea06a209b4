package client

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// HistoryTurn is one turn of an exported session transcript.
type HistoryTurn struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// HistoryResponse represents the session history API response.
type HistoryResponse struct {
	SessionID string        `json:"session_id"`
	Turns     []HistoryTurn `json:"turns"`
}

// HistoryCmd creates the history command.
func HistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history <session-id>",
		Short: "Show a session transcript",
		Long:  "Exports a session's conversation history, oldest turn first.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runHistory(args[0], outputJSON)
		},
	}

	return cmd
}

func runHistory(sessionID string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	resp, err := api.Get("/sessions/" + sessionID + "/history")
	if err != nil {
		return fmt.Errorf("history failed: %w", err)
	}

	var history HistoryResponse
	if err := json.Unmarshal(resp.Data, &history); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(history, "", "  ")
		fmt.Println(string(output))
		return nil
	}

	if len(history.Turns) == 0 {
		fmt.Println("No turns recorded.")
		return nil
	}

	for _, turn := range history.Turns {
		fmt.Printf("[%s] %s: %s\n", turn.Timestamp.Local().Format("15:04:05"), turn.Role, turn.Text)
	}
	return nil
}
