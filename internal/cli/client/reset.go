package client

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ResetRequest represents the reset API request.
type ResetRequest struct {
	SessionID string `json:"session_id"`
}

// ResetCmd creates the reset command.
func ResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset <session-id>",
		Short: "Reset a session",
		Long:  "Clears a session's conversation history. The corpus index is untouched.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReset(args[0])
		},
	}

	return cmd
}

func runReset(sessionID string) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	if _, err := api.Post("/chat/reset", ResetRequest{SessionID: sessionID}); err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}

	fmt.Printf("Session %s reset.\n", sessionID)
	return nil
}
