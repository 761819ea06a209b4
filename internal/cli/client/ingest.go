package client

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// IngestDocument is one inline document of an ingest request.
type IngestDocument struct {
	Path string `json:"path"`
	Text string `json:"text"`
}

// IngestRequest represents the ingest API request.
type IngestRequest struct {
	Documents []IngestDocument `json:"documents,omitempty"`
}

// IngestResponse represents the ingest API response.
type IngestResponse struct {
	Documents int `json:"documents"`
	Chunks    int `json:"chunks"`
}

// IngestCmd creates the ingest command.
func IngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest [file...]",
		Short: "Rebuild the corpus index",
		Long: "Rebuilds the retrieval index. With file arguments the given text files replace\n" +
			"the corpus; without arguments the server re-reads its configured corpus source.",
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runIngest(args, outputJSON)
		},
	}

	return cmd
}

func runIngest(paths []string, outputJSON bool) error {
	api, err := NewAPIClient()
	if err != nil {
		return err
	}

	var req IngestRequest
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		req.Documents = append(req.Documents, IngestDocument{
			Path: filepath.Base(path),
			Text: string(data),
		})
	}

	resp, err := api.Post("/ingest", req)
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	var ingestResp IngestResponse
	if err := json.Unmarshal(resp.Data, &ingestResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(ingestResp, "", "  ")
		fmt.Println(string(output))
	} else {
		fmt.Printf("Ingested %d documents (%d chunks).\n", ingestResp.Documents, ingestResp.Chunks)
	}

	return nil
}
