package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCommandTree() *cobra.Command {
	root := &cobra.Command{Use: "paperchat", Short: "Paperchat CLI"}
	root.PersistentFlags().Bool("output", false, "Output as JSON")
	root.PersistentFlags().String("api-url", "", "API base URL (overrides env)")
	AddHelpJSONFlag(root)

	ask := &cobra.Command{Use: "ask <question>", Short: "Ask a question", RunE: func(*cobra.Command, []string) error { return nil }}
	ask.Flags().StringP("session", "s", "", "Session ID to continue")
	root.AddCommand(ask)

	hidden := &cobra.Command{Use: "debug", Hidden: true, RunE: func(*cobra.Command, []string) error { return nil }}
	root.AddCommand(hidden)

	return root
}

func flagNames(flags []FlagSchema) []string {
	names := make([]string, 0, len(flags))
	for _, f := range flags {
		names = append(names, f.Name)
	}
	return names
}

func TestSchemaDescribesCommandTree(t *testing.T) {
	schema := Schema(testCommandTree())

	assert.Equal(t, "paperchat", schema.Name)
	assert.Equal(t, "Paperchat CLI", schema.Short)

	names := flagNames(schema.Flags)
	assert.Contains(t, names, "output")
	assert.Contains(t, names, "api-url")
	assert.NotContains(t, names, "help")
	assert.NotContains(t, names, "help-json")

	for _, f := range schema.Flags {
		assert.True(t, f.Persistent, "flag %s declared on the root is persistent", f.Name)
	}

	require.Len(t, schema.Subcommands, 1)
	ask := schema.Subcommands[0]
	assert.Equal(t, "ask", ask.Name)

	require.Len(t, ask.Flags, 1)
	assert.Equal(t, "session", ask.Flags[0].Name)
	assert.Equal(t, "s", ask.Flags[0].Shorthand)
	assert.Equal(t, "string", ask.Flags[0].Type)
	assert.False(t, ask.Flags[0].Persistent)
}

func TestSchemaSkipsHiddenCommands(t *testing.T) {
	schema := Schema(testCommandTree())

	for _, sub := range schema.Subcommands {
		assert.NotEqual(t, "debug", sub.Name)
		assert.NotEqual(t, "help", sub.Name)
	}
}

func TestWriteSchemaEmitsValidJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSchema(&buf, testCommandTree()))

	var schema CommandSchema
	require.NoError(t, json.Unmarshal(buf.Bytes(), &schema))
	assert.Equal(t, "paperchat", schema.Name)
	require.Len(t, schema.Subcommands, 1)
	assert.Equal(t, "ask", schema.Subcommands[0].Name)
}
