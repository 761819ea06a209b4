// Package cli provides shared helpers for the paperchat and paperchatd
// command trees.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const helpJSONFlag = "help-json"

// FlagSchema describes one flag of a command.
type FlagSchema struct {
	Name       string `json:"name"`
	Shorthand  string `json:"shorthand,omitempty"`
	Type       string `json:"type"`
	Default    string `json:"default,omitempty"`
	Usage      string `json:"usage,omitempty"`
	Persistent bool   `json:"persistent,omitempty"`
}

// CommandSchema describes a command and its subtree.
type CommandSchema struct {
	Name        string          `json:"name"`
	Aliases     []string        `json:"aliases,omitempty"`
	Use         string          `json:"use,omitempty"`
	Short       string          `json:"short,omitempty"`
	Flags       []FlagSchema    `json:"flags,omitempty"`
	Subcommands []CommandSchema `json:"subcommands,omitempty"`
}

// Schema builds a machine-readable description of a command tree, for
// shell integrations and docs tooling that drive the binaries.
func Schema(cmd *cobra.Command) CommandSchema {
	s := CommandSchema{
		Name:    cmd.Name(),
		Aliases: cmd.Aliases,
		Use:     cmd.Use,
		Short:   cmd.Short,
	}

	persistent := map[string]bool{}
	cmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		persistent[f.Name] = true
	})

	cmd.LocalFlags().VisitAll(func(f *pflag.Flag) {
		if f.Name == "help" || f.Name == helpJSONFlag || f.Hidden {
			return
		}
		s.Flags = append(s.Flags, FlagSchema{
			Name:       f.Name,
			Shorthand:  f.Shorthand,
			Type:       f.Value.Type(),
			Default:    f.DefValue,
			Usage:      f.Usage,
			Persistent: persistent[f.Name],
		})
	})

	for _, sub := range cmd.Commands() {
		if !sub.IsAvailableCommand() {
			continue
		}
		s.Subcommands = append(s.Subcommands, Schema(sub))
	}

	return s
}

// WriteSchema renders the schema for cmd as indented JSON.
func WriteSchema(w io.Writer, cmd *cobra.Command) error {
	out, err := json.MarshalIndent(Schema(cmd), "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// AddHelpJSONFlag registers --help-json on a root command.
func AddHelpJSONFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().Bool(helpJSONFlag, false, "Print the command tree as JSON and exit")
}

// CheckHelpJSON handles --help-json ahead of Execute, before cobra's
// argument validation can reject the invocation. It prints the schema of
// the addressed subcommand (or the root) and exits.
func CheckHelpJSON(root *cobra.Command) {
	if !slices.Contains(os.Args[1:], "--"+helpJSONFlag) {
		return
	}

	cmd, _, err := root.Find(os.Args[1:])
	if err != nil || cmd == nil {
		cmd = root
	}

	if err := WriteSchema(os.Stdout, cmd); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	os.Exit(0)
}
