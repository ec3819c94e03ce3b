// Package commands implements the `lsp` CLI's cobra command tree (spec
// §6), grounded on go-opencode's cmd/opencode/commands package layout (one
// file per command, a root.go wiring global flags and subcommands) and the
// original source's lsp_cli/__main__.py command set and flag names.
package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	debugFlag    bool
	markdownFlag bool
)

var rootCmd = &cobra.Command{
	Use:           "lsp",
	Short:         "Talk to a language server through the session broker",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debugFlag, "debug", "d", false, "print full error context to stderr")
	rootCmd.PersistentFlags().BoolVarP(&markdownFlag, "markdown", "m", false, "format output as Markdown")

	rootCmd.AddCommand(serverCmd)
	rootCmd.AddCommand(locateCmd)
	rootCmd.AddCommand(definitionCmd)
	rootCmd.AddCommand(hoverCmd)
	rootCmd.AddCommand(referenceCmd)
	rootCmd.AddCommand(outlineCmd)
	rootCmd.AddCommand(symbolCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(renameCmd)
}

// Execute runs the root command, matching spec §6's exit code policy: 0 on
// success, 1 on a user-facing error.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		printErr(err)
		return 1
	}
	return 0
}

// printErr prints a single-line message by default. In debug mode it also
// prints every error in the wrap chain, one per line with its Go type
// (spec §7 policy: "Debug mode prints full stack context to stderr").
func printErr(err error) {
	if debugFlag {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		for e := err; e != nil; e = errors.Unwrap(e) {
			fmt.Fprintf(os.Stderr, "  %T: %v\n", e, e)
		}
		return
	}
	fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
}
