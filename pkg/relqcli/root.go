// Package relqcli implements the relq demo CLI: a cobra command tree that
// builds the §8 BART compensation scenarios via the query builder, then
// prints the inferred schema and lowered SQL for each — without executing
// anything against a database, since execution is out of core scope (§3
// Non-goals). Execute() builds and runs the command tree; newRootCmd()
// stays separate so tests can construct a command tree without touching
// os.Exit.
package relqcli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	var dialectName string

	rootCmd := &cobra.Command{
		Use:           "relq",
		Short:         "Relational-algebra query builder demo",
		Long:          "Builds named query scenarios over the bart demo catalog and prints their inferred schema and compiled SQL.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&dialectName, "dialect", "ansi", "SQL dialect: ansi, sqlite, or duckdb")

	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newRunCmd(&dialectName))

	return rootCmd
}
