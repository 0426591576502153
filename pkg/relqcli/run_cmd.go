package relqcli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"relq/internal/prettyprint"
	"relq/internal/sqlast"
	"relq/query"
)

func newRunCmd(dialectName *string) *cobra.Command {
	var offset, limit int

	cmd := &cobra.Command{
		Use:   "run <scenario>",
		Short: "Infer the schema and compile the SQL for a named scenario",
		Example: `  relq run project
  relq run groupByJobTitle --dialect duckdb`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, ok := findScenario(args[0])
			if !ok {
				return fmt.Errorf("unknown scenario %q (known: %s)", args[0], strings.Join(scenarioNames(), ", "))
			}
			dialect, err := dialectByName(*dialectName)
			if err != nil {
				return err
			}
			tables := bartCatalog(dialect)
			q := s.build()

			sch, err := query.InferSchema(dialect, tables, q)
			if err != nil {
				return fmt.Errorf("schema inference: %w", err)
			}
			ast, err := sqlast.Lower(dialect, tables, q)
			if err != nil {
				return fmt.Errorf("lowering: %w", err)
			}
			sql := prettyprint.Print(dialect, ast, offset, limit)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "schema: %s\n", strings.Join(sch.Columns, ", "))
			fmt.Fprintf(out, "sql: %s\n", sql)
			return nil
		},
	}
	cmd.Flags().IntVar(&offset, "offset", -1, "row offset passed through to the printer")
	cmd.Flags().IntVar(&limit, "limit", -1, "row limit passed through to the printer")
	return cmd
}
