package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var listTablesCmd = &cobra.Command{
	Use:   "list-tables",
	Short: "List the tables a source exposes",
	Long:  `Lists the tables of the configured database, or of a CSV/JSON file given with --file.`,
	Example: `  dprof list-tables --file ./data.json
  dprof list-tables --dialect mysql --host localhost --port 3306 --username user --password pass --database mydb`,
	RunE: runListTables,
}

func runListTables(cmd *cobra.Command, args []string) error {
	src, err := setupSource()
	if err != nil {
		return err
	}
	defer src.Close()

	tables, err := src.Tables(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list tables: %w", err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"#", "Table"})
	for i, name := range tables {
		t.AppendRow(table.Row{i + 1, name})
	}
	t.SetStyle(table.StyleDefault)
	t.Render()
	return nil
}
