package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/mailtasks/internal/export"
	"github.com/nhle/mailtasks/internal/store"
	"github.com/nhle/mailtasks/internal/tasks"
)

var (
	exportSort      string
	exportAscending bool
	exportFilters   []string
)

func init() {
	exportCmd.Flags().StringVar(&exportSort, "sort", "priority", "sort key: priority, deadline, category or status")
	exportCmd.Flags().BoolVar(&exportAscending, "ascending", false, "least urgent first")
	exportCmd.Flags().StringArrayVar(&exportFilters, "filter", nil, "filter as field=value; repeatable")
}

var exportCmd = &cobra.Command{
	Use:   "export <file.csv|file.json>",
	Short: "Write stored tasks to a CSV or JSON file",
	Long: `Write stored tasks to a file. The format follows the extension: .csv
writes the priority, text, deadline, status and from columns, .json writes
full task records.

Examples:
  mailtasks export tasks.csv
  mailtasks export open.json --filter status=pending`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.logger.Sync() //nolint:errcheck

	filter, err := parseFilterFlags(exportFilters)
	if err != nil {
		return err
	}

	st, err := e.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	stored, err := st.GetTasks(cmd.Context(), store.TaskFilter{})
	if err != nil {
		return err
	}

	out := tasks.NewAggregator(e.classifier()).Prioritize(stored, tasks.ParseSortKey(exportSort), !exportAscending, now())
	out = tasks.FilterTasks(out, filter)

	if err := export.WriteFile(args[0], out); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "exported %d tasks to %s\n", len(out), args[0])
	return nil
}
