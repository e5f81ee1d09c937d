package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/mailtasks/internal/export"
	"github.com/nhle/mailtasks/internal/model"
	"github.com/nhle/mailtasks/internal/source"
	"github.com/nhle/mailtasks/internal/tasks"
)

var (
	// shared task output flags
	outFormat    string
	outSort      string
	outAscending bool
	outFilters   []string
)

func init() {
	for _, c := range []*cobra.Command{extractCmd, tasksListCmd} {
		c.Flags().StringVar(&outFormat, "format", "table", "output format: table, json or csv")
		c.Flags().StringVar(&outSort, "sort", "priority", "sort key: priority, deadline, category or status")
		c.Flags().BoolVar(&outAscending, "ascending", false, "least urgent first")
		c.Flags().StringArrayVar(&outFilters, "filter", nil, "filter as field=value (priority, category, status, completed); repeatable")
	}
}

var extractCmd = &cobra.Command{
	Use:   "extract <path>...",
	Short: "Extract tasks from mail files without storing them",
	Long: `Extract tasks from .eml directories, single .eml files or JSON message
dumps and print them sorted, most urgent first unless --ascending is set.

Examples:
  # Tasks from a maildir-style export, most urgent first
  mailtasks extract ~/mail/inbox

  # Only high priority work items as CSV
  mailtasks extract dump.json --filter priority=high --filter category=work --format csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.logger.Sync() //nolint:errcheck

	filter, err := parseFilterFlags(outFilters)
	if err != nil {
		return err
	}

	msgs, err := readPaths(cmd.Context(), args, e)
	if err != nil {
		return err
	}

	at := now()
	c := e.classifier()
	found := e.extractor().Extract(msgs, at)
	found = tasks.NewAggregator(c).Prioritize(found, tasks.ParseSortKey(outSort), !outAscending, at)
	found = tasks.FilterTasks(found, filter)

	return printTasks(cmd.OutOrStdout(), found, outFormat)
}

// readPaths fetches every message from each path in argument order.
func readPaths(ctx context.Context, paths []string, e *env) ([]model.Message, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var msgs []model.Message
	for _, p := range paths {
		src, err := sourceFromPath(p, e.logger)
		if err != nil {
			return nil, err
		}
		res, err := src.FetchMessages(ctx, source.FetchOptions{})
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, res.Messages...)
	}
	return msgs, nil
}

// parseFilterFlags turns repeated field=value flags into a task filter.
func parseFilterFlags(flags []string) (tasks.Filter, error) {
	fields := make(map[string]string, len(flags))
	for _, f := range flags {
		k, v, ok := strings.Cut(f, "=")
		if !ok {
			return tasks.Filter{}, fmt.Errorf("invalid filter %q: want field=value", f)
		}
		fields[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return tasks.ParseFilter(fields)
}

func printTasks(w io.Writer, ts []model.Task, format string) error {
	switch strings.ToLower(format) {
	case "json":
		if ts == nil {
			ts = []model.Task{}
		}
		return export.WriteJSON(w, ts)
	case "csv":
		return export.WriteCSV(w, ts)
	case "table", "":
		return writeTable(w, ts)
	default:
		return fmt.Errorf("unknown format %q: want table, json or csv", format)
	}
}
