package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/mailtasks/internal/model"
	"github.com/nhle/mailtasks/internal/store"
	"github.com/nhle/mailtasks/internal/tasks"
)

var tasksQuery string

func init() {
	tasksCmd.AddCommand(tasksListCmd)
	tasksCmd.AddCommand(tasksDoneCmd)
	tasksCmd.AddCommand(tasksReopenCmd)

	tasksListCmd.Flags().StringVar(&tasksQuery, "query", "", "only tasks whose text contains this string")
}

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List and update stored tasks",
	Long: `List and update the tasks stored by "mailtasks sync".

Examples:
  # Pending high priority tasks by deadline
  mailtasks tasks list --filter status=pending --filter priority=high --sort deadline

  # Mark a task done using an ID prefix from the list output
  mailtasks tasks done 3f2a9c1e`,
}

var tasksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored tasks",
	Args:  cobra.NoArgs,
	RunE:  runTasksList,
}

var tasksDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark a task completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetStatus(cmd, args[0], model.StatusCompleted)
	},
}

var tasksReopenCmd = &cobra.Command{
	Use:   "reopen <id>",
	Short: "Mark a task pending again",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSetStatus(cmd, args[0], model.StatusPending)
	},
}

func runTasksList(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.logger.Sync() //nolint:errcheck

	filter, err := parseFilterFlags(outFilters)
	if err != nil {
		return err
	}

	st, err := e.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	var opts store.TaskFilter
	if tasksQuery != "" {
		opts.Query = &tasksQuery
	}
	stored, err := st.GetTasks(cmd.Context(), opts)
	if err != nil {
		return err
	}

	at := now()
	listed := tasks.NewAggregator(e.classifier()).Prioritize(stored, tasks.ParseSortKey(outSort), !outAscending, at)
	listed = tasks.FilterTasks(listed, filter)
	return printTasks(cmd.OutOrStdout(), listed, outFormat)
}

func runSetStatus(cmd *cobra.Command, ref string, status model.Status) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.logger.Sync() //nolint:errcheck

	st, err := e.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	id, err := resolveTaskID(cmd.Context(), st, ref)
	if err != nil {
		return err
	}

	task, err := st.UpdateTaskStatus(cmd.Context(), id, string(status), now())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s\n", shortID(task.ID), task.Status, truncate(task.Text, maxTextWidth))
	return nil
}

// resolveTaskID accepts a full task ID or a unique prefix of one.
func resolveTaskID(ctx context.Context, st store.Store, ref string) (string, error) {
	if _, err := st.GetTaskByID(ctx, ref); err == nil {
		return ref, nil
	} else if !errors.Is(err, model.ErrTaskNotFound) {
		return "", err
	}

	all, err := st.GetTasks(ctx, store.TaskFilter{})
	if err != nil {
		return "", err
	}

	var matches []string
	for _, t := range all {
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("task %s: %w", ref, model.ErrTaskNotFound)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("task prefix %q is ambiguous: %d matches", ref, len(matches))
	}
}
