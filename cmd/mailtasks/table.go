package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/nhle/mailtasks/internal/model"
)

const maxTextWidth = 60

func writeTable(w io.Writer, ts []model.Task) error {
	if len(ts) == 0 {
		_, err := fmt.Fprintln(w, "No tasks found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRIORITY\tCATEGORY\tDEADLINE\tSTATUS\tTEXT")
	for _, t := range ts {
		deadline := "-"
		if t.Deadline != nil {
			deadline = t.Deadline.Format(time.DateOnly)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID(t.ID), t.Priority, t.Category, deadline, t.Status, truncate(t.Text, maxTextWidth))
	}
	return tw.Flush()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// truncate collapses whitespace in s and cuts it to n runes.
func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
