// Package export writes tasks and analytics reports as CSV or JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nhle/mailtasks/internal/model"
)

// CSVHeader is the column set written by WriteCSV.
var CSVHeader = []string{"priority", "text", "deadline", "status", "from"}

// WriteCSV writes one row per task. A missing deadline renders as an empty
// cell; present deadlines are RFC 3339.
func WriteCSV(w io.Writer, tasks []model.Task) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, t := range tasks {
		deadline := ""
		if t.Deadline != nil {
			deadline = t.Deadline.Format(time.RFC3339)
		}
		row := []string{string(t.Priority), t.Text, deadline, string(t.Status), t.From}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing csv row for task %s: %w", t.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

// WriteFile exports tasks to path, choosing CSV or JSON by extension.
func WriteFile(path string, tasks []model.Task) (err error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".csv" && ext != ".json" {
		return fmt.Errorf("unsupported export format %q: want .csv or .json", ext)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	if ext == ".csv" {
		return WriteCSV(f, tasks)
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	return WriteJSON(f, tasks)
}
