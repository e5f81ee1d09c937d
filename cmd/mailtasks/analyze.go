package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nhle/mailtasks/internal/export"
	"github.com/nhle/mailtasks/internal/model"
	"github.com/nhle/mailtasks/internal/sync"
)

var analyzeSource string

func init() {
	analyzeCmd.Flags().StringVar(&analyzeSource, "source", "", "analyze the last synced batch of this source ID instead of paths")
}

// analysisReport is the JSON document printed by analyze.
type analysisReport struct {
	Messages      int                         `json:"messages"`
	ResponseTimes model.ResponseTimes         `json:"response_times"`
	Patterns      model.CommunicationPatterns `json:"patterns"`
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]...",
	Short: "Report reply latency and mail volume patterns",
	Long: `Report average, fastest and slowest reply times, peak hours, frequent
contacts and daily volume as JSON.

Examples:
  # Analyze a directory of .eml files
  mailtasks analyze ~/mail/inbox

  # Analyze what the last sync fetched for a configured source
  mailtasks analyze --source work-inbox`,
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.logger.Sync() //nolint:errcheck

	var msgs []model.Message
	switch {
	case analyzeSource != "":
		st, err := e.openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		batch, _, ok, err := st.LoadBatch(cmd.Context(), sync.BatchKey(analyzeSource))
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no synced messages for source %q; run mailtasks sync first", analyzeSource)
		}
		msgs = batch
	case len(args) > 0:
		msgs, err = readPaths(cmd.Context(), args, e)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("analyze needs at least one path or --source")
	}

	a := e.analyzer()
	return export.WriteJSON(cmd.OutOrStdout(), analysisReport{
		Messages:      len(msgs),
		ResponseTimes: a.ResponseTimes(msgs),
		Patterns:      a.Patterns(msgs),
	})
}
