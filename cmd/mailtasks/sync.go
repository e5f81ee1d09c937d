package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/mailtasks/internal/sync"
)

var syncWatch bool

func init() {
	syncCmd.Flags().BoolVar(&syncWatch, "watch", false, "keep polling every sync.interval_sec seconds")
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch configured sources and store their tasks",
	Long: `Read every enabled source from the config file, store the fetched
messages and upsert the inferred tasks. Task status set with
"mailtasks tasks done" survives later syncs.

Examples:
  # One pass over all sources
  mailtasks sync

  # Poll until interrupted
  mailtasks sync --watch`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

func runSync(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	defer e.logger.Sync() //nolint:errcheck

	if len(e.cfg.Sources) == 0 {
		return fmt.Errorf("no sources configured in %s", configPath)
	}

	st, err := e.openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	syncer := sync.New(st, e.extractor(), e.logger.Named("sync"))
	for _, sc := range e.cfg.Sources {
		src, err := sourceFromConfig(sc, st, e.logger)
		if err != nil {
			return err
		}
		syncer.RegisterSource(src, sc)
	}

	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	if syncWatch {
		interval := time.Duration(e.cfg.Sync.IntervalSec) * time.Second
		return syncer.Run(ctx, interval, func(r sync.Result) { printResult(out, r) })
	}

	results, err := syncer.RunOnce(ctx, now())
	for _, r := range results {
		printResult(out, r)
	}
	return err
}

func printResult(w io.Writer, r sync.Result) {
	if r.Err != nil {
		fmt.Fprintf(w, "%s: error: %v\n", r.SourceID, r.Err)
		return
	}
	fmt.Fprintf(w, "%s: %d messages, %d tasks (%d new)\n",
		r.SourceID, r.Messages, len(r.Tasks), r.NewTaskCount)
}
