// Package main implements the mailtasks CLI: task extraction, mail analytics
// and a persisted task list over local mail dumps.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/mailtasks/internal/analytics"
	"github.com/nhle/mailtasks/internal/cache"
	"github.com/nhle/mailtasks/internal/classify"
	"github.com/nhle/mailtasks/internal/deadline"
	"github.com/nhle/mailtasks/internal/logging"
	"github.com/nhle/mailtasks/internal/model"
	"github.com/nhle/mailtasks/internal/patterns"
	"github.com/nhle/mailtasks/internal/source"
	"github.com/nhle/mailtasks/internal/source/email"
	"github.com/nhle/mailtasks/internal/source/jsonfile"
	"github.com/nhle/mailtasks/internal/store"
)

var (
	// configPath is the YAML configuration file.
	configPath string
	// logLevel overrides the configured log level when set.
	logLevel string

	version = "dev"

	// now is the reference instant for deadline inference.
	now = time.Now
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mailtasks",
	Short: "Infer tasks and deadlines from mail",
	Long: `mailtasks reads mail from .eml directories or JSON dumps, infers
actionable tasks with their priority, category and deadline, and reports
reply latency and volume patterns.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", model.DefaultConfigPath(), "path to config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(exportCmd)
}

// env bundles what every command needs.
type env struct {
	cfg    *model.AppConfig
	logger *zap.Logger
}

func loadEnv() (*env, error) {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, logger: logger}, nil
}

func (e *env) openStore() (*store.SQLiteStore, error) {
	dir := filepath.Dir(e.cfg.Store.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory %s: %w", dir, err)
	}
	return store.NewSQLiteStore(e.cfg.Store.Path)
}

func (e *env) classifier() *classify.Classifier {
	lib := patterns.New(patterns.Options{
		ExtraTaskKeywords: e.cfg.Extraction.ExtraTaskKeywords,
		ExtraUrgencyWords: e.cfg.Extraction.ExtraUrgencyWords,
	})
	resolver := deadline.NewResolver(lib, e.logger.Named("deadline"))
	return classify.NewClassifier(lib, resolver, e.cfg.Extraction.TaskThreshold, e.logger.Named("classify"))
}

func (e *env) extractor() *classify.Extractor {
	return classify.NewExtractor(e.classifier(), e.logger.Named("extract"))
}

func (e *env) analyzer() *analytics.Analyzer {
	return analytics.NewAnalyzer(e.logger.Named("analytics"))
}

// sourceFromConfig builds the adapter for a configured source.
func sourceFromConfig(cfg model.SourceConfig, c cache.MessageCache, logger *zap.Logger) (source.Source, error) {
	switch source.SourceType(cfg.Type) {
	case source.SourceTypeEmail:
		return email.NewAdapter(cfg.Path, cfg.Config["pattern"], cfg.ID, c, logger), nil
	case source.SourceTypeJSON:
		return jsonfile.NewAdapter(cfg.Path, cfg.ID, logger), nil
	default:
		return nil, fmt.Errorf("source %s: unknown type %q", cfg.ID, cfg.Type)
	}
}

// sourceFromPath picks an adapter for an ad-hoc path: directories and .eml
// files are read as mail, anything else as a JSON dump.
func sourceFromPath(path string, logger *zap.Logger) (source.Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	c := cache.NewMemory()
	switch {
	case info.IsDir():
		return email.NewAdapter(path, "", path, c, logger), nil
	case strings.EqualFold(filepath.Ext(path), ".eml"):
		return email.NewAdapter(filepath.Dir(path), filepath.Base(path), path, c, logger), nil
	default:
		return jsonfile.NewAdapter(path, path, logger), nil
	}
}
