// Package sync pulls messages from the configured sources, persists them and
// stores the tasks inferred from them.
package sync

import (
	"context"
	"errors"
	"fmt"
	"sort"
	gosync "sync"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/mailtasks/internal/classify"
	"github.com/nhle/mailtasks/internal/model"
	"github.com/nhle/mailtasks/internal/source"
	"github.com/nhle/mailtasks/internal/store"
)

// SyncState represents the current state of a source sync operation.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncRunning
	SyncError
)

func (s SyncState) String() string {
	switch s {
	case SyncRunning:
		return "running"
	case SyncError:
		return "error"
	default:
		return "idle"
	}
}

// SyncStatus holds the sync state for a single source.
type SyncStatus struct {
	SourceID   string
	SourceType source.SourceType
	State      SyncState
	LastSync   time.Time
	Error      error
}

// Result reports the outcome of syncing one source.
type Result struct {
	SourceID     string
	Messages     int
	Tasks        []model.Task
	NewTaskCount int
	Err          error
}

const (
	// fetchTimeout is the maximum time allowed for a single source fetch.
	fetchTimeout = 30 * time.Second

	fetchPageSize = 50
)

// BatchKey is the store batch key under which a source's last fetch is kept.
func BatchKey(sourceID string) string {
	return "source:" + sourceID
}

type sourceEntry struct {
	src source.Source
	cfg model.SourceConfig
}

// Syncer runs fetch, extract and persist for every registered source.
type Syncer struct {
	store     store.Store
	extractor *classify.Extractor
	logger    *zap.Logger

	mu       gosync.Mutex
	sources  []sourceEntry
	statuses map[string]*SyncStatus
}

// New creates a Syncer writing to s.
func New(s store.Store, extractor *classify.Extractor, logger *zap.Logger) *Syncer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Syncer{
		store:     s,
		extractor: extractor,
		logger:    logger,
		statuses:  make(map[string]*SyncStatus),
	}
}

// RegisterSource adds a source and its configuration. Disabled sources are
// ignored.
func (s *Syncer) RegisterSource(src source.Source, cfg model.SourceConfig) {
	if !cfg.Enabled {
		s.logger.Debug("skipping disabled source", zap.String("source_id", cfg.ID))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sources = append(s.sources, sourceEntry{src: src, cfg: cfg})
	s.statuses[cfg.ID] = &SyncStatus{
		SourceID:   cfg.ID,
		SourceType: src.Type(),
		State:      SyncIdle,
	}
}

// Statuses returns the sync status of every registered source, ordered by
// source ID.
func (s *Syncer) Statuses() []SyncStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]SyncStatus, 0, len(s.statuses))
	for _, st := range s.statuses {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SourceID < out[j].SourceID })
	return out
}

// RunOnce syncs every registered source in registration order. A failing
// source does not stop the others; their errors are joined in the return
// value and reported per source in the results.
func (s *Syncer) RunOnce(ctx context.Context, now time.Time) ([]Result, error) {
	s.mu.Lock()
	entries := make([]sourceEntry, len(s.sources))
	copy(entries, s.sources)
	s.mu.Unlock()

	results := make([]Result, 0, len(entries))
	var errs []error
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res := s.syncSource(ctx, entry, now)
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

// Run calls RunOnce immediately and then on every tick of interval until
// ctx is cancelled. onResult, when non-nil, receives every source result.
func (s *Syncer) Run(ctx context.Context, interval time.Duration, onResult func(Result)) error {
	if interval <= 0 {
		return fmt.Errorf("sync interval must be positive, got %s", interval)
	}

	tick := func(now time.Time) {
		results, err := s.RunOnce(ctx, now)
		if err != nil && ctx.Err() == nil {
			s.logger.Warn("sync finished with errors", zap.Error(err))
		}
		if onResult == nil {
			return
		}
		for _, r := range results {
			onResult(r)
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	tick(time.Now())
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-ticker.C:
			tick(now)
		}
	}
}

// syncSource fetches every page of one source, persists the batch and the
// inferred tasks, and counts tasks not previously stored.
func (s *Syncer) syncSource(ctx context.Context, entry sourceEntry, now time.Time) Result {
	id := entry.cfg.ID
	res := Result{SourceID: id}
	log := s.logger.With(zap.String("source_id", id))

	s.setStatus(id, SyncRunning, nil, now)

	msgs, err := s.fetchAll(ctx, entry.src)
	if err != nil {
		return s.fail(res, log, fmt.Errorf("fetching source %s: %w", id, err), now)
	}
	res.Messages = len(msgs)

	if err := s.store.SaveBatch(ctx, BatchKey(id), msgs); err != nil {
		return s.fail(res, log, fmt.Errorf("saving batch for %s: %w", id, err), now)
	}

	tasks := s.extractor.Extract(msgs, now)
	res.Tasks = tasks

	// Detect new tasks by checking which ones don't exist in the store yet.
	newCount := 0
	if len(tasks) > 0 {
		existing, err := s.store.GetTasks(ctx, store.TaskFilter{})
		if err != nil {
			return s.fail(res, log, fmt.Errorf("listing tasks: %w", err), now)
		}
		existingIDs := make(map[string]bool, len(existing))
		for _, t := range existing {
			existingIDs[t.ID] = true
		}
		for _, t := range tasks {
			if !existingIDs[t.ID] {
				newCount++
			}
		}

		if err := s.store.UpsertTasks(ctx, tasks); err != nil {
			return s.fail(res, log, fmt.Errorf("storing tasks for %s: %w", id, err), now)
		}
	}
	res.NewTaskCount = newCount

	s.setStatus(id, SyncIdle, nil, now)
	log.Info("source synced",
		zap.Int("messages", res.Messages),
		zap.Int("tasks", len(tasks)),
		zap.Int("new_tasks", newCount),
	)
	return res
}

func (s *Syncer) fetchAll(ctx context.Context, src source.Source) ([]model.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	var msgs []model.Message
	for page := 1; ; page++ {
		result, err := src.FetchMessages(ctx, source.FetchOptions{
			Page:     page,
			PageSize: fetchPageSize,
		})
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, result.Messages...)
		if !result.HasMore || len(result.Messages) == 0 {
			return msgs, nil
		}
	}
}

func (s *Syncer) fail(res Result, log *zap.Logger, err error, now time.Time) Result {
	log.Error("source sync failed", zap.Error(err))
	s.setStatus(res.SourceID, SyncError, err, now)
	res.Err = err
	return res
}

// setStatus updates the sync status for a source.
func (s *Syncer) setStatus(id string, state SyncState, err error, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status, ok := s.statuses[id]
	if !ok {
		return
	}

	status.State = state
	status.Error = err
	if state == SyncIdle && err == nil {
		status.LastSync = now
	}
}
