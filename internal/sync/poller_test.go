package sync

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailtasks/internal/classify"
	"github.com/nhle/mailtasks/internal/model"
	"github.com/nhle/mailtasks/internal/source"
	"github.com/nhle/mailtasks/internal/store"
	"github.com/nhle/mailtasks/tests/testutil"
)

var refNow = time.Date(2026, time.October, 19, 10, 0, 0, 0, time.UTC)

type fakeSource struct {
	msgs  []model.Message
	err   error
	calls int
}

func (f *fakeSource) Type() source.SourceType { return source.SourceTypeJSON }

func (f *fakeSource) ValidateConnection(context.Context) (string, error) {
	return "ok", f.err
}

func (f *fakeSource) FetchMessages(_ context.Context, opts source.FetchOptions) (*source.FetchResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return source.Paginate(f.msgs, opts), nil
}

func newSyncer(t *testing.T) (*Syncer, *store.SQLiteStore) {
	t.Helper()
	s := testutil.NewTestStore(t)
	ex := classify.NewExtractor(classify.NewClassifier(nil, nil, 0, nil), nil)
	return New(s, ex, nil), s
}

func inbox() []model.Message {
	return []model.Message{
		{ID: "m1", Date: "Mon, 19 Oct 2026 09:00:00 +0000", From: "a@example.com",
			Subject: "Please review the budget", Snippet: "Send the numbers by 10/21/2026."},
		{ID: "m2", Date: "Mon, 19 Oct 2026 09:30:00 +0000", From: "b@example.com",
			Subject: "Lunch", Snippet: "Nice weather."},
	}
}

func TestSyncer_RunOnce(t *testing.T) {
	syncer, st := newSyncer(t)
	ctx := context.Background()

	src := &fakeSource{msgs: inbox()}
	syncer.RegisterSource(src, model.SourceConfig{ID: "dump", Type: "json", Enabled: true})

	results, err := syncer.RunOnce(ctx, refNow)
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	assert.Equal(t, "dump", res.SourceID)
	assert.Equal(t, 2, res.Messages)
	require.NotEmpty(t, res.Tasks)
	assert.Equal(t, len(res.Tasks), res.NewTaskCount)

	stored, err := st.GetTasks(ctx, store.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, stored, len(res.Tasks))

	batch, _, ok, err := st.LoadBatch(ctx, BatchKey("dump"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, inbox(), batch)

	// A second pass finds the same tasks and reports none as new.
	results, err = syncer.RunOnce(ctx, refNow.Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 0, results[0].NewTaskCount)

	stored, err = st.GetTasks(ctx, store.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, stored, len(res.Tasks))

	statuses := syncer.Statuses()
	require.Len(t, statuses, 1)
	assert.Equal(t, SyncIdle, statuses[0].State)
	assert.Equal(t, refNow.Add(time.Minute), statuses[0].LastSync)
}

func TestSyncer_Pages(t *testing.T) {
	syncer, _ := newSyncer(t)

	var msgs []model.Message
	for i := 0; i < fetchPageSize+5; i++ {
		msgs = append(msgs, model.Message{
			ID:      fmt.Sprintf("m%03d", i),
			Date:    "Mon, 19 Oct 2026 09:00:00 +0000",
			From:    "a@example.com",
			Subject: "hello",
		})
	}
	src := &fakeSource{msgs: msgs}
	syncer.RegisterSource(src, model.SourceConfig{ID: "big", Enabled: true})

	results, err := syncer.RunOnce(context.Background(), refNow)
	require.NoError(t, err)
	assert.Equal(t, fetchPageSize+5, results[0].Messages)
	assert.Equal(t, 2, src.calls)
}

func TestSyncer_SourceErrorDoesNotStopOthers(t *testing.T) {
	syncer, _ := newSyncer(t)

	boom := errors.New("boom")
	syncer.RegisterSource(&fakeSource{err: boom}, model.SourceConfig{ID: "broken", Enabled: true})
	syncer.RegisterSource(&fakeSource{msgs: inbox()}, model.SourceConfig{ID: "ok", Enabled: true})

	results, err := syncer.RunOnce(context.Background(), refNow)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	require.Len(t, results, 2)
	assert.ErrorIs(t, results[0].Err, boom)
	assert.NoError(t, results[1].Err)
	assert.NotEmpty(t, results[1].Tasks)

	statuses := syncer.Statuses()
	assert.Equal(t, SyncError, statuses[0].State)
	assert.Equal(t, SyncIdle, statuses[1].State)
}

func TestSyncer_SkipsDisabled(t *testing.T) {
	syncer, _ := newSyncer(t)
	src := &fakeSource{msgs: inbox()}
	syncer.RegisterSource(src, model.SourceConfig{ID: "off", Enabled: false})

	results, err := syncer.RunOnce(context.Background(), refNow)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Zero(t, src.calls)
}

func TestSyncer_RunStopsOnCancel(t *testing.T) {
	syncer, _ := newSyncer(t)
	syncer.RegisterSource(&fakeSource{msgs: inbox()}, model.SourceConfig{ID: "dump", Enabled: true})

	ctx, cancel := context.WithCancel(context.Background())
	var got []Result
	err := syncer.Run(ctx, time.Hour, func(r Result) {
		got = append(got, r)
		cancel()
	})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "dump", got[0].SourceID)

	assert.Error(t, syncer.Run(context.Background(), 0, nil))
}
