package deadline

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/nhle/mailtasks/internal/patterns"
)

// refNow is a Monday.
var refNow = time.Date(2026, time.October, 19, 10, 0, 0, 0, time.UTC)

func TestResolver_Resolve(t *testing.T) {
	r := NewResolver(nil, nil)

	tests := []struct {
		name           string
		text           string
		wantDate       time.Time
		wantConfidence float64
		wantContext    string
	}{
		{
			name:           "relative fallback tomorrow with urgency",
			text:           "Please submit the report by tomorrow, this is urgent",
			wantDate:       refNow.AddDate(0, 0, 1),
			wantConfidence: 1.0,
			wantContext:    "Please submit the report by tomorrow, this is urgent",
		},
		{
			name:           "formal date month first after day first fails",
			text:           "Due by 10/25/2026 please",
			wantDate:       time.Date(2026, time.October, 25, 0, 0, 0, 0, time.UTC),
			wantConfidence: 1.0,
			wantContext:    "Due by 10/25/2026 please",
		},
		{
			name:           "yearless written date rolls into next year",
			text:           "Report due by March 5th",
			wantDate:       time.Date(2027, time.March, 5, 10, 0, 0, 0, time.UTC),
			wantConfidence: 0.4,
			wantContext:    "Report due by March 5th",
		},
		{
			name:           "next weekday from relative family",
			text:           "Let's meet next Friday",
			wantDate:       time.Date(2026, time.October, 23, 10, 0, 0, 0, time.UTC),
			wantConfidence: 0.4,
			wantContext:    "Let's meet next Friday",
		},
		{
			name:           "same day parse advanced by tomorrow cue",
			text:           "Ship on October 19, 2026 or tomorrow",
			wantDate:       time.Date(2026, time.October, 20, 0, 0, 0, 0, time.UTC),
			wantConfidence: 0.4,
			wantContext:    "Ship on October 19, 2026 or tomorrow",
		},
		{
			name:           "in N days fallback",
			text:           "finish in 3 days",
			wantDate:       refNow.AddDate(0, 0, 3),
			wantConfidence: 0.4,
			wantContext:    "finish in 3 days",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.Resolve(tt.text, refNow)
			require.NotNil(t, got.Date)
			assert.True(t, tt.wantDate.Equal(*got.Date), "date = %v, want %v", *got.Date, tt.wantDate)
			assert.InDelta(t, tt.wantConfidence, got.Confidence, 1e-9)
			assert.Equal(t, tt.wantContext, got.Context)
		})
	}
}

func TestResolver_NoDeadline(t *testing.T) {
	r := NewResolver(nil, nil)

	for _, text := range []string{
		"",
		"hello world",
		"Can we talk today?",
		"Lunch was great, thanks again",
		"Report due by Feb 29",
	} {
		t.Run(text, func(t *testing.T) {
			got := r.Resolve(text, refNow)
			assert.Nil(t, got.Date)
			assert.Zero(t, got.Confidence)
			assert.Empty(t, got.Context)
		})
	}
}

func TestResolver_ConfidenceIffDate(t *testing.T) {
	r := NewResolver(nil, nil)

	texts := []string{
		"Please review by 11/20/2026",
		"see you 02/01/2020",
		"Subject: sync on 11/20/2026",
		"Dinner next month?",
		"nothing to see here",
		"end of month close",
		"a date far away 12/31/2099",
		"Old 01/05/2020 and due by 11/20/2026",
	}

	for _, text := range texts {
		got := r.Resolve(text, refNow)
		assert.Equal(t, got.Date == nil, got.Confidence == 0, "text %q", text)
		assert.Equal(t, got.Date == nil, got.Context == "", "text %q", text)
		assert.LessOrEqual(t, got.Confidence, 1.0)
	}
}

func TestResolver_PhraseAtContextStart(t *testing.T) {
	r := NewResolver(nil, nil)

	// Far-future date: no proximity bonus, so only the phrase bonuses apply.
	got := r.Resolve("Deadline 12/31/2099", refNow)
	require.NotNil(t, got.Date)
	assert.InDelta(t, 0.6, got.Confidence, 1e-9)
}

func TestResolver_SubjectLabelBonus(t *testing.T) {
	r := NewResolver(nil, nil)

	withLabel := r.Resolve("Subject: sync on 11/20/2026", refNow)
	withoutLabel := r.Resolve("Topic: sync on 11/20/2026", refNow)

	require.NotNil(t, withLabel.Date)
	require.NotNil(t, withoutLabel.Date)
	assert.InDelta(t, 0.5, withLabel.Confidence, 1e-9)
	assert.InDelta(t, 0.2, withoutLabel.Confidence, 1e-9)
}

func TestResolver_OrdinalTiebreak(t *testing.T) {
	r := NewResolver(nil, nil)

	got := r.Resolve("Old 01/05/2020 and due by 11/20/2026", refNow)
	require.NotNil(t, got.Date)
	assert.Equal(t, time.November, got.Date.Month())
	assert.Equal(t, 20, got.Date.Day())
	assert.Equal(t, 1000, got.Date.Nanosecond(), "second candidate carries ordinal 1")
}

func TestResolver_FirstSeenWinsTies(t *testing.T) {
	r := NewResolver(nil, nil)

	got := r.Resolve("deadline: 12/25/2026 or maybe 12/26/2026", refNow)
	require.NotNil(t, got.Date)
	assert.Equal(t, 25, got.Date.Day())
	assert.Equal(t, 0, got.Date.Nanosecond())
}

func TestResolver_LogsUnparseableCandidates(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := NewResolver(patterns.Default(), zap.New(core))

	got := r.Resolve("ref 99/99/99 only", refNow)
	assert.Nil(t, got.Date)
	assert.Equal(t, 1, logs.FilterMessage("skipping unparseable date").Len())
}

func TestContextWindow(t *testing.T) {
	text := strings.Repeat("word ", 30) + "due 11/20/2026 " + strings.Repeat("more ", 30)
	start := strings.Index(text, "11/20/2026")
	end := start + len("11/20/2026")

	ctx := contextWindow(text, start, end)

	assert.Contains(t, ctx, "due 11/20/2026")
	assert.Less(t, len(ctx), len(strings.TrimSpace(text)))
	assert.GreaterOrEqual(t, len(ctx), 2*contextRadius)
	assert.True(t, strings.HasPrefix(ctx, "word"))
	assert.True(t, strings.HasSuffix(ctx, "more"))
}

func TestContextWindow_ClampsToText(t *testing.T) {
	assert.Equal(t, "short due 1/2/2026", contextWindow("short due 1/2/2026", 10, 18))
	assert.Equal(t, "abc", contextWindow("  abc  ", 0, 0))
}
