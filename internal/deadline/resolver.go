// Package deadline resolves the most likely deadline mentioned in free text.
//
// Every call takes an explicit reference instant; nothing in this package
// reads the wall clock.
package deadline

import (
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/mailtasks/internal/model"
	"github.com/nhle/mailtasks/internal/patterns"
)

const (
	// contextRadius is the minimum number of bytes kept on each side of a
	// match before snapping to the next whitespace boundary.
	contextRadius = 50

	scoreDeadlinePhrase = 0.4
	scorePhraseAtStart  = 0.2
	scoreWithinWeek     = 0.4
	scoreWithinMonth    = 0.3
	scoreWithinQuarter  = 0.2
	scoreUrgency        = 0.3
	scoreSubjectLabel   = 0.3

	subjectLabel = "subject:"
)

// candidate is a parsed date and the byte span of the text it came from.
type candidate struct {
	date       time.Time
	start, end int
}

// Resolver extracts deadlines using a pattern library.
type Resolver struct {
	lib    *patterns.Library
	logger *zap.Logger
}

// NewResolver creates a resolver. A nil library selects patterns.Default and
// a nil logger disables logging.
func NewResolver(lib *patterns.Library, logger *zap.Logger) *Resolver {
	if lib == nil {
		lib = patterns.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{lib: lib, logger: logger}
}

// Resolve returns the best-scoring deadline in text relative to now.
func (r *Resolver) Resolve(text string, now time.Time) model.DeadlineResult {
	if text == "" {
		return model.DeadlineResult{}
	}

	lower := strings.ToLower(text)
	candidates := r.scan(text, lower, now)

	if len(candidates) == 0 {
		if t, ok := relativeTime(r.lib, lower, now); ok && t.After(now) {
			candidates = append(candidates, candidate{date: t})
		}
	}
	if len(candidates) == 0 {
		return model.DeadlineResult{}
	}

	var (
		best           *candidate
		bestConfidence float64
		bestContext    string
	)
	for i := range candidates {
		c := &candidates[i]
		ctx := contextWindow(text, c.start, c.end)
		confidence := r.score(c, text, ctx, now)
		if confidence > bestConfidence {
			best = c
			bestConfidence = confidence
			bestContext = ctx
		}
	}

	if best == nil {
		return model.DeadlineResult{}
	}

	date := best.date
	return model.DeadlineResult{
		Date:       &date,
		Confidence: math.Min(bestConfidence, 1.0),
		Context:    bestContext,
	}
}

// scan collects date candidates from every pattern family, in family order.
func (r *Resolver) scan(text, lower string, now time.Time) []candidate {
	base := now.Truncate(time.Second)

	var candidates []candidate
	for _, dp := range r.lib.DatePatterns() {
		for _, loc := range dp.Regex.FindAllStringIndex(text, -1) {
			match := text[loc[0]:loc[1]]

			var date time.Time
			if dp.Family == patterns.FamilyRelative {
				date = parseRelativeMatch(match, now)
			} else {
				parsed, yearless, err := parseExplicit(match, base)
				if err != nil {
					r.logger.Debug("skipping unparseable date",
						zap.String("match", match),
						zap.String("family", string(dp.Family)),
						zap.Error(err),
					)
					continue
				}
				if sameDay(parsed, base) && r.lib.HasSameDayAdvanceCue(lower) {
					parsed = parsed.AddDate(0, 0, 1)
				}
				if yearless {
					parsed = rollForward(parsed, base)
				}
				date = parsed
			}

			candidates = append(candidates, candidate{
				date:  withOrdinal(date, len(candidates)),
				start: loc[0],
				end:   loc[1],
			})
		}
	}
	return candidates
}

// withOrdinal replaces the sub-second part of t with the candidate's
// construction index so that colliding dates stay distinguishable.
func withOrdinal(t time.Time, idx int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(),
		t.Hour(), t.Minute(), t.Second(), idx*int(time.Microsecond), t.Location())
}

// score computes the additive confidence for a candidate. The caller caps
// the winning value at 1.0.
func (r *Resolver) score(c *candidate, text, ctx string, now time.Time) float64 {
	lowerCtx := strings.ToLower(ctx)
	confidence := 0.0

	// Only the first phrase found counts, including for the start bonus.
	if phrase, ok := r.lib.FirstDeadlinePhrase(lowerCtx); ok {
		confidence += scoreDeadlinePhrase
		if strings.HasPrefix(lowerCtx, phrase) {
			confidence += scorePhraseAtStart
		}
	}

	days := math.Floor(c.date.Sub(now).Hours() / 24)
	switch {
	case days >= 0 && days <= 7:
		confidence += scoreWithinWeek
	case days > 7 && days <= 30:
		confidence += scoreWithinMonth
	case days > 30 && days <= 90:
		confidence += scoreWithinQuarter
	}

	if r.lib.HasUrgencyMarker(lowerCtx) {
		confidence += scoreUrgency
	}

	if strings.Contains(strings.ToLower(text[:c.start]), subjectLabel) {
		confidence += scoreSubjectLabel
	}

	return confidence
}

const whitespace = " \t\r\n"

// contextWindow returns the text from the last whitespace at least
// contextRadius bytes before start to the first whitespace at least
// contextRadius bytes after end, clamped to the text and trimmed.
func contextWindow(text string, start, end int) string {
	from := 0
	if cut := start - contextRadius; cut > 0 {
		if i := strings.LastIndexAny(text[:cut], whitespace); i > 0 {
			from = i
		}
	}

	to := len(text)
	if cut := end + contextRadius; cut < len(text) {
		if i := strings.IndexAny(text[cut:], whitespace); i >= 0 {
			to = cut + i
		}
	}

	return strings.TrimSpace(text[from:to])
}
