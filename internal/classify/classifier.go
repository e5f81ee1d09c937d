// Package classify decides whether a piece of mail text describes a task and
// derives its priority, category and deadline.
package classify

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/mailtasks/internal/deadline"
	"github.com/nhle/mailtasks/internal/model"
	"github.com/nhle/mailtasks/internal/patterns"
)

// DefaultThreshold is the minimum detection confidence for emitting a task.
const DefaultThreshold = 0.3

const (
	scoreKeywordSubject = 0.3
	scoreKeywordBody    = 0.2
	scoreKeywordAtStart = 0.1
	scoreOpener         = 0.2
	scoreQuestion       = 0.1
	scoreHasDeadline    = 0.3

	priorityUrgency        = 0.4
	priorityTimeSensitive  = 0.3
	priorityWithinDay      = 0.5
	priorityWithinThreeDay = 0.3
	priorityWithinWeek     = 0.2
	priorityConfident      = 0.2
	priorityHighCutoff     = 0.4
)

// Classifier scores text for task indicators.
type Classifier struct {
	lib       *patterns.Library
	resolver  *deadline.Resolver
	threshold float64
	logger    *zap.Logger
}

// NewClassifier creates a classifier. A nil library selects patterns.Default,
// a nil resolver is built from the library, and a non-positive threshold
// selects DefaultThreshold.
func NewClassifier(lib *patterns.Library, resolver *deadline.Resolver, threshold float64, logger *zap.Logger) *Classifier {
	if lib == nil {
		lib = patterns.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if resolver == nil {
		resolver = deadline.NewResolver(lib, logger)
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Classifier{
		lib:       lib,
		resolver:  resolver,
		threshold: threshold,
		logger:    logger,
	}
}

// Resolver returns the deadline resolver used by the classifier.
func (c *Classifier) Resolver() *deadline.Resolver {
	return c.resolver
}

// Classify returns a pending task fragment when text scores at or above the
// threshold. The caller attaches sender, source and identity.
func (c *Classifier) Classify(text string, isSubject bool, now time.Time) (*model.Task, bool) {
	return c.classifyWithDeadline(text, isSubject, c.resolver.Resolve(text, now), now)
}

func (c *Classifier) classifyWithDeadline(text string, isSubject bool, d model.DeadlineResult, now time.Time) (*model.Task, bool) {
	if strings.TrimSpace(text) == "" {
		return nil, false
	}

	confidence := c.confidence(text, isSubject)
	if d.Found() {
		confidence += scoreHasDeadline
	}
	if confidence < c.threshold {
		return nil, false
	}

	task := &model.Task{
		Text:       text,
		Priority:   c.Priority(text, d, now),
		Category:   c.Category(text),
		Confidence: confidence,
		Status:     model.StatusPending,
	}
	task.ApplyDeadline(d)
	return task, true
}

// confidence sums the keyword, opener and question evidence in text.
func (c *Classifier) confidence(text string, isSubject bool) float64 {
	lower := strings.ToLower(text)

	perKeyword := scoreKeywordBody
	if isSubject {
		perKeyword = scoreKeywordSubject
	}

	var confidence float64
	for _, kw := range c.lib.TaskKeywords() {
		if !strings.Contains(lower, kw) {
			continue
		}
		confidence += perKeyword
		if strings.HasPrefix(lower, kw) {
			confidence += scoreKeywordAtStart
		}
	}

	if c.lib.StartsWithOpener(lower) {
		confidence += scoreOpener
	}
	if strings.Contains(text, "?") {
		confidence += scoreQuestion
	}
	return confidence
}

// Priority derives high or moderate from urgency wording and deadline
// proximity. An overdue deadline counts as within a day.
func (c *Classifier) Priority(text string, d model.DeadlineResult, now time.Time) model.Priority {
	lower := strings.ToLower(text)

	var score float64
	if c.lib.HasUrgencyWord(lower) {
		score += priorityUrgency
	}
	if c.lib.HasTimeSensitivePhrase(lower) {
		score += priorityTimeSensitive
	}

	if d.Date != nil {
		hours := d.Date.Sub(now).Hours()
		switch {
		case hours <= 24:
			score += priorityWithinDay
		case hours <= 72:
			score += priorityWithinThreeDay
		case hours <= 168:
			score += priorityWithinWeek
		}
		if d.Confidence > 0.7 {
			score += priorityConfident
		}
	}

	if score >= priorityHighCutoff {
		return model.PriorityHigh
	}
	return model.PriorityModerate
}

// Category returns the first category whose keywords appear in text.
func (c *Classifier) Category(text string) model.Category {
	return c.lib.CategoryOf(strings.ToLower(text))
}
