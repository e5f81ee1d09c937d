// Package tasks orders, filters and updates batches of inferred tasks.
package tasks

import (
	"sort"
	"strings"
	"time"

	"github.com/nhle/mailtasks/internal/classify"
	"github.com/nhle/mailtasks/internal/model"
)

// SortKey selects the composite ordering used by Prioritize.
type SortKey string

const (
	SortByPriority SortKey = "priority"
	SortByDeadline SortKey = "deadline"
	SortByCategory SortKey = "category"
	SortByStatus   SortKey = "status"
)

// ParseSortKey maps s to a SortKey. Unknown keys fall back to SortByPriority.
func ParseSortKey(s string) SortKey {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortByPriority, SortByDeadline, SortByCategory, SortByStatus:
		return k
	default:
		return SortByPriority
	}
}

// Aggregator fills in missing derived fields and sorts tasks.
type Aggregator struct {
	classifier *classify.Classifier
}

// NewAggregator creates an aggregator. A nil classifier uses the defaults.
func NewAggregator(c *classify.Classifier) *Aggregator {
	if c == nil {
		c = classify.NewClassifier(nil, nil, 0, nil)
	}
	return &Aggregator{classifier: c}
}

// Prioritize returns a sorted copy of tasks. Tasks without a deadline get
// one resolved from their own text, and tasks without a priority get one
// derived. The sort is stable; reverse flips the whole ordering.
func (a *Aggregator) Prioritize(tasks []model.Task, sortBy SortKey, reverse bool, now time.Time) []model.Task {
	out := make([]model.Task, len(tasks))
	copy(out, tasks)

	for i := range out {
		t := &out[i]
		if t.Deadline == nil {
			t.ApplyDeadline(a.classifier.Resolver().Resolve(t.Text, now))
		}
		if t.Priority == "" {
			t.Priority = a.classifier.Priority(t.Text, model.DeadlineResult{
				Date:       t.Deadline,
				Confidence: t.DeadlineConfidence,
				Context:    t.DeadlineContext,
			}, now)
		}
	}

	less := lessFunc(ParseSortKey(string(sortBy)))
	sort.SliceStable(out, func(i, j int) bool {
		if reverse {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

type lessFn func(a, b model.Task) bool

func lessFunc(key SortKey) lessFn {
	switch key {
	case SortByDeadline:
		return func(a, b model.Task) bool {
			if c := compareDeadline(a.Deadline, b.Deadline); c != 0 {
				return c < 0
			}
			return compareBool(a.IsHigh(), b.IsHigh()) < 0
		}
	case SortByCategory:
		return func(a, b model.Task) bool {
			if c := strings.Compare(string(a.Category), string(b.Category)); c != 0 {
				return c < 0
			}
			return compareBool(a.IsHigh(), b.IsHigh()) < 0
		}
	case SortByStatus:
		return func(a, b model.Task) bool {
			if c := compareBool(a.IsPending(), b.IsPending()); c != 0 {
				return c < 0
			}
			return compareBool(a.IsHigh(), b.IsHigh()) < 0
		}
	default:
		return func(a, b model.Task) bool {
			if c := compareBool(a.IsHigh(), b.IsHigh()); c != 0 {
				return c < 0
			}
			return compareDeadline(a.Deadline, b.Deadline) < 0
		}
	}
}

// compareDeadline orders deadlines chronologically; a missing deadline sorts
// before any present one.
func compareDeadline(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return a.Compare(*b)
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}
