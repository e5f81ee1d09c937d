// Package analytics computes reply latency and volume patterns over a batch
// of messages.
package analytics

import (
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nhle/mailtasks/internal/model"
)

const (
	// TopPeakHours is how many hours of day Patterns reports.
	TopPeakHours = 5
	// TopContacts is how many senders Patterns reports.
	TopContacts = 10

	replyMarker = "re:"
	dayLayout   = "2006-01-02"
)

// Analyzer runs the aggregations and logs messages it had to skip.
type Analyzer struct {
	logger *zap.Logger
}

// NewAnalyzer creates an analyzer. A nil logger disables logging.
func NewAnalyzer(logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{logger: logger}
}

// ResponseTimes reports reply latency in hours across reply threads.
func (a *Analyzer) ResponseTimes(msgs []model.Message) model.ResponseTimes {
	rt, skipped := responseTimes(msgs)
	if skipped > 0 {
		a.logger.Debug("skipped messages with unparseable dates",
			zap.String("analysis", "response_times"),
			zap.Int("skipped", skipped),
		)
	}
	return rt
}

// Patterns reports peak hours, frequent contacts and daily volume.
func (a *Analyzer) Patterns(msgs []model.Message) model.CommunicationPatterns {
	p, skipped := patterns(msgs)
	if skipped > 0 {
		a.logger.Debug("skipped messages with unparseable dates",
			zap.String("analysis", "patterns"),
			zap.Int("skipped", skipped),
		)
	}
	return p
}

// ResponseTimes is Analyzer.ResponseTimes without logging.
func ResponseTimes(msgs []model.Message) model.ResponseTimes {
	rt, _ := responseTimes(msgs)
	return rt
}

// Patterns is Analyzer.Patterns without logging.
func Patterns(msgs []model.Message) model.CommunicationPatterns {
	p, _ := patterns(msgs)
	return p
}

// BaseSubject strips leading reply markers ("Re:", "RE: re:") from subject
// and collapses whitespace.
func BaseSubject(subject string) string {
	s := strings.TrimSpace(subject)
	for len(s) >= len(replyMarker) && strings.EqualFold(s[:len(replyMarker)], replyMarker) {
		s = strings.TrimSpace(s[len(replyMarker):])
	}
	return strings.Join(strings.Fields(s), " ")
}

// IsReply reports whether subject starts with a reply marker.
func IsReply(subject string) bool {
	s := strings.TrimSpace(subject)
	return len(s) >= len(replyMarker) && strings.EqualFold(s[:len(replyMarker)], replyMarker)
}

type threadEntry struct {
	at    time.Time
	reply bool
}

// responseTimes groups messages by base subject and measures the gaps
// between consecutive messages of every thread that has at least two
// members and at least one reply.
func responseTimes(msgs []model.Message) (model.ResponseTimes, int) {
	var (
		order   []string
		threads = make(map[string][]threadEntry)
		skipped int
	)

	for _, m := range msgs {
		at, ok := m.ParseDate()
		if !ok {
			skipped++
			continue
		}
		base := BaseSubject(m.Subject)
		if _, seen := threads[base]; !seen {
			order = append(order, base)
		}
		threads[base] = append(threads[base], threadEntry{at: at, reply: IsReply(m.Subject)})
	}

	var gaps []float64
	for _, base := range order {
		thread := threads[base]
		if len(thread) < 2 || !hasReply(thread) {
			continue
		}
		sort.SliceStable(thread, func(i, j int) bool {
			return thread[i].at.Before(thread[j].at)
		})
		for i := 1; i < len(thread); i++ {
			gaps = append(gaps, thread[i].at.Sub(thread[i-1].at).Hours())
		}
	}

	if len(gaps) == 0 {
		return model.ResponseTimes{}, skipped
	}

	rt := model.ResponseTimes{Min: gaps[0], Max: gaps[0]}
	var sum float64
	for _, g := range gaps {
		sum += g
		if g < rt.Min {
			rt.Min = g
		}
		if g > rt.Max {
			rt.Max = g
		}
	}
	rt.Average = sum / float64(len(gaps))
	return rt, skipped
}

func hasReply(thread []threadEntry) bool {
	for _, e := range thread {
		if e.reply {
			return true
		}
	}
	return false
}

// patterns counts messages per hour of day, per sender and per calendar
// day. Hours and days are taken in each message's own header offset.
func patterns(msgs []model.Message) (model.CommunicationPatterns, int) {
	var (
		hours    = []model.HourCount{}
		hourIdx  = make(map[int]int)
		contacts = []model.ContactCount{}
		fromIdx  = make(map[string]int)
		days     = []model.DayCount{}
		dayIdx   = make(map[string]int)
		skipped  int
	)

	for _, m := range msgs {
		at, ok := m.ParseDate()
		if !ok {
			skipped++
			continue
		}

		if i, ok := hourIdx[at.Hour()]; ok {
			hours[i].Count++
		} else {
			hourIdx[at.Hour()] = len(hours)
			hours = append(hours, model.HourCount{Hour: at.Hour(), Count: 1})
		}

		if i, ok := fromIdx[m.From]; ok {
			contacts[i].Count++
		} else {
			fromIdx[m.From] = len(contacts)
			contacts = append(contacts, model.ContactCount{Address: m.From, Count: 1})
		}

		day := at.Format(dayLayout)
		if i, ok := dayIdx[day]; ok {
			days[i].Count++
		} else {
			dayIdx[day] = len(days)
			days = append(days, model.DayCount{Day: day, Count: 1})
		}
	}

	// Stable sorts keep first-seen order among equal counts.
	sort.SliceStable(hours, func(i, j int) bool { return hours[i].Count > hours[j].Count })
	sort.SliceStable(contacts, func(i, j int) bool { return contacts[i].Count > contacts[j].Count })
	sort.Slice(days, func(i, j int) bool { return days[i].Day < days[j].Day })

	return model.CommunicationPatterns{
		PeakHours:        head(hours, TopPeakHours),
		FrequentContacts: head(contacts, TopContacts),
		DailyVolume:      days,
	}, skipped
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		return s[:n]
	}
	return s
}
