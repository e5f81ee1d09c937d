// Package patterns holds the keyword sets and date regexes shared by the
// deadline resolver and the task classifier.
//
// A Library is built once and never mutated afterwards, so a single value
// can be shared by any number of resolvers and classifiers.
package patterns

import (
	"regexp"
	"strings"

	"github.com/nhle/mailtasks/internal/model"
)

// Family names a class of date regex.
type Family string

const (
	FamilyFormal   Family = "formal"
	FamilyWritten  Family = "written"
	FamilyRelative Family = "relative"
)

// DatePattern is a compiled date regex tagged with its family.
type DatePattern struct {
	Family Family
	Regex  *regexp.Regexp
}

// RelativeKind identifies how a standalone relative-time expression is
// turned into an instant.
type RelativeKind int

const (
	RelativeToday RelativeKind = iota
	RelativeTomorrow
	RelativeNextWeek
	RelativeNextMonth
	RelativeEndOfDay
	RelativeEndOfWeek
	RelativeEndOfMonth
	RelativeInDays
	RelativeInWeeks
	RelativeInMonths
	RelativeNextWeekday
	RelativeThisWeekday
)

// RelativeExpr is a standalone relative-time phrase. For the counted kinds
// (in N days/weeks/months) the first submatch holds N; for the weekday kinds
// it holds the weekday token.
type RelativeExpr struct {
	Kind  RelativeKind
	Regex *regexp.Regexp
}

// CategoryKeywords pairs a category with the words that select it.
type CategoryKeywords struct {
	Category model.Category
	Keywords []string
}

// Options extends the built-in keyword sets.
type Options struct {
	ExtraTaskKeywords    []string
	ExtraUrgencyWords    []string
	ExtraCategoryKeyword map[model.Category][]string
}

// Library is the immutable registry of patterns and keyword sets.
type Library struct {
	datePatterns      []DatePattern
	relativeExprs     []RelativeExpr
	taskKeywords      []string
	openers           []string
	deadlinePhrases   []string
	urgencyMarkers    []string
	urgencyWords      []string
	timeSensitive     []string
	categoryKeywords  []CategoryKeywords
	sameDayAdvanceCue []string
}

const (
	formalPattern  = `\d{1,2}[-/]\d{1,2}[-/]\d{2,4}`
	writtenPattern = `(?:Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|` +
		`Jul(?:y)?|Aug(?:ust)?|Sep(?:tember)?|Oct(?:ober)?|Nov(?:ember)?|` +
		`Dec(?:ember)?)\s+\d{1,2}(?:st|nd|rd|th)?(?:[,]\s*\d{4})?`
	relativePattern = `(?:next|this|coming)\s+(?:Monday|Tuesday|Wednesday|Thursday|Friday|Saturday|Sunday|week|month)`
)

var taskKeywords = []string{
	// Action verbs
	"todo", "task", "action item", "please", "need to", "should", "must",
	"required", "urgent", "important", "priority", "asap", "follow up",
	"review", "update", "prepare", "send", "complete", "finish", "submit",
	"deliver", "schedule", "organize", "coordinate", "implement", "develop",
	"create", "ensure", "verify", "check", "investigate", "resolve", "handle",
	// Requests
	"can you", "could you", "would you", "will you", "please help",
	"requesting", "request for", "need your", "looking for", "seeking",
	// Action items
	"action required", "action needed", "next steps", "deliverable",
	"assignment", "to-do", "todo item", "work item", "pending",
	// Responsibility
	"responsible for", "in charge of", "take care of", "handle this",
	"assigned to", "your task", "your responsibility",
	// Time-sensitive
	"time sensitive", "time-critical", "urgent matter", "immediate attention",
	"as soon as possible", "right away", "promptly", "expedite",
}

var openers = []string{"please", "need", "must", "should", "will", "can"}

var deadlinePhrases = []string{
	"due by", "deadline is", "due date", "needs to be done by",
	"must be completed by", "required by", "finish by", "submit by",
	"no later than", "by end of", "by close of business",
	"by eod", "by cob", "by tomorrow", "by next", "due", "deadline",
}

var urgencyMarkers = []string{
	"urgent", "asap", "important", "critical", "immediate", "priority",
}

var urgencyWords = []string{
	"urgent", "asap", "immediately", "priority", "important",
	"critical", "crucial", "essential", "time-sensitive",
	"expedite", "rush", "pressing", "high priority",
}

var timeSensitivePhrases = []string{
	"as soon as", "right away", "urgent attention",
	"quick response", "immediate action", "time sensitive",
}

var categoryKeywords = []CategoryKeywords{
	{Category: model.CategoryWork, Keywords: []string{"report", "project", "meeting", "client", "deadline"}},
	{Category: model.CategoryPersonal, Keywords: []string{"family", "home", "personal", "appointment"}},
	{Category: model.CategoryMeeting, Keywords: []string{"meet", "call", "conference", "discuss"}},
	{Category: model.CategoryFollowUp, Keywords: []string{"follow up", "check", "confirm", "verify"}},
	{Category: model.CategoryReview, Keywords: []string{"review", "feedback", "evaluate", "assess"}},
}

const weekdayAbbrev = `(mon|tue|wed|thu|fri|sat|sun)(?:day)?`

// relativeSpecs is evaluated in order; the first matching expression wins.
var relativeSpecs = []struct {
	kind    RelativeKind
	pattern string
}{
	{RelativeToday, `today`},
	{RelativeTomorrow, `tomorrow`},
	{RelativeNextWeek, `next week`},
	{RelativeNextMonth, `next month`},
	{RelativeEndOfDay, `end of day|eod|close of business|cob`},
	{RelativeEndOfWeek, `end of week|eow`},
	{RelativeEndOfMonth, `end of month|eom`},
	{RelativeInDays, `in (\d+) days?`},
	{RelativeInWeeks, `in (\d+) weeks?`},
	{RelativeInMonths, `in (\d+) months?`},
	{RelativeNextWeekday, `next ` + weekdayAbbrev},
	{RelativeThisWeekday, `this ` + weekdayAbbrev},
}

// New builds a Library from the built-in tables plus any extras in opts.
func New(opts Options) *Library {
	lib := &Library{
		datePatterns: []DatePattern{
			{Family: FamilyFormal, Regex: regexp.MustCompile(`(?i)` + formalPattern)},
			{Family: FamilyWritten, Regex: regexp.MustCompile(`(?i)` + writtenPattern)},
			{Family: FamilyRelative, Regex: regexp.MustCompile(`(?i)` + relativePattern)},
		},
		taskKeywords:      merge(taskKeywords, opts.ExtraTaskKeywords),
		openers:           merge(openers, nil),
		deadlinePhrases:   merge(deadlinePhrases, nil),
		urgencyMarkers:    merge(urgencyMarkers, nil),
		urgencyWords:      merge(urgencyWords, opts.ExtraUrgencyWords),
		timeSensitive:     merge(timeSensitivePhrases, nil),
		sameDayAdvanceCue: []string{"tomorrow", "next"},
	}

	for _, rs := range relativeSpecs {
		lib.relativeExprs = append(lib.relativeExprs, RelativeExpr{
			Kind:  rs.kind,
			Regex: regexp.MustCompile(`(?i)` + rs.pattern),
		})
	}

	for _, ck := range categoryKeywords {
		lib.categoryKeywords = append(lib.categoryKeywords, CategoryKeywords{
			Category: ck.Category,
			Keywords: merge(ck.Keywords, opts.ExtraCategoryKeyword[ck.Category]),
		})
	}

	return lib
}

var defaultLibrary = New(Options{})

// Default returns the shared library built from the built-in tables only.
func Default() *Library {
	return defaultLibrary
}

// merge returns a fresh lowercased slice of base followed by extra, skipping
// blanks and duplicates while keeping first-seen order.
func merge(base, extra []string) []string {
	out := make([]string, 0, len(base)+len(extra))
	seen := make(map[string]bool, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, w := range list {
			w = strings.ToLower(strings.TrimSpace(w))
			if w == "" || seen[w] {
				continue
			}
			seen[w] = true
			out = append(out, w)
		}
	}
	return out
}

// DatePatterns returns the date regex families in scan order.
func (l *Library) DatePatterns() []DatePattern {
	return append([]DatePattern(nil), l.datePatterns...)
}

// RelativeExprs returns the standalone relative-time expressions in
// evaluation order.
func (l *Library) RelativeExprs() []RelativeExpr {
	return append([]RelativeExpr(nil), l.relativeExprs...)
}

// TaskKeywords returns the task-indicator phrases.
func (l *Library) TaskKeywords() []string {
	return append([]string(nil), l.taskKeywords...)
}

// Openers returns the imperative/request openers.
func (l *Library) Openers() []string {
	return append([]string(nil), l.openers...)
}

// DeadlinePhrases returns the deadline-indicator phrases used to score
// date candidates, in match order.
func (l *Library) DeadlinePhrases() []string {
	return append([]string(nil), l.deadlinePhrases...)
}

// CategoryKeywords returns the category keyword sets in match order.
func (l *Library) CategoryKeywords() []CategoryKeywords {
	out := make([]CategoryKeywords, len(l.categoryKeywords))
	for i, ck := range l.categoryKeywords {
		out[i] = CategoryKeywords{
			Category: ck.Category,
			Keywords: append([]string(nil), ck.Keywords...),
		}
	}
	return out
}

// FirstDeadlinePhrase returns the first deadline phrase contained in lower.
func (l *Library) FirstDeadlinePhrase(lower string) (string, bool) {
	return firstIn(lower, l.deadlinePhrases)
}

// HasUrgencyMarker reports whether lower contains a resolver urgency marker.
func (l *Library) HasUrgencyMarker(lower string) bool {
	_, ok := firstIn(lower, l.urgencyMarkers)
	return ok
}

// HasUrgencyWord reports whether lower contains a priority urgency word.
func (l *Library) HasUrgencyWord(lower string) bool {
	_, ok := firstIn(lower, l.urgencyWords)
	return ok
}

// HasTimeSensitivePhrase reports whether lower contains a time-sensitive phrase.
func (l *Library) HasTimeSensitivePhrase(lower string) bool {
	_, ok := firstIn(lower, l.timeSensitive)
	return ok
}

// HasSameDayAdvanceCue reports whether lower contains a cue ("tomorrow",
// "next") that pushes a same-day parse forward by one day.
func (l *Library) HasSameDayAdvanceCue(lower string) bool {
	_, ok := firstIn(lower, l.sameDayAdvanceCue)
	return ok
}

// StartsWithOpener reports whether lower begins with an imperative opener.
func (l *Library) StartsWithOpener(lower string) bool {
	for _, o := range l.openers {
		if strings.HasPrefix(lower, o) {
			return true
		}
	}
	return false
}

// CategoryOf returns the first category whose keywords appear in lower,
// or CategoryOther.
func (l *Library) CategoryOf(lower string) model.Category {
	for _, ck := range l.categoryKeywords {
		if _, ok := firstIn(lower, ck.Keywords); ok {
			return ck.Category
		}
	}
	return model.CategoryOther
}

func firstIn(lower string, words []string) (string, bool) {
	for _, w := range words {
		if strings.Contains(lower, w) {
			return w, true
		}
	}
	return "", false
}
