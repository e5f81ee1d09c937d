package deadline

import (
	"strconv"
	"strings"
	"time"

	"github.com/nhle/mailtasks/internal/patterns"
)

var weekdays = map[string]time.Weekday{
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
	"sun": time.Sunday,
}

// weekdayIn returns the first weekday named (in full or by its three-letter
// prefix) in lower.
func weekdayIn(lower string) (time.Weekday, bool) {
	for _, word := range strings.Fields(lower) {
		if len(word) < 3 {
			continue
		}
		if wd, ok := weekdays[word[:3]]; ok {
			return wd, true
		}
	}
	return 0, false
}

// daysUntil counts days from now to the target weekday. With strict set the
// result is in 1..7 (today rolls to next week); otherwise it is in 0..6.
func daysUntil(now time.Time, target time.Weekday, strict bool) int {
	days := int(target) - int(now.Weekday())
	if days < 0 || (strict && days == 0) {
		days += 7
	}
	return days
}

// addMonths moves t by n calendar months, clamping the day to the end of
// the target month instead of overflowing into the next one.
func addMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m+time.Month(n), 1,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	if last := first.AddDate(0, 1, -1).Day(); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// parseRelativeMatch converts a relative-family regex match ("next friday",
// "coming week", "this month") into an instant. Only "next" and "coming"
// move the date; anything else resolves to now.
func parseRelativeMatch(match string, now time.Time) time.Time {
	lower := strings.ToLower(match)
	if !strings.Contains(lower, "next") && !strings.Contains(lower, "coming") {
		return now
	}

	switch {
	case strings.Contains(lower, "week"):
		return now.AddDate(0, 0, 7)
	case strings.Contains(lower, "month"):
		return addMonths(now, 1)
	}

	if wd, ok := weekdayIn(lower); ok {
		return now.AddDate(0, 0, daysUntil(now, wd, true))
	}
	return now
}

// relativeTime scans lower for the first standalone relative-time expression
// and returns the instant it denotes. Only the first matching expression is
// considered.
func relativeTime(lib *patterns.Library, lower string, now time.Time) (time.Time, bool) {
	for _, expr := range lib.RelativeExprs() {
		m := expr.Regex.FindStringSubmatch(lower)
		if m == nil {
			continue
		}
		return applyRelative(expr.Kind, m, now)
	}
	return time.Time{}, false
}

func applyRelative(kind patterns.RelativeKind, m []string, now time.Time) (time.Time, bool) {
	switch kind {
	case patterns.RelativeToday:
		return now, true
	case patterns.RelativeTomorrow:
		return now.AddDate(0, 0, 1), true
	case patterns.RelativeNextWeek:
		return now.AddDate(0, 0, 7), true
	case patterns.RelativeNextMonth:
		return addMonths(now, 1), true
	case patterns.RelativeEndOfDay:
		return now.AddDate(0, 0, 1).Add(-time.Duration(now.Hour()) * time.Hour), true
	case patterns.RelativeEndOfWeek:
		return now.AddDate(0, 0, daysUntil(now, time.Friday, false)), true
	case patterns.RelativeEndOfMonth:
		y, m, _ := now.Date()
		firstOfNext := time.Date(y, m+1, 1,
			now.Hour(), now.Minute(), now.Second(), now.Nanosecond(), now.Location())
		return firstOfNext.AddDate(0, 0, -1), true
	case patterns.RelativeInDays, patterns.RelativeInWeeks, patterns.RelativeInMonths:
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return time.Time{}, false
		}
		switch kind {
		case patterns.RelativeInDays:
			return now.AddDate(0, 0, n), true
		case patterns.RelativeInWeeks:
			return now.AddDate(0, 0, 7*n), true
		default:
			return addMonths(now, n), true
		}
	case patterns.RelativeNextWeekday, patterns.RelativeThisWeekday:
		wd, ok := weekdays[strings.ToLower(m[1])]
		if !ok {
			return time.Time{}, false
		}
		strict := kind == patterns.RelativeNextWeekday
		return now.AddDate(0, 0, daysUntil(now, wd, strict)), true
	}
	return time.Time{}, false
}
