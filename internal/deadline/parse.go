package deadline

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// explicitLayouts are tried before permissive parsing. Day-first variants
// come before month-first ones, so "03/04/2026" reads as 3 April.
var explicitLayouts = []string{
	"2006-1-2",
	"2-1-2006",
	"1-2-2006",
	"2006/1/2",
	"2/1/2006",
	"1/2/2006",
	"Jan 2 2006",
	"January 2 2006",
}

// yearlessLayouts cover written dates without a year ("March 5th").
var yearlessLayouts = []string{
	"Jan 2",
	"January 2",
}

var ordinalSuffix = regexp.MustCompile(`(?i)(\d)(st|nd|rd|th)\b`)

// normalizeDate strips ordinal suffixes and commas and collapses runs of
// whitespace so written dates line up with the explicit layouts.
func normalizeDate(s string) string {
	s = ordinalSuffix.ReplaceAllString(s, "$1")
	s = strings.ReplaceAll(s, ",", " ")
	return strings.Join(strings.Fields(s), " ")
}

// parseExplicit parses a formal or written date match. Dates parsed from a
// layout with a year land at midnight; yearless dates take the year and
// clock of base, the same defaults permissive parsing anchors to.
func parseExplicit(match string, base time.Time) (date time.Time, yearless bool, err error) {
	s := normalizeDate(match)
	loc := base.Location()

	for _, layout := range explicitLayouts {
		if t, perr := time.ParseInLocation(layout, s, loc); perr == nil {
			return t, false, nil
		}
	}

	for _, layout := range yearlessLayouts {
		if t, perr := time.ParseInLocation(layout, s, loc); perr == nil {
			date := time.Date(base.Year(), t.Month(), t.Day(),
				base.Hour(), base.Minute(), base.Second(), 0, loc)
			// Yearless layouts parse against year 0, a leap year, so "Feb 29"
			// is accepted there and would normalize to March 1 here.
			if date.Day() != t.Day() {
				return time.Time{}, false, fmt.Errorf("day %d out of range for %s %d", t.Day(), t.Month(), base.Year())
			}
			return date, true, nil
		}
	}

	t, err := dateparse.ParseIn(s, loc)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, false, nil
}

// rollForward moves a yearless date that already passed into the future:
// first to base's year, then one year further if still in the past.
func rollForward(date, base time.Time) time.Time {
	if !date.Before(base) {
		return date
	}
	date = withYear(date, base.Year())
	if date.Before(base) {
		date = withYear(date, date.Year()+1)
	}
	return date
}

func withYear(t time.Time, year int) time.Time {
	return time.Date(year, t.Month(), t.Day(),
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.In(a.Location()).Date()
	return ay == by && am == bm && ad == bd
}
