package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/dronefly-project/dronefly/query"
)

// timeNow is a variable that can be mocked for testing
var timeNow = time.Now

// dayPreference picks the day of month when an expression names only a month
// or a year. since/added-since prefer the first day of the period, until and
// added-until the last, and on/added-on keep the current day of month.
type dayPreference int

const (
	preferCurrentDay dayPreference = iota
	preferFirstDay
	preferLastDay
)

// monthNames maps full and abbreviated month names to months
var monthNames = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

// dayNameMap maps day names (full and abbreviated) to weekday numbers
var dayNameMap = map[string]time.Weekday{
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sunday":    time.Sunday,
	"mon":       time.Monday,
	"tue":       time.Tuesday,
	"wed":       time.Wednesday,
	"thu":       time.Thursday,
	"fri":       time.Friday,
	"sat":       time.Saturday,
	"sun":       time.Sunday,
}

// parseDate resolves a date expression to a calendar day. Expressions that
// leave the year open resolve to the most recent past occurrence. The word
// "any" yields the "any" sentinel.
func parseDate(expr string, prefer dayPreference) (*query.DateValue, error) {
	expr = strings.TrimSpace(expr)
	if strings.EqualFold(expr, query.AnyTerm) {
		return query.AnyDate(), nil
	}
	if expr == "" {
		return nil, NewParseError(ErrorKindTemporal, "Missing date.")
	}

	now := timeNow()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	if t, ok := parseNaturalDate(strings.ToLower(expr), today, prefer); ok {
		return query.NewDate(t), nil
	}

	t, err := dateparse.ParseIn(expr, now.Location())
	if err != nil {
		return nil, NewParseError(ErrorKindTemporal, fmt.Sprintf("Date not understood: `%s`", expr)).
			WithToken(expr).
			WithUnderlying(err).
			WithSuggestion("Try a date like `2021-06-13`, `june 13`, `last week`, or `any`.")
	}
	if t.Year() == 0 {
		var ok bool
		if t, ok = mostRecentDay(t.Month(), t.Day(), today); !ok {
			return nil, NewParseError(ErrorKindTemporal, fmt.Sprintf("Date not understood: `%s`", expr)).
				WithToken(expr)
		}
	}
	return query.NewDate(t), nil
}

func parseNaturalDate(expr string, today time.Time, prefer dayPreference) (time.Time, bool) {
	switch expr {
	case "now", "today":
		return today, true
	case "yesterday":
		return today.AddDate(0, 0, -1), true
	case "last week":
		return today.AddDate(0, 0, -7), true
	case "last month":
		return today.AddDate(0, -1, 0), true
	case "last year":
		return today.AddDate(-1, 0, 0), true
	}

	fields := strings.Fields(strings.ReplaceAll(expr, ",", " "))

	// "3 days ago", "a week ago"
	if len(fields) == 3 && fields[2] == "ago" {
		return parseAgo(fields[0], fields[1], today)
	}

	// "friday", "last friday"
	if len(fields) == 1 {
		if weekday, ok := dayNameMap[fields[0]]; ok {
			back := int(today.Weekday() - weekday)
			if back < 0 {
				back += 7
			}
			return today.AddDate(0, 0, -back), true
		}
	}
	if len(fields) == 2 && fields[0] == "last" {
		if weekday, ok := dayNameMap[fields[1]]; ok {
			back := int(today.Weekday() - weekday)
			if back <= 0 {
				back += 7
			}
			return today.AddDate(0, 0, -back), true
		}
	}

	return parseCalendarDate(fields, today, prefer)
}

func parseAgo(count, unit string, today time.Time) (time.Time, bool) {
	n := 1
	if count != "a" && count != "an" {
		var err error
		n, err = strconv.Atoi(count)
		if err != nil || n < 0 {
			return time.Time{}, false
		}
	}
	switch strings.TrimSuffix(unit, "s") {
	case "day":
		return today.AddDate(0, 0, -n), true
	case "week":
		return today.AddDate(0, 0, -7*n), true
	case "month":
		return today.AddDate(0, -n, 0), true
	case "year":
		return today.AddDate(-n, 0, 0), true
	}
	return time.Time{}, false
}

// parseCalendarDate handles a month, a year, or a day, in any order, e.g.
// "june", "2021", "june 2021", "june 13", "13 june 2021".
func parseCalendarDate(fields []string, today time.Time, prefer dayPreference) (time.Time, bool) {
	if len(fields) == 0 || len(fields) > 3 {
		return time.Time{}, false
	}
	var month time.Month
	var day, year int
	for _, f := range fields {
		if m, ok := monthNames[f]; ok && month == 0 {
			month = m
			continue
		}
		if n, ok := parseYear(f); ok && year == 0 {
			year = n
			continue
		}
		if n, ok := parseDayOfMonth(f); ok && day == 0 {
			day = n
			continue
		}
		return time.Time{}, false
	}
	// A bare day number is not a date.
	if month == 0 && day != 0 {
		return time.Time{}, false
	}

	loc := today.Location()
	switch {
	case month == 0 && year != 0:
		switch prefer {
		case preferFirstDay:
			return time.Date(year, time.January, 1, 0, 0, 0, 0, loc), true
		case preferLastDay:
			return time.Date(year, time.December, 31, 0, 0, 0, 0, loc), true
		default:
			d := clampDay(year, today.Month(), today.Day())
			return time.Date(year, today.Month(), d, 0, 0, 0, 0, loc), true
		}
	case month != 0 && day != 0:
		if year == 0 {
			return mostRecentDay(month, day, today)
		}
		if day > daysIn(year, month) {
			return time.Time{}, false
		}
		return time.Date(year, month, day, 0, 0, 0, 0, loc), true
	case month != 0:
		if year == 0 {
			year = today.Year()
			if month > today.Month() {
				year--
			}
		}
		switch prefer {
		case preferFirstDay:
			day = 1
		case preferLastDay:
			day = daysIn(year, month)
		default:
			day = clampDay(year, month, today.Day())
		}
		return time.Date(year, month, day, 0, 0, 0, 0, loc), true
	}
	return time.Time{}, false
}

func parseYear(s string) (int, bool) {
	if len(s) != 4 {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1000 {
		return 0, false
	}
	return n, true
}

func parseDayOfMonth(s string) (int, bool) {
	for _, suffix := range []string{"st", "nd", "rd", "th"} {
		s = strings.TrimSuffix(s, suffix)
	}
	if len(s) == 0 || len(s) > 2 {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 31 {
		return 0, false
	}
	return n, true
}

// mostRecentDay returns the latest month/day on or before today. Feb 29
// falls back to the last leap year.
func mostRecentDay(month time.Month, day int, today time.Time) (time.Time, bool) {
	if day < 1 || day > daysIn(2000, month) {
		return time.Time{}, false
	}
	for year := today.Year(); ; year-- {
		if day > daysIn(year, month) {
			continue
		}
		if t := time.Date(year, month, day, 0, 0, 0, 0, today.Location()); !t.After(today) {
			return t, true
		}
	}
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func clampDay(year int, month time.Month, day int) int {
	if last := daysIn(year, month); day > last {
		return last
	}
	return day
}
