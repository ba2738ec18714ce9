package query

import (
	"encoding/json"
	"time"
)

// DateLayout is the canonical text form of a resolved date.
const DateLayout = "2006-01-02"

// DateValue is a resolved calendar date, or the sentinel "any" which cancels
// a date constraint of the same kind when merged over recovered state.
type DateValue struct {
	Time time.Time
	Any  bool
}

// AnyDate returns the "any" sentinel.
func AnyDate() *DateValue {
	return &DateValue{Any: true}
}

// NewDate returns a DateValue for the calendar day of t.
func NewDate(t time.Time) *DateValue {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return &DateValue{Time: day}
}

// String renders "any" or the date as 2006-01-02; nil renders as "".
func (d *DateValue) String() string {
	if d == nil {
		return ""
	}
	if d.Any {
		return AnyTerm
	}
	return d.Time.Format(DateLayout)
}

// Equal compares two date values by calendar day.
func (d *DateValue) Equal(other *DateValue) bool {
	if d == nil || other == nil {
		return d == other
	}
	if d.Any || other.Any {
		return d.Any == other.Any
	}
	return d.String() == other.String()
}

// MarshalJSON renders the date in its canonical text form.
func (d DateValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// FormatDate renders a date for display, e.g. "Jun 13, 2021". It is applied
// once when a description is built; DateValue itself never reformats.
func FormatDate(d *DateValue) string {
	if d == nil {
		return ""
	}
	if d.Any {
		return "any date"
	}
	return d.Time.Format("Jan 2, 2006")
}

// DateDescription describes the date clauses of q for display, e.g.
// "observed since Jun 1, 2021 until Jun 30, 2021 added on Jul 2, 2021".
// An "on" date takes precedence over since/until of the same kind, the same
// way the remote API treats them.
func (q Query) DateDescription() string {
	describe := func(verb string, on, d1, d2 *DateValue) string {
		if on != nil {
			return verb + " on " + FormatDate(on)
		}
		desc := ""
		if d1 != nil {
			desc = verb + " since " + FormatDate(d1)
		}
		if d2 != nil {
			if desc == "" {
				desc = verb
			}
			desc += " until " + FormatDate(d2)
		}
		return desc
	}

	observed := describe("observed", q.ObsOn, q.ObsD1, q.ObsD2)
	added := describe("added", q.AddedOn, q.AddedD1, q.AddedD2)
	switch {
	case observed != "" && added != "":
		return observed + " " + added
	case observed != "":
		return observed
	default:
		return added
	}
}
