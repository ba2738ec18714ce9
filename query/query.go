// Package query defines the structured query that users build with the
// natural query grammar and that rendered displays carry forward for
// follow-up interactions.
//
// A query is composed of "who", "what", "when", and "where" clauses:
//
//   - who: "by" (observer), "not by" (taxa the user has not observed),
//     "except by" (observations not by the user), "id by" (identifier)
//   - what: the main taxon ("of"), an ancestor taxon ("in"), a controlled
//     term ("with"), and a grouping ("per")
//   - when: "since", "until", "on", each optionally qualified by "added"
//     to select the date the record was added instead of observed
//   - where: "from" a place, or "in prj" a project
//
// A generic "opt" clause passes remaining key=value options through to the
// remote API unchanged.
//
// Queries are values: nothing mutates a Query after it is built. Merging a
// fresh query into recovered state builds a new Query.
package query

import (
	"strconv"
	"strings"
)

// TaxonQuery describes how to match a single taxon.
//
// A TaxonID uniquely identifies a taxon, so when it is set the name-based
// fields are empty.
type TaxonQuery struct {
	TaxonID int        `json:"taxon_id,omitempty"`
	Terms   []string   `json:"terms,omitempty"`   // in input order; a quoted phrase is one term
	Phrases [][]string `json:"phrases,omitempty"` // words of each quoted phrase
	Ranks   []string   `json:"ranks,omitempty"`   // canonical rank names
	Code    string     `json:"code,omitempty"`    // 4-letter code, upper case
}

// AnyTerm is the taxon term that explicitly asks for no taxon filter.
const AnyTerm = "any"

// IsEmpty reports whether no field of the taxon query is set.
func (t *TaxonQuery) IsEmpty() bool {
	return t == nil || (t.TaxonID == 0 && len(t.Terms) == 0 && len(t.Phrases) == 0 &&
		len(t.Ranks) == 0 && t.Code == "")
}

// IsAny reports whether the taxon query is the lone "any" term.
func (t *TaxonQuery) IsAny() bool {
	return t != nil && len(t.Terms) == 1 && strings.EqualFold(t.Terms[0], AnyTerm) &&
		t.TaxonID == 0 && len(t.Ranks) == 0
}

// String renders the taxon query in canonical form: id, terms, ranks, code.
// Terms that came from a quoted phrase are quoted again.
func (t *TaxonQuery) String() string {
	if t == nil {
		return ""
	}
	var parts []string
	if t.TaxonID != 0 {
		parts = append(parts, strconv.Itoa(t.TaxonID))
	}
	for _, term := range t.Terms {
		if t.isPhrase(term) {
			parts = append(parts, `"`+term+`"`)
		} else {
			parts = append(parts, term)
		}
	}
	parts = append(parts, t.Ranks...)
	if t.Code != "" {
		parts = append(parts, t.Code)
	}
	return strings.Join(parts, " ")
}

func (t *TaxonQuery) isPhrase(term string) bool {
	if strings.ContainsAny(term, " \t") {
		return true
	}
	for _, phrase := range t.Phrases {
		if strings.Join(phrase, " ") == term {
			return true
		}
	}
	return false
}

// ControlledTerm names a controlled-term attribute and optionally its value,
// e.g. {"sex", "f"} or {"life", "stage larva"} before resolution, or term and
// value ids when recovered from a rendered display.
type ControlledTerm struct {
	Term  string `json:"term"`
	Value string `json:"value,omitempty"`
}

// String renders "term value", or just the term when there is no value.
func (c *ControlledTerm) String() string {
	if c == nil {
		return ""
	}
	if c.Value == "" {
		return c.Term
	}
	return c.Term + " " + c.Value
}

// Query is the full structured request.
//
// Free-text fields (User, Place, ...) are left exactly as typed, including
// any double quotes; resolving them to ids happens outside this package.
type Query struct {
	Main           *TaxonQuery     `json:"main,omitempty"`
	Ancestor       *TaxonQuery     `json:"ancestor,omitempty"`
	User           string          `json:"user,omitempty"`
	Place          string          `json:"place,omitempty"`
	ControlledTerm *ControlledTerm `json:"controlled_term,omitempty"`
	UnobservedBy   string          `json:"unobserved_by,omitempty"`
	ExceptBy       string          `json:"except_by,omitempty"`
	IDBy           string          `json:"id_by,omitempty"`
	Per            string          `json:"per,omitempty"`
	Project        string          `json:"project,omitempty"`
	Options        []string        `json:"options,omitempty"`
	ObsD1          *DateValue      `json:"obs_d1,omitempty"`
	ObsD2          *DateValue      `json:"obs_d2,omitempty"`
	ObsOn          *DateValue      `json:"obs_on,omitempty"`
	AddedD1        *DateValue      `json:"added_d1,omitempty"`
	AddedD2        *DateValue      `json:"added_d2,omitempty"`
	AddedOn        *DateValue      `json:"added_on,omitempty"`
}

// Empty is the all-default query. It matches everything and is what the
// parser returns for input with no clauses.
var Empty = Query{}

// IsEmpty reports whether every field of q is unset.
func (q Query) IsEmpty() bool {
	return q.Main.IsEmpty() && q.Ancestor.IsEmpty() &&
		q.User == "" && q.Place == "" && q.ControlledTerm == nil &&
		q.UnobservedBy == "" && q.ExceptBy == "" && q.IDBy == "" &&
		q.Per == "" && q.Project == "" && len(q.Options) == 0 &&
		!q.HasDates()
}

// HasDates reports whether any of the six date fields is set.
func (q Query) HasDates() bool {
	return q.ObsD1 != nil || q.ObsD2 != nil || q.ObsOn != nil ||
		q.AddedD1 != nil || q.AddedD2 != nil || q.AddedOn != nil
}

// String renders the canonical form of the query. Clauses appear in a fixed
// order and empty clauses are omitted:
//
//	<taxon> in <ancestor> from <place> in prj <project> by <user>
//	id by <id_by> not by <unobserved_by> except by <except_by>
//	with <term> per <per> opt <options...> since <d1> until <d2> on <date>
//	added since <d1> added until <d2> added on <date>
func (q Query) String() string {
	var clauses []string
	add := func(prefix, value string) {
		if value == "" {
			return
		}
		if prefix == "" {
			clauses = append(clauses, value)
			return
		}
		clauses = append(clauses, prefix+" "+value)
	}

	add("", q.Main.String())
	add("in", q.Ancestor.String())
	add("from", q.Place)
	add("in prj", q.Project)
	add("by", q.User)
	add("id by", q.IDBy)
	add("not by", q.UnobservedBy)
	add("except by", q.ExceptBy)
	add("with", q.ControlledTerm.String())
	add("per", q.Per)
	add("opt", strings.Join(q.Options, " "))
	add("since", q.ObsD1.String())
	add("until", q.ObsD2.String())
	add("on", q.ObsOn.String())
	add("added since", q.AddedD1.String())
	add("added until", q.AddedD2.String())
	add("added on", q.AddedOn.String())

	return strings.Join(clauses, " ")
}
