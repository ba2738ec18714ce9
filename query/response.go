package query

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Response is a query whose who/what/where clauses have been resolved to
// remote ids by the caller. Zero ids are unset.
type Response struct {
	TaxonID            int
	UserID             int
	PlaceID            int
	ProjectID          int
	IDByUserID         int
	UnobservedByUserID int
	ExceptByUserID     int
	TermID             int
	TermValueID        int
	Options            map[string]string
	Observed           DateSelector
	Added              DateSelector
}

// DateSelector groups the since/until/on dates of one kind.
type DateSelector struct {
	D1 *DateValue
	D2 *DateValue
	On *DateValue
}

// DateSelectors splits the date clauses of q into observed and added kinds.
// "any" sentinels are dropped: they only matter while merging.
func (q Query) DateSelectors() (observed, added DateSelector) {
	keep := func(d *DateValue) *DateValue {
		if d == nil || d.Any {
			return nil
		}
		return d
	}
	observed = DateSelector{D1: keep(q.ObsD1), D2: keep(q.ObsD2), On: keep(q.ObsOn)}
	added = DateSelector{D1: keep(q.AddedD1), D2: keep(q.AddedD2), On: keep(q.AddedOn)}
	return observed, added
}

// OptionsMap turns "key=value" options into a map. A bare key maps to "true";
// a repeated key keeps its last value.
func (q Query) OptionsMap() map[string]string {
	if len(q.Options) == 0 {
		return nil
	}
	opts := make(map[string]string, len(q.Options))
	for _, opt := range q.Options {
		key, value, found := strings.Cut(opt, "=")
		if key == "" {
			continue
		}
		if !found {
			value = "true"
		}
		opts[key] = value
	}
	return opts
}

// ObsArgs returns the observation-search parameters for the response.
//
// verifiable defaults to "true", except that a project, user, or identifier
// filter relaxes it to "any" so the results agree with what the website
// shows for the same filter. Explicit options override every default.
func (r Response) ObsArgs() url.Values {
	args := map[string]string{"verifiable": "true"}
	setID := func(key string, id int) {
		if id != 0 {
			args[key] = strconv.Itoa(id)
		}
	}
	setID("taxon_id", r.TaxonID)
	setID("user_id", r.UserID)
	setID("project_id", r.ProjectID)
	setID("place_id", r.PlaceID)
	setID("ident_user_id", r.IDByUserID)
	setID("unobserved_by_user_id", r.UnobservedByUserID)
	setID("not_user_id", r.ExceptByUserID)
	if r.UnobservedByUserID != 0 {
		args["lrank"] = "species"
	}
	if r.TermID != 0 {
		setID("term_id", r.TermID)
		setID("term_value_id", r.TermValueID)
	}
	if r.ProjectID != 0 || r.UserID != 0 || r.IDByUserID != 0 {
		args["verifiable"] = "any"
	}
	for key, value := range r.Options {
		args[key] = value
	}
	if r.Observed.On != nil {
		args["observed_on"] = r.Observed.On.String()
	} else {
		if r.Observed.D1 != nil {
			args["d1"] = r.Observed.D1.String()
		}
		if r.Observed.D2 != nil {
			args["d2"] = r.Observed.D2.String()
		}
	}
	if r.Added.On != nil {
		args["created_on"] = r.Added.On.String()
	} else {
		if r.Added.D1 != nil {
			args["created_d1"] = r.Added.D1.Time.Format(time.RFC3339)
		}
		if r.Added.D2 != nil {
			args["created_d2"] = r.Added.D2.Time.Format(time.RFC3339)
		}
	}

	values := url.Values{}
	for key, value := range args {
		values.Set(key, value)
	}
	return values
}

// Adjectives describes the quality grade selected by the options, e.g.
// "*Research Grade*". verifiable overrides any quality_grade.
func (r Response) Adjectives() []string {
	if len(r.Options) == 0 {
		return nil
	}
	var research, needsID bool
	grades := strings.Split(r.Options["quality_grade"], ",")
	if !contains(grades, "any") {
		research = contains(grades, "research")
		needsID = contains(grades, "needs_id")
	}
	verifiable, hasVerifiable := r.Options["verifiable"]
	if hasVerifiable && (verifiable == "true" || verifiable == "") {
		research = true
		needsID = true
	}

	var adjectives []string
	switch {
	case verifiable == "false":
		adjectives = append(adjectives, "*not Verifiable*")
	case research && needsID:
		adjectives = append(adjectives, "*Verifiable*")
	default:
		if research {
			adjectives = append(adjectives, "*Research Grade*")
		}
		if needsID {
			adjectives = append(adjectives, "*Needs ID*")
		}
	}
	return adjectives
}

// ObsURL builds the website observation-search link for the response.
func (r Response) ObsURL(baseURL string) string {
	args := r.ObsArgs()
	keys := make([]string, 0, len(args))
	for key := range args {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, url.QueryEscape(key)+"="+url.QueryEscape(args.Get(key)))
	}
	return strings.TrimRight(baseURL, "/") + "/observations?" + strings.Join(pairs, "&")
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
