// Package embed recovers query state from a previously rendered message so
// that a reply like "from peru" can refine the earlier result instead of
// starting over.
//
// Nothing here fails for missing state: most rendered messages carry only
// some of what can be recovered, and absent state is reported as a zero
// value, a nil slice, or ok=false.
package embed

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/dronefly-project/dronefly/inaturl"
	"github.com/dronefly-project/dronefly/query"
)

// Message is the part of a rendered message that state is recovered from.
type Message struct {
	URL         string // primary link, may be empty
	Description string // body text, may be empty
}

// Breakdown table headers. A rendered body carries at most one of them.
const (
	PlacesHeader     = "__obs# (spp#) from place:__"
	UsersHeader      = "__obs# (spp#) by user:__"
	IDByUsersHeader  = "__obs# (spp#) identified by user:__"
	NotByUsersHeader = "__obs# (spp#) unobserved by user:__"
)

const (
	taxonomyMarker    = "in:"
	taxonomyEndMarker = "\n__"
)

// Table identifies which breakdown table a body carries.
type Table int

const (
	NoTable Table = iota
	PlacesTable
	UsersTable
	IDByUsersTable
	NotByUsersTable
)

func (t Table) String() string {
	switch t {
	case PlacesTable:
		return "places"
	case UsersTable:
		return "users"
	case IDByUsersTable:
		return "id-by-users"
	case NotByUsersTable:
		return "not-by-users"
	default:
		return "none"
	}
}

var (
	obsIDPattern       = regexp.MustCompile(`\(.*/observations/(?P<obs_id>\d+).*?\)`)
	placeIDPattern     = regexp.MustCompile(`\n\[[0-9, \(\)]+\]\(.*?[\?\&]place_id=(?P<place_id>\d+).*?\)`)
	notByUserIDPattern = regexp.MustCompile(`\n\[[0-9, \(\)]+\]\(.*?[\?\&]unobserved_by_user_id=(?P<unobserved_by_user_id>\d+).*?\)`)
	idByUserIDPattern  = regexp.MustCompile(`\n\[[0-9, \(\)]+\]\(.*?[\?\&]ident_user_id=(?P<ident_user_id>\d+).*?\)`)
	userIDPattern      = regexp.MustCompile(`\n\[[0-9 \(\)]+\]\(.*?[\?\&]user_id=(?P<user_id>\d+).*?\)`)
)

// tableHeaders are matched with their trailing newline so a header quoted
// inside other text is not mistaken for a table.
var (
	tableHeaders = []struct {
		table  Table
		header string
	}{
		{PlacesTable, PlacesHeader + "\n"},
		{UsersTable, UsersHeader + "\n"},
		{IDByUsersTable, IDByUsersHeader + "\n"},
		{NotByUsersTable, NotByUsersHeader + "\n"},
	}
)

// State is what could be recovered from one rendered message.
type State struct {
	ObsURL   string            // observation search or observation link
	TaxonURL string            // taxon page link
	Taxonomy string            // breadcrumb text after "in:"
	Params   map[string]string // query parameters of the recovered link

	description string
}

// FromMessage recovers the state carried by msg.
func FromMessage(msg Message) *State {
	s := &State{description: msg.Description}
	s.ObsURL = observationsURL(msg)
	var taxonID string
	s.TaxonURL, taxonID = taxonURL(msg)
	s.Taxonomy = taxonomy(msg.Description)
	s.Params = params(firstNonEmpty(s.ObsURL, s.TaxonURL, msg.URL), taxonID)
	return s
}

// observationsURL prefers the primary link when it is an observation
// search, then a single observation linked from the body, then the first
// body link if it is an observation search.
func observationsURL(msg Message) string {
	if msg.URL != "" && inaturl.FindPrefix(inaturl.ObsQuery, msg.URL) != nil {
		return msg.URL
	}
	if msg.Description == "" {
		return ""
	}
	if m := inaturl.Find(inaturl.ObsLink, msg.Description); m != nil {
		return m["url"]
	}
	// ObsQuery is greedy, so isolate the first link before applying it.
	if link := inaturl.Find(inaturl.MarkdownLink, msg.Description); link != nil {
		if m := inaturl.Find(inaturl.ObsQuery, link["url"]); m != nil {
			return m["url"]
		}
	}
	return ""
}

func taxonURL(msg Message) (link, taxonID string) {
	if msg.URL != "" {
		if m := inaturl.FindPrefix(inaturl.TaxonLink, msg.URL); m != nil {
			return m["url"], m["taxon_id"]
		}
	}
	if msg.Description != "" {
		if m := inaturl.Find(inaturl.TaxonLink, msg.Description); m != nil {
			return m["url"], m["taxon_id"]
		}
	}
	return "", ""
}

func taxonomy(description string) string {
	start := strings.Index(description, taxonomyMarker)
	if start < 0 {
		return ""
	}
	rest := description[start+len(taxonomyMarker):]
	if end := strings.Index(rest, taxonomyEndMarker); end >= 0 {
		return rest[:end]
	}
	return rest
}

// params flattens the query string of link. Repeated keys are joined with
// commas. A taxon id from the link path overrides any taxon_id parameter.
func params(link, taxonID string) map[string]string {
	flat := make(map[string]string)
	if link != "" {
		if u, err := url.Parse(link); err == nil {
			for key, values := range u.Query() {
				flat[key] = strings.Join(values, ",")
			}
		}
	}
	if taxonID != "" {
		flat["taxon_id"] = taxonID
	}
	return flat
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (s *State) id(key string) (int, bool) {
	v := s.Params[key]
	if v == "" {
		return 0, false
	}
	id, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return id, true
}

// TaxonID returns the recovered taxon id.
func (s *State) TaxonID() (int, bool) { return s.id("taxon_id") }

// PlaceID returns the recovered place id.
func (s *State) PlaceID() (int, bool) { return s.id("place_id") }

// ProjectID returns the recovered project id.
func (s *State) ProjectID() (int, bool) { return s.id("project_id") }

// UserID returns the recovered observer id.
func (s *State) UserID() (int, bool) { return s.id("user_id") }

// UnobservedByUserID returns the recovered "not by" user id.
func (s *State) UnobservedByUserID() (int, bool) { return s.id("unobserved_by_user_id") }

// NotUserID returns the recovered "except by" user id.
func (s *State) NotUserID() (int, bool) { return s.id("not_user_id") }

// IdentUserID returns the recovered "id by" user id.
func (s *State) IdentUserID() (int, bool) { return s.id("ident_user_id") }

// ControlledTerm returns the recovered term id and, if present, term value id.
func (s *State) ControlledTerm() *query.ControlledTerm {
	termID := s.Params["term_id"]
	if termID == "" {
		return nil
	}
	return &query.ControlledTerm{Term: termID, Value: s.Params["term_value_id"]}
}

func (s *State) date(key string) *query.DateValue {
	v := s.Params[key]
	if v == "" {
		return nil
	}
	if strings.EqualFold(v, query.AnyTerm) {
		return query.AnyDate()
	}
	if t, err := time.ParseInLocation(query.DateLayout, v, time.Local); err == nil {
		return query.NewDate(t)
	}
	t, err := dateparse.ParseIn(v, time.Local)
	if err != nil {
		return nil
	}
	return query.NewDate(t)
}

// ObsOn returns the recovered observed_on date.
func (s *State) ObsOn() *query.DateValue { return s.date("observed_on") }

// ObsD1 returns the recovered d1 (observed since) date.
func (s *State) ObsD1() *query.DateValue { return s.date("d1") }

// ObsD2 returns the recovered d2 (observed until) date.
func (s *State) ObsD2() *query.DateValue { return s.date("d2") }

// AddedOn returns the recovered created_on date.
func (s *State) AddedOn() *query.DateValue { return s.date("created_on") }

// AddedD1 returns the recovered created_d1 (added since) date.
func (s *State) AddedD1() *query.DateValue { return s.date("created_d1") }

// AddedD2 returns the recovered created_d2 (added until) date.
func (s *State) AddedD2() *query.DateValue { return s.date("created_d2") }

// Table reports which breakdown table the body carries.
func (s *State) Table() Table {
	for _, p := range tableHeaders {
		if strings.Contains(s.description, p.header) {
			return p.table
		}
	}
	return NoTable
}

func (s *State) listed(table Table, re *regexp.Regexp) []int {
	if s.Table() != table {
		return nil
	}
	return findIDs(re, s.description)
}

func findIDs(re *regexp.Regexp, text string) []int {
	matches := re.FindAllStringSubmatch(text, -1)
	ids := make([]int, 0, len(matches))
	for _, m := range matches {
		if id, err := strconv.Atoi(m[1]); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// ListedPlaceIDs returns the place ids of a place breakdown table.
func (s *State) ListedPlaceIDs() []int { return s.listed(PlacesTable, placeIDPattern) }

// ListedUserIDs returns the user ids of an observer breakdown table.
func (s *State) ListedUserIDs() []int { return s.listed(UsersTable, userIDPattern) }

// ListedIDByUserIDs returns the user ids of an identifier breakdown table.
func (s *State) ListedIDByUserIDs() []int { return s.listed(IDByUsersTable, idByUserIDPattern) }

// ListedNotByUserIDs returns the user ids of a "not by" breakdown table.
func (s *State) ListedNotByUserIDs() []int { return s.listed(NotByUsersTable, notByUserIDPattern) }

// ListedObservationIDs returns the observation ids linked from the body.
func (s *State) ListedObservationIDs() []int {
	if !obsIDPattern.MatchString(s.description) {
		return nil
	}
	return findIDs(obsIDPattern, s.description)
}
