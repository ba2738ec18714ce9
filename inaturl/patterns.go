// Package inaturl recognizes links to iNaturalist and its partner sites.
//
// Every partner domain matches one of four shapes:
//
//	<partner>.inaturalist.org and [www.]inaturalist.org
//	inaturalist.<partner>.<tld>
//	[www.]inaturalist.<tld>
//	[www.]<partner>.<tld>
//
// See https://www.inaturalist.org/pages/network
package inaturl

import (
	"regexp"
	"strconv"
	"strings"
)

// WWWBaseURL is the canonical site used when building links.
const WWWBaseURL = "https://www.inaturalist.org"

// wwwURLPattern matches the scheme and host of any partner site.
const wwwURLPattern = `https?://(` +
	`((www|colombia|costarica|panama|ecuador|israel|greece|uk|guatemala|taiwan)\.)?inaturalist\.org` +
	`|inaturalist\.(ala\.org\.au|laji\.fi|mma\.gob\.cl)` +
	`|(www\.)?(` +
	`inaturalist\.(ca|lu|nz|se)` +
	`|naturalista\.(mx|uy)` +
	`|biodiversity4all\.org` +
	`|argentinat\.org` +
	`)` +
	`)`

// queryPattern matches an optional query string of key=value pairs.
const queryPattern = `\??(?:&?[^=&]*=[^=&]*)*`

var (
	// TaxonLink matches a taxon detail page, capturing url and taxon_id.
	TaxonLink = regexp.MustCompile(`(?i)\b(?P<url>` + wwwURLPattern + `/taxa/(?P<taxon_id>\d+))\b`)

	// ObsLink matches a single observation page, capturing url and obs_id.
	ObsLink = regexp.MustCompile(`(?i)\b(?P<url>` + wwwURLPattern + `/observations/(?P<obs_id>\d+))\b`)

	// ObsTaxonLink matches the observation search link generated for a taxon,
	// optionally filtered by place and user.
	ObsTaxonLink = regexp.MustCompile(`(?i)\b(?P<url>` + wwwURLPattern + `/observations` +
		`\?taxon_id=(?P<taxon_id>\d+)(&place_id=(?P<place_id>\d+))?(&user_id=(?P<user_id>\d+))?)\b`)

	// ObsQuery matches an observation search URL with its query string. It is
	// greedy, so only apply it to a URL already isolated from surrounding text.
	ObsQuery = regexp.MustCompile(`(?P<url>` + wwwURLPattern + `/observations` + queryPattern + `)`)

	// MarkdownLink matches [text](url), capturing url.
	MarkdownLink = regexp.MustCompile(`\[.*?\]\((?P<url>.*?)\)`)

	// PlaceLink matches a place page by id or slug.
	PlaceLink = regexp.MustCompile(`(?i)\b(?P<url>` + wwwURLPattern + `/places` +
		`/((?P<place_id>\d+)|(?P<place_slug>[a-z][-_a-z0-9]{2,39})))\b`)

	// ProjectLink matches a project page by id or slug.
	ProjectLink = regexp.MustCompile(`(?i)\b(?P<url>` + wwwURLPattern + `/projects` +
		`/((?P<project_id>\d+)|(?P<project_slug>[a-z][-_a-z0-9]{2,39})))\b`)

	// UserLink matches a user profile by id or login.
	UserLink = regexp.MustCompile(`(?i)\b(?P<url>` + wwwURLPattern + `/(people|users)` +
		`/((?P<user_id>\d+)|(?P<login>[a-z][-_a-z0-9]{2,39})))\b`)

	// StaticURL matches hosts serving photos and sounds.
	StaticURL = regexp.MustCompile(`https?://(static\.inaturalist\.org|inaturalist-open-data\.s3\.amazonaws\.com)`)
)

// Match is one match of a named-group pattern.
type Match map[string]string

// Find returns the named groups of the first match of re in s, or nil.
func Find(re *regexp.Regexp, s string) Match {
	groups := re.FindStringSubmatch(s)
	if groups == nil {
		return nil
	}
	return toMatch(re, groups)
}

// FindPrefix is Find anchored at the start of s.
func FindPrefix(re *regexp.Regexp, s string) Match {
	loc := re.FindStringSubmatchIndex(s)
	if loc == nil || loc[0] != 0 {
		return nil
	}
	groups := make([]string, len(loc)/2)
	for i := range groups {
		if loc[2*i] >= 0 {
			groups[i] = s[loc[2*i]:loc[2*i+1]]
		}
	}
	return toMatch(re, groups)
}

func toMatch(re *regexp.Regexp, groups []string) Match {
	m := Match{}
	for i, name := range re.SubexpNames() {
		if name != "" && groups[i] != "" {
			m[name] = groups[i]
		}
	}
	return m
}

// TaxonID extracts the numeric taxon id from a taxon link anywhere in s.
func TaxonID(s string) (int, bool) {
	m := Find(TaxonLink, s)
	if m == nil {
		return 0, false
	}
	id, err := strconv.Atoi(m["taxon_id"])
	if err != nil {
		return 0, false
	}
	return id, true
}

// IsObservationLink reports whether s, trimmed, is a single-observation
// link and nothing else.
func IsObservationLink(s string) bool {
	s = strings.TrimSpace(s)
	return !strings.ContainsAny(s, " \t\r\n") && FindPrefix(ObsLink, s) != nil
}
