package inaturl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaxonID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		id   int
		ok   bool
	}{
		{"main site", "https://www.inaturalist.org/taxa/1-Animalia", 1, true},
		{"bare host", "http://inaturalist.org/taxa/12345", 12345, true},
		{"partner subdomain", "https://uk.inaturalist.org/taxa/3", 3, true},
		{"partner tld", "https://www.naturalista.mx/taxa/47126-Plantae", 47126, true},
		{"partner domain", "https://inaturalist.laji.fi/taxa/9", 9, true},
		{"upper case", "HTTPS://WWW.INATURALIST.ORG/taxa/42", 42, true},
		{"in text", "see [Birds](https://www.inaturalist.org/taxa/3-Aves) here", 3, true},
		{"foreign site", "https://example.com/taxa/3", 0, false},
		{"observation", "https://www.inaturalist.org/observations/3", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := TaxonID(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.id, id)
		})
	}
}

func TestObsLink(t *testing.T) {
	assert.True(t, IsObservationLink("https://www.inaturalist.org/observations/123456"))
	assert.True(t, IsObservationLink("  https://argentinat.org/observations/99\n"))
	assert.False(t, IsObservationLink("look: https://argentinat.org/observations/99"))
	assert.False(t, IsObservationLink("https://www.inaturalist.org/observations/5 birds"))
	assert.False(t, IsObservationLink("https://www.inaturalist.org/observations?taxon_id=3"))
	assert.False(t, IsObservationLink("birds by me"))

	m := Find(ObsLink, "https://www.inaturalist.org/observations/123456")
	require.NotNil(t, m)
	assert.Equal(t, "123456", m["obs_id"])
}

func TestObsTaxonLink(t *testing.T) {
	m := Find(ObsTaxonLink, "https://www.inaturalist.org/observations?taxon_id=3&place_id=6803&user_id=545640")
	require.NotNil(t, m)
	assert.Equal(t, "3", m["taxon_id"])
	assert.Equal(t, "6803", m["place_id"])
	assert.Equal(t, "545640", m["user_id"])

	m = Find(ObsTaxonLink, "https://www.inaturalist.org/observations?taxon_id=3")
	require.NotNil(t, m)
	assert.NotContains(t, m, "place_id")
}

func TestObsQueryPrefix(t *testing.T) {
	url := "https://www.inaturalist.org/observations?taxon_id=3&user_id=99"
	m := FindPrefix(ObsQuery, url)
	require.NotNil(t, m)
	assert.Equal(t, url, m["url"])

	assert.Nil(t, FindPrefix(ObsQuery, "see "+url))
	assert.Nil(t, FindPrefix(ObsQuery, "https://www.inaturalist.org/taxa/3"))
}

func TestMarkdownLink(t *testing.T) {
	m := Find(MarkdownLink, "[12 (3)](https://www.inaturalist.org/observations?user_id=1) and [x](y)")
	require.NotNil(t, m)
	assert.Equal(t, "https://www.inaturalist.org/observations?user_id=1", m["url"])
}

func TestEntityLinks(t *testing.T) {
	m := Find(PlaceLink, "https://www.inaturalist.org/places/nova-scotia")
	require.NotNil(t, m)
	assert.Equal(t, "nova-scotia", m["place_slug"])

	m = Find(ProjectLink, "https://www.inaturalist.org/projects/12345")
	require.NotNil(t, m)
	assert.Equal(t, "12345", m["project_id"])

	m = Find(UserLink, "https://www.inaturalist.org/people/benarmstrong")
	require.NotNil(t, m)
	assert.Equal(t, "benarmstrong", m["login"])

	m = Find(UserLink, "https://www.inaturalist.org/users/545640")
	require.NotNil(t, m)
	assert.Equal(t, "545640", m["user_id"])
}

func TestStaticURL(t *testing.T) {
	assert.True(t, StaticURL.MatchString("https://inaturalist-open-data.s3.amazonaws.com/photos/222/square.jpg"))
	assert.False(t, StaticURL.MatchString("https://www.inaturalist.org/photos/222"))
}
