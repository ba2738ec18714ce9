package query

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryString(t *testing.T) {
	d := func(y int, m time.Month, day int) *DateValue {
		return NewDate(time.Date(y, m, day, 15, 30, 0, 0, time.UTC))
	}

	tests := []struct {
		name string
		q    Query
		want string
	}{
		{"empty", Empty, ""},
		{
			name: "terms",
			q:    Query{Main: &TaxonQuery{Terms: []string{"song", "sparrow"}}},
			want: "song sparrow",
		},
		{
			name: "phrase",
			q: Query{Main: &TaxonQuery{
				Terms:   []string{"song sparrow"},
				Phrases: [][]string{{"song", "sparrow"}},
			}},
			want: `"song sparrow"`,
		},
		{
			name: "ancestor",
			q: Query{
				Main:     &TaxonQuery{Terms: []string{"prunella"}},
				Ancestor: &TaxonQuery{Terms: []string{"animals"}},
			},
			want: "prunella in animals",
		},
		{
			name: "ranks in ancestor",
			q: Query{
				Main:     &TaxonQuery{Ranks: []string{"species"}},
				Ancestor: &TaxonQuery{Terms: []string{"animals"}},
			},
			want: "species in animals",
		},
		{
			name: "options",
			q: Query{
				Main:    &TaxonQuery{Terms: []string{"birds"}},
				User:    "me",
				Options: []string{"popular", "sounds"},
			},
			want: "birds by me opt popular sounds",
		},
		{
			name: "controlled term",
			q: Query{
				Main:           &TaxonQuery{Terms: []string{"song", "sparrow"}},
				ControlledTerm: &ControlledTerm{Term: "sex", Value: "f"},
			},
			want: "song sparrow with sex f",
		},
		{
			name: "project",
			q: Query{
				Main:    &TaxonQuery{Terms: []string{"song", "sparrow"}},
				Project: "inat discord server",
			},
			want: "song sparrow in prj inat discord server",
		},
		{
			name: "who clauses in order",
			q: Query{
				Place:        "nova scotia",
				User:         "benarmstrong",
				IDBy:         "syntheticbee",
				UnobservedBy: "me",
				ExceptBy:     "kueda",
			},
			want: "from nova scotia by benarmstrong id by syntheticbee not by me except by kueda",
		},
		{
			name: "taxon id and code",
			q:    Query{Main: &TaxonQuery{TaxonID: 12345}, Per: "species"},
			want: "12345 per species",
		},
		{
			name: "code",
			q:    Query{Main: &TaxonQuery{Code: "WTSP"}},
			want: "WTSP",
		},
		{
			name: "dates",
			q: Query{
				Main:    &TaxonQuery{Terms: []string{"birds"}},
				ObsD1:   d(2021, time.June, 1),
				ObsD2:   d(2021, time.June, 30),
				AddedOn: AnyDate(),
			},
			want: "birds since 2021-06-01 until 2021-06-30 added on any",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.q.String())
		})
	}
}

func TestQueryIsEmpty(t *testing.T) {
	assert.True(t, Empty.IsEmpty())
	assert.True(t, Query{Main: &TaxonQuery{}}.IsEmpty())
	assert.False(t, Query{User: "me"}.IsEmpty())
	assert.False(t, Query{ObsOn: AnyDate()}.IsEmpty())
	assert.False(t, Query{Main: &TaxonQuery{Ranks: []string{"genus"}}}.IsEmpty())
}

func TestTaxonQueryIsAny(t *testing.T) {
	assert.True(t, (&TaxonQuery{Terms: []string{"any"}}).IsAny())
	assert.True(t, (&TaxonQuery{Terms: []string{"ANY"}}).IsAny())
	assert.False(t, (&TaxonQuery{Terms: []string{"any", "birds"}}).IsAny())
	assert.False(t, (*TaxonQuery)(nil).IsAny())
}

func TestDateValue(t *testing.T) {
	a := NewDate(time.Date(2021, time.June, 13, 23, 59, 0, 0, time.UTC))
	b := NewDate(time.Date(2021, time.June, 13, 1, 0, 0, 0, time.UTC))

	assert.Equal(t, "2021-06-13", a.String())
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(AnyDate()))
	assert.True(t, AnyDate().Equal(AnyDate()))
	assert.True(t, (*DateValue)(nil).Equal(nil))
	assert.Equal(t, "", (*DateValue)(nil).String())

	assert.Equal(t, "Jun 13, 2021", FormatDate(a))
	assert.Equal(t, "any date", FormatDate(AnyDate()))

	data, err := json.Marshal(Query{ObsOn: a})
	require.NoError(t, err)
	assert.JSONEq(t, `{"obs_on":"2021-06-13"}`, string(data))
}

func TestDateDescription(t *testing.T) {
	d1 := NewDate(time.Date(2021, time.June, 1, 0, 0, 0, 0, time.UTC))
	d2 := NewDate(time.Date(2021, time.June, 30, 0, 0, 0, 0, time.UTC))

	assert.Equal(t, "", Empty.DateDescription())
	assert.Equal(t, "observed since Jun 1, 2021 until Jun 30, 2021",
		Query{ObsD1: d1, ObsD2: d2}.DateDescription())
	assert.Equal(t, "observed on Jun 1, 2021 added until Jun 30, 2021",
		Query{ObsOn: d1, ObsD2: d2, AddedD2: d2}.DateDescription())
}

func TestOptionsMap(t *testing.T) {
	q := Query{Options: []string{"popular", "order=asc", "order_by=observed_on", "=bad", "order=desc"}}
	assert.Equal(t, map[string]string{
		"popular":  "true",
		"order":    "desc",
		"order_by": "observed_on",
	}, q.OptionsMap())
	assert.Nil(t, Empty.OptionsMap())
}
