package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dronefly-project/dronefly/errors"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"implicit of", "song sparrow", "--of song sparrow"},
		{"flag words", "birds by me from home", "--of birds --by me --from home"},
		{"of after other flags", "by benarmstrong of birds", "--by benarmstrong --of birds"},
		{"of only once", "birds of paradise", "--of birds of paradise"},
		{"macro options appended", "rg birds", "--of birds --opt quality_grade=research"},
		{"macro options joined with explicit opt", "reverse birds opt popular", "--of birds --opt order=asc popular"},
		{"macro suppressed after flag", "birds from home", "--of birds --from home"},
		{"macro allowed after argument", "birds by me rg", "--of birds --by me --opt quality_grade=research"},
		{"explicit flag discards macro", "my birds by kueda", "--of birds --by kueda"},
		{"macros combine", "my unseen birds", "--of birds --by me --not-by me --from home"},
		{"rank keywords collected", "sp birds", "--of birds --rank sp"},
		{"rank keywords joined with explicit rank", "sp --rank genus", "--rank sp genus"},
		{"rank keyword inside place is literal", "birds from species creek", "--of birds --from species creek"},
		{"idioms", "birds not by me added since may", "--of birds --not-by me --added-since may"},
		{"idioms are case-insensitive", "birds Not By me IN PRJ x", "--of birds --not-by me --in-prj x"},
		{"quoted idiom is literal", `"not by" birds`, `--of "not by" birds`},
		{"quoted keyword is literal", `"rg" "sp"`, `--of "rg" "sp"`},
		{"explicit marker", "--of birds --by me", "--of birds --by me"},
		{"macro taxon", "inverts", "--opt without_taxon_id=355675 --of animalia"},
		{"observation link unchanged", "https://www.inaturalist.org/observations/1234", "https://www.inaturalist.org/observations/1234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeMalformed(t *testing.T) {
	_, err := Normalize(`birds from "nova scotia`)
	require.Error(t, err)
	assert.True(t, errors.IsMalformedInput(err))
	assert.False(t, errors.IsQuerySyntax(err))
}

func TestTokenize(t *testing.T) {
	tokens, err := tokenize(`  a "b c"  d"e f`)
	require.NoError(t, err)
	assert.Equal(t, []token{
		{value: "a"},
		{value: `"b c"`, quoted: true},
		{value: `d"e`},
		{value: "f"},
	}, tokens)

	_, err = tokenize(`a "b`)
	require.Error(t, err)
}

func TestRewriteIdioms(t *testing.T) {
	in := []token{{value: "id"}, {value: "by"}, {value: "added"}, {value: "until"}, {value: "not"}, {value: `"by"`, quoted: true}, {value: "addedOn"}}
	assert.Equal(t, []string{"id-by", "added-until", "not", `"by"`, "added-on"}, tokenValues(rewriteIdioms(in)))
}

func TestMacroTable(t *testing.T) {
	m, ok := ExpandMacro("RG")
	require.True(t, ok)
	assert.Equal(t, []string{"quality_grade=research"}, m.Opt)
	assert.Equal(t, "opt quality_grade=research", m.String())

	_, ok = ExpandMacro("birds")
	assert.False(t, ok)

	// spp and species are rank keywords, not macros.
	_, ok = ExpandMacro("spp")
	assert.False(t, ok)

	table := DefaultMacros.With(map[string]Macro{"Empty": {}})
	_, ok = table.Expand("empty")
	assert.False(t, ok)
	assert.Contains(t, table.Names(), "unseen")
	assert.Equal(t, "not by me from home", DefaultMacros["unseen"].String())
}
