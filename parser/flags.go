package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/kballard/go-shellquote"

	"github.com/dronefly-project/dronefly/inaturl"
	"github.com/dronefly-project/dronefly/query"
	"github.com/dronefly-project/dronefly/taxon"
)

// parseFlags builds a Query from the normalized "--flag words..." stream.
//
// Every flag takes one or more words, up to the next flag. rank and opt
// accumulate over repeated flags; any other repeated flag keeps its last
// value.
func parseFlags(tokens []token) (query.Query, error) {
	args := make(map[string][]token)
	var ranks, opts []string

	for i := 0; i < len(tokens); {
		tok := tokens[i]
		if !isFlagToken(tok) {
			return query.Empty, NewParseError(ErrorKindSyntax, fmt.Sprintf("Unexpected `%s`.", tok.value)).
				WithPosition(i, len(tokens)).
				WithToken(tok.value)
		}
		name := strings.ToLower(strings.TrimPrefix(tok.value, "--"))
		if !knownFlags[name] {
			return query.Empty, NewParseError(ErrorKindSyntax, fmt.Sprintf("Unknown option: `%s`", tok.value)).
				WithPosition(i, len(tokens)).
				WithToken(tok.value).
				WithSuggestion("Options are: " + strings.Join(flagDisplayNames(), ", ") + ".")
		}

		j := i + 1
		for j < len(tokens) && !isFlagToken(tokens[j]) {
			j++
		}
		values := tokens[i+1 : j]
		if len(values) == 0 {
			return query.Empty, NewParseError(ErrorKindSyntax,
				fmt.Sprintf("Missing value for `%s`.", displayName(name))).
				WithPosition(i, len(tokens)).
				WithToken(tok.value)
		}

		switch name {
		case flagRank:
			parsed, err := parseRanks(values)
			if err != nil {
				return query.Empty, err.WithPosition(i, len(tokens))
			}
			ranks = append(ranks, parsed...)
		case flagOpt:
			opts = append(opts, tokenValues(values)...)
		default:
			args[name] = values
		}
		i = j
	}

	return buildQuery(args, ranks, opts)
}

func buildQuery(args map[string][]token, ranks, opts []string) (query.Query, error) {
	var q query.Query

	of, hasOf := args[flagOf]
	in, hasIn := args[flagIn]
	if hasOf || len(ranks) > 0 {
		main := detectTaxon(of)
		main.Ranks = ranks
		if main.TaxonID != 0 {
			if len(ranks) > 0 {
				return query.Empty, NewParseError(ErrorKindConstraint,
					"Taxon IDs are unique. Retry without any ranks: `sp`, `genus`, etc.")
			}
			if hasIn {
				return query.Empty, NewParseError(ErrorKindConstraint,
					"Taxon IDs are unique. Retry without `in <taxon2>`.")
			}
		}
		q.Main = main
	}
	if hasIn {
		if q.Main == nil {
			return query.Empty, NewParseError(ErrorKindConstraint,
				"Missing `<ranks>` or `<taxon1>` for `in <taxon2>` search.").
				WithSuggestion("Say what to look for in it, e.g. `sp in " + joinValues(in) + "`.")
		}
		if ancestor := detectTaxon(in); !ancestor.IsEmpty() {
			q.Ancestor = ancestor
		}
	}

	if with, ok := args[flagWith]; ok {
		q.ControlledTerm = &query.ControlledTerm{
			Term:  with[0].value,
			Value: joinValues(with[1:]),
		}
	}

	q.User = joinValues(args[flagBy])
	q.Place = joinValues(args[flagFrom])
	q.UnobservedBy = joinValues(args[flagNotBy])
	q.ExceptBy = joinValues(args[flagExceptBy])
	q.IDBy = joinValues(args[flagIDBy])
	q.Per = joinValues(args[flagPer])
	q.Project = joinValues(args[flagInPrj])
	q.Options = opts

	dates := []struct {
		flag   string
		prefer dayPreference
		field  **query.DateValue
	}{
		{flagSince, preferFirstDay, &q.ObsD1},
		{flagUntil, preferLastDay, &q.ObsD2},
		{flagOn, preferCurrentDay, &q.ObsOn},
		{flagAddedSince, preferFirstDay, &q.AddedD1},
		{flagAddedUntil, preferLastDay, &q.AddedD2},
		{flagAddedOn, preferCurrentDay, &q.AddedOn},
	}
	for _, d := range dates {
		values, ok := args[d.flag]
		if !ok {
			continue
		}
		date, err := parseDate(joinValues(values), d.prefer)
		if err != nil {
			return query.Empty, err
		}
		*d.field = date
	}

	if q.IsEmpty() {
		return query.Empty, nil
	}
	return q, nil
}

// parseRanks resolves each comma- or space-separated rank keyword to its
// canonical rank name.
func parseRanks(values []token) ([]string, *ParseError) {
	var ranks []string
	for _, v := range values {
		for _, word := range strings.Split(v.value, ",") {
			word = strings.TrimSpace(word)
			if word == "" {
				continue
			}
			rank, ok := taxon.CanonicalRank(word)
			if !ok {
				return nil, NewParseError(ErrorKindSyntax, fmt.Sprintf("Unknown rank: `%s`", word)).
					WithToken(word).
					WithSuggestion("Use a rank like `species`, `genus`, `family`, or an abbreviation like `sp` or `ssp`.")
			}
			ranks = append(ranks, rank)
		}
	}
	return ranks, nil
}

// detectTaxon turns the words of a taxon argument into a TaxonQuery.
//
// A single numeric term is a taxon id, a single four-letter term is a code,
// and a single taxon link is the id in the link. Otherwise the words are
// terms, with each quoted phrase kept together as one term.
func detectTaxon(values []token) *query.TaxonQuery {
	tq := &query.TaxonQuery{}
	if len(values) == 0 {
		return tq
	}

	var phrases [][]string
	for _, v := range values {
		if v.quoted {
			phrases = append(phrases, strings.Fields(strings.Trim(v.value, `"`)))
		}
	}
	terms := splitTerms(values)

	if len(phrases) == 0 && len(terms) == 1 {
		term := terms[0]
		if id, ok := numericID(term); ok {
			tq.TaxonID = id
			return tq
		}
		if isCode(term) {
			tq.Code = strings.ToUpper(term)
			return tq
		}
		if id, ok := inaturl.TaxonID(term); ok {
			tq.TaxonID = id
			return tq
		}
	}

	tq.Terms = terms
	tq.Phrases = phrases
	return tq
}

// splitTerms strips the quotes from the taxon words. Only the quotes that
// enclose a whole word group it; any other quote or apostrophe is literal.
func splitTerms(values []token) []string {
	escaper := strings.NewReplacer(`\`, `\\`, `'`, `\'`, `"`, `\"`)
	quotedEscaper := strings.NewReplacer(`\`, `\\`)
	words := make([]string, len(values))
	for i, v := range values {
		if v.quoted {
			inner := strings.TrimSuffix(strings.TrimPrefix(v.value, `"`), `"`)
			words[i] = `"` + quotedEscaper.Replace(inner) + `"`
		} else {
			words[i] = escaper.Replace(v.value)
		}
	}
	terms, err := shellquote.Split(strings.Join(words, " "))
	if err != nil {
		// Unreachable for tokenized input; fall back to the words as given.
		return tokenValues(values)
	}
	return terms
}

func numericID(s string) (int, bool) {
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	id, err := strconv.Atoi(s)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func isCode(s string) bool {
	runes := []rune(s)
	if len(runes) != 4 {
		return false
	}
	for _, r := range runes {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func joinValues(values []token) string {
	return strings.Join(tokenValues(values), " ")
}

func displayName(flag string) string {
	return strings.ReplaceAll(flag, "-", " ")
}

func flagDisplayNames() []string {
	names := make([]string, len(Flags))
	for i, f := range Flags {
		names[i] = "`" + displayName(f) + "`"
	}
	return names
}
