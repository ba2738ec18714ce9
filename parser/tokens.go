package parser

import (
	"strings"
)

// token is one whitespace-delimited word of the input. A word that starts
// with a double quote runs to the matching quote and keeps its quotes, so
// quoted content is never mistaken for a flag, rank, or macro.
type token struct {
	value  string
	quoted bool
}

// tokenize splits text on whitespace, keeping double-quoted runs together.
// A quote inside a word is literal. An unterminated quote is a malformed-input
// error.
func tokenize(text string) ([]token, error) {
	var tokens []token
	runes := []rune(text)
	for i := 0; i < len(runes); {
		if isSpace(runes[i]) {
			i++
			continue
		}
		if runes[i] == '"' {
			end := -1
			for j := i + 1; j < len(runes); j++ {
				if runes[j] == '"' {
					end = j
					break
				}
			}
			if end < 0 {
				return nil, NewParseError(ErrorKindMalformed, "No closing quotation").
					WithPosition(len(tokens), len(tokens)+1).
					WithToken(string(runes[i:])).
					WithSuggestion("Put a `\"` at the end of the quoted phrase.")
			}
			tokens = append(tokens, token{value: string(runes[i : end+1]), quoted: true})
			i = end + 1
			continue
		}
		j := i
		for j < len(runes) && !isSpace(runes[j]) {
			j++
		}
		tokens = append(tokens, token{value: string(runes[i:j])})
		i = j
	}
	return tokens, nil
}

func isSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// idioms maps the first word of a two-word idiom and the word following it
// to the single hyphenated flag they stand for.
var idioms = map[string]map[string]string{
	"not":    {"by": "not-by"},
	"id":     {"by": "id-by"},
	"except": {"by": "except-by"},
	"in":     {"prj": "in-prj"},
	"added":  {"since": "added-since", "until": "added-until", "on": "added-on"},
}

// joinedIdioms are the same idioms typed without the space.
var joinedIdioms = map[string]string{
	"notby":      "not-by",
	"idby":       "id-by",
	"exceptby":   "except-by",
	"inprj":      "in-prj",
	"addedsince": "added-since",
	"addeduntil": "added-until",
	"addedon":    "added-on",
}

// rewriteIdioms joins idioms like "not by" into the single word "not-by".
// Only unquoted words take part.
func rewriteIdioms(tokens []token) []token {
	out := make([]token, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]
		if tok.quoted {
			out = append(out, tok)
			continue
		}
		lower := strings.ToLower(tok.value)
		if joined, ok := joinedIdioms[lower]; ok {
			out = append(out, token{value: joined})
			continue
		}
		if next, ok := idioms[lower]; ok && i+1 < len(tokens) && !tokens[i+1].quoted {
			if joined, ok := next[strings.ToLower(tokens[i+1].value)]; ok {
				out = append(out, token{value: joined})
				i++
				continue
			}
		}
		out = append(out, tok)
	}
	return out
}

func tokenValues(tokens []token) []string {
	values := make([]string, len(tokens))
	for i, tok := range tokens {
		values[i] = tok.value
	}
	return values
}
