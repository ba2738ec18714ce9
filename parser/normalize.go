package parser

import (
	"strings"

	"github.com/dronefly-project/dronefly/inaturl"
	"github.com/dronefly-project/dronefly/taxon"
)

// Flag names accepted by the flag grammar, written without the "--" marker.
const (
	flagOf         = "of"
	flagIn         = "in"
	flagBy         = "by"
	flagNotBy      = "not-by"
	flagExceptBy   = "except-by"
	flagIDBy       = "id-by"
	flagFrom       = "from"
	flagRank       = "rank"
	flagWith       = "with"
	flagPer        = "per"
	flagOpt        = "opt"
	flagInPrj      = "in-prj"
	flagSince      = "since"
	flagUntil      = "until"
	flagOn         = "on"
	flagAddedSince = "added-since"
	flagAddedUntil = "added-until"
	flagAddedOn    = "added-on"
)

// Flags lists every flag name in canonical clause order.
var Flags = []string{
	flagOf, flagIn, flagFrom, flagInPrj, flagBy, flagIDBy, flagNotBy, flagExceptBy,
	flagWith, flagPer, flagOpt, flagRank,
	flagSince, flagUntil, flagOn, flagAddedSince, flagAddedUntil, flagAddedOn,
}

var knownFlags = func() map[string]bool {
	m := make(map[string]bool, len(Flags))
	for _, f := range Flags {
		m[f] = true
	}
	return m
}()

// normalizer holds the state of one left-to-right walk over the tokens.
type normalizer struct {
	macros MacroTable
	out    []token

	opts  []string
	ranks []string

	macroOf    string
	macroBy    string
	macroNotBy string
	macroFrom  string
	macroPer   string

	suppressMacro bool
	argCount      int
	ofSeen        bool
	currentFlag   string
}

// Normalize rewrites natural query text into the explicit flag form parsed
// by the flag grammar, e.g. "rg birds by me" becomes
// "--of birds --by me --opt quality_grade=research".
//
// An observation link is returned unchanged: links are not queries.
func Normalize(text string) (string, error) {
	return defaultParser.Normalize(text)
}

// Normalize rewrites text into flag form using p's macro table.
func (p *Parser) Normalize(text string) (string, error) {
	if inaturl.IsObservationLink(text) {
		return text, nil
	}
	tokens, err := p.normalize(text)
	if err != nil {
		return "", err
	}
	return strings.Join(tokenValues(tokens), " "), nil
}

func (p *Parser) normalize(text string) ([]token, error) {
	tokens, err := tokenize(text)
	if err != nil {
		return nil, err
	}
	n := &normalizer{macros: p.macros}
	for _, tok := range rewriteIdioms(tokens) {
		n.walk(tok)
	}
	return n.finish(), nil
}

// flagName returns the flag a word stands for, if any. The bare word "of"
// is a flag only until the taxon argument has started.
func (n *normalizer) flagName(tok token) (string, bool) {
	if tok.quoted {
		return "", false
	}
	lower := strings.ToLower(tok.value)
	if strings.HasPrefix(lower, "--") {
		return lower[2:], true
	}
	if knownFlags[lower] && !(lower == flagOf && n.ofSeen) {
		return lower, true
	}
	return "", false
}

// rankContext reports whether a bare rank keyword at this point filters the
// main taxon rather than being part of a free-text value like a place name.
func (n *normalizer) rankContext() bool {
	switch n.currentFlag {
	case "", flagOf, flagIn, flagRank:
		return true
	}
	return false
}

func (n *normalizer) walk(tok token) {
	name, isFlag := n.flagName(tok)
	argumentExpected := false

	if isFlag {
		tok = token{value: "--" + name}
		n.argCount++
		argumentExpected = true
		n.currentFlag = name
		if name == flagOf {
			n.ofSeen = true
			n.suppressMacro = false
		} else {
			n.suppressMacro = true
		}
		// Collected values go at the head of an explicit accumulating flag so
		// "reverse birds opt observed_on=2021-06-13" keeps both options.
		if name == flagOpt && len(n.opts) > 0 {
			n.emit("--" + flagOpt)
			n.emit(n.opts...)
			n.opts = nil
			return
		}
		if name == flagRank && len(n.ranks) > 0 {
			n.emit("--" + flagRank)
			n.emit(n.ranks...)
			n.ranks = nil
			return
		}
		// An explicit flag supersedes any earlier macro value of its kind.
		switch name {
		case flagOf:
			n.macroOf = ""
		case flagBy:
			n.macroBy = ""
		case flagNotBy:
			n.macroNotBy = ""
		case flagFrom:
			n.macroFrom = ""
		case flagPer:
			n.macroPer = ""
		}
	}

	if !isFlag && !tok.quoted && !n.suppressMacro {
		lower := strings.ToLower(tok.value)
		if n.rankContext() && taxon.IsRankKeyword(lower) {
			n.ranks = append(n.ranks, lower)
			return
		}
		if macro, ok := n.macros.Expand(lower); ok {
			n.collect(macro)
			return
		}
	}

	// Plain words before any flag are the first words of the taxon.
	if n.argCount == 0 {
		n.argCount++
		n.emit("--" + flagOf)
		n.macroOf = ""
		n.ofSeen = true
		n.currentFlag = flagOf
	}
	n.out = append(n.out, tok)
	if !argumentExpected {
		n.suppressMacro = false
	}
}

// collect records a macro expansion. Only one user, place, or taxon can be
// given, so a later macro value of the same kind replaces an earlier one.
func (n *normalizer) collect(macro Macro) {
	n.opts = append(n.opts, macro.Opt...)
	if macro.By != "" {
		n.macroBy = macro.By
	}
	if macro.NotBy != "" {
		n.macroNotBy = macro.NotBy
	}
	if macro.From != "" {
		n.macroFrom = macro.From
	}
	if macro.Per != "" {
		n.macroPer = macro.Per
	}
	if macro.Of != "" {
		n.macroOf = macro.Of
	}
}

func (n *normalizer) emit(values ...string) {
	for _, v := range values {
		n.out = append(n.out, token{value: v})
	}
}

func (n *normalizer) finish() []token {
	if len(n.opts) > 0 {
		n.emit("--" + flagOpt)
		n.emit(n.opts...)
	}
	if len(n.ranks) > 0 {
		n.emit("--" + flagRank)
		n.emit(n.ranks...)
	}
	pending := []struct{ flag, value string }{
		{flagBy, n.macroBy},
		{flagNotBy, n.macroNotBy},
		{flagFrom, n.macroFrom},
		{flagPer, n.macroPer},
		{flagOf, n.macroOf},
	}
	for _, p := range pending {
		if p.value != "" {
			n.emit("--"+p.flag, p.value)
		}
	}
	if len(n.out) > 0 && !isFlagToken(n.out[0]) {
		n.out = append([]token{{value: "--" + flagOf}}, n.out...)
	}
	return n.out
}

func isFlagToken(tok token) bool {
	return !tok.quoted && strings.HasPrefix(tok.value, "--")
}
