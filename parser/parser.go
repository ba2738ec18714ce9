// Package parser turns natural query text into a query.Query.
//
// Parsing happens in two steps. Normalize rewrites the natural form
// ("rg birds by me from home") into an explicit flag form
// ("--of birds --by me --from home --opt quality_grade=research"), expanding
// macros, collecting bare rank keywords, and inserting the implicit taxon
// flag. The flag grammar then fills in the Query fields and validates them.
//
// A Parser holds no mutable state and is safe for concurrent use.
package parser

import (
	"fmt"

	"github.com/dronefly-project/dronefly/errors"
	"github.com/dronefly-project/dronefly/inaturl"
	"github.com/dronefly-project/dronefly/logger"
	"github.com/dronefly-project/dronefly/query"
)

// Parser parses query text using a macro table.
type Parser struct {
	macros MacroTable
}

// Option configures a Parser.
type Option func(*Parser)

// WithMacros adds or replaces macros on top of DefaultMacros.
func WithMacros(extra map[string]Macro) Option {
	return func(p *Parser) {
		p.macros = p.macros.With(extra)
	}
}

// New creates a Parser with the default macros and the given options.
func New(opts ...Option) *Parser {
	p := &Parser{macros: DefaultMacros.With(nil)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var defaultParser = New()

// Macros returns the parser's macro table. Callers must not modify it.
func (p *Parser) Macros() MacroTable {
	return p.macros
}

// Parse parses natural query text with the default macros.
func Parse(text string) (query.Query, error) {
	return defaultParser.Parse(text)
}

// Parse parses natural query text. Text with no clauses yields query.Empty.
//
// Errors are *ParseError values marked with errors.ErrMalformedInput,
// errors.ErrQuerySyntax, or errors.ErrQueryConstraint.
func (p *Parser) Parse(text string) (query.Query, error) {
	log := logger.ComponentLogger("parser")

	if inaturl.IsObservationLink(text) {
		return query.Empty, NewParseError(ErrorKindSyntax, "An observation link is not a query.").
			WithToken(text).
			WithSuggestion("Paste the link by itself to show the observation.")
	}

	tokens, err := p.normalize(text)
	if err != nil {
		log.Debugw("query not tokenized", logger.FieldQuery, text, logger.FieldError, err)
		return query.Empty, err
	}
	if len(tokens) == 0 {
		return query.Empty, nil
	}

	q, err := parseFlags(tokens)
	if err != nil {
		log.Debugw("query rejected",
			logger.FieldQuery, text,
			logger.FieldErrorKind, errorKind(err),
			logger.FieldError, err)
		return query.Empty, err
	}
	log.Debugw("query parsed", logger.FieldQuery, text, logger.FieldCanonical, q.String())
	return q, nil
}

// Resolve parses raw text or passes a structured query through.
func Resolve(in query.Input) (query.Query, error) {
	return defaultParser.Resolve(in)
}

// Resolve turns either shape of query input into a Query.
func (p *Parser) Resolve(in query.Input) (query.Query, error) {
	switch v := in.(type) {
	case query.RawText:
		return p.Parse(string(v))
	case query.Structured:
		return v.Query, nil
	case nil:
		return query.Empty, nil
	default:
		return query.Empty, errors.Newf("unsupported query input %T", in)
	}
}

func errorKind(err error) string {
	var pe *ParseError
	if errors.As(err, &pe) {
		return string(pe.Kind)
	}
	return fmt.Sprintf("%T", err)
}
