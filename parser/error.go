package parser

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"github.com/dronefly-project/dronefly/errors"
)

// ErrorContext selects how a ParseError is rendered.
type ErrorContext string

const (
	ErrorContextTerminal ErrorContext = "terminal" // colored, multi-line (CLI)
	ErrorContextPlain    ErrorContext = "plain"    // one line plus suggestions (chat replies, logs)
)

// ErrorKind categorizes parser errors for programmatic handling
type ErrorKind string

const (
	ErrorKindMalformed  ErrorKind = "malformed"  // unbalanced quoting
	ErrorKindSyntax     ErrorKind = "syntax"     // unknown flag, missing argument
	ErrorKindConstraint ErrorKind = "constraint" // contradictory clauses
	ErrorKindTemporal   ErrorKind = "temporal"   // date expression not understood
)

// sentinel maps a kind to the error taxonomy used by callers.
// Temporal errors are syntax errors as far as callers are concerned.
func (k ErrorKind) sentinel() error {
	switch k {
	case ErrorKindMalformed:
		return errors.ErrMalformedInput
	case ErrorKindConstraint:
		return errors.ErrQueryConstraint
	default:
		return errors.ErrQuerySyntax
	}
}

// ParseError represents a structured parser error with metadata
type ParseError struct {
	Err         error     // Underlying error, always marked with the kind's sentinel
	Kind        ErrorKind // Error category
	Message     string    // Human-readable message
	Position    int       // Token position where error occurred, -1 if unknown
	TokenCount  int       // Total tokens being parsed
	Token       string    // Token that caused the error (optional)
	Suggestions []string  // Possible fixes
}

// Error returns the plain message; suggestions are exposed as hints.
func (e *ParseError) Error() string {
	return e.Message
}

// ErrorHint lets errors.GetAllHints and errors.UserMessage find the suggestions.
func (e *ParseError) ErrorHint() string {
	return strings.Join(e.Suggestions, "\n")
}

// Unwrap for errors.Is/As compatibility
func (e *ParseError) Unwrap() error {
	return e.Err
}

// FormatError generates context-appropriate error message
func (e *ParseError) FormatError(ctx ErrorContext) string {
	if ctx == ErrorContextPlain {
		return e.formatPlainError()
	}
	return e.formatTerminalError()
}

func (e *ParseError) formatPlainError() string {
	msg := e.Message
	if len(e.Suggestions) > 0 {
		msg += "\n" + strings.Join(e.Suggestions, "\n")
	}
	return msg
}

func (e *ParseError) formatTerminalError() string {
	var b strings.Builder
	b.WriteString(pterm.Red(e.Message))

	if e.Token != "" || (e.Position >= 0 && e.TokenCount > 0) {
		b.WriteString(fmt.Sprintf("\n\n%s", pterm.LightCyan("Context:")))
		if e.Position >= 0 && e.TokenCount > 0 {
			b.WriteString(fmt.Sprintf("\n  %s %d/%d", pterm.Yellow("Position:"), e.Position, e.TokenCount))
		}
		if e.Token != "" {
			b.WriteString(fmt.Sprintf("\n  %s '%s'", pterm.Yellow("Token:"), e.Token))
		}
	}

	if len(e.Suggestions) > 0 {
		b.WriteString(fmt.Sprintf("\n\n%s", pterm.Green("Suggestions:")))
		for _, suggestion := range e.Suggestions {
			b.WriteString(fmt.Sprintf("\n  • %s", suggestion))
		}
	}
	return b.String()
}

// NewParseError creates a new ParseError with the given kind and message
func NewParseError(kind ErrorKind, message string) *ParseError {
	return &ParseError{
		Err:      kind.sentinel(),
		Kind:     kind,
		Message:  message,
		Position: -1,
	}
}

// WithPosition sets the token position where the error occurred
func (e *ParseError) WithPosition(pos int, total int) *ParseError {
	e.Position = pos
	e.TokenCount = total
	return e
}

// WithToken sets the token that caused the error
func (e *ParseError) WithToken(token string) *ParseError {
	e.Token = token
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *ParseError) WithSuggestion(suggestion string) *ParseError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// WithUnderlying sets the underlying error, keeping the kind's sentinel mark
func (e *ParseError) WithUnderlying(err error) *ParseError {
	e.Err = errors.Mark(err, e.Kind.sentinel())
	return e
}
