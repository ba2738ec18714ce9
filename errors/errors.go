// Package errors provides error handling for dronefly.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - User-facing hints that survive wrapping
//
// Query errors come in three kinds, each with a sentinel that callers match
// with errors.Is:
//
//	ErrMalformedInput   unbalanced quoting; "your query could not be parsed"
//	ErrQuerySyntax      unknown flag, missing flag argument, bad date
//	ErrQueryConstraint  valid syntax that contradicts itself (ranks with an id)
//
// None of them are retryable and none are fatal to the host process.
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
	Mark         = crdb.Mark
)

// User-facing messages and details
var (
	WithHint      = crdb.WithHint
	WithHintf     = crdb.WithHintf
	WithDetail    = crdb.WithDetail
	WithDetailf   = crdb.WithDetailf
	GetAllHints   = crdb.GetAllHints
	FlattenHints  = crdb.FlattenHints
	GetAllDetails = crdb.GetAllDetails
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

// Sentinels for the query error taxonomy.
var (
	// ErrMalformedInput indicates the raw text could not be tokenized
	ErrMalformedInput = New("malformed input")

	// ErrQuerySyntax indicates an unrecognized flag or a flag without its value
	ErrQuerySyntax = New("query syntax error")

	// ErrQueryConstraint indicates a syntactically valid but contradictory query
	ErrQueryConstraint = New("query constraint error")
)

// IsMalformedInput checks if an error is or wraps ErrMalformedInput
func IsMalformedInput(err error) bool {
	return err != nil && Is(err, ErrMalformedInput)
}

// IsQuerySyntax checks if an error is or wraps ErrQuerySyntax
func IsQuerySyntax(err error) bool {
	return err != nil && Is(err, ErrQuerySyntax)
}

// IsQueryConstraint checks if an error is or wraps ErrQueryConstraint
func IsQueryConstraint(err error) bool {
	return err != nil && Is(err, ErrQueryConstraint)
}

// IsQueryError reports whether err belongs to any of the three query error kinds.
func IsQueryError(err error) bool {
	return err != nil && IsAny(err, ErrMalformedInput, ErrQuerySyntax, ErrQueryConstraint)
}

// NewMalformedInputf creates an error marked as ErrMalformedInput
func NewMalformedInputf(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrMalformedInput)
}

// NewQuerySyntaxf creates an error marked as ErrQuerySyntax
func NewQuerySyntaxf(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrQuerySyntax)
}

// NewQueryConstraintf creates an error marked as ErrQueryConstraint
func NewQueryConstraintf(format string, args ...interface{}) error {
	return Mark(Newf(format, args...), ErrQueryConstraint)
}

// UserMessage returns the text to show an end user for a query error: the
// message followed by any hints, one per line.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if hints := FlattenHints(err); hints != "" {
		msg += "\n" + hints
	}
	return msg
}
