package parser

import (
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dronefly-project/dronefly/errors"
)

func TestParseErrorFormatting(t *testing.T) {
	pterm.DisableColor()
	defer pterm.EnableColor()

	err := NewParseError(ErrorKindSyntax, "Unknown option: `--bogus`").
		WithPosition(2, 4).
		WithToken("--bogus").
		WithSuggestion("Use `by` or `from`.")

	assert.Equal(t, "Unknown option: `--bogus`", err.Error())
	assert.Equal(t, "Unknown option: `--bogus`\nUse `by` or `from`.", err.FormatError(ErrorContextPlain))

	terminal := err.FormatError(ErrorContextTerminal)
	assert.Contains(t, terminal, "Position: 2/4")
	assert.Contains(t, terminal, "Token: '--bogus'")
	assert.Contains(t, terminal, "Suggestions:")
}

func TestParseErrorKinds(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		is   error
	}{
		{ErrorKindMalformed, errors.ErrMalformedInput},
		{ErrorKindSyntax, errors.ErrQuerySyntax},
		{ErrorKindTemporal, errors.ErrQuerySyntax},
		{ErrorKindConstraint, errors.ErrQueryConstraint},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			err := error(NewParseError(tt.kind, "boom"))
			assert.True(t, errors.Is(err, tt.is))
			assert.True(t, errors.IsQueryError(err))
		})
	}
}

func TestParseErrorHintsSurviveWrapping(t *testing.T) {
	var err error = NewParseError(ErrorKindConstraint, "Taxon IDs are unique.").
		WithSuggestion("Retry without any ranks.")
	wrapped := errors.Wrap(err, "refine")

	assert.True(t, errors.IsQueryConstraint(wrapped))
	assert.Equal(t, []string{"Retry without any ranks."}, errors.GetAllHints(wrapped))

	var pe *ParseError
	require.True(t, errors.As(wrapped, &pe))
	assert.Equal(t, ErrorKindConstraint, pe.Kind)
}

func TestParseErrorUnderlying(t *testing.T) {
	cause := errors.New("bad month")
	err := NewParseError(ErrorKindTemporal, "Date not understood").WithUnderlying(cause)
	assert.True(t, errors.Is(err, errors.ErrQuerySyntax))
	assert.True(t, errors.Is(err, cause))
}
