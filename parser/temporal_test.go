package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dronefly-project/dronefly/errors"
)

func TestParseDate(t *testing.T) {
	// Mock time for deterministic testing
	mockNow := time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC) // Saturday
	originalTimeNow := timeNow
	timeNow = func() time.Time { return mockNow }
	defer func() { timeNow = originalTimeNow }()

	tests := []struct {
		name   string
		expr   string
		prefer dayPreference
		want   string
	}{
		{"today", "today", preferCurrentDay, "2024-06-15"},
		{"now", "Now", preferCurrentDay, "2024-06-15"},
		{"yesterday", "yesterday", preferCurrentDay, "2024-06-14"},
		{"last week", "last week", preferCurrentDay, "2024-06-08"},
		{"last month", "last month", preferCurrentDay, "2024-05-15"},
		{"last year", "last year", preferCurrentDay, "2023-06-15"},
		{"days ago", "3 days ago", preferCurrentDay, "2024-06-12"},
		{"a week ago", "a week ago", preferCurrentDay, "2024-06-08"},
		{"months ago", "2 months ago", preferCurrentDay, "2024-04-15"},
		{"weekday is today", "saturday", preferCurrentDay, "2024-06-15"},
		{"weekday", "friday", preferCurrentDay, "2024-06-14"},
		{"last weekday", "last saturday", preferCurrentDay, "2024-06-08"},
		{"month first", "march", preferFirstDay, "2024-03-01"},
		{"month last", "feb", preferLastDay, "2024-02-29"},
		{"month current day", "april", preferCurrentDay, "2024-04-15"},
		{"future month is last year", "december", preferFirstDay, "2023-12-01"},
		{"month and day", "june 13", preferCurrentDay, "2024-06-13"},
		{"future day is last year", "june 20", preferCurrentDay, "2023-06-20"},
		{"day and month", "13th june", preferCurrentDay, "2024-06-13"},
		{"month and year", "june 2021", preferLastDay, "2021-06-30"},
		{"full date with comma", "June 13, 2021", preferCurrentDay, "2021-06-13"},
		{"year first", "2021", preferFirstDay, "2021-01-01"},
		{"year last", "2021", preferLastDay, "2021-12-31"},
		{"iso", "2021-06-13", preferCurrentDay, "2021-06-13"},
		{"us", "6/13/2021", preferCurrentDay, "2021-06-13"},
		{"numeric month and day", "6/13", preferCurrentDay, "2024-06-13"},
		{"numeric future day is last year", "12/25", preferCurrentDay, "2023-12-25"},
		{"leap day", "feb 29", preferCurrentDay, "2024-02-29"},
		{"any", "ANY", preferFirstDay, "any"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDate(tt.expr, tt.prefer)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseDateWithoutYear(t *testing.T) {
	originalTimeNow := timeNow
	timeNow = func() time.Time { return time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC) }
	defer func() { timeNow = originalTimeNow }()

	tests := []struct {
		expr string
		want string
	}{
		{"6/13", "2026-06-13"},
		{"12/25", "2025-12-25"},
		{"10/17", "2026-10-17"},
		{"feb 29", "2024-02-29"},
		{"29th february", "2024-02-29"},
		{"june 13th", "2026-06-13"},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			got, err := parseDate(tt.expr, preferCurrentDay)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}

	q, err := Parse("birds since 6/13")
	require.NoError(t, err)
	assert.Equal(t, "birds since 2026-06-13", q.String())
}

func TestParseDateErrors(t *testing.T) {
	for _, expr := range []string{"", "blorp", "sometime soon"} {
		t.Run(expr, func(t *testing.T) {
			_, err := parseDate(expr, preferCurrentDay)
			require.Error(t, err)
			assert.True(t, errors.IsQuerySyntax(err))

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, ErrorKindTemporal, pe.Kind)
		})
	}
}
