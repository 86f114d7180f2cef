package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDueDateISO(t *testing.T) {
	due, err := ParseDueDate("2025-03-10")
	require.NoError(t, err)

	assert.Equal(t, 2025, due.Year())
	assert.Equal(t, time.March, due.Month())
	assert.Equal(t, 10, due.Day())

	// Local midnight of the named day, not UTC
	assert.Equal(t, 0, due.Hour())
	assert.Equal(t, 0, due.Minute())
	assert.Equal(t, time.Local, due.Location())
}

func TestParseDueDateRoundTrip(t *testing.T) {
	// instant -> local midnight -> instant -> local date must be stable
	due, err := ParseDueDate("2025-03-10")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", FormatDueDate(due.UnixMilli()))
}

func TestParseDueDateRelative(t *testing.T) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)

	tests := []struct {
		input string
		days  int
	}{
		{"1 day", 1},
		{"3 days", 3},
		{"1 week", 7},
		{"2 weeks", 14},
	}

	for _, tt := range tests {
		due, err := ParseDueDate(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, today.AddDate(0, 0, tt.days), due, tt.input)
	}
}

func TestParseDueDateInvalid(t *testing.T) {
	invalid := []string{
		"",
		"10/03/2025",
		"2025-13-40",
		"next tuesday",
		"0 days",
		"400 days",
		"53 weeks",
	}

	for _, input := range invalid {
		_, err := ParseDueDate(input)
		assert.Error(t, err, "expected error for %q", input)
	}
}

func TestDescribeDueDate(t *testing.T) {
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.Local)

	day := func(offset int) int64 {
		return time.Date(2025, time.March, 10+offset, 0, 0, 0, 0, time.Local).UnixMilli()
	}

	assert.Contains(t, DescribeDueDate(day(-1), now), "OVERDUE")
	assert.Contains(t, DescribeDueDate(day(0), now), "due today")
	assert.Contains(t, DescribeDueDate(day(1), now), "due tomorrow")
	assert.Contains(t, DescribeDueDate(day(3), now), "in 3 days")
	assert.Equal(t, "due 2025-03-30", DescribeDueDate(day(20), now))
}
