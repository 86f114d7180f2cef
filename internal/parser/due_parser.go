package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ParseDueDate parses a due date into an absolute instant at local
// midnight of the named calendar day.
// Supported formats:
// - yyyy-mm-dd (e.g., "2025-03-10")
// - X days (e.g., "3 days", "1 day")
// - X weeks (e.g., "2 weeks", "1 week")
func ParseDueDate(input string) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return time.Time{}, fmt.Errorf("due date is required")
	}

	if due, err := parseISODate(input); err == nil {
		return due, nil
	}

	if due, err := parseRelativeDays(input); err == nil {
		return due, nil
	}

	return time.Time{}, fmt.Errorf("invalid date format. Use: yyyy-mm-dd, X days, or X weeks")
}

// parseISODate parses yyyy-mm-dd into local midnight
func parseISODate(input string) (time.Time, error) {
	due, err := time.ParseInLocation("2006-01-02", input, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format")
	}
	return due, nil
}

// parseRelativeDays parses relative formats like "3 days" or "2 weeks"
// into local midnight of the target day.
func parseRelativeDays(input string) (time.Time, error) {
	relativeRegex := regexp.MustCompile(`^(\d+)\s+(day|days|week|weeks)$`)
	matches := relativeRegex.FindStringSubmatch(strings.ToLower(input))

	if len(matches) != 3 {
		return time.Time{}, fmt.Errorf("invalid relative date format")
	}

	amount, err := strconv.Atoi(matches[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid number")
	}

	days := amount
	switch matches[2] {
	case "week", "weeks":
		if amount < 1 || amount > 52 {
			return time.Time{}, fmt.Errorf("weeks must be between 1 and 52")
		}
		days = amount * 7
	default:
		if amount < 1 || amount > 365 {
			return time.Time{}, fmt.Errorf("days must be between 1 and 365")
		}
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	return today.AddDate(0, 0, days), nil
}

// FormatDueDate renders a stored due instant back as its calendar date.
func FormatDueDate(dueMillis int64) string {
	return time.UnixMilli(dueMillis).In(time.Local).Format("2006-01-02")
}

// DescribeDueDate formats a due date for list display, flagging how
// close or overdue it is relative to now.
func DescribeDueDate(dueMillis int64, now time.Time) string {
	due := time.UnixMilli(dueMillis).In(time.Local)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	dueDay := time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.Local)
	daysDiff := int(dueDay.Sub(today).Hours() / 24)

	dateStr := due.Format("2006-01-02")

	switch {
	case daysDiff < 0:
		return fmt.Sprintf("OVERDUE (%s)", dateStr)
	case daysDiff == 0:
		return fmt.Sprintf("due today (%s)", dateStr)
	case daysDiff == 1:
		return fmt.Sprintf("due tomorrow (%s)", dateStr)
	case daysDiff <= 7:
		return fmt.Sprintf("due %s (in %d days)", dateStr, daysDiff)
	default:
		return fmt.Sprintf("due %s", dateStr)
	}
}
