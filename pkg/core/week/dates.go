package week

import (
	"strings"
	"time"
)

// DateLayout is how record dates are persisted
const DateLayout = "2006-01-02"

// TimestampLayout is how import timestamps are persisted
const TimestampLayout = "2006-01-02 15:04:05"

// Accepted layouts. ISO forms come first; slash and dash separated forms are
// read day-first, which is how the operations spreadsheets are filled in.
var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006-1-2",
	"2006/01/02",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2/1/2006",
	"2-1-2006 15:04:05",
	"2-1-2006",
	"2.1.2006",
	"2/1/06",
}

// ParseDateTime parses a free-form date or date-time cell
func ParseDateTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseDate parses a free-form date cell and truncates it to the day
func ParseDate(raw string) (time.Time, bool) {
	t, ok := ParseDateTime(raw)
	if !ok {
		return time.Time{}, false
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
}

// FormatDate renders a date the way it is persisted
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
