// Package dateutils provides the calendar-date parsing used by the transaction parser.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Date layouts understood by the built-in file formats.
const (
	DateLayoutISO           = "2006-01-02"
	DateLayoutISOSlash      = "2006/01/02"
	DateLayoutUS            = "01/02/2006"
	DateLayoutDayMonth      = "02 Jan 2006"
	DateLayoutDayMonthLoose = "2 Jan 2006"
	DateLayoutDashMonth     = "02-Jan-2006"
	DateLayoutMonthDay      = "Jan 2, 2006"
	DateLayoutLongMonth     = "02 January 2006"
	DateLayoutDisplay       = DateLayoutDayMonth
)

// DefaultLayouts are tried in order when a format does not configure its own.
// ISO-like numeric dates come first, then abbreviated-month forms.
var DefaultLayouts = []string{
	DateLayoutISO,
	DateLayoutISOSlash,
	DateLayoutUS,
	DateLayoutDayMonth,
	DateLayoutDayMonthLoose,
	DateLayoutDashMonth,
	DateLayoutMonthDay,
	DateLayoutLongMonth,
}

var whitespace = regexp.MustCompile(`\s+`)

// CleanDateString trims and collapses internal whitespace.
func CleanDateString(dateStr string) string {
	return whitespace.ReplaceAllString(strings.TrimSpace(dateStr), " ")
}

// ParseDate parses dateStr against layouts (DefaultLayouts when empty) and
// returns the calendar date at midnight UTC plus the layout that matched.
func ParseDate(dateStr string, layouts []string) (time.Time, string, error) {
	clean := CleanDateString(dateStr)
	if clean == "" {
		return time.Time{}, "", fmt.Errorf("empty date")
	}
	if len(layouts) == 0 {
		layouts = DefaultLayouts
	}

	for _, layout := range layouts {
		if t, err := time.Parse(layout, clean); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), layout, nil
		}
	}

	return time.Time{}, "", fmt.Errorf("unable to parse date: %s", dateStr)
}

// ParseISODate parses a YYYY-MM-DD date, the form used by CLI flags and query
// parameters.
func ParseISODate(dateStr string) (time.Time, error) {
	t, _, err := ParseDate(dateStr, []string{DateLayoutISO})
	return t, err
}

// FormatDate formats date with layout, or DateLayoutDisplay when layout is empty.
func FormatDate(date time.Time, layout string) string {
	if layout == "" {
		layout = DateLayoutDisplay
	}
	return date.Format(layout)
}

// ToISODate formats a time.Time value as an ISO date (YYYY-MM-DD)
func ToISODate(date time.Time) string {
	return date.Format(DateLayoutISO)
}

// SameDay reports whether two times fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
