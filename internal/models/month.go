package models

import (
	"fmt"
	"time"
)

// MonthKeyLayout is the sortable representation of a month bucket.
const MonthKeyLayout = "2006-01"

// MonthLabelLayout is the human readable representation of a month bucket.
const MonthLabelLayout = "Jan 2006"

// MonthBucket groups transactions by calendar year and month.
type MonthBucket struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// MonthOf returns the bucket containing t.
func MonthOf(t time.Time) MonthBucket {
	return MonthBucket{Year: t.Year(), Month: t.Month()}
}

// ParseMonthKey parses a "2006-01" key.
func ParseMonthKey(key string) (MonthBucket, error) {
	t, err := time.Parse(MonthKeyLayout, key)
	if err != nil {
		return MonthBucket{}, fmt.Errorf("invalid month %q, expected YYYY-MM: %w", key, err)
	}
	return MonthOf(t), nil
}

// Key is the chronologically sortable identifier, e.g. "2024-01".
func (m MonthBucket) Key() string {
	return m.Start().Format(MonthKeyLayout)
}

// Label is the display name, e.g. "Jan 2024". Never sort on it.
func (m MonthBucket) Label() string {
	return m.Start().Format(MonthLabelLayout)
}

// Start returns midnight UTC of the first day of the month.
func (m MonthBucket) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Contains reports whether t falls inside the month.
func (m MonthBucket) Contains(t time.Time) bool {
	return t.Year() == m.Year && t.Month() == m.Month
}

// Before reports whether m is earlier than other.
func (m MonthBucket) Before(other MonthBucket) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Month < other.Month
}

func (m MonthBucket) String() string {
	return m.Key()
}
