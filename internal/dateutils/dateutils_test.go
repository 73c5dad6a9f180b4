package dateutils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name        string
		dateStr     string
		expectedOk  bool
		expectedY   int
		expectedM   time.Month
		expectedD   int
		expectedFmt string
	}{
		{"ISO", "2024-01-15", true, 2024, time.January, 15, DateLayoutISO},
		{"ISO slash", "2024/01/15", true, 2024, time.January, 15, DateLayoutISOSlash},
		{"US", "01/15/2024", true, 2024, time.January, 15, DateLayoutUS},
		{"day month", "01 Jan 2024", true, 2024, time.January, 1, DateLayoutDayMonth},
		{"single digit day", "1 Jan 2024", true, 2024, time.January, 1, DateLayoutDayMonthLoose},
		{"padded with spaces", "  02   Feb 2024 ", true, 2024, time.February, 2, DateLayoutDayMonth},
		{"dash month", "15-Mar-2024", true, 2024, time.March, 15, DateLayoutDashMonth},
		{"month day", "Mar 5, 2024", true, 2024, time.March, 5, DateLayoutMonthDay},
		{"long month", "05 March 2024", true, 2024, time.March, 5, DateLayoutLongMonth},
		{"empty", "", false, 0, 0, 0, ""},
		{"garbage", "yesterday", false, 0, 0, 0, ""},
		{"impossible day", "2024-02-30", false, 0, 0, 0, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			date, layout, err := ParseDate(tc.dateStr, nil)
			if !tc.expectedOk {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedY, date.Year())
			assert.Equal(t, tc.expectedM, date.Month())
			assert.Equal(t, tc.expectedD, date.Day())
			assert.Equal(t, tc.expectedFmt, layout)
			assert.Equal(t, time.UTC, date.Location())
			assert.Zero(t, date.Hour())
		})
	}
}

func TestParseDate_RestrictedLayouts(t *testing.T) {
	_, _, err := ParseDate("01 Jan 2024", []string{DateLayoutISO})
	assert.Error(t, err)

	d, layout, err := ParseDate("2024-01-01", []string{DateLayoutISO})
	require.NoError(t, err)
	assert.Equal(t, DateLayoutISO, layout)
	assert.Equal(t, "2024-01-01", ToISODate(d))
}

func TestParseISODate(t *testing.T) {
	d, err := ParseISODate("2024-12-31")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseISODate("31/12/2024")
	assert.Error(t, err)
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2024, time.January, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "05 Jan 2024", FormatDate(d, ""))
	assert.Equal(t, "2024-01-05", FormatDate(d, DateLayoutISO))
}

func TestSameDay(t *testing.T) {
	a := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, SameDay(a, a.Add(23*time.Hour)))
	assert.False(t, SameDay(a, a.AddDate(1, 0, 0)))
}
