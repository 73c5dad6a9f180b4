// Package filter derives the filterable dimensions of a transaction table and
// applies a conjunctive filter over it.
package filter

import (
	"sort"
	"time"

	"fjacquet/spend-dashboard/internal/dateutils"
	"fjacquet/spend-dashboard/internal/models"
)

// Facets are the values a user can filter on, derived from the full table.
type Facets struct {
	// Accounts and Categories keep first-seen order on the date-sorted table.
	Accounts   []string             `json:"accounts"`
	Categories []string             `json:"categories"`
	Months     []models.MonthBucket `json:"months"`
	MinDate    time.Time            `json:"min_date"`
	MaxDate    time.Time            `json:"max_date"`
	// SingleDay is set when every transaction falls on the same date; the date
	// range can then only be that day.
	SingleDay bool `json:"single_day"`
}

// Empty reports whether the facets were built from no transactions.
func (f Facets) Empty() bool {
	return f.MinDate.IsZero() && f.MaxDate.IsZero()
}

// BuildFacets derives facets from txs, which must be sorted by date.
func BuildFacets(txs []models.Transaction) Facets {
	f := Facets{
		Accounts:   []string{},
		Categories: []string{},
		Months:     []models.MonthBucket{},
	}
	if len(txs) == 0 {
		return f
	}

	seenAccounts := make(map[string]struct{})
	seenCategories := make(map[string]struct{})
	seenMonths := make(map[models.MonthBucket]struct{})

	f.MinDate = models.Day(txs[0].Date)
	f.MaxDate = f.MinDate
	for _, tx := range txs {
		if _, ok := seenAccounts[tx.Account]; !ok {
			seenAccounts[tx.Account] = struct{}{}
			f.Accounts = append(f.Accounts, tx.Account)
		}
		if _, ok := seenCategories[tx.Category]; !ok {
			seenCategories[tx.Category] = struct{}{}
			f.Categories = append(f.Categories, tx.Category)
		}
		m := tx.Month()
		if _, ok := seenMonths[m]; !ok {
			seenMonths[m] = struct{}{}
			f.Months = append(f.Months, m)
		}

		day := models.Day(tx.Date)
		if day.Before(f.MinDate) {
			f.MinDate = day
		}
		if day.After(f.MaxDate) {
			f.MaxDate = day
		}
	}

	sort.Slice(f.Months, func(i, j int) bool {
		return f.Months[i].Before(f.Months[j])
	})
	f.SingleDay = dateutils.SameDay(f.MinDate, f.MaxDate)

	return f
}
