// Package models provides the data structures shared by the pipeline stages.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one parsed line of financial activity.
//
// Expense and Income are never negative. Date carries no time-of-day: it is
// always midnight UTC so that calendar comparisons are plain time comparisons.
type Transaction struct {
	Account     string          `json:"account"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Expense     decimal.Decimal `json:"expense"`
	Income      decimal.Decimal `json:"income"`
	Category    string          `json:"category"`
}

// Month returns the calendar month bucket of the transaction.
func (t Transaction) Month() MonthBucket {
	return MonthOf(t.Date)
}

// Net returns income minus expense for this transaction.
func (t Transaction) Net() decimal.Decimal {
	return t.Income.Sub(t.Expense)
}

// HasExpense reports whether money left the account.
func (t Transaction) HasExpense() bool {
	return t.Expense.IsPositive()
}

// Day truncates a time to midnight UTC of the same calendar day.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
