// Package aggregate computes totals and grouped views over a filtered
// transaction set. All sums use decimal arithmetic and are never rounded here.
package aggregate

import (
	"sort"
	"time"

	"fjacquet/spend-dashboard/internal/currencyutils"
	"fjacquet/spend-dashboard/internal/models"

	"github.com/shopspring/decimal"
)

// Totals are the headline figures of a transaction set.
type Totals struct {
	Expense decimal.Decimal `json:"expense"`
	Income  decimal.Decimal `json:"income"`
	// Net is Income minus Expense.
	Net   decimal.Decimal `json:"net"`
	Count int             `json:"count"`
}

// TotalsOf sums expense and income over txs.
func TotalsOf(txs []models.Transaction) Totals {
	t := Totals{Expense: decimal.Zero, Income: decimal.Zero}
	for _, tx := range txs {
		t.Expense = t.Expense.Add(tx.Expense)
		t.Income = t.Income.Add(tx.Income)
	}
	t.Net = t.Income.Sub(t.Expense)
	t.Count = len(txs)
	return t
}

// Group is one key of a grouped view with the sum of its values.
type Group struct {
	Key    string          `json:"key"`
	Amount decimal.Decimal `json:"amount"`
	Count  int             `json:"count"`
}

// GroupBy sums value(tx) per key(tx) over the transactions for which keep
// returns true (all of them when keep is nil). Keys are returned in the order
// they are first seen.
func GroupBy(txs []models.Transaction, key func(models.Transaction) string, value func(models.Transaction) decimal.Decimal, keep func(models.Transaction) bool) []Group {
	index := make(map[string]int)
	groups := []Group{}
	for _, tx := range txs {
		if keep != nil && !keep(tx) {
			continue
		}
		k := key(tx)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group{Key: k, Amount: decimal.Zero})
		}
		groups[i].Amount = groups[i].Amount.Add(value(tx))
		groups[i].Count++
	}
	return groups
}

func byCategory(tx models.Transaction) string         { return tx.Category }
func byAccount(tx models.Transaction) string          { return tx.Account }
func expenseOf(tx models.Transaction) decimal.Decimal { return tx.Expense }
func hasExpense(tx models.Transaction) bool           { return tx.HasExpense() }

// ExpenseByCategory sums expense per category over transactions with a
// positive expense. Income-only categories therefore never appear.
func ExpenseByCategory(txs []models.Transaction) []Group {
	return GroupBy(txs, byCategory, expenseOf, hasExpense)
}

// ExpenseByAccount sums expense per account over transactions with a positive
// expense.
func ExpenseByAccount(txs []models.Transaction) []Group {
	return GroupBy(txs, byAccount, expenseOf, hasExpense)
}

// Point is one day of a daily series.
type Point struct {
	Date   time.Time       `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// Series is a chronological daily series.
type Series struct {
	Points []Point `json:"points"`
	// NoData is set when the series is empty or every point is zero.
	NoData bool `json:"no_data"`
}

// ExpenseByDay sums expense per calendar day in chronological order. Days that
// only carry income appear with a zero amount.
func ExpenseByDay(txs []models.Transaction) Series {
	groups := GroupBy(txs, func(tx models.Transaction) string {
		return models.Day(tx.Date).Format(time.DateOnly)
	}, expenseOf, nil)

	s := Series{Points: make([]Point, 0, len(groups)), NoData: true}
	for _, g := range groups {
		d, _ := time.Parse(time.DateOnly, g.Key)
		s.Points = append(s.Points, Point{Date: d, Amount: g.Amount})
		if !g.Amount.IsZero() {
			s.NoData = false
		}
	}
	sort.SliceStable(s.Points, func(i, j int) bool {
		return s.Points[i].Date.Before(s.Points[j].Date)
	})
	return s
}

// MonthPoint is one month of the income/expense trend.
type MonthPoint struct {
	Bucket  models.MonthBucket `json:"bucket"`
	Key     string             `json:"key"`
	Label   string             `json:"label"`
	Income  decimal.Decimal    `json:"income"`
	Expense decimal.Decimal    `json:"expense"`
}

// MonthlyTrend sums income and expense per calendar month, ordered by the
// sortable month key rather than the display label.
func MonthlyTrend(txs []models.Transaction) []MonthPoint {
	index := make(map[models.MonthBucket]int)
	points := []MonthPoint{}
	for _, tx := range txs {
		m := tx.Month()
		i, ok := index[m]
		if !ok {
			i = len(points)
			index[m] = i
			points = append(points, MonthPoint{
				Bucket:  m,
				Key:     m.Key(),
				Label:   m.Label(),
				Income:  decimal.Zero,
				Expense: decimal.Zero,
			})
		}
		points[i].Income = points[i].Income.Add(tx.Income)
		points[i].Expense = points[i].Expense.Add(tx.Expense)
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Key < points[j].Key
	})
	return points
}

// NetExpenseByCategory returns, per category, expense minus income where that
// is positive, ascending by amount.
func NetExpenseByCategory(txs []models.Transaction) []Group {
	return positiveAscending(GroupBy(txs, byCategory, func(tx models.Transaction) decimal.Decimal {
		return tx.Expense.Sub(tx.Income)
	}, nil))
}

// NetIncomeByCategory returns, per category, income minus expense where that
// is positive, ascending by amount.
func NetIncomeByCategory(txs []models.Transaction) []Group {
	return positiveAscending(GroupBy(txs, byCategory, func(tx models.Transaction) decimal.Decimal {
		return tx.Net()
	}, nil))
}

func positiveAscending(groups []Group) []Group {
	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		if g.Amount.IsPositive() {
			out = append(out, g)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.LessThan(out[j].Amount)
	})
	return out
}

// Share is a group with its percentage of the total of all groups.
type Share struct {
	Group
	Percent decimal.Decimal `json:"percent"`
}

// CategoryShare computes each group's percentage of the summed amount. Every
// percentage is zero when the total is zero.
func CategoryShare(groups []Group) []Share {
	total := decimal.Zero
	for _, g := range groups {
		total = total.Add(g.Amount)
	}

	shares := make([]Share, 0, len(groups))
	for _, g := range groups {
		shares = append(shares, Share{Group: g, Percent: currencyutils.Percent(g.Amount, total)})
	}
	return shares
}
