package filter

import (
	"strings"
	"time"

	"fjacquet/spend-dashboard/internal/models"
)

// Selection is a set of allowed values for one facet. A nil Selection allows
// everything; a non-nil empty Selection allows nothing.
type Selection []string

// All returns the selection that allows every value.
func All() Selection { return nil }

// None returns the selection that allows no value.
func None() Selection { return Selection{} }

// Only returns a selection restricted to values.
func Only(values ...string) Selection {
	return append(Selection{}, values...)
}

// IsAll reports whether s allows every value.
func (s Selection) IsAll() bool {
	return s == nil
}

// Contains reports whether v is allowed.
func (s Selection) Contains(v string) bool {
	if s == nil {
		return true
	}
	for _, item := range s {
		if item == v {
			return true
		}
	}
	return false
}

// Spec is the active filter. Every set predicate must hold for a transaction to
// pass.
type Spec struct {
	// From and To are inclusive calendar dates; nil leaves that side open.
	From       *time.Time          `json:"from,omitempty"`
	To         *time.Time          `json:"to,omitempty"`
	Accounts   Selection           `json:"accounts"`
	Categories Selection           `json:"categories"`
	Month      *models.MonthBucket `json:"month,omitempty"`
	// SingleDay marks a range fixed to the only day present in the data.
	SingleDay bool `json:"single_day"`
}

// DefaultSpec is the filter state shown before the user touches anything: the
// full date range, every account, and every category except those matching
// excluded (case-insensitively).
func DefaultSpec(f Facets, excluded []string) Spec {
	spec := Spec{
		Accounts:   All(),
		Categories: All(),
	}
	if f.Empty() {
		return spec
	}

	kept := Selection{}
	dropped := false
	for _, c := range f.Categories {
		if isExcluded(c, excluded) {
			dropped = true
			continue
		}
		kept = append(kept, c)
	}
	if dropped {
		spec.Categories = kept
	}
	return spec.Normalize(f)
}

func isExcluded(category string, excluded []string) bool {
	for _, e := range excluded {
		if strings.EqualFold(strings.TrimSpace(e), category) {
			return true
		}
	}
	return false
}

// Normalize fits the date range to the data. Reversed bounds are swapped,
// bounds beyond the data are pulled in to its first and last day, and data
// spanning one day fixes both bounds to that day.
func (s Spec) Normalize(f Facets) Spec {
	out := s
	if f.Empty() {
		return out
	}

	if f.SingleDay {
		day := f.MinDate
		out.From, out.To = &day, &day
		out.SingleDay = true
		return out
	}
	out.SingleDay = false

	from, to := f.MinDate, f.MaxDate
	if s.From != nil {
		from = models.Day(*s.From)
	}
	if s.To != nil {
		to = models.Day(*s.To)
	}
	if from.After(to) {
		from, to = to, from
	}
	if from.Before(f.MinDate) {
		from = f.MinDate
	}
	if to.After(f.MaxDate) {
		to = f.MaxDate
	}
	out.From, out.To = &from, &to
	return out
}

// TrendScope returns the spec behind the monthly trend: only the category
// selection applies, so the trend always covers the full history regardless
// of the date range, accounts or month.
func (s Spec) TrendScope() Spec {
	return Spec{Categories: s.Categories}
}

// Matches reports whether tx satisfies every active predicate.
func (s Spec) Matches(tx models.Transaction) bool {
	day := models.Day(tx.Date)
	if s.From != nil && day.Before(models.Day(*s.From)) {
		return false
	}
	if s.To != nil && day.After(models.Day(*s.To)) {
		return false
	}
	if !s.Accounts.Contains(tx.Account) {
		return false
	}
	if !s.Categories.Contains(tx.Category) {
		return false
	}
	if s.Month != nil && !s.Month.Contains(tx.Date) {
		return false
	}
	return true
}

// Apply returns the transactions of txs that match spec, in their original
// order. The result is never nil.
func Apply(txs []models.Transaction, spec Spec) []models.Transaction {
	out := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if spec.Matches(tx) {
			out = append(out, tx)
		}
	}
	return out
}
