package filter

import (
	"errors"
	"fmt"
	"strings"

	"fjacquet/spend-dashboard/internal/dateutils"
	"fjacquet/spend-dashboard/internal/models"
)

// ErrInvalidParam is returned for filter parameters that cannot be parsed.
var ErrInvalidParam = errors.New("invalid filter parameter")

// Params is the textual form of a filter as it arrives from CLI flags or a
// query string. Unset fields keep the default spec's value.
type Params struct {
	From  string
	To    string
	Month string

	Accounts []string
	// AccountsSet distinguishes "no account given" (keep default) from an
	// explicitly empty selection.
	AccountsSet bool

	Categories    []string
	CategoriesSet bool
}

// Apply overlays p on base and returns the resulting spec.
func (p Params) Apply(base Spec) (Spec, error) {
	spec := base

	if p.From != "" {
		from, err := dateutils.ParseISODate(p.From)
		if err != nil {
			return Spec{}, fmt.Errorf("%w: from: %v", ErrInvalidParam, err)
		}
		spec.From = &from
	}
	if p.To != "" {
		to, err := dateutils.ParseISODate(p.To)
		if err != nil {
			return Spec{}, fmt.Errorf("%w: to: %v", ErrInvalidParam, err)
		}
		spec.To = &to
	}
	if p.Month != "" {
		month, err := models.ParseMonthKey(p.Month)
		if err != nil {
			return Spec{}, fmt.Errorf("%w: month: %v", ErrInvalidParam, err)
		}
		spec.Month = &month
	}
	if p.AccountsSet {
		spec.Accounts = selectionOf(p.Accounts)
	}
	if p.CategoriesSet {
		spec.Categories = selectionOf(p.Categories)
	}

	return spec, nil
}

// selectionOf builds an explicit selection, ignoring blank values.
func selectionOf(values []string) Selection {
	sel := None()
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			sel = append(sel, v)
		}
	}
	return sel
}
