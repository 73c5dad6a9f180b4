// Package common contains shared functionality for command handlers
package common

import (
	"fjacquet/spend-dashboard/internal/filter"

	"github.com/spf13/cobra"
)

// FilterFlags are the filter options of commands that build a dashboard.
type FilterFlags struct {
	From         string
	To           string
	Month        string
	Accounts     []string
	Categories   []string
	NoAccounts   bool
	NoCategories bool
}

// RegisterFilterFlags binds f to cmd's local flags.
func RegisterFilterFlags(cmd *cobra.Command, f *FilterFlags) {
	flags := cmd.Flags()
	flags.StringVar(&f.From, "from", "", "First day to include (YYYY-MM-DD)")
	flags.StringVar(&f.To, "to", "", "Last day to include (YYYY-MM-DD)")
	flags.StringVar(&f.Month, "month", "", "Restrict to one month (YYYY-MM)")
	flags.StringArrayVar(&f.Accounts, "account", nil, "Account to include (repeatable; default all)")
	flags.StringArrayVar(&f.Categories, "category", nil, "Category to include (repeatable; default all but transfers)")
	flags.BoolVar(&f.NoAccounts, "no-accounts", false, "Select no account")
	flags.BoolVar(&f.NoCategories, "no-categories", false, "Select no category")
}

// Params converts the flags into filter parameters. Repeatable flags that
// were never given keep the defaults; --no-accounts and --no-categories
// select nothing.
func (f FilterFlags) Params(cmd *cobra.Command) filter.Params {
	p := filter.Params{From: f.From, To: f.To, Month: f.Month}

	switch {
	case f.NoAccounts:
		p.Accounts, p.AccountsSet = []string{}, true
	case cmd.Flags().Changed("account"):
		p.Accounts, p.AccountsSet = f.Accounts, true
	}
	switch {
	case f.NoCategories:
		p.Categories, p.CategoriesSet = []string{}, true
	case cmd.Flags().Changed("category"):
		p.Categories, p.CategoriesSet = f.Categories, true
	}
	return p
}
