package format

import (
	"fjacquet/spend-dashboard/internal/dateutils"
)

// Names of the built-in formats.
const (
	Classic     = "classic"
	CreditDebit = "credit-debit"
	Monthly     = "monthly"
)

// transferCategories are movements between the user's own accounts rather
// than real spending.
var transferCategories = []string{
	"Transfer",
	"Internal Transfer",
	"Invest Transfer",
	"Credit Card Payment",
	"Cash Withdrawal",
}

// Presets returns fresh copies of the built-in formats.
func Presets() []*Format {
	return []*Format{
		{
			Name:         Classic,
			Description:  "Spending export with the expense column before the income column",
			Delimiter:    ",",
			AmountOrder:  []AmountRole{Expense, Income},
			AmountLabels: []string{"expense", "income"},
			DateLayouts:  append([]string(nil), dateutils.DefaultLayouts...),
		},
		{
			Name:                      CreditDebit,
			Description:               "Bank export with credit (money in) before debit (money out)",
			Delimiter:                 ",",
			AmountOrder:               []AmountRole{Income, Expense},
			AmountLabels:              []string{"credit", "debit"},
			DateLayouts:               append([]string(nil), dateutils.DefaultLayouts...),
			TitleCaseCategories:       true,
			DefaultExcludedCategories: append([]string(nil), transferCategories...),
		},
		{
			Name:                      Monthly,
			Description:               "Monthly statement with an optional header row and income before spend",
			Delimiter:                 ",",
			AmountOrder:               []AmountRole{Income, Expense},
			AmountLabels:              []string{"income", "spend"},
			DateLayouts:               append([]string(nil), dateutils.DefaultLayouts...),
			TitleCaseCategories:       true,
			DefaultExcludedCategories: append([]string(nil), transferCategories...),
		},
	}
}
