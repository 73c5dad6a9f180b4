// Package format describes the delimiter-separated transaction file layouts
// the dashboard accepts. A Format is pure configuration: the parser has a single
// implementation driven by it.
package format

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"fjacquet/spend-dashboard/internal/dateutils"
)

// AmountRole names which way money moves for an amount column.
type AmountRole string

const (
	// Expense is money leaving the account.
	Expense AmountRole = "expense"
	// Income is money entering the account.
	Income AmountRole = "income"
)

// MinFields is account, date, one description token, two amounts and category.
const MinFields = 6

// Format is the column role mapping of one file variant.
type Format struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`

	// Delimiter separates fields. Defaults to a comma.
	Delimiter string `yaml:"delimiter"`

	// AmountOrder lists the roles of the two amount columns that precede the
	// category, left to right.
	AmountOrder []AmountRole `yaml:"amount_order"`

	// AmountLabels are the column names printed in the usage hint, e.g.
	// "credit" and "debit". Defaults to the role names.
	AmountLabels []string `yaml:"amount_labels"`

	// DateLayouts are Go time layouts tried in order.
	DateLayouts []string `yaml:"date_layouts"`

	TitleCaseCategories bool `yaml:"title_case_categories"`

	// HasHeader skips the first non-blank line. When false, a header line is
	// still harmless: its date never parses so it is dropped like any bad row.
	HasHeader bool `yaml:"has_header"`

	// DefaultExcludedCategories are left out of the default category selection
	// (internal transfers and the like) but remain selectable.
	DefaultExcludedCategories []string `yaml:"default_excluded_categories"`
}

// Comma returns the delimiter as a rune.
func (f *Format) Comma() rune {
	if f.Delimiter == "" {
		return ','
	}
	r, _ := utf8.DecodeRuneInString(f.Delimiter)
	return r
}

// Layouts returns the configured date layouts or the defaults.
func (f *Format) Layouts() []string {
	if len(f.DateLayouts) == 0 {
		return dateutils.DefaultLayouts
	}
	return f.DateLayouts
}

// AmountIndex returns the position (0 or 1) of role within the amount pair.
func (f *Format) AmountIndex(role AmountRole) int {
	for i, r := range f.AmountOrder {
		if r == role {
			return i
		}
	}
	return -1
}

// Columns returns the ordered column names of the file.
func (f *Format) Columns() []string {
	cols := []string{"account", "date", "description"}
	for i, role := range f.AmountOrder {
		label := string(role)
		if i < len(f.AmountLabels) && f.AmountLabels[i] != "" {
			label = f.AmountLabels[i]
		}
		cols = append(cols, label)
	}
	return append(cols, "category")
}

// Usage is the hint shown when no file has been provided or a file is rejected.
func (f *Format) Usage() string {
	sep := string(f.Comma()) + " "
	header := "no header row"
	if f.HasHeader {
		header = "first line is a header row"
	}
	return fmt.Sprintf("%s (%s; %s)", strings.Join(f.Columns(), sep), header, f.amountHint())
}

func (f *Format) amountHint() string {
	var parts []string
	for i, role := range f.AmountOrder {
		label := string(role)
		if i < len(f.AmountLabels) && f.AmountLabels[i] != "" {
			label = f.AmountLabels[i]
		}
		switch role {
		case Expense:
			parts = append(parts, label+" = money out")
		case Income:
			parts = append(parts, label+" = money in")
		}
	}
	return strings.Join(parts, ", ")
}

// IsExcludedByDefault reports whether category is in the default exclusion set.
// Matching ignores case and surrounding whitespace.
func (f *Format) IsExcludedByDefault(category string) bool {
	needle := strings.ToLower(strings.TrimSpace(category))
	for _, c := range f.DefaultExcludedCategories {
		if strings.ToLower(strings.TrimSpace(c)) == needle {
			return true
		}
	}
	return false
}

// Validate checks the format is usable by the parser.
func (f *Format) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("format name is required")
	}
	if f.Delimiter != "" && utf8.RuneCountInString(f.Delimiter) != 1 {
		return fmt.Errorf("format %s: delimiter must be a single character, got: %q", f.Name, f.Delimiter)
	}
	if f.Comma() == '"' || f.Comma() == '\n' || f.Comma() == '\r' {
		return fmt.Errorf("format %s: delimiter %q is not allowed", f.Name, f.Delimiter)
	}
	if len(f.AmountOrder) != 2 || f.AmountIndex(Expense) < 0 || f.AmountIndex(Income) < 0 {
		return fmt.Errorf("format %s: amount_order must list expense and income exactly once, got: %v", f.Name, f.AmountOrder)
	}
	if len(f.AmountLabels) > 2 {
		return fmt.Errorf("format %s: at most two amount labels, got: %d", f.Name, len(f.AmountLabels))
	}
	return nil
}
