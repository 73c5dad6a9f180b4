// Package currencyutils formats decimal amounts for display.
package currencyutils

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultSymbol is prefixed to formatted amounts when none is configured.
const DefaultSymbol = "$"

// EmptyCell is shown in the transaction table for a zero amount.
const EmptyCell = "-"

// DisplayPlaces is the number of decimal places shown.
const DisplayPlaces = 2

var hundred = decimal.NewFromInt(100)

// Formatter renders amounts with a currency symbol, thousands separators and
// two decimal places. It is safe for concurrent use.
type Formatter struct {
	symbol  string
	printer *message.Printer
}

// NewFormatter returns a Formatter using symbol, or DefaultSymbol when empty.
func NewFormatter(symbol string) *Formatter {
	if symbol == "" {
		symbol = DefaultSymbol
	}
	return &Formatter{
		symbol:  symbol,
		printer: message.NewPrinter(language.English),
	}
}

// Symbol returns the currency symbol in use.
func (f *Formatter) Symbol() string {
	return f.symbol
}

// Format renders amount as e.g. "$1,234.50" or "-$12.00". The sign goes
// before the symbol.
func (f *Formatter) Format(amount decimal.Decimal) string {
	rounded := Round(amount)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
	}
	return sign + f.symbol + f.grouped(rounded.Abs(), DisplayPlaces)
}

// FormatCell renders a table cell: zero amounts are shown as EmptyCell.
func (f *Formatter) FormatCell(amount decimal.Decimal) string {
	if Round(amount).IsZero() {
		return EmptyCell
	}
	return f.Format(amount)
}

// FormatPercent renders a percentage with one decimal place, e.g. "42.5%".
func (f *Formatter) FormatPercent(pct decimal.Decimal) string {
	return f.grouped(pct.Round(1), 1) + "%"
}

func (f *Formatter) grouped(amount decimal.Decimal, places int) string {
	return f.printer.Sprintf("%v", number.Decimal(amount.InexactFloat64(), number.Scale(places)))
}

// Round rounds amount half away from zero to the displayed precision.
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(DisplayPlaces)
}

// Percent returns part as a percentage of whole, or zero when whole is zero.
func Percent(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		return decimal.Zero
	}
	return part.Mul(hundred).Div(whole)
}
