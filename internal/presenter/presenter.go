// Package presenter turns filtered transactions and their aggregates into the
// view model shared by the terminal, JSON and CSV outputs.
package presenter

import (
	"sort"
	"time"

	"fjacquet/spend-dashboard/internal/aggregate"
	"fjacquet/spend-dashboard/internal/currencyutils"
	"fjacquet/spend-dashboard/internal/dateutils"
	"fjacquet/spend-dashboard/internal/filter"
	"fjacquet/spend-dashboard/internal/format"
	"fjacquet/spend-dashboard/internal/models"

	"github.com/shopspring/decimal"
)

// Messages shown in place of an empty section.
const (
	MsgNoExpenses     = "No expenses found for the selected filters."
	MsgNoExpenseTrend = "No expense trends available for the selected filters."
	MsgNoData         = "No data to show."
	MsgNoTransactions = "No transactions match the selected filters."
	MsgGetStarted     = "Please provide your spending data file to get started."
)

// Delta directions of a KPI.
const (
	DeltaUp   = "up"
	DeltaDown = "down"
	DeltaFlat = "flat"
)

// Presenter formats amounts and dates consistently across outputs.
type Presenter struct {
	money      *currencyutils.Formatter
	dateLayout string
}

// New creates a Presenter. Empty arguments select "$" and "02 Jan 2006".
func New(currencySymbol, dateLayout string) *Presenter {
	if dateLayout == "" {
		dateLayout = dateutils.DateLayoutDisplay
	}
	return &Presenter{
		money:      currencyutils.NewFormatter(currencySymbol),
		dateLayout: dateLayout,
	}
}

// FormatCurrency renders an amount, e.g. "-$1,234.50".
func (p *Presenter) FormatCurrency(amount decimal.Decimal) string {
	return p.money.Format(amount)
}

// FormatAmountCell renders a table amount; zero is shown as "-".
func (p *Presenter) FormatAmountCell(amount decimal.Decimal) string {
	return p.money.FormatCell(amount)
}

// FormatDate renders a calendar date for display.
func (p *Presenter) FormatDate(t time.Time) string {
	return dateutils.FormatDate(t, p.dateLayout)
}

// UsageHint is printed when no file was given or a file was rejected.
func UsageHint(f *format.Format) string {
	return Hint(f.Usage())
}

// Hint wraps a column usage line in the user-facing hint sentence.
func Hint(usage string) string {
	return "Please ensure your file matches the expected format: " + usage
}

// Input is everything one dashboard rendering needs.
type Input struct {
	Format  string
	Lines   int
	Dropped int
	Facets  filter.Facets
	Spec    filter.Spec
	// Filtered is the table after every active predicate.
	Filtered []models.Transaction
	// Trend is the table filtered without the month predicate.
	Trend []models.Transaction
}

// KPI is one headline figure.
type KPI struct {
	Label  string          `json:"label"`
	Amount decimal.Decimal `json:"amount"`
	Value  string          `json:"value"`
	Delta  string          `json:"delta,omitempty"`
}

// BreakdownRow is one slice of a grouped view.
type BreakdownRow struct {
	Label   string          `json:"label"`
	Amount  decimal.Decimal `json:"amount"`
	Value   string          `json:"value"`
	Percent string          `json:"percent,omitempty"`
}

// Breakdown is a titled grouped view.
type Breakdown struct {
	Title   string         `json:"title"`
	Rows    []BreakdownRow `json:"rows"`
	NoData  bool           `json:"no_data"`
	Message string         `json:"message,omitempty"`
}

// DailyPoint is one day of the daily expense chart.
type DailyPoint struct {
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
	Value  string          `json:"value"`
}

// DailySeries is the daily expense chart.
type DailySeries struct {
	Title   string       `json:"title"`
	Points  []DailyPoint `json:"points"`
	NoData  bool         `json:"no_data"`
	Message string       `json:"message,omitempty"`
}

// TrendRow is one month of the income/expense trend.
type TrendRow struct {
	Key          string          `json:"key"`
	Label        string          `json:"label"`
	Income       decimal.Decimal `json:"income"`
	Expense      decimal.Decimal `json:"expense"`
	IncomeValue  string          `json:"income_value"`
	ExpenseValue string          `json:"expense_value"`
}

// Trend is the monthly income/expense chart.
type Trend struct {
	Title   string     `json:"title"`
	Rows    []TrendRow `json:"rows"`
	NoData  bool       `json:"no_data"`
	Message string     `json:"message,omitempty"`
}

// FilterState is the effective filter in display form.
type FilterState struct {
	From          string   `json:"from"`
	To            string   `json:"to"`
	AllAccounts   bool     `json:"all_accounts"`
	Accounts      []string `json:"accounts"`
	AllCategories bool     `json:"all_categories"`
	Categories    []string `json:"categories"`
	Month         string   `json:"month,omitempty"`
	SingleDay     bool     `json:"single_day"`
	Notice        string   `json:"notice,omitempty"`
}

// Dashboard is the complete view model of one filter state.
type Dashboard struct {
	Format  string `json:"format"`
	Lines   int    `json:"lines"`
	Dropped int    `json:"dropped"`
	Matched int    `json:"matched"`

	Facets filter.Facets `json:"facets"`
	Filter FilterState   `json:"filter"`

	Totals aggregate.Totals `json:"totals"`
	KPIs   []KPI            `json:"kpis"`

	ExpenseByCategory    Breakdown   `json:"expense_by_category"`
	DailyExpense         DailySeries `json:"daily_expense"`
	ExpenseByAccount     Breakdown   `json:"expense_by_account"`
	MonthlyTrend         Trend       `json:"monthly_trend"`
	NetExpenseByCategory Breakdown   `json:"net_expense_by_category"`
	NetIncomeByCategory  Breakdown   `json:"net_income_by_category"`

	Transactions        []TableRow `json:"transactions"`
	TransactionsMessage string     `json:"transactions_message,omitempty"`

	// Export holds the same transactions for CSV output.
	Export []ExportRow `json:"-"`
}

// BuildDashboard aggregates in and formats every section.
func (p *Presenter) BuildDashboard(in Input) *Dashboard {
	totals := aggregate.TotalsOf(in.Filtered)

	d := &Dashboard{
		Format:  in.Format,
		Lines:   in.Lines,
		Dropped: in.Dropped,
		Matched: len(in.Filtered),
		Facets:  in.Facets,
		Filter:  p.filterState(in.Spec),
		Totals:  totals,
		KPIs: []KPI{
			{Label: "Total Expense", Amount: totals.Expense, Value: p.FormatCurrency(totals.Expense)},
			{Label: "Total Income", Amount: totals.Income, Value: p.FormatCurrency(totals.Income)},
			{Label: "Net Flow", Amount: totals.Net, Value: p.FormatCurrency(totals.Net), Delta: deltaOf(totals.Net)},
		},
	}

	d.ExpenseByCategory = p.breakdown("Expense by Category", aggregate.CategoryShare(aggregate.ExpenseByCategory(in.Filtered)), MsgNoExpenses)
	d.DailyExpense = p.daily(aggregate.ExpenseByDay(in.Filtered))
	d.ExpenseByAccount = p.breakdown("Expense by Account", shares(aggregate.ExpenseByAccount(in.Filtered)), MsgNoData)
	d.MonthlyTrend = p.trend(aggregate.MonthlyTrend(in.Trend))
	d.NetExpenseByCategory = p.breakdown("Net Expense by Category", shares(aggregate.NetExpenseByCategory(in.Filtered)), MsgNoData)
	d.NetIncomeByCategory = p.breakdown("Net Income by Category", shares(aggregate.NetIncomeByCategory(in.Filtered)), MsgNoData)

	d.Transactions = p.Table(in.Filtered)
	d.Export = ExportRows(in.Filtered)
	if len(d.Transactions) == 0 {
		d.TransactionsMessage = MsgNoTransactions
	}
	return d
}

func deltaOf(amount decimal.Decimal) string {
	switch amount.Sign() {
	case 1:
		return DeltaUp
	case -1:
		return DeltaDown
	default:
		return DeltaFlat
	}
}

// shares wraps groups without percentages.
func shares(groups []aggregate.Group) []aggregate.Share {
	out := make([]aggregate.Share, 0, len(groups))
	for _, g := range groups {
		out = append(out, aggregate.Share{Group: g})
	}
	return out
}

func (p *Presenter) breakdown(title string, rows []aggregate.Share, empty string) Breakdown {
	b := Breakdown{Title: title, Rows: make([]BreakdownRow, 0, len(rows))}
	for _, r := range rows {
		row := BreakdownRow{Label: r.Key, Amount: r.Amount, Value: p.FormatCurrency(r.Amount)}
		if !r.Percent.IsZero() {
			row.Percent = p.money.FormatPercent(r.Percent)
		}
		b.Rows = append(b.Rows, row)
	}
	if len(b.Rows) == 0 {
		b.NoData = true
		b.Message = empty
	}
	return b
}

func (p *Presenter) daily(s aggregate.Series) DailySeries {
	out := DailySeries{Title: "Daily Expense", Points: make([]DailyPoint, 0, len(s.Points)), NoData: s.NoData}
	for _, pt := range s.Points {
		out.Points = append(out.Points, DailyPoint{
			Date:   p.FormatDate(pt.Date),
			Amount: pt.Amount,
			Value:  p.FormatCurrency(pt.Amount),
		})
	}
	if out.NoData {
		out.Message = MsgNoExpenseTrend
	}
	return out
}

func (p *Presenter) trend(points []aggregate.MonthPoint) Trend {
	t := Trend{Title: "Monthly Income vs Expense", Rows: make([]TrendRow, 0, len(points))}
	for _, pt := range points {
		t.Rows = append(t.Rows, TrendRow{
			Key:          pt.Key,
			Label:        pt.Label,
			Income:       pt.Income,
			Expense:      pt.Expense,
			IncomeValue:  p.FormatCurrency(pt.Income),
			ExpenseValue: p.FormatCurrency(pt.Expense),
		})
	}
	if len(t.Rows) == 0 {
		t.NoData = true
		t.Message = MsgNoData
	}
	return t
}

func (p *Presenter) filterState(spec filter.Spec) FilterState {
	fs := FilterState{
		AllAccounts:   spec.Accounts.IsAll(),
		Accounts:      append([]string{}, spec.Accounts...),
		AllCategories: spec.Categories.IsAll(),
		Categories:    append([]string{}, spec.Categories...),
		SingleDay:     spec.SingleDay,
	}
	if spec.From != nil {
		fs.From = dateutils.ToISODate(*spec.From)
	}
	if spec.To != nil {
		fs.To = dateutils.ToISODate(*spec.To)
	}
	if spec.Month != nil {
		fs.Month = spec.Month.Key()
	}
	if spec.SingleDay && spec.From != nil {
		fs.Notice = "All transactions fall on " + p.FormatDate(*spec.From) + "; the date range is fixed to that day."
	}
	return fs
}

// TableRow is one line of the transaction listing.
type TableRow struct {
	Date        string `json:"date" csv:"Date"`
	Account     string `json:"account" csv:"Account"`
	Description string `json:"description" csv:"Description"`
	Category    string `json:"category" csv:"Category"`
	Expense     string `json:"expense" csv:"Expense"`
	Income      string `json:"income" csv:"Income"`
}

// Table formats txs most recent first. Transactions on the same day keep
// their file order.
func (p *Presenter) Table(txs []models.Transaction) []TableRow {
	sorted := append([]models.Transaction(nil), txs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})

	rows := make([]TableRow, 0, len(sorted))
	for _, tx := range sorted {
		rows = append(rows, TableRow{
			Date:        p.FormatDate(tx.Date),
			Account:     tx.Account,
			Description: tx.Description,
			Category:    tx.Category,
			Expense:     p.FormatAmountCell(tx.Expense),
			Income:      p.FormatAmountCell(tx.Income),
		})
	}
	return rows
}

// ExportRow is a transaction in machine-readable CSV form.
type ExportRow struct {
	Account     string `csv:"Account"`
	Date        string `csv:"Date"`
	Description string `csv:"Description"`
	Expense     string `csv:"Expense"`
	Income      string `csv:"Income"`
	Category    string `csv:"Category"`
}

// ExportRows converts txs, most recent first, with ISO dates and plain
// two-decimal amounts.
func ExportRows(txs []models.Transaction) []ExportRow {
	sorted := append([]models.Transaction(nil), txs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})

	rows := make([]ExportRow, 0, len(sorted))
	for _, tx := range sorted {
		rows = append(rows, ExportRow{
			Account:     tx.Account,
			Date:        dateutils.ToISODate(tx.Date),
			Description: tx.Description,
			Expense:     tx.Expense.StringFixed(currencyutils.DisplayPlaces),
			Income:      tx.Income.StringFixed(currencyutils.DisplayPlaces),
			Category:    tx.Category,
		})
	}
	return rows
}
