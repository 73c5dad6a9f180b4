// Package parser turns the raw bytes of an uploaded transaction file into typed
// transaction records according to a format.Format.
package parser

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"fjacquet/spend-dashboard/internal/dateutils"
	"fjacquet/spend-dashboard/internal/format"
	"fjacquet/spend-dashboard/internal/logging"
	"fjacquet/spend-dashboard/internal/models"
	"fjacquet/spend-dashboard/internal/parsererror"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/language"
	"golang.org/x/text/transform"
)

// UncategorizedLabel replaces an empty category field.
const UncategorizedLabel = "Uncategorized"

var errNegativeAmount = errors.New("amount must not be negative")

// TransactionParser is implemented by anything that can read a transaction file.
type TransactionParser interface {
	Parse(r io.Reader) (*Result, error)
	ParseBytes(content []byte) (*Result, error)
}

// Result is the outcome of parsing one file.
type Result struct {
	Format       string               `json:"format"`
	Transactions []models.Transaction `json:"transactions"`
	// Lines counts non-blank input lines, header included.
	Lines int `json:"lines"`
	// Dropped counts lines discarded as malformed. It is informational only.
	Dropped int `json:"dropped"`
}

// Empty reports whether no transaction survived parsing.
func (r *Result) Empty() bool {
	return r == nil || len(r.Transactions) == 0
}

// Parser is the single, configuration-driven transaction parser.
type Parser struct {
	BaseParser
	format *format.Format
}

// New creates a Parser for f.
func New(f *format.Format, logger logging.Logger) *Parser {
	return &Parser{
		BaseParser: NewBaseParser(logger),
		format:     f,
	}
}

// Format returns the format the parser was built for.
func (p *Parser) Format() *format.Format {
	return p.format
}

// Parse reads everything from r and parses it.
func (p *Parser) Parse(r io.Reader) (*Result, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading transaction file: %w", err)
	}
	return p.ParseBytes(content)
}

// ParseBytes parses raw file content. Malformed lines are dropped and counted;
// only content that is not text, or that never carries the required columns,
// fails the whole parse.
func (p *Parser) ParseBytes(content []byte) (*Result, error) {
	text, err := decodeText(content)
	if err != nil {
		return nil, &parsererror.InvalidFormatError{
			ExpectedFormat: p.format.Usage(),
			Msg:            "uploaded content is not a text file",
			Err:            err,
		}
	}

	delim := string(p.format.Comma())
	title := cases.Title(language.English)
	result := &Result{Format: p.format.Name, Transactions: []models.Transaction{}}
	wellFormed := 0
	headerSkipped := !p.format.HasHeader

	// Each line is tokenized on its own; quotes carry no meaning, so a stray
	// one cannot swallow the lines after it.
	for i, raw := range strings.Split(text, "\n") {
		raw = strings.TrimSuffix(raw, "\r")
		if strings.TrimSpace(raw) == "" {
			continue
		}
		line := i + 1
		result.Lines++

		if !headerSkipped {
			headerSkipped = true
			continue
		}

		fields := strings.Split(raw, delim)
		if len(fields) < format.MinFields {
			p.drop(result, &parsererror.RowError{
				Line:  line,
				Field: "fields",
				Value: fmt.Sprintf("%d", len(fields)),
				Err:   fmt.Errorf("need at least %d fields", format.MinFields),
			})
			continue
		}
		wellFormed++

		tx, rowErr := p.parseRecord(fields, title)
		if rowErr != nil {
			rowErr.Line = line
			p.drop(result, rowErr)
			continue
		}
		result.Transactions = append(result.Transactions, tx)
	}

	if result.Lines > 0 && wellFormed == 0 && (!p.format.HasHeader || result.Lines > 1) {
		return nil, &parsererror.InvalidFormatError{
			ExpectedFormat: p.format.Usage(),
			Err:            parsererror.ErrMissingColumns,
		}
	}

	sort.SliceStable(result.Transactions, func(i, j int) bool {
		return result.Transactions[i].Date.Before(result.Transactions[j].Date)
	})

	p.logger.Info("Parsed transaction file",
		logging.F(logging.FieldFormat, p.format.Name),
		logging.F(logging.FieldCount, len(result.Transactions)),
		logging.F(logging.FieldDropped, result.Dropped))

	return result, nil
}

// parseRecord maps one well-formed record onto a Transaction. The last field is
// the category, the two before it the amount pair; everything between the date
// and the amounts is the description, re-joined because it may have contained
// the delimiter.
func (p *Parser) parseRecord(fields []string, title cases.Caser) (models.Transaction, *parsererror.RowError) {
	n := len(fields)
	delim := string(p.format.Comma())

	date, _, err := dateutils.ParseDate(fields[1], p.format.Layouts())
	if err != nil {
		return models.Transaction{}, &parsererror.RowError{Field: "date", Value: fields[1], Err: err}
	}

	amounts := fields[n-3 : n-1]
	expenseRaw := amounts[p.format.AmountIndex(format.Expense)]
	incomeRaw := amounts[p.format.AmountIndex(format.Income)]

	expense, err := parseAmount(expenseRaw)
	if err != nil {
		return models.Transaction{}, &parsererror.RowError{Field: string(format.Expense), Value: expenseRaw, Err: err}
	}
	income, err := parseAmount(incomeRaw)
	if err != nil {
		return models.Transaction{}, &parsererror.RowError{Field: string(format.Income), Value: incomeRaw, Err: err}
	}

	description := strings.TrimSpace(strings.Join(fields[2:n-3], delim))
	for strings.HasPrefix(description, delim) {
		description = strings.TrimSpace(strings.TrimPrefix(description, delim))
	}

	category := strings.TrimSpace(fields[n-1])
	if category == "" {
		category = UncategorizedLabel
	} else if p.format.TitleCaseCategories {
		category = title.String(category)
	}

	return models.Transaction{
		Account:     strings.TrimSpace(fields[0]),
		Date:        date,
		Description: description,
		Expense:     expense,
		Income:      income,
		Category:    category,
	}, nil
}

func (p *Parser) drop(result *Result, rowErr *parsererror.RowError) {
	result.Dropped++
	p.logger.Debug("Dropping malformed line",
		logging.F(logging.FieldLine, rowErr.Line),
		logging.F(logging.FieldReason, rowErr.Error()))
}

// parseAmount accepts an empty field as zero and rejects anything that is not
// a non-negative decimal number.
func parseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, errNegativeAmount
	}
	return d, nil
}

var (
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// decodeText returns content as a string. UTF-8 (with or without BOM) and
// BOM-prefixed UTF-16 are accepted; anything else is not text.
func decodeText(content []byte) (string, error) {
	utf16 := bytes.HasPrefix(content, bomUTF16LE) || bytes.HasPrefix(content, bomUTF16BE)
	if !utf16 && !utf8.Valid(content) {
		return "", parsererror.ErrNotText
	}

	decoded, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), content)
	if err != nil {
		return "", fmt.Errorf("%w: %v", parsererror.ErrNotText, err)
	}
	if bytes.IndexByte(decoded, 0) >= 0 {
		return "", parsererror.ErrNotText
	}
	return strings.TrimPrefix(string(decoded), "\uFEFF"), nil
}
