// Package report renders a dashboard view model as text, JSON or CSV.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"

	"fjacquet/spend-dashboard/internal/common"
	"fjacquet/spend-dashboard/internal/logging"
	"fjacquet/spend-dashboard/internal/presenter"
	"fjacquet/spend-dashboard/internal/validation"
)

// ReportGenerator renders dashboards in the supported output formats.
type ReportGenerator struct {
	logger logging.Logger
	text   *TextRenderer
}

// NewReportGenerator creates a new instance of ReportGenerator.
func NewReportGenerator(logger logging.Logger) *ReportGenerator {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &ReportGenerator{
		logger: logger.WithField(logging.FieldComponent, "ReportGenerator"),
		text:   NewTextRenderer(),
	}
}

// GenerateReport renders d as text, json or csv. CSV output contains only the
// transaction listing.
func (g *ReportGenerator) GenerateReport(d *presenter.Dashboard, format string) ([]byte, error) {
	if d == nil {
		return nil, fmt.Errorf("cannot render nil dashboard")
	}
	switch format {
	case validation.OutputText:
		return []byte(g.text.Render(d)), nil
	case validation.OutputJSON:
		return g.generateJSONReport(d)
	case validation.OutputCSV:
		return g.generateCSVReport(d)
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

func (g *ReportGenerator) generateJSONReport(d *presenter.Dashboard) ([]byte, error) {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		g.logger.WithError(err).Error("Failed to marshal JSON report")
		return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
	}
	return append(data, '\n'), nil
}

func (g *ReportGenerator) generateCSVReport(d *presenter.Dashboard) ([]byte, error) {
	rows := d.Export
	if rows == nil {
		rows = []presenter.ExportRow{}
	}
	var buf bytes.Buffer
	if err := common.WriteCSV(&buf, rows, 0); err != nil {
		g.logger.WithError(err).Error("Failed to write CSV report")
		return nil, err
	}
	return buf.Bytes(), nil
}
