// Package summary implements the summary command: one pass of the pipeline
// over a transaction file.
package summary

import (
	"context"
	"errors"
	"fmt"
	"io"

	cmdcommon "fjacquet/spend-dashboard/cmd/common"
	"fjacquet/spend-dashboard/cmd/root"
	"fjacquet/spend-dashboard/internal/common"
	"fjacquet/spend-dashboard/internal/container"
	"fjacquet/spend-dashboard/internal/fileutils"
	"fjacquet/spend-dashboard/internal/filter"
	"fjacquet/spend-dashboard/internal/logging"
	"fjacquet/spend-dashboard/internal/parsererror"
	"fjacquet/spend-dashboard/internal/presenter"
	"fjacquet/spend-dashboard/internal/validation"

	"github.com/spf13/cobra"
)

// Options are the summary command's inputs.
type Options struct {
	Input  string
	Output string
	Save   string
	Filter cmdcommon.FilterFlags
}

var opts = Options{}

// Cmd is the summary command
var Cmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the dashboard for a transaction file",
	Long: `Parse a transaction file, apply the filters and print totals, breakdowns,
the monthly trend and the matching transactions.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return Run(cmd.Context(), root.AppContainer, opts, opts.Filter.Params(cmd), cmd.OutOrStdout())
	},
}

func init() {
	Cmd.Flags().StringVarP(&opts.Input, "input", "i", "", "Transaction file")
	Cmd.Flags().StringVar(&opts.Output, "output", validation.OutputText, "Output format: text, json or csv")
	Cmd.Flags().StringVarP(&opts.Save, "save", "s", "", "Write the report to this file instead of stdout")
	cmdcommon.RegisterFilterFlags(Cmd, &opts.Filter)
}

// Run executes the summary. Without an input file it prints how to get
// started and succeeds.
func Run(ctx context.Context, c *container.Container, o Options, params filter.Params, w io.Writer) error {
	if c == nil {
		return errors.New("application not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	logger := c.GetLogger()

	defaultFormat, err := c.GetFormats().Get("")
	if err != nil {
		return err
	}
	if o.Input == "" {
		fmt.Fprintln(w, presenter.MsgGetStarted)
		fmt.Fprintln(w, presenter.UsageHint(defaultFormat))
		return nil
	}

	if err := validation.IsValidOutputFormat(o.Output); err != nil {
		return err
	}
	if err := validation.IsValidInputFile(o.Input); err != nil {
		return err
	}

	content, err := fileutils.ReadFile(o.Input, c.MaxUploadBytes())
	if err != nil {
		return err
	}

	d, err := c.GetService().Render(ctx, "", content, params)
	if err != nil {
		var invalid *parsererror.InvalidFormatError
		if errors.As(err, &invalid) {
			invalid.FilePath = o.Input
			fmt.Fprintln(w, presenter.Hint(invalid.ExpectedFormat))
		}
		return err
	}

	if o.Save != "" && o.Output == validation.OutputCSV {
		rows := d.Export
		if rows == nil {
			rows = []presenter.ExportRow{}
		}
		if err := common.WriteCSVFile(o.Save, rows, 0, logger); err != nil {
			return fmt.Errorf("saving report: %w", err)
		}
		logger.Info("Report saved",
			logging.F(logging.FieldFile, o.Save),
			logging.F(logging.FieldCount, d.Matched))
		return nil
	}

	out, err := c.GetReportGenerator().GenerateReport(d, o.Output)
	if err != nil {
		return err
	}

	if o.Save == "" {
		_, err = w.Write(out)
		return err
	}
	if err := fileutils.WriteFile(o.Save, out, 0600); err != nil {
		return fmt.Errorf("saving report: %w", err)
	}
	logger.Info("Report saved",
		logging.F(logging.FieldFile, o.Save),
		logging.F(logging.FieldCount, d.Matched))
	return nil
}
