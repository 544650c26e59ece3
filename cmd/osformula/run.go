package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/mateothegreat/osformula"
	"github.com/mateothegreat/osformula/checks"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

type outputFormat string

const (
	outputText outputFormat = "text"
	outputJSON outputFormat = "json"
)

var _ pflag.Value = (*outputFormat)(nil)

func (f *outputFormat) String() string {
	return string(*f)
}

func (f *outputFormat) Set(s string) error {
	switch outputFormat(s) {
	case outputText, outputJSON:
		*f = outputFormat(s)
		return nil
	}
	return fmt.Errorf("must be %q or %q", outputText, outputJSON)
}

func (f *outputFormat) Type() string {
	return "format"
}

func newRunCommand(opts *options) *cobra.Command {
	format := outputText
	var concurrency int
	cmd := &cobra.Command{
		Use:   "run",
		Short: "run every scenario through the shared check groups",
		Long: `Merges every scenario of the table onto the defaults and runs the
shared check groups for it on every selected platform. Exits non-zero when a
check fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := opts.table()
			if err != nil {
				return err
			}
			platforms, err := opts.resolvePlatforms()
			if err != nil {
				return err
			}
			suite, err := checks.NewSuite(
				osformula.WithLogger(opts.logger),
				osformula.WithConcurrency(concurrency),
			)
			if err != nil {
				return err
			}

			opts.logger.Info("running scenarios",
				zap.Int("scenarios", table.Len()),
				zap.Int("platforms", len(platforms)))
			report, err := suite.Run(cmd.Context(), table, platforms...)
			if err != nil {
				return err
			}

			if err := writeReport(cmd.OutOrStdout(), format, report); err != nil {
				return err
			}
			if n := report.Count(osformula.StatusFailed); n > 0 {
				return fmt.Errorf("%d checks failed", n)
			}
			return nil
		},
	}
	cmd.Flags().VarP(&format, "output", "o", "output format: text or json")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "scenario runs to execute at once")
	return cmd
}

type jsonResult struct {
	Scenario string  `json:"scenario"`
	Platform string  `json:"platform"`
	Check    string  `json:"check"`
	Status   string  `json:"status"`
	Error    string  `json:"error,omitempty"`
	Seconds  float64 `json:"seconds"`
}

func writeReport(w io.Writer, format outputFormat, report *osformula.Report) error {
	if format == outputJSON {
		results := make([]jsonResult, 0, len(report.Results))
		for _, r := range report.Results {
			jr := jsonResult{
				Scenario: string(r.Scenario),
				Platform: r.Platform.Name,
				Check:    r.Check,
				Status:   string(r.Status),
				Seconds:  r.Duration.Seconds(),
			}
			if r.Err != nil {
				jr.Error = r.Err.Error()
			}
			results = append(results, jr)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCENARIO\tPLATFORM\tCHECK\tSTATUS\tDETAIL")
	for _, r := range report.Results {
		detail := ""
		if r.Err != nil {
			detail = r.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.Scenario, r.Platform, r.Check, r.Status, detail)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d passed, %d failed, %d skipped\n",
		report.Count(osformula.StatusPassed),
		report.Count(osformula.StatusFailed),
		report.Count(osformula.StatusSkipped))
	return err
}
