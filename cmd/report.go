package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kyleseneker/track/internal/model"
	"github.com/kyleseneker/track/internal/report"
)

// windowFlags selects a report window. At most one may be set; with none,
// the configured report_last applies.
type windowFlags struct {
	today bool
	since string
	last  time.Duration
}

func (w *windowFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&w.today, "today", false, "Only sessions that started and ended today (local time).")
	cmd.Flags().StringVar(&w.since, "since", "", "Only sessions that started at or after this RFC 3339 time.")
	cmd.Flags().DurationVar(&w.last, "last", 0, "Only sessions that started within this duration (default: report_last).")
	cmd.MarkFlagsMutuallyExclusive("today", "since", "last")
}

func (w *windowFlags) timespan(defaultLast time.Duration) (report.Timespan, error) {
	switch {
	case w.today:
		return report.Today{}, nil
	case w.since != "":
		from, err := model.ParseTimestamp(w.since)
		if err != nil {
			return nil, fmt.Errorf("invalid --since: %w", err)
		}
		return report.Since{From: from}, nil
	case w.last < 0:
		return nil, fmt.Errorf("invalid --last %s: must be positive", w.last)
	case w.last > 0:
		return report.Last{Duration: w.last}, nil
	default:
		return report.Last{Duration: defaultLast}, nil
	}
}

func newReportCmd(opts *rootOptions) *cobra.Command {
	var window windowFlags

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the total recorded time in a window as HH:MM:SS",
		Long: `Sums the recorded sessions in the selected window and prints the total
as HH:MM:SS. The active session, if any, is not included.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				span, err := window.timespan(a.cfg.ReportLast)
				if err != nil {
					return err
				}
				total, err := a.reporter.TotalDuration(span)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), report.FormatDuration(total))
				return nil
			})
		},
	}
	window.register(cmd)
	return cmd
}

// logEntry is one record as shown by `track log`.
type logEntry struct {
	Start    string `json:"start" yaml:"start"`
	End      string `json:"end" yaml:"end"`
	Duration string `json:"duration" yaml:"duration"`
}

func newLogCmd(opts *rootOptions) *cobra.Command {
	var window windowFlags
	var format string

	cmd := &cobra.Command{
		Use:   "log",
		Short: "List recorded sessions in a window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(a *app) error {
				span, err := window.timespan(a.cfg.ReportLast)
				if err != nil {
					return err
				}
				records, err := a.reporter.Records(span)
				if err != nil {
					return err
				}
				return writeRecords(cmd.OutOrStdout(), records, format)
			})
		},
	}
	window.register(cmd)
	cmd.Flags().StringVar(&format, "format", "table", "Output format: table, json or yaml.")
	return cmd
}

func writeRecords(w io.Writer, records []model.TimeRecord, format string) error {
	entries := make([]logEntry, 0, len(records))
	for _, rec := range records {
		entries = append(entries, logEntry{
			Start:    rec.Start.String(),
			End:      rec.End.String(),
			Duration: report.FormatDuration(rec.Duration()),
		})
	}

	switch format {
	case "table":
		if len(records) == 0 {
			fmt.Fprintln(w, "No sessions recorded in this window.")
			return nil
		}
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"Start", "End", "Duration"})
		table.SetBorder(false)
		for _, rec := range records {
			table.Append([]string{
				rec.Start.Local().Format(displayTime),
				rec.End.Local().Format(displayTime),
				report.FormatDuration(rec.Duration()),
			})
		}
		table.Render()
		return nil
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("invalid --format %q: must be 'table', 'json' or 'yaml'", format)
	}
}
