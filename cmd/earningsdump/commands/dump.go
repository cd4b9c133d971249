package commands

import (
	"context"
	"earningsdump/internal/components/telemetry"
	"earningsdump/internal/earnings/dump"
	"earningsdump/internal/earnings/output"
	"earningsdump/internal/ledger"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	dumpOut      string
	dumpWeekdays bool
	dumpParallel int
	dumpProgress bool
)

func init() {
	dumpCmd.Flags().StringVar(&dumpOut, "out", "", "The directory to write csv files to, defaults to output.dir.")
	dumpCmd.Flags().BoolVar(&dumpWeekdays, "weekdays", false, "Skip saturdays and sundays.")
	dumpCmd.Flags().IntVar(&dumpParallel, "parallel", 1, "The number of days to download at once.")
	dumpCmd.Flags().BoolVar(&dumpProgress, "progress", false, "Show a progress bar.")
	rootCmd.AddCommand(dumpCmd)
}

var dumpCmd = &cobra.Command{
	Use:   "dump <mm/dd/yyyy> [count]",
	Short: "Writes the earnings table of a day (and the count-1 days after it) to csv files.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		dates, err := a.parseDates(args, dumpWeekdays)
		if err != nil {
			return err
		}

		dir := a.cfg.Output.Dir
		if dumpOut != "" {
			dir = dumpOut
		}

		bar := newProgressBar(dumpProgress, os.Stderr, len(dates))

		summary, err := a.dump(ctx, dates, output.FileSink{Dir: dir}, dumpParallel, bar)
		if bar != nil {
			bar.Finish()
		}
		if err != nil {
			return err
		}

		slog.Info("done", "days", len(summary.Days), "records", summary.Total, "dir", dir)
		return nil
	},
}

// newProgressBar returns nil unless progress was requested and `out` is a terminal.
func newProgressBar(enabled bool, out *os.File, total int) *progressbar.ProgressBar {
	if !enabled || !term.IsTerminal(int(out.Fd())) {
		return nil
	}
	return progressbar.NewOptions64(
		int64(total),
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription("dumping"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(10),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(out, "\n")
		}),
	)
}

// dump runs a dumper over `dates`, recording the run in the ledger if one is configured.
func (a *app) dump(ctx context.Context, dates []time.Time, sink output.Sink, parallel int, bar *progressbar.ProgressBar) (dump.Summary, error) {
	var run *ledger.RunLedger
	if a.ledger != nil {
		r, err := a.ledger.StartRun(ctx)
		if err != nil {
			return dump.Summary{}, err
		}
		run = r
	}

	dumper := dump.NewDumper(a.fetcher, dump.Options{
		BaseURL:     a.cfg.Url,
		Layout:      a.cfg.Layout(),
		FilterField: a.cfg.Filter.Field,
		Filter:      a.cfg.Predicate(),
		Sink:        sink,
		Ledger:      run,
		Parallel:    parallel,
		OnDay: func(result dump.DayResult, total int) {
			if bar != nil {
				bar.Describe(fmt.Sprintf("%s (%d records)", result.Date.Format("01-02-2006"), total))
				bar.Add(1)
			}
		},
	}, telemetry.NewScopedAPI("dump", a.tel))

	summary, err := dumper.Run(ctx, dates)

	if run != nil {
		_, finishErr := run.Finish(context.WithoutCancel(ctx))
		if finishErr != nil {
			a.tel.ReportWarning("ledger.finish", finishErr)
		}
	}
	return summary, err
}
