package commands

import (
	"earningsdump/internal/components/chrono"
	"earningsdump/internal/components/telemetry"
	"earningsdump/internal/daterange"
	"earningsdump/internal/earnings/output"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
)

var watchCron string

func init() {
	watchCmd.Flags().StringVar(&watchCron, "cron", "", "A 5 field cron spec (America/New_York), defaults to watch.cron.")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch [--cron <spec>]",
	Short: "Dumps the earnings table of the current day on a schedule until interrupted.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.close(ctx)

		spec := a.cfg.Watch.Cron
		if watchCron != "" {
			spec = watchCron
		}
		err = chrono.ValidateSpec(spec)
		if err != nil {
			return fmt.Errorf("invalid cron spec %q: %w", spec, err)
		}

		telemetry.InstrumentPerfStats(ctx, a.tel)

		cron := chrono.NewStandardCron(telemetry.NewScopedAPI("watch", a.tel))
		defer cron.Stop()

		err = cron.Cron(spec, func() {
			dates := daterange.Build(chrono.Day(a.time.Now()), 1)
			if a.cfg.Watch.Weekdays {
				dates = daterange.Weekdays(dates)
			}
			if len(dates) == 0 {
				return
			}

			start := time.Now()
			summary, err := a.dump(ctx, dates, output.FileSink{Dir: a.cfg.Output.Dir}, 1, nil)
			if err != nil {
				a.tel.ReportBroken("watch.dump", err)
				return
			}
			slog.Info("dumped", "records", summary.Total, "took", time.Since(start).String())
		})
		if err != nil {
			return err
		}

		slog.Info("watching", "cron", spec)
		<-ctx.Done()
		return nil
	},
}
