package commands

import (
	"context"
	"database/sql"
	"earningsdump/internal/components/chrono"
	"earningsdump/internal/components/telemetry"
	"earningsdump/internal/daterange"
	"earningsdump/internal/earnings"
	"earningsdump/internal/ledger"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

// app holds everything a command needs, built from the config file.
type app struct {
	cfg     Config
	tel     telemetry.API
	time    chrono.TimeAPI
	otel    telemetry.Otel
	fetcher *earnings.Fetcher
	db      *sql.DB
	ledger  *ledger.Ledger
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	return newAppFromConfig(ctx, cfg)
}

func newAppFromConfig(ctx context.Context, cfg Config) (*app, error) {
	tel := telemetry.SlogAPI{}

	otel, err := telemetry.Setup(ctx, "earningsdump", cfg.Otlp)
	if err != nil {
		return nil, fmt.Errorf("setup otel: %w", err)
	}

	var output telemetry.MessageOutput
	if verbose {
		fsOutput, err := telemetry.NewFilesystemOutput(cfg.Fetch.DumpDir, tel)
		if err != nil {
			return nil, fmt.Errorf("create dump dir: %w", err)
		}
		output = fsOutput
	}

	a := &app{
		cfg:  cfg,
		tel:  tel,
		time: chrono.NewStandardTime(),
		otel: otel,
		fetcher: earnings.NewFetcher(
			telemetry.NewScopedAPI("earnings", tel),
			cfg.FetcherOptions(output),
		),
	}

	if cfg.Ledger.Dsn != "" {
		db, err := ledger.OpenDB(ctx, cfg.Ledger.Dsn)
		if err != nil {
			a.close(ctx)
			return nil, fmt.Errorf("open ledger: %w", err)
		}
		l := ledger.NewLedger(db, a.time, telemetry.NewScopedAPI("ledger", tel))
		a.db = db
		a.ledger = &l
	}

	return a, nil
}

func (a *app) close(ctx context.Context) {
	if a.db != nil {
		err := a.db.Close()
		if err != nil {
			slog.Warn("failed to close ledger", "err", err.Error())
		}
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err := a.otel.Shutdown(ctx)
	if err != nil {
		slog.Warn("failed to shutdown otel", "err", err.Error())
	}
}

// usageError is returned for invalid arguments, the configured help text is
// appended to the message.
func (a *app) usageError(err error) error {
	return fmt.Errorf("%w\n\n%s", err, a.cfg.Help)
}

// parseDates turns `<date> [count]` into the list of days to process.
// A missing count is the same as 0, a single day.
func (a *app) parseDates(args []string, weekdays bool) ([]time.Time, error) {
	if len(args) == 0 || len(args) > 2 {
		return nil, a.usageError(fmt.Errorf("expected a date and an optional count, got %d arguments", len(args)))
	}

	start, err := daterange.Parse(args[0], chrono.NY())
	if err != nil {
		return nil, a.usageError(err)
	}

	count := 0
	if len(args) == 2 {
		count, err = strconv.Atoi(args[1])
		if err != nil || count < 0 {
			return nil, a.usageError(fmt.Errorf("count must be a non-negative integer, got %q", args[1]))
		}
	}

	dates := daterange.Build(start, count)
	if weekdays {
		dates = daterange.Weekdays(dates)
	}
	return dates, nil
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}
