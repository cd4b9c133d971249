package dump

import (
	"context"
	"earningsdump/internal/components/assert"
	"earningsdump/internal/components/telemetry"
	"earningsdump/internal/earnings"
	"earningsdump/internal/earnings/output"
	"earningsdump/internal/ledger"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("earningsdump/earnings/dump")

const (
	report_dump_missing  = "dump.missing"
	report_dump_fetch    = "dump.fetch"
	report_dump_ledger   = "dump.ledger"
	report_dump_progress = "dump.progress"
	report_dump_rows     = "dump.rows"
	report_dump_written  = "dump.written"
)

type Options struct {
	// BaseURL is the earnings calendar, the day is appended by earnings.MakeURL.
	BaseURL string
	Layout  earnings.Layout
	// Formatter defaults to earnings.YahooCSVFormatter.
	Formatter earnings.RowFormatter
	// FilterField is the abbreviation the filter is evaluated against.
	FilterField string
	// Filter returns a fresh predicate for every day, predicates may be stateful.
	// nil selects every row.
	Filter func() earnings.Predicate
	Sink   output.Sink
	// Ledger is optional.
	Ledger *ledger.RunLedger
	// Parallel is the number of days processed at once, defaults to 1.
	Parallel int
	// OnDay is called once every day has been processed, calls are serialized.
	OnDay func(result DayResult, total int)
}

// DayResult is the outcome of a single day.
type DayResult struct {
	Date   time.Time
	URL    string
	Status ledger.Status
	// Rows is the number of rows in the earnings table.
	Rows int
	// Written is the number of rows that passed the filter.
	Written int
	// Err is the reason a day was skipped, fatal errors are returned by Run instead.
	Err error
}

type Summary struct {
	// Days holds the processed days in the order they were given to Run.
	Days  []DayResult
	Total int
}

// Dumper writes the earnings table of each requested day through a Sink.
type Dumper struct {
	fetcher earnings.DocumentFetcher
	opts    Options
	tel     telemetry.API

	lock  sync.Mutex
	total int
}

func NewDumper(fetcher earnings.DocumentFetcher, opts Options, tel telemetry.API) *Dumper {
	assert.NotNil(fetcher)
	assert.NotNil(opts.Sink)
	assert.NotNil(tel)
	assert.NotEmptyStr(opts.BaseURL)

	if opts.Formatter == nil {
		opts.Formatter = earnings.YahooCSVFormatter{}
	}
	if opts.Parallel <= 0 {
		opts.Parallel = 1
	}
	return &Dumper{
		fetcher: fetcher,
		opts:    opts,
		tel:     tel,
	}
}

// Run processes every day in `dates`.
//
// Days whose page does not exist or could not be downloaded are skipped. Any
// other error (see earnings.IsFatal) stops the run and is returned alongside
// the days that were processed so far.
func (d *Dumper) Run(ctx context.Context, dates []time.Time) (Summary, error) {
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()
	span.SetAttributes(attribute.Int("days", len(dates)))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]DayResult, len(dates))
	done := make([]bool, len(dates))

	// only the first error that is not a cancellation is kept, days that were
	// in flight when the run was canceled report ctx.Err().
	var (
		errLock sync.Mutex
		runErr  error
	)
	fail := func(err error) {
		errLock.Lock()
		defer errLock.Unlock()
		if runErr == nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			runErr = err
		}
		cancel()
	}

	sem := make(chan struct{}, d.opts.Parallel)
	wg := sync.WaitGroup{}
	for i, date := range dates {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			result, err := d.day(ctx, date)
			if err != nil {
				fail(err)
				return
			}
			results[i] = result
			done[i] = true
			d.report(ctx, result)
		}()
	}
	wg.Wait()

	summary := Summary{}
	for i := range dates {
		if done[i] {
			summary.Days = append(summary.Days, results[i])
		}
	}
	d.lock.Lock()
	summary.Total = d.total
	d.lock.Unlock()

	err := runErr
	if err == nil && len(summary.Days) < len(dates) {
		// the parent context was canceled before every day was done
		err = ctx.Err()
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return summary, err
}

func (d *Dumper) report(ctx context.Context, result DayResult) {
	d.lock.Lock()
	defer d.lock.Unlock()

	d.total += result.Written
	if result.Status == ledger.StatusOK {
		d.tel.ReportInfo(fmt.Sprintf(
			"%s earnings table contained %d stocks. %d stocks met the filter criteria. %d total records have been written.",
			result.Date.Format("01-02-2006"),
			result.Rows,
			result.Written,
			d.total,
		))
		d.tel.ReportCount(report_dump_rows, int64(result.Rows))
		d.tel.ReportCount(report_dump_written, int64(result.Written))
	}

	if d.opts.Ledger != nil {
		message := ""
		if result.Err != nil {
			message = result.Err.Error()
		}
		err := d.opts.Ledger.Record(ctx, ledger.Entry{
			Day:     result.Date,
			URL:     result.URL,
			Status:  result.Status,
			Rows:    result.Rows,
			Written: result.Written,
			Message: message,
		})
		if err != nil {
			d.tel.ReportWarning(report_dump_ledger, err)
		}
	}

	if d.opts.OnDay != nil {
		d.opts.OnDay(result, d.total)
	}
	d.tel.ReportDebug(report_dump_progress, result.Date.Format("2006-01-02"), string(result.Status))
}

func (d *Dumper) day(ctx context.Context, date time.Time) (DayResult, error) {
	url := earnings.MakeURL(d.opts.BaseURL, date)
	result := DayResult{Date: date, URL: url}

	if !d.fetcher.Exists(ctx, url) {
		d.tel.ReportInfo(fmt.Sprintf(
			"Page %s does not exist, therefore no .csv file for %s can be created.",
			url, date.Format("Monday, January 2, 2006"),
		))
		result.Status = ledger.StatusMissing
		result.Err = earnings.ErrNotFound
		return result, nil
	}

	session, err := earnings.Open(ctx, d.fetcher, d.opts.BaseURL, date, d.opts.Layout)
	if ctx.Err() != nil {
		return result, ctx.Err()
	}
	if err != nil && earnings.IsFatal(err) {
		return result, err
	}
	if err != nil {
		d.tel.ReportWarning(report_dump_fetch, err, url)
		result.Status = ledger.StatusFailed
		var fetchErr *earnings.FetchError
		if errors.As(err, &fetchErr) {
			result.Status = ledger.StatusFetchFailed
		}
		result.Err = err
		return result, nil
	}

	field, ok := session.Schema().Index(d.opts.FilterField)
	if !ok {
		return result, &earnings.SchemaError{
			Missing: []string{d.opts.FilterField},
			Detail:  "is used as the filter field but is not an output order abbreviation",
		}
	}

	var pred earnings.Predicate
	if d.opts.Filter != nil {
		pred = d.opts.Filter()
	}

	writer, err := d.opts.Sink.Create(date)
	if err != nil {
		return result, fmt.Errorf("create output for %s: %w", date.Format("2006-01-02"), err)
	}

	written := 0
	seq := earnings.Select(session, field, pred)
	for seq.Next() {
		line, err := d.opts.Formatter.Format(seq.Row(), date)
		if err == nil {
			err = writer.WriteLine(line)
		}
		if err != nil {
			return result, errors.Join(err, writer.Discard())
		}
		written++
	}
	err = seq.Err()
	if err != nil {
		return result, errors.Join(err, writer.Discard())
	}

	err = writer.Commit()
	if err != nil {
		return result, fmt.Errorf("commit output for %s: %w", date.Format("2006-01-02"), err)
	}

	result.Status = ledger.StatusOK
	result.Rows = session.RowCount()
	result.Written = written
	return result, nil
}
