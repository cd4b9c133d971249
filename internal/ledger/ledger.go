package ledger

import (
	"context"
	"database/sql"
	"earningsdump/internal/components/assert"
	"earningsdump/internal/components/chrono"
	"earningsdump/internal/components/telemetry"
	"errors"
	"fmt"
	"time"
)

const report_ledger_record = "ledger.record"

// Status is the outcome of processing a single day.
type Status string

const (
	StatusOK          Status = "ok"
	StatusMissing     Status = "missing"
	StatusFetchFailed Status = "fetch_failed"
	StatusFailed      Status = "failed"
)

// Entry is what gets recorded for a single day of a run.
type Entry struct {
	Day     time.Time
	URL     string
	Status  Status
	Rows    int
	Written int
	Message string
}

// Ledger keeps a record of which days every run processed and how that went.
// It does not store any page contents.
type Ledger struct {
	db     *Queries
	makeTx MakeTx
	time   chrono.TimeAPI
	tel    telemetry.API
}

func NewLedger(db *sql.DB, timeAPI chrono.TimeAPI, tel telemetry.API) Ledger {
	assert.NotNil(db)
	assert.NotNil(timeAPI)
	assert.NotNil(tel)
	return Ledger{
		db:     New(db),
		makeTx: NewMakeTx(db),
		time:   timeAPI,
		tel:    tel,
	}
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// StartRun creates a new run, entries are recorded against the returned RunLedger.
func (l Ledger) StartRun(ctx context.Context) (*RunLedger, error) {
	id, err := l.db.CreateRun(ctx, l.time.Now().Unix())
	if err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}
	return &RunLedger{ledger: l, id: id}, nil
}

// LastStatus returns the most recent entry recorded for `day`, ok is false if
// the day was never processed.
func (l Ledger) LastStatus(ctx context.Context, day time.Time) (entry Entry, ok bool, err error) {
	row, err := l.db.LastDateStatus(ctx, dayKey(day))
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	return toEntry(day.Location(), row), true, nil
}

func toEntry(loc *time.Location, row Date) Entry {
	day, err := time.ParseInLocation("2006-01-02", row.Day, loc)
	if err != nil {
		day = time.Time{}
	}
	return Entry{
		Day:     day,
		URL:     row.Url,
		Status:  Status(row.Status),
		Rows:    int(row.Rows),
		Written: int(row.Written),
		Message: row.Message,
	}
}

// RunLedger records the entries of a single run, it is safe for concurrent use
// as long as the underlying database serializes writes.
type RunLedger struct {
	ledger Ledger
	id     int64
}

func (r *RunLedger) ID() int64 {
	return r.id
}

// Record stores `entry`, recording the same day twice replaces the previous entry.
func (r *RunLedger) Record(ctx context.Context, entry Entry) error {
	err := r.ledger.db.RecordDate(ctx, RecordDateParams{
		RunID:      r.id,
		Day:        dayKey(entry.Day),
		Url:        entry.URL,
		Status:     string(entry.Status),
		Rows:       int64(entry.Rows),
		Written:    int64(entry.Written),
		Message:    entry.Message,
		RecordedAt: r.ledger.time.Now().UnixNano(),
	})
	if err != nil {
		r.ledger.tel.ReportBroken(report_ledger_record, err, r.id, dayKey(entry.Day))
		return err
	}
	return nil
}

// Finish marks the run as finished and returns every entry it recorded.
func (r *RunLedger) Finish(ctx context.Context) ([]Entry, error) {
	tx, discard, commit, err := r.ledger.makeTx()
	if err != nil {
		return nil, err
	}
	defer discard()

	err = tx.FinishRun(ctx, FinishRunParams{
		FinishedAt: sql.NullInt64{Int64: r.ledger.time.Now().Unix(), Valid: true},
		ID:         r.id,
	})
	if err != nil {
		return nil, err
	}
	rows, err := tx.ListRunDates(ctx, r.id)
	if err != nil {
		return nil, err
	}
	err = commit()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, len(rows))
	for i, row := range rows {
		entries[i] = toEntry(r.ledger.time.Now().Location(), row)
	}
	return entries, nil
}
