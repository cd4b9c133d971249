package ledger

import (
	"context"
	"database/sql"
)

type Run struct {
	ID         int64
	StartedAt  int64
	FinishedAt sql.NullInt64
}

type Date struct {
	RunID      int64
	Day        string
	Url        string
	Status     string
	Rows       int64
	Written    int64
	Message    string
	RecordedAt int64
}

const createRun = `
insert into runs(started_at) values (?)
returning id
`

func (q *Queries) CreateRun(ctx context.Context, startedAt int64) (int64, error) {
	row := q.db.QueryRowContext(ctx, createRun, startedAt)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const finishRun = `
update runs set finished_at = ? where id = ?
`

type FinishRunParams struct {
	FinishedAt sql.NullInt64
	ID         int64
}

func (q *Queries) FinishRun(ctx context.Context, arg FinishRunParams) error {
	_, err := q.db.ExecContext(ctx, finishRun, arg.FinishedAt, arg.ID)
	return err
}

const recordDate = `
insert into dates(run_id, day, url, status, total_rows, written, message, recorded_at)
values (?, ?, ?, ?, ?, ?, ?, ?)
on conflict (run_id, day) do update set
    url = excluded.url,
    status = excluded.status,
    total_rows = excluded.total_rows,
    written = excluded.written,
    message = excluded.message,
    recorded_at = excluded.recorded_at
`

type RecordDateParams struct {
	RunID      int64
	Day        string
	Url        string
	Status     string
	Rows       int64
	Written    int64
	Message    string
	RecordedAt int64
}

func (q *Queries) RecordDate(ctx context.Context, arg RecordDateParams) error {
	_, err := q.db.ExecContext(ctx, recordDate,
		arg.RunID,
		arg.Day,
		arg.Url,
		arg.Status,
		arg.Rows,
		arg.Written,
		arg.Message,
		arg.RecordedAt,
	)
	return err
}

const listRunDates = `
select run_id, day, url, status, total_rows, written, message, recorded_at from dates
where run_id = ?
order by day
`

func (q *Queries) ListRunDates(ctx context.Context, runID int64) ([]Date, error) {
	rows, err := q.db.QueryContext(ctx, listRunDates, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Date
	for rows.Next() {
		var i Date
		if err := rows.Scan(
			&i.RunID,
			&i.Day,
			&i.Url,
			&i.Status,
			&i.Rows,
			&i.Written,
			&i.Message,
			&i.RecordedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const lastDateStatus = `
select run_id, day, url, status, total_rows, written, message, recorded_at from dates
where day = ?
order by recorded_at desc, run_id desc
limit 1
`

func (q *Queries) LastDateStatus(ctx context.Context, day string) (Date, error) {
	row := q.db.QueryRowContext(ctx, lastDateStatus, day)
	var i Date
	err := row.Scan(
		&i.RunID,
		&i.Day,
		&i.Url,
		&i.Status,
		&i.Rows,
		&i.Written,
		&i.Message,
		&i.RecordedAt,
	)
	return i, err
}
