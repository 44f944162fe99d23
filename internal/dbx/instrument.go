package dbx

import (
	"context"
	"database/sql"
	"strings"
	"time"
)

// QueryObserver receives the outcome of every statement issued through an
// instrumented handle. kind is the lower-cased leading SQL keyword.
type QueryObserver interface {
	ObserveQuery(kind string, elapsed time.Duration, err error)
}

// InstrumentedDB forwards to an underlying DBTX and reports each call to an
// observer. For QueryRowContext the reported error is the query error from
// Row.Err; sql.ErrNoRows and scan conversion failures are not query errors.
type InstrumentedDB struct {
	db  DBTX
	obs QueryObserver
}

// Instrument wraps db. A nil observer returns db unchanged.
func Instrument(db DBTX, obs QueryObserver) DBTX {
	if obs == nil {
		return db
	}
	return &InstrumentedDB{db: db, obs: obs}
}

func (i *InstrumentedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := i.db.ExecContext(ctx, query, args...)
	i.obs.ObserveQuery(StatementKind(query), time.Since(start), err)
	return res, err
}

func (i *InstrumentedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := i.db.QueryContext(ctx, query, args...)
	i.obs.ObserveQuery(StatementKind(query), time.Since(start), err)
	return rows, err
}

func (i *InstrumentedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := i.db.QueryRowContext(ctx, query, args...)
	i.obs.ObserveQuery(StatementKind(query), time.Since(start), row.Err())
	return row
}

// StatementKind returns the first keyword of query in lower case, or
// "unknown" for an empty statement.
func StatementKind(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "unknown"
	}
	return strings.ToLower(fields[0])
}
