package selq

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrLimitUnsupported is returned for a query with a LIMIT clause on a server that uses BindAt
// placeholders. SQL Server has no LIMIT.
var ErrLimitUnsupported = errors.New("server does not support LIMIT")

// DB is satisfied by *sql.DB, *sql.Tx and *sql.Conn.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// SQLExecutor is an Executor over database/sql. Driver errors are wrapped once, here, in an
// *ExecutionError.
type SQLExecutor struct {
	db DB

	bindStyle       BindStyle
	emulatePrepares bool
	stringifyValues bool
	logQueries      bool
	log             logrus.FieldLogger
}

type Option func(*SQLExecutor)

// WithBindStyle sets the placeholder syntax of the server. The default is BindQuestion.
func WithBindStyle(style BindStyle) Option {
	return func(e *SQLExecutor) { e.bindStyle = style }
}

// WithEmulatePrepares sends queries with their arguments in a single call instead of preparing
// a statement first.
func WithEmulatePrepares(emulate bool) Option {
	return func(e *SQLExecutor) { e.emulatePrepares = emulate }
}

// WithStringifyValues turns every non-NULL value in a row into its string form.
func WithStringifyValues(stringify bool) Option {
	return func(e *SQLExecutor) { e.stringifyValues = stringify }
}

// WithLogger sets where failures, and queries when WithQueryLog is on, are logged.
func WithLogger(log logrus.FieldLogger) Option {
	return func(e *SQLExecutor) { e.log = log }
}

func WithQueryLog(enabled bool) Option {
	return func(e *SQLExecutor) { e.logQueries = enabled }
}

func NewSQLExecutor(db DB, opts ...Option) *SQLExecutor {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	e := &SQLExecutor{db: db, log: discard}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *SQLExecutor) Execute(ctx context.Context, query string, args []any) ([]Row, error) {
	if e.bindStyle == BindAt && hasLimit(query) {
		return nil, &ExecutionError{Query: query, Args: args, Err: ErrLimitUnsupported}
	}
	query = Rebind(e.bindStyle, query)
	start := time.Now()

	rows, err := e.query(ctx, query, args)
	if err != nil {
		e.log.WithError(err).WithField("sql", query).Warn("query failed")
		return nil, &ExecutionError{Query: query, Args: args, Err: err}
	}

	if e.logQueries {
		e.log.WithFields(logrus.Fields{
			"sql":     query,
			"args":    args,
			"rows":    len(rows),
			"elapsed": time.Since(start),
		}).Debug("query")
	}
	return rows, nil
}

// hasLimit reports whether query ends in the LIMIT clause compile renders.
func hasLimit(query string) bool {
	i := strings.LastIndex(query, " LIMIT ")
	if i == -1 {
		return false
	}
	_, err := strconv.ParseUint(query[i+len(" LIMIT "):], 10, 64)
	return err == nil
}

func (e *SQLExecutor) query(ctx context.Context, query string, args []any) ([]Row, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if e.emulatePrepares {
		rows, err = e.db.QueryContext(ctx, query, args...)
	} else {
		var stmt *sql.Stmt
		if stmt, err = e.db.PrepareContext(ctx, query); err != nil {
			return nil, err
		}
		// Runs after rows.Close below; a statement cannot close while its rows are open.
		defer stmt.Close()
		rows, err = stmt.QueryContext(ctx, args...)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return e.scan(rows)
}

// scan reads every row. No way to determine the number of rows, other than by simply scanning
// one-by-one.
func (e *SQLExecutor) scan(rows *sql.Rows) ([]Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var result []Row
	for rows.Next() {
		// Create pointers for "Scan" to populate row values onto a temporary "values" array.
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}

		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		row := make(Row, len(columns))
		for i, column := range columns {
			row[column] = e.value(values[i])
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (e *SQLExecutor) value(v any) any {
	if !e.stringifyValues || v == nil {
		return v
	}
	switch v := v.(type) {
	case []byte:
		return string(v)
	case time.Time:
		return v.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(v)
	}
}
