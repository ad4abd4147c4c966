package connect

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/aliics/selq"
)

// PgxQuerier is satisfied by *pgx.Conn, pgx.Tx and *pgxpool.Pool.
type PgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PgxExecutor runs selq queries over the native pgx interface, skipping database/sql.
type PgxExecutor struct {
	conn       PgxQuerier
	log        logrus.FieldLogger
	logQueries bool
}

func NewPgxExecutor(conn PgxQuerier, log logrus.FieldLogger, logQueries bool) *PgxExecutor {
	if log == nil {
		log = discardLogger()
	}
	return &PgxExecutor{conn: conn, log: log, logQueries: logQueries}
}

func (e *PgxExecutor) Execute(ctx context.Context, query string, args []any) ([]selq.Row, error) {
	query = selq.Rebind(selq.BindDollar, query)
	start := time.Now()

	maps, err := e.collect(ctx, query, args)
	if err != nil {
		e.log.WithError(err).WithField("sql", query).Warn("query failed")
		return nil, &selq.ExecutionError{Query: query, Args: args, Err: err}
	}

	rows := make([]selq.Row, len(maps))
	for i, m := range maps {
		rows[i] = m
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

func (e *PgxExecutor) collect(ctx context.Context, query string, args []any) ([]map[string]any, error) {
	rows, err := e.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToMap)
}

// ConnectPgx opens a single native pgx connection for cfg, which must name the pgx driver,
// and runs the init commands on it.
func ConnectPgx(ctx context.Context, cfg Config, log logrus.FieldLogger) (*pgx.Conn, *PgxExecutor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	if cfg.Driver != (pgxFactory{}).Name() {
		return nil, nil, ErrUnknownDriver
	}

	cc, err := pgxConnConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	conn, err := pgx.ConnectConfig(ctx, cc)
	if err != nil {
		return nil, nil, err
	}

	for _, cmd := range cfg.InitCommands {
		if _, err := conn.Exec(ctx, selq.Rebind(selq.BindDollar, cmd.SQL), cmd.Params...); err != nil {
			_ = conn.Close(ctx)
			return nil, nil, &selq.ExecutionError{Query: cmd.SQL, Args: cmd.Params, Err: err}
		}
	}

	return conn, NewPgxExecutor(conn, log, cfg.LogQueries), nil
}
