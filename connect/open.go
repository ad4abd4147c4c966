package connect

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/aliics/selq"
)

// Connection is an open pool together with the executor that queries run on.
type Connection struct {
	db       *sql.DB
	executor *selq.SQLExecutor
	factory  DriverFactory
}

// Open validates cfg, opens the pool with the driver it names and checks the server is
// reachable. The init commands run on every connection the pool opens. log may be nil.
func Open(ctx context.Context, cfg Config, log logrus.FieldLogger) (*Connection, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = discardLogger()
	}
	log = log.WithField("driver", cfg.Driver)

	factory := factories[cfg.Driver]
	connector, err := factory.Connector(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", cfg.Driver, err)
	}
	if len(cfg.InitCommands) > 0 {
		connector = initConnector{
			Connector: connector,
			commands:  cfg.InitCommands,
			bindStyle: factory.BindStyle(),
			log:       log,
		}
	}

	db := sql.OpenDB(connector)
	configurePool(db, cfg.Options)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to %s: %w", cfg.Driver, err)
	}

	log.WithField("init_commands", len(cfg.InitCommands)).Info("connected")

	return &Connection{
		db: db,
		executor: selq.NewSQLExecutor(db,
			selq.WithBindStyle(factory.BindStyle()),
			selq.WithEmulatePrepares(cfg.Options.EmulatePrepares),
			selq.WithStringifyValues(cfg.Options.StringifyValues),
			selq.WithQueryLog(cfg.LogQueries),
			selq.WithLogger(log),
		),
		factory: factory,
	}, nil
}

func configurePool(db *sql.DB, opts Options) {
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	if opts.Persistent {
		db.SetConnMaxIdleTime(0)
	} else {
		db.SetConnMaxIdleTime(DefaultIdleTime)
	}
}

// Table starts a query on table that runs on this connection.
func (c *Connection) Table(table string) selq.QueryBuilder {
	return selq.New(c.executor, table)
}

func (c *Connection) Executor() *selq.SQLExecutor {
	return c.executor
}

// DB returns the underlying pool.
func (c *Connection) DB() *sql.DB {
	return c.db
}

func (c *Connection) Driver() DriverFactory {
	return c.factory
}

func (c *Connection) Close() error {
	return c.db.Close()
}

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
