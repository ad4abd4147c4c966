package connect

import (
	"database/sql/driver"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	mssql "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/msdsn"
	_ "modernc.org/sqlite"

	"github.com/aliics/selq"
)

// sqlite3Factory uses the cgo driver. SQLite has no credentials, so they are ignored.
type sqlite3Factory struct{}

func (sqlite3Factory) Name() string              { return "sqlite3" }
func (sqlite3Factory) BindStyle() selq.BindStyle { return selq.BindQuestion }

func (sqlite3Factory) Connector(cfg Config) (driver.Connector, error) {
	return registeredConnector("sqlite3", cfg.DSN)
}

// sqliteFactory uses the pure Go driver.
type sqliteFactory struct{}

func (sqliteFactory) Name() string              { return "sqlite" }
func (sqliteFactory) BindStyle() selq.BindStyle { return selq.BindQuestion }

func (sqliteFactory) Connector(cfg Config) (driver.Connector, error) {
	return registeredConnector("sqlite", cfg.DSN)
}

type pgxFactory struct{}

func (pgxFactory) Name() string              { return "pgx" }
func (pgxFactory) BindStyle() selq.BindStyle { return selq.BindDollar }

func (pgxFactory) Connector(cfg Config) (driver.Connector, error) {
	cc, err := pgxConnConfig(cfg)
	if err != nil {
		return nil, err
	}
	return stdlib.GetConnector(*cc), nil
}

func pgxConnConfig(cfg Config) (*pgx.ConnConfig, error) {
	cc, err := pgx.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.Username != "" {
		cc.User = cfg.Username
	}
	if cfg.Password != "" {
		cc.Password = cfg.Password
	}
	return cc, nil
}

// postgresFactory uses lib/pq.
type postgresFactory struct{}

func (postgresFactory) Name() string              { return "postgres" }
func (postgresFactory) BindStyle() selq.BindStyle { return selq.BindDollar }

func (postgresFactory) Connector(cfg Config) (driver.Connector, error) {
	dsn := cfg.DSN
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		var err error
		if dsn, err = pq.ParseURL(dsn); err != nil {
			return nil, err
		}
	}
	if cfg.Username != "" {
		dsn += " user=" + quoteKeywordValue(cfg.Username)
	}
	if cfg.Password != "" {
		dsn += " password=" + quoteKeywordValue(cfg.Password)
	}

	connector, err := pq.NewConnector(strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	return connector, nil
}

// quoteKeywordValue quotes a value for a libpq keyword/value connection string.
func quoteKeywordValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

type mysqlFactory struct{}

func (mysqlFactory) Name() string              { return "mysql" }
func (mysqlFactory) BindStyle() selq.BindStyle { return selq.BindQuestion }

func (mysqlFactory) Connector(cfg Config) (driver.Connector, error) {
	mc, err := mysql.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.Username != "" {
		mc.User = cfg.Username
	}
	if cfg.Password != "" {
		mc.Passwd = cfg.Password
	}

	return mysql.NewConnector(mc)
}

// sqlserverFactory accepts URL, ADO and ODBC style DSNs. SQL Server has no LIMIT clause, so
// queries using Limit or FetchOne are refused by the executor before reaching the server.
type sqlserverFactory struct{}

func (sqlserverFactory) Name() string              { return "sqlserver" }
func (sqlserverFactory) BindStyle() selq.BindStyle { return selq.BindAt }

func (sqlserverFactory) Connector(cfg Config) (driver.Connector, error) {
	params, err := sqlserverParams(cfg)
	if err != nil {
		return nil, err
	}
	return mssql.NewConnectorConfig(params), nil
}

// sqlserverParams sets the credentials on the parsed DSN, so they never need escaping.
func sqlserverParams(cfg Config) (msdsn.Config, error) {
	params, err := msdsn.Parse(cfg.DSN)
	if err != nil {
		return msdsn.Config{}, err
	}
	if cfg.Username != "" {
		params.User = cfg.Username
	}
	if cfg.Password != "" {
		params.Password = cfg.Password
	}
	return params, nil
}
