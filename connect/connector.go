package connect

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/aliics/selq"
)

// initConnector runs the init commands on every connection the pool opens, so session
// settings hold no matter which connection a query lands on.
type initConnector struct {
	driver.Connector

	commands  []InitCommand
	bindStyle selq.BindStyle
	log       logrus.FieldLogger
}

func (c initConnector) Connect(ctx context.Context) (driver.Conn, error) {
	conn, err := c.Connector.Connect(ctx)
	if err != nil {
		return nil, err
	}

	for _, cmd := range c.commands {
		c.log.WithField("sql", cmd.SQL).Debug("running init command")
		if err := execOnConn(ctx, conn, selq.Rebind(c.bindStyle, cmd.SQL), cmd.Params); err != nil {
			_ = conn.Close()
			return nil, &selq.ExecutionError{Query: cmd.SQL, Args: cmd.Params, Err: err}
		}
	}
	return conn, nil
}

// execOnConn runs one statement on a raw driver connection, converting args the way
// database/sql would.
func execOnConn(ctx context.Context, conn driver.Conn, query string, params []any) error {
	args, err := namedValues(conn, params)
	if err != nil {
		return err
	}

	if execer, ok := conn.(driver.ExecerContext); ok {
		_, err := execer.ExecContext(ctx, query, args)
		if !errors.Is(err, driver.ErrSkip) {
			return err
		}
	}

	var stmt driver.Stmt
	if preparer, ok := conn.(driver.ConnPrepareContext); ok {
		stmt, err = preparer.PrepareContext(ctx, query)
	} else {
		stmt, err = conn.Prepare(query)
	}
	if err != nil {
		return err
	}
	defer stmt.Close()

	if execer, ok := stmt.(driver.StmtExecContext); ok {
		_, err = execer.ExecContext(ctx, args)
		return err
	}
	values := make([]driver.Value, len(args))
	for i, arg := range args {
		values[i] = arg.Value
	}
	//nolint:staticcheck // drivers without StmtExecContext only offer Exec.
	_, err = stmt.Exec(values)
	return err
}

func namedValues(conn driver.Conn, params []any) ([]driver.NamedValue, error) {
	checker, _ := conn.(driver.NamedValueChecker)

	args := make([]driver.NamedValue, len(params))
	for i, param := range params {
		nv := driver.NamedValue{Ordinal: i + 1, Value: param}
		if checker != nil {
			err := checker.CheckNamedValue(&nv)
			if err == nil {
				args[i] = nv
				continue
			}
			if !errors.Is(err, driver.ErrSkip) {
				return nil, err
			}
		}

		v, err := driver.DefaultParameterConverter.ConvertValue(param)
		if err != nil {
			return nil, err
		}
		nv.Value = v
		args[i] = nv
	}
	return args, nil
}

// dsnConnector is a driver.Connector for drivers that only open by DSN.
type dsnConnector struct {
	dsn    string
	driver driver.Driver
}

func (c dsnConnector) Connect(context.Context) (driver.Conn, error) {
	return c.driver.Open(c.dsn)
}

func (c dsnConnector) Driver() driver.Driver {
	return c.driver
}

// registeredConnector builds a connector for a driver registered with database/sql under name.
func registeredConnector(name, dsn string) (driver.Connector, error) {
	// sql.Open does not dial, it only looks the driver up.
	db, err := sql.Open(name, dsn)
	if err != nil {
		return nil, err
	}
	d := db.Driver()
	_ = db.Close()

	if dc, ok := d.(driver.DriverContext); ok {
		return dc.OpenConnector(dsn)
	}
	return dsnConnector{dsn: dsn, driver: d}, nil
}
