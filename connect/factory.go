// Package connect opens database connections described by a Config and hands back executors
// for selq queries.
package connect

import (
	"database/sql/driver"
	"sort"

	"github.com/aliics/selq"
)

// DriverFactory knows how to open one kind of database. The factory is chosen by
// Config.Driver.
type DriverFactory interface {
	// Name is the value of Config.Driver that selects this factory.
	Name() string
	// BindStyle is the placeholder syntax the server understands.
	BindStyle() selq.BindStyle
	// Connector prepares connections without dialing. Credentials from the config override
	// those in the DSN.
	Connector(cfg Config) (driver.Connector, error)
}

var factories = map[string]DriverFactory{}

func register(f DriverFactory) {
	factories[f.Name()] = f
}

func init() {
	register(sqlite3Factory{})
	register(sqliteFactory{})
	register(pgxFactory{})
	register(postgresFactory{})
	register(mysqlFactory{})
	register(sqlserverFactory{})
}

// Factory returns the factory registered under name.
func Factory(name string) (DriverFactory, bool) {
	f, ok := factories[name]
	return f, ok
}

// Drivers lists the registered driver names.
func Drivers() []string {
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
