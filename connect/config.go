package connect

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownDriver = errors.New("unknown driver")
	ErrEmptyDSN      = errors.New("dsn is empty")
)

// Config describes one database connection. It is usually loaded from YAML:
//
//	driver: pgx
//	dsn: postgres://localhost:5432/app
//	username: app
//	password: secret
//	log_queries: true
//	options:
//	  persistent: true
//	  max_open_conns: 8
//	init_commands:
//	  - sql: SET search_path TO app
type Config struct {
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	Options Options `yaml:"options"`

	LogQueries   bool          `yaml:"log_queries"`
	InitCommands []InitCommand `yaml:"init_commands"`
}

// Options are the recognized connection options. The zero value is the default.
type Options struct {
	// Persistent keeps idle connections open indefinitely instead of closing them after
	// DefaultIdleTime.
	Persistent bool `yaml:"persistent"`
	// EmulatePrepares sends each query with its arguments in one call rather than preparing it.
	EmulatePrepares bool `yaml:"emulate_prepares"`
	// StringifyValues returns every non-NULL column value as a string.
	StringifyValues bool `yaml:"stringify_values"`

	MaxOpenConns    int           `yaml:"max_open_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// InitCommand is executed on every new connection, right after it is established. Use it for
// session settings; schema changes belong elsewhere.
type InitCommand struct {
	SQL    string `yaml:"sql"`
	Params []any  `yaml:"params"`
}

const DefaultIdleTime = time.Minute

// LoadConfig reads and validates a YAML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	return ParseConfig(data)
}

func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if _, ok := factories[c.Driver]; !ok {
		return fmt.Errorf("%w %q", ErrUnknownDriver, c.Driver)
	}
	if c.DSN == "" {
		return ErrEmptyDSN
	}
	if c.Options.MaxOpenConns < 0 {
		return fmt.Errorf("max_open_conns must not be negative, got %d", c.Options.MaxOpenConns)
	}
	for i, cmd := range c.InitCommands {
		if cmd.SQL == "" {
			return fmt.Errorf("init_commands[%d]: sql is empty", i)
		}
	}
	return nil
}
