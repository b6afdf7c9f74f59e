package dialect

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownDriver is returned for a driver name no dialect serves.
var ErrUnknownDriver = errors.New("unknown database driver")

// GetDialect returns the Dialect for a database/sql driver name. An empty
// name means SQLite, the default store.
func GetDialect(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite3", "sqlite":
		return &SQLiteDialect{}, nil
	case "postgres", "postgresql":
		return &PostgresDialect{}, nil
	case "mysql":
		return &MysqlDialect{}, nil
	case "sqlserver", "mssql":
		return &MSSQLDialect{}, nil
	case "oracle":
		return &OracleDialect{}, nil
	default:
		return nil, fmt.Errorf("%w %q (want sqlite3, postgres, mysql, sqlserver or oracle)", ErrUnknownDriver, driver)
	}
}

// Ensure interface implementation
var _ Dialect = (*SQLiteDialect)(nil)
var _ Dialect = (*MysqlDialect)(nil)
var _ Dialect = (*PostgresDialect)(nil)
var _ Dialect = (*MSSQLDialect)(nil)
var _ Dialect = (*OracleDialect)(nil)
