// Package store opens the destination database.
package store

import (
	"database/sql"
	"fmt"
	"strings"

	"dbf-pump/internal/dialect"

	_ "github.com/denisenkom/go-mssqldb" // SQL Server Driver
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/sijms/go-ora/v2"
)

// MemoryDSN is the sqlite DSN used when no output file is configured.
const MemoryDSN = ":memory:"

// Open connects to the store and returns it with its dialect. For sqlite an
// empty dsn means an in-memory database.
func Open(driver, dsn string) (*sql.DB, dialect.Dialect, error) {
	d, err := dialect.GetDialect(driver)
	if err != nil {
		return nil, nil, err
	}

	if d.Name() == "sqlite3" {
		if dsn == "" {
			dsn = MemoryDSN
		}
		if dsn != MemoryDSN && !strings.Contains(dsn, "?") {
			dsn += "?_foreign_keys=on"
		}
	} else if dsn == "" {
		return nil, nil, fmt.Errorf("dsn is required for driver %s", d.Name())
	}

	db, err := sql.Open(d.Name(), dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open db: %w", err)
	}
	if d.Name() == "sqlite3" {
		// every connection of :memory: is its own database
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("failed to connect to db: %w", err)
	}
	return db, d, nil
}
