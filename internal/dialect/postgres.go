package dialect

import (
	"database/sql"
	"fmt"
	"strings"
)

type PostgresDialect struct{}

func (d *PostgresDialect) Name() string { return "postgres" }

func (d *PostgresDialect) QuoteIdent(name string) string { return quoteWith(`"`, `"`, name) }

func (d *PostgresDialect) ColumnType(generic string) string {
	switch strings.ToUpper(generic) {
	case "INTEGER":
		return "BIGINT"
	case "REAL", "FLOAT":
		return "DOUBLE PRECISION"
	case "BOOLEAN":
		return "BOOLEAN"
	case "DATE":
		return "DATE"
	case "DATETIME":
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}

func (d *PostgresDialect) IdentityColumn(name string) string {
	return d.QuoteIdent(name) + " BIGSERIAL PRIMARY KEY"
}

func (d *PostgresDialect) CreateTableQuery(table string, defs []string) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", d.QuoteIdent(table), strings.Join(defs, ", "))
}

func (d *PostgresDialect) TableExistsQuery() string {
	// use $1 placeholder
	return `SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = current_schema() AND table_name = $1`
}

func (d *PostgresDialect) InsertQuery(table string, cols []string) string {
	return defaultInsertQuery(d, table, cols)
}

func (d *PostgresDialect) SelectQuery(table string, cols, filterCols []string, orderBy string) string {
	return defaultSelectQuery(d, table, cols, filterCols, orderBy)
}

func (d *PostgresDialect) DeleteQuery(table string, filterCols []string) string {
	return defaultDeleteQuery(d, table, filterCols)
}

func (d *PostgresDialect) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index+1)
}

// Postgres DDL is transactional, nothing to prepare.
func (d *PostgresDialect) BeforeIngest(tx *sql.Tx) error { return nil }

func (d *PostgresDialect) AfterIngest(tx *sql.Tx) error { return nil }
