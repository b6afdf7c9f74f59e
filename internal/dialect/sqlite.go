package dialect

import (
	"database/sql"
	"fmt"
	"strings"
)

// SQLiteDialect is the default store (mattn/go-sqlite3).
type SQLiteDialect struct{}

func (d *SQLiteDialect) Name() string { return "sqlite3" }

func (d *SQLiteDialect) QuoteIdent(name string) string { return quoteWith(`"`, `"`, name) }

// ColumnType keeps the generic names: SQLite resolves them through type affinity.
func (d *SQLiteDialect) ColumnType(generic string) string { return strings.ToUpper(generic) }

func (d *SQLiteDialect) IdentityColumn(name string) string {
	return d.QuoteIdent(name) + " INTEGER PRIMARY KEY AUTOINCREMENT"
}

func (d *SQLiteDialect) CreateTableQuery(table string, defs []string) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", d.QuoteIdent(table), strings.Join(defs, ", "))
}

func (d *SQLiteDialect) TableExistsQuery() string {
	return `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`
}

func (d *SQLiteDialect) InsertQuery(table string, cols []string) string {
	return defaultInsertQuery(d, table, cols)
}

func (d *SQLiteDialect) SelectQuery(table string, cols, filterCols []string, orderBy string) string {
	return defaultSelectQuery(d, table, cols, filterCols, orderBy)
}

func (d *SQLiteDialect) DeleteQuery(table string, filterCols []string) string {
	return defaultDeleteQuery(d, table, filterCols)
}

func (d *SQLiteDialect) Placeholder(index int) string { return "?" }

func (d *SQLiteDialect) BeforeIngest(tx *sql.Tx) error { return nil }

func (d *SQLiteDialect) AfterIngest(tx *sql.Tx) error { return nil }
