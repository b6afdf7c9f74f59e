package dialect

import (
	"database/sql"
	"fmt"
	"strings"
)

// MysqlDialect targets MySQL / MariaDB. DDL commits implicitly there, so a
// failed run can leave a freshly created (empty) table behind.
type MysqlDialect struct{}

func (d *MysqlDialect) Name() string { return "mysql" }

func (d *MysqlDialect) QuoteIdent(name string) string { return quoteWith("`", "`", name) }

func (d *MysqlDialect) ColumnType(generic string) string {
	switch strings.ToUpper(generic) {
	case "INTEGER":
		return "BIGINT"
	case "REAL", "FLOAT":
		return "DOUBLE"
	case "BOOLEAN":
		return "BOOLEAN"
	case "DATE":
		return "DATE"
	case "DATETIME":
		return "DATETIME(3)"
	default:
		return "TEXT"
	}
}

func (d *MysqlDialect) IdentityColumn(name string) string {
	return d.QuoteIdent(name) + " BIGINT AUTO_INCREMENT PRIMARY KEY"
}

func (d *MysqlDialect) CreateTableQuery(table string, defs []string) string {
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", d.QuoteIdent(table), strings.Join(defs, ", "))
}

func (d *MysqlDialect) TableExistsQuery() string {
	return `SELECT COUNT(*) FROM information_schema.TABLES WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?`
}

func (d *MysqlDialect) InsertQuery(table string, cols []string) string {
	return defaultInsertQuery(d, table, cols)
}

func (d *MysqlDialect) SelectQuery(table string, cols, filterCols []string, orderBy string) string {
	return defaultSelectQuery(d, table, cols, filterCols, orderBy)
}

func (d *MysqlDialect) DeleteQuery(table string, filterCols []string) string {
	return defaultDeleteQuery(d, table, filterCols)
}

func (d *MysqlDialect) Placeholder(index int) string {
	return "?"
}

func (d *MysqlDialect) BeforeIngest(tx *sql.Tx) error {
	return nil
}

func (d *MysqlDialect) AfterIngest(tx *sql.Tx) error {
	return nil
}
