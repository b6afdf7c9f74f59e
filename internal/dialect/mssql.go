package dialect

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/denisenkom/go-mssqldb" // SQL Server Driver
)

type MSSQLDialect struct{}

// Helper: MSSQL Driver (go-mssqldb) prefers @p1, @p2 named parameters over ?

func (d *MSSQLDialect) Name() string { return "sqlserver" }

func (d *MSSQLDialect) QuoteIdent(name string) string { return quoteWith("[", "]", name) }

func (d *MSSQLDialect) ColumnType(generic string) string {
	switch strings.ToUpper(generic) {
	case "INTEGER":
		return "BIGINT"
	case "REAL", "FLOAT":
		return "FLOAT"
	case "BOOLEAN":
		return "BIT"
	case "DATE":
		return "DATE"
	case "DATETIME":
		return "DATETIME2"
	default:
		return "NVARCHAR(MAX)"
	}
}

func (d *MSSQLDialect) IdentityColumn(name string) string {
	return d.QuoteIdent(name) + " BIGINT IDENTITY(1,1) PRIMARY KEY"
}

func (d *MSSQLDialect) CreateTableQuery(table string, defs []string) string {
	// T-SQL has no CREATE TABLE IF NOT EXISTS
	return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL CREATE TABLE %s (%s)",
		strings.ReplaceAll(table, "'", "''"), d.QuoteIdent(table), strings.Join(defs, ", "))
}

func (d *MSSQLDialect) TableExistsQuery() string {
	return `SELECT COUNT(*) FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_NAME = @p1 AND TABLE_TYPE = 'BASE TABLE'`
}

func (d *MSSQLDialect) InsertQuery(table string, cols []string) string {
	return defaultInsertQuery(d, table, cols)
}

func (d *MSSQLDialect) SelectQuery(table string, cols, filterCols []string, orderBy string) string {
	return defaultSelectQuery(d, table, cols, filterCols, orderBy)
}

func (d *MSSQLDialect) DeleteQuery(table string, filterCols []string) string {
	return defaultDeleteQuery(d, table, filterCols)
}

func (d *MSSQLDialect) Placeholder(index int) string {
	return fmt.Sprintf("@p%d", index+1)
}

func (d *MSSQLDialect) BeforeIngest(tx *sql.Tx) error { return nil }

func (d *MSSQLDialect) AfterIngest(tx *sql.Tx) error { return nil }
