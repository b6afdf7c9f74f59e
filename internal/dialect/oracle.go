package dialect

import (
	"database/sql"
	"fmt"
	"strings"
)

// OracleDialect uses quoted identifiers throughout, so table and column
// names keep the lower case of the DBF file. DDL commits implicitly.
type OracleDialect struct{}

func (d *OracleDialect) Name() string { return "oracle" }

func (d *OracleDialect) QuoteIdent(name string) string { return quoteWith(`"`, `"`, name) }

func (d *OracleDialect) ColumnType(generic string) string {
	switch strings.ToUpper(generic) {
	case "INTEGER":
		return "NUMBER(19)"
	case "REAL":
		return "NUMBER"
	case "FLOAT":
		return "BINARY_DOUBLE"
	case "BOOLEAN":
		return "NUMBER(1)"
	case "DATE":
		return "DATE"
	case "DATETIME":
		return "TIMESTAMP"
	default:
		// CLOB cannot be compared with =, and the tenant tag is filtered on
		return "VARCHAR2(4000)"
	}
}

func (d *OracleDialect) IdentityColumn(name string) string {
	return d.QuoteIdent(name) + " NUMBER(19) GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY"
}

// CreateTableQuery has no IF NOT EXISTS; callers check TableExistsQuery first.
func (d *OracleDialect) CreateTableQuery(table string, defs []string) string {
	return fmt.Sprintf("CREATE TABLE %s (%s)", d.QuoteIdent(table), strings.Join(defs, ", "))
}

func (d *OracleDialect) TableExistsQuery() string {
	return `SELECT COUNT(*) FROM USER_TABLES WHERE TABLE_NAME = :1`
}

func (d *OracleDialect) InsertQuery(table string, cols []string) string {
	return defaultInsertQuery(d, table, cols)
}

func (d *OracleDialect) SelectQuery(table string, cols, filterCols []string, orderBy string) string {
	return defaultSelectQuery(d, table, cols, filterCols, orderBy)
}

func (d *OracleDialect) DeleteQuery(table string, filterCols []string) string {
	return defaultDeleteQuery(d, table, filterCols)
}

func (d *OracleDialect) Placeholder(index int) string {
	// Oracle uses :1, :2, etc. (1-based index)
	return fmt.Sprintf(":%d", index+1)
}

func (d *OracleDialect) BeforeIngest(tx *sql.Tx) error {
	// Dates are bound as ISO-8601 strings.
	if _, err := tx.Exec("ALTER SESSION SET NLS_DATE_FORMAT = 'YYYY-MM-DD'"); err != nil {
		return fmt.Errorf("failed to set NLS_DATE_FORMAT: %w", err)
	}
	if _, err := tx.Exec(`ALTER SESSION SET NLS_TIMESTAMP_FORMAT = 'YYYY-MM-DD"T"HH24:MI:SS.FF'`); err != nil {
		return fmt.Errorf("failed to set NLS_TIMESTAMP_FORMAT: %w", err)
	}
	return nil
}

func (d *OracleDialect) AfterIngest(tx *sql.Tx) error {
	return nil
}
