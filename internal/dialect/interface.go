package dialect

import "database/sql"

// Dialect abstracts the SQL differences between destination stores.
type Dialect interface {
	// Name is the database/sql driver name the dialect belongs to.
	Name() string

	// DDL
	QuoteIdent(name string) string
	ColumnType(generic string) string // TEXT, INTEGER, REAL, FLOAT, BOOLEAN, DATE, DATETIME
	IdentityColumn(name string) string
	CreateTableQuery(table string, defs []string) string

	// Metadata Queries: one bound parameter (table name), returns a count
	TableExistsQuery() string

	// Query Generation
	InsertQuery(table string, cols []string) string
	SelectQuery(table string, cols []string, filterCols []string, orderBy string) string
	DeleteQuery(table string, filterCols []string) string
	Placeholder(index int) string // Returns ?, $1, @p1, :1

	// Execution Hooks (Run Level)
	BeforeIngest(tx *sql.Tx) error
	AfterIngest(tx *sql.Tx) error
}
