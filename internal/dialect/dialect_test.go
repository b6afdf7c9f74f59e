package dialect_test

import (
	"testing"

	"dbf-pump/internal/dialect"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDialect(t *testing.T, driver string) dialect.Dialect {
	t.Helper()
	d, err := dialect.GetDialect(driver)
	require.NoError(t, err)
	return d
}

func TestGetDialect(t *testing.T) {
	assert.IsType(t, &dialect.SQLiteDialect{}, mustDialect(t, "sqlite3"))
	assert.IsType(t, &dialect.SQLiteDialect{}, mustDialect(t, "sqlite"))
	assert.IsType(t, &dialect.PostgresDialect{}, mustDialect(t, "postgres"))
	assert.IsType(t, &dialect.MysqlDialect{}, mustDialect(t, "MySQL"))
	assert.IsType(t, &dialect.MSSQLDialect{}, mustDialect(t, "sqlserver"))
	assert.IsType(t, &dialect.OracleDialect{}, mustDialect(t, "oracle"))
	assert.IsType(t, &dialect.SQLiteDialect{}, mustDialect(t, ""))
}

func TestGetDialect_UnknownDriver(t *testing.T) {
	for _, driver := range []string{"pgx", "postgress", "mariadb"} {
		d, err := dialect.GetDialect(driver)
		assert.ErrorIs(t, err, dialect.ErrUnknownDriver, driver)
		assert.Nil(t, d)
	}
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"wz odd"`, mustDialect(t, "sqlite3").QuoteIdent("wz odd"))
	assert.Equal(t, `"a""b"`, mustDialect(t, "postgres").QuoteIdent(`a"b`))
	assert.Equal(t, "`a``b`", mustDialect(t, "mysql").QuoteIdent("a`b"))
	assert.Equal(t, "[a]]b]", mustDialect(t, "sqlserver").QuoteIdent("a]b"))
}

func TestPlaceholders(t *testing.T) {
	cases := map[string]string{
		"sqlite3":   "?, ?, ?",
		"postgres":  "$1, $2, $3",
		"sqlserver": "@p1, @p2, @p3",
		"oracle":    ":1, :2, :3",
		"mysql":     "?, ?, ?",
	}
	for driver, want := range cases {
		d := mustDialect(t, driver)
		assert.Equal(t, want, dialect.GeneratePlaceholders(3, d.Placeholder), driver)
	}
}

func TestInsertQuery(t *testing.T) {
	d := mustDialect(t, "postgres")
	assert.Equal(t,
		`INSERT INTO "el_pwz" ("wz__pat", "mandant") VALUES ($1, $2)`,
		d.InsertQuery("el_pwz", []string{"wz__pat", "mandant"}))
}

func TestSelectAndDeleteQuery(t *testing.T) {
	d := mustDialect(t, "sqlserver")
	assert.Equal(t,
		"SELECT [wz__pat], [wz__dat] FROM [el_pwz] WHERE [mandant] = @p1 ORDER BY [id]",
		d.SelectQuery("el_pwz", []string{"wz__pat", "wz__dat"}, []string{"mandant"}, "id"))
	assert.Equal(t,
		"DELETE FROM [el_pwz] WHERE [mandant] = @p1",
		d.DeleteQuery("el_pwz", []string{"mandant"}))
	assert.Equal(t, `DELETE FROM "el_pwz"`, mustDialect(t, "sqlite3").DeleteQuery("el_pwz", nil))
}

func TestColumnType(t *testing.T) {
	assert.Equal(t, "DATE", mustDialect(t, "sqlite3").ColumnType("DATE"))
	assert.Equal(t, "DOUBLE PRECISION", mustDialect(t, "postgres").ColumnType("REAL"))
	assert.Equal(t, "BIT", mustDialect(t, "sqlserver").ColumnType("BOOLEAN"))
	assert.Equal(t, "NVARCHAR(MAX)", mustDialect(t, "sqlserver").ColumnType("TEXT"))
	assert.Equal(t, "NUMBER(1)", mustDialect(t, "oracle").ColumnType("BOOLEAN"))
	assert.Equal(t, "TEXT", mustDialect(t, "mysql").ColumnType("whatever"))
}

func TestCreateTableQuery(t *testing.T) {
	d := mustDialect(t, "sqlite3")
	defs := []string{d.IdentityColumn("id"), `"mandant" TEXT`}
	assert.Equal(t,
		`CREATE TABLE IF NOT EXISTS "el_pwz" ("id" INTEGER PRIMARY KEY AUTOINCREMENT, "mandant" TEXT)`,
		d.CreateTableQuery("el_pwz", defs))

	ms := mustDialect(t, "sqlserver")
	assert.Contains(t, ms.CreateTableQuery("o'x", []string{"[a] BIT"}), "IF OBJECT_ID(N'o''x', N'U') IS NULL")
}
