package report_test

import (
	"bytes"
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"dbf-pump/internal/dialect"
	"dbf-pump/internal/report"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func seededStore(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE "el_pwz" ("id" INTEGER PRIMARY KEY AUTOINCREMENT, "wz__pat" TEXT, "wz_name" TEXT, "wz__dat" DATE, "wz_time" TEXT, "wz__geb" TEXT, "wz__hvm" REAL, "mandant" TEXT)`)
	require.NoError(t, err)
	rows := [][]any{
		{"7", "Meier, Anna", "2024-01-01", "10:00", "1980-05-17", 12.5, "A"},
		{"8", "Schäfer, Maximilian-Alexander", "2024-01-02", "11:00", "unbekannt", nil, "A"},
		{"9", "Wolf, Ben", "2024-01-03", "09:30", nil, nil, "A"},
		{"3", "Koch, Paul", "2024-01-02", "08:00", "2015-01-01", nil, "B"},
		{"5", "Lang, Eva", "2024-01-02", "08:30", "1950-12-24", nil, "E"},
	}
	for _, r := range rows {
		_, err := db.Exec(`INSERT INTO "el_pwz" ("wz__pat", "wz_name", "wz__dat", "wz_time", "wz__geb", "wz__hvm", "mandant") VALUES (?, ?, ?, ?, ?, ?, ?)`, r...)
		require.NoError(t, err)
	}
	return db
}

var tenants = []report.Tenant{
	{ID: "A", Name: "Allgemeinmedizin"},
	{ID: "B", Name: "Kinderheilkunde"},
	{ID: "D", Name: "HNO"},
	{ID: "E"},
}

func TestQuery_TenantAndDateRange(t *testing.T) {
	db := seededStore(t)
	d := &dialect.SQLiteDialect{}

	rows, err := report.Query(context.Background(), db, d, report.Filter{
		Table: "el_pwz", Tenant: "A", Columns: []string{"wz__pat", "wz__dat", "wz__hvm"},
		DateColumn: "wz__dat", From: "2024-01-02", To: "2024-01-03",
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []any{"8", "2024-01-02", nil}, rows[0])
	assert.Equal(t, "9", rows[1][0])

	rows, err = report.Query(context.Background(), db, d, report.Filter{
		Table: "el_pwz", Tenant: "A", Columns: []string{"wz__hvm"},
	})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 12.5, rows[0][0])
}

func TestBuild_SheetsPerTenant(t *testing.T) {
	db := seededStore(t)
	f, err := report.Build(context.Background(), db, &dialect.SQLiteDialect{}, tenants, report.Options{
		Table:      "el_pwz",
		DateColumn: "wz__dat",
		From:       "2024-01-01",
		To:         "2024-01-02",
	}, zerolog.Nop())
	require.NoError(t, err)

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	book, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer book.Close()

	assert.Equal(t, []string{"Allgemeinmedizin", "Kinderheilkunde", "E"}, book.GetSheetList())

	cell := func(sheet, ref string) string {
		v, err := book.GetCellValue(sheet, ref)
		require.NoError(t, err)
		return v
	}
	assert.Equal(t, "EL Nr.", cell("Allgemeinmedizin", "A1"))
	assert.Equal(t, "Geburtstag", cell("Allgemeinmedizin", "E1"))
	assert.Equal(t, "01.01.2024", cell("Allgemeinmedizin", "C2"))
	assert.Equal(t, "17.05.1980", cell("Allgemeinmedizin", "E2"))
	assert.Equal(t, "unbekannt", cell("Allgemeinmedizin", "E3"))
	assert.Equal(t, "", cell("Allgemeinmedizin", "A4"), "2024-01-03 is outside the range")
	assert.Equal(t, "3", cell("Kinderheilkunde", "A2"))

	width, err := book.GetColWidth("Allgemeinmedizin", "B")
	require.NoError(t, err)
	assert.Equal(t, float64(len("Schäfer, Maximilian-Alexander")-1), width)

	width, err = book.GetColWidth("Allgemeinmedizin", "A")
	require.NoError(t, err)
	assert.Equal(t, 10.0, width)

	style, err := book.GetCellStyle("Allgemeinmedizin", "A1")
	require.NoError(t, err)
	assert.NotZero(t, style)
}

func TestBuild_NoData(t *testing.T) {
	db := seededStore(t)
	_, err := report.Build(context.Background(), db, &dialect.SQLiteDialect{}, tenants, report.Options{
		Table: "el_pwz", DateColumn: "wz__dat", From: "2030-01-01",
	}, zerolog.Nop())
	assert.ErrorIs(t, err, report.ErrNoData)
}

func TestWriteFile(t *testing.T) {
	db := seededStore(t)
	path := filepath.Join(t.TempDir(), "Tagesbericht_2024-01-02.xlsx")
	err := report.WriteFile(context.Background(), db, &dialect.SQLiteDialect{}, tenants, report.Options{
		Table: "el_pwz", DateColumn: "wz__dat", From: "2024-01-02", To: "2024-01-02",
		Columns: []string{"wz__pat", "mandant"}, Labels: map[string]string{"mandant": "Abteilung"},
	}, path, zerolog.Nop())
	require.NoError(t, err)

	book, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer book.Close()
	v, err := book.GetCellValue("Allgemeinmedizin", "B1")
	require.NoError(t, err)
	assert.Equal(t, "Abteilung", v)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "EL Nr.", report.Label("wz__pat", nil))
	assert.Equal(t, "Kasse", report.Label("WZ_KKNR", map[string]string{"wz_kknr": "Kasse"}))
	assert.Equal(t, "custom_col", report.Label("custom_col", nil))
}
