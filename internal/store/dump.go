package store

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
)

type masterEntry struct {
	name, kind, sql string
}

// Dump writes the schema and data of a sqlite database as an SQL script
// that recreates it, in the layout of the sqlite3 shell's .dump.
func Dump(ctx context.Context, db *sql.DB, w io.Writer) error {
	out := bufio.NewWriter(w)
	fmt.Fprintln(out, "BEGIN TRANSACTION;")

	tables, err := master(ctx, db, `SELECT name, type, sql FROM sqlite_master WHERE sql NOT NULL AND type = 'table' ORDER BY name`)
	if err != nil {
		return err
	}

	for _, t := range tables {
		switch {
		case t.name == "sqlite_sequence":
			fmt.Fprintln(out, `DELETE FROM "sqlite_sequence";`)
		case strings.HasPrefix(t.name, "sqlite_stat"):
			fmt.Fprintln(out, "ANALYZE sqlite_master;")
		case strings.HasPrefix(t.name, "sqlite_"):
			continue
		default:
			fmt.Fprintf(out, "%s;\n", t.sql)
		}
		if err := dumpRows(ctx, db, out, t.name); err != nil {
			return err
		}
	}

	rest, err := master(ctx, db, `SELECT name, type, sql FROM sqlite_master WHERE sql NOT NULL AND type IN ('index', 'trigger', 'view') ORDER BY name`)
	if err != nil {
		return err
	}
	for _, e := range rest {
		fmt.Fprintf(out, "%s;\n", e.sql)
	}

	fmt.Fprintln(out, "COMMIT;")
	return out.Flush()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// master reads catalog entries completely, the pool has a single connection.
func master(ctx context.Context, db *sql.DB, query string) ([]masterEntry, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read sqlite_master: %w", err)
	}
	defer rows.Close()

	var entries []masterEntry
	for rows.Next() {
		var e masterEntry
		if err := rows.Scan(&e.name, &e.kind, &e.sql); err != nil {
			return nil, fmt.Errorf("failed to scan sqlite_master: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func columns(ctx context.Context, db *sql.DB, table string) ([]string, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(table)))
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var (
			cid        int
			name, typ  string
			notNull    int
			dflt       sql.NullString
			primaryKey int
		)
		if err := rows.Scan(&cid, &name, &typ, &notNull, &dflt, &primaryKey); err != nil {
			return nil, fmt.Errorf("failed to scan columns of %s: %w", table, err)
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

// dumpRows lets sqlite render the literals with quote(), so every storage
// class round-trips exactly.
func dumpRows(ctx context.Context, db *sql.DB, out io.Writer, table string) error {
	cols, err := columns(ctx, db, table)
	if err != nil {
		return err
	}
	if len(cols) == 0 {
		return nil
	}
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = "quote(" + quoteIdent(c) + ")"
	}
	query := fmt.Sprintf(`SELECT 'INSERT INTO ' || %s || ' VALUES(' || %s || ')' FROM %s`,
		"'"+strings.ReplaceAll(quoteIdent(table), "'", "''")+"'",
		strings.Join(quoted, " || ',' || "),
		quoteIdent(table))

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to dump %s: %w", table, err)
	}
	defer rows.Close()
	for rows.Next() {
		var stmt string
		if err := rows.Scan(&stmt); err != nil {
			return fmt.Errorf("failed to scan row of %s: %w", table, err)
		}
		if _, err := fmt.Fprintf(out, "%s;\n", stmt); err != nil {
			return err
		}
	}
	return rows.Err()
}
