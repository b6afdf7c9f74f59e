package schema

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dbf-pump/internal/dialect"

	"github.com/rs/zerolog"
)

// ErrSchemaMismatch means an existing destination table cannot hold the
// foreign table's fields.
var ErrSchemaMismatch = errors.New("schema mismatch")

// SyncedTable proves Sync ran for a table in the current run. Only Sync
// creates one, so anything that reads the table can demand it.
type SyncedTable struct {
	table   *Table
	created bool
}

func (s *SyncedTable) Table() *Table { return s.table }

// Created reports whether Sync issued the CREATE TABLE.
func (s *SyncedTable) Created() bool { return s.created }

// Sync makes sure the destination table exists. An existing table is reused
// after checking that every foreign field and the tenant tag are present;
// extra columns only produce a warning.
func Sync(ctx context.Context, q Querier, d dialect.Dialect, t *Table, log zerolog.Logger) (*SyncedTable, error) {
	log = log.With().Str("table", t.Name).Logger()

	exists, err := TableExists(ctx, q, d, t.Name)
	if err != nil {
		return nil, err
	}

	if !exists {
		defs := make([]string, 0, len(t.Columns))
		for _, c := range t.Columns {
			if c.IsAutoInc {
				defs = append(defs, d.IdentityColumn(c.Name))
				continue
			}
			defs = append(defs, d.QuoteIdent(c.Name)+" "+d.ColumnType(string(c.DataType)))
		}
		if _, err := q.ExecContext(ctx, d.CreateTableQuery(t.Name, defs)); err != nil {
			return nil, fmt.Errorf("failed to create table %s: %w", t.Name, err)
		}
		log.Info().Int("columns", len(t.Columns)).Msg("created destination table")
		return &SyncedTable{table: t, created: true}, nil
	}

	existing, err := ExistingColumns(ctx, q, d, t.Name)
	if err != nil {
		return nil, err
	}
	have := make(map[string]bool, len(existing))
	for _, c := range existing {
		have[strings.ToLower(c)] = true
	}

	var missing []string
	want := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		want[strings.ToLower(c.Name)] = true
		if !have[strings.ToLower(c.Name)] {
			missing = append(missing, c.Name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: table %s has no column(s) %s", ErrSchemaMismatch, t.Name, strings.Join(missing, ", "))
	}

	var extra []string
	for _, c := range existing {
		if !want[strings.ToLower(c)] {
			extra = append(extra, c)
		}
	}
	if len(extra) > 0 {
		log.Warn().Strs("extra_columns", extra).Msg("destination table has columns the source does not provide; they stay NULL")
	}

	log.Debug().Msg("reusing destination table")
	return &SyncedTable{table: t}, nil
}
