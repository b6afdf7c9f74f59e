package schema

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"dbf-pump/internal/dbf"
)

// Synthetic columns every destination table carries.
const (
	IDColumn     = "id"
	TenantColumn = "mandant"
)

// Querier is satisfied by *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Table struct {
	Name    string
	Columns []*Column // id, foreign fields in declared order, tenant tag
}

type Column struct {
	Name      string
	DataType  ColumnType
	Source    dbf.FieldType // zero for synthetic columns
	IsPK      bool
	IsAutoInc bool
	IsTenant  bool
}

// FromDBF derives the destination table for a foreign table.
func FromDBF(t *dbf.Table) (*Table, error) {
	out := &Table{Name: t.Name}
	out.Columns = append(out.Columns, &Column{Name: IDColumn, DataType: TypeInteger, IsPK: true, IsAutoInc: true})
	for _, f := range t.Fields {
		n := strings.ToLower(f.Name)
		if n == IDColumn || n == TenantColumn {
			return nil, fmt.Errorf("%w: field %q of %s collides with a synthetic column", ErrSchemaMismatch, f.Name, t.Name)
		}
		out.Columns = append(out.Columns, &Column{Name: f.Name, DataType: MapFieldType(f.Type), Source: f.Type})
	}
	out.Columns = append(out.Columns, &Column{Name: TenantColumn, DataType: TypeText, IsTenant: true})
	return out, nil
}

// Column returns the named column or nil.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// InsertColumns lists every column except the auto-increment id.
func (t *Table) InsertColumns() []string {
	var names []string
	for _, c := range t.Columns {
		if !c.IsAutoInc {
			names = append(names, c.Name)
		}
	}
	return names
}

// ForeignColumns lists the columns that came from the source file.
func (t *Table) ForeignColumns() []*Column {
	var cols []*Column
	for _, c := range t.Columns {
		if !c.IsAutoInc && !c.IsTenant {
			cols = append(cols, c)
		}
	}
	return cols
}
