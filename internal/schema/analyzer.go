package schema

import (
	"context"
	"fmt"

	"dbf-pump/internal/dialect"
)

// TableExists asks the store's catalog whether the table is present.
func TableExists(ctx context.Context, q Querier, d dialect.Dialect, name string) (bool, error) {
	var n int
	if err := q.QueryRowContext(ctx, d.TableExistsQuery(), name).Scan(&n); err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", name, err)
	}
	return n > 0, nil
}

// ExistingColumns returns the column names of an existing table in store order.
// A query that matches no rows works on every dialect.
func ExistingColumns(ctx context.Context, q Querier, d dialect.Dialect, name string) ([]string, error) {
	rows, err := q.QueryContext(ctx, fmt.Sprintf("SELECT * FROM %s WHERE 1 = 0", d.QuoteIdent(name)))
	if err != nil {
		return nil, fmt.Errorf("failed to query columns of %s: %w", name, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", name, err)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating columns of %s: %w", name, err)
	}
	return cols, nil
}
