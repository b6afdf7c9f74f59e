package report

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"dbf-pump/internal/dialect"
	"dbf-pump/internal/schema"

	"github.com/shopspring/decimal"
)

// Querier is satisfied by *sql.DB and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Filter selects one tenant's rows, optionally bounded by an inclusive
// ISO date range on DateColumn.
type Filter struct {
	Table      string
	Tenant     string
	Columns    []string
	DateColumn string
	From, To   string // YYYY-MM-DD, empty for open
}

// Query runs the report consumer query. Values come back as string, int64,
// float64, bool or nil; dates as ISO text.
func Query(ctx context.Context, q Querier, d dialect.Dialect, f Filter) ([][]any, error) {
	if len(f.Columns) == 0 {
		return nil, fmt.Errorf("no report columns")
	}
	cols := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		cols[i] = d.QuoteIdent(c)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s WHERE %s = %s",
		strings.Join(cols, ", "), d.QuoteIdent(f.Table), d.QuoteIdent(schema.TenantColumn), d.Placeholder(0))
	args := []any{f.Tenant}
	if f.From != "" && f.DateColumn != "" {
		fmt.Fprintf(&sb, " AND %s >= %s", d.QuoteIdent(f.DateColumn), d.Placeholder(len(args)))
		args = append(args, f.From)
	}
	if f.To != "" && f.DateColumn != "" {
		fmt.Fprintf(&sb, " AND %s <= %s", d.QuoteIdent(f.DateColumn), d.Placeholder(len(args)))
		args = append(args, f.To)
	}
	fmt.Fprintf(&sb, " ORDER BY %s", d.QuoteIdent(schema.IDColumn))

	rows, err := q.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s for tenant %s: %w", f.Table, f.Tenant, err)
	}
	defer rows.Close()

	var out [][]any
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", f.Table, err)
		}
		for i, v := range vals {
			vals[i] = normalize(v)
		}
		out = append(out, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", f.Table, err)
	}
	return out, nil
}

func normalize(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case time.Time:
		if x.IsZero() {
			return nil
		}
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format("2006-01-02")
		}
		return x.Format("2006-01-02T15:04:05")
	case int32:
		return int64(x)
	case float32:
		return float64(x)
	case decimal.Decimal:
		f, _ := x.Float64()
		return f
	default:
		return v
	}
}
