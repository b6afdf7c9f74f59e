package engine

import (
	"context"
	"database/sql"
	"fmt"

	"dbf-pump/internal/dialect"
	"dbf-pump/internal/schema"

	"github.com/rs/zerolog"
)

// AllTenants is the key Clean reports under when no tenant filter is given.
const AllTenants = "*"

// Clean deletes the rows of the given tenants (all rows when tenants is
// empty) from table in a single transaction. It returns the deleted count
// per tenant.
func Clean(ctx context.Context, db *sql.DB, d dialect.Dialect, table string, tenants []string, log zerolog.Logger) (map[string]int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			tx.Rollback()
		}
	}()

	exists, err := schema.TableExists(ctx, tx, d, table)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("table %s does not exist", table)
	}

	deleted := make(map[string]int64)
	if len(tenants) == 0 {
		r, err := tx.ExecContext(ctx, d.DeleteQuery(table, nil))
		if err != nil {
			return nil, fmt.Errorf("failed to clean %s: %w", table, err)
		}
		n, _ := r.RowsAffected()
		deleted[AllTenants] = n
		log.Info().Str("table", table).Int64("deleted", n).Msg("cleaned all tenants")
	}
	for _, tenant := range tenants {
		r, err := tx.ExecContext(ctx, d.DeleteQuery(table, []string{schema.TenantColumn}), tenant)
		if err != nil {
			return nil, fmt.Errorf("failed to clean tenant %s of %s: %w", tenant, table, err)
		}
		n, _ := r.RowsAffected()
		deleted[tenant] = n
		log.Info().Str("table", table).Str("tenant", tenant).Int64("deleted", n).Msg("cleaned tenant")
	}

	err = tx.Commit()
	tx = nil
	if err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return deleted, nil
}
