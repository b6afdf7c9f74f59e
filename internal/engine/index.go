package engine

import (
	"context"
	"errors"
	"fmt"

	"dbf-pump/internal/dialect"
	"dbf-pump/internal/schema"
)

// KeyIndex is the set of fingerprints one tenant already has in the store.
// It lives for one tenant pass and grows as records are inserted.
type KeyIndex struct {
	set map[Fingerprint]struct{}
}

func (ix *KeyIndex) Has(fp Fingerprint) bool {
	_, ok := ix.set[fp]
	return ok
}

// Add records fp and reports whether it was new.
func (ix *KeyIndex) Add(fp Fingerprint) bool {
	if ix.Has(fp) {
		return false
	}
	ix.set[fp] = struct{}{}
	return true
}

func (ix *KeyIndex) Len() int { return len(ix.set) }

// LoadKeyIndex scans the key columns of every row tagged with tenant. It
// takes a SyncedTable, so the destination table is known to exist.
func LoadKeyIndex(ctx context.Context, q schema.Querier, d dialect.Dialect, synced *schema.SyncedTable, key *NaturalKey, tenant string) (*KeyIndex, error) {
	if synced == nil {
		return nil, errors.New("key index needs a synchronized table")
	}
	table := synced.Table().Name
	cols := key.Columns()

	rows, err := q.QueryContext(ctx, d.SelectQuery(table, cols, []string{schema.TenantColumn}, ""), tenant)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing keys of %s: %w", table, err)
	}
	defer rows.Close()

	ix := &KeyIndex{set: make(map[Fingerprint]struct{})}
	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan existing key of %s: %w", table, err)
		}
		ix.set[key.fromValues(vals)] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating existing keys of %s: %w", table, err)
	}
	return ix, nil
}
