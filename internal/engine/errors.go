package engine

import "errors"

var (
	// ErrSourceMissing means a tenant directory has no source file. The
	// tenant is skipped; the run goes on.
	ErrSourceMissing = errors.New("source file not found")

	// ErrKeyField means a configured natural-key field is not in the source.
	ErrKeyField = errors.New("natural key field not found")
)
