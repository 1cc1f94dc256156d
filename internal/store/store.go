// Package store defines the flat-record persistence contract the mapping
// layer drives.
package store

import (
	"context"
	"errors"
)

// ErrNoRowsAffected is returned by targeted updates and deletes that matched
// nothing, so callers can tell a stale or missing target from success.
var ErrNoRowsAffected = errors.New("no rows affected")

// Store is the persistence interface. Records are flat column->value maps of
// wire values. Where clauses are conjunctive equality tests written with ?
// placeholders ("name = ? AND year = ?"); implementations rewrite the
// placeholders as their dialect requires. Implementations must linearize
// per-record mutations; the mapping layer adds no locking or retries of its
// own, and store failures propagate to callers unmodified.
type Store interface {
	// Insert appends a record and returns an implementation-defined row id.
	Insert(ctx context.Context, table string, rec map[string]any) (int64, error)

	// Query returns records as flat column->value maps, in store order.
	// columns narrows the projection; nil selects every column.
	Query(ctx context.Context, table string, columns []string) ([]map[string]any, error)

	// Update overwrites rec's columns on every record matching where and
	// reports how many records changed.
	Update(ctx context.Context, table string, rec map[string]any, where string, args []any) (int64, error)

	// Delete removes every record matching where and reports how many were
	// removed. An empty where clause removes everything.
	Delete(ctx context.Context, table string, where string, args []any) (int64, error)

	// Close releases the underlying resources.
	Close() error
}
