// Package repo orchestrates create/read/update/delete for one row type
// against a store, using the row package for record conversion and key
// matching.
package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/alfredjeanlab/rowkit/internal/row"
	"github.com/alfredjeanlab/rowkit/internal/store"
)

// Repo binds a row type to a table in a store. It is stateless beyond the
// store handle, the table name and the factory, so a single value can serve
// any number of concurrent callers.
type Repo[T row.Row] struct {
	store   store.Store
	table   string
	factory func() T
}

// New builds a repository. factory must return a blank instance; the table
// name is read from it once and assumed stable for the life of the schema.
func New[T row.Row](s store.Store, factory func() T) *Repo[T] {
	return &Repo[T]{store: s, table: factory().Table(), factory: factory}
}

// Table returns the bound table name.
func (r *Repo[T]) Table() string { return r.table }

// Create writes obj as a new record and returns the store-assigned row id.
func (r *Repo[T]) Create(ctx context.Context, obj T) (int64, error) {
	rec, err := row.ToMap(obj)
	if err != nil {
		return 0, fmt.Errorf("serialize %s record: %w", r.table, err)
	}
	return r.store.Insert(ctx, r.table, rec)
}

// All reads every record and reconstructs one typed object per record, in
// whatever order the store returns. columns narrows the projection; a
// projected read fails on reconstruction unless every field is selected.
func (r *Repo[T]) All(ctx context.Context, columns ...string) ([]T, error) {
	recs, err := r.store.Query(ctx, r.table, columns)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		obj := r.factory()
		if err := row.FromMap(obj, rec); err != nil {
			return nil, fmt.Errorf("decode %s record: %w", r.table, err)
		}
		out = append(out, obj)
	}
	return out, nil
}

// Update overwrites the records matching obj's primary-key field set with
// obj's current values. A target that matches nothing fails with
// store.ErrNoRowsAffected.
func (r *Repo[T]) Update(ctx context.Context, obj T) (int64, error) {
	rec, err := row.ToMap(obj)
	if err != nil {
		return 0, fmt.Errorf("serialize %s record: %w", r.table, err)
	}
	where, args, err := whereKey(obj)
	if err != nil {
		return 0, err
	}
	n, err := r.store.Update(ctx, r.table, rec, where, args)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, fmt.Errorf("update %s: %w", r.table, store.ErrNoRowsAffected)
	}
	return n, nil
}

// Delete removes every record matching obj's primary-key field set. The key
// fields' current values are the match criteria, defaults included: a
// zero-valued key field matches records storing the zero value, it is never
// a wildcard. Several records sharing the key tuple are all removed.
// Matching nothing fails with store.ErrNoRowsAffected.
func (r *Repo[T]) Delete(ctx context.Context, obj T) error {
	where, args, err := whereKey(obj)
	if err != nil {
		return err
	}
	n, err := r.store.Delete(ctx, r.table, where, args)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("delete from %s: %w", r.table, store.ErrNoRowsAffected)
	}
	return nil
}

// DeleteKey removes every record whose first field equals key, which must be
// a wire value. Matching nothing fails with store.ErrNoRowsAffected.
func (r *Repo[T]) DeleteKey(ctx context.Context, key any) error {
	fields := r.factory().Fields()
	if len(fields) == 0 {
		return fmt.Errorf("delete from %s: row type has no fields", r.table)
	}
	n, err := r.store.Delete(ctx, r.table, fields[0].Key()+" = ?", []any{key})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("delete from %s: %w", r.table, store.ErrNoRowsAffected)
	}
	return nil
}

// DeleteAll removes every record in the table and reports how many went.
// Unlike the targeted forms, removing nothing is not an error.
func (r *Repo[T]) DeleteAll(ctx context.Context) (int64, error) {
	return r.store.Delete(ctx, r.table, "", nil)
}

// whereKey builds the conjunctive equality clause over the primary-key field
// set, in field order, with ? placeholders and wire values as args.
func whereKey(obj row.Row) (string, []any, error) {
	keys := row.KeyFields(obj)
	clauses := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))
	for _, f := range keys {
		v, err := f.Wire()
		if err != nil {
			return "", nil, fmt.Errorf("field %q: %w", f.Key(), err)
		}
		clauses = append(clauses, f.Key()+" = ?")
		args = append(args, v)
	}
	return strings.Join(clauses, " AND "), args, nil
}
