// Package sqlstore implements store.Store on top of database/sql.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/alfredjeanlab/rowkit/internal/store"
)

// Placeholders selects the bind-parameter style of the target dialect.
type Placeholders int

const (
	// Question uses ? placeholders (SQLite, MySQL).
	Question Placeholders = iota
	// Dollar uses $1..$n placeholders (PostgreSQL).
	Dollar
)

// Options configures a Store for its driver's dialect.
type Options struct {
	Placeholders Placeholders

	// ReturningID names the column appended as "RETURNING <col>" on
	// inserts, for drivers like lib/pq that do not implement
	// LastInsertId. When empty, Insert falls back to LastInsertId and
	// reports 0 for drivers that cannot supply one.
	ReturningID string
}

// Store is a database/sql-backed store.Store. It owns no schema management;
// see Migrate for table bootstrap.
type Store struct {
	db   *sql.DB
	opts Options
}

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// New wraps an open database handle. The caller keeps ownership of pool
// configuration; Close closes the handle.
func New(db *sql.DB, opts Options) *Store {
	return &Store{db: db, opts: opts}
}

func (s *Store) Insert(ctx context.Context, table string, rec map[string]any) (int64, error) {
	cols := sortedColumns(rec)
	args := make([]any, 0, len(cols))
	quoted := make([]string, 0, len(cols))
	binds := make([]string, 0, len(cols))
	for i, c := range cols {
		quoted = append(quoted, quoteIdent(c))
		binds = append(binds, s.placeholder(i+1))
		args = append(args, rec[c])
	}
	query := "INSERT INTO " + quoteIdent(table) +
		" (" + strings.Join(quoted, ", ") + ") VALUES (" + strings.Join(binds, ", ") + ")"

	if s.opts.ReturningID != "" {
		query += " RETURNING " + quoteIdent(s.opts.ReturningID)
		var id int64
		if err := s.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
			return 0, fmt.Errorf("insert into %s: %w", table, err)
		}
		return id, nil
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert into %s: %w", table, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		// Driver does not report insert ids; the row id is
		// implementation-defined, so 0 stands in.
		return 0, nil
	}
	return id, nil
}

func (s *Store) Query(ctx context.Context, table string, columns []string) ([]map[string]any, error) {
	colSQL := "*"
	if len(columns) > 0 {
		quoted := make([]string, 0, len(columns))
		for _, c := range columns {
			quoted = append(quoted, quoteIdent(c))
		}
		colSQL = strings.Join(quoted, ", ")
	}

	rows, err := s.db.QueryContext(ctx, "SELECT "+colSQL+" FROM "+quoteIdent(table))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}

	var out []map[string]any
	for rows.Next() {
		vals := make([]any, len(names))
		ptrs := make([]any, len(names))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", table, err)
		}
		rec := make(map[string]any, len(names))
		for i, name := range names {
			// []byte buffers are only valid until the next Scan.
			if b, ok := vals[i].([]byte); ok {
				rec[name] = append([]byte(nil), b...)
				continue
			}
			rec[name] = vals[i]
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	return out, nil
}

func (s *Store) Update(ctx context.Context, table string, rec map[string]any, where string, args []any) (int64, error) {
	cols := sortedColumns(rec)
	setArgs := make([]any, 0, len(cols)+len(args))
	sets := make([]string, 0, len(cols))
	for i, c := range cols {
		sets = append(sets, quoteIdent(c)+" = "+s.placeholder(i+1))
		setArgs = append(setArgs, rec[c])
	}
	query := "UPDATE " + quoteIdent(table) + " SET " + strings.Join(sets, ", ")
	if where != "" {
		query += " WHERE " + s.rewriteWhere(where, len(cols)+1)
	}

	res, err := s.db.ExecContext(ctx, query, append(setArgs, args...)...)
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("update %s: %w", table, err)
	}
	return n, nil
}

func (s *Store) Delete(ctx context.Context, table string, where string, args []any) (int64, error) {
	query := "DELETE FROM " + quoteIdent(table)
	if where != "" {
		query += " WHERE " + s.rewriteWhere(where, 1)
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", table, err)
	}
	return n, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) placeholder(n int) string {
	if s.opts.Placeholders == Dollar {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// rewriteWhere renumbers the generic ? placeholders for dialects that bind by
// position, starting at next.
func (s *Store) rewriteWhere(where string, next int) string {
	if s.opts.Placeholders != Dollar {
		return where
	}
	var b strings.Builder
	for _, r := range where {
		if r == '?' {
			b.WriteString("$" + strconv.Itoa(next))
			next++
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// sortedColumns returns rec's keys in a deterministic order so generated SQL
// is stable.
func sortedColumns(rec map[string]any) []string {
	cols := make([]string, 0, len(rec))
	for c := range rec {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
