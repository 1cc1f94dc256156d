// Package memstore implements store.Store in memory. It backs tests and
// offline use, and assigns monotonically increasing row ids.
package memstore

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/alfredjeanlab/rowkit/internal/store"
)

// Store is an in-memory store.Store. The zero value is not usable; call New.
type Store struct {
	mu     sync.Mutex
	tables map[string][]map[string]any
	nextID int64
}

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{tables: make(map[string][]map[string]any)}
}

func (s *Store) Insert(ctx context.Context, table string, rec map[string]any) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[table] = append(s.tables[table], cloneRecord(rec))
	s.nextID++
	return s.nextID, nil
}

func (s *Store) Query(ctx context.Context, table string, columns []string) ([]map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.tables[table]
	out := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		if len(columns) == 0 {
			out = append(out, cloneRecord(r))
			continue
		}
		proj := make(map[string]any, len(columns))
		for _, c := range columns {
			if v, ok := r[c]; ok {
				proj[c] = cloneValue(v)
			}
		}
		out = append(out, proj)
	}
	return out, nil
}

func (s *Store) Update(ctx context.Context, table string, rec map[string]any, where string, args []any) (int64, error) {
	cols, err := parseWhere(where)
	if err != nil {
		return 0, err
	}
	if len(cols) != len(args) {
		return 0, fmt.Errorf("memstore: %d placeholders, %d args", len(cols), len(args))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, r := range s.tables[table] {
		if !matches(r, cols, args) {
			continue
		}
		for k, v := range rec {
			r[k] = cloneValue(v)
		}
		n++
	}
	return n, nil
}

func (s *Store) Delete(ctx context.Context, table string, where string, args []any) (int64, error) {
	cols, err := parseWhere(where)
	if err != nil {
		return 0, err
	}
	if len(cols) != len(args) {
		return 0, fmt.Errorf("memstore: %d placeholders, %d args", len(cols), len(args))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rows := s.tables[table]
	kept := rows[:0]
	var n int64
	for _, r := range rows {
		if matches(r, cols, args) {
			n++
			continue
		}
		kept = append(kept, r)
	}
	s.tables[table] = kept
	return n, nil
}

func (s *Store) Close() error { return nil }

// parseWhere splits the conjunctive equality form the mapping layer emits
// ("a = ? AND b = ?") into column names. Anything else is rejected.
func parseWhere(where string) ([]string, error) {
	where = strings.TrimSpace(where)
	if where == "" {
		return nil, nil
	}
	parts := strings.Split(where, " AND ")
	cols := make([]string, 0, len(parts))
	for _, p := range parts {
		col, ok := strings.CutSuffix(strings.TrimSpace(p), " = ?")
		if !ok || col == "" || strings.ContainsAny(col, " =?") {
			return nil, fmt.Errorf("memstore: unsupported where clause %q", p)
		}
		cols = append(cols, col)
	}
	return cols, nil
}

func matches(rec map[string]any, cols []string, args []any) bool {
	for i, c := range cols {
		v, ok := rec[c]
		if !ok || !valueEqual(v, args[i]) {
			return false
		}
	}
	return true
}

// valueEqual compares wire values, normalizing the integer width a caller
// may pass for key arguments.
func valueEqual(a, b any) bool {
	if ab, ok := a.([]byte); ok {
		bb, ok := b.([]byte)
		return ok && bytes.Equal(ab, bb)
	}
	return normalize(a) == normalize(b)
}

func normalize(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int32:
		return int64(x)
	}
	return v
}

func cloneRecord(rec map[string]any) map[string]any {
	out := make(map[string]any, len(rec))
	for k, v := range rec {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	if b, ok := v.([]byte); ok {
		return append([]byte(nil), b...)
	}
	return v
}
