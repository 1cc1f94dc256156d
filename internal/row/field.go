// Package row maps typed Go values to and from the flat column->value
// records a relational store accepts. A type describes itself by returning an
// ordered set of field codecs bound to its own struct fields; everything else
// (schema text, record conversion, key matching) is derived from that set.
package row

// Type is the SQL storage type of a field's wire value.
type Type string

const (
	TypeInteger Type = "INTEGER"
	TypeReal    Type = "REAL"
	TypeText    Type = "TEXT"
	TypeBlob    Type = "BLOB"
)

// Field maps one named value between its typed, in-memory representation and
// the wire representation the store accepts. Codecs bind a pointer into the
// owning struct, so SetWire writes the decoded value back in place.
type Field interface {
	// Key returns the column name.
	Key() string
	// IsPrimary reports whether the field was flagged as part of the
	// primary key. The first field of a row is part of the key regardless
	// of this flag; see KeyFields.
	IsPrimary() bool
	// WireType returns the SQL storage type of the wire value.
	WireType() Type
	// Wire converts the current typed value to its wire representation:
	// int64, float64, string or []byte.
	Wire() (any, error)
	// SetWire replaces the typed value from a wire value read back from
	// the store. Malformed input is an error, never silently coerced.
	SetWire(v any) error
}

// meta carries the column name and key flag common to every codec.
type meta struct {
	key     string
	primary bool
}

func (m meta) Key() string     { return m.key }
func (m meta) IsPrimary() bool { return m.primary }

// Option configures a field at construction time.
type Option func(*meta)

// Primary flags the field as part of the primary key.
func Primary() Option {
	return func(m *meta) { m.primary = true }
}

func newMeta(key string, opts []Option) meta {
	m := meta{key: key}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}
