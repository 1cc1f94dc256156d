package row

import (
	"bytes"
	"fmt"
	"hash/fnv"
	"io"
)

// Serializable is implemented by any type whose state flattens into a stored
// record. Fields returns codecs bound to the instance's own struct fields, in
// a fixed order; the order is part of the type's schema and must not change
// between calls.
type Serializable interface {
	Fields() []Field
}

// Row is a Serializable persisted in a table of its own. Table must depend
// only on the type, never the instance.
type Row interface {
	Serializable
	Table() string
}

// KeyFields returns the primary-key field set: the first field plus every
// later field flagged primary. The first field is part of the key whether or
// not it carries the flag, and never appears twice.
func KeyFields(s Serializable) []Field {
	fields := s.Fields()
	if len(fields) == 0 {
		return nil
	}
	keys := []Field{fields[0]}
	for _, f := range fields[1:] {
		if f.IsPrimary() {
			keys = append(keys, f)
		}
	}
	return keys
}

// ToMap flattens s into a record of wire values, one entry per field.
func ToMap(s Serializable) (map[string]any, error) {
	fields := s.Fields()
	m := make(map[string]any, len(fields))
	for _, f := range fields {
		v, err := f.Wire()
		if err != nil {
			return nil, err
		}
		m[f.Key()] = v
	}
	return m, nil
}

// FromMap loads a stored record into dst. Every field of dst must be present
// in rec; a missing column is an *UnknownFieldError. Decode failures surface
// unmodified from the field codec.
func FromMap(dst Serializable, rec map[string]any) error {
	for _, f := range dst.Fields() {
		v, ok := rec[f.Key()]
		if !ok {
			return &UnknownFieldError{Key: f.Key()}
		}
		if err := f.SetWire(v); err != nil {
			return err
		}
	}
	return nil
}

// Equal reports structural equality: same table, same field count, and every
// positional field pair matching on key, primary flag, wire type and wire
// value. Fields whose values cannot be serialized compare unequal.
func Equal(a, b Row) bool {
	if a.Table() != b.Table() {
		return false
	}
	return FieldsEqual(a.Fields(), b.Fields())
}

// FieldsEqual compares two ordered field sets position by position.
func FieldsEqual(af, bf []Field) bool {
	if len(af) != len(bf) {
		return false
	}
	for i := range af {
		x, y := af[i], bf[i]
		if x.Key() != y.Key() || x.IsPrimary() != y.IsPrimary() || x.WireType() != y.WireType() {
			return false
		}
		xv, err := x.Wire()
		if err != nil {
			return false
		}
		yv, err := y.Wire()
		if err != nil {
			return false
		}
		if !wireEqual(xv, yv) {
			return false
		}
	}
	return true
}

func wireEqual(a, b any) bool {
	if ab, ok := a.([]byte); ok {
		bb, ok := b.([]byte)
		return ok && bytes.Equal(ab, bb)
	}
	return a == b
}

// Hash returns a stable digest of r's table, field layout and wire values.
// Rows that are Equal hash identically, so the digest can stand in for the
// row in set-membership checks.
func Hash(r Row) (uint64, error) {
	h := fnv.New64a()
	io.WriteString(h, r.Table())
	for _, f := range r.Fields() {
		io.WriteString(h, "\x00")
		io.WriteString(h, f.Key())
		io.WriteString(h, string(f.WireType()))
		if f.IsPrimary() {
			io.WriteString(h, "*")
		}
		v, err := f.Wire()
		if err != nil {
			return 0, err
		}
		switch x := v.(type) {
		case []byte:
			h.Write(x)
		default:
			fmt.Fprintf(h, "%v", x)
		}
	}
	return h.Sum64(), nil
}
