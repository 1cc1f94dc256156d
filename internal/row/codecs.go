package row

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
)

// Int64 binds an INTEGER column to v.
func Int64(key string, v *int64, opts ...Option) Field {
	return &int64Field{meta: newMeta(key, opts), v: v}
}

type int64Field struct {
	meta
	v *int64
}

func (f *int64Field) WireType() Type { return TypeInteger }

func (f *int64Field) Wire() (any, error) { return *f.v, nil }

func (f *int64Field) SetWire(v any) error {
	n, err := asInt64(f.key, v)
	if err != nil {
		return err
	}
	*f.v = n
	return nil
}

// Float64 binds a REAL column to v.
func Float64(key string, v *float64, opts ...Option) Field {
	return &float64Field{meta: newMeta(key, opts), v: v}
}

type float64Field struct {
	meta
	v *float64
}

func (f *float64Field) WireType() Type { return TypeReal }

func (f *float64Field) Wire() (any, error) { return *f.v, nil }

func (f *float64Field) SetWire(v any) error {
	switch x := v.(type) {
	case float64:
		*f.v = x
		return nil
	case int64:
		// Stores with a single numeric type hand back whole reals as
		// integers.
		*f.v = float64(x)
		return nil
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return fmt.Errorf("field %q: %w", f.key, err)
		}
		*f.v = n
		return nil
	}
	return decodeErr(f.key, v, "real")
}

// Text binds a TEXT column to v.
func Text(key string, v *string, opts ...Option) Field {
	return &textField{meta: newMeta(key, opts), v: v}
}

type textField struct {
	meta
	v *string
}

func (f *textField) WireType() Type { return TypeText }

func (f *textField) Wire() (any, error) { return *f.v, nil }

func (f *textField) SetWire(v any) error {
	s, err := asText(f.key, v)
	if err != nil {
		return err
	}
	*f.v = string(s)
	return nil
}

// Bool binds v to an INTEGER column storing 1 for true and 0 for false.
// Decoding treats exactly 1 as true and every other integer as false, so a
// legacy value like 2 reads back as false.
func Bool(key string, v *bool, opts ...Option) Field {
	return &boolField{meta: newMeta(key, opts), v: v}
}

type boolField struct {
	meta
	v *bool
}

func (f *boolField) WireType() Type { return TypeInteger }

func (f *boolField) Wire() (any, error) {
	if *f.v {
		return int64(1), nil
	}
	return int64(0), nil
}

func (f *boolField) SetWire(v any) error {
	n, err := asInt64(f.key, v)
	if err != nil {
		return err
	}
	*f.v = n == 1
	return nil
}

// Bytes binds a BLOB column to v.
func Bytes(key string, v *[]byte, opts ...Option) Field {
	return &bytesField{meta: newMeta(key, opts), v: v}
}

type bytesField struct {
	meta
	v *[]byte
}

func (f *bytesField) WireType() Type { return TypeBlob }

func (f *bytesField) Wire() (any, error) { return *f.v, nil }

func (f *bytesField) SetWire(v any) error {
	switch x := v.(type) {
	case []byte:
		*f.v = append([]byte(nil), x...)
		return nil
	case string:
		// Blobs nested inside an Object or ObjectList travel through
		// JSON, which encodes them as base64 text.
		b, err := base64.StdEncoding.DecodeString(x)
		if err != nil {
			return fmt.Errorf("field %q: %w", f.key, err)
		}
		*f.v = b
		return nil
	}
	return decodeErr(f.key, v, "blob")
}

// Time binds a TEXT column storing v as RFC 3339 text.
func Time(key string, v *time.Time, opts ...Option) Field {
	return &timeField{meta: newMeta(key, opts), v: v}
}

type timeField struct {
	meta
	v *time.Time
}

func (f *timeField) WireType() Type { return TypeText }

func (f *timeField) Wire() (any, error) {
	return f.v.Format(time.RFC3339Nano), nil
}

func (f *timeField) SetWire(v any) error {
	s, err := asText(f.key, v)
	if err != nil {
		return err
	}
	t, err := time.Parse(time.RFC3339Nano, string(s))
	if err != nil {
		return fmt.Errorf("field %q: %w", f.key, err)
	}
	*f.v = t
	return nil
}

// Duration binds an INTEGER column storing v as a microsecond count.
func Duration(key string, v *time.Duration, opts ...Option) Field {
	return &durationField{meta: newMeta(key, opts), v: v}
}

type durationField struct {
	meta
	v *time.Duration
}

func (f *durationField) WireType() Type { return TypeInteger }

func (f *durationField) Wire() (any, error) { return f.v.Microseconds(), nil }

func (f *durationField) SetWire(v any) error {
	n, err := asInt64(f.key, v)
	if err != nil {
		return err
	}
	*f.v = time.Duration(n) * time.Microsecond
	return nil
}

// Enum binds an INTEGER column storing the ordinal position of v within
// values. values must list every admissible value in a stable order; the
// ordinal is what the store keeps, so reordering values is a schema change.
func Enum[E comparable](key string, v *E, values []E, opts ...Option) Field {
	return &enumField[E]{meta: newMeta(key, opts), v: v, values: values}
}

type enumField[E comparable] struct {
	meta
	v      *E
	values []E
}

func (f *enumField[E]) WireType() Type { return TypeInteger }

func (f *enumField[E]) Wire() (any, error) {
	for i, val := range f.values {
		if val == *f.v {
			return int64(i), nil
		}
	}
	return nil, fmt.Errorf("field %q: value %v is not in the enum value list", f.key, *f.v)
}

func (f *enumField[E]) SetWire(v any) error {
	n, err := asInt64(f.key, v)
	if err != nil {
		return err
	}
	if n < 0 || n >= int64(len(f.values)) {
		return fmt.Errorf("field %q: enum ordinal %d out of range [0,%d)", f.key, n, len(f.values))
	}
	*f.v = f.values[n]
	return nil
}

// asInt64 accepts the integer shapes a store driver or a JSON-decoded nested
// record produces.
func asInt64(key string, v any) (int64, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case json.Number:
		n, err := x.Int64()
		if err != nil {
			return 0, fmt.Errorf("field %q: %w", key, err)
		}
		return n, nil
	}
	return 0, decodeErr(key, v, "integer")
}

// asText accepts text whether the driver hands it back as string or []byte.
func asText(key string, v any) ([]byte, error) {
	switch x := v.(type) {
	case string:
		return []byte(x), nil
	case []byte:
		return x, nil
	}
	return nil, decodeErr(key, v, "text")
}
