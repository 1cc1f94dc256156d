package row

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// Scalar constrains list elements to the kinds a JSON array column can hold.
type Scalar interface {
	~int64 | ~float64 | ~string
}

// List binds a TEXT column storing an ordered sequence of scalars as a JSON
// array.
func List[E Scalar](key string, v *[]E, opts ...Option) Field {
	return &listField[E]{meta: newMeta(key, opts), v: v}
}

type listField[E Scalar] struct {
	meta
	v *[]E
}

func (f *listField[E]) WireType() Type { return TypeText }

func (f *listField[E]) Wire() (any, error) {
	data, err := json.Marshal(*f.v)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", f.key, err)
	}
	return string(data), nil
}

func (f *listField[E]) SetWire(v any) error {
	data, err := asText(f.key, v)
	if err != nil {
		return err
	}
	var out []E
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("field %q: %w", f.key, err)
	}
	*f.v = out
	return nil
}

// Object binds a TEXT column storing one nested serializable value as a JSON
// object of its wire map. factory produces a blank nested value; without it
// the stored JSON could not be turned back into a typed value.
func Object[T Serializable](key string, v *T, factory func() T, opts ...Option) Field {
	return &objectField[T]{meta: newMeta(key, opts), v: v, factory: factory}
}

type objectField[T Serializable] struct {
	meta
	v       *T
	factory func() T
}

func (f *objectField[T]) WireType() Type { return TypeText }

func (f *objectField[T]) Wire() (any, error) {
	if isNilValue(*f.v) {
		return nil, fmt.Errorf("field %q: nil nested value", f.key)
	}
	m, err := ToMap(*f.v)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", f.key, err)
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", f.key, err)
	}
	return string(data), nil
}

func (f *objectField[T]) SetWire(v any) error {
	data, err := asText(f.key, v)
	if err != nil {
		return err
	}
	m, err := decodeWireMap(data)
	if err != nil {
		return fmt.Errorf("field %q: %w", f.key, err)
	}
	obj := f.factory()
	if err := FromMap(obj, m); err != nil {
		return fmt.Errorf("field %q: %w", f.key, err)
	}
	*f.v = obj
	return nil
}

// ObjectList binds a TEXT column storing an ordered sequence of nested
// serializable values as a JSON array of wire maps. factory produces a blank
// element per decoded entry.
func ObjectList[T Serializable](key string, v *[]T, factory func() T, opts ...Option) Field {
	return &objectListField[T]{meta: newMeta(key, opts), v: v, factory: factory}
}

type objectListField[T Serializable] struct {
	meta
	v       *[]T
	factory func() T
}

func (f *objectListField[T]) WireType() Type { return TypeText }

func (f *objectListField[T]) Wire() (any, error) {
	maps := make([]map[string]any, 0, len(*f.v))
	for _, elem := range *f.v {
		if isNilValue(elem) {
			return nil, fmt.Errorf("field %q: nil nested value", f.key)
		}
		m, err := ToMap(elem)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.key, err)
		}
		maps = append(maps, m)
	}
	data, err := json.Marshal(maps)
	if err != nil {
		return nil, fmt.Errorf("field %q: %w", f.key, err)
	}
	return string(data), nil
}

func (f *objectListField[T]) SetWire(v any) error {
	data, err := asText(f.key, v)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var maps []map[string]any
	if err := dec.Decode(&maps); err != nil {
		return fmt.Errorf("field %q: %w", f.key, err)
	}
	out := make([]T, 0, len(maps))
	for _, m := range maps {
		elem := f.factory()
		if err := FromMap(elem, m); err != nil {
			return fmt.Errorf("field %q: %w", f.key, err)
		}
		out = append(out, elem)
	}
	*f.v = out
	return nil
}

// isNilValue reports whether a nested value is a nil pointer. Serializable is
// satisfied by pointer types, so calling Fields on a nil one would fault when
// it binds its struct members.
func isNilValue(v any) bool {
	rv := reflect.ValueOf(v)
	return !rv.IsValid() || (rv.Kind() == reflect.Pointer && rv.IsNil())
}

// decodeWireMap parses a JSON object while keeping numbers as json.Number,
// so integer wire values survive the trip without drifting through float64.
func decodeWireMap(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}
