// Package patch provides an explicit present/absent wrapper for partial
// update payloads. A bare pointer cannot distinguish "field omitted"
// from "field set to null"; Field tracks both so PATCH handlers only
// touch what the caller actually supplied.
package patch

import "encoding/json"

// Field wraps an optional value in a partial update. Set reports whether
// the field appeared in the payload at all; Valid reports whether it
// carried a non-null value.
type Field[T any] struct {
	Set   bool
	Valid bool
	Value T
}

// NewField returns a set, non-null field holding v.
func NewField[T any](v T) Field[T] {
	return Field[T]{Set: true, Valid: true, Value: v}
}

// NullField returns a set field carrying an explicit null.
func NullField[T any]() Field[T] {
	return Field[T]{Set: true}
}

// UnmarshalJSON implements json.Unmarshaler. It is only invoked for keys
// present in the payload, so Set is always true here; absent keys leave
// the zero Field untouched.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if string(data) == "null" {
		f.Valid = false
		var zero T
		f.Value = zero
		return nil
	}
	if err := json.Unmarshal(data, &f.Value); err != nil {
		return err
	}
	f.Valid = true
	return nil
}

// MarshalJSON implements json.Marshaler for symmetry; unset fields
// serialize as null.
func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set || !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}
