package types

import (
	"bytes"
	"encoding/json"
)

// Nullable tracks whether a JSON field was explicitly present. An explicit
// null sets Valid with a nil Value; an absent field leaves Valid false.
type Nullable[T any] struct {
	Valid bool
	Value *T
}

// Set builds a present, non-null value.
func Set[T any](v T) Nullable[T] {
	return Nullable[T]{Valid: true, Value: &v}
}

// Null builds an explicit null.
func Null[T any]() Nullable[T] {
	return Nullable[T]{Valid: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}

	if bytes.Equal(trimmed, []byte("null")) {
		n.Valid = true
		n.Value = nil
		return nil
	}

	var parsed T
	if err := json.Unmarshal(trimmed, &parsed); err != nil {
		return err
	}
	n.Valid = true
	n.Value = &parsed
	return nil
}

// Clone returns a copy that shares no memory with n.
func (n Nullable[T]) Clone() Nullable[T] {
	if n.Value == nil {
		return Nullable[T]{Valid: n.Valid}
	}
	copy := *n.Value
	return Nullable[T]{Valid: n.Valid, Value: &copy}
}
