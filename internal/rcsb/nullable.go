package rcsb

import (
	"bytes"
	"encoding/json"
)

// Nullable holds a value that the API may leave out. The zero Nullable is
// absent, which is distinct from a present zero.
type Nullable[T any] struct {
	Value T
	Valid bool
}

// Some returns a present value.
func Some[T any](v T) Nullable[T] {
	return Nullable[T]{Value: v, Valid: true}
}

// None returns an absent value.
func None[T any]() Nullable[T] {
	return Nullable[T]{}
}

// Get returns the value and whether it is present.
func (n Nullable[T]) Get() (T, bool) {
	return n.Value, n.Valid
}

// Or returns the value, or def when absent.
func (n Nullable[T]) Or(def T) T {
	if !n.Valid {
		return def
	}
	return n.Value
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*n = Nullable[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Some(v)
	return nil
}

func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}
