package models

import (
	"bytes"
	"encoding/json"
)

// Nullable tracks whether a JSON field was present at all, and if so whether
// it was null. Set=false means the key was absent; Set=true with Value=nil
// means an explicit null.
type Nullable[T any] struct {
	Set   bool
	Value *T
}

// NewNullable returns a present, non-null value.
func NewNullable[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Value: &v}
}

// Null returns a present, explicitly null value.
func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

func (n *Nullable[T]) UnmarshalJSON(b []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		n.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.Value)
}
