package model

import (
	"bytes"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"

	"github.com/amlscreen/amlreport/pkg/jsonutil"
)

// Option holds an optional compliance sub-record. A JSON null, a missing
// member, and the empty object {} all decode to an absent Option, so the
// inclusion rule for every section is a single Present check.
type Option[T any] struct {
	v  T
	ok bool
}

// Some wraps a present value.
func Some[T any](v T) Option[T] { return Option[T]{v: v, ok: true} }

// None returns an absent value.
func None[T any]() Option[T] { return Option[T]{} }

// Get returns the value and whether it is present.
func (o Option[T]) Get() (T, bool) { return o.v, o.ok }

// Present reports whether a value is held.
func (o Option[T]) Present() bool { return o.ok }

// IsZero lets omitzero drop absent values when marshaling.
func (o Option[T]) IsZero() bool { return !o.ok }

// MarshalJSON implements json.Marshaler.
func (o Option[T]) MarshalJSON() ([]byte, error) {
	if !o.ok {
		return []byte("null"), nil
	}
	return json.Marshal(o.v, json.Deterministic(true))
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *Option[T]) UnmarshalJSON(data []byte) error {
	if jsonutil.IsNull(data) || isEmptyObject(data) {
		*o = Option[T]{}
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

func isEmptyObject(data []byte) bool {
	v := jsontext.Value(bytes.TrimSpace(data))
	if v.Kind() != '{' {
		return false
	}
	var obj jsonutil.Object
	if err := jsonutil.Unmarshal(v, &obj); err != nil {
		return false
	}
	return obj.Len() == 0
}
