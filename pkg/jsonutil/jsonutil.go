// Package jsonutil wraps github.com/go-json-experiment/json for the report
// pipeline and adds an insertion-ordered object type for free-form input
// sections whose key order is meaningful on the page.
//
// Usage:
//
//	var obj jsonutil.Object
//	err := jsonutil.Unmarshal(data, &obj)
//	for _, k := range obj.Keys() { ... }
package jsonutil

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// Unmarshal parses the JSON-encoded data and stores the result in v.
// Unknown object members are ignored.
func Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// Marshal returns the JSON encoding of v with deterministic map ordering.
func Marshal(v any) ([]byte, error) {
	return json.Marshal(v, json.Deterministic(true))
}

// MarshalIndent returns the indented JSON encoding of v.
func MarshalIndent(v any, prefix, indent string) ([]byte, error) {
	// go-json-experiment uses jsontext options for indentation
	return json.Marshal(v, json.Deterministic(true), jsontext.WithIndentPrefix(prefix), jsontext.WithIndent(indent))
}

// MarshalWrite writes the JSON encoding of v to w followed by a newline.
func MarshalWrite(w io.Writer, v any, indent string) error {
	var err error
	if indent != "" {
		err = json.MarshalWrite(w, v, json.Deterministic(true), jsontext.WithIndent(indent))
	} else {
		err = json.MarshalWrite(w, v, json.Deterministic(true))
	}
	if err != nil {
		return err
	}
	_, err = w.Write([]byte{'\n'})
	return err
}

// Valid reports whether data is a valid JSON encoding.
func Valid(data []byte) bool {
	return jsontext.Value(data).IsValid()
}

// Canonical returns data in RFC 8785 canonical form. Two documents with the
// same content but different whitespace or member order canonicalize equally.
func Canonical(data []byte) ([]byte, error) {
	v := jsontext.Value(bytes.Clone(data))
	if err := v.Canonicalize(); err != nil {
		return nil, err
	}
	return v, nil
}

// IsNull reports whether v is absent or the JSON literal null.
func IsNull(v jsontext.Value) bool {
	v = bytes.TrimSpace(v)
	return len(v) == 0 || v.Kind() == 'n'
}

// Text renders a scalar JSON value as display text. Strings lose their
// quotes, numbers keep their literal form, and null or absent values yield
// fallback. Objects and arrays render as compact JSON.
func Text(v jsontext.Value, fallback string) string {
	if IsNull(v) {
		return fallback
	}
	v = bytes.TrimSpace(v)
	switch v.Kind() {
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return fallback
		}
		return s
	case '0', 't', 'f':
		return string(v)
	default:
		c := v.Clone()
		if err := c.Compact(); err != nil {
			return string(v)
		}
		return string(c)
	}
}

// Number extracts a float from a JSON number, or from a string holding one.
func Number(v jsontext.Value) (float64, bool) {
	if IsNull(v) {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(v, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		if err := json.Unmarshal([]byte(s), &f); err == nil {
			return f, true
		}
	}
	return 0, false
}

// Object is a JSON object that remembers member order.
// The zero value is an empty object.
type Object struct {
	keys []string
	vals map[string]jsontext.Value
}

// Keys returns member names in input order.
func (o Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Len returns the number of members.
func (o Object) Len() int { return len(o.keys) }

// Has reports whether key is present (even when null).
func (o Object) Has(key string) bool {
	_, ok := o.vals[key]
	return ok
}

// Get returns the raw value for key.
func (o Object) Get(key string) (jsontext.Value, bool) {
	v, ok := o.vals[key]
	return v, ok
}

// String returns the display text for key, or fallback when absent or null.
func (o Object) String(key, fallback string) string {
	return Text(o.vals[key], fallback)
}

// Number returns the numeric value for key.
func (o Object) Number(key string) (float64, bool) {
	return Number(o.vals[key])
}

// Decode unmarshals the value for key into v. Absent keys leave v untouched.
func (o Object) Decode(key string, v any) error {
	raw, ok := o.vals[key]
	if !ok {
		return nil
	}
	return json.Unmarshal(raw, v)
}

// Set appends or replaces a member. Replacing keeps the original position.
func (o *Object) Set(key string, v jsontext.Value) {
	if o.vals == nil {
		o.vals = make(map[string]jsontext.Value)
	}
	if _, ok := o.vals[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.vals[key] = v
}

// UnmarshalJSON implements json.Unmarshaler. A null input yields an empty
// object; any other non-object input is an error.
func (o *Object) UnmarshalJSON(data []byte) error {
	dec := jsontext.NewDecoder(bytes.NewReader(data))
	tok, err := dec.ReadToken()
	if err != nil {
		return err
	}
	*o = Object{}
	switch tok.Kind() {
	case 'n':
		return nil
	case '{':
	default:
		return fmt.Errorf("jsonutil: expected object, found %v", tok.Kind())
	}
	for dec.PeekKind() != '}' {
		tok, err := dec.ReadToken()
		if err != nil {
			return err
		}
		// tok is only valid until the next decoder call.
		name := tok.String()
		val, err := dec.ReadValue()
		if err != nil {
			return err
		}
		o.Set(name, val.Clone())
	}
	_, err = dec.ReadToken()
	return err
}

// MarshalJSON implements json.Marshaler, emitting members in order.
func (o Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := jsontext.NewEncoder(&buf)
	if err := enc.WriteToken(jsontext.BeginObject); err != nil {
		return nil, err
	}
	for _, k := range o.keys {
		if err := enc.WriteToken(jsontext.String(k)); err != nil {
			return nil, err
		}
		if err := enc.WriteValue(o.vals[k]); err != nil {
			return nil, err
		}
	}
	if err := enc.WriteToken(jsontext.EndObject); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
