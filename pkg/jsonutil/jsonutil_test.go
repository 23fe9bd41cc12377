package jsonutil

import (
	"strings"
	"testing"

	"github.com/go-json-experiment/json/jsontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectPreservesOrder(t *testing.T) {
	var o Object
	err := Unmarshal([]byte(`{"zeta":1,"alpha":"two","mid":null,"list":[1,2]}`), &o)
	require.NoError(t, err)

	assert.Equal(t, []string{"zeta", "alpha", "mid", "list"}, o.Keys())
	assert.Equal(t, 4, o.Len())
	assert.True(t, o.Has("mid"))
	assert.False(t, o.Has("missing"))

	assert.Equal(t, "1", o.String("zeta", "N/A"))
	assert.Equal(t, "two", o.String("alpha", "N/A"))
	assert.Equal(t, "N/A", o.String("mid", "N/A"))
	assert.Equal(t, "N/A", o.String("missing", "N/A"))
	assert.Equal(t, "[1,2]", o.String("list", "N/A"))
}

func TestObjectNestedMemberNames(t *testing.T) {
	var o Object
	err := Unmarshal([]byte(`{"report":{"id":"A","input":{"chain":"eth"}},"a\/b":[{"x":1}],"last":{}}`), &o)
	require.NoError(t, err)
	assert.Equal(t, []string{"report", "a/b", "last"}, o.Keys())

	var inner Object
	require.NoError(t, o.Decode("report", &inner))
	assert.Equal(t, []string{"id", "input"}, inner.Keys())
	assert.Equal(t, "A", inner.String("id", ""))
}

func TestObjectMarshalRoundTripKeepsOrder(t *testing.T) {
	var o Object
	require.NoError(t, Unmarshal([]byte(`{"b":1,"a":2}`), &o))
	out, err := o.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"b":1,"a":2}`, string(out))
}

func TestObjectNullAndNonObject(t *testing.T) {
	var o Object
	require.NoError(t, Unmarshal([]byte(`null`), &o))
	assert.Equal(t, 0, o.Len())

	err := Unmarshal([]byte(`[1,2]`), &o)
	assert.Error(t, err)
}

func TestObjectSetReplacesInPlace(t *testing.T) {
	var o Object
	o.Set("a", jsontext.Value(`1`))
	o.Set("b", jsontext.Value(`2`))
	o.Set("a", jsontext.Value(`3`))
	assert.Equal(t, []string{"a", "b"}, o.Keys())
	n, ok := o.Number("a")
	assert.True(t, ok)
	assert.Equal(t, 3.0, n)
}

func TestText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`"hello"`, "hello"},
		{`1.50`, "1.50"},
		{`42`, "42"},
		{`true`, "true"},
		{`null`, "-"},
		{``, "-"},
		{`{ "a" : 1 }`, `{"a":1}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Text(jsontext.Value(tt.in), "-"), "input %q", tt.in)
	}
}

func TestNumber(t *testing.T) {
	n, ok := Number(jsontext.Value(`85`))
	assert.True(t, ok)
	assert.Equal(t, 85.0, n)

	n, ok = Number(jsontext.Value(`"72.5"`))
	assert.True(t, ok)
	assert.Equal(t, 72.5, n)

	_, ok = Number(jsontext.Value(`"high"`))
	assert.False(t, ok)

	_, ok = Number(nil)
	assert.False(t, ok)
}

func TestCanonical(t *testing.T) {
	a, err := Canonical([]byte(`{"b": 1, "a": [1, 2]}`))
	require.NoError(t, err)
	b, err := Canonical([]byte("{\n  \"a\":[1,2],\"b\":1}"))
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
	assert.False(t, strings.Contains(string(a), " "))
}

func TestMarshalIndent(t *testing.T) {
	out, err := MarshalIndent(map[string]int{"b": 2, "a": 1}, "", "  ")
	require.NoError(t, err)
	text := string(out)
	assert.Contains(t, text, "\n  \"a\"")
	assert.Less(t, strings.Index(text, `"a"`), strings.Index(text, `"b"`))
}

func TestValid(t *testing.T) {
	assert.True(t, Valid([]byte(`{"a":1}`)))
	assert.False(t, Valid([]byte(`{a:1}`)))
}
