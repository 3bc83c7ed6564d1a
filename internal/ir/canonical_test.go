package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    IRValue
		expected string
	}{
		{"string", IRString("hello"), `"hello"`},
		{"empty string", IRString(""), `""`},
		{"empty array", IRArray{}, "[]"},
		{"empty object", IRObject{}, "{}"},
		{"array of strings", IRArray{IRString("x"), IRString("y")}, `["x","y"]`},
		{"simple object", IRObject{"a": IRString("1")}, `{"a":"1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalNestedSortedKeys(t *testing.T) {
	obj := IRObject{
		"z": IRObject{
			"b": IRString("1"),
			"a": IRString("2"),
		},
		"a": IRString("3"),
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"a":"3","z":{"a":"2","b":"1"}}`, string(result))
}

func TestMarshalCanonicalUTF16Ordering(t *testing.T) {
	// U+10000 encodes as a surrogate pair starting 0xD800, which sorts
	// before 0xE000 in UTF-16 but after it in UTF-8.
	obj := IRObject{
		"\uE000":     IRString("1"),
		"\U00010000": IRString("2"),
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, "{\"\U00010000\":\"2\",\"\uE000\":\"1\"}", string(result))
}

func TestMarshalCanonicalNoHTMLEscape(t *testing.T) {
	result, err := MarshalCanonical(IRString("<a&b>"))
	require.NoError(t, err)
	assert.Equal(t, `"<a&b>"`, string(result))
}

func TestMarshalCanonicalLineSeparators(t *testing.T) {
	result, err := MarshalCanonical(IRString("a\u2028b\u2029c"))
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\u2029c\"", string(result))

	// literal backslash followed by u2028 text stays escaped
	result, err = MarshalCanonical(IRString(`\u2028`))
	require.NoError(t, err)
	assert.Equal(t, `"\\u2028"`, string(result))
}

func TestMarshalCanonicalNFC(t *testing.T) {
	decomposed, err := MarshalCanonical(IRString("e\u0301"))
	require.NoError(t, err)
	composed, err := MarshalCanonical(IRString("\u00e9"))
	require.NoError(t, err)
	assert.Equal(t, composed, decomposed)
}

func TestMarshalCanonicalRejectsNil(t *testing.T) {
	_, err := MarshalCanonical(IRArray{nil})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "null")
}
