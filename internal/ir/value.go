package ir

import (
	"slices"
	"unicode/utf16"
)

// IRValue is a sealed interface over the JSON values used for hashing.
// Only IRString, IRArray and IRObject implement it; no numbers
// and no null, so the canonical form of a record is unambiguous.
type IRValue interface {
	irValue()
}

// IRString is a string value.
type IRString string

func (IRString) irValue() {}

// IRArray is an ordered list of values.
type IRArray []IRValue

func (IRArray) irValue() {}

// IRObject is a map of string keys to values.
// Use SortedKeys() for deterministic iteration.
type IRObject map[string]IRValue

func (IRObject) irValue() {}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// Go's string comparison orders by UTF-8 bytes, which differs above U+FFFF.
func (obj IRObject) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

func compareKeysRFC8785(a, b string) int {
	return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
}
