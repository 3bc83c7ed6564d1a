package ir

import (
	"bytes"
	"encoding/json"
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces RFC 8785 canonical JSON for hashing.
//
// Differences from json.Marshal:
//  1. Object keys sorted by UTF-16 code units
//  2. No HTML escaping
//  3. Strings are NFC normalized
//  4. U+2028 and U+2029 are written literally
func MarshalCanonical(v IRValue) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, v IRValue) error {
	switch val := v.(type) {
	case nil:
		return fmt.Errorf("null is forbidden in canonical JSON")
	case IRString:
		return writeCanonicalString(buf, string(val))
	case IRArray:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonical(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
	case IRObject:
		buf.WriteByte('{')
		for i, k := range val.SortedKeys() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeCanonicalString(buf, k); err != nil {
				return fmt.Errorf("key %q: %w", k, err)
			}
			buf.WriteByte(':')
			if err := writeCanonical(buf, val[k]); err != nil {
				return fmt.Errorf("value for key %q: %w", k, err)
			}
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
	return nil
}

// writeCanonicalString escapes only quote, backslash and control characters.
func writeCanonicalString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return err
	}
	out := bytes.TrimSuffix(tmp.Bytes(), []byte{'\n'})
	buf.Write(unescapeLineSeparators(out))
	return nil
}

// unescapeLineSeparators turns the \u2028 and \u2029 escapes json.Encoder emits
// back into literal characters. An escape preceded by an odd run of backslashes
// is literal text and is kept.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}

	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] == '\\' && i+6 <= len(data) &&
			string(data[i+1:i+5]) == "u202" && (data[i+5] == '8' || data[i+5] == '9') {
			run := 0
			for j := len(out) - 1; j >= 0 && out[j] == '\\'; j-- {
				run++
			}
			if run%2 == 0 {
				if data[i+5] == '8' {
					out = append(out, "\u2028"...)
				} else {
					out = append(out, "\u2029"...)
				}
				i += 5
				continue
			}
		}
		out = append(out, data[i])
	}
	return out
}

// Canonical returns the hashable form of a record. Positions and docs are
// excluded so moving a type within a file does not change its hash.
func (r RecordDefinition) Canonical() IRObject {
	fields := make(IRArray, len(r.Fields))
	for i, f := range r.Fields {
		fields[i] = IRObject{
			"name":        IRString(f.Name),
			"type":        f.Type.canonical(),
			"annotations": canonicalAnnotations(f.Annotations),
		}
	}
	params := make(IRArray, len(r.TypeParams))
	for i, p := range r.TypeParams {
		params[i] = IRObject{"name": IRString(p.Name), "constraint": IRString(p.Constraint)}
	}
	return IRObject{
		"name":        IRString(r.Name),
		"shape":       IRString(r.Shape),
		"fields":      fields,
		"type_params": params,
		"annotations": canonicalAnnotations(r.Annotations),
	}
}

func (t TypeExpr) canonical() IRObject {
	obj := IRObject{
		"kind": IRString(t.Kind),
		"text": IRString(t.String()),
	}
	return obj
}

func canonicalAnnotations(as []Annotation) IRArray {
	arr := make(IRArray, len(as))
	for i, a := range as {
		toks := make(IRArray, len(a.Tokens))
		for j, tok := range a.Tokens {
			toks[j] = IRObject{"kind": IRString(tok.Kind), "text": IRString(tok.Text)}
		}
		arr[i] = IRObject{"namespace": IRString(a.Namespace), "tokens": toks}
	}
	return arr
}
