package jsonpath

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// KV is one member of a JSON object, preserving source order — plain
// encoding/json unmarshaling into map[string]any loses insertion order,
// but spec §4.2's tie-break rule ("object member insertion order") is
// load-bearing for every selector that touches objects, so this package
// never uses a bare Go map for JSON object values.
type KV struct {
	Key   string
	Value any
}

// Object is an order-preserving JSON object. Lookups are linear, which
// is the right trade for the object sizes this engine typically sees
// (streamed API records, not million-key documents).
type Object []KV

// Get returns the value for key and whether it was present.
func (o Object) Get(key string) (any, bool) {
	for _, kv := range o {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return nil, false
}

// Keys returns the member names in source order.
func (o Object) Keys() []string {
	keys := make([]string, len(o))
	for i, kv := range o {
		keys[i] = kv.Key
	}
	return keys
}

// Values returns the member values in source order.
func (o Object) Values() []any {
	vals := make([]any, len(o))
	for i, kv := range o {
		vals[i] = kv.Value
	}
	return vals
}

// Decode parses JSON bytes into this package's order-preserving value
// representation: Object for objects, []any for arrays, and
// float64/string/bool/nil for scalars — the same scalar types
// encoding/json itself would produce via an `any` target, just with
// objects kept ordered.
func Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return decodeFromToken(dec, tok)
}

func decodeFromToken(dec *json.Decoder, tok json.Token) (any, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			obj := Object{}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("jsonpath: expected object key, got %v", keyTok)
				}
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				obj = append(obj, KV{Key: key, Value: val})
			}
			if _, err := dec.Token(); err != nil { // consume '}'
				return nil, err
			}
			return obj, nil
		case '[':
			var arr []any
			for dec.More() {
				val, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				arr = append(arr, val)
			}
			if _, err := dec.Token(); err != nil { // consume ']'
				return nil, err
			}
			if arr == nil {
				arr = []any{}
			}
			return arr, nil
		default:
			return nil, fmt.Errorf("jsonpath: unexpected delimiter %v", t)
		}
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return f, nil
	default:
		return tok, nil
	}
}
