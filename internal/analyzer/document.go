// Package analyzer interprets inbound webhook payloads and derives a
// human-readable analysis from the structured data they carry.
package analyzer

import (
	"bytes"
	"encoding/json"
)

// Document is a decoded JSON object.
type Document map[string]interface{}

// AsDocument reports whether v is a JSON object and returns it as a Document.
func AsDocument(v interface{}) (Document, bool) {
	switch t := v.(type) {
	case Document:
		return t, t != nil
	case map[string]interface{}:
		return Document(t), t != nil
	default:
		return nil, false
	}
}

// Lookup walks nested objects along path. Missing keys, JSON null values and
// non-object intermediates all report false.
func (d Document) Lookup(path ...string) (interface{}, bool) {
	var cur interface{} = d
	for _, key := range path {
		obj, ok := AsDocument(cur)
		if !ok {
			return nil, false
		}
		next, ok := obj[key]
		if !ok || next == nil {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// Has reports whether key is present with a non-null value.
func (d Document) Has(key string) bool {
	_, ok := d.Lookup(key)
	return ok
}

// Decode parses a request body into a generic JSON value. Numbers are kept as
// json.Number so they render exactly as the sender wrote them.
func Decode(body []byte) (interface{}, error) {
	// Unmarshal into a RawMessage first: it validates the whole input,
	// including trailing data, and yields the standard syntax errors.
	var raw json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var value interface{}
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	return value, nil
}
