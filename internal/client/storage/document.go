package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

var jsonNull = json.RawMessage("null")

// Document is an opaque string-keyed view of the on-disk file.
type Document struct {
	entries map[string]json.RawMessage
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{entries: make(map[string]json.RawMessage)}
}

func parseDocument(data []byte) (*Document, error) {
	doc := NewDocument()
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc.entries); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	if doc.entries == nil {
		// the file held a literal null
		doc.entries = make(map[string]json.RawMessage)
	}
	return doc, nil
}

func (d *Document) marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d.entries); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return buf.Bytes(), nil
}

// Len returns the number of top-level entries.
func (d *Document) Len() int { return len(d.entries) }

// Has reports whether key is present, including when its value is null.
func (d *Document) Has(key string) bool {
	_, ok := d.entries[key]
	return ok
}

// IsNull reports whether key is present with an explicit null value.
func (d *Document) IsNull(key string) bool {
	raw, ok := d.entries[key]
	return ok && isNull(raw)
}

// Get decodes the value under key into v. It returns false, without touching
// v, when the key is absent or null.
func (d *Document) Get(key string, v any) (bool, error) {
	raw, ok := d.entries[key]
	if !ok || isNull(raw) {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// Raw returns the undecoded value under key.
func (d *Document) Raw(key string) (json.RawMessage, bool) {
	raw, ok := d.entries[key]
	return raw, ok
}

// Set encodes v and stores it under key.
func (d *Document) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	d.entries[key] = raw
	return nil
}

// SetNull stores an explicit null under key. The key stays in the document.
func (d *Document) SetNull(key string) {
	d.entries[key] = jsonNull
}

// Delete removes key entirely.
func (d *Document) Delete(key string) {
	delete(d.entries, key)
}

// Keys returns all top-level keys in sorted order.
func (d *Document) Keys() []string {
	keys := make([]string, 0, len(d.entries))
	for k := range d.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), jsonNull)
}
