package langfiles

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"maps"
	"slices"
	"strings"
	"unicode/utf8"
)

// Messages is a flat key to value mapping that remembers insertion order.
// The zero value is ready to use.
type Messages struct {
	keys   []string
	values map[string]string
}

// NewMessages builds Messages from alternating key, value pairs.
func NewMessages(pairs ...string) *Messages {
	m := &Messages{}
	for i := 0; i+1 < len(pairs); i += 2 {
		m.Set(pairs[i], pairs[i+1])
	}
	return m
}

// FromMap builds Messages from an unordered map using sorted key order.
func FromMap(values map[string]string) *Messages {
	m := &Messages{}
	for _, key := range slices.Sorted(maps.Keys(values)) {
		m.Set(key, values[key])
	}
	return m
}

// Set stores value under key. Existing keys keep their position.
func (m *Messages) Set(key, value string) {
	if m.values == nil {
		m.values = map[string]string{}
	}
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

// Get returns the value stored under key.
func (m *Messages) Get(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	value, ok := m.values[key]
	return value, ok
}

// Has reports whether key is present, blank or not.
func (m *Messages) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Delete removes key.
func (m *Messages) Delete(key string) {
	if m == nil {
		return
	}
	if _, ok := m.values[key]; !ok {
		return
	}
	delete(m.values, key)
	m.keys = slices.DeleteFunc(m.keys, func(k string) bool { return k == key })
}

// Len returns the number of keys.
func (m *Messages) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// Keys returns the keys in insertion order.
func (m *Messages) Keys() []string {
	if m == nil {
		return nil
	}
	return slices.Clone(m.keys)
}

// All iterates key, value pairs in insertion order.
func (m *Messages) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		if m == nil {
			return
		}
		for _, key := range m.keys {
			if !yield(key, m.values[key]) {
				return
			}
		}
	}
}

// Map returns an unordered copy.
func (m *Messages) Map() map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return maps.Clone(m.values)
}

// Clone returns a deep copy.
func (m *Messages) Clone() *Messages {
	if m == nil {
		return &Messages{}
	}
	return &Messages{keys: slices.Clone(m.keys), values: maps.Clone(m.values)}
}

// Equal reports whether both mappings hold the same pairs, ignoring order.
func (m *Messages) Equal(other *Messages) bool {
	if m.Len() != other.Len() {
		return false
	}
	for key, value := range m.All() {
		if got, ok := other.Get(key); !ok || got != value {
			return false
		}
	}
	return true
}

// IsBlank reports whether value is empty or whitespace only.
func IsBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}

// MarshalJSON writes the pairs as a JSON object in insertion order.
func (m *Messages) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range m.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSONString(&buf, key); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeJSONString(&buf, m.values[key]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a flat JSON object keeping the document order.
// Scalars other than strings are kept as their literal text and null
// becomes an empty string. Nested objects or arrays return ErrNotFlat.
func (m *Messages) UnmarshalJSON(data []byte) error {
	if !utf8.Valid(data) {
		return ErrInvalidUTF8
	}
	decoded, err := decodeFlatJSON(data)
	if err != nil {
		return err
	}
	*m = *decoded
	return nil
}

func writeJSONString(buf *bytes.Buffer, value string) error {
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return fmt.Errorf("langfiles: encode %q: %w", value, err)
	}
	// Encode always appends a newline.
	buf.Truncate(buf.Len() - 1)
	return nil
}
