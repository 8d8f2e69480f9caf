package models

import (
	"bytes"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// OrderedMap is a string keyed map that remembers insertion order and
// keeps it when encoded to and decoded from a JSON object. A nil map
// reads as empty.
type OrderedMap[V any] struct {
	m *orderedmap.OrderedMap[string, V]
}

func NewOrderedMap[V any]() *OrderedMap[V] {
	return &OrderedMap[V]{m: orderedmap.New[string, V]()}
}

// Set stores value under key. A new key is appended, an existing key keeps its position.
func (m *OrderedMap[V]) Set(key string, value V) {
	if m.m == nil {
		m.m = orderedmap.New[string, V]()
	}
	m.m.Set(key, value)
}

func (m *OrderedMap[V]) Get(key string) (V, bool) {
	if m == nil || m.m == nil {
		var zero V
		return zero, false
	}
	return m.m.Get(key)
}

// Keys returns the keys in insertion order
func (m *OrderedMap[V]) Keys() []string {
	if m == nil || m.m == nil {
		return nil
	}
	keys := make([]string, 0, m.m.Len())
	for pair := m.m.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

func (m *OrderedMap[V]) Len() int {
	if m == nil || m.m == nil {
		return 0
	}
	return m.m.Len()
}

// Clone returns a shallow copy, values are not deep copied
func (m *OrderedMap[V]) Clone() *OrderedMap[V] {
	c := NewOrderedMap[V]()
	if m == nil || m.m == nil {
		return c
	}
	for pair := m.m.Oldest(); pair != nil; pair = pair.Next() {
		c.m.Set(pair.Key, pair.Value)
	}
	return c
}

func (m *OrderedMap[V]) MarshalJSON() ([]byte, error) {
	if m == nil || m.m == nil || m.m.Len() == 0 {
		return []byte("{}"), nil
	}
	return m.m.MarshalJSON()
}

func (m *OrderedMap[V]) UnmarshalJSON(data []byte) error {
	decoded := orderedmap.New[string, V]()
	// JSON null leaves an empty map
	if !bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		if err := decoded.UnmarshalJSON(data); err != nil {
			return fmt.Errorf("error decoding ordered object: %w", err)
		}
	}
	m.m = decoded
	return nil
}
