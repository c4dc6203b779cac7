package domain

// OrderedMap is an insertion-ordered map with overwrite-by-key semantics.
// A key keeps the position of its first insertion while its value is
// replaced by later insertions, so duplicate names resolve to "last one
// wins" without reordering the output.
type OrderedMap[K comparable, V any] struct {
	keys   []K
	values map[K]V
}

// NewOrderedMap creates an empty map sized for n entries.
func NewOrderedMap[K comparable, V any](n int) *OrderedMap[K, V] {
	return &OrderedMap[K, V]{
		keys:   make([]K, 0, n),
		values: make(map[K]V, n),
	}
}

// Set stores v under k and reports whether an existing value was replaced.
func (m *OrderedMap[K, V]) Set(k K, v V) (replaced bool) {
	if _, ok := m.values[k]; ok {
		m.values[k] = v
		return true
	}
	m.keys = append(m.keys, k)
	m.values[k] = v
	return false
}

// Get returns the value stored under k.
func (m *OrderedMap[K, V]) Get(k K) (V, bool) {
	v, ok := m.values[k]
	return v, ok
}

// Len returns the number of distinct keys.
func (m *OrderedMap[K, V]) Len() int { return len(m.keys) }

// Keys returns the keys in first-insertion order.
func (m *OrderedMap[K, V]) Keys() []K {
	out := make([]K, len(m.keys))
	copy(out, m.keys)
	return out
}

// Values returns the values in key order.
func (m *OrderedMap[K, V]) Values() []V {
	out := make([]V, len(m.keys))
	for i, k := range m.keys {
		out[i] = m.values[k]
	}
	return out
}
