package store

// OrderedMap is a map that remembers insertion order. Values can be put back
// at a given position, which lets a removal be reverted exactly.
type OrderedMap[K comparable, V any] struct {
	keys   []K
	values map[K]V
}

// NewOrderedMap creates an empty ordered map.
func NewOrderedMap[K comparable, V any]() *OrderedMap[K, V] {
	return &OrderedMap[K, V]{
		values: make(map[K]V),
	}
}

// Len returns the number of entries.
func (m *OrderedMap[K, V]) Len() int {
	return len(m.keys)
}

// Has reports whether k is present.
func (m *OrderedMap[K, V]) Has(k K) bool {
	_, ok := m.values[k]
	return ok
}

// Get returns the value stored for k.
func (m *OrderedMap[K, V]) Get(k K) (V, bool) {
	v, ok := m.values[k]
	return v, ok
}

// Set stores v for k. A new key is appended; an existing key keeps its position.
func (m *OrderedMap[K, V]) Set(k K, v V) {
	if _, ok := m.values[k]; !ok {
		m.keys = append(m.keys, k)
	}
	m.values[k] = v
}

// Insert stores v for k at position idx. Out of range positions are clamped.
// If k is already present it is moved.
func (m *OrderedMap[K, V]) Insert(idx int, k K, v V) {
	if _, ok := m.values[k]; ok {
		m.Delete(k)
	}
	if idx < 0 {
		idx = 0
	}
	if idx > len(m.keys) {
		idx = len(m.keys)
	}
	m.keys = append(m.keys, k)
	copy(m.keys[idx+1:], m.keys[idx:])
	m.keys[idx] = k
	m.values[k] = v
}

// Index returns the position of k, or -1.
func (m *OrderedMap[K, V]) Index(k K) int {
	if _, ok := m.values[k]; !ok {
		return -1
	}
	for i, key := range m.keys {
		if key == k {
			return i
		}
	}
	return -1
}

// Delete removes k and returns its former position, or -1 if it was absent.
func (m *OrderedMap[K, V]) Delete(k K) int {
	idx := m.Index(k)
	if idx < 0 {
		return -1
	}
	m.keys = append(m.keys[:idx], m.keys[idx+1:]...)
	delete(m.values, k)
	return idx
}

// Keys returns a copy of the keys in insertion order.
func (m *OrderedMap[K, V]) Keys() []K {
	res := make([]K, len(m.keys))
	copy(res, m.keys)
	return res
}

// Values returns the values in insertion order.
func (m *OrderedMap[K, V]) Values() []V {
	res := make([]V, 0, len(m.keys))
	for _, k := range m.keys {
		res = append(res, m.values[k])
	}
	return res
}

// Each calls fn for every entry in insertion order until fn returns false.
func (m *OrderedMap[K, V]) Each(fn func(k K, v V) bool) {
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}
