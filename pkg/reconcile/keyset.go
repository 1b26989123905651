package reconcile

// KeySet is an ordered, duplicate-free set of identity keys.
// Insertion order is the intended child order for the generation the set
// represents, and every key can be mapped back to its position in O(1).
type KeySet[K comparable] struct {
	keys  []K
	index map[K]int
}

// NewKeySet creates an empty KeySet with room for capacity keys.
func NewKeySet[K comparable](capacity int) *KeySet[K] {
	return &KeySet[K]{
		keys:  make([]K, 0, capacity),
		index: make(map[K]int, capacity),
	}
}

// Add appends k to the set, preserving insertion order.
// Returns false if k is already present; the set is unchanged.
func (s *KeySet[K]) Add(k K) bool {
	if _, ok := s.index[k]; ok {
		return false
	}
	s.index[k] = len(s.keys)
	s.keys = append(s.keys, k)
	return true
}

// Len returns the number of keys in the set.
func (s *KeySet[K]) Len() int {
	return len(s.keys)
}

// At returns the key at position i.
func (s *KeySet[K]) At(i int) K {
	return s.keys[i]
}

// IndexOf returns the position of k and whether it is present.
func (s *KeySet[K]) IndexOf(k K) (int, bool) {
	i, ok := s.index[k]
	return i, ok
}

// Contains reports whether k is in the set.
func (s *KeySet[K]) Contains(k K) bool {
	_, ok := s.index[k]
	return ok
}

// KeysOf derives a generation's KeySet from items using the key
// function. Duplicate keys are a caller contract violation; later
// occurrences are dropped rather than detected.
func KeysOf[T any, K comparable](items []T, key func(T) K) *KeySet[K] {
	set := NewKeySet[K](len(items))
	for _, item := range items {
		set.Add(key(item))
	}
	return set
}
