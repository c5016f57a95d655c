package node

import (
	"errors"
	"fmt"
	"iter"
	"slices"
)

var (
	// ErrDuplicateKey is returned when a pair would repeat an existing key.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrIndexOutOfRange is returned by positional operations with an invalid index.
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Pair is one key/value entry of a [Mapping].
type Pair struct {
	Key   Node
	Value Node
}

// Mapping is an ordered sequence of pairs with no two keys equal under
// [Node.Equal]. Iteration order is insertion order (or the last reorder) and
// is significant.
//
// Mapping has value semantics: mutating methods copy the backing storage
// before writing, so a Mapping copied by assignment is never affected by
// changes made through the other copy. The zero value is an empty mapping.
type Mapping struct {
	pairs []Pair
}

// NewMapping builds a mapping from pairs in order.
// Returns ErrDuplicateKey if two keys are equal.
func NewMapping(pairs ...Pair) (Mapping, error) {
	var m Mapping

	for _, p := range pairs {
		err := m.Insert(p.Key, p.Value)
		if err != nil {
			return Mapping{}, err
		}
	}

	return m, nil
}

// MustMapping is like NewMapping but panics on duplicate keys.
func MustMapping(pairs ...Pair) Mapping {
	m, err := NewMapping(pairs...)
	if err != nil {
		panic(err)
	}

	return m
}

// StringPair is shorthand for a pair with an unspecified-style scalar key.
func StringPair(key string, value Node) Pair {
	return Pair{Key: Scalar(key), Value: value}
}

// Len returns the number of pairs.
func (m Mapping) Len() int {
	return len(m.pairs)
}

// Index returns the position of key, or -1.
func (m Mapping) Index(key Node) int {
	for i := range m.pairs {
		if m.pairs[i].Key.Equal(key) {
			return i
		}
	}

	return -1
}

// Get returns the value stored under key.
func (m Mapping) Get(key Node) (Node, bool) {
	i := m.Index(key)
	if i < 0 {
		return Node{}, false
	}

	return m.pairs[i].Value, true
}

// Lookup is Get with a scalar key given as text.
func (m Mapping) Lookup(key string) (Node, bool) {
	return m.Get(Scalar(key))
}

// Has reports whether key is present.
func (m Mapping) Has(key Node) bool {
	return m.Index(key) >= 0
}

// At returns the pair at position i.
func (m Mapping) At(i int) (Pair, error) {
	if i < 0 || i >= len(m.pairs) {
		return Pair{}, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, i, len(m.pairs))
	}

	return m.pairs[i], nil
}

// Pairs returns a copy of the pairs in order.
func (m Mapping) Pairs() []Pair {
	return slices.Clone(m.pairs)
}

// Keys returns the keys in order.
func (m Mapping) Keys() []Node {
	keys := make([]Node, len(m.pairs))
	for i := range m.pairs {
		keys[i] = m.pairs[i].Key
	}

	return keys
}

// All iterates pairs in order.
func (m Mapping) All() iter.Seq2[Node, Node] {
	pairs := m.pairs

	return func(yield func(Node, Node) bool) {
		for _, p := range pairs {
			if !yield(p.Key, p.Value) {
				return
			}
		}
	}
}

// Set overwrites the value of an existing key in place, or appends a new
// pair. Reports whether an existing pair was overwritten.
func (m *Mapping) Set(key, value Node) bool {
	i := m.Index(key)

	m.pairs = slices.Clone(m.pairs)
	if i >= 0 {
		m.pairs[i].Value = value

		return true
	}

	m.pairs = append(m.pairs, Pair{Key: key, Value: value})

	return false
}

// Insert appends a new pair. Returns ErrDuplicateKey if key is present.
func (m *Mapping) Insert(key, value Node) error {
	if m.Index(key) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, key)
	}

	m.pairs = append(slices.Clip(m.pairs), Pair{Key: key, Value: value})

	return nil
}

// InsertAt inserts a new pair at position i (0 <= i <= Len).
func (m *Mapping) InsertAt(i int, key, value Node) error {
	if i < 0 || i > len(m.pairs) {
		return fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, i, len(m.pairs))
	}

	if m.Index(key) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, key)
	}

	m.pairs = slices.Insert(slices.Clone(m.pairs), i, Pair{Key: key, Value: value})

	return nil
}

// Delete removes key. Deleting an absent key is a no-op; the result reports
// whether a pair was removed.
func (m *Mapping) Delete(key Node) bool {
	i := m.Index(key)
	if i < 0 {
		return false
	}

	m.pairs = slices.Delete(slices.Clone(m.pairs), i, i+1)

	return true
}

// RemoveAt removes and returns the pair at position i.
func (m *Mapping) RemoveAt(i int) (Pair, error) {
	if i < 0 || i >= len(m.pairs) {
		return Pair{}, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, i, len(m.pairs))
	}

	removed := m.pairs[i]
	m.pairs = slices.Delete(slices.Clone(m.pairs), i, i+1)

	return removed, nil
}

// Rename replaces the key oldKey with newKey, keeping the pair's position and
// value. Reports false if oldKey is absent. Returns ErrDuplicateKey if newKey
// is already present under a different pair.
func (m *Mapping) Rename(oldKey, newKey Node) (bool, error) {
	i := m.Index(oldKey)
	if i < 0 {
		return false, nil
	}

	if j := m.Index(newKey); j >= 0 && j != i {
		return false, fmt.Errorf("%w: %s", ErrDuplicateKey, newKey)
	}

	m.pairs = slices.Clone(m.pairs)
	m.pairs[i].Key = newKey

	return true, nil
}

// Move relocates the pair stored under key to position i, shifting the pairs
// in between.
func (m *Mapping) Move(key Node, i int) (bool, error) {
	from := m.Index(key)
	if from < 0 {
		return false, nil
	}

	if i < 0 || i >= len(m.pairs) {
		return false, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, i, len(m.pairs))
	}

	pair := m.pairs[from]
	pairs := slices.Delete(slices.Clone(m.pairs), from, from+1)
	m.pairs = slices.Insert(pairs, i, pair)

	return true, nil
}

// Reverse reverses pair order.
func (m *Mapping) Reverse() {
	m.pairs = slices.Clone(m.pairs)
	slices.Reverse(m.pairs)
}

// SortFunc stably sorts pairs by cmp, which must be a total order.
func (m *Mapping) SortFunc(cmp func(a, b Pair) int) {
	m.pairs = slices.Clone(m.pairs)
	slices.SortStableFunc(m.pairs, cmp)
}

// Equal reports whether both mappings hold equal pairs in the same order.
func (m Mapping) Equal(other Mapping) bool {
	return slices.EqualFunc(m.pairs, other.pairs, func(a, b Pair) bool {
		return a.Key.Equal(b.Key) && a.Value.Equal(b.Value)
	})
}

// Clone returns a deep copy of m.
func (m Mapping) Clone() Mapping {
	if m.pairs == nil {
		return Mapping{}
	}

	pairs := make([]Pair, len(m.pairs))
	for i, p := range m.pairs {
		pairs[i] = Pair{Key: p.Key.Clone(), Value: p.Value.Clone()}
	}

	return Mapping{pairs: pairs}
}

// CompareKeys orders pairs by the text of their keys. Non-scalar keys sort
// by their debug rendering, after scalars of equal text.
func CompareKeys(a, b Pair) int {
	ak, bk := a.Key.sortText(), b.Key.sortText()
	if ak < bk {
		return -1
	}

	if ak > bk {
		return 1
	}

	return int(a.Key.kind) - int(b.Key.kind)
}

func (n Node) sortText() string {
	if n.kind == KindScalar {
		return n.text
	}

	return n.String()
}
