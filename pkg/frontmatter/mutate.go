package frontmatter

import (
	"fmt"
	"slices"

	"github.com/DandyLyons/frontrange/pkg/node"
)

func keyNode(key string) node.Node {
	return node.Scalar(key)
}

// Get returns the value stored under key.
func (d Document) Get(key string) (node.Node, bool) {
	return d.preamble.Get(keyNode(key))
}

// Has reports whether key is present.
func (d Document) Has(key string) bool {
	return d.preamble.Has(keyNode(key))
}

// Keys returns the top-level keys in order. Non-scalar keys are rendered in
// their debug form.
func (d Document) Keys() []string {
	keys := d.preamble.Keys()
	out := make([]string, len(keys))

	for i, k := range keys {
		if text, ok := k.AsScalar(); ok {
			out[i] = text
		} else {
			out[i] = k.String()
		}
	}

	return out
}

// Len returns the number of top-level pairs.
func (d Document) Len() int {
	return d.preamble.Len()
}

// Set overwrites the value of key in place, or appends key at the end.
func (d Document) Set(key string, value node.Node) Document {
	m := d.preamble
	m.Set(keyNode(key), value)

	return d.edited(m)
}

// Remove deletes key. The bool is false, and d is returned unchanged, when
// key is absent.
func (d Document) Remove(key string) (Document, bool) {
	m := d.preamble
	if !m.Delete(keyNode(key)) {
		return d, false
	}

	return d.edited(m), true
}

// Rename moves the value of oldKey to newKey. The pair keeps its position.
//
// Errors: ErrOldKeyNotFound, ErrNewKeyAlreadyExists.
func (d Document) Rename(oldKey, newKey string) (Document, error) {
	if !d.Has(oldKey) {
		return d, fmt.Errorf("rename %q: %w", oldKey, ErrOldKeyNotFound)
	}

	if d.Has(newKey) {
		return d, fmt.Errorf("rename %q to %q: %w", oldKey, newKey, ErrNewKeyAlreadyExists)
	}

	m := d.preamble

	_, err := m.Rename(keyNode(oldKey), keyNode(newKey))
	if err != nil {
		return d, fmt.Errorf("rename %q to %q: %w", oldKey, newKey, err)
	}

	return d.edited(m), nil
}

// Move relocates key to index.
//
// Errors: ErrKeyNotFound, node.ErrIndexOutOfRange.
func (d Document) Move(key string, index int) (Document, error) {
	m := d.preamble

	moved, err := m.Move(keyNode(key), index)
	if err != nil {
		return d, fmt.Errorf("move %q: %w", key, err)
	}

	if !moved {
		return d, fmt.Errorf("move %q: %w", key, ErrKeyNotFound)
	}

	return d.edited(m), nil
}

// Prioritize puts the listed keys first, in the given order. Absent keys
// are ignored and the remaining pairs keep their relative order.
func (d Document) Prioritize(keys ...string) Document {
	m := d.preamble

	next := 0

	for i, key := range keys {
		if slices.Contains(keys[:i], key) {
			continue
		}

		moved, err := m.Move(keyNode(key), next)
		if err == nil && moved {
			next++
		}
	}

	return d.edited(m)
}

// Retain removes every key not listed.
func (d Document) Retain(keys ...string) Document {
	var m node.Mapping

	for k, v := range d.preamble.All() {
		text, ok := k.AsScalar()
		if ok && slices.Contains(keys, text) {
			m.Set(k, v)
		}
	}

	return d.edited(m)
}

// Sort stably reorders pairs by cmp.
func (d Document) Sort(cmp func(a, b node.Pair) int) Document {
	m := d.preamble
	m.SortFunc(cmp)

	return d.edited(m)
}

// SortByKey orders pairs by key text.
func (d Document) SortByKey() Document {
	return d.Sort(node.CompareKeys)
}

// Reverse reverses pair order.
func (d Document) Reverse() Document {
	m := d.preamble
	m.Reverse()

	return d.edited(m)
}

// ArrayOptions controls array edits.
type ArrayOptions struct {
	// SkipDuplicates makes append/prepend a no-op when an equal scalar is
	// already present.
	SkipDuplicates bool
	// CaseInsensitive compares scalar text ignoring case.
	CaseInsensitive bool
}

// ArrayAppend adds value at the end of the sequence under key. The bool is
// false when the value was skipped as a duplicate.
//
// Errors: ErrKeyNotFound, ErrNotAnArray.
func (d Document) ArrayAppend(key string, value node.Node, opts ArrayOptions) (Document, bool, error) {
	return d.arrayInsert(key, value, opts, false)
}

// ArrayPrepend adds value at the start of the sequence under key. The bool
// is false when the value was skipped as a duplicate.
//
// Errors: ErrKeyNotFound, ErrNotAnArray.
func (d Document) ArrayPrepend(key string, value node.Node, opts ArrayOptions) (Document, bool, error) {
	return d.arrayInsert(key, value, opts, true)
}

func (d Document) arrayInsert(key string, value node.Node, opts ArrayOptions, front bool) (Document, bool, error) {
	seq, err := d.sequence(key)
	if err != nil {
		return d, false, err
	}

	items := seq.Items()
	if opts.SkipDuplicates && indexOfScalar(items, value, opts.CaseInsensitive) >= 0 {
		return d, false, nil
	}

	if front {
		items = slices.Insert(items, 0, value)
	} else {
		items = append(items, value)
	}

	return d.Set(key, seq.WithItems(items)), true, nil
}

// ArrayRemoveFirst removes the first scalar element equal to value. The
// bool is false, and d is returned unchanged, when nothing matched.
//
// Errors: ErrKeyNotFound, ErrNotAnArray.
func (d Document) ArrayRemoveFirst(key string, value node.Node, caseInsensitive bool) (Document, bool, error) {
	seq, err := d.sequence(key)
	if err != nil {
		return d, false, err
	}

	items := seq.Items()

	i := indexOfScalar(items, value, caseInsensitive)
	if i < 0 {
		return d, false, nil
	}

	return d.Set(key, seq.WithItems(slices.Delete(items, i, i+1))), true, nil
}

// ArrayContains reports whether a scalar element equals value.
//
// Errors: ErrKeyNotFound, ErrNotAnArray.
func (d Document) ArrayContains(key string, value node.Node, caseInsensitive bool) (bool, error) {
	seq, err := d.sequence(key)
	if err != nil {
		return false, err
	}

	return indexOfScalar(seq.Items(), value, caseInsensitive) >= 0, nil
}

func (d Document) sequence(key string) (node.Node, error) {
	v, ok := d.Get(key)
	if !ok {
		return node.Node{}, fmt.Errorf("%q: %w", key, ErrKeyNotFound)
	}

	if !v.IsSequence() {
		return node.Node{}, fmt.Errorf("%q is a %s: %w", key, v.Kind(), ErrNotAnArray)
	}

	return v, nil
}

// indexOfScalar finds the first scalar item equal to value. Only scalars
// take part; sequences, mappings and aliases never match.
func indexOfScalar(items []node.Node, value node.Node, caseInsensitive bool) int {
	if !value.IsScalar() {
		return -1
	}

	return slices.IndexFunc(items, func(item node.Node) bool {
		if !item.IsScalar() {
			return false
		}

		if caseInsensitive {
			return item.EqualFold(value)
		}

		return item.Equal(value)
	})
}
