package storage

import (
	"fmt"

	"ledgernet.dev/sbmf/serial"
)

// MapIndex is a named, typed map projection over a View. Keys and values
// pass through serial codecs; iteration order is the ascending byte order
// of the ENCODED keys, which for variable-length encodings is not the
// natural order of K.
//
// Write operations require the view to be a Writer; over a snapshot they
// fail with ErrReadOnlyView.
type MapIndex[K, V any] struct {
	name string
	view View
	key  serial.Serializer[K]
	val  serial.Serializer[V]
}

// NewMapIndex binds a typed index to the table called name within view.
func NewMapIndex[K, V any](name string, view View, key serial.Serializer[K], val serial.Serializer[V]) *MapIndex[K, V] {
	return &MapIndex[K, V]{name: name, view: view, key: key, val: val}
}

// Get returns the value stored under k. ok is false when the key is absent
// or the stored bytes are malformed; err is non-nil only in the malformed
// case.
func (m *MapIndex[K, V]) Get(k K) (V, bool, error) {
	var zero V
	raw, ok := m.view.Get(m.name, m.key.Serialize(k))
	if !ok {
		return zero, false, nil
	}
	v, err := m.val.Deserialize(raw)
	if err != nil {
		return zero, false, fmt.Errorf("storage: index %q: decode value: %w", m.name, err)
	}
	return v, true, nil
}

// Contains reports whether k is present, without decoding the stored value.
func (m *MapIndex[K, V]) Contains(k K) bool {
	_, ok := m.view.Get(m.name, m.key.Serialize(k))
	return ok
}

// Put stores v under k, replacing any previous value.
func (m *MapIndex[K, V]) Put(k K, v V) error {
	w, ok := m.view.(Writer)
	if !ok {
		return ErrReadOnlyView
	}
	return w.Put(m.name, m.key.Serialize(k), m.val.Serialize(v))
}

// Remove deletes k. Removing an absent key is not an error.
func (m *MapIndex[K, V]) Remove(k K) error {
	w, ok := m.view.(Writer)
	if !ok {
		return ErrReadOnlyView
	}
	return w.Delete(m.name, m.key.Serialize(k))
}

// Clear removes every entry of the index.
func (m *MapIndex[K, V]) Clear() error {
	w, ok := m.view.(Writer)
	if !ok {
		return ErrReadOnlyView
	}
	return w.Clear(m.name)
}

// Entries iterates all entries in ascending encoded-key order.
func (m *MapIndex[K, V]) Entries() *EntryIter[K, V] {
	return m.entries(nil)
}

// EntriesFrom iterates entries whose encoded key is >= the encoding of k.
func (m *MapIndex[K, V]) EntriesFrom(k K) *EntryIter[K, V] {
	return m.entries(m.key.Serialize(k))
}

func (m *MapIndex[K, V]) entries(from []byte) *EntryIter[K, V] {
	return &EntryIter[K, V]{name: m.name, it: m.view.Iterator(m.name, from), key: m.key, val: m.val}
}

// Keys iterates keys in ascending encoded order. Stored values stay
// undecoded.
func (m *MapIndex[K, V]) Keys() *KeyIter[K] { return m.keysFrom(nil) }

// KeysFrom iterates keys whose encoding is >= the encoding of k.
func (m *MapIndex[K, V]) KeysFrom(k K) *KeyIter[K] { return m.keysFrom(m.key.Serialize(k)) }

func (m *MapIndex[K, V]) keysFrom(from []byte) *KeyIter[K] {
	return &KeyIter[K]{name: m.name, it: m.view.Iterator(m.name, from), key: m.key}
}

// Values iterates values in ascending encoded-key order. Keys stay
// undecoded.
func (m *MapIndex[K, V]) Values() *ValueIter[V] { return m.valuesFrom(nil) }

// ValuesFrom iterates values of entries whose encoded key is >= the
// encoding of k.
func (m *MapIndex[K, V]) ValuesFrom(k K) *ValueIter[V] { return m.valuesFrom(m.key.Serialize(k)) }

func (m *MapIndex[K, V]) valuesFrom(from []byte) *ValueIter[V] {
	return &ValueIter[V]{name: m.name, it: m.view.Iterator(m.name, from), val: m.val}
}

// EntryIter yields decoded key/value pairs. Next returns false at the end
// of the index or on the first malformed entry; Err distinguishes the two.
type EntryIter[K, V any] struct {
	name string
	it   Iterator
	key  serial.Serializer[K]
	val  serial.Serializer[V]
	k    K
	v    V
	err  error
}

func (e *EntryIter[K, V]) Next() bool {
	if e.err != nil || !e.it.Next() {
		return false
	}
	k, err := e.key.Deserialize(e.it.Key())
	if err != nil {
		e.err = fmt.Errorf("storage: index %q: decode key %x: %w", e.name, e.it.Key(), err)
		return false
	}
	v, err := e.val.Deserialize(e.it.Value())
	if err != nil {
		e.err = fmt.Errorf("storage: index %q: decode value for key %x: %w", e.name, e.it.Key(), err)
		return false
	}
	e.k, e.v = k, v
	return true
}

func (e *EntryIter[K, V]) Key() K     { return e.k }
func (e *EntryIter[K, V]) Value() V   { return e.v }
func (e *EntryIter[K, V]) Err() error { return e.err }

// KeyIter yields decoded keys in ascending encoded order.
type KeyIter[K any] struct {
	name string
	it   Iterator
	key  serial.Serializer[K]
	k    K
	err  error
}

func (e *KeyIter[K]) Next() bool {
	if e.err != nil || !e.it.Next() {
		return false
	}
	k, err := e.key.Deserialize(e.it.Key())
	if err != nil {
		e.err = fmt.Errorf("storage: index %q: decode key %x: %w", e.name, e.it.Key(), err)
		return false
	}
	e.k = k
	return true
}

func (e *KeyIter[K]) Key() K     { return e.k }
func (e *KeyIter[K]) Err() error { return e.err }

// ValueIter yields decoded values in ascending encoded-key order.
type ValueIter[V any] struct {
	name string
	it   Iterator
	val  serial.Serializer[V]
	v    V
	err  error
}

func (e *ValueIter[V]) Next() bool {
	if e.err != nil || !e.it.Next() {
		return false
	}
	v, err := e.val.Deserialize(e.it.Value())
	if err != nil {
		e.err = fmt.Errorf("storage: index %q: decode value for key %x: %w", e.name, e.it.Key(), err)
		return false
	}
	e.v = v
	return true
}

func (e *ValueIter[V]) Value() V   { return e.v }
func (e *ValueIter[V]) Err() error { return e.err }
