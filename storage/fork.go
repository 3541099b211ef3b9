package storage

import "sort"

// Fork is a writable overlay over a point-in-time base view.
//
// A fork buffers puts, deletes and table clears locally; the base is never
// touched. Reads see the base state with the overlay applied. A fork is
// single-owner state and is NOT safe for concurrent use.
type Fork struct {
	db     Database
	base   View
	tables map[string]*forkTable
	merged bool
}

var _ Writer = (*Fork)(nil)

// forkTable is the overlay for one named table. cleared marks that the
// table was emptied before the retained puts were written.
type forkTable struct {
	puts    map[string][]byte
	deletes map[string]struct{}
	cleared bool
}

func newFork(db Database, base View) *Fork {
	return &Fork{db: db, base: base, tables: make(map[string]*forkTable)}
}

func newForkTable() *forkTable {
	return &forkTable{puts: make(map[string][]byte), deletes: make(map[string]struct{})}
}

func (f *Fork) table(name string) *forkTable {
	t := f.tables[name]
	if t == nil {
		t = newForkTable()
		f.tables[name] = t
	}
	return t
}

// Get returns the value under key with the fork's own writes applied.
func (f *Fork) Get(table string, key []byte) ([]byte, bool) {
	k := string(key)
	if t := f.tables[table]; t != nil {
		if v, ok := t.puts[k]; ok {
			return append([]byte(nil), v...), true
		}
		if _, ok := t.deletes[k]; ok {
			return nil, false
		}
		if t.cleared {
			return nil, false
		}
	}
	return f.base.Get(table, key)
}

// Put stores value under key in the overlay.
func (f *Fork) Put(table string, key, value []byte) error {
	if f.merged {
		return ErrForkMerged
	}
	t := f.table(table)
	k := string(key)
	delete(t.deletes, k)
	t.puts[k] = append([]byte(nil), value...)
	return nil
}

// Delete removes key, masking any base value. Deleting an absent key is
// not an error.
func (f *Fork) Delete(table string, key []byte) error {
	if f.merged {
		return ErrForkMerged
	}
	t := f.table(table)
	k := string(key)
	delete(t.puts, k)
	if !t.cleared {
		t.deletes[k] = struct{}{}
	}
	return nil
}

// Clear drops every entry of the named table, base and overlay alike.
func (f *Fork) Clear(table string) error {
	if f.merged {
		return ErrForkMerged
	}
	t := newForkTable()
	t.cleared = true
	f.tables[table] = t
	return nil
}

// Iterator merges the base iterator with the overlay in ascending
// key-byte order. Overlay puts shadow base entries under the same key.
func (f *Fork) Iterator(table string, from []byte) Iterator {
	t := f.tables[table]

	var base Iterator
	if t == nil || !t.cleared {
		base = f.base.Iterator(table, from)
	}
	if t == nil {
		return &forkIterator{base: base}
	}

	start := string(from)
	keys := make([]string, 0, len(t.puts))
	for k := range t.puts {
		if k >= start {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	return &forkIterator{base: base, overlay: t, keys: keys}
}

// forkIterator yields the union of a base iterator and sorted overlay puts.
// The base never yields a key present in the overlay's puts or deletes, so
// the merge never sees an equal-key pair.
type forkIterator struct {
	base    Iterator
	overlay *forkTable
	keys    []string
	i       int

	baseKey     string
	baseVal     []byte
	basePending bool
	baseDone    bool

	key []byte
	val []byte
}

func (it *forkIterator) Next() bool {
	if !it.basePending && !it.baseDone {
		it.advanceBase()
	}

	overlayPending := it.i < len(it.keys)
	switch {
	case it.basePending && overlayPending && it.baseKey < it.keys[it.i]:
		it.emitBase()
	case it.basePending && !overlayPending:
		it.emitBase()
	case overlayPending:
		it.emitOverlay()
	default:
		it.key, it.val = nil, nil
		return false
	}
	return true
}

func (it *forkIterator) emitBase() {
	it.key = []byte(it.baseKey)
	it.val = it.baseVal
	it.basePending = false
}

func (it *forkIterator) emitOverlay() {
	k := it.keys[it.i]
	it.i++
	it.key = []byte(k)
	it.val = append([]byte(nil), it.overlay.puts[k]...)
}

func (it *forkIterator) advanceBase() {
	if it.base == nil {
		it.baseDone = true
		return
	}
	for it.base.Next() {
		k := string(it.base.Key())
		if it.overlay != nil {
			if _, ok := it.overlay.puts[k]; ok {
				continue
			}
			if _, ok := it.overlay.deletes[k]; ok {
				continue
			}
		}
		it.baseKey = k
		it.baseVal = append([]byte(nil), it.base.Value()...)
		it.basePending = true
		return
	}
	it.baseDone = true
}

func (it *forkIterator) Key() []byte   { return it.key }
func (it *forkIterator) Value() []byte { return it.val }
