package storage

import (
	"errors"
	"sort"
	"sync"
)

// MemoryDB is an in-memory Database backed by per-table byte maps.
//
// All methods are safe for concurrent use. Snapshots are deep copies and
// therefore fully isolated from later writes; forks buffer their writes
// locally until Merge applies them in one critical section.
type MemoryDB struct {
	mu     sync.RWMutex
	tables map[string]map[string][]byte
}

var _ Database = (*MemoryDB)(nil)

func NewMemoryDB() *MemoryDB {
	return &MemoryDB{tables: make(map[string]map[string][]byte)}
}

// Snapshot returns a read-only, point-in-time view of the current state.
func (db *MemoryDB) Snapshot() View {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return &snapshot{tables: copyTables(db.tables)}
}

// Fork returns a writable overlay over the current state.
func (db *MemoryDB) Fork() *Fork {
	return newFork(db, db.Snapshot())
}

// Merge applies every write buffered in f in one atomic step and marks the
// fork merged. A merged fork keeps serving reads of exactly the state it
// carried; further writes to it fail with ErrForkMerged.
func (db *MemoryDB) Merge(f *Fork) error {
	if f == nil {
		return errors.New("storage: nil fork")
	}
	if f.db != Database(db) {
		return errors.New("storage: fork belongs to a different database")
	}
	if f.merged {
		return ErrForkMerged
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	for name, ft := range f.tables {
		if ft.cleared {
			fresh := make(map[string][]byte, len(ft.puts))
			for k, v := range ft.puts {
				fresh[k] = append([]byte(nil), v...)
			}
			db.tables[name] = fresh
			continue
		}
		dst := db.tables[name]
		if dst == nil {
			dst = make(map[string][]byte, len(ft.puts))
			db.tables[name] = dst
		}
		for k := range ft.deletes {
			delete(dst, k)
		}
		for k, v := range ft.puts {
			dst[k] = append([]byte(nil), v...)
		}
	}
	f.merged = true
	return nil
}

// snapshot is an immutable deep copy of the database state.
type snapshot struct {
	tables map[string]map[string][]byte
}

var _ View = (*snapshot)(nil)

func (s *snapshot) Get(table string, key []byte) ([]byte, bool) {
	v, ok := s.tables[table][string(key)]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), v...), true
}

func (s *snapshot) Iterator(table string, from []byte) Iterator {
	return newMapIterator(s.tables[table], from)
}

func copyTables(src map[string]map[string][]byte) map[string]map[string][]byte {
	out := make(map[string]map[string][]byte, len(src))
	for name, t := range src {
		ct := make(map[string][]byte, len(t))
		for k, v := range t {
			ct[k] = append([]byte(nil), v...)
		}
		out[name] = ct
	}
	return out
}

// mapIterator walks a byte-keyed map in ascending key order. The map must
// not change while the iterator is live.
type mapIterator struct {
	m    map[string][]byte
	keys []string
	i    int
	key  []byte
	val  []byte
}

func newMapIterator(m map[string][]byte, from []byte) *mapIterator {
	keys := make([]string, 0, len(m))
	start := string(from)
	for k := range m {
		if k >= start {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return &mapIterator{m: m, keys: keys}
}

func (it *mapIterator) Next() bool {
	if it.i >= len(it.keys) {
		it.key, it.val = nil, nil
		return false
	}
	k := it.keys[it.i]
	it.i++
	it.key = []byte(k)
	it.val = append([]byte(nil), it.m[k]...)
	return true
}

func (it *mapIterator) Key() []byte   { return it.key }
func (it *mapIterator) Value() []byte { return it.val }
