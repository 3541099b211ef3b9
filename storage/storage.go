// Package storage provides versioned key/value state storage for serialized
// values: an in-memory database with point-in-time snapshots, writable forks
// that merge back atomically, and typed map indexes built on the serial
// package's codecs.
//
// Keys and values are opaque byte strings grouped into named tables. The
// package never aliases caller memory: bytes passed in are copied on write
// and bytes handed out are copies owned by the caller.
package storage

// View is read-only access to one consistent state of a database.
//
// Contract:
// - Get MUST report (nil, false) for absent keys.
// - Iterator MUST yield entries in ascending order of raw key bytes.
// - A View MUST NOT observe writes performed after it was obtained.
type View interface {
	// Get returns the value stored under key in the named table.
	Get(table string, key []byte) ([]byte, bool)

	// Iterator walks the named table in ascending key-byte order,
	// starting at the first key >= from (nil means the beginning).
	Iterator(table string, from []byte) Iterator
}

// Writer is the mutable extension of a View. Write methods fail with
// ErrForkMerged once the underlying fork has been merged.
type Writer interface {
	View

	// Put stores value under key in the named table, replacing any
	// previous value.
	Put(table string, key, value []byte) error

	// Delete removes key from the named table. Deleting an absent key
	// is not an error.
	Delete(table string, key []byte) error

	// Clear removes every entry of the named table.
	Clear(table string) error
}

// Iterator walks entries of one table in ascending key-byte order.
//
// Key and Value are valid only after Next has returned true. The returned
// slices are copies owned by the caller.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
}

// Database is a store that hands out point-in-time views.
//
// Contract:
// - Snapshot MUST be isolated: later merges never show through it.
// - Fork MUST observe the state at fork time plus its own writes.
// - Merge MUST apply a fork's accumulated changes atomically: a snapshot
//   taken concurrently sees either none of the fork's writes or all of them.
type Database interface {
	Snapshot() View
	Fork() *Fork
	Merge(*Fork) error
}
