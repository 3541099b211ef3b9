package testkit

import (
	"bytes"
	"errors"
	"testing"

	"ledgernet.dev/sbmf/storage"
)

// NewDatabase constructs a fresh, empty Database instance for a test.
// The returned Database MUST be isolated from other tests.
type NewDatabase func(t *testing.T) storage.Database

// RunDatabaseConformance exercises the Database contract: snapshot
// isolation, fork read-your-writes, atomic merge, overlay masking,
// ordered iteration and spent-fork rejection.
func RunDatabaseConformance(t *testing.T, newDB NewDatabase) {
	t.Helper()

	t.Run("EmptySnapshot", func(t *testing.T) {
		db := newDB(t)
		snap := db.Snapshot()

		if v, ok := snap.Get("state", []byte("missing")); ok || v != nil {
			t.Fatalf("Get on empty snapshot: got (%x, %v)", v, ok)
		}
		if it := snap.Iterator("state", nil); it.Next() {
			t.Fatalf("iterator on empty snapshot yielded key %x", it.Key())
		}
	})

	t.Run("ForkReadsItsOwnWrites", func(t *testing.T) {
		db := newDB(t)
		fork := db.Fork()

		if err := fork.Put("state", []byte("k"), []byte("v")); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		got, ok := fork.Get("state", []byte("k"))
		if !ok || !bytes.Equal(got, []byte("v")) {
			t.Fatalf("fork Get: got (%q, %v)", got, ok)
		}

		// Unmerged writes stay invisible to the database.
		if _, ok := db.Snapshot().Get("state", []byte("k")); ok {
			t.Fatal("unmerged fork write visible through a snapshot")
		}
	})

	t.Run("SnapshotIsolation", func(t *testing.T) {
		db := newDB(t)
		seed := db.Fork()
		if err := seed.Put("state", []byte("k"), []byte("old")); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if err := db.Merge(seed); err != nil {
			t.Fatalf("Merge failed: %v", err)
		}

		before := db.Snapshot()

		fork := db.Fork()
		if err := fork.Put("state", []byte("k"), []byte("new")); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if err := db.Merge(fork); err != nil {
			t.Fatalf("Merge failed: %v", err)
		}

		got, ok := before.Get("state", []byte("k"))
		if !ok || !bytes.Equal(got, []byte("old")) {
			t.Fatalf("snapshot taken before merge changed: got (%q, %v)", got, ok)
		}
		got, ok = db.Snapshot().Get("state", []byte("k"))
		if !ok || !bytes.Equal(got, []byte("new")) {
			t.Fatalf("snapshot taken after merge: got (%q, %v)", got, ok)
		}
	})

	t.Run("MergePublishesAllWrites", func(t *testing.T) {
		db := newDB(t)
		fork := db.Fork()
		for _, k := range []string{"a", "b", "c"} {
			if err := fork.Put("state", []byte(k), []byte("v-"+k)); err != nil {
				t.Fatalf("Put(%s) failed: %v", k, err)
			}
		}
		if err := fork.Put("other", []byte("x"), []byte("y")); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if err := db.Merge(fork); err != nil {
			t.Fatalf("Merge failed: %v", err)
		}

		snap := db.Snapshot()
		for _, k := range []string{"a", "b", "c"} {
			got, ok := snap.Get("state", []byte(k))
			if !ok || !bytes.Equal(got, []byte("v-"+k)) {
				t.Fatalf("Get(%s): got (%q, %v)", k, got, ok)
			}
		}
		if _, ok := snap.Get("other", []byte("x")); !ok {
			t.Fatal("write to second table lost in merge")
		}
	})

	t.Run("DeleteMasksBaseState", func(t *testing.T) {
		db := newDB(t)
		seed := db.Fork()
		if err := seed.Put("state", []byte("k"), []byte("v")); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if err := db.Merge(seed); err != nil {
			t.Fatalf("Merge failed: %v", err)
		}

		fork := db.Fork()
		if err := fork.Delete("state", []byte("k")); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if _, ok := fork.Get("state", []byte("k")); ok {
			t.Fatal("deleted key still visible through the fork")
		}
		if err := db.Merge(fork); err != nil {
			t.Fatalf("Merge failed: %v", err)
		}
		if _, ok := db.Snapshot().Get("state", []byte("k")); ok {
			t.Fatal("deleted key survived the merge")
		}
	})

	t.Run("ClearDropsWholeTable", func(t *testing.T) {
		db := newDB(t)
		seed := db.Fork()
		for _, k := range []string{"a", "b"} {
			if err := seed.Put("state", []byte(k), []byte("v")); err != nil {
				t.Fatalf("Put failed: %v", err)
			}
		}
		if err := seed.Put("other", []byte("x"), []byte("y")); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if err := db.Merge(seed); err != nil {
			t.Fatalf("Merge failed: %v", err)
		}

		fork := db.Fork()
		if err := fork.Clear("state"); err != nil {
			t.Fatalf("Clear failed: %v", err)
		}
		if err := fork.Put("state", []byte("c"), []byte("after")); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if err := db.Merge(fork); err != nil {
			t.Fatalf("Merge failed: %v", err)
		}

		snap := db.Snapshot()
		for _, k := range []string{"a", "b"} {
			if _, ok := snap.Get("state", []byte(k)); ok {
				t.Fatalf("key %q survived Clear", k)
			}
		}
		if _, ok := snap.Get("state", []byte("c")); !ok {
			t.Fatal("put after Clear lost")
		}
		if _, ok := snap.Get("other", []byte("x")); !ok {
			t.Fatal("Clear leaked into another table")
		}
	})

	t.Run("OrderedIterationFromSeekKey", func(t *testing.T) {
		db := newDB(t)
		fork := db.Fork()
		// Inserted out of order on purpose.
		for _, k := range []string{"delta", "alpha", "charlie", "bravo"} {
			if err := fork.Put("state", []byte(k), []byte("v-"+k)); err != nil {
				t.Fatalf("Put failed: %v", err)
			}
		}
		if err := db.Merge(fork); err != nil {
			t.Fatalf("Merge failed: %v", err)
		}

		var got []string
		it := db.Snapshot().Iterator("state", []byte("bravo"))
		for it.Next() {
			got = append(got, string(it.Key()))
			if want := "v-" + string(it.Key()); string(it.Value()) != want {
				t.Fatalf("value for %s: got %q want %q", it.Key(), it.Value(), want)
			}
		}
		want := []string{"bravo", "charlie", "delta"}
		if len(got) != len(want) {
			t.Fatalf("iterated keys %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("iterated keys %v, want %v", got, want)
			}
		}
	})

	t.Run("MergedForkIsSpent", func(t *testing.T) {
		db := newDB(t)
		fork := db.Fork()
		if err := fork.Put("state", []byte("k"), []byte("v")); err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if err := db.Merge(fork); err != nil {
			t.Fatalf("Merge failed: %v", err)
		}

		if err := fork.Put("state", []byte("k2"), []byte("v2")); !errors.Is(err, storage.ErrForkMerged) {
			t.Fatalf("Put after merge: got err=%v want ErrForkMerged", err)
		}
		if err := db.Merge(fork); !errors.Is(err, storage.ErrForkMerged) {
			t.Fatalf("second Merge: got err=%v want ErrForkMerged", err)
		}
	})
}
