// SPDX-License-Identifier: BUSL-1.1

package hamt

import (
	"context"
	"fmt"
	"testing"

	"github.com/ipfs/go-cid"

	"synnergy-vmcore/ipld"
)

func testConfig() Config {
	return Config{BitWidth: 5, MaxArrayWidth: 3, MinDataDepth: 0}
}

// countingStore wraps a Blockstore and counts Put calls, so a test can
// assert that a no-op Flush performed no writes.
type countingStore struct {
	ipld.Blockstore
	puts int
}

func (s *countingStore) Put(ctx context.Context, codec, hashCode uint64, data []byte) (cid.Cid, error) {
	s.puts++
	return s.Blockstore.Put(ctx, codec, hashCode, data)
}

func mustMap(t *testing.T, store ipld.Blockstore) *Map {
	t.Helper()
	m, err := New(store, testConfig(), SHA256Hash{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func TestSetGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := ipld.NewMemBlockstore()
	m := mustMap(t, store)

	if err := m.Set(ctx, []byte("alpha"), []byte("1")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := m.Set(ctx, []byte("beta"), []byte("2")); err != nil {
		t.Fatalf("Set: %v", err)
	}

	v, ok, err := m.Get(ctx, []byte("alpha"))
	if err != nil || !ok || string(v) != "1" {
		t.Fatalf("Get(alpha) = %q, %v, %v; want 1, true, nil", v, ok, err)
	}

	if err := m.Set(ctx, []byte("alpha"), []byte("overwritten")); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	v, ok, err = m.Get(ctx, []byte("alpha"))
	if err != nil || !ok || string(v) != "overwritten" {
		t.Fatalf("Get(alpha) after overwrite = %q, %v, %v", v, ok, err)
	}
}

func TestSetIfAbsentDoesNotOverwrite(t *testing.T) {
	ctx := context.Background()
	store := ipld.NewMemBlockstore()
	m := mustMap(t, store)

	inserted, err := m.SetIfAbsent(ctx, []byte("k"), []byte("first"))
	if err != nil || !inserted {
		t.Fatalf("SetIfAbsent first = %v, %v; want true, nil", inserted, err)
	}
	inserted, err = m.SetIfAbsent(ctx, []byte("k"), []byte("second"))
	if err != nil || inserted {
		t.Fatalf("SetIfAbsent second = %v, %v; want false, nil", inserted, err)
	}
	v, _, _ := m.Get(ctx, []byte("k"))
	if string(v) != "first" {
		t.Fatalf("value = %q, want unchanged %q", v, "first")
	}
}

func TestDeleteCollapsesToBucket(t *testing.T) {
	ctx := context.Background()
	store := ipld.NewMemBlockstore()
	cfg := Config{BitWidth: 2, MaxArrayWidth: 1, MinDataDepth: 0}
	m, err := New(store, cfg, IdentityHash{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// All three keys share root slot 0, so the second Set splits that
	// slot into a child node.
	keys := [][]byte{{0x00}, {0x10}, {0x20}}
	for _, k := range keys {
		if err := m.Set(ctx, k, k); err != nil {
			t.Fatalf("Set(%x): %v", k, err)
		}
	}

	ok, err := m.Delete(ctx, []byte{0x10})
	if err != nil || !ok {
		t.Fatalf("Delete = %v, %v; want true, nil", ok, err)
	}
	ok, err = m.Delete(ctx, []byte{0x20})
	if err != nil || !ok {
		t.Fatalf("Delete = %v, %v; want true, nil", ok, err)
	}

	v, ok, err := m.Get(ctx, []byte{0x00})
	if err != nil || !ok || string(v) != string([]byte{0x00}) {
		t.Fatalf("Get after collapse = %q, %v, %v", v, ok, err)
	}
	if p := m.root.get(0); p == nil || !p.isBucket() {
		t.Fatalf("expected the surviving entry to collapse back into a bucket in slot 0 of the root")
	}
}

func TestDeleteMissingKeyIsNoop(t *testing.T) {
	ctx := context.Background()
	store := ipld.NewMemBlockstore()
	m := mustMap(t, store)
	if err := m.Set(ctx, []byte("present"), []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	ok, err := m.Delete(ctx, []byte("absent"))
	if err != nil || ok {
		t.Fatalf("Delete(absent) = %v, %v; want false, nil", ok, err)
	}
}

func TestForEachVisitsEveryEntry(t *testing.T) {
	ctx := context.Background()
	store := ipld.NewMemBlockstore()
	m := mustMap(t, store)

	want := map[string]string{}
	for i := 0; i < 40; i++ {
		key := fmt.Sprintf("key-%03d", i)
		val := fmt.Sprintf("val-%03d", i)
		if err := m.Set(ctx, []byte(key), []byte(val)); err != nil {
			t.Fatalf("Set: %v", err)
		}
		want[key] = val
	}

	got := map[string]string{}
	err := m.ForEach(ctx, func(key, value []byte) error {
		got[string(key)] = string(value)
		return nil
	})
	if err != nil {
		t.Fatalf("ForEach: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("ForEach visited %d entries, want %d", len(got), len(want))
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("entry %q = %q, want %q", k, got[k], v)
		}
	}
}

func TestForEachRangedResumes(t *testing.T) {
	ctx := context.Background()
	store := ipld.NewMemBlockstore()
	m := mustMap(t, store)

	for i := 0; i < 25; i++ {
		key := fmt.Sprintf("item-%03d", i)
		if err := m.Set(ctx, []byte(key), []byte(key)); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}

	seen := map[string]bool{}
	var cursor []byte
	for {
		next, err := m.ForEachRanged(ctx, cursor, 7, func(key, value []byte) error {
			if seen[string(key)] {
				t.Fatalf("entry %q visited twice", key)
			}
			seen[string(key)] = true
			return nil
		})
		if err != nil {
			t.Fatalf("ForEachRanged: %v", err)
		}
		if next == nil {
			break
		}
		cursor = next
	}

	if len(seen) != 25 {
		t.Fatalf("ranged traversal visited %d entries, want 25", len(seen))
	}
}

func TestFlushLoadRoundTripIsCanonical(t *testing.T) {
	ctx := context.Background()
	store := ipld.NewMemBlockstore()

	buildAndFlush := func(order []int) (cidStr string) {
		m := mustMap(t, store)
		for _, i := range order {
			key := fmt.Sprintf("canonical-key-%04d", i)
			val := fmt.Sprintf("canonical-val-%04d", i)
			if err := m.Set(ctx, []byte(key), []byte(val)); err != nil {
				t.Fatalf("Set: %v", err)
			}
		}
		c, err := m.Flush(ctx)
		if err != nil {
			t.Fatalf("Flush: %v", err)
		}
		return c.String()
	}

	ascending := make([]int, 300)
	for i := range ascending {
		ascending[i] = i
	}
	descending := make([]int, 300)
	for i := range descending {
		descending[i] = 299 - i
	}
	shuffled := make([]int, 300)
	copy(shuffled, ascending)
	for i := range shuffled {
		j := (i*131 + 7) % len(shuffled)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	cidA := buildAndFlush(ascending)
	cidB := buildAndFlush(descending)
	cidC := buildAndFlush(shuffled)

	if cidA != cidB || cidA != cidC {
		t.Fatalf("root CID depends on insertion order: %s, %s, %s", cidA, cidB, cidC)
	}

	rootCID, err := cid.Decode(cidA)
	if err != nil {
		t.Fatalf("decoding root CID %q: %v", cidA, err)
	}
	reloaded, err := Load(ctx, store, testConfig(), SHA256Hash{}, rootCID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for i := 0; i < 300; i++ {
		key := fmt.Sprintf("canonical-key-%04d", i)
		want := fmt.Sprintf("canonical-val-%04d", i)
		v, ok, err := reloaded.Get(ctx, []byte(key))
		if err != nil || !ok || string(v) != want {
			t.Fatalf("Get(%q) after reload = %q, %v, %v; want %q, true, nil", key, v, ok, err, want)
		}
	}
}

// TestIdenticalKeyRehashIsIdempotent exercises the degenerate case
// where Set is called twice with exactly the same key: IdentityHash
// routes it through the identical path both times, and the second
// call must be a plain overwrite rather than a spurious split.
func TestIdenticalKeyRehashIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := ipld.NewMemBlockstore()
	cfg := Config{BitWidth: 2, MaxArrayWidth: 1, MinDataDepth: 0}
	m, err := New(store, cfg, IdentityHash{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	key := make([]byte, 32)
	if err := m.Set(ctx, key, []byte("a")); err != nil {
		t.Fatalf("Set first: %v", err)
	}
	if err := m.Set(ctx, key, []byte("b")); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	v, ok, err := m.Get(ctx, key)
	if err != nil || !ok || string(v) != "b" {
		t.Fatalf("Get = %q, %v, %v; want b, true, nil", v, ok, err)
	}
}

func TestBlake2b256HashRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := ipld.NewMemBlockstore()
	m, err := New(store, testConfig(), Blake2b256Hash{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := m.Set(ctx, []byte("alpha"), []byte("1")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := m.Set(ctx, []byte("beta"), []byte("2")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, ok, err := m.Get(ctx, []byte("alpha"))
	if err != nil || !ok || string(v) != "1" {
		t.Fatalf("Get(alpha) = %q, %v, %v; want 1, true, nil", v, ok, err)
	}
	v, ok, err = m.Get(ctx, []byte("beta"))
	if err != nil || !ok || string(v) != "2" {
		t.Fatalf("Get(beta) = %q, %v, %v; want 2, true, nil", v, ok, err)
	}
}

// TestSetSameValueLeavesNodeClean exercises spec's idempotent-Set
// requirement: overwriting a key with the bit-for-bit identical value
// it already holds must not mark anything dirty, so the next Flush is
// a pure no-op.
func TestSetSameValueLeavesNodeClean(t *testing.T) {
	ctx := context.Background()
	backing := &countingStore{Blockstore: ipld.NewMemBlockstore()}
	m, err := New(backing, testConfig(), SHA256Hash{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 40; i++ {
		key := fmt.Sprintf("key-%03d", i)
		if err := m.Set(ctx, []byte(key), []byte("value")); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}
	first, err := m.Flush(ctx)
	if err != nil {
		t.Fatalf("Flush: %v", err)
	}
	putsAfterFirstFlush := backing.puts

	if err := m.Set(ctx, []byte("key-017"), []byte("value")); err != nil {
		t.Fatalf("Set identical value: %v", err)
	}
	second, err := m.Flush(ctx)
	if err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if second != first {
		t.Fatalf("Flush after identical-value Set changed the root CID: %s vs %s", second, first)
	}
	if backing.puts != putsAfterFirstFlush {
		t.Fatalf("Flush after identical-value Set performed %d writes, want 0", backing.puts-putsAfterFirstFlush)
	}
}

// TestFlushTwiceWithNoMutationIsNoop exercises the general flush
// idempotency requirement directly: two consecutive flushes with no
// mutation between them must return the same CID and perform no
// writes at all, not merely skip unchanged subtrees.
func TestFlushTwiceWithNoMutationIsNoop(t *testing.T) {
	ctx := context.Background()
	backing := &countingStore{Blockstore: ipld.NewMemBlockstore()}
	m, err := New(backing, testConfig(), SHA256Hash{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	for i := 0; i < 40; i++ {
		key := fmt.Sprintf("key-%03d", i)
		if err := m.Set(ctx, []byte(key), []byte("value")); err != nil {
			t.Fatalf("Set: %v", err)
		}
	}

	first, err := m.Flush(ctx)
	if err != nil {
		t.Fatalf("Flush: %v", err)
	}
	putsAfterFirstFlush := backing.puts
	if putsAfterFirstFlush == 0 {
		t.Fatal("expected the first flush to perform at least one write")
	}

	second, err := m.Flush(ctx)
	if err != nil {
		t.Fatalf("second Flush: %v", err)
	}
	if second != first {
		t.Fatalf("second Flush returned a different CID: %s vs %s", second, first)
	}
	if backing.puts != putsAfterFirstFlush {
		t.Fatalf("second Flush performed %d writes, want 0", backing.puts-putsAfterFirstFlush)
	}
}
