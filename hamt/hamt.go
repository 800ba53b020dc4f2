// SPDX-License-Identifier: BUSL-1.1

package hamt

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"

	"synnergy-vmcore/ipld"
)

// ErrHashExhausted is returned when two distinct keys still collide
// after every bit of their hashed keys has been consumed. With a
// cryptographic hash algorithm this does not happen in practice; it
// exists to fail loudly rather than silently merge unrelated keys.
var ErrHashExhausted = errors.New("hamt: hash bits exhausted without resolving key collision")

// Map is a handle onto a persistent HAMT rooted at an in-memory node
// that may reference unloaded, CID-addressed subtrees. It is not safe
// for concurrent use; callers serialize access the same way the
// reference actor runtime serializes state access per invocation.
type Map struct {
	cfg      Config
	hashAlg  HashAlgorithm
	store    ipld.Blockstore
	root     *node
	rootCID  cid.Cid
	codec    uint64
	hashCode uint64
	// dirty tracks whether anything has changed since rootCID was last
	// computed, letting Flush short-circuit to a cached CID and perform
	// no writes when called twice with no intervening mutation.
	dirty bool
}

// New creates an empty HAMT over store.
func New(store ipld.Blockstore, cfg Config, hashAlg HashAlgorithm) (*Map, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Map{
		cfg:      cfg,
		hashAlg:  hashAlg,
		store:    store,
		root:     newNode(cfg),
		codec:    cid.DagCBOR,
		hashCode: mh.SHA2_256,
	}, nil
}

// Load opens a handle onto a previously flushed HAMT identified by
// root.
func Load(ctx context.Context, store ipld.Blockstore, cfg Config, hashAlg HashAlgorithm, root cid.Cid) (*Map, error) {
	m, err := New(store, cfg, hashAlg)
	if err != nil {
		return nil, err
	}
	if err := m.SetRoot(ctx, root); err != nil {
		return nil, err
	}
	return m, nil
}

// SetRoot discards the handle's current in-memory contents and
// repoints it at a different persisted root, without constructing a
// new Map.
func (m *Map) SetRoot(ctx context.Context, root cid.Cid) error {
	raw, ok, err := m.store.Get(ctx, root)
	if err != nil {
		return fmt.Errorf("hamt: loading root %s: %w", root, err)
	}
	if !ok {
		return fmt.Errorf("hamt: root block %s not found", root)
	}
	n, err := decodeNode(raw)
	if err != nil {
		return fmt.Errorf("hamt: decoding root %s: %w", root, err)
	}
	m.root = n
	m.rootCID = root
	m.dirty = false
	return nil
}

// Clear resets the handle to an empty map, discarding all in-memory
// and persisted content it referenced.
func (m *Map) Clear() {
	m.root = newNode(m.cfg)
	m.rootCID = cid.Undef
	m.dirty = false
}

// Set inserts or overwrites key with value.
func (m *Map) Set(ctx context.Context, key, value []byte) error {
	hashed := m.hashAlg.Hash(key)
	changed, err := m.setAt(ctx, m.root, hashed, 0, key, value, true)
	if err != nil {
		return err
	}
	if changed {
		m.dirty = true
	}
	return nil
}

// SetIfAbsent inserts value for key only if key is not already
// present, reporting whether an insertion occurred.
func (m *Map) SetIfAbsent(ctx context.Context, key, value []byte) (bool, error) {
	hashed := m.hashAlg.Hash(key)
	changed, err := m.setAt(ctx, m.root, hashed, 0, key, value, false)
	if err != nil {
		return false, err
	}
	if changed {
		m.dirty = true
	}
	return changed, nil
}

// setAt reports whether the stored contents actually changed, not
// merely whether an insertion was attempted: a Set of a value
// bit-for-bit identical to what is already stored leaves every node on
// the path clean, per the idempotent-Set requirement.
func (m *Map) setAt(ctx context.Context, n *node, hashed HashedKey, depth int, key, value []byte, overwrite bool) (bool, error) {
	if depth > m.cfg.maxDepth() {
		return false, ErrHashExhausted
	}
	slot := bitsAt(hashed, m.cfg.BitWidth, depth)
	p := n.get(slot)

	if p == nil {
		if depth < m.cfg.MinDataDepth {
			child := newNode(m.cfg)
			changed, err := m.setAt(ctx, child, hashed, depth+1, key, value, overwrite)
			if err != nil {
				return false, err
			}
			n.insertPointer(slot, pointer{child: &link{node: child, dirty: true}})
			return changed, nil
		}
		n.insertPointer(slot, pointer{bucket: bucketInsert(nil, key, value)})
		return true, nil
	}

	if p.isBucket() {
		idx := bucketFind(p.bucket, key)
		exists := idx < len(p.bucket) && bytes.Equal(p.bucket[idx].Key, key)
		if exists {
			if !overwrite || bytes.Equal(p.bucket[idx].Value, value) {
				return false, nil
			}
			p.bucket = bucketInsert(p.bucket, key, value)
			return true, nil
		}
		if len(p.bucket) < m.cfg.MaxArrayWidth {
			p.bucket = bucketInsert(p.bucket, key, value)
			return true, nil
		}
		if depth+1 > m.cfg.maxDepth() {
			return false, ErrHashExhausted
		}
		child := newNode(m.cfg)
		for _, entry := range p.bucket {
			entryHashed := m.hashAlg.Hash(entry.Key)
			if _, err := m.setAt(ctx, child, entryHashed, depth+1, entry.Key, entry.Value, true); err != nil {
				return false, err
			}
		}
		if _, err := m.setAt(ctx, child, hashed, depth+1, key, value, true); err != nil {
			return false, err
		}
		*p = pointer{child: &link{node: child, dirty: true}}
		return true, nil
	}

	child, err := p.child.load(ctx, m.store)
	if err != nil {
		return false, err
	}
	changed, err := m.setAt(ctx, child, hashed, depth+1, key, value, overwrite)
	if err != nil {
		return false, err
	}
	p.child.node = child
	if changed {
		p.child.dirty = true
	}
	return changed, nil
}

// Get looks up key, reporting whether it was present.
func (m *Map) Get(ctx context.Context, key []byte) ([]byte, bool, error) {
	hashed := m.hashAlg.Hash(key)
	return m.getAt(ctx, m.root, hashed, 0, key)
}

// ContainsKey reports whether key is present without returning its
// value.
func (m *Map) ContainsKey(ctx context.Context, key []byte) (bool, error) {
	_, ok, err := m.Get(ctx, key)
	return ok, err
}

func (m *Map) getAt(ctx context.Context, n *node, hashed HashedKey, depth int, key []byte) ([]byte, bool, error) {
	if depth > m.cfg.maxDepth() {
		return nil, false, nil
	}
	slot := bitsAt(hashed, m.cfg.BitWidth, depth)
	p := n.get(slot)
	if p == nil {
		return nil, false, nil
	}
	if p.isBucket() {
		idx := bucketFind(p.bucket, key)
		if idx < len(p.bucket) && bytes.Equal(p.bucket[idx].Key, key) {
			return p.bucket[idx].Value, true, nil
		}
		return nil, false, nil
	}
	child, err := p.child.load(ctx, m.store)
	if err != nil {
		return nil, false, err
	}
	return m.getAt(ctx, child, hashed, depth+1, key)
}

// Delete removes key, reporting whether it was present. A child node
// left holding no more than MaxArrayWidth entries after deletion is
// folded back into its parent slot as one key-sorted bucket, keeping
// the trie's shape a pure function of its contents.
func (m *Map) Delete(ctx context.Context, key []byte) (bool, error) {
	hashed := m.hashAlg.Hash(key)
	deleted, err := m.deleteAt(ctx, m.root, hashed, 0, key)
	if err != nil {
		return false, err
	}
	if deleted {
		m.dirty = true
	}
	return deleted, nil
}

func (m *Map) deleteAt(ctx context.Context, n *node, hashed HashedKey, depth int, key []byte) (bool, error) {
	if depth > m.cfg.maxDepth() {
		return false, nil
	}
	slot := bitsAt(hashed, m.cfg.BitWidth, depth)
	p := n.get(slot)
	if p == nil {
		return false, nil
	}

	if p.isBucket() {
		newBucket, ok := bucketRemove(p.bucket, key)
		if !ok {
			return false, nil
		}
		if len(newBucket) == 0 {
			n.removePointer(slot)
		} else {
			p.bucket = newBucket
		}
		return true, nil
	}

	child, err := p.child.load(ctx, m.store)
	if err != nil {
		return false, err
	}
	deleted, err := m.deleteAt(ctx, child, hashed, depth+1, key)
	if err != nil || !deleted {
		return deleted, err
	}
	p.child.node = child
	p.child.dirty = true

	if child.isEmpty() {
		n.removePointer(slot)
		return true, nil
	}
	if depth >= m.cfg.MinDataDepth {
		var merged []kv
		for _, cp := range child.pointers {
			if !cp.isBucket() || len(merged)+len(cp.bucket) > m.cfg.MaxArrayWidth {
				return true, nil
			}
			for _, e := range cp.bucket {
				merged = bucketInsert(merged, e.Key, e.Value)
			}
		}
		n.pointers[n.index(slot)] = pointer{bucket: merged}
	}
	return true, nil
}

// VisitFunc is called once per entry during a traversal. Returning a
// non-nil error aborts the traversal and is propagated to the caller.
type VisitFunc func(key, value []byte) error

// ForEach visits every entry in the map's natural trie order.
func (m *Map) ForEach(ctx context.Context, fn VisitFunc) error {
	return m.forEach(ctx, m.root, fn)
}

func (m *Map) forEach(ctx context.Context, n *node, fn VisitFunc) error {
	for i := range n.pointers {
		p := &n.pointers[i]
		if p.isBucket() {
			for _, entry := range p.bucket {
				if err := fn(entry.Key, entry.Value); err != nil {
					return err
				}
			}
			continue
		}
		child, err := p.child.load(ctx, m.store)
		if err != nil {
			return err
		}
		if err := m.forEach(ctx, child, fn); err != nil {
			return err
		}
	}
	return nil
}

// ForEachRanged visits up to limit entries, resuming after the entry
// whose key equals start (nil starts from the beginning). It returns
// the key to pass as start on the next call, or nil once the
// traversal has completed.
func (m *Map) ForEachRanged(ctx context.Context, start []byte, limit int, fn VisitFunc) ([]byte, error) {
	state := &rangedState{start: start, limit: limit, fn: fn}
	if start == nil {
		state.skipping = false
	} else {
		state.skipping = true
	}
	err := m.forEachRanged(ctx, m.root, state)
	if err != nil && !errors.Is(err, errRangedDone) {
		return nil, err
	}
	if state.emitted < state.limit {
		return nil, nil
	}
	return state.last, nil
}

type rangedState struct {
	start    []byte
	limit    int
	skipping bool
	emitted  int
	last     []byte
	fn       VisitFunc
}

var errRangedDone = errors.New("hamt: ranged traversal limit reached")

func (m *Map) forEachRanged(ctx context.Context, n *node, st *rangedState) error {
	for i := range n.pointers {
		p := &n.pointers[i]
		if p.isBucket() {
			for _, entry := range p.bucket {
				if st.skipping {
					if bytes.Equal(entry.Key, st.start) {
						st.skipping = false
					}
					continue
				}
				if err := st.fn(entry.Key, entry.Value); err != nil {
					return err
				}
				st.last = entry.Key
				st.emitted++
				if st.emitted >= st.limit {
					return errRangedDone
				}
			}
			continue
		}
		child, err := p.child.load(ctx, m.store)
		if err != nil {
			return err
		}
		if err := m.forEachRanged(ctx, child, st); err != nil {
			return err
		}
		if st.emitted >= st.limit {
			return errRangedDone
		}
	}
	return nil
}

// Flush persists every dirty node reachable from the root and returns
// the resulting root CID. Calling Flush twice with no mutation between
// the calls is a no-op: it returns the same CID without touching the
// store.
func (m *Map) Flush(ctx context.Context) (cid.Cid, error) {
	if !m.dirty && m.rootCID.Defined() {
		return m.rootCID, nil
	}
	c, err := m.flushNode(ctx, m.root)
	if err != nil {
		return cid.Undef, err
	}
	m.rootCID = c
	m.dirty = false
	return c, nil
}

func (m *Map) flushNode(ctx context.Context, n *node) (cid.Cid, error) {
	for i := range n.pointers {
		p := &n.pointers[i]
		if p.isBucket() {
			continue
		}
		if p.child.dirty || !p.child.cid.Defined() {
			c, err := m.flushNode(ctx, p.child.node)
			if err != nil {
				return cid.Undef, err
			}
			p.child.cid = c
			p.child.dirty = false
		}
	}
	data, err := encodeNode(n)
	if err != nil {
		return cid.Undef, err
	}
	return m.store.Put(ctx, m.codec, m.hashCode, data)
}
