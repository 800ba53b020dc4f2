// SPDX-License-Identifier: BUSL-1.1

package amt

import (
	"context"
	"errors"
	"fmt"

	"github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"

	"synnergy-vmcore/ipld"
)

// ErrIndexTooLarge is returned when an index would overflow the
// widest tree this package can represent.
var ErrIndexTooLarge = errors.New("amt: index exceeds maximum representable height")

// Amt is a handle onto a persistent AMT rooted at an in-memory node
// that may reference unloaded, CID-addressed subtrees. It is not safe
// for concurrent use.
type Amt struct {
	cfg      Config
	store    ipld.Blockstore
	codec    uint64
	hashCode uint64

	height  int
	count   uint64
	root    *node
	rootCID cid.Cid
	// dirty tracks whether anything has changed since rootCID was last
	// computed, letting Flush short-circuit to a cached CID and perform
	// no writes when called twice with no intervening mutation.
	dirty bool
}

// New creates an empty AMT over store.
func New(store ipld.Blockstore, cfg Config) (*Amt, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Amt{
		cfg:      cfg,
		store:    store,
		codec:    cid.DagCBOR,
		hashCode: mh.SHA2_256,
		height:   0,
		root:     newLeaf(cfg.width()),
	}, nil
}

// Load opens a handle onto a previously flushed AMT identified by
// root.
func Load(ctx context.Context, store ipld.Blockstore, cfg Config, root cid.Cid) (*Amt, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &Amt{cfg: cfg, store: store, codec: cid.DagCBOR, hashCode: mh.SHA2_256}
	raw, ok, err := store.Get(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("amt: loading root %s: %w", root, err)
	}
	if !ok {
		return nil, fmt.Errorf("amt: root block %s not found", root)
	}
	bitWidth, height, count, rootNode, err := decodeRoot(raw, cfg.width())
	if err != nil {
		return nil, fmt.Errorf("amt: decoding root %s: %w", root, err)
	}
	if bitWidth != cfg.BitWidth {
		return nil, fmt.Errorf("amt: root was built with bit_width %d, config has %d", bitWidth, cfg.BitWidth)
	}
	a.height = height
	a.count = count
	a.root = rootNode
	a.rootCID = root
	return a, nil
}

// BitWidth reports the configured branching factor exponent.
func (a *Amt) BitWidth() int { return a.cfg.BitWidth }

// Height reports the current tree height.
func (a *Amt) Height() int { return a.height }

// Count returns the number of populated indices in O(1).
func (a *Amt) Count() uint64 { return a.count }

func (a *Amt) capacity() uint64 {
	return uint64(a.cfg.width()) * powWidth(a.cfg.width(), a.height)
}

// Set stores val at idx, growing the tree's height if idx exceeds its
// current capacity.
func (a *Amt) Set(ctx context.Context, idx uint64, val []byte) error {
	width := a.cfg.width()
	for idx >= a.capacity() {
		grown := newLink(width)
		grown.links[0] = &link{node: a.root, dirty: true}
		a.root = grown
		a.height++
		if a.height > 64 {
			return ErrIndexTooLarge
		}
	}
	inserted, err := a.setAt(ctx, a.root, a.height, idx, val)
	if err != nil {
		return err
	}
	if inserted {
		a.count++
	}
	a.dirty = true
	return nil
}

func (a *Amt) setAt(ctx context.Context, n *node, height int, idx uint64, val []byte) (bool, error) {
	if height == 0 {
		wasEmpty := n.vals[idx] == nil
		n.vals[idx] = val
		return wasEmpty, nil
	}
	width := a.cfg.width()
	span := powWidth(width, height)
	slot := idx / span
	rem := idx % span

	lp := n.links[slot]
	if lp == nil {
		var child *node
		if height-1 == 0 {
			child = newLeaf(width)
		} else {
			child = newLink(width)
		}
		lp = &link{node: child, dirty: true}
		n.links[slot] = lp
	}
	child, err := lp.load(ctx, a.store, width)
	if err != nil {
		return false, err
	}
	inserted, err := a.setAt(ctx, child, height-1, rem, val)
	if err != nil {
		return false, err
	}
	lp.node = child
	lp.dirty = true
	return inserted, nil
}

// Get retrieves the value at idx, reporting whether it was present.
func (a *Amt) Get(ctx context.Context, idx uint64) ([]byte, bool, error) {
	if idx >= a.capacity() {
		return nil, false, nil
	}
	return a.getAt(ctx, a.root, a.height, idx)
}

func (a *Amt) getAt(ctx context.Context, n *node, height int, idx uint64) ([]byte, bool, error) {
	if height == 0 {
		v := n.vals[idx]
		return v, v != nil, nil
	}
	width := a.cfg.width()
	span := powWidth(width, height)
	slot := idx / span
	rem := idx % span
	lp := n.links[slot]
	if lp == nil {
		return nil, false, nil
	}
	child, err := lp.load(ctx, a.store, width)
	if err != nil {
		return nil, false, err
	}
	return a.getAt(ctx, child, height-1, rem)
}

// Delete removes the value at idx, reporting whether it was present.
// A root whose only populated child after deletion sits in slot 0 is
// collapsed down, keeping height a pure function of the tree's
// contents rather than its history.
func (a *Amt) Delete(ctx context.Context, idx uint64) (bool, error) {
	if idx >= a.capacity() {
		return false, nil
	}
	deleted, err := a.deleteAt(ctx, a.root, a.height, idx)
	if err != nil || !deleted {
		return deleted, err
	}
	a.count--
	a.dirty = true

	width := a.cfg.width()
	for a.height > 0 {
		slot, ok := a.root.soleChildSlot()
		if !ok || slot != 0 {
			break
		}
		child, err := a.root.links[0].load(ctx, a.store, width)
		if err != nil {
			return true, err
		}
		a.root = child
		a.height--
	}
	return true, nil
}

func (a *Amt) deleteAt(ctx context.Context, n *node, height int, idx uint64) (bool, error) {
	if height == 0 {
		if n.vals[idx] == nil {
			return false, nil
		}
		n.vals[idx] = nil
		return true, nil
	}
	width := a.cfg.width()
	span := powWidth(width, height)
	slot := idx / span
	rem := idx % span
	lp := n.links[slot]
	if lp == nil {
		return false, nil
	}
	child, err := lp.load(ctx, a.store, width)
	if err != nil {
		return false, err
	}
	deleted, err := a.deleteAt(ctx, child, height-1, rem)
	if err != nil || !deleted {
		return deleted, err
	}
	lp.node = child
	lp.dirty = true
	if child.isEmpty() {
		n.links[slot] = nil
	}
	return true, nil
}

// ForEachWhileFunc is called once per populated index in ascending
// order. Returning false or a non-nil error stops the traversal.
type ForEachWhileFunc func(idx uint64, val []byte) (bool, error)

// ForEachWhile walks every populated index in ascending order until fn
// returns false or an error.
func (a *Amt) ForEachWhile(ctx context.Context, fn ForEachWhileFunc) error {
	_, err := a.forEachWhile(ctx, a.root, a.height, 0, fn)
	return err
}

func (a *Amt) forEachWhile(ctx context.Context, n *node, height int, offset uint64, fn ForEachWhileFunc) (bool, error) {
	if height == 0 {
		for i, v := range n.vals {
			if v == nil {
				continue
			}
			cont, err := fn(offset+uint64(i), v)
			if err != nil {
				return false, err
			}
			if !cont {
				return false, nil
			}
		}
		return true, nil
	}
	width := a.cfg.width()
	span := powWidth(width, height)
	for i, lp := range n.links {
		if lp == nil {
			continue
		}
		child, err := lp.load(ctx, a.store, width)
		if err != nil {
			return false, err
		}
		cont, err := a.forEachWhile(ctx, child, height-1, offset+span*uint64(i), fn)
		if err != nil {
			return false, err
		}
		if !cont {
			return false, nil
		}
	}
	return true, nil
}

// Flush persists every dirty node reachable from the root and returns
// the resulting root CID. Calling Flush twice with no mutation between
// the calls is a no-op: it returns the same CID without touching the
// store.
func (a *Amt) Flush(ctx context.Context) (cid.Cid, error) {
	if !a.dirty && a.rootCID.Defined() {
		return a.rootCID, nil
	}
	if err := a.flushChildren(ctx, a.root); err != nil {
		return cid.Undef, err
	}
	data, err := encodeRoot(a.cfg.BitWidth, a.height, a.count, a.root)
	if err != nil {
		return cid.Undef, err
	}
	c, err := a.store.Put(ctx, a.codec, a.hashCode, data)
	if err != nil {
		return cid.Undef, err
	}
	a.rootCID = c
	a.dirty = false
	return c, nil
}

func (a *Amt) flushChildren(ctx context.Context, n *node) error {
	if n.leaf {
		return nil
	}
	for _, lp := range n.links {
		if lp == nil {
			continue
		}
		if !lp.dirty && lp.cid.Defined() {
			continue
		}
		if err := a.flushChildren(ctx, lp.node); err != nil {
			return err
		}
		data, err := encodeNodeBlock(lp.node)
		if err != nil {
			return err
		}
		c, err := a.store.Put(ctx, a.codec, a.hashCode, data)
		if err != nil {
			return err
		}
		lp.cid = c
		lp.dirty = false
	}
	return nil
}
