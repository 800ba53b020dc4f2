// SPDX-License-Identifier: BUSL-1.1

package hamt

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/ipfs/go-cid"

	"synnergy-vmcore/ipld"
)

// kv is one entry in a leaf bucket, sorted by Key so that a bucket's
// CBOR encoding is canonical regardless of insertion order.
type kv struct {
	Key   []byte
	Value []byte
}

// link points at a child subtree, either already materialized in
// memory (node != nil) or only known by its persisted CID, loaded the
// first time a traversal needs it.
type link struct {
	cid   cid.Cid
	node  *node
	dirty bool
}

func (l *link) load(ctx context.Context, store ipld.Blockstore) (*node, error) {
	if l.node != nil {
		return l.node, nil
	}
	raw, ok, err := store.Get(ctx, l.cid)
	if err != nil {
		return nil, fmt.Errorf("hamt: loading child %s: %w", l.cid, err)
	}
	if !ok {
		return nil, fmt.Errorf("hamt: child block %s not found", l.cid)
	}
	n, err := decodeNode(raw)
	if err != nil {
		return nil, fmt.Errorf("hamt: decoding child %s: %w", l.cid, err)
	}
	l.node = n
	return n, nil
}

// pointer occupies one populated slot of a node's bitmap: it is either
// a leaf bucket of key/value pairs or a link to a deeper subtree, never
// both.
type pointer struct {
	bucket []kv
	child  *link
}

func (p *pointer) isBucket() bool { return p.child == nil }

// node is one level of the trie: a bitmap recording which of the
// 2^BitWidth slots are populated, and a packed, bitmap-order vector of
// pointers for exactly those slots.
type node struct {
	bitmap   []byte
	pointers []pointer
}

func newNode(cfg Config) *node {
	return &node{bitmap: make([]byte, cfg.bitmapBytes())}
}

func bitmapTestAndSet(bitmap []byte, slot int, val bool) bool {
	byteIdx := slot / 8
	bitIdx := uint(slot % 8)
	was := bitmap[byteIdx]&(1<<bitIdx) != 0
	if val {
		bitmap[byteIdx] |= 1 << bitIdx
	} else {
		bitmap[byteIdx] &^= 1 << bitIdx
	}
	return was
}

func bitmapTest(bitmap []byte, slot int) bool {
	byteIdx := slot / 8
	bitIdx := uint(slot % 8)
	return bitmap[byteIdx]&(1<<bitIdx) != 0
}

// index returns the packed-vector index of slot, i.e. the number of
// populated slots strictly below it.
func (n *node) index(slot int) int {
	count := 0
	for s := 0; s < slot; s++ {
		if bitmapTest(n.bitmap, s) {
			count++
		}
	}
	return count
}

func (n *node) has(slot int) bool {
	return bitmapTest(n.bitmap, slot)
}

func (n *node) insertPointer(slot int, p pointer) {
	idx := n.index(slot)
	bitmapTestAndSet(n.bitmap, slot, true)
	n.pointers = append(n.pointers, pointer{})
	copy(n.pointers[idx+1:], n.pointers[idx:])
	n.pointers[idx] = p
}

func (n *node) removePointer(slot int) {
	idx := n.index(slot)
	bitmapTestAndSet(n.bitmap, slot, false)
	n.pointers = append(n.pointers[:idx], n.pointers[idx+1:]...)
}

func (n *node) get(slot int) *pointer {
	if !n.has(slot) {
		return nil
	}
	return &n.pointers[n.index(slot)]
}

func (n *node) isEmpty() bool {
	return len(n.pointers) == 0
}

// soleBucket returns the node's only pointer's bucket when the node
// holds exactly one populated slot and it is a leaf.
func (n *node) soleBucket() ([]kv, bool) {
	if len(n.pointers) != 1 {
		return nil, false
	}
	if !n.pointers[0].isBucket() {
		return nil, false
	}
	return n.pointers[0].bucket, true
}

func bucketFind(bucket []kv, key []byte) int {
	return sort.Search(len(bucket), func(i int) bool {
		return bytes.Compare(bucket[i].Key, key) >= 0
	})
}

func bucketInsert(bucket []kv, key, value []byte) []kv {
	idx := bucketFind(bucket, key)
	if idx < len(bucket) && bytes.Equal(bucket[idx].Key, key) {
		out := make([]kv, len(bucket))
		copy(out, bucket)
		out[idx].Value = value
		return out
	}
	out := make([]kv, len(bucket)+1)
	copy(out, bucket[:idx])
	out[idx] = kv{Key: append([]byte(nil), key...), Value: value}
	copy(out[idx+1:], bucket[idx:])
	return out
}

func bucketRemove(bucket []kv, key []byte) ([]kv, bool) {
	idx := bucketFind(bucket, key)
	if idx >= len(bucket) || !bytes.Equal(bucket[idx].Key, key) {
		return bucket, false
	}
	out := make([]kv, 0, len(bucket)-1)
	out = append(out, bucket[:idx]...)
	out = append(out, bucket[idx+1:]...)
	return out, true
}
