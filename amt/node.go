// SPDX-License-Identifier: BUSL-1.1

package amt

import (
	"context"
	"fmt"

	"github.com/ipfs/go-cid"

	"synnergy-vmcore/ipld"
)

// link points at a child subtree, either already materialized in
// memory or only known by its persisted CID, loaded the first time a
// traversal needs it.
type link struct {
	cid   cid.Cid
	node  *node
	dirty bool
}

func (l *link) load(ctx context.Context, store ipld.Blockstore, width int) (*node, error) {
	if l.node != nil {
		return l.node, nil
	}
	raw, ok, err := store.Get(ctx, l.cid)
	if err != nil {
		return nil, fmt.Errorf("amt: loading child %s: %w", l.cid, err)
	}
	if !ok {
		return nil, fmt.Errorf("amt: child block %s not found", l.cid)
	}
	n, err := decodeNodeBlock(raw, width)
	if err != nil {
		return nil, fmt.Errorf("amt: decoding child %s: %w", l.cid, err)
	}
	l.node = n
	return n, nil
}

// node is one level of the trie. A leaf node holds up to width values
// directly; an interior node holds up to width links to subtrees one
// level shorter. Every slice is always exactly width long: empty slots
// are represented by a nil entry, never by shrinking the slice, so a
// slot's position always carries its index within the level.
type node struct {
	leaf  bool
	vals  [][]byte
	links []*link
}

func newLeaf(width int) *node {
	return &node{leaf: true, vals: make([][]byte, width)}
}

func newLink(width int) *node {
	return &node{leaf: false, links: make([]*link, width)}
}

func (n *node) isEmpty() bool {
	if n.leaf {
		for _, v := range n.vals {
			if v != nil {
				return false
			}
		}
		return true
	}
	for _, l := range n.links {
		if l != nil {
			return false
		}
	}
	return true
}

// soleChildSlot returns the index of the node's only populated link
// slot, used by the root-shrinking rule when height can be reduced.
func (n *node) soleChildSlot() (int, bool) {
	if n.leaf {
		return 0, false
	}
	found := -1
	for i, l := range n.links {
		if l == nil {
			continue
		}
		if found != -1 {
			return 0, false
		}
		found = i
	}
	if found == -1 {
		return 0, false
	}
	return found, true
}

// powWidth returns width^height, the number of indices spanned by a
// single slot of a node at the given height (a leaf slot at height 0
// holds exactly one index; each level up multiplies by width).
func powWidth(width int, height int) uint64 {
	result := uint64(1)
	w := uint64(width)
	for i := 0; i < height; i++ {
		next := result * w
		if w != 0 && next/w != result {
			return ^uint64(0)
		}
		result = next
	}
	return result
}
