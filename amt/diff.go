// SPDX-License-Identifier: BUSL-1.1

package amt

import (
	"bytes"
	"context"
	"errors"

	"synnergy-vmcore/ipld"
)

// ErrBitWidthMismatch is returned by Diff when the two trees were
// built with different branching factors; their indices are not
// comparable without a shared BitWidth.
var ErrBitWidthMismatch = errors.New("amt: diff requires matching bit widths")

// ChangeKind classifies one entry of a Diff result.
type ChangeKind int

const (
	ChangeAdd ChangeKind = iota
	ChangeRemove
	ChangeModify
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeAdd:
		return "Add"
	case ChangeRemove:
		return "Remove"
	case ChangeModify:
		return "Modify"
	default:
		return "Unknown"
	}
}

// Change describes one index where prev and curr disagree.
type Change struct {
	Key    uint64
	Before []byte
	After  []byte
	Kind   ChangeKind
}

// Diff computes the ordered symmetric difference between prev and
// curr: every index whose value was added, removed, or modified,
// ascending by index. Both trees must share a BitWidth. Subtrees that
// are identical by CID are skipped without being loaded from either
// blockstore, which is what keeps Diff linear in the size of the
// change set rather than the size of either tree.
func Diff(ctx context.Context, prev, curr *Amt) ([]Change, error) {
	if prev.cfg.BitWidth != curr.cfg.BitWidth {
		return nil, ErrBitWidthMismatch
	}
	width := prev.cfg.width()

	maxHeight := prev.height
	if curr.height > maxHeight {
		maxHeight = curr.height
	}

	pLink := &link{node: prev.root}
	if !prev.dirty {
		pLink.cid = prev.rootCID
	}
	cLink := &link{node: curr.root}
	if !curr.dirty {
		cLink.cid = curr.rootCID
	}
	pLink = wrapToHeight(pLink, prev.height, maxHeight, width)
	cLink = wrapToHeight(cLink, curr.height, maxHeight, width)

	d := &differ{width: width, pStore: prev.store, cStore: curr.store}
	if err := d.diffLinks(ctx, pLink, cLink, maxHeight, 0); err != nil {
		return nil, err
	}
	return d.changes, nil
}

// wrapToHeight lifts l, currently the root of a tree of the given
// height, into a chain of link nodes occupying slot 0 until it reaches
// target height. The taller tree's extra levels therefore always see
// the shorter tree as "slot 0 populated, every other slot empty",
// exactly as spec'd.
func wrapToHeight(l *link, height, target, width int) *link {
	for height < target {
		wrapper := newLink(width)
		wrapper.links[0] = l
		l = &link{node: wrapper}
		height++
	}
	return l
}

type differ struct {
	width   int
	pStore  ipld.Blockstore
	cStore  ipld.Blockstore
	changes []Change
}

func sameSubtree(p, c *link) bool {
	if p == nil || c == nil {
		return false
	}
	if p.node != nil && p.node == c.node {
		return true
	}
	return !p.dirty && !c.dirty && p.cid.Defined() && c.cid.Defined() && p.cid.Equals(c.cid)
}

func (d *differ) diffLinks(ctx context.Context, pLink, cLink *link, height int, offset uint64) error {
	if pLink == nil && cLink == nil {
		return nil
	}
	if sameSubtree(pLink, cLink) {
		return nil
	}

	var pNode, cNode *node
	var err error
	if pLink != nil {
		pNode, err = pLink.load(ctx, d.pStore, d.width)
		if err != nil {
			return err
		}
	}
	if cLink != nil {
		cNode, err = cLink.load(ctx, d.cStore, d.width)
		if err != nil {
			return err
		}
	}

	if height == 0 {
		d.diffLeaves(pNode, cNode, offset)
		return nil
	}

	span := powWidth(d.width, height)
	for i := 0; i < d.width; i++ {
		var pChild, cChild *link
		if pNode != nil {
			pChild = pNode.links[i]
		}
		if cNode != nil {
			cChild = cNode.links[i]
		}
		if pChild == nil && cChild == nil {
			continue
		}
		if err := d.diffLinks(ctx, pChild, cChild, height-1, offset+span*uint64(i)); err != nil {
			return err
		}
	}
	return nil
}

func (d *differ) diffLeaves(pNode, cNode *node, offset uint64) {
	var pVals, cVals [][]byte
	if pNode != nil {
		pVals = pNode.vals
	}
	if cNode != nil {
		cVals = cNode.vals
	}
	for i := 0; i < d.width; i++ {
		var before, after []byte
		if i < len(pVals) {
			before = pVals[i]
		}
		if i < len(cVals) {
			after = cVals[i]
		}
		if before == nil && after == nil {
			continue
		}
		key := offset + uint64(i)
		switch {
		case before == nil:
			d.changes = append(d.changes, Change{Key: key, After: after, Kind: ChangeAdd})
		case after == nil:
			d.changes = append(d.changes, Change{Key: key, Before: before, Kind: ChangeRemove})
		case !bytes.Equal(before, after):
			d.changes = append(d.changes, Change{Key: key, Before: before, After: after, Kind: ChangeModify})
		}
	}
}
