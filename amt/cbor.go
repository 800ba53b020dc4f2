// SPDX-License-Identifier: BUSL-1.1

package amt

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/ipfs/go-cid"
)

var (
	canonicalEncMode cbor.EncMode
	decMode          cbor.DecMode
)

func init() {
	opts := cbor.CanonicalEncOptions()
	mode, err := opts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("amt: building canonical CBOR encoder: %v", err))
	}
	canonicalEncMode = mode

	dopts := cbor.DecOptions{}
	dmode, err := dopts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("amt: building CBOR decoder: %v", err))
	}
	decMode = dmode
}

const (
	wireNodeLeaf = 0
	wireNodeLink = 1
)

// wireNode is the canonical, array-encoded, bitmap-compacted form of a
// node: only populated slots are written, so two nodes with the same
// occupied indices and the same content always encode identically
// regardless of how they were built.
type wireNode struct {
	_        struct{} `cbor:",toarray"`
	Kind     uint64
	Bitmap   []byte
	Values   [][]byte
	LinkCIDs [][]byte
}

type wireRoot struct {
	_        struct{} `cbor:",toarray"`
	BitWidth uint64
	Height   uint64
	Count    uint64
	Node     wireNode
}

func bitmapSet(bitmap []byte, slot int) {
	bitmap[slot/8] |= 1 << uint(slot%8)
}

func bitmapTest(bitmap []byte, slot int) bool {
	return bitmap[slot/8]&(1<<uint(slot%8)) != 0
}

func collapseNode(n *node) wireNode {
	width := len(n.vals)
	if !n.leaf {
		width = len(n.links)
	}
	w := wireNode{Bitmap: make([]byte, (width+7)/8)}
	if n.leaf {
		w.Kind = wireNodeLeaf
		for i, v := range n.vals {
			if v == nil {
				continue
			}
			bitmapSet(w.Bitmap, i)
			w.Values = append(w.Values, v)
		}
		return w
	}
	w.Kind = wireNodeLink
	for i, l := range n.links {
		if l == nil {
			continue
		}
		bitmapSet(w.Bitmap, i)
		w.LinkCIDs = append(w.LinkCIDs, l.cid.Bytes())
	}
	return w
}

func expandNode(w wireNode, width int) (*node, error) {
	switch w.Kind {
	case wireNodeLeaf:
		n := newLeaf(width)
		vi := 0
		for slot := 0; slot < width; slot++ {
			if !bitmapTest(w.Bitmap, slot) {
				continue
			}
			if vi >= len(w.Values) {
				return nil, fmt.Errorf("amt: bitmap/value count mismatch")
			}
			n.vals[slot] = w.Values[vi]
			vi++
		}
		return n, nil
	case wireNodeLink:
		n := newLink(width)
		ci := 0
		for slot := 0; slot < width; slot++ {
			if !bitmapTest(w.Bitmap, slot) {
				continue
			}
			if ci >= len(w.LinkCIDs) {
				return nil, fmt.Errorf("amt: bitmap/link count mismatch")
			}
			c, err := cid.Cast(w.LinkCIDs[ci])
			if err != nil {
				return nil, fmt.Errorf("amt: decoding child CID: %w", err)
			}
			n.links[slot] = &link{cid: c}
			ci++
		}
		return n, nil
	default:
		return nil, fmt.Errorf("amt: unknown node kind %d", w.Kind)
	}
}

// requires a child link's cid to already be resolved; callers flush
// children bottom-up before encoding a parent that references them.
func encodeNodeBlock(n *node) ([]byte, error) {
	if !n.leaf {
		for i, l := range n.links {
			if l != nil && !l.cid.Defined() {
				return nil, fmt.Errorf("amt: encoding node with unflushed child at slot %d", i)
			}
		}
	}
	return canonicalEncMode.Marshal(collapseNode(n))
}

func decodeNodeBlock(data []byte, width int) (*node, error) {
	var w wireNode
	if err := decMode.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("amt: unmarshaling node: %w", err)
	}
	return expandNode(w, width)
}

func encodeRoot(bitWidth, height int, count uint64, n *node) ([]byte, error) {
	if !n.leaf {
		for i, l := range n.links {
			if l != nil && !l.cid.Defined() {
				return nil, fmt.Errorf("amt: encoding root with unflushed child at slot %d", i)
			}
		}
	}
	w := wireRoot{
		BitWidth: uint64(bitWidth),
		Height:   uint64(height),
		Count:    count,
		Node:     collapseNode(n),
	}
	return canonicalEncMode.Marshal(w)
}

func decodeRoot(data []byte, width int) (bitWidth int, height int, count uint64, n *node, err error) {
	var w wireRoot
	if err := decMode.Unmarshal(data, &w); err != nil {
		return 0, 0, 0, nil, fmt.Errorf("amt: unmarshaling root: %w", err)
	}
	rootNode, err := expandNode(w.Node, width)
	if err != nil {
		return 0, 0, 0, nil, err
	}
	return int(w.BitWidth), int(w.Height), w.Count, rootNode, nil
}
