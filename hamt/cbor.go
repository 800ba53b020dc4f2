// SPDX-License-Identifier: BUSL-1.1

package hamt

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
		panic(fmt.Sprintf("hamt: building canonical CBOR encoder: %v", err))
	}
	canonicalEncMode = mode

	dopts := cbor.DecOptions{}
	dmode, err := dopts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("hamt: building CBOR decoder: %v", err))
	}
	decMode = dmode
}

// wireKV is the canonical, array-encoded form of a bucket entry. Value
// is carried as an opaque CBOR byte string: this package never
// interprets application values, only stores and retrieves them.
type wireKV struct {
	_     struct{} `cbor:",toarray"`
	Key   []byte
	Value []byte
}

const (
	wirePointerBucket = 0
	wirePointerLink   = 1
)

type wirePointer struct {
	_       struct{} `cbor:",toarray"`
	Kind    uint64
	Bucket  []wireKV
	LinkCID []byte
}

type wireNode struct {
	_        struct{} `cbor:",toarray"`
	Bitmap   []byte
	Pointers []wirePointer
}

// encodeNode serializes a node for persistence. Every child link must
// already be resolved to a CID (via Flush) or encoding fails: an
// in-memory-only child would make the encoding depend on traversal
// order rather than content.
func encodeNode(n *node) ([]byte, error) {
	w := wireNode{Bitmap: n.bitmap, Pointers: make([]wirePointer, len(n.pointers))}
	for i, p := range n.pointers {
		if p.isBucket() {
			bucket := make([]wireKV, len(p.bucket))
			for j, entry := range p.bucket {
				bucket[j] = wireKV{Key: entry.Key, Value: entry.Value}
			}
			w.Pointers[i] = wirePointer{Kind: wirePointerBucket, Bucket: bucket}
			continue
		}
		if !p.child.cid.Defined() {
			return nil, fmt.Errorf("hamt: encoding node with unflushed child at index %d", i)
		}
		w.Pointers[i] = wirePointer{Kind: wirePointerLink, LinkCID: p.child.cid.Bytes()}
	}
	return canonicalEncMode.Marshal(w)
}

func decodeNode(data []byte) (*node, error) {
	var w wireNode
	if err := decMode.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("hamt: unmarshaling node: %w", err)
	}
	n := &node{bitmap: w.Bitmap, pointers: make([]pointer, len(w.Pointers))}
	for i, wp := range w.Pointers {
		switch wp.Kind {
		case wirePointerBucket:
			bucket := make([]kv, len(wp.Bucket))
			for j, entry := range wp.Bucket {
				bucket[j] = kv{Key: entry.Key, Value: entry.Value}
			}
			n.pointers[i] = pointer{bucket: bucket}
		case wirePointerLink:
			c, err := cid.Cast(wp.LinkCID)
			if err != nil {
				return nil, fmt.Errorf("hamt: decoding child CID at index %d: %w", i, err)
			}
			n.pointers[i] = pointer{child: &link{cid: c}}
		default:
			return nil, fmt.Errorf("hamt: unknown pointer kind %d at index %d", wp.Kind, i)
		}
	}
	return n, nil
}
