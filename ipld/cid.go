// SPDX-License-Identifier: BUSL-1.1

// Package ipld provides the content-addressing primitives the HAMT and
// AMT packages build on: canonical CID reading and a small synchronous
// blockstore contract.
package ipld

import (
	"fmt"

	"github.com/ipfs/go-cid"
)

// MaxCIDLen bounds how many bytes a canonical CID may occupy. ReadCID
// refuses to consume more than this from the front of a buffer, the
// same way the reference implementation bounds CID parsing so a
// corrupt or adversarial buffer cannot force an unbounded scan.
const MaxCIDLen = 100

// ReadCID reads a single canonical CID from the front of buf without a
// pre-known length, returning the parsed CID and the number of bytes
// consumed. It never reads past MaxCIDLen bytes.
func ReadCID(buf []byte) (cid.Cid, int, error) {
	limit := len(buf)
	if limit > MaxCIDLen {
		limit = MaxCIDLen
	}
	n, c, err := cid.CidFromBytes(buf[:limit])
	if err != nil {
		return cid.Undef, 0, fmt.Errorf("ipld: reading CID: %w", err)
	}
	return c, n, nil
}

// NewBlockCID computes the canonical CIDv1 for a block under the given
// codec and multihash code, grounded on the teacher's Pin helper
// (core/storage.go), generalized from a hard-coded SHA2-256/raw pair to
// an arbitrary codec/hash combination.
func NewBlockCID(codec uint64, hashCode uint64, data []byte) (cid.Cid, error) {
	mh, err := sumMultihash(hashCode, data)
	if err != nil {
		return cid.Undef, fmt.Errorf("ipld: hashing block: %w", err)
	}
	c := cid.NewCidV1(codec, mh)
	if len(c.Bytes()) > MaxCIDLen {
		return cid.Undef, fmt.Errorf("ipld: encoded CID exceeds %d bytes", MaxCIDLen)
	}
	return c, nil
}
