// SPDX-License-Identifier: BUSL-1.1

package ipld

import (
	"context"
	"fmt"
	"sync"

	"github.com/ipfs/go-cid"
	mh "github.com/multiformats/go-multihash"
)

// Blockstore is the synchronous content-addressed store the HAMT and
// AMT packages read and write nodes through. Every method is
// synchronous per the accounting model: gas is charged by the caller
// around each call, so no implementation may defer work past the
// call's return.
type Blockstore interface {
	Get(ctx context.Context, c cid.Cid) ([]byte, bool, error)
	Put(ctx context.Context, codec uint64, hashCode uint64, data []byte) (cid.Cid, error)
	Has(ctx context.Context, c cid.Cid) (bool, error)
}

func sumMultihash(hashCode uint64, data []byte) (mh.Multihash, error) {
	sum, err := mh.Sum(data, hashCode, -1)
	if err != nil {
		return nil, fmt.Errorf("ipld: computing multihash: %w", err)
	}
	return sum, nil
}

// MemBlockstore is the in-memory reference Blockstore implementation
// used by tests and the CLI, keyed by the CID's binary key string.
type MemBlockstore struct {
	mu     sync.RWMutex
	blocks map[string][]byte
}

// NewMemBlockstore creates an empty in-memory blockstore.
func NewMemBlockstore() *MemBlockstore {
	return &MemBlockstore{blocks: make(map[string][]byte)}
}

func (s *MemBlockstore) Get(_ context.Context, c cid.Cid) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blocks[c.KeyString()]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, true, nil
}

func (s *MemBlockstore) Put(_ context.Context, codec uint64, hashCode uint64, data []byte) (cid.Cid, error) {
	c, err := NewBlockCID(codec, hashCode, data)
	if err != nil {
		return cid.Undef, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.blocks[c.KeyString()]; !exists {
		stored := make([]byte, len(data))
		copy(stored, data)
		s.blocks[c.KeyString()] = stored
	}
	return c, nil
}

func (s *MemBlockstore) Has(_ context.Context, c cid.Cid) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blocks[c.KeyString()]
	return ok, nil
}
