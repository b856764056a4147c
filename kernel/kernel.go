// Package kernel pairs one hasher with one store under a 42-step
// cycle counter.
//
// The counter is the kernel's only state machine: every mutating call
// (StoreArtifact, ReplaceHasher, ReplaceStore) advances it by one,
// wrapping at CycleLength. Read-only calls never advance it. The
// counter therefore always equals the number of mutating calls routed
// through the kernel, mod CycleLength.
package kernel

import (
	"sync"

	"github.com/ipfs/go-cid"

	"xdao.co/dualcas/artifact"
	"xdao.co/dualcas/digest"
	"xdao.co/dualcas/storage"
	"xdao.co/dualcas/storage/memstore"
)

// CycleLength is the modulus of the kernel cycle counter.
const CycleLength = 42

// Kernel owns exactly one Hasher and one Store. Ownership is exclusive
// and singular: the capabilities are never aliased elsewhere, and both
// are replaceable at runtime.
type Kernel struct {
	mu     sync.Mutex
	hasher digest.Hasher
	store  storage.Store
	cycle  uint64
}

// New builds a kernel around the given capabilities.
func New(h digest.Hasher, s storage.Store) *Kernel {
	return &Kernel{hasher: h, store: s}
}

// NewDefault builds a kernel with the default sha2-256 hasher and an
// in-memory store.
func NewDefault() *Kernel {
	return New(digest.SHA256{}, memstore.New())
}

// StoreArtifact hashes content with the current hasher, stores the
// resulting artifact and advances the cycle. Overwriting an existing
// digest still advances the cycle even though the artifact count is
// unchanged.
func (k *Kernel) StoreArtifact(content []byte) (cid.Cid, error) {
	k.mu.Lock()
	defer k.mu.Unlock()

	a := artifact.New(content, k.hasher)
	id, err := k.store.Put(a)
	if err != nil {
		return cid.Undef, err
	}
	k.cycle = (k.cycle + 1) % CycleLength
	return id, nil
}

// GetArtifact is read-only and never advances the cycle.
func (k *Kernel) GetArtifact(id cid.Cid) (*artifact.Artifact, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.store.Get(id)
}

// HasArtifact is read-only and never advances the cycle.
func (k *Kernel) HasArtifact(id cid.Cid) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.store.Has(id)
}

// ReplaceHasher swaps the owned hasher and advances the cycle.
// Existing entries are not rehashed: digests computed under the old
// hasher remain the stable keys for their artifacts.
func (k *Kernel) ReplaceHasher(h digest.Hasher) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.hasher = h
	k.cycle = (k.cycle + 1) % CycleLength
}

// ReplaceStore swaps the owned store and advances the cycle. No
// migration of existing entries occurs.
func (k *Kernel) ReplaceStore(s storage.Store) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.store = s
	k.cycle = (k.cycle + 1) % CycleLength
}

// CycleStep returns the counter value in [0, CycleLength).
func (k *Kernel) CycleStep() uint64 {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.cycle
}

// ArtifactCount returns the number of artifacts in the owned store.
func (k *Kernel) ArtifactCount() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.store.Len()
}

// Hasher returns the currently owned hasher.
func (k *Kernel) Hasher() digest.Hasher {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.hasher
}
