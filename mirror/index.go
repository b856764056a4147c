package mirror

import (
	"sync"

	"github.com/ipfs/go-cid"
)

// Stats counts indexed mirrors per transform kind. Custom pairs count
// only toward the total.
type Stats struct {
	Total         int
	Identity      int
	ByteReversed  int
	BitComplement int
}

// Index resolves mirror pairs from either digest.
//
// It keeps a forward map (original digest to pair) and a reverse map
// (derived digest to original digest). Both maps are updated together
// inside Store; no other method mutates them, which is what keeps the
// bidirectional invariant.
type Index struct {
	mu      sync.RWMutex
	forward map[cid.Cid]*Pair
	reverse map[cid.Cid]cid.Cid
	stats   Stats
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{
		forward: make(map[cid.Cid]*Pair),
		reverse: make(map[cid.Cid]cid.Cid),
	}
}

// Store indexes p under both its digests.
func (ix *Index) Store(p *Pair) {
	originalID, derivedID := p.Digests()

	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.forward[originalID] = p
	ix.reverse[derivedID] = originalID

	ix.stats.Total++
	switch p.Kind() {
	case Identity:
		ix.stats.Identity++
	case ByteReverse:
		ix.stats.ByteReversed++
	case BitComplement:
		ix.stats.BitComplement++
	}
}

// Get resolves a pair from either its original or derived digest.
func (ix *Index) Get(id cid.Cid) (*Pair, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if p, ok := ix.forward[id]; ok {
		return p, true
	}
	if originalID, ok := ix.reverse[id]; ok {
		p, ok := ix.forward[originalID]
		return p, ok
	}
	return nil, false
}

// MirrorDigest returns the counterpart digest: the derived digest when
// id is an original, the original digest when id is a derived.
func (ix *Index) MirrorDigest(id cid.Cid) (cid.Cid, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if p, ok := ix.forward[id]; ok {
		return p.Derived().ID(), true
	}
	if originalID, ok := ix.reverse[id]; ok {
		return originalID, true
	}
	return cid.Undef, false
}

// Has reports whether id appears as an original or a derived digest.
func (ix *Index) Has(id cid.Cid) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	if _, ok := ix.forward[id]; ok {
		return true
	}
	_, ok := ix.reverse[id]
	return ok
}

// FindByKind returns all indexed pairs of the given transform kind, in
// unspecified order.
func (ix *Index) FindByKind(kind TransformKind) []*Pair {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	var out []*Pair
	for _, p := range ix.forward {
		if p.Kind() == kind {
			out = append(out, p)
		}
	}
	return out
}

// Len returns the number of indexed pairs.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.forward)
}

// Stats returns the per-kind counters.
func (ix *Index) Stats() Stats {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.stats
}
