// Package digest derives content identities.
//
// A digest is a CIDv1 using the "raw" multicodec over a multihash of
// the content bytes. Digests are structural values: two digests are
// equal iff their bytes are equal, and they are usable as map keys.
//
// Hashers are interchangeable capability objects. Swapping the active
// hasher at runtime does not retroactively alter digests of artifacts
// already stored; a digest computed under an old hasher remains the
// stable key for that artifact after a swap.
package digest

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// Hasher maps byte content to a digest.
//
// Contract:
// - Sum MUST be pure and deterministic: identical byte sequences yield
//   identical digests under one algorithm instance.
// - Sum MUST NOT fail for any finite input.
// - Algorithm MUST be a stable, unique name.
type Hasher interface {
	Sum(data []byte) cid.Cid
	Algorithm() string
}

// rawCID wraps a precomputed hash in a CIDv1 (raw codec).
func rawCID(sum []byte, code uint64) cid.Cid {
	mh, err := multihash.Encode(sum, code)
	if err != nil {
		// Encode only fails for unknown codes; all codes used by this
		// package are fixed and registered, so this is unreachable.
		return cid.Undef
	}
	return cid.NewCidV1(cid.Raw, mh)
}
