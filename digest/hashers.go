package digest

import (
	"encoding/binary"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
)

// Algorithm names accepted by the registry and config layers.
const (
	AlgSHA256   = "sha2-256"
	AlgBlake2b  = "blake2b-256"
	AlgBlake3   = "blake3"
	AlgChecksum = "checksum"
)

// SHA256 is the default hasher: raw CIDv1 over a sha2-256 multihash.
type SHA256 struct{}

func (SHA256) Algorithm() string { return AlgSHA256 }

func (SHA256) Sum(data []byte) cid.Cid {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		// multihash.Sum only errors for invalid codes or lengths; with
		// SHA2_256 and the default length this is unreachable.
		return cid.Undef
	}
	return cid.NewCidV1(cid.Raw, sum)
}

// Blake2b hashes with BLAKE2b-256.
type Blake2b struct{}

func (Blake2b) Algorithm() string { return AlgBlake2b }

func (Blake2b) Sum(data []byte) cid.Cid {
	sum := blake2b.Sum256(data)
	return rawCID(sum[:], multihash.BLAKE2B_MIN+31)
}

// Blake3 hashes with BLAKE3-256.
type Blake3 struct{}

func (Blake3) Algorithm() string { return AlgBlake3 }

func (Blake3) Sum(data []byte) cid.Cid {
	sum := blake3.Sum256(data)
	return rawCID(sum[:], multihash.BLAKE3)
}

// Checksum folds a wrapping byte sum into eight bytes carried as an
// identity multihash.
//
// It is deliberately weak: any permutation of the same bytes collides
// ("abc" and "cba" share a digest). Stores key by digest with no
// collision detection, so a collision is last-write-wins. Useful for
// exercising divergence paths; never a general-purpose identity.
type Checksum struct{}

func (Checksum) Algorithm() string { return AlgChecksum }

func (Checksum) Sum(data []byte) cid.Cid {
	var acc uint64
	for _, b := range data {
		acc += uint64(b)
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], acc)
	return rawCID(buf[:], multihash.IDENTITY)
}
