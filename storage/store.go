// Package storage defines the Store capability and the verified
// replicated store that combines two backends under a verification
// policy.
package storage

import (
	"github.com/ipfs/go-cid"

	"xdao.co/dualcas/artifact"
)

// Store is a digest-keyed mapping of artifacts.
//
// Contract:
// - Put is insert-or-overwrite by digest key. Storing byte-identical
//   content twice is a no-op in effect; storing two different contents
//   that share a digest under a weak hasher is last-write-wins with no
//   collision detection.
// - Put returns the digest the backend keyed the artifact under. Most
//   backends return the artifact's own digest; a backend that owns a
//   hasher (see the checked package) may return a different one.
// - Get MUST return ErrNotFound when the digest is absent.
// - Stored artifacts are immutable.
type Store interface {
	Put(a *artifact.Artifact) (cid.Cid, error)
	Get(id cid.Cid) (*artifact.Artifact, error)
	Has(id cid.Cid) bool
	Len() int
}

// IsEmpty reports whether s holds no artifacts.
func IsEmpty(s Store) bool { return s.Len() == 0 }
