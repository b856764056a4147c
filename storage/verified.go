package storage

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/ipfs/go-cid"

	"xdao.co/dualcas/artifact"
)

// Policy governs the agreement rules a VerifiedReplicatedStore applies
// when writing to and reading from its two backends. The set is closed.
type Policy int

const (
	// Strict requires both backends to return the same digest on write
	// and both to hold the artifact on read.
	Strict Policy = iota
	// Lenient accepts any outcome and never reports divergence.
	Lenient
	// PrimaryAuthoritative treats the primary digest as authoritative
	// for future lookups; secondary mismatches are reported but the
	// write still commits.
	PrimaryAuthoritative
)

func (p Policy) String() string {
	switch p {
	case Strict:
		return "strict"
	case Lenient:
		return "lenient"
	case PrimaryAuthoritative:
		return "primary-authoritative"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// ParsePolicy maps a policy name to its Policy value. The empty string
// selects Strict.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "strict":
		return Strict, nil
	case "lenient":
		return Lenient, nil
	case "primary", "primary-authoritative":
		return PrimaryAuthoritative, nil
	default:
		return Strict, fmt.Errorf("storage: unknown policy %q", s)
	}
}

// VerifiedReplicatedStore writes every artifact to two backends and
// verifies their agreement under a Policy.
//
// Writes go to the primary before the secondary; any operation that
// touches both backends keeps that order. There is no rollback: a
// Strict mismatch is reported after both backends have committed, and
// both keep whatever was written.
type VerifiedReplicatedStore struct {
	primary   Store
	secondary Store

	mu     sync.RWMutex
	policy Policy
}

// NewVerified pairs two backends under a policy.
func NewVerified(primary, secondary Store, policy Policy) (*VerifiedReplicatedStore, error) {
	if primary == nil || secondary == nil {
		return nil, fmt.Errorf("storage: verified store requires two backends")
	}
	return &VerifiedReplicatedStore{primary: primary, secondary: secondary, policy: policy}, nil
}

// Policy returns the active verification policy.
func (v *VerifiedReplicatedStore) Policy() Policy {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.policy
}

// SetPolicy changes the verification policy for subsequent operations.
func (v *VerifiedReplicatedStore) SetPolicy(p Policy) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.policy = p
}

// DualStore writes a to both backends and returns both digests.
//
// Under Strict a digest mismatch yields ErrConsistency; under
// PrimaryAuthoritative it yields ErrVerification. In either case both
// backends retain what they wrote and the returned digests identify
// exactly what each backend holds.
func (v *VerifiedReplicatedStore) DualStore(a *artifact.Artifact) (cid.Cid, cid.Cid, error) {
	if a == nil {
		return cid.Undef, cid.Undef, ErrNilArtifact
	}

	primaryID, err := v.primary.Put(a)
	if err != nil {
		return cid.Undef, cid.Undef, err
	}
	secondaryID, err := v.secondary.Put(a)
	if err != nil {
		return primaryID, cid.Undef, err
	}

	switch v.Policy() {
	case Strict:
		if primaryID != secondaryID {
			return primaryID, secondaryID, ErrConsistency
		}
	case PrimaryAuthoritative:
		if primaryID != secondaryID {
			return primaryID, secondaryID, ErrVerification
		}
	}
	return primaryID, secondaryID, nil
}

// GetVerified reads id from both backends and checks their agreement.
//
// Both present and content-equal returns the primary artifact. Both
// present with differing content returns ErrInconsistent. When only
// one backend holds the artifact, Lenient returns it and the other
// policies return ErrMissingReplica. When neither holds it the result
// is (nil, nil).
func (v *VerifiedReplicatedStore) GetVerified(id cid.Cid) (*artifact.Artifact, error) {
	primary, err := v.primary.Get(id)
	if err != nil && !IsNotFound(err) {
		return nil, err
	}
	secondary, err := v.secondary.Get(id)
	if err != nil && !IsNotFound(err) {
		return nil, err
	}

	switch {
	case primary != nil && secondary != nil:
		if !bytes.Equal(primary.Bytes(), secondary.Bytes()) {
			return nil, ErrInconsistent
		}
		return primary, nil
	case primary != nil:
		if v.Policy() == Lenient {
			return primary, nil
		}
		return nil, ErrMissingReplica
	case secondary != nil:
		if v.Policy() == Lenient {
			return secondary, nil
		}
		return nil, ErrMissingReplica
	default:
		return nil, nil
	}
}

// IsConsistent compares only the replica sizes. A deliberately cheap,
// weak check: equal sizes do not imply equal contents.
func (v *VerifiedReplicatedStore) IsConsistent() bool {
	return v.primary.Len() == v.secondary.Len()
}

// Primary returns the primary backend.
func (v *VerifiedReplicatedStore) Primary() Store { return v.primary }

// Secondary returns the secondary backend.
func (v *VerifiedReplicatedStore) Secondary() Store { return v.secondary }

// Stats describes the replicated store at a point in time.
type Stats struct {
	PrimaryCount   int
	SecondaryCount int
	Policy         Policy
	Consistent     bool
}

// Stats returns counts, policy and the size-only consistency flag.
func (v *VerifiedReplicatedStore) Stats() Stats {
	return Stats{
		PrimaryCount:   v.primary.Len(),
		SecondaryCount: v.secondary.Len(),
		Policy:         v.Policy(),
		Consistent:     v.IsConsistent(),
	}
}
