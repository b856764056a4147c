// Package mirror derives secondary artifacts related to an original
// by a deterministic content transform, and indexes the relationship
// from either digest.
package mirror

import (
	"bytes"
	"fmt"

	"github.com/ipfs/go-cid"

	"xdao.co/dualcas/artifact"
	"xdao.co/dualcas/digest"
)

// TransformKind names the content transform relating a derived
// artifact to its original.
type TransformKind int

const (
	// Identity derives content equal to the original.
	Identity TransformKind = iota
	// ByteReverse derives the original bytes in reverse order.
	ByteReverse
	// BitComplement derives each byte bitwise-inverted.
	BitComplement
	// Custom derives caller-defined content under an opaque tag.
	Custom
)

func (k TransformKind) String() string {
	switch k {
	case Identity:
		return "identity"
	case ByteReverse:
		return "byte-reverse"
	case BitComplement:
		return "bit-complement"
	case Custom:
		return "custom"
	default:
		return fmt.Sprintf("transform(%d)", int(k))
	}
}

// Relationship strengths. Exactly two bands: identity mirrors score
// 1.0, everything else 0.5. The two-band contract is fixed; tests
// depend on it.
const (
	identityStrength = 1.0
	derivedStrength  = 0.5
)

// Pair is a mirror artifact: an original, its derived counterpart and
// the transform relating them.
type Pair struct {
	original *artifact.Artifact
	derived  *artifact.Artifact
	kind     TransformKind
	tag      string
	identity bool
	strength float64
}

func newPair(original, derived *artifact.Artifact, kind TransformKind, tag string) *Pair {
	identity := bytes.Equal(original.Bytes(), derived.Bytes())
	strength := derivedStrength
	if identity {
		strength = identityStrength
	}
	return &Pair{
		original: original,
		derived:  derived,
		kind:     kind,
		tag:      tag,
		identity: identity,
		strength: strength,
	}
}

// NewIdentity derives content equal to the original, hashed with h.
func NewIdentity(original *artifact.Artifact, h digest.Hasher) *Pair {
	derived := artifact.New(original.Bytes(), h)
	return newPair(original, derived, Identity, "")
}

// NewByteReversed derives the byte-reversed content, hashed with h.
// Applying the transform twice restores the original content.
func NewByteReversed(original *artifact.Artifact, h digest.Hasher) *Pair {
	derived := artifact.New(reverseBytes(original.Bytes()), h)
	return newPair(original, derived, ByteReverse, "")
}

// NewBitComplement derives the bitwise-inverted content, hashed with
// h. Applying the transform twice restores the original content.
func NewBitComplement(original *artifact.Artifact, h digest.Hasher) *Pair {
	derived := artifact.New(complementBytes(original.Bytes()), h)
	return newPair(original, derived, BitComplement, "")
}

// NewCustom derives caller-supplied content under an opaque tag. The
// content is unconstrained; a custom derivation that happens to equal
// the original still counts as an identity mirror.
func NewCustom(original *artifact.Artifact, derivedContent []byte, tag string, h digest.Hasher) *Pair {
	derived := artifact.New(derivedContent, h)
	return newPair(original, derived, Custom, tag)
}

// Original returns the original artifact.
func (p *Pair) Original() *artifact.Artifact { return p.original }

// Derived returns the derived artifact.
func (p *Pair) Derived() *artifact.Artifact { return p.derived }

// Kind returns the transform kind.
func (p *Pair) Kind() TransformKind { return p.kind }

// Tag returns the opaque tag of a Custom pair, empty otherwise.
func (p *Pair) Tag() string { return p.tag }

// IsIdentity reports whether derived content equals original content.
func (p *Pair) IsIdentity() bool { return p.identity }

// Strength returns 1.0 for identity mirrors and 0.5 otherwise.
func (p *Pair) Strength() float64 { return p.strength }

// Digests returns (original digest, derived digest).
func (p *Pair) Digests() (cid.Cid, cid.Cid) {
	return p.original.ID(), p.derived.ID()
}

func reverseBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}

func complementBytes(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[i] = ^v
	}
	return out
}
