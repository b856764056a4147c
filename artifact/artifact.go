// Package artifact defines the immutable content unit held by stores.
package artifact

import (
	"github.com/ipfs/go-cid"

	"xdao.co/dualcas/digest"
)

// Artifact is an immutable (content, digest) pair.
//
// The digest is computed exactly once at construction with the hasher
// supplied by the caller and is never recomputed, even if the active
// hasher later changes. Construction cannot fail for any finite input.
type Artifact struct {
	content []byte
	id      cid.Cid
}

// New builds an artifact whose identity is h.Sum(content).
func New(content []byte, h digest.Hasher) *Artifact {
	return &Artifact{content: content, id: h.Sum(content)}
}

// Bytes returns the raw content.
func (a *Artifact) Bytes() []byte { return a.content }

// ID returns the digest identifying this artifact.
func (a *Artifact) ID() cid.Cid { return a.id }

// Len returns the content length in bytes.
func (a *Artifact) Len() int { return len(a.content) }
