// Package checked provides a Store that re-derives digests with its
// own hasher.
//
// A checked store does not trust the digest an artifact arrives with:
// Put rehashes the content and keys the artifact under the store's own
// digest, and Get verifies that the stored bytes still sum to the
// requested digest. When the store's hasher differs from the hasher an
// artifact was built with, Put returns a digest different from the
// artifact's own; this is the in-tree source of replica digest
// mismatches for the verification policies.
package checked

import (
	"sync"

	"github.com/ipfs/go-cid"

	"xdao.co/dualcas/artifact"
	"xdao.co/dualcas/digest"
	"xdao.co/dualcas/storage"
)

// Store rehashes content on write and verifies it on read.
type Store struct {
	mu     sync.RWMutex
	hasher digest.Hasher
	field  map[cid.Cid]*artifact.Artifact
}

var _ storage.Store = (*Store)(nil)

// New returns an empty store owning h.
func New(h digest.Hasher) *Store {
	return &Store{hasher: h, field: make(map[cid.Cid]*artifact.Artifact)}
}

// Hasher returns the store's own hasher.
func (s *Store) Hasher() digest.Hasher { return s.hasher }

// Put stores a's content under the digest this store's hasher derives
// from it, which may differ from a.ID().
func (s *Store) Put(a *artifact.Artifact) (cid.Cid, error) {
	if a == nil {
		return cid.Undef, storage.ErrNilArtifact
	}

	rehashed := artifact.New(a.Bytes(), s.hasher)
	id := rehashed.ID()
	if !id.Defined() {
		return cid.Undef, storage.ErrInvalidDigest
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.field[id] = rehashed
	return id, nil
}

// Get returns the artifact and verifies its content still sums to id.
func (s *Store) Get(id cid.Cid) (*artifact.Artifact, error) {
	if !id.Defined() {
		return nil, storage.ErrInvalidDigest
	}
	s.mu.RLock()
	a, ok := s.field[id]
	s.mu.RUnlock()
	if !ok {
		return nil, storage.ErrNotFound
	}
	if s.hasher.Sum(a.Bytes()) != id {
		return nil, storage.ErrDigestMismatch
	}
	return a, nil
}

func (s *Store) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.field[id]
	return ok
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.field)
}
