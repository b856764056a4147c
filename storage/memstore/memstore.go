// Package memstore provides the in-memory Store backend.
package memstore

import (
	"sync"

	"github.com/ipfs/go-cid"

	"xdao.co/dualcas/artifact"
	"xdao.co/dualcas/storage"
)

// Store is a map-backed, digest-keyed artifact store.
//
// One lock guards the whole store; there is no finer-grained locking.
// Artifacts are kept under the digest they carry: the store never
// rehashes content, so an artifact built under an old hasher keeps its
// old digest as key.
type Store struct {
	mu    sync.RWMutex
	field map[cid.Cid]*artifact.Artifact
}

var _ storage.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{field: make(map[cid.Cid]*artifact.Artifact)}
}

func (s *Store) Put(a *artifact.Artifact) (cid.Cid, error) {
	if a == nil {
		return cid.Undef, storage.ErrNilArtifact
	}
	id := a.ID()
	if !id.Defined() {
		return cid.Undef, storage.ErrInvalidDigest
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.field[id] = a
	return id, nil
}

func (s *Store) Get(id cid.Cid) (*artifact.Artifact, error) {
	if !id.Defined() {
		return nil, storage.ErrInvalidDigest
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.field[id]
	if !ok {
		return nil, storage.ErrNotFound
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

// Digests returns the digests currently held, in unspecified order.
func (s *Store) Digests() []cid.Cid {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]cid.Cid, 0, len(s.field))
	for id := range s.field {
		out = append(out, id)
	}
	return out
}
