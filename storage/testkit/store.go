// Package testkit runs the Store conformance suite against a backend.
package testkit

import (
	"bytes"
	"testing"

	"github.com/ipfs/go-cid"

	"xdao.co/dualcas/artifact"
	"xdao.co/dualcas/digest"
	"xdao.co/dualcas/storage"
)

// NewStore constructs a fresh, empty Store instance for a test.
// The returned Store MUST be isolated from other tests.
type NewStore func(t *testing.T) storage.Store

// RunStoreConformance exercises the Store contract. It only relies on
// digests the backend itself returns, so it holds for backends that
// rekey artifacts under their own hasher.
func RunStoreConformance(t *testing.T, newStore NewStore) {
	t.Helper()

	hasher := digest.SHA256{}

	t.Run("PutGetRoundTrip", func(t *testing.T) {
		s := newStore(t)
		want := []byte("hello, dualcas storage")

		id, err := s.Put(artifact.New(want, hasher))
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if !id.Defined() {
			t.Fatal("Put returned an undefined digest")
		}

		got, err := s.Get(id)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !bytes.Equal(got.Bytes(), want) {
			t.Fatal("Get bytes mismatch")
		}
	})

	t.Run("PutIdempotent", func(t *testing.T) {
		s := newStore(t)
		b := []byte("same bytes")

		id1, err := s.Put(artifact.New(b, hasher))
		if err != nil {
			t.Fatalf("Put(1) failed: %v", err)
		}
		id2, err := s.Put(artifact.New(b, hasher))
		if err != nil {
			t.Fatalf("Put(2) failed: %v", err)
		}
		if id1 != id2 {
			t.Fatalf("Put not idempotent: %s vs %s", id1, id2)
		}
		if s.Len() != 1 {
			t.Fatalf("Len = %d after duplicate Put, want 1", s.Len())
		}
	})

	t.Run("HasAndNotFound", func(t *testing.T) {
		s := newStore(t)
		a := artifact.New([]byte("missing"), hasher)

		if !storage.IsEmpty(s) {
			t.Fatal("fresh store should be empty")
		}

		id, err := s.Put(a)
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if !s.Has(id) {
			t.Fatal("Has returned false after Put")
		}

		absent := hasher.Sum([]byte("never stored"))
		if s.Has(absent) {
			t.Fatal("Has returned true for absent digest")
		}
		if _, err := s.Get(absent); !storage.IsNotFound(err) {
			t.Fatalf("Get absent: got err=%v want ErrNotFound", err)
		}
	})

	t.Run("RejectUndefDigest", func(t *testing.T) {
		s := newStore(t)
		var undef cid.Cid
		if s.Has(undef) {
			t.Fatal("Has should be false for undefined digest")
		}
		if _, err := s.Get(undef); err == nil {
			t.Fatal("Get should fail for undefined digest")
		}
	})

	t.Run("NilArtifactRejected", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.Put(nil); err == nil {
			t.Fatal("Put(nil) should fail")
		}
		if s.Len() != 0 {
			t.Fatalf("Len = %d after rejected Put, want 0", s.Len())
		}
	})
}
