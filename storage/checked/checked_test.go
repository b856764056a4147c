package checked_test

import (
	"errors"
	"testing"

	"xdao.co/dualcas/artifact"
	"xdao.co/dualcas/digest"
	"xdao.co/dualcas/storage"
	"xdao.co/dualcas/storage/checked"
	"xdao.co/dualcas/storage/testkit"
)

func TestConformance(t *testing.T) {
	testkit.RunStoreConformance(t, func(t *testing.T) storage.Store {
		return checked.New(digest.SHA256{})
	})
}

func TestPutRekeysUnderOwnHasher(t *testing.T) {
	s := checked.New(digest.Blake3{})
	a := artifact.New([]byte("content"), digest.SHA256{})

	id, err := s.Put(a)
	if err != nil {
		t.Fatal(err)
	}
	if id == a.ID() {
		t.Fatal("expected a different digest under the store's own hasher")
	}
	if id != (digest.Blake3{}).Sum([]byte("content")) {
		t.Fatalf("Put digest %s is not the store hasher's sum", id)
	}

	// The artifact is reachable under the store's digest, not its own.
	if !s.Has(id) {
		t.Fatal("artifact not reachable under rekeyed digest")
	}
	if s.Has(a.ID()) {
		t.Fatal("artifact should not be reachable under the foreign digest")
	}
}

func TestPutAgreesWhenHashersMatch(t *testing.T) {
	s := checked.New(digest.SHA256{})
	a := artifact.New([]byte("content"), digest.SHA256{})

	id, err := s.Put(a)
	if err != nil {
		t.Fatal(err)
	}
	if id != a.ID() {
		t.Fatalf("digest changed under identical hasher: %s vs %s", id, a.ID())
	}
}

func TestGetVerifiesDigest(t *testing.T) {
	s := checked.New(digest.Checksum{})

	id, err := s.Put(artifact.New([]byte("abc"), digest.Checksum{}))
	if err != nil {
		t.Fatal(err)
	}

	// A colliding overwrite still sums to the shared key, so Get keeps
	// succeeding; the verification guards the keying invariant itself.
	if _, err := s.Put(artifact.New([]byte("cba"), digest.Checksum{})); err != nil {
		t.Fatal(err)
	}
	got, err := s.Get(id)
	if err != nil {
		t.Fatal(err)
	}
	if string(got.Bytes()) != "cba" {
		t.Fatalf("expected last write to win, got %q", got.Bytes())
	}
}

func TestGetMissing(t *testing.T) {
	s := checked.New(digest.SHA256{})
	_, err := s.Get((digest.SHA256{}).Sum([]byte("absent")))
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("got err=%v, want ErrNotFound", err)
	}
}
