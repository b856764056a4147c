package kernel_test

import (
	"bytes"
	"testing"

	"xdao.co/dualcas/digest"
	"xdao.co/dualcas/kernel"
	"xdao.co/dualcas/storage"
	"xdao.co/dualcas/storage/memstore"
)

func TestStoreRetrieveRoundTrip(t *testing.T) {
	k := kernel.NewDefault()
	content := []byte("hello")

	id, err := k.StoreArtifact(content)
	if err != nil {
		t.Fatal(err)
	}
	if !k.HasArtifact(id) {
		t.Fatal("HasArtifact false after store")
	}
	if k.CycleStep() != 1 {
		t.Fatalf("CycleStep = %d, want 1", k.CycleStep())
	}

	got, err := k.GetArtifact(id)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got.Bytes(), content) {
		t.Fatal("content mismatch")
	}
}

func TestDuplicateStoreAdvancesCycleNotCount(t *testing.T) {
	k := kernel.NewDefault()

	id1, err := k.StoreArtifact([]byte("hello"))
	if err != nil {
		t.Fatal(err)
	}
	id2, err := k.StoreArtifact([]byte("hello"))
	if err != nil {
		t.Fatal(err)
	}

	if id1 != id2 {
		t.Fatalf("identical content produced different digests: %s vs %s", id1, id2)
	}
	if k.ArtifactCount() != 1 {
		t.Fatalf("ArtifactCount = %d, want 1", k.ArtifactCount())
	}
	if k.CycleStep() != 2 {
		t.Fatalf("CycleStep = %d, want 2", k.CycleStep())
	}
}

func TestCycleWrapsAtLength(t *testing.T) {
	k := kernel.NewDefault()

	for i := 0; i < kernel.CycleLength; i++ {
		if _, err := k.StoreArtifact([]byte{byte(i)}); err != nil {
			t.Fatal(err)
		}
	}
	if k.CycleStep() != 0 {
		t.Fatalf("CycleStep after %d stores = %d, want 0", kernel.CycleLength, k.CycleStep())
	}

	if _, err := k.StoreArtifact([]byte("one more")); err != nil {
		t.Fatal(err)
	}
	if k.CycleStep() != 1 {
		t.Fatalf("CycleStep after %d stores = %d, want 1", kernel.CycleLength+1, k.CycleStep())
	}
}

func TestReadsNeverAdvanceCycle(t *testing.T) {
	k := kernel.NewDefault()
	id, err := k.StoreArtifact([]byte("steady"))
	if err != nil {
		t.Fatal(err)
	}

	before := k.CycleStep()
	k.HasArtifact(id)
	if _, err := k.GetArtifact(id); err != nil {
		t.Fatal(err)
	}
	k.ArtifactCount()
	if k.CycleStep() != before {
		t.Fatal("read-only calls advanced the cycle")
	}
}

func TestReplaceHasherAdvancesWithoutRehash(t *testing.T) {
	k := kernel.NewDefault()

	oldID, err := k.StoreArtifact([]byte("stable key"))
	if err != nil {
		t.Fatal(err)
	}

	k.ReplaceHasher(digest.Blake3{})
	if k.CycleStep() != 2 {
		t.Fatalf("CycleStep = %d, want 2", k.CycleStep())
	}

	// The stale digest is still the valid key for the old artifact.
	if !k.HasArtifact(oldID) {
		t.Fatal("artifact lost after hasher swap")
	}

	// The same content now stores under a new identity.
	newID, err := k.StoreArtifact([]byte("stable key"))
	if err != nil {
		t.Fatal(err)
	}
	if newID == oldID {
		t.Fatal("expected a different digest under the new hasher")
	}
	if k.ArtifactCount() != 2 {
		t.Fatalf("ArtifactCount = %d, want 2", k.ArtifactCount())
	}
}

func TestReplaceStoreAdvancesWithoutMigration(t *testing.T) {
	k := kernel.New(digest.SHA256{}, memstore.New())
	id, err := k.StoreArtifact([]byte("left behind"))
	if err != nil {
		t.Fatal(err)
	}

	fresh := memstore.New()
	k.ReplaceStore(fresh)
	if k.CycleStep() != 2 {
		t.Fatalf("CycleStep = %d, want 2", k.CycleStep())
	}
	if k.HasArtifact(id) {
		t.Fatal("old entries must not migrate into the new store")
	}
	if _, err := k.GetArtifact(id); !storage.IsNotFound(err) {
		t.Fatalf("got err=%v, want ErrNotFound", err)
	}
	if k.ArtifactCount() != 0 {
		t.Fatalf("ArtifactCount = %d, want 0", k.ArtifactCount())
	}
}
