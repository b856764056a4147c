package replica_test

import (
	"testing"

	"xdao.co/dualcas/digest"
	"xdao.co/dualcas/kernel"
	"xdao.co/dualcas/replica"
	"xdao.co/dualcas/storage"
	"xdao.co/dualcas/storage/memstore"
)

func TestFreshPair(t *testing.T) {
	p := replica.New()
	if p.Phase() != replica.Primary {
		t.Fatalf("Phase = %s, want primary", p.Phase())
	}
	if p.CombinedCycle() != 0 {
		t.Fatalf("CombinedCycle = %d, want 0", p.CombinedCycle())
	}
	if !p.IsSynchronized() {
		t.Fatal("fresh pair should be synchronized")
	}
}

func TestPhaseAlternation(t *testing.T) {
	p := replica.New()

	for k := 1; k <= 5; k++ {
		if _, _, err := p.DualStore([]byte{byte(k)}); err != nil {
			t.Fatal(err)
		}
		wantPrimary := k%2 == 0
		if got := p.Phase() == replica.Primary; got != wantPrimary {
			t.Fatalf("after %d stores phase = %s", k, p.Phase())
		}
	}
}

func TestCombinedCycleIsPlainSum(t *testing.T) {
	p := replica.New()
	if _, _, err := p.DualStore([]byte("x")); err != nil {
		t.Fatal(err)
	}
	if _, _, err := p.DualStore([]byte("y")); err != nil {
		t.Fatal(err)
	}
	if p.CombinedCycle() != 4 {
		t.Fatalf("CombinedCycle = %d, want 4", p.CombinedCycle())
	}
}

func TestDigestsDifferWhenHashersDiffer(t *testing.T) {
	p := replica.NewWithKernels(
		kernel.New(digest.SHA256{}, memstore.New()),
		kernel.New(digest.Blake3{}, memstore.New()),
	)

	primaryID, dualID, err := p.DualStore([]byte("content"))
	if err != nil {
		t.Fatal(err)
	}
	if primaryID == dualID {
		t.Fatal("expected differing digests under differing hashers")
	}
	if !p.Primary().HasArtifact(primaryID) || !p.Dual().HasArtifact(dualID) {
		t.Fatal("each kernel must hold its own copy")
	}
}

func TestRetrieveIsPhaseGated(t *testing.T) {
	p := replica.New()

	// Both kernels use sha2-256, so both digests are equal; still, the
	// lookup is routed by phase, not by which kernel holds the digest.
	id, _, err := p.DualStore([]byte("gated"))
	if err != nil {
		t.Fatal(err)
	}

	// Phase flipped to Dual; the dual kernel holds the same digest.
	if p.Phase() != replica.Dual {
		t.Fatalf("Phase = %s, want dual", p.Phase())
	}
	if _, err := p.Retrieve(id); err != nil {
		t.Fatal(err)
	}

	// Store directly into the primary only, then flip to Dual again:
	// the primary-only digest is unreachable through Retrieve.
	soloID, err := p.Primary().StoreArtifact([]byte("primary only"))
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := p.DualStore([]byte("flip")); err != nil {
		t.Fatal(err)
	}
	if _, _, err := p.DualStore([]byte("flip again")); err != nil {
		t.Fatal(err)
	}
	if p.Phase() != replica.Dual {
		t.Fatalf("Phase = %s, want dual", p.Phase())
	}
	if _, err := p.Retrieve(soloID); !storage.IsNotFound(err) {
		t.Fatalf("phase-gated lookup should miss, got err=%v", err)
	}
}

func TestSynchronizePadsLaggingKernel(t *testing.T) {
	p := replica.New()

	for i := 0; i < 3; i++ {
		if _, err := p.Primary().StoreArtifact([]byte{byte(i)}); err != nil {
			t.Fatal(err)
		}
	}
	if p.IsSynchronized() {
		t.Fatal("pair should have drifted")
	}

	dualCountBefore := p.Dual().ArtifactCount()
	if err := p.Synchronize(); err != nil {
		t.Fatal(err)
	}
	if !p.IsSynchronized() {
		t.Fatal("Synchronize did not equalize counters")
	}

	// Filler stores are real stores, not free ticks.
	if p.Dual().ArtifactCount() <= dualCountBefore {
		t.Fatal("expected filler artifacts in the lagging kernel")
	}
}

func TestHistoryRecordsStoresAndTransitions(t *testing.T) {
	p := replica.New()
	if _, _, err := p.DualStore([]byte("tracked")); err != nil {
		t.Fatal(err)
	}

	history := p.History()
	if len(history) != 2 {
		t.Fatalf("history length = %d, want 2", len(history))
	}
	if history[0].Kind != replica.OpStore || string(history[0].Content) != "tracked" {
		t.Fatalf("unexpected first op %+v", history[0])
	}
	if history[1].Kind != replica.OpTransition ||
		history[1].From != replica.Primary || history[1].To != replica.Dual {
		t.Fatalf("unexpected second op %+v", history[1])
	}
}
