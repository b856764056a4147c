package digest_test

import (
	"testing"

	"xdao.co/dualcas/digest"
)

func TestSumIsDeterministic(t *testing.T) {
	hashers := []digest.Hasher{
		digest.SHA256{},
		digest.Blake2b{},
		digest.Blake3{},
		digest.Checksum{},
	}
	data := []byte("determinism under repetition")

	for _, h := range hashers {
		a := h.Sum(data)
		b := h.Sum(data)
		if a != b {
			t.Fatalf("%s: Sum not deterministic: %s vs %s", h.Algorithm(), a, b)
		}
		if !a.Defined() {
			t.Fatalf("%s: Sum returned undefined digest", h.Algorithm())
		}
	}
}

func TestAlgorithmsDisagree(t *testing.T) {
	data := []byte("same content, different identity")

	sha := digest.SHA256{}.Sum(data)
	b2 := digest.Blake2b{}.Sum(data)
	b3 := digest.Blake3{}.Sum(data)

	if sha == b2 || sha == b3 || b2 == b3 {
		t.Fatalf("expected distinct digests per algorithm: sha=%s blake2b=%s blake3=%s", sha, b2, b3)
	}
}

func TestDistinctContentDistinctDigest(t *testing.T) {
	h := digest.SHA256{}
	if h.Sum([]byte("one")) == h.Sum([]byte("two")) {
		t.Fatal("sha2-256 collided on trivial inputs")
	}
}

func TestChecksumCollidesOnPermutation(t *testing.T) {
	h := digest.Checksum{}
	if h.Sum([]byte("abc")) != h.Sum([]byte("cba")) {
		t.Fatal("checksum digest should be order-insensitive")
	}
	if h.Sum([]byte("abc")) == h.Sum([]byte("abd")) {
		t.Fatal("checksum digest should distinguish different byte sums")
	}
}

func TestAlgorithmNamesUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, h := range []digest.Hasher{digest.SHA256{}, digest.Blake2b{}, digest.Blake3{}, digest.Checksum{}} {
		name := h.Algorithm()
		if seen[name] {
			t.Fatalf("duplicate algorithm name %q", name)
		}
		seen[name] = true
	}
}
