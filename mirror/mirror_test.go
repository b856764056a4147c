package mirror_test

import (
	"bytes"
	"testing"

	"xdao.co/dualcas/artifact"
	"xdao.co/dualcas/digest"
	"xdao.co/dualcas/mirror"
)

var hasher = digest.SHA256{}

func TestIdentityMirror(t *testing.T) {
	original := artifact.New([]byte("test"), hasher)
	p := mirror.NewIdentity(original, hasher)

	if !p.IsIdentity() {
		t.Fatal("identity mirror should report IsIdentity")
	}
	if p.Strength() != 1.0 {
		t.Fatalf("Strength = %v, want 1.0", p.Strength())
	}
	if !bytes.Equal(p.Original().Bytes(), p.Derived().Bytes()) {
		t.Fatal("identity mirror content mismatch")
	}
}

func TestByteReversedMirror(t *testing.T) {
	original := artifact.New([]byte("abc"), hasher)
	p := mirror.NewByteReversed(original, hasher)

	if p.IsIdentity() {
		t.Fatal("byte-reversed mirror should not be identity")
	}
	if p.Strength() != 0.5 {
		t.Fatalf("Strength = %v, want 0.5", p.Strength())
	}
	if !bytes.Equal(p.Derived().Bytes(), []byte("cba")) {
		t.Fatalf("derived = %q, want %q", p.Derived().Bytes(), "cba")
	}
}

func TestByteReverseRoundTrip(t *testing.T) {
	original := artifact.New([]byte("hello mirror"), hasher)
	once := mirror.NewByteReversed(original, hasher)
	twice := mirror.NewByteReversed(once.Derived(), hasher)

	if !bytes.Equal(twice.Derived().Bytes(), original.Bytes()) {
		t.Fatal("byte reversal twice should restore the original")
	}
}

func TestBitComplementRoundTrip(t *testing.T) {
	original := artifact.New([]byte{0x00, 0x0f, 0xf0, 0xff}, hasher)
	once := mirror.NewBitComplement(original, hasher)
	twice := mirror.NewBitComplement(once.Derived(), hasher)

	if bytes.Equal(once.Derived().Bytes(), original.Bytes()) {
		t.Fatal("complement should change content")
	}
	if !bytes.Equal(twice.Derived().Bytes(), original.Bytes()) {
		t.Fatal("complement twice should restore the original")
	}
}

func TestPalindromeReversalIsIdentity(t *testing.T) {
	original := artifact.New([]byte("aba"), hasher)
	p := mirror.NewByteReversed(original, hasher)

	// IsIdentity is content-derived, not kind-derived.
	if !p.IsIdentity() {
		t.Fatal("palindrome reversal yields identical content")
	}
	if p.Strength() != 1.0 {
		t.Fatalf("Strength = %v, want 1.0", p.Strength())
	}
	if p.Kind() != mirror.ByteReverse {
		t.Fatalf("Kind = %s, want byte-reverse", p.Kind())
	}
}

func TestCustomMirror(t *testing.T) {
	original := artifact.New([]byte("source"), hasher)
	p := mirror.NewCustom(original, []byte("anything at all"), "rot13-ish", hasher)

	if p.Kind() != mirror.Custom {
		t.Fatalf("Kind = %s, want custom", p.Kind())
	}
	if p.Tag() != "rot13-ish" {
		t.Fatalf("Tag = %q", p.Tag())
	}
	if p.IsIdentity() || p.Strength() != 0.5 {
		t.Fatalf("unexpected identity/strength: %v/%v", p.IsIdentity(), p.Strength())
	}
}

func TestEmptyContentMirrors(t *testing.T) {
	original := artifact.New(nil, hasher)

	if p := mirror.NewByteReversed(original, hasher); !p.IsIdentity() {
		t.Fatal("reversing empty content is an identity")
	}
	if p := mirror.NewBitComplement(original, hasher); !p.IsIdentity() {
		t.Fatal("complementing empty content is an identity")
	}
}
