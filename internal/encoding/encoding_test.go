package encoding

import (
	"bytes"
	"testing"
)

func TestHash128_Deterministic(t *testing.T) {
	e := NewKeyEncoder()

	a := e.Hash128("mhdb:MajorDepressiveDisorder")
	b := e.Hash128("mhdb:MajorDepressiveDisorder")
	c := e.Hash128("mhdb:major_depressive_disorder")

	if a != b {
		t.Error("Expected equal strings to hash equally")
	}
	if a == c {
		t.Error("Expected different strings to hash differently")
	}
}

func TestTripleKey_RoundTrip(t *testing.T) {
	e := NewKeyEncoder()
	s := e.Hash("mhdb:a")
	p := e.Hash("rdfs:label")
	o := e.Hash(`"""a"""@en`)

	key := e.TripleKey(s, p, o)
	if len(key) != TripleKeySize {
		t.Fatalf("Expected key of %d bytes, got %d", TripleKeySize, len(key))
	}
	if !bytes.HasPrefix(key, s[:]) {
		t.Error("Expected key to start with the subject hash")
	}

	gs, gp, gob, err := e.SplitTripleKey(key)
	if err != nil {
		t.Fatalf("SplitTripleKey failed: %v", err)
	}
	if gs != s || gp != p || gob != o {
		t.Error("SplitTripleKey did not reverse TripleKey")
	}
}

func TestSplitTripleKey_InvalidLength(t *testing.T) {
	e := NewKeyEncoder()
	if _, _, _, err := e.SplitTripleKey([]byte{1, 2, 3}); err == nil {
		t.Error("Expected error for short key")
	}
}
