package ring

import "testing"

func TestLocateIsDeterministic(t *testing.T) {
	var id = [32]byte{1, 2, 3}
	var a = Locate(id)
	var b = Locate(id)
	if a != b {
		t.Fatalf("Locate not deterministic: %d != %d", a, b)
	}
}

func TestLocateDiffersAcrossIDs(t *testing.T) {
	var id1 = [32]byte{1}
	var id2 = [32]byte{2}
	if Locate(id1) == Locate(id2) {
		t.Fatalf("expected different locations for different ids")
	}
}
