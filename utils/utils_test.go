package utils

import "testing"

func TestLookupCopy(t *testing.T) {
	type rec struct{ N int }
	m := map[string]*rec{"a": {N: 1}, "nil": nil}

	got, ok := LookupCopy(m, "a")
	if !ok || got.N != 1 {
		t.Fatalf("expected copy of a, got (%+v, %v)", got, ok)
	}
	// The copy is detached from the map.
	got.N = 99
	if m["a"].N != 1 {
		t.Error("mutating the copy must not touch the map")
	}

	if _, ok := LookupCopy(m, "missing"); ok {
		t.Error("missing key should report false")
	}
	if _, ok := LookupCopy(m, "nil"); ok {
		t.Error("nil value should report false")
	}
}

func TestMachineUUID_Deterministic(t *testing.T) {
	a := MachineUUID("web-1")
	b := MachineUUID("web-1")
	if a != b {
		t.Errorf("same name should yield same UUID: %s vs %s", a, b)
	}
	if a == MachineUUID("web-2") {
		t.Error("different names should yield different UUIDs")
	}
	if len(a) != 36 {
		t.Errorf("expected canonical UUID form, got %q", a)
	}
}

func TestGenerateID(t *testing.T) {
	a, err := GenerateID()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(a) != 16 {
		t.Errorf("expected 16 hex chars, got %q", a)
	}
	b, _ := GenerateID()
	if a == b {
		t.Error("two ids should differ")
	}
}
