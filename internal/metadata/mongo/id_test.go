package mongo

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestIsValidID(t *testing.T) {
	valid := []string{
		"5f1e7d35c7ba06511e683b21",
		"ABCDEF0123456789abcdef01",
	}
	for _, id := range valid {
		if !IsValidID(id) {
			t.Errorf("IsValidID(%q) = false, want true", id)
		}
	}

	invalid := []string{
		"",
		"0",
		"5f1e7d35c7ba06511e683b2",   // 23 chars
		"5f1e7d35c7ba06511e683b211", // 25 chars
		"5f1e7d35c7ba06511e683b2g",  // non-hex
		"5f1e7d35-7ba06511e683b21",  // punctuation
		" 5f1e7d35c7ba06511e683b2",  // leading space
	}
	for _, id := range invalid {
		if IsValidID(id) {
			t.Errorf("IsValidID(%q) = true, want false", id)
		}
	}
}

func TestObjectIDOrNil(t *testing.T) {
	oid := primitive.NewObjectID()
	if got := ObjectIDOrNil(oid.Hex()); got != oid {
		t.Errorf("ObjectIDOrNil(%q) = %v, want %v", oid.Hex(), got, oid)
	}

	// Malformed ids collapse to the all-zero id so lookups miss instead
	// of erroring.
	if got := ObjectIDOrNil("not-an-id"); got != primitive.NilObjectID {
		t.Errorf("ObjectIDOrNil(malformed) = %v, want NilObjectID", got)
	}
}

func TestNormalizeParentFilter(t *testing.T) {
	oid := primitive.NewObjectID()
	cases := map[string]string{
		"":        "0",
		"0":       "0",
		oid.Hex(): oid.Hex(),
		"garbage": primitive.NilObjectID.Hex(),
	}
	for in, want := range cases {
		if got := normalizeParentFilter(in); got != want {
			t.Errorf("normalizeParentFilter(%q) = %q, want %q", in, got, want)
		}
	}
}
