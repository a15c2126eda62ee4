package value

import "testing"

func TestIsFalsey(t *testing.T) {
	tests := []struct {
		v    Value
		want bool
	}{
		{NewNil(), true},
		{NewBool(false), true},
		{NewBool(true), false},
		{NewNumber(0), false},
		{NewObj(&ObjString{}), false},
	}
	for _, tt := range tests {
		if got := IsFalsey(tt.v); got != tt.want {
			t.Errorf("IsFalsey(%v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestEqualStructuralForPrimitives(t *testing.T) {
	if !Equal(NewNumber(1), NewNumber(1)) {
		t.Error("equal numbers should compare equal")
	}
	if Equal(NewNumber(1), NewNumber(2)) {
		t.Error("unequal numbers should not compare equal")
	}
	if !Equal(NewNil(), NewNil()) {
		t.Error("nil should equal nil")
	}
	if Equal(NewBool(true), NewNumber(1)) {
		t.Error("different types should never compare equal")
	}
	if !Equal(NewBool(true), NewBool(true)) {
		t.Error("equal bools should compare equal")
	}
}

func TestEqualObjIsReferenceIdentity(t *testing.T) {
	a := &ObjString{Chars: []byte("same")}
	b := &ObjString{Chars: []byte("same")}

	if Equal(NewObj(a), NewObj(b)) {
		t.Error("distinct objects with equal bytes must not compare equal without interning")
	}
	if !Equal(NewObj(a), NewObj(a)) {
		t.Error("an object must compare equal to itself")
	}
}

func TestValueStringFormatting(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{NewNil(), "nil"},
		{NewBool(true), "true"},
		{NewBool(false), "false"},
		{NewNumber(3), "3"},
		{NewNumber(3.5), "3.5"},
		{NewObj(&ObjString{Chars: []byte("hi")}), "hi"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestHashBytesFNV1a(t *testing.T) {
	// Known FNV-1a 32-bit value for the empty string is the offset basis.
	if got := HashBytes(nil); got != FNVOffsetBasis {
		t.Errorf("hash of empty input = %d, want offset basis %d", got, FNVOffsetBasis)
	}
	// FNV-1a hashing is deterministic: same bytes, same hash.
	if HashBytes([]byte("abc")) != HashBytes([]byte("abc")) {
		t.Error("hash must be deterministic")
	}
}
