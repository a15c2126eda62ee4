// Package value implements the tagged Value union and the heap Obj model
// (spec.md §3, §4.1). It is shared, unmodified, by the compiler and the VM:
// both must intern strings identically so identifier lookups stay pointer
// -equal.
package value

import (
	"fmt"
	"strconv"
)

// Type tags a Value's active variant. Only four variants exist; there is no
// function/closure/class variant because spec.md §1 excludes them.
type Type int

const (
	Nil Type = iota
	Bool
	Number
	Obj
)

// Value is a tagged discriminated union (spec.md §3). Exactly one of
// AsBool/AsNumber/AsObj is meaningful, selected by Type.
type Value struct {
	Type     Type
	AsBool   bool
	AsNumber float64
	AsObj    *ObjString
}

func NewNil() Value               { return Value{Type: Nil} }
func NewBool(b bool) Value        { return Value{Type: Bool, AsBool: b} }
func NewNumber(n float64) Value   { return Value{Type: Number, AsNumber: n} }
func NewObj(o *ObjString) Value   { return Value{Type: Obj, AsObj: o} }

// IsFalsey reports whether v is falsey: nil or boolean false are falsey,
// everything else (including 0 and "") is truthy (spec.md §4.1).
func IsFalsey(v Value) bool {
	return v.Type == Nil || (v.Type == Bool && !v.AsBool)
}

// Equal implements valuesEqual (spec.md §3, §4.1): same-tag structural
// equality for Nil/Bool/Number, reference identity for Obj.
func Equal(a, b Value) bool {
	if a.Type != b.Type {
		return false
	}
	switch a.Type {
	case Nil:
		return true
	case Bool:
		return a.AsBool == b.AsBool
	case Number:
		return a.AsNumber == b.AsNumber
	case Obj:
		return a.AsObj == b.AsObj
	default:
		return false
	}
}

// String renders v the way PRINT does (spec.md §4.1, §6.4): Nil -> "nil",
// Bool -> "true"/"false", Number -> Go's default float formatting, Obj ->
// the raw string bytes.
func (v Value) String() string {
	switch v.Type {
	case Nil:
		return "nil"
	case Bool:
		return strconv.FormatBool(v.AsBool)
	case Number:
		return strconv.FormatFloat(v.AsNumber, 'g', -1, 64)
	case Obj:
		return v.AsObj.String()
	default:
		return fmt.Sprintf("<invalid value type %d>", v.Type)
	}
}

// ObjKind discriminates the heap Obj header (spec.md §3). Only String
// exists; the field exists because the header is part of the spec'd data
// model, not because more kinds are planned (Non-goal: no further object
// kinds - closures, classes, instances - are implemented).
type ObjKind int

const (
	ObjKindString ObjKind = iota
)

// ObjString is a heap-allocated, interned string. Next threads it into the
// VM's intrusive free list (spec.md §3's Obj header). Two live ObjStrings
// never hold equal byte sequences; that invariant is enforced by the VM's
// intern table (see internal/vm), not by this type itself.
type ObjString struct {
	Kind   ObjKind
	Next   *ObjString
	Length int
	Chars  []byte
	Hash   uint32
}

func (s *ObjString) String() string {
	if s == nil {
		return ""
	}
	return string(s.Chars)
}

// FNVOffsetBasis and FNVPrime are the 32-bit FNV-1a constants spec.md §4.1
// names explicitly.
const (
	FNVOffsetBasis uint32 = 2166136261
	FNVPrime       uint32 = 16777619
)

// HashBytes computes the FNV-1a hash of b, as spec.md §4.1 requires for the
// intern table's key.
func HashBytes(b []byte) uint32 {
	hash := FNVOffsetBasis
	for _, c := range b {
		hash ^= uint32(c)
		hash *= FNVPrime
	}
	return hash
}
