package vm

import "loxvm/internal/value"

// Interner is the VM's string intern table and object heap (spec.md §3):
// "strings: set of ObjString (intern table)" and "objects: linked list
// head". It is shared, unmodified, between the compiler and the VM so that
// a string literal interned at compile time is pointer-identical to the
// same bytes interned at run time (spec.md §1, §4.1).
type Interner struct {
	strings map[string]*value.ObjString
	objects *value.ObjString
}

// NewInterner returns an empty intern table.
func NewInterner() *Interner {
	return &Interner{strings: make(map[string]*value.ObjString)}
}

// CopyString interns bytes, copying them into a new owned buffer only if no
// equal string is already interned (spec.md §4.1's copyString).
func (in *Interner) CopyString(bytes []byte) *value.ObjString {
	if existing, ok := in.strings[string(bytes)]; ok {
		return existing
	}
	owned := make([]byte, len(bytes))
	copy(owned, bytes)
	return in.register(owned)
}

// TakeString interns an already-owned buffer, as spec.md §4.1's takeString:
// if an equal string is already interned, the caller's buffer is discarded
// (Go's garbage collector reclaims it; there is no explicit free to call).
func (in *Interner) TakeString(owned []byte) *value.ObjString {
	if existing, ok := in.strings[string(owned)]; ok {
		return existing
	}
	return in.register(owned)
}

func (in *Interner) register(owned []byte) *value.ObjString {
	obj := &value.ObjString{
		Kind:   value.ObjKindString,
		Length: len(owned),
		Chars:  owned,
		Hash:   value.HashBytes(owned),
		Next:   in.objects,
	}
	in.objects = obj
	in.strings[string(owned)] = obj
	return obj
}

// Free drops the head of the object list and replaces the intern map,
// releasing every reference the Interner holds; it does not visit the
// list's nodes. In Go there is nothing to manually deallocate: once nothing
// else references them, the garbage collector reclaims the previously
// interned ObjStrings.
func (in *Interner) Free() {
	in.objects = nil
	in.strings = make(map[string]*value.ObjString)
}

// Objects returns the head of the intrusive free list, for testing the
// reachability invariant spec.md §8 names.
func (in *Interner) Objects() *value.ObjString {
	return in.objects
}
