package chunk

import (
	"testing"

	"loxvm/internal/value"
)

func TestWriteAppendsCodeAndLine(t *testing.T) {
	c := New()
	c.Write(byte(OpReturn), 1)
	c.Write(byte(OpNil), 2)

	if len(c.Code) != 2 {
		t.Fatalf("len(Code) = %d, want 2", len(c.Code))
	}
	if c.LineAt(0) != 1 || c.LineAt(1) != 2 {
		t.Fatalf("lines = %v, want [1 2]", c.Lines)
	}
}

func TestAddConstantReturnsIndex(t *testing.T) {
	c := New()
	i0 := c.AddConstant(value.NewNumber(1))
	i1 := c.AddConstant(value.NewNumber(2))

	if i0 != 0 || i1 != 1 {
		t.Fatalf("indices = %d, %d, want 0, 1", i0, i1)
	}
	if len(c.Constants) != 2 {
		t.Fatalf("len(Constants) = %d, want 2", len(c.Constants))
	}
}

func TestLineAtOutOfRangeReturnsZero(t *testing.T) {
	c := New()
	c.Write(byte(OpReturn), 5)

	if got := c.LineAt(99); got != 0 {
		t.Errorf("LineAt(99) = %d, want 0", got)
	}
	if got := c.LineAt(-1); got != 0 {
		t.Errorf("LineAt(-1) = %d, want 0", got)
	}
}

func TestEmptyChunkDisassembles(t *testing.T) {
	c := New()
	c.Write(byte(OpReturn), 1)
	// Disassemble only writes to stdout; this just exercises it for panics.
	c.Disassemble("test")
}
