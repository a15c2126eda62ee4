package chunk

import "fmt"

// Disassemble writes a human-readable dump of the chunk to stdout (spec.md
// §2's debug-only Disassembler component: a read-only consumer of Chunk).
func (c *Chunk) Disassemble(name string) {
	fmt.Printf("== %s ==\n", name)
	for offset := 0; offset < len(c.Code); {
		offset = c.DisassembleInstruction(offset)
	}
}

// DisassembleInstruction prints the single instruction starting at offset
// and returns the offset of the next one.
func (c *Chunk) DisassembleInstruction(offset int) int {
	fmt.Printf("%04d ", offset)
	if offset > 0 && c.Lines[offset] == c.Lines[offset-1] {
		fmt.Print("   | ")
	} else {
		fmt.Printf("%4d ", c.Lines[offset])
	}

	instruction := OpCode(c.Code[offset])
	switch instruction {
	case OpConstant:
		return c.constantInstruction(instruction.String(), offset)
	case OpNil, OpTrue, OpFalse, OpPop, OpEqual, OpGreater, OpLess,
		OpAdd, OpSubtract, OpMultiply, OpDivide, OpNot, OpNegate,
		OpPrint, OpReturn:
		return c.simpleInstruction(instruction.String(), offset)
	case OpGetLocal, OpSetLocal:
		return c.byteInstruction(instruction.String(), offset)
	case OpGetGlobal, OpDefineGlobal, OpSetGlobal:
		return c.constantInstruction(instruction.String(), offset)
	case OpJump, OpJumpIfFalse, OpLoop:
		return c.jumpInstruction(instruction.String(), offset)
	default:
		fmt.Printf("Unknown opcode %d\n", instruction)
		return offset + 1
	}
}

func (c *Chunk) simpleInstruction(name string, offset int) int {
	fmt.Println(name)
	return offset + 1
}

func (c *Chunk) constantInstruction(name string, offset int) int {
	index := c.Code[offset+1]
	fmt.Printf("%-16s %4d '%s'\n", name, index, c.Constants[index])
	return offset + 2
}

func (c *Chunk) byteInstruction(name string, offset int) int {
	slot := c.Code[offset+1]
	fmt.Printf("%-16s %4d\n", name, slot)
	return offset + 2
}

func (c *Chunk) jumpInstruction(name string, offset int) int {
	jump := uint16(c.Code[offset+1])<<8 | uint16(c.Code[offset+2])
	fmt.Printf("%-16s %4d\n", name, jump)
	return offset + 3
}
