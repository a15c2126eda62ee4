// Package diagnostic defines the two error shapes the compiler and VM
// report (spec.md §7) and the "[line N] ..." formatting spec.md §6.4
// requires of both.
package diagnostic

import "fmt"

// CompileError is a single compile-time diagnostic: a syntax or semantic
// error tied to a source line and, when available, the offending lexeme
// (spec.md §4.4, §6.4).
type CompileError struct {
	Line    int
	Locus   string // quoted lexeme, "end", or "" for scanner-only errors
	Message string
}

func (e *CompileError) Error() string {
	if e.Locus == "" {
		return fmt.Sprintf("[line %d] Error: %s", e.Line, e.Message)
	}
	return fmt.Sprintf("[line %d] Error at %s: %s", e.Line, e.Locus, e.Message)
}

// RuntimeError is a single runtime diagnostic: execution halted, the stack
// was cleared, and interpretation stopped (spec.md §4.5, §7).
type RuntimeError struct {
	Line    int
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s\n[line %d] in script", e.Message, e.Line)
}
