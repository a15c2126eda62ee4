// Package compiler turns source text directly into bytecode in a single
// pass, without building an intermediate syntax tree (spec.md §4.4): a
// Pratt parser drives emission as it recognizes each construct.
package compiler

import (
	"strconv"

	"github.com/hashicorp/go-multierror"

	"loxvm/internal/chunk"
	"loxvm/internal/diagnostic"
	"loxvm/internal/scanner"
	"loxvm/internal/token"
	"loxvm/internal/value"
	"loxvm/internal/vm"
)

// maxLocals bounds the locals a single scope chain may hold, matching
// MaxConstants: both are addressed by a single-byte operand (spec.md §4.4).
const maxLocals = 256

// uninitialized marks a local whose initializer hasn't finished compiling
// yet, so resolving its own name inside that initializer is an error
// (spec.md §4.4.2).
const uninitialized = -1

type local struct {
	name  token.Token
	depth int
}

// Compiler compiles one source string to one Chunk. It shares interner with
// whatever VM will run the result, so identifiers and string literals intern
// identically at compile time and run time (spec.md §1).
type Compiler struct {
	scanner  *scanner.Scanner
	interner *vm.Interner
	chunk    *chunk.Chunk

	prev, curr token.Token

	locals     []local
	scopeDepth int

	errors    *multierror.Error
	panicMode bool
}

// New returns a Compiler that will intern strings and identifiers through
// interner.
func New(interner *vm.Interner) *Compiler {
	return &Compiler{interner: interner}
}

// Compile scans and compiles source in one pass (spec.md §4.4's "compile"
// entry point), returning the resulting chunk and every accumulated
// diagnostic. A non-nil error means the chunk must not be run.
func (c *Compiler) Compile(source string) (*chunk.Chunk, error) {
	c.scanner = scanner.New(source)
	c.chunk = chunk.New()
	c.advance()
	for !c.match(token.EOF) {
		c.declaration()
	}
	c.endCompiler()
	if c.errors != nil {
		// One "[line N] ..." diagnostic per line, without multierror's
		// default "N errors occurred" header and bullets.
		c.errors.ErrorFormat = func(errs []error) string {
			msg := ""
			for i, err := range errs {
				if i > 0 {
					msg += "\n"
				}
				msg += err.Error()
			}
			return msg
		}
	}
	return c.chunk, c.errors.ErrorOrNil()
}

/* parsing helpers */

func (c *Compiler) advance() {
	c.prev = c.curr
	for {
		c.curr = c.scanner.ScanToken()
		if c.curr.Type != token.ERROR {
			break
		}
		c.errorAtCurrent(c.curr.Lexeme)
	}
}

func (c *Compiler) check(t token.Type) bool { return c.curr.Type == t }

func (c *Compiler) match(t token.Type) bool {
	if !c.check(t) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(t token.Type, message string) {
	if c.check(t) {
		c.advance()
		return
	}
	c.errorAtCurrent(message)
}

/* emission helpers */

func (c *Compiler) emitByte(b byte) {
	c.chunk.Write(b, c.prev.Line)
}

func (c *Compiler) emitBytes(a, b byte) {
	c.emitByte(a)
	c.emitByte(b)
}

func (c *Compiler) emitOp(op chunk.OpCode) {
	c.emitByte(byte(op))
}

func (c *Compiler) emitConstant(v value.Value) {
	c.emitBytes(byte(chunk.OpConstant), c.makeConstant(v))
}

func (c *Compiler) makeConstant(v value.Value) byte {
	idx := c.chunk.AddConstant(v)
	if idx >= chunk.MaxConstants {
		c.errorAtPrevious("Too many constants in one chunk.")
		return 0
	}
	return byte(idx)
}

func (c *Compiler) endCompiler() {
	c.emitOp(chunk.OpReturn)
}

/* declarations and statements */

func (c *Compiler) declaration() {
	switch {
	case c.match(token.VAR):
		c.varDeclaration()
	default:
		c.statement()
	}
	if c.panicMode {
		c.synchronize()
	}
}

func (c *Compiler) varDeclaration() {
	global := c.parseVariable("Expect variable name.")

	if c.match(token.EQUAL) {
		c.expression()
	} else {
		c.emitOp(chunk.OpNil)
	}
	c.consume(token.SEMICOLON, "Expect ';' after variable declaration.")

	c.defineVariable(global)
}

func (c *Compiler) parseVariable(message string) byte {
	c.consume(token.IDENTIFIER, message)

	c.declareVariable()
	if c.scopeDepth > 0 {
		return 0
	}
	return c.identifierConstant(c.prev)
}

func (c *Compiler) identifierConstant(name token.Token) byte {
	return c.makeConstant(value.NewObj(c.interner.CopyString([]byte(name.Lexeme))))
}

// declareVariable records a local's name at the current scope depth,
// rejecting a redeclaration in that same scope (spec.md §4.4.2). Globals
// are resolved late, by name, at run time, so they have nothing to declare
// here.
func (c *Compiler) declareVariable() {
	if c.scopeDepth == 0 {
		return
	}
	name := c.prev
	for i := len(c.locals) - 1; i >= 0; i-- {
		l := c.locals[i]
		if l.depth != uninitialized && l.depth < c.scopeDepth {
			break
		}
		if l.name.Lexeme == name.Lexeme {
			c.errorAtPrevious("Variable with this name already declared in this scope.")
		}
	}
	c.addLocal(name)
}

func (c *Compiler) addLocal(name token.Token) {
	if len(c.locals) >= maxLocals {
		c.errorAtPrevious("Too many local variables in function.")
		return
	}
	c.locals = append(c.locals, local{name: name, depth: uninitialized})
}

func (c *Compiler) defineVariable(global byte) {
	if c.scopeDepth > 0 {
		c.markInitialized()
		return
	}
	c.emitBytes(byte(chunk.OpDefineGlobal), global)
}

func (c *Compiler) markInitialized() {
	c.locals[len(c.locals)-1].depth = c.scopeDepth
}

func (c *Compiler) statement() {
	switch {
	case c.match(token.PRINT):
		c.printStatement()
	case c.match(token.LEFT_BRACE):
		c.beginScope()
		c.block()
		c.endScope()
	default:
		c.expressionStatement()
	}
}

func (c *Compiler) printStatement() {
	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after value.")
	c.emitOp(chunk.OpPrint)
}

func (c *Compiler) expressionStatement() {
	c.expression()
	c.consume(token.SEMICOLON, "Expect ';' after expression.")
	c.emitOp(chunk.OpPop)
}

func (c *Compiler) block() {
	for !c.check(token.RIGHT_BRACE) && !c.check(token.EOF) {
		c.declaration()
	}
	c.consume(token.RIGHT_BRACE, "Expect '}' after block.")
}

func (c *Compiler) beginScope() {
	c.scopeDepth++
}

// endScope pops every local that went out of scope, one OP_POP per slot, so
// the VM's stack layout stays in lockstep with the compiler's slot
// accounting (spec.md §4.3's "locals as stack slots").
func (c *Compiler) endScope() {
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		c.emitOp(chunk.OpPop)
		c.locals = c.locals[:len(c.locals)-1]
	}
}

/* expressions: precedence climbing over a token-indexed rule table */

type precedence int

const (
	precNone precedence = iota
	precAssignment
	precOr
	precAnd
	precEquality
	precComparison
	precTerm
	precFactor
	precUnary
	precCall
	precPrimary
)

type parseFn func(c *Compiler, canAssign bool)

type parseRule struct {
	prefix, infix parseFn
	prec          precedence
}

var rules = map[token.Type]parseRule{
	token.LEFT_PAREN: {(*Compiler).grouping, nil, precNone},

	token.MINUS: {(*Compiler).unary, (*Compiler).binary, precTerm},
	token.PLUS:  {nil, (*Compiler).binary, precTerm},
	token.SLASH: {nil, (*Compiler).binary, precFactor},
	token.STAR:  {nil, (*Compiler).binary, precFactor},

	token.BANG:          {(*Compiler).unary, nil, precNone},
	token.BANG_EQUAL:    {nil, (*Compiler).binary, precEquality},
	token.EQUAL_EQUAL:   {nil, (*Compiler).binary, precEquality},
	token.GREATER:       {nil, (*Compiler).binary, precComparison},
	token.GREATER_EQUAL: {nil, (*Compiler).binary, precComparison},
	token.LESS:          {nil, (*Compiler).binary, precComparison},
	token.LESS_EQUAL:    {nil, (*Compiler).binary, precComparison},

	token.IDENTIFIER: {(*Compiler).variable, nil, precNone},
	token.STRING:     {(*Compiler).string_, nil, precNone},
	token.NUMBER:     {(*Compiler).number, nil, precNone},

	token.FALSE: {(*Compiler).literal, nil, precNone},
	token.NIL:   {(*Compiler).literal, nil, precNone},
	token.TRUE:  {(*Compiler).literal, nil, precNone},
}

func getRule(t token.Type) parseRule {
	if r, ok := rules[t]; ok {
		return r
	}
	return parseRule{}
}

func (c *Compiler) expression() {
	c.parsePrecedence(precAssignment)
}

func (c *Compiler) parsePrecedence(prec precedence) {
	c.advance()
	prefix := getRule(c.prev.Type).prefix
	if prefix == nil {
		c.errorAtPrevious("Expect expression.")
		return
	}
	canAssign := prec <= precAssignment
	prefix(c, canAssign)

	for prec <= getRule(c.curr.Type).prec {
		c.advance()
		infix := getRule(c.prev.Type).infix
		infix(c, canAssign)
	}

	if canAssign && c.match(token.EQUAL) {
		c.errorAtPrevious("Invalid assignment target.")
	}
}

func (c *Compiler) number(_ bool) {
	n, _ := strconv.ParseFloat(c.prev.Lexeme, 64)
	c.emitConstant(value.NewNumber(n))
}

func (c *Compiler) string_(_ bool) {
	lexeme := c.prev.Lexeme
	unquoted := lexeme[1 : len(lexeme)-1]
	c.emitConstant(value.NewObj(c.interner.CopyString([]byte(unquoted))))
}

func (c *Compiler) literal(_ bool) {
	switch c.prev.Type {
	case token.FALSE:
		c.emitOp(chunk.OpFalse)
	case token.NIL:
		c.emitOp(chunk.OpNil)
	case token.TRUE:
		c.emitOp(chunk.OpTrue)
	}
}

func (c *Compiler) grouping(_ bool) {
	c.expression()
	c.consume(token.RIGHT_PAREN, "Expect ')' after expression.")
}

func (c *Compiler) unary(_ bool) {
	opType := c.prev.Type
	c.parsePrecedence(precUnary)
	switch opType {
	case token.BANG:
		c.emitOp(chunk.OpNot)
	case token.MINUS:
		c.emitOp(chunk.OpNegate)
	}
}

func (c *Compiler) binary(_ bool) {
	opType := c.prev.Type
	rule := getRule(opType)
	c.parsePrecedence(rule.prec + 1)

	switch opType {
	case token.BANG_EQUAL:
		c.emitBytes(byte(chunk.OpEqual), byte(chunk.OpNot))
	case token.EQUAL_EQUAL:
		c.emitOp(chunk.OpEqual)
	case token.GREATER:
		c.emitOp(chunk.OpGreater)
	case token.GREATER_EQUAL:
		c.emitBytes(byte(chunk.OpLess), byte(chunk.OpNot))
	case token.LESS:
		c.emitOp(chunk.OpLess)
	case token.LESS_EQUAL:
		c.emitBytes(byte(chunk.OpGreater), byte(chunk.OpNot))
	case token.PLUS:
		c.emitOp(chunk.OpAdd)
	case token.MINUS:
		c.emitOp(chunk.OpSubtract)
	case token.STAR:
		c.emitOp(chunk.OpMultiply)
	case token.SLASH:
		c.emitOp(chunk.OpDivide)
	}
}

func (c *Compiler) variable(canAssign bool) {
	c.namedVariable(c.prev, canAssign)
}

func (c *Compiler) namedVariable(name token.Token, canAssign bool) {
	var arg byte
	var getOp, setOp chunk.OpCode
	if slot, ok := c.resolveLocal(name); ok {
		arg, getOp, setOp = slot, chunk.OpGetLocal, chunk.OpSetLocal
	} else {
		arg, getOp, setOp = c.identifierConstant(name), chunk.OpGetGlobal, chunk.OpSetGlobal
	}

	if canAssign && c.match(token.EQUAL) {
		c.expression()
		c.emitBytes(byte(setOp), arg)
	} else {
		c.emitBytes(byte(getOp), arg)
	}
}

// resolveLocal returns the stack slot a name refers to within the current
// scope chain, searching innermost-first so shadowing resolves to the most
// recent declaration (spec.md §4.3).
func (c *Compiler) resolveLocal(name token.Token) (byte, bool) {
	for i := len(c.locals) - 1; i >= 0; i-- {
		l := c.locals[i]
		if l.name.Lexeme == name.Lexeme {
			if l.depth == uninitialized {
				c.errorAtPrevious("Cannot read local variable in its own initializer.")
			}
			return byte(i), true
		}
	}
	return 0, false
}

/* error handling */

func (c *Compiler) errorAtCurrent(message string) {
	c.errorAt(c.curr, message)
}

func (c *Compiler) errorAtPrevious(message string) {
	c.errorAt(c.prev, message)
}

// errorAt records a diagnostic at tok, entering panic mode so the cascade of
// follow-on errors a single mistake tends to produce is suppressed until
// synchronize finds a statement boundary (spec.md §4.4, §7).
func (c *Compiler) errorAt(tok token.Token, message string) {
	if c.panicMode {
		return
	}
	c.panicMode = true

	var locus string
	switch tok.Type {
	case token.ERROR:
		locus = ""
	case token.EOF:
		locus = "end"
	default:
		locus = "'" + tok.Lexeme + "'"
	}

	c.errors = multierror.Append(c.errors, &diagnostic.CompileError{
		Line:    tok.Line,
		Locus:   locus,
		Message: message,
	})
}

// synchronize skips tokens until a likely statement boundary, so one syntax
// error is reported instead of a flood of spurious follow-on errors
// (spec.md §4.4, §7).
func (c *Compiler) synchronize() {
	c.panicMode = false

	for c.curr.Type != token.EOF {
		if c.prev.Type == token.SEMICOLON {
			return
		}
		switch c.curr.Type {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}
		c.advance()
	}
}
