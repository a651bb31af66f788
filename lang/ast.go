package lang

import (
	"strconv"
	"strings"
)

// Opcode identifies a binary operator.
type Opcode uint8

const (
	OpMul Opcode = iota
	OpDiv
	OpAdd
	OpSub
	OpLte
	OpGte
	OpGt
	OpLt
	OpEqual
	OpNe
	OpPow
	OpMod
	OpLsh
	OpRsh
	OpBwXor
	OpBwOr
	OpBwAnd
	OpOr
	OpAnd
)

var opcodeInfo = [...]struct{ name, symbol string }{
	OpMul:   {"Mul", "*"},
	OpDiv:   {"Div", "/"},
	OpAdd:   {"Add", "+"},
	OpSub:   {"Sub", "-"},
	OpLte:   {"Lte", "<="},
	OpGte:   {"Gte", ">="},
	OpGt:    {"Gt", ">"},
	OpLt:    {"Lt", "<"},
	OpEqual: {"Equal", "=="},
	OpNe:    {"Ne", "!="},
	OpPow:   {"Pow", "**"},
	OpMod:   {"Mod", "%"},
	OpLsh:   {"Lsh", "<<"},
	OpRsh:   {"Rsh", ">>"},
	OpBwXor: {"BwXor", "^"},
	OpBwOr:  {"BwOr", "|"},
	OpBwAnd: {"BwAnd", "&"},
	OpOr:    {"Or", "||"},
	OpAnd:   {"And", "&&"},
}

// String returns the opcode name.
func (op Opcode) String() string {
	if int(op) < len(opcodeInfo) {
		return opcodeInfo[op].name
	}

	return "Opcode(" + strconv.Itoa(int(op)) + ")"
}

// Symbol returns the source text of the operator.
func (op Opcode) Symbol() string {
	if int(op) < len(opcodeInfo) {
		return opcodeInfo[op].symbol
	}

	return "?"
}

// UnaryOpcode identifies a unary operator.
type UnaryOpcode uint8

const (
	// OpNegate is logical negation: positive operands yield 0, all others 1.
	OpNegate UnaryOpcode = iota
	// OpBwNot is the bitwise complement.
	OpBwNot
)

func (op UnaryOpcode) String() string {
	switch op {
	case OpNegate:
		return "Negate"
	case OpBwNot:
		return "BwNot"
	default:
		return "UnaryOpcode(" + strconv.Itoa(int(op)) + ")"
	}
}

// Symbol returns the source text of the operator.
func (op UnaryOpcode) Symbol() string {
	switch op {
	case OpNegate:
		return "!"
	case OpBwNot:
		return "~"
	default:
		return "?"
	}
}

// Accessor is one step of a nested variable path: either a literal key or the
// name of a variable whose String value is the key.
type Accessor struct {
	Key          string
	FromVariable bool
}

// RawKey returns an accessor for the literal key k.
func RawKey(k string) Accessor { return Accessor{Key: k} }

// KeyFromVariable returns an accessor that reads its key from variable name.
func KeyFromVariable(name string) Accessor {
	return Accessor{Key: name, FromVariable: true}
}

func (a Accessor) String() string {
	if a.FromVariable {
		return "[" + a.Key + "]"
	}

	return "[" + strconv.Quote(a.Key) + "]"
}

// VariableRef names a variable, optionally followed by a chain of dictionary
// accessors.
type VariableRef struct {
	Name  string
	Chain []Accessor
}

// Singular returns a reference to the variable name.
func Singular(name string) VariableRef { return VariableRef{Name: name} }

// Nested returns a reference into the dictionary held by variable name.
func Nested(name string, chain ...Accessor) VariableRef {
	return VariableRef{Name: name, Chain: chain}
}

// IsNested reports whether r has an accessor chain.
func (r VariableRef) IsNested() bool { return len(r.Chain) > 0 }

// String returns the source text of the reference.
func (r VariableRef) String() string {
	var b strings.Builder

	b.WriteString(r.Name)

	for _, a := range r.Chain {
		b.WriteString(a.String())
	}

	return b.String()
}

// Expression is a node that evaluates to a [Value].
type Expression interface {
	expression()
}

// Statement is a top-level node executed by an [Interpreter].
type Statement interface {
	statement()
}

type (
	// Literal is a constant value.
	Literal struct {
		Value Value
	}

	// Variable loads the value addressed by Ref.
	Variable struct {
		Ref VariableRef
	}

	// BinaryOp applies Op to LHS and RHS. RHS is evaluated first.
	BinaryOp struct {
		LHS Expression
		RHS Expression
		Op  Opcode
	}

	// UnaryOp applies Op to Operand.
	UnaryOp struct {
		Operand Expression
		Op      UnaryOpcode
	}

	// DictEntry is one key of a [DictLit].
	DictEntry struct {
		Value Expression
		Key   string
	}

	// DictLit constructs a Dict. Entries are evaluated left to right and a
	// later duplicate key replaces an earlier one.
	DictLit struct {
		Entries []DictEntry
	}

	// ModifierCall converts each of Vars in place with the built-in Name.
	ModifierCall struct {
		Name string
		Vars []VariableRef
	}

	// Access calls Method on the value of Receiver.
	Access struct {
		Receiver Expression
		Method   string
		Params   []Expression
	}
)

func (*Literal) expression()      {}
func (*Variable) expression()     {}
func (*BinaryOp) expression()     {}
func (*UnaryOp) expression()      {}
func (*DictLit) expression()      {}
func (*ModifierCall) expression() {}
func (*Access) expression()       {}

type (
	// Assignment binds the value of Value to Target.
	Assignment struct {
		Value  Expression
		Target VariableRef
	}

	// BareExpression evaluates Expr and reports its value.
	BareExpression struct {
		Expr Expression
	}
)

func (*Assignment) statement()     {}
func (*BareExpression) statement() {}
