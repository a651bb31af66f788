package lang

import (
	"context"
	"io"
	"log/slog"
	"math/big"

	"github.com/ardnew/micron/log"
)

// ParseOption configures the parser.
type ParseOption func(*parser)

// WithParseLogger sets the logger used to trace parsing.
func WithParseLogger(logger log.Logger) ParseOption {
	return func(p *parser) {
		p.logger = logger
	}
}

// ParseReader parses statements from an io.Reader.
func ParseReader(
	ctx context.Context,
	r io.Reader,
	opts ...ParseOption,
) ([]Statement, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrReadInput.Wrap(err)
	}

	return ParseString(ctx, string(data), opts...)
}

// ParseString parses a program: a sequence of statements separated by ';'.
// The final separator is optional.
func ParseString(ctx context.Context, s string, opts ...ParseOption) ([]Statement, error) {
	p, err := newParser(s, opts...)
	if err != nil {
		return nil, err
	}

	stmts, err := p.parseProgram()
	if err != nil {
		return nil, err
	}

	p.logger.TraceContext(ctx, "parse complete",
		slog.Int("statements", len(stmts)))

	return stmts, nil
}

// ParseExpression parses s as a single expression.
func ParseExpression(ctx context.Context, s string, opts ...ParseOption) (Expression, error) {
	p, err := newParser(s, opts...)
	if err != nil {
		return nil, err
	}

	expr, err := p.parseExpr(precLowest)
	if err != nil {
		return nil, err
	}

	if tok := p.peek(); tok.kind != tokEOF {
		return nil, p.unexpected(tok, "end of input")
	}

	p.logger.TraceContext(ctx, "parse complete", slog.String("node", typeName(expr)))

	return expr, nil
}

// parser holds the parser state.
type parser struct {
	toks   []token
	pos    int
	logger log.Logger
}

func newParser(s string, opts ...ParseOption) (*parser, error) {
	toks, err := lex(s)
	if err != nil {
		return nil, err
	}

	p := &parser{toks: toks}

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// parseProgram parses: { Statement ";" } [ Statement ].
func (p *parser) parseProgram() ([]Statement, error) {
	var stmts []Statement

	for {
		for p.accept(";") {
		}

		if p.peek().kind == tokEOF {
			return stmts, nil
		}

		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}

		stmts = append(stmts, stmt)

		if tok := p.peek(); tok.kind != tokEOF && !p.accept(";") {
			return nil, p.unexpected(tok, "';'")
		}
	}
}

// parseStatement parses: VarRef "=" Expr | Expr.
func (p *parser) parseStatement() (Statement, error) {
	if p.peek().kind == tokIdent {
		mark := p.pos

		ref, err := p.parseVarRef()
		if err == nil && p.accept("=") {
			value, err := p.parseExpr(precLowest)
			if err != nil {
				return nil, err
			}

			return &Assignment{Target: ref, Value: value}, nil
		}

		p.pos = mark
	}

	expr, err := p.parseExpr(precLowest)
	if err != nil {
		return nil, err
	}

	return &BareExpression{Expr: expr}, nil
}

// parseVarRef parses: Ident { "[" ( String | Ident ) "]" }.
func (p *parser) parseVarRef() (VariableRef, error) {
	tok := p.peek()
	if tok.kind != tokIdent {
		return VariableRef{}, p.unexpected(tok, "variable name")
	}

	p.next()

	ref := VariableRef{Name: tok.text}

	for p.accept("[") {
		key := p.next()

		switch key.kind {
		case tokString:
			ref.Chain = append(ref.Chain, RawKey(key.text))
		case tokIdent:
			ref.Chain = append(ref.Chain, KeyFromVariable(key.text))
		default:
			return VariableRef{}, p.unexpected(key, "string or variable key")
		}

		if tok := p.peek(); !p.accept("]") {
			return VariableRef{}, p.unexpected(tok, "']'")
		}
	}

	return ref, nil
}

const (
	precLowest = iota + 1
	precOr
	precAnd
	precBwOr
	precBwXor
	precBwAnd
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
	precPower
)

type binaryInfo struct {
	op    Opcode
	prec  int
	right bool
}

var binaryOps = map[string]binaryInfo{
	"||": {op: OpOr, prec: precOr},
	"&&": {op: OpAnd, prec: precAnd},
	"|":  {op: OpBwOr, prec: precBwOr},
	"^":  {op: OpBwXor, prec: precBwXor},
	"&":  {op: OpBwAnd, prec: precBwAnd},
	"==": {op: OpEqual, prec: precEquality},
	"!=": {op: OpNe, prec: precEquality},
	"<":  {op: OpLt, prec: precRelational},
	"<=": {op: OpLte, prec: precRelational},
	">":  {op: OpGt, prec: precRelational},
	">=": {op: OpGte, prec: precRelational},
	"<<": {op: OpLsh, prec: precShift},
	">>": {op: OpRsh, prec: precShift},
	"+":  {op: OpAdd, prec: precAdditive},
	"-":  {op: OpSub, prec: precAdditive},
	"*":  {op: OpMul, prec: precMultiplicative},
	"/":  {op: OpDiv, prec: precMultiplicative},
	"%":  {op: OpMod, prec: precMultiplicative},
	"**": {op: OpPow, prec: precPower, right: true},
}

// Precedence returns the binding strength of op. Higher binds tighter.
func Precedence(op Opcode) int {
	return binaryOps[op.Symbol()].prec
}

// parseExpr parses binary operators by precedence climbing.
func (p *parser) parseExpr(minPrec int) (Expression, error) {
	lhs, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()
		if tok.kind != tokPunct {
			return lhs, nil
		}

		info, ok := binaryOps[tok.text]
		if !ok || info.prec < minPrec {
			return lhs, nil
		}

		p.next()

		next := info.prec + 1
		if info.right {
			next = info.prec
		}

		rhs, err := p.parseExpr(next)
		if err != nil {
			return nil, err
		}

		lhs = &BinaryOp{LHS: lhs, RHS: rhs, Op: info.op}
	}
}

// parseUnary parses: ( "!" | "~" ) Unary | Postfix.
func (p *parser) parseUnary() (Expression, error) {
	var op UnaryOpcode

	switch {
	case p.accept("!"):
		op = OpNegate
	case p.accept("~"):
		op = OpBwNot
	default:
		return p.parsePostfix()
	}

	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	return &UnaryOp{Operand: operand, Op: op}, nil
}

// parsePostfix parses: Primary { "." Ident "(" [ Expr { "," Expr } ] ")" }.
func (p *parser) parsePostfix() (Expression, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	for p.accept(".") {
		name := p.next()
		if name.kind != tokIdent {
			return nil, p.unexpected(name, "method name")
		}

		params, err := parseArgs(p, p.parseExprArg)
		if err != nil {
			return nil, err
		}

		expr = &Access{Receiver: expr, Method: name.text, Params: params}
	}

	return expr, nil
}

func (p *parser) parseExprArg() (Expression, error) { return p.parseExpr(precLowest) }

// parseArgs parses a parenthesized, comma-separated list.
func parseArgs[T any](p *parser, elem func() (T, error)) ([]T, error) {
	if tok := p.peek(); !p.accept("(") {
		return nil, p.unexpected(tok, "'('")
	}

	var list []T

	for !p.accept(")") {
		if len(list) > 0 {
			if tok := p.peek(); !p.accept(",") {
				return nil, p.unexpected(tok, "',' or ')'")
			}
		}

		v, err := elem()
		if err != nil {
			return nil, err
		}

		list = append(list, v)
	}

	return list, nil
}

// parsePrimary parses literals, variables, dictionaries, modifier calls and
// parenthesized expressions.
func (p *parser) parsePrimary() (Expression, error) {
	tok := p.peek()

	switch tok.kind {
	case tokInt, tokFloat:
		p.next()

		return p.number(tok, false)

	case tokString:
		p.next()

		return &Literal{Value: MakeString(tok.text)}, nil

	case tokIdent:
		ref, err := p.parseVarRef()
		if err != nil {
			return nil, err
		}

		return &Variable{Ref: ref}, nil

	case tokPunct:
		switch tok.text {
		case "-":
			// Negation of numbers is only expressible on literals.
			if num := p.peekAt(1); num.kind == tokInt || num.kind == tokFloat {
				p.next()
				p.next()

				return p.number(num, true)
			}

		case "(":
			p.next()

			expr, err := p.parseExpr(precLowest)
			if err != nil {
				return nil, err
			}

			if tok := p.peek(); !p.accept(")") {
				return nil, p.unexpected(tok, "')'")
			}

			return expr, nil

		case "{":
			return p.parseDict()

		case "$":
			return p.parseModifier()
		}
	}

	return nil, p.unexpected(tok, "expression")
}

func (p *parser) number(tok token, negative bool) (Expression, error) {
	text := tok.text
	if negative {
		text = "-" + text
	}

	if tok.kind == tokInt {
		n, ok := new(big.Int).SetString(text, 10)
		if !ok {
			return nil, ErrParse.WithPosition(tok.pos).With(slog.String("integer", text))
		}

		return &Literal{Value: MakeBigInt(n)}, nil
	}

	f, _, err := big.ParseFloat(text, 10, DefaultPrecision, big.ToNearestEven)
	if err != nil {
		return nil, ErrParse.WithPosition(tok.pos).Wrap(err).With(slog.String("float", text))
	}

	return &Literal{Value: MakeBigFloat(f)}, nil
}

// parseDict parses: "{" [ String ":" Expr { "," String ":" Expr } [ "," ] ] "}".
func (p *parser) parseDict() (Expression, error) {
	p.next() // {

	dict := &DictLit{}

	for !p.accept("}") {
		if len(dict.Entries) > 0 {
			if tok := p.peek(); !p.accept(",") {
				return nil, p.unexpected(tok, "',' or '}'")
			}

			if p.accept("}") {
				break
			}
		}

		key := p.next()
		if key.kind != tokString {
			return nil, p.unexpected(key, "string key")
		}

		if tok := p.peek(); !p.accept(":") {
			return nil, p.unexpected(tok, "':'")
		}

		value, err := p.parseExpr(precLowest)
		if err != nil {
			return nil, err
		}

		dict.Entries = append(dict.Entries, DictEntry{Key: key.text, Value: value})
	}

	return dict, nil
}

// parseModifier parses: "$" Ident "(" [ VarRef { "," VarRef } ] ")".
func (p *parser) parseModifier() (Expression, error) {
	p.next() // $

	name := p.next()
	if name.kind != tokIdent {
		return nil, p.unexpected(name, "modifier name")
	}

	vars, err := parseArgs(p, p.parseVarRef)
	if err != nil {
		return nil, err
	}

	return &ModifierCall{Name: name.text, Vars: vars}, nil
}

func (p *parser) peek() token { return p.peekAt(0) }

func (p *parser) peekAt(n int) token {
	if i := p.pos + n; i < len(p.toks) {
		return p.toks[i]
	}

	return p.toks[len(p.toks)-1]
}

func (p *parser) next() token {
	tok := p.peek()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}

	return tok
}

// accept consumes the next token if it is the punctuation text.
func (p *parser) accept(text string) bool {
	if tok := p.peek(); tok.kind == tokPunct && tok.text == text {
		p.next()

		return true
	}

	return false
}

func (p *parser) unexpected(tok token, expected string) error {
	return ErrParse.WithPosition(tok.pos).With(
		slog.String("expected", expected),
		slog.String("found", tok.String()),
	)
}
