package lang

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Format writes stmts in canonical source form, one statement per line.
//
// If indent is positive, non-empty dictionary literals are written across
// multiple lines using indent spaces per level. Otherwise they are written
// on a single line.
func Format(_ context.Context, w io.Writer, stmts []Statement, indent int) error {
	var b strings.Builder

	f := formatter{b: &b, indent: indent}

	for _, stmt := range stmts {
		f.statement(stmt)
		b.WriteString(";\n")
	}

	_, err := io.WriteString(w, b.String())

	return err
}

// FormatStatement returns the canonical source of stmt on a single line.
func FormatStatement(stmt Statement) string {
	var b strings.Builder

	formatter{b: &b}.statement(stmt)

	return b.String()
}

// FormatExpression returns the canonical source of expr on a single line.
func FormatExpression(expr Expression) string {
	var b strings.Builder

	formatter{b: &b}.expr(expr, 0)

	return b.String()
}

type formatter struct {
	b      *strings.Builder
	indent int
	depth  int
}

func (f formatter) statement(stmt Statement) {
	switch s := stmt.(type) {
	case *Assignment:
		f.b.WriteString(s.Target.String())
		f.b.WriteString(" = ")
		f.expr(s.Value, 0)

	case *BareExpression:
		f.expr(s.Expr, 0)

	default:
		fmt.Fprintf(f.b, "<%s>", typeName(stmt))
	}
}

// expr writes x, parenthesized if it binds looser than prec.
func (f formatter) expr(x Expression, prec int) {
	switch n := x.(type) {
	case *Literal:
		f.b.WriteString(n.Value.String())

	case *Variable:
		f.b.WriteString(n.Ref.String())

	case *BinaryOp:
		own := Precedence(n.Op)
		if own < prec {
			f.b.WriteByte('(')
			defer f.b.WriteByte(')')
		}

		// Operands at equal precedence are grouped on the associative side
		// only.
		lhs, rhs := own, own+1
		if n.Op == OpPow {
			lhs, rhs = own+1, own
		}

		f.expr(n.LHS, lhs)
		f.b.WriteString(" " + n.Op.Symbol() + " ")
		f.expr(n.RHS, rhs)

	case *UnaryOp:
		f.b.WriteString(n.Op.Symbol())
		f.operand(n.Operand)

	case *DictLit:
		f.dict(n)

	case *ModifierCall:
		f.b.WriteString("$" + n.Name + "(")

		for i, ref := range n.Vars {
			if i > 0 {
				f.b.WriteString(", ")
			}

			f.b.WriteString(ref.String())
		}

		f.b.WriteByte(')')

	case *Access:
		f.operand(n.Receiver)
		f.b.WriteString("." + n.Method + "(")

		for i, p := range n.Params {
			if i > 0 {
				f.b.WriteString(", ")
			}

			f.expr(p, 0)
		}

		f.b.WriteByte(')')

	default:
		fmt.Fprintf(f.b, "<%s>", typeName(x))
	}
}

// operand writes the operand of a unary operator or the receiver of a
// method, which must be primary expressions.
func (f formatter) operand(x Expression) {
	switch x.(type) {
	case *BinaryOp, *UnaryOp:
		f.b.WriteByte('(')
		f.expr(x, 0)
		f.b.WriteByte(')')

	default:
		f.expr(x, 0)
	}
}

func (f formatter) dict(d *DictLit) {
	if len(d.Entries) == 0 {
		f.b.WriteString("{}")

		return
	}

	f.b.WriteByte('{')

	inner := f
	inner.depth++

	for i, e := range d.Entries {
		switch {
		case f.indent > 0:
			f.b.WriteByte('\n')
			f.b.WriteString(strings.Repeat(" ", inner.depth*f.indent))
		case i > 0:
			f.b.WriteString(", ")
		}

		f.b.WriteString(strconv.Quote(e.Key) + ": ")
		inner.expr(e.Value, 0)

		if f.indent > 0 {
			f.b.WriteByte(',')
		}
	}

	if f.indent > 0 {
		f.b.WriteByte('\n')
		f.b.WriteString(strings.Repeat(" ", f.depth*f.indent))
	}

	f.b.WriteByte('}')
}

// Print writes the syntax tree of stmts, one node per line with children
// indented beneath their parent.
func Print(_ context.Context, w io.Writer, stmts []Statement) error {
	var b strings.Builder

	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *Assignment:
			fmt.Fprintf(&b, "Assignment %s\n", s.Target)
			treeNode(&b, s.Value, 1)

		case *BareExpression:
			b.WriteString("BareExpression\n")
			treeNode(&b, s.Expr, 1)

		default:
			fmt.Fprintf(&b, "%s\n", typeName(stmt))
		}
	}

	_, err := io.WriteString(w, b.String())

	return err
}

func treeNode(b *strings.Builder, x Expression, depth int) {
	b.WriteString(strings.Repeat("  ", depth))

	switch n := x.(type) {
	case *Literal:
		fmt.Fprintf(b, "Literal %s %s\n", n.Value.Kind(), n.Value)

	case *Variable:
		fmt.Fprintf(b, "Variable %s\n", n.Ref)

	case *BinaryOp:
		fmt.Fprintf(b, "BinaryOp %s\n", n.Op)
		treeNode(b, n.LHS, depth+1)
		treeNode(b, n.RHS, depth+1)

	case *UnaryOp:
		fmt.Fprintf(b, "UnaryOp %s\n", n.Op)
		treeNode(b, n.Operand, depth+1)

	case *DictLit:
		fmt.Fprintf(b, "DictLit (%d)\n", len(n.Entries))

		for _, e := range n.Entries {
			fmt.Fprintf(b, "%s%q\n", strings.Repeat("  ", depth+1), e.Key)
			treeNode(b, e.Value, depth+2)
		}

	case *ModifierCall:
		refs := make([]string, len(n.Vars))
		for i, ref := range n.Vars {
			refs[i] = ref.String()
		}

		fmt.Fprintf(b, "ModifierCall %s (%s)\n", n.Name, strings.Join(refs, ", "))

	case *Access:
		fmt.Fprintf(b, "Access %s/%d\n", n.Method, len(n.Params))
		treeNode(b, n.Receiver, depth+1)

		for _, p := range n.Params {
			treeNode(b, p, depth+1)
		}

	default:
		fmt.Fprintf(b, "%s\n", typeName(x))
	}
}
