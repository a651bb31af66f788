// Package lang implements the Micron evaluation core: arbitrary-precision
// values, a scoped variable environment, nested dictionary paths and a
// stack-based expression evaluator, together with the lexer, parser and
// formatter for Micron source text.
//
// # Values
//
// A [Value] is one of four kinds: an arbitrary-precision Integer, a Float
// with a per-value precision in bits, a UTF-8 String, or a Dict mapping
// string keys to values. Values in an [Environment] are never aliased:
// assignment and every value handed back to a caller is a deep copy.
//
// # Grammar
//
// Informal EBNF:
//
//	Program     → { Statement ';' } [ Statement ] EOF
//	Statement   → VarRef '=' Expr | Expr
//	VarRef      → Ident { '[' ( String | Ident ) ']' }
//	Expr        → Unary { BinaryOp Unary }
//	Unary       → ( '!' | '~' ) Unary | Postfix
//	Postfix     → Primary { '.' Ident '(' [ Expr { ',' Expr } ] ')' }
//	Primary     → Number | '-' Number | String | VarRef | '(' Expr ')'
//	            | Dict | '$' Ident '(' [ VarRef { ',' VarRef } ] ')'
//	Dict        → '{' [ String ':' Expr { ',' String ':' Expr } [ ',' ] ] '}'
//
// Binary operators, loosest first:
//
//	||   &&   |   ^   &   == !=   < <= > >=   << >>   + -   * / %   **
//
// All are left-associative except '**'. Comments start with '#' or '//' and
// run to the end of the line; '/* ... */' blocks are also skipped.
//
// # Example
//
//	server = {"host": "localhost", "port": 8080};
//	key = "port";
//	server[key] = server[key] + 1;
//	url = "http://" + server["host"] + ":" + server["port"];
//	$to_float(server["port"]);
//	server["port"].with_precision(128) / 3
//
// # Scoping
//
// An [Environment] starts with a single scope named [GlobalScope]. Scopes
// are pushed and popped explicitly. Lookups search innermost first and
// assignment binds in the innermost scope, so inner bindings shadow outer
// ones until their scope is popped.
package lang
