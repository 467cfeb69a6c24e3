// SPDX-License-Identifier: Apache-2.0
package frontend

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// Program is the top-level parse tree: a flat list of declarations and
// statements, mirroring spec.md §6.2 ("Statements terminated by `;`;
// ... declarations `int x;` or `bool x;`") — declarations may be
// interleaved with statements anywhere in a statement list (the program or
// a `{ ... }` block), though not as the lone body of an if or while. The builder
// (build.go) hoists declarations into the enclosing scope, exactly as
// Block's Decls/Stmts split is specified in spec.md §3.2/§4.5.
type Program struct {
	Pos   lexer.Position
	Items []*BlockItem `@@*`
}

// BlockItem is one element of a statement list: either a declaration or a
// statement, in source order.
type BlockItem struct {
	Pos  lexer.Position
	Decl *VarDecl `( @@`
	Stmt *Stmt    `| @@ )`
}

// VarDecl is `int IDENT ;` or `bool IDENT ;`.
type VarDecl struct {
	Pos  lexer.Position
	Type string `@("int" | "bool")`
	Name string `@Ident ";"`
}

// Stmt is one production of spec.md §3.2's Stmt variants.
type Stmt struct {
	Pos    lexer.Position
	Block  *BlockStmt  `(  @@`
	If     *IfStmt     ` | @@`
	While  *WhileStmt  ` | @@`
	Assert *AssertStmt ` | @@`
	Halt   *HaltStmt   ` | @@`
	Print  *PrintStmt  ` | @@`
	Assign *AssignStmt ` | @@ )`
}

// BlockStmt is a `{ ... }` nested scope (spec.md §3.2's Block).
type BlockStmt struct {
	Pos   lexer.Position
	Items []*BlockItem `"{" @@* "}"`
}

// AssignStmt is `IDENT = IntExpr ;`.
type AssignStmt struct {
	Pos   lexer.Position
	Name  string   `@Ident "="`
	Value *IntExpr `@@ ";"`
}

// IfStmt is `if ( BoolExpr ) Stmt [ else Stmt ]`.
type IfStmt struct {
	Pos  lexer.Position
	Cond *BoolExpr `"if" "(" @@ ")"`
	Then *Stmt     `@@`
	Else *Stmt     `( "else" @@ )?`
}

// WhileStmt is `while ( BoolExpr ) Stmt`.
type WhileStmt struct {
	Pos  lexer.Position
	Cond *BoolExpr `"while" "(" @@ ")"`
	Body *Stmt     `@@`
}

// AssertStmt is `assert ( BoolExpr ) ;`.
type AssertStmt struct {
	Pos  lexer.Position
	Cond *BoolExpr `"assert" "(" @@ ")" ";"`
}

// HaltStmt is `halt ;`.
type HaltStmt struct {
	Pos     lexer.Position
	Keyword string `@"halt" ";"`
}

// PrintStmt is `print ( IDENT [ , IDENT ]* ) ;`.
type PrintStmt struct {
	Pos  lexer.Position
	Vars []string `"print" "(" @Ident ( "," @Ident )* ")" ";"`
}

// BoolExpr is the `||`-precedence entry point for boolean expressions.
type BoolExpr struct {
	Pos lexer.Position
	Or  *OrExpr `@@`
}

// OrExpr is a left-associative chain of `&&`-expressions joined by `||`.
type OrExpr struct {
	Pos  lexer.Position
	Left *AndExpr   `@@`
	Rest []*AndExpr `( "||" @@ )*`
}

// AndExpr is a left-associative chain of negation/atoms joined by `&&`.
type AndExpr struct {
	Pos  lexer.Position
	Left *NotExpr   `@@`
	Rest []*NotExpr `( "&&" @@ )*`
}

// NotExpr is an optionally-negated boolean atom.
type NotExpr struct {
	Pos    lexer.Position
	Negate bool      `@"!"?`
	Atom   *BoolAtom `@@`
}

// BoolAtom is a boolean literal, a parenthesised boolean expression, or a
// comparison between two integer expressions (spec.md §3.2 has no bare
// boolean-variable atom — booleans are only ever produced by comparisons,
// literals, or connectives; see DESIGN.md for this spec-level limitation).
type BoolAtom struct {
	Pos     lexer.Position
	True    bool         `(   @"true"`
	False   bool         ` |  @"false"`
	Paren   *BoolExpr    ` |  "(" @@ ")"`
	Compare *CompareExpr ` |  @@ )`
}

// CompareExpr is `IntExpr CMPOP IntExpr`.
type CompareExpr struct {
	Pos   lexer.Position
	Left  *IntExpr `@@`
	Op    string   `@("==" | "!=" | "<=" | ">=" | "<" | ">")`
	Right *IntExpr `@@`
}

// IntExpr is the `+`/`-`-precedence entry point for integer expressions.
type IntExpr struct {
	Pos lexer.Position
	Add *AddExpr `@@`
}

// AddExpr is a left-associative chain of MulExprs joined by `+`/`-`.
type AddExpr struct {
	Pos  lexer.Position
	Left *MulExpr `@@`
	Ops  []*AddOp `@@*`
}

// AddOp is one `(+|-) MulExpr` step of an AddExpr chain.
type AddOp struct {
	Pos   lexer.Position
	Op    string   `@("+" | "-")`
	Right *MulExpr `@@`
}

// MulExpr is a left-associative chain of UnaryExprs joined by `*`/`/`/`%`.
type MulExpr struct {
	Pos  lexer.Position
	Left *UnaryExpr `@@`
	Ops  []*MulOp   `@@*`
}

// MulOp is one `(*|/|%) UnaryExpr` step of a MulExpr chain.
type MulOp struct {
	Pos   lexer.Position
	Op    string     `@("*" | "/" | "%")`
	Right *UnaryExpr `@@`
}

// UnaryExpr is an optionally-signed integer atom.
type UnaryExpr struct {
	Pos  lexer.Position
	Op   string   `@("+" | "-")?`
	Atom *IntAtom `@@`
}

// IntAtom is an integer literal, a rand(lo, hi) call, a variable reference,
// or a parenthesised expression.
type IntAtom struct {
	Pos    lexer.Position
	Rand   *RandExpr `(   @@`
	Number *int64    ` |  @Int`
	Ident  *string   ` |  @Ident`
	Paren  *IntExpr  ` |  "(" @@ ")" )`
}

// RandExpr is `rand ( INT , INT )`, both bounds literal per spec.md §3.2.
type RandExpr struct {
	Pos lexer.Position
	Lo  int64 `"rand" "(" @Int ","`
	Hi  int64 `@Int ")"`
}
