// SPDX-License-Identifier: Apache-2.0
package frontend

import (
	"github.com/alecthomas/participle/v2/lexer"

	"absint/internal/ast"
	cerrors "absint/internal/errors"
)

// SemanticError wraps one errors.CompilerError raised while building the
// core AST out of the parse tree (undefined variable, duplicate
// declaration, type mismatch, ...). spec.md §7 says parse/typing errors
// "are surfaced as-is; analysis does not start" — the CLI stops at the
// first one.
type SemanticError struct {
	cerrors.CompilerError
}

func (e *SemanticError) Error() string { return e.Message }

func semErr(c cerrors.CompilerError) error { return &SemanticError{CompilerError: c} }

func toPos(p lexer.Position) ast.Position {
	return ast.Position{Line: p.Line, Column: p.Column, Offset: p.Offset}
}

func span(p lexer.Position) ast.Span {
	pos := toPos(p)
	return ast.Span{Start: pos, End: pos}
}

// Build walks a parsed grammar.Program into the core AST, returning the
// variables declared at the program's top level (for the driver to seed the
// initial environment, per the convention internal/analyzer's own tests
// use) and the flat statement list the iterator runs (spec.md §3.2's
// top-level Program, with this program's top-level declarations hoisted
// out rather than wrapped in an ast.Block, since nothing ever exits that
// outermost scope).
//
// Every variable name must be unique across the whole program: envmap
// (internal/envmap) keys and orders purely by Symbol name (spec.md §3.1,
// §4.1), so two same-named symbols declared in disjoint nested blocks would
// collide as the same map key. This front end therefore uses one flat,
// whole-program symbol table instead of per-block shadowing scopes — a
// deliberate simplification of spec.md's scope-discipline note (§9),
// recorded in DESIGN.md.
func Build(prog *Program) ([]ast.Symbol, ast.Program, error) {
	symtab := ast.NewSymbolTable()
	decls, stmts, err := buildItems(prog.Items, symtab)
	if err != nil {
		return nil, nil, err
	}
	return decls, ast.Program(stmts), nil
}

func buildItems(items []*BlockItem, symtab *ast.SymbolTable) ([]ast.Symbol, []ast.Stmt, error) {
	var decls []ast.Symbol
	var stmts []ast.Stmt
	for _, item := range items {
		if item.Decl != nil {
			sym, err := declareVar(item.Decl, symtab)
			if err != nil {
				return nil, nil, err
			}
			decls = append(decls, sym)
			continue
		}
		s, err := buildStmt(item.Stmt, symtab)
		if err != nil {
			return nil, nil, err
		}
		stmts = append(stmts, s)
	}
	return decls, stmts, nil
}

func declareVar(d *VarDecl, symtab *ast.SymbolTable) (ast.Symbol, error) {
	typ := ast.Int
	if d.Type == "bool" {
		typ = ast.Bool
	}
	sym, err := symtab.Declare(d.Name, typ, toPos(d.Pos))
	if err != nil {
		return ast.Symbol{}, semErr(cerrors.DuplicateDeclaration(d.Name, toPos(d.Pos)))
	}
	return sym, nil
}

func buildStmt(s *Stmt, symtab *ast.SymbolTable) (ast.Stmt, error) {
	switch {
	case s.Block != nil:
		decls, stmts, err := buildItems(s.Block.Items, symtab)
		if err != nil {
			return nil, err
		}
		return &ast.Block{Span: span(s.Block.Pos), Decls: decls, Stmts: stmts}, nil
	case s.If != nil:
		cond, err := buildBoolExpr(s.If.Cond, symtab)
		if err != nil {
			return nil, err
		}
		then, err := buildStmt(s.If.Then, symtab)
		if err != nil {
			return nil, err
		}
		var otherwise ast.Stmt
		if s.If.Else != nil {
			otherwise, err = buildStmt(s.If.Else, symtab)
			if err != nil {
				return nil, err
			}
		}
		return &ast.If{Span: span(s.If.Pos), Cond: cond, Then: then, Otherwise: otherwise}, nil
	case s.While != nil:
		cond, err := buildBoolExpr(s.While.Cond, symtab)
		if err != nil {
			return nil, err
		}
		body, err := buildStmt(s.While.Body, symtab)
		if err != nil {
			return nil, err
		}
		return &ast.While{Span: span(s.While.Pos), Cond: cond, Body: body}, nil
	case s.Assert != nil:
		cond, err := buildBoolExpr(s.Assert.Cond, symtab)
		if err != nil {
			return nil, err
		}
		return &ast.Assert{Span: span(s.Assert.Pos), Cond: cond}, nil
	case s.Halt != nil:
		return &ast.Halt{Span: span(s.Halt.Pos)}, nil
	case s.Print != nil:
		vars := make([]ast.Symbol, len(s.Print.Vars))
		for i, name := range s.Print.Vars {
			sym, ok := symtab.Lookup(name)
			if !ok {
				return nil, semErr(undefinedVariable(name, s.Print.Pos, symtab))
			}
			vars[i] = sym
		}
		return &ast.Print{Span: span(s.Print.Pos), Vars: vars}, nil
	case s.Assign != nil:
		sym, ok := symtab.Lookup(s.Assign.Name)
		if !ok {
			return nil, semErr(undefinedVariable(s.Assign.Name, s.Assign.Pos, symtab))
		}
		if sym.Type() != ast.Int {
			return nil, semErr(cerrors.TypeMismatch("int", "bool", toPos(s.Assign.Pos)))
		}
		rhs, err := buildIntExpr(s.Assign.Value, symtab)
		if err != nil {
			return nil, err
		}
		return &ast.Assign{Span: span(s.Assign.Pos), LHS: sym, RHS: rhs}, nil
	default:
		return nil, semErr(cerrors.NewSemanticError(cerrors.ErrorSyntax, "empty statement", toPos(s.Pos)).Build())
	}
}

func undefinedVariable(name string, pos lexer.Position, symtab *ast.SymbolTable) cerrors.CompilerError {
	return cerrors.UndefinedVariable(name, toPos(pos), cerrors.FindSimilarNames(name, symtab.Names()))
}

func buildBoolExpr(b *BoolExpr, symtab *ast.SymbolTable) (ast.BoolExpr, error) {
	return buildOr(b.Or, symtab)
}

func buildOr(o *OrExpr, symtab *ast.SymbolTable) (ast.BoolExpr, error) {
	acc, err := buildAnd(o.Left, symtab)
	if err != nil {
		return nil, err
	}
	for _, r := range o.Rest {
		rhs, err := buildAnd(r, symtab)
		if err != nil {
			return nil, err
		}
		acc = &ast.BoolBinaryExpr{Span: span(o.Pos), Op: ast.Or, LHS: acc, RHS: rhs}
	}
	return acc, nil
}

func buildAnd(a *AndExpr, symtab *ast.SymbolTable) (ast.BoolExpr, error) {
	acc, err := buildNot(a.Left, symtab)
	if err != nil {
		return nil, err
	}
	for _, r := range a.Rest {
		rhs, err := buildNot(r, symtab)
		if err != nil {
			return nil, err
		}
		acc = &ast.BoolBinaryExpr{Span: span(a.Pos), Op: ast.And, LHS: acc, RHS: rhs}
	}
	return acc, nil
}

func buildNot(n *NotExpr, symtab *ast.SymbolTable) (ast.BoolExpr, error) {
	atom, err := buildBoolAtom(n.Atom, symtab)
	if err != nil {
		return nil, err
	}
	if n.Negate {
		return &ast.BoolUnaryExpr{Span: span(n.Pos), Op: ast.Not, Exp: atom}, nil
	}
	return atom, nil
}

func buildBoolAtom(a *BoolAtom, symtab *ast.SymbolTable) (ast.BoolExpr, error) {
	switch {
	case a.True:
		return &ast.BoolConstExpr{Span: span(a.Pos), Val: true}, nil
	case a.False:
		return &ast.BoolConstExpr{Span: span(a.Pos), Val: false}, nil
	case a.Paren != nil:
		return buildBoolExpr(a.Paren, symtab)
	case a.Compare != nil:
		return buildCompare(a.Compare, symtab)
	default:
		return nil, semErr(cerrors.NewSemanticError(cerrors.ErrorSyntax, "empty boolean expression", toPos(a.Pos)).Build())
	}
}

var compareOps = map[string]ast.CompareOp{
	"==": ast.EQ, "!=": ast.NE, "<": ast.LT, "<=": ast.LE, ">": ast.GT, ">=": ast.GE,
}

func buildCompare(c *CompareExpr, symtab *ast.SymbolTable) (ast.BoolExpr, error) {
	lhs, err := buildIntExpr(c.Left, symtab)
	if err != nil {
		return nil, err
	}
	rhs, err := buildIntExpr(c.Right, symtab)
	if err != nil {
		return nil, err
	}
	return &ast.CompareExpr{Span: span(c.Pos), Op: compareOps[c.Op], LHS: lhs, RHS: rhs}, nil
}

func buildIntExpr(e *IntExpr, symtab *ast.SymbolTable) (ast.IntExpr, error) {
	return buildAdd(e.Add, symtab)
}

func buildAdd(a *AddExpr, symtab *ast.SymbolTable) (ast.IntExpr, error) {
	acc, err := buildMul(a.Left, symtab)
	if err != nil {
		return nil, err
	}
	for _, op := range a.Ops {
		rhs, err := buildMul(op.Right, symtab)
		if err != nil {
			return nil, err
		}
		bop := ast.Add
		if op.Op == "-" {
			bop = ast.Sub
		}
		acc = &ast.IntBinaryExpr{Span: span(op.Pos), Op: bop, LHS: acc, RHS: rhs}
	}
	return acc, nil
}

func buildMul(m *MulExpr, symtab *ast.SymbolTable) (ast.IntExpr, error) {
	acc, err := buildUnary(m.Left, symtab)
	if err != nil {
		return nil, err
	}
	for _, op := range m.Ops {
		rhs, err := buildUnary(op.Right, symtab)
		if err != nil {
			return nil, err
		}
		var bop ast.IntBinaryOp
		switch op.Op {
		case "*":
			bop = ast.Mul
		case "/":
			bop = ast.Div
		default:
			bop = ast.Mod
		}
		if (bop == ast.Div || bop == ast.Mod) && isLiteralZero(rhs) {
			return nil, semErr(cerrors.DivisionByZero(op.Op, toPos(op.Pos)))
		}
		acc = &ast.IntBinaryExpr{Span: span(op.Pos), Op: bop, LHS: acc, RHS: rhs}
	}
	return acc, nil
}

func isLiteralZero(e ast.IntExpr) bool {
	c, ok := e.(*ast.IntConstExpr)
	return ok && c.Val == 0
}

func buildUnary(u *UnaryExpr, symtab *ast.SymbolTable) (ast.IntExpr, error) {
	atom, err := buildIntAtom(u.Atom, symtab)
	if err != nil {
		return nil, err
	}
	if u.Op == "-" {
		return &ast.IntUnaryExpr{Span: span(u.Pos), Op: ast.UnaryMinus, Exp: atom}, nil
	}
	if u.Op == "+" {
		return &ast.IntUnaryExpr{Span: span(u.Pos), Op: ast.UnaryPlus, Exp: atom}, nil
	}
	return atom, nil
}

func buildIntAtom(a *IntAtom, symtab *ast.SymbolTable) (ast.IntExpr, error) {
	switch {
	case a.Rand != nil:
		if a.Rand.Lo > a.Rand.Hi {
			return nil, semErr(cerrors.InvalidRandBounds(a.Rand.Lo, a.Rand.Hi, toPos(a.Rand.Pos)))
		}
		return &ast.IntRandExpr{Span: span(a.Rand.Pos), Lo: a.Rand.Lo, Hi: a.Rand.Hi}, nil
	case a.Number != nil:
		return &ast.IntConstExpr{Span: span(a.Pos), Val: *a.Number}, nil
	case a.Ident != nil:
		sym, ok := symtab.Lookup(*a.Ident)
		if !ok {
			return nil, semErr(undefinedVariable(*a.Ident, a.Pos, symtab))
		}
		if sym.Type() != ast.Int {
			return nil, semErr(cerrors.TypeMismatch("int", "bool", toPos(a.Pos)))
		}
		return &ast.IntVarExpr{Span: span(a.Pos), Var: sym}, nil
	case a.Paren != nil:
		return buildIntExpr(a.Paren, symtab)
	default:
		return nil, semErr(cerrors.NewSemanticError(cerrors.ErrorSyntax, "empty integer expression", toPos(a.Pos)).Build())
	}
}
