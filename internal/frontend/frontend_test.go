// SPDX-License-Identifier: Apache-2.0
package frontend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"absint/internal/ast"
)

func TestParseStraightLineProgram(t *testing.T) {
	src := `int x; x = rand(0, 10); assert(x >= 0 && x <= 10);`
	decls, prog, err := Parse("t.c", src)
	require.NoError(t, err)
	require.Len(t, decls, 1)
	assert.Equal(t, "x", decls[0].Name())
	require.Len(t, prog, 2)
	assert.IsType(t, &ast.Assign{}, prog[0])
	assert.IsType(t, &ast.Assert{}, prog[1])
}

func TestParseIfElseAndBlock(t *testing.T) {
	src := `
int x;
int y;
x = rand(0, 1);
if (x == 0) {
	y = 1;
} else {
	y = 0;
}
`
	decls, prog, err := Parse("t.c", src)
	require.NoError(t, err)
	assert.Len(t, decls, 2)
	require.Len(t, prog, 2)
	ifStmt, ok := prog[1].(*ast.If)
	require.True(t, ok)
	assert.NotNil(t, ifStmt.Otherwise)
}

func TestParseWhileLoop(t *testing.T) {
	src := `int x; x = 0; while (x < 10) { x = x + 1; } assert(x == 10);`
	_, prog, err := Parse("t.c", src)
	require.NoError(t, err)
	require.Len(t, prog, 3)
	assert.IsType(t, &ast.While{}, prog[1])
}

func TestParseHaltAndDeadCode(t *testing.T) {
	src := `int x; halt; x = 1;`
	_, prog, err := Parse("t.c", src)
	require.NoError(t, err)
	require.Len(t, prog, 2)
	assert.IsType(t, &ast.Halt{}, prog[0])
	assert.IsType(t, &ast.Assign{}, prog[1])
}

func TestParsePrint(t *testing.T) {
	src := `int x; int y; print(x, y);`
	_, prog, err := Parse("t.c", src)
	require.NoError(t, err)
	require.Len(t, prog, 1)
	p, ok := prog[0].(*ast.Print)
	require.True(t, ok)
	assert.Len(t, p.Vars, 2)
}

func TestUndefinedVariableIsRejected(t *testing.T) {
	src := `int x; x = y;`
	_, _, err := Parse("t.c", src)
	require.Error(t, err)
	se, ok := err.(*SemanticError)
	require.True(t, ok)
	assert.Equal(t, "E0001", se.Code)
}

func TestDuplicateDeclarationIsRejected(t *testing.T) {
	src := `int x; int x;`
	_, _, err := Parse("t.c", src)
	require.Error(t, err)
	se, ok := err.(*SemanticError)
	require.True(t, ok)
	assert.Equal(t, "E0002", se.Code)
}

func TestDivisionByZeroLiteralIsRejected(t *testing.T) {
	src := `int x; x = 1 / 0;`
	_, _, err := Parse("t.c", src)
	require.Error(t, err)
	se, ok := err.(*SemanticError)
	require.True(t, ok)
	assert.Equal(t, "E0006", se.Code)
}

func TestInvalidRandBoundsIsRejected(t *testing.T) {
	src := `int x; x = rand(10, 0);`
	_, _, err := Parse("t.c", src)
	require.Error(t, err)
	se, ok := err.(*SemanticError)
	require.True(t, ok)
	assert.Equal(t, "E0005", se.Code)
}

func TestOperatorPrecedenceAndAssociativity(t *testing.T) {
	src := `int x; x = 1 + 2 * 3 - 4 / 2;`
	_, prog, err := Parse("t.c", src)
	require.NoError(t, err)
	assign := prog[0].(*ast.Assign)
	// (1 + (2*3)) - (4/2) -> top is Sub
	bin, ok := assign.RHS.(*ast.IntBinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.Sub, bin.Op)
}

func TestBoolPrecedence(t *testing.T) {
	src := `int x; assert(x == 1 || x == 2 && x == 3);`
	_, prog, err := Parse("t.c", src)
	require.NoError(t, err)
	a := prog[0].(*ast.Assert)
	// top-level connective must be || (lowest precedence)
	or, ok := a.Cond.(*ast.BoolBinaryExpr)
	require.True(t, ok)
	assert.Equal(t, ast.Or, or.Op)
	_, rhsIsAnd := or.RHS.(*ast.BoolBinaryExpr)
	assert.True(t, rhsIsAnd)
}

func TestNestedBlockScoping(t *testing.T) {
	src := `
int x;
x = 0;
{
	int y;
	y = 1;
	print(x, y);
}
`
	decls, prog, err := Parse("t.c", src)
	require.NoError(t, err)
	require.Len(t, decls, 1)
	require.Len(t, prog, 2)
	block, ok := prog[1].(*ast.Block)
	require.True(t, ok)
	require.Len(t, block.Decls, 1)
	assert.Equal(t, "y", block.Decls[0].Name())
}

func TestSyntaxErrorIsReturnedAsParticipleError(t *testing.T) {
	src := `int x x = 1;`
	_, _, err := Parse("t.c", src)
	require.Error(t, err)
	_, isSemantic := err.(*SemanticError)
	assert.False(t, isSemantic)
}
