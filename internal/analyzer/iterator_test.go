// SPDX-License-Identifier: Apache-2.0
package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"absint/internal/ast"
	"absint/internal/disjunctive"
	"absint/internal/domain"
	"absint/internal/nrdomain"
	"absint/internal/report"
)

func sym(name string) ast.Symbol { return ast.NewSymbol(name, ast.Int, ast.Position{}) }

func varExpr(s ast.Symbol) *ast.IntVarExpr    { return &ast.IntVarExpr{Var: s} }
func constExpr(n int64) *ast.IntConstExpr     { return &ast.IntConstExpr{Val: n} }
func cmp(op ast.CompareOp, l, r ast.IntExpr) *ast.CompareExpr {
	return &ast.CompareExpr{Op: op, LHS: l, RHS: r}
}

func newEnv(dom domain.Domain, vars ...ast.Symbol) nrdomain.Env {
	e := nrdomain.New(dom)
	for _, v := range vars {
		e = e.AddVariable(v)
	}
	return e
}

// TestAssignThenAssertNarrowsInterval covers a straight-line program:
// x = 5; assert(x == 5) must not report FailedAssert.
func TestAssignThenAssertNarrowsInterval(t *testing.T) {
	x := sym("x")
	r := report.New()
	it := New[nrdomain.Env](r)

	prog := ast.Program{
		&ast.Assign{LHS: x, RHS: constExpr(5)},
		&ast.Assert{Cond: cmp(ast.EQ, varExpr(x), constExpr(5))},
	}

	Γ0 := newEnv(domain.IntervalDomain{}, x)
	out := it.Run(prog, Γ0)

	assert.False(t, out.IsBottom())
	assert.Equal(t, 0, r.Len())
}

// TestFailedAssertIsReported covers an assignment whose asserted bound is
// unreachable, which must collapse to bottom and produce one FailedAssert.
func TestFailedAssertIsReported(t *testing.T) {
	x := sym("x")
	r := report.New()
	it := New[nrdomain.Env](r)

	prog := ast.Program{
		&ast.Assign{LHS: x, RHS: constExpr(5)},
		&ast.Assert{Cond: cmp(ast.EQ, varExpr(x), constExpr(6))},
	}

	Γ0 := newEnv(domain.ConstantDomain{}, x)
	out := it.Run(prog, Γ0)

	assert.True(t, out.IsBottom())
	require.Equal(t, 1, r.Len())
	assert.Equal(t, report.FailedAssert, r.Findings()[0].Kind)
}

// TestHaltMakesFollowingCodeDead verifies that statements after halt are
// flagged DeadCode and do not affect the result.
func TestHaltMakesFollowingCodeDead(t *testing.T) {
	x := sym("x")
	r := report.New()
	it := New[nrdomain.Env](r)

	prog := ast.Program{
		&ast.Halt{},
		&ast.Assign{LHS: x, RHS: constExpr(1)},
	}

	Γ0 := newEnv(domain.ConstantDomain{}, x)
	out := it.Run(prog, Γ0)

	assert.True(t, out.IsBottom())
	require.Equal(t, 1, r.Len())
	assert.Equal(t, report.DeadCode, r.Findings()[0].Kind)
}

// TestDivisionByPossiblyZeroReportsIllegalOperation exercises the §4.2
// zero-hazard policy through an assignment.
func TestDivisionByPossiblyZeroReportsIllegalOperation(t *testing.T) {
	x, y := sym("x"), sym("y")
	r := report.New()
	it := New[nrdomain.Env](r)

	prog := ast.Program{
		&ast.Assign{LHS: y, RHS: &ast.IntBinaryExpr{Op: ast.Div, LHS: constExpr(10), RHS: varExpr(x)}},
	}

	Γ0 := newEnv(domain.IntervalDomain{}, x, y)
	out := it.Run(prog, Γ0)

	assert.False(t, out.IsBottom())
	require.Equal(t, 1, r.Len())
	assert.Equal(t, report.IllegalOperation, r.Findings()[0].Kind)
}

// TestIfJoinsBothBranches: x = rand(0,1); if (x == 1) { y = 1 } else { y =
// 0 } must leave y imprecise (joined) but the environment reachable.
func TestIfJoinsBothBranches(t *testing.T) {
	x, y := sym("x"), sym("y")
	r := report.New()
	it := New[nrdomain.Env](r)

	prog := ast.Program{
		&ast.Assign{LHS: x, RHS: &ast.IntRandExpr{Lo: 0, Hi: 1}},
		&ast.Assign{LHS: y, RHS: constExpr(0)},
		&ast.If{
			Cond:      cmp(ast.EQ, varExpr(x), constExpr(1)),
			Then:      &ast.Assign{LHS: y, RHS: constExpr(1)},
			Otherwise: &ast.Assign{LHS: y, RHS: constExpr(0)},
		},
	}

	Γ0 := newEnv(domain.IntervalDomain{}, x, y)
	out := it.Run(prog, Γ0)

	assert.False(t, out.IsBottom())
	assert.Equal(t, 0, r.Len())
}

// TestWhileLoopTerminatesAndWidens runs: x = 0; while (x < 10) { x = x + 1 };
// assert(x >= 10) should hold once the loop's negated guard is applied.
func TestWhileLoopTerminatesAndWidens(t *testing.T) {
	x := sym("x")
	r := report.New()
	it := New[nrdomain.Env](r)

	prog := ast.Program{
		&ast.Assign{LHS: x, RHS: constExpr(0)},
		&ast.While{
			Cond: cmp(ast.LT, varExpr(x), constExpr(10)),
			Body: &ast.Assign{LHS: x, RHS: &ast.IntBinaryExpr{Op: ast.Add, LHS: varExpr(x), RHS: constExpr(1)}},
		},
		&ast.Assert{Cond: cmp(ast.GE, varExpr(x), constExpr(10))},
	}

	Γ0 := newEnv(domain.IntervalDomain{}, x)
	out := it.Run(prog, Γ0)

	assert.False(t, out.IsBottom())
	for _, f := range r.Findings() {
		assert.NotEqual(t, report.FailedAssert, f.Kind)
	}
}

// TestWhileLoopNarrowsAfterWiden covers the narrowing phase regaining the
// precision widening gave up: x=0; while(x<10){x=x+1;} y=100/(x-11) must not
// report IllegalOperation, since narrowing should settle x at exactly
// [10,10] rather than leaving it at the widened [10,+∞).
func TestWhileLoopNarrowsAfterWiden(t *testing.T) {
	x, y := sym("x"), sym("y")
	r := report.New()
	it := New[nrdomain.Env](r)

	prog := ast.Program{
		&ast.Assign{LHS: x, RHS: constExpr(0)},
		&ast.While{
			Cond: cmp(ast.LT, varExpr(x), constExpr(10)),
			Body: &ast.Assign{LHS: x, RHS: &ast.IntBinaryExpr{Op: ast.Add, LHS: varExpr(x), RHS: constExpr(1)}},
		},
		&ast.Assign{
			LHS: y,
			RHS: &ast.IntBinaryExpr{Op: ast.Div, LHS: constExpr(100), RHS: &ast.IntBinaryExpr{Op: ast.Sub, LHS: varExpr(x), RHS: constExpr(11)}},
		},
	}

	Γ0 := newEnv(domain.IntervalDomain{}, x, y)
	it.Run(prog, Γ0)

	for _, f := range r.Findings() {
		assert.NotEqual(t, report.IllegalOperation, f.Kind)
	}
}

// TestFilterAndIsCommutative checks a<5 && b<a and b<a && a<5 produce the
// same refinement — both operands of && must be filtered from the same
// original environment, not sequentially from a half-refined one.
func TestFilterAndIsCommutative(t *testing.T) {
	a, b := sym("a"), sym("b")
	it := New[nrdomain.Env](report.New())

	Γ0 := newEnv(domain.IntervalDomain{}, a, b)

	lhsFirst := &ast.BoolBinaryExpr{
		Op:  ast.And,
		LHS: cmp(ast.LT, varExpr(a), constExpr(5)),
		RHS: cmp(ast.LT, varExpr(b), varExpr(a)),
	}
	rhsFirst := &ast.BoolBinaryExpr{
		Op:  ast.And,
		LHS: cmp(ast.LT, varExpr(b), varExpr(a)),
		RHS: cmp(ast.LT, varExpr(a), constExpr(5)),
	}

	g1, err := it.filter(Γ0, lhsFirst, true)
	require.NoError(t, err)
	g2, err := it.filter(Γ0, rhsFirst, true)
	require.NoError(t, err)

	assert.Equal(t, g1.String(), g2.String())
}

// TestPrintRecordsRenderedBinding checks print(x) surfaces a PrintOutput
// finding carrying the variable's rendered abstract value.
func TestPrintRecordsRenderedBinding(t *testing.T) {
	x := sym("x")
	r := report.New()
	it := New[nrdomain.Env](r)

	prog := ast.Program{
		&ast.Assign{LHS: x, RHS: constExpr(7)},
		&ast.Print{Vars: []ast.Symbol{x}},
	}

	Γ0 := newEnv(domain.ConstantDomain{}, x)
	it.Run(prog, Γ0)

	require.Equal(t, 1, r.Len())
	assert.Equal(t, report.PrintOutput, r.Findings()[0].Kind)
	assert.Contains(t, r.Findings()[0].Text, "x=")
}

// TestDisjunctiveDomainSatisfiesEnvDomain is a compile-time-flavoured check
// that disjunctive.Disjunction drives the same Iterator as nrdomain.Env.
func TestDisjunctiveDomainSatisfiesEnvDomain(t *testing.T) {
	x := sym("x")
	r := report.New()
	it := New[disjunctive.Disjunction](r)

	prog := ast.Program{
		&ast.Assign{LHS: x, RHS: &ast.IntRandExpr{Lo: 0, Hi: 1}},
		&ast.If{
			Cond: cmp(ast.EQ, varExpr(x), constExpr(1)),
			Then: &ast.Assert{Cond: cmp(ast.EQ, varExpr(x), constExpr(1))},
		},
	}

	base := newEnv(domain.IntervalDomain{}, x)
	Γ0 := disjunctive.FromEnv(base, disjunctive.DefaultCap)
	out := it.Run(prog, Γ0)

	assert.False(t, out.IsBottom())
	for _, f := range r.Findings() {
		assert.NotEqual(t, report.FailedAssert, f.Kind)
	}
}
