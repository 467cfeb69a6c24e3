// SPDX-License-Identifier: Apache-2.0
package disjunctive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"absint/internal/ast"
	"absint/internal/domain"
	"absint/internal/nrdomain"
)

func sym(name string) ast.Symbol {
	return ast.NewSymbol(name, ast.Int, ast.Position{})
}

func envWith(dom domain.Domain, n int64) nrdomain.Env {
	e := nrdomain.New(dom).AddVariable(sym("x"))
	e, _ = e.Assign(sym("x"), &ast.IntConstExpr{Val: n})
	return e
}

func TestJoinUnionsDistinctDisjuncts(t *testing.T) {
	dom := domain.IntervalDomain{}
	a := FromEnv(envWith(dom, 1), DefaultCap)
	b := FromEnv(envWith(dom, 2), DefaultCap)
	j, err := a.Join(b)
	require.NoError(t, err)
	assert.Equal(t, "{x=1} | {x=2}", j.String())
}

func TestJoinDedupsSemanticallyEqualDisjuncts(t *testing.T) {
	dom := domain.IntervalDomain{}
	a := FromEnv(envWith(dom, 1), DefaultCap)
	b := FromEnv(envWith(dom, 1), DefaultCap)
	j, err := a.Join(b)
	require.NoError(t, err)
	assert.Equal(t, "{x=1}", j.String())
}

func TestJoinMergesPastCap(t *testing.T) {
	dom := domain.IntervalDomain{}
	d := New(dom, 2)
	for i := int64(1); i <= 3; i++ {
		d, _ = d.Join(FromEnv(envWith(dom, i), 2))
	}
	assert.LessOrEqual(t, len(d.disjuncts), 2)
}

func TestBottomIsEmptySet(t *testing.T) {
	dom := domain.IntervalDomain{}
	assert.True(t, New(dom, DefaultCap).IsBottom())
	assert.False(t, FromEnv(envWith(dom, 1), DefaultCap).IsBottom())
}

func TestAssignDistributesOverDisjuncts(t *testing.T) {
	dom := domain.IntervalDomain{}
	a := FromEnv(envWith(dom, 1), DefaultCap)
	b := FromEnv(envWith(dom, 2), DefaultCap)
	d, err := a.Join(b)
	require.NoError(t, err)

	next, err := d.Assign(sym("x"), &ast.IntBinaryExpr{Op: ast.Add, LHS: &ast.IntVarExpr{Var: sym("x")}, RHS: &ast.IntConstExpr{Val: 10}})
	require.NoError(t, err)
	assert.Equal(t, "{x=11} | {x=12}", next.String())
}

func TestSubsetAgainstUnion(t *testing.T) {
	dom := domain.IntervalDomain{}
	a := FromEnv(envWith(dom, 1), DefaultCap)
	b, err := a.Join(FromEnv(envWith(dom, 2), DefaultCap))
	require.NoError(t, err)
	ok, err := a.Subset(b)
	require.NoError(t, err)
	assert.True(t, ok)
}
