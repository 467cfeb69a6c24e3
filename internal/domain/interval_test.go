// SPDX-License-Identifier: Apache-2.0
package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"absint/internal/ast"
)

func TestIntervalJoinMeetLattice(t *testing.T) {
	d := IntervalDomain{}
	a := d.Rand(1, 5)
	b := d.Rand(3, 9)

	j := a.Join(b)
	assert.Equal(t, "[1, 9]", j.String())

	m := a.Meet(b)
	assert.Equal(t, "[3, 5]", m.String())

	assert.True(t, a.Subset(j))
	assert.True(t, b.Subset(j))
}

func TestIntervalWidenStabilisesToInfinity(t *testing.T) {
	d := IntervalDomain{}
	prev := d.Const(0)
	next := d.Rand(0, 1)
	w := prev.Widen(next)
	assert.Equal(t, "[0, +inf]", w.String())
}

func TestIntervalNarrowTightensFromInfinite(t *testing.T) {
	prev := IntervalVal{lo: negInf, hi: posInf}
	more := IntervalVal{lo: finite(-3), hi: finite(7)}
	n := prev.Narrow(more)
	assert.Equal(t, "[-3, 7]", n.String())
}

func TestIntervalDivisionExcludesZero(t *testing.T) {
	d := IntervalDomain{}
	num := d.Const(10)
	divisor := d.Rand(0, 3)
	res, err := d.Binary(ast.Div, num, divisor)
	assert.Error(t, err)
	assert.IsType(t, IllegalOperation{}, err)
	assert.False(t, res.IsBottom())
}

func TestIntervalDivisionByCertainZeroIsBottom(t *testing.T) {
	d := IntervalDomain{}
	num := d.Const(10)
	divisor := d.Const(0)
	res, err := d.Binary(ast.Div, num, divisor)
	assert.Error(t, err)
	assert.True(t, res.IsBottom())
}

func TestIntervalDivisionAwayFromZeroIsSafe(t *testing.T) {
	d := IntervalDomain{}
	num := d.Rand(1, 3)
	divisor := d.Const(5)
	res, err := d.Binary(ast.Div, num, divisor)
	assert.NoError(t, err)
	assert.False(t, res.IsBottom())
}

func TestIntervalCompareLTRefinesBothSides(t *testing.T) {
	d := IntervalDomain{}
	a := d.Rand(0, 10)
	b := d.Rand(0, 10)
	ra, rb := d.Compare(ast.LT, a, b)
	assert.Equal(t, "[0, 9]", ra.String())
	assert.Equal(t, "[1, 10]", rb.String())
}

func TestIntervalCompareInfeasibleIsBottom(t *testing.T) {
	d := IntervalDomain{}
	a := d.Const(5)
	b := d.Const(3)
	ra, rb := d.Compare(ast.LT, a, b)
	assert.True(t, ra.IsBottom())
	assert.True(t, rb.IsBottom())
}

func TestIntervalAddSubMul(t *testing.T) {
	d := IntervalDomain{}
	a := d.Rand(1, 2)
	b := d.Rand(3, 4)

	sum, _ := d.Binary(ast.Add, a, b)
	assert.Equal(t, "[4, 6]", sum.String())

	diff, _ := d.Binary(ast.Sub, a, b)
	assert.Equal(t, "[-3, -1]", diff.String())

	prod, _ := d.Binary(ast.Mul, a, b)
	assert.Equal(t, "[3, 8]", prod.String())
}

func TestIntervalUnaryMinus(t *testing.T) {
	d := IntervalDomain{}
	v := d.Rand(1, 5)
	neg := d.Unary(ast.UnaryMinus, v)
	assert.Equal(t, "[-5, -1]", neg.String())
}

func TestIntervalBottomAbsorbsJoin(t *testing.T) {
	d := IntervalDomain{}
	bot := d.Bottom()
	v := d.Rand(1, 5)
	assert.Equal(t, v.String(), bot.Join(v).String())
}
