// SPDX-License-Identifier: Apache-2.0
package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"absint/internal/ast"
)

func TestConcreteJoinMeet(t *testing.T) {
	d := ConcreteDomain{}
	a := d.Rand(1, 3)
	b := d.Rand(2, 4)

	j := a.Join(b)
	assert.Equal(t, "{1, 2, 3, 4}", j.String())

	m := a.Meet(b)
	assert.Equal(t, "{2, 3}", m.String())
}

func TestConcreteCollapsesToTopBeyondCardinality(t *testing.T) {
	d := ConcreteDomain{}
	v := d.Rand(0, concreteCard)
	assert.True(t, v.IsTop())
}

func TestConcreteWidenJumpsToTopOnGrowth(t *testing.T) {
	d := ConcreteDomain{}
	prev := d.Const(1)
	next := d.Rand(1, 2)
	w := prev.Widen(next)
	assert.True(t, w.IsTop())
}

func TestConcreteWidenKeepsStableSet(t *testing.T) {
	d := ConcreteDomain{}
	prev := d.Rand(1, 3)
	w := prev.Widen(prev)
	assert.Equal(t, "{1, 2, 3}", w.String())
}

func TestConcreteDivisionFlagsPossibleZero(t *testing.T) {
	d := ConcreteDomain{}
	num := d.Const(10)
	divisor := d.Rand(0, 2)
	res, err := d.Binary(ast.Div, num, divisor)
	assert.Error(t, err)
	assert.Equal(t, "{5, 10}", res.String())
}

func TestConcreteDivisionByOnlyZeroIsBottom(t *testing.T) {
	d := ConcreteDomain{}
	num := d.Const(10)
	divisor := d.Const(0)
	res, err := d.Binary(ast.Div, num, divisor)
	assert.Error(t, err)
	assert.True(t, res.IsBottom())
}

func TestConcreteCompareFiltersPairs(t *testing.T) {
	d := ConcreteDomain{}
	a := d.Rand(1, 5)
	b := d.Rand(3, 3)
	ra, rb := d.Compare(ast.LT, a, b)
	assert.Equal(t, "{1, 2}", ra.String())
	assert.Equal(t, "{3}", rb.String())
}

func TestConcreteSubsetAndEqual(t *testing.T) {
	d := ConcreteDomain{}
	a := d.Rand(1, 3)
	b := d.Rand(1, 4)
	assert.True(t, a.Subset(b))
	assert.False(t, b.Subset(a))
	assert.True(t, a.Equal(d.Rand(1, 3)))
}
