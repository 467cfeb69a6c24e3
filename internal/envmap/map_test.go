// SPDX-License-Identifier: Apache-2.0
package envmap

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"absint/internal/ast"
)

func sym(name string) ast.Symbol {
	return ast.NewSymbol(name, ast.Int, ast.Position{})
}

func TestAddFindRemoveRoundTrip(t *testing.T) {
	m := New[int]()
	m = m.Add(sym("a"), 1)
	m = m.Add(sym("b"), 2)
	m = m.Add(sym("c"), 3)

	v, ok := m.Find(sym("b"))
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	removed := m.Remove(sym("b"))
	_, ok = removed.Find(sym("b"))
	assert.False(t, ok)

	// remove(add(m,k,v), k) == remove(m, k)
	base := New[int]().Add(sym("a"), 1).Add(sym("c"), 3)
	assert.ElementsMatch(t, keys(base), keys(removed))
}

func keys(m Map[int]) []string {
	var out []string
	m.Iter(func(s ast.Symbol, _ int) { out = append(out, s.Name()) })
	return out
}

func TestAddReplacesExistingValue(t *testing.T) {
	m := New[int]().Add(sym("a"), 1)
	m = m.Add(sym("a"), 42)
	v, ok := m.Find(sym("a"))
	assert.True(t, ok)
	assert.Equal(t, 42, v)
}

func TestAVLBalanceUnderSequentialInsertion(t *testing.T) {
	m := New[int]()
	names := "abcdefghijklmnopqrstuvwxyz"
	for i, c := range names {
		m = m.Add(ast.NewSymbol(string(c), ast.Int, ast.Position{}), i)
	}
	bad, ok := m.CheckBalance()
	assert.True(t, ok, "unbalanced at key %q", bad.Name())
}

func TestFoldVisitsAscendingKeyOrder(t *testing.T) {
	m := New[int]().Add(sym("c"), 3).Add(sym("a"), 1).Add(sym("b"), 2)
	var order []string
	m.Fold(0, func(k ast.Symbol, v, acc int) int {
		order = append(order, k.Name())
		return acc + v
	})
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestMap2ZRequiresIdenticalKeysets(t *testing.T) {
	a := New[int]().Add(sym("a"), 1).Add(sym("b"), 2)
	b := New[int]().Add(sym("a"), 1)

	_, err := a.Map2Z(b, func(x, y int) bool { return x == y }, func(x, y int) int { return x + y })
	var mism *KeysetMismatch
	assert.ErrorAs(t, err, &mism)
}

func TestMap2ZSkipsEqualValues(t *testing.T) {
	a := New[int]().Add(sym("a"), 1).Add(sym("b"), 2)
	b := New[int]().Add(sym("a"), 1).Add(sym("b"), 5)

	var called []string
	out, err := a.Map2Z(b,
		func(x, y int) bool { return x == y },
		func(x, y int) int {
			called = append(called, "f")
			return x + y
		},
	)
	assert.NoError(t, err)
	assert.Len(t, called, 1, "f should only be invoked for the differing key")

	va, _ := out.Find(sym("a"))
	vb, _ := out.Find(sym("b"))
	assert.Equal(t, 1, va)
	assert.Equal(t, 7, vb)
}

func TestMinMaxBinding(t *testing.T) {
	m := New[int]().Add(sym("m"), 1).Add(sym("a"), 2).Add(sym("z"), 3)
	minK, _, ok := m.MinBinding()
	assert.True(t, ok)
	assert.Equal(t, "a", minK.Name())

	maxK, _, ok := m.MaxBinding()
	assert.True(t, ok)
	assert.Equal(t, "z", maxK.Name())

	_, _, ok = New[int]().MinBinding()
	assert.False(t, ok)
}

func TestCutSplitsAroundKey(t *testing.T) {
	m := New[int]().Add(sym("a"), 1).Add(sym("b"), 2).Add(sym("c"), 3)
	left, found, right := m.Cut(sym("b"))

	assert.NotNil(t, found)
	assert.Equal(t, 2, *found)
	assert.True(t, left.Mem(sym("a")))
	assert.False(t, left.Mem(sym("b")))
	assert.True(t, right.Mem(sym("c")))
	assert.False(t, right.Mem(sym("b")))
}
