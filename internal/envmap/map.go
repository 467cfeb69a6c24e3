// SPDX-License-Identifier: Apache-2.0

// Package envmap implements the persistent, AVL-balanced ordered map keyed
// by ast.Symbol that backs the non-relational environment domain. Updates
// never mutate a tree in place: add/remove return a new root while every
// previously observed root stays valid, which is what lets the fixpoint
// iterator hold onto pre-guard environments and prior widening iterates
// cheaply (§4.1 of the design).
package envmap

import (
	"fmt"

	"absint/internal/ast"
)

// KeysetMismatch is returned by the key-aligned binary operators (Map2Z,
// Iter2Z, Fold2Z, ForAll2Z) when the two operands do not share an identical
// key set. Reaching it means the iterator handed two environments with
// different declared variables to the same lattice operation, which is a
// programming error in the core engine, not a user-facing condition.
type KeysetMismatch struct {
	Only1, Only2 ast.Symbol
}

func (e *KeysetMismatch) Error() string {
	return fmt.Sprintf("map keyset mismatch: %q present on one side only", onlyName(e))
}

func onlyName(e *KeysetMismatch) string {
	if e.Only1.Name() != "" {
		return e.Only1.Name()
	}
	return e.Only2.Name()
}

type entry[V any] struct {
	key   ast.Symbol
	value V
}

type node[V any] struct {
	key    ast.Symbol
	value  V
	left   *node[V]
	right  *node[V]
	height int
}

func height[V any](n *node[V]) int {
	if n == nil {
		return 0
	}
	return n.height
}

func newLeaf[V any](k ast.Symbol, v V) *node[V] {
	return &node[V]{key: k, value: v, height: 1}
}

// create rebuilds a node from a (possibly unbalanced-by-one) pair of
// children, recomputing height. Mirrors the `create` primitive of the
// standard functional AVL algebra.
func create[V any](l *node[V], k ast.Symbol, v V, r *node[V]) *node[V] {
	h := height(l)
	if hr := height(r); hr > h {
		h = hr
	}
	return &node[V]{key: k, value: v, left: l, right: r, height: h + 1}
}

// bal rebuilds a node from children whose heights differ by at most 3,
// performing a single or double rotation when they differ by more than 2
// to restore the AVL invariant |h(l) - h(r)| <= 2.
func bal[V any](l *node[V], k ast.Symbol, v V, r *node[V]) *node[V] {
	hl, hr := height(l), height(r)
	if hl > hr+2 {
		if height(l.left) >= height(l.right) {
			return create(l.left, l.key, l.value, create(l.right, k, v, r))
		}
		lr := l.right
		return create(
			create(l.left, l.key, l.value, lr.left),
			lr.key, lr.value,
			create(lr.right, k, v, r),
		)
	}
	if hr > hl+2 {
		if height(r.right) >= height(r.left) {
			return create(create(l, k, v, r.left), r.key, r.value, r.right)
		}
		rl := r.left
		return create(
			create(l, k, v, rl.left),
			rl.key, rl.value,
			create(rl.right, r.key, r.value, r.right),
		)
	}
	return create(l, k, v, r)
}

func find[V any](n *node[V], k ast.Symbol) (V, bool) {
	var zero V
	for n != nil {
		switch {
		case k.Less(n.key):
			n = n.left
		case n.key.Less(k):
			n = n.right
		default:
			return n.value, true
		}
	}
	return zero, false
}

func mem[V any](n *node[V], k ast.Symbol) bool {
	_, ok := find(n, k)
	return ok
}

func add[V any](n *node[V], k ast.Symbol, v V) *node[V] {
	if n == nil {
		return newLeaf(k, v)
	}
	switch {
	case k.Less(n.key):
		return bal(add(n.left, k, v), n.key, n.value, n.right)
	case n.key.Less(k):
		return bal(n.left, n.key, n.value, add(n.right, k, v))
	default:
		return create(n.left, k, v, n.right)
	}
}

func minBinding[V any](n *node[V]) (ast.Symbol, V) {
	for n.left != nil {
		n = n.left
	}
	return n.key, n.value
}

func removeMinBinding[V any](n *node[V]) *node[V] {
	if n.left == nil {
		return n.right
	}
	return bal(removeMinBinding(n.left), n.key, n.value, n.right)
}

// merge2 joins two subtrees known to be key-disjoint and ordered l < r into
// one, used when removing the root of a node that has both children.
func merge2[V any](l, r *node[V]) *node[V] {
	if l == nil {
		return r
	}
	if r == nil {
		return l
	}
	mk, mv := minBinding(r)
	return bal(l, mk, mv, removeMinBinding(r))
}

func remove[V any](n *node[V], k ast.Symbol) *node[V] {
	if n == nil {
		return nil
	}
	switch {
	case k.Less(n.key):
		return bal(remove(n.left, k), n.key, n.value, n.right)
	case n.key.Less(k):
		return bal(n.left, n.key, n.value, remove(n.right, k))
	default:
		return merge2(n.left, n.right)
	}
}

func iter[V any](n *node[V], f func(ast.Symbol, V)) {
	if n == nil {
		return
	}
	iter(n.left, f)
	f(n.key, n.value)
	iter(n.right, f)
}

// fold visits keys in ascending order, as required by §4.1.
func fold[V any](n *node[V], base V, f func(ast.Symbol, V, V) V) V {
	if n == nil {
		return base
	}
	acc := fold(n.left, base, f)
	acc = f(n.key, n.value, acc)
	return fold(n.right, acc, f)
}

func forAll[V any](n *node[V], pred func(ast.Symbol, V) bool) bool {
	if n == nil {
		return true
	}
	if !pred(n.key, n.value) {
		return false
	}
	return forAll(n.left, pred) && forAll(n.right, pred)
}

func toSorted[V any](n *node[V], out []entry[V]) []entry[V] {
	if n == nil {
		return out
	}
	out = toSorted(n.left, out)
	out = append(out, entry[V]{n.key, n.value})
	return toSorted(n.right, out)
}

// fromSorted rebuilds a balanced tree in O(n) from a slice already ordered
// by key, used by the binary key-aligned operators which flatten both
// operands once rather than re-running rotation logic entry by entry.
func fromSorted[V any](entries []entry[V]) *node[V] {
	if len(entries) == 0 {
		return nil
	}
	mid := len(entries) / 2
	e := entries[mid]
	return create(fromSorted(entries[:mid]), e.key, e.value, fromSorted(entries[mid+1:]))
}

func mapValues[V any](n *node[V], f func(V) V) *node[V] {
	if n == nil {
		return nil
	}
	return &node[V]{
		key:    n.key,
		value:  f(n.value),
		left:   mapValues(n.left, f),
		right:  mapValues(n.right, f),
		height: n.height,
	}
}

func mapWithKey[V any](n *node[V], f func(ast.Symbol, V) V) *node[V] {
	if n == nil {
		return nil
	}
	return &node[V]{
		key:    n.key,
		value:  f(n.key, n.value),
		left:   mapWithKey(n.left, f),
		right:  mapWithKey(n.right, f),
		height: n.height,
	}
}

func filter[V any](n *node[V], pred func(ast.Symbol, V) bool) []entry[V] {
	var out []entry[V]
	var walk func(*node[V])
	walk = func(n *node[V]) {
		if n == nil {
			return
		}
		walk(n.left)
		if pred(n.key, n.value) {
			out = append(out, entry[V]{n.key, n.value})
		}
		walk(n.right)
	}
	walk(n)
	return out
}

// Map is a persistent, AVL-balanced map from ast.Symbol to V.
type Map[V any] struct {
	root *node[V]
}

// New returns the empty map.
func New[V any]() Map[V] { return Map[V]{} }

// Singleton returns a map containing exactly one binding.
func Singleton[V any](k ast.Symbol, v V) Map[V] {
	return Map[V]{root: newLeaf(k, v)}
}

// IsEmpty reports whether the map has no bindings.
func (m Map[V]) IsEmpty() bool { return m.root == nil }

// Len returns the number of bindings. O(n); intended for diagnostics/tests,
// not the hot analysis path.
func (m Map[V]) Len() int {
	n := 0
	iter(m.root, func(ast.Symbol, V) { n++ })
	return n
}

// Mem reports whether key is bound.
func (m Map[V]) Mem(key ast.Symbol) bool { return mem(m.root, key) }

// Find looks up key, in O(log n).
func (m Map[V]) Find(key ast.Symbol) (V, bool) { return find(m.root, key) }

// Add returns a new map with key bound to value, replacing any prior
// binding. The receiver is left untouched.
func (m Map[V]) Add(key ast.Symbol, value V) Map[V] {
	return Map[V]{root: add(m.root, key, value)}
}

// Remove returns a new map without key. A missing key is a no-op.
func (m Map[V]) Remove(key ast.Symbol) Map[V] {
	return Map[V]{root: remove(m.root, key)}
}

// Iter visits every binding exactly once; the order is unspecified.
func (m Map[V]) Iter(f func(ast.Symbol, V)) { iter(m.root, f) }

// Fold reduces over the bindings in ascending key order.
func (m Map[V]) Fold(base V, f func(ast.Symbol, V, V) V) V {
	return fold(m.root, base, f)
}

// ForAll reports whether pred holds for every binding, short-circuiting on
// the first failure.
func (m Map[V]) ForAll(pred func(ast.Symbol, V) bool) bool {
	return forAll(m.root, pred)
}

// Filter returns a new map retaining only the bindings for which pred holds.
func (m Map[V]) Filter(pred func(ast.Symbol, V) bool) Map[V] {
	return Map[V]{root: fromSorted(filter(m.root, pred))}
}

// MapValues returns a new map with f applied to every value.
func (m Map[V]) MapValues(f func(V) V) Map[V] {
	return Map[V]{root: mapValues(m.root, f)}
}

// MapWithKey returns a new map with f applied to every (key, value) pair.
func (m Map[V]) MapWithKey(f func(ast.Symbol, V) V) Map[V] {
	return Map[V]{root: mapWithKey(m.root, f)}
}

// MinBinding returns the smallest-keyed binding, if any.
func (m Map[V]) MinBinding() (ast.Symbol, V, bool) {
	if m.root == nil {
		var z V
		return ast.Symbol{}, z, false
	}
	k, v := minBinding(m.root)
	return k, v, true
}

// MaxBinding returns the largest-keyed binding, if any.
func (m Map[V]) MaxBinding() (ast.Symbol, V, bool) {
	if m.root == nil {
		var z V
		return ast.Symbol{}, z, false
	}
	n := m.root
	for n.right != nil {
		n = n.right
	}
	return n.key, n.value, true
}

// Cut splits the map into the bindings strictly below key, the value bound
// to key (if any), and the bindings strictly above, in O(log n).
func (m Map[V]) Cut(key ast.Symbol) (Map[V], *V, Map[V]) {
	left, found, right := cut(m.root, key)
	return Map[V]{root: left}, found, Map[V]{root: right}
}

func cut[V any](n *node[V], key ast.Symbol) (*node[V], *V, *node[V]) {
	if n == nil {
		return nil, nil, nil
	}
	switch {
	case key.Less(n.key):
		l, found, r := cut(n.left, key)
		return l, found, bal(r, n.key, n.value, n.right)
	case n.key.Less(key):
		l, found, r := cut(n.right, key)
		return bal(n.left, n.key, n.value, l), found, r
	default:
		v := n.value
		return n.left, &v, n.right
	}
}

func mergedSorted[V any](a, b Map[V]) ([]entry[V], []entry[V]) {
	return toSorted(a.root, nil), toSorted(b.root, nil)
}

func keysetMismatch[V any](as, bs []entry[V]) *KeysetMismatch {
	i, j := 0, 0
	for i < len(as) && j < len(bs) {
		switch {
		case as[i].key.Less(bs[j].key):
			return &KeysetMismatch{Only1: as[i].key}
		case bs[j].key.Less(as[i].key):
			return &KeysetMismatch{Only2: bs[j].key}
		default:
			i++
			j++
		}
	}
	if i < len(as) {
		return &KeysetMismatch{Only1: as[i].key}
	}
	if j < len(bs) {
		return &KeysetMismatch{Only2: bs[j].key}
	}
	return nil
}

// Map2Z combines two maps with identical key sets pointwise. When eq(a, b)
// holds for a key, f is not invoked and the left value is kept unchanged
// (the "z" = skip-on-equal optimization described in §4.1).
func (m Map[V]) Map2Z(other Map[V], eq func(a, b V) bool, f func(a, b V) V) (Map[V], error) {
	as, bs := mergedSorted(m, other)
	if mism := keysetMismatch(as, bs); mism != nil {
		return Map[V]{}, mism
	}
	out := make([]entry[V], len(as))
	for i := range as {
		if eq(as[i].value, bs[i].value) {
			out[i] = as[i]
			continue
		}
		out[i] = entry[V]{key: as[i].key, value: f(as[i].value, bs[i].value)}
	}
	return Map[V]{root: fromSorted(out)}, nil
}

// Iter2Z walks two key-aligned maps in ascending key order, skipping keys
// where eq holds.
func (m Map[V]) Iter2Z(other Map[V], eq func(a, b V) bool, f func(ast.Symbol, a, b V)) error {
	as, bs := mergedSorted(m, other)
	if mism := keysetMismatch(as, bs); mism != nil {
		return mism
	}
	for i := range as {
		if eq(as[i].value, bs[i].value) {
			continue
		}
		f(as[i].key, as[i].value, bs[i].value)
	}
	return nil
}

// Fold2Z reduces over two key-aligned maps in ascending key order, skipping
// keys where eq holds (the accumulator is threaded through unchanged for
// those keys).
func (m Map[V]) Fold2Z(other Map[V], base V, eq func(a, b V) bool, f func(k ast.Symbol, a, b, acc V) V) (V, error) {
	as, bs := mergedSorted(m, other)
	if mism := keysetMismatch(as, bs); mism != nil {
		return base, mism
	}
	acc := base
	for i := range as {
		if eq(as[i].value, bs[i].value) {
			continue
		}
		acc = f(as[i].key, as[i].value, bs[i].value, acc)
	}
	return acc, nil
}

// ForAll2Z reports whether pred holds for every key-aligned pair, short
// circuiting on the first failure.
func (m Map[V]) ForAll2Z(other Map[V], pred func(k ast.Symbol, a, b V) bool) (bool, error) {
	as, bs := mergedSorted(m, other)
	if mism := keysetMismatch(as, bs); mism != nil {
		return false, mism
	}
	for i := range as {
		if !pred(as[i].key, as[i].value, bs[i].value) {
			return false, nil
		}
	}
	return true, nil
}

// Height reports the root's recorded height, exposed so tests can assert
// the AVL balance invariant |h(left) - h(right)| <= 2.
func (m Map[V]) Height() int { return height(m.root) }

func (n *node[V]) leftHeight() int  { return height(n.left) }
func (n *node[V]) rightHeight() int { return height(n.right) }

// CheckBalance walks the tree root first and reports the first node it
// meets at which the AVL invariant is violated, or ok=true if none is found. Used only by
// tests; the production code never needs to audit its own invariant.
func (m Map[V]) CheckBalance() (sym ast.Symbol, ok bool) {
	var bad ast.Symbol
	good := true
	var walk func(*node[V])
	walk = func(n *node[V]) {
		if n == nil || !good {
			return
		}
		d := n.leftHeight() - n.rightHeight()
		if d > 2 || d < -2 {
			bad = n.key
			good = false
			return
		}
		walk(n.left)
		walk(n.right)
	}
	walk(m.root)
	return bad, good
}
