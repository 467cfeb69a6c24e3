// SPDX-License-Identifier: Apache-2.0

// Package domain implements the value-domain lattices of §4.2: Constant,
// Interval, and Concrete, each a lattice over subsets of a single
// variable's possible integer values. The iterator and the non-relational
// environment domain manipulate values only through the Value/Domain
// interfaces, so a new domain can be added without touching either (the
// CLI picks the concrete implementation at run time — dynamic dispatch is
// the intended strategy per the design's notes on run-time domain
// selection).
package domain

import "absint/internal/ast"

// Value is a single abstract element of some value domain. Every method
// that combines two values requires both to come from the same concrete
// domain; callers never mix Interval and Constant values.
type Value interface {
	IsBottom() bool
	IsTop() bool
	Subset(rhs Value) bool
	Join(rhs Value) Value
	Meet(rhs Value) Value
	Widen(rhs Value) Value
	Narrow(rhs Value) Value
	Equal(rhs Value) bool
	String() string
}

// IllegalOperation is surfaced by Binary when a division or modulo's
// divisor could not be proven nonzero, following the policy of §4.2: narrow
// the divisor to exclude zero first; report the hazard whenever zero was a
// possible divisor, continuing the analysis with the narrowed (nonzero)
// divisor when one remains, or with Bottom when the divisor was exactly
// {0}.
type IllegalOperation struct{}

func (IllegalOperation) Error() string { return "IllegalOperation" }

// Domain is the factory/namespace of operations that are not tied to one
// existing value: constructing bottom/top, literals, rand, and the
// forward/backward transfer functions for arithmetic and comparison.
type Domain interface {
	Name() string
	Bottom() Value
	Top() Value
	Const(n int64) Value
	Rand(lo, hi int64) Value
	Unary(op ast.IntUnaryOp, v Value) Value
	// Binary evaluates a binary arithmetic operator. err is non-nil (an
	// IllegalOperation) exactly when op is Div or Mod and zero could not be
	// excluded from the divisor's range.
	Binary(op ast.IntBinaryOp, a, b Value) (Value, error)
	// Compare returns refined (a', b') such that a' x b' is the subset of
	// a x b satisfying `a op b` (§4.2). Both may be Bottom together iff the
	// comparison is infeasible.
	Compare(op ast.CompareOp, a, b Value) (Value, Value)
}
