// SPDX-License-Identifier: Apache-2.0
package domain

import (
	"fmt"

	"absint/internal/ast"
)

// constKind distinguishes the three-point flat lattice {bottom, c, top}.
type constKind int

const (
	constBottom constKind = iota
	constExact
	constTop
)

// ConstVal is a value of the Constant domain: either no value, exactly one
// integer, or any integer.
type ConstVal struct {
	kind constKind
	c    int64
}

func (v ConstVal) IsBottom() bool { return v.kind == constBottom }
func (v ConstVal) IsTop() bool    { return v.kind == constTop }

func (v ConstVal) Subset(rhs Value) bool {
	o := rhs.(ConstVal)
	if v.kind == constBottom {
		return true
	}
	if o.kind == constTop {
		return true
	}
	if o.kind == constBottom {
		return false
	}
	return v.kind == constExact && v.c == o.c
}

func (v ConstVal) Join(rhs Value) Value {
	o := rhs.(ConstVal)
	switch {
	case v.kind == constBottom:
		return o
	case o.kind == constBottom:
		return v
	case v.kind == constTop || o.kind == constTop:
		return ConstVal{kind: constTop}
	case v.c == o.c:
		return v
	default:
		return ConstVal{kind: constTop}
	}
}

func (v ConstVal) Meet(rhs Value) Value {
	o := rhs.(ConstVal)
	switch {
	case v.kind == constBottom || o.kind == constBottom:
		return ConstVal{kind: constBottom}
	case v.kind == constTop:
		return o
	case o.kind == constTop:
		return v
	case v.c == o.c:
		return v
	default:
		return ConstVal{kind: constBottom}
	}
}

// Widen on a height-3 lattice needs no acceleration: join already stabilises
// in at most two steps, so widen is join.
func (v ConstVal) Widen(rhs Value) Value { return v.Join(rhs) }

// Narrow on this lattice cannot lose the soundness bracket b ⊑ c ⊑ a since
// meet already picks the tightest common element.
func (v ConstVal) Narrow(rhs Value) Value { return v.Meet(rhs) }

func (v ConstVal) Equal(rhs Value) bool {
	o := rhs.(ConstVal)
	return v.kind == o.kind && (v.kind != constExact || v.c == o.c)
}

func (v ConstVal) String() string {
	switch v.kind {
	case constBottom:
		return "⊥"
	case constTop:
		return "⊤"
	default:
		return fmt.Sprintf("%d", v.c)
	}
}

// ConstantDomain is the constant-propagation value domain (§4.2, `-constant`).
type ConstantDomain struct{}

func (ConstantDomain) Name() string  { return "constant" }
func (ConstantDomain) Bottom() Value { return ConstVal{kind: constBottom} }
func (ConstantDomain) Top() Value    { return ConstVal{kind: constTop} }
func (ConstantDomain) Const(n int64) Value {
	return ConstVal{kind: constExact, c: n}
}

func (d ConstantDomain) Rand(lo, hi int64) Value {
	if lo == hi {
		return d.Const(lo)
	}
	return ConstVal{kind: constTop}
}

func (ConstantDomain) Unary(op ast.IntUnaryOp, v Value) Value {
	c := v.(ConstVal)
	if c.kind != constExact {
		return c
	}
	if op == ast.UnaryMinus {
		return ConstVal{kind: constExact, c: -c.c}
	}
	return c
}

func (d ConstantDomain) Binary(op ast.IntBinaryOp, a, b Value) (Value, error) {
	av, bv := a.(ConstVal), b.(ConstVal)
	if op == ast.Div || op == ast.Mod {
		return constDivMod(op, av, bv)
	}
	if av.kind == constBottom || bv.kind == constBottom {
		return ConstVal{kind: constBottom}, nil
	}
	if av.kind != constExact || bv.kind != constExact {
		return ConstVal{kind: constTop}, nil
	}
	switch op {
	case ast.Add:
		return d.Const(av.c + bv.c), nil
	case ast.Sub:
		return d.Const(av.c - bv.c), nil
	case ast.Mul:
		return d.Const(av.c * bv.c), nil
	default:
		return ConstVal{kind: constTop}, nil
	}
}

// constDivMod implements the shared zero-exclusion policy for the constant
// domain: a divisor that is possibly zero (Top, or exactly 0) is flagged;
// an exactly-zero divisor yields Bottom (the statement is unreachable under
// that hypothesis), anything else computes as usual.
func constDivMod(op ast.IntBinaryOp, av, bv ConstVal) (Value, error) {
	if av.kind == constBottom || bv.kind == constBottom {
		return ConstVal{kind: constBottom}, nil
	}
	if bv.kind == constExact && bv.c == 0 {
		return ConstVal{kind: constBottom}, IllegalOperation{}
	}
	if bv.kind == constTop {
		// Top includes zero; the domain cannot exclude it, so flag the
		// hazard but keep analyzing with the (still imprecise) result.
		return ConstVal{kind: constTop}, IllegalOperation{}
	}
	if av.kind != constExact {
		return ConstVal{kind: constTop}, nil
	}
	if op == ast.Div {
		return ConstVal{kind: constExact, c: av.c / bv.c}, nil
	}
	return ConstVal{kind: constExact, c: av.c % bv.c}, nil
}

func (d ConstantDomain) Compare(op ast.CompareOp, a, b Value) (Value, Value) {
	av, bv := a.(ConstVal), b.(ConstVal)
	if av.kind == constBottom || bv.kind == constBottom {
		return ConstVal{kind: constBottom}, ConstVal{kind: constBottom}
	}
	if av.kind == constExact && bv.kind == constExact {
		if compareInt(op, av.c, bv.c) {
			return av, bv
		}
		return ConstVal{kind: constBottom}, ConstVal{kind: constBottom}
	}
	// At least one side is unconstrained: no refinement is sound beyond
	// EQ, where both collapse to the other's exact value when known.
	if op == ast.EQ {
		switch {
		case av.kind == constExact:
			return av, av
		case bv.kind == constExact:
			return bv, bv
		}
	}
	return av, bv
}

func compareInt(op ast.CompareOp, a, b int64) bool {
	switch op {
	case ast.EQ:
		return a == b
	case ast.NE:
		return a != b
	case ast.LT:
		return a < b
	case ast.LE:
		return a <= b
	case ast.GT:
		return a > b
	case ast.GE:
		return a >= b
	default:
		return false
	}
}
