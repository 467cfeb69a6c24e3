// SPDX-License-Identifier: Apache-2.0
package domain

import (
	"sort"
	"strconv"
	"strings"

	"absint/internal/ast"
)

// concreteCard is the cardinality cap beyond which a ConcreteVal collapses
// to Top: this domain is a bounded finite-set baseline, not a general
// abstraction, so it must give up precision rather than grow unbounded.
const concreteCard = 32

// ConcreteVal is a value of the Concrete domain: ⊥, a finite sorted set of
// possible integers (size <= concreteCard), or ⊤.
type ConcreteVal struct {
	bottom bool
	top    bool
	vals   []int64 // sorted ascending, deduplicated; unused when bottom or top
}

func concreteSet(vals []int64) ConcreteVal {
	vals = sortDedup(vals)
	if len(vals) > concreteCard {
		return ConcreteVal{top: true}
	}
	if len(vals) == 0 {
		return ConcreteVal{bottom: true}
	}
	return ConcreteVal{vals: vals}
}

func sortDedup(vals []int64) []int64 {
	if len(vals) == 0 {
		return nil
	}
	cp := append([]int64(nil), vals...)
	sort.Slice(cp, func(i, j int) bool { return cp[i] < cp[j] })
	out := cp[:1]
	for _, v := range cp[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

func (v ConcreteVal) contains(n int64) bool {
	i := sort.Search(len(v.vals), func(i int) bool { return v.vals[i] >= n })
	return i < len(v.vals) && v.vals[i] == n
}

func (v ConcreteVal) IsBottom() bool { return v.bottom }
func (v ConcreteVal) IsTop() bool    { return v.top }

func (v ConcreteVal) Subset(rhs Value) bool {
	o := rhs.(ConcreteVal)
	if v.bottom {
		return true
	}
	if o.top {
		return true
	}
	if v.top || o.bottom {
		return false
	}
	for _, x := range v.vals {
		if !o.contains(x) {
			return false
		}
	}
	return true
}

func (v ConcreteVal) Join(rhs Value) Value {
	o := rhs.(ConcreteVal)
	if v.bottom {
		return o
	}
	if o.bottom {
		return v
	}
	if v.top || o.top {
		return ConcreteVal{top: true}
	}
	return concreteSet(append(append([]int64(nil), v.vals...), o.vals...))
}

func (v ConcreteVal) Meet(rhs Value) Value {
	o := rhs.(ConcreteVal)
	if v.bottom || o.bottom {
		return ConcreteVal{bottom: true}
	}
	if v.top {
		return o
	}
	if o.top {
		return v
	}
	var out []int64
	for _, x := range v.vals {
		if o.contains(x) {
			out = append(out, x)
		}
	}
	return concreteSet(out)
}

// Widen jumps straight to Top the moment the chain grows, since a finite
// enumeration has no gradual over-approximation to offer (§4.2's Concrete
// baseline trades precision for the simplest possible termination
// argument).
func (v ConcreteVal) Widen(rhs Value) Value {
	o := rhs.(ConcreteVal)
	if v.bottom {
		return o
	}
	if o.bottom {
		return v
	}
	if o.Subset(v) {
		return v
	}
	return ConcreteVal{top: true}
}

// Narrow replaces an uninformative Top with whatever the next, more precise
// iterate discovered; a already-finite set is kept as-is.
func (v ConcreteVal) Narrow(rhs Value) Value {
	o := rhs.(ConcreteVal)
	if v.bottom || o.bottom {
		return ConcreteVal{bottom: true}
	}
	if v.top {
		return o
	}
	return v
}

func (v ConcreteVal) Equal(rhs Value) bool {
	o := rhs.(ConcreteVal)
	if v.bottom || o.bottom {
		return v.bottom == o.bottom
	}
	if v.top || o.top {
		return v.top == o.top
	}
	if len(v.vals) != len(o.vals) {
		return false
	}
	for i := range v.vals {
		if v.vals[i] != o.vals[i] {
			return false
		}
	}
	return true
}

func (v ConcreteVal) String() string {
	if v.bottom {
		return "⊥"
	}
	if v.top {
		return "⊤"
	}
	parts := make([]string, len(v.vals))
	for i, x := range v.vals {
		parts[i] = strconv.FormatInt(x, 10)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// ConcreteDomain is the bounded finite-set value domain (§4.2, `-concrete`):
// a baseline against which the other domains' soundness can be sanity
// checked, since it tracks possible values directly rather than a shape.
type ConcreteDomain struct{}

func (ConcreteDomain) Name() string  { return "concrete" }
func (ConcreteDomain) Bottom() Value { return ConcreteVal{bottom: true} }
func (ConcreteDomain) Top() Value    { return ConcreteVal{top: true} }
func (ConcreteDomain) Const(n int64) Value {
	return ConcreteVal{vals: []int64{n}}
}

func (ConcreteDomain) Rand(lo, hi int64) Value {
	if hi-lo+1 > concreteCard {
		return ConcreteVal{top: true}
	}
	vals := make([]int64, 0, hi-lo+1)
	for n := lo; n <= hi; n++ {
		vals = append(vals, n)
	}
	return concreteSet(vals)
}

func (ConcreteDomain) Unary(op ast.IntUnaryOp, v Value) Value {
	c := v.(ConcreteVal)
	if c.bottom || c.top || op == ast.UnaryPlus {
		return c
	}
	out := make([]int64, len(c.vals))
	for i, x := range c.vals {
		out[i] = -x
	}
	return concreteSet(out)
}

func applyInt(op ast.IntBinaryOp, x, y int64) int64 {
	switch op {
	case ast.Add:
		return x + y
	case ast.Sub:
		return x - y
	case ast.Mul:
		return x * y
	default:
		return 0
	}
}

func (d ConcreteDomain) Binary(op ast.IntBinaryOp, a, b Value) (Value, error) {
	av, bv := a.(ConcreteVal), b.(ConcreteVal)
	if op == ast.Div || op == ast.Mod {
		return d.divMod(op, av, bv)
	}
	if av.bottom || bv.bottom {
		return ConcreteVal{bottom: true}, nil
	}
	if av.top || bv.top {
		return ConcreteVal{top: true}, nil
	}
	var out []int64
	for _, x := range av.vals {
		for _, y := range bv.vals {
			out = append(out, applyInt(op, x, y))
		}
	}
	return concreteSet(out), nil
}

func (d ConcreteDomain) divMod(op ast.IntBinaryOp, av, bv ConcreteVal) (Value, error) {
	if av.bottom || bv.bottom {
		return ConcreteVal{bottom: true}, nil
	}
	if bv.top {
		return ConcreteVal{top: true}, IllegalOperation{}
	}
	if av.top {
		if !bv.contains(0) {
			return ConcreteVal{top: true}, nil
		}
		if len(bv.vals) == 1 {
			return ConcreteVal{bottom: true}, IllegalOperation{}
		}
		return ConcreteVal{top: true}, IllegalOperation{}
	}
	sawZero := false
	var out []int64
	for _, y := range bv.vals {
		if y == 0 {
			sawZero = true
			continue
		}
		for _, x := range av.vals {
			if op == ast.Div {
				out = append(out, x/y)
			} else {
				out = append(out, x%y)
			}
		}
	}
	result := concreteSet(out)
	if sawZero {
		return result, IllegalOperation{}
	}
	return result, nil
}

func (d ConcreteDomain) Compare(op ast.CompareOp, a, b Value) (Value, Value) {
	av, bv := a.(ConcreteVal), b.(ConcreteVal)
	if av.bottom || bv.bottom {
		return ConcreteVal{bottom: true}, ConcreteVal{bottom: true}
	}
	if av.top || bv.top {
		return av, bv
	}
	var outA, outB []int64
	for _, x := range av.vals {
		for _, y := range bv.vals {
			if compareInt(op, x, y) {
				outA = append(outA, x)
				outB = append(outB, y)
			}
		}
	}
	return concreteSet(outA), concreteSet(outB)
}
