// SPDX-License-Identifier: Apache-2.0
package domain

import (
	"fmt"
	"math"

	"absint/internal/ast"
)

// bound is one endpoint of an interval over ℤ ∪ {-∞, +∞}.
type bound struct {
	inf int8 // -1 = -∞, 0 = finite, +1 = +∞
	v   int64
}

var negInf = bound{inf: -1}
var posInf = bound{inf: 1}

func finite(v int64) bound { return bound{v: v} }

func (b bound) isInf() bool { return b.inf != 0 }

func (b bound) less(o bound) bool {
	switch {
	case b.inf == -1:
		return o.inf != -1
	case o.inf == 1:
		return b.inf != 1
	case b.inf == 1:
		return false
	case o.inf == -1:
		return false
	default:
		return b.v < o.v
	}
}

func (b bound) lessEq(o bound) bool { return !o.less(b) }

func (b bound) equal(o bound) bool { return b.inf == o.inf && (b.inf != 0 || b.v == o.v) }

func minBound(a, b bound) bound {
	if a.less(b) {
		return a
	}
	return b
}

func maxBound(a, b bound) bound {
	if a.less(b) {
		return b
	}
	return a
}

func (b bound) String() string {
	switch b.inf {
	case -1:
		return "-inf"
	case 1:
		return "+inf"
	default:
		return fmt.Sprintf("%d", b.v)
	}
}

func (b bound) sign() int {
	switch {
	case b.inf != 0:
		return int(b.inf)
	case b.v > 0:
		return 1
	case b.v < 0:
		return -1
	default:
		return 0
	}
}

func (b bound) abs() bound {
	if b.inf != 0 {
		return posInf
	}
	if b.v < 0 {
		return finite(-b.v)
	}
	return b
}

func (b bound) neg() bound {
	switch b.inf {
	case -1:
		return posInf
	case 1:
		return negInf
	default:
		return finite(-b.v)
	}
}

// IntervalVal is a value of the Interval domain: ⊥, or [lo, hi] with
// lo <= hi over ℤ ∪ {-∞, +∞}.
type IntervalVal struct {
	bottom bool
	lo, hi bound
}

// ivTop is ℤ itself.
var ivTop = IntervalVal{lo: negInf, hi: posInf}
var ivBottom = IntervalVal{bottom: true}

func ivRange(lo, hi bound) IntervalVal {
	if hi.less(lo) {
		return ivBottom
	}
	return IntervalVal{lo: lo, hi: hi}
}

func (v IntervalVal) IsBottom() bool { return v.bottom }
func (v IntervalVal) IsTop() bool {
	return !v.bottom && v.lo.inf == -1 && v.hi.inf == 1
}

func (v IntervalVal) Subset(rhs Value) bool {
	o := rhs.(IntervalVal)
	if v.bottom {
		return true
	}
	if o.bottom {
		return false
	}
	return o.lo.lessEq(v.lo) && v.hi.lessEq(o.hi)
}

func (v IntervalVal) Join(rhs Value) Value {
	o := rhs.(IntervalVal)
	if v.bottom {
		return o
	}
	if o.bottom {
		return v
	}
	return ivRange(minBound(v.lo, o.lo), maxBound(v.hi, o.hi))
}

func (v IntervalVal) Meet(rhs Value) Value {
	o := rhs.(IntervalVal)
	if v.bottom || o.bottom {
		return ivBottom
	}
	return ivRange(maxBound(v.lo, o.lo), minBound(v.hi, o.hi))
}

// Widen drops any bound that kept moving in the chain to its infinity,
// guaranteeing the ascending sequence stabilises in at most two steps per
// bound (§4.2).
func (v IntervalVal) Widen(rhs Value) Value {
	o := rhs.(IntervalVal)
	if v.bottom {
		return o
	}
	if o.bottom {
		return v
	}
	lo := v.lo
	if o.lo.less(v.lo) {
		lo = negInf
	}
	hi := v.hi
	if v.hi.less(o.hi) {
		hi = posInf
	}
	return ivRange(lo, hi)
}

// Narrow tightens an infinite bound using the more precise operand's
// matching bound, per the classic narrowing operator; finite bounds of the
// receiver (already the best known) are kept (§4.2).
func (v IntervalVal) Narrow(rhs Value) Value {
	o := rhs.(IntervalVal)
	if v.bottom || o.bottom {
		return ivBottom
	}
	lo := v.lo
	if lo.inf == -1 {
		lo = o.lo
	}
	hi := v.hi
	if hi.inf == 1 {
		hi = o.hi
	}
	return ivRange(lo, hi)
}

func (v IntervalVal) Equal(rhs Value) bool {
	o := rhs.(IntervalVal)
	if v.bottom || o.bottom {
		return v.bottom == o.bottom
	}
	return v.lo.equal(o.lo) && v.hi.equal(o.hi)
}

func (v IntervalVal) String() string {
	if v.bottom {
		return "⊥"
	}
	if v.lo.inf == 0 && v.lo.equal(v.hi) {
		return v.lo.String()
	}
	return fmt.Sprintf("[%s, %s]", v.lo, v.hi)
}

// IntervalDomain is the interval value domain (§4.2, `-interval`, the
// default domain per §6.1).
type IntervalDomain struct{}

func (IntervalDomain) Name() string  { return "interval" }
func (IntervalDomain) Bottom() Value { return ivBottom }
func (IntervalDomain) Top() Value    { return ivTop }
func (IntervalDomain) Const(n int64) Value {
	return ivRange(finite(n), finite(n))
}
func (IntervalDomain) Rand(lo, hi int64) Value {
	return ivRange(finite(lo), finite(hi))
}

func (d IntervalDomain) Unary(op ast.IntUnaryOp, v Value) Value {
	iv := v.(IntervalVal)
	if iv.bottom || op == ast.UnaryPlus {
		return iv
	}
	return ivRange(iv.hi.neg(), iv.lo.neg())
}

func addBound(a, b bound) bound {
	if a.inf != 0 {
		return bound{inf: a.inf}
	}
	if b.inf != 0 {
		return bound{inf: b.inf}
	}
	sum := a.v + b.v
	if (b.v > 0 && sum < a.v) || (b.v < 0 && sum > a.v) {
		if b.v > 0 {
			return posInf
		}
		return negInf
	}
	return finite(sum)
}

func mulBound(a, b bound) bound {
	if a.inf == 0 && a.v == 0 {
		return finite(0)
	}
	if b.inf == 0 && b.v == 0 {
		return finite(0)
	}
	if a.inf != 0 || b.inf != 0 {
		s := a.sign() * b.sign()
		if s > 0 {
			return posInf
		}
		return negInf
	}
	hi, lo := math.MaxInt64, math.MinInt64
	p := a.v * b.v
	if a.v != 0 && p/a.v != b.v {
		if a.sign()*b.sign() > 0 {
			return finite(int64(hi))
		}
		return finite(int64(lo))
	}
	return finite(p)
}

func (d IntervalDomain) Binary(op ast.IntBinaryOp, a, b Value) (Value, error) {
	av, bv := a.(IntervalVal), b.(IntervalVal)
	if av.bottom || bv.bottom {
		return ivBottom, nil
	}
	switch op {
	case ast.Add:
		return ivRange(addBound(av.lo, bv.lo), addBound(av.hi, bv.hi)), nil
	case ast.Sub:
		return ivRange(addBound(av.lo, bv.hi.neg()), addBound(av.hi, bv.lo.neg())), nil
	case ast.Mul:
		corners := [4]bound{
			mulBound(av.lo, bv.lo), mulBound(av.lo, bv.hi),
			mulBound(av.hi, bv.lo), mulBound(av.hi, bv.hi),
		}
		lo, hi := corners[0], corners[0]
		for _, c := range corners[1:] {
			lo = minBound(lo, c)
			hi = maxBound(hi, c)
		}
		return ivRange(lo, hi), nil
	case ast.Div, ast.Mod:
		return d.divmod(op, av, bv)
	default:
		return ivTop, nil
	}
}

// divmod implements §4.2's divisor zero-exclusion policy: split the
// divisor into its negative and positive parts (dropping the zero point),
// compute the operation on each nonempty part, and join the results. The
// hazard is reported whenever the original divisor could be zero.
func (d IntervalDomain) divmod(op ast.IntBinaryOp, av, bv IntervalVal) (Value, error) {
	containsZero := bv.lo.lessEq(finite(0)) && finite(0).lessEq(bv.hi)
	neg := ivRange(bv.lo, minBound(bv.hi, finite(-1)))
	pos := ivRange(maxBound(bv.lo, finite(1)), bv.hi)

	if neg.bottom && pos.bottom {
		return ivBottom, IllegalOperation{}
	}

	var result IntervalVal
	first := true
	for _, part := range []IntervalVal{neg, pos} {
		if part.bottom {
			continue
		}
		var r IntervalVal
		if op == ast.Div {
			r = divPart(av, part)
		} else {
			r = modPart(av, part)
		}
		if first {
			result = r
			first = false
		} else {
			result = result.Join(r).(IntervalVal)
		}
	}
	if containsZero {
		return result, IllegalOperation{}
	}
	return result, nil
}

func divBoundPair(n, d bound) bound {
	if d.inf != 0 {
		return finite(0)
	}
	if n.inf != 0 {
		if n.sign()*d.sign() > 0 {
			return posInf
		}
		return negInf
	}
	return finite(n.v / d.v)
}

// divPart divides numerator by a divisor interval known not to contain 0,
// by taking the min/max over the four corner quotients.
func divPart(n, d IntervalVal) IntervalVal {
	corners := [4]bound{
		divBoundPair(n.lo, d.lo), divBoundPair(n.lo, d.hi),
		divBoundPair(n.hi, d.lo), divBoundPair(n.hi, d.hi),
	}
	lo, hi := corners[0], corners[0]
	for _, c := range corners[1:] {
		lo = minBound(lo, c)
		hi = maxBound(hi, c)
	}
	return ivRange(lo, hi)
}

// modPart conservatively bounds n % d by the divisor's largest possible
// magnitude, refined by the numerator's known sign when available.
func modPart(n, d IntervalVal) IntervalVal {
	maxAbs := maxBound(d.lo.abs(), d.hi.abs())
	if maxAbs.inf != 0 {
		return ivTop
	}
	bound1 := maxAbs.v - 1
	lo, hi := -bound1, bound1
	if n.lo.inf == 0 && n.lo.v >= 0 {
		lo = 0
	}
	if n.hi.inf == 0 && n.hi.v <= 0 {
		hi = 0
	}
	return ivRange(finite(lo), finite(hi))
}

func (d IntervalDomain) Compare(op ast.CompareOp, a, b Value) (Value, Value) {
	av, bv := a.(IntervalVal), b.(IntervalVal)
	if av.bottom || bv.bottom {
		return ivBottom, ivBottom
	}
	switch op {
	case ast.EQ:
		m := av.Meet(bv).(IntervalVal)
		return m, m
	case ast.NE:
		// No sound refinement in general; only the all-singleton-equal
		// case is infeasible.
		if av.lo.equal(av.hi) && bv.lo.equal(bv.hi) && av.lo.equal(bv.lo) {
			return ivBottom, ivBottom
		}
		return av, bv
	case ast.LT:
		return ivRange(av.lo, minBound(av.hi, decBound(bv.hi))),
			ivRange(maxBound(bv.lo, incBound(av.lo)), bv.hi)
	case ast.LE:
		return ivRange(av.lo, minBound(av.hi, bv.hi)),
			ivRange(maxBound(bv.lo, av.lo), bv.hi)
	case ast.GT:
		a2, b2 := d.Compare(ast.LT, bv, av)
		return b2, a2
	case ast.GE:
		a2, b2 := d.Compare(ast.LE, bv, av)
		return b2, a2
	default:
		return av, bv
	}
}

func incBound(b bound) bound {
	if b.inf != 0 {
		return b
	}
	return finite(b.v + 1)
}

func decBound(b bound) bound {
	if b.inf != 0 {
		return b
	}
	return finite(b.v - 1)
}
