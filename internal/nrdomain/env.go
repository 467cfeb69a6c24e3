// SPDX-License-Identifier: Apache-2.0

// Package nrdomain implements the non-relational environment domain (§4.3):
// it lifts a single-variable Value Domain to a whole program environment by
// pointwise combination through the persistent Symbol-keyed map.
package nrdomain

import (
	"fmt"
	"sort"
	"strings"

	"absint/internal/ast"
	"absint/internal/domain"
	"absint/internal/envmap"
)

// UnknownVariable is returned when an expression references a symbol not
// present in the current environment (§4.3's assign contract).
type UnknownVariable struct {
	Sym ast.Symbol
}

func (e UnknownVariable) Error() string {
	return fmt.Sprintf("unknown variable %q", e.Sym.Name())
}

func isFatal(err error) bool {
	_, ok := err.(UnknownVariable)
	return ok
}

// Env is a non-relational abstract environment: a persistent Symbol -> D
// map, plus an explicit bottom flag. The engine canonicalises any state
// where one entry collapsed to bottom into full-environment bottom, so
// callers never observe a live map containing a bottom value.
type Env struct {
	dom    domain.Domain
	vals   envmap.Map[domain.Value]
	bottom bool
}

// New returns the empty, non-bottom environment over dom.
func New(dom domain.Domain) Env {
	return Env{dom: dom, vals: envmap.New[domain.Value]()}
}

// Bottom returns the distinguished unreachable environment over dom.
func Bottom(dom domain.Domain) Env {
	return Env{dom: dom, bottom: true}
}

func (e Env) Domain() domain.Domain { return e.dom }
func (e Env) IsBottom() bool        { return e.bottom }

// AsBottom returns ⊥ over the same underlying value domain as e.
func (e Env) AsBottom() Env { return Bottom(e.dom) }

// canonicalize collapses the whole environment to Bottom the moment any
// tracked variable's value is itself bottom.
func (e Env) canonicalize() Env {
	if e.bottom {
		return e
	}
	if !e.vals.ForAll(func(_ ast.Symbol, v domain.Value) bool { return !v.IsBottom() }) {
		return Bottom(e.dom)
	}
	return e
}

// AddVariable declares s as newly in scope, unconstrained (§4.3).
func (e Env) AddVariable(s ast.Symbol) Env {
	if e.bottom {
		return e
	}
	return Env{dom: e.dom, vals: e.vals.Add(s, e.dom.Top())}
}

// RemoveVariable takes s out of scope (§4.3, block exit).
func (e Env) RemoveVariable(s ast.Symbol) Env {
	if e.bottom {
		return e
	}
	return Env{dom: e.dom, vals: e.vals.Remove(s)}
}

// Eval evaluates an IntExpr in the environment, returning the abstract
// value plus a non-fatal IllegalOperation (value still usable) or a fatal
// UnknownVariable (value meaningless, caller must not use it).
func (e Env) Eval(expr ast.IntExpr) (domain.Value, error) {
	switch n := expr.(type) {
	case *ast.IntConstExpr:
		return e.dom.Const(n.Val), nil
	case *ast.IntVarExpr:
		v, ok := e.vals.Find(n.Var)
		if !ok {
			return e.dom.Bottom(), UnknownVariable{Sym: n.Var}
		}
		return v, nil
	case *ast.IntUnaryExpr:
		inner, err := e.Eval(n.Exp)
		if isFatal(err) {
			return e.dom.Bottom(), err
		}
		return e.dom.Unary(n.Op, inner), err
	case *ast.IntBinaryExpr:
		lv, lerr := e.Eval(n.LHS)
		if isFatal(lerr) {
			return e.dom.Bottom(), lerr
		}
		rv, rerr := e.Eval(n.RHS)
		if isFatal(rerr) {
			return e.dom.Bottom(), rerr
		}
		v, err := e.dom.Binary(n.Op, lv, rv)
		if err == nil {
			if lerr != nil {
				err = lerr
			} else {
				err = rerr
			}
		}
		return v, err
	case *ast.IntRandExpr:
		return e.dom.Rand(n.Lo, n.Hi), nil
	default:
		return e.dom.Top(), nil
	}
}

// Assign implements §4.3's assign(s, e): evaluate e, bind s to the result.
// A fatal UnknownVariable leaves the environment untouched, matching the
// iterator's "treat as unreachable, keep prior state" propagation policy.
// A non-fatal IllegalOperation is reported but the (possibly imprecise)
// result is still bound.
func (e Env) Assign(s ast.Symbol, expr ast.IntExpr) (Env, error) {
	if e.bottom {
		return e, nil
	}
	v, err := e.Eval(expr)
	if isFatal(err) {
		return e, err
	}
	next := Env{dom: e.dom, vals: e.vals.Add(s, v)}.canonicalize()
	return next, err
}

// RefineCompare implements the Compare leaf of the guard filter (§4.5):
// evaluate both sides from e, ask the domain to refine the pair, then
// back-propagate each refinement into its expression's identifier leaves.
func (e Env) RefineCompare(lhs ast.IntExpr, op ast.CompareOp, rhs ast.IntExpr) (Env, error) {
	if e.bottom {
		return e, nil
	}
	lv, lerr := e.Eval(lhs)
	if isFatal(lerr) {
		return e, lerr
	}
	rv, rerr := e.Eval(rhs)
	if isFatal(rerr) {
		return e, rerr
	}
	rlv, rrv := e.dom.Compare(op, lv, rv)

	next := e.refineLeaf(lhs, rlv)
	next = next.refineLeaf(rhs, rrv)
	next = next.canonicalize()

	err := lerr
	if err == nil {
		err = rerr
	}
	return next, err
}

// refineLeaf back-propagates a refined value into expr's identifier
// operands via inverse arithmetic for the operators that support it
// (negation, and add/sub/mul by a literal constant); anything else is left
// unrefined, which is always sound (§4.3).
func (e Env) refineLeaf(expr ast.IntExpr, refined domain.Value) Env {
	switch n := expr.(type) {
	case *ast.IntVarExpr:
		return e.meetVar(n.Var, refined)
	case *ast.IntUnaryExpr:
		if n.Op == ast.UnaryMinus {
			return e.refineLeaf(n.Exp, e.dom.Unary(ast.UnaryMinus, refined))
		}
		return e.refineLeaf(n.Exp, refined)
	case *ast.IntBinaryExpr:
		if lc, ok := n.RHS.(*ast.IntConstExpr); ok {
			if inv, ok := invertRight(e.dom, n.Op, refined, lc.Val); ok {
				return e.refineLeaf(n.LHS, inv)
			}
		}
		if lc, ok := n.LHS.(*ast.IntConstExpr); ok {
			if inv, ok := invertLeft(e.dom, n.Op, lc.Val, refined); ok {
				return e.refineLeaf(n.RHS, inv)
			}
		}
		return e
	default:
		return e
	}
}

// invertRight inverts `X op c` given the refined result, solving for X.
func invertRight(d domain.Domain, op ast.IntBinaryOp, refined domain.Value, c int64) (domain.Value, bool) {
	switch op {
	case ast.Add:
		v, err := d.Binary(ast.Sub, refined, d.Const(c))
		return v, err == nil
	case ast.Sub:
		v, err := d.Binary(ast.Add, refined, d.Const(c))
		return v, err == nil
	case ast.Mul:
		if c == 0 {
			return nil, false
		}
		v, err := d.Binary(ast.Div, refined, d.Const(c))
		return v, err == nil
	default:
		return nil, false
	}
}

// invertLeft inverts `c op X` given the refined result, solving for X.
func invertLeft(d domain.Domain, op ast.IntBinaryOp, c int64, refined domain.Value) (domain.Value, bool) {
	switch op {
	case ast.Add:
		v, err := d.Binary(ast.Sub, refined, d.Const(c))
		return v, err == nil
	case ast.Sub:
		v, err := d.Binary(ast.Sub, d.Const(c), refined)
		return v, err == nil
	case ast.Mul:
		if c == 0 {
			return nil, false
		}
		v, err := d.Binary(ast.Div, refined, d.Const(c))
		return v, err == nil
	default:
		return nil, false
	}
}

func (e Env) meetVar(s ast.Symbol, refined domain.Value) Env {
	cur, ok := e.vals.Find(s)
	if !ok {
		return e
	}
	return Env{dom: e.dom, vals: e.vals.Add(s, cur.Meet(refined))}
}

func eqVal(a, b domain.Value) bool { return a.Equal(b) }

// Subset tests e ⊑ o pointwise (§4.3).
func (e Env) Subset(o Env) (bool, error) {
	if e.bottom {
		return true, nil
	}
	if o.bottom {
		return false, nil
	}
	return e.vals.ForAll2Z(o.vals, func(_ ast.Symbol, a, b domain.Value) bool { return a.Subset(b) })
}

func (e Env) pointwise(o Env, f func(a, b domain.Value) domain.Value) (Env, error) {
	vals, err := e.vals.Map2Z(o.vals, eqVal, f)
	if err != nil {
		return e, err
	}
	return Env{dom: e.dom, vals: vals}.canonicalize(), nil
}

// Join computes e ⊔ o (§4.3, pointwise via map2z).
func (e Env) Join(o Env) (Env, error) {
	if e.bottom {
		return o, nil
	}
	if o.bottom {
		return e, nil
	}
	return e.pointwise(o, func(a, b domain.Value) domain.Value { return a.Join(b) })
}

// Meet computes e ⊓ o.
func (e Env) Meet(o Env) (Env, error) {
	if e.bottom || o.bottom {
		return Bottom(e.dom), nil
	}
	return e.pointwise(o, func(a, b domain.Value) domain.Value { return a.Meet(b) })
}

// Widen computes e ∇ o, e being the previous iterate.
func (e Env) Widen(o Env) (Env, error) {
	if e.bottom {
		return o, nil
	}
	if o.bottom {
		return e, nil
	}
	return e.pointwise(o, func(a, b domain.Value) domain.Value { return a.Widen(b) })
}

// Narrow computes e △ o.
func (e Env) Narrow(o Env) (Env, error) {
	if e.bottom || o.bottom {
		return Bottom(e.dom), nil
	}
	return e.pointwise(o, func(a, b domain.Value) domain.Value { return a.Narrow(b) })
}

// Topify forces every tracked variable to ⊤: the §5 defence-in-depth
// fallback when a loop exceeds its maximum iteration guard.
func (e Env) Topify() Env {
	if e.bottom {
		return e
	}
	return Env{dom: e.dom, vals: e.vals.MapValues(func(domain.Value) domain.Value { return e.dom.Top() })}
}

// ForEachVar visits every tracked binding in key order.
func (e Env) ForEachVar(f func(ast.Symbol, domain.Value)) {
	if e.bottom {
		return
	}
	e.vals.Iter(f)
}

// Equal is semantic equality: same reachability (both bottom, or every
// binding pairwise Value-equal).
func (e Env) Equal(o Env) bool {
	if e.bottom || o.bottom {
		return e.bottom == o.bottom
	}
	ok, err := e.vals.ForAll2Z(o.vals, func(_ ast.Symbol, a, b domain.Value) bool { return a.Equal(b) })
	if err != nil {
		return false
	}
	return ok
}

// PrintVar renders s's current abstract value (§4.3's print(s)).
func (e Env) PrintVar(s ast.Symbol) string {
	if e.bottom {
		return "⊥"
	}
	v, ok := e.vals.Find(s)
	if !ok {
		return "?"
	}
	return v.String()
}

// String renders every tracked binding as name=value, sorted by that
// rendered text, for debugging and tests.
func (e Env) String() string {
	if e.bottom {
		return "⊥"
	}
	var parts []string
	e.vals.Iter(func(s ast.Symbol, v domain.Value) {
		parts = append(parts, fmt.Sprintf("%s=%s", s.Name(), v.String()))
	})
	sort.Strings(parts)
	return "{" + strings.Join(parts, ", ") + "}"
}
