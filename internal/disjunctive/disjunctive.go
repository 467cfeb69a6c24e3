// SPDX-License-Identifier: Apache-2.0

// Package disjunctive implements the Disjunctive Domain (§4.4): a finite,
// capped set of non-relational environments joined lazily, recovering some
// path sensitivity across if/else joins that a single base environment
// would immediately merge away.
package disjunctive

import (
	"sort"
	"strings"

	"absint/internal/ast"
	"absint/internal/domain"
	"absint/internal/nrdomain"
)

// DefaultCap bounds the number of disjuncts kept live; it is the `-disjonctive`
// wrapper's only tunable and is not exposed on the CLI (§6.1 lists no flag
// for it), so every Disjunction built by the analyzer shares this cap.
const DefaultCap = 4

// Disjunction is ⊥ when disjuncts is empty; otherwise the represented set
// is the union of the (always non-bottom) environments it holds.
type Disjunction struct {
	dom       domain.Domain
	cap       int
	disjuncts []nrdomain.Env
}

// New returns ⊥ over dom with the given disjunct cap.
func New(dom domain.Domain, cap int) Disjunction {
	return Disjunction{dom: dom, cap: cap}
}

// FromEnv lifts a single base environment into a one-disjunct Disjunction.
func FromEnv(e nrdomain.Env, cap int) Disjunction {
	d := Disjunction{dom: e.Domain(), cap: cap}
	if !e.IsBottom() {
		d.disjuncts = []nrdomain.Env{e}
	}
	return d
}

func (d Disjunction) Domain() domain.Domain { return d.dom }
func (d Disjunction) IsBottom() bool        { return len(d.disjuncts) == 0 }

// AsBottom returns ⊥ with the same domain and cap as d.
func (d Disjunction) AsBottom() Disjunction { return Disjunction{dom: d.dom, cap: d.cap} }

func (d Disjunction) flatten() nrdomain.Env {
	if len(d.disjuncts) == 0 {
		return nrdomain.Bottom(d.dom)
	}
	acc := d.disjuncts[0]
	for _, e := range d.disjuncts[1:] {
		acc, _ = acc.Join(e)
	}
	return acc
}

func containsEqual(envs []nrdomain.Env, e nrdomain.Env) bool {
	for _, o := range envs {
		if o.Equal(e) {
			return true
		}
	}
	return false
}

// reduceToCap merges the pair whose join has the fewest ⊤ bindings (the
// first such pair on a tie), repeating until the disjunct count is back within cap
// (§4.4's "merge the pair with the smallest union" policy).
func reduceToCap(envs []nrdomain.Env, cap int) []nrdomain.Env {
	for len(envs) > cap && len(envs) > 1 {
		bestI, bestJ, bestCost := 0, 1, -1
		for i := 0; i < len(envs); i++ {
			for j := i + 1; j < len(envs); j++ {
				joined, err := envs[i].Join(envs[j])
				if err != nil {
					continue
				}
				cost := 0
				joined.ForEachVar(func(_ ast.Symbol, v domain.Value) {
					if v.IsTop() {
						cost++
					}
				})
				if bestCost == -1 || cost < bestCost {
					bestI, bestJ, bestCost = i, j, cost
				}
			}
		}
		merged, _ := envs[bestI].Join(envs[bestJ])
		next := make([]nrdomain.Env, 0, len(envs)-1)
		for k, e := range envs {
			if k == bestI {
				next = append(next, merged)
			} else if k != bestJ {
				next = append(next, e)
			}
		}
		envs = next
	}
	return envs
}

// Join is set union up to semantic equality, capped at d.cap (§4.4).
func (d Disjunction) Join(o Disjunction) (Disjunction, error) {
	union := append([]nrdomain.Env(nil), d.disjuncts...)
	for _, e := range o.disjuncts {
		if !containsEqual(union, e) {
			union = append(union, e)
		}
	}
	cap := d.cap
	if cap == 0 {
		cap = o.cap
	}
	return Disjunction{dom: d.dom, cap: cap, disjuncts: reduceToCap(union, cap)}, nil
}

// Meet distributes over disjuncts: the pairwise meets of every disjunct in
// d with every disjunct in o, dropping any that collapse to ⊥.
func (d Disjunction) Meet(o Disjunction) (Disjunction, error) {
	var out []nrdomain.Env
	for _, a := range d.disjuncts {
		for _, b := range o.disjuncts {
			m, err := a.Meet(b)
			if err == nil && !m.IsBottom() {
				out = append(out, m)
			}
		}
	}
	cap := d.cap
	if cap == 0 {
		cap = o.cap
	}
	return Disjunction{dom: d.dom, cap: cap, disjuncts: reduceToCap(out, cap)}, nil
}

func sortEnvs(envs []nrdomain.Env) []nrdomain.Env {
	out := append([]nrdomain.Env(nil), envs...)
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Widen and Narrow pair disjuncts one to one when both sides have the same
// count, matching them up after sorting each side by its rendered text; on
// a structural mismatch — which §4.4 leaves unaddressed, since
// the cap-driven merges on either side can change disjunct counts
// independently — both sides are flattened to a single environment first,
// trading path sensitivity for a result that is still sound.
func (d Disjunction) Widen(o Disjunction) (Disjunction, error) {
	if len(d.disjuncts) == 0 {
		return o, nil
	}
	if len(o.disjuncts) == 0 {
		return d, nil
	}
	if len(d.disjuncts) != len(o.disjuncts) {
		w, _ := d.flatten().Widen(o.flatten())
		return FromEnv(w, d.cap), nil
	}
	as, bs := sortEnvs(d.disjuncts), sortEnvs(o.disjuncts)
	out := make([]nrdomain.Env, 0, len(as))
	for i := range as {
		w, err := as[i].Widen(bs[i])
		if err == nil && !w.IsBottom() {
			out = append(out, w)
		}
	}
	return Disjunction{dom: d.dom, cap: d.cap, disjuncts: out}, nil
}

func (d Disjunction) Narrow(o Disjunction) (Disjunction, error) {
	if len(d.disjuncts) == 0 || len(o.disjuncts) == 0 {
		return Disjunction{dom: d.dom, cap: d.cap}, nil
	}
	if len(d.disjuncts) != len(o.disjuncts) {
		n, _ := d.flatten().Narrow(o.flatten())
		return FromEnv(n, d.cap), nil
	}
	as, bs := sortEnvs(d.disjuncts), sortEnvs(o.disjuncts)
	out := make([]nrdomain.Env, 0, len(as))
	for i := range as {
		n, err := as[i].Narrow(bs[i])
		if err == nil && !n.IsBottom() {
			out = append(out, n)
		}
	}
	return Disjunction{dom: d.dom, cap: d.cap, disjuncts: out}, nil
}

// Subset tests d ⊑ o: every disjunct of d must be covered by o's union.
func (d Disjunction) Subset(o Disjunction) (bool, error) {
	if len(d.disjuncts) == 0 {
		return true, nil
	}
	if len(o.disjuncts) == 0 {
		return false, nil
	}
	joined := o.flatten()
	for _, e := range d.disjuncts {
		ok, err := e.Subset(joined)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

func (d Disjunction) mapEach(f func(nrdomain.Env) nrdomain.Env) Disjunction {
	out := make([]nrdomain.Env, 0, len(d.disjuncts))
	for _, e := range d.disjuncts {
		n := f(e)
		if !n.IsBottom() {
			out = append(out, n)
		}
	}
	return Disjunction{dom: d.dom, cap: d.cap, disjuncts: out}
}

func (d Disjunction) AddVariable(s ast.Symbol) Disjunction {
	return d.mapEach(func(e nrdomain.Env) nrdomain.Env { return e.AddVariable(s) })
}

func (d Disjunction) RemoveVariable(s ast.Symbol) Disjunction {
	return d.mapEach(func(e nrdomain.Env) nrdomain.Env { return e.RemoveVariable(s) })
}

// Assign distributes the assignment over every disjunct. A fatal
// UnknownVariable is identical on every disjunct (same program point), so
// the first one found is returned and the Disjunction is left unchanged.
func (d Disjunction) Assign(s ast.Symbol, expr ast.IntExpr) (Disjunction, error) {
	out := make([]nrdomain.Env, 0, len(d.disjuncts))
	var reported error
	for _, e := range d.disjuncts {
		next, err := e.Assign(s, expr)
		if err != nil && reported == nil {
			reported = err
		}
		if !next.IsBottom() {
			out = append(out, next)
		}
	}
	return Disjunction{dom: d.dom, cap: d.cap, disjuncts: out}, reported
}

// RefineCompare distributes the guard's compare leaf over every disjunct.
func (d Disjunction) RefineCompare(lhs ast.IntExpr, op ast.CompareOp, rhs ast.IntExpr) (Disjunction, error) {
	out := make([]nrdomain.Env, 0, len(d.disjuncts))
	var reported error
	for _, e := range d.disjuncts {
		next, err := e.RefineCompare(lhs, op, rhs)
		if err != nil && reported == nil {
			reported = err
		}
		if !next.IsBottom() {
			out = append(out, next)
		}
	}
	return Disjunction{dom: d.dom, cap: d.cap, disjuncts: out}, reported
}

// Topify forces every disjunct to all-⊤; the resulting duplicates collapse
// naturally on the next Join.
func (d Disjunction) Topify() Disjunction {
	return d.mapEach(func(e nrdomain.Env) nrdomain.Env { return e.Topify() })
}

// PrintVar renders the join of s's value across every live disjunct.
func (d Disjunction) PrintVar(s ast.Symbol) string {
	return d.flatten().PrintVar(s)
}

func (d Disjunction) String() string {
	if len(d.disjuncts) == 0 {
		return "⊥"
	}
	parts := make([]string, len(d.disjuncts))
	for i, e := range d.disjuncts {
		parts[i] = e.String()
	}
	return strings.Join(parts, " | ")
}
