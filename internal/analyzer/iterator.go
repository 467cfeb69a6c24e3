// SPDX-License-Identifier: Apache-2.0
package analyzer

import (
	"absint/internal/ast"
	"absint/internal/domain"
	"absint/internal/nrdomain"
	"absint/internal/report"
)

// Iterator is the Fixpoint Iterator (§4.5), generic over which
// environment-domain representation G drives the analysis: nrdomain.Env for
// the plain non-relational run, or disjunctive.Disjunction when path
// sensitivity is requested.
type Iterator[G EnvDomain[G]] struct {
	// Unroll is the number of concrete loop iterations peeled before
	// widening starts (§4.5's unrolling phase).
	Unroll int
	// Delay postpones widening for this many ascending-phase steps once
	// unrolling is done, trading precision for extra iterations (§4.5).
	Delay int
	// MaxIter bounds the ascending phase; hitting it forces the §5
	// defence-in-depth guard. The descending phase is bounded by
	// NarrowRounds alone.
	MaxIter int
	// NarrowRounds bounds the descending/narrowing phase (§4.5 default 3).
	NarrowRounds int

	Report *report.Report

	silent bool
}

// New returns an Iterator configured with spec defaults; zero Unroll/Delay
// and NarrowRounds of 3 match §4.5 and §6.1's documented CLI defaults.
func New[G EnvDomain[G]](r *report.Report) *Iterator[G] {
	return &Iterator[G]{MaxIter: 100, NarrowRounds: 3, Report: r}
}

func (it *Iterator[G]) add(kind report.Kind, pos ast.Position, stmt ast.Stmt) {
	if !it.silent {
		it.Report.Add(kind, pos, stmt)
	}
}

// silently runs f with diagnostic recording suppressed, restoring the prior
// setting afterwards. The while-loop's internal unrolling/ascending/
// descending passes run silently; exactly one final pass over the loop body
// at the converged invariant runs recording, so nested diagnostics surface
// once instead of once per internal iteration.
func (it *Iterator[G]) silently(f func()) {
	prev := it.silent
	it.silent = true
	f()
	it.silent = prev
}

func classify(err error) report.Kind {
	switch err.(type) {
	case nrdomain.UnknownVariable:
		return report.UnknownVariable
	case domain.IllegalOperation:
		return report.IllegalOperation
	default:
		return report.IllegalOperation
	}
}

// Run drives the analysis over prog starting from Γ0 and returns the final
// environment (§4.5's top-level `eval(prog, Γ0)`).
func (it *Iterator[G]) Run(prog ast.Program, Γ0 G) G {
	return it.EvalStmts(Γ0, prog)
}

// EvalStmts threads Γ through stmts in order. Once Γ collapses to ⊥ every
// remaining statement in this list is unreachable and is flagged as such
// (§7's DeadCode), without being evaluated.
func (it *Iterator[G]) EvalStmts(Γ G, stmts []ast.Stmt) G {
	for _, s := range stmts {
		if Γ.IsBottom() {
			it.add(report.DeadCode, s.NodePos(), s)
			continue
		}
		Γ = it.evalStmt(Γ, s)
	}
	return Γ
}

func (it *Iterator[G]) evalStmt(Γ G, s ast.Stmt) G {
	switch n := s.(type) {
	case *ast.Block:
		return it.evalBlock(Γ, n)
	case *ast.Assign:
		return it.evalAssign(Γ, n)
	case *ast.If:
		return it.evalIf(Γ, n)
	case *ast.While:
		return it.evalWhile(Γ, n)
	case *ast.Halt:
		return Γ.AsBottom()
	case *ast.Assert:
		return it.evalAssert(Γ, n)
	case *ast.Print:
		return it.evalPrint(Γ, n)
	default:
		return Γ
	}
}

func (it *Iterator[G]) evalBlock(Γ G, b *ast.Block) G {
	for _, s := range b.Decls {
		Γ = Γ.AddVariable(s)
	}
	Γ = it.EvalStmts(Γ, b.Stmts)
	for _, s := range b.Decls {
		Γ = Γ.RemoveVariable(s)
	}
	return Γ
}

func (it *Iterator[G]) evalAssign(Γ G, s *ast.Assign) G {
	next, err := Γ.Assign(s.LHS, s.RHS)
	if err != nil {
		it.add(classify(err), s.Span.Start, s)
	}
	return next
}

// evalAssert narrows Γ to the states satisfying Cond (§4.5's "an assert is
// filter(Γ,b,true) plus a FailedAssert report when that collapses to ⊥").
func (it *Iterator[G]) evalAssert(Γ G, s *ast.Assert) G {
	next, err := it.filter(Γ, s.Cond, true)
	if err != nil {
		it.add(classify(err), s.Span.Start, s)
	}
	if !Γ.IsBottom() && next.IsBottom() {
		it.add(report.FailedAssert, s.Span.Start, s)
	}
	return next
}

func (it *Iterator[G]) evalPrint(Γ G, s *ast.Print) G {
	if Γ.IsBottom() {
		return Γ
	}
	text := ""
	for i, v := range s.Vars {
		if i > 0 {
			text += ", "
		}
		text += v.Name() + "=" + Γ.PrintVar(v)
	}
	if !it.silent {
		it.Report.AddPrint(s.Span.Start, s, text)
	}
	return Γ
}

// evalIf joins the two branches, each evaluated from the guard-filtered
// environment (§4.5).
func (it *Iterator[G]) evalIf(Γ G, s *ast.If) G {
	thenΓ, err := it.filter(Γ, s.Cond, true)
	if err != nil {
		it.add(classify(err), s.Span.Start, s)
	}
	thenΓ = it.evalStmt(thenΓ, s.Then)

	elseΓ, err := it.filter(Γ, s.Cond, false)
	if err != nil {
		it.add(classify(err), s.Span.Start, s)
	}
	if s.Otherwise != nil {
		elseΓ = it.evalStmt(elseΓ, s.Otherwise)
	}

	joined, err := thenΓ.Join(elseΓ)
	if err != nil {
		it.add(report.IllegalOperation, s.Span.Start, s)
		return Γ.AsBottom()
	}
	return joined
}

// evalWhile implements the four-phase while-loop protocol of §4.5:
// unrolling, delayed-widening ascending phase, narrowing descending phase,
// then exit through the negated guard. Every internal pass runs silent;
// exactly one final recording pass over the body surfaces nested
// diagnostics at the converged invariant.
func (it *Iterator[G]) evalWhile(Γ G, s *ast.While) G {
	// step computes one loop-body functional application F(x) = Γ ⊔ body(x),
	// always joining with the loop-entry environment Γ rather than the
	// current iterate x. This is what keeps prev ⊑ next true across the
	// ascending phase, and — critically — what makes the narrowing phase's
	// prev.Narrow(next) calls satisfy §4.2's next ⊑ prev precondition
	// instead of vacuously widening back out.
	step := func(x G) (G, error) {
		entered, err := it.filter(x, s.Cond, true)
		if err != nil {
			return entered, err
		}
		body := it.evalStmt(entered, s.Body)
		return Γ.Join(body)
	}

	var xstar G
	it.silently(func() {
		x := Γ
		for i := 0; i < it.Unroll; i++ {
			next, _ := step(x)
			x = next
		}

		prev := x
		exceeded := true
		for k := 0; k < it.MaxIter; k++ {
			next, _ := step(prev)
			if k < it.Delay {
				prev = next
				continue
			}
			widened, _ := prev.Widen(next)
			sub, _ := widened.Subset(prev)
			if sub {
				prev = widened
				exceeded = false
				break
			}
			prev = widened
		}
		if exceeded {
			// §5's max-iteration defence-in-depth guard: force every still-
			// unstable variable to ⊤. A simplified all-variables Topify
			// stands in for a per-variable forcing, since Value/Domain
			// expose no way to ask which bindings are still changing.
			prev = prev.Topify()
		}

		rounds := it.NarrowRounds
		for k := 0; k < rounds; k++ {
			next, _ := step(prev)
			narrowed, _ := prev.Narrow(next)
			prev = narrowed
		}
		xstar = prev
	})

	var finalErr error
	exited, err := it.filter(xstar, s.Cond, true)
	if err == nil {
		it.evalStmt(exited, s.Body) // one recording pass over the body
	} else {
		finalErr = err
	}
	if finalErr != nil {
		it.add(classify(finalErr), s.Span.Start, s)
	}

	out, err := it.filter(xstar, s.Cond, false)
	if err != nil {
		it.add(classify(err), s.Span.Start, s)
	}
	return out
}

// filter implements the guard-refinement recursion of §4.5: filter(Γ,b,sat)
// narrows Γ to the subset of states where b evaluates to sat.
func (it *Iterator[G]) filter(Γ G, b ast.BoolExpr, sat bool) (G, error) {
	if Γ.IsBottom() {
		return Γ, nil
	}
	switch n := b.(type) {
	case *ast.BoolConstExpr:
		if n.Val == sat {
			return Γ, nil
		}
		return Γ.AsBottom(), nil
	case *ast.BoolUnaryExpr: // Not
		return it.filter(Γ, n.Exp, !sat)
	case *ast.CompareExpr:
		op := n.Op
		if !sat {
			op = op.Negate()
		}
		return Γ.RefineCompare(n.LHS, op, n.RHS)
	case *ast.BoolBinaryExpr:
		switch n.Op {
		case ast.And:
			if sat {
				// Both operands are filtered independently from the
				// original Γ, then met: §4.5 requires a∧b and b∧a to agree,
				// which filtering the right from the left's own refinement
				// would break for interdependent guards (e.g. a<5 && b<a).
				l, lerr := it.filter(Γ, n.LHS, true)
				r, rerr := it.filter(Γ, n.RHS, true)
				met, merr := l.Meet(r)
				if merr != nil {
					return Γ.AsBottom(), merr
				}
				if lerr != nil {
					return met, lerr
				}
				return met, rerr
			}
			// !(L && R) == !L || !R: independent branches, joined.
			l, lerr := it.filter(Γ, n.LHS, false)
			r, rerr := it.filter(Γ, n.RHS, false)
			joined, jerr := l.Join(r)
			if jerr != nil {
				return Γ.AsBottom(), jerr
			}
			if lerr != nil {
				return joined, lerr
			}
			return joined, rerr
		case ast.Or:
			if sat {
				l, lerr := it.filter(Γ, n.LHS, true)
				r, rerr := it.filter(Γ, n.RHS, true)
				joined, jerr := l.Join(r)
				if jerr != nil {
					return Γ.AsBottom(), jerr
				}
				if lerr != nil {
					return joined, lerr
				}
				return joined, rerr
			}
			// !(L || R) == !L && !R: both operands filtered independently
			// from Γ, then met, mirroring the And/sat case above.
			l, lerr := it.filter(Γ, n.LHS, false)
			r, rerr := it.filter(Γ, n.RHS, false)
			met, merr := l.Meet(r)
			if merr != nil {
				return Γ.AsBottom(), merr
			}
			if lerr != nil {
				return met, lerr
			}
			return met, rerr
		}
	}
	return Γ, nil
}
