// SPDX-License-Identifier: Apache-2.0

// Package analyzer implements the Fixpoint Iterator (§4.5): it drives the
// analysis over the AST, calling into whichever environment domain (the
// non-relational nrdomain.Env or the path-sensitive disjunctive.Disjunction)
// was selected at run time, and reports violations to a report.Report.
package analyzer

import "absint/internal/ast"

// EnvDomain is the capability set the iterator needs from an environment
// domain (§4.5's "polymorphic over the environment-domain capability set").
// Both nrdomain.Env and disjunctive.Disjunction implement EnvDomain[Self].
type EnvDomain[G any] interface {
	IsBottom() bool
	AsBottom() G
	Subset(o G) (bool, error)
	Join(o G) (G, error)
	Meet(o G) (G, error)
	Widen(o G) (G, error)
	Narrow(o G) (G, error)
	AddVariable(s ast.Symbol) G
	RemoveVariable(s ast.Symbol) G
	Assign(s ast.Symbol, e ast.IntExpr) (G, error)
	RefineCompare(lhs ast.IntExpr, op ast.CompareOp, rhs ast.IntExpr) (G, error)
	Topify() G
	PrintVar(s ast.Symbol) string
	String() string
}
