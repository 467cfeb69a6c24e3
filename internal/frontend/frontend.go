// SPDX-License-Identifier: Apache-2.0
package frontend

import "absint/internal/ast"

// Parse runs the full front end: lex+parse source into a grammar.Program,
// then build the core AST and top-level symbol list out of it. A syntax
// error is returned as-is (a participle.Error); a semantic error is
// returned as a *SemanticError. Both are "surfaced as-is; analysis does not
// start" per spec.md §7.
func Parse(filename, source string) ([]ast.Symbol, ast.Program, error) {
	tree, err := ParseSource(filename, source)
	if err != nil {
		return nil, nil, err
	}
	return Build(tree)
}
