// SPDX-License-Identifier: Apache-2.0

// Package frontend is the concrete-syntax front end the core analyzer
// treats as an external collaborator (spec §1): a participle-based
// lexer/parser that turns a `.c` source file into internal/ast nodes, plus
// the symbol-table construction the analyzer's environment needs before it
// can run. Grounded on the teacher's grammar/lexer.go and grammar/parser.go
// (github.com/alecthomas/participle/v2), generalized from Kanso's module
// grammar to this language's statements and expressions.
package frontend

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// cLexer tokenizes the small imperative language of spec.md §6.2: keywords
// (int, bool, if, else, while, assert, halt, print, rand, true, false) ride
// on the Ident token, exactly as the teacher's KansoLexer lets "module",
// "struct", "fun" ride on Ident — participle matches a quoted literal in a
// grammar tag against any token whose text equals it, not just a dedicated
// token type.
var cLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Operator", Pattern: `(\|\||&&|==|!=|<=|>=|[-+*/%!=<>(){};,])`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
})
