// SPDX-License-Identifier: Apache-2.0
package frontend

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/fatih/color"
)

var programParser = participle.MustBuild[Program](
	participle.Lexer(cLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(3),
)

// ParseSource parses source (attributed to filename for diagnostics) into a
// grammar-level Program. Parse errors are participle.Error values carrying a
// source position, as consumed by ReportParseError.
func ParseSource(filename, source string) (*Program, error) {
	return programParser.ParseString(filename, source)
}

// ParseFile reads path and parses it, grounded on the teacher's
// grammar.ParseFile (grammar/parser.go).
func ParseFile(path string) (*Program, error) {
	return programParser.ParseFile(path)
}

// ReportParseError prints a friendly caret-style parse error message,
// grounded on the teacher's cmd/kanso-cli/main.go reportParseError / identical
// helper in grammar/parser.go.
func ReportParseError(src string, err error) {
	pe, ok := err.(participle.Error)
	if !ok {
		color.Red("Unexpected error: %s", err)
		return
	}

	pos := pe.Position()
	lines := strings.Split(src, "\n")
	if pos.Line <= 0 || pos.Line > len(lines) {
		color.Red("Syntax error at unknown location: %s", err)
		return
	}

	line := lines[pos.Line-1]
	caret := strings.Repeat(" ", max0(pos.Column-1)) + "^"

	color.Red("Syntax error in %s at line %d, column %d:", pos.Filename, pos.Line, pos.Column)
	fmt.Println(line)
	color.HiRed(caret)
	fmt.Printf("-> %s\n", pe.Message())
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
