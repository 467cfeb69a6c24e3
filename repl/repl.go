// SPDX-License-Identifier: Apache-2.0

// Package repl is an interactive abstract-interpretation console. Grounded
// on the teacher's repl/repl.go (a bufio.Scanner prompt loop that parsed
// and pretty-printed one line at a time): here each line is parsed as a list
// of declarations and statements, after the variables declared on earlier
// lines, and threaded through a persistent nrdomain.Env, printing the
// resulting abstract state instead of a parse tree (SPEC_FULL.md §0.1).
package repl

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"absint/internal/analyzer"
	"absint/internal/ast"
	"absint/internal/domain"
	"absint/internal/frontend"
	"absint/internal/nrdomain"
	"absint/internal/report"
)

const PROMPT = ">> "

// Start runs the console loop over in, writing prompts and results to out.
// dom selects the value domain the session's environment is built over,
// matching the CLI's -concrete/-constant/-interval selection.
func Start(in io.Reader, out io.Writer, dom domain.Domain) {
	scanner := bufio.NewScanner(in)
	Γ := nrdomain.New(dom)
	known := map[string]ast.Symbol{}

	for {
		fmt.Fprint(out, PROMPT)
		if !scanner.Scan() {
			return
		}

		line := scanner.Text()
		// Earlier lines' variables are declared again ahead of the line so
		// its statements can name them; the loop below skips them as known.
		var prelude strings.Builder
		for _, s := range known {
			fmt.Fprintf(&prelude, "%s %s; ", s.Type(), s.Name())
		}
		decls, prog, err := frontend.Parse("<repl>", prelude.String()+line)
		if err != nil {
			fmt.Fprintf(out, "error: %s\n", err)
			continue
		}

		for _, s := range decls {
			if _, ok := known[s.Name()]; ok {
				continue
			}
			known[s.Name()] = s
			Γ = Γ.AddVariable(s)
		}

		r := report.New()
		it := analyzer.New[nrdomain.Env](r)
		Γ = it.Run(prog, Γ)

		report.PrintColor(out, r)
		fmt.Fprintf(out, "%s\n", Γ.String())
	}
}
