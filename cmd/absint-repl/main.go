// SPDX-License-Identifier: Apache-2.0

// Command absint-repl is an interactive console over repl.Start: each line
// typed is parsed as a list of declarations and statements and threaded
// through a persistent abstract environment (SPEC_FULL.md §0.1).
package main

import (
	"os"

	"absint/internal/domain"
	"absint/repl"
)

func main() {
	dom := domain.Domain(domain.IntervalDomain{})
	for _, a := range os.Args[1:] {
		switch a {
		case "-concrete":
			dom = domain.ConcreteDomain{}
		case "-constant":
			dom = domain.ConstantDomain{}
		case "-interval":
			dom = domain.IntervalDomain{}
		}
	}
	repl.Start(os.Stdin, os.Stdout, dom)
}
