// SPDX-License-Identifier: Apache-2.0

// Command absint is the CLI surface of spec.md §6.1: it picks a value
// domain, optionally wraps it in the disjunctive domain, parses a `.c`
// source file, runs the fixpoint iterator over it, and prints the
// reporter's findings. Grounded on the teacher's main.go / cmd/kanso-cli —
// manual os.Args walking and github.com/fatih/color status lines, no
// external flag-parsing framework.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"absint/internal/analyzer"
	"absint/internal/ast"
	"absint/internal/disjunctive"
	"absint/internal/domain"
	cerrors "absint/internal/errors"
	"absint/internal/frontend"
	"absint/internal/nrdomain"
	"absint/internal/report"
)

type config struct {
	domainName  string
	disjonctive bool
	unroll      int
	delay       int
	echoAST     bool
	path        string
}

func main() {
	cfg, err := parseArgs(os.Args[1:])
	if err != nil {
		color.Red("error: %s", err)
		usage()
		os.Exit(2)
	}

	source, err := os.ReadFile(cfg.path)
	if err != nil {
		color.Red("error: %s", err)
		os.Exit(1)
	}

	decls, prog, err := frontend.Parse(cfg.path, string(source))
	if err != nil {
		reportFrontendError(cfg.path, string(source), err)
		os.Exit(1)
	}

	if cfg.echoAST {
		fmt.Println(ast.PrintProgram(prog))
	}

	r := report.New()
	dom := selectDomain(cfg.domainName)

	if cfg.disjonctive {
		it := analyzer.New[disjunctive.Disjunction](r)
		it.Unroll, it.Delay = cfg.unroll, cfg.delay
		base := nrdomain.New(dom)
		for _, s := range decls {
			base = base.AddVariable(s)
		}
		it.Run(prog, disjunctive.FromEnv(base, disjunctive.DefaultCap))
	} else {
		it := analyzer.New[nrdomain.Env](r)
		it.Unroll, it.Delay = cfg.unroll, cfg.delay
		Γ0 := nrdomain.New(dom)
		for _, s := range decls {
			Γ0 = Γ0.AddVariable(s)
		}
		it.Run(prog, Γ0)
	}

	report.PrintColor(os.Stdout, r)
	os.Exit(0)
}

func selectDomain(name string) domain.Domain {
	switch name {
	case "concrete":
		return domain.ConcreteDomain{}
	case "constant":
		return domain.ConstantDomain{}
	default:
		return domain.IntervalDomain{}
	}
}

func parseArgs(args []string) (config, error) {
	cfg := config{domainName: "interval", unroll: 0, delay: 0}
	var positional []string
	seenDomain := false

	for i := 0; i < len(args); i++ {
		a := args[i]
		switch a {
		case "-concrete", "-constant", "-interval":
			if seenDomain {
				return cfg, fmt.Errorf("only one of -concrete/-constant/-interval may be given")
			}
			cfg.domainName = strings.TrimPrefix(a, "-")
			seenDomain = true
		case "-disjonctive":
			cfg.disjonctive = true
		case "-ast":
			cfg.echoAST = true
		case "-unroll":
			n, err := nextUint(args, &i)
			if err != nil {
				return cfg, fmt.Errorf("-unroll: %w", err)
			}
			cfg.unroll = n
		case "-delay":
			n, err := nextUint(args, &i)
			if err != nil {
				return cfg, fmt.Errorf("-delay: %w", err)
			}
			cfg.delay = n
		default:
			if strings.HasPrefix(a, "-") {
				return cfg, fmt.Errorf("unrecognized flag %q", a)
			}
			positional = append(positional, a)
		}
	}

	if len(positional) != 1 {
		return cfg, fmt.Errorf("expected exactly one <file>.c argument, got %d", len(positional))
	}
	if !strings.HasSuffix(positional[0], ".c") {
		return cfg, fmt.Errorf("input file %q must end in .c", positional[0])
	}
	cfg.path = positional[0]
	return cfg, nil
}

func nextUint(args []string, i *int) (int, error) {
	*i++
	if *i >= len(args) {
		return 0, fmt.Errorf("expected a numeric argument")
	}
	n, err := strconv.ParseUint(args[*i], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%q is not a u32", args[*i])
	}
	return int(n), nil
}

func usage() {
	fmt.Println("usage: absint [-concrete|-constant|-interval] [-disjonctive] [-unroll n] [-delay n] [-ast] <file>.c")
}

func reportFrontendError(path, source string, err error) {
	if se, ok := err.(*frontend.SemanticError); ok {
		er := cerrors.NewErrorReporter(path, source)
		fmt.Print(er.FormatError(se.CompilerError))
		return
	}
	frontend.ReportParseError(source, err)
}
