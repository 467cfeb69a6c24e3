// SPDX-License-Identifier: Apache-2.0

// Package report implements the Result Reporter (§4.6): it collects
// analysis-time diagnostics and prints them in stable source order once
// the fixpoint iterator finishes.
package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"absint/internal/ast"
)

// Kind is one of the four analysis-time diagnostic kinds (§7), or
// PrintOutput for the rendered output of a print statement.
type Kind int

const (
	DeadCode Kind = iota
	FailedAssert
	UnknownVariable
	IllegalOperation
	PrintOutput
)

func (k Kind) String() string {
	switch k {
	case DeadCode:
		return "DeadCode"
	case FailedAssert:
		return "FailedAssert"
	case UnknownVariable:
		return "UnknownVariable"
	case IllegalOperation:
		return "IllegalOperation"
	case PrintOutput:
		return "PrintOutput"
	default:
		return "Unknown"
	}
}

// Finding is one reported diagnostic, tied to the offending statement. Text
// carries the rendered variable bindings for a PrintOutput finding and is
// empty for every other Kind.
type Finding struct {
	Kind Kind
	Pos  ast.Position
	Stmt ast.Stmt
	Text string
}

// Report accumulates findings in the order they are observed, which —
// because the iterator walks the AST in source order and defers loop-body
// diagnostics to a single post-fixpoint pass — is also stable program
// source order (§4.6, §5).
type Report struct {
	findings []Finding
}

// New returns an empty Report.
func New() *Report { return &Report{} }

// Add records a finding.
func (r *Report) Add(kind Kind, pos ast.Position, stmt ast.Stmt) {
	r.findings = append(r.findings, Finding{Kind: kind, Pos: pos, Stmt: stmt})
}

// AddPrint records the rendered output of a print(vars) statement (§3's
// print operation); it is surfaced as a finding so both the CLI and the LSP
// driver can recover it from the same Report without a side channel.
func (r *Report) AddPrint(pos ast.Position, stmt ast.Stmt, text string) {
	r.findings = append(r.findings, Finding{Kind: PrintOutput, Pos: pos, Stmt: stmt, Text: text})
}

// Findings returns the accumulated findings in report order.
func (r *Report) Findings() []Finding { return r.findings }

// Len reports how many findings have been recorded.
func (r *Report) Len() int { return len(r.findings) }

// Print writes one block per finding to w, uncolored.
func (r *Report) Print(w io.Writer) {
	for _, f := range r.findings {
		if f.Kind == PrintOutput {
			fmt.Fprintf(w, "%s\n", f.Text)
			continue
		}
		fmt.Fprintf(w, "%s at %s in statement:\n%s\n\n", f.Kind, f.Pos, f.Stmt.String())
	}
}

// PrintColor is Print's CLI variant: findings are highlighted the way the
// command-line driver colors its other status lines.
func PrintColor(w io.Writer, r *Report) {
	if r.Len() == 0 {
		fmt.Fprintln(w, color.GreenString("no findings"))
		return
	}
	for _, f := range r.findings {
		if f.Kind == PrintOutput {
			fmt.Fprintln(w, color.CyanString(f.Text))
			continue
		}
		fmt.Fprintf(w, "%s at %s in statement:\n%s\n\n", color.RedString(f.Kind.String()), f.Pos, f.Stmt.String())
	}
}
