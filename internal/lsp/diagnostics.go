// SPDX-License-Identifier: Apache-2.0
package lsp

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"absint/internal/ast"
	cerrors "absint/internal/errors"
	"absint/internal/frontend"
	"absint/internal/report"
)

// convertFrontendError turns a frontend.Parse failure — either a
// participle.Error (syntax) or a *frontend.SemanticError (undefined
// variable, type mismatch, ...) — into the single diagnostic an editor
// should show, grounded on the teacher's ConvertParseErrors.
func convertFrontendError(source string, err error) []protocol.Diagnostic {
	if se, ok := err.(*frontend.SemanticError); ok {
		return []protocol.Diagnostic{compilerErrorToDiagnostic(se.CompilerError)}
	}

	pe, ok := err.(participle.Error)
	if !ok {
		return []protocol.Diagnostic{{
			Range:    zeroRange(),
			Severity: ptrSeverity(protocol.DiagnosticSeverityError),
			Source:   ptrString("absint"),
			Message:  err.Error(),
		}}
	}

	pos := pe.Position()
	line := uint32(max0(pos.Line - 1))
	col := uint32(max0(pos.Column - 1))
	return []protocol.Diagnostic{{
		Range: protocol.Range{
			Start: protocol.Position{Line: line, Character: col},
			End:   protocol.Position{Line: line, Character: col + 1},
		},
		Severity: ptrSeverity(protocol.DiagnosticSeverityError),
		Source:   ptrString("absint"),
		Message:  pe.Message(),
	}}
}

func compilerErrorToDiagnostic(c cerrors.CompilerError) protocol.Diagnostic {
	line := uint32(max0(c.Position.Line - 1))
	col := uint32(max0(c.Position.Column - 1))
	length := c.Length
	if length < 1 {
		length = 1
	}

	severity := protocol.DiagnosticSeverityError
	if c.Level == cerrors.Warning {
		severity = protocol.DiagnosticSeverityWarning
	}

	message := c.Message
	if len(c.Suggestions) > 0 {
		hints := make([]string, len(c.Suggestions))
		for i, s := range c.Suggestions {
			hints[i] = s.Message
		}
		message += " (" + strings.Join(hints, "; ") + ")"
	}

	message = "[" + c.Code + "] " + message

	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: line, Character: col},
			End:   protocol.Position{Line: line, Character: col + uint32(length)},
		},
		Severity: ptrSeverity(severity),
		Source:   ptrString("absint"),
		Message:  message,
	}
}

// ConvertFindings turns a completed analysis's report.Finding slice into
// diagnostics. PrintOutput findings are not problems and are skipped; the
// rest map one-to-one onto the offending statement's span.
func ConvertFindings(findings []report.Finding) []protocol.Diagnostic {
	diagnostics := make([]protocol.Diagnostic, 0, len(findings))
	for _, f := range findings {
		if f.Kind == report.PrintOutput {
			continue
		}
		diagnostics = append(diagnostics, findingToDiagnostic(f))
	}
	return diagnostics
}

func findingToDiagnostic(f report.Finding) protocol.Diagnostic {
	start := posToLSP(f.Stmt.NodePos())
	end := posToLSP(f.Stmt.NodeEndPos())
	if end == start {
		end.Character++
	}

	severity := protocol.DiagnosticSeverityError
	if f.Kind == report.DeadCode {
		severity = protocol.DiagnosticSeverityWarning
	}

	return protocol.Diagnostic{
		Range:    protocol.Range{Start: start, End: end},
		Severity: ptrSeverity(severity),
		Source:   ptrString("absint"),
		Message:  f.Kind.String() + ": " + f.Stmt.String(),
	}
}

func posToLSP(p ast.Position) protocol.Position {
	return protocol.Position{Line: uint32(max0(p.Line - 1)), Character: uint32(max0(p.Column - 1))}
}

func zeroRange() protocol.Range {
	return protocol.Range{Start: protocol.Position{}, End: protocol.Position{Character: 1}}
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity { return &s }
func ptrString(s string) *string                                           { return &s }
