// SPDX-License-Identifier: Apache-2.0
package lsp_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"absint/internal/lsp"
)

func TestAnalyzeReportsSyntaxError(t *testing.T) {
	diags := lsp.Analyze("<test>", "int x x = 1;\n")
	require.Len(t, diags, 1)
	require.Equal(t, protocol.DiagnosticSeverityError, *diags[0].Severity)
}

func TestAnalyzeReportsUndefinedVariable(t *testing.T) {
	diags := lsp.Analyze("<test>", "x = 1;\n")
	require.Len(t, diags, 1)
	require.Contains(t, diags[0].Message, "E0001")
	require.Contains(t, diags[0].Message, "undefined variable")
}

func TestAnalyzeReportsFailedAssert(t *testing.T) {
	diags := lsp.Analyze("<test>", "int x; x = 0; assert(x == 1);\n")
	require.Len(t, diags, 1)
	require.Contains(t, diags[0].Message, "FailedAssert")
}

func TestAnalyzeCleanProgramHasNoDiagnostics(t *testing.T) {
	diags := lsp.Analyze("<test>", "int x; x = 5; assert(x == 5);\n")
	require.Empty(t, diags)
}
