// SPDX-License-Identifier: Apache-2.0

// Command absint-lsp is a language server that republishes the fixpoint
// iterator's findings as textDocument/publishDiagnostics on every open,
// change, and save (SPEC_FULL.md's DOMAIN STACK table). Grounded on the
// teacher's cmd/kanso-lsp/main.go.
package main

import (
	"log"
	"os"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"absint/internal/lsp"
)

const lsName = "absint"

var (
	version = "0.0.1"
	handler protocol.Handler
)

func main() {
	commonlog.Configure(1, nil)

	h := lsp.NewHandler()

	handler = protocol.Handler{
		Initialize:            h.Initialize,
		Initialized:           h.Initialized,
		Shutdown:              h.Shutdown,
		TextDocumentDidOpen:   h.TextDocumentDidOpen,
		TextDocumentDidChange: h.TextDocumentDidChange,
		TextDocumentDidSave:   h.TextDocumentDidSave,
		TextDocumentDidClose:  h.TextDocumentDidClose,
	}

	s := server.NewServer(&handler, lsName, false)

	log.Println("Starting absint LSP server...")

	if err := s.RunStdio(); err != nil {
		log.Println("Error starting absint LSP server:", err)
		os.Exit(1)
	}
}
