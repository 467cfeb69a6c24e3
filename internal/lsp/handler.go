// SPDX-License-Identifier: Apache-2.0

// Package lsp republishes the fixpoint iterator's findings as
// textDocument/publishDiagnostics, grounded on the teacher's
// internal/lsp/handler.go (a glsp.Handler caching one parsed document per
// URI, diffing on didOpen/didChange and notifying the client). Here the
// cache holds each document's text instead of a parse tree: every edit
// re-runs the whole pipeline (parse, build, analyze with the interval
// domain) and republishes FailedAssert/UnknownVariable/IllegalOperation as
// error-severity diagnostics and DeadCode as warning-severity diagnostics.
package lsp

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"absint/internal/analyzer"
	"absint/internal/domain"
	"absint/internal/frontend"
	"absint/internal/nrdomain"
	"absint/internal/report"
)

// Handler implements the glsp.Handler methods this server supports.
type Handler struct {
	mu      sync.RWMutex
	content map[string]string
}

// NewHandler returns an empty Handler.
func NewHandler() *Handler {
	return &Handler{content: make(map[string]string)}
}

func (h *Handler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
				Save:      &protocol.SaveOptions{IncludeText: ptrBool(true)},
			},
		},
	}, nil
}

func (h *Handler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error { return nil }

func (h *Handler) Shutdown(ctx *glsp.Context) error { return nil }

func (h *Handler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	return h.analyzeAndPublish(ctx, params.TextDocument.URI, params.TextDocument.Text)
}

func (h *Handler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	for _, change := range params.ContentChanges {
		if full, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			return h.analyzeAndPublish(ctx, params.TextDocument.URI, full.Text)
		}
	}
	return nil
}

func (h *Handler) TextDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	if params.Text != nil {
		return h.analyzeAndPublish(ctx, params.TextDocument.URI, *params.Text)
	}
	path, err := uriToPath(string(params.TextDocument.URI))
	if err != nil {
		return err
	}
	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return h.analyzeAndPublish(ctx, params.TextDocument.URI, string(source))
}

func (h *Handler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(string(params.TextDocument.URI))
	if err != nil {
		return err
	}
	h.mu.Lock()
	delete(h.content, path)
	h.mu.Unlock()
	return nil
}

// analyzeAndPublish runs parse+build+analyze over text and sends the
// resulting diagnostics, replacing whatever was previously published for
// uri (an empty slice clears stale diagnostics, matching the LSP
// publishDiagnostics contract).
func (h *Handler) analyzeAndPublish(ctx *glsp.Context, uri protocol.DocumentUri, text string) error {
	path, err := uriToPath(string(uri))
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.content[path] = text
	h.mu.Unlock()

	diagnostics := Analyze(path, text)
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
	return nil
}

// Analyze parses, builds, and analyzes source with the default (interval)
// domain, returning the diagnostics an editor should show.
func Analyze(path, source string) []protocol.Diagnostic {
	decls, prog, err := frontend.Parse(path, source)
	if err != nil {
		return convertFrontendError(source, err)
	}

	r := report.New()
	it := analyzer.New[nrdomain.Env](r)
	Γ0 := nrdomain.New(domain.IntervalDomain{})
	for _, s := range decls {
		Γ0 = Γ0.AddVariable(s)
	}
	it.Run(prog, Γ0)

	return ConvertFindings(r.Findings())
}

func uriToPath(rawURI string) (string, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return "", fmt.Errorf("invalid URI %s: %w", rawURI, err)
	}
	path := u.Path
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 3 && path[2] == ':' {
		path = path[1:]
	}
	return filepath.FromSlash(path), nil
}

func ptrBool(b bool) *bool                                       { return &b }
func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind { return &k }
