package codebase

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/dhamidi/annox/java/annotation"
	"github.com/dhamidi/annox/java/parser"
)

const lsName = "annox"

var lspLog = commonlog.GetLogger("annox.lsp")

// Opener creates the codebase for a workspace root.
type Opener func(rootDir string) (*Codebase, error)

// LSPServer reports unresolved annotation values as diagnostics and
// shows the evaluated annotation under the cursor on hover.
type LSPServer struct {
	open     Opener
	codebase *Codebase
	handler  protocol.Handler
	server   *server.Server
	version  string
}

func NewLSPServer(version string, open Opener) *LSPServer {
	ls := &LSPServer{
		open:    open,
		version: version,
	}

	ls.handler = protocol.Handler{
		Initialize:            ls.initialize,
		Initialized:           ls.initialized,
		Shutdown:              ls.shutdown,
		SetTrace:              ls.setTrace,
		TextDocumentDidOpen:   ls.textDocumentDidOpen,
		TextDocumentDidChange: ls.textDocumentDidChange,
		TextDocumentDidClose:  ls.textDocumentDidClose,
		TextDocumentDidSave:   ls.textDocumentDidSave,
		TextDocumentHover:     ls.textDocumentHover,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *LSPServer) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *LSPServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	rootDir := "."
	if params.RootPath != nil && *params.RootPath != "" {
		rootDir = *params.RootPath
	} else if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			rootDir = path
		}
	}

	cb, err := ls.open(rootDir)
	if err != nil {
		return nil, fmt.Errorf("open workspace %s: %w", rootDir, err)
	}
	ls.codebase = cb
	lspLog.Infof("workspace %s with roots %v", rootDir, cb.Roots())

	capabilities := ls.handler.CreateServerCapabilities()
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    syncKindPtr(protocol.TextDocumentSyncKindFull),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}
	capabilities.HoverProvider = true

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

func (ls *LSPServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	if err := ls.codebase.ScanAll(context.Background()); err != nil {
		lspLog.Errorf("initial scan: %s", err)
	}
	for _, path := range ls.codebase.Paths() {
		ls.publish(ctx, path)
	}
	return nil
}

func (ls *LSPServer) shutdown(ctx *glsp.Context) error {
	return nil
}

func (ls *LSPServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *LSPServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	return ls.update(ctx, params.TextDocument.URI, params.TextDocument.Text)
}

func (ls *LSPServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	if len(params.ContentChanges) == 0 {
		return nil
	}
	change := params.ContentChanges[len(params.ContentChanges)-1]
	if whole, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
		return ls.update(ctx, params.TextDocument.URI, whole.Text)
	}
	return nil
}

func (ls *LSPServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	return nil
}

func (ls *LSPServer) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	if params.Text != nil {
		return ls.update(ctx, params.TextDocument.URI, *params.Text)
	}
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	ls.codebase.ScanFile(path)
	ls.publish(ctx, path)
	return nil
}

func (ls *LSPServer) update(ctx *glsp.Context, uri protocol.DocumentUri, text string) error {
	path, err := uriToPath(uri)
	if err != nil {
		return nil
	}
	ls.codebase.UpdateFile(path, []byte(text))
	ls.publish(ctx, path)
	return nil
}

func (ls *LSPServer) publish(ctx *glsp.Context, path string) {
	diagnostics := ls.codebase.Diagnostics(path)
	lspLog.Debugf("%s: %d diagnostics", path, len(diagnostics))
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         pathToURI(path),
		Diagnostics: diagnostics,
	})
}

// Diagnostics returns one diagnostic per unresolved annotation value in
// path, or a single one when the file cannot be scanned.
func (c *Codebase) Diagnostics(path string) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}
	results, err := c.FileResults(path)
	if err != nil {
		return append(diagnostics, diagnostic(protocol.Range{}, protocol.DiagnosticSeverityError, err.Error()))
	}
	for _, p := range Problems(results) {
		diagnostics = append(diagnostics, diagnostic(spanRange(p.Span), protocol.DiagnosticSeverityWarning, problemMessage(p)))
	}
	return diagnostics
}

func (ls *LSPServer) textDocumentHover(ctx *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}
	return ls.codebase.Hover(path, int(params.Position.Line)+1, int(params.Position.Character)+1), nil
}

// Hover describes the annotation at the 1-based line and column: its
// evaluated form with defaults filled in and its unresolved values.
func (c *Codebase) Hover(path string, line, column int) *protocol.Hover {
	decl, inst, ok := c.InstanceAt(path, line, column)
	if !ok {
		return nil
	}
	var sb strings.Builder
	sb.WriteString("```java\n" + inst.String() + "\n```\n\n")
	sb.WriteString("on " + string(decl.Kind) + " `" + decl.Key + "`\n")
	for _, p := range annotation.Problems(decl, []*annotation.Instance{inst}) {
		sb.WriteString("\n* " + problemMessage(p))
	}
	r := spanRange(inst.Span)
	return &protocol.Hover{
		Contents: protocol.MarkupContent{Kind: protocol.MarkupKindMarkdown, Value: sb.String()},
		Range:    &r,
	}
}

func problemMessage(p annotation.Problem) string {
	where := "@" + p.Annotation
	if p.Path != "" {
		where += " " + p.Path
	}
	return where + ": " + p.Reason
}

func diagnostic(r protocol.Range, severity protocol.DiagnosticSeverity, message string) protocol.Diagnostic {
	source := lsName
	return protocol.Diagnostic{
		Range:    r,
		Severity: &severity,
		Source:   &source,
		Message:  message,
	}
}

// spanRange converts a 1-based span to a 0-based LSP range.
func spanRange(s parser.Span) protocol.Range {
	return protocol.Range{
		Start: protocol.Position{Line: zeroBased(s.Start.Line), Character: zeroBased(s.Start.Column)},
		End:   protocol.Position{Line: zeroBased(s.End.Line), Character: zeroBased(s.End.Column)},
	}
}

func zeroBased(n int) protocol.UInteger {
	if n <= 0 {
		return 0
	}
	return protocol.UInteger(n - 1)
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func pathToURI(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}

func boolPtr(b bool) *bool {
	return &b
}

func syncKindPtr(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind {
	return &k
}
