// Package lsp implements the Magolor language server: stdio JSON-RPC
// transport and dispatch on glsp, full-text document synchronization, and
// diagnostics, completion, hover, definition, references, document
// symbols, formatting, and rename over the shared front-end pipeline.
//
// The server is single-threaded and cooperative: one message is handled
// to completion before the next is read, and every analysis rebuilds
// fresh source and module registries, so request handlers only ever see
// immutable snapshots.
package lsp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"sync/atomic"

	// commonlog is a required dependency of github.com/tliron/glsp. It is
	// silenced in NewServer via commonlog.Configure(0, nil) because this
	// server routes all logging through slog. The blank import of the
	// "simple" backend is required by glsp at runtime.
	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	_ "github.com/tliron/commonlog/simple" // required backend for glsp

	"github.com/lucas-veyrier/magolor/internal/trace"
	"github.com/lucas-veyrier/magolor/stdlib"
)

const serverName = "magolor-lsp"

// Server is the Magolor language server.
type Server struct {
	logger     *slog.Logger
	handler    protocol.Handler
	server     *server.Server
	store      *documentStore
	analyzer   *Analyzer
	completion *completionEngine

	// snapshots maps each open document URI to its latest analysis.
	snapshotMu sync.RWMutex
	snapshots  map[string]*Snapshot

	// requestSeq numbers dispatched messages for trace correlation; glsp
	// does not expose the JSON-RPC id to handlers.
	requestSeq atomic.Uint64

	// shutdownCalled tracks the LSP lifecycle: exit after shutdown is a
	// clean exit, exit without it is not.
	shutdownCalled bool

	closeOnce sync.Once
	closeErr  error
}

// NewServer creates a Magolor language server. If logger is nil,
// slog.Default() is used.
func NewServer(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		logger:     logger.With(slog.String("component", "server")),
		store:      newDocumentStore(),
		analyzer:   NewAnalyzer(logger),
		completion: newCompletionEngine(stdlib.Default()),
		snapshots:  make(map[string]*Snapshot),
	}

	commonlog.Configure(0, nil)

	s.handler = protocol.Handler{
		Initialize:    s.initialize,
		Initialized:   s.initialized,
		Shutdown:      s.shutdown,
		Exit:          s.exit,
		SetTrace:      s.setTrace,
		CancelRequest: s.cancelRequest,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidClose:  s.textDocumentDidClose,
		TextDocumentDidSave:   s.textDocumentDidSave,

		TextDocumentCompletion:     s.textDocumentCompletion,
		TextDocumentHover:          s.textDocumentHover,
		TextDocumentDefinition:     s.textDocumentDefinition,
		TextDocumentReferences:     s.textDocumentReferences,
		TextDocumentDocumentSymbol: s.textDocumentDocumentSymbol,
		TextDocumentFormatting:     s.textDocumentFormatting,
		TextDocumentRename:         s.textDocumentRename,
	}

	s.server = server.NewServer(&s.handler, serverName, false)
	return s
}

// Handler returns the protocol handler, for tests that dispatch directly.
func (s *Server) Handler() *protocol.Handler {
	return &s.handler
}

// RunStdio runs the server over standard streams until EOF.
func (s *Server) RunStdio() error {
	if err := s.server.RunStdio(); err != nil {
		return fmt.Errorf("run stdio: %w", err)
	}
	return nil
}

// Close closes the JSON-RPC connection, causing RunStdio to return. It is
// idempotent and safe to call before RunStdio (returns nil so callers can
// retry once the connection exists).
func (s *Server) Close() error {
	conn := s.server.GetStdio()
	if conn == nil {
		return nil
	}
	s.closeOnce.Do(func() {
		if err := conn.Close(); err != nil {
			s.closeErr = fmt.Errorf("close connection: %w", err)
		}
	})
	return s.closeErr
}

// --- lifecycle ---

func (s *Server) initialize(_ *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.logger.Info("initialize request received", slog.String("client", clientName(params)))

	capabilities := s.handler.CreateServerCapabilities()

	// Full-text sync: simple and safe for a non-incremental analyzer.
	syncKind := protocol.TextDocumentSyncKindFull
	if syncOpts, ok := capabilities.TextDocumentSync.(*protocol.TextDocumentSyncOptions); ok {
		syncOpts.Change = &syncKind
	}

	// Completion triggers on member access, both '.' and '::'.
	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{".", ":"},
	}

	version := "dev"
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &version,
		},
	}, nil
}

func (s *Server) initialized(_ *glsp.Context, _ *protocol.InitializedParams) error {
	s.logger.Info("server initialized")
	return nil
}

func (s *Server) shutdown(_ *glsp.Context) error {
	s.logger.Info("shutdown request received")
	s.shutdownCalled = true
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

// exit terminates the process: exit code 0 when shutdown was called
// first, 1 otherwise, per the LSP lifecycle.
func (s *Server) exit(_ *glsp.Context) error {
	exitCode := 0
	if !s.shutdownCalled {
		s.logger.Warn("exit called without shutdown")
		exitCode = 1
	}
	s.logger.Info("exit notification received", slog.Int("exit_code", exitCode))
	os.Exit(exitCode)
	return nil // unreachable
}

func (s *Server) setTrace(_ *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

// cancelRequest is accepted and ignored: analysis is synchronous and runs
// one message at a time, so there is nothing in flight to cancel.
func (s *Server) cancelRequest(_ *glsp.Context, params *protocol.CancelParams) error {
	s.logger.Debug("cancelRequest ignored", slog.Any("id", params.ID))
	return nil
}

// --- document synchronization ---

func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := params.TextDocument.URI
	if !isMagolorURI(uri) {
		s.logger.Debug("ignoring didOpen for unsupported file type", slog.String("uri", uri))
		return nil
	}
	reqCtx, op := s.beginRequest("magolor.lsp.did_open", slog.String("uri", uri))
	defer op.End(nil)
	s.logger.Debug("textDocument/didOpen", slog.String("uri", uri), slog.Int("version", int(params.TextDocument.Version)))

	s.store.Open(uri, params.TextDocument.LanguageID, int(params.TextDocument.Version), params.TextDocument.Text)
	s.analyzeAndPublish(reqCtx, ctx, uri, int(params.TextDocument.Version))
	return nil
}

func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := params.TextDocument.URI
	if !isMagolorURI(uri) {
		return nil
	}
	reqCtx, op := s.beginRequest("magolor.lsp.did_change", slog.String("uri", uri))
	defer op.End(nil)
	s.logger.Debug("textDocument/didChange", slog.String("uri", uri), slog.Int("version", int(params.TextDocument.Version)))

	// The server advertises full sync; take the last whole-document
	// change event.
	for _, rawChange := range params.ContentChanges {
		if change, ok := rawChange.(protocol.TextDocumentContentChangeEventWhole); ok {
			s.store.Change(uri, int(params.TextDocument.Version), change.Text)
		}
	}
	s.analyzeAndPublish(reqCtx, ctx, uri, int(params.TextDocument.Version))
	return nil
}

func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	uri := params.TextDocument.URI
	if !isMagolorURI(uri) {
		return nil
	}
	reqCtx, op := s.beginRequest("magolor.lsp.did_save", slog.String("uri", uri))
	defer op.End(nil)
	s.logger.Debug("textDocument/didSave", slog.String("uri", uri))

	if params.Text != nil {
		if doc, ok := s.store.Get(uri); ok {
			s.store.Change(uri, doc.Version, *params.Text)
		}
	}
	doc, ok := s.store.Get(uri)
	if !ok {
		return nil
	}
	s.analyzeAndPublish(reqCtx, ctx, uri, doc.Version)
	return nil
}

func (s *Server) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := params.TextDocument.URI
	if !isMagolorURI(uri) {
		return nil
	}
	_, op := s.beginRequest("magolor.lsp.did_close", slog.String("uri", uri))
	defer op.End(nil)
	s.logger.Debug("textDocument/didClose", slog.String("uri", uri))

	s.store.Close(uri)
	s.snapshotMu.Lock()
	delete(s.snapshots, uri)
	s.snapshotMu.Unlock()

	// Clear stale markers for the closed document.
	if ctx != nil {
		ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
			URI:         uri,
			Diagnostics: []protocol.Diagnostic{},
		})
	}
	return nil
}

// --- analysis ---

// analyzeAndPublish reruns the pipeline over every open document and
// publishes the resulting diagnostics, including empty sets to clear
// markers on documents that no longer have findings. reqCtx carries the
// dispatched message's request ID for trace correlation.
func (s *Server) analyzeAndPublish(reqCtx context.Context, ctx *glsp.Context, entryURI string, entryVersion int) {
	snapshot := s.analyzer.Analyze(reqCtx, entryURI, entryVersion, s.store.All())

	s.snapshotMu.Lock()
	// All open documents were analyzed together, so the snapshot is the
	// latest state for each of them.
	for uri := range snapshot.SymbolsByURI {
		s.snapshots[uri] = snapshot
	}
	s.snapshotMu.Unlock()

	if ctx == nil {
		return
	}

	byURI := make(map[string][]protocol.Diagnostic)
	for _, d := range snapshot.Diagnostics {
		byURI[d.URI] = append(byURI[d.URI], d.Diagnostic)
	}
	logPublishes := trace.Enabled(reqCtx, s.logger, slog.LevelDebug)
	for _, doc := range s.store.All() {
		diags := byURI[doc.URI]
		if diags == nil {
			diags = []protocol.Diagnostic{}
		}
		if logPublishes {
			s.logger.Debug("publishing diagnostics",
				slog.String("uri", doc.URI), slog.Int("count", len(diags)))
		}
		ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
			URI:         doc.URI,
			Diagnostics: diags,
		})
	}
}

// beginRequest stamps a fresh request ID onto a context and opens the
// trace span for one dispatched LSP message. Every operation logged
// under the returned context carries the same request_id.
func (s *Server) beginRequest(op string, attrs ...slog.Attr) (context.Context, *trace.Op) {
	ctx := trace.WithRequestID(context.Background(),
		"req-"+strconv.FormatUint(s.requestSeq.Add(1), 10))
	return ctx, trace.Begin(ctx, s.logger, op, attrs...)
}

// latestSnapshot returns the last analysis covering uri.
func (s *Server) latestSnapshot(uri string) *Snapshot {
	s.snapshotMu.RLock()
	defer s.snapshotMu.RUnlock()
	return s.snapshots[uri]
}

func clientName(params *protocol.InitializeParams) string {
	if params.ClientInfo != nil {
		if params.ClientInfo.Version != nil {
			return params.ClientInfo.Name + " " + *params.ClientInfo.Version
		}
		return params.ClientInfo.Name
	}
	return "unknown"
}
