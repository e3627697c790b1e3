package lsp

import (
	"context"
	"log/slog"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/lucas-veyrier/magolor/build"
	"github.com/lucas-veyrier/magolor/diag"
	"github.com/lucas-veyrier/magolor/internal/source"
	"github.com/lucas-veyrier/magolor/internal/trace"
	"github.com/lucas-veyrier/magolor/location"
	"github.com/lucas-veyrier/magolor/modreg"
)

// Snapshot is an immutable analysis result over the open documents at one
// point in time. Every didOpen/didChange/didSave produces a fresh
// Snapshot: the front end is rerun from scratch with new source and
// module registries, matching the single-threaded, non-incremental
// execution model — there is no partial re-check to get wrong.
type Snapshot struct {
	// EntryURI and EntryVersion identify the document whose change
	// triggered the analysis.
	EntryURI     string
	EntryVersion int

	// Result holds the pipeline's diagnostics.
	Result diag.Result

	// Sources holds every analyzed document's content and offset tables.
	Sources *source.Registry

	// Registry holds the analyzed modules.
	Registry *modreg.Registry

	// SymbolsByURI maps each analyzed document to its symbol index.
	SymbolsByURI map[string]*SymbolIndex

	// Diagnostics are the LSP-converted diagnostics grouped per document.
	Diagnostics []URIDiagnostic
}

// URIDiagnostic pairs a document URI with one LSP diagnostic, so a single
// analysis can publish to several open documents.
type URIDiagnostic struct {
	URI        string
	Diagnostic protocol.Diagnostic
}

// SymbolIndexAt returns the symbol index for a document URI.
func (s *Snapshot) SymbolIndexAt(uri string) *SymbolIndex {
	if s == nil {
		return nil
	}
	return s.SymbolsByURI[uri]
}

// Analyzer reruns the front-end pipeline over the open documents and
// converts the outcome into LSP shapes.
type Analyzer struct {
	logger *slog.Logger
}

// NewAnalyzer creates an Analyzer. A nil logger uses slog.Default().
func NewAnalyzer(logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{logger: logger.With(slog.String("component", "analyzer"))}
}

// Analyze runs lex, parse, module registration, import resolution, and
// type checking over all open documents, attributing the snapshot to
// entryURI. It never fails: pipeline problems surface as diagnostics.
func (a *Analyzer) Analyze(ctx context.Context, entryURI string, entryVersion int, docs []document) *Snapshot {
	op := trace.Begin(ctx, a.logger, "magolor.lsp.analyze",
		slog.String("entry", entryURI),
		slog.Int("open_documents", len(docs)),
	)

	inputs := make([]build.Input, 0, len(docs))
	for _, doc := range docs {
		inputs = append(inputs, build.Input{
			Path:       doc.URI,
			ModuleName: moduleNameForURI(doc.URI),
			Content:    []byte(doc.Text),
			SourceID:   location.NewSourceID(doc.URI),
		})
	}

	res, err := build.Run(ctx, inputs, build.Options{Logger: a.logger})
	if err != nil {
		// Duplicate-registration collisions mean two URIs carried the same
		// identity; keep the partial result and surface what we have.
		trace.Warn(ctx, a.logger, "analysis pipeline error", slog.String("error", err.Error()))
	}

	snapshot := &Snapshot{
		EntryURI:     entryURI,
		EntryVersion: entryVersion,
		Result:       res.Diags,
		Sources:      res.Sources,
		Registry:     res.Registry,
		SymbolsByURI: make(map[string]*SymbolIndex, len(res.Modules)),
	}

	for _, m := range res.Modules {
		snapshot.SymbolsByURI[m.SourceID.String()] = BuildSymbolIndex(m)
	}

	snapshot.Diagnostics = a.convertDiagnostics(res.Diags, res.Sources, entryURI)

	op.End(err,
		slog.Bool("ok", res.Diags.OK()),
		slog.Int("issues", res.Diags.Len()),
	)
	return snapshot
}

// convertDiagnostics maps diag issues to protocol diagnostics. Span-less
// issues attach to the entry document at 0:0 so they still surface in the
// client's problems panel.
func (a *Analyzer) convertDiagnostics(result diag.Result, sources *source.Registry, entryURI string) []URIDiagnostic {
	renderer := diag.NewRenderer(
		diag.WithSourceProvider(sources),
		diag.WithLSPByteFallback(diag.LSPByteFallbackApproximate),
	)

	out := make([]URIDiagnostic, 0)
	src := "magolor"

	for issue := range result.Issues() {
		span := issue.Span()

		if span.IsZero() {
			sev := convertSeverity(diag.SeverityToLSP(issue.Severity()))
			out = append(out, URIDiagnostic{
				URI: entryURI,
				Diagnostic: protocol.Diagnostic{
					Range:    protocol.Range{},
					Severity: sev,
					Code:     &protocol.IntegerOrString{Value: issue.Code().String()},
					Source:   &src,
					Message:  issue.Message(),
				},
			})
			continue
		}

		lspDiag := renderer.LSPDiagnostic(issue)
		if lspDiag == nil {
			continue
		}
		out = append(out, URIDiagnostic{
			URI: span.Source.String(),
			Diagnostic: protocol.Diagnostic{
				Range: protocol.Range{
					Start: protocol.Position{
						Line:      toUInteger(lspDiag.Range.Start.Line),
						Character: toUInteger(lspDiag.Range.Start.Character),
					},
					End: protocol.Position{
						Line:      toUInteger(lspDiag.Range.End.Line),
						Character: toUInteger(lspDiag.Range.End.Character),
					},
				},
				Severity: convertSeverity(lspDiag.Severity),
				Code:     &protocol.IntegerOrString{Value: lspDiag.Code},
				Source:   &src,
				Message:  lspDiag.Message,
				RelatedInformation: convertRelatedInfo(lspDiag.RelatedInformation),
			},
		})
	}
	return out
}

func toUInteger(n int) protocol.UInteger {
	if n < 0 {
		return 0
	}
	return protocol.UInteger(n)
}

func convertSeverity(severity int) *protocol.DiagnosticSeverity {
	var s protocol.DiagnosticSeverity
	switch severity {
	case diag.LSPSeverityError:
		s = protocol.DiagnosticSeverityError
	case diag.LSPSeverityWarning:
		s = protocol.DiagnosticSeverityWarning
	case diag.LSPSeverityInformation:
		s = protocol.DiagnosticSeverityInformation
	case diag.LSPSeverityHint:
		s = protocol.DiagnosticSeverityHint
	default:
		s = protocol.DiagnosticSeverityError
	}
	return &s
}

func convertRelatedInfo(related []diag.LSPRelatedInfo) []protocol.DiagnosticRelatedInformation {
	if len(related) == 0 {
		return nil
	}
	out := make([]protocol.DiagnosticRelatedInformation, 0, len(related))
	for _, rel := range related {
		out = append(out, protocol.DiagnosticRelatedInformation{
			Location: protocol.Location{
				URI: rel.Location.URI,
				Range: protocol.Range{
					Start: protocol.Position{
						Line:      toUInteger(rel.Location.Range.Start.Line),
						Character: toUInteger(rel.Location.Range.Start.Character),
					},
					End: protocol.Position{
						Line:      toUInteger(rel.Location.Range.End.Line),
						Character: toUInteger(rel.Location.Range.End.Character),
					},
				},
			},
			Message: rel.Message,
		})
	}
	return out
}
