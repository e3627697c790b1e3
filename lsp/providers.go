package lsp

import (
	"log/slog"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/lucas-veyrier/magolor/location"
)

// textDocumentCompletion handles textDocument/completion.
func (s *Server) textDocumentCompletion(_ *glsp.Context, params *protocol.CompletionParams) (any, error) {
	uri := params.TextDocument.URI
	_, op := s.beginRequest("magolor.lsp.completion", slog.String("uri", uri))
	defer op.End(nil)

	doc, ok := s.store.Get(uri)
	if !ok {
		return nil, nil
	}
	snapshot := s.latestSnapshot(uri)
	var idx *SymbolIndex
	if snapshot != nil {
		idx = snapshot.SymbolIndexAt(uri)
	}

	lineText := lineAt(doc.Text, int(params.Position.Line))
	items := s.completion.Complete(idx, lineText, int(params.Position.Character))
	return items, nil
}

// lineAt extracts the 0-based line from text, without its terminator.
func lineAt(text string, line int) string {
	start := 0
	for range line {
		idx := indexByteFrom(text, start, '\n')
		if idx < 0 {
			return ""
		}
		start = idx + 1
	}
	if end := indexByteFrom(text, start, '\n'); end >= 0 {
		return text[start:end]
	}
	return text[start:]
}

func indexByteFrom(s string, from int, c byte) int {
	for i := from; i < len(s); i++ {
		if s[i] == c {
			return i
		}
	}
	return -1
}

// textDocumentHover handles textDocument/hover.
//
//nolint:nilnil // LSP protocol: nil result means "no hover info"
func (s *Server) textDocumentHover(_ *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	uri := params.TextDocument.URI
	_, op := s.beginRequest("magolor.lsp.hover", slog.String("uri", uri))
	defer op.End(nil)
	snapshot, idx, pos, ok := s.resolvePosition(uri, params.Position)
	if !ok {
		return nil, nil
	}

	sym := idx.SymbolAtPosition(pos)
	if sym == nil {
		return nil, nil
	}

	content := "```magolor\n" + sym.Detail + "\n```"
	hover := &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: content,
		},
	}
	if start, end, ok := SpanToLSPRange(snapshot.Sources, sym.Definition); ok {
		hover.Range = &protocol.Range{
			Start: protocol.Position{Line: toUInteger(start[0]), Character: toUInteger(start[1])},
			End:   protocol.Position{Line: toUInteger(end[0]), Character: toUInteger(end[1])},
		}
	}
	return hover, nil
}

// textDocumentDefinition handles textDocument/definition.
//
//nolint:nilnil // LSP protocol: nil result means "no definition found"
func (s *Server) textDocumentDefinition(_ *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	uri := params.TextDocument.URI
	_, op := s.beginRequest("magolor.lsp.definition", slog.String("uri", uri))
	defer op.End(nil)
	snapshot, idx, pos, ok := s.resolvePosition(uri, params.Position)
	if !ok {
		return nil, nil
	}

	sym := idx.SymbolAtPosition(pos)
	if sym == nil || sym.Definition.IsZero() {
		return nil, nil
	}
	loc, ok := s.spanToLocation(snapshot, sym.Definition)
	if !ok {
		return nil, nil
	}
	return loc, nil
}

// textDocumentReferences handles textDocument/references. The definition
// is included alongside every recorded reference.
func (s *Server) textDocumentReferences(_ *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	uri := params.TextDocument.URI
	_, op := s.beginRequest("magolor.lsp.references", slog.String("uri", uri))
	defer op.End(nil)
	snapshot, idx, pos, ok := s.resolvePosition(uri, params.Position)
	if !ok {
		return nil, nil
	}

	sym := idx.SymbolAtPosition(pos)
	if sym == nil {
		return nil, nil
	}

	var locations []protocol.Location
	if loc, ok := s.spanToLocation(snapshot, sym.Definition); ok {
		locations = append(locations, loc)
	}
	for _, ref := range sym.References {
		if loc, ok := s.spanToLocation(snapshot, ref); ok {
			locations = append(locations, loc)
		}
	}
	return locations, nil
}

// textDocumentDocumentSymbol handles textDocument/documentSymbol.
func (s *Server) textDocumentDocumentSymbol(_ *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	uri := params.TextDocument.URI
	_, op := s.beginRequest("magolor.lsp.document_symbol", slog.String("uri", uri))
	defer op.End(nil)
	snapshot := s.latestSnapshot(uri)
	if snapshot == nil {
		return nil, nil
	}
	idx := snapshot.SymbolIndexAt(uri)
	if idx == nil {
		return nil, nil
	}

	var out []protocol.SymbolInformation
	for i := range idx.Symbols {
		sym := &idx.Symbols[i]
		loc, ok := s.spanToLocation(snapshot, sym.Range)
		if !ok {
			continue
		}
		info := protocol.SymbolInformation{
			Name:     sym.Name,
			Kind:     lspSymbolKind(sym.Kind),
			Location: loc,
		}
		if sym.Container != "" {
			container := sym.Container
			info.ContainerName = &container
		}
		out = append(out, info)
	}
	return out, nil
}

func lspSymbolKind(kind SymbolKind) protocol.SymbolKind {
	switch kind {
	case SymbolFunction:
		return protocol.SymbolKindFunction
	case SymbolMethod:
		return protocol.SymbolKindMethod
	case SymbolVariable, SymbolParameter:
		return protocol.SymbolKindVariable
	case SymbolClass:
		return protocol.SymbolKindClass
	case SymbolField:
		return protocol.SymbolKindField
	case SymbolModule:
		return protocol.SymbolKindModule
	default:
		return protocol.SymbolKindVariable
	}
}

// textDocumentFormatting handles textDocument/formatting: conservative
// re-indentation only, returned as one whole-document edit when the
// result differs from the input.
func (s *Server) textDocumentFormatting(_ *glsp.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	uri := params.TextDocument.URI
	_, op := s.beginRequest("magolor.lsp.formatting", slog.String("uri", uri))
	defer op.End(nil)
	doc, ok := s.store.Get(uri)
	if !ok {
		return nil, nil
	}

	formatted := formatDocument(doc.Text)
	if formatted == doc.Text {
		return []protocol.TextEdit{}, nil
	}

	lines := 0
	for i := 0; i < len(doc.Text); i++ {
		if doc.Text[i] == '\n' {
			lines++
		}
	}
	return []protocol.TextEdit{{
		Range: protocol.Range{
			Start: protocol.Position{Line: 0, Character: 0},
			End:   protocol.Position{Line: toUInteger(lines + 1), Character: 0},
		},
		NewText: formatted,
	}}, nil
}

// textDocumentRename handles textDocument/rename: the new name is applied
// at the definition and every recorded reference, grouped by URI.
//
//nolint:nilnil // LSP protocol: nil result means "rename not possible here"
func (s *Server) textDocumentRename(_ *glsp.Context, params *protocol.RenameParams) (*protocol.WorkspaceEdit, error) {
	uri := params.TextDocument.URI
	_, op := s.beginRequest("magolor.lsp.rename", slog.String("uri", uri))
	defer op.End(nil)
	snapshot, idx, pos, ok := s.resolvePosition(uri, params.Position)
	if !ok {
		return nil, nil
	}

	sym := idx.SymbolAtPosition(pos)
	if sym == nil || sym.Definition.IsZero() {
		return nil, nil
	}

	changes := make(map[protocol.DocumentUri][]protocol.TextEdit)
	appendEdit := func(span location.Span) {
		start, end, ok := SpanToLSPRange(snapshot.Sources, span)
		if !ok {
			return
		}
		docURI := protocol.DocumentUri(span.Source.String())
		changes[docURI] = append(changes[docURI], protocol.TextEdit{
			Range: protocol.Range{
				Start: protocol.Position{Line: toUInteger(start[0]), Character: toUInteger(start[1])},
				End:   protocol.Position{Line: toUInteger(end[0]), Character: toUInteger(end[1])},
			},
			NewText: params.NewName,
		})
	}

	appendEdit(sym.Definition)
	for _, ref := range sym.References {
		appendEdit(ref)
	}

	return &protocol.WorkspaceEdit{Changes: changes}, nil
}

// resolvePosition loads the latest snapshot, the document's symbol index,
// and the internal position for an LSP request position.
func (s *Server) resolvePosition(uri string, lspPos protocol.Position) (*Snapshot, *SymbolIndex, location.Position, bool) {
	snapshot := s.latestSnapshot(uri)
	if snapshot == nil {
		return nil, nil, location.Position{}, false
	}
	idx := snapshot.SymbolIndexAt(uri)
	if idx == nil {
		return nil, nil, location.Position{}, false
	}
	pos, ok := PositionFromLSP(snapshot.Sources, idx.SourceID, int(lspPos.Line), int(lspPos.Character))
	if !ok {
		return nil, nil, location.Position{}, false
	}
	return snapshot, idx, pos, true
}

// spanToLocation converts a span to an LSP location.
func (s *Server) spanToLocation(snapshot *Snapshot, span location.Span) (protocol.Location, bool) {
	start, end, ok := SpanToLSPRange(snapshot.Sources, span)
	if !ok {
		return protocol.Location{}, false
	}
	return protocol.Location{
		URI: span.Source.String(),
		Range: protocol.Range{
			Start: protocol.Position{Line: toUInteger(start[0]), Character: toUInteger(start[1])},
			End:   protocol.Position{Line: toUInteger(end[0]), Character: toUInteger(end[1])},
		},
	}, true
}
