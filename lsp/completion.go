package lsp

import (
	"strings"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/lucas-veyrier/magolor/stdlib"
	"github.com/lucas-veyrier/magolor/token"
)

// Completion sort-key prefixes. Lower sorts first, so stdlib hits outrank
// file symbols, which outrank variables, snippets, and keywords.
const (
	rankStdlib   = "1_"
	rankCallable = "2_"
	rankVariable = "3_"
	rankSnippet  = "4_"
	rankKeyword  = "5_"
)

// completionEngine combines the semantic index, the stdlib catalog, the
// snippet table, and the keyword list into ranked completion items.
type completionEngine struct {
	catalog *stdlib.Catalog
}

func newCompletionEngine(catalog *stdlib.Catalog) *completionEngine {
	if catalog == nil {
		catalog = stdlib.Default()
	}
	return &completionEngine{catalog: catalog}
}

// Complete returns ranked items for the cursor position. lineText is the
// current line's text; char is the cursor's UTF-16 column on that line
// (for the identifier-prefix computation, code points left of the cursor
// are what matters, so the ASCII-dominant approximation of slicing the
// line is used, as the original did).
func (e *completionEngine) Complete(idx *SymbolIndex, lineText string, char int) []protocol.CompletionItem {
	if char > len(lineText) {
		char = len(lineText)
	}
	if char < 0 {
		char = 0
	}
	before := lineText[:char]
	prefix := completionPrefix(before)
	qualifier := completionQualifier(before, prefix)

	// Qualified access into the builtin namespace: only catalog items.
	if qualifier == "Std" {
		return e.stdTopItems(prefix)
	}
	if ns, ok := strings.CutPrefix(qualifier, "Std."); ok {
		return e.stdNamespaceItems(ns, prefix)
	}
	if qualifier != "" {
		// Qualified access into a value: offer the file's fields and
		// methods by prefix. Without full flow analysis this is the
		// file-scoped best effort.
		return e.memberItems(idx, prefix)
	}

	var items []protocol.CompletionItem
	items = append(items, e.stdUnqualifiedItems(idx, prefix)...)
	items = append(items, e.fileSymbolItems(idx, prefix)...)
	items = append(items, e.snippetItems(prefix)...)
	items = append(items, e.keywordItems(prefix)...)
	return dedupeByLabel(items)
}

// completionPrefix is the run of identifier characters immediately left
// of the cursor.
func completionPrefix(before string) string {
	end := len(before)
	start := end
	for start > 0 {
		c := before[start-1]
		if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			start--
			continue
		}
		break
	}
	return before[start:end]
}

// completionQualifier returns the dotted path immediately left of the
// prefix when the prefix is preceded by '.' or '::' (e.g. "Std.IO" for
// "Std.IO.pri|"), or "" for unqualified positions.
func completionQualifier(before, prefix string) string {
	rest := before[:len(before)-len(prefix)]
	sep := 0
	switch {
	case strings.HasSuffix(rest, "::"):
		sep = 2
	case strings.HasSuffix(rest, "."):
		sep = 1
	default:
		return ""
	}
	rest = rest[:len(rest)-sep]

	end := len(rest)
	start := end
	for start > 0 {
		c := rest[start-1]
		if c == '_' || c == '.' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			start--
			continue
		}
		break
	}
	return rest[start:end]
}

func matchesPrefix(name, prefix string) bool {
	return strings.HasPrefix(strings.ToLower(name), strings.ToLower(prefix))
}

// stdTopItems completes after "Std.": sub-namespaces plus the top-level
// aliases.
func (e *completionEngine) stdTopItems(prefix string) []protocol.CompletionItem {
	var items []protocol.CompletionItem
	for _, mod := range e.catalog.Modules() {
		ns := strings.TrimPrefix(mod.Path, "Std.")
		if !matchesPrefix(ns, prefix) {
			continue
		}
		items = append(items, catalogModuleItem(ns, mod))
	}
	for _, alias := range e.catalog.Aliases() {
		if !matchesPrefix(alias.Name, prefix) {
			continue
		}
		if sym, ok := e.catalog.AliasSymbol(alias.Name); ok {
			items = append(items, catalogSymbolItem(sym))
		}
	}
	return dedupeByLabel(items)
}

// stdNamespaceItems completes after "Std.<Namespace>.".
func (e *completionEngine) stdNamespaceItems(ns, prefix string) []protocol.CompletionItem {
	mod, ok := e.catalog.Namespace(ns)
	if !ok {
		return nil
	}
	var items []protocol.CompletionItem
	for _, sym := range mod.Symbols {
		if matchesPrefix(sym.Name, prefix) {
			items = append(items, catalogSymbolItem(sym))
		}
	}
	return items
}

// stdUnqualifiedItems offers catalog symbols of the builtin modules the
// file imports, plus the top-level aliases.
func (e *completionEngine) stdUnqualifiedItems(idx *SymbolIndex, prefix string) []protocol.CompletionItem {
	var items []protocol.CompletionItem
	seen := make(map[string]bool)

	addModule := func(path string) {
		mod, ok := e.catalog.Module(path)
		if !ok || seen[path] {
			return
		}
		seen[path] = true
		for _, sym := range mod.Symbols {
			if matchesPrefix(sym.Name, prefix) {
				items = append(items, catalogSymbolItem(sym))
			}
		}
	}

	if idx != nil {
		for i := range idx.Symbols {
			sym := &idx.Symbols[i]
			if sym.Kind == SymbolModule && e.catalog.IsBuiltinModule(sym.Name) {
				addModule(sym.Name)
			}
		}
	}
	for _, alias := range e.catalog.Aliases() {
		if !matchesPrefix(alias.Name, prefix) {
			continue
		}
		if sym, ok := e.catalog.AliasSymbol(alias.Name); ok {
			items = append(items, catalogSymbolItem(sym))
		}
	}
	return items
}

func catalogModuleItem(ns string, mod *stdlib.Module) protocol.CompletionItem {
	kind := protocol.CompletionItemKindModule
	detail := mod.Path
	sortText := rankStdlib + ns
	doc := mod.Doc
	return protocol.CompletionItem{
		Label:         ns,
		Kind:          &kind,
		Detail:        &detail,
		Documentation: doc,
		SortText:      &sortText,
	}
}

func catalogSymbolItem(sym stdlib.Symbol) protocol.CompletionItem {
	kind := protocol.CompletionItemKindFunction
	if !sym.IsCallable() {
		kind = protocol.CompletionItemKindConstant
	}
	detail := sym.Detail()
	sortText := rankStdlib + sym.Name
	return protocol.CompletionItem{
		Label:         sym.Name,
		Kind:          &kind,
		Detail:        &detail,
		Documentation: sym.Doc,
		SortText:      &sortText,
	}
}

// fileSymbolItems offers the file's callables, classes, and variables.
func (e *completionEngine) fileSymbolItems(idx *SymbolIndex, prefix string) []protocol.CompletionItem {
	if idx == nil {
		return nil
	}
	var items []protocol.CompletionItem
	for _, sym := range idx.ByPrefix(prefix) {
		var kind protocol.CompletionItemKind
		rank := rankCallable
		switch sym.Kind {
		case SymbolFunction:
			kind = protocol.CompletionItemKindFunction
		case SymbolMethod:
			kind = protocol.CompletionItemKindMethod
		case SymbolClass:
			kind = protocol.CompletionItemKindClass
		case SymbolField:
			kind = protocol.CompletionItemKindField
		case SymbolVariable:
			kind = protocol.CompletionItemKindVariable
			rank = rankVariable
		case SymbolParameter:
			kind = protocol.CompletionItemKindVariable
			rank = rankVariable
		default:
			continue // usings are not identifier completions
		}
		detail := sym.Detail
		sortText := rank + sym.Name
		items = append(items, protocol.CompletionItem{
			Label:    sym.Name,
			Kind:     &kind,
			Detail:   &detail,
			SortText: &sortText,
		})
	}
	return items
}

// memberItems offers the file's fields and methods for `value.` access.
func (e *completionEngine) memberItems(idx *SymbolIndex, prefix string) []protocol.CompletionItem {
	if idx == nil {
		return nil
	}
	var items []protocol.CompletionItem
	for _, sym := range idx.ByPrefix(prefix) {
		var kind protocol.CompletionItemKind
		switch sym.Kind {
		case SymbolField:
			kind = protocol.CompletionItemKindField
		case SymbolMethod:
			kind = protocol.CompletionItemKindMethod
		default:
			continue
		}
		detail := sym.Detail
		sortText := rankCallable + sym.Name
		items = append(items, protocol.CompletionItem{
			Label:    sym.Name,
			Kind:     &kind,
			Detail:   &detail,
			SortText: &sortText,
		})
	}
	return items
}

// snippetTable holds the statement and declaration templates.
var snippetTable = []struct {
	label, insert, detail string
}{
	{"fn", "fn ${1:name}(${2}) {\n    ${0}\n}", "Function declaration"},
	{"fnr", "fn ${1:name}(${2}) -> ${3:int} {\n    ${0}\n}", "Function with return type"},
	{"class", "class ${1:Name} {\n    ${0}\n}", "Class declaration"},
	{"let", "let ${1:name} = ${0};", "Let binding"},
	{"if", "if (${1:cond}) {\n    ${0}\n}", "If statement"},
	{"ifelse", "if (${1:cond}) {\n    ${2}\n} else {\n    ${0}\n}", "If-else statement"},
	{"while", "while (${1:cond}) {\n    ${0}\n}", "While loop"},
	{"for", "for (${1:x} in ${2:xs}) {\n    ${0}\n}", "For-in loop"},
	{"match", "match ${1:opt} {\n    Some(${2:x}) => ${3},\n    None => ${0},\n}", "Match over an Option"},
	{"using", "using ${1:Std.IO};", "Import a module"},
	{"printline", "Std.print($\"${1}\\n\");", "Print an interpolated line"},
}

func (e *completionEngine) snippetItems(prefix string) []protocol.CompletionItem {
	var items []protocol.CompletionItem
	kind := protocol.CompletionItemKindSnippet
	format := protocol.InsertTextFormatSnippet
	for _, snip := range snippetTable {
		if !matchesPrefix(snip.label, prefix) {
			continue
		}
		insert := snip.insert
		detail := snip.detail
		sortText := rankSnippet + snip.label
		items = append(items, protocol.CompletionItem{
			Label:            snip.label,
			Kind:             &kind,
			Detail:           &detail,
			InsertText:       &insert,
			InsertTextFormat: &format,
			SortText:         &sortText,
		})
	}
	return items
}

func (e *completionEngine) keywordItems(prefix string) []protocol.CompletionItem {
	var items []protocol.CompletionItem
	kind := protocol.CompletionItemKindKeyword
	for spelling := range token.Keywords {
		if !matchesPrefix(spelling, prefix) {
			continue
		}
		label := spelling
		sortText := rankKeyword + label
		items = append(items, protocol.CompletionItem{
			Label:    label,
			Kind:     &kind,
			SortText: &sortText,
		})
	}
	return items
}

// dedupeByLabel keeps the best-ranked item per label.
func dedupeByLabel(items []protocol.CompletionItem) []protocol.CompletionItem {
	best := make(map[string]int)
	var out []protocol.CompletionItem
	for _, item := range items {
		idx, seen := best[item.Label]
		if !seen {
			best[item.Label] = len(out)
			out = append(out, item)
			continue
		}
		if sortKey(item) < sortKey(out[idx]) {
			out[idx] = item
		}
	}
	return out
}

func sortKey(item protocol.CompletionItem) string {
	if item.SortText != nil {
		return *item.SortText
	}
	return item.Label
}
