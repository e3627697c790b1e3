package lsp

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/lucas-veyrier/magolor/diag"
	"github.com/lucas-veyrier/magolor/location"
	"github.com/lucas-veyrier/magolor/modreg"
	"github.com/lucas-veyrier/magolor/parser"
)

// indexAny parses without requiring a clean parse: completion must work
// on mid-edit documents.
func indexAny(src string) *SymbolIndex {
	coll := diag.NewCollectorUnlimited()
	id := location.NewSourceID("test://unit/main.mg")
	prog := parser.Parse(id, []byte(src), coll)
	return BuildSymbolIndex(&modreg.Module{Name: "main", SourceID: id, Program: prog})
}

func findItem(items []protocol.CompletionItem, label string) *protocol.CompletionItem {
	for i := range items {
		if items[i].Label == label {
			return &items[i]
		}
	}
	return nil
}

func TestCompletionStdlibOutranksSnippets(t *testing.T) {
	// Scenario S5: after `prin`, print from the stdlib catalog appears
	// with kind Function and sorts above any snippet starting with prin.
	idx := indexAny("using Std.IO;\nfn main(){ prin")
	engine := newCompletionEngine(nil)

	line := "fn main(){ prin"
	items := engine.Complete(idx, line, len(line))

	print := findItem(items, "print")
	require.NotNil(t, print, "print must be offered from the stdlib catalog")
	require.NotNil(t, print.Kind)
	assert.Equal(t, protocol.CompletionItemKindFunction, *print.Kind)

	snippet := findItem(items, "printline")
	require.NotNil(t, snippet, "the printline snippet shares the prefix")
	require.NotNil(t, print.SortText)
	require.NotNil(t, snippet.SortText)
	assert.Less(t, *print.SortText, *snippet.SortText, "stdlib hits outrank snippets")
}

func TestCompletionAfterStdDot(t *testing.T) {
	idx := indexAny("using Std.IO;\nfn main(){ Std.")
	engine := newCompletionEngine(nil)

	line := "fn main(){ Std."
	items := engine.Complete(idx, line, len(line))

	require.NotNil(t, findItem(items, "IO"))
	require.NotNil(t, findItem(items, "Math"))
	require.NotNil(t, findItem(items, "print"), "top-level aliases complete after Std.")
	assert.Nil(t, findItem(items, "fn"), "keywords are not offered after a qualifier")
}

func TestCompletionAfterStdNamespaceDot(t *testing.T) {
	engine := newCompletionEngine(nil)
	line := "    let r = Std.Math.sq"
	items := engine.Complete(nil, line, len(line))

	sqrt := findItem(items, "sqrt")
	require.NotNil(t, sqrt)
	require.NotNil(t, sqrt.Detail)
	assert.Equal(t, "fn sqrt(float) -> float", *sqrt.Detail)
	assert.Nil(t, findItem(items, "print"), "only the namespace's symbols complete")
}

func TestCompletionFileSymbolsAndVariables(t *testing.T) {
	idx := indexAny(`fn helper() {}
fn main() {
    let haul = 1;
    h
}
`)
	engine := newCompletionEngine(nil)
	items := engine.Complete(idx, "    h", 5)

	helper := findItem(items, "helper")
	require.NotNil(t, helper)
	haul := findItem(items, "haul")
	require.NotNil(t, haul)
	require.NotNil(t, helper.SortText)
	require.NotNil(t, haul.SortText)
	assert.Less(t, *helper.SortText, *haul.SortText, "callables outrank variables")
}

func TestCompletionKeywords(t *testing.T) {
	engine := newCompletionEngine(nil)
	items := engine.Complete(nil, "mu", 2)
	mut := findItem(items, "mut")
	require.NotNil(t, mut)
	require.NotNil(t, mut.Kind)
	assert.Equal(t, protocol.CompletionItemKindKeyword, *mut.Kind)
}

func TestCompletionSnippetsOutrankKeywords(t *testing.T) {
	engine := newCompletionEngine(nil)
	items := engine.Complete(nil, "f", 1)

	fn := findItem(items, "fn")
	require.NotNil(t, fn, "fn appears once after dedupe")
	require.NotNil(t, fn.SortText)
	assert.True(t, strings.HasPrefix(*fn.SortText, rankSnippet),
		"the snippet wins the fn label over the keyword")
}

func TestCompletionPrefixHelpers(t *testing.T) {
	assert.Equal(t, "prin", completionPrefix("fn main(){ prin"))
	assert.Equal(t, "", completionPrefix("fn main(){ "))
	assert.Equal(t, "Std", completionQualifier("Std.pri", "pri"))
	assert.Equal(t, "Std.IO", completionQualifier("  Std.IO.", ""))
	assert.Equal(t, "Std.IO", completionQualifier("Std.IO::pr", "pr"))
	assert.Equal(t, "", completionQualifier("let x ", ""))
}

func TestCompletionClampsColumn(t *testing.T) {
	engine := newCompletionEngine(nil)
	assert.NotPanics(t, func() {
		engine.Complete(nil, "x", 99)
		engine.Complete(nil, "x", -1)
	})
}
