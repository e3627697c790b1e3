package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatDocumentReindents(t *testing.T) {
	in := "fn main() {\nlet x = 1;\nif (true) {\nx;\n}\n}\n"
	want := "fn main() {\n    let x = 1;\n    if (true) {\n        x;\n    }\n}\n"
	assert.Equal(t, want, formatDocument(in))
}

func TestFormatDocumentIdempotent(t *testing.T) {
	inputs := []string{
		"fn main() {\nlet x = 1;\n}\n",
		"class C {\n        x: int;\n}\n",
		"",
		"}\n}\n",
		"fn f() { if (true) { } }\n",
	}
	for _, in := range inputs {
		once := formatDocument(in)
		assert.Equal(t, once, formatDocument(once), "format must be idempotent for %q", in)
	}
}

func TestFormatDocumentBlankLines(t *testing.T) {
	in := "fn main() {\n\n   \nlet x = 1;\n}\n"
	out := formatDocument(in)
	assert.Contains(t, out, "\n\n\n", "blank lines carry no indentation")
	assert.Contains(t, out, "    let x = 1;")
}

func TestFormatDocumentBracesOnOneLine(t *testing.T) {
	// A line containing both braces leaves the depth unchanged for the
	// following line.
	in := "fn f() { x; }\nfn g() {\ny;\n}\n"
	want := "fn f() { x; }\nfn g() {\n    y;\n}\n"
	assert.Equal(t, want, formatDocument(in))
}

func TestFormatDocumentLeadingCloser(t *testing.T) {
	in := "fn f() {\nx;\n} fn_tail();\n"
	out := formatDocument(in)
	assert.Contains(t, out, "\n} fn_tail();", "leading close brace dedents its own line")
}

func TestFormatDocumentNeverNegative(t *testing.T) {
	out := formatDocument("}\n}\nfn f() {\nx;\n}\n")
	assert.Contains(t, out, "\n    x;\n")
}
