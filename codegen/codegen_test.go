package codegen

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucas-veyrier/magolor/ast"
	"github.com/lucas-veyrier/magolor/check"
	"github.com/lucas-veyrier/magolor/diag"
	"github.com/lucas-veyrier/magolor/location"
	"github.com/lucas-veyrier/magolor/modreg"
	"github.com/lucas-veyrier/magolor/parser"
	"github.com/lucas-veyrier/magolor/stdlib"
)

// generate runs the full front end over src and returns the emitted C++.
func generate(t *testing.T, src string) string {
	t.Helper()
	coll := diag.NewCollectorUnlimited()
	id := location.NewSourceID("test://unit/main.mg")
	prog := parser.Parse(id, []byte(src), coll)

	reg := modreg.NewRegistry()
	m := &modreg.Module{Name: "main", SourceID: id, Program: prog}
	reg.Register(m)
	modreg.NewResolver(reg, stdlib.Default()).Resolve(m, coll)
	check.New(reg, stdlib.Default(), coll, nil).CheckAll(context.Background())
	require.True(t, coll.OK(), "fixture must check cleanly: %s", coll.Result().String())

	var sb strings.Builder
	require.NoError(t, New(nil, nil).Generate(context.Background(), &sb, []*ast.Program{prog}))
	return sb.String()
}

func TestGenerateHello(t *testing.T) {
	out := generate(t, `using Std.IO;
fn main() { let name = "world"; Std.print($"Hello, {name}\n"); }
`)
	assert.Contains(t, out, "namespace Std {")
	assert.Contains(t, out, "int main(int argc, char** argv) {")
	assert.Contains(t, out, `auto name = std::string("world");`)
	assert.Contains(t, out, `Std::print((std::string("Hello, ") + mg_to_string(name) + std::string("\n")));`)
	assert.Contains(t, out, "return 0;", "main gets an implicit final return 0")
}

func TestGeneratePreludeNamespaces(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, New(nil, nil).EmitPrelude(&sb))
	out := sb.String()

	for _, ns := range []string{"IO", "Parse", "Option", "Math", "String", "Array", "Map", "Set", "File", "Time", "Random", "System"} {
		assert.Contains(t, out, "namespace "+ns+" {", ns)
	}
	assert.Contains(t, out, "using Std::print;")
	assert.Contains(t, out, "using Std::parseInt;")
	assert.Contains(t, out, "std::string mg_to_string")
}

func TestGenerateClass(t *testing.T) {
	out := generate(t, `
class Point {
    public x: int;
    public y: int;
    public fn sum() -> int { return this.x + this.y; }
}
fn main() { let p = new Point(1, 2); }
`)
	assert.Contains(t, out, "class Point {")
	assert.Contains(t, out, "public:")
	assert.Contains(t, out, "int x;")
	assert.Contains(t, out, "Point(int _x, int _y) : x(_x), y(_y) {}")
	assert.Contains(t, out, "int sum() {")
	assert.Contains(t, out, "return ((*this).x + (*this).y);")
	assert.Contains(t, out, "auto p = Point(1, 2);")
}

func TestGenerateEmptyClassDefaultCtor(t *testing.T) {
	out := generate(t, "class Empty {}\nfn main() {}\n")
	assert.Contains(t, out, "Empty() {}")
}

func TestGenerateInheritance(t *testing.T) {
	out := generate(t, "class Animal {}\nclass Dog : Animal {}\nfn main() {}\n")
	assert.Contains(t, out, "class Dog : public Animal {")
}

func TestGenerateForwardDeclarations(t *testing.T) {
	out := generate(t, `
fn main() { helper(); }
fn helper() {}
`)
	declIdx := strings.Index(out, "void helper();")
	defIdx := strings.Index(out, "void helper() {")
	require.Positive(t, declIdx, "forward declaration must be present")
	require.Positive(t, defIdx)
	assert.Less(t, declIdx, defIdx, "forward declarations precede definitions")
}

func TestGenerateParenthesizedExpressions(t *testing.T) {
	out := generate(t, "fn f() -> int { return 1 + 2 * -3; }\nfn main() {}\n")
	assert.Contains(t, out, "return (1 + (2 * (-3)));")
}

func TestGenerateOptionMatch(t *testing.T) {
	// Scenario S4: the generated chain checks presence and binds x.
	out := generate(t, `
fn f(o: Option<int>) -> int {
    match o {
        Some(x) => return x;
        None => return -1;
    }
    return 0;
}
fn main() {}
`)
	assert.Contains(t, out, "std::optional<int> o")
	assert.Contains(t, out, "auto _match_val = o;")
	assert.Contains(t, out, "if (_match_val.has_value()) {")
	assert.Contains(t, out, "auto x = _match_val.value();")
	assert.Contains(t, out, "else if (!_match_val.has_value()) {")
	assert.Contains(t, out, "return (-1);")
}

func TestGenerateSomeNone(t *testing.T) {
	out := generate(t, "fn f() -> Option<int> { return Some(7); }\nfn g() -> Option<int> { return None; }\nfn main() {}\n")
	assert.Contains(t, out, "return std::make_optional(7);")
	assert.Contains(t, out, "return std::nullopt;")
}

func TestGenerateArrayAndFor(t *testing.T) {
	out := generate(t, `
fn main() {
    let xs: Array<int> = [1, 2, 3];
    for (x in xs) { let y = x; }
}
`)
	assert.Contains(t, out, "std::vector<int> xs = {1, 2, 3};")
	assert.Contains(t, out, "for (auto& x : xs) {")
}

func TestGenerateLambda(t *testing.T) {
	out := generate(t, `
fn main() {
    let double = fn(x: int) -> int { return x * 2; };
}
`)
	assert.Contains(t, out, "[=](int x) -> int {")
	assert.Contains(t, out, "return (x * 2);")
}

func TestGenerateStringEscapes(t *testing.T) {
	out := generate(t, `fn main() { let s = "a\tb\"c\\d\n"; }`)
	assert.Contains(t, out, `std::string("a\tb\"c\\d\n")`)
}

func TestGenerateStdNamespaceCall(t *testing.T) {
	out := generate(t, "using Std.Math;\nfn f() -> float { return Std.Math.sqrt(2.0); }\nfn main() {}\n")
	assert.Contains(t, out, "return Std::Math::sqrt(2);")
}

func TestGenerateCImport(t *testing.T) {
	out := generate(t, "cimport <stdio.h>;\ncimport \"mylib.h\";\nfn main() {}\n")
	assert.Contains(t, out, "#include <stdio.h>")
	assert.Contains(t, out, "#include \"mylib.h\"")
}

func TestGenerateRawBlock(t *testing.T) {
	out := generate(t, "fn main() { @cpp{ std::cout << \"raw\"; } }\n")
	assert.Contains(t, out, `std::cout << "raw";`)
}

func TestGenerateWhileIfElse(t *testing.T) {
	out := generate(t, `
fn main() {
    let mut i = 0;
    while (i < 3) {
        if (i == 1) { } else { }
        i;
    }
}
`)
	assert.Contains(t, out, "while ((i < 3)) {")
	assert.Contains(t, out, "if ((i == 1)) {")
	assert.Contains(t, out, "else {")
}

func TestGenerateMissingSnippetFails(t *testing.T) {
	// A catalog module without a paired prelude snippet is a build
	// defect and must fail loudly.
	cat, err := stdlib.LoadCatalog()
	require.NoError(t, err)
	_ = cat

	saved, had := preludeSnippets["Std.IO"]
	delete(preludeSnippets, "Std.IO")
	defer func() {
		if had {
			preludeSnippets["Std.IO"] = saved
		}
	}()

	var sb strings.Builder
	err = New(nil, nil).EmitPrelude(&sb)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no prelude snippet")
}
