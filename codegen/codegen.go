// Package codegen streams a checked Magolor program into an equivalent
// C++ translation unit: the standard prelude, cimport includes, classes
// with positional constructors, forward declarations, and function
// definitions. Every binary and unary expression is wrapped in explicit
// parentheses to sidestep precedence differences between the two
// languages. The generator performs no type analysis of its own; it
// trusts the checker's annotations.
package codegen

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/lucas-veyrier/magolor/ast"
	"github.com/lucas-veyrier/magolor/internal/trace"
	"github.com/lucas-veyrier/magolor/stdlib"
	"github.com/lucas-veyrier/magolor/types"
)

// Generator emits C++ source. A Generator is single-use per Generate
// call; its only state is the output writer, the current indentation, and
// a sticky write error.
type Generator struct {
	catalog *stdlib.Catalog
	logger  *slog.Logger

	w      io.Writer
	indent int
	err    error
}

// New creates a Generator. The catalog pairs each Std module with its
// prelude snippet; nil uses the default embedded catalog. logger enables
// emission tracing; nil disables it.
func New(catalog *stdlib.Catalog, logger *slog.Logger) *Generator {
	if catalog == nil {
		catalog = stdlib.Default()
	}
	return &Generator{catalog: catalog, logger: logger}
}

// Generate writes the full translation unit for the given programs, in
// order. Multi-module builds pass one Program per module; the module
// containing main conventionally comes last so its forward declarations
// resolve, though forward declarations of all functions make the order
// immaterial.
func (g *Generator) Generate(ctx context.Context, w io.Writer, progs []*ast.Program) error {
	op := trace.Begin(ctx, g.logger, "magolor.codegen.emit", slog.Int("programs", len(progs)))
	g.w = w
	g.indent = 0
	g.err = nil

	if err := g.emitPreludeInternal(progs); err != nil {
		op.End(err)
		return err
	}

	for _, prog := range progs {
		for _, cls := range prog.Classes {
			g.genClass(&cls)
		}
	}

	// Forward declarations of all non-main functions precede definitions
	// so source declaration order is irrelevant.
	for _, prog := range progs {
		for i := range prog.Functions {
			fn := &prog.Functions[i]
			if fn.Name == "main" {
				continue
			}
			g.emit(g.signature(fn))
			g.emit(";\n")
		}
	}
	g.emit("\n")

	for _, prog := range progs {
		for i := range prog.Functions {
			g.genFunction(&prog.Functions[i], "")
			g.emit("\n")
		}
	}

	op.End(g.err)
	return g.err
}

// EmitPrelude writes only the includes, the Std namespace, the aliases,
// and the stringification helper. Used by the build CLI's
// --emit-prelude-only flag.
func (g *Generator) EmitPrelude(w io.Writer) error {
	g.w = w
	g.indent = 0
	g.err = nil
	return g.emitPreludeInternal(nil)
}

func (g *Generator) emitPreludeInternal(progs []*ast.Program) error {
	g.emit(preludeIncludes)

	// cimport headers come after the standard includes and before the
	// prelude namespace, matching where hand-written includes would sit.
	seen := make(map[string]bool)
	for _, prog := range progs {
		for _, ci := range prog.CImports {
			if ci.Header == "" || seen[ci.Header] {
				continue
			}
			seen[ci.Header] = true
			if ci.System {
				g.emit("#include <" + ci.Header + ">\n")
			} else {
				g.emit("#include \"" + ci.Header + "\"\n")
			}
		}
	}
	g.emit("\n")

	g.emit("namespace Std {\n")
	for _, mod := range g.catalog.Modules() {
		snippet, ok := preludeSnippets[mod.Path]
		if !ok {
			return fmt.Errorf("codegen: catalog module %s has no prelude snippet", mod.Path)
		}
		g.emitIndented(snippet)
		g.emit("\n")
	}

	// Std-level conveniences matching the catalog's unqualified call
	// forms, so both `Std.print(..)` and bare `print(..)` lower cleanly.
	for _, alias := range g.catalog.Aliases() {
		mod, _ := g.catalog.Module(alias.Module)
		sym, _ := mod.Lookup(alias.Name)
		ns := strings.TrimPrefix(alias.Module, "Std.")
		g.emit("    " + g.aliasForwarder(sym, ns) + "\n")
	}
	g.emit("}\n\n")

	for _, alias := range g.catalog.Aliases() {
		g.emit("using Std::" + alias.Name + ";\n")
	}
	g.emit("\n")
	g.emit(mgToStringHelper)
	g.emit("\n")
	return g.err
}

// aliasForwarder renders an inline Std-level function forwarding to the
// nested namespace, e.g.
//
//	inline void print(const std::string& a0) { return IO::print(a0); }
func (g *Generator) aliasForwarder(sym stdlib.Symbol, ns string) string {
	var params, args []string
	for i, p := range sym.Params {
		name := "a" + strconv.Itoa(i)
		params = append(params, g.paramCpp(p)+" "+name)
		args = append(args, name)
	}
	return fmt.Sprintf("inline %s %s(%s) { return %s::%s(%s); }",
		g.typeCpp(sym.Return), sym.Name, strings.Join(params, ", "),
		ns, sym.Name, strings.Join(args, ", "))
}

// paramCpp renders a parameter type, passing strings and containers by
// const reference.
func (g *Generator) paramCpp(t types.Type) string {
	cpp := g.typeCpp(t)
	switch t.Kind {
	case types.String, types.Option, types.Array:
		return "const " + cpp + "&"
	default:
		return cpp
	}
}

// typeCpp maps a Magolor type to its C++ spelling.
func (g *Generator) typeCpp(t types.Type) string {
	switch t.Kind {
	case types.Int:
		return "int"
	case types.Float:
		return "double"
	case types.String:
		return "std::string"
	case types.Bool:
		return "bool"
	case types.Void:
		return "void"
	case types.Class:
		return t.ClassName
	case types.Option:
		return "std::optional<" + g.elemCpp(t.Elem) + ">"
	case types.Array:
		return "std::vector<" + g.elemCpp(t.Elem) + ">"
	case types.Function:
		var params []string
		for _, p := range t.Params {
			params = append(params, g.typeCpp(p))
		}
		return "std::function<" + g.elemCpp(t.Return) + "(" + strings.Join(params, ", ") + ")>"
	default:
		return "auto"
	}
}

func (g *Generator) elemCpp(t *types.Type) string {
	if t == nil {
		return "auto"
	}
	return g.typeCpp(*t)
}

// --- emission primitives ---

func (g *Generator) emit(s string) {
	if g.err != nil {
		return
	}
	_, g.err = io.WriteString(g.w, s)
}

func (g *Generator) emitIndent() {
	for range g.indent {
		g.emit("    ")
	}
}

func (g *Generator) emitLine(s string) {
	g.emitIndent()
	g.emit(s)
	g.emit("\n")
}

// emitIndented writes a multi-line snippet with one level of indentation
// prepended to each non-empty line.
func (g *Generator) emitIndented(snippet string) {
	for line := range strings.Lines(snippet) {
		if strings.TrimSpace(line) == "" {
			g.emit(strings.TrimLeft(line, " \t"))
			continue
		}
		g.emit("    " + line)
	}
	g.emit("\n")
}

// --- declarations ---

func (g *Generator) signature(fn *ast.FnDecl) string {
	var sb strings.Builder
	sb.WriteString(g.typeCpp(fn.ReturnType))
	sb.WriteString(" ")
	sb.WriteString(fn.Name)
	sb.WriteString("(")
	for i, p := range fn.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(g.typeCpp(p.Type))
		sb.WriteString(" ")
		sb.WriteString(p.Name)
	}
	sb.WriteString(")")
	return sb.String()
}

func (g *Generator) genClass(cls *ast.ClassDecl) {
	head := "class " + cls.Name
	if cls.Parent != "" {
		head += " : public " + cls.Parent
	}
	g.emitLine(head + " {")
	g.emitLine("public:")
	g.indent++

	for _, f := range cls.Fields {
		g.emitLine(g.typeCpp(f.Type) + " " + f.Name + ";")
	}

	// Positional constructor initializing every field in declaration
	// order; a no-arg constructor when there are no fields.
	if len(cls.Fields) == 0 {
		g.emitLine(cls.Name + "() {}")
	} else {
		g.emitIndent()
		g.emit(cls.Name + "(")
		for i, f := range cls.Fields {
			if i > 0 {
				g.emit(", ")
			}
			g.emit(g.typeCpp(f.Type) + " _" + f.Name)
		}
		g.emit(") : ")
		for i, f := range cls.Fields {
			if i > 0 {
				g.emit(", ")
			}
			g.emit(f.Name + "(_" + f.Name + ")")
		}
		g.emit(" {}\n")
	}

	for i := range cls.Methods {
		g.genFunction(&cls.Methods[i], cls.Name)
	}

	g.indent--
	g.emitLine("};")
	g.emit("\n")
}

func (g *Generator) genFunction(fn *ast.FnDecl, className string) {
	isMain := fn.Name == "main" && className == ""
	if isMain {
		g.emitLine("int main(int argc, char** argv) {")
		g.indent++
		g.emitLine("for (int i = 0; i < argc; i++) Std::System::argsStorage().push_back(argv[i]);")
		g.indent--
	} else {
		g.emitIndent()
		if fn.Static && className != "" {
			g.emit("static ")
		}
		g.emit(g.signature(fn))
		g.emit(" {\n")
	}

	g.indent++
	for _, stmt := range fn.Body {
		g.genStmt(stmt)
	}
	if isMain {
		g.emitLine("return 0;")
	}
	g.indent--
	g.emitLine("}")
}

// --- statements ---

func (g *Generator) genStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.Let:
		g.emitIndent()
		if s.Type.IsZero() {
			g.emit("auto")
		} else {
			g.emit(g.typeCpp(s.Type))
		}
		g.emit(" " + s.Name + " = ")
		g.genExpr(s.Init)
		g.emit(";\n")

	case *ast.Return:
		g.emitIndent()
		g.emit("return")
		if s.Value != nil {
			g.emit(" ")
			g.genExpr(s.Value)
		}
		g.emit(";\n")

	case *ast.ExprStmt:
		g.emitIndent()
		g.genExpr(s.X)
		g.emit(";\n")

	case *ast.If:
		g.emitIndent()
		g.emit("if (")
		g.genExpr(s.Cond)
		g.emit(") {\n")
		g.indent++
		for _, st := range s.Then {
			g.genStmt(st)
		}
		g.indent--
		g.emitLine("}")
		if s.Else != nil {
			g.emitLine("else {")
			g.indent++
			for _, st := range s.Else {
				g.genStmt(st)
			}
			g.indent--
			g.emitLine("}")
		}

	case *ast.While:
		g.emitIndent()
		g.emit("while (")
		g.genExpr(s.Cond)
		g.emit(") {\n")
		g.indent++
		for _, st := range s.Body {
			g.genStmt(st)
		}
		g.indent--
		g.emitLine("}")

	case *ast.For:
		g.emitIndent()
		g.emit("for (auto& " + s.Var + " : ")
		g.genExpr(s.Iterable)
		g.emit(") {\n")
		g.indent++
		for _, st := range s.Body {
			g.genStmt(st)
		}
		g.indent--
		g.emitLine("}")

	case *ast.Match:
		g.genMatch(s)

	case *ast.Block:
		g.emitLine("{")
		g.indent++
		for _, st := range s.Stmts {
			g.genStmt(st)
		}
		g.indent--
		g.emitLine("}")

	case *ast.Raw:
		// Opaque target escape hatch: emitted verbatim, line by line.
		for line := range strings.Lines(strings.TrimSpace(s.Code)) {
			g.emitLine(strings.TrimRight(line, "\n"))
		}
	}
}

// genMatch lowers a match over an Option into a lexical scope binding a
// fresh _match_val and an if/else-if chain of presence checks. Non-option
// patterns compare by equality.
func (g *Generator) genMatch(s *ast.Match) {
	g.emitLine("{")
	g.indent++
	g.emitIndent()
	g.emit("auto _match_val = ")
	g.genExpr(s.Scrutinee)
	g.emit(";\n")

	for i, arm := range s.Arms {
		g.emitIndent()
		if i > 0 {
			g.emit("else ")
		}
		switch arm.Pattern {
		case "Some":
			g.emit("if (_match_val.has_value()) {\n")
			g.indent++
			if arm.Binder != "" {
				g.emitLine("auto " + arm.Binder + " = _match_val.value();")
			}
		case "None":
			g.emit("if (!_match_val.has_value()) {\n")
			g.indent++
		default:
			g.emit("if (_match_val == " + arm.Pattern + ") {\n")
			g.indent++
		}
		for _, st := range arm.Body {
			g.genStmt(st)
		}
		g.indent--
		g.emitLine("}")
	}
	g.indent--
	g.emitLine("}")
}

// --- expressions ---

func (g *Generator) genExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.IntLit:
		g.emit(strconv.FormatInt(e.Value, 10))

	case *ast.FloatLit:
		g.emit(strconv.FormatFloat(e.Value, 'g', -1, 64))

	case *ast.StringLit:
		if e.Interpolated {
			g.genInterpolated(e.Value)
		} else {
			g.emit("std::string(\"" + escapeCpp(e.Value) + "\")")
		}

	case *ast.BoolLit:
		if e.Value {
			g.emit("true")
		} else {
			g.emit("false")
		}

	case *ast.Ident:
		g.emit(e.Name)

	case *ast.Binary:
		g.emit("(")
		g.genExpr(e.Left)
		g.emit(" " + e.Op + " ")
		g.genExpr(e.Right)
		g.emit(")")

	case *ast.Unary:
		g.emit("(" + e.Op)
		g.genExpr(e.Operand)
		g.emit(")")

	case *ast.Call:
		g.genExpr(e.Callee)
		g.emit("(")
		for i, arg := range e.Args {
			if i > 0 {
				g.emit(", ")
			}
			g.genExpr(arg)
		}
		g.emit(")")

	case *ast.Member:
		g.genMember(e)

	case *ast.Index:
		g.genExpr(e.Object)
		g.emit("[")
		g.genExpr(e.Idx)
		g.emit("]")

	case *ast.Lambda:
		g.emit("[=](")
		for i, p := range e.Params {
			if i > 0 {
				g.emit(", ")
			}
			g.emit(g.typeCpp(p.Type) + " " + p.Name)
		}
		g.emit(")")
		if !e.ReturnType.IsZero() && e.ReturnType.Kind != types.Void {
			g.emit(" -> " + g.typeCpp(e.ReturnType))
		}
		g.emit(" {\n")
		g.indent++
		for _, st := range e.Body {
			g.genStmt(st)
		}
		g.indent--
		g.emitIndent()
		g.emit("}")

	case *ast.Construct:
		g.emit(e.ClassName + "(")
		for i, arg := range e.Args {
			if i > 0 {
				g.emit(", ")
			}
			g.genExpr(arg)
		}
		g.emit(")")

	case *ast.SomeExpr:
		g.emit("std::make_optional(")
		g.genExpr(e.Value)
		g.emit(")")

	case *ast.NoneExpr:
		g.emit("std::nullopt")

	case *ast.ThisExpr:
		g.emit("(*this)")

	case *ast.ArrayLit:
		g.emit("{")
		for i, el := range e.Elems {
			if i > 0 {
				g.emit(", ")
			}
			g.genExpr(el)
		}
		g.emit("}")
	}
}

// genMember lowers member access. Std namespace chains lower to `::`
// (they address C++ namespaces, not objects); everything else is plain
// object member access.
func (g *Generator) genMember(e *ast.Member) {
	if base, ok := e.Object.(*ast.Ident); ok && base.Name == "Std" {
		g.emit("Std::" + e.Name)
		return
	}
	if isStdNamespace(e.Object.Type()) {
		g.genExpr(e.Object)
		g.emit("::" + e.Name)
		return
	}
	g.genExpr(e.Object)
	g.emit("." + e.Name)
}

// isStdNamespace recognizes the checker's namespace marker: a class type
// whose name carries the Std. prefix, which no source class can declare.
func isStdNamespace(t types.Type) bool {
	return t.Kind == types.Class && strings.HasPrefix(t.ClassName, "Std.")
}

// genInterpolated lowers an interpolated string body into left-to-right
// concatenation of escaped literal pieces and mg_to_string calls over
// each placeholder.
func (g *Generator) genInterpolated(s string) {
	g.emit("(")
	first := true
	var current strings.Builder

	flush := func() {
		if current.Len() == 0 {
			return
		}
		if !first {
			g.emit(" + ")
		}
		first = false
		g.emit("std::string(\"" + escapeCpp(current.String()) + "\")")
		current.Reset()
	}

	for i := 0; i < len(s); i++ {
		if s[i] != '{' {
			current.WriteByte(s[i])
			continue
		}
		end := strings.IndexByte(s[i+1:], '}')
		if end < 0 {
			current.WriteByte(s[i])
			continue
		}
		flush()
		name := s[i+1 : i+1+end]
		if !first {
			g.emit(" + ")
		}
		first = false
		g.emit("mg_to_string(" + name + ")")
		i += end + 1
	}
	flush()
	if first {
		g.emit("std::string(\"\")")
	}
	g.emit(")")
}

// escapeCpp escapes a literal for inclusion in a double-quoted C++
// string: newline, tab, backslash, and quote.
func escapeCpp(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\\':
			sb.WriteString(`\\`)
		case '"':
			sb.WriteString(`\"`)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
