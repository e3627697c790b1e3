package modreg

import (
	"path/filepath"
	"strings"

	"github.com/lucas-veyrier/magolor/ast"
	"github.com/lucas-veyrier/magolor/location"
)

// Module is a single parsed source unit identified by a dotted name.
//
// A Module is created when its source is parsed and registered; a
// re-registration under the same name replaces it in full (declarations of
// the old module are no longer visible).
type Module struct {
	// Name is the dotted module name, e.g. "api.handlers".
	Name string

	// FilePath is the path the module was loaded from, relative to the
	// package root, or empty for synthetic sources.
	FilePath string

	// SourceID identifies the module's source unit for spans and content
	// lookup.
	SourceID location.SourceID

	// Program is the parsed (possibly error-recovered) AST.
	Program *ast.Program

	// Imports are the module's resolved imports, filled by
	// [Resolver.Resolve]. The list is a subset of the registry's keys plus
	// built-in module paths.
	Imports []Import
}

// Import is one resolved `using` edge.
type Import struct {
	// Path is the resolved dotted module path (which may differ from the
	// written path when the parent-package fallback applied).
	Path string

	// Builtin reports whether the import is satisfied by the stdlib
	// descriptor catalog rather than a registered module.
	Builtin bool

	// Symbols are the public symbol names this import makes visible.
	Symbols []string

	// Span covers the written import path, for diagnostics.
	Span location.Span
}

// SourceExt is the Magolor source file extension.
const SourceExt = ".mg"

// ModuleNameForPath converts a source file path relative to the package
// source root into a dotted module name: the root prefix and the source
// extension are stripped and path separators become dots.
//
//	ModuleNameForPath("src/api/handlers.mg", "src") == "api.handlers"
func ModuleNameForPath(path, root string) string {
	p := filepath.ToSlash(path)
	r := filepath.ToSlash(root)
	if r != "" {
		r = strings.TrimSuffix(r, "/") + "/"
		if rest, ok := strings.CutPrefix(p, r); ok {
			p = rest
		}
	}
	p = strings.TrimSuffix(p, SourceExt)
	return strings.ReplaceAll(p, "/", ".")
}

// PublicSymbols returns the names of the module's public classes and
// functions, in declaration order.
func PublicSymbols(m *Module) []string {
	if m == nil || m.Program == nil {
		return nil
	}
	var symbols []string
	for i := range m.Program.Classes {
		if m.Program.Classes[i].Public {
			symbols = append(symbols, m.Program.Classes[i].Name)
		}
	}
	for i := range m.Program.Functions {
		if m.Program.Functions[i].Public {
			symbols = append(symbols, m.Program.Functions[i].Name)
		}
	}
	return symbols
}

// IsSymbolPublic reports whether the module declares symbol as a public
// class or top-level function.
func (m *Module) IsSymbolPublic(symbol string) bool {
	if m == nil || m.Program == nil {
		return false
	}
	if cls := m.Program.FindClass(symbol); cls != nil {
		return cls.Public
	}
	if fn := m.Program.FindFunction(symbol); fn != nil {
		return fn.Public
	}
	return false
}

// IsMemberPublic reports whether the named member (field or method) of the
// named class is public. Member visibility is queried separately from
// class visibility.
func (m *Module) IsMemberPublic(className, member string) bool {
	if m == nil || m.Program == nil {
		return false
	}
	cls := m.Program.FindClass(className)
	if cls == nil {
		return false
	}
	if f := cls.FindField(member); f != nil {
		return f.Public
	}
	if fn := cls.FindMethod(member); fn != nil {
		return fn.Public
	}
	return false
}
