package modreg

import (
	"fmt"
	"strings"

	"github.com/lucas-veyrier/magolor/diag"
)

// BuiltinIndex answers whether a dotted module path names a built-in
// module, and if so which symbols it exports. The stdlib descriptor
// catalog is the production implementation.
type BuiltinIndex interface {
	// IsBuiltinModule reports whether path (e.g. "Std.IO") is a built-in
	// module.
	IsBuiltinModule(path string) bool

	// BuiltinSymbols returns the exported symbol names of a built-in
	// module, or nil when path is not built-in.
	BuiltinSymbols(path string) []string
}

// Resolver binds a module's `using` declarations to registry entries or
// built-in modules.
type Resolver struct {
	reg      *Registry
	builtins BuiltinIndex
}

// NewResolver creates a Resolver over reg. builtins may be nil, in which
// case no import resolves as built-in.
func NewResolver(reg *Registry, builtins BuiltinIndex) *Resolver {
	return &Resolver{reg: reg, builtins: builtins}
}

// Resolve resolves every `using` declaration of m, filling m.Imports.
//
// Resolution of `using a.b.c` in module `x.y`:
//  1. Literal registry lookup of "a.b.c".
//  2. Parent-package fallback: lookup of "x.a.b.c".
//  3. Built-in check against the stdlib descriptor.
//
// An unresolvable import records an E1201 diagnostic and is skipped;
// resolution continues so every bad import in the module is surfaced.
// Dependent symbol lookups fail later with their own diagnostics.
func (r *Resolver) Resolve(m *Module, coll *diag.Collector) {
	m.Imports = m.Imports[:0]
	if m.Program == nil {
		return
	}

	for _, u := range m.Program.Usings {
		written := u.Dotted()
		if written == "" {
			continue // parser already diagnosed the malformed using
		}
		span := u.PathSpan
		if span.IsZero() {
			span = u.Span
		}

		resolved, ok := r.resolvePath(written, m.Name)
		if ok {
			target, _ := r.reg.Get(resolved)
			m.Imports = append(m.Imports, Import{
				Path:    resolved,
				Symbols: PublicSymbols(target),
				Span:    span,
			})
			continue
		}

		if r.builtins != nil && r.builtins.IsBuiltinModule(written) {
			m.Imports = append(m.Imports, Import{
				Path:    written,
				Builtin: true,
				Symbols: r.builtins.BuiltinSymbols(written),
				Span:    span,
			})
			continue
		}

		coll.Collect(diag.NewIssue(diag.Error, diag.E1201,
			fmt.Sprintf("Cannot find module: %s", written)).
			WithSpan(span).
			WithHint("check the module path and that its source file is part of the build").
			Build())
	}
}

// resolvePath applies the literal-then-parent-package lookup and returns
// the resolved dotted path.
func (r *Resolver) resolvePath(written, currentModule string) (string, bool) {
	if r.reg.Has(written) {
		return written, true
	}
	if idx := strings.LastIndex(currentModule, "."); idx >= 0 {
		candidate := currentModule[:idx] + "." + written
		if r.reg.Has(candidate) {
			return candidate, true
		}
	}
	return "", false
}
