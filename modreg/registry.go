package modreg

import (
	"cmp"
	"slices"
	"sync"

	"github.com/lucas-veyrier/magolor/ast"
	"github.com/lucas-veyrier/magolor/internal/modpath"
)

// Registry maps dotted module names to parsed modules for one build or
// analysis pass.
//
// The registry is an explicit value threaded through the front end, not a
// package-level singleton: the CLI creates one per build, the language
// server creates a fresh one per analysis snapshot. Keys are compared
// after Unicode case folding, so `using A.b.C` and `using a.B.c` address
// the same entry.
//
// Registration replaces, never merges: re-registering a name drops the
// prior module entirely.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]*Module // keyed by folded module path
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]*Module)}
}

func foldName(name string) string {
	p, err := modpath.New(name)
	if err != nil {
		// Invalid paths can still be registered (the parser may have
		// recovered a garbled using); they are only reachable by their
		// exact spelling.
		return name
	}
	return p.FoldKey()
}

// Register stores m under its Name, replacing any existing module with the
// same (case-folded) name.
func (r *Registry) Register(m *Module) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules[foldName(m.Name)] = m
}

// Get returns the module registered under name, if any.
func (r *Registry) Get(name string) (*Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[foldName(name)]
	return m, ok
}

// Has reports whether a module is registered under name.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Modules returns all registered modules sorted by name.
func (r *Registry) Modules() []*Module {
	r.mu.RLock()
	out := make([]*Module, 0, len(r.modules))
	for _, m := range r.modules {
		out = append(out, m)
	}
	r.mu.RUnlock()

	slices.SortFunc(out, func(a, b *Module) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

// Len returns the number of registered modules.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.modules)
}

// Clear removes every registered module, and with them their import edges.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules = make(map[string]*Module)
}

// FindClass locates a class declaration by name across all registered
// modules, returning the declaration and its declaring module.
//
// Class names are global: a fully-resolved Class{name} type refers to a
// class declared in some registered module. When two modules declare the
// same class name the lexically-smallest module name wins, keeping lookup
// deterministic; the checker reports the duplicate separately.
func (r *Registry) FindClass(name string) (*ast.ClassDecl, *Module, bool) {
	for _, m := range r.Modules() {
		if m.Program == nil {
			continue
		}
		if cls := m.Program.FindClass(name); cls != nil {
			return cls, m, true
		}
	}
	return nil, nil, false
}

// IsAncestor reports whether parent is an ancestor of child in the
// declared class parent chain, walking across module boundaries. The walk
// is bounded by the number of registered classes so a cyclic parent chain
// (itself a checker error) cannot loop forever.
func (r *Registry) IsAncestor(parent, child string) bool {
	if parent == child {
		return false
	}
	limit := 0
	for _, m := range r.Modules() {
		if m.Program != nil {
			limit += len(m.Program.Classes)
		}
	}

	current := child
	for range limit {
		cls, _, ok := r.FindClass(current)
		if !ok || cls.Parent == "" {
			return false
		}
		if cls.Parent == parent {
			return true
		}
		current = cls.Parent
	}
	return false
}
