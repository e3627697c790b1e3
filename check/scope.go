package check

import (
	"github.com/lucas-veyrier/magolor/location"
	"github.com/lucas-veyrier/magolor/types"
)

// binding is one name visible in a scope.
type binding struct {
	typ     types.Type
	span    location.Span // declaration site, for "previous declaration here"
	mutable bool
}

// scope is a nested environment mapping names to bindings. Lookup walks
// parents.
type scope struct {
	parent   *scope
	bindings map[string]binding
}

func newScope(parent *scope) *scope {
	return &scope{parent: parent, bindings: make(map[string]binding)}
}

// declare binds name in this scope, reporting whether the name was
// already declared here (shadowing an outer scope is allowed).
func (s *scope) declare(name string, b binding) (prev binding, dup bool) {
	if existing, ok := s.bindings[name]; ok {
		return existing, true
	}
	s.bindings[name] = b
	return binding{}, false
}

// lookup resolves name through this scope and its parents.
func (s *scope) lookup(name string) (binding, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if b, ok := cur.bindings[name]; ok {
			return b, true
		}
	}
	return binding{}, false
}

// names returns every name visible from this scope, innermost first.
// Shadowed outer names are omitted.
func (s *scope) names() []string {
	seen := make(map[string]struct{})
	var out []string
	for cur := s; cur != nil; cur = cur.parent {
		for name := range cur.bindings {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}
