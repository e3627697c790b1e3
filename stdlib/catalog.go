// Package stdlib holds the curated descriptor catalog of the built-in
// Std.* modules: their exported symbol names, signatures, and docs.
//
// The catalog is data, not code: it is loaded from an embedded
// jsonc-encoded resource (comments permitted, so the catalog can be
// annotated module-by-module) and consumed by three components that must
// agree on the stdlib surface — the type checker, the completion engine,
// and the code generator's prelude pairing.
package stdlib

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/tidwall/jsonc"

	"github.com/lucas-veyrier/magolor/types"
)

//go:embed catalog.json
var catalogJSONC []byte

// Symbol is one exported stdlib symbol.
type Symbol struct {
	Name string
	Kind string // "function" or "const"
	// Params and Return are the parsed signature types. The pseudo-type
	// "any" parses to the synthetic error type, which is assignable in
	// both directions; that is exactly the checking behavior wanted for
	// the templated C++ signatures the surface type system cannot express.
	Params []types.Type
	Return types.Type
	// RawParams/RawReturn keep the catalog's spelling for hover and
	// completion detail, where "<error>" must not leak.
	RawParams []string
	RawReturn string
	Doc       string
}

// Detail renders the symbol's signature the way hover and completion
// display it.
func (s Symbol) Detail() string {
	if s.Kind == "const" {
		return fmt.Sprintf("let %s: %s", s.Name, s.RawReturn)
	}
	return fmt.Sprintf("fn %s(%s) -> %s", s.Name, strings.Join(s.RawParams, ", "), s.RawReturn)
}

// IsCallable reports whether the symbol is a function.
func (s Symbol) IsCallable() bool {
	return s.Kind == "function"
}

// Module is one built-in module's descriptor.
type Module struct {
	Path    string // dotted, e.g. "Std.IO"
	Doc     string
	Symbols []Symbol
}

// Lookup returns the module's symbol with the given name.
func (m *Module) Lookup(name string) (Symbol, bool) {
	for _, s := range m.Symbols {
		if s.Name == name {
			return s, true
		}
	}
	return Symbol{}, false
}

// Alias is an unqualified call form (e.g. bare `print`) forwarding to a
// module symbol.
type Alias struct {
	Name   string
	Module string
}

// Catalog is the loaded stdlib descriptor.
type Catalog struct {
	modules map[string]*Module
	order   []string
	aliases []Alias
}

// raw wire shapes for the embedded jsonc resource.
type rawCatalog struct {
	Modules []rawModule `json:"modules"`
	Aliases []rawAlias  `json:"aliases"`
}

type rawModule struct {
	Module  string      `json:"module"`
	Doc     string      `json:"doc"`
	Symbols []rawSymbol `json:"symbols"`
}

type rawSymbol struct {
	Name   string   `json:"name"`
	Kind   string   `json:"kind"`
	Params []string `json:"params"`
	Return string   `json:"return"`
	Doc    string   `json:"doc"`
}

type rawAlias struct {
	Name   string `json:"name"`
	Module string `json:"module"`
}

// LoadCatalog parses the embedded catalog resource.
func LoadCatalog() (*Catalog, error) {
	return parseCatalog(catalogJSONC)
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the process-wide catalog parsed from the embedded
// resource. It panics if the embedded resource is malformed, which is a
// build defect, not a runtime condition.
func Default() *Catalog {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = LoadCatalog()
	})
	if defaultErr != nil {
		panic("stdlib: embedded catalog is malformed: " + defaultErr.Error())
	}
	return defaultCatalog
}

func parseCatalog(data []byte) (*Catalog, error) {
	var raw rawCatalog
	if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
		return nil, fmt.Errorf("parse stdlib catalog: %w", err)
	}

	cat := &Catalog{modules: make(map[string]*Module, len(raw.Modules))}
	for _, rm := range raw.Modules {
		if rm.Module == "" {
			return nil, fmt.Errorf("parse stdlib catalog: module entry with empty path")
		}
		if _, dup := cat.modules[rm.Module]; dup {
			return nil, fmt.Errorf("parse stdlib catalog: duplicate module %q", rm.Module)
		}
		mod := &Module{Path: rm.Module, Doc: rm.Doc}
		for _, rs := range rm.Symbols {
			sym, err := parseSymbol(rs)
			if err != nil {
				return nil, fmt.Errorf("parse stdlib catalog: module %q: %w", rm.Module, err)
			}
			mod.Symbols = append(mod.Symbols, sym)
		}
		cat.modules[rm.Module] = mod
		cat.order = append(cat.order, rm.Module)
	}

	for _, ra := range raw.Aliases {
		mod, ok := cat.modules[ra.Module]
		if !ok {
			return nil, fmt.Errorf("parse stdlib catalog: alias %q names unknown module %q", ra.Name, ra.Module)
		}
		if _, ok := mod.Lookup(ra.Name); !ok {
			return nil, fmt.Errorf("parse stdlib catalog: alias %q not exported by %q", ra.Name, ra.Module)
		}
		cat.aliases = append(cat.aliases, Alias{Name: ra.Name, Module: ra.Module})
	}
	return cat, nil
}

func parseSymbol(rs rawSymbol) (Symbol, error) {
	if rs.Name == "" {
		return Symbol{}, fmt.Errorf("symbol with empty name")
	}
	if rs.Kind != "function" && rs.Kind != "const" {
		return Symbol{}, fmt.Errorf("symbol %q has unknown kind %q", rs.Name, rs.Kind)
	}
	sym := Symbol{
		Name:      rs.Name,
		Kind:      rs.Kind,
		RawParams: rs.Params,
		RawReturn: rs.Return,
		Doc:       rs.Doc,
	}
	for _, p := range rs.Params {
		t, err := ParseType(p)
		if err != nil {
			return Symbol{}, fmt.Errorf("symbol %q: %w", rs.Name, err)
		}
		sym.Params = append(sym.Params, t)
	}
	ret, err := ParseType(rs.Return)
	if err != nil {
		return Symbol{}, fmt.Errorf("symbol %q: %w", rs.Name, err)
	}
	sym.Return = ret
	return sym, nil
}

// IsBuiltinModule implements modreg.BuiltinIndex.
func (c *Catalog) IsBuiltinModule(path string) bool {
	_, ok := c.modules[path]
	return ok
}

// BuiltinSymbols implements modreg.BuiltinIndex.
func (c *Catalog) BuiltinSymbols(path string) []string {
	mod, ok := c.modules[path]
	if !ok {
		return nil
	}
	names := make([]string, len(mod.Symbols))
	for i, s := range mod.Symbols {
		names[i] = s.Name
	}
	return names
}

// Module returns the descriptor for a dotted module path.
func (c *Catalog) Module(path string) (*Module, bool) {
	m, ok := c.modules[path]
	return m, ok
}

// Namespace returns the descriptor for the sub-namespace name as written
// after `Std.` (e.g. "IO" for Std.IO).
func (c *Catalog) Namespace(name string) (*Module, bool) {
	return c.Module("Std." + name)
}

// Modules returns all module descriptors in catalog order.
func (c *Catalog) Modules() []*Module {
	out := make([]*Module, len(c.order))
	for i, path := range c.order {
		out[i] = c.modules[path]
	}
	return out
}

// Aliases returns the unqualified call forms with their resolved symbols.
func (c *Catalog) Aliases() []Alias {
	out := make([]Alias, len(c.aliases))
	copy(out, c.aliases)
	return out
}

// AliasSymbol resolves an unqualified name against the alias table.
func (c *Catalog) AliasSymbol(name string) (Symbol, bool) {
	for _, a := range c.aliases {
		if a.Name == name {
			return c.modules[a.Module].Lookup(name)
		}
	}
	return Symbol{}, false
}

// ParseType parses a catalog type spelling into a types.Type.
//
// Accepted spellings: the primitive names, "any" (wildcard, parsed as the
// synthetic error type so it is assignable in both directions), and the
// parametric forms Option<T> and Array<T>.
func ParseType(s string) (types.Type, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "int":
		return types.TInt, nil
	case "float":
		return types.TFloat, nil
	case "bool":
		return types.TBool, nil
	case "string":
		return types.TString, nil
	case "void":
		return types.TVoid, nil
	case "any":
		return types.TError, nil
	}
	if inner, ok := cutGeneric(s, "Option"); ok {
		t, err := ParseType(inner)
		if err != nil {
			return types.Type{}, err
		}
		return types.NewOption(t), nil
	}
	if inner, ok := cutGeneric(s, "Array"); ok {
		t, err := ParseType(inner)
		if err != nil {
			return types.Type{}, err
		}
		return types.NewArray(t), nil
	}
	return types.Type{}, fmt.Errorf("unknown type spelling %q", s)
}

func cutGeneric(s, head string) (string, bool) {
	if strings.HasPrefix(s, head+"<") && strings.HasSuffix(s, ">") {
		return s[len(head)+1 : len(s)-1], true
	}
	return "", false
}
