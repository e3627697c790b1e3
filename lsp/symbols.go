package lsp

import (
	"fmt"
	"strings"

	"github.com/lucas-veyrier/magolor/ast"
	"github.com/lucas-veyrier/magolor/location"
	"github.com/lucas-veyrier/magolor/modreg"
	"github.com/lucas-veyrier/magolor/types"
)

// SymbolKind classifies an extracted symbol.
type SymbolKind int

const (
	SymbolFunction SymbolKind = iota
	SymbolMethod
	SymbolVariable
	SymbolParameter
	SymbolClass
	SymbolField
	SymbolModule
)

// String returns the kind's display name.
func (k SymbolKind) String() string {
	switch k {
	case SymbolFunction:
		return "Function"
	case SymbolMethod:
		return "Method"
	case SymbolVariable:
		return "Variable"
	case SymbolParameter:
		return "Parameter"
	case SymbolClass:
		return "Class"
	case SymbolField:
		return "Field"
	case SymbolModule:
		return "Module"
	default:
		return "Unknown"
	}
}

// Symbol is one declaration extracted from an open document.
type Symbol struct {
	Name      string
	Kind      SymbolKind
	Type      types.Type
	Detail    string // signature-style display text
	Container string // owning class or function name
	Public    bool
	Static    bool
	Callable  bool

	// Definition is the name-only span; Range covers the whole
	// declaration.
	Definition location.Span
	Range      location.Span

	// References are recorded use sites, excluding the definition.
	References []location.Span
}

// SymbolIndex is the file-scoped symbol table of one document.
type SymbolIndex struct {
	SourceID location.SourceID
	Symbols  []Symbol
}

// BuildSymbolIndex extracts the symbol table from a parsed module.
func BuildSymbolIndex(m *modreg.Module) *SymbolIndex {
	idx := &SymbolIndex{SourceID: m.SourceID}
	if m.Program == nil {
		return idx
	}
	prog := m.Program

	for _, u := range prog.Usings {
		idx.Symbols = append(idx.Symbols, Symbol{
			Name:       u.Dotted(),
			Kind:       SymbolModule,
			Detail:     "using " + u.Dotted(),
			Definition: u.Span,
			Range:      u.Span,
			Public:     true,
		})
	}

	for i := range prog.Classes {
		cls := &prog.Classes[i]
		idx.Symbols = append(idx.Symbols, Symbol{
			Name:       cls.Name,
			Kind:       SymbolClass,
			Type:       types.NewClass(cls.Name),
			Detail:     "class " + cls.Name,
			Public:     cls.Public,
			Definition: cls.NameSpan,
			Range:      cls.Span,
		})
		for j := range cls.Fields {
			f := &cls.Fields[j]
			idx.Symbols = append(idx.Symbols, Symbol{
				Name:       f.Name,
				Kind:       SymbolField,
				Type:       f.Type,
				Detail:     fmt.Sprintf("%s: %s", f.Name, f.Type),
				Container:  cls.Name,
				Public:     f.Public,
				Definition: f.NameSpan,
				Range:      f.Span,
			})
		}
		for j := range cls.Methods {
			method := &cls.Methods[j]
			idx.addFunction(method, SymbolMethod, cls.Name)
		}
	}

	for i := range prog.Functions {
		idx.addFunction(&prog.Functions[i], SymbolFunction, "")
	}

	idx.collectReferences(prog)
	return idx
}

func (idx *SymbolIndex) addFunction(fn *ast.FnDecl, kind SymbolKind, container string) {
	idx.Symbols = append(idx.Symbols, Symbol{
		Name:       fn.Name,
		Kind:       kind,
		Type:       fn.Signature(),
		Detail:     fnDetail(fn),
		Container:  container,
		Public:     fn.Public,
		Static:     fn.Static,
		Callable:   true,
		Definition: fn.NameSpan,
		Range:      fn.Span,
	})

	for _, p := range fn.Params {
		idx.Symbols = append(idx.Symbols, Symbol{
			Name:       p.Name,
			Kind:       SymbolParameter,
			Type:       p.Type,
			Detail:     fmt.Sprintf("%s: %s", p.Name, p.Type),
			Container:  fn.Name,
			Definition: p.Span,
			Range:      p.Span,
		})
	}
	idx.collectLocals(fn.Body, fn.Name)
}

// collectLocals records let bindings and loop/match binders declared in a
// function body.
func (idx *SymbolIndex) collectLocals(stmts []ast.Stmt, container string) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.Let:
			typ := s.Type
			if typ.IsZero() && s.Init != nil {
				typ = s.Init.Type()
			}
			idx.Symbols = append(idx.Symbols, Symbol{
				Name:       s.Name,
				Kind:       SymbolVariable,
				Type:       typ,
				Detail:     fmt.Sprintf("let %s: %s", s.Name, displayType(typ)),
				Container:  container,
				Definition: s.NameSpan,
				Range:      s.Span(),
			})
		case *ast.If:
			idx.collectLocals(s.Then, container)
			idx.collectLocals(s.Else, container)
		case *ast.While:
			idx.collectLocals(s.Body, container)
		case *ast.For:
			idx.Symbols = append(idx.Symbols, Symbol{
				Name:       s.Var,
				Kind:       SymbolVariable,
				Container:  container,
				Detail:     fmt.Sprintf("let %s: <loop>", s.Var),
				Definition: s.VarSpan,
				Range:      s.VarSpan,
			})
			idx.collectLocals(s.Body, container)
		case *ast.Match:
			for _, arm := range s.Arms {
				if arm.Binder != "" {
					idx.Symbols = append(idx.Symbols, Symbol{
						Name:       arm.Binder,
						Kind:       SymbolVariable,
						Container:  container,
						Detail:     fmt.Sprintf("let %s: <binding>", arm.Binder),
						Definition: arm.BinderSpan,
						Range:      arm.BinderSpan,
					})
				}
				idx.collectLocals(arm.Body, container)
			}
		case *ast.Block:
			idx.collectLocals(s.Stmts, container)
		}
	}
}

// collectReferences walks every expression and attaches identifier and
// member-name use sites to the matching symbol. Matching is by name
// within the file, which is exact for the file-scoped queries the server
// answers (rename, references, hover).
func (idx *SymbolIndex) collectReferences(prog *ast.Program) {
	byName := make(map[string]*Symbol, len(idx.Symbols))
	for i := range idx.Symbols {
		sym := &idx.Symbols[i]
		if _, ok := byName[sym.Name]; !ok {
			byName[sym.Name] = sym
		}
	}

	record := func(name string, span location.Span) {
		sym, ok := byName[name]
		if !ok || span.IsZero() {
			return
		}
		if span == sym.Definition {
			return
		}
		sym.References = append(sym.References, span)
	}

	var walkExpr func(e ast.Expr)
	walkStmts := func(stmts []ast.Stmt) {}
	walkExpr = func(e ast.Expr) {
		switch x := e.(type) {
		case *ast.Ident:
			record(x.Name, x.Span())
		case *ast.Binary:
			walkExpr(x.Left)
			walkExpr(x.Right)
		case *ast.Unary:
			walkExpr(x.Operand)
		case *ast.Call:
			walkExpr(x.Callee)
			for _, a := range x.Args {
				walkExpr(a)
			}
		case *ast.Member:
			walkExpr(x.Object)
			record(x.Name, x.NameSpan)
		case *ast.Index:
			walkExpr(x.Object)
			walkExpr(x.Idx)
		case *ast.Lambda:
			walkStmts(x.Body)
		case *ast.Construct:
			for _, a := range x.Args {
				walkExpr(a)
			}
		case *ast.SomeExpr:
			walkExpr(x.Value)
		case *ast.ArrayLit:
			for _, el := range x.Elems {
				walkExpr(el)
			}
		}
	}
	walkStmts = func(stmts []ast.Stmt) {
		for _, stmt := range stmts {
			switch s := stmt.(type) {
			case *ast.Let:
				walkExpr(s.Init)
			case *ast.Return:
				if s.Value != nil {
					walkExpr(s.Value)
				}
			case *ast.ExprStmt:
				walkExpr(s.X)
			case *ast.If:
				walkExpr(s.Cond)
				walkStmts(s.Then)
				walkStmts(s.Else)
			case *ast.While:
				walkExpr(s.Cond)
				walkStmts(s.Body)
			case *ast.For:
				walkExpr(s.Iterable)
				walkStmts(s.Body)
			case *ast.Match:
				walkExpr(s.Scrutinee)
				for _, arm := range s.Arms {
					walkStmts(arm.Body)
				}
			case *ast.Block:
				walkStmts(s.Stmts)
			}
		}
	}

	for i := range prog.Classes {
		for j := range prog.Classes[i].Methods {
			walkStmts(prog.Classes[i].Methods[j].Body)
		}
	}
	for i := range prog.Functions {
		walkStmts(prog.Functions[i].Body)
	}
}

// SymbolAtPosition returns the symbol whose definition or recorded
// reference contains the position.
func (idx *SymbolIndex) SymbolAtPosition(pos location.Position) *Symbol {
	if idx == nil {
		return nil
	}
	for i := range idx.Symbols {
		sym := &idx.Symbols[i]
		if sym.Definition.ContainsOrEquals(pos) {
			return sym
		}
	}
	for i := range idx.Symbols {
		sym := &idx.Symbols[i]
		for _, ref := range sym.References {
			if ref.ContainsOrEquals(pos) {
				return sym
			}
		}
	}
	return nil
}

// ByPrefix returns symbols whose name starts with prefix,
// case-insensitively. An empty prefix matches everything.
func (idx *SymbolIndex) ByPrefix(prefix string) []*Symbol {
	if idx == nil {
		return nil
	}
	lower := strings.ToLower(prefix)
	var out []*Symbol
	for i := range idx.Symbols {
		sym := &idx.Symbols[i]
		if strings.HasPrefix(strings.ToLower(sym.Name), lower) {
			out = append(out, sym)
		}
	}
	return out
}

func fnDetail(fn *ast.FnDecl) string {
	var sb strings.Builder
	sb.WriteString("fn ")
	sb.WriteString(fn.Name)
	sb.WriteString("(")
	for i, p := range fn.Params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.Name)
		sb.WriteString(": ")
		sb.WriteString(displayType(p.Type))
	}
	sb.WriteString(")")
	if fn.ReturnType.Kind != types.Void {
		sb.WriteString(" -> ")
		sb.WriteString(displayType(fn.ReturnType))
	}
	return sb.String()
}

// displayType renders a type for hover and completion detail, hiding the
// checker's internal error/zero spellings behind a neutral placeholder.
func displayType(t types.Type) string {
	if t.IsZero() || t.IsError() {
		return "_"
	}
	return t.String()
}
