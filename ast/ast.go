package ast

import (
	"github.com/lucas-veyrier/magolor/location"
	"github.com/lucas-veyrier/magolor/types"
)

// Expr is implemented by every expression node. Expressions carry a Type
// slot assigned by the checker; before checking, Type() returns the zero
// types.Type (IsZero reports true).
type Expr interface {
	Span() location.Span
	Type() types.Type
	SetType(types.Type)
	exprNode()
}

// exprBase supplies the span and type slot shared by all expression nodes.
type exprBase struct {
	span location.Span
	typ  types.Type
}

func (b *exprBase) Span() location.Span { return b.span }
func (b *exprBase) Type() types.Type    { return b.typ }
func (b *exprBase) SetType(t types.Type) { b.typ = t }

// SetSpan stamps the node's span; called once by the parser when the node
// is built.
func (b *exprBase) SetSpan(s location.Span) { b.span = s }
func (*exprBase) exprNode()                 {}

// IntLit is an integer literal.
type IntLit struct {
	exprBase
	Value int64
}

// FloatLit is a floating-point literal.
type FloatLit struct {
	exprBase
	Value float64
}

// StringLit is a string literal. When Interpolated is true, Value still
// contains the raw `{name}` placeholders; they are split apart by the code
// generator and validated by the checker.
type StringLit struct {
	exprBase
	Value        string
	Interpolated bool
}

// BoolLit is a boolean literal.
type BoolLit struct {
	exprBase
	Value bool
}

// Ident is a bare identifier reference.
type Ident struct {
	exprBase
	Name string
}

// Binary is a binary operation. Op is the operator's source spelling, one
// of: || && == != < > <= >= + - * / %.
type Binary struct {
	exprBase
	Op    string
	Left  Expr
	Right Expr
}

// Unary is a prefix operation. Op is "!" or "-".
type Unary struct {
	exprBase
	Op      string
	Operand Expr
}

// Call applies a callee to arguments.
type Call struct {
	exprBase
	Callee Expr
	Args   []Expr
}

// Member accesses a named member of an object. Both `.` and `::` produce a
// Member node; downstream lookup treats them identically. NameSpan covers
// just the member identifier, for precise navigation.
type Member struct {
	exprBase
	Object   Expr
	Name     string
	NameSpan location.Span
}

// Index subscripts an object with an index expression.
type Index struct {
	exprBase
	Object Expr
	Idx    Expr
}

// Param is a declared function, method, or lambda parameter.
type Param struct {
	Name string
	Type types.Type
	Span location.Span
}

// Lambda is an anonymous function literal. ReturnType is the zero
// types.Type when no annotation was written.
type Lambda struct {
	exprBase
	Params     []Param
	ReturnType types.Type
	Body       []Stmt
}

// Construct instantiates a class: `new Name(args)`.
type Construct struct {
	exprBase
	ClassName string
	Args      []Expr
}

// SomeExpr wraps a value in an Option.
type SomeExpr struct {
	exprBase
	Value Expr
}

// NoneExpr is the empty Option.
type NoneExpr struct {
	exprBase
}

// ThisExpr refers to the receiver inside a method body.
type ThisExpr struct {
	exprBase
}

// ArrayLit is an array literal `[e1, e2, ...]`.
type ArrayLit struct {
	exprBase
	Elems []Expr
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Span() location.Span
	stmtNode()
}

type stmtBase struct {
	span location.Span
}

func (b *stmtBase) Span() location.Span { return b.span }

// SetSpan stamps the node's span; called once by the parser when the node
// is built.
func (b *stmtBase) SetSpan(s location.Span) { b.span = s }
func (*stmtBase) stmtNode()                 {}

// Let declares a binding. Type is the zero types.Type when no annotation
// was written; the checker fills the binding's type from Init in that case.
type Let struct {
	stmtBase
	Name     string
	NameSpan location.Span
	Type     types.Type
	Init     Expr
	Mutable  bool
}

// Return exits the enclosing function. Value is nil for a bare `return;`.
type Return struct {
	stmtBase
	Value Expr
}

// ExprStmt evaluates an expression for its effect.
type ExprStmt struct {
	stmtBase
	X Expr
}

// If is a conditional with optional else body. Else is nil when there is no
// else branch; an empty `else {}` is a non-nil empty slice. An `else if`
// chain is represented by an Else slice containing a single nested If.
type If struct {
	stmtBase
	Cond Expr
	Then []Stmt
	Else []Stmt
}

// While is a pre-test loop.
type While struct {
	stmtBase
	Cond Expr
	Body []Stmt
}

// For iterates an array, binding each element to Var in the body's scope.
type For struct {
	stmtBase
	Var      string
	VarSpan  location.Span
	Iterable Expr
	Body     []Stmt
}

// MatchArm is one arm of a match statement. Pattern is "Some", "None", or
// an identifier compared by equality; Binder is empty when the arm binds
// nothing.
type MatchArm struct {
	Pattern    string
	Binder     string
	BinderSpan location.Span
	Body       []Stmt
	Span       location.Span
}

// Match scrutinizes an Option value.
type Match struct {
	stmtBase
	Scrutinee Expr
	Arms      []MatchArm
}

// Block is a braced statement sequence with its own scope.
type Block struct {
	stmtBase
	Stmts []Stmt
}

// Raw is an opaque `@cpp{ ... }` escape hatch emitted verbatim by the code
// generator. The checker does not look inside.
type Raw struct {
	stmtBase
	Code string
}

// UsingDecl imports a module by dotted path. Span covers the whole
// declaration; PathSpan covers just the dotted path, for diagnostics that
// point at the module name.
type UsingDecl struct {
	Path     []string
	Span     location.Span
	PathSpan location.Span
}

// Dotted returns the import path joined with '.'.
func (u UsingDecl) Dotted() string {
	s := ""
	for i, seg := range u.Path {
		if i > 0 {
			s += "."
		}
		s += seg
	}
	return s
}

// CImportDecl names a C++ header to #include verbatim in the generated
// translation unit. System headers (`cimport <stdio.h>;`) emit angle
// brackets; local headers (`cimport "util.h";`) emit quotes.
type CImportDecl struct {
	Header string
	System bool
	Span   location.Span
}

// FnDecl declares a function or method. Top-level functions default to
// public; class methods default to private.
type FnDecl struct {
	Name       string
	NameSpan   location.Span
	Params     []Param
	ReturnType types.Type
	Body       []Stmt
	Public     bool
	Static     bool
	Span       location.Span
}

// Signature returns the declared function type.
func (f *FnDecl) Signature() types.Type {
	params := make([]types.Type, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Type
	}
	return types.NewFunction(params, f.ReturnType)
}

// Field declares a class field. Fields default to private.
type Field struct {
	Name     string
	NameSpan location.Span
	Type     types.Type
	Public   bool
	Span     location.Span
}

// ClassDecl declares a class. Parent is empty when the class has no
// declared ancestor.
type ClassDecl struct {
	Name     string
	NameSpan location.Span
	Fields   []Field
	Methods  []FnDecl
	Parent   string
	Public   bool
	Span     location.Span
}

// FindField returns the declared field with the given name, or nil.
func (c *ClassDecl) FindField(name string) *Field {
	for i := range c.Fields {
		if c.Fields[i].Name == name {
			return &c.Fields[i]
		}
	}
	return nil
}

// FindMethod returns the declared method with the given name, or nil.
func (c *ClassDecl) FindMethod(name string) *FnDecl {
	for i := range c.Methods {
		if c.Methods[i].Name == name {
			return &c.Methods[i]
		}
	}
	return nil
}

// Program is one parsed compilation unit.
type Program struct {
	Usings    []UsingDecl
	CImports  []CImportDecl
	Classes   []ClassDecl
	Functions []FnDecl
}

// FindClass returns the declared class with the given name, or nil.
func (p *Program) FindClass(name string) *ClassDecl {
	for i := range p.Classes {
		if p.Classes[i].Name == name {
			return &p.Classes[i]
		}
	}
	return nil
}

// FindFunction returns the declared top-level function with the given
// name, or nil.
func (p *Program) FindFunction(name string) *FnDecl {
	for i := range p.Functions {
		if p.Functions[i].Name == name {
			return &p.Functions[i]
		}
	}
	return nil
}
