package check

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lucas-veyrier/magolor/ast"
	"github.com/lucas-veyrier/magolor/diag"
	"github.com/lucas-veyrier/magolor/internal/trace"
	"github.com/lucas-veyrier/magolor/location"
	"github.com/lucas-veyrier/magolor/modreg"
	"github.com/lucas-veyrier/magolor/stdlib"
	"github.com/lucas-veyrier/magolor/types"
)

// Checker performs semantic analysis over registered modules.
//
// Checking is two-phase per module: phase A hoists every class name and
// function signature into the module's top scope (permitting forward
// references and mutual recursion), phase B checks function and method
// bodies, assigning a type to every expression node.
//
// The checker never stops at the first problem: a failing sub-expression
// is typed with the synthetic error type, which is assignable to and from
// everything, suppressing cascades.
type Checker struct {
	reg     *modreg.Registry
	catalog *stdlib.Catalog
	coll    *diag.Collector
	logger  *slog.Logger

	// Per-module state, reset by CheckModule.
	module       *modreg.Module
	top          *scope
	symbolOrigin map[string]string // imported symbol name -> import path
	usedImports  map[string]bool   // import path -> referenced
	hasBuiltin   bool

	// Per-function state.
	currentClass string
	inStatic     bool
	returnType   types.Type
}

// New creates a Checker. catalog may be nil (no built-in symbols resolve);
// logger may be nil (tracing disabled).
func New(reg *modreg.Registry, catalog *stdlib.Catalog, coll *diag.Collector, logger *slog.Logger) *Checker {
	return &Checker{reg: reg, catalog: catalog, coll: coll, logger: logger}
}

// CheckAll checks every registered module in name order.
func (c *Checker) CheckAll(ctx context.Context) {
	for _, m := range c.reg.Modules() {
		c.CheckModule(ctx, m)
	}
}

// CheckModule checks a single module. Imports must already be resolved
// (see modreg.Resolver).
func (c *Checker) CheckModule(ctx context.Context, m *modreg.Module) {
	if m.Program == nil {
		return
	}
	op := trace.Begin(ctx, c.logger, "magolor.check.module", slog.String("module", m.Name))
	defer op.End(nil)

	c.module = m
	c.top = newScope(nil)
	c.symbolOrigin = make(map[string]string)
	c.usedImports = make(map[string]bool)
	c.hasBuiltin = false

	c.hoist(ctx)
	c.checkBodies(ctx)
	c.reportUnusedImports()
}

// --- phase A: hoisting ---

func (c *Checker) hoist(ctx context.Context) {
	op := trace.Begin(ctx, c.logger, "magolor.check.hoist", slog.String("module", c.module.Name))
	defer op.End(nil)
	prog := c.module.Program

	for i := range prog.Classes {
		cls := &prog.Classes[i]
		c.declareTop(cls.Name, binding{typ: types.NewClass(cls.Name), span: cls.NameSpan})
	}
	for i := range prog.Functions {
		fn := &prog.Functions[i]
		c.declareTop(fn.Name, binding{typ: fn.Signature(), span: fn.NameSpan})
	}

	for _, imp := range c.module.Imports {
		c.usedImports[imp.Path] = false
		if imp.Builtin {
			c.hasBuiltin = true
			continue
		}
		target, ok := c.reg.Get(imp.Path)
		if !ok || target.Program == nil {
			continue
		}
		for i := range target.Program.Classes {
			cls := &target.Program.Classes[i]
			if cls.Public {
				c.bindImported(cls.Name, types.NewClass(cls.Name), imp.Path)
			}
		}
		for i := range target.Program.Functions {
			fn := &target.Program.Functions[i]
			if fn.Public {
				c.bindImported(fn.Name, fn.Signature(), imp.Path)
			}
		}
	}
}

func (c *Checker) declareTop(name string, b binding) {
	if prev, dup := c.top.declare(name, b); dup {
		issue := diag.NewIssue(diag.Error, diag.E1302,
			fmt.Sprintf("%q is declared more than once in module %s", name, c.module.Name)).
			WithSpan(b.span)
		if !prev.span.IsZero() {
			issue = issue.WithRelated(location.RelatedInfo{Span: prev.span, Message: "previous declaration here"})
		}
		c.coll.Collect(issue.Build())
	}
}

// bindImported adds an imported public symbol to the top scope unless a
// local declaration already claims the name (the local one wins).
func (c *Checker) bindImported(name string, typ types.Type, importPath string) {
	if _, ok := c.top.bindings[name]; ok {
		return
	}
	c.top.declare(name, binding{typ: typ})
	c.symbolOrigin[name] = importPath
}

// --- phase B: bodies ---

func (c *Checker) checkBodies(ctx context.Context) {
	op := trace.Begin(ctx, c.logger, "magolor.check.bodies", slog.String("module", c.module.Name))
	defer op.End(nil)
	prog := c.module.Program

	for i := range prog.Classes {
		cls := &prog.Classes[i]
		if cls.Parent != "" {
			if _, _, ok := c.findClass(cls.Parent); !ok {
				c.errorf(diag.E1405, cls.NameSpan, "unknown parent class %q", cls.Parent)
			}
		}
		for j := range cls.Fields {
			f := &cls.Fields[j]
			f.Type = c.resolveType(f.Type, f.Span)
		}
		for j := range cls.Methods {
			c.checkFunction(&cls.Methods[j], cls.Name)
		}
	}
	for i := range prog.Functions {
		c.checkFunction(&prog.Functions[i], "")
	}
}

func (c *Checker) checkFunction(fn *ast.FnDecl, className string) {
	c.currentClass = className
	c.inStatic = fn.Static
	fn.ReturnType = c.resolveType(fn.ReturnType, fn.NameSpan)
	c.returnType = fn.ReturnType

	sc := newScope(c.top)
	for i := range fn.Params {
		p := &fn.Params[i]
		p.Type = c.resolveType(p.Type, p.Span)
		if _, dup := sc.declare(p.Name, binding{typ: p.Type, span: p.Span}); dup {
			c.errorf(diag.E1302, p.Span, "duplicate parameter name %q", p.Name)
		}
	}

	c.checkStmts(fn.Body, sc)

	c.currentClass = ""
	c.inStatic = false
}

// --- statements ---

func (c *Checker) checkStmts(stmts []ast.Stmt, sc *scope) {
	for _, stmt := range stmts {
		c.checkStmt(stmt, sc)
	}
}

func (c *Checker) checkStmt(stmt ast.Stmt, sc *scope) {
	switch s := stmt.(type) {
	case *ast.Let:
		init := c.checkExpr(s.Init, sc)
		declared := init
		if !s.Type.IsZero() {
			s.Type = c.resolveType(s.Type, s.NameSpan)
			if !types.AssignableTo(s.Type, init, c.reg.IsAncestor) {
				c.errorf(diag.E1402, s.Init.Span(),
					"cannot assign value of type %s to %s", init, s.Type)
			}
			declared = s.Type
		}
		if prev, dup := sc.declare(s.Name, binding{typ: declared, span: s.NameSpan, mutable: s.Mutable}); dup {
			issue := diag.NewIssue(diag.Error, diag.E1302,
				fmt.Sprintf("%q is already declared in this scope", s.Name)).
				WithSpan(s.NameSpan)
			if !prev.span.IsZero() {
				issue = issue.WithRelated(location.RelatedInfo{Span: prev.span, Message: "previous declaration here"})
			}
			c.coll.Collect(issue.Build())
		}

	case *ast.Return:
		if s.Value == nil {
			if c.returnType.Kind != types.Void && !c.returnType.IsError() {
				c.errorf(diag.E1402, s.Span(), "missing return value in function returning %s", c.returnType)
			}
			return
		}
		got := c.checkExpr(s.Value, sc)
		if c.returnType.Kind == types.Void {
			c.errorf(diag.E1402, s.Value.Span(), "unexpected return value in void function")
			return
		}
		if !types.AssignableTo(c.returnType, got, c.reg.IsAncestor) {
			c.errorf(diag.E1402, s.Value.Span(),
				"cannot return value of type %s from function returning %s", got, c.returnType)
		}

	case *ast.ExprStmt:
		c.checkExpr(s.X, sc)

	case *ast.If:
		c.requireBool(c.checkExpr(s.Cond, sc), s.Cond.Span(), "if condition")
		c.checkStmts(s.Then, newScope(sc))
		c.checkStmts(s.Else, newScope(sc))

	case *ast.While:
		c.requireBool(c.checkExpr(s.Cond, sc), s.Cond.Span(), "while condition")
		c.checkStmts(s.Body, newScope(sc))

	case *ast.For:
		it := c.checkExpr(s.Iterable, sc)
		elem := types.TError
		if it.Kind == types.Array && it.Elem != nil {
			elem = *it.Elem
		} else if !it.IsError() {
			c.errorf(diag.E1403, s.Iterable.Span(), "for loop requires an Array, found %s", it)
		}
		body := newScope(sc)
		body.declare(s.Var, binding{typ: elem, span: s.VarSpan})
		c.checkStmts(s.Body, body)

	case *ast.Match:
		c.checkMatch(s, sc)

	case *ast.Block:
		c.checkStmts(s.Stmts, newScope(sc))

	case *ast.Raw:
		// Opaque target code: trusted as written.
	}
}

func (c *Checker) checkMatch(s *ast.Match, sc *scope) {
	scrut := c.checkExpr(s.Scrutinee, sc)
	elem := types.TError
	switch {
	case scrut.Kind == types.Option && scrut.Elem != nil:
		elem = *scrut.Elem
	case scrut.IsError():
	default:
		c.errorf(diag.E1403, s.Scrutinee.Span(), "match requires an Option value, found %s", scrut)
	}

	var hasSome, hasNone bool
	for i := range s.Arms {
		arm := &s.Arms[i]
		armScope := newScope(sc)
		switch arm.Pattern {
		case "Some":
			hasSome = true
			if arm.Binder != "" {
				armScope.declare(arm.Binder, binding{typ: elem, span: arm.BinderSpan})
			}
		case "None":
			hasNone = true
			if arm.Binder != "" {
				c.errorf(diag.E1403, arm.BinderSpan, "None pattern cannot bind a variable")
			}
		default:
			// Equality-compared pattern: the name must resolve in scope.
			if _, ok := sc.lookup(arm.Pattern); !ok {
				c.errorf(diag.E1301, arm.Span, "undeclared identifier %q in match pattern", arm.Pattern)
			}
		}
		c.checkStmts(arm.Body, armScope)
	}

	if scrut.Kind == types.Option && (!hasSome || !hasNone) {
		missing := "None"
		if !hasSome {
			missing = "Some"
		}
		c.coll.Collect(diag.NewIssue(diag.Warning, diag.W1501,
			fmt.Sprintf("match does not cover the %s variant", missing)).
			WithSpan(s.Span()).
			WithHint("add a "+missing+" arm").
			Build())
	}
}

// --- expressions ---

func (c *Checker) checkExpr(e ast.Expr, sc *scope) types.Type {
	t := c.typeOf(e, sc)
	e.SetType(t)
	return t
}

func (c *Checker) typeOf(e ast.Expr, sc *scope) types.Type {
	switch x := e.(type) {
	case *ast.IntLit:
		return types.TInt
	case *ast.FloatLit:
		return types.TFloat
	case *ast.BoolLit:
		return types.TBool
	case *ast.StringLit:
		if x.Interpolated {
			c.checkInterpolation(x, sc)
		}
		return types.TString
	case *ast.Ident:
		return c.typeOfIdent(x, sc)
	case *ast.Binary:
		return c.typeOfBinary(x, sc)
	case *ast.Unary:
		return c.typeOfUnary(x, sc)
	case *ast.Call:
		return c.typeOfCall(x, sc)
	case *ast.Member:
		return c.typeOfMember(x, sc)
	case *ast.Index:
		return c.typeOfIndex(x, sc)
	case *ast.Lambda:
		return c.typeOfLambda(x, sc)
	case *ast.Construct:
		return c.typeOfConstruct(x, sc)
	case *ast.SomeExpr:
		inner := c.checkExpr(x.Value, sc)
		return types.NewOption(inner)
	case *ast.NoneExpr:
		// The element type stays open until context pins it; the error
		// element matches any concrete component during assignment.
		return types.NewOption(types.TError)
	case *ast.ThisExpr:
		if c.currentClass == "" || c.inStatic {
			c.errorf(diag.E1301, x.Span(), "'this' used outside an instance method")
			return types.TError
		}
		return types.NewClass(c.currentClass)
	case *ast.ArrayLit:
		return c.typeOfArrayLit(x, sc)
	default:
		return types.TError
	}
}

func (c *Checker) typeOfIdent(x *ast.Ident, sc *scope) types.Type {
	if b, ok := sc.lookup(x.Name); ok {
		if origin, imported := c.symbolOrigin[x.Name]; imported {
			c.usedImports[origin] = true
		}
		return b.typ
	}
	if c.hasBuiltin && c.catalog != nil {
		if sym, ok := c.catalog.AliasSymbol(x.Name); ok {
			c.markBuiltinUsed(aliasModule(c.catalog, x.Name))
			return types.NewFunction(sym.Params, sym.Return)
		}
	}
	c.errorf(diag.E1301, x.Span(), "undeclared identifier %q", x.Name)
	return types.TError
}

func aliasModule(cat *stdlib.Catalog, name string) string {
	for _, a := range cat.Aliases() {
		if a.Name == name {
			return a.Module
		}
	}
	return ""
}

func (c *Checker) markBuiltinUsed(path string) {
	if _, tracked := c.usedImports[path]; tracked {
		c.usedImports[path] = true
	}
}

func (c *Checker) typeOfBinary(x *ast.Binary, sc *scope) types.Type {
	left := c.checkExpr(x.Left, sc)
	right := c.checkExpr(x.Right, sc)
	if left.IsError() || right.IsError() {
		return types.TError
	}

	switch x.Op {
	case "&&", "||":
		if left.Kind != types.Bool || right.Kind != types.Bool {
			c.errorf(diag.E1403, x.Span(), "operator %q requires bool operands, found %s and %s", x.Op, left, right)
			return types.TError
		}
		return types.TBool

	case "==", "!=":
		if !types.AssignableTo(left, right, c.reg.IsAncestor) && !types.AssignableTo(right, left, c.reg.IsAncestor) {
			c.errorf(diag.E1403, x.Span(), "cannot compare %s with %s", left, right)
			return types.TError
		}
		return types.TBool

	case "<", ">", "<=", ">=":
		if left.IsNumeric() && right.IsNumeric() {
			return types.TBool
		}
		if left.Kind == types.String && right.Kind == types.String {
			return types.TBool
		}
		c.errorf(diag.E1403, x.Span(), "operator %q is defined over numerics and strings, found %s and %s", x.Op, left, right)
		return types.TError

	case "+":
		if left.Kind == types.String && right.Kind == types.String {
			return types.TString
		}
		fallthrough
	case "-", "*", "/", "%":
		if left.IsNumeric() && right.IsNumeric() {
			if x.Op == "%" && (left.Kind != types.Int || right.Kind != types.Int) {
				c.errorf(diag.E1403, x.Span(), "operator %% requires int operands, found %s and %s", left, right)
				return types.TError
			}
			return types.CommonNumeric(left, right)
		}
		c.errorf(diag.E1403, x.Span(), "operator %q is not defined over %s and %s", x.Op, left, right)
		return types.TError

	default:
		c.errorf(diag.E1403, x.Span(), "unknown operator %q", x.Op)
		return types.TError
	}
}

func (c *Checker) typeOfUnary(x *ast.Unary, sc *scope) types.Type {
	operand := c.checkExpr(x.Operand, sc)
	if operand.IsError() {
		return types.TError
	}
	switch x.Op {
	case "!":
		if operand.Kind != types.Bool {
			c.errorf(diag.E1403, x.Span(), "operator ! requires a bool operand, found %s", operand)
			return types.TError
		}
		return types.TBool
	case "-":
		if !operand.IsNumeric() {
			c.errorf(diag.E1403, x.Span(), "unary - requires a numeric operand, found %s", operand)
			return types.TError
		}
		return operand
	default:
		c.errorf(diag.E1403, x.Span(), "unknown unary operator %q", x.Op)
		return types.TError
	}
}

func (c *Checker) typeOfCall(x *ast.Call, sc *scope) types.Type {
	callee := c.checkExpr(x.Callee, sc)
	argTypes := make([]types.Type, len(x.Args))
	for i, arg := range x.Args {
		argTypes[i] = c.checkExpr(arg, sc)
	}

	if callee.IsError() {
		return types.TError
	}
	if callee.Kind != types.Function {
		c.errorf(diag.E1403, x.Callee.Span(), "expression of type %s is not callable", callee)
		return types.TError
	}

	if len(argTypes) != len(callee.Params) {
		c.errorf(diag.E1401, x.Span(), "call expects %d argument(s), found %d", len(callee.Params), len(argTypes))
	} else {
		for i, at := range argTypes {
			if !types.AssignableTo(callee.Params[i], at, c.reg.IsAncestor) {
				c.errorf(diag.E1402, x.Args[i].Span(),
					"argument %d: cannot use %s as %s", i+1, at, callee.Params[i])
			}
		}
	}

	if callee.Return == nil {
		return types.TVoid
	}
	return *callee.Return
}

// typeOfMember handles member access on class values and on the Std
// builtin namespace. `.` and `::` parse to the same node and are treated
// identically here.
func (c *Checker) typeOfMember(x *ast.Member, sc *scope) types.Type {
	// Std.<alias> and Std.<Namespace> are resolved against the catalog,
	// not the scope: Std is not a declared identifier. A local binding
	// named Std shadows the builtin namespace.
	if base, ok := x.Object.(*ast.Ident); ok && base.Name == "Std" && c.catalog != nil {
		if _, shadowed := sc.lookup("Std"); !shadowed {
			return c.typeOfStdAccess(base, x)
		}
	}

	obj := c.checkExpr(x.Object, sc)
	if obj.IsError() {
		return types.TError
	}

	if ns, ok := stdNamespaceName(obj); ok {
		mod, _ := c.catalog.Namespace(ns)
		sym, ok := mod.Lookup(x.Name)
		if !ok {
			c.errorf(diag.E1301, x.NameSpan, "%s has no symbol %q", mod.Path, x.Name)
			return types.TError
		}
		c.markBuiltinUsed(mod.Path)
		return symbolType(sym)
	}

	if obj.Kind != types.Class {
		c.errorf(diag.E1403, x.Object.Span(), "member access requires a class value, found %s", obj)
		return types.TError
	}
	return c.classMemberType(obj.ClassName, x)
}

// typeOfStdAccess resolves Std.<Namespace> and Std.<alias> against the
// catalog.
func (c *Checker) typeOfStdAccess(base *ast.Ident, x *ast.Member) types.Type {
	base.SetType(types.TError) // the bare namespace has no value type
	if _, ok := c.catalog.Namespace(x.Name); ok {
		return stdNamespaceType(x.Name)
	}
	if sym, ok := c.catalog.AliasSymbol(x.Name); ok {
		c.markBuiltinUsed(aliasModule(c.catalog, x.Name))
		return symbolType(sym)
	}
	c.errorf(diag.E1301, x.NameSpan, "Std has no builtin namespace or function %q", x.Name)
	return types.TError
}

// stdNamespaceType encodes a Std sub-namespace as a class type with a
// dotted name; dotted names cannot be declared in source, so the marker
// never collides with a user class.
func stdNamespaceType(ns string) types.Type {
	return types.NewClass("Std." + ns)
}

func stdNamespaceName(t types.Type) (string, bool) {
	if t.Kind == types.Class {
		if ns, ok := strings.CutPrefix(t.ClassName, "Std."); ok {
			return ns, true
		}
	}
	return "", false
}

func symbolType(sym stdlib.Symbol) types.Type {
	if sym.IsCallable() {
		return types.NewFunction(sym.Params, sym.Return)
	}
	return sym.Return
}

func (c *Checker) classMemberType(className string, x *ast.Member) types.Type {
	// Walk the declared parent chain so inherited members resolve.
	current := className
	for {
		cls, owner, ok := c.findClass(current)
		if !ok {
			c.errorf(diag.E1405, x.Object.Span(), "unknown class %q", current)
			return types.TError
		}

		if f := cls.FindField(x.Name); f != nil {
			if !f.Public && c.currentClass != cls.Name {
				c.errorf(diag.E1404, x.NameSpan, "field %q of class %s is private", x.Name, cls.Name)
			}
			c.markModuleUsed(owner)
			return f.Type
		}
		if m := cls.FindMethod(x.Name); m != nil {
			if !m.Public && c.currentClass != cls.Name {
				c.errorf(diag.E1404, x.NameSpan, "method %q of class %s is private", x.Name, cls.Name)
			}
			c.markModuleUsed(owner)
			return m.Signature()
		}

		if cls.Parent == "" {
			c.errorf(diag.E1403, x.NameSpan, "class %s has no member %q", className, x.Name)
			return types.TError
		}
		current = cls.Parent
	}
}

func (c *Checker) typeOfIndex(x *ast.Index, sc *scope) types.Type {
	obj := c.checkExpr(x.Object, sc)
	idx := c.checkExpr(x.Idx, sc)

	if !idx.IsError() && idx.Kind != types.Int {
		c.errorf(diag.E1403, x.Idx.Span(), "index must be int, found %s", idx)
	}
	if obj.IsError() {
		return types.TError
	}
	if obj.Kind != types.Array || obj.Elem == nil {
		c.errorf(diag.E1403, x.Object.Span(), "indexing requires an Array, found %s", obj)
		return types.TError
	}
	return *obj.Elem
}

func (c *Checker) typeOfLambda(x *ast.Lambda, sc *scope) types.Type {
	inner := newScope(sc)
	params := make([]types.Type, len(x.Params))
	for i := range x.Params {
		p := &x.Params[i]
		p.Type = c.resolveType(p.Type, p.Span)
		params[i] = p.Type
		inner.declare(p.Name, binding{typ: p.Type, span: p.Span})
	}

	ret := x.ReturnType
	if ret.IsZero() {
		ret = types.TVoid
	} else {
		ret = c.resolveType(ret, x.Span())
	}
	x.ReturnType = ret

	savedReturn := c.returnType
	c.returnType = ret
	c.checkStmts(x.Body, inner)
	c.returnType = savedReturn

	return types.NewFunction(params, ret)
}

func (c *Checker) typeOfConstruct(x *ast.Construct, sc *scope) types.Type {
	argTypes := make([]types.Type, len(x.Args))
	for i, arg := range x.Args {
		argTypes[i] = c.checkExpr(arg, sc)
	}

	cls, owner, ok := c.findClass(x.ClassName)
	if !ok {
		c.errorf(diag.E1405, x.Span(), "unknown class %q", x.ClassName)
		return types.TError
	}
	if owner != c.module && !cls.Public {
		c.errorf(diag.E1202, x.Span(), "class %q is private to module %s", x.ClassName, owner.Name)
	}
	c.markModuleUsed(owner)

	// The positional constructor takes one argument per declared field.
	if len(argTypes) != len(cls.Fields) {
		c.errorf(diag.E1401, x.Span(), "constructor of %s expects %d argument(s), found %d",
			cls.Name, len(cls.Fields), len(argTypes))
	} else {
		for i, at := range argTypes {
			if !types.AssignableTo(cls.Fields[i].Type, at, c.reg.IsAncestor) {
				c.errorf(diag.E1402, x.Args[i].Span(),
					"field %q: cannot use %s as %s", cls.Fields[i].Name, at, cls.Fields[i].Type)
			}
		}
	}
	return types.NewClass(cls.Name)
}

func (c *Checker) typeOfArrayLit(x *ast.ArrayLit, sc *scope) types.Type {
	if len(x.Elems) == 0 {
		return types.NewArray(types.TError)
	}
	elem := c.checkExpr(x.Elems[0], sc)
	for _, e := range x.Elems[1:] {
		t := c.checkExpr(e, sc)
		if !types.AssignableTo(elem, t, c.reg.IsAncestor) {
			c.errorf(diag.E1402, e.Span(), "array element of type %s does not match element type %s", t, elem)
		}
	}
	return types.NewArray(elem)
}

// checkInterpolation validates that every {name} placeholder resolves to
// a variable in scope.
func (c *Checker) checkInterpolation(x *ast.StringLit, sc *scope) {
	for _, name := range interpolationNames(x.Value) {
		if _, ok := sc.lookup(name); !ok {
			c.errorf(diag.E1301, x.Span(), "undeclared identifier %q in string interpolation", name)
		}
	}
}

// interpolationNames extracts the placeholder names of an interpolated
// string body, left to right.
func interpolationNames(s string) []string {
	var names []string
	for i := 0; i < len(s); i++ {
		if s[i] != '{' {
			continue
		}
		end := strings.IndexByte(s[i+1:], '}')
		if end < 0 {
			break
		}
		name := s[i+1 : i+1+end]
		if name != "" {
			names = append(names, name)
		}
		i += end + 1
	}
	return names
}

// --- shared helpers ---

// findClass resolves a class name against the current module first, then
// the whole registry.
func (c *Checker) findClass(name string) (*ast.ClassDecl, *modreg.Module, bool) {
	if c.module != nil && c.module.Program != nil {
		if cls := c.module.Program.FindClass(name); cls != nil {
			return cls, c.module, true
		}
	}
	return c.reg.FindClass(name)
}

// markModuleUsed flags the import edge to owner, if one exists.
func (c *Checker) markModuleUsed(owner *modreg.Module) {
	if owner == nil || owner == c.module {
		return
	}
	if _, tracked := c.usedImports[owner.Name]; tracked {
		c.usedImports[owner.Name] = true
	}
}

// resolveType validates every Class reference inside t. Unknown classes
// produce an E1405 diagnostic and degrade that component to the error
// type; a private class in another module produces E1202.
func (c *Checker) resolveType(t types.Type, span location.Span) types.Type {
	switch t.Kind {
	case types.Class:
		cls, owner, ok := c.findClass(t.ClassName)
		if !ok {
			c.errorf(diag.E1405, span, "unknown class %q", t.ClassName)
			return types.TError
		}
		if owner != c.module && !cls.Public {
			c.errorf(diag.E1202, span, "class %q is private to module %s", t.ClassName, owner.Name)
		}
		c.markModuleUsed(owner)
		return t
	case types.Option:
		inner := c.resolveType(*t.Elem, span)
		return types.NewOption(inner)
	case types.Array:
		inner := c.resolveType(*t.Elem, span)
		return types.NewArray(inner)
	case types.Function:
		params := make([]types.Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = c.resolveType(p, span)
		}
		ret := types.TVoid
		if t.Return != nil {
			ret = c.resolveType(*t.Return, span)
		}
		return types.NewFunction(params, ret)
	default:
		return t
	}
}

func (c *Checker) requireBool(t types.Type, span location.Span, what string) {
	if t.IsError() || t.Kind == types.Bool {
		return
	}
	c.errorf(diag.E1403, span, "%s must be bool, found %s", what, t)
}

func (c *Checker) reportUnusedImports() {
	for _, imp := range c.module.Imports {
		if used, tracked := c.usedImports[imp.Path]; tracked && !used {
			c.coll.Collect(diag.NewIssue(diag.Warning, diag.W1502,
				fmt.Sprintf("module %s is imported but never used", imp.Path)).
				WithSpan(imp.Span).
				Build())
		}
	}
}

func (c *Checker) errorf(code diag.Code, span location.Span, format string, args ...any) {
	c.coll.Collect(diag.NewIssue(diag.Error, code, fmt.Sprintf(format, args...)).
		WithSpan(span).
		Build())
}
