package types

import "fmt"

// Kind discriminates the variant held by a Type value.
type Kind uint8

const (
	// Invalid is the zero value; a Type must never be used in this state
	// once the checker has run (see the "type annotation totality"
	// invariant).
	Invalid Kind = iota
	Int
	Float
	Bool
	String
	Void
	Class
	Option
	Array
	Function

	// Error is a synthetic type assigned to any expression whose
	// subcomponents already failed to check. It is assignable to and from
	// everything, which suppresses cascades of follow-on diagnostics.
	Error
)

// Type is a value type representing one node of Magolor's type lattice.
//
// Only the fields relevant to Kind are meaningful:
//   - Class uses ClassName.
//   - Option and Array use Elem (the option's/array's element type).
//   - Function uses Params and Return.
//
// Type is comparable by value for the primitive kinds; use [Equal] for
// structural comparison across all kinds, since Params/Return/Elem are
// pointers for recursive variants.
type Type struct {
	Kind      Kind
	ClassName string
	Elem      *Type
	Params    []Type
	Return    *Type
}

// Primitive constructors.
var (
	TInt    = Type{Kind: Int}
	TFloat  = Type{Kind: Float}
	TBool   = Type{Kind: Bool}
	TString = Type{Kind: String}
	TVoid   = Type{Kind: Void}
	TError  = Type{Kind: Error}
)

// NewClass returns a Class{name} type.
func NewClass(name string) Type {
	return Type{Kind: Class, ClassName: name}
}

// NewOption returns an Option{inner} type.
func NewOption(inner Type) Type {
	innerCopy := inner
	return Type{Kind: Option, Elem: &innerCopy}
}

// NewArray returns an Array{element} type.
func NewArray(element Type) Type {
	elemCopy := element
	return Type{Kind: Array, Elem: &elemCopy}
}

// NewFunction returns a Function{params, return} type.
func NewFunction(params []Type, ret Type) Type {
	retCopy := ret
	out := make([]Type, len(params))
	copy(out, params)
	return Type{Kind: Function, Params: out, Return: &retCopy}
}

// IsZero reports whether t is the uninitialized zero value (pre-check type
// slot).
func (t Type) IsZero() bool {
	return t.Kind == Invalid
}

// IsError reports whether t is the synthetic error type.
func (t Type) IsError() bool {
	return t.Kind == Error
}

// IsNumeric reports whether t is Int or Float.
func (t Type) IsNumeric() bool {
	return t.Kind == Int || t.Kind == Float
}

// Equal reports whether t and other denote the same type, recursing into
// Option/Array/Function components. The synthetic Error type is never
// equal to anything via Equal — use AssignableTo for error-suppression
// semantics.
func (t Type) Equal(other Type) bool {
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case Class:
		return t.ClassName == other.ClassName
	case Option, Array:
		return elemEqual(t.Elem, other.Elem)
	case Function:
		if len(t.Params) != len(other.Params) {
			return false
		}
		for i := range t.Params {
			if !t.Params[i].Equal(other.Params[i]) {
				return false
			}
		}
		return elemEqual(t.Return, other.Return)
	default:
		return true
	}
}

func elemEqual(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// String renders the type the way it appears in diagnostics and hover text
// (Magolor source syntax, not the target C++ spelling — see codegen for
// that mapping).
func (t Type) String() string {
	switch t.Kind {
	case Int:
		return "int"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case String:
		return "string"
	case Void:
		return "void"
	case Class:
		return t.ClassName
	case Option:
		return fmt.Sprintf("Option<%s>", t.Elem.String())
	case Array:
		return fmt.Sprintf("Array<%s>", t.Elem.String())
	case Function:
		s := "fn("
		for i, p := range t.Params {
			if i > 0 {
				s += ", "
			}
			s += p.String()
		}
		s += ")"
		if t.Return != nil {
			s += " -> " + t.Return.String()
		}
		return s
	case Error:
		return "<error>"
	default:
		return "<invalid>"
	}
}
