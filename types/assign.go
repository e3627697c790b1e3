package types

// AncestryFunc reports whether parent is an ancestor of child in the
// declared class hierarchy. The checker supplies one backed by the module
// registry; a nil AncestryFunc means no class subsumption (only identical
// class names are assignable).
type AncestryFunc func(parent, child string) bool

// AssignableTo reports whether a value of type src can be assigned to a
// target of type dst.
//
// The rules, in order:
//   - The synthetic Error type is assignable to and from everything, which
//     suppresses cascading diagnostics after a failed sub-expression.
//   - Assignability is reflexive on all types.
//   - Int widens to Float.
//   - Class{C} is assignable to Class{P} when P is an ancestor of C.
//   - Option, Array, and Function components require structural equality
//     (no variance).
func AssignableTo(dst, src Type, ancestry AncestryFunc) bool {
	if dst.IsError() || src.IsError() {
		return true
	}
	if dst.Kind == Float && src.Kind == Int {
		return true
	}
	if dst.Kind != src.Kind {
		return false
	}
	switch dst.Kind {
	case Class:
		if dst.ClassName == src.ClassName {
			return true
		}
		return ancestry != nil && ancestry(dst.ClassName, src.ClassName)
	case Option, Array:
		return equalModuloError(deref(dst.Elem), deref(src.Elem))
	case Function:
		return equalModuloError(dst, src)
	default:
		return true
	}
}

// equalModuloError is structural equality with the synthetic error type
// matching anything at any depth. `None` carries Option<error> until the
// context pins its element type, and the stdlib catalog's "any" wildcard
// parses to error; both must compare equal to any concrete component.
func equalModuloError(a, b Type) bool {
	if a.IsError() || b.IsError() {
		return true
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case Class:
		return a.ClassName == b.ClassName
	case Option, Array:
		return equalModuloError(deref(a.Elem), deref(b.Elem))
	case Function:
		if len(a.Params) != len(b.Params) {
			return false
		}
		for i := range a.Params {
			if !equalModuloError(a.Params[i], b.Params[i]) {
				return false
			}
		}
		return equalModuloError(deref(a.Return), deref(b.Return))
	default:
		return true
	}
}

func deref(t *Type) Type {
	if t == nil {
		return Type{Kind: Error}
	}
	return *t
}

// CommonNumeric returns the widened type of a numeric binary operation:
// Float if either side is Float, Int otherwise. Callers must have verified
// both operands are numeric.
func CommonNumeric(a, b Type) Type {
	if a.Kind == Float || b.Kind == Float {
		return TFloat
	}
	return TInt
}
