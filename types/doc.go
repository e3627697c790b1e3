// Package types defines Magolor's small closed type lattice — Int, Float,
// Bool, String, Void, Class, Option, Array, and Function — along with the
// assignability and numeric-widening rules the checker and code generator
// consult. The representation generalizes the closed-variant style of
// schema/type.go to a recursive, structurally-compared type value.
package types
