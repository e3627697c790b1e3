// Package check implements the two-phase Magolor type checker: a hoist
// phase that registers class names and function signatures, then a body
// phase that assigns a type to every expression and enforces
// assignability, member visibility, and call arity.
package check
