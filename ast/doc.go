// Package ast defines the tagged-sum expression, statement, and
// declaration node set produced by the parser and annotated by the
// checker. Every node carries a location.Span; expression nodes additionally
// carry a settable Type slot, filled in by package check.
package ast
