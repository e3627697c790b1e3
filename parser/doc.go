// Package parser implements the recursive-descent Magolor parser.
//
// Expressions use precedence climbing; statements and declarations are
// parsed by one method per production. The parser never returns a Go
// error: every syntactic problem is recorded on the diag.Collector passed
// in, a synthetic node stands in for the malformed construct, and parsing
// resumes at the next statement boundary. This keeps the AST usable for
// the checker and the language server even while the user is mid-edit.
package parser
