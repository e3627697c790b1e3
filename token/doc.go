// Package token defines the lexical token kinds produced by the Magolor
// lexer and consumed by the parser.
package token
