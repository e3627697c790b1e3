// Package lexer converts Magolor source text into a token stream.
//
// The lexer is a hand-written, byte-at-a-time scanner in the style of
// instance/path/parse.go in the teacher repository: explicit index-based
// scanning with small lookahead helpers rather than a generated scanner.
// Lex errors are written to a diag.Collector and surfaced as synthetic
// Illegal tokens so that the parser can keep going; Tokenize never
// returns an error value itself.
package lexer
