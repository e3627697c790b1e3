package token

import "github.com/lucas-veyrier/magolor/location"

// Kind identifies the lexical category of a Token.
type Kind uint8

const (
	// Illegal marks a token the lexer could not classify; the lexer has
	// already recorded a diagnostic for it.
	Illegal Kind = iota
	EOF

	// Keywords.
	Function
	Let
	Return
	If
	Else
	While
	For
	Match
	Class
	New
	This
	True
	False
	None
	Some
	Using
	Public
	Private
	Static
	Mut
	Cimport

	// Primitive type names.
	IntType
	FloatType
	BoolType
	StringType
	VoidType

	// Literals.
	IntLit
	FloatLit
	StringLit
	InterpolatedStringLit
	Ident

	// Raw target block, e.g. @cpp{ ... }.
	RawBlock

	// Operators.
	Plus
	Minus
	Star
	Slash
	Percent
	Assign
	Eq
	Ne
	Lt
	Le
	Gt
	Ge
	And
	Or
	Not
	Arrow     // ->
	FatArrow  // =>
	Dot       // .
	DoubleColon

	// Punctuation.
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Comma
	Colon
	Semicolon
	Dollar
	At
)

var kindNames = map[Kind]string{
	Illegal:               "ILLEGAL",
	EOF:                   "EOF",
	Function:              "fn",
	Let:                   "let",
	Return:                "return",
	If:                    "if",
	Else:                  "else",
	While:                 "while",
	For:                   "for",
	Match:                 "match",
	Class:                 "class",
	New:                   "new",
	This:                  "this",
	True:                  "true",
	False:                 "false",
	None:                  "None",
	Some:                  "Some",
	Using:                 "using",
	Public:                "public",
	Private:               "private",
	Static:                "static",
	Mut:                   "mut",
	Cimport:               "cimport",
	IntType:               "int",
	FloatType:             "float",
	BoolType:              "bool",
	StringType:            "string",
	VoidType:              "void",
	IntLit:                "INT_LIT",
	FloatLit:              "FLOAT_LIT",
	StringLit:             "STRING_LIT",
	InterpolatedStringLit: "INTERP_STRING_LIT",
	Ident:                 "IDENT",
	RawBlock:              "RAW_BLOCK",
	Plus:                  "+",
	Minus:                 "-",
	Star:                  "*",
	Slash:                 "/",
	Percent:               "%",
	Assign:                "=",
	Eq:                    "==",
	Ne:                    "!=",
	Lt:                    "<",
	Le:                    "<=",
	Gt:                    ">",
	Ge:                    ">=",
	And:                   "&&",
	Or:                    "||",
	Not:                   "!",
	Arrow:                 "->",
	FatArrow:              "=>",
	Dot:                   ".",
	DoubleColon:           "::",
	LParen:                "(",
	RParen:                ")",
	LBrace:                "{",
	RBrace:                "}",
	LBracket:              "[",
	RBracket:              "]",
	Comma:                 ",",
	Colon:                 ":",
	Semicolon:             ";",
	Dollar:                "$",
	At:                    "@",
}

// String returns the canonical name of the token kind, used in diagnostic
// messages ("expected ';', found '}'").
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// Keywords maps the reserved-word spelling to its Kind. Identifiers that do
// not appear here lex as Ident.
var Keywords = map[string]Kind{
	"fn":      Function,
	"let":     Let,
	"return":  Return,
	"if":      If,
	"else":    Else,
	"while":   While,
	"for":     For,
	"match":   Match,
	"class":   Class,
	"new":     New,
	"this":    This,
	"true":    True,
	"false":   False,
	"None":    None,
	"Some":    Some,
	"using":   Using,
	"public":  Public,
	"private": Private,
	"static":  Static,
	"mut":     Mut,
	"cimport": Cimport,
	"int":     IntType,
	"float":   FloatType,
	"bool":    BoolType,
	"string":  StringType,
	"void":    VoidType,
}

// IsTypeName reports whether k is one of the primitive type-name keywords.
func (k Kind) IsTypeName() bool {
	switch k {
	case IntType, FloatType, BoolType, StringType, VoidType:
		return true
	default:
		return false
	}
}

// Token is a single lexical unit: its kind, its exact source text, and the
// span it occupies. Lexeme is the literal slice of source text for the
// token (for string literals, the raw unescaped source text between quotes
// is NOT stored here — see [Token.StringValue] on the lexer side); for
// identifiers and keywords Lexeme is the token's spelling.
type Token struct {
	Kind   Kind
	Lexeme string
	Span   location.Span
}

// String renders the token for diagnostics and debugging, e.g. `IDENT "x"`.
func (t Token) String() string {
	return t.Kind.String() + " " + quoteLexeme(t.Lexeme)
}

func quoteLexeme(s string) string {
	return "\"" + s + "\""
}
