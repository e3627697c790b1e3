package diag

// CodeCategory represents the semantic domain of an error code.
//
// Categories represent the semantic domain of an error, not necessarily the
// compiler stage that emits it. Most codes are emitted exclusively by their
// category's stage, but some codes represent cross-cutting concerns.
type CodeCategory uint8

const (
	// CategorySentinel is for sentinel codes like E_LIMIT_REACHED and E_INTERNAL.
	CategorySentinel CodeCategory = iota

	// CategoryLex is for lexer errors (E1001-E1099).
	CategoryLex

	// CategoryParse is for parser errors (E1101-E1199).
	CategoryParse

	// CategoryImport is for module import resolution errors (E1201-E1299).
	CategoryImport

	// CategoryName is for name resolution errors (E1301-E1399).
	CategoryName

	// CategoryType is for type checking errors (E1401-E1499).
	CategoryType

	// CategoryWarning is for non-fatal diagnostics (W1501-W1599).
	CategoryWarning
)

// String returns a human-readable label for the category.
func (c CodeCategory) String() string {
	switch c {
	case CategorySentinel:
		return "sentinel"
	case CategoryLex:
		return "lex"
	case CategoryParse:
		return "parse"
	case CategoryImport:
		return "import"
	case CategoryName:
		return "name"
	case CategoryType:
		return "type"
	case CategoryWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Code is a stable programmatic identifier for an Issue.
//
// Error codes are stable identifiers that tools can match on, even when
// message text changes. The Code type uses unexported fields to enforce
// a closed set of valid codes—only codes defined in this package are valid.
//
// Code.String() values are globally unique across all categories. The
// CodeCategory is informational metadata for filtering and grouping.
type Code struct {
	value string
	cat   CodeCategory
}

// String returns the code's string representation (e.g., "E1401").
func (c Code) String() string {
	return c.value
}

// Category returns the programmatic category for this code.
func (c Code) Category() CodeCategory {
	return c.cat
}

// IsZero reports whether the code is unset.
func (c Code) IsZero() bool {
	return c.value == ""
}

// code is the unexported constructor—callers cannot create arbitrary codes.
func code(value string, cat CodeCategory) Code {
	return Code{value: value, cat: cat}
}

// Sentinel codes.
var (
	// E_LIMIT_REACHED is a sentinel code for explicit limit notification.
	// It does not automatically trigger Result.LimitReached(); use
	// Collector.LimitReached() to check limit status. Callers may inject
	// this code manually when desired.
	E_LIMIT_REACHED = code("E_LIMIT_REACHED", CategorySentinel)

	// E_INTERNAL indicates an unexpected invariant failure (internal bug indicator).
	// Use for conditions that should never occur in correct code.
	E_INTERNAL = code("E_INTERNAL", CategorySentinel)
)

// Lex codes (E1001-E1099).
var (
	// E1001 indicates a string literal was not closed before end of line or file.
	E1001 = code("E1001", CategoryLex)

	// E1002 indicates a character that cannot begin any token.
	E1002 = code("E1002", CategoryLex)

	// E1003 indicates a numeric literal with an invalid digit sequence.
	E1003 = code("E1003", CategoryLex)

	// E1004 indicates a @cpp{...} raw target block was not closed before end of file.
	E1004 = code("E1004", CategoryLex)
)

// Parse codes (E1101-E1199).
var (
	// E1101 indicates a token appeared where the grammar did not expect it.
	E1101 = code("E1101", CategoryParse)

	// E1102 indicates a required delimiter (closing brace, paren, bracket) is missing.
	E1102 = code("E1102", CategoryParse)

	// E1103 indicates a class, function, or field declaration is malformed.
	E1103 = code("E1103", CategoryParse)

	// E1104 indicates a match arm pattern is malformed.
	E1104 = code("E1104", CategoryParse)
)

// Import codes (E1201-E1299).
var (
	// E1201 indicates an imported module path could not be resolved.
	E1201 = code("E1201", CategoryImport)

	// E1202 indicates an import referenced a private symbol of another module.
	E1202 = code("E1202", CategoryImport)
)

// Name codes (E1301-E1399).
var (
	// E1301 indicates a reference to an identifier with no declaration in scope.
	E1301 = code("E1301", CategoryName)

	// E1302 indicates the same name was declared more than once in a scope.
	E1302 = code("E1302", CategoryName)
)

// Type codes (E1401-E1499).
var (
	// E1401 indicates a call supplied the wrong number of arguments.
	E1401 = code("E1401", CategoryType)

	// E1402 indicates a value's type cannot be assigned to the target type.
	E1402 = code("E1402", CategoryType)

	// E1403 indicates an operator was applied to an operand of the wrong type.
	E1403 = code("E1403", CategoryType)

	// E1404 indicates access to a private member from outside its declaring class.
	E1404 = code("E1404", CategoryType)

	// E1405 indicates a reference to a class that could not be resolved.
	E1405 = code("E1405", CategoryType)
)

// Warning codes (W1501-W1599).
var (
	// W1501 indicates a match expression does not cover every Option variant.
	W1501 = code("W1501", CategoryWarning)

	// W1502 indicates an imported module is never referenced.
	W1502 = code("W1502", CategoryWarning)
)

// allCodes contains all defined codes for AllCodes() and uniqueness verification.
var allCodes = []Code{
	// Sentinel
	E_LIMIT_REACHED,
	E_INTERNAL,
	// Lex
	E1001,
	E1002,
	E1003,
	E1004,
	// Parse
	E1101,
	E1102,
	E1103,
	E1104,
	// Import
	E1201,
	E1202,
	// Name
	E1301,
	E1302,
	// Type
	E1401,
	E1402,
	E1403,
	E1404,
	E1405,
	// Warning
	W1501,
	W1502,
}

// AllCodes returns all defined codes.
//
// This function is useful for tooling and testing. The returned slice is a
// copy; modifications do not affect the original.
func AllCodes() []Code {
	result := make([]Code, len(allCodes))
	copy(result, allCodes)
	return result
}

// CodesByCategory returns codes in the given category.
//
// The returned slice is a new allocation; modifications do not affect
// internal state.
func CodesByCategory(cat CodeCategory) []Code {
	var result []Code
	for _, c := range allCodes {
		if c.cat == cat {
			result = append(result, c)
		}
	}
	return result
}
