package diag

import "strconv"

// Detail provides key-value context for diagnostic issues.
//
// Details are used to add structured information to issues that can be
// programmatically inspected by tools. Use the standard detail key constants
// to ensure consistent key naming across the codebase.
type Detail struct {
	Key   string
	Value string
}

// Standard detail keys for consistent diagnostic metadata.
//
// Use these constants to avoid stringly-typed drift and enable programmatic
// inspection of diagnostic details. Custom detail keys are permitted for
// one-off diagnostics; use lower_snake_case for custom keys.
const (
	// DetailKeyExpected is the expected type or token.
	DetailKeyExpected = "expected"

	// DetailKeyGot is the actual type or token encountered.
	DetailKeyGot = "got"

	// DetailKeyName is the identifier involved (undeclared, duplicate, etc).
	DetailKeyName = "name"

	// DetailKeyModulePath is the dotted module path involved in an import
	// diagnostic.
	DetailKeyModulePath = "module_path"

	// DetailKeySymbol is the imported symbol name.
	DetailKeySymbol = "symbol"

	// DetailKeyClass is the class name involved in a type diagnostic.
	DetailKeyClass = "class"

	// DetailKeyMember is the field or method name involved in a member
	// access diagnostic.
	DetailKeyMember = "member"

	// DetailKeyToken is the raw lexeme of an offending token.
	DetailKeyToken = "token"

	// DetailKeyDelimiter is the missing or mismatched delimiter.
	DetailKeyDelimiter = "delimiter"

	// DetailKeyParamCount is the number of parameters a function declares.
	DetailKeyParamCount = "param_count"

	// DetailKeyArgCount is the number of arguments a call supplies.
	DetailKeyArgCount = "arg_count"

	// DetailKeyFirstLine is the line number of a prior conflicting
	// declaration, for duplicate-declaration diagnostics.
	DetailKeyFirstLine = "first_line"

	// DetailKeyContext is free-form contextual information (e.g., the
	// enclosing function or class name).
	DetailKeyContext = "context"
)

// ExpectedGot creates a pair of details for type mismatch diagnostics.
//
// This is the standard pattern for reporting "expected X, got Y" errors.
func ExpectedGot(expected, got string) []Detail {
	return []Detail{
		{Key: DetailKeyExpected, Value: expected},
		{Key: DetailKeyGot, Value: got},
	}
}

// ClassMember creates detail entries for diagnostics involving a member of
// a class, such as private member access or unresolved member lookup.
func ClassMember(className, memberName string) []Detail {
	return []Detail{
		{Key: DetailKeyClass, Value: className},
		{Key: DetailKeyMember, Value: memberName},
	}
}

// ArityMismatch creates detail entries reporting a parameter/argument count
// mismatch for a function or method call.
func ArityMismatch(paramCount, argCount int) []Detail {
	return []Detail{
		{Key: DetailKeyParamCount, Value: strconv.Itoa(paramCount)},
		{Key: DetailKeyArgCount, Value: strconv.Itoa(argCount)},
	}
}

// ImportDetail creates detail entries for module import diagnostics.
func ImportDetail(modulePath, symbol string) []Detail {
	details := []Detail{{Key: DetailKeyModulePath, Value: modulePath}}
	if symbol != "" {
		details = append(details, Detail{Key: DetailKeySymbol, Value: symbol})
	}
	return details
}
