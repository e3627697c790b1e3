package diag_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucas-veyrier/magolor/diag"
	"github.com/lucas-veyrier/magolor/location"
)

// TestCodeEmission_AllCodes verifies that every defined code can be used
// to create a valid issue that passes through the diagnostic pipeline.
func TestCodeEmission_AllCodes(t *testing.T) {
	t.Parallel()

	codes := diag.AllCodes()
	require.NotEmpty(t, codes, "AllCodes should return all defined codes")

	for _, code := range codes {
		t.Run(code.String(), func(t *testing.T) {
			t.Parallel()
			// Create an issue with this code
			issue := diag.NewIssue(diag.Error, code, "test message for "+code.String()).Build()

			// Verify the issue is valid
			assert.True(t, issue.IsValid(), "Issue with %s should be valid", code.String())
			assert.Equal(t, code, issue.Code())
			assert.Contains(t, issue.Message(), code.String())

			// Verify it can be collected
			collector := diag.NewCollector(100)
			collector.Collect(issue)

			result := collector.Result()
			assert.True(t, result.HasErrors())

			// Verify the code round-trips
			foundCode := false
			for i := range result.Issues() {
				if i.Code() == code {
					foundCode = true
					break
				}
			}
			assert.True(t, foundCode, "Code %s should be present in result", code.String())
		})
	}
}

// TestCodeEmission_Categories verifies that each category has at least one code.
func TestCodeEmission_Categories(t *testing.T) {
	t.Parallel()

	categories := []diag.CodeCategory{
		diag.CategorySentinel,
		diag.CategoryLex,
		diag.CategoryParse,
		diag.CategoryImport,
		diag.CategoryName,
		diag.CategoryType,
		diag.CategoryWarning,
	}

	for _, cat := range categories {
		t.Run(cat.String(), func(t *testing.T) {
			t.Parallel()
			codes := diag.CodesByCategory(cat)
			assert.NotEmpty(t, codes, "Category %s should have at least one code", cat.String())
		})
	}
}

// TestCodeEmission_Uniqueness verifies that all code string values are unique.
func TestCodeEmission_Uniqueness(t *testing.T) {
	t.Parallel()

	codes := diag.AllCodes()
	seen := make(map[string]bool)

	for _, code := range codes {
		str := code.String()
		assert.False(t, seen[str], "Duplicate code string: %s", str)
		seen[str] = true
	}
}

// TestCodeEmission_SentinelCodes verifies the sentinel codes behave correctly.
func TestCodeEmission_SentinelCodes(t *testing.T) {
	t.Parallel()

	t.Run("E_LIMIT_REACHED", func(t *testing.T) {
		t.Parallel()
		issue := diag.NewIssue(diag.Fatal, diag.E_LIMIT_REACHED, "limit reached").Build()
		assert.Equal(t, diag.E_LIMIT_REACHED, issue.Code())
		assert.Equal(t, diag.Fatal, issue.Severity())
	})

	t.Run("E_INTERNAL", func(t *testing.T) {
		t.Parallel()
		issue := diag.NewIssue(diag.Error, diag.E_INTERNAL, "internal error").Build()
		assert.Equal(t, diag.E_INTERNAL, issue.Code())
	})
}

// TestCodeEmission_WithSpan verifies codes work with source spans.
func TestCodeEmission_WithSpan(t *testing.T) {
	t.Parallel()

	sourceID := location.MustNewSourceID("test://code_test.mg")
	span := location.Range(sourceID, 1, 1, 1, 10)

	codes := []diag.Code{
		diag.E1101,
		diag.E1402,
		diag.E1301,
		diag.E1302,
	}

	for _, code := range codes {
		t.Run(code.String(), func(t *testing.T) {
			t.Parallel()
			issue := diag.NewIssue(diag.Error, code, "test message").
				WithSpan(span).
				Build()

			assert.Equal(t, span, issue.Span())
			assert.Equal(t, code, issue.Code())
		})
	}
}

// TestCodeEmission_WithDetails verifies codes work with detail fields.
func TestCodeEmission_WithDetails(t *testing.T) {
	t.Parallel()

	issue := diag.NewIssue(diag.Error, diag.E1402, "type mismatch").
		WithExpectedGot("string", "int").
		WithDetail("property", "age").
		Build()

	assert.Equal(t, diag.E1402, issue.Code())

	// Check details by iterating
	details := issue.Details()
	detailMap := make(map[string]string)
	for _, d := range details {
		detailMap[d.Key] = d.Value
	}
	assert.Equal(t, "string", detailMap["expected"])
	assert.Equal(t, "int", detailMap["got"])
	assert.Equal(t, "age", detailMap["property"])
}

// TestCodeEmission_LexCodes verifies lex codes can be created.
func TestCodeEmission_LexCodes(t *testing.T) {
	t.Parallel()

	codes := diag.CodesByCategory(diag.CategoryLex)
	require.NotEmpty(t, codes)

	for _, code := range codes {
		assert.Equal(t, diag.CategoryLex, code.Category())
	}
}

// TestCodeEmission_ParseCodes verifies parse codes can be created.
func TestCodeEmission_ParseCodes(t *testing.T) {
	t.Parallel()

	codes := diag.CodesByCategory(diag.CategoryParse)
	require.NotEmpty(t, codes)

	for _, code := range codes {
		assert.Equal(t, diag.CategoryParse, code.Category())
	}
}

// TestCodeEmission_NameCodes verifies name resolution codes can be created.
func TestCodeEmission_NameCodes(t *testing.T) {
	t.Parallel()

	codes := diag.CodesByCategory(diag.CategoryName)
	require.NotEmpty(t, codes)

	for _, code := range codes {
		assert.Equal(t, diag.CategoryName, code.Category())
	}
}

// TestCodeEmission_TypeCodes verifies type checking codes can be created.
func TestCodeEmission_TypeCodes(t *testing.T) {
	t.Parallel()

	codes := diag.CodesByCategory(diag.CategoryType)
	require.NotEmpty(t, codes)

	for _, code := range codes {
		assert.Equal(t, diag.CategoryType, code.Category())
	}
}

// TestCodeEmission_ImportCodes verifies import codes can be created.
func TestCodeEmission_ImportCodes(t *testing.T) {
	t.Parallel()

	codes := diag.CodesByCategory(diag.CategoryImport)
	require.NotEmpty(t, codes)

	for _, code := range codes {
		assert.Equal(t, diag.CategoryImport, code.Category())
	}
}

// TestCodeEmission_WarningCodes verifies warning codes can be created.
func TestCodeEmission_WarningCodes(t *testing.T) {
	t.Parallel()

	codes := diag.CodesByCategory(diag.CategoryWarning)
	require.NotEmpty(t, codes)

	for _, code := range codes {
		assert.Equal(t, diag.CategoryWarning, code.Category())
	}
}

// TestCodeEmission_ZeroCode verifies zero code behavior.
func TestCodeEmission_ZeroCode(t *testing.T) {
	t.Parallel()

	var zeroCode diag.Code
	assert.True(t, zeroCode.IsZero())
	assert.Equal(t, "", zeroCode.String())
}

// TestCodeEmission_SpecificCodes tests specific codes named in the
// diagnostic taxonomy.
func TestCodeEmission_SpecificCodes(t *testing.T) {
	t.Parallel()

	specificCodes := []struct {
		code        diag.Code
		category    diag.CodeCategory
		description string
	}{
		{diag.E1001, diag.CategoryLex, "unterminated string literal"},
		{diag.E1004, diag.CategoryLex, "unterminated raw target block"},
		{diag.E1201, diag.CategoryImport, "unresolved module"},
		{diag.E1202, diag.CategoryImport, "private symbol imported"},
		{diag.E1404, diag.CategoryType, "private member access"},
		{diag.E1405, diag.CategoryType, "unresolved class reference"},
		{diag.W1501, diag.CategoryWarning, "non-exhaustive match arms"},
	}

	for _, tc := range specificCodes {
		t.Run(tc.code.String(), func(t *testing.T) {
			t.Parallel()
			assert.False(t, tc.code.IsZero(), "Code should not be zero")
			assert.Equal(t, tc.category, tc.code.Category(), "Category mismatch")

			issue := diag.NewIssue(diag.Error, tc.code, tc.description).Build()
			assert.True(t, issue.IsValid())
		})
	}
}

// TestCodeEmission_CollectorPreservesCode verifies the collector preserves codes.
func TestCodeEmission_CollectorPreservesCode(t *testing.T) {
	t.Parallel()

	collector := diag.NewCollector(100)

	codes := []diag.Code{
		diag.E1402,
		diag.E1301,
		diag.E1302,
		diag.E1101,
	}

	for _, code := range codes {
		issue := diag.NewIssue(diag.Error, code, "test "+code.String()).Build()
		collector.Collect(issue)
	}

	result := collector.Result()
	assert.True(t, result.HasErrors())

	collectedCodes := make(map[string]bool)
	for issue := range result.Issues() {
		collectedCodes[issue.Code().String()] = true
	}

	for _, code := range codes {
		assert.True(t, collectedCodes[code.String()], "Code %s should be in result", code.String())
	}
}

// TestCodeEmission_ResultFilterByCode tests filtering issues by code.
func TestCodeEmission_ResultFilterByCode(t *testing.T) {
	t.Parallel()

	collector := diag.NewCollector(100)
	collector.Collect(diag.NewIssue(diag.Error, diag.E1402, "type error 1").Build())
	collector.Collect(diag.NewIssue(diag.Error, diag.E1402, "type error 2").Build())
	collector.Collect(diag.NewIssue(diag.Error, diag.E1101, "syntax error").Build())

	result := collector.Result()

	typeMismatchCount := 0
	syntaxCount := 0
	for issue := range result.Issues() {
		switch issue.Code() {
		case diag.E1402:
			typeMismatchCount++
		case diag.E1101:
			syntaxCount++
		}
	}

	assert.Equal(t, 2, typeMismatchCount)
	assert.Equal(t, 1, syntaxCount)
}
