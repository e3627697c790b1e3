package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	assert.Equal(t, "fn", Function.String())
	assert.Equal(t, "->", Arrow.String())
	assert.Equal(t, "UNKNOWN", Kind(255).String())
}

func TestKeywordsTableRoundTrip(t *testing.T) {
	for spelling, kind := range Keywords {
		assert.Equal(t, spelling, kind.String())
	}
}

func TestIsTypeName(t *testing.T) {
	require.True(t, IntType.IsTypeName())
	require.True(t, VoidType.IsTypeName())
	require.False(t, Ident.IsTypeName())
}

func TestTokenString(t *testing.T) {
	tok := Token{Kind: Ident, Lexeme: "x"}
	assert.Equal(t, `IDENT "x"`, tok.String())
}
