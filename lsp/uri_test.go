package lsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURIToPath(t *testing.T) {
	path, err := URIToPath("file:///ws/src/main.mg")
	require.NoError(t, err)
	assert.Equal(t, "/ws/src/main.mg", path)

	_, err = URIToPath("https://example.com/x")
	assert.Error(t, err)
}

func TestPathToURIRoundTrip(t *testing.T) {
	uri := PathToURI("/ws/src/main.mg")
	assert.Equal(t, "file:///ws/src/main.mg", uri)

	back, err := URIToPath(uri)
	require.NoError(t, err)
	assert.Equal(t, "/ws/src/main.mg", back)
}

func TestIsMagolorURI(t *testing.T) {
	assert.True(t, isMagolorURI("file:///ws/src/main.mg"))
	assert.True(t, isMagolorURI("file:///ws/src/MAIN.MG"))
	assert.False(t, isMagolorURI("file:///ws/readme.md"))
	assert.False(t, isMagolorURI("not-a-uri"))
}

func TestModuleNameForURI(t *testing.T) {
	assert.Equal(t, "api.handlers", moduleNameForURI("file:///ws/src/api/handlers.mg"))
	assert.Equal(t, "main", moduleNameForURI("file:///ws/src/main.mg"))
	assert.Equal(t, "scratch", moduleNameForURI("file:///tmp/scratch.mg"))
}
