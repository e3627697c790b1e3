package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestBuildHelloEndToEnd(t *testing.T) {
	// Scenario S1: zero diagnostics, generated program prints the
	// interpolated greeting, exit code 0.
	dir := t.TempDir()
	src := writeFile(t, dir, "src/main.mg",
		"using Std.IO;\nfn main() { let name = \"world\"; Std.print($\"Hello, {name}\\n\"); }\n")
	out := filepath.Join(dir, "out.cpp")

	var stdout, stderr strings.Builder
	code := run([]string{"-out", out, "-root", filepath.Join(dir, "src"), src}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Empty(t, stderr.String(), "S1 expects zero diagnostics")

	generated, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(generated), `Std::print((std::string("Hello, ") + mg_to_string(name) + std::string("\n")));`)
	assert.Contains(t, string(generated), "int main(")
}

func TestBuildUnresolvedImportExitsOne(t *testing.T) {
	// Scenario S2: one import error, no emission, exit code 1.
	dir := t.TempDir()
	src := writeFile(t, dir, "src/main.mg", "using X.Y;\nfn main() {}\n")
	out := filepath.Join(dir, "out.cpp")

	var stdout, stderr strings.Builder
	code := run([]string{"-out", out, "-root", filepath.Join(dir, "src"), src}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "Cannot find module: X.Y")

	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err), "no code may be emitted when errors are present")
}

func TestBuildMultiFile(t *testing.T) {
	dir := t.TempDir()
	util := writeFile(t, dir, "src/util.mg", "public fn helper() -> int { return 7; }\n")
	main := writeFile(t, dir, "src/main.mg", "using util;\nfn main() { let x = helper(); }\n")
	out := filepath.Join(dir, "out.cpp")

	var stdout, stderr strings.Builder
	code := run([]string{"-out", out, "-root", filepath.Join(dir, "src"), util, main}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	generated, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(generated), "int helper()")
}

func TestEmitPreludeOnly(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "prelude.cpp")

	var stdout, stderr strings.Builder
	code := run([]string{"-out", out, "-emit-prelude-only"}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	generated, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(generated), "namespace Std {")
	assert.Contains(t, string(generated), "mg_to_string")
}

func TestNoInputsIsUsageError(t *testing.T) {
	var stdout, stderr strings.Builder
	code := run(nil, &stdout, &stderr)
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr.String(), "Usage:")
}

func TestMissingFileIsUsageError(t *testing.T) {
	var stdout, stderr strings.Builder
	code := run([]string{filepath.Join(t.TempDir(), "ghost.mg")}, &stdout, &stderr)
	assert.Equal(t, 2, code)
}

func TestDefaultOutDerivedFromManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "project.toml", "[project]\nname = \"MyDemo\"\nversion = \"0.1.0\"\n")
	src := writeFile(t, dir, "src/main.mg", "fn main() {}\n")

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { _ = os.Chdir(cwd) }()

	var stdout, stderr strings.Builder
	code := run([]string{
		"-root", filepath.Join(dir, "src"),
		"-manifest", filepath.Join(dir, "project.toml"),
		src,
	}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	_, err = os.Stat(filepath.Join(dir, "my_demo.cpp"))
	assert.NoError(t, err, "output name derives from the package name")
}

func TestLockfileRead(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "project.toml", "[project]\nname = \"demo\"\nversion = \"0.1.0\"\n")
	writeFile(t, dir, ".magolor/lock.toml",
		"[root]\nname = \"demo\"\nversion = \"0.1.0\"\n\n[[package]]\nname = \"mathx\"\nversion = \"0.4.1\"\nlocation = \".magolor/deps/mathx\"\n")
	src := writeFile(t, dir, "src/main.mg", "fn main() {}\n")
	out := filepath.Join(dir, "out.cpp")

	var stdout, stderr strings.Builder
	code := run([]string{
		"-out", out,
		"-root", filepath.Join(dir, "src"),
		"-manifest", filepath.Join(dir, "project.toml"),
		"-trace",
		src,
	}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Contains(t, stderr.String(), "lockfile read")
	assert.Contains(t, stderr.String(), "mathx")
}

func TestManifestHeaderRead(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "project.toml", "[project]\nname = \"demo\"\nversion = \"0.1.0\"\n")
	src := writeFile(t, dir, "src/main.mg", "fn main() {}\n")
	out := filepath.Join(dir, "out.cpp")

	var stdout, stderr strings.Builder
	code := run([]string{
		"-out", out,
		"-root", filepath.Join(dir, "src"),
		"-manifest", filepath.Join(dir, "project.toml"),
		src,
	}, &stdout, &stderr)
	assert.Equal(t, 0, code, stderr.String())
}
