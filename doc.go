// Package magolor is the root of the Magolor compiler front end and
// language server.
//
// The module is layered, foundation first:
//
//   - location, diag, internal/source: spans, structured diagnostics,
//     and the per-build source map.
//   - token, lexer, ast, parser: the lexical and syntactic front end.
//   - types, modreg, stdlib, check: the type lattice, the module
//     registry and import resolver, the stdlib descriptor catalog, and
//     the two-phase checker.
//   - codegen: the C++ lowering, prelude included.
//   - build: the pipeline driver shared by the CLI and the server.
//   - lsp: the stdio language server over the same pipeline.
//
// The cmd/magolorc and cmd/magolor-lsp programs are the two entry
// points.
package magolor
