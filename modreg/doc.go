// Package modreg holds the per-build module registry and the import
// resolver that connects `using` declarations to registered modules or
// built-in stdlib modules.
//
// The registry is an explicit value, not a process-wide singleton: each
// build and each language-server analysis pass creates its own, clearing
// any notion of global compiler state.
package modreg
