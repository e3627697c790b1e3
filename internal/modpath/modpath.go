// Package modpath normalizes the dotted module paths used in Magolor
// `using` declarations (e.g. "collections.list") before they are compared
// against registry keys.
//
// A module path is a sequence of one or more identifier segments joined by
// '.'. Two paths that differ only by letter case denote the same module:
// `using A.b.C` and `using a.B.c` must resolve to the same registry entry.
// Case folding is applied with golang.org/x/text/cases rather than
// strings.ToLower so that non-ASCII identifiers fold correctly (Turkish
// dotless-i, German ß, etc.) — the rune-aware handling [ident.ToLowerSnake]
// gives single identifiers, generalized here to full Unicode case folding of
// multi-segment paths.
package modpath

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
)

var foldCaser = cases.Fold()

// Path is a validated, dot-separated module path.
//
// Path is a value type with unexported fields; always pass by value. The
// zero value is invalid; use [Path.IsZero] to check.
type Path struct {
	raw      string
	segments []string
}

// New parses and validates a dotted module path.
//
// Each segment must be a non-empty identifier: the first rune must be a
// Unicode letter or underscore, and subsequent runes must be letters,
// digits, or underscores. New returns an error if raw is empty, contains
// an empty segment (leading/trailing/doubled '.'), or any segment fails
// identifier validation.
func New(raw string) (Path, error) {
	if raw == "" {
		return Path{}, fmt.Errorf("modpath: empty module path")
	}
	segments := strings.Split(raw, ".")
	for _, seg := range segments {
		if err := validateSegment(seg); err != nil {
			return Path{}, fmt.Errorf("modpath: invalid module path %q: %w", raw, err)
		}
	}
	return Path{raw: raw, segments: segments}, nil
}

// Must is like [New] but panics on error. Use only for compile-time-known
// module paths (e.g. stdlib catalog entries).
func Must(raw string) Path {
	p, err := New(raw)
	if err != nil {
		panic("modpath.Must: " + err.Error())
	}
	return p
}

func validateSegment(seg string) error {
	if seg == "" {
		return fmt.Errorf("empty segment")
	}
	runes := []rune(seg)
	first := runes[0]
	if !unicode.IsLetter(first) && first != '_' {
		return fmt.Errorf("segment %q must start with a letter or underscore", seg)
	}
	for _, r := range runes[1:] {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return fmt.Errorf("segment %q contains invalid character %q", seg, r)
		}
	}
	return nil
}

// String returns the original dotted path as written in source.
func (p Path) String() string {
	return p.raw
}

// Segments returns the path's dot-separated components.
//
// The returned slice is a copy; modifications do not affect the Path.
func (p Path) Segments() []string {
	out := make([]string, len(p.segments))
	copy(out, p.segments)
	return out
}

// IsZero reports whether p is the zero value.
func (p Path) IsZero() bool {
	return p.raw == ""
}

// FoldKey returns the Unicode case-folded form of the path, suitable for
// use as a registry lookup key. Two paths that differ only in case produce
// the same FoldKey.
func (p Path) FoldKey() string {
	return foldCaser.String(p.raw)
}

// Equal reports whether p and other denote the same module once case
// folding is applied.
func (p Path) Equal(other Path) bool {
	return p.FoldKey() == other.FoldKey()
}

// Parent returns the path with its final segment removed, and true if a
// parent exists. A single-segment path has no parent.
//
// Parent is used by the module resolver's package-fallback rule: an
// unresolved `using a.b.C` falls back to checking whether `a.b` registers
// `C` as a member before reporting an unresolved-module diagnostic.
func (p Path) Parent() (Path, bool) {
	if len(p.segments) <= 1 {
		return Path{}, false
	}
	parentSegments := p.segments[:len(p.segments)-1]
	raw := strings.Join(parentSegments, ".")
	return Path{raw: raw, segments: parentSegments}, true
}

// Last returns the final segment of the path (e.g. "list" for
// "collections.list").
func (p Path) Last() string {
	if len(p.segments) == 0 {
		return ""
	}
	return p.segments[len(p.segments)-1]
}
