// Package manifest reads the project.toml manifest and the generated
// .magolor/lock.toml lockfile.
//
// Both files use a deliberately small line-oriented TOML subset: unquoted
// keys, double-quoted string values, square-bracket arrays of quoted
// strings, bracketed section headers ([section] and [[array-of-table]]),
// and # line comments. The reader is a hand-written scanner restricted to
// exactly that subset; dependency resolution, fetching, and lockfile
// generation are out of scope (they belong to the external package CLI).
package manifest

import (
	"fmt"
	"os"
	"strings"
)

// Manifest is a parsed project.toml.
type Manifest struct {
	Project      Project
	Dependencies []Dependency
	Build        BuildSettings
}

// Project is the [project] section.
type Project struct {
	Name        string
	Version     string
	Authors     []string
	Description string
	License     string
}

// Dependency is one [dependencies] entry, in file order.
type Dependency struct {
	Name string
	Spec VersionSpec
}

// BuildSettings is the [build] section.
type BuildSettings struct {
	Optimization string
}

// SpecKind classifies a dependency version spec.
type SpecKind uint8

const (
	// SpecExact is "x.y.z": exact-or-greater-patch within the minor.
	SpecExact SpecKind = iota
	// SpecAny is "*": any version.
	SpecAny
	// SpecGit is "git+URL": a git source.
	SpecGit
	// SpecPath is "path:...": a local path source.
	SpecPath
)

func (k SpecKind) String() string {
	switch k {
	case SpecExact:
		return "exact"
	case SpecAny:
		return "any"
	case SpecGit:
		return "git"
	case SpecPath:
		return "path"
	default:
		return "unknown"
	}
}

// VersionSpec is a parsed dependency version requirement.
type VersionSpec struct {
	Kind SpecKind
	// Value is the version string, git URL, or local path, depending on
	// Kind; empty for SpecAny.
	Value string
}

// ParseVersionSpec classifies a raw versionspec string.
func ParseVersionSpec(s string) VersionSpec {
	switch {
	case s == "*":
		return VersionSpec{Kind: SpecAny}
	case strings.HasPrefix(s, "git+"):
		return VersionSpec{Kind: SpecGit, Value: strings.TrimPrefix(s, "git+")}
	case strings.HasPrefix(s, "path:"):
		return VersionSpec{Kind: SpecPath, Value: strings.TrimPrefix(s, "path:")}
	default:
		return VersionSpec{Kind: SpecExact, Value: s}
	}
}

// Load reads and parses a project.toml file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load manifest %s: %w", path, err)
	}
	return m, nil
}

// Parse parses project.toml content.
func Parse(data []byte) (*Manifest, error) {
	m := &Manifest{}
	section := ""

	err := scanLines(data, func(lineNum int, line string) error {
		if name, isSection, isArray := parseSectionHeader(line); isSection {
			if isArray {
				return fmt.Errorf("line %d: array-of-table [[%s]] is not valid in project.toml", lineNum, name)
			}
			switch name {
			case "project", "dependencies", "build":
				section = name
				return nil
			default:
				return fmt.Errorf("line %d: unknown section [%s]", lineNum, name)
			}
		}

		key, value, err := parseKeyValue(line, lineNum)
		if err != nil {
			return err
		}

		switch section {
		case "project":
			return m.setProjectKey(key, value, lineNum)
		case "dependencies":
			str, err := value.stringValue(lineNum)
			if err != nil {
				return err
			}
			m.Dependencies = append(m.Dependencies, Dependency{Name: key, Spec: ParseVersionSpec(str)})
			return nil
		case "build":
			if key == "optimization" {
				str, err := value.stringValue(lineNum)
				if err != nil {
					return err
				}
				m.Build.Optimization = str
				return nil
			}
			return fmt.Errorf("line %d: unknown [build] key %q", lineNum, key)
		default:
			return fmt.Errorf("line %d: key %q outside any section", lineNum, key)
		}
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manifest) setProjectKey(key string, value tomlValue, lineNum int) error {
	switch key {
	case "authors":
		arr, err := value.arrayValue(lineNum)
		if err != nil {
			return err
		}
		m.Project.Authors = arr
		return nil
	case "name", "version", "description", "license":
		str, err := value.stringValue(lineNum)
		if err != nil {
			return err
		}
		switch key {
		case "name":
			m.Project.Name = str
		case "version":
			m.Project.Version = str
		case "description":
			m.Project.Description = str
		case "license":
			m.Project.License = str
		}
		return nil
	default:
		return fmt.Errorf("line %d: unknown [project] key %q", lineNum, key)
	}
}

// Lockfile is a parsed .magolor/lock.toml.
type Lockfile struct {
	Root     LockRoot
	Packages []LockedPackage
}

// LockRoot is the [root] section.
type LockRoot struct {
	Name    string
	Version string
}

// LockedPackage is one [[package]] entry.
type LockedPackage struct {
	Name     string
	Version  string
	Location string
}

// LoadLockfile reads and parses a lock.toml file.
func LoadLockfile(path string) (*Lockfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load lockfile: %w", err)
	}
	lf, err := ParseLockfile(data)
	if err != nil {
		return nil, fmt.Errorf("load lockfile %s: %w", path, err)
	}
	return lf, nil
}

// ParseLockfile parses lock.toml content.
func ParseLockfile(data []byte) (*Lockfile, error) {
	lf := &Lockfile{}
	section := ""
	var current *LockedPackage

	err := scanLines(data, func(lineNum int, line string) error {
		if name, isSection, isArray := parseSectionHeader(line); isSection {
			switch {
			case name == "root" && !isArray:
				section = "root"
				current = nil
				return nil
			case name == "package" && isArray:
				section = "package"
				lf.Packages = append(lf.Packages, LockedPackage{})
				current = &lf.Packages[len(lf.Packages)-1]
				return nil
			default:
				return fmt.Errorf("line %d: unknown lockfile section [%s]", lineNum, name)
			}
		}

		key, value, err := parseKeyValue(line, lineNum)
		if err != nil {
			return err
		}
		str, err := value.stringValue(lineNum)
		if err != nil {
			return err
		}

		switch section {
		case "root":
			switch key {
			case "name":
				lf.Root.Name = str
			case "version":
				lf.Root.Version = str
			default:
				return fmt.Errorf("line %d: unknown [root] key %q", lineNum, key)
			}
			return nil
		case "package":
			switch key {
			case "name":
				current.Name = str
			case "version":
				current.Version = str
			case "location":
				current.Location = str
			default:
				return fmt.Errorf("line %d: unknown [[package]] key %q", lineNum, key)
			}
			return nil
		default:
			return fmt.Errorf("line %d: key %q outside any section", lineNum, key)
		}
	})
	if err != nil {
		return nil, err
	}
	return lf, nil
}

// --- line scanning ---

// scanLines splits data into lines, skipping blanks and # comments, and
// calls fn with each remaining trimmed line.
func scanLines(data []byte, fn func(lineNum int, line string) error) error {
	for i, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(strings.TrimSuffix(raw, "\r"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := fn(i+1, line); err != nil {
			return err
		}
	}
	return nil
}

// parseSectionHeader recognizes [name] and [[name]] headers.
func parseSectionHeader(line string) (name string, isSection, isArray bool) {
	if !strings.HasPrefix(line, "[") || !strings.HasSuffix(line, "]") {
		return "", false, false
	}
	inner := line[1 : len(line)-1]
	if strings.HasPrefix(inner, "[") && strings.HasSuffix(inner, "]") {
		return strings.TrimSpace(inner[1 : len(inner)-1]), true, true
	}
	return strings.TrimSpace(inner), true, false
}

// tomlValue is a scanned right-hand side: either a quoted string or an
// array of quoted strings.
type tomlValue struct {
	str     string
	arr     []string
	isArray bool
}

func (v tomlValue) stringValue(lineNum int) (string, error) {
	if v.isArray {
		return "", fmt.Errorf("line %d: expected a quoted string, found an array", lineNum)
	}
	return v.str, nil
}

func (v tomlValue) arrayValue(lineNum int) ([]string, error) {
	if !v.isArray {
		return nil, fmt.Errorf("line %d: expected an array, found a string", lineNum)
	}
	return v.arr, nil
}

// parseKeyValue scans `key = "value"` or `key = ["a", "b"]`.
func parseKeyValue(line string, lineNum int) (string, tomlValue, error) {
	key, rest, found := strings.Cut(line, "=")
	if !found {
		return "", tomlValue{}, fmt.Errorf("line %d: expected `key = value`, found %q", lineNum, line)
	}
	key = strings.TrimSpace(key)
	rest = strings.TrimSpace(rest)
	if key == "" {
		return "", tomlValue{}, fmt.Errorf("line %d: empty key", lineNum)
	}

	switch {
	case strings.HasPrefix(rest, `"`):
		str, err := unquote(rest, lineNum)
		if err != nil {
			return "", tomlValue{}, err
		}
		return key, tomlValue{str: str}, nil
	case strings.HasPrefix(rest, "["):
		if !strings.HasSuffix(rest, "]") {
			return "", tomlValue{}, fmt.Errorf("line %d: unterminated array value", lineNum)
		}
		inner := strings.TrimSpace(rest[1 : len(rest)-1])
		if inner == "" {
			return key, tomlValue{isArray: true}, nil
		}
		var arr []string
		for _, part := range splitArrayItems(inner) {
			str, err := unquote(strings.TrimSpace(part), lineNum)
			if err != nil {
				return "", tomlValue{}, err
			}
			arr = append(arr, str)
		}
		return key, tomlValue{arr: arr, isArray: true}, nil
	default:
		return "", tomlValue{}, fmt.Errorf("line %d: value for %q must be a quoted string or array", lineNum, key)
	}
}

// splitArrayItems splits array contents on commas outside quotes.
func splitArrayItems(s string) []string {
	var items []string
	var sb strings.Builder
	inQuotes := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '\\' && inQuotes && i+1 < len(s):
			sb.WriteByte(c)
			i++
			sb.WriteByte(s[i])
		case c == '"':
			inQuotes = !inQuotes
			sb.WriteByte(c)
		case c == ',' && !inQuotes:
			items = append(items, sb.String())
			sb.Reset()
		default:
			sb.WriteByte(c)
		}
	}
	if strings.TrimSpace(sb.String()) != "" {
		items = append(items, sb.String())
	}
	return items
}

// unquote strips surrounding double quotes and processes \" and \\
// escapes.
func unquote(s string, lineNum int) (string, error) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", fmt.Errorf("line %d: malformed quoted string %q", lineNum, s)
	}
	body := s[1 : len(s)-1]
	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] == '\\' && i+1 < len(body) {
			i++
			switch body[i] {
			case '"':
				sb.WriteByte('"')
			case '\\':
				sb.WriteByte('\\')
			default:
				sb.WriteByte('\\')
				sb.WriteByte(body[i])
			}
			continue
		}
		sb.WriteByte(body[i])
	}
	return sb.String(), nil
}
