package lsp

import "strings"

// formatDocument conservatively re-indents a document: four spaces per
// open brace, no other transformation. The indent of each line is the
// brace depth at the start of the line, adjusted down for the line's own
// leading close braces; every brace character on the line then advances
// the running depth. Blank lines carry no indentation.
//
// The function is idempotent: formatting an already-formatted document
// returns it unchanged.
func formatDocument(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, len(lines))
	depth := 0

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			out[i] = ""
			continue
		}

		indent := depth
		for j := 0; j < len(trimmed) && trimmed[j] == '}'; j++ {
			indent--
		}
		indent = max(indent, 0)
		out[i] = strings.Repeat("    ", indent) + trimmed

		for j := 0; j < len(trimmed); j++ {
			switch trimmed[j] {
			case '{':
				depth++
			case '}':
				depth = max(depth-1, 0)
			}
		}
	}
	return strings.Join(out, "\n")
}
