package lsp

import (
	"unicode/utf8"

	"github.com/lucas-veyrier/magolor/internal/source"
	"github.com/lucas-veyrier/magolor/location"
)

// Position conversion between LSP coordinates (0-based line, UTF-16 code
// unit column) and internal positions (1-based line/rune-column with byte
// offsets). The server always negotiates UTF-16, the LSP default.

// ByteOffsetFromLSP converts an LSP position to a byte offset. Returns
// false when the source or line is unknown; callers bail out rather than
// navigate with a wrong offset.
func ByteOffsetFromLSP(sources *source.Registry, id location.SourceID, line, char int) (int, bool) {
	if sources == nil {
		return 0, false
	}
	lineStart, ok := sources.LineStartByte(id, line+1)
	if !ok {
		return 0, false
	}
	content, ok := sources.ContentBySource(id)
	if !ok {
		return 0, false
	}
	return utf16CharToByteOffset(content, lineStart, char), true
}

// PositionFromLSP converts an LSP position to an internal Position using
// the source registry for exact UTF-16 handling.
func PositionFromLSP(sources *source.Registry, id location.SourceID, line, char int) (location.Position, bool) {
	byteOffset, ok := ByteOffsetFromLSP(sources, id, line, char)
	if !ok {
		return location.Position{}, false
	}
	return sources.PositionAt(id, byteOffset), true
}

// utf16CharToByteOffset converts a UTF-16 code unit offset on a line to a
// byte offset. Mid-surrogate positions floor to the start of the rune.
func utf16CharToByteOffset(content []byte, lineStart, charOffset int) int {
	if charOffset <= 0 {
		return lineStart
	}
	pos := lineStart
	utf16Units := 0
	for pos < len(content) && utf16Units < charOffset {
		r, size := utf8.DecodeRune(content[pos:])
		if r == utf8.RuneError && size <= 1 {
			utf16Units++
			pos++
			continue
		}
		if r == '\n' {
			break
		}
		if r > 0xFFFF {
			if utf16Units+1 == charOffset {
				return pos // mid-surrogate: floor to rune start
			}
			utf16Units += 2
		} else {
			utf16Units++
		}
		pos += size
	}
	return pos
}

// ByteToUTF16Offset converts a byte offset on a line to UTF-16 code units
// from the line start. The outbound inverse of utf16CharToByteOffset.
func ByteToUTF16Offset(content []byte, lineStart, targetByte int) int {
	if targetByte <= lineStart {
		return 0
	}
	utf16Units := 0
	pos := lineStart
	for pos < targetByte && pos < len(content) {
		r, size := utf8.DecodeRune(content[pos:])
		if r == utf8.RuneError && size <= 1 {
			utf16Units++
			pos++
			continue
		}
		if r == '\n' || pos+size > targetByte {
			break
		}
		if r > 0xFFFF {
			utf16Units += 2
		} else {
			utf16Units++
		}
		pos += size
	}
	return utf16Units
}

// SpanToLSPRange converts a span to 0-based LSP line/character pairs.
// Returns false when the span is unusable; callers fall back to rune
// columns or skip the result.
func SpanToLSPRange(sources *source.Registry, span location.Span) (start, end [2]int, ok bool) {
	if span.IsZero() || !span.Start.IsKnown() || sources == nil {
		return [2]int{}, [2]int{}, false
	}
	content, hasContent := sources.ContentBySource(span.Source)

	convert := func(pos location.Position) [2]int {
		line := max(pos.Line-1, 0)
		char := pos.Column - 1
		if hasContent && pos.Byte >= 0 {
			if lineStart, lineOK := sources.LineStartByte(span.Source, pos.Line); lineOK {
				char = ByteToUTF16Offset(content, lineStart, pos.Byte)
			}
		}
		return [2]int{line, max(char, 0)}
	}

	start = convert(span.Start)
	end = start
	if span.End.IsKnown() {
		end = convert(span.End)
	}
	return start, end, true
}
