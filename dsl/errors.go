package dsl

import (
	"strings"

	"github.com/CanftIn/reggen/reggenerr"
)

// Locate converts a byte offset into src into a 1-based row/column
// position and a snippet of the source line it falls on, the same
// line-lookup the teacher's error package does against a file on disk,
// done here against the in-memory grammar description text instead.
func Locate(src []byte, offset int) (reggenerr.Position, string) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(src) {
		offset = len(src)
	}

	row, col := 1, 1
	lineStart := 0
	for i := 0; i < offset; i++ {
		if src[i] == '\n' {
			row++
			col = 1
			lineStart = i + 1
			continue
		}
		col++
	}

	lineEnd := lineStart
	for lineEnd < len(src) && src[lineEnd] != '\n' {
		lineEnd++
	}

	return reggenerr.Position{Offset: offset, Row: row, Col: col}, strings.TrimRight(string(src[lineStart:lineEnd]), "\r")
}

// ToConstructionErrors converts a Parse failure into the module's
// construction-error list, resolving each underlying error's byte offset
// (encoded as "dsl: <offset>: <message>" by the lexer and parser) against
// src to attach a row/column and source snippet.
func ToConstructionErrors(src []byte, err error) reggenerr.List {
	if err == nil {
		return nil
	}
	if el, ok := err.(errList); ok {
		var out reggenerr.List
		for _, e := range el {
			out = append(out, toConstructionError(src, e))
		}
		return out
	}
	return reggenerr.List{toConstructionError(src, err)}
}

func toConstructionError(src []byte, err error) *reggenerr.ConstructionError {
	offset, msg := splitOffset(err.Error())
	pos, snippet := Locate(src, offset)
	return &reggenerr.ConstructionError{Cause: plainError(msg), Pos: pos, Snippet: snippet}
}

// splitOffset parses the "dsl: <offset>: <message>" convention the lexer
// and parser errors in this package are formatted with, returning the
// offset and the trailing message. If the convention isn't matched (an
// error from somewhere else entirely), it returns offset 0 and the whole
// message unchanged.
func splitOffset(s string) (int, string) {
	const prefix = "dsl: "
	if !strings.HasPrefix(s, prefix) {
		return 0, s
	}
	rest := s[len(prefix):]
	i := strings.Index(rest, ": ")
	if i < 0 {
		return 0, s
	}
	n := 0
	for _, c := range rest[:i] {
		if c < '0' || c > '9' {
			return 0, s
		}
		n = n*10 + int(c-'0')
	}
	return n, rest[i+2:]
}

type plainError string

func (e plainError) Error() string { return string(e) }
