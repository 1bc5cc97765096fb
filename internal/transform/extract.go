// Package transform implements the source rewriting primitives zkforge uses
// to turn a generic guest program into backend-specific sources: import
// collection, comment/string-aware function body extraction, and small
// whole-file patch helpers.
//
// Nothing here parses the source language. The extractor only needs to match
// braces without being fooled by braces hidden in comments or literals, so it
// runs a small character automaton instead of a grammar.
package transform

import (
	"fmt"
	"os"
	"strings"
)

// scanState tracks where the body scanner is inside the character stream.
type scanState int

const (
	scanNormal scanState = iota
	scanLineComment
	scanBlockComment
	scanBlockCommentStar // saw '*' inside a block comment; '/' closes it
	scanString
	scanChar
)

// ExtractFunctionBodies returns the body of each function whose signature
// marker occurs in the file, aligned with marker order. Markers are matched
// with a forward-only cursor: each search starts past the previous match, so
// callers must supply markers in the order they appear in the source. A
// marker not found past the cursor produces no body, leaving the result
// shorter than the marker list; callers indexing positionally must check the
// length first.
//
// The body is the trimmed text strictly between the function's first opening
// brace and its matching closing brace. Braces inside line comments, block
// comments, string literals and char literals never affect nesting.
//
// Backslash-escaped quotes inside a literal are not recognized: an escaped
// quote terminates the literal early. See DESIGN.md before changing this.
func ExtractFunctionBodies(path string, markers []string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source %s: %w", path, err)
	}
	code := string(data)

	starts := make([]int, 0, len(markers))
	cursor := 0
	for _, marker := range markers {
		idx := strings.Index(code[cursor:], marker)
		if idx < 0 {
			continue
		}
		abs := cursor + idx
		starts = append(starts, abs)
		cursor = abs + len(marker)
	}

	bodies := make([]string, 0, len(starts))
	for _, start := range starts {
		open := strings.IndexByte(code[start:], '{')
		if open < 0 {
			continue
		}
		open += start
		end, ok := matchBrace(code, open)
		if !ok {
			continue
		}
		bodies = append(bodies, strings.TrimSpace(code[open+1:end]))
	}
	return bodies, nil
}

// matchBrace scans forward from the opening brace at open and returns the
// index of the brace that closes it.
func matchBrace(code string, open int) (int, bool) {
	state := scanNormal
	depth := 1

	for i := open + 1; i < len(code); i++ {
		c := code[i]
		switch state {
		case scanNormal:
			switch c {
			case '/':
				if i+1 < len(code) {
					switch code[i+1] {
					case '/':
						state = scanLineComment
						i++
					case '*':
						state = scanBlockComment
						i++
					}
				}
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return i, true
				}
			case '"':
				state = scanString
			case '\'':
				state = scanChar
			}
		case scanLineComment:
			if c == '\n' {
				state = scanNormal
			}
		case scanBlockComment:
			if c == '*' {
				state = scanBlockCommentStar
			}
		case scanBlockCommentStar:
			switch c {
			case '/':
				state = scanNormal
			case '*':
				// still pending close
			default:
				state = scanBlockComment
			}
		case scanString:
			if c == '"' {
				state = scanNormal
			}
		case scanChar:
			if c == '\'' {
				state = scanNormal
			}
		}
	}
	return 0, false
}
