// Package rewrite performs format-preserving version rewrites on
// Cargo.toml manifests and TOML snippets embedded in documentation.
//
// Rewrites operate line by line on the original text so comments,
// whitespace, key order, and quote styles survive untouched. Inputs
// are validated with a real TOML parser first; the line editor only
// runs on documents known to be well formed.
package rewrite

import "strings"

// stringState tracks whether a scan position sits inside a multi-line
// TOML string that began on an earlier line.
type stringState int

const (
	stateNone stringState = iota
	stateBasicML
	stateLiteralML
)

// scanLine scans one line given the state left by the previous line.
// It returns the state after the line and the byte offset of the first
// comment character outside any string, or -1 when the line has no
// comment.
func scanLine(line string, state stringState) (stringState, int) {
	i := 0
	for i < len(line) {
		switch state {
		case stateBasicML:
			if line[i] == '"' && strings.HasPrefix(line[i:], `"""`) && !escapedAt(line, i) {
				state = stateNone
				i += 3
				continue
			}
			if line[i] == '\\' {
				i += 2
				continue
			}
			i++
		case stateLiteralML:
			if strings.HasPrefix(line[i:], "'''") {
				state = stateNone
				i += 3
				continue
			}
			i++
		default:
			switch line[i] {
			case '#':
				return state, i
			case '"':
				if strings.HasPrefix(line[i:], `"""`) {
					state = stateBasicML
					i += 3
					continue
				}
				i = skipBasicString(line, i+1)
			case '\'':
				if strings.HasPrefix(line[i:], "'''") {
					state = stateLiteralML
					i += 3
					continue
				}
				i = skipLiteralString(line, i+1)
			default:
				i++
			}
		}
	}
	return state, -1
}

// skipBasicString advances past a single-line basic string whose
// opening quote sits just before start.
func skipBasicString(line string, start int) int {
	i := start
	for i < len(line) {
		switch line[i] {
		case '\\':
			i += 2
		case '"':
			return i + 1
		default:
			i++
		}
	}
	return i
}

func skipLiteralString(line string, start int) int {
	end := strings.IndexByte(line[start:], '\'')
	if end < 0 {
		return len(line)
	}
	return start + end + 1
}

// escapedAt reports whether the byte at i is preceded by an odd number
// of backslashes.
func escapedAt(line string, i int) bool {
	count := 0
	for j := i - 1; j >= 0 && line[j] == '\\'; j-- {
		count++
	}
	return count%2 == 1
}

// stripComment returns the line content before any comment, given the
// entry state, along with the exit state.
func stripComment(line string, state stringState) (string, stringState) {
	next, comment := scanLine(line, state)
	if comment < 0 {
		return line, next
	}
	return line[:comment], next
}
