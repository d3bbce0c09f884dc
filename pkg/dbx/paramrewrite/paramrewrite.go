// Package paramrewrite implements the three-state named-parameter scanner
// from spec.md §4.2: NORMAL, INSIDE_QUOTE, INSIDE_NAME. It rewrites
// caller-supplied `:name` placeholders into a driver's native positional
// form and returns the ordered list of captured names.
package paramrewrite

import (
	"fmt"
	"strings"
)

// Style selects the positional placeholder syntax a driver expects.
type Style int

const (
	// Dollar emits $1, $2, ... (PostgreSQL).
	Dollar Style = iota
	// Question emits ? for every occurrence (MySQL, ODBC).
	Question
	// Native leaves `:name` untouched and returns one name per occurrence,
	// in order (Oracle, which binds by name natively).
	Native
)

type scanState int

const (
	stateNormal scanState = iota
	stateInQuote
	stateInName
)

// Rewrite scans query for `:name` placeholders outside single-quoted
// string literals and returns the rewritten query plus the ordered list of
// captured names (one entry per occurrence; a name used twice appears
// twice). Quoted regions are passed through verbatim. Doubled single
// quotes ('') inside a literal are NOT treated as an escaped quote -- this
// matches the original SOCI scanner exactly and is intentionally
// preserved; see DESIGN.md for the Open Question this resolves.
func Rewrite(query string, style Style) (rewritten string, names []string) {
	var out strings.Builder
	var name strings.Builder
	state := stateNormal
	positional := 0

	flushName := func() {
		names = append(names, name.String())
		switch style {
		case Dollar:
			positional++
			out.WriteString(fmt.Sprintf("$%d", positional))
		case Question:
			out.WriteByte('?')
		case Native:
			out.WriteByte(':')
			out.WriteString(name.String())
		}
		name.Reset()
	}

	for i := 0; i < len(query); i++ {
		c := query[i]
		switch state {
		case stateNormal:
			switch {
			case c == '\'':
				state = stateInQuote
				out.WriteByte(c)
			case c == ':':
				state = stateInName
			default:
				out.WriteByte(c)
			}
		case stateInQuote:
			out.WriteByte(c)
			if c == '\'' {
				state = stateNormal
			}
		case stateInName:
			if isNameByte(c) {
				name.WriteByte(c)
			} else {
				// End of name: emit the placeholder, then pass the
				// terminating character straight through and return to
				// NORMAL. The terminator itself is never re-examined as
				// a potential quote-open or colon, exactly as in the
				// original one-pass scanner -- so ":a:b" captures only
				// "a", and ":a'b'" does not open a quoted region.
				flushName()
				out.WriteByte(c)
				state = stateNormal
			}
		}
	}
	if state == stateInName {
		// Name reached end-of-input: accepted, per spec.md §4.2.
		flushName()
	}

	return out.String(), names
}

// isNameByte mirrors the original scanner's std::isalnum(*it) || *it == '_'
// check exactly: unlike the ASCII grammar [A-Za-z_][A-Za-z0-9_]* quoted in
// spec.md §6, the source does not special-case the first character, so a
// name may begin with a digit. Preserved here for byte-for-byte fidelity
// with the backend every SOCI driver derives its rewriting from.
func isNameByte(c byte) bool {
	if c == '_' {
		return true
	}
	if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' {
		return true
	}
	if c >= '0' && c <= '9' {
		return true
	}
	return false
}
