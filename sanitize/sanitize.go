// Package sanitize replaces literal values in SQL text with placeholders
// for use in telemetry labels, per spec.md §6/§8. It never touches the
// SQL actually sent on the wire — callers pass the original string to
// the session and only the sanitized copy to logging/tracing.
package sanitize

import "strings"

// SQL replaces string and numeric literals in sql with "?", collapsing
// consecutive whitespace to a single space. It is a best-effort lexical
// pass, not a SQL parser.
func SQL(sql string) string {
	if sql == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(sql))

	i := 0
	prevSpace := false
	for i < len(sql) {
		ch := sql[i]

		if ch == '\'' {
			i = skipString(&b, sql, i)
			prevSpace = false
			continue
		}

		if isDigit(ch) && (i == 0 || isNumBoundary(sql[i-1])) {
			if next, ok := skipNumber(&b, sql, i); ok {
				i = next
				prevSpace = false
				continue
			}
		}

		if isSpace(ch) {
			if !prevSpace && b.Len() > 0 {
				b.WriteByte(' ')
				prevSpace = true
			}
			i++
			continue
		}

		b.WriteByte(ch)
		i++
		prevSpace = false
	}

	return strings.TrimRight(b.String(), " ")
}

// skipString consumes a 'quoted' string literal starting at pos,
// writing a single ? placeholder, and returns the position past it.
func skipString(b *strings.Builder, sql string, pos int) int {
	j := pos + 1
	for j < len(sql) {
		if sql[j] == '\'' && j+1 < len(sql) && sql[j+1] == '\'' {
			j += 2
			continue
		}
		if sql[j] == '\'' {
			j++
			break
		}
		j++
	}
	b.WriteByte('?')
	return j
}

// skipNumber consumes a standalone numeric literal at pos, writing a
// single ? placeholder. Returns (newPos, true) if replaced, or
// (0, false) if the digits at pos are not a standalone number (e.g.
// part of an identifier).
func skipNumber(b *strings.Builder, sql string, pos int) (int, bool) {
	j := pos + 1
	for j < len(sql) && (isDigit(sql[j]) || sql[j] == '.') {
		j++
	}
	if j >= len(sql) || isNumBoundary(sql[j]) {
		b.WriteByte('?')
		return j, true
	}
	return 0, false
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isNumBoundary(c byte) bool {
	return isSpace(c) ||
		c == ',' || c == '(' || c == ')' || c == '=' ||
		c == '<' || c == '>' || c == '+' || c == '-' ||
		c == '*' || c == '/' || c == ';'
}
