package ir

import "strings"

// skipQuoted returns the index just past the quoted string that starts at s[i].
// Doubled quote characters and backslash escapes (outside backticks) stay inside the string.
func skipQuoted(s string, i int) int {
	q := s[i]
	j := i + 1
	for j < len(s) {
		c := s[j]
		if c == '\\' && q != '`' {
			j += 2
			continue
		}
		if c == q {
			if j+1 < len(s) && s[j+1] == q {
				j += 2
				continue
			}
			return j + 1
		}
		j++
	}
	return len(s)
}

// commentEnd returns the index just past a comment starting at s[i], or -1 when
// no comment starts there. Line comments end before their newline.
func commentEnd(s string, i int) int {
	switch {
	case s[i] == '#':
		return lineEnd(s, i)
	case s[i] == '-' && i+1 < len(s) && s[i+1] == '-' && (i+2 == len(s) || isSpace(s[i+2])):
		return lineEnd(s, i)
	case s[i] == '/' && i+1 < len(s) && s[i+1] == '*':
		end := strings.Index(s[i+2:], "*/")
		if end < 0 {
			return len(s)
		}
		return i + 2 + end + 2
	}
	return -1
}

func lineEnd(s string, i int) int {
	if nl := strings.IndexByte(s[i:], '\n'); nl >= 0 {
		return i + nl
	}
	return len(s)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isIdentChar(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c >= 0x80
}

func isQuote(c byte) bool {
	return c == '\'' || c == '"' || c == '`'
}

// matchingParen returns the index of the parenthesis closing the one at s[open], or -1
func matchingParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); {
		c := s[i]
		if isQuote(c) {
			i = skipQuoted(s, i)
			continue
		}
		if end := commentEnd(s, i); end >= 0 {
			i = end
			continue
		}
		switch c {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
		i++
	}
	return -1
}

// splitTopLevel splits s on sep characters that are outside quotes, comments and parentheses
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); {
		c := s[i]
		if isQuote(c) {
			i = skipQuoted(s, i)
			continue
		}
		if end := commentEnd(s, i); end >= 0 {
			i = end
			continue
		}
		switch c {
		case '(':
			depth++
		case ')':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
		i++
	}
	parts = append(parts, s[start:])
	return parts
}

// mapUnquoted applies fn to every run of s that is outside quoted strings and identifiers
func mapUnquoted(s string, fn func(string) string) string {
	var b strings.Builder
	start := 0
	for i := 0; i < len(s); {
		if isQuote(s[i]) {
			b.WriteString(fn(s[start:i]))
			end := skipQuoted(s, i)
			b.WriteString(s[i:end])
			i = end
			start = end
			continue
		}
		i++
	}
	b.WriteString(fn(s[start:]))
	return b.String()
}

// stripLeadingComments drops whitespace and plain comments from the front of s.
// Executable version comments (/*! ... */) are kept.
func stripLeadingComments(s string) string {
	i := 0
	for i < len(s) {
		if isSpace(s[i]) {
			i++
			continue
		}
		if strings.HasPrefix(s[i:], "/*!") {
			break
		}
		if end := commentEnd(s, i); end >= 0 {
			i = end
			continue
		}
		break
	}
	return s[i:]
}

// stripComments replaces plain comments outside quotes with a space.
// Executable version comments (/*! ... */) are kept.
func stripComments(s string) string {
	var b strings.Builder
	start := 0
	for i := 0; i < len(s); {
		if isQuote(s[i]) {
			i = skipQuoted(s, i)
			continue
		}
		if strings.HasPrefix(s[i:], "/*!") {
			i = commentEnd(s, i)
			continue
		}
		if end := commentEnd(s, i); end >= 0 {
			b.WriteString(s[start:i])
			b.WriteByte(' ')
			i = end
			start = end
			continue
		}
		i++
	}
	b.WriteString(s[start:])
	return b.String()
}

// collapseUnquoted collapses whitespace runs outside quotes and trims s.
// Quoted literals keep their bytes.
func collapseUnquoted(s string) string {
	return strings.TrimSpace(mapUnquoted(s, func(part string) string {
		return whitespaceRegex.ReplaceAllString(part, " ")
	}))
}
