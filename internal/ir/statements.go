package ir

import (
	"regexp"
	"strings"
)

var delimiterRegex = regexp.MustCompile(`(?i)^DELIMITER[ \t]+(\S+)[ \t]*`)

// SplitStatements splits a DDL script into statements, without their terminators.
//
// The client-side DELIMITER directive is honoured. With the default ";" delimiter,
// semicolons inside BEGIN ... END and CASE ... END blocks of CREATE statements do
// not terminate the statement, so routines and triggers can be written without
// changing the delimiter.
func SplitStatements(script string) []string {
	var (
		stmts     []string
		buf       strings.Builder
		delimiter = ";"
		depth     = 0
		// nil until the first word of the statement has been seen
		create *bool
	)

	flush := func() {
		if s := strings.TrimSpace(buf.String()); s != "" {
			stmts = append(stmts, s)
		}
		buf.Reset()
		depth = 0
		create = nil
	}

	for i := 0; i < len(script); {
		c := script[i]
		if buf.Len() == 0 {
			if isSpace(c) {
				i++
				continue
			}
			if m := delimiterRegex.FindStringSubmatch(script[i:]); m != nil && atLineStart(script, i) {
				delimiter = m[1]
				i = lineEnd(script, i)
				continue
			}
			// leading comments are dropped, executable comments are statements
			if !strings.HasPrefix(script[i:], "/*!") {
				if end := commentEnd(script, i); end >= 0 {
					i = end
					continue
				}
			}
		}

		if isQuote(c) {
			end := skipQuoted(script, i)
			buf.WriteString(script[i:end])
			i = end
			continue
		}
		if end := commentEnd(script, i); end >= 0 {
			buf.WriteString(script[i:end])
			i = end
			continue
		}

		if strings.HasPrefix(script[i:], delimiter) && (delimiter != ";" || depth <= 0) {
			flush()
			i += len(delimiter)
			continue
		}

		if delimiter == ";" && isWordStart(script, i) {
			word, end := readWord(script, i)
			buf.WriteString(script[i:end])
			i = end
			if create == nil {
				v := isCreateStatement(buf.String())
				create = &v
			}
			if !*create {
				continue
			}
			switch strings.ToUpper(word) {
			case "BEGIN", "CASE":
				depth++
			case "END":
				next, nextEnd := peekWord(script, i)
				switch strings.ToUpper(next) {
				case "IF", "LOOP", "WHILE", "REPEAT":
					buf.WriteString(script[i:nextEnd])
					i = nextEnd
				case "CASE":
					buf.WriteString(script[i:nextEnd])
					i = nextEnd
					depth--
				default:
					depth--
				}
			}
			continue
		}

		buf.WriteByte(c)
		i++
	}
	flush()
	return stmts
}

func atLineStart(s string, i int) bool {
	for j := i - 1; j >= 0; j-- {
		switch s[j] {
		case '\n':
			return true
		case ' ', '\t', '\r':
			continue
		default:
			return false
		}
	}
	return true
}

func isWordStart(s string, i int) bool {
	c := s[i]
	if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')) {
		return false
	}
	return i == 0 || !isIdentChar(s[i-1])
}

func readWord(s string, i int) (string, int) {
	j := i
	for j < len(s) && isIdentChar(s[j]) {
		j++
	}
	return s[i:j], j
}

// peekWord returns the word following position i (skipping whitespace) and the index after it
func peekWord(s string, i int) (string, int) {
	j := i
	for j < len(s) && isSpace(s[j]) {
		j++
	}
	if j >= len(s) || !isIdentChar(s[j]) {
		return "", i
	}
	return readWord(s, j)
}

func isCreateStatement(s string) bool {
	s = strings.TrimSpace(UnwrapVersionComments(stripLeadingComments(s)))
	return len(s) >= 6 && strings.EqualFold(s[:6], "CREATE")
}
