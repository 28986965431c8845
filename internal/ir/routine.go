package ir

import (
	"regexp"
	"strings"
)

// RoutineParts is a routine, trigger or event split into signature and body
type RoutineParts struct {
	Header string
	Body   string
}

var (
	routineKindRegex    = regexp.MustCompile(`(?i)\b(PROCEDURE|FUNCTION|TRIGGER|EVENT)\b`)
	triggerBodyRegex    = regexp.MustCompile(`(?is)\bFOR\s+EACH\s+ROW(?:\s+(?:FOLLOWS|PRECEDES)\s+` + identPattern + `)?\s*`)
	eventBodyRegex      = regexp.MustCompile(`(?is)\bDO\s+`)
	returnsRegex        = regexp.MustCompile(`(?is)^\s*RETURNS\s+\w+(?:\s*\([^)]*\))?(?:\s+(?:UNSIGNED|ZEROFILL|SIGNED))*(?:\s+(?:CHARSET|CHARACTER\s+SET|COLLATE)\s+\w+)*`)
	characteristicRegex = regexp.MustCompile(`(?is)^\s*(?:COMMENT\s+'(?:[^'\\]|\\.|'')*'|LANGUAGE\s+SQL|NOT\s+DETERMINISTIC|DETERMINISTIC|CONTAINS\s+SQL|NO\s+SQL|READS\s+SQL\s+DATA|MODIFIES\s+SQL\s+DATA|SQL\s+SECURITY\s+(?:DEFINER|INVOKER))`)
)

// SplitRoutine separates the signature of a stored routine, trigger or event from its body.
// The header runs up to the body; the body is the BEGIN ... END block or single statement,
// as written apart from surrounding whitespace. Input that is not a routine yields an
// empty body with the whole text as header.
func SplitRoutine(ddl string) RoutineParts {
	start := findBodyStart(ddl)
	if start < 0 {
		return RoutineParts{Header: strings.TrimSpace(ddl)}
	}
	return RoutineParts{
		Header: strings.TrimSpace(ddl[:start]),
		Body:   strings.TrimSpace(ddl[start:]),
	}
}

func findBodyStart(ddl string) int {
	if begin := findTopLevelWord(ddl, "BEGIN"); begin >= 0 {
		return begin
	}

	kind := routineKindRegex.FindStringSubmatchIndex(ddl)
	if kind == nil {
		return -1
	}
	switch strings.ToUpper(ddl[kind[2]:kind[3]]) {
	case "TRIGGER":
		if m := triggerBodyRegex.FindStringIndex(ddl); m != nil {
			return m[1]
		}
	case "EVENT":
		if m := eventBodyRegex.FindStringIndex(ddl[kind[1]:]); m != nil {
			return kind[1] + m[1]
		}
	default:
		open := strings.IndexByte(ddl[kind[1]:], '(')
		if open < 0 {
			return -1
		}
		closeIdx := matchingParen(ddl, kind[1]+open)
		if closeIdx < 0 {
			return -1
		}
		pos := closeIdx + 1
		if m := returnsRegex.FindStringIndex(ddl[pos:]); m != nil {
			pos += m[1]
		}
		for {
			m := characteristicRegex.FindStringIndex(ddl[pos:])
			if m == nil {
				break
			}
			pos += m[1]
		}
		for pos < len(ddl) && isSpace(ddl[pos]) {
			pos++
		}
		return pos
	}
	return -1
}

// findTopLevelWord returns the index of the first occurrence of word (case-insensitive)
// outside quotes and comments, or -1
func findTopLevelWord(s, word string) int {
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
		if isWordStart(s, i) {
			w, end := readWord(s, i)
			if strings.EqualFold(w, word) {
				return i
			}
			i = end
			continue
		}
		i++
	}
	return -1
}
