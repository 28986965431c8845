package ir

import "strings"

// QuoteIdentifier wraps an identifier in backticks, doubling embedded backticks
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// UnquoteIdentifier strips surrounding backticks or double quotes from an identifier
func UnquoteIdentifier(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		switch {
		case s[0] == '`' && s[len(s)-1] == '`':
			return strings.ReplaceAll(s[1:len(s)-1], "``", "`")
		case s[0] == '"' && s[len(s)-1] == '"':
			return strings.ReplaceAll(s[1:len(s)-1], `""`, `"`)
		}
	}
	return s
}

// unqualify returns the last part of a possibly schema qualified name such as `db`.`t`
func unqualify(s string) string {
	parts := splitQualified(s)
	if len(parts) == 0 {
		return ""
	}
	return UnquoteIdentifier(parts[len(parts)-1])
}

// splitQualified splits on dots outside backticks
func splitQualified(s string) []string {
	var parts []string
	var cur strings.Builder
	inQuote := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '`':
			inQuote = !inQuote
			cur.WriteByte(c)
		case c == '.' && !inQuote:
			parts = append(parts, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	if cur.Len() > 0 {
		parts = append(parts, strings.TrimSpace(cur.String()))
	}
	return parts
}

func quoteColumnList(columns []string) string {
	quoted := make([]string, 0, len(columns))
	for _, c := range columns {
		quoted = append(quoted, QuoteIdentifier(c))
	}
	return strings.Join(quoted, ",")
}
