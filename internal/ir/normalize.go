package ir

import (
	"regexp"
	"strings"
)

var (
	whitespaceRegex     = regexp.MustCompile(`\s+`)
	versionCommentRegex = regexp.MustCompile(`(?s)/\*!\d*\s?(.*?)\*/`)
	definerRegex        = regexp.MustCompile("(?i)DEFINER\\s*=\\s*(?:CURRENT_USER(?:\\s*\\(\\s*\\))?|(?:`[^`]*`|'[^']*'|\"[^\"]*\"|[A-Za-z0-9_.$-]+)@(?:`[^`]*`|'[^']*'|\"[^\"]*\"|[A-Za-z0-9_.%:-]+))")
	intDisplayWidth     = regexp.MustCompile(`\b(TINYINT|SMALLINT|MEDIUMINT|INTEGER|INT|BIGINT)\s*\(\s*(\d+)\s*\)`)
)

// NormalizeOptions controls Normalize
type NormalizeOptions struct {
	// IgnoreWhitespace collapses every whitespace run into one space and trims the result
	IgnoreWhitespace bool
}

// Normalize returns text unchanged unless IgnoreWhitespace is set, in which case every
// run of spaces, tabs and line breaks becomes a single space. Comments are preserved.
func Normalize(text string, opts NormalizeOptions) string {
	if !opts.IgnoreWhitespace {
		return text
	}
	return collapseWhitespace(text)
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}

// CleanDefiner removes DEFINER=`user`@`host` clauses. Only the clause itself is removed,
// so "CREATE DEFINER=`root`@`localhost` TRIGGER" becomes "CREATE  TRIGGER".
func CleanDefiner(text string) string {
	return definerRegex.ReplaceAllString(text, "")
}

// UnwrapVersionComments replaces executable comments such as /*!50003 X */ with their content
func UnwrapVersionComments(text string) string {
	return versionCommentRegex.ReplaceAllString(text, "$1")
}

// EquivalencePolicy decides which textual differences in a column definition are insignificant
type EquivalencePolicy struct {
	// IgnoreIntegerDisplayWidth treats int(11) and int as equal. tinyint(1) keeps its width.
	IgnoreIntegerDisplayWidth bool
	// UnwrapVersionComments compares the content of /*!NNNNN ... */ comments as plain text
	UnwrapVersionComments bool
}

// DefaultEquivalence returns the policy used when none is configured
func DefaultEquivalence() EquivalencePolicy {
	return EquivalencePolicy{
		IgnoreIntegerDisplayWidth: true,
		UnwrapVersionComments:     true,
	}
}

// NormalizeColumnDefinition returns the comparison key for a column definition.
// Plain comments, whitespace and keyword case outside quotes never matter; the policy covers the rest.
func NormalizeColumnDefinition(def string, policy EquivalencePolicy) string {
	def = stripComments(def)
	if policy.UnwrapVersionComments {
		def = UnwrapVersionComments(def)
	}
	def = mapUnquoted(def, func(s string) string {
		s = whitespaceRegex.ReplaceAllString(strings.ToUpper(s), " ")
		if policy.IgnoreIntegerDisplayWidth {
			s = intDisplayWidth.ReplaceAllStringFunc(s, stripDisplayWidth)
		}
		return s
	})
	return strings.TrimSpace(def)
}

func stripDisplayWidth(match string) string {
	m := intDisplayWidth.FindStringSubmatch(match)
	if m[1] == "TINYINT" && m[2] == "1" {
		return "TINYINT(1)"
	}
	return m[1]
}

// NormalizeObjectDefinition returns the comparison key for a view, routine, trigger or event:
// definer removed, version comments unwrapped, whitespace collapsed and the terminator dropped.
func NormalizeObjectDefinition(def string) string {
	def = collapseWhitespace(CleanDefiner(UnwrapVersionComments(def)))
	for strings.HasSuffix(def, ";") {
		def = strings.TrimSpace(strings.TrimSuffix(def, ";"))
	}
	return def
}
