package plan

import (
	"strings"

	"github.com/mysqlschema/mysqlschema/internal/diff"
)

// scriptDelimiter replaces ";" while a compound statement is being sent
const scriptDelimiter = ";;"

// FormatScript renders steps as a script for the mysql client. CREATE statements
// for routines, triggers and events may contain ";" in their body, so they are
// wrapped in a DELIMITER block.
func FormatScript(steps []diff.PlanStep) string {
	var b strings.Builder
	for i, step := range steps {
		if i > 0 {
			b.WriteString("\n")
		}
		if !needsDelimiter(step) {
			b.WriteString(step.SQL)
			b.WriteString("\n")
			continue
		}
		body := strings.TrimRight(strings.TrimSpace(step.SQL), ";")
		b.WriteString("DELIMITER " + scriptDelimiter + "\n")
		b.WriteString(body + scriptDelimiter + "\n")
		b.WriteString("DELIMITER ;\n")
	}
	return b.String()
}

func needsDelimiter(step diff.PlanStep) bool {
	switch step.ObjectType {
	case "procedure", "function", "trigger", "event":
	default:
		return false
	}
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(step.SQL)), "CREATE")
}
