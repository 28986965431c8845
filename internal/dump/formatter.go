package dump

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mysqlschema/mysqlschema/internal/ir"
	"github.com/mysqlschema/mysqlschema/internal/version"
)

// routineDelimiter is the mysql client delimiter used around compound statements
const routineDelimiter = ";;"

// Tables are dumped by name, so foreign keys may reference tables created later
const (
	fkChecksOff = "SET FOREIGN_KEY_CHECKS = 0;\n\n"
	fkChecksOn  = "SET FOREIGN_KEY_CHECKS = 1;\n"
)

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// DumpFormatter handles formatting SQL output for database dumps
type DumpFormatter struct {
	dbVersion string
	database  string
}

// NewDumpFormatter creates a new DumpFormatter
func NewDumpFormatter(dbVersion string, database string) *DumpFormatter {
	return &DumpFormatter{
		dbVersion: dbVersion,
		database:  database,
	}
}

// dumpEntry is one table or object as it appears in a dump
type dumpEntry struct {
	typeName   string // TABLE, VIEW, PROCEDURE, ...
	name       string
	definition string
	routine    bool
	table      string // owning table of a trigger
}

// FormatSingleFile formats a schema as one script that mysql can replay and
// ParseSchema can read back
func (f *DumpFormatter) FormatSingleFile(schema *ir.Schema) string {
	var output strings.Builder
	output.WriteString(f.generateDumpHeader())
	output.WriteString(fkChecksOff)

	for _, entry := range f.entries(schema) {
		output.WriteString(f.formatEntry(entry))
		output.WriteString("\n")
	}
	output.WriteString(fkChecksOn)
	return output.String()
}

// FormatMultiFile writes one file per table, routine, view and event under the
// directory of outputPath and a main file that SOURCEs them in dependency order.
// Triggers are written into the file of their table.
func (f *DumpFormatter) FormatMultiFile(schema *ir.Schema, outputPath string) error {
	baseDir := filepath.Dir(outputPath)
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	filesByDir := make(map[string]map[string][]dumpEntry)
	var order []string // dir/name in first-seen order
	for _, entry := range f.entries(schema) {
		dir := objectDirectory(entry.typeName)
		group := entry.name
		if entry.table != "" {
			group = entry.table
		}
		if filesByDir[dir] == nil {
			filesByDir[dir] = make(map[string][]dumpEntry)
		}
		if _, seen := filesByDir[dir][group]; !seen {
			order = append(order, dir+"/"+group)
		}
		filesByDir[dir][group] = append(filesByDir[dir][group], entry)
	}

	var includes []string
	for _, dir := range []string{"functions", "procedures", "tables", "views", "events"} {
		objects, exists := filesByDir[dir]
		if !exists {
			continue
		}
		dirPath := filepath.Join(baseDir, dir)
		if err := os.MkdirAll(dirPath, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dirPath, err)
		}
		for _, key := range order {
			name, ok := strings.CutPrefix(key, dir+"/")
			if !ok {
				continue
			}
			fileName := sanitizeFileName(name) + ".sql"
			if err := f.writeObjectFile(filepath.Join(dirPath, fileName), objects[name]); err != nil {
				return fmt.Errorf("failed to write file %s: %w", fileName, err)
			}
			includes = append(includes, fmt.Sprintf("SOURCE %s/%s;", dir, fileName))
		}
	}

	var main strings.Builder
	main.WriteString(f.generateDumpHeader())
	main.WriteString(fkChecksOff)
	for _, include := range includes {
		main.WriteString(include + "\n")
	}
	main.WriteString("\n" + fkChecksOn)
	if err := os.WriteFile(outputPath, []byte(main.String()), 0644); err != nil {
		return fmt.Errorf("failed to create main file: %w", err)
	}
	return nil
}

// entries lists tables followed by objects, in schema order
func (f *DumpFormatter) entries(schema *ir.Schema) []dumpEntry {
	if schema == nil {
		return nil
	}
	var entries []dumpEntry
	for _, t := range schema.Tables {
		entries = append(entries, dumpEntry{typeName: "TABLE", name: t.Name, definition: t.Definition})
	}
	for _, o := range schema.Objects {
		entry := dumpEntry{
			typeName:   string(o.Type),
			name:       o.Name,
			definition: o.Definition,
			routine:    o.Type.IsRoutine(),
		}
		if o.Type == ir.ObjectTypeTrigger {
			entry.table = triggerTable(o.Definition)
		}
		entries = append(entries, entry)
	}
	return entries
}

var triggerTableRegex = regexp.MustCompile("(?is)\\bON\\s+((?:`[^`]+`|[A-Za-z0-9_$]+)(?:\\.(?:`[^`]+`|[A-Za-z0-9_$]+))?)\\s+FOR\\s+EACH\\s+ROW")

// triggerTable returns the table a trigger is attached to, or "" when it cannot be found
func triggerTable(def string) string {
	m := triggerTableRegex.FindStringSubmatch(def)
	if m == nil {
		return ""
	}
	parts := strings.Split(m[1], ".")
	return ir.UnquoteIdentifier(parts[len(parts)-1])
}

// generateDumpHeader generates the header for database dumps with metadata
func (f *DumpFormatter) generateDumpHeader() string {
	var header strings.Builder

	header.WriteString("--\n")
	header.WriteString("-- mysqlschema database dump\n")
	header.WriteString("--\n")
	header.WriteString("\n")

	header.WriteString(fmt.Sprintf("-- Dumped from database version %s\n", f.dbVersion))
	header.WriteString(fmt.Sprintf("-- Dumped by mysqlschema version %s\n", version.App()))
	header.WriteString("\n")
	header.WriteString("\n")
	return header.String()
}

// formatEntry renders one object with its comment header. Routines, triggers and
// events are wrapped in a DELIMITER block.
func (f *DumpFormatter) formatEntry(entry dumpEntry) string {
	var output strings.Builder
	output.WriteString("--\n")
	output.WriteString(fmt.Sprintf("-- Name: %s; Type: %s; Database: %s\n", entry.name, entry.typeName, f.databaseLabel()))
	output.WriteString("--\n")
	output.WriteString("\n")

	def := strings.TrimRight(strings.TrimSpace(entry.definition), ";")
	if entry.routine {
		output.WriteString("DELIMITER " + routineDelimiter + "\n")
		output.WriteString(def + routineDelimiter + "\n")
		output.WriteString("DELIMITER ;\n")
	} else {
		output.WriteString(def + ";\n")
	}
	return output.String()
}

func (f *DumpFormatter) databaseLabel() string {
	if f.database == "" {
		return "-"
	}
	return f.database
}

// writeObjectFile writes the entries of one file, separated by blank lines
func (f *DumpFormatter) writeObjectFile(filePath string, entries []dumpEntry) error {
	var content strings.Builder
	for i, entry := range entries {
		if i > 0 {
			content.WriteString("\n")
		}
		content.WriteString(f.formatEntry(entry))
	}
	return os.WriteFile(filePath, []byte(content.String()), 0644)
}

// objectDirectory returns the directory name for an object type
func objectDirectory(typeName string) string {
	switch typeName {
	case "TABLE", "TRIGGER":
		return "tables"
	case "VIEW":
		return "views"
	case "PROCEDURE":
		return "procedures"
	case "FUNCTION":
		return "functions"
	case "EVENT":
		return "events"
	default:
		return "misc"
	}
}

// sanitizeFileName converts an object name to a valid filename
func sanitizeFileName(name string) string {
	sanitized := strings.Trim(unsafeFileChars.ReplaceAllString(name, "_"), "_")
	return strings.ToLower(sanitized)
}
