package ir

import (
	"path/filepath"
	"strings"
)

// IgnoreConfig represents the configuration for ignoring database objects
type IgnoreConfig struct {
	Tables     []string `toml:"tables,omitempty"`
	Views      []string `toml:"views,omitempty"`
	Procedures []string `toml:"procedures,omitempty"`
	Functions  []string `toml:"functions,omitempty"`
	Triggers   []string `toml:"triggers,omitempty"`
	Events     []string `toml:"events,omitempty"`
}

// ShouldIgnoreTable checks if a table should be ignored based on the patterns
func (c *IgnoreConfig) ShouldIgnoreTable(tableName string) bool {
	if c == nil {
		return false
	}
	return c.shouldIgnore(tableName, c.Tables)
}

// ShouldIgnoreObject checks if a view, routine, trigger or event should be ignored
func (c *IgnoreConfig) ShouldIgnoreObject(objType ObjectType, name string) bool {
	if c == nil {
		return false
	}
	switch objType {
	case ObjectTypeView:
		return c.shouldIgnore(name, c.Views)
	case ObjectTypeProcedure:
		return c.shouldIgnore(name, c.Procedures)
	case ObjectTypeFunction:
		return c.shouldIgnore(name, c.Functions)
	case ObjectTypeTrigger:
		return c.shouldIgnore(name, c.Triggers)
	case ObjectTypeEvent:
		return c.shouldIgnore(name, c.Events)
	}
	return false
}

// Filter returns a copy of the schema without the ignored tables and objects
func (c *IgnoreConfig) Filter(schema *Schema) *Schema {
	if c == nil || schema == nil {
		return schema
	}
	filtered := NewSchema()
	for _, t := range schema.Tables {
		if !c.ShouldIgnoreTable(t.Name) {
			filtered.Tables = append(filtered.Tables, t)
		}
	}
	for _, o := range schema.Objects {
		if !c.ShouldIgnoreObject(o.Type, o.Name) {
			filtered.Objects = append(filtered.Objects, o)
		}
	}
	return filtered
}

// shouldIgnore checks if a name should be ignored based on the patterns
// Patterns support wildcards (*) and negation (!)
// Negation patterns (starting with !) take precedence over inclusion patterns
func (c *IgnoreConfig) shouldIgnore(name string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}

	matched := false
	for _, pattern := range patterns {
		if strings.HasPrefix(pattern, "!") {
			continue
		}
		if matchPattern(pattern, name) {
			matched = true
			break
		}
	}

	for _, pattern := range patterns {
		if !strings.HasPrefix(pattern, "!") {
			continue
		}
		if matchPattern(pattern[1:], name) {
			return false
		}
	}

	return matched
}

// matchPattern matches a glob-style pattern against a string
func matchPattern(pattern, name string) bool {
	matched, err := filepath.Match(pattern, name)
	if err != nil {
		// invalid patterns only match literally
		return pattern == name
	}
	return matched
}
