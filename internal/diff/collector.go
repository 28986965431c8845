package diff

import (
	"strings"
)

// SQLContext describes the change a generated statement belongs to
type SQLContext struct {
	ObjectType   string // table, column, index, foreign_key, view, procedure, function, trigger, event
	Operation    string // create, alter, drop
	ObjectPath   string // table or table.element
	SourceChange any    // the Operation, ObjectDiff, CreatedTable or dropped table name
}

// PlanStep is one executable statement together with the change that produced it
type PlanStep struct {
	SQL          string `json:"sql"`
	ObjectType   string `json:"object_type"`
	Operation    string `json:"operation"`
	ObjectPath   string `json:"object_path"`
	SourceChange any    `json:"source_change,omitempty"`
}

// SQLCollector collects statements in execution order
type SQLCollector struct {
	steps []PlanStep
}

// NewSQLCollector creates a new SQLCollector
func NewSQLCollector() *SQLCollector {
	return &SQLCollector{
		steps: []PlanStep{},
	}
}

// Collect records the statements generated for one change
func (c *SQLCollector) Collect(context *SQLContext, stmts ...string) {
	if context == nil {
		return
	}
	for _, stmt := range stmts {
		c.steps = append(c.steps, PlanStep{
			SQL:          strings.TrimSpace(stmt),
			ObjectType:   context.ObjectType,
			Operation:    context.Operation,
			ObjectPath:   context.ObjectPath,
			SourceChange: context.SourceChange,
		})
	}
}

// GetSteps returns all collected plan steps
func (c *SQLCollector) GetSteps() []PlanStep {
	return c.steps
}

// Statements returns the SQL of every collected step
func (c *SQLCollector) Statements() []string {
	stmts := make([]string, 0, len(c.steps))
	for _, s := range c.steps {
		stmts = append(stmts, s.SQL)
	}
	return stmts
}
