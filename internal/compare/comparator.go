package compare

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mysqlschema/mysqlschema/internal/diff"
	"github.com/mysqlschema/mysqlschema/internal/ir"
)

// ErrNoTable is returned when one side of a table comparison has no CREATE TABLE statement
var ErrNoTable = errors.New("no CREATE TABLE statement found")

// Options controls what the comparator treats as a change
type Options struct {
	// IgnoreWhitespace makes routine, trigger and event bodies whitespace-insensitive.
	// Headers and view definitions are always compared with whitespace collapsed.
	IgnoreWhitespace bool

	// CompareForeignKeyDefinitions replaces a same-named foreign key whose definition
	// changed. By default foreign keys are matched by name only.
	CompareForeignKeyDefinitions bool

	// Equivalence decides which column definition differences are insignificant
	Equivalence ir.EquivalencePolicy

	// Ignore removes matching tables and objects from both sides before comparing
	Ignore *ir.IgnoreConfig
}

// DefaultOptions returns the options used by the CLI
func DefaultOptions() Options {
	return Options{
		IgnoreWhitespace: true,
		Equivalence:      ir.DefaultEquivalence(),
	}
}

// Comparator computes table and schema diffs. It holds no state between calls
// and is safe for concurrent use.
type Comparator struct {
	opts Options
}

// New creates a Comparator
func New(opts Options) *Comparator {
	return &Comparator{opts: opts}
}

// CompareTables parses the first CREATE TABLE of each side and diffs them
func (c *Comparator) CompareTables(desiredDDL, currentDDL string) (*diff.TableDiff, error) {
	desired := ir.ParseTable(desiredDDL)
	if desired == nil {
		return nil, fmt.Errorf("desired DDL: %w", ErrNoTable)
	}
	current := ir.ParseTable(currentDDL)
	if current == nil {
		return nil, fmt.Errorf("current DDL: %w", ErrNoTable)
	}
	return c.CompareTableDefinitions(desired, current)
}

// CompareTableDefinitions returns the operations that turn current into desired.
// Operations are grouped COLUMN, INDEX, FOREIGN_KEY.
func (c *Comparator) CompareTableDefinitions(desired, current *ir.TableDefinition) (*diff.TableDiff, error) {
	if desired == nil {
		return nil, fmt.Errorf("desired table: %w", ErrNoTable)
	}
	if current == nil {
		return nil, fmt.Errorf("current table: %w", ErrNoTable)
	}

	ops := &operationList{table: desired.Name}
	c.compareColumns(ops, desired, current)
	c.compareIndexes(ops, desired, current)
	c.compareForeignKeys(ops, desired, current)
	if ops.err != nil {
		return nil, fmt.Errorf("failed to compare table %s: %w", desired.Name, ops.err)
	}

	return &diff.TableDiff{
		TableName:  desired.Name,
		Operations: ops.ops,
	}, nil
}

func (c *Comparator) compareColumns(ops *operationList, desired, current *ir.TableDefinition) {
	for _, col := range desired.Columns {
		cur := current.Column(col.Name)
		switch {
		case cur == nil:
			ops.add(diff.OperationAdd, diff.TargetColumn, col.Name, col.Definition)
		case c.columnKey(col.Definition) != c.columnKey(cur.Definition):
			ops.add(diff.OperationModify, diff.TargetColumn, col.Name, col.Definition)
		}
	}
	for _, col := range current.Columns {
		if desired.Column(col.Name) == nil {
			ops.add(diff.OperationDrop, diff.TargetColumn, col.Name, "")
		}
	}
}

func (c *Comparator) columnKey(definition string) string {
	return ir.NormalizeColumnDefinition(definition, c.opts.Equivalence)
}

// compareIndexes matches indexes by name, PRIMARY included. An index whose kind or
// columns changed is dropped and re-added in place.
func (c *Comparator) compareIndexes(ops *operationList, desired, current *ir.TableDefinition) {
	desiredIndexes := desired.AllIndexes()
	currentIndexes := current.AllIndexes()

	for _, idx := range desiredIndexes {
		cur := findIndex(currentIndexes, idx.Name)
		switch {
		case cur == nil:
			ops.add(diff.OperationAdd, diff.TargetIndex, idx.Name, idx.Definition)
		case !idx.SameStructure(cur):
			ops.add(diff.OperationDrop, diff.TargetIndex, idx.Name, "")
			ops.add(diff.OperationAdd, diff.TargetIndex, idx.Name, idx.Definition)
		}
	}
	for _, idx := range currentIndexes {
		if findIndex(desiredIndexes, idx.Name) == nil {
			ops.add(diff.OperationDrop, diff.TargetIndex, idx.Name, "")
		}
	}
}

func findIndex(indexes []*ir.IndexDefinition, name string) *ir.IndexDefinition {
	for _, idx := range indexes {
		if strings.EqualFold(idx.Name, name) {
			return idx
		}
	}
	return nil
}

// compareForeignKeys emits every DROP before any ADD so that a constraint renamed
// or re-pointed under an existing name never collides with itself.
func (c *Comparator) compareForeignKeys(ops *operationList, desired, current *ir.TableDefinition) {
	for _, fk := range current.ForeignKeys {
		want := desired.ForeignKey(fk.Name)
		if want == nil || c.foreignKeyChanged(want, fk) {
			ops.add(diff.OperationDrop, diff.TargetForeignKey, fk.Name, "")
		}
	}
	for _, fk := range desired.ForeignKeys {
		cur := current.ForeignKey(fk.Name)
		if cur == nil || c.foreignKeyChanged(fk, cur) {
			ops.add(diff.OperationAdd, diff.TargetForeignKey, fk.Name, fk.Definition)
		}
	}
}

func (c *Comparator) foreignKeyChanged(desired, current *ir.ForeignKeyDefinition) bool {
	if !c.opts.CompareForeignKeyDefinitions {
		return false
	}
	return ir.NormalizeColumnDefinition(desired.Definition, c.opts.Equivalence) !=
		ir.NormalizeColumnDefinition(current.Definition, c.opts.Equivalence)
}

// operationList accumulates validated operations for one table, keeping the first error
type operationList struct {
	table string
	ops   []diff.Operation
	err   error
}

func (l *operationList) add(opType diff.OperationType, target diff.Target, name, definition string) {
	if l.err != nil {
		return
	}
	op, err := diff.NewOperation(opType, target, l.table, name, definition)
	if err != nil {
		l.err = err
		return
	}
	l.ops = append(l.ops, op)
}
