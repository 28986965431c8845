package compare

import (
	"fmt"
	"strings"

	"github.com/mysqlschema/mysqlschema/internal/diff"
	"github.com/mysqlschema/mysqlschema/internal/ir"
)

// CompareSchemas parses two multi-statement DDL sources and diffs them
func (c *Comparator) CompareSchemas(desiredDDL, currentDDL string) (*diff.SchemaDiff, error) {
	desired, err := ir.ParseSchema(desiredDDL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse desired schema: %w", err)
	}
	current, err := ir.ParseSchema(currentDDL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse current schema: %w", err)
	}
	return c.CompareSchemaDefinitions(desired, current)
}

// CompareSchemaDefinitions diffs two parsed schemas. A nil schema is treated as empty.
func (c *Comparator) CompareSchemaDefinitions(desired, current *ir.Schema) (*diff.SchemaDiff, error) {
	if desired == nil {
		desired = ir.NewSchema()
	}
	if current == nil {
		current = ir.NewSchema()
	}
	desired = c.opts.Ignore.Filter(desired)
	current = c.opts.Ignore.Filter(current)

	result := &diff.SchemaDiff{
		Tables:        []*diff.TableDiff{},
		DroppedTables: []string{},
		CreatedTables: []diff.CreatedTable{},
		Objects:       []diff.ObjectDiff{},
	}

	for _, table := range current.Tables {
		if desired.Table(table.Name) == nil {
			result.DroppedTables = append(result.DroppedTables, table.Name)
		}
	}

	var created []*ir.TableDefinition
	for _, table := range desired.Tables {
		cur := current.Table(table.Name)
		if cur == nil {
			created = append(created, table)
			continue
		}
		td, err := c.CompareTableDefinitions(table, cur)
		if err != nil {
			return nil, err
		}
		if td.HasChanges() {
			result.Tables = append(result.Tables, td)
		}
	}
	for _, table := range topologicallySortTables(created) {
		result.CreatedTables = append(result.CreatedTables, diff.CreatedTable{
			Name:       table.Name,
			Definition: table.Definition,
		})
	}

	objects, err := c.compareObjects(desired, current)
	if err != nil {
		return nil, err
	}
	result.Objects = objects

	result.UpdateSummary()
	return result, nil
}

func (c *Comparator) compareObjects(desired, current *ir.Schema) ([]diff.ObjectDiff, error) {
	result := []diff.ObjectDiff{}
	for _, obj := range desired.Objects {
		cur := current.Object(obj.Type, obj.Name)
		var (
			od  diff.ObjectDiff
			err error
		)
		switch {
		case cur == nil:
			od, err = diff.NewObjectDiff(diff.ObjectType(obj.Type), obj.Name, diff.ObjectCreate, obj.Definition)
		case !c.SameObject(obj, cur):
			od, err = diff.NewObjectDiff(diff.ObjectType(obj.Type), obj.Name, diff.ObjectReplace, obj.Definition)
		default:
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to compare %s %s: %w", obj.Type, obj.Name, err)
		}
		result = append(result, od)
	}

	for _, obj := range current.Objects {
		if desired.Object(obj.Type, obj.Name) != nil {
			continue
		}
		od, err := diff.NewObjectDiff(diff.ObjectType(obj.Type), obj.Name, diff.ObjectDrop, "")
		if err != nil {
			return nil, fmt.Errorf("failed to compare %s %s: %w", obj.Type, obj.Name, err)
		}
		result = append(result, od)
	}
	return result, nil
}

// SameObject reports whether two definitions of the same object are equivalent.
// DEFINER clauses and version comments never matter. Routines, triggers and events
// compare header and body separately so that body formatting can be significant.
func (c *Comparator) SameObject(a, b *ir.ObjectDefinition) bool {
	if a.Type != b.Type {
		return false
	}
	if !a.Type.IsRoutine() {
		return ir.NormalizeObjectDefinition(a.Definition) == ir.NormalizeObjectDefinition(b.Definition)
	}

	pa := ir.SplitRoutine(ir.CleanDefiner(ir.UnwrapVersionComments(a.Definition)))
	pb := ir.SplitRoutine(ir.CleanDefiner(ir.UnwrapVersionComments(b.Definition)))
	if ir.NormalizeObjectDefinition(pa.Header) != ir.NormalizeObjectDefinition(pb.Header) {
		return false
	}
	return c.bodyKey(pa.Body) == c.bodyKey(pb.Body)
}

func (c *Comparator) bodyKey(body string) string {
	if c.opts.IgnoreWhitespace {
		return ir.NormalizeObjectDefinition(body)
	}
	return strings.TrimRight(body, "; \t\r\n")
}
