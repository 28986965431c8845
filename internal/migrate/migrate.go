// Package migrate renders diffs as executable MySQL statements.
//
// Every statement is complete, backtick-quoted and semicolon terminated. Clauses are
// never batched into a single ALTER TABLE, so each statement can be executed, logged
// and retried on its own. Definitions are rendered verbatim without validation.
package migrate

import (
	"fmt"
	"strings"

	"github.com/mysqlschema/mysqlschema/internal/diff"
	"github.com/mysqlschema/mysqlschema/internal/ir"
)

// GenerateAlterSQL returns one ALTER TABLE statement per operation, in operation order
func GenerateAlterSQL(td *diff.TableDiff) []string {
	if td == nil {
		return []string{}
	}
	stmts := make([]string, 0, len(td.Operations))
	for _, op := range td.Operations {
		stmts = append(stmts, AlterStatement(tableNameFor(td, op), op))
	}
	return stmts
}

// AlterStatement renders a single operation against the given table
func AlterStatement(tableName string, op diff.Operation) string {
	table := ir.QuoteIdentifier(tableName)
	name := ir.QuoteIdentifier(op.Name())

	switch op.Target() {
	case diff.TargetColumn:
		switch op.Type() {
		case diff.OperationAdd:
			return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s;", table, name, op.Definition())
		case diff.OperationModify:
			return fmt.Sprintf("ALTER TABLE %s MODIFY COLUMN %s %s;", table, name, op.Definition())
		default:
			return fmt.Sprintf("ALTER TABLE %s DROP COLUMN %s;", table, name)
		}
	case diff.TargetIndex:
		switch {
		case op.Type() == diff.OperationAdd:
			return fmt.Sprintf("ALTER TABLE %s ADD %s;", table, op.Definition())
		case op.Name() == ir.PrimaryIndexName:
			return fmt.Sprintf("ALTER TABLE %s DROP PRIMARY KEY;", table)
		default:
			return fmt.Sprintf("ALTER TABLE %s DROP INDEX %s;", table, name)
		}
	default:
		if op.Type() == diff.OperationAdd {
			return fmt.Sprintf("ALTER TABLE %s ADD %s;", table, op.Definition())
		}
		return fmt.Sprintf("ALTER TABLE %s DROP FOREIGN KEY %s;", table, name)
	}
}

// GenerateObjectSQL renders an object change. REPLACE yields the DROP followed by the CREATE.
func GenerateObjectSQL(od diff.ObjectDiff) []string {
	switch od.Operation() {
	case diff.ObjectCreate:
		return []string{terminate(od.Definition())}
	case diff.ObjectReplace:
		return []string{dropObjectStatement(od), terminate(od.Definition())}
	default:
		return []string{dropObjectStatement(od)}
	}
}

func dropObjectStatement(od diff.ObjectDiff) string {
	return fmt.Sprintf("DROP %s IF EXISTS %s;", od.Type(), ir.QuoteIdentifier(od.Name()))
}

// DropTableStatement renders the statement removing a table that only exists in the current schema
func DropTableStatement(name string) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s;", ir.QuoteIdentifier(name))
}

// GenerateSchemaSQL renders a schema diff in dependency-safe order:
//
//  1. dropped tables
//  2. dropped objects
//  3. created tables, then ALTER TABLE statements for changed tables
//  4. created and replaced objects
func GenerateSchemaSQL(sd *diff.SchemaDiff) []string {
	return collectSchema(sd).Statements()
}

// GenerateSchemaSteps renders a schema diff like GenerateSchemaSQL and attaches to every
// statement the change it came from
func GenerateSchemaSteps(sd *diff.SchemaDiff) []diff.PlanStep {
	return collectSchema(sd).GetSteps()
}

func collectSchema(sd *diff.SchemaDiff) *diff.SQLCollector {
	collector := diff.NewSQLCollector()
	if sd == nil {
		return collector
	}

	for _, name := range sd.DroppedTables {
		collector.Collect(&diff.SQLContext{
			ObjectType:   "table",
			Operation:    "drop",
			ObjectPath:   name,
			SourceChange: name,
		}, DropTableStatement(name))
	}

	for _, od := range sd.Objects {
		if od.Operation() != diff.ObjectDrop {
			continue
		}
		collector.Collect(objectContext(od, "drop"), GenerateObjectSQL(od)...)
	}

	for _, ct := range sd.CreatedTables {
		collector.Collect(&diff.SQLContext{
			ObjectType:   "table",
			Operation:    "create",
			ObjectPath:   ct.Name,
			SourceChange: ct,
		}, terminate(ct.Definition))
	}
	for _, td := range sd.Tables {
		for _, op := range td.Operations {
			tableName := tableNameFor(td, op)
			collector.Collect(&diff.SQLContext{
				ObjectType:   strings.ToLower(string(op.Target())),
				Operation:    operationVerb(op.Type()),
				ObjectPath:   tableName + "." + op.Name(),
				SourceChange: op,
			}, AlterStatement(tableName, op))
		}
	}

	for _, od := range sd.Objects {
		switch od.Operation() {
		case diff.ObjectCreate:
			collector.Collect(objectContext(od, "create"), GenerateObjectSQL(od)...)
		case diff.ObjectReplace:
			collector.Collect(objectContext(od, "alter"), GenerateObjectSQL(od)...)
		}
	}
	return collector
}

func objectContext(od diff.ObjectDiff, operation string) *diff.SQLContext {
	return &diff.SQLContext{
		ObjectType:   strings.ToLower(string(od.Type())),
		Operation:    operation,
		ObjectPath:   od.Name(),
		SourceChange: od,
	}
}

func operationVerb(t diff.OperationType) string {
	switch t {
	case diff.OperationAdd:
		return "create"
	case diff.OperationDrop:
		return "drop"
	default:
		return "alter"
	}
}

func tableNameFor(td *diff.TableDiff, op diff.Operation) string {
	if td.TableName != "" {
		return td.TableName
	}
	return op.TableName()
}

// terminate appends a semicolon unless the statement already ends with one
func terminate(stmt string) string {
	stmt = strings.TrimSpace(stmt)
	if strings.HasSuffix(stmt, ";") {
		return stmt
	}
	return stmt + ";"
}
