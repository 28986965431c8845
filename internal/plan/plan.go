package plan

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mysqlschema/mysqlschema/internal/color"
	"github.com/mysqlschema/mysqlschema/internal/diff"
	"github.com/mysqlschema/mysqlschema/internal/fingerprint"
	"github.com/mysqlschema/mysqlschema/internal/migrate"
	"github.com/mysqlschema/mysqlschema/internal/version"
)

// Plan is the migration from the current database schema to the desired one
type Plan struct {
	// The underlying diff data
	Diff *diff.SchemaDiff

	// Database the plan targets
	Database string

	// Statements in execution order, each with the change it implements
	Steps []diff.PlanStep

	// Fingerprint of the current schema the plan was computed against
	SourceFingerprint *fingerprint.SchemaFingerprint

	CreatedAt time.Time
}

// ObjectChange is one change to a table, table element or schema object
type ObjectChange struct {
	Address string `json:"address"`
	Type    string `json:"type"`
	Name    string `json:"name"`
	Table   string `json:"table,omitempty"`
	Change  Change `json:"change"`
}

// Change is what happens to an object
type Change struct {
	Actions []string `json:"actions"`
	After   string   `json:"after,omitempty"` // desired definition for create and update
}

// PlanJSON represents the structured JSON output format
type PlanJSON struct {
	Version            string                        `json:"version"`
	MysqlschemaVersion string                        `json:"mysqlschema_version"`
	CreatedAt          time.Time                     `json:"created_at"`
	Database           string                        `json:"database,omitempty"`
	SourceFingerprint  *fingerprint.SchemaFingerprint `json:"source_fingerprint,omitempty"`
	Summary            PlanSummary                   `json:"summary"`
	ObjectChanges      []ObjectChange                `json:"object_changes"`
	Steps              []diff.PlanStep               `json:"steps"`
}

// PlanSummary provides counts of changes by type
type PlanSummary struct {
	Add     int                    `json:"add"`
	Change  int                    `json:"change"`
	Destroy int                    `json:"destroy"`
	Total   int                    `json:"total"`
	ByType  map[string]TypeSummary `json:"by_type"`
}

// TypeSummary provides counts for a specific object type
type TypeSummary struct {
	Add     int `json:"add"`
	Change  int `json:"change"`
	Destroy int `json:"destroy"`
}

// ObjectType groups object changes for display
type ObjectType string

const (
	ObjectTypeTable      ObjectType = "tables"
	ObjectTypeView       ObjectType = "views"
	ObjectTypeProcedure  ObjectType = "procedures"
	ObjectTypeFunction   ObjectType = "functions"
	ObjectTypeTrigger    ObjectType = "triggers"
	ObjectTypeEvent      ObjectType = "events"
	ObjectTypeColumn     ObjectType = "columns"
	ObjectTypeIndex      ObjectType = "indexes"
	ObjectTypeForeignKey ObjectType = "foreign_keys"
)

// getObjectOrder returns the display order of top-level object types.
// Columns, indexes and foreign keys are shown under their table.
func getObjectOrder() []ObjectType {
	return []ObjectType{
		ObjectTypeTable,
		ObjectTypeView,
		ObjectTypeProcedure,
		ObjectTypeFunction,
		ObjectTypeTrigger,
		ObjectTypeEvent,
	}
}

func isTableElement(t string) bool {
	switch ObjectType(t) {
	case ObjectTypeColumn, ObjectTypeIndex, ObjectTypeForeignKey:
		return true
	}
	return false
}

// ========== PUBLIC METHODS ==========

// NewPlan creates a plan from a schema diff
func NewPlan(sd *diff.SchemaDiff, database string) *Plan {
	return &Plan{
		Diff:      sd,
		Database:  database,
		Steps:     migrate.GenerateSchemaSteps(sd),
		CreatedAt: time.Now(),
	}
}

// HasChanges reports whether the plan would execute anything
func (p *Plan) HasChanges() bool {
	return len(p.Steps) > 0
}

// Statements returns the SQL of every step in execution order
func (p *Plan) Statements() []string {
	stmts := make([]string, 0, len(p.Steps))
	for _, step := range p.Steps {
		stmts = append(stmts, step.SQL)
	}
	return stmts
}

// HumanColored returns a human-readable summary of the plan with color support
func (p *Plan) HumanColored(enableColor bool) string {
	c := color.New(enableColor)
	var summary strings.Builder

	planJSON := p.convertToStructuredJSON()
	if planJSON.Summary.Total == 0 {
		summary.WriteString("No changes detected.\n")
		return summary.String()
	}

	summary.WriteString(c.FormatPlanHeader(planJSON.Summary.Add, planJSON.Summary.Change, planJSON.Summary.Destroy) + "\n\n")

	summary.WriteString(c.Bold("Summary by type:") + "\n")
	for _, objType := range getObjectOrder() {
		if ts, ok := planJSON.Summary.ByType[string(objType)]; ok {
			summary.WriteString(c.FormatSummaryLine(string(objType), ts.Add, ts.Change, ts.Destroy) + "\n")
		}
	}
	summary.WriteString("\n")

	for _, objType := range getObjectOrder() {
		if _, ok := planJSON.Summary.ByType[string(objType)]; ok {
			p.writeDetailedChanges(&summary, objType, planJSON.ObjectChanges, c)
		}
	}

	summary.WriteString(c.Bold("DDL to be executed:") + "\n")
	summary.WriteString(strings.Repeat("-", 50) + "\n\n")
	summary.WriteString(FormatScript(p.Steps))

	return summary.String()
}

// ToJSON returns the plan as structured JSON
func (p *Plan) ToJSON() (string, error) {
	data, err := json.MarshalIndent(p.convertToStructuredJSON(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal plan to JSON: %w", err)
	}
	return string(data), nil
}

// ToSQL returns the migration as a script runnable with the mysql client
func (p *Plan) ToSQL() string {
	if !p.HasChanges() {
		return ""
	}
	return FormatScript(p.Steps)
}

// ========== PRIVATE METHODS ==========

// writeDetailedChanges writes the changes of one type; tables list their elements beneath them
func (p *Plan) writeDetailedChanges(summary *strings.Builder, objType ObjectType, changes []ObjectChange, c *color.Color) {
	name := string(objType)
	fmt.Fprintf(summary, "%s:\n", c.Bold(strings.ToUpper(name[:1])+name[1:]))

	for _, change := range changes {
		if change.Type != string(objType) {
			continue
		}
		fmt.Fprintf(summary, "  %s %s\n", c.PlanSymbol(change.Change.Actions[0]), change.Name)
		if objType != ObjectTypeTable {
			continue
		}
		for _, element := range changes {
			if element.Table != change.Name || !isTableElement(element.Type) {
				continue
			}
			fmt.Fprintf(summary, "      %s %s %s\n", c.PlanSymbol(element.Change.Actions[0]), elementLabel(ObjectType(element.Type)), element.Name)
		}
	}
	summary.WriteString("\n")
}

// convertToStructuredJSON flattens the diff into object changes in execution order
func (p *Plan) convertToStructuredJSON() *PlanJSON {
	planJSON := &PlanJSON{
		Version:            version.PlanFormat(),
		MysqlschemaVersion: version.App(),
		CreatedAt:          p.CreatedAt.Truncate(time.Second),
		Database:           p.Database,
		SourceFingerprint:  p.SourceFingerprint,
		Summary: PlanSummary{
			ByType: make(map[string]TypeSummary),
		},
		ObjectChanges: []ObjectChange{},
		Steps:         p.Steps,
	}
	if planJSON.Steps == nil {
		planJSON.Steps = []diff.PlanStep{}
	}
	if p.Diff == nil {
		return planJSON
	}

	for _, name := range p.Diff.DroppedTables {
		planJSON.ObjectChanges = append(planJSON.ObjectChanges, ObjectChange{
			Address: "table." + name,
			Type:    string(ObjectTypeTable),
			Name:    name,
			Change:  Change{Actions: []string{"delete"}},
		})
	}
	for _, ct := range p.Diff.CreatedTables {
		planJSON.ObjectChanges = append(planJSON.ObjectChanges, ObjectChange{
			Address: "table." + ct.Name,
			Type:    string(ObjectTypeTable),
			Name:    ct.Name,
			Change:  Change{Actions: []string{"create"}, After: ct.Definition},
		})
	}
	for _, td := range p.Diff.Tables {
		p.addTableChanges(planJSON, td)
	}
	for _, od := range p.Diff.Objects {
		typeName := strings.ToLower(string(od.Type())) + "s"
		planJSON.ObjectChanges = append(planJSON.ObjectChanges, ObjectChange{
			Address: strings.ToLower(string(od.Type())) + "." + od.Name(),
			Type:    typeName,
			Name:    od.Name(),
			Change:  Change{Actions: []string{objectAction(od.Operation())}, After: od.Definition()},
		})
	}

	p.calculateSummary(planJSON)
	return planJSON
}

// addTableChanges records the table as updated, followed by one change per operation
func (p *Plan) addTableChanges(planJSON *PlanJSON, td *diff.TableDiff) {
	if !td.HasChanges() {
		return
	}
	planJSON.ObjectChanges = append(planJSON.ObjectChanges, ObjectChange{
		Address: "table." + td.TableName,
		Type:    string(ObjectTypeTable),
		Name:    td.TableName,
		Change:  Change{Actions: []string{"update"}},
	})

	for _, op := range td.Operations {
		var objType ObjectType
		switch op.Target() {
		case diff.TargetColumn:
			objType = ObjectTypeColumn
		case diff.TargetIndex:
			objType = ObjectTypeIndex
		default:
			objType = ObjectTypeForeignKey
		}
		planJSON.ObjectChanges = append(planJSON.ObjectChanges, ObjectChange{
			Address: fmt.Sprintf("table.%s.%s.%s", td.TableName, strings.ToLower(string(op.Target())), op.Name()),
			Type:    string(objType),
			Name:    op.Name(),
			Table:   td.TableName,
			Change:  Change{Actions: []string{operationAction(op.Type())}, After: op.Definition()},
		})
	}
}

func elementLabel(t ObjectType) string {
	switch t {
	case ObjectTypeColumn:
		return "column"
	case ObjectTypeIndex:
		return "index"
	default:
		return "foreign key"
	}
}

func objectAction(op diff.ObjectOperation) string {
	switch op {
	case diff.ObjectCreate:
		return "create"
	case diff.ObjectDrop:
		return "delete"
	default:
		return "update"
	}
}

func operationAction(t diff.OperationType) string {
	switch t {
	case diff.OperationAdd:
		return "create"
	case diff.OperationDrop:
		return "delete"
	default:
		return "update"
	}
}

// calculateSummary counts top-level changes. Columns, indexes and foreign keys are
// part of their table's change and are not counted separately.
func (p *Plan) calculateSummary(planJSON *PlanJSON) {
	typeStats := make(map[string]TypeSummary)

	for _, change := range planJSON.ObjectChanges {
		if isTableElement(change.Type) {
			continue
		}
		stats := typeStats[change.Type]
		switch change.Change.Actions[0] {
		case "create":
			stats.Add++
			planJSON.Summary.Add++
		case "update":
			stats.Change++
			planJSON.Summary.Change++
		case "delete":
			stats.Destroy++
			planJSON.Summary.Destroy++
		}
		typeStats[change.Type] = stats
	}

	planJSON.Summary.ByType = typeStats
	planJSON.Summary.Total = planJSON.Summary.Add + planJSON.Summary.Change + planJSON.Summary.Destroy
}
