package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mysqlschema/mysqlschema/internal/ir"
	"github.com/mysqlschema/mysqlschema/internal/logger"
)

// listQueries return object names of one type in dump order
var listQueries = map[ir.ObjectType]string{
	ir.ObjectTypeView: `SELECT TABLE_NAME FROM information_schema.VIEWS
		WHERE TABLE_SCHEMA = ? ORDER BY TABLE_NAME`,
	ir.ObjectTypeProcedure: `SELECT ROUTINE_NAME FROM information_schema.ROUTINES
		WHERE ROUTINE_SCHEMA = ? AND ROUTINE_TYPE = 'PROCEDURE' ORDER BY ROUTINE_NAME`,
	ir.ObjectTypeFunction: `SELECT ROUTINE_NAME FROM information_schema.ROUTINES
		WHERE ROUTINE_SCHEMA = ? AND ROUTINE_TYPE = 'FUNCTION' ORDER BY ROUTINE_NAME`,
	ir.ObjectTypeTrigger: `SELECT TRIGGER_NAME FROM information_schema.TRIGGERS
		WHERE TRIGGER_SCHEMA = ? ORDER BY EVENT_OBJECT_TABLE, ACTION_ORDER, TRIGGER_NAME`,
	ir.ObjectTypeEvent: `SELECT EVENT_NAME FROM information_schema.EVENTS
		WHERE EVENT_SCHEMA = ? ORDER BY EVENT_NAME`,
}

// showCreate maps an object type to its SHOW CREATE statement and the result column holding the DDL
var showCreate = map[ir.ObjectType]struct{ stmt, column string }{
	ir.ObjectTypeView:      {"SHOW CREATE VIEW", "Create View"},
	ir.ObjectTypeProcedure: {"SHOW CREATE PROCEDURE", "Create Procedure"},
	ir.ObjectTypeFunction:  {"SHOW CREATE FUNCTION", "Create Function"},
	ir.ObjectTypeTrigger:   {"SHOW CREATE TRIGGER", "SQL Original Statement"},
	ir.ObjectTypeEvent:     {"SHOW CREATE EVENT", "Create Event"},
}

type objectRef struct {
	objType ir.ObjectType
	name    string
}

// ListTables returns the base tables of the database, sorted by name
func (d *Driver) ListTables(ctx context.Context) ([]string, error) {
	return d.queryNames(ctx, `SELECT TABLE_NAME FROM information_schema.TABLES
		WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE' ORDER BY TABLE_NAME`)
}

// ListObjects returns the names of every object of one type
func (d *Driver) ListObjects(ctx context.Context, objType ir.ObjectType) ([]string, error) {
	query, ok := listQueries[objType]
	if !ok {
		return nil, fmt.Errorf("unsupported object type %q", objType)
	}
	return d.queryNames(ctx, query)
}

func (d *Driver) queryNames(ctx context.Context, query string) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, query, d.database)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// GetTableDDL returns SHOW CREATE TABLE output with the AUTO_INCREMENT counter removed
func (d *Driver) GetTableDDL(ctx context.Context, name string) (string, error) {
	ddl, err := d.showCreate(ctx, "SHOW CREATE TABLE "+ir.QuoteIdentifier(name), "Create Table")
	if err != nil {
		return "", fmt.Errorf("failed to get DDL for table %s: %w", name, err)
	}
	return ir.StripAutoIncrement(ddl), nil
}

// GetObjectDDL returns the CREATE statement of a table, view, routine, trigger or event with
// its DEFINER removed. An unknown type yields an empty string. Routines the user lacks
// privileges to read also yield an empty string.
func (d *Driver) GetObjectDDL(ctx context.Context, objType, name string) (string, error) {
	if strings.EqualFold(strings.TrimSpace(objType), "TABLE") {
		return d.GetTableDDL(ctx, name)
	}
	t, ok := ir.ParseObjectType(objType)
	if !ok {
		return "", nil
	}
	sc := showCreate[t]
	ddl, err := d.showCreate(ctx, sc.stmt+" "+ir.QuoteIdentifier(name), sc.column)
	if err != nil {
		return "", fmt.Errorf("failed to get DDL for %s %s: %w", strings.ToLower(string(t)), name, err)
	}
	return ir.CleanDefiner(ddl), nil
}

// showCreate runs a SHOW CREATE statement and returns one named column of its single row.
// The column sets differ between object types and server versions, so columns are
// located by name.
func (d *Driver) showCreate(ctx context.Context, query, column string) (string, error) {
	rows, err := d.db.QueryContext(ctx, query)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return "", err
	}
	idx := slices.Index(cols, column)
	if idx < 0 {
		return "", fmt.Errorf("column %q not in result %v", column, cols)
	}

	if !rows.Next() {
		return "", rows.Err()
	}
	values := make([]sql.NullString, len(cols))
	dest := make([]any, len(cols))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := rows.Scan(dest...); err != nil {
		return "", err
	}
	return values[idx].String, rows.Err()
}

// Introspect reads every table and object of the database into a schema. DDL is
// fetched concurrently; the result keeps the order of ListTables and ListObjects.
func (d *Driver) Introspect(ctx context.Context) (*ir.Schema, error) {
	log := logger.Get()

	tables, err := d.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	var refs []objectRef
	for _, objType := range ir.ObjectTypes() {
		names, err := d.ListObjects(ctx, objType)
		if err != nil {
			return nil, fmt.Errorf("failed to list %ss: %w", strings.ToLower(string(objType)), err)
		}
		for _, name := range names {
			refs = append(refs, objectRef{objType: objType, name: name})
		}
	}
	log.Debug("Introspecting schema", "database", d.database, "tables", len(tables), "objects", len(refs))

	tableDDL := make([]string, len(tables))
	objectDDL := make([]string, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)
	for i, name := range tables {
		i, name := i, name
		g.Go(func() error {
			ddl, err := d.GetTableDDL(gctx, name)
			if err != nil {
				return err
			}
			tableDDL[i] = ddl
			return nil
		})
	}
	for i, ref := range refs {
		i, ref := i, ref
		g.Go(func() error {
			ddl, err := d.GetObjectDDL(gctx, string(ref.objType), ref.name)
			if err != nil {
				return err
			}
			objectDDL[i] = ddl
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	schema := ir.NewSchema()
	for i, ddl := range tableDDL {
		table := ir.ParseTable(ddl)
		if table == nil {
			return nil, fmt.Errorf("failed to parse DDL of table %s", tables[i])
		}
		if err := schema.AddTable(table); err != nil {
			return nil, err
		}
	}
	for i, ref := range refs {
		if objectDDL[i] == "" {
			log.Debug("Skipping object without readable definition", "type", ref.objType, "name", ref.name)
			continue
		}
		obj := &ir.ObjectDefinition{Type: ref.objType, Name: ref.name, Definition: objectDDL[i]}
		if err := schema.AddObject(obj); err != nil {
			return nil, err
		}
	}
	return schema, nil
}

// Checksums returns CHECKSUM TABLE results keyed by table name. Tables whose
// checksum is unavailable map to an empty string.
func (d *Driver) Checksums(ctx context.Context) (map[string]string, error) {
	tables, err := d.ListTables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	checksums := make(map[string]string, len(tables))
	if len(tables) == 0 {
		return checksums, nil
	}

	quoted := make([]string, len(tables))
	for i, t := range tables {
		quoted[i] = ir.QuoteIdentifier(t)
	}
	rows, err := d.db.QueryContext(ctx, "CHECKSUM TABLE "+strings.Join(quoted, ", "))
	if err != nil {
		return nil, fmt.Errorf("failed to checksum tables: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var table string
		var checksum sql.NullString
		if err := rows.Scan(&table, &checksum); err != nil {
			return nil, err
		}
		checksums[strings.TrimPrefix(table, d.database+".")] = checksum.String
	}
	return checksums, rows.Err()
}
