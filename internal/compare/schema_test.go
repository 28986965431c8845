package compare

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/mysqlschema/mysqlschema/internal/diff"
	"github.com/mysqlschema/mysqlschema/internal/ir"
)

const schemaCurrent = "CREATE TABLE `users` (\n" +
	"  `id` int NOT NULL,\n" +
	"  PRIMARY KEY (`id`)\n" +
	");\n" +
	"CREATE TABLE `old_table` (`id` int);\n" +
	"CREATE DEFINER=`root`@`localhost` VIEW `vw_1` AS SELECT 1;\n" +
	"CREATE DEFINER=`root`@`localhost` PROCEDURE `proc_keep`()\n" +
	"BEGIN\n" +
	"  SELECT 1;\n" +
	"END;\n" +
	"CREATE TRIGGER `trg_1` BEFORE INSERT ON `users` FOR EACH ROW SET NEW.id = NEW.id + 1;\n"

const schemaDesired = "CREATE TABLE `audit` (\n" +
	"  `id` int NOT NULL,\n" +
	"  `account_id` int NOT NULL,\n" +
	"  CONSTRAINT `fk_audit_account` FOREIGN KEY (`account_id`) REFERENCES `accounts` (`id`)\n" +
	");\n" +
	"CREATE TABLE `accounts` (`id` int NOT NULL, PRIMARY KEY (`id`));\n" +
	"CREATE TABLE `users` (\n" +
	"  `id` int NOT NULL,\n" +
	"  `age` int DEFAULT NULL,\n" +
	"  PRIMARY KEY (`id`)\n" +
	");\n" +
	"CREATE PROCEDURE `proc_keep`()\n" +
	"BEGIN\n" +
	"    SELECT   1;\n" +
	"END;\n" +
	"CREATE TRIGGER `trg_1` BEFORE INSERT ON `users` FOR EACH ROW SET NEW.id = NEW.id + 2;\n" +
	"CREATE VIEW `vw_2` AS SELECT 2;\n"

type objectSummary struct {
	Type      diff.ObjectType
	Name      string
	Operation diff.ObjectOperation
}

func summarizeObjects(objects []diff.ObjectDiff) []objectSummary {
	result := []objectSummary{}
	for _, od := range objects {
		result = append(result, objectSummary{od.Type(), od.Name(), od.Operation()})
	}
	return result
}

func TestCompareSchemas(t *testing.T) {
	sd, err := New(DefaultOptions()).CompareSchemas(schemaDesired, schemaCurrent)
	if err != nil {
		t.Fatalf("CompareSchemas() error = %v", err)
	}

	if diff := cmp.Diff([]string{"old_table"}, sd.DroppedTables); diff != "" {
		t.Errorf("dropped tables mismatch (-want +got):\n%s", diff)
	}

	var created []string
	for _, ct := range sd.CreatedTables {
		created = append(created, ct.Name)
	}
	if diff := cmp.Diff([]string{"accounts", "audit"}, created); diff != "" {
		t.Errorf("created tables should be ordered by dependency (-want +got):\n%s", diff)
	}

	if len(sd.Tables) != 1 || sd.Tables[0].TableName != "users" {
		t.Fatalf("expected only users to change, got %+v", sd.Tables)
	}
	wantOps := []opSummary{{diff.OperationAdd, diff.TargetColumn, "age", "int DEFAULT NULL"}}
	if diff := cmp.Diff(wantOps, summarize(sd.Tables[0].Operations)); diff != "" {
		t.Errorf("users operations mismatch (-want +got):\n%s", diff)
	}

	wantObjects := []objectSummary{
		{diff.ObjectTrigger, "trg_1", diff.ObjectReplace},
		{diff.ObjectView, "vw_2", diff.ObjectCreate},
		{diff.ObjectView, "vw_1", diff.ObjectDrop},
	}
	if diff := cmp.Diff(wantObjects, summarizeObjects(sd.Objects)); diff != "" {
		t.Errorf("objects mismatch (-want +got):\n%s", diff)
	}

	wantSummary := diff.Summary{TotalChanges: 7, TablesChanged: 4, ObjectsChanged: 3}
	if diff := cmp.Diff(wantSummary, sd.Summary); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
}

func TestCompareSchemas_Reflexive(t *testing.T) {
	for _, ddl := range []string{schemaCurrent, schemaDesired} {
		sd, err := New(DefaultOptions()).CompareSchemas(ddl, ddl)
		if err != nil {
			t.Fatalf("CompareSchemas() error = %v", err)
		}
		if sd.HasChanges() {
			t.Errorf("comparing a schema with itself reported %+v", sd.Summary)
		}
	}
}

func TestCompareSchemas_Ignore(t *testing.T) {
	opts := DefaultOptions()
	opts.Ignore = &ir.IgnoreConfig{
		Tables:   []string{"old_*"},
		Views:    []string{"vw_*", "!vw_2"},
		Triggers: []string{"trg_1"},
	}

	sd, err := New(opts).CompareSchemas(schemaDesired, schemaCurrent)
	if err != nil {
		t.Fatalf("CompareSchemas() error = %v", err)
	}
	if len(sd.DroppedTables) != 0 {
		t.Errorf("ignored table was dropped: %v", sd.DroppedTables)
	}
	wantObjects := []objectSummary{{diff.ObjectView, "vw_2", diff.ObjectCreate}}
	if diff := cmp.Diff(wantObjects, summarizeObjects(sd.Objects)); diff != "" {
		t.Errorf("objects mismatch (-want +got):\n%s", diff)
	}
}

func TestSameObject(t *testing.T) {
	proc := func(def string) *ir.ObjectDefinition {
		return &ir.ObjectDefinition{Type: ir.ObjectTypeProcedure, Name: "p", Definition: def}
	}

	tests := []struct {
		name             string
		ignoreWhitespace bool
		a, b             *ir.ObjectDefinition
		want             bool
	}{
		{
			name:             "definer is ignored",
			ignoreWhitespace: true,
			a:                proc("CREATE DEFINER=`root`@`%` PROCEDURE `p`() BEGIN SELECT 1; END"),
			b:                proc("CREATE PROCEDURE `p`() BEGIN SELECT 1; END"),
			want:             true,
		},
		{
			name:             "body whitespace ignored by default",
			ignoreWhitespace: true,
			a:                proc("CREATE PROCEDURE `p`()\nBEGIN\n  SELECT 1;\nEND"),
			b:                proc("CREATE PROCEDURE `p`() BEGIN SELECT 1; END"),
			want:             true,
		},
		{
			name:             "body whitespace significant when configured",
			ignoreWhitespace: false,
			a:                proc("CREATE PROCEDURE `p`()\nBEGIN\n  SELECT 1;\nEND"),
			b:                proc("CREATE PROCEDURE `p`() BEGIN SELECT 1; END"),
			want:             false,
		},
		{
			name:             "header whitespace never matters",
			ignoreWhitespace: false,
			a:                proc("CREATE   PROCEDURE `p`(IN x int)\nBEGIN SELECT x; END"),
			b:                proc("CREATE PROCEDURE `p`(IN x int) BEGIN SELECT x; END"),
			want:             true,
		},
		{
			name:             "parameter change",
			ignoreWhitespace: true,
			a:                proc("CREATE PROCEDURE `p`(IN x int) BEGIN SELECT 1; END"),
			b:                proc("CREATE PROCEDURE `p`(IN x bigint) BEGIN SELECT 1; END"),
			want:             false,
		},
		{
			name:             "view text change",
			ignoreWhitespace: true,
			a:                &ir.ObjectDefinition{Type: ir.ObjectTypeView, Name: "v", Definition: "CREATE VIEW `v` AS SELECT 1"},
			b:                &ir.ObjectDefinition{Type: ir.ObjectTypeView, Name: "v", Definition: "CREATE VIEW `v` AS SELECT 2"},
			want:             false,
		},
		{
			name:             "view version comments are unwrapped",
			ignoreWhitespace: true,
			a:                &ir.ObjectDefinition{Type: ir.ObjectTypeView, Name: "v", Definition: "/*!50001 CREATE VIEW `v` AS SELECT 1 */"},
			b:                &ir.ObjectDefinition{Type: ir.ObjectTypeView, Name: "v", Definition: "CREATE VIEW `v` AS SELECT 1;"},
			want:             true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.IgnoreWhitespace = tt.ignoreWhitespace
			if got := New(opts).SameObject(tt.a, tt.b); got != tt.want {
				t.Errorf("SameObject() = %v, want %v", got, tt.want)
			}
		})
	}
}
