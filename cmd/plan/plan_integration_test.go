package plan

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mysqlschema/mysqlschema/internal/ir"
	"github.com/mysqlschema/mysqlschema/internal/mysql"
	"github.com/mysqlschema/mysqlschema/internal/plan"
	"github.com/mysqlschema/mysqlschema/testutil"
)

func TestPlanCommand_DatabaseIntegration(t *testing.T) {
	ctx := context.Background()
	container := testutil.SetupMySQLContainer(ctx, t)
	defer container.Terminate(ctx, t)

	initialSQL := "CREATE TABLE `users` (\n" +
		"  `id` int NOT NULL AUTO_INCREMENT,\n" +
		"  `name` varchar(255) NOT NULL,\n" +
		"  PRIMARY KEY (`id`)\n" +
		") ENGINE=InnoDB;\n" +
		"CREATE TABLE `posts` (\n" +
		"  `id` int NOT NULL AUTO_INCREMENT,\n" +
		"  `user_id` int NOT NULL,\n" +
		"  `title` varchar(255) NOT NULL,\n" +
		"  PRIMARY KEY (`id`)\n" +
		") ENGINE=InnoDB;\n"
	for _, stmt := range ir.SplitStatements(initialSQL) {
		if _, err := container.Conn.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("Failed to setup initial schema: %v", err)
		}
	}

	// Desired state adds a column, an index and a table
	desiredStateSQL := "CREATE TABLE `users` (\n" +
		"  `id` int NOT NULL AUTO_INCREMENT,\n" +
		"  `name` varchar(255) NOT NULL,\n" +
		"  `email` varchar(255) DEFAULT NULL,\n" +
		"  PRIMARY KEY (`id`)\n" +
		") ENGINE=InnoDB;\n" +
		"CREATE TABLE `posts` (\n" +
		"  `id` int NOT NULL AUTO_INCREMENT,\n" +
		"  `user_id` int NOT NULL,\n" +
		"  `title` varchar(255) NOT NULL,\n" +
		"  PRIMARY KEY (`id`),\n" +
		"  KEY `idx_user` (`user_id`)\n" +
		") ENGINE=InnoDB;\n" +
		"CREATE TABLE `comments` (\n" +
		"  `id` int NOT NULL AUTO_INCREMENT,\n" +
		"  `post_id` int NOT NULL,\n" +
		"  PRIMARY KEY (`id`)\n" +
		") ENGINE=InnoDB;\n"
	desiredStateFile := filepath.Join(t.TempDir(), "desired_state.sql")
	if err := os.WriteFile(desiredStateFile, []byte(desiredStateSQL), 0644); err != nil {
		t.Fatalf("Failed to write desired state file: %v", err)
	}

	t.Run("command with environment connection", func(t *testing.T) {
		container.SetEnv(t)
		ResetFlags()
		defer ResetFlags()

		var buf bytes.Buffer
		PlanCmd.SetOut(&buf)
		PlanCmd.SetArgs([]string{"--file", desiredStateFile, "--output-sql", "stdout"})
		defer PlanCmd.SetOut(nil)
		defer PlanCmd.SetArgs(nil)

		if err := PlanCmd.Execute(); err != nil {
			t.Fatalf("plan command failed: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"ALTER TABLE `users` ADD COLUMN `email` varchar(255) DEFAULT NULL;",
			"ALTER TABLE `posts` ADD KEY `idx_user` (`user_id`);",
			"CREATE TABLE `comments`",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("plan output missing %q:\n%s", want, output)
			}
		}
	})

	t.Run("generate plan", func(t *testing.T) {
		cfg, err := mysql.ConfigFromDSN(container.DSN)
		if err != nil {
			t.Fatal(err)
		}
		driver, err := mysql.Connect(ctx, cfg)
		if err != nil {
			t.Fatal(err)
		}
		defer driver.Close()

		migrationPlan, err := GeneratePlan(ctx, driver, desiredStateFile)
		if err != nil {
			t.Fatalf("GeneratePlan() error = %v", err)
		}
		if migrationPlan.SourceFingerprint == nil || migrationPlan.SourceFingerprint.Hash == "" {
			t.Error("plan should carry the fingerprint of the current schema")
		}
		if migrationPlan.Database != container.Database {
			t.Errorf("Database = %q, want %q", migrationPlan.Database, container.Database)
		}

		jsonOutput, err := migrationPlan.ToJSON()
		if err != nil {
			t.Fatal(err)
		}
		var decoded plan.PlanJSON
		if err := json.Unmarshal([]byte(jsonOutput), &decoded); err != nil {
			t.Fatalf("invalid plan JSON: %v", err)
		}
		want := plan.TypeSummary{Add: 1, Change: 2}
		if got := decoded.Summary.ByType["tables"]; got != want {
			t.Errorf("tables summary = %+v, want %+v", got, want)
		}
	})
}
