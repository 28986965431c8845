package apply

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mysqlschema/mysqlschema/internal/fingerprint"
	"github.com/mysqlschema/mysqlschema/internal/ir"
	"github.com/mysqlschema/mysqlschema/internal/mysql"
	"github.com/mysqlschema/mysqlschema/testutil"
)

const initialSchema = "CREATE TABLE `users` (\n" +
	"  `id` int NOT NULL AUTO_INCREMENT,\n" +
	"  `name` varchar(100) NOT NULL,\n" +
	"  PRIMARY KEY (`id`)\n" +
	") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;\n" +
	"CREATE TABLE `legacy` (\n" +
	"  `id` int NOT NULL,\n" +
	"  PRIMARY KEY (`id`)\n" +
	") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;\n"

const desiredSchema = "CREATE TABLE `users` (\n" +
	"  `id` int NOT NULL AUTO_INCREMENT,\n" +
	"  `name` varchar(100) NOT NULL,\n" +
	"  `email` varchar(255) DEFAULT NULL,\n" +
	"  PRIMARY KEY (`id`),\n" +
	"  KEY `idx_email` (`email`)\n" +
	") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;\n" +
	"CREATE TABLE `orders` (\n" +
	"  `id` int NOT NULL AUTO_INCREMENT,\n" +
	"  `user_id` int NOT NULL,\n" +
	"  PRIMARY KEY (`id`),\n" +
	"  KEY `fk_orders_user` (`user_id`),\n" +
	"  CONSTRAINT `fk_orders_user` FOREIGN KEY (`user_id`) REFERENCES `users` (`id`)\n" +
	") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;\n" +
	"DELIMITER ;;\n" +
	"CREATE PROCEDURE `purge_orders`(IN uid INT)\n" +
	"BEGIN\n" +
	"  DELETE FROM `orders` WHERE `user_id` = uid;\n" +
	"END;;\n" +
	"DELIMITER ;\n"

func setupDatabase(t *testing.T) (*mysql.Driver, context.Context) {
	t.Helper()
	ctx := context.Background()
	container := testutil.SetupMySQLContainer(ctx, t)
	t.Cleanup(func() { container.Terminate(ctx, t) })

	cfg, err := mysql.ConfigFromDSN(container.DSN)
	if err != nil {
		t.Fatalf("ConfigFromDSN() error = %v", err)
	}
	driver, err := mysql.Connect(ctx, cfg)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { driver.Close() })

	if err := driver.Exec(ctx, ir.SplitStatements(initialSchema)); err != nil {
		t.Fatalf("Failed to setup initial schema: %v", err)
	}
	return driver, ctx
}

func writeDesiredState(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "desired_state.sql")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write desired state file: %v", err)
	}
	return path
}

func TestApplyCommand_Integration(t *testing.T) {
	driver, ctx := setupDatabase(t)
	file := writeDesiredState(t, desiredSchema)

	t.Run("dry run leaves the database untouched", func(t *testing.T) {
		var out bytes.Buffer
		err := ApplyMigration(ctx, driver, &ApplyConfig{File: file, DryRun: true, NoColor: true}, strings.NewReader(""), &out)
		if err != nil {
			t.Fatalf("ApplyMigration() error = %v", err)
		}
		if !strings.Contains(out.String(), "Plan: 2 to add, 1 to modify, 1 to drop.") {
			t.Errorf("unexpected plan:\n%s", out.String())
		}
		tables, err := driver.ListTables(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if strings.Join(tables, ",") != "legacy,users" {
			t.Errorf("dry run changed the database: %v", tables)
		}
	})

	t.Run("declined prompt", func(t *testing.T) {
		var out bytes.Buffer
		err := ApplyMigration(ctx, driver, &ApplyConfig{File: file, NoColor: true}, strings.NewReader("no\n"), &out)
		if err != nil {
			t.Fatalf("ApplyMigration() error = %v", err)
		}
		if !strings.Contains(out.String(), "Apply cancelled.") {
			t.Errorf("expected cancellation:\n%s", out.String())
		}
	})

	t.Run("apply", func(t *testing.T) {
		var out bytes.Buffer
		err := ApplyMigration(ctx, driver, &ApplyConfig{File: file, NoColor: true}, strings.NewReader("yes\n"), &out)
		if err != nil {
			t.Fatalf("ApplyMigration() error = %v\n%s", err, out.String())
		}
		if !strings.Contains(out.String(), "Changes applied successfully!") {
			t.Errorf("expected success message:\n%s", out.String())
		}

		tables, err := driver.ListTables(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if strings.Join(tables, ",") != "orders,users" {
			t.Errorf("ListTables() = %v", tables)
		}
		procs, err := driver.ListObjects(ctx, ir.ObjectTypeProcedure)
		if err != nil {
			t.Fatal(err)
		}
		if strings.Join(procs, ",") != "purge_orders" {
			t.Errorf("ListObjects(PROCEDURE) = %v", procs)
		}
	})

	t.Run("second apply is a no-op", func(t *testing.T) {
		var out bytes.Buffer
		err := ApplyMigration(ctx, driver, &ApplyConfig{File: file, AutoApprove: true, NoColor: true}, strings.NewReader(""), &out)
		if err != nil {
			t.Fatalf("ApplyMigration() error = %v", err)
		}
		if !strings.Contains(out.String(), "No changes to apply. Database schema is already up to date.") {
			t.Errorf("expected no changes:\n%s", out.String())
		}
	})
}

// driftReader alters the schema while the user is being prompted
type driftReader struct {
	ctx    context.Context
	driver *mysql.Driver
	done   bool
}

func (r *driftReader) Read(p []byte) (int, error) {
	if !r.done {
		r.done = true
		if err := r.driver.Exec(r.ctx, []string{"ALTER TABLE `users` ADD COLUMN `drift` int DEFAULT NULL"}); err != nil {
			return 0, err
		}
	}
	return copy(p, "yes\n"), nil
}

func TestApplyCommand_FingerprintMismatch(t *testing.T) {
	driver, ctx := setupDatabase(t)
	file := writeDesiredState(t, desiredSchema)

	var out bytes.Buffer
	err := ApplyMigration(ctx, driver, &ApplyConfig{File: file, NoColor: true}, &driftReader{ctx: ctx, driver: driver}, &out)
	if !errors.Is(err, fingerprint.ErrFingerprintMismatch) {
		t.Fatalf("expected fingerprint mismatch, got %v", err)
	}

	// Nothing from the plan was executed
	tables, err := driver.ListTables(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(tables, ",") != "legacy,users" {
		t.Errorf("stale plan was applied: %v", tables)
	}
}

func TestApplyCommand_DisableFKChecks(t *testing.T) {
	driver, ctx := setupDatabase(t)

	// legacy holds a row that violates the foreign key added below
	err := driver.Exec(ctx, []string{
		"ALTER TABLE `legacy` ADD COLUMN `user_id` int DEFAULT NULL",
		"INSERT INTO `legacy` (`id`, `user_id`) VALUES (1, 99)",
	})
	if err != nil {
		t.Fatal(err)
	}
	desired := "CREATE TABLE `users` (\n" +
		"  `id` int NOT NULL AUTO_INCREMENT,\n" +
		"  `name` varchar(100) NOT NULL,\n" +
		"  PRIMARY KEY (`id`)\n" +
		") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;\n" +
		"CREATE TABLE `legacy` (\n" +
		"  `id` int NOT NULL,\n" +
		"  `user_id` int DEFAULT NULL,\n" +
		"  PRIMARY KEY (`id`),\n" +
		"  KEY `fk_legacy_user` (`user_id`),\n" +
		"  CONSTRAINT `fk_legacy_user` FOREIGN KEY (`user_id`) REFERENCES `users` (`id`)\n" +
		") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;\n"
	file := writeDesiredState(t, desired)

	var out bytes.Buffer
	err = ApplyMigration(ctx, driver, &ApplyConfig{File: file, AutoApprove: true, NoColor: true, DisableFKChecks: true}, strings.NewReader(""), &out)
	if err != nil {
		t.Fatalf("ApplyMigration() error = %v\n%s", err, out.String())
	}

	// Checks are back on for the session that ran the migration
	err = driver.Exec(ctx, []string{"INSERT INTO `legacy` (`id`, `user_id`) VALUES (2, 98)"})
	if err == nil {
		t.Error("expected the foreign key to reject an orphan row after apply")
	}
}
