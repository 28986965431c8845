package mysql

import (
	"context"
	"fmt"

	"github.com/mysqlschema/mysqlschema/internal/dump"
)

// SessionContext holds the session settings that affect how DDL is interpreted
type SessionContext struct {
	SQLMode   string `json:"sql_mode"`
	TimeZone  string `json:"time_zone"`
	Charset   string `json:"charset"`
	Collation string `json:"collation"`
}

// SessionContext reads the settings of the session connection used by Exec
func (d *Driver) SessionContext(ctx context.Context) (*SessionContext, error) {
	conn, err := d.conn(ctx)
	if err != nil {
		return nil, err
	}
	var sc SessionContext
	err = conn.QueryRowContext(ctx, `SELECT @@SESSION.sql_mode, @@SESSION.time_zone,
		@@SESSION.character_set_connection, @@SESSION.collation_connection`).
		Scan(&sc.SQLMode, &sc.TimeZone, &sc.Charset, &sc.Collation)
	if err != nil {
		return nil, fmt.Errorf("failed to read session context: %w", err)
	}
	return &sc, nil
}

// SetForeignKeyChecks toggles foreign_key_checks for the session connection used by Exec
func (d *Driver) SetForeignKeyChecks(ctx context.Context, enabled bool) error {
	conn, err := d.conn(ctx)
	if err != nil {
		return err
	}
	value := 0
	if enabled {
		value = 1
	}
	stmt := fmt.Sprintf("SET SESSION foreign_key_checks = %d", value)
	if _, err := ExecContextWithLogging(ctx, conn, stmt, "set foreign key checks"); err != nil {
		return fmt.Errorf("failed to set foreign_key_checks: %w", err)
	}
	return nil
}

// Version returns the server version string, e.g. 8.0.36
func (d *Driver) Version(ctx context.Context) (string, error) {
	var version string
	if err := d.db.QueryRowContext(ctx, "SELECT VERSION()").Scan(&version); err != nil {
		return "", fmt.Errorf("failed to detect MySQL version: %w", err)
	}
	return version, nil
}

// DumpSchema introspects the database and formats it as a single replayable script
func (d *Driver) DumpSchema(ctx context.Context) (string, error) {
	version, err := d.Version(ctx)
	if err != nil {
		return "", err
	}
	schema, err := d.Introspect(ctx)
	if err != nil {
		return "", err
	}
	return dump.NewDumpFormatter(version, d.database).FormatSingleFile(schema), nil
}
