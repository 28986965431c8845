package util

import (
	"context"
	"fmt"
	"time"

	"github.com/mysqlschema/mysqlschema/internal/ir"
	"github.com/mysqlschema/mysqlschema/internal/logger"
	"github.com/mysqlschema/mysqlschema/internal/mysql"
	"github.com/spf13/cobra"
)

// ConnectionFlags holds the database and SSH tunnel flags shared by dump, plan and apply
type ConnectionFlags struct {
	Host           string
	Port           int
	DB             string
	User           string
	Password       string
	ConnectTimeout time.Duration

	SSHHost          string
	SSHPort          int
	SSHUser          string
	SSHPassword      string
	SSHKey           string
	SSHKeyPassphrase string
	SSHKnownHosts    string
}

// DefaultConnectionFlags returns the flag defaults
func DefaultConnectionFlags() ConnectionFlags {
	return ConnectionFlags{
		Host:           "localhost",
		Port:           3306,
		ConnectTimeout: 10 * time.Second,
		SSHPort:        22,
	}
}

// AddConnectionFlags registers the connection flags on cmd, bound to f
func AddConnectionFlags(cmd *cobra.Command, f *ConnectionFlags) {
	d := DefaultConnectionFlags()
	cmd.Flags().StringVar(&f.Host, "host", d.Host, fmt.Sprintf("Database server host (env: %s)", EnvHost))
	cmd.Flags().IntVar(&f.Port, "port", d.Port, fmt.Sprintf("Database server port (env: %s)", EnvPort))
	cmd.Flags().StringVar(&f.DB, "db", "", fmt.Sprintf("Database name (required) (env: %s)", EnvDatabase))
	cmd.Flags().StringVar(&f.User, "user", "", fmt.Sprintf("Database user name (required) (env: %s)", EnvUser))
	cmd.Flags().StringVar(&f.Password, "password", "", fmt.Sprintf("Database password (optional, can also use %s env var)", EnvPassword))
	cmd.Flags().DurationVar(&f.ConnectTimeout, "connect-timeout", d.ConnectTimeout, "Timeout for establishing the connection")

	cmd.Flags().StringVar(&f.SSHHost, "ssh-host", "", fmt.Sprintf("Tunnel the connection through this SSH host (env: %s)", EnvSSHHost))
	cmd.Flags().IntVar(&f.SSHPort, "ssh-port", d.SSHPort, fmt.Sprintf("SSH port (env: %s)", EnvSSHPort))
	cmd.Flags().StringVar(&f.SSHUser, "ssh-user", "", fmt.Sprintf("SSH user name (env: %s)", EnvSSHUser))
	cmd.Flags().StringVar(&f.SSHPassword, "ssh-password", "", fmt.Sprintf("SSH password (env: %s)", EnvSSHPassword))
	cmd.Flags().StringVar(&f.SSHKey, "ssh-key", "", fmt.Sprintf("Path to the SSH private key (env: %s)", EnvSSHKey))
	cmd.Flags().StringVar(&f.SSHKnownHosts, "ssh-known-hosts", "", fmt.Sprintf("known_hosts file used to verify the SSH host, default ~/.ssh/known_hosts (env: %s)", EnvSSHKnownHosts))
}

// Config converts the flags into a driver configuration
func (f *ConnectionFlags) Config() *mysql.Config {
	cfg := &mysql.Config{
		Host:           f.Host,
		Port:           f.Port,
		Database:       f.DB,
		User:           f.User,
		Password:       f.Password,
		ConnectTimeout: f.ConnectTimeout,
	}
	if f.SSHHost != "" {
		cfg.SSH = &mysql.SSHConfig{
			Host:           f.SSHHost,
			Port:           f.SSHPort,
			User:           f.SSHUser,
			Password:       f.SSHPassword,
			KeyFile:        f.SSHKey,
			KeyPassphrase:  f.SSHKeyPassphrase,
			KnownHostsFile: f.SSHKnownHosts,
		}
	}
	return cfg
}

// Connect opens a driver for the configured database
func Connect(ctx context.Context, f *ConnectionFlags) (*mysql.Driver, error) {
	driver, err := mysql.Connect(ctx, f.Config())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return driver, nil
}

// GetSchemaFromDatabase introspects the database and drops every ignored table and object
func GetSchemaFromDatabase(ctx context.Context, driver *mysql.Driver, ignoreConfig *ir.IgnoreConfig) (*ir.Schema, error) {
	schema, err := driver.Introspect(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to introspect database: %w", err)
	}
	filtered := ignoreConfig.Filter(schema)
	logger.Get().Debug("Introspected current schema",
		"database", driver.Database(),
		"tables", len(filtered.Tables),
		"objects", len(filtered.Objects),
		"ignored", len(schema.Tables)+len(schema.Objects)-len(filtered.Tables)-len(filtered.Objects),
	)
	return filtered, nil
}
