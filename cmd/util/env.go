package util

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

// Environment variables read by the mysql client, reused as flag fallbacks
const (
	EnvHost     = "MYSQL_HOST"
	EnvPort     = "MYSQL_TCP_PORT"
	EnvDatabase = "MYSQL_DATABASE"
	EnvUser     = "MYSQL_USER"
	EnvPassword = "MYSQL_PWD"
)

// Fallbacks for the SSH tunnel flags
const (
	EnvSSHHost          = "MYSQLSCHEMA_SSH_HOST"
	EnvSSHPort          = "MYSQLSCHEMA_SSH_PORT"
	EnvSSHUser          = "MYSQLSCHEMA_SSH_USER"
	EnvSSHPassword      = "MYSQLSCHEMA_SSH_PASSWORD"
	EnvSSHKey           = "MYSQLSCHEMA_SSH_KEY"
	EnvSSHKeyPassphrase = "MYSQLSCHEMA_SSH_KEY_PASSPHRASE"
	EnvSSHKnownHosts    = "MYSQLSCHEMA_SSH_KNOWN_HOSTS"
)

// GetEnvWithDefault returns the value of an environment variable or a default value if not set
func GetEnvWithDefault(envVar, defaultValue string) string {
	if value := os.Getenv(envVar); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvIntWithDefault returns the value of an environment variable as int or a default value if not set
func GetEnvIntWithDefault(envVar string, defaultValue int) int {
	if value := os.Getenv(envVar); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// PreRunEWithEnvVars creates a PreRunE function that validates database connection parameters.
// Flags that were not set explicitly are taken from the environment first.
func PreRunEWithEnvVars(flags *ConnectionFlags) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		flags.ApplyEnv(cmd)

		if flags.DB == "" {
			return fmt.Errorf("database name is required (use --db flag or %s environment variable)", EnvDatabase)
		}
		if flags.User == "" {
			return fmt.Errorf("database user is required (use --user flag or %s environment variable)", EnvUser)
		}
		if flags.SSHHost != "" && flags.SSHUser == "" {
			return fmt.Errorf("ssh user is required with --ssh-host (use --ssh-user flag or %s environment variable)", EnvSSHUser)
		}
		return nil
	}
}

// ApplyEnv fills every connection flag the user did not set from its environment variable
func (f *ConnectionFlags) ApplyEnv(cmd *cobra.Command) {
	stringFromEnv(cmd, "host", EnvHost, &f.Host)
	intFromEnv(cmd, "port", EnvPort, &f.Port)
	stringFromEnv(cmd, "db", EnvDatabase, &f.DB)
	stringFromEnv(cmd, "user", EnvUser, &f.User)
	stringFromEnv(cmd, "password", EnvPassword, &f.Password)

	stringFromEnv(cmd, "ssh-host", EnvSSHHost, &f.SSHHost)
	intFromEnv(cmd, "ssh-port", EnvSSHPort, &f.SSHPort)
	stringFromEnv(cmd, "ssh-user", EnvSSHUser, &f.SSHUser)
	stringFromEnv(cmd, "ssh-password", EnvSSHPassword, &f.SSHPassword)
	stringFromEnv(cmd, "ssh-key", EnvSSHKey, &f.SSHKey)
	stringFromEnv(cmd, "ssh-known-hosts", EnvSSHKnownHosts, &f.SSHKnownHosts)

	// Passphrases are never passed on the command line
	if f.SSHKeyPassphrase == "" {
		f.SSHKeyPassphrase = os.Getenv(EnvSSHKeyPassphrase)
	}
}

func stringFromEnv(cmd *cobra.Command, flag, envVar string, target *string) {
	if cmd.Flags().Changed(flag) {
		return
	}
	if value := GetEnvWithDefault(envVar, ""); value != "" {
		*target = value
	}
}

func intFromEnv(cmd *cobra.Command, flag, envVar string, target *int) {
	if cmd.Flags().Changed(flag) {
		return
	}
	if value := GetEnvIntWithDefault(envVar, 0); value != 0 {
		*target = value
	}
}
