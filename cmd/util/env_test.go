package util

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestGetEnvWithDefault(t *testing.T) {
	t.Setenv("TEST_STRING", "test-value")
	t.Setenv("EMPTY_VAR", "")

	tests := []struct {
		envVar string
		want   string
	}{
		{"TEST_STRING", "test-value"},
		{"MYSQLSCHEMA_MISSING_VAR", "default"},
		{"EMPTY_VAR", "default"},
	}
	for _, tt := range tests {
		if got := GetEnvWithDefault(tt.envVar, "default"); got != tt.want {
			t.Errorf("GetEnvWithDefault(%q) = %q, want %q", tt.envVar, got, tt.want)
		}
	}
}

func TestGetEnvIntWithDefault(t *testing.T) {
	t.Setenv("TEST_INT", "12345")
	t.Setenv("TEST_INVALID_INT", "not-a-number")
	t.Setenv("EMPTY_INT_VAR", "")

	tests := []struct {
		envVar string
		want   int
	}{
		{"TEST_INT", 12345},
		{"TEST_INVALID_INT", 999},
		{"MYSQLSCHEMA_MISSING_INT_VAR", 999},
		{"EMPTY_INT_VAR", 999},
	}
	for _, tt := range tests {
		if got := GetEnvIntWithDefault(tt.envVar, 999); got != tt.want {
			t.Errorf("GetEnvIntWithDefault(%q) = %d, want %d", tt.envVar, got, tt.want)
		}
	}
}

func newTestCommand(flags *ConnectionFlags) *cobra.Command {
	cmd := &cobra.Command{Use: "test"}
	AddConnectionFlags(cmd, flags)
	return cmd
}

func clearConnectionEnv(t *testing.T) {
	t.Helper()
	for _, envVar := range []string{
		EnvHost, EnvPort, EnvDatabase, EnvUser, EnvPassword,
		EnvSSHHost, EnvSSHPort, EnvSSHUser, EnvSSHPassword, EnvSSHKey, EnvSSHKeyPassphrase, EnvSSHKnownHosts,
	} {
		t.Setenv(envVar, "")
	}
}

func TestPreRunEWithEnvVars(t *testing.T) {
	clearConnectionEnv(t)
	t.Setenv(EnvHost, "env-host")
	t.Setenv(EnvPort, "3307")
	t.Setenv(EnvDatabase, "env-db")
	t.Setenv(EnvUser, "env-user")
	t.Setenv(EnvPassword, "env-pass")
	t.Setenv(EnvSSHKeyPassphrase, "secret")

	var flags ConnectionFlags
	cmd := newTestCommand(&flags)
	if err := cmd.ParseFlags([]string{"--host", "flag-host"}); err != nil {
		t.Fatalf("ParseFlags() error = %v", err)
	}

	if err := PreRunEWithEnvVars(&flags)(cmd, nil); err != nil {
		t.Fatalf("PreRunE() error = %v", err)
	}

	// Explicit flags win over the environment
	if flags.Host != "flag-host" {
		t.Errorf("Host = %q, want flag-host", flags.Host)
	}
	if flags.Port != 3307 {
		t.Errorf("Port = %d, want 3307", flags.Port)
	}
	if flags.DB != "env-db" || flags.User != "env-user" || flags.Password != "env-pass" {
		t.Errorf("unexpected flags from environment: %+v", flags)
	}
	if flags.SSHKeyPassphrase != "secret" {
		t.Errorf("SSHKeyPassphrase = %q, want secret", flags.SSHKeyPassphrase)
	}
}

func TestPreRunEWithEnvVars_Validation(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing database", []string{"--user", "root"}, "database name is required"},
		{"missing user", []string{"--db", "app"}, "database user is required"},
		{"ssh host without user", []string{"--db", "app", "--user", "root", "--ssh-host", "bastion"}, "ssh user is required"},
		{"valid", []string{"--db", "app", "--user", "root"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConnectionEnv(t)

			var flags ConnectionFlags
			cmd := newTestCommand(&flags)
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatalf("ParseFlags() error = %v", err)
			}

			err := PreRunEWithEnvVars(&flags)(cmd, nil)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
