package dump

import (
	"testing"
	"time"
)

func TestDumpCommand(t *testing.T) {
	if DumpCmd.Use != "dump" {
		t.Errorf("Expected Use to be 'dump', got '%s'", DumpCmd.Use)
	}
	if DumpCmd.Short == "" {
		t.Error("Expected Short description to be set")
	}
	if DumpCmd.Long == "" {
		t.Error("Expected Long description to be set")
	}

	flags := DumpCmd.Flags()
	for _, name := range []string{"host", "port", "db", "user", "password", "multi-file", "file", "ssh-host", "ssh-key"} {
		if flags.Lookup(name) == nil {
			t.Errorf("Expected --%s flag to be defined", name)
		}
	}
}

func TestDumpCommand_ErrorHandling(t *testing.T) {
	ResetFlags()
	defer ResetFlags()

	// Nothing listens on this port
	connection.Host = "127.0.0.1"
	connection.Port = 1
	connection.DB = "nonexistent"
	connection.User = "invalid"
	connection.ConnectTimeout = 2 * time.Second

	if err := runDump(DumpCmd, nil); err == nil {
		t.Error("Expected error with unreachable database, but got nil")
	}
}
