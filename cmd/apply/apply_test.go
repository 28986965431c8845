package apply

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestApplyCommand(t *testing.T) {
	if ApplyCmd.Use != "apply" {
		t.Errorf("Expected Use to be 'apply', got '%s'", ApplyCmd.Use)
	}
	if ApplyCmd.Short == "" {
		t.Error("Expected Short description to be set")
	}
	if ApplyCmd.Long == "" {
		t.Error("Expected Long description to be set")
	}

	flags := ApplyCmd.Flags()
	defaults := map[string]string{
		"host":              "localhost",
		"port":              "3306",
		"db":                "",
		"user":              "",
		"password":          "",
		"file":              "",
		"auto-approve":      "false",
		"no-color":          "false",
		"dry-run":           "false",
		"disable-fk-checks": "false",
	}
	for name, def := range defaults {
		flag := flags.Lookup(name)
		if flag == nil {
			t.Errorf("Expected --%s flag to be defined", name)
			continue
		}
		if flag.DefValue != def {
			t.Errorf("Expected --%s default %q, got %q", name, def, flag.DefValue)
		}
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"yes\n", true},
		{"y\n", true},
		{"  YES  \n", true},
		{"no\n", false},
		{"\n", false},
		{"yes", true}, // no trailing newline
		{"sure\n", false},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		got, err := confirm(strings.NewReader(tt.input), &out)
		if err != nil {
			t.Errorf("confirm(%q) error = %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if !strings.Contains(out.String(), "Do you want to apply these changes? (yes/no): ") {
			t.Errorf("prompt not written, got %q", out.String())
		}
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("terminal closed") }

func TestConfirm_ReadError(t *testing.T) {
	if _, err := confirm(strings.NewReader(""), &bytes.Buffer{}); err == nil {
		t.Error("expected an error for empty input")
	}
	_, err := confirm(failingReader{}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "failed to read user input") {
		t.Errorf("expected read error, got %v", err)
	}
}
