package plan

import (
	"testing"

	"github.com/spf13/cobra"
)

func TestPlanCommand(t *testing.T) {
	if PlanCmd.Use != "plan" {
		t.Errorf("Expected Use to be 'plan', got '%s'", PlanCmd.Use)
	}
	if PlanCmd.Short == "" {
		t.Error("Expected Short description to be set")
	}
	if PlanCmd.Long == "" {
		t.Error("Expected Long description to be set")
	}

	flags := PlanCmd.Flags()
	defaults := map[string]string{
		"host":         "localhost",
		"port":         "3306",
		"db":           "",
		"user":         "",
		"password":     "",
		"file":         "",
		"ssh-host":     "",
		"ssh-port":     "22",
		"output-human": "",
		"output-json":  "",
		"output-sql":   "",
		"no-color":     "false",
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

	if PlanCmd.PreRunE == nil {
		t.Error("Expected PreRunE to validate connection flags")
	}
}

func TestPlanCommand_RequiresFile(t *testing.T) {
	fileFlag := PlanCmd.Flags().Lookup("file")
	if fileFlag == nil {
		t.Fatal("Expected --file flag to be defined")
	}
	if _, ok := fileFlag.Annotations[cobra.BashCompOneRequiredFlag]; !ok {
		t.Error("Expected --file to be marked as required")
	}
}
