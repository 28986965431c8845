package cmd

import (
	"fmt"
	"os"

	"github.com/mysqlschema/mysqlschema/cmd/apply"
	"github.com/mysqlschema/mysqlschema/cmd/diff"
	"github.com/mysqlschema/mysqlschema/cmd/dump"
	"github.com/mysqlschema/mysqlschema/cmd/plan"
	"github.com/mysqlschema/mysqlschema/internal/logger"
	"github.com/mysqlschema/mysqlschema/internal/version"
	"github.com/spf13/cobra"
)

var Debug bool

var RootCmd = &cobra.Command{
	Use:   "mysqlschema",
	Short: "MySQL schema diff and migration tool",
	Long: fmt.Sprintf(`mysqlschema compares MySQL schema definitions and generates the DDL that migrates one into the other.

Version: %s@%s %s %s

Commands:
  diff    Compare two schema files offline
  dump    Dump MySQL schema
  plan    Generate migration plan
  apply   Apply schema migrations

Use "mysqlschema [command] --help" for more information about a command.`,
		version.App(), version.GitCommit, version.Platform(), version.BuildDate),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogger()
	},
}

func init() {
	RootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "Enable debug logging")
	RootCmd.AddCommand(diff.DiffCmd)
	RootCmd.AddCommand(dump.DumpCmd)
	RootCmd.AddCommand(plan.PlanCmd)
	RootCmd.AddCommand(apply.ApplyCmd)
	RootCmd.AddCommand(VersionCmd)
}

func setupLogger() {
	logger.Setup(os.Stderr, Debug)
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
