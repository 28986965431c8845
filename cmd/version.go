package cmd

import (
	"fmt"

	"github.com/mysqlschema/mysqlschema/internal/version"
	"github.com/spf13/cobra"
)

var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  "Display the version number of mysqlschema",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), versionString())
	},
}

func versionString() string {
	return fmt.Sprintf("mysqlschema v%s@%s %s %s", version.App(), version.GitCommit, version.Platform(), version.BuildDate)
}
