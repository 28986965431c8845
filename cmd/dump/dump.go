package dump

import (
	"context"
	"fmt"
	"os"

	"github.com/mysqlschema/mysqlschema/cmd/util"
	"github.com/mysqlschema/mysqlschema/internal/dump"
	"github.com/spf13/cobra"
)

var (
	connection util.ConnectionFlags
	multiFile  bool
	file       string
)

var DumpCmd = &cobra.Command{
	Use:          "dump",
	Short:        "Dump database schema",
	Long:         "Dump the tables, views, routines, triggers and events of a database as a SQL script that can be used as a desired state file.",
	RunE:         runDump,
	SilenceUsage: true,
	PreRunE:      util.PreRunEWithEnvVars(&connection),
}

func init() {
	util.AddConnectionFlags(DumpCmd, &connection)
	DumpCmd.Flags().BoolVar(&multiFile, "multi-file", false, "Output schema to multiple files organized by object type")
	DumpCmd.Flags().StringVar(&file, "file", "", "Output file path (required when --multi-file is used)")
}

func runDump(cmd *cobra.Command, args []string) error {
	if multiFile && file == "" {
		fmt.Fprintf(os.Stderr, "Warning: --multi-file flag requires --file to be specified. Fallback to single-file mode.\n")
		multiFile = false
	}

	ctx := context.Background()
	driver, err := util.Connect(ctx, &connection)
	if err != nil {
		return err
	}
	defer driver.Close()

	ignoreConfig, err := util.LoadIgnoreConfig()
	if err != nil {
		return err
	}
	schema, err := util.GetSchemaFromDatabase(ctx, driver, ignoreConfig)
	if err != nil {
		return err
	}
	dbVersion, err := driver.Version(ctx)
	if err != nil {
		return err
	}

	formatter := dump.NewDumpFormatter(dbVersion, driver.Database())
	if multiFile {
		if err := formatter.FormatMultiFile(schema, file); err != nil {
			return fmt.Errorf("failed to write multi-file dump: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Schema dumped to %s\n", file)
		return nil
	}

	output := formatter.FormatSingleFile(schema)
	if file != "" {
		if err := os.WriteFile(file, []byte(output), 0644); err != nil {
			return fmt.Errorf("failed to write dump to %s: %w", file, err)
		}
		return nil
	}
	fmt.Fprint(cmd.OutOrStdout(), output)
	return nil
}

// ResetFlags resets all global flag variables to their default values for testing
func ResetFlags() {
	connection = util.DefaultConnectionFlags()
	multiFile = false
	file = ""
}
