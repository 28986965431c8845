package diff

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mysqlschema/mysqlschema/cmd/util"
	"github.com/mysqlschema/mysqlschema/internal/compare"
	schemadiff "github.com/mysqlschema/mysqlschema/internal/diff"
	"github.com/mysqlschema/mysqlschema/internal/migrate"
	"github.com/mysqlschema/mysqlschema/internal/plan"
	"github.com/spf13/cobra"
)

var (
	sourceFile string
	targetFile string
	outputJSON string
	outputSQL  string
)

var DiffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Compare two schema files",
	Long: `Compare two schema files offline and print the migration that turns the source into the target.

The source file is the current schema and the target file is the desired schema. Both may use
SOURCE directives to include other files. No database connection is made.`,
	Example:      "  mysqlschema diff -s current.sql -t desired.sql",
	RunE:         runDiff,
	SilenceUsage: true,
}

func init() {
	DiffCmd.Flags().StringVarP(&sourceFile, "source", "s", "", "Path to the current schema file (required)")
	DiffCmd.Flags().StringVarP(&targetFile, "target", "t", "", "Path to the desired schema file (required)")
	DiffCmd.Flags().StringVar(&outputJSON, "output-json", "", "Also write the schema diff as JSON to this file")
	DiffCmd.Flags().StringVar(&outputSQL, "output-sql", "", "Also write the migration as a mysql client script to this file")

	DiffCmd.MarkFlagRequired("source")
	DiffCmd.MarkFlagRequired("target")
}

// Result is the outcome of comparing two schema files
type Result struct {
	Diff       *schemadiff.SchemaDiff
	Statements []string
}

// CompareFiles diffs the schema in target against the schema in source
func CompareFiles(source, target string) (*Result, error) {
	ignoreConfig, err := util.LoadIgnoreConfig()
	if err != nil {
		return nil, err
	}

	current, err := util.LoadSchemaFile(source, ignoreConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to load source schema: %w", err)
	}
	desired, err := util.LoadSchemaFile(target, ignoreConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to load target schema: %w", err)
	}

	sd, err := compare.New(compare.DefaultOptions()).CompareSchemaDefinitions(desired, current)
	if err != nil {
		return nil, fmt.Errorf("failed to compare schemas: %w", err)
	}
	return &Result{
		Diff:       sd,
		Statements: migrate.GenerateSchemaSQL(sd),
	}, nil
}

func runDiff(cmd *cobra.Command, args []string) error {
	result, err := CompareFiles(sourceFile, targetFile)
	if err != nil {
		return err
	}

	diffJSON, err := json.MarshalIndent(result.Diff, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal diff: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Comparing %s -> %s\n\n", sourceFile, targetFile)
	writeReport(out, result, diffJSON)

	if outputJSON != "" {
		if err := os.WriteFile(outputJSON, append(diffJSON, '\n'), 0644); err != nil {
			return fmt.Errorf("failed to write JSON output to %s: %w", outputJSON, err)
		}
	}
	if outputSQL != "" {
		script := plan.FormatScript(migrate.GenerateSchemaSteps(result.Diff))
		if err := os.WriteFile(outputSQL, []byte(script), 0644); err != nil {
			return fmt.Errorf("failed to write SQL output to %s: %w", outputSQL, err)
		}
	}
	return nil
}

// writeReport prints the diff JSON in every case; the migration SQL only when there are changes
func writeReport(out io.Writer, result *Result, diffJSON []byte) {
	if !result.Diff.HasChanges() {
		fmt.Fprintf(out, "No differences found.\n\n%s\n", diffJSON)
		return
	}

	s := result.Diff.Summary
	fmt.Fprintf(out, "%d changes: %d tables, %d objects\n\n", s.TotalChanges, s.TablesChanged, s.ObjectsChanged)
	fmt.Fprintf(out, "%s\n\n", diffJSON)
	fmt.Fprintln(out, "-- Migration SQL")
	fmt.Fprintln(out, strings.Join(result.Statements, "\n"))
}

// ResetFlags resets all global flag variables to their default values for testing
func ResetFlags() {
	sourceFile = ""
	targetFile = ""
	outputJSON = ""
	outputSQL = ""
}
