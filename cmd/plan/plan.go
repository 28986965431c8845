package plan

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/mysqlschema/mysqlschema/cmd/util"
	"github.com/mysqlschema/mysqlschema/internal/compare"
	"github.com/mysqlschema/mysqlschema/internal/fingerprint"
	"github.com/mysqlschema/mysqlschema/internal/mysql"
	"github.com/mysqlschema/mysqlschema/internal/plan"
	"github.com/spf13/cobra"
)

var (
	connection  util.ConnectionFlags
	planFile    string
	outputHuman string
	outputJSON  string
	outputSQL   string
	planNoColor bool
)

var PlanCmd = &cobra.Command{
	Use:          "plan",
	Short:        "Generate migration plan",
	Long:         "Generate a migration plan to apply a desired schema state to a target database. Compares the desired state (from --file) with the current state of the database (specified by --db).",
	RunE:         runPlan,
	SilenceUsage: true,
	PreRunE:      util.PreRunEWithEnvVars(&connection),
}

func init() {
	util.AddConnectionFlags(PlanCmd, &connection)

	// Desired state schema file flag
	PlanCmd.Flags().StringVar(&planFile, "file", "", "Path to desired state SQL schema file (required)")

	// Output flags
	PlanCmd.Flags().StringVar(&outputHuman, "output-human", "", "Output human-readable format to stdout or file path")
	PlanCmd.Flags().StringVar(&outputJSON, "output-json", "", "Output JSON format to stdout or file path")
	PlanCmd.Flags().StringVar(&outputSQL, "output-sql", "", "Output SQL format to stdout or file path")
	PlanCmd.Flags().BoolVar(&planNoColor, "no-color", false, "Disable colored output")

	PlanCmd.MarkFlagRequired("file")
}

func runPlan(cmd *cobra.Command, args []string) error {
	// Determine outputs first so that a bad combination fails before connecting
	outputs, err := determineOutputs()
	if err != nil {
		return err
	}

	ctx := context.Background()
	driver, err := util.Connect(ctx, &connection)
	if err != nil {
		return err
	}
	defer driver.Close()

	migrationPlan, err := GeneratePlan(ctx, driver, planFile)
	if err != nil {
		return err
	}

	for _, output := range outputs {
		if err := processOutput(migrationPlan, output, cmd.OutOrStdout()); err != nil {
			return err
		}
	}
	return nil
}

// GeneratePlan compares the desired state in file with the database behind driver.
// The plan carries the fingerprint of the current schema so apply can detect drift.
func GeneratePlan(ctx context.Context, driver *mysql.Driver, file string) (*plan.Plan, error) {
	ignoreConfig, err := util.LoadIgnoreConfig()
	if err != nil {
		return nil, err
	}

	desired, err := util.LoadSchemaFile(file, ignoreConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to process desired state schema file: %w", err)
	}

	current, err := util.GetSchemaFromDatabase(ctx, driver, ignoreConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to get current state from database: %w", err)
	}

	sourceFingerprint, err := fingerprint.ComputeFingerprint(current)
	if err != nil {
		return nil, fmt.Errorf("failed to compute source fingerprint: %w", err)
	}

	sd, err := compare.New(compare.DefaultOptions()).CompareSchemaDefinitions(desired, current)
	if err != nil {
		return nil, fmt.Errorf("failed to compare schemas: %w", err)
	}

	migrationPlan := plan.NewPlan(sd, driver.Database())
	migrationPlan.SourceFingerprint = sourceFingerprint
	return migrationPlan, nil
}

// outputSpec represents a single output specification
type outputSpec struct {
	format string // "human", "json", or "sql"
	target string // "stdout" or file path
}

// determineOutputs parses the output flags and returns the list of outputs to generate
func determineOutputs() ([]outputSpec, error) {
	var outputs []outputSpec
	stdoutCount := 0

	for _, o := range []outputSpec{
		{format: "human", target: outputHuman},
		{format: "json", target: outputJSON},
		{format: "sql", target: outputSQL},
	} {
		if o.target == "" {
			continue
		}
		if o.target == "stdout" {
			stdoutCount++
		}
		outputs = append(outputs, o)
	}

	if stdoutCount > 1 {
		return nil, fmt.Errorf("only one output format can use stdout")
	}

	// Default behavior: if no outputs specified, output human to stdout
	if len(outputs) == 0 {
		outputs = append(outputs, outputSpec{format: "human", target: "stdout"})
	}
	return outputs, nil
}

// processOutput writes the plan in the specified format to the target destination
func processOutput(migrationPlan *plan.Plan, output outputSpec, stdout io.Writer) error {
	var content string

	switch output.format {
	case "human":
		// Color only when writing to stdout, unless explicitly disabled
		useColor := output.target == "stdout" && !planNoColor
		content = migrationPlan.HumanColored(useColor)
	case "json":
		jsonOutput, err := migrationPlan.ToJSON()
		if err != nil {
			return fmt.Errorf("failed to generate JSON output: %w", err)
		}
		content = jsonOutput + "\n"
	case "sql":
		content = migrationPlan.ToSQL()
	default:
		return fmt.Errorf("unknown output format: %s", output.format)
	}

	if output.target == "stdout" {
		fmt.Fprint(stdout, content)
		return nil
	}
	if err := os.WriteFile(output.target, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write %s output to %s: %w", output.format, output.target, err)
	}
	return nil
}

// ResetFlags resets all global flag variables to their default values for testing
func ResetFlags() {
	connection = util.DefaultConnectionFlags()
	planFile = ""
	outputHuman = ""
	outputJSON = ""
	outputSQL = ""
	planNoColor = false
}
