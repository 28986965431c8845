package apply

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	planCmd "github.com/mysqlschema/mysqlschema/cmd/plan"
	"github.com/mysqlschema/mysqlschema/cmd/util"
	"github.com/mysqlschema/mysqlschema/internal/fingerprint"
	"github.com/mysqlschema/mysqlschema/internal/logger"
	"github.com/mysqlschema/mysqlschema/internal/mysql"
	"github.com/mysqlschema/mysqlschema/internal/plan"
	"github.com/spf13/cobra"
)

var (
	connection       util.ConnectionFlags
	applyFile        string
	applyAutoApprove bool
	applyNoColor     bool
	applyDryRun      bool
	disableFKChecks  bool
)

var ApplyCmd = &cobra.Command{
	Use:          "apply",
	Short:        "Apply migration plan to update a database schema",
	Long:         "Apply a desired schema state to a target database. Compares the desired state (from --file) with the current state of the database and executes the necessary changes one statement at a time.",
	RunE:         runApply,
	SilenceUsage: true,
	PreRunE:      util.PreRunEWithEnvVars(&connection),
}

func init() {
	util.AddConnectionFlags(ApplyCmd, &connection)

	// Desired state schema file flag
	ApplyCmd.Flags().StringVar(&applyFile, "file", "", "Path to desired state SQL schema file (required)")

	// Apply behavior flags
	ApplyCmd.Flags().BoolVar(&applyAutoApprove, "auto-approve", false, "Apply changes without prompting for approval")
	ApplyCmd.Flags().BoolVar(&applyNoColor, "no-color", false, "Disable colored output")
	ApplyCmd.Flags().BoolVar(&applyDryRun, "dry-run", false, "Show plan without applying changes")
	ApplyCmd.Flags().BoolVar(&disableFKChecks, "disable-fk-checks", false, "Disable foreign key checks while the migration runs")

	ApplyCmd.MarkFlagRequired("file")
}

// ApplyConfig holds the apply behavior independent of the command line
type ApplyConfig struct {
	File            string
	AutoApprove     bool
	NoColor         bool
	DryRun          bool
	DisableFKChecks bool
}

func runApply(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	driver, err := util.Connect(ctx, &connection)
	if err != nil {
		return err
	}
	defer driver.Close()

	config := &ApplyConfig{
		File:            applyFile,
		AutoApprove:     applyAutoApprove,
		NoColor:         applyNoColor,
		DryRun:          applyDryRun,
		DisableFKChecks: disableFKChecks,
	}
	return ApplyMigration(ctx, driver, config, cmd.InOrStdin(), cmd.OutOrStdout())
}

// ApplyMigration plans the desired state against the database, asks for approval
// unless auto-approved, and executes the plan
func ApplyMigration(ctx context.Context, driver *mysql.Driver, config *ApplyConfig, in io.Reader, out io.Writer) error {
	migrationPlan, err := planCmd.GeneratePlan(ctx, driver, config.File)
	if err != nil {
		return err
	}

	if !migrationPlan.HasChanges() {
		fmt.Fprintln(out, "No changes to apply. Database schema is already up to date.")
		return nil
	}

	fmt.Fprint(out, migrationPlan.HumanColored(!config.NoColor))

	if config.DryRun {
		return nil
	}

	if !config.AutoApprove {
		approved, err := confirm(in, out)
		if err != nil {
			return err
		}
		if !approved {
			fmt.Fprintln(out, "Apply cancelled.")
			return nil
		}
	}

	// The prompt may have waited a long time; refuse to run a stale plan
	if err := validateFingerprint(ctx, driver, migrationPlan); err != nil {
		return err
	}

	fmt.Fprintln(out, "\nApplying changes...")
	if err := executePlan(ctx, driver, migrationPlan, config.DisableFKChecks); err != nil {
		return err
	}
	fmt.Fprintln(out, "Changes applied successfully!")
	return nil
}

// confirm asks for approval and accepts "yes" or "y"
func confirm(in io.Reader, out io.Writer) (bool, error) {
	fmt.Fprint(out, "\nDo you want to apply these changes? (yes/no): ")
	response, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && (err != io.EOF || response == "") {
		return false, fmt.Errorf("failed to read user input: %w", err)
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "yes" || response == "y", nil
}

func validateFingerprint(ctx context.Context, driver *mysql.Driver, migrationPlan *plan.Plan) error {
	if migrationPlan.SourceFingerprint == nil {
		return nil
	}
	ignoreConfig, err := util.LoadIgnoreConfig()
	if err != nil {
		return err
	}
	current, err := util.GetSchemaFromDatabase(ctx, driver, ignoreConfig)
	if err != nil {
		return err
	}
	actual, err := fingerprint.ComputeFingerprint(current)
	if err != nil {
		return fmt.Errorf("failed to compute current fingerprint: %w", err)
	}
	if err := fingerprint.Compare(migrationPlan.SourceFingerprint, actual); err != nil {
		return fmt.Errorf("schema changed since the plan was generated, re-run apply: %w", err)
	}
	return nil
}

func executePlan(ctx context.Context, driver *mysql.Driver, migrationPlan *plan.Plan, disableFK bool) (err error) {
	if disableFK {
		if err := driver.SetForeignKeyChecks(ctx, false); err != nil {
			return err
		}
		defer func() {
			if restoreErr := driver.SetForeignKeyChecks(ctx, true); restoreErr != nil {
				logger.Get().Warn("Failed to re-enable foreign key checks", "error", restoreErr)
				if err == nil {
					err = restoreErr
				}
			}
		}()
	}

	if err := driver.Exec(ctx, migrationPlan.Statements()); err != nil {
		return fmt.Errorf("failed to apply changes: %w", err)
	}
	return nil
}

// ResetFlags resets all global flag variables to their default values for testing
func ResetFlags() {
	connection = util.DefaultConnectionFlags()
	applyFile = ""
	applyAutoApprove = false
	applyNoColor = false
	applyDryRun = false
	disableFKChecks = false
}
