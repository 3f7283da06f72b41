package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	configfile "github.com/custodia-labs/askdocs-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
)

var (
	validateSuitePath string
	validateJSON      bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that answers stay grounded in the corpus",
	Long: `Runs a battery of questions against the pipeline and checks the
answers. Direct questions must contain known facts from the corpus;
adversarial questions about things the corpus never mentions must be
declined rather than answered with invented content.

Without --suite, the built-in suite for the sample corpus is used.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateSuitePath, "suite", "", "path to a TOML validation suite")
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "output the report as JSON")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	suite, err := configfile.LoadSuite(validateSuitePath)
	if err != nil {
		return fmt.Errorf("loading validation suite: %w", err)
	}

	ctx := cmd.Context()
	if err := ensureServices(ctx); err != nil {
		return err
	}
	if validator == nil {
		return errors.New("validation service not configured")
	}

	report, err := validator.Validate(ctx, suite)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyIndex) {
			return errors.New("the index is empty; run 'askdocs ingest' first")
		}
		return fmt.Errorf("validation failed to run: %w", err)
	}

	if validateJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal report: %w", err)
		}
		cmd.Println(string(data))
	} else {
		outputReport(cmd, report)
	}

	if !report.Healthy {
		return errors.New("validation detected ungrounded answers")
	}
	return nil
}

func outputReport(cmd *cobra.Command, report domain.ValidationReport) {
	cmd.Println("Validation Report")
	cmd.Println("=================")
	cmd.Println()
	for _, outcome := range report.Outcomes {
		status := "PASS"
		if !outcome.Passed {
			status = "FAIL"
		}
		cmd.Printf("  [%s] %s\n", status, outcome.Question)
		if !outcome.Passed && outcome.Reason != "" {
			cmd.Printf("         %s\n", outcome.Reason)
		}
	}
	cmd.Println()
	cmd.Printf("Pass rate: %.0f%% (%d checks)\n", report.PassRate*100, len(report.Outcomes))
	if report.Healthy {
		cmd.Println("All answers are grounded.")
	}
}
