package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thoreinstein/postmatter/internal/config"
	"github.com/thoreinstein/postmatter/internal/doctor"
	"github.com/thoreinstein/postmatter/internal/errors"
)

var (
	doctorJSON bool
	doctorAll  bool
	doctorFix  bool
)

func init() {
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false,
		"output results as JSON")
	doctorCmd.Flags().BoolVarP(&doctorAll, "all", "a", false,
		"show detailed check-by-check output, including passed checks")
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false,
		"fix permission problems that can be fixed automatically")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose project setup issues",
	Long: `Run diagnostic checks on the postmatter setup of this project.

Checks that the configuration parses and validates, that content_dir exists
and holds articles, that every referenced layout resolves to a file, that
slugs are unique and whether the content is tracked by git.

Output modes (mutually exclusive):
  (default)   Show errors and warnings
  --all       Show all checks including passed ones
  --quiet     No output, exit code only
  --json      Machine-readable JSON output

Exit codes:
  0 - All checks passed (no errors or warnings)
  1 - Warnings present, no errors
  2 - Errors present`,
	PreRunE: validateDoctorFlags,
	RunE:    runDoctor,
}

// validateDoctorFlags ensures output flags are mutually exclusive.
func validateDoctorFlags(_ *cobra.Command, _ []string) error {
	count := 0
	for _, set := range []bool{doctorJSON, quiet, doctorAll} {
		if set {
			count++
		}
	}

	if count > 1 {
		return errors.NewUserError(errors.New("flags --json, --quiet, and --all are mutually exclusive"), "")
	}

	return nil
}

func runDoctor(cmd *cobra.Command, _ []string) error {
	cfg := currentConfig()
	path := configFile
	if path == "" {
		path = config.Discover(".")
	}

	runner := doctor.NewRunner()
	for _, check := range doctor.Default(cfg, path) {
		runner.AddCheck(check)
	}

	w := cmd.OutOrStdout()
	report := runner.Run(cmd.Context())

	if doctorFix {
		fixes := applyFixes(runner.Checks())
		if !quiet && !doctorJSON {
			outputFixes(w, fixes)
		}
		if len(fixes) > 0 {
			report = runner.Run(cmd.Context())
		}
	}

	if err := outputDoctorReport(w, report); err != nil {
		return err
	}

	// Determine exit code based on results
	if report.HasErrors() {
		return errDoctorErrors
	}
	if report.HasWarnings() {
		return errDoctorWarnings
	}
	return nil
}

// applyFixes runs Fix on every check that has something to fix.
func applyFixes(checks []doctor.Check) []doctor.FixResult {
	var results []doctor.FixResult
	for _, check := range checks {
		fixer, ok := check.(doctor.Fixer)
		if !ok || !fixer.CanFix() {
			continue
		}
		results = append(results, fixer.Fix()...)
	}
	return results
}

func outputFixes(w io.Writer, fixes []doctor.FixResult) {
	if len(fixes) == 0 {
		fmt.Fprintln(w, "Nothing to fix")
		fmt.Fprintln(w)
		return
	}
	for _, f := range fixes {
		icon := statusIcon(doctor.SeverityPass)
		if !f.Fixed {
			icon = statusIcon(doctor.SeverityError)
		}
		fmt.Fprintf(w, "%s fix %s: %s\n", icon, f.Path, f.Description)
	}
	fmt.Fprintln(w)
}

func outputDoctorReport(w io.Writer, report *doctor.DoctorReport) error {
	if quiet {
		return nil
	}

	if doctorJSON {
		return outputDoctorJSON(w, report)
	}

	return outputDoctorText(w, report, doctorAll)
}

func outputDoctorJSON(w io.Writer, report *doctor.DoctorReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return errors.Wrap(err, "encoding JSON")
	}
	return nil
}

func outputDoctorText(w io.Writer, report *doctor.DoctorReport, showAll bool) error {
	hasOutput := false
	for _, result := range report.Results {
		if !showAll && result.Status != doctor.SeverityError && result.Status != doctor.SeverityWarning {
			continue
		}

		hasOutput = true
		icon := statusIcon(result.Status)
		fmt.Fprintf(w, "%s [%s] %s: %s\n", icon, result.Category, result.Name, result.Message)

		if result.FixHint != "" && result.Status != doctor.SeverityPass {
			fmt.Fprintf(w, "  hint: %s\n", result.FixHint)
		}
	}

	if hasOutput || showAll {
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Summary: %d passed, %d info, %d warnings, %d errors\n",
		report.Summary.Passed, report.Summary.Info, report.Summary.Warnings, report.Summary.Errors)

	return nil
}

func statusIcon(s doctor.Severity) string {
	switch s {
	case doctor.SeverityPass:
		return "✓"
	case doctor.SeverityInfo:
		return "ℹ"
	case doctor.SeverityWarning:
		return "⚠"
	case doctor.SeverityError:
		return "✗"
	default:
		return "?"
	}
}

// errDoctorWarnings exits with code 1 after the report has been printed.
var errDoctorWarnings = errors.NewExitError(nil, 1)

// errDoctorErrors exits with code 2 after the report has been printed.
var errDoctorErrors = errors.NewExitError(nil, 2)
