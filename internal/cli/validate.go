package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/hotbar/internal/command"
	"github.com/roach88/hotbar/internal/compiler"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool                       `json:"valid"`
	Modes    int                        `json:"modes"`
	Bindings int                        `json:"bindings"`
	Errors   []compiler.ValidationError `json:"errors,omitempty"`
	Warnings []compiler.ValidationError `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [config]",
		Short: "Check a mode table",
		Long: `Check a CUE or TOML mode table without running it.

Reports every structural problem (missing triggers, duplicate keys, unknown
modes) and every command problem (unknown names, rejected parameters).
Ignored or defaulted parameters are reported as warnings and do not fail
validation. Without an argument the built-in table is checked.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, firstArg(args), cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	table, err := LoadTable(path)
	if err != nil {
		code, msg := loadErrorParts(err)
		return formatter.Fail(ExitCommandError, code, msg)
	}
	formatter.VerboseLog("Loaded %d mode(s) from %s", len(table.Modes), describeSource(path))

	result := ValidationResult{Modes: len(table.Modes)}
	for _, m := range table.Modes {
		result.Bindings += len(m.Bindings)
	}
	for _, e := range compiler.Validate(table, compiler.WithRegistry(command.DefaultRegistry())) {
		if e.Warning {
			result.Warnings = append(result.Warnings, e)
		} else {
			result.Errors = append(result.Errors, e)
		}
	}
	result.Valid = len(result.Errors) == 0

	return outputValidation(formatter, result)
}

// outputValidation outputs validation results.
func outputValidation(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.JSON() {
		resp := CLIResponse{Status: "ok", Data: result}
		if !result.Valid {
			resp.Status = "error"
			resp.Error = &CLIError{
				Code:    result.Errors[0].Code,
				Message: result.Errors[0].Message,
			}
		}
		if err := formatter.Encode(resp); err != nil {
			return err
		}
	} else {
		w := formatter.Writer
		if result.Valid {
			fmt.Fprintf(w, "✓ Mode table valid (%d mode(s), %d binding(s))\n", result.Modes, result.Bindings)
		} else {
			fmt.Fprintln(w, "✗ Validation failed")
		}
		for _, e := range result.Errors {
			fmt.Fprintf(w, "\n  %s\n", e.Error())
		}
		for _, e := range result.Warnings {
			fmt.Fprintf(w, "\n  warning %s\n", e.Error())
		}
	}

	if !result.Valid {
		// Validation failures = exit code 1 (test/validation failure)
		return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
	}
	return nil
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func describeSource(path string) string {
	if path == "" {
		return "built-in table"
	}
	return path
}
