package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/pacha/internal/datasync"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file.yml>",
		Short: "Validate a YAML seed file without touching the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := datasync.ReadSeedFile(args[0])
			if err != nil {
				return fmt.Errorf("datasync.ReadSeedFile() > %w", err)
			}

			result := datasync.NewValidator().Validate(entries)
			displayValidationResults(cmd.OutOrStdout(), len(entries), result)

			if result.HasErrors() {
				return fmt.Errorf("validation failed with %d error(s)", len(result.Errors))
			}
			return nil
		},
	}
}

func displayValidationResults(out io.Writer, total int, result *datasync.ValidationResult) {
	for _, err := range result.Errors {
		fmt.Fprint(out, "❌ ")
		_, _ = color.New(color.FgRed).Fprintln(out, err.Error())
	}
	for _, warning := range result.Warnings {
		fmt.Fprint(out, "⚠️  ")
		_, _ = color.New(color.FgYellow).Fprintln(out, warning.Error())
	}
	if !result.HasErrors() && len(result.Warnings) == 0 {
		_, _ = color.New(color.FgGreen).Fprintf(out, "✅ %d entries are valid\n", total)
		return
	}
	fmt.Fprintf(out, "\n%d entries, %d error(s), %d warning(s)\n", total, len(result.Errors), len(result.Warnings))
}
