package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/repcoach/callscore/internal/validation"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check attempt, rubric and persona files against their schemas",
		Long: `Check attempt, rubric and persona files against their JSON schemas.

The kind of each file is detected from its top-level keys. Exits 3 when an
attempt file is invalid and 4 when only rubric problems were found.`,
		Args: cobra.MinimumNArgs(1),
		RunE: validateCommandE,
	}
}

func validateCommandE(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	var errs []error
	for _, path := range args {
		kind, problems, err := validation.ValidateFile(path)
		if err != nil {
			fmt.Fprintf(out, "✗ %s: %v\n", path, err) //nolint:errcheck
			errs = append(errs, err)
			continue
		}
		if len(problems) == 0 {
			fmt.Fprintf(out, "✓ %s (%s)\n", path, kind) //nolint:errcheck
			continue
		}

		fmt.Fprintf(out, "✗ %s (%s): %s\n", path, kind, validation.Summary(len(problems))) //nolint:errcheck
		for _, p := range problems {
			fmt.Fprintf(out, "    %s\n", p) //nolint:errcheck
		}
		errs = append(errs, validation.ProblemsError(kind, path, problems))
	}

	return errors.Join(errs...)
}
