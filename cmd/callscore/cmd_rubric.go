package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/repcoach/callscore/internal/wizard"
)

func newRubricCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rubric",
		Short: "Author scoring rubrics",
	}

	cmd.AddCommand(newRubricNewCommand())

	return cmd
}

func newRubricNewCommand() *cobra.Command {
	var outputPath string
	var force bool

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a rubric interactively",
		Long: `Create a rubric by answering one question per criterion.

When running in a terminal (TTY) an interactive form is shown. Otherwise the
answers are read line by line from stdin, which makes the command scriptable.
Leave a weight blank to leave its criterion out.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputPath != "" && !force {
				if _, err := os.Stat(outputPath); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", outputPath)
				}
			}

			rubric, err := wizard.RunRubricWizard(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			content, err := wizard.RenderYAML(rubric)
			if err != nil {
				return err
			}

			if outputPath == "" {
				_, err := fmt.Fprint(cmd.OutOrStdout(), content)
				return err
			}
			if err := os.WriteFile(outputPath, []byte(content), 0644); err != nil {
				return fmt.Errorf("writing rubric: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Rubric saved to: %s\n", outputPath) //nolint:errcheck
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the rubric to this file instead of stdout")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing output file")

	return cmd
}
