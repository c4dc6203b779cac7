package cli

import (
	"github.com/spf13/cobra"
)

func newValidateCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "validate <spec.yaml>",
		Short: "Check a requirements specification for consistency",
		Long: `Validate checks a requirements specification and prints every issue found,
grouped into errors, warnings, and suggestions. The command exits non-zero
when the specification has errors.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			spec, err := a.specs.LoadFromFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			report := a.service.Validate(cmd.Context(), spec)
			out := cmd.OutOrStdout()
			if format == formatText {
				renderReport(out, args[0], report)
			} else if err := writeStructured(out, format, report); err != nil {
				return err
			}

			if report.HasErrors() {
				return ErrValidationFailed
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format: text, json, or yaml")
	return cmd
}
