package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ahrav/go-docreview/internal/domain"
)

func newReviewCmd(a *app) *cobra.Command {
	var (
		format     string
		scoreFiles []string
		template   string
	)

	cmd := &cobra.Command{
		Use:   "review [spec.yaml] --scores <scores.yaml>...",
		Short: "Aggregate evaluator scores against a specification",
		Long: `Review validates the specification and rolls the evaluator scores up into
category, agent, and overall results with ranked recommendations.

The specification is either a file or a catalog template chosen with
--template. Each --scores file is reviewed independently; several files
are reviewed concurrently.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			if len(scoreFiles) == 0 {
				return errors.New("at least one --scores file is required")
			}

			spec, source, err := a.resolveSpec(cmd, args, template)
			if err != nil {
				return err
			}

			sets := make([]domain.ScoreSet, 0, len(scoreFiles))
			for _, path := range scoreFiles {
				set, err := a.scores.LoadFromFile(path)
				if err != nil {
					return err
				}
				sets = append(sets, set)
			}

			var (
				results []*domain.ReviewResult
				report  domain.ValidationReport
			)
			if len(sets) == 1 {
				var result *domain.ReviewResult
				result, report, err = a.service.Review(cmd.Context(), spec, sets[0])
				results = []*domain.ReviewResult{result}
			} else {
				results, report, err = a.service.ReviewBatch(cmd.Context(), spec, sets)
			}

			out := cmd.OutOrStdout()
			if errors.Is(err, domain.ErrValidationFailed) {
				if format == formatText {
					renderReport(out, source, report)
				} else if werr := writeStructured(out, format, report); werr != nil {
					return werr
				}
				return ErrValidationFailed
			}
			if err != nil {
				return err
			}

			if format != formatText {
				if len(results) == 1 {
					return writeStructured(out, format, results[0])
				}
				return writeStructured(out, format, results)
			}

			scale := domain.DefaultScale()
			if spec.Scoring != nil {
				scale = spec.Scoring.ParsedScale()
			}
			for i, result := range results {
				if len(results) > 1 {
					if i > 0 {
						fmt.Fprintln(out)
					}
					fmt.Fprintf(out, "%s %s\n\n", headerStyle.Render("Scores:"), scoreFiles[i])
				}
				renderResult(out, result, scale)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&format, "format", "f", formatText, "output format: text, json, or yaml")
	flags.StringArrayVarP(&scoreFiles, "scores", "s", nil, "evaluator scores file (repeatable)")
	flags.StringVarP(&template, "template", "t", "", "review against a catalog template instead of a file")
	return cmd
}

// resolveSpec returns the specification named by a positional file or by
// --template, and a label for messages.
func (a *app) resolveSpec(cmd *cobra.Command, args []string, template string) (*domain.RequirementsSpec, string, error) {
	switch {
	case len(args) == 1 && template != "":
		return nil, "", errors.New("give either a specification file or --template, not both")
	case len(args) == 1:
		spec, err := a.specs.LoadFromFile(cmd.Context(), args[0])
		return spec, args[0], err
	case template != "":
		spec, err := a.catalog.Get(template)
		return spec, "template " + template, err
	default:
		return nil, "", errors.New("a specification file or --template is required")
	}
}
