package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ahrav/go-docreview/internal/ports"
)

func newTemplatesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "templates",
		Aliases: []string{"template", "tpl"},
		Short:   "Browse the built-in specification catalog",
	}
	cmd.AddCommand(
		newTemplatesListCmd(a),
		newTemplatesShowCmd(a),
		newTemplatesPreviewCmd(a),
		newTemplatesIndustriesCmd(a),
	)
	return cmd
}

func newTemplatesListCmd(a *app) *cobra.Command {
	var (
		filter    ports.TemplateFilter
		recommend bool
		format    string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List templates, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			list := a.catalog.List(filter)
			if recommend {
				list = a.catalog.Recommend(filter)
			}
			if format != formatText {
				return writeStructured(cmd.OutOrStdout(), format, list)
			}
			renderTemplates(cmd.OutOrStdout(), list)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&filter.Industry, "industry", "", "filter by industry, e.g. fintech")
	flags.StringVar(&filter.Difficulty, "difficulty", "", "filter by difficulty: beginner, intermediate, advanced")
	flags.StringVar(&filter.DocumentType, "document-type", "", "filter by document type substring")
	flags.BoolVar(&recommend, "recommend", false, "show at most three recommended templates")
	flags.StringVarP(&format, "format", "f", formatText, "output format: text, json, or yaml")
	return cmd
}

func newTemplatesShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a template as a specification file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := a.catalog.Get(args[0])
			if err != nil {
				return err
			}
			return a.specs.Encode(cmd.OutOrStdout(), spec)
		},
	}
}

func newTemplatesPreviewCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "preview <id>",
		Short: "Summarize a template's agents, categories, and weights",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			p, err := a.catalog.Preview(args[0])
			if err != nil {
				return err
			}
			if format != formatText {
				return writeStructured(cmd.OutOrStdout(), format, p)
			}
			renderPreview(cmd.OutOrStdout(), p)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format: text, json, or yaml")
	return cmd
}

func newTemplatesIndustriesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "industries",
		Short: "List the industries covered by the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range a.catalog.Industries() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
