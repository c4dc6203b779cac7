package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newInitCmd(a *app) *cobra.Command {
	var (
		template string
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "init <path>",
		Short: "Write a new specification file from a catalog template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := filepath.Clean(args[0])
			if template == "" {
				template = a.config.Templates.Default
			}
			if template == "" {
				return errors.New("no --template given and no default template configured")
			}

			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				} else if !errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("failed to check %s: %w", path, err)
				}
			}

			spec, err := a.catalog.Get(template)
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := a.specs.Encode(&buf, spec); err != nil {
				return err
			}
			if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("failed to write specification: %w", err)
			}

			a.logger.Info("specification created", zap.String("path", path), zap.String("template", template))
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s from template %s\n",
				okStyle.Render("Created"), path, template)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&template, "template", "t", "", "catalog template ID (default from configuration)")
	flags.BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}
