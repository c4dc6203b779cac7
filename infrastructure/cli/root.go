// Package cli implements the docreview command-line interface.
package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ahrav/go-docreview/infrastructure/middleware"
	"github.com/ahrav/go-docreview/infrastructure/templates"
	"github.com/ahrav/go-docreview/internal/application"
	"github.com/ahrav/go-docreview/internal/logging"
)

var (
	Version = "dev"
	Commit  = "none"
)

// ErrValidationFailed is returned by commands when a specification has
// validation errors. main maps it to a non-zero exit code without printing
// it twice.
var ErrValidationFailed = errors.New("specification has validation errors")

// app holds the collaborators shared by every subcommand of one
// invocation.
type app struct {
	configPath  string
	logLevel    string
	logFormat   string
	metricsPath string

	config   application.EngineConfig
	logger   *zap.Logger
	registry *prometheus.Registry
	specs    *application.SpecLoader
	scores   *application.ScoreLoader
	catalog  *templates.Registry
	service  *application.ReviewService
}

// NewRootCmd builds the command tree. Each call returns an independent
// tree so tests can execute commands in isolation.
func NewRootCmd() *cobra.Command {
	root, _ := newRootCmd()
	return root
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{}

	root := &cobra.Command{
		Use:     "docreview",
		Version: fmt.Sprintf("%s (%s)", Version, Commit),
		Short:   "Validate requirements specifications and aggregate launch document reviews",
		Long: `docreview checks requirements specifications for structural and numeric
consistency and rolls evaluator scores up into weighted category, agent, and
overall results with ranked recommendations.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "engine configuration file (default ./docreview.yaml if present)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "", "log format: console or json")
	flags.StringVar(&a.metricsPath, "metrics-out", "", "write Prometheus metrics in text format to this file")

	root.AddCommand(
		newValidateCmd(a),
		newReviewCmd(a),
		newTemplatesCmd(a),
		newInitCmd(a),
	)
	return root, a
}

// setup loads configuration and wires the engine.
func (a *app) setup(cmd *cobra.Command) error {
	path := a.configPath
	if path == "" {
		if found, err := application.FindEngineConfig(); err == nil {
			path = found
		}
	}
	cfg, err := application.LoadEngineConfig(path)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Logging.Level = a.logLevel
	}
	if a.logFormat != "" {
		cfg.Logging.Format = a.logFormat
	}
	a.config = cfg

	logger, err := logging.NewLogger(cfg.Logging)
	if err != nil {
		return err
	}
	a.logger = logger.Named(cmd.Name())

	a.registry = prometheus.NewRegistry()
	service, err := application.NewReviewServiceFromConfig(cfg,
		application.WithLogger(a.logger),
		application.WithMetrics(middleware.NewPrometheusMetrics(a.registry)),
		application.WithObserver(middleware.NewTracingObserver(nil)),
	)
	if err != nil {
		return err
	}
	a.service = service

	a.specs = application.NewSpecLoader()
	a.scores = application.NewScoreLoader()
	a.catalog = templates.Default()
	return nil
}

// teardown flushes metrics and logs. It runs after every command,
// including failed ones.
func (a *app) teardown() error {
	if a.metricsPath != "" && a.registry != nil {
		if err := prometheus.WriteToTextfile(a.metricsPath, a.registry); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
	return nil
}

// Execute runs the root command with the given arguments and streams.
func Execute(args []string, stdout, stderr io.Writer) error {
	root, a := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if terr := a.teardown(); terr != nil && err == nil {
		err = terr
	}
	if err != nil && !errors.Is(err, ErrValidationFailed) {
		fmt.Fprintln(stderr, "Error:", err)
	}
	return err
}
