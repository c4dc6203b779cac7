package application

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/ahrav/go-docreview/infrastructure/rollup"
	"github.com/ahrav/go-docreview/internal/domain"
	"github.com/ahrav/go-docreview/internal/logging"
)

// EnvPrefix is the prefix of environment variables that override
// configuration file values.
const EnvPrefix = "DOCREVIEW_"

// maxConfigFileSize bounds configuration files to 1MB.
const maxConfigFileSize = 1024 * 1024

// EngineConfig is the runtime configuration of the review engine and CLI.
// It is unrelated to the requirements specification being evaluated.
type EngineConfig struct {
	// Rollup controls rounding precision and strong/weak classification.
	Rollup rollup.Config `yaml:"rollup" koanf:"rollup"`

	// Logging configures the zap logger.
	Logging logging.Config `yaml:"logging" koanf:"logging"`

	// Review controls the review service.
	Review ReviewConfig `yaml:"review" koanf:"review"`

	// Templates controls the template catalog.
	Templates TemplatesConfig `yaml:"templates" koanf:"templates"`
}

// ReviewConfig controls how the review service runs evaluations.
type ReviewConfig struct {
	// BatchConcurrency caps the number of score sets evaluated at once by
	// ReviewBatch.
	BatchConcurrency int `yaml:"batch_concurrency" koanf:"batch_concurrency" validate:"min=1,max=256"`

	// RefuseOnErrors rejects a review when validation reports errors.
	// Disabling it aggregates anyway and is intended for diagnostics.
	RefuseOnErrors bool `yaml:"refuse_on_errors" koanf:"refuse_on_errors"`
}

// TemplatesConfig controls the template catalog.
type TemplatesConfig struct {
	// Default is the template used by `init` when none is named.
	Default string `yaml:"default" koanf:"default" validate:"omitempty,slug"`
}

// DefaultEngineConfig returns the built-in configuration.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Rollup:  rollup.DefaultConfig(),
		Logging: logging.DefaultConfig(),
		Review: ReviewConfig{
			BatchConcurrency: 4,
			RefuseOnErrors:   true,
		},
		Templates: TemplatesConfig{Default: "saas-product-launch"},
	}
}

// Validate checks every section of the configuration.
// Validate returns an error wrapping domain.ErrInvalidConfiguration.
func (c EngineConfig) Validate() error {
	v := newEngineValidator()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidConfiguration, err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrInvalidConfiguration, err)
	}
	return nil
}

// LoadEngineConfig loads configuration from an optional YAML file, then
// applies environment overrides.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (DOCREVIEW_ROLLUP_PRECISION, ...)
//  2. YAML config file
//  3. Built-in defaults
//
// Environment variables drop the prefix, are lower-cased, and split on the
// first underscore into section and field:
//
//	DOCREVIEW_ROLLUP_PRECISION        -> rollup.precision
//	DOCREVIEW_REVIEW_BATCH_CONCURRENCY -> review.batch_concurrency
//	DOCREVIEW_LOGGING_LEVEL           -> logging.level
//
// An empty path skips the file. A named file that does not exist is an
// error.
func LoadEngineConfig(path string) (EngineConfig, error) {
	var data []byte
	if path != "" {
		cleanPath := filepath.Clean(path)

		info, err := os.Stat(cleanPath)
		if err != nil {
			return EngineConfig{}, fmt.Errorf("failed to stat config file: %w", err)
		}
		if info.Size() > maxConfigFileSize {
			return EngineConfig{}, fmt.Errorf("config file %s exceeds %d bytes", cleanPath, maxConfigFileSize)
		}
		data, err = os.ReadFile(cleanPath)
		if err != nil {
			return EngineConfig{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return ParseEngineConfig(data)
}

// ParseEngineConfig merges YAML data and DOCREVIEW_ environment variables
// over the defaults.
func ParseEngineConfig(data []byte) (EngineConfig, error) {
	k := koanf.New(".")

	if len(data) > 0 {
		if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
			return EngineConfig{}, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return EngineConfig{}, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := DefaultEngineConfig()
	if err := k.Unmarshal("", &cfg); err != nil {
		return EngineConfig{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return EngineConfig{}, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// envKey maps DOCREVIEW_SECTION_FIELD_NAME to section.field_name.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, field, ok := strings.Cut(lower, "_")
	if !ok {
		return lower
	}
	return section + "." + field
}

// ErrNoConfig is returned by FindEngineConfig when no file is present.
var ErrNoConfig = errors.New("no configuration file found")

// FindEngineConfig returns the first existing configuration file among
// ./docreview.yaml and $XDG_CONFIG_HOME/docreview/config.yaml.
func FindEngineConfig() (string, error) {
	candidates := []string{"docreview.yaml"}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "docreview", "config.yaml"))
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, nil
		}
	}
	return "", ErrNoConfig
}
