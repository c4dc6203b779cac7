package application

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-docreview/internal/domain"
)

func TestParseEngineConfig_Defaults(t *testing.T) {
	cfg, err := ParseEngineConfig(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultEngineConfig(), cfg)

	assert.Equal(t, 2, cfg.Rollup.Precision)
	assert.Equal(t, 4, cfg.Review.BatchConcurrency)
	assert.True(t, cfg.Review.RefuseOnErrors)
	assert.Equal(t, "saas-product-launch", cfg.Templates.Default)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestParseEngineConfig_File(t *testing.T) {
	tests := []struct {
		name   string
		yaml   string
		verify func(t *testing.T, cfg EngineConfig)
	}{
		{
			name: "rollup section",
			yaml: `
rollup:
  precision: 1
  strong_threshold: 8
`,
			verify: func(t *testing.T, cfg EngineConfig) {
				assert.Equal(t, 1, cfg.Rollup.Precision)
				assert.InDelta(t, 8.0, cfg.Rollup.StrongThreshold, 1e-9)
				assert.InDelta(t, 5.0, cfg.Rollup.WeakThreshold, 1e-9, "unset fields keep defaults")
			},
		},
		{
			name: "review section",
			yaml: `
review:
  batch_concurrency: 16
  refuse_on_errors: false
`,
			verify: func(t *testing.T, cfg EngineConfig) {
				assert.Equal(t, 16, cfg.Review.BatchConcurrency)
				assert.False(t, cfg.Review.RefuseOnErrors)
			},
		},
		{
			name: "logging and templates",
			yaml: `
logging:
  level: debug
  format: json
templates:
  default: mobile-app-mvp
`,
			verify: func(t *testing.T, cfg EngineConfig) {
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, "mobile-app-mvp", cfg.Templates.Default)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseEngineConfig([]byte(tt.yaml))
			require.NoError(t, err)
			tt.verify(t, cfg)
		})
	}
}

func TestParseEngineConfig_Environment(t *testing.T) {
	t.Setenv("DOCREVIEW_ROLLUP_PRECISION", "3")
	t.Setenv("DOCREVIEW_REVIEW_BATCH_CONCURRENCY", "8")
	t.Setenv("DOCREVIEW_REVIEW_REFUSE_ON_ERRORS", "false")
	t.Setenv("DOCREVIEW_LOGGING_LEVEL", "error")

	cfg, err := ParseEngineConfig([]byte("review:\n  batch_concurrency: 2\nlogging:\n  format: json\n"))
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Rollup.Precision)
	assert.Equal(t, 8, cfg.Review.BatchConcurrency, "environment overrides the file")
	assert.False(t, cfg.Review.RefuseOnErrors)
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format, "file values without an override survive")
}

func TestParseEngineConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantMsg string
	}{
		{"precision too high", "rollup:\n  precision: 7\n", "Precision"},
		{"strong below weak", "rollup:\n  strong_threshold: 4\n  weak_threshold: 6\n", "StrongThreshold"},
		{"threshold above ten", "rollup:\n  weak_threshold: 11\n", "WeakThreshold"},
		{"zero concurrency", "review:\n  batch_concurrency: 0\n", "BatchConcurrency"},
		{"excessive concurrency", "review:\n  batch_concurrency: 300\n", "BatchConcurrency"},
		{"unknown log level", "logging:\n  level: verbose\n", "Level"},
		{"unknown log format", "logging:\n  format: xml\n", "Format"},
		{"template id not a slug", "templates:\n  default: SaaS_Launch\n", "Default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEngineConfig([]byte(tt.yaml))
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
			assert.Contains(t, err.Error(), "config validation failed")
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestParseEngineConfig_Malformed(t *testing.T) {
	_, err := ParseEngineConfig([]byte("review: [unclosed\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load config file")
	assert.NotErrorIs(t, err, domain.ErrInvalidConfiguration)
}

func TestLoadEngineConfig(t *testing.T) {
	dir := t.TempDir()

	t.Run("no path", func(t *testing.T) {
		cfg, err := LoadEngineConfig("")
		require.NoError(t, err)
		assert.Equal(t, DefaultEngineConfig(), cfg)
	})

	t.Run("file", func(t *testing.T) {
		path := filepath.Join(dir, "docreview.yaml")
		require.NoError(t, os.WriteFile(path, []byte("rollup:\n  precision: 0\n"), 0o644))

		cfg, err := LoadEngineConfig(path)
		require.NoError(t, err)
		assert.Equal(t, 0, cfg.Rollup.Precision)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadEngineConfig(filepath.Join(dir, "missing.yaml"))
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("oversized file", func(t *testing.T) {
		path := filepath.Join(dir, "huge.yaml")
		data := "# " + strings.Repeat("x", maxConfigFileSize) + "\n"
		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

		_, err := LoadEngineConfig(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exceeds")
	})
}

func TestFindEngineConfig(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Chdir(t.TempDir())

	_, err := FindEngineConfig()
	assert.ErrorIs(t, err, ErrNoConfig)

	userPath := filepath.Join(xdg, "docreview", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(userPath), 0o755))
	require.NoError(t, os.WriteFile(userPath, []byte("{}\n"), 0o644))

	path, err := FindEngineConfig()
	require.NoError(t, err)
	assert.Equal(t, userPath, path)

	require.NoError(t, os.WriteFile("docreview.yaml", []byte("{}\n"), 0o644))
	path, err = FindEngineConfig()
	require.NoError(t, err)
	assert.Equal(t, "docreview.yaml", path, "the working directory takes precedence")
}

func TestEnvKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"DOCREVIEW_ROLLUP_PRECISION", "rollup.precision"},
		{"DOCREVIEW_ROLLUP_STRONG_THRESHOLD", "rollup.strong_threshold"},
		{"DOCREVIEW_REVIEW_BATCH_CONCURRENCY", "review.batch_concurrency"},
		{"DOCREVIEW_LOGGING_LEVEL", "logging.level"},
		{"DOCREVIEW_DEBUG", "debug"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, envKey(tt.in))
		})
	}
}
