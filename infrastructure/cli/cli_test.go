package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-docreview/internal/domain"
	"github.com/ahrav/go-docreview/internal/ports"
)

const invalidSpec = `metadata:
  version: "1.0"
agents: []
scoring:
  scale: 0-10
  weights:
    product_manager: 1.0
`

const mobileScores = `product_manager:
  - criterion: Problem Statement
    score: 8
    confidence: high
  - criterion: MVP Scope
    score: 6
    confidence: medium
    finding: Scope lists features without priorities
    recommendation: Rank MVP features by user value
    severity: high
`

// run executes the CLI in isolation from any user configuration.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())

	var stdout, stderr bytes.Buffer
	err := Execute(args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidate_ValidTemplate(t *testing.T) {
	specPath := filepath.Join(t.TempDir(), "spec.yaml")
	_, _, err := run(t, "init", specPath, "--template", "mobile-app-mvp")
	require.NoError(t, err)

	out, _, err := run(t, "validate", specPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Specification is valid. No issues found.")
}

func TestValidate_Errors(t *testing.T) {
	specPath := writeFile(t, "spec.yaml", invalidSpec)

	out, stderr, err := run(t, "validate", specPath)
	require.ErrorIs(t, err, ErrValidationFailed)
	assert.Contains(t, out, "Errors (1)")
	assert.Contains(t, out, string(domain.CodeNoAgents))
	assert.Contains(t, out, "cannot be used for review")
	assert.Empty(t, stderr, "validation failures are reported once, on stdout")
}

func TestValidate_JSON(t *testing.T) {
	specPath := writeFile(t, "spec.yaml", invalidSpec)

	out, _, err := run(t, "validate", specPath, "--format", "json")
	require.ErrorIs(t, err, ErrValidationFailed)

	var report domain.ValidationReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.Len(t, report.Errors, 1)
	assert.Equal(t, domain.CodeNoAgents, report.Errors[0].Code)
}

func TestValidate_UnknownFormat(t *testing.T) {
	specPath := writeFile(t, "spec.yaml", invalidSpec)

	_, stderr, err := run(t, "validate", specPath, "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, stderr, "unknown output format")
}

func TestValidate_MalformedFile(t *testing.T) {
	specPath := writeFile(t, "spec.yaml", "agents: [unclosed\n")

	_, _, err := run(t, "validate", specPath)
	require.ErrorIs(t, err, domain.ErrStructural)
}

func TestReview_TemplateJSON(t *testing.T) {
	scoresPath := writeFile(t, "scores.yaml", mobileScores)

	out, _, err := run(t, "review", "--template", "mobile-app-mvp", "--scores", scoresPath, "--format", "json")
	require.NoError(t, err)

	var result domain.ReviewResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.NotNil(t, result.Overall)
	assert.InDelta(t, 7.0, *result.Overall, 1e-9)
	assert.NotEmpty(t, result.ID)
	assert.False(t, result.Timestamp.IsZero())
	require.Len(t, result.Recommendations, 1)
	assert.Equal(t, "MVP Scope", result.Recommendations[0].Criterion)
}

func TestReview_Text(t *testing.T) {
	scoresPath := writeFile(t, "scores.yaml", mobileScores)

	out, _, err := run(t, "review", "--template", "mobile-app-mvp", "--scores", scoresPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Overall:")
	assert.Contains(t, out, "Product Manager Agent")
	assert.Contains(t, out, "Rank MVP features by user value")
}

func TestReview_Batch(t *testing.T) {
	first := writeFile(t, "first.yaml", mobileScores)
	second := writeFile(t, "second.yaml", "")

	out, _, err := run(t, "review", "--template", "mobile-app-mvp",
		"--scores", first, "--scores", second, "--format", "json")
	require.NoError(t, err)

	var results []domain.ReviewResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)
	require.NotNil(t, results[0].Overall)
	assert.Nil(t, results[1].Overall)
	assert.Equal(t, domain.LabelInsufficientData, results[1].Label)
}

func TestReview_RefusesInvalidSpec(t *testing.T) {
	specPath := writeFile(t, "spec.yaml", invalidSpec)
	scoresPath := writeFile(t, "scores.yaml", mobileScores)

	out, _, err := run(t, "review", specPath, "--scores", scoresPath)
	require.ErrorIs(t, err, ErrValidationFailed)
	assert.Contains(t, out, "Errors (1)")
	assert.NotContains(t, out, "Overall:")
}

func TestReview_ArgumentErrors(t *testing.T) {
	scoresPath := writeFile(t, "scores.yaml", mobileScores)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "no scores",
			args:    []string{"review", "--template", "mobile-app-mvp"},
			wantErr: "at least one --scores file is required",
		},
		{
			name:    "no specification",
			args:    []string{"review", "--scores", scoresPath},
			wantErr: "a specification file or --template is required",
		},
		{
			name:    "file and template",
			args:    []string{"review", "spec.yaml", "--template", "mobile-app-mvp", "--scores", scoresPath},
			wantErr: "not both",
		},
		{
			name:    "unknown template",
			args:    []string{"review", "--template", "nope", "--scores", scoresPath},
			wantErr: "template not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, err := run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, stderr, tt.wantErr)
		})
	}
}

func TestTemplatesList(t *testing.T) {
	out, _, err := run(t, "templates", "list", "--format", "json")
	require.NoError(t, err)

	var list []ports.TemplateMeta
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list, 4)
	assert.Equal(t, "mobile-app-mvp", list[0].ID)

	out, _, err = run(t, "templates", "list", "--industry", "fintech", "--format", "json")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "fintech-payments", list[0].ID)
}

func TestTemplatesList_Text(t *testing.T) {
	out, _, err := run(t, "templates", "list", "--difficulty", "nonexistent")
	require.NoError(t, err)
	assert.Contains(t, out, "No templates match the filter.")
}

func TestTemplatesPreview(t *testing.T) {
	out, _, err := run(t, "templates", "preview", "mobile-app-mvp")
	require.NoError(t, err)
	assert.Contains(t, out, "Template Preview: Mobile App MVP")
	assert.Contains(t, out, "3 agents, 5 categories, 11 criteria")
	assert.Contains(t, out, "Product Manager: 50%")
}

func TestTemplatesIndustries(t *testing.T) {
	out, _, err := run(t, "templates", "industries")
	require.NoError(t, err)
	assert.Equal(t, "Consumer Mobile\nFintech\nHealthcare\nSaas\n", out)
}

func TestTemplatesShow_RoundTrips(t *testing.T) {
	out, _, err := run(t, "templates", "show", "fintech-payments")
	require.NoError(t, err)

	specPath := writeFile(t, "spec.yaml", out)
	_, _, err = run(t, "validate", specPath)
	require.NoError(t, err)
}

func TestInit(t *testing.T) {
	specPath := filepath.Join(t.TempDir(), "spec.yaml")

	out, _, err := run(t, "init", specPath)
	require.NoError(t, err)
	assert.Contains(t, out, "saas-product-launch")

	data, err := os.ReadFile(specPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "template_name: SaaS Product Launch")

	_, stderr, err := run(t, "init", specPath)
	require.Error(t, err)
	assert.Contains(t, stderr, "already exists")

	_, _, err = run(t, "init", specPath, "--template", "healthcare-ai", "--force")
	require.NoError(t, err)
	data, err = os.ReadFile(specPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "industry: healthcare")
}

func TestMetricsOut(t *testing.T) {
	specPath := writeFile(t, "spec.yaml", invalidSpec)
	metricsPath := filepath.Join(t.TempDir(), "metrics.prom")

	_, _, err := run(t, "validate", specPath, "--metrics-out", metricsPath)
	require.ErrorIs(t, err, ErrValidationFailed)

	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `validation_issues_total{level="error"} 1`)
}

func TestConfigFlag(t *testing.T) {
	cfgPath := writeFile(t, "docreview.yaml", "review:\n  batch_concurrency: 0\n")

	_, stderr, err := run(t, "templates", "industries", "--config", cfgPath)
	require.ErrorIs(t, err, domain.ErrInvalidConfiguration)
	assert.Contains(t, stderr, "config validation failed")
}
