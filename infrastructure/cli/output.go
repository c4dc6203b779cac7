package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-docreview/internal/domain"
	"github.com/ahrav/go-docreview/internal/ports"
)

// Output formats accepted by --format.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

var (
	headerStyle     = lipgloss.NewStyle().Bold(true)
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	warningStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("208")).Bold(true)
	suggestionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	okStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	mutedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	tableBorder     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func checkFormat(format string) error {
	switch format {
	case formatText, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want text, json, or yaml)", format)
	}
}

// writeStructured encodes v as JSON or YAML.
func writeStructured(w io.Writer, format string, v any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("format %q is not structured", format)
	}
}

// renderReport prints a validation report grouped by level.
func renderReport(w io.Writer, source string, report domain.ValidationReport) {
	fmt.Fprintf(w, "%s %s\n", headerStyle.Render("Validation results for"), source)

	if report.Empty() {
		fmt.Fprintln(w, okStyle.Render("Specification is valid. No issues found."))
		return
	}

	groups := []struct {
		title  string
		style  lipgloss.Style
		issues []domain.Issue
	}{
		{"Errors", errorStyle, report.Errors},
		{"Warnings", warningStyle, report.Warnings},
		{"Suggestions", suggestionStyle, report.Suggestions},
	}
	for _, g := range groups {
		if len(g.issues) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s\n", g.style.Render(fmt.Sprintf("%s (%d)", g.title, len(g.issues))))
		for _, issue := range g.issues {
			fmt.Fprintf(w, "  - %s %s\n", issue.Message, mutedStyle.Render("["+string(issue.Code)+"]"))
		}
	}

	fmt.Fprintln(w)
	if report.HasErrors() {
		fmt.Fprintln(w, errorStyle.Render("Specification has errors and cannot be used for review."))
	} else {
		fmt.Fprintln(w, okStyle.Render("Specification is usable."))
	}
}

// renderResult prints a review result for humans.
func renderResult(w io.Writer, result *domain.ReviewResult, scale domain.Scale) {
	max := strconv.FormatFloat(scale.Max, 'f', -1, 64)

	fmt.Fprintf(w, "%s %s/%s  %s  %s\n",
		headerStyle.Render("Overall:"),
		formatScore(result.Overall), max,
		labelStyle(result.Label).Render(result.Label),
		mutedStyle.Render("confidence "+string(result.Confidence)),
	)
	fmt.Fprintln(w, result.Summary)

	rows := make([][]string, 0, len(result.Agents)*4)
	for _, a := range result.Agents {
		rows = append(rows, []string{
			a.Name,
			formatScore(a.Score),
			fmt.Sprintf("%.0f%%", a.Weight*100),
			string(a.Confidence),
		})
		for _, c := range a.Categories {
			rows = append(rows, []string{
				"  " + c.Name,
				formatScore(c.Score),
				fmt.Sprintf("%s%%", strconv.FormatFloat(c.Weight, 'f', -1, 64)),
				fmt.Sprintf("%d/%d criteria", c.Evaluated, c.Total),
			})
		}
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(tableBorder).
		Headers("Agent / Category", "Score", "Weight", "Coverage").
		Rows(rows...)
	fmt.Fprintf(w, "\n%s\n", t.Render())

	if len(result.Recommendations) > 0 {
		fmt.Fprintf(w, "\n%s\n", headerStyle.Render("Recommendations"))
		for _, r := range result.Recommendations {
			severity := string(r.Severity)
			if severity == "" {
				severity = "unscored"
			}
			fmt.Fprintf(w, "%2d. [%s] %s / %s / %s\n", r.Rank, severity, r.Agent, r.Category, r.Criterion)
			if r.Finding != "" {
				fmt.Fprintf(w, "    %s\n", r.Finding)
			}
			if r.Recommendation != "" {
				fmt.Fprintf(w, "    -> %s\n", r.Recommendation)
			}
		}
	}

	if len(result.Notes) > 0 {
		fmt.Fprintf(w, "\n%s\n", headerStyle.Render("Notes"))
		for _, n := range result.Notes {
			fmt.Fprintf(w, "  - %s %s\n", mutedStyle.Render("["+string(n.Kind)+"]"), n.Message)
		}
	}
}

func labelStyle(label string) lipgloss.Style {
	switch label {
	case "Excellent", "Good":
		return okStyle
	case "Acceptable":
		return warningStyle
	case domain.LabelInsufficientData:
		return mutedStyle
	default:
		return errorStyle
	}
}

// renderTemplates prints a template listing.
func renderTemplates(w io.Writer, list []ports.TemplateMeta) {
	if len(list) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No templates match the filter."))
		return
	}
	rows := make([][]string, 0, len(list))
	for _, m := range list {
		rows = append(rows, []string{m.ID, m.Name, m.DocumentType, m.Difficulty, industryLabel(m.Industry), truncate(m.Description, 50)})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(tableBorder).
		Headers("ID", "Name", "Type", "Difficulty", "Industry", "Description").
		Rows(rows...)
	fmt.Fprintln(w, t.Render())
}

// renderPreview prints the shape of a template.
func renderPreview(w io.Writer, p ports.TemplatePreview) {
	fmt.Fprintf(w, "%s %s\n", headerStyle.Render("Template Preview:"), p.Meta.Name)
	fmt.Fprintf(w, "Type: %s\nDifficulty: %s\nDescription: %s\n", p.Meta.DocumentType, p.Meta.Difficulty, p.Meta.Description)
	fmt.Fprintf(w, "%d agents, %d categories, %d criteria\n", p.AgentCount, p.CategoryCount, p.CriteriaCount)

	for _, a := range p.Agents {
		fmt.Fprintf(w, "\n%s\n", headerStyle.Render(a.Name+":"))
		for _, c := range a.Categories {
			fmt.Fprintf(w, "  - %s (%s%% weight, %d criteria)\n",
				c.Name, strconv.FormatFloat(c.Weight, 'f', -1, 64), c.CriteriaCount)
		}
	}

	fmt.Fprintf(w, "\n%s\n", headerStyle.Render("Agent Weights:"))
	for _, a := range p.Agents {
		fmt.Fprintf(w, "  - %s: %s%%\n", industryLabel(string(a.Type)), strconv.FormatFloat(a.Weight, 'f', -1, 64))
	}
}

func formatScore(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// industryLabel renders snake_case identifiers as words.
func industryLabel(s string) string {
	if s == "" {
		return "General"
	}
	return cases.Title(language.English).String(strings.ReplaceAll(s, "_", " "))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
