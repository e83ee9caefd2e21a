// Package render writes summaries and facets as JSON, YAML or aligned text
// tables.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"

	"github.com/okian/churnscope/internal/domain/explore"
	"github.com/okian/churnscope/internal/domain/types"
)

// Format names an output encoding.
type Format string

// Supported output formats.
const (
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatTable Format = "table"
)

// ErrUnknownFormat is returned for an output format that is not supported.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat validates an output format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatYAML, FormatTable:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Report is one rendered computation.
type Report struct {
	Source      string             `json:"source,omitempty" yaml:"source,omitempty"`
	Summary     types.Summary      `json:"summary" yaml:"summary"`
	Diagnostics []types.Diagnostic `json:"diagnostics" yaml:"diagnostics"`
	Dropped     int                `json:"dropped" yaml:"dropped"`
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// YAML writes v as a YAML document.
func YAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// Reports writes reports in the requested format. JSON and YAML emit a
// single object for one report and a list otherwise.
func Reports(w io.Writer, format Format, reports []Report) error {
	var v any = reports
	if len(reports) == 1 {
		v = reports[0]
	}
	switch format {
	case FormatJSON:
		return JSON(w, v)
	case FormatYAML:
		return YAML(w, v)
	case FormatTable:
		for i, r := range reports {
			if i > 0 {
				if _, err := io.WriteString(w, "\n"); err != nil {
					return err
				}
			}
			if err := Table(w, r); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Facets writes filterable values in the requested format.
func Facets(w io.Writer, format Format, f explore.Facets) error {
	switch format {
	case FormatJSON:
		return JSON(w, f)
	case FormatYAML:
		return YAML(w, f)
	case FormatTable:
		tw := &tableWriter{w: w}
		tw.list("Job titles", f.JobTitles)
		tw.list("Task categories", f.TaskCategories)
		tw.list("Tools", f.Tools)
		tw.list("Data sources", f.Sources)
		return tw.err
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Table writes a report as aligned plain text.
func Table(w io.Writer, r Report) error {
	s := r.Summary
	tw := &tableWriter{w: w}

	if r.Source != "" {
		tw.printf("Source: %s\n", r.Source)
	}
	tw.pairs([][2]string{
		{"Total sessions", fmt.Sprintf("%d", s.TotalSessions)},
		{"Dropped rows", fmt.Sprintf("%d", r.Dropped)},
		{"Primary persona", entryLabel(s.PrimaryPersona)},
		{"Distinct personas", fmt.Sprintf("%d", s.DistinctPersonas)},
		{"Top task", entryLabel(s.TopTask)},
		{"Avg tools per session", fmt.Sprintf("%.1f", s.AvgToolsPerSession)},
		{"Avg data sources per session", fmt.Sprintf("%.1f", s.AvgDataSourcesPerSession)},
		{"CRM prevalence", fmt.Sprintf("%.1f%%", s.CRMPrevalencePct)},
		{"Multi-tool sessions", fmt.Sprintf("%.1f%%", s.MultiToolSessionsPct)},
	})

	tw.entries("Personas", s.Personas)
	tw.entries("Top tasks", s.Top3Tasks)
	tw.entries("Tools", s.ToolsUsage)
	tw.entries("Data sources", s.DataSourcesUsage)

	if len(r.Diagnostics) > 0 {
		tw.printf("\nDiagnostics\n")
		for _, d := range r.Diagnostics {
			tw.printf("  [%s] %s\n", d.Kind, d.Message)
		}
	}
	return tw.err
}

// FormatLabel upper-cases the first letter of a label for display.
func FormatLabel(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func entryLabel(e types.FrequencyEntry) string {
	if e.Name == "" {
		return "-"
	}
	return fmt.Sprintf("%s (%d, %.1f%%)", FormatLabel(e.Name), e.Count, e.Percent)
}

type tableWriter struct {
	w   io.Writer
	err error
}

func (t *tableWriter) printf(format string, args ...any) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, format, args...)
}

func (t *tableWriter) pairs(rows [][2]string) {
	width := 0
	for _, r := range rows {
		width = max(width, runewidth.StringWidth(r[0]))
	}
	for _, r := range rows {
		t.printf("%s  %s\n", runewidth.FillRight(r[0]+":", width+1), r[1])
	}
}

func (t *tableWriter) entries(title string, entries []types.FrequencyEntry) {
	t.printf("\n%s\n", title)
	if len(entries) == 0 {
		t.printf("  (none)\n")
		return
	}

	nameWidth := runewidth.StringWidth("Name")
	for _, e := range entries {
		nameWidth = max(nameWidth, runewidth.StringWidth(FormatLabel(e.Name)))
	}

	t.printf("  %s  %6s  %7s\n", runewidth.FillRight("Name", nameWidth), "Count", "Percent")
	for _, e := range entries {
		t.printf("  %s  %6d  %6.1f%%\n", runewidth.FillRight(FormatLabel(e.Name), nameWidth), e.Count, e.Percent)
	}
}

func (t *tableWriter) list(title string, values []string) {
	t.printf("%s:\n", title)
	if len(values) == 0 {
		t.printf("  (none)\n")
		return
	}
	for _, v := range values {
		t.printf("  - %s\n", FormatLabel(v))
	}
}
