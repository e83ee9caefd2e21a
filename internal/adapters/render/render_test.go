package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"gopkg.in/yaml.v3"

	"github.com/okian/churnscope/internal/domain/explore"
	"github.com/okian/churnscope/internal/domain/types"
)

func sampleReport() Report {
	csm := types.FrequencyEntry{Name: "csm", Count: 2, Percent: 66.7}
	analyst := types.FrequencyEntry{Name: "analyst", Count: 1, Percent: 33.3}
	review := types.FrequencyEntry{Name: "account review", Count: 3, Percent: 100}
	return Report{
		Source: "sample.csv",
		Summary: types.Summary{
			TotalSessions:      3,
			Personas:           []types.FrequencyEntry{csm, analyst},
			PrimaryPersona:     csm,
			Tasks:              []types.FrequencyEntry{review},
			TopTask:            review,
			Top3Tasks:          []types.FrequencyEntry{review},
			ToolsUsage:         []types.FrequencyEntry{{Name: "tableau", Count: 3, Percent: 100}},
			AvgToolsPerSession: 1,
			CRMPrevalencePct:   33.3,
			DistinctPersonas:   2,
		},
		Diagnostics: []types.Diagnostic{{
			Kind:    types.DiagnosticToolSourceOverlap,
			Message: "tools also reported as data sources: crm",
			Names:   []string{"crm"},
		}},
	}
}

func TestFormatLabel(t *testing.T) {
	Convey("FormatLabel capitalizes the first letter only", t, func() {
		So(FormatLabel("csm"), ShouldEqual, "Csm")
		So(FormatLabel("usage logs"), ShouldEqual, "Usage logs")
		So(FormatLabel("API logs"), ShouldEqual, "API logs")
		So(FormatLabel("élan"), ShouldEqual, "Élan")
		So(FormatLabel(""), ShouldEqual, "")
	})
}

func TestParseFormat(t *testing.T) {
	Convey("Given format names", t, func() {
		f, err := ParseFormat(" YAML ")
		So(err, ShouldBeNil)
		So(f, ShouldEqual, FormatYAML)

		_, err = ParseFormat("xml")
		So(errors.Is(err, ErrUnknownFormat), ShouldBeTrue)
	})
}

func TestReports(t *testing.T) {
	Convey("Given a single report", t, func() {
		r := sampleReport()
		var buf bytes.Buffer

		Convey("When rendered as JSON", func() {
			So(Reports(&buf, FormatJSON, []Report{r}), ShouldBeNil)

			Convey("Then it decodes back to the same summary", func() {
				var got Report
				So(json.Unmarshal(buf.Bytes(), &got), ShouldBeNil)
				So(got.Summary.TotalSessions, ShouldEqual, 3)
				So(got.Summary.Personas, ShouldResemble, r.Summary.Personas)
				So(buf.String(), ShouldContainSubstring, `"crmPrevalencePct": 33.3`)
			})
		})

		Convey("When rendered as YAML", func() {
			So(Reports(&buf, FormatYAML, []Report{r}), ShouldBeNil)

			Convey("Then snake case keys are used", func() {
				So(buf.String(), ShouldContainSubstring, "total_sessions: 3")
				var got Report
				So(yaml.Unmarshal(buf.Bytes(), &got), ShouldBeNil)
				So(got.Summary.PrimaryPersona, ShouldResemble, r.Summary.PrimaryPersona)
			})
		})

		Convey("When rendered as a table", func() {
			So(Reports(&buf, FormatTable, []Report{r}), ShouldBeNil)
			out := buf.String()

			Convey("Then headline figures and sections are present", func() {
				So(out, ShouldContainSubstring, "Source: sample.csv")
				So(out, ShouldContainSubstring, "Csm (2, 66.7%)")
				So(out, ShouldContainSubstring, "CRM prevalence:")
				So(out, ShouldContainSubstring, "33.3%")
				So(out, ShouldContainSubstring, "Personas")
				So(out, ShouldContainSubstring, "[tool_source_overlap]")
			})

			Convey("And entry rows are aligned", func() {
				var rows []string
				for _, line := range strings.Split(out, "\n") {
					if strings.HasPrefix(line, "  Csm") || strings.HasPrefix(line, "  Analyst") {
						rows = append(rows, line)
					}
				}
				So(rows, ShouldHaveLength, 2)
				So(len(rows[0]), ShouldEqual, len(rows[1]))
			})

			Convey("And empty sections say so", func() {
				So(out, ShouldContainSubstring, "(none)")
			})
		})
	})

	Convey("Given several reports", t, func() {
		var buf bytes.Buffer
		So(Reports(&buf, FormatJSON, []Report{sampleReport(), sampleReport()}), ShouldBeNil)

		var got []Report
		So(json.Unmarshal(buf.Bytes(), &got), ShouldBeNil)
		So(got, ShouldHaveLength, 2)
	})

	Convey("Given an unknown format", t, func() {
		So(errors.Is(Reports(&bytes.Buffer{}, Format("xml"), nil), ErrUnknownFormat), ShouldBeTrue)
	})
}

func TestFacets(t *testing.T) {
	Convey("Given facets", t, func() {
		f := explore.Facets{JobTitles: []string{"analyst", "csm"}, Tools: []string{"crm"}}
		var buf bytes.Buffer

		So(Facets(&buf, FormatTable, f), ShouldBeNil)
		So(buf.String(), ShouldContainSubstring, "Job titles:\n  - Analyst\n  - Csm\n")
		So(buf.String(), ShouldContainSubstring, "Task categories:\n  (none)\n")
	})
}
