package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/churnscope/internal/adapters/render"
	"github.com/okian/churnscope/internal/config"
	"github.com/okian/churnscope/internal/domain/schema"
)

var samplePath = filepath.Join("..", "internal", "adapters", "ingest", "testdata", "observations_sample.csv")

func execute(stdin string, args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTemp(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestColumnsCommand(t *testing.T) {
	convey.Convey("Given the columns command", t, func() {
		out, _, err := execute("", "columns")

		convey.Convey("Then the required columns are printed in order", func() {
			convey.So(err, convey.ShouldBeNil)
			convey.So(strings.Fields(out), convey.ShouldResemble, []string{
				"observation_id", "job_title", "session_date",
				"task_category", "tools_used", "data_sources_accessed",
			})
		})
	})
}

func TestSummarizeCommand(t *testing.T) {
	convey.Convey("Given the sample dataset", t, func() {
		convey.Convey("When summarizing as JSON", func() {
			out, _, err := execute("", "summarize", "--format", "json", samplePath)
			convey.So(err, convey.ShouldBeNil)

			var report render.Report
			convey.So(json.Unmarshal([]byte(out), &report), convey.ShouldBeNil)

			convey.Convey("Then the summary covers every session", func() {
				convey.So(report.Source, convey.ShouldEqual, samplePath)
				convey.So(report.Summary.TotalSessions, convey.ShouldEqual, 50)
				convey.So(report.Summary.PrimaryPersona.Name, convey.ShouldEqual, "csm")
				convey.So(report.Diagnostics, convey.ShouldBeEmpty)
				convey.So(report.Summary.Observations, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When observations are requested", func() {
			out, _, err := execute("", "summarize", "--format", "json", "--observations", samplePath)
			convey.So(err, convey.ShouldBeNil)

			var report render.Report
			convey.So(json.Unmarshal([]byte(out), &report), convey.ShouldBeNil)
			convey.So(report.Summary.Observations, convey.ShouldHaveLength, 50)
			convey.So(report.Summary.Observations[0].ToolsUsed, convey.ShouldResemble, []string{"salesforce", "tableau"})
		})

		convey.Convey("When summarizing the same file twice", func() {
			out, _, err := execute("", "summarize", "-f", "json", "--concurrency", "2", samplePath, samplePath)
			convey.So(err, convey.ShouldBeNil)

			var reports []render.Report
			convey.So(json.Unmarshal([]byte(out), &reports), convey.ShouldBeNil)

			convey.Convey("Then one report per argument is printed", func() {
				convey.So(reports, convey.ShouldHaveLength, 2)
				convey.So(reports[0].Summary.Personas, convey.ShouldResemble, reports[1].Summary.Personas)
			})
		})

		convey.Convey("When filtering by job title", func() {
			out, _, err := execute("", "summarize", "--format", "json", "--filter-job-title", "CSM", samplePath)
			convey.So(err, convey.ShouldBeNil)

			var report render.Report
			convey.So(json.Unmarshal([]byte(out), &report), convey.ShouldBeNil)
			convey.So(report.Summary.TotalSessions, convey.ShouldEqual, 15)
			convey.So(report.Summary.DistinctPersonas, convey.ShouldEqual, 1)
		})

		convey.Convey("When rendering a table", func() {
			out, _, err := execute("", "summarize", samplePath)
			convey.So(err, convey.ShouldBeNil)
			convey.So(out, convey.ShouldContainSubstring, "Total sessions:")
			convey.So(out, convey.ShouldContainSubstring, "Csm (15, 30.0%)")
		})

		convey.Convey("When a metrics dump is requested", func() {
			dump := filepath.Join(t.TempDir(), "metrics.prom")
			_, _, err := execute("", "summarize", "--format", "yaml", "--metrics-out", dump, samplePath)
			convey.So(err, convey.ShouldBeNil)

			content, readErr := os.ReadFile(dump)
			convey.So(readErr, convey.ShouldBeNil)
			convey.So(string(content), convey.ShouldContainSubstring, "churnscope_pipeline_computations_total")
			convey.So(string(content), convey.ShouldContainSubstring, `churnscope_pipeline_files_loaded_total{format="csv",outcome="ok"}`)
		})
	})

	convey.Convey("Given CSV on stdin", t, func() {
		csv := "Observation ID,Job Title,Session Date,Task Category,Tools Used,Data Sources Accessed\n" +
			"1,CSM,2024-01-15,Account Review,\"Excel, CRM\",CRM\n"
		out, _, err := execute(csv, "summarize", "--format", "json", "-")

		convey.So(err, convey.ShouldBeNil)
		var report render.Report
		convey.So(json.Unmarshal([]byte(out), &report), convey.ShouldBeNil)
		convey.So(report.Summary.TotalSessions, convey.ShouldEqual, 1)
		convey.So(report.Summary.CRMPrevalencePct, convey.ShouldEqual, 100)
	})

	convey.Convey("Given a dataset without a tools column", t, func() {
		path := writeTemp(t, "partial.csv", "observation_id,job_title,session_date,task_category,data_sources_accessed\n1,CSM,2024-01-01,Review,CRM\n")
		_, _, err := execute("", "summarize", path)

		convey.Convey("Then the missing column error is returned", func() {
			convey.So(errors.Is(err, schema.ErrMissingColumns), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "tools_used")
		})
	})

	convey.Convey("Given a file that does not exist", t, func() {
		_, _, err := execute("", "summarize", filepath.Join(t.TempDir(), "absent.csv"))
		convey.So(err, convey.ShouldNotBeNil)
	})

	convey.Convey("Given an unknown output format", t, func() {
		_, _, err := execute("", "summarize", "--format", "xml", samplePath)
		convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
	})

	convey.Convey("Given no files", t, func() {
		_, _, err := execute("", "summarize")
		convey.So(err, convey.ShouldNotBeNil)
	})
}

func TestFacetsCommand(t *testing.T) {
	convey.Convey("Given the sample dataset", t, func() {
		out, _, err := execute("", "facets", "--format", "json", samplePath)
		convey.So(err, convey.ShouldBeNil)

		var facets struct {
			JobTitles []string `json:"jobTitles"`
			Sources   []string `json:"sources"`
		}
		convey.So(json.Unmarshal([]byte(out), &facets), convey.ShouldBeNil)

		convey.Convey("Then cleaned distinct values are listed", func() {
			convey.So(facets.JobTitles, convey.ShouldResemble, []string{"am", "analyst", "csm", "ops manager"})
			convey.So(facets.Sources, convey.ShouldContain, "usage logs")
		})
	})
}
