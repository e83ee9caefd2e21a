// Package aggregate computes frequency tables and per-session averages over
// cleaned observations.
package aggregate

import (
	"math"
	"strings"

	"github.com/okian/churnscope/internal/domain/model"
)

// Tables holds the raw counts for one dataset.
type Tables struct {
	Total int

	Personas    *Counter
	Tasks       *Counter
	Tools       *Counter
	DataSources *Counter

	AvgTools       float64
	AvgDataSources float64

	// CRMSessions counts sessions whose data sources mention "crm".
	CRMSessions int
	// MultiToolSessions counts sessions that used two or more tools.
	MultiToolSessions int
}

// Aggregate builds the frequency tables for obs. It fails with
// ErrNoValidData when obs is empty.
func Aggregate(obs []model.Observation) (Tables, error) {
	if len(obs) == 0 {
		return Tables{}, ErrNoValidData
	}

	t := Tables{
		Total:       len(obs),
		Personas:    NewCounter(),
		Tasks:       NewCounter(),
		Tools:       NewCounter(),
		DataSources: NewCounter(),
	}

	var toolTokens, sourceTokens int
	for _, o := range obs {
		t.Personas.Add(o.JobTitle)
		t.Tasks.Add(o.TaskCategory)
		for _, tool := range o.ToolsUsed {
			t.Tools.Add(tool)
		}
		for _, src := range o.DataSourcesAccessed {
			t.DataSources.Add(src)
		}
		toolTokens += len(o.ToolsUsed)
		sourceTokens += len(o.DataSourcesAccessed)

		if MentionsCRM(o.DataSourcesAccessed) {
			t.CRMSessions++
		}
		if len(o.ToolsUsed) >= 2 {
			t.MultiToolSessions++
		}
	}

	t.AvgTools = Round1(float64(toolTokens) / float64(t.Total))
	t.AvgDataSources = Round1(float64(sourceTokens) / float64(t.Total))
	return t, nil
}

// MentionsCRM reports whether any token contains "crm", ignoring case.
// It looks at substrings, so canonical labels like "CRM data" match too.
func MentionsCRM(sources []string) bool {
	for _, s := range sources {
		if strings.Contains(strings.ToLower(s), "crm") {
			return true
		}
	}
	return false
}

// Round1 rounds x to one decimal place by scaling.
func Round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// Percent returns count/total as a percentage with one decimal place.
func Percent(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*1000) / 10
}
