// Package summary assembles the derived metrics handed to presentation code.
package summary

import (
	"github.com/okian/churnscope/internal/domain/aggregate"
	"github.com/okian/churnscope/internal/domain/model"
	"github.com/okian/churnscope/internal/domain/types"
)

// Slice limits for the ranked lists.
const (
	TopTasksLimit    = 3
	ToolsUsageLimit  = 8
	DataSourcesLimit = 8
)

// Entries converts ranked counts into frequency entries against total.
func Entries(counts []aggregate.Count, total int) []types.FrequencyEntry {
	out := make([]types.FrequencyEntry, len(counts))
	for i, c := range counts {
		out[i] = types.FrequencyEntry{
			Name:    c.Name,
			Count:   c.Count,
			Percent: aggregate.Percent(c.Count, total),
		}
	}
	return out
}

// Assemble builds the Summary from aggregated tables. obs is attached as the
// retained observation list and is not inspected.
func Assemble(t aggregate.Tables, obs []model.Observation) types.Summary {
	personas := Entries(t.Personas.Ranked(), t.Total)
	tasks := Entries(t.Tasks.Ranked(), t.Total)
	tools := Entries(t.Tools.Ranked(), t.Total)
	sources := Entries(t.DataSources.Ranked(), t.Total)

	s := types.Summary{
		TotalSessions:            t.Total,
		Personas:                 personas,
		Tasks:                    tasks,
		Top3Tasks:                head(tasks, TopTasksLimit),
		ToolsUsage:               head(tools, ToolsUsageLimit),
		DataSourcesUsage:         head(sources, DataSourcesLimit),
		AvgToolsPerSession:       t.AvgTools,
		AvgDataSourcesPerSession: t.AvgDataSources,
		CRMPrevalencePct:         aggregate.Percent(t.CRMSessions, t.Total),
		DistinctPersonas:         t.Personas.Len(),
		MultiToolSessionsPct:     aggregate.Percent(t.MultiToolSessions, t.Total),
		Observations:             obs,
	}
	if len(personas) > 0 {
		s.PrimaryPersona = personas[0]
	}
	if len(tasks) > 0 {
		s.TopTask = tasks[0]
	}
	return s
}

// head returns at most n leading entries as an independent slice.
func head(entries []types.FrequencyEntry, n int) []types.FrequencyEntry {
	if len(entries) < n {
		n = len(entries)
	}
	out := make([]types.FrequencyEntry, n)
	copy(out, entries[:n])
	return out
}
