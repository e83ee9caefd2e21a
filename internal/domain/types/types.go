// Package types contains the output shapes handed to presentation code.
package types

import "github.com/okian/churnscope/internal/domain/model"

// FrequencyEntry is one row of a sorted distribution.
type FrequencyEntry struct {
	Name    string  `json:"name" yaml:"name"`
	Count   int     `json:"count" yaml:"count"`
	Percent float64 `json:"percent" yaml:"percent"`
}

// Summary is the metrics summary computed from one dataset.
type Summary struct {
	TotalSessions int `json:"totalSessions" yaml:"total_sessions"`

	Personas       []FrequencyEntry `json:"personas" yaml:"personas"`
	PrimaryPersona FrequencyEntry   `json:"primaryPersona" yaml:"primary_persona"`

	Tasks     []FrequencyEntry `json:"tasks" yaml:"tasks"`
	TopTask   FrequencyEntry   `json:"topTask" yaml:"top_task"`
	Top3Tasks []FrequencyEntry `json:"top3Tasks" yaml:"top3_tasks"`

	ToolsUsage       []FrequencyEntry `json:"toolsUsage" yaml:"tools_usage"`
	DataSourcesUsage []FrequencyEntry `json:"dataSourcesUsage" yaml:"data_sources_usage"`

	AvgToolsPerSession       float64 `json:"avgToolsPerSession" yaml:"avg_tools_per_session"`
	AvgDataSourcesPerSession float64 `json:"avgDataSourcesPerSession" yaml:"avg_data_sources_per_session"`
	CRMPrevalencePct         float64 `json:"crmPrevalencePct" yaml:"crm_prevalence_pct"`

	DistinctPersonas     int     `json:"distinctPersonas" yaml:"distinct_personas"`
	MultiToolSessionsPct float64 `json:"multiToolSessionsPct" yaml:"multi_tool_sessions_pct"`

	Observations []model.Observation `json:"observations,omitempty" yaml:"observations,omitempty"`
}

// DiagnosticKind classifies an advisory data-quality finding.
type DiagnosticKind string

// Diagnostic kinds.
const (
	DiagnosticPersonaPercentSum      DiagnosticKind = "persona_percent_sum"
	DiagnosticTaskPercentSum         DiagnosticKind = "task_percent_sum"
	DiagnosticToolSourceOverlap      DiagnosticKind = "tool_source_overlap"
	DiagnosticDuplicateObservationID DiagnosticKind = "duplicate_observation_id"
)

// Diagnostic is a non-fatal finding surfaced alongside a Summary.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind" yaml:"kind"`
	Message string         `json:"message" yaml:"message"`
	Names   []string       `json:"names,omitempty" yaml:"names,omitempty"`
	Value   float64        `json:"value,omitempty" yaml:"value,omitempty"`
}
