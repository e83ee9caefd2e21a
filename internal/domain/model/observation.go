// Package model contains domain models passed between pipeline stages.
package model

import "time"

// RawRow is one record of a tabular dataset keyed by the column header as
// it appeared in the source. Values are strings, numbers, booleans,
// time.Time or nil.
type RawRow map[string]any

// Logical column names every dataset must provide.
const (
	ColumnObservationID       = "observation_id"
	ColumnJobTitle            = "job_title"
	ColumnSessionDate         = "session_date"
	ColumnTaskCategory        = "task_category"
	ColumnToolsUsed           = "tools_used"
	ColumnDataSourcesAccessed = "data_sources_accessed"
)

// RequiredColumns lists the logical columns in reporting order.
func RequiredColumns() []string {
	return []string{
		ColumnObservationID,
		ColumnJobTitle,
		ColumnSessionDate,
		ColumnTaskCategory,
		ColumnToolsUsed,
		ColumnDataSourcesAccessed,
	}
}

// Observation is a cleaned workflow session.
type Observation struct {
	ID                  string     `json:"observation_id" yaml:"observation_id"`
	JobTitle            string     `json:"job_title" yaml:"job_title"`
	SessionDate         *time.Time `json:"session_date" yaml:"session_date"` // nil when absent or unparseable
	TaskCategory        string     `json:"task_category" yaml:"task_category"`
	ToolsUsed           []string   `json:"tools_used" yaml:"tools_used"`
	DataSourcesAccessed []string   `json:"data_sources_accessed" yaml:"data_sources_accessed"`
}

// Retained reports whether the observation carries the identity fields
// required to count as a session.
func (o Observation) Retained() bool {
	return o.ID != "" && o.JobTitle != "" && o.TaskCategory != ""
}
