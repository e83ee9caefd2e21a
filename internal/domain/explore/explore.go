// Package explore narrows a set of observations the way the dashboard's
// explorer filters do, and lists the values available to filter on.
package explore

import (
	"sort"

	"github.com/okian/churnscope/internal/domain/model"
	"github.com/okian/churnscope/internal/domain/normalize"
)

// Filter selects observations. Job titles and task categories match any of
// the listed values; tools and sources require every listed value to be
// present. Empty fields match everything.
type Filter struct {
	JobTitles      []string `json:"jobTitles,omitempty"`
	TaskCategories []string `json:"taskCategories,omitempty"`
	Tools          []string `json:"tools,omitempty"`
	Sources        []string `json:"sources,omitempty"`
}

// IsZero reports whether the filter selects everything.
func (f Filter) IsZero() bool {
	return len(f.JobTitles) == 0 && len(f.TaskCategories) == 0 && len(f.Tools) == 0 && len(f.Sources) == 0
}

// Normalized cleans the filter values the same way observation fields are
// cleaned, so that user input like "CRM" matches the canonical "CRM data".
func (f Filter) Normalized(canon normalize.Canonicalizer) Filter {
	out := Filter{
		JobTitles:      cleanAll(f.JobTitles),
		TaskCategories: cleanAll(f.TaskCategories),
		Tools:          cleanAll(f.Tools),
		Sources:        cleanAll(f.Sources),
	}
	for i, s := range out.Sources {
		out.Sources[i] = canon.Canonicalize(s)
	}
	return out
}

func cleanAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if c := normalize.CleanScalar(v); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// Match reports whether obs passes the filter. Values are compared as given.
func (f Filter) Match(obs model.Observation) bool {
	if len(f.JobTitles) > 0 && !contains(f.JobTitles, obs.JobTitle) {
		return false
	}
	if len(f.TaskCategories) > 0 && !contains(f.TaskCategories, obs.TaskCategory) {
		return false
	}
	for _, tool := range f.Tools {
		if !contains(obs.ToolsUsed, tool) {
			return false
		}
	}
	for _, src := range f.Sources {
		if !contains(obs.DataSourcesAccessed, src) {
			return false
		}
	}
	return true
}

// Apply returns the observations that pass f, in input order.
func Apply(obs []model.Observation, f Filter) []model.Observation {
	if f.IsZero() {
		return obs
	}
	out := make([]model.Observation, 0, len(obs))
	for _, o := range obs {
		if f.Match(o) {
			out = append(out, o)
		}
	}
	return out
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

// Facets lists the sorted distinct values present for each filterable field.
type Facets struct {
	JobTitles      []string `json:"jobTitles" yaml:"job_titles"`
	TaskCategories []string `json:"taskCategories" yaml:"task_categories"`
	Tools          []string `json:"tools" yaml:"tools"`
	Sources        []string `json:"sources" yaml:"sources"`
}

// CollectFacets gathers the distinct filter values from obs.
func CollectFacets(obs []model.Observation) Facets {
	jobs := map[string]struct{}{}
	tasks := map[string]struct{}{}
	tools := map[string]struct{}{}
	sources := map[string]struct{}{}
	for _, o := range obs {
		jobs[o.JobTitle] = struct{}{}
		tasks[o.TaskCategory] = struct{}{}
		for _, t := range o.ToolsUsed {
			tools[t] = struct{}{}
		}
		for _, s := range o.DataSourcesAccessed {
			sources[s] = struct{}{}
		}
	}
	return Facets{
		JobTitles:      sortedKeys(jobs),
		TaskCategories: sortedKeys(tasks),
		Tools:          sortedKeys(tools),
		Sources:        sortedKeys(sources),
	}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
