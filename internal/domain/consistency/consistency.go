// Package consistency runs advisory data-quality checks over a computed
// summary. Checks never fail and never change their inputs.
package consistency

import (
	"fmt"
	"math"
	"strings"

	"github.com/okian/churnscope/internal/domain/aggregate"
	"github.com/okian/churnscope/internal/domain/model"
	"github.com/okian/churnscope/internal/domain/types"
)

// PercentTolerance is the allowed drift of a distribution's percent sum
// from 100 caused by rounding each entry independently.
const PercentTolerance = 0.1

// Check returns every diagnostic raised for the dataset.
func Check(s types.Summary, t aggregate.Tables, obs []model.Observation) []types.Diagnostic {
	var out []types.Diagnostic
	if d, ok := percentSum(types.DiagnosticPersonaPercentSum, "persona", s.Personas); ok {
		out = append(out, d)
	}
	if d, ok := percentSum(types.DiagnosticTaskPercentSum, "task", s.Tasks); ok {
		out = append(out, d)
	}
	if d, ok := toolSourceOverlap(t); ok {
		out = append(out, d)
	}
	if d, ok := duplicateIDs(obs); ok {
		out = append(out, d)
	}
	return out
}

// SumPercent adds up the percent column of a distribution.
func SumPercent(entries []types.FrequencyEntry) float64 {
	var sum float64
	for _, e := range entries {
		sum += e.Percent
	}
	return sum
}

func percentSum(kind types.DiagnosticKind, label string, entries []types.FrequencyEntry) (types.Diagnostic, bool) {
	sum := SumPercent(entries)
	// compare at 1e-9 above the tolerance so float noise in the sum does not
	// flag an exact 0.1 drift
	if math.Abs(sum-100) <= PercentTolerance+1e-9 {
		return types.Diagnostic{}, false
	}
	return types.Diagnostic{
		Kind:    kind,
		Message: fmt.Sprintf("%s percentages sum to %.1f%%, expected ~100%%", label, sum),
		Value:   sum,
	}, true
}

// toolSourceOverlap compares the full tool and data-source name spaces, not
// the top-N slices.
func toolSourceOverlap(t aggregate.Tables) (types.Diagnostic, bool) {
	if t.Tools == nil || t.DataSources == nil {
		return types.Diagnostic{}, false
	}
	sources := make(map[string]struct{}, t.DataSources.Len())
	for _, name := range t.DataSources.Names() {
		sources[name] = struct{}{}
	}
	var shared []string
	for _, c := range t.Tools.Ranked() {
		if _, ok := sources[c.Name]; ok {
			shared = append(shared, c.Name)
		}
	}
	if len(shared) == 0 {
		return types.Diagnostic{}, false
	}
	return types.Diagnostic{
		Kind:    types.DiagnosticToolSourceOverlap,
		Message: "tools contain data source names: " + strings.Join(shared, ", "),
		Names:   shared,
	}, true
}

func duplicateIDs(obs []model.Observation) (types.Diagnostic, bool) {
	seen := make(map[string]int, len(obs))
	var dups []string
	for _, o := range obs {
		seen[o.ID]++
		if seen[o.ID] == 2 {
			dups = append(dups, o.ID)
		}
	}
	if len(dups) == 0 {
		return types.Diagnostic{}, false
	}
	return types.Diagnostic{
		Kind:    types.DiagnosticDuplicateObservationID,
		Message: "observation ids appear more than once: " + strings.Join(dups, ", "),
		Names:   dups,
	}, true
}
