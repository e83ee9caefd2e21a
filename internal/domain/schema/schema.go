// Package schema checks that a raw dataset exposes the required columns
// and resolves the header names used by later stages.
package schema

import (
	"regexp"
	"sort"
	"strings"

	"github.com/okian/churnscope/internal/domain/model"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeColumnName lowercases s, collapses every run of characters
// outside [a-z0-9] to a single underscore and strips one leading and one
// trailing underscore.
func NormalizeColumnName(s string) string {
	n := nonAlnum.ReplaceAllString(strings.ToLower(s), "_")
	n = strings.TrimPrefix(n, "_")
	return strings.TrimSuffix(n, "_")
}

// Columns maps each logical column to the raw header it was found under.
// It is resolved once from the first row and applied to every row.
type Columns struct {
	ObservationID       string
	JobTitle            string
	SessionDate         string
	TaskCategory        string
	ToolsUsed           string
	DataSourcesAccessed string
}

// Lookup returns the raw header for a logical column name.
func (c Columns) Lookup(logical string) (string, bool) {
	switch logical {
	case model.ColumnObservationID:
		return c.ObservationID, true
	case model.ColumnJobTitle:
		return c.JobTitle, true
	case model.ColumnSessionDate:
		return c.SessionDate, true
	case model.ColumnTaskCategory:
		return c.TaskCategory, true
	case model.ColumnToolsUsed:
		return c.ToolsUsed, true
	case model.ColumnDataSourcesAccessed:
		return c.DataSourcesAccessed, true
	}
	return "", false
}

// Resolve validates rows and builds the column mapping from the keys of
// rows[0]. Later rows are assumed to share that header; a row lacking a
// mapped key simply reads as an absent field.
func Resolve(rows []model.RawRow) (Columns, error) {
	if len(rows) == 0 {
		return Columns{}, ErrEmptyDataset
	}

	raw := make([]string, 0, len(rows[0]))
	for k := range rows[0] {
		raw = append(raw, k)
	}
	// Sorted so that headers colliding after normalization resolve the same
	// way on every call.
	sort.Strings(raw)

	byName := make(map[string]string, len(raw))
	for _, k := range raw {
		byName[NormalizeColumnName(k)] = k
	}

	var missing []string
	for _, want := range model.RequiredColumns() {
		if _, ok := byName[want]; !ok {
			missing = append(missing, want)
		}
	}
	if len(missing) > 0 {
		return Columns{}, &MissingColumnsError{Missing: missing}
	}

	return Columns{
		ObservationID:       byName[model.ColumnObservationID],
		JobTitle:            byName[model.ColumnJobTitle],
		SessionDate:         byName[model.ColumnSessionDate],
		TaskCategory:        byName[model.ColumnTaskCategory],
		ToolsUsed:           byName[model.ColumnToolsUsed],
		DataSourcesAccessed: byName[model.ColumnDataSourcesAccessed],
	}, nil
}
