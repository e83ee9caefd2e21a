// Package normalize turns raw dataset rows into cleaned observations.
package normalize

import (
	"github.com/okian/churnscope/internal/domain/model"
	"github.com/okian/churnscope/internal/domain/schema"
)

// Option applies a configuration option to the Normalizer.
type Option func(*Normalizer)

// WithCanonicalizer replaces the data-source synonym table.
func WithCanonicalizer(c Canonicalizer) Option {
	return func(n *Normalizer) {
		n.canon = c
	}
}

// Normalizer maps raw rows to observations using a resolved column mapping.
type Normalizer struct {
	canon Canonicalizer
}

// New creates a Normalizer backed by the default synonym table.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{canon: DefaultCanonicalizer()}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize cleans a single row. Fields whose column is missing from the
// row are treated as absent.
func (n *Normalizer) Normalize(row model.RawRow, cols schema.Columns) model.Observation {
	sources := SplitAndClean(row[cols.DataSourcesAccessed])
	for i, s := range sources {
		sources[i] = n.canon.Canonicalize(s)
	}

	return model.Observation{
		ID:                  IdentifierString(row[cols.ObservationID]),
		JobTitle:            CleanScalar(row[cols.JobTitle]),
		SessionDate:         ParseSessionDate(row[cols.SessionDate]),
		TaskCategory:        CleanScalar(row[cols.TaskCategory]),
		ToolsUsed:           SplitAndClean(row[cols.ToolsUsed]),
		DataSourcesAccessed: sources,
	}
}

// NormalizeAll cleans every row and keeps the retained ones in input order.
// dropped counts rows rejected for a missing identity field.
func (n *Normalizer) NormalizeAll(rows []model.RawRow, cols schema.Columns) (kept []model.Observation, dropped int) {
	kept = make([]model.Observation, 0, len(rows))
	for _, row := range rows {
		obs := n.Normalize(row, cols)
		if !obs.Retained() {
			dropped++
			continue
		}
		kept = append(kept, obs)
	}
	return kept, dropped
}
