// Package service runs the metrics pipeline: schema validation, row
// normalization, optional explorer filtering, aggregation, summary assembly
// and consistency checks.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/churnscope/internal/domain/aggregate"
	"github.com/okian/churnscope/internal/domain/consistency"
	"github.com/okian/churnscope/internal/domain/explore"
	"github.com/okian/churnscope/internal/domain/model"
	"github.com/okian/churnscope/internal/domain/normalize"
	"github.com/okian/churnscope/internal/domain/schema"
	"github.com/okian/churnscope/internal/domain/summary"
	"github.com/okian/churnscope/internal/domain/types"
	"github.com/okian/churnscope/pkg/logger"
	"github.com/okian/churnscope/pkg/metrics"
)

// Result is the outcome of one successful computation.
type Result struct {
	Summary     types.Summary      `json:"summary" yaml:"summary"`
	Diagnostics []types.Diagnostic `json:"diagnostics" yaml:"diagnostics"`
	// Dropped counts rows rejected for a missing observation id, job title
	// or task category.
	Dropped int `json:"dropped" yaml:"dropped"`
}

// Service computes metric summaries. It holds only immutable configuration
// and is safe for concurrent use.
type Service struct {
	logger     logger.Logger
	metrics    *metrics.Manager
	canon      normalize.Canonicalizer
	normalizer *normalize.Normalizer
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithCanonicalizer replaces the data-source synonym table.
func WithCanonicalizer(c normalize.Canonicalizer) Option {
	return func(s *Service) {
		s.canon = c
	}
}

// WithMetrics sets the metrics manager computations are recorded on.
func WithMetrics(m *metrics.Manager) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// New constructs a Service. Without WithLogger it logs through the global
// logger when one is initialized and discards logs otherwise.
func New(opts ...Option) *Service {
	s := &Service{
		metrics: metrics.Default(),
		canon:   normalize.DefaultCanonicalizer(),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = defaultLogger()
	}
	s.logger = s.logger.Named("pipeline")
	s.normalizer = normalize.New(normalize.WithCanonicalizer(s.canon))

	return s
}

func defaultLogger() (l logger.Logger) {
	defer func() {
		if recover() != nil {
			l = logger.Nop()
		}
	}()
	return logger.Get()
}

type computeOptions struct {
	filter explore.Filter
}

// ComputeOption customizes a single Compute call.
type ComputeOption func(*computeOptions)

// WithFilter restricts the computation to observations passing f. Filter
// values are cleaned like observation fields before matching.
func WithFilter(f explore.Filter) ComputeOption {
	return func(o *computeOptions) {
		o.filter = f
	}
}

// Compute validates rows, normalizes them and returns the metrics summary
// with any advisory diagnostics. Empty input, missing required columns and
// an empty retained set are the only failures.
func (s *Service) Compute(ctx context.Context, rows []model.RawRow, opts ...ComputeOption) (*Result, error) {
	var co computeOptions
	for _, opt := range opts {
		opt(&co)
	}

	start := time.Now()
	log := s.logger.With(logger.String("run_id", uuid.NewString()))
	log.Debug(ctx, "computing summary", logger.Int("rows", len(rows)))

	res, err := s.compute(ctx, log, rows, co)
	elapsed := float64(time.Since(start).Microseconds()) / 1000

	if err != nil {
		s.metrics.RecordComputation(outcomeOf(err), elapsed)
		log.Error(ctx, "computation failed", logger.Error(err))
		return nil, err
	}

	s.metrics.RecordComputation(metrics.OutcomeOK, elapsed)
	s.metrics.UpdateLastSummary(res.Summary.TotalSessions, res.Summary.CRMPrevalencePct)
	log.Info(ctx, "summary computed",
		logger.Int("sessions", res.Summary.TotalSessions),
		logger.Int("dropped", res.Dropped),
		logger.Int("diagnostics", len(res.Diagnostics)),
		logger.Float64("duration_ms", elapsed),
	)
	return res, nil
}

func (s *Service) compute(ctx context.Context, log logger.Logger, rows []model.RawRow, co computeOptions) (*Result, error) {
	cols, err := schema.Resolve(rows)
	if err != nil {
		return nil, fmt.Errorf("validate columns: %w", err)
	}

	kept, dropped := s.normalizer.NormalizeAll(rows, cols)
	s.metrics.RecordRows(len(rows), dropped)
	if dropped > 0 {
		log.Debug(ctx, "rows dropped during cleaning", logger.Int("dropped", dropped))
	}

	if !co.filter.IsZero() {
		before := len(kept)
		kept = explore.Apply(kept, co.filter.Normalized(s.canon))
		log.Debug(ctx, "filter applied", logger.Int("before", before), logger.Int("after", len(kept)))
	}

	tables, err := aggregate.Aggregate(kept)
	if err != nil {
		return nil, fmt.Errorf("aggregate observations: %w", err)
	}

	sum := summary.Assemble(tables, kept)
	diags := consistency.Check(sum, tables, kept)
	for _, d := range diags {
		s.metrics.RecordDiagnostic(string(d.Kind))
		log.Warn(ctx, d.Message,
			logger.String("kind", string(d.Kind)),
			logger.Strings("names", d.Names),
			logger.Float64("value", d.Value),
		)
	}
	if diags == nil {
		diags = []types.Diagnostic{}
	}

	return &Result{Summary: sum, Diagnostics: diags, Dropped: dropped}, nil
}

// Facets cleans rows and lists the distinct values available to filter on.
func (s *Service) Facets(ctx context.Context, rows []model.RawRow) (explore.Facets, error) {
	cols, err := schema.Resolve(rows)
	if err != nil {
		return explore.Facets{}, fmt.Errorf("validate columns: %w", err)
	}
	kept, dropped := s.normalizer.NormalizeAll(rows, cols)
	s.logger.Debug(ctx, "facets collected", logger.Int("rows", len(kept)), logger.Int("dropped", dropped))
	return explore.CollectFacets(kept), nil
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, schema.ErrEmptyDataset):
		return metrics.OutcomeEmptyDataset
	case errors.Is(err, schema.ErrMissingColumns):
		return metrics.OutcomeMissingColumns
	case errors.Is(err, aggregate.ErrNoValidData):
		return metrics.OutcomeNoValidData
	default:
		return metrics.OutcomeError
	}
}
