package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/okian/churnscope/internal/adapters/ingest"
	"github.com/okian/churnscope/internal/adapters/render"
	service "github.com/okian/churnscope/internal/app"
	"github.com/okian/churnscope/internal/config"
	"github.com/okian/churnscope/internal/domain/explore"
	"github.com/okian/churnscope/internal/domain/model"
	"github.com/okian/churnscope/pkg/logger"
	"github.com/okian/churnscope/pkg/metrics"
)

// dash names stdin for dataset arguments and stderr for the metrics dump.
const dash = "-"

// rootFlags hold command-line overrides; empty values keep the loaded config.
type rootFlags struct {
	format      string
	logLevel    string
	csvComma    string
	metricsOut  string
	concurrency int

	filter       explore.Filter
	observations bool
}

// env is the per-invocation wiring shared by every subcommand.
type env struct {
	cfg     *config.Config
	log     logger.Logger
	metrics *metrics.Manager
	svc     *service.Service
	format  render.Format
}

func newRootCmd() *cobra.Command {
	var (
		flags rootFlags
		e     env
	)

	root := &cobra.Command{
		Use:           "churnscope",
		Short:         "Summarize workflow observations into persona, task, tool and data-source metrics",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.setup(cmd, flags)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.format, "format", "f", "", "output format: json, yaml or table")
	pf.StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.StringVar(&flags.csvComma, "csv-comma", "", "field delimiter for .csv inputs")
	pf.StringVar(&flags.metricsOut, "metrics-out", "", `write a Prometheus text dump to this file ("-" for stderr)`)
	pf.IntVar(&flags.concurrency, "concurrency", 0, "maximum number of files summarized at once")

	root.AddCommand(
		newSummarizeCmd(&e, &flags),
		newFacetsCmd(&e),
		newColumnsCmd(),
	)

	root.PersistentPostRunE = func(cmd *cobra.Command, _ []string) error {
		return e.dumpMetrics(cmd)
	}

	return root
}

func (e *env) setup(cmd *cobra.Command, flags rootFlags) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// Load configuration (defaults -> optional file -> env), then flags.
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if flags.format != "" {
		cfg.OutputFormat = flags.format
	}
	if flags.logLevel != "" {
		cfg.LogLevel = flags.logLevel
	}
	if flags.csvComma != "" {
		cfg.CSVComma = flags.csvComma
	}
	if flags.metricsOut != "" {
		cfg.MetricsOut = flags.metricsOut
	}
	if flags.concurrency != 0 {
		cfg.Concurrency = flags.concurrency
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	e.log = currentLogger()
	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		e.log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if cfg.MetricsEnabled {
		e.metrics = metrics.Default()
	} else {
		e.metrics = metrics.NewManager(metrics.WithMetricsEnabled(false))
	}

	e.format, err = render.ParseFormat(cfg.OutputFormat)
	if err != nil {
		return err
	}
	e.cfg = cfg
	e.svc = service.New(service.WithLogger(e.log), service.WithMetrics(e.metrics))
	return nil
}

func currentLogger() (l logger.Logger) {
	defer func() {
		if recover() != nil {
			l = logger.Nop()
		}
	}()
	return logger.Get()
}

func newSummarizeCmd(e *env, flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summarize [file...]",
		Short: "Compute the metrics summary of one or more datasets",
		Long: `Loads each dataset (.csv, .tsv or .json, "-" for CSV on stdin) and prints
its metrics summary. Files are processed concurrently; output keeps argument order.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.summarize(cmd, args, flags.filter, flags.observations)
		},
	}

	f := cmd.Flags()
	f.StringSliceVar(&flags.filter.JobTitles, "filter-job-title", nil, "keep sessions with any of these job titles")
	f.StringSliceVar(&flags.filter.TaskCategories, "filter-task", nil, "keep sessions with any of these task categories")
	f.StringSliceVar(&flags.filter.Tools, "filter-tool", nil, "keep sessions that used all of these tools")
	f.StringSliceVar(&flags.filter.Sources, "filter-source", nil, "keep sessions that accessed all of these data sources")
	f.BoolVar(&flags.observations, "observations", false, "include the cleaned observations in json and yaml output")
	return cmd
}

func (e *env) summarize(cmd *cobra.Command, paths []string, filter explore.Filter, withObservations bool) error {
	reports := make([]render.Report, len(paths))

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(e.cfg.Concurrency)
	for i, path := range paths {
		g.Go(func() error {
			rows, err := e.load(ctx, cmd.InOrStdin(), path)
			if err != nil {
				return err
			}
			res, err := e.svc.Compute(ctx, rows, service.WithFilter(filter))
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if !withObservations {
				res.Summary.Observations = nil
			}
			reports[i] = render.Report{
				Source:      path,
				Summary:     res.Summary,
				Diagnostics: res.Diagnostics,
				Dropped:     res.Dropped,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return render.Reports(cmd.OutOrStdout(), e.format, reports)
}

func newFacetsCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "facets [file]",
		Short: "List the job titles, tasks, tools and data sources available to filter on",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := e.load(cmd.Context(), cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			facets, err := e.svc.Facets(cmd.Context(), rows)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			return render.Facets(cmd.OutOrStdout(), e.format, facets)
		},
	}
}

func newColumnsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "columns",
		Short: "Print the required dataset columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), strings.Join(model.RequiredColumns(), "\n"))
			return err
		},
	}
}

// load reads one dataset and counts the attempt by format and outcome.
func (e *env) load(ctx context.Context, stdin io.Reader, path string) ([]model.RawRow, error) {
	format := string(ingest.FormatCSV)
	var (
		rows []model.RawRow
		err  error
	)
	if path == dash {
		rows, err = ingest.LoadCSV(stdin, ingest.WithComma(e.cfg.Comma()))
	} else {
		if f, derr := ingest.DetectFormat(path); derr == nil {
			format = string(f)
		}
		rows, err = ingest.LoadFile(ctx, path, ingest.WithComma(e.cfg.Comma()))
	}

	if err != nil {
		e.metrics.RecordFileLoad(format, metrics.OutcomeError)
		e.log.Error(ctx, "dataset load failed", logger.String("path", path), logger.Error(err))
		return nil, err
	}
	e.metrics.RecordFileLoad(format, metrics.OutcomeOK)
	e.log.Debug(ctx, "dataset loaded", logger.String("path", path), logger.Int("rows", len(rows)))
	return rows, nil
}

func (e *env) dumpMetrics(cmd *cobra.Command) error {
	if e.cfg == nil || e.cfg.MetricsOut == "" {
		return nil
	}
	if e.cfg.MetricsOut == dash {
		return e.metrics.WriteText(cmd.ErrOrStderr())
	}

	f, err := os.Create(e.cfg.MetricsOut)
	if err != nil {
		return fmt.Errorf("create metrics dump: %w", err)
	}
	if err := e.metrics.WriteText(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
