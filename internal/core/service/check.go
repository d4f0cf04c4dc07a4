package service

import (
	"context"

	"github.com/yndnr/mirrorcheck-go/internal/catalog"
	"github.com/yndnr/mirrorcheck-go/internal/compare"
	"github.com/yndnr/mirrorcheck-go/internal/core/domain"
	"github.com/yndnr/mirrorcheck-go/internal/storage"
	"github.com/yndnr/mirrorcheck-go/internal/telemetry/logger"
	"github.com/yndnr/mirrorcheck-go/internal/telemetry/metric"
)

// CheckOptions configures a Checker.
type CheckOptions struct {
	Storage storage.Options
	Compare compare.Options
}

// DefaultCheckOptions returns the default checker options.
func DefaultCheckOptions() CheckOptions {
	return CheckOptions{
		Storage: storage.DefaultOptions(),
		Compare: compare.DefaultOptions(),
	}
}

// Checker validates every mirror pair of a database home.
type Checker struct {
	opts    CheckOptions
	metrics *metric.Registry
	log     logger.Logger
}

// NewChecker creates a Checker. metrics may be nil.
func NewChecker(opts CheckOptions, metrics *metric.Registry, log logger.Logger) *Checker {
	if log == nil {
		log = logger.Default()
	}
	return &Checker{opts: opts, metrics: metrics, log: log}
}

// Check opens home read-only, discovers its mirror pairs and compares each
// of them. The connection is closed before Check returns whatever the
// outcome. Errors are returned only when the database cannot be read; pair
// mismatches are reported in the Report.
func (c *Checker) Check(ctx context.Context, home string) (report *domain.Report, err error) {
	runID, err := domain.NewRunID()
	if err != nil {
		return nil, err
	}
	log := c.log.With("run_id", runID, "home", home)
	ctx = logger.WithRunID(logger.WithLogger(ctx, c.log), runID)

	sopts := c.opts.Storage
	sopts.ReadOnly = true
	if sopts.Logger == nil {
		sopts.Logger = c.log.Slog()
	}

	conn, err := storage.Open(home, sopts)
	if err != nil {
		return nil, domain.ErrOpenDatabase.WithDetails(home).WithCause(err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Error("close database failed", "error", cerr)
			if err == nil {
				report = nil
				err = domain.ErrCloseDatabase.WithDetails(home).WithCause(cerr)
			}
		}
	}()

	tables, err := catalog.ListTables(conn)
	if err != nil {
		return nil, err
	}
	if c.metrics != nil {
		c.metrics.TablesScanned.Set(float64(len(tables)))
	}
	log.Debug("catalog scanned", "tables", len(tables))

	pairs, err := catalog.CollectPairs(conn, tables, log)
	if err != nil {
		return nil, err
	}
	log.Info("mirror pairs discovered", "pairs", len(pairs), "tables", len(tables))

	report = domain.NewReport(runID, home)
	cmp := compare.New(conn, c.opts.Compare, log)
	if err := NewValidator(cmp, c.metrics).Validate(ctx, report, pairs); err != nil {
		return nil, err
	}
	report.Finish()

	if c.metrics != nil {
		c.metrics.ObserveRun(report.Failures == 0, report.FinishedAt)
	}
	log.Info("validation finished",
		"pairs", report.Total,
		"failures", report.Failures)

	return report, nil
}
