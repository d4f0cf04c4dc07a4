package service

import (
	"context"
	"time"

	"github.com/yndnr/mirrorcheck-go/internal/core/domain"
	"github.com/yndnr/mirrorcheck-go/internal/telemetry/logger"
	"github.com/yndnr/mirrorcheck-go/internal/telemetry/metric"
)

// Comparer compares the records of two tables.
type Comparer interface {
	Compare(ctx context.Context, base, mirror domain.Location) (*domain.Comparison, error)
}

// Validator validates mirror pairs one at a time.
type Validator struct {
	cmp     Comparer
	metrics *metric.Registry
}

// NewValidator creates a Validator. metrics may be nil.
func NewValidator(cmp Comparer, metrics *metric.Registry) *Validator {
	return &Validator{cmp: cmp, metrics: metrics}
}

// Validate compares every pair and records the outcomes in report. A pair
// that fails to compare is recorded as a mismatch and the run continues.
// Validate stops early only when ctx is done.
func (v *Validator) Validate(ctx context.Context, report *domain.Report, pairs []domain.MirrorPair) error {
	log := logger.L(ctx)

	for i, pair := range pairs {
		if err := ctx.Err(); err != nil {
			log.Warn("validation interrupted",
				"validated", i,
				"pairs", len(pairs))
			return err
		}

		start := time.Now()
		result, err := v.cmp.Compare(ctx, pair.Base, pair.Mirror)
		elapsed := time.Since(start)

		if err != nil {
			log.Error("mirror comparison failed",
				"base", pair.Base.String(),
				"mirror", pair.Mirror.String(),
				"code", domain.GetErrorCode(err),
				"error", err)
			report.Record(domain.FailedOutcome(pair, err, elapsed))
			if v.metrics != nil {
				v.metrics.ObserveCompareError(elapsed)
			}
			continue
		}

		report.Record(domain.NewOutcome(pair, result, elapsed))
		if v.metrics != nil {
			v.metrics.ObserveComparison(result.Match, result.BaseRows, result.MirrorRows, elapsed)
		}

		if result.Match {
			log.Info("mirror validated",
				"base", pair.Base.Table,
				"mirror", pair.Mirror.Table,
				"rows", result.BaseRows,
				"elapsed", elapsed)
		} else {
			log.Warn("mirror mismatch",
				"base", pair.Base.Table,
				"mirror", pair.Mirror.Table,
				"differences", result.Differences)
		}
	}
	return nil
}
