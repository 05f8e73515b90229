package labor

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/Simplici0/fabquote/internal/domain"
	"github.com/Simplici0/fabquote/internal/logger"
)

// VarianceThreshold is the fractional difference from the historical
// average that flags an estimate.
const VarianceThreshold = 0.25

// Validator compares estimates with the hours past jobs really took.
type Validator struct {
	history domain.HistoryStore
	quotes  domain.QuoteStore
	log     *logger.Logger
	now     func() time.Time
}

// NewValidator creates a validator. A nil history store disables the
// check.
func NewValidator(history domain.HistoryStore, quotes domain.QuoteStore, log *logger.Logger) *Validator {
	return &Validator{history: history, quotes: quotes, log: log, now: time.Now}
}

// Validate flags est when its total is more than VarianceThreshold away
// from the average of recorded actuals for job. It only ever adds a flag;
// a store error is logged and leaves est unchanged.
func (v *Validator) Validate(ctx context.Context, est domain.LaborEstimate, job domain.JobType) domain.LaborEstimate {
	if v == nil || v.history == nil {
		return est
	}
	actuals, err := v.history.ActualsForJobType(ctx, job)
	if err != nil {
		v.log.Warn("labor: history unavailable", "job_type", job, "error", err)
		return est
	}

	var sum float64
	var n int
	for _, a := range actuals {
		if t := a.TotalHours(); t > 0 {
			sum += t
			n++
		}
	}
	if n == 0 {
		return est
	}
	avg := sum / float64(n)
	variance := math.Abs(est.TotalHours-avg) / avg
	if variance <= VarianceThreshold {
		return est
	}
	direction := "lower"
	if est.TotalHours > avg {
		direction = "higher"
	}
	est.Flag(fmt.Sprintf("estimate is %.1f%% %s than historical average (%.1f hrs vs. %.1f hrs avg from %d past jobs)",
		domain.Round(variance*100, 1), direction, est.TotalHours, avg, n))
	return est
}

// RecordActual stores the hours a finished job took. When the quote is
// known, the variance against its estimated hours is recorded with it.
func (v *Validator) RecordActual(ctx context.Context, a domain.Actual) (domain.Actual, error) {
	if v.history == nil {
		return domain.Actual{}, fmt.Errorf("record actual: no history store")
	}
	if v.quotes != nil {
		rec, err := v.quotes.GetQuote(ctx, a.QuoteID)
		if err != nil {
			return domain.Actual{}, fmt.Errorf("record actual: %w", err)
		}
		a.JobType = rec.JobType
		if estimated := TotalHours(rec.Quote.Labor); estimated > 0 {
			pct := domain.Round((a.TotalHours()-estimated)/estimated, 4)
			a.VariancePct = &pct
		}
	}
	if a.RecordedAt.IsZero() {
		a.RecordedAt = v.now().UTC()
	}
	if err := v.history.RecordActual(ctx, a); err != nil {
		return domain.Actual{}, fmt.Errorf("record actual: %w", err)
	}
	return a, nil
}
