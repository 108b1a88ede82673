package report

import (
	"time"

	"github.com/kyleseneker/track/internal/intervallog"
	"github.com/kyleseneker/track/internal/logging"
	"github.com/kyleseneker/track/internal/model"
)

// Reporter aggregates completed sessions. It never writes, so it is safe to
// use while a session is active; the active session is not counted.
type Reporter struct {
	records intervallog.Loader
	clock   model.Clock
	logger  logging.Logger
}

// NewReporter creates a reporter reading from records. A nil clock means the
// system clock.
func NewReporter(records intervallog.Loader, clock model.Clock) *Reporter {
	if clock == nil {
		clock = model.SystemClock{}
	}
	return &Reporter{
		records: records,
		clock:   clock,
		logger:  logging.Get().Named("reporter"),
	}
}

// Records returns the records inside span, in log order.
func (r *Reporter) Records(span Timespan) ([]model.TimeRecord, error) {
	all, err := r.records.Load()
	if err != nil {
		return nil, err
	}

	now := r.clock.Now()
	matched := make([]model.TimeRecord, 0, len(all))
	for _, rec := range all {
		if span.Contains(rec, now) {
			matched = append(matched, rec)
		}
	}
	r.logger.Debug("Filtered records", "span", span.String(), "total", len(all), "matched", len(matched))
	return matched, nil
}

// TotalDuration sums end - start over the records inside span. An empty log
// yields zero. Records whose end precedes their start contribute nothing.
func (r *Reporter) TotalDuration(span Timespan) (time.Duration, error) {
	records, err := r.Records(span)
	if err != nil {
		return 0, err
	}

	var total time.Duration
	for _, rec := range records {
		d := rec.Duration()
		if d < 0 {
			r.logger.Warn("Skipping record that ends before it starts", "start", rec.Start.String(), "end", rec.End.String())
			continue
		}
		total += d
	}
	return total, nil
}
