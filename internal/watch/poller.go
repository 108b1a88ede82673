package watch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kyleseneker/track/internal/logging"
	"github.com/kyleseneker/track/internal/model"
	"github.com/kyleseneker/track/internal/report"
)

// DefaultInterval is how often the poller re-reads the tracker state.
const DefaultInterval = 300 * time.Millisecond

// Source reports the active session, if any. *tracker.Tracker satisfies it.
type Source interface {
	Running() (*model.StartTime, error)
}

// Status is one observation of the tracker.
type Status struct {
	Running bool
	Start   model.StartTime
	Err     error
	At      time.Time
}

// Elapsed is the time since the session started, as of the observation.
func (s Status) Elapsed() time.Duration {
	if !s.Running {
		return 0
	}
	return s.At.Sub(s.Start.Time())
}

// Summary renders the status as a single line.
func (s Status) Summary() string {
	switch {
	case s.Err != nil:
		return fmt.Sprintf("error: %v", s.Err)
	case s.Running:
		return fmt.Sprintf("tracking since %s (%s)", s.Start.Local().Format(time.DateTime), report.FormatDuration(s.Elapsed()))
	default:
		return "not tracking"
	}
}

// sameState reports whether two observations differ only in their time.
func (s Status) sameState(other Status) bool {
	if s.Running != other.Running || !s.Start.Equal(other.Start) {
		return false
	}
	if (s.Err == nil) != (other.Err == nil) {
		return false
	}
	return s.Err == nil || s.Err.Error() == other.Err.Error()
}

// Poller re-reads the tracker on a fixed interval and hands each Status to
// a sink. The state may change between ticks; every tick is a fresh read.
type Poller struct {
	source   Source
	interval time.Duration
	clock    model.Clock
	logger   logging.Logger
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewPoller creates a poller. A non-positive interval means DefaultInterval
// and a nil clock means the system clock.
func NewPoller(source Source, interval time.Duration, clock model.Clock) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if clock == nil {
		clock = model.SystemClock{}
	}
	return &Poller{
		source:   source,
		interval: interval,
		clock:    clock,
		logger:   logging.Get().Named("poller"),
		stopChan: make(chan struct{}),
	}
}

// Poll takes a single observation.
func (p *Poller) Poll() Status {
	start, err := p.source.Running()
	st := Status{At: p.clock.Now(), Err: err}
	if err != nil {
		p.logger.Warn("Failed to read tracker state", "error", err)
		return st
	}
	if start != nil {
		st.Running = true
		st.Start = *start
	}
	return st
}

// Run polls once immediately and then on every tick, blocking until ctx is
// cancelled or Shutdown is called.
func (p *Poller) Run(ctx context.Context, sink func(Status)) {
	p.logger.Debug("Starting poller", "interval", p.interval)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	sink(p.Poll())

Loop:
	for {
		select {
		case <-ticker.C:
			sink(p.Poll())
		case <-ctx.Done():
			p.logger.Debug("Context done, stopping poller")
			break Loop
		case <-p.stopChan:
			p.logger.Debug("Shutdown requested, stopping poller")
			break Loop
		}
	}
}

// Shutdown stops a running poller. It is safe to call more than once.
func (p *Poller) Shutdown() {
	p.stopOnce.Do(func() {
		close(p.stopChan)
	})
}
