// Package dispatch fans each advisory out to the speech sink and the log.
package dispatch

import (
	"context"
	"time"

	"github.com/okian/pitwall/internal/domain/advisory"
	"github.com/okian/pitwall/pkg/logger"
	"github.com/okian/pitwall/pkg/metrics"
)

// Announcer is the speech sink.
type Announcer interface {
	Announce(ctx context.Context, adv advisory.Advisory) bool
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithClock overrides time.Now for log timestamps.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// Dispatcher is owned by the session loop; it is not safe for concurrent use.
type Dispatcher struct {
	speech Announcer
	log    *advisory.Log
	now    func() time.Time
	logger logger.Logger
}

// New wires the speech sink and the log.
func New(speech Announcer, log *advisory.Log, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		speech: speech,
		log:    log,
		now:    time.Now,
		logger: logger.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch attempts speech, then appends to the log. Both always happen in
// that order.
func (d *Dispatcher) Dispatch(ctx context.Context, adv advisory.Advisory) advisory.LogEntry {
	spoken := false
	if d.speech != nil {
		spoken = d.speech.Announce(ctx, adv)
	}
	entry := d.log.Append(adv, d.now())
	metrics.RecordAdvisoryDispatched(string(adv.Agent), string(adv.Priority))
	d.logger.Debug(ctx, "advisory dispatched",
		logger.String("agent", string(adv.Agent)),
		logger.String("msg", adv.Msg),
		logger.Bool("spoken", spoken))
	return entry
}
