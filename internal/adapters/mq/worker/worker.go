// Package worker runs coaching requests off the session loop, one at a time.
package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/okian/pitwall/internal/adapters/mq/queue"
	"github.com/okian/pitwall/internal/domain/coach"
	"github.com/okian/pitwall/internal/domain/telemetry"
	"github.com/okian/pitwall/pkg/logger"
	"github.com/okian/pitwall/pkg/metrics"
)

// SkippedBusy labels coaching ticks dropped while a request is outstanding.
const SkippedBusy = "skipped_busy"

// Advisor produces a coaching outcome for a frame.
type Advisor interface {
	Advise(ctx context.Context, f telemetry.Frame) coach.Outcome
}

// Sink receives advisories produced by the worker.
type Sink interface {
	Enqueue(ctx context.Context, it queue.Item) bool
}

// CoachWorker runs at most one coaching request at a time. A request offered
// while another is outstanding is dropped, not queued.
type CoachWorker struct {
	advisor Advisor
	sink    Sink
	name    string

	busy     *semaphore.Weighted
	inflight atomic.Bool
	wg       sync.WaitGroup

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc

	logger logger.Logger
}

// NewCoachWorker creates a worker bound to parent; cancelling parent or
// calling Shutdown aborts the request in flight.
func NewCoachWorker(parent context.Context, advisor Advisor, sink Sink, opts ...Option) *CoachWorker {
	ctx, cancel := context.WithCancel(parent)
	w := &CoachWorker{
		advisor: advisor,
		sink:    sink,
		name:    "coach-worker",
		busy:    semaphore.NewWeighted(1),
		ctx:     ctx,
		cancel:  cancel,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// TryAdvise starts a coaching request for f unless one is outstanding. The
// frame is captured by value. It reports whether a request started.
func (w *CoachWorker) TryAdvise(f telemetry.Frame) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.ctx.Err() != nil {
		return false
	}
	if !w.busy.TryAcquire(1) {
		metrics.RecordCoachRequest(SkippedBusy)
		w.logger.Debug(w.ctx, "coaching tick skipped, request outstanding")
		return false
	}
	w.inflight.Store(true)
	w.wg.Add(1)
	go w.process(w.ctx, f)
	return true
}

func (w *CoachWorker) process(ctx context.Context, f telemetry.Frame) {
	defer w.wg.Done()
	defer w.inflight.Store(false)
	defer w.busy.Release(1)

	start := time.Now()
	out := w.advisor.Advise(ctx, f)
	metrics.RecordCoachRequest(out.Source)
	metrics.RecordCoachLatency(float64(time.Since(start).Milliseconds()))

	if out.Advisory == nil || ctx.Err() != nil {
		return
	}
	if !w.sink.Enqueue(ctx, *out.Advisory) {
		w.logger.Warn(ctx, "coaching advisory dropped, queue unavailable",
			logger.String("agent", string(out.Advisory.Agent)))
	}
}

// Busy reports whether a request is outstanding.
func (w *CoachWorker) Busy() bool { return w.inflight.Load() }

// Shutdown aborts the request in flight and waits for it to return.
func (w *CoachWorker) Shutdown(ctx context.Context) error {
	w.mu.Lock()
	w.cancel()
	w.mu.Unlock()

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out", logger.String("worker", w.name))
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}
