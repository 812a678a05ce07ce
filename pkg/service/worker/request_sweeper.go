package worker

import (
	"context"
	"time"

	"github.com/fedmod/ostracon/pkg/utils/logging"
)

// Sweeper is anything that can pick up pending work, typically the
// orchestration use case
type Sweeper interface {
	Sweep(ctx context.Context) error
}

// RequestSweeper periodically starts orchestration for confirmed requests
// and resumes in_progress requests after a restart.
//
// Architecture assumptions:
// - Single server instance (the store-level claim guards against a second
//   run per request inside the process; no distributed locking)
type RequestSweeper struct {
	sweeper  Sweeper
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewRequestSweeper creates a sweeper running at the given interval
func NewRequestSweeper(sweeper Sweeper, interval time.Duration) *RequestSweeper {
	return &RequestSweeper{
		sweeper:  sweeper,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background sweep loop. The initial sweep also runs in the
// background so server startup is not blocked on the store.
func (w *RequestSweeper) Start(ctx context.Context) error {
	logging.From(ctx).Info("request sweeper starting", "interval", w.interval.String())
	go w.run(ctx)
	return nil
}

// Stop signals the worker to stop and waits for the loop to exit. Runs
// already launched by a sweep keep going until ctx is cancelled.
func (w *RequestSweeper) Stop() {
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("request sweeper stopped")
}

func (w *RequestSweeper) run(ctx context.Context) {
	defer close(w.doneCh)

	if err := w.sweeper.Sweep(ctx); err != nil {
		logging.From(ctx).Error("initial request sweep failed (will retry next interval)",
			"error", err.Error())
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.sweeper.Sweep(ctx); err != nil {
				logging.From(ctx).Error("request sweep failed (will retry next interval)",
					"error", err.Error())
			}

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.From(ctx).Info("request sweeper context cancelled")
			return
		}
	}
}
