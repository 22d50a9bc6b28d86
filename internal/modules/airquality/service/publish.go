package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ali-sehran/air-quality-dashboard/internal/modules/airquality/types"
)

var (
	ErrPublishQueueFull = errors.New("publish queue full")
	ErrPublisherClosed  = errors.New("publisher closed")
)

// AsyncPublisher hands batches to a single background goroutine so the caller
// never waits on the broker. Each delivery gets its own timeout, detached from
// the context of the run that produced the batch.
type AsyncPublisher struct {
	next    Publisher
	logger  *slog.Logger
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan types.Batch
	done   chan struct{}
}

func NewAsyncPublisher(next Publisher, logger *slog.Logger, size int, timeout time.Duration) *AsyncPublisher {
	if size < 1 {
		size = 1
	}
	a := &AsyncPublisher{
		next:    next,
		logger:  logger,
		timeout: timeout,
		queue:   make(chan types.Batch, size),
		done:    make(chan struct{}),
	}
	go a.run()
	return a
}

// Publish enqueues batch and returns immediately. A full queue drops the batch.
func (a *AsyncPublisher) Publish(_ context.Context, batch types.Batch) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrPublisherClosed
	}
	select {
	case a.queue <- batch:
		return nil
	default:
		return ErrPublishQueueFull
	}
}

func (a *AsyncPublisher) run() {
	defer close(a.done)
	for batch := range a.queue {
		ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
		err := a.next.Publish(ctx, batch)
		cancel()
		if err != nil {
			a.logger.Warn("publish measurements failed", "location_id", batch.LocationID, "error", err)
		}
	}
}

// Close stops accepting batches and waits until the queued ones are delivered
// or ctx is done.
func (a *AsyncPublisher) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
