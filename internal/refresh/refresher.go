// Package refresh runs a fetch-and-deliver cycle on a fixed interval,
// driven by activate/deactivate signals such as a view appearing or a
// session logging in.
package refresh

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Refresher periodically fetches a value and hands it to a delivery
// callback. While active it fetches once immediately and then once per
// interval. Fetch errors are logged and the cycle keeps running.
type Refresher[T any] struct {
	name     string
	interval time.Duration
	fetch    func(context.Context) (T, error)
	deliver  func(T)
	logger   *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates an inactive refresher. The name labels log entries.
func New[T any](name string, interval time.Duration, fetch func(context.Context) (T, error), deliver func(T), logger *zap.Logger) *Refresher[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Refresher[T]{
		name:     name,
		interval: interval,
		fetch:    fetch,
		deliver:  deliver,
		logger:   logger,
	}
}

// Activate starts the refresh cycle. Activating an already active
// refresher is a no-op.
func (r *Refresher[T]) Activate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	r.cancel, r.done = cancel, done
	go func() {
		defer close(done)
		r.loop(ctx)
	}()
}

// Deactivate stops the cycle and waits for the in-flight fetch, if any,
// to finish. Deactivating an inactive refresher is a no-op. The done
// channel is captured under the lock, so a concurrent Activate starts a
// fresh cycle without disturbing the one being waited on.
func (r *Refresher[T]) Deactivate() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Stop tears the refresher down. Equivalent to Deactivate; reads as final.
func (r *Refresher[T]) Stop() {
	r.Deactivate()
}

// Follow activates and deactivates the refresher from a signal channel
// until the channel closes or ctx ends. It deactivates on return.
func (r *Refresher[T]) Follow(ctx context.Context, signals <-chan bool) {
	defer r.Deactivate()
	for {
		select {
		case <-ctx.Done():
			return
		case active, ok := <-signals:
			if !ok {
				return
			}
			if active {
				r.Activate()
			} else {
				r.Deactivate()
			}
		}
	}
}

func (r *Refresher[T]) loop(ctx context.Context) {
	r.refresh(ctx)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *Refresher[T]) refresh(ctx context.Context) {
	value, err := r.fetch(ctx)
	if err != nil {
		if ctx.Err() == nil {
			r.logger.Warn("refresh failed", zap.String("refresher", r.name), zap.Error(err))
		}
		return
	}
	if ctx.Err() != nil {
		return
	}
	r.deliver(value)
}
