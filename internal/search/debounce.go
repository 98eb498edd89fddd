package search

import (
	"context"
	"sync"
	"time"
)

// DefaultDebounce is the quiet period before a submitted query runs.
const DefaultDebounce = 150 * time.Millisecond

// Querier debounces free-text input ahead of the index. Each Submit
// cancels the previous pending query: the latest submission wins, and a
// superseded query's channel is closed without a value, even when its
// search had already started. The per-submission context is the
// cancellation token.
type Querier struct {
	index *Index
	delay time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewQuerier(index *Index, delay time.Duration) *Querier {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Querier{index: index, delay: delay}
}

// Submit schedules q after the debounce delay. The returned channel
// yields exactly one Result, or is closed without one if a newer query
// arrives first or ctx is canceled.
func (qr *Querier) Submit(ctx context.Context, q Query) <-chan Result {
	qr.mu.Lock()
	if qr.cancel != nil {
		qr.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	qr.cancel = cancel
	qr.mu.Unlock()

	out := make(chan Result, 1)
	qr.wg.Add(1)
	go func() {
		defer qr.wg.Done()
		defer close(out)

		timer := time.NewTimer(qr.delay)
		defer timer.Stop()

		select {
		case <-runCtx.Done():
			return
		case <-timer.C:
		}

		res := qr.index.Search(q)
		if runCtx.Err() != nil {
			return // superseded while searching, discard
		}
		out <- res
	}()
	return out
}

// Stop cancels any pending query and waits for in-flight goroutines.
func (qr *Querier) Stop() {
	qr.mu.Lock()
	if qr.cancel != nil {
		qr.cancel()
	}
	qr.mu.Unlock()
	qr.wg.Wait()
}
