// Package executor bridges synchronous agent hook code to asynchronous,
// cancellable work, mirroring the Rust Executor built on a Tokio runtime.
//
// Go has no colored function split between sync and async, so there is no
// runtime to construct here — goroutines already are the async substrate.
// What the bridge still has to provide, and what is load-bearing per
// spec.md §9, is the cancellation contract: a blocking caller must be able
// to race its work against the shared shutdown signal and get back a
// distinguishable error instead of hanging forever.
package executor

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/swarmbench/swarmbench/go/shutdown"
)

// ShutdownSignalError is returned by BlockOnCancellable when the shutdown
// signal fires before the submitted function completes.
type ShutdownSignalError struct{}

func (ShutdownSignalError) Error() string {
	return "execution cancelled by shutdown signal"
}

// Bridge runs fire-and-cancellable or fire-and-forget work on background
// goroutines.
type Bridge struct {
	coord *shutdown.Coordinator

	wg sync.WaitGroup
}

// New constructs a Bridge tied to the given shutdown Coordinator.
func New(coord *shutdown.Coordinator) *Bridge {
	return &Bridge{coord: coord}
}

// BlockOnCancellable runs fn on a background goroutine and blocks the
// calling goroutine until fn returns, the shutdown signal fires, or ctx is
// done. If the shutdown signal wins the race, BlockOnCancellable returns
// immediately with a ShutdownSignalError; the caller must treat fn's work
// as abandoned (fn's goroutine is not killed — fn is responsible for
// honoring ctx cancellation to actually stop promptly).
func (b *Bridge) BlockOnCancellable(ctx context.Context, fn func(context.Context) (any, error)) (any, error) {
	var listener = b.coord.Subscribe()

	var innerCtx, cancel = context.WithCancel(ctx)
	defer cancel()

	type result struct {
		val any
		err error
	}
	var resultCh = make(chan result, 1)

	go func() {
		var val, err = fn(innerCtx)
		resultCh <- result{val, err}
	}()

	select {
	case r := <-resultCh:
		return r.val, r.err
	case <-listener.Done():
		return nil, ShutdownSignalError{}
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// SpawnDetached schedules fn to run on a new goroutine without any
// cancellation wiring and without any guarantee that it completes before
// the process exits. The bridge does not track it: it is never waited on
// as part of BlockOnCancellable, WaitTracked or shutdown.
func (b *Bridge) SpawnDetached(fn func(context.Context)) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logrus.WithField("panic", r).Error("executor: detached task panicked")
			}
		}()
		fn(context.Background())
	}()
}

// SpawnTracked is used internally by instruments collectors for their
// writer-loop goroutines, which the bridge *does* track so tests can assert
// they've exited.
func (b *Bridge) SpawnTracked(fn func(context.Context)) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		fn(context.Background())
	}()
}

// WaitTracked blocks until every goroutine started with SpawnTracked has
// returned. It is not used for user hook cancellation — only for the
// bridge's own bookkeeping in tests.
func (b *Bridge) WaitTracked() {
	b.wg.Wait()
}
