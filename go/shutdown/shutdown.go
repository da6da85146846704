// Package shutdown provides a single broadcast termination signal with
// independent, replayable listeners.
//
// It is the Go translation of the Rust ShutdownHandle/DelegatedShutdownListener
// pair: closing a channel is the natural "every subscriber observes this,
// including ones who subscribe after the fact" primitive in Go, replacing
// the Rust implementation's tokio::sync::broadcast channel.
package shutdown

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Coordinator broadcasts a single terminate signal to any number of
// independent Listeners.
type Coordinator struct {
	once sync.Once
	ch   chan struct{}

	mu          sync.Mutex
	subscribers int
}

// New returns a Coordinator that has not yet fired.
func New() *Coordinator {
	return &Coordinator{ch: make(chan struct{})}
}

// Broadcast signals termination. The first call wins; later calls are
// no-ops. Calling Broadcast with no listeners subscribed is not an error,
// but is logged at warn level since it usually means the signal has
// nowhere to go.
func (c *Coordinator) Broadcast() {
	var fired = false
	c.once.Do(func() {
		close(c.ch)
		fired = true
	})
	if !fired {
		return
	}

	c.mu.Lock()
	var subscribers = c.subscribers
	c.mu.Unlock()

	if subscribers == 0 {
		logrus.Warn("shutdown: broadcast signal sent with no listeners subscribed")
	} else {
		logrus.Debug("shutdown: broadcast signal sent")
	}
}

// Subscribe hands out a new, independent Listener. A Listener created after
// Broadcast has already fired still observes the signal immediately,
// because it shares the same (already-closed) channel.
func (c *Coordinator) Subscribe() *Listener {
	c.mu.Lock()
	c.subscribers++
	c.mu.Unlock()
	return &Listener{ch: c.ch}
}

// Listener observes a Coordinator's termination signal.
type Listener struct {
	ch <-chan struct{}
}

// Poll reports whether the shutdown signal has been delivered, without
// blocking.
func (l *Listener) Poll() bool {
	select {
	case <-l.ch:
		return true
	default:
		return false
	}
}

// Await suspends the calling goroutine until the shutdown signal fires or
// ctx is done, whichever happens first. Callers that don't need
// cancellation beyond the shutdown signal itself can pass
// context.Background().
func (l *Listener) Await(ctx context.Context) {
	select {
	case <-l.ch:
	case <-ctx.Done():
	}
}

// Done exposes the underlying channel for use in select statements
// alongside other cases, mirroring the Rust code's use of
// wait_for_shutdown() inside tokio::select!.
func (l *Listener) Done() <-chan struct{} {
	return l.ch
}
