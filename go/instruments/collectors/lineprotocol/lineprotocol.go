// Package lineprotocol implements the file-backed Collector recommended for
// distributed runs: every point is appended to a per-scenario ".influx"
// file in line-protocol format, for later ingestion by Telegraf or the
// summariser's sqlite backend.
//
// Grounded in framework/instruments/src/report/influx_file_reporter.rs and
// influx_reporter_base.rs: a background write task owns the file and drains
// a queue of points until the shutdown signal fires, then flushes anything
// still queued before marking itself complete. Go has no unbounded channel,
// so the queue here is a generously buffered channel with a non-blocking,
// log-and-drop send; the original's UnboundedSender similarly never blocks
// the caller (a full buffer is the equivalent backpressure case to its
// "receiver dropped" send error).
package lineprotocol

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/swarmbench/swarmbench/go/executor"
	"github.com/swarmbench/swarmbench/go/instruments"
	"github.com/swarmbench/swarmbench/go/shutdown"
)

// queueCapacity bounds the in-flight point backlog. It is large enough that
// a full queue indicates the write task has stalled or exited, not ordinary
// load.
const queueCapacity = 1 << 16

// Collector writes operation records and custom metrics to a line-protocol
// file on a background goroutine.
type Collector struct {
	path  string
	queue chan instruments.Point
	done  chan struct{}

	flushComplete atomic.Bool
	taskExited    atomic.Bool
}

// Path returns the backing file's path, for collectors (such as
// gcsarchive.Collector) that upload it after it has been flushed.
func (c *Collector) Path() string { return c.path }

// New creates the backing file at dir/<scenarioName>-<unixSeconds>.influx
// and starts the background write goroutine on bridge, stopping it when
// shutdownCoord broadcasts. The file is created with O_EXCL so concurrent
// runs against the same dir never clobber each other.
func New(bridge *executor.Bridge, shutdownCoord *shutdown.Coordinator, dir, scenarioName string) (*Collector, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("lineprotocol: create dir %q: %w", dir, err)
	}

	var path = filepath.Join(dir, fmt.Sprintf("%s-%d.influx", scenarioName, time.Now().Unix()))
	var file, err = os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("lineprotocol: open %q: %w", path, err)
	}

	var c = &Collector{
		path:  path,
		queue: make(chan instruments.Point, queueCapacity),
		done:  make(chan struct{}),
	}

	var listener = shutdownCoord.Subscribe()
	bridge.SpawnTracked(func(context.Context) {
		c.writeLoop(listener, file, path)
	})

	return c, nil
}

// writeLoop owns file exclusively: it is the only goroutine that touches it.
func (c *Collector) writeLoop(listener *shutdown.Listener, file *os.File, path string) {
	var w = bufio.NewWriter(file)
	defer func() {
		if err := w.Flush(); err != nil {
			logrus.WithError(err).WithField("path", path).Error("lineprotocol: final flush failed")
		}
		if err := file.Close(); err != nil {
			logrus.WithError(err).WithField("path", path).Error("lineprotocol: close failed")
		}
		c.taskExited.Store(true)
		c.flushComplete.Store(true)
		close(c.done)
	}()

runLoop:
	for {
		select {
		case <-listener.Done():
			break runLoop
		case pt := <-c.queue:
			c.writePoint(w, pt, path)
		}
	}

	logrus.Debug("lineprotocol: draining remaining points before shutdown")
	var drained int
drain:
	for {
		select {
		case pt := <-c.queue:
			c.writePoint(w, pt, path)
			drained++
		default:
			break drain
		}
	}
	logrus.WithField("drained", drained).Debug("lineprotocol: drain complete")
}

func (c *Collector) writePoint(w *bufio.Writer, pt instruments.Point, path string) {
	if _, err := w.WriteString(pt.LineProtocol()); err != nil {
		logrus.WithError(err).WithField("path", path).Error("lineprotocol: write failed")
		return
	}
	if err := w.WriteByte('\n'); err != nil {
		logrus.WithError(err).WithField("path", path).Error("lineprotocol: write failed")
	}
}

// enqueue submits pt without blocking the caller. If the write task has
// already exited, or the backlog is full, the point is dropped and logged
// rather than blocking the agent thread that produced it.
func (c *Collector) enqueue(pt instruments.Point) {
	if c.taskExited.Load() {
		logrus.Warn("lineprotocol: dropping point, write task has finished")
		return
	}
	select {
	case c.queue <- pt:
	default:
		logrus.Warn("lineprotocol: dropping point, backlog full")
	}
}

func (c *Collector) AddOperation(record *instruments.OperationRecord) {
	c.enqueue(instruments.OperationPoint(record))
}

func (c *Collector) AddCustom(metric instruments.ReportMetric) {
	c.enqueue(instruments.MetricPoint(metric))
}

// Finalize blocks until the write task has drained its backlog and closed
// the file, polling flushComplete the way influx_reporter_base.rs's
// finalize polls its AtomicBool, with the same periodic "still waiting"
// warning after every 10 seconds of waiting.
func (c *Collector) Finalize() {
	var waitStarted = time.Now()
	var lastNotify = time.Now()
	for !c.flushComplete.Load() {
		if time.Since(lastNotify) > 10*time.Second {
			logrus.WithField("waited_seconds", int(time.Since(waitStarted).Seconds())).
				Warn("lineprotocol: still waiting for metrics to flush")
			lastNotify = time.Now()
		}
		if c.taskExited.Load() {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	logrus.WithField("waited_seconds", int(time.Since(waitStarted).Seconds())).Debug("lineprotocol: metrics flushed")
}
