// Package httppush implements a Collector that writes metrics directly to
// an InfluxDB v2 HTTP write endpoint, trading a Telegraf-free setup for
// running inside the agent process.
//
// Grounded in framework/instruments/src/report/influx_client_reporter.rs,
// which is the same trade-off in the original: "more resources from the
// current process but requires less infrastructure... recommended [to use
// the file reporter instead] when running distributed." Configuration
// comes from the same three environment variables the original reads:
// INFLUX_HOST, INFLUX_BUCKET, INFLUX_TOKEN.
package httppush

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/http2"

	"github.com/swarmbench/swarmbench/go/executor"
	"github.com/swarmbench/swarmbench/go/instruments"
	"github.com/swarmbench/swarmbench/go/shutdown"
)

const queueCapacity = 1 << 16

// batchInterval bounds how long a point can sit queued before being pushed,
// so a slow trickle of operations still shows up promptly.
const batchInterval = 2 * time.Second

// batchSize caps how many points accumulate before a push is forced early.
const batchSize = 500

// Config holds the InfluxDB v2 write endpoint coordinates. NewFromEnv reads
// these from INFLUX_HOST, INFLUX_BUCKET, and INFLUX_TOKEN, matching the
// environment contract spec.md §6 documents.
type Config struct {
	Host   string
	Bucket string
	Token  string
}

// NewFromEnv reads Config from the environment, returning an error naming
// the first missing variable, mirroring influx_client_reporter.rs's
// anyhow::Context messages.
func NewFromEnv() (Config, error) {
	var host, hasHost = os.LookupEnv("INFLUX_HOST")
	if !hasHost || host == "" {
		return Config{}, fmt.Errorf("httppush: environment variable INFLUX_HOST is required")
	}
	var bucket, hasBucket = os.LookupEnv("INFLUX_BUCKET")
	if !hasBucket || bucket == "" {
		return Config{}, fmt.Errorf("httppush: environment variable INFLUX_BUCKET is required")
	}
	var token, hasToken = os.LookupEnv("INFLUX_TOKEN")
	if !hasToken || token == "" {
		return Config{}, fmt.Errorf("httppush: environment variable INFLUX_TOKEN is required")
	}
	return Config{Host: host, Bucket: bucket, Token: token}, nil
}

// Collector batches points and POSTs them as line protocol to an InfluxDB
// v2 write endpoint on a background goroutine.
type Collector struct {
	cfg    Config
	client *http.Client

	queue chan instruments.Point
	done  chan struct{}

	flushComplete atomic.Bool
	taskExited    atomic.Bool
}

// New starts the background push goroutine on bridge, stopping when
// shutdownCoord broadcasts.
func New(bridge *executor.Bridge, shutdownCoord *shutdown.Coordinator, cfg Config) *Collector {
	var transport = &http.Transport{}
	// Best-effort: upgrade to HTTP/2 when the endpoint supports it. Plain
	// http.Transport already speaks h2 over TLS; ConfigureTransport also
	// arms h2c-style connection reuse for local/dev InfluxDB instances.
	_ = http2.ConfigureTransport(transport)

	var c = &Collector{
		cfg:    cfg,
		client: &http.Client{Transport: transport, Timeout: 30 * time.Second},
		queue:  make(chan instruments.Point, queueCapacity),
		done:   make(chan struct{}),
	}

	var listener = shutdownCoord.Subscribe()
	bridge.SpawnTracked(func(context.Context) {
		c.pushLoop(listener)
	})

	return c
}

func (c *Collector) pushLoop(listener *shutdown.Listener) {
	defer func() {
		c.taskExited.Store(true)
		c.flushComplete.Store(true)
		close(c.done)
	}()

	var batch = make([]instruments.Point, 0, batchSize)
	var ticker = time.NewTicker(batchInterval)
	defer ticker.Stop()

runLoop:
	for {
		select {
		case <-listener.Done():
			break runLoop
		case pt := <-c.queue:
			batch = append(batch, pt)
			if len(batch) >= batchSize {
				c.push(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				c.push(batch)
				batch = batch[:0]
			}
		}
	}

	logrus.Debug("httppush: draining remaining points before shutdown")
	var drained int
drain:
	for {
		select {
		case pt := <-c.queue:
			batch = append(batch, pt)
			drained++
			if len(batch) >= batchSize {
				c.push(batch)
				batch = batch[:0]
			}
		default:
			break drain
		}
	}
	if len(batch) > 0 {
		c.push(batch)
	}
	logrus.WithField("drained", drained).Debug("httppush: drain complete")
}

func (c *Collector) push(batch []instruments.Point) {
	var lines = make([]string, len(batch))
	for i, pt := range batch {
		lines[i] = pt.LineProtocol()
	}
	var body = strings.Join(lines, "\n")

	var url = fmt.Sprintf("%s/api/v2/write?bucket=%s&precision=ns", strings.TrimRight(c.cfg.Host, "/"), c.cfg.Bucket)
	var req, err = http.NewRequest(http.MethodPost, url, bytes.NewBufferString(body))
	if err != nil {
		logrus.WithError(err).Warn("httppush: failed to build request")
		return
	}
	req.Header.Set("Authorization", "Token "+c.cfg.Token)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	var resp *http.Response
	resp, err = c.client.Do(req)
	if err != nil {
		logrus.WithError(err).Warn("httppush: failed to send metrics to InfluxDB")
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		logrus.WithField("status", resp.StatusCode).Warn("httppush: InfluxDB rejected write")
	}
}

func (c *Collector) enqueue(pt instruments.Point) {
	if c.taskExited.Load() {
		logrus.Warn("httppush: dropping point, push task has finished")
		return
	}
	select {
	case c.queue <- pt:
	default:
		logrus.Warn("httppush: dropping point, backlog full")
	}
}

func (c *Collector) AddOperation(record *instruments.OperationRecord) {
	c.enqueue(instruments.OperationPoint(record))
}

func (c *Collector) AddCustom(metric instruments.ReportMetric) {
	c.enqueue(instruments.MetricPoint(metric))
}

// Finalize blocks until the push task has drained its backlog, mirroring
// influx_reporter_base.rs's polling finalize.
func (c *Collector) Finalize() {
	var waitStarted = time.Now()
	var lastNotify = time.Now()
	for !c.flushComplete.Load() {
		if time.Since(lastNotify) > 10*time.Second {
			logrus.WithField("waited_seconds", int(time.Since(waitStarted).Seconds())).
				Warn("httppush: still waiting for metrics to flush")
			lastNotify = time.Now()
		}
		if c.taskExited.Load() {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
}
