// Package promexport exposes operator-facing process gauges (live agent
// count, reporter queue depth, op-store size) on a /debug/metrics HTTP
// endpoint. It is independent of the user-selected --reporter sinks: those
// carry scenario metrics to InfluxDB, this carries process health to
// whatever scrapes the agent binary directly.
//
// Grounded in go/network/metrics.go's use of promauto.NewGaugeVec/CounterVec
// for package-level metric registration, and go/runtime/flow_consumer.go's
// http.ListenAndServe("localhost:PORT", nil) pattern for exposing a debug
// endpoint alongside the main process.
package promexport

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var (
	liveAgents = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "swarmbench_live_agents",
		Help: "number of agent goroutines currently running in this process",
	})
	reporterQueueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "swarmbench_reporter_queue_depth",
		Help: "number of buffered points awaiting write in a reporter sink",
	}, []string{"sink"})
	opStoreSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "swarmbench_op_store_size",
		Help: "number of operations currently held in the local op store",
	})
)

// SetLiveAgents records the current count of running agent goroutines.
func SetLiveAgents(n int) { liveAgents.Set(float64(n)) }

// SetReporterQueueDepth records the current backlog for a named sink (e.g.
// "lineprotocol", "httppush").
func SetReporterQueueDepth(sink string, depth int) {
	reporterQueueDepth.WithLabelValues(sink).Set(float64(depth))
}

// SetOpStoreSize records the current number of locally held operations.
func SetOpStoreSize(n int) { opStoreSize.Set(float64(n)) }

// Serve starts an HTTP server exposing the registered metrics at
// addr+"/debug/metrics" and blocks until ctx is done or the server fails.
// It is meant to be run on its own goroutine (via executor.Bridge.SpawnDetached)
// for the lifetime of the process; errors after shutdown has been requested
// are expected (http.ErrServerClosed) and are not logged as failures.
func Serve(ctx context.Context, addr string) error {
	var mux = http.NewServeMux()
	mux.Handle("/debug/metrics", promhttp.Handler())

	var server = &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		_ = server.Close()
	}()

	logrus.WithField("addr", addr).Info("promexport: serving /debug/metrics")
	var err = server.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
