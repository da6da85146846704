// monitor.go implements the resource monitor mentioned in run.rs ("start
// the resource monitor to report high usage by agents which might lead to
// a misleading outcome") but not present in the retrieved original source;
// this reconstructs it from that one-line description: periodically sample
// process resource usage and warn if it looks like the host, not the
// system under test, has become the bottleneck.
package runner

import (
	"runtime"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/swarmbench/swarmbench/go/shutdown"
)

const (
	monitorInterval    = 10 * time.Second
	goroutineWarnRatio = 50 // goroutines per agent above this ratio triggers a warning
)

// startMonitor samples goroutine count and heap usage every
// monitorInterval until the shutdown signal fires, warning when goroutine
// growth looks disproportionate to agentCount: that usually means agent
// hooks are leaking goroutines (e.g. spawning detached work that never
// exits) rather than the system under test being slow.
func startMonitor(agentCount int, listener *shutdown.Listener) {
	var ticker = time.NewTicker(monitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-listener.Done():
			return
		case <-ticker.C:
			var numGoroutine = runtime.NumGoroutine()
			var mem runtime.MemStats
			runtime.ReadMemStats(&mem)

			var fields = logrus.Fields{
				"goroutines":  numGoroutine,
				"heap_in_use": mem.HeapInuse,
				"agents":      agentCount,
			}
			if agentCount > 0 && numGoroutine > agentCount*goroutineWarnRatio {
				logrus.WithFields(fields).Warn("runner: goroutine count is disproportionate to agent count, hooks may be leaking goroutines")
			} else {
				logrus.WithFields(fields).Debug("runner: resource sample")
			}
		}
	}
}
