package summariser

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/swarmbench/swarmbench/go/runsummary"
)

// Aggregator turns one run's metrics into a scenario-specific report. It
// queries client for whatever operations and custom metrics its scenario
// recorded, then shapes the result however that scenario's report should
// look.
//
// Grounded in summariser/src/lib.rs and the per-scenario aggregators under
// summariser/src/aggregator/ (the Holochain-specific aggregator in that
// directory, aggregator/holochain_metrics.rs, is not ported: it builds a
// report shape tied to a conductor's internal p2p/database/wasm metrics,
// outside what spec.md's generic runner surface exposes; see DESIGN.md).
type Aggregator func(ctx context.Context, client QueryClient, run runsummary.RunSummary) (any, error)

var (
	registryMu sync.RWMutex
	registry   = map[string]Aggregator{}
)

// Register associates an Aggregator with a scenario name. Scenarios
// register their aggregator from an init function, mirroring lib.rs's
// dispatch table construction.
func Register(scenarioName string, agg Aggregator) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[scenarioName] = agg
}

// Registered reports the scenario names with a registered Aggregator, in
// sorted order.
func Registered() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	var names = make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Summarise looks up the Aggregator registered for run.ScenarioName and
// runs it. Unrecognized scenario names are logged and returned as an error
// rather than silently producing an empty report.
func Summarise(ctx context.Context, client QueryClient, run runsummary.RunSummary) (any, error) {
	registryMu.RLock()
	var agg, ok = registry[run.ScenarioName]
	registryMu.RUnlock()

	if !ok {
		logrus.WithField("scenario", run.ScenarioName).Warn("summariser: no aggregator registered for scenario")
		return nil, fmt.Errorf("summariser: no aggregator registered for scenario %q", run.ScenarioName)
	}
	return agg(ctx, client, run)
}
