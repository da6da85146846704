package summariser

import (
	"context"

	"github.com/swarmbench/swarmbench/go/runsummary"
)

// QueryClient is how an Aggregator reaches the metrics backend a run's data
// landed in. swarmbench never assumes a particular storage technology here;
// go/summariser/sqlitebackend is the bundled, runnable implementation, but
// any QueryClient works.
//
// Grounded in summariser/src/query.rs, whose InfluxQL builders this
// interface replaces with backend-opaque methods.
type QueryClient interface {
	// QueryInstrumentData returns every sample recorded for a built-in
	// timing/counter/gauge operation (see go/instruments) with the given
	// operation ID, scoped to run.
	QueryInstrumentData(ctx context.Context, run runsummary.RunSummary, operationID string) (Frame, error)

	// QueryCustomData returns every sample recorded against a
	// scenario-defined custom metric name, scoped to run, with the
	// requested tag columns attached alongside the value.
	QueryCustomData(ctx context.Context, run runsummary.RunSummary, metric string, tagKeys []string) (Frame, error)

	// QueryZomeCallLikeData returns samples for one or more
	// application-level RPC operations (spec.md's "opaque application-layer
	// RPC", historically zome calls), optionally filtered to error or
	// success outcomes, with the requested tag columns attached.
	QueryZomeCallLikeData(ctx context.Context, run runsummary.RunSummary, operationIDs []string, tagKeys []string, isError bool) (Frame, error)
}
