package summariser

import (
	"context"
	"testing"
	"time"

	"github.com/bradleyjkemp/cupaloy"
	"github.com/stretchr/testify/require"

	"github.com/swarmbench/swarmbench/go/runsummary"
)

var (
	fixedTime = time.Unix(1700000000, 0)
	fixedStep = time.Second
)

// exampleReport is the shape a scenario aggregator might return: one of the
// standard statistics plus whatever fields the scenario cares about.
type exampleReport struct {
	ScenarioName string      `json:"scenario_name"`
	PutLatency   TimingStats `json:"put_latency"`
	SuccessRatio RatioStats  `json:"success_ratio"`
}

func init() {
	Register("summariser_snapshot_example", func(ctx context.Context, client QueryClient, run runsummary.RunSummary) (any, error) {
		var latencyFrame, err = client.QueryInstrumentData(ctx, run, "put_call")
		if err != nil {
			return nil, err
		}
		var timing, timingErr = StandardTimingStats(latencyFrame, "value", 0)
		if timingErr != nil {
			return nil, timingErr
		}

		var ratioFrame, ratioErr = client.QueryCustomData(ctx, run, "wt.custom.success_ratio", nil)
		if ratioErr != nil {
			return nil, ratioErr
		}
		var ratio, ratioStatsErr = StandardRatioStats(ratioFrame, "value")
		if ratioStatsErr != nil {
			return nil, ratioStatsErr
		}

		return exampleReport{ScenarioName: run.ScenarioName, PutLatency: timing, SuccessRatio: ratio}, nil
	})
}

type snapshotFixtureClient struct{}

func (snapshotFixtureClient) QueryInstrumentData(ctx context.Context, run runsummary.RunSummary, operationID string) (Frame, error) {
	return frameWithColumn("value", []float64{10, 12, 11, 13, 9}, fixedTime, fixedStep), nil
}

func (snapshotFixtureClient) QueryCustomData(ctx context.Context, run runsummary.RunSummary, metric string, tagKeys []string) (Frame, error) {
	return frameWithColumn("value", []float64{0.9, 0.95, 1.0, 0.85}, fixedTime, fixedStep), nil
}

func (snapshotFixtureClient) QueryZomeCallLikeData(ctx context.Context, run runsummary.RunSummary, operationIDs []string, tagKeys []string, isError bool) (Frame, error) {
	return Frame{}, nil
}

func TestSummariseSnapshot(t *testing.T) {
	var run = runsummary.New("run-snapshot", "summariser_snapshot_example", 1700000000, nil, 4, map[string]int{"writer": 4}, "0.1.0")
	var result, err = Summarise(context.Background(), snapshotFixtureClient{}, run)
	require.NoError(t, err)
	cupaloy.SnapshotT(t, result)
}
