package summariser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swarmbench/swarmbench/go/runsummary"
)

type stubQueryClient struct{}

func (stubQueryClient) QueryInstrumentData(ctx context.Context, run runsummary.RunSummary, operationID string) (Frame, error) {
	return Frame{}, nil
}

func (stubQueryClient) QueryCustomData(ctx context.Context, run runsummary.RunSummary, metric string, tagKeys []string) (Frame, error) {
	return Frame{}, nil
}

func (stubQueryClient) QueryZomeCallLikeData(ctx context.Context, run runsummary.RunSummary, operationIDs []string, tagKeys []string, isError bool) (Frame, error) {
	return Frame{}, nil
}

func TestRegisterAndSummariseDispatchesByScenarioName(t *testing.T) {
	var scenarioName = "registry_test_scenario_dispatch"
	Register(scenarioName, func(ctx context.Context, client QueryClient, run runsummary.RunSummary) (any, error) {
		return "ran:" + run.RunID, nil
	})

	var run = runsummary.New("run-42", scenarioName, 0, nil, 1, nil, "0.1.0")
	var result, err = Summarise(context.Background(), stubQueryClient{}, run)
	require.NoError(t, err)
	assert.Equal(t, "ran:run-42", result)
}

func TestSummariseUnregisteredScenarioErrors(t *testing.T) {
	var run = runsummary.New("run-1", "registry_test_never_registered", 0, nil, 1, nil, "0.1.0")
	var _, err = Summarise(context.Background(), stubQueryClient{}, run)
	assert.Error(t, err)
}

func TestRegisteredListsSortedScenarioNames(t *testing.T) {
	Register("registry_test_zzz", func(ctx context.Context, client QueryClient, run runsummary.RunSummary) (any, error) {
		return nil, nil
	})
	Register("registry_test_aaa", func(ctx context.Context, client QueryClient, run runsummary.RunSummary) (any, error) {
		return nil, nil
	})

	var names = Registered()
	var aIdx, zIdx = -1, -1
	for i, name := range names {
		if name == "registry_test_aaa" {
			aIdx = i
		}
		if name == "registry_test_zzz" {
			zIdx = i
		}
	}
	require.GreaterOrEqual(t, aIdx, 0)
	require.GreaterOrEqual(t, zIdx, 0)
	assert.Less(t, aIdx, zIdx)
}
