package instruments

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/swarmbench/swarmbench/go/executor"
	"github.com/swarmbench/swarmbench/go/shutdown"
)

func TestNewReporterFromConfigRequiresMetricsDirForFileSink(t *testing.T) {
	var coord = shutdown.New()
	var bridge = executor.New(coord)
	var _, err = NewReporterFromConfig(ReportConfig{Sinks: []string{SinkFile}}, bridge, coord)
	require.ErrorContains(t, err, "metrics directory")
}

func TestNewReporterFromConfigRejectsGCSWithoutFileSink(t *testing.T) {
	var coord = shutdown.New()
	var bridge = executor.New(coord)
	var _, err = NewReporterFromConfig(ReportConfig{GCSBucket: "archive"}, bridge, coord)
	require.ErrorContains(t, err, "GCS archive bucket")
}

func TestNewReporterFromConfigBuildsInMemoryAndFileSinks(t *testing.T) {
	var coord = shutdown.New()
	var bridge = executor.New(coord)
	var dir = t.TempDir()

	var r, err = NewReporterFromConfig(ReportConfig{
		Sinks:        []string{SinkInMemory, SinkFile},
		MetricsDir:   dir,
		ScenarioName: "test_scenario",
	}, bridge, coord)
	require.NoError(t, err)
	require.Len(t, r.collectors, 2)

	coord.Broadcast()
	r.Finalize()
	bridge.WaitTracked()
}
