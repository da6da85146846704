package sqlitebackend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swarmbench/swarmbench/go/runsummary"
)

func newTestClient(t *testing.T, content string) *Client {
	t.Helper()
	var dir = t.TempDir()
	var influxPath = filepath.Join(dir, "run.influx")
	require.NoError(t, os.WriteFile(influxPath, []byte(content), 0o644))

	var db, err = Open(filepath.Join(dir, "metrics.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var _, ingestErr = IngestFile(db, influxPath)
	require.NoError(t, ingestErr)

	return NewClient(db)
}

func TestQueryInstrumentDataFiltersByOperationID(t *testing.T) {
	var client = newTestClient(t, ""+
		"wt.instruments.operation_duration,operation_id=put_call,is_error=false value=10 1700000001000000000\n"+
		"wt.instruments.operation_duration,operation_id=get_call,is_error=false value=99 1700000002000000000\n"+
		"wt.instruments.operation_duration,operation_id=put_call,is_error=false value=20 1700000003000000000\n")

	var run = runsummary.New("run-1", "demo", 1700000000, nil, 1, nil, "0.1.0")
	var frame, err = client.QueryInstrumentData(context.Background(), run, "put_call")
	require.NoError(t, err)
	assert.Equal(t, 2, frame.Len())
	assert.ElementsMatch(t, []float64{10, 20}, frame.Numeric["value"])
}

func TestQueryCustomDataProjectsTagColumns(t *testing.T) {
	var client = newTestClient(t,
		"wt.custom.queue_depth,region=us-east value=5i 1700000001000000000\n"+
			"wt.custom.queue_depth,region=eu-west value=9i 1700000002000000000\n")

	var run = runsummary.New("run-1", "demo", 1700000000, nil, 1, nil, "0.1.0")
	var frame, err = client.QueryCustomData(context.Background(), run, "wt.custom.queue_depth", []string{"region"})
	require.NoError(t, err)
	assert.Equal(t, 2, frame.Len())
	assert.ElementsMatch(t, []string{"us-east", "eu-west"}, frame.Tags["region"])
}

func TestQueryZomeCallLikeDataFiltersByErrorFlag(t *testing.T) {
	var client = newTestClient(t, ""+
		"wt.instruments.operation_duration,operation_id=put_call,is_error=false value=10 1700000001000000000\n"+
		"wt.instruments.operation_duration,operation_id=put_call,is_error=true value=500 1700000002000000000\n")

	var run = runsummary.New("run-1", "demo", 1700000000, nil, 1, nil, "0.1.0")
	var frame, err = client.QueryZomeCallLikeData(context.Background(), run, []string{"put_call"}, nil, true)
	require.NoError(t, err)
	require.Equal(t, 1, frame.Len())
	assert.Equal(t, 500.0, frame.Numeric["value"][0])
}
