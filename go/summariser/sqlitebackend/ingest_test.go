package sqlitebackend

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLineBasic(t *testing.T) {
	var pt, err = parseLine(`wt.instruments.operation_duration,is_error=false,operation_id=put_call value=12.5 1700000000000000000`)
	require.NoError(t, err)
	assert.Equal(t, "wt.instruments.operation_duration", pt.measurement)
	assert.Equal(t, "false", pt.tags["is_error"])
	assert.Equal(t, "put_call", pt.tags["operation_id"])
	assert.InDelta(t, 12.5, pt.numericFields["value"], 0.0001)
	assert.EqualValues(t, 1700000000000000000, pt.unixNano)
}

func TestParseLineEscapedTagValue(t *testing.T) {
	var pt, err = parseLine(`wt.custom.queue\ depth,region=us\,east value=3i 1700000000000000000`)
	require.NoError(t, err)
	assert.Equal(t, "wt.custom.queue depth", pt.measurement)
	assert.Equal(t, "us,east", pt.tags["region"])
	assert.InDelta(t, 3, pt.numericFields["value"], 0.0001)
}

func TestParseLineSkipsStringFields(t *testing.T) {
	var pt, err = parseLine(`m,tag=a note="hello world",count=2i 100`)
	require.NoError(t, err)
	assert.NotContains(t, pt.numericFields, "note")
	assert.InDelta(t, 2, pt.numericFields["count"], 0.0001)
}

func TestIngestFile(t *testing.T) {
	var dir = t.TempDir()
	var influxPath = filepath.Join(dir, "run.influx")
	var content = "" +
		"wt.instruments.operation_duration,operation_id=put_call,is_error=false value=10 1000000000\n" +
		"wt.instruments.operation_duration,operation_id=put_call,is_error=false value=20 2000000000\n" +
		"wt.custom.queue_depth value=5i 1000000000\n"
	require.NoError(t, os.WriteFile(influxPath, []byte(content), 0o644))

	var dbPath = filepath.Join(dir, "metrics.sqlite")
	var db, err = Open(dbPath)
	require.NoError(t, err)
	defer db.Close()

	var inserted, ingestErr = IngestFile(db, influxPath)
	require.NoError(t, ingestErr)
	assert.Equal(t, 3, inserted)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM points`).Scan(&count))
	assert.Equal(t, 3, count)
}
