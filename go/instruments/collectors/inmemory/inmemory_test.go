package inmemory

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/swarmbench/swarmbench/go/instruments"
)

func record(id string, d time.Duration, isError bool) *instruments.OperationRecord {
	var r = instruments.NewOperationRecord(id)
	time.Sleep(d)
	r.Finish(isError)
	return r
}

func TestFinalizePrintsPerOperationTable(t *testing.T) {
	var buf bytes.Buffer
	var c = New(&buf)

	c.AddOperation(record("zome_call", time.Millisecond, false))
	c.AddOperation(record("zome_call", 2*time.Millisecond, false))
	c.AddOperation(record("app_install", time.Millisecond, true))

	c.Finalize()

	var out = buf.String()
	require.Contains(t, out, "Summary of operations")
	require.Contains(t, out, "zome_call")
	require.Contains(t, out, "app_install")
}

func TestAddCustomIsNoOp(t *testing.T) {
	var buf bytes.Buffer
	var c = New(&buf)
	c.AddCustom(instruments.NewReportMetric("agents_active").WithField("count", instruments.IntValue(3)))
	c.Finalize()
	require.False(t, strings.Contains(buf.String(), "agents_active"))
}

func TestNewDefaultsToStdoutWhenNil(t *testing.T) {
	var c = New(nil)
	require.NotNil(t, c.out)
}
