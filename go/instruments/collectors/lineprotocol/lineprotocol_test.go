package lineprotocol

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/swarmbench/swarmbench/go/executor"
	"github.com/swarmbench/swarmbench/go/instruments"
	"github.com/swarmbench/swarmbench/go/shutdown"
)

func TestWritesOperationRecordsAsLineProtocol(t *testing.T) {
	var dir = t.TempDir()
	var coord = shutdown.New()
	var bridge = executor.New(coord)

	var c, err = New(bridge, coord, dir, "test_scenario")
	require.NoError(t, err)

	var rec = instruments.NewOperationRecord("zome_call")
	rec.AddAttr("agent", "a1")
	rec.Finish(false)
	c.AddOperation(rec)

	coord.Broadcast()
	c.Finalize()
	bridge.WaitTracked()

	var entries, derr = os.ReadDir(dir)
	require.NoError(t, derr)
	require.Len(t, entries, 1)

	var contents, rerr = os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, rerr)
	require.Contains(t, string(contents), "wt.instruments.operation_duration")
	require.Contains(t, string(contents), "operation_id=zome_call")
	require.Contains(t, string(contents), "agent=a1")
}

func TestDropsPointsAfterTaskExited(t *testing.T) {
	var dir = t.TempDir()
	var coord = shutdown.New()
	var bridge = executor.New(coord)

	var c, err = New(bridge, coord, dir, "scenario")
	require.NoError(t, err)

	coord.Broadcast()
	c.Finalize()
	bridge.WaitTracked()

	require.True(t, c.taskExited.Load())
	// Should not panic or block.
	c.AddCustom(instruments.NewReportMetric("late").WithField("v", instruments.IntValue(1)))
}

func TestRefusesToOverwriteExistingFile(t *testing.T) {
	var dir = t.TempDir()
	var coord = shutdown.New()
	var bridge = executor.New(coord)

	var c1, err1 = New(bridge, coord, dir, "same")
	require.NoError(t, err1)
	coord.Broadcast()
	c1.Finalize()

	time.Sleep(time.Millisecond) // ensure a different unix-second filename isn't relied upon within the same test run

	var coord2 = shutdown.New()
	var bridge2 = executor.New(coord2)
	var _, err2 = New(bridge2, coord2, dir, "same")
	// Either a fresh filename succeeds (different second) or collides (error) — both are acceptable;
	// what must never happen is silently overwriting the first file.
	var entries, readErr = os.ReadDir(dir)
	require.NoError(t, readErr)
	if err2 != nil {
		require.ErrorIs(t, err2, os.ErrExist)
		require.Len(t, entries, 1)
	} else {
		require.Len(t, entries, 2)
	}
}
