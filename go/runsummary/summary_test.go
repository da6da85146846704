package runsummary

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSummary(duration *uint64) RunSummary {
	var s = New("run-1", "write_read", 1700000000, duration, 4, map[string]int{"writer": 2, "reader": 2}, "0.1.0")
	s.AddEnv("REGION", "us-east")
	s.SetPeerEndCount(4)
	return s
}

func TestFingerprintStableAcrossEqualInputs(t *testing.T) {
	var d = uint64(60)
	var a = newTestSummary(&d)
	var b = newTestSummary(&d)
	b.RunID = "run-2" // fingerprint must not depend on run id
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
}

func TestFingerprintDiffersOnBehaviourChange(t *testing.T) {
	var d = uint64(60)
	var a = newTestSummary(&d)
	var b = newTestSummary(&d)
	b.AssignedBehaviours["writer"] = 3
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}

func TestFingerprintDiffersBetweenSoakAndBoundedDuration(t *testing.T) {
	var d = uint64(60)
	var bounded = newTestSummary(&d)
	var soak = newTestSummary(nil)
	assert.NotEqual(t, bounded.Fingerprint(), soak.Fingerprint())
}

func TestStoreAndLoadRunSummaryRoundTrip(t *testing.T) {
	var d = uint64(30)
	var original = newTestSummary(&d)

	var buf bytes.Buffer
	require.NoError(t, StoreRunSummary(original, &buf))

	var loaded, err = LoadRunSummary(&buf)
	require.NoError(t, err)
	assert.Equal(t, original, loaded)
}

func TestAppendAndLoadSummaryRuns(t *testing.T) {
	var dir = t.TempDir()
	var path = filepath.Join(dir, "runs.jsonl")

	var d1 = uint64(10)
	var d2 = uint64(20)
	require.NoError(t, AppendRunSummary(newTestSummary(&d1), path))
	require.NoError(t, AppendRunSummary(newTestSummary(&d2), path))

	var runs, err = LoadSummaryRuns(path)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.EqualValues(t, 10, *runs[0].RunDuration)
	assert.EqualValues(t, 20, *runs[1].RunDuration)
}

func TestLoadSummaryRunsMissingFile(t *testing.T) {
	var _, err = LoadSummaryRuns(filepath.Join(t.TempDir(), "missing.jsonl"))
	assert.Error(t, err)
}

func TestGroupByFingerprintGroupsRepeatConfigurations(t *testing.T) {
	var d = uint64(60)
	var a = newTestSummary(&d)
	a.RunID = "run-a"
	var b = newTestSummary(&d)
	b.RunID = "run-b"
	var c = newTestSummary(&d)
	c.RunID = "run-c"
	c.AssignedBehaviours["writer"] = 9

	var groups = GroupByFingerprint([]RunSummary{a, b, c})
	require.Len(t, groups, 2)
	assert.Len(t, groups[a.Fingerprint()], 2)
	assert.Len(t, groups[c.Fingerprint()], 1)
}
