package summariser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frameWithColumn(name string, values []float64, start time.Time, step time.Duration) Frame {
	var times = make([]time.Time, len(values))
	for i := range values {
		times[i] = start.Add(time.Duration(i) * step)
	}
	return Frame{Time: times, Numeric: map[string][]float64{name: values}}
}

func TestStandardTimingStats(t *testing.T) {
	var values = []float64{10, 10, 10, 10, 100}
	var f = frameWithColumn("latency_ms", values, time.Unix(0, 0), time.Second)

	var stats, err = StandardTimingStats(f, "latency_ms", 0)
	require.NoError(t, err)
	assert.InDelta(t, 28, stats.Mean, 0.01)
	assert.Greater(t, stats.Std, 0.0)
	assert.InDelta(t, 0.8, stats.WithinStd, 0.01)
}

func TestStandardTimingStatsSkipsWarmupForMeanButNotMembership(t *testing.T) {
	var values = []float64{1000, 10, 10, 10, 10}
	var f = frameWithColumn("latency_ms", values, time.Unix(0, 0), time.Second)

	var skipped, err = StandardTimingStats(f, "latency_ms", 1)
	require.NoError(t, err)
	// mean/std computed only over the trailing four 10s: tight distribution.
	assert.InDelta(t, 10, skipped.Mean, 0.01)
	assert.InDelta(t, 0, skipped.Std, 0.01)
	// membership counted against the full, unskipped column: the leading
	// 1000 falls far outside [mean-std, mean+std] and is excluded.
	assert.Less(t, skipped.WithinStd, 1.0)
}

func TestStandardTimingStatsEmptyColumn(t *testing.T) {
	var f = frameWithColumn("latency_ms", nil, time.Unix(0, 0), time.Second)
	var _, err = StandardTimingStats(f, "latency_ms", 0)
	assert.Error(t, err)
}

func TestStandardRatioStats(t *testing.T) {
	var values = []float64{0.5, 0.6, 0.7, 0.8}
	var f = frameWithColumn("success_rate", values, time.Unix(0, 0), time.Second)

	var stats, err = StandardRatioStats(f, "success_rate")
	require.NoError(t, err)
	assert.InDelta(t, 0.65, stats.Mean, 0.001)
	assert.Equal(t, 0.5, stats.Min)
	assert.Equal(t, 0.8, stats.Max)
}

func TestStandardRateDropsFirstAndLastBucket(t *testing.T) {
	// 5 one-second windows: 1, 3, 3, 3, 1 samples. Interior buckets (indices
	// 1..3) average to 3.
	var values []float64
	var times []time.Time
	var start = time.Unix(0, 0)
	var counts = []int{1, 3, 3, 3, 1}
	for bucket, count := range counts {
		for i := 0; i < count; i++ {
			values = append(values, 1)
			times = append(times, start.Add(time.Duration(bucket)*time.Second).Add(time.Duration(i)*time.Millisecond))
		}
	}
	var f = Frame{Time: times, Numeric: map[string][]float64{"calls": values}}

	var rate, err = StandardRate(f, "calls", time.Second)
	require.NoError(t, err)
	assert.InDelta(t, 3, rate, 0.001)
}

func TestStandardRateRequiresAtLeastThreeBuckets(t *testing.T) {
	var f = frameWithColumn("calls", []float64{1, 1}, time.Unix(0, 0), time.Second)
	var _, err = StandardRate(f, "calls", time.Second)
	assert.Error(t, err)
}

func TestComputeCounterStats(t *testing.T) {
	var counts = []int{1, 3, 3, 3, 1}
	var values []float64
	var times []time.Time
	var start = time.Unix(0, 0)
	var total float64
	for bucket, count := range counts {
		for i := 0; i < count; i++ {
			total++
			values = append(values, total)
			times = append(times, start.Add(time.Duration(bucket)*time.Second).Add(time.Duration(i)*time.Millisecond))
		}
	}
	var f = Frame{Time: times, Numeric: map[string][]float64{"ops_total": values}}

	var stats, err = ComputeCounterStats(f, "ops_total", time.Second)
	require.NoError(t, err)
	assert.Equal(t, values[len(values)-1]-values[0], stats.Total)
	assert.InDelta(t, 3, stats.Rate, 0.001)
}

func TestComputeGaugeStats(t *testing.T) {
	var values = []float64{4, 2, 9, 5}
	var f = frameWithColumn("queue_depth", values, time.Unix(0, 0), time.Second)

	var stats, err = ComputeGaugeStats(f, "queue_depth")
	require.NoError(t, err)
	assert.Equal(t, 2.0, stats.Min)
	assert.Equal(t, 9.0, stats.Max)
	assert.Equal(t, 5.0, stats.Last)
	assert.InDelta(t, 5, stats.Mean, 0.001)
}

func TestUnknownColumnErrors(t *testing.T) {
	var f = frameWithColumn("a", []float64{1}, time.Unix(0, 0), time.Second)
	var _, err = f.Column("b")
	assert.Error(t, err)
}
