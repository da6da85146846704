package summariser

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// TimingStats summarises a duration-like column: its mean, standard
// deviation, and what fraction of the (unskipped) column falls within one,
// two, and three standard deviations of the mean.
//
// Grounded in analyze.rs's standard_timing_stats.
type TimingStats struct {
	Mean       float64
	Std        float64
	WithinStd  float64
	Within2Std float64
	Within3Std float64
}

// StandardTimingStats computes TimingStats for column col. skip drops the
// first skip samples before computing mean and std — scenarios typically
// skip early warm-up calls — but the within-N-std percentages are always
// computed against the full, unskipped column, matching the original's
// behavior of deriving bounds from the trimmed series while counting
// membership against the untrimmed one.
func StandardTimingStats(f Frame, col string, skip int) (TimingStats, error) {
	var values, err = f.Column(col)
	if err != nil {
		return TimingStats{}, err
	}
	if len(values) == 0 {
		return TimingStats{}, fmt.Errorf("summariser: column %q is empty", col)
	}

	var trimmed = values
	if skip > 0 && skip < len(values) {
		trimmed = values[skip:]
	} else if skip >= len(values) {
		trimmed = values[len(values):]
	}
	if len(trimmed) == 0 {
		return TimingStats{}, fmt.Errorf("summariser: column %q has no samples after skipping %d", col, skip)
	}

	var mean, std = meanAndStd(trimmed)

	var withinStd, within2Std, within3Std int
	for _, v := range values {
		var dev = math.Abs(v - mean)
		if dev <= std {
			withinStd++
		}
		if dev <= 2*std {
			within2Std++
		}
		if dev <= 3*std {
			within3Std++
		}
	}

	var total = float64(len(values))
	return TimingStats{
		Mean:       mean,
		Std:        std,
		WithinStd:  float64(withinStd) / total,
		Within2Std: float64(within2Std) / total,
		Within3Std: float64(within3Std) / total,
	}, nil
}

// RatioStats summarises a column whose values are naturally bounded ratios
// (e.g. success rates): mean, standard deviation, minimum, and maximum.
//
// Grounded in analyze.rs's standard_ratio_stats.
type RatioStats struct {
	Mean float64
	Std  float64
	Min  float64
	Max  float64
}

// StandardRatioStats computes RatioStats over the full column col.
func StandardRatioStats(f Frame, col string) (RatioStats, error) {
	var values, err = f.Column(col)
	if err != nil {
		return RatioStats{}, err
	}
	if len(values) == 0 {
		return RatioStats{}, fmt.Errorf("summariser: column %q is empty", col)
	}

	var mean, std = meanAndStd(values)
	var min, max = values[0], values[0]
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return RatioStats{Mean: mean, Std: std, Min: min, Max: max}, nil
}

// StandardRate computes the mean number of occurrences of col per window,
// bucketing rows into fixed-size windows anchored at the frame's first
// timestamp. The first and last bucket are dropped before averaging since
// they are typically partial, matching analyze.rs's standard_rate.
func StandardRate(f Frame, col string, window time.Duration) (float64, error) {
	var _, err = f.Column(col)
	if err != nil {
		return 0, err
	}
	if f.Len() == 0 {
		return 0, fmt.Errorf("summariser: frame has no rows to compute a rate over")
	}
	if window <= 0 {
		return 0, fmt.Errorf("summariser: window must be positive")
	}

	var times = append([]time.Time(nil), f.Time...)
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })

	var first = times[0]
	var bucketCounts = map[int64]int{}
	for _, t := range f.Time {
		var bucket = int64(t.Sub(first) / window)
		bucketCounts[bucket]++
	}

	var buckets = make([]int64, 0, len(bucketCounts))
	for b := range bucketCounts {
		buckets = append(buckets, b)
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i] < buckets[j] })

	if len(buckets) <= 2 {
		return 0, fmt.Errorf("summariser: not enough distinct windows to drop first and last and still average")
	}

	var interior = buckets[1 : len(buckets)-1]
	var sum int
	for _, b := range interior {
		sum += bucketCounts[b]
	}
	return float64(sum) / float64(len(interior)), nil
}

// CounterStats summarises a monotonically-increasing counter column: its
// total increase over the frame and the mean number of samples per window
// (see ComputeCounterStats).
//
// Not present verbatim in the retrieved original_source pack — model.rs,
// which would define this type, was not part of the retrieval. Reconstructed
// from usage sites in aggregator/holochain_metrics.rs, which treats counter
// metrics as "total delta across the run" plus "rate per sampling window".
// See DESIGN.md.
type CounterStats struct {
	Total float64
	Rate  float64
}

// ComputeCounterStats computes CounterStats for column col over window-sized
// buckets. Total is the column's final value minus its first (rows are
// assumed chronologically non-decreasing); Rate reuses StandardRate's
// windowed-average-with-trimmed-ends approach, counting samples rather than
// the counter's own delta, since sampling cadence rather than counter value
// is what wanders near a run's edges.
func ComputeCounterStats(f Frame, col string, window time.Duration) (CounterStats, error) {
	var values, err = f.Column(col)
	if err != nil {
		return CounterStats{}, err
	}
	if len(values) == 0 {
		return CounterStats{}, fmt.Errorf("summariser: column %q is empty", col)
	}

	var rate, rateErr = StandardRate(f, col, window)
	if rateErr != nil {
		return CounterStats{}, rateErr
	}

	return CounterStats{
		Total: values[len(values)-1] - values[0],
		Rate:  rate,
	}, nil
}

// GaugeStats summarises an instantaneous-reading column: its mean, minimum,
// and maximum over the frame, plus the last reading taken.
//
// Reconstructed for the same reason as CounterStats: model.rs was not part
// of the retrieved original_source pack. See DESIGN.md.
type GaugeStats struct {
	Mean float64
	Min  float64
	Max  float64
	Last float64
}

// ComputeGaugeStats computes GaugeStats over the full column col.
func ComputeGaugeStats(f Frame, col string) (GaugeStats, error) {
	var values, err = f.Column(col)
	if err != nil {
		return GaugeStats{}, err
	}
	if len(values) == 0 {
		return GaugeStats{}, fmt.Errorf("summariser: column %q is empty", col)
	}

	var min, max = values[0], values[0]
	var sum float64
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}
	return GaugeStats{
		Mean: sum / float64(len(values)),
		Min:  min,
		Max:  max,
		Last: values[len(values)-1],
	}, nil
}

// meanAndStd returns the population mean and standard deviation (ddof 0,
// matching Polars' default) of values.
func meanAndStd(values []float64) (float64, float64) {
	var sum float64
	for _, v := range values {
		sum += v
	}
	var mean = sum / float64(len(values))

	var sumSq float64
	for _, v := range values {
		var dev = v - mean
		sumSq += dev * dev
	}
	var std = math.Sqrt(sumSq / float64(len(values)))
	return mean, std
}
