package bench

import (
	"math"
	"sort"
)

// LatencyStats summarizes repeated executions of one (case, backend) pair.
// Latency fields are nil when no run succeeded; failures must not read as
// fast zero-latency successes.
type LatencyStats struct {
	MeanMS       *float64
	MedianMS     *float64
	StdDevMS     *float64
	MinMS        *float64
	MaxMS        *float64
	Successes    int
	Failures     int
	SuccessRate  float64
	MeanRowCount *float64
}

// Summarize computes latency statistics over the executions of one
// (case, backend) pair. Only successful runs contribute to the latency and
// row-count figures; the success rate is over all runs.
func Summarize(execs []Execution) *LatencyStats {
	s := &LatencyStats{}
	if len(execs) == 0 {
		return s
	}

	var durations []float64
	var rowSum float64
	for _, e := range execs {
		if !e.Success {
			continue
		}
		durations = append(durations, e.DurationMS)
		rowSum += float64(e.RowCount)
	}
	s.Successes = len(durations)
	s.Failures = len(execs) - len(durations)
	s.SuccessRate = float64(len(durations)) / float64(len(execs))
	if len(durations) == 0 {
		return s
	}

	mean := meanOf(durations)
	s.MeanMS = &mean
	med := medianOf(durations)
	s.MedianMS = &med
	sd := stdDevOf(durations, mean)
	s.StdDevMS = &sd
	lo, hi := minMaxOf(durations)
	s.MinMS = &lo
	s.MaxMS = &hi
	rows := rowSum / float64(len(durations))
	s.MeanRowCount = &rows
	return s
}

func meanOf(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func medianOf(vals []float64) float64 {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// stdDevOf is the sample standard deviation; zero for a single observation.
func stdDevOf(vals []float64, mean float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(vals)-1))
}

func minMaxOf(vals []float64) (float64, float64) {
	lo, hi := vals[0], vals[0]
	for _, v := range vals[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
