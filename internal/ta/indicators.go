package ta

import "math"

// MeanStd returns the mean and population standard deviation of values.
func MeanStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	mean := Mean(values)
	var variance float64
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(values))
	return mean, math.Sqrt(variance)
}

// Mean returns the arithmetic mean of values, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// EWMA folds values (oldest to newest) into an exponentially weighted
// moving average with smoothing factor alpha.
func EWMA(values []float64, alpha float64) float64 {
	if len(values) == 0 {
		return 0
	}
	ewma := values[0]
	for _, v := range values[1:] {
		ewma = alpha*v + (1-alpha)*ewma
	}
	return ewma
}

// AvgGainLoss splits the deltas of a chronological (oldest to newest)
// series into average gain and average loss over the last `period` steps.
func AvgGainLoss(values []float64, period int) (float64, float64) {
	if period <= 0 || len(values) <= period {
		return 0, 0
	}
	start := len(values) - period
	var gainSum, lossSum float64
	for i := start; i < len(values); i++ {
		delta := values[i] - values[i-1]
		if delta > 0 {
			gainSum += delta
		} else {
			lossSum -= delta
		}
	}
	return gainSum / float64(period), lossSum / float64(period)
}

// RSIFromAverages converts average gain/loss into an RSI value.
// A zero average loss is treated as maximal RSI (100).
func RSIFromAverages(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// MinMax returns the smallest and largest element of values.
func MinMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		min = math.Min(min, v)
		max = math.Max(max, v)
	}
	return min, max
}
