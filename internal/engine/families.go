package engine

import (
	"math"

	"drawsage/internal/domain"
	"drawsage/internal/ta"
)

// defaultVote is returned whenever a model has fewer records than its
// minimum window. Short histories degrade to this vote instead of failing.
const defaultVote = domain.OutcomeBig

// Predict evaluates the model against a newest-first history projection and
// returns exactly BIG or SMALL. It never fails: insufficient history and
// degenerate arithmetic (zero variance, zero range, zero average loss) all
// resolve to documented fallbacks.
func (m Model) Predict(nums []float64, outcomes []domain.Outcome) domain.Outcome {
	switch m.Family {
	case FamilyTrend:
		return predictTrend(nums, m.Window, m.Threshold)
	case FamilyMeanReversion:
		return predictMeanReversion(nums, m.Lookback, m.Deviation)
	case FamilyPattern:
		return predictPattern(nums, outcomes, m.PatternLength)
	case FamilyStatistical:
		return predictStatistical(nums, m.Method)
	}
	return defaultVote
}

// predictTrend compares the mean of the newest `window` numbers against the
// mean of the window before it. When the relative difference clears the
// threshold it votes with its sign, otherwise it falls back to in-window
// momentum (newest minus oldest-in-window).
func predictTrend(nums []float64, window int, threshold float64) domain.Outcome {
	if len(nums) < window+1 {
		return defaultVote
	}

	recent := ta.Mean(nums[:window])
	olderEnd := 2 * window
	if olderEnd > len(nums) {
		olderEnd = len(nums)
	}
	older := ta.Mean(nums[window:olderEnd])

	if older != 0 {
		rel := (recent - older) / older
		if math.Abs(rel) > threshold {
			if rel > 0 {
				return domain.OutcomeBig
			}
			return domain.OutcomeSmall
		}
	}

	if nums[0]-nums[window] > 0 {
		return domain.OutcomeBig
	}
	return domain.OutcomeSmall
}

// predictMeanReversion z-scores the newest value against the lookback
// window and bets on a pullback when it sits outside the deviation band.
// Zero variance gives z = 0 and flows into the short-vs-long mean branch.
func predictMeanReversion(nums []float64, lookback int, deviation float64) domain.Outcome {
	if len(nums) < lookback {
		return defaultVote
	}

	mean, std := ta.MeanStd(nums[:lookback])
	z := 0.0
	if std > 0 {
		z = (nums[0] - mean) / std
	}

	switch {
	case z > deviation:
		return domain.OutcomeSmall
	case z < -deviation:
		return domain.OutcomeBig
	}

	shortEnd := 3
	if shortEnd > len(nums) {
		shortEnd = len(nums)
	}
	if ta.Mean(nums[:shortEnd]) > mean {
		return domain.OutcomeSmall
	}
	return domain.OutcomeBig
}

// patternScanLimit bounds how deep into history pattern matching looks.
const patternScanLimit = 50

// predictPattern takes the newest patternLength outcomes as a query and
// scans older windows for exact matches, tallying the outcome that followed
// each match. Majority wins; ties and no-match cases fall back as documented.
func predictPattern(nums []float64, outcomes []domain.Outcome, patternLength int) domain.Outcome {
	if len(outcomes) < 2*patternLength {
		return defaultVote
	}

	query := outcomes[:patternLength]
	limit := len(outcomes)
	if limit > patternScanLimit {
		limit = patternScanLimit
	}

	bigNext, smallNext, matches := 0, 0, 0
	for i := patternLength; i+patternLength <= limit; i++ {
		if !outcomesEqual(outcomes[i:i+patternLength], query) {
			continue
		}
		matches++
		// Newest-first ordering: index i-1 is the outcome that followed
		// this window in time.
		if outcomes[i-1] == domain.OutcomeBig {
			bigNext++
		} else {
			smallNext++
		}
	}

	if matches == 0 {
		return predictTrend(nums, 5, 0.3)
	}
	if bigNext > smallNext {
		return domain.OutcomeBig
	}
	return domain.OutcomeSmall
}

func outcomesEqual(a, b []domain.Outcome) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// statWindow is how many of the newest numbers statistical models consume.
const statWindow = 20

const (
	emaAlpha  = 0.3
	rsiPeriod = 14
)

func predictStatistical(nums []float64, method StatMethod) domain.Outcome {
	if len(nums) == 0 {
		return defaultVote
	}

	end := statWindow
	if end > len(nums) {
		end = len(nums)
	}
	slice := nums[:end]
	newest := slice[0]

	switch method {
	case StatEMA:
		if ta.EWMA(chronological(slice), emaAlpha) < newest {
			return domain.OutcomeBig
		}
		return domain.OutcomeSmall

	case StatRSI:
		if len(slice) <= rsiPeriod {
			return defaultVote
		}
		avgGain, avgLoss := ta.AvgGainLoss(chronological(slice), rsiPeriod)
		if ta.RSIFromAverages(avgGain, avgLoss) > 50 {
			return domain.OutcomeBig
		}
		return domain.OutcomeSmall

	case StatFibonacci:
		min, max := ta.MinMax(slice)
		// Zero range pins the position to exactly 0.5, which the strict
		// greater-than rule resolves to SMALL.
		position := 0.5
		if max > min {
			position = (newest - min) / (max - min)
		}
		if position > 0.5 {
			return domain.OutcomeBig
		}
		return domain.OutcomeSmall

	case StatBollinger:
		mean, std := ta.MeanStd(slice)
		position := 0.0
		if std > 0 {
			position = (newest - mean) / (2 * std)
		}
		if position > 0 {
			return domain.OutcomeBig
		}
		return domain.OutcomeSmall
	}

	return defaultVote
}

// chronological returns a copy of a newest-first slice in oldest-first order.
func chronological(nums []float64) []float64 {
	out := make([]float64, len(nums))
	for i, v := range nums {
		out[len(nums)-1-i] = v
	}
	return out
}
