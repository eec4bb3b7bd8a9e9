package engine

import (
	"math"
	"time"

	"drawsage/internal/domain"
)

// nowFunc is a seam for tests; NextIssueTime is the only wall-clock output.
var nowFunc = time.Now

// Trend window sizes for the 5/15/30-sample mean comparison.
const (
	trendShortWindow  = 5
	trendMediumWindow = 15
	trendLongWindow   = 30
)

// Engine owns an immutable model population and turns a newest-first draw
// history into a single weighted-vote prediction. It holds no per-call
// state, so concurrent callers with different histories are independent.
type Engine struct {
	models       []Model
	drawInterval time.Duration
}

// NewEngine builds the population once. The population is never mutated
// afterwards and is safe to share.
func NewEngine(cfg PopulationConfig, drawInterval time.Duration) *Engine {
	if drawInterval <= 0 {
		drawInterval = 60 * time.Second
	}
	return &Engine{
		models:       BuildPopulation(cfg),
		drawInterval: drawInterval,
	}
}

// Models exposes the population for inspection (weights, family counts).
func (e *Engine) Models() []Model {
	return e.models
}

// Predict evaluates every model against the history and reduces the
// weighted votes into one outcome. It tolerates arbitrarily short
// histories: models degrade to documented default votes, never errors.
func (e *Engine) Predict(history []domain.DrawRecord) domain.PredictionResult {
	nums := make([]float64, len(history))
	outcomes := make([]domain.Outcome, len(history))
	for i, rec := range history {
		nums[i] = float64(rec.Number)
		outcomes[i] = rec.Outcome
	}

	var bigVotes, smallVotes float64
	for _, m := range e.models {
		if m.Predict(nums, outcomes) == domain.OutcomeBig {
			bigVotes += m.Weight
		} else {
			smallVotes += m.Weight
		}
	}

	// Weights sum to 1.0 for the default population, but floating-point
	// drift and custom configs mean the denominator is never assumed.
	total := bigVotes + smallVotes
	outcome := domain.OutcomeSmall
	confidence := 50.0
	breakdown := domain.ModelBreakdown{ActiveModels: len(e.models)}
	if total > 1e-9 {
		if bigVotes > smallVotes {
			outcome = domain.OutcomeBig
		}
		confidence = math.Max(bigVotes, smallVotes) / total * 100
		breakdown.BigVoteShare = bigVotes / total
		breakdown.SmallVoteShare = smallVotes / total
	}

	direction, strength := trend(nums)

	return domain.PredictionResult{
		Outcome:        outcome,
		Confidence:     confidence,
		ModelCount:     len(e.models),
		TrendDirection: direction,
		TrendStrength:  strength,
		SuggestedStake: SuggestStake(confidence, strength),
		NextIssueTime:  nowFunc().Add(e.drawInterval),
		ModelBreakdown: breakdown,
	}
}

// trend compares short, medium, and long window means of the numeric
// history. Strength is reported as an absolute value.
func trend(nums []float64) (domain.TrendDirection, float64) {
	short := windowMean(nums, trendShortWindow)
	medium := windowMean(nums, trendMediumWindow)
	long := windowMean(nums, trendLongWindow)

	switch {
	case short > medium && medium > long:
		if long == 0 {
			return domain.TrendUpward, 0
		}
		return domain.TrendUpward, math.Abs((short - long) / long)
	case short < medium && medium < long:
		if long == 0 {
			return domain.TrendDownward, 0
		}
		return domain.TrendDownward, math.Abs((long - short) / long)
	}
	return domain.TrendNeutral, 0
}

func windowMean(nums []float64, window int) float64 {
	if window > len(nums) {
		window = len(nums)
	}
	if window == 0 {
		return 0
	}
	var sum float64
	for _, v := range nums[:window] {
		sum += v
	}
	return sum / float64(window)
}
