package domain

import "time"

// Outcome is the coarse result of a draw, split at the numeric midpoint.
type Outcome string

const (
	OutcomeBig   Outcome = "BIG"
	OutcomeSmall Outcome = "SMALL"
)

// BigThreshold is the midpoint: numbers at or above it are BIG.
const BigThreshold = 50

// OutcomeFromNumber maps a draw number to its BIG/SMALL outcome.
func OutcomeFromNumber(n int) Outcome {
	if n >= BigThreshold {
		return OutcomeBig
	}
	return OutcomeSmall
}

// DrawRecord is one normalized history entry of the draw game.
// Sequences of DrawRecord are always ordered newest-first (index 0 = most
// recent); every prediction function relies on that ordering.
type DrawRecord struct {
	Issue     string    `json:"issue"`
	ResultRaw string    `json:"result"`
	Number    int       `json:"number"`
	Outcome   Outcome   `json:"outcome"`
	Timestamp time.Time `json:"timestamp"`
}

type TrendDirection string

const (
	TrendUpward   TrendDirection = "UPWARD"
	TrendDownward TrendDirection = "DOWNWARD"
	TrendNeutral  TrendDirection = "NEUTRAL"
)

type StakeLevel string

const (
	StakeHighConfidence StakeLevel = "HIGH_CONFIDENCE"
	StakeMedium         StakeLevel = "MEDIUM"
	StakeLow            StakeLevel = "LOW"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// StakeSuggestion is a recommended bet sizing, not a promise of profit.
type StakeSuggestion struct {
	Amount float64    `json:"amount"`
	Level  StakeLevel `json:"level"`
	Risk   RiskLevel  `json:"risk"`
}

// ModelBreakdown reports how the weighted vote split across the population.
type ModelBreakdown struct {
	BigVoteShare   float64 `json:"big_vote_share"`
	SmallVoteShare float64 `json:"small_vote_share"`
	ActiveModels   int     `json:"active_models"`
}

// PredictionResult is the engine's output for one history window.
// Produced fresh per invocation; the engine never persists it.
type PredictionResult struct {
	Outcome        Outcome         `json:"outcome"`
	Confidence     float64         `json:"confidence"`
	ModelCount     int             `json:"model_count"`
	TrendDirection TrendDirection  `json:"trend_direction"`
	TrendStrength  float64         `json:"trend_strength"`
	SuggestedStake StakeSuggestion `json:"suggested_stake"`
	NextIssueTime  time.Time       `json:"next_issue_time"`
	ModelBreakdown ModelBreakdown  `json:"model_breakdown"`
}

// PredictionSnapshot is a prediction pinned to the issue it is for,
// as cached between invocations.
type PredictionSnapshot struct {
	NextIssue  string           `json:"next_issue"`
	Prediction PredictionResult `json:"prediction"`
	CreatedAt  time.Time        `json:"created_at"`
}

// SettledPrediction records how a past prediction fared once the draw landed.
type SettledPrediction struct {
	Issue     string    `json:"issue"`
	Predicted Outcome   `json:"predicted"`
	Actual    Outcome   `json:"actual"`
	Win       bool      `json:"win"`
	SettledAt time.Time `json:"settled_at"`
}

// PredictionStats are rolling accuracy counters persisted across invocations.
type PredictionStats struct {
	WinStreak        int     `json:"win_streak"`
	LossStreak       int     `json:"loss_streak"`
	TotalPredictions int     `json:"total_predictions"`
	Wins             int     `json:"wins"`
	Accuracy         float64 `json:"accuracy"`
}

// HistoryAnalysis summarizes a history window for the history endpoint.
type HistoryAnalysis struct {
	BigCount      int     `json:"big_count"`
	SmallCount    int     `json:"small_count"`
	BigRatio      float64 `json:"big_ratio"`
	StreakOutcome Outcome `json:"streak_outcome"`
	StreakLength  int     `json:"streak_length"`
	AverageNumber float64 `json:"average_number"`
}
