package engine

import "drawsage/internal/domain"

// Stake sizing constants. All fixed; no state is retained between calls.
const (
	baseStake = 1.0

	highConfidenceFloor = 75.0
	highTrendFloor      = 0.1
	mediumFloor         = 65.0

	mediumFraction = 0.7
	lowFraction    = 0.3
)

// SuggestStake sizes a recommended stake from confidence and trend
// strength and assigns the confidence tier and risk class.
func SuggestStake(confidence, trendStrength float64) domain.StakeSuggestion {
	stake := baseStake * (confidence / 100) * (1 + 2*trendStrength)

	switch {
	case confidence > highConfidenceFloor && trendStrength > highTrendFloor:
		return domain.StakeSuggestion{Amount: stake, Level: domain.StakeHighConfidence, Risk: domain.RiskLow}
	case confidence > mediumFloor:
		return domain.StakeSuggestion{Amount: mediumFraction * stake, Level: domain.StakeMedium, Risk: domain.RiskMedium}
	default:
		return domain.StakeSuggestion{Amount: lowFraction * stake, Level: domain.StakeLow, Risk: domain.RiskHigh}
	}
}
