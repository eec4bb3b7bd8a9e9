package engine

import "fmt"

// Family tags the evaluation strategy a model belongs to. Each family owns
// a fixed share of the total vote weight, split evenly across its members.
type Family string

const (
	FamilyTrend         Family = "trend"
	FamilyMeanReversion Family = "mean_reversion"
	FamilyPattern       Family = "pattern"
	FamilyStatistical   Family = "statistical"
)

// StatMethod selects the sub-strategy of a statistical-family model.
type StatMethod int

const (
	StatEMA StatMethod = iota
	StatRSI
	StatFibonacci
	StatBollinger
)

// Family weight shares. They sum to 1.0 for the default population.
const (
	trendShare         = 0.40
	meanReversionShare = 0.25
	patternShare       = 0.20
	statisticalShare   = 0.15
)

// Model is one immutable scoring unit. Parameters are derived
// arithmetically at construction and never change afterwards.
type Model struct {
	ID     string
	Family Family
	Weight float64

	// trend family
	Window    int
	Threshold float64

	// mean-reversion family
	Lookback  int
	Deviation float64

	// pattern family
	PatternLength int

	// statistical family
	Method StatMethod
}

// PopulationConfig holds the per-family model counts.
type PopulationConfig struct {
	TrendCount         int
	MeanReversionCount int
	PatternCount       int
	StatisticalCount   int
}

// DefaultPopulation is the standard 120-model split.
func DefaultPopulation() PopulationConfig {
	return PopulationConfig{
		TrendCount:         48,
		MeanReversionCount: 30,
		PatternCount:       24,
		StatisticalCount:   18,
	}
}

// BuildPopulation deterministically constructs the model set. The same
// counts always yield the same population; there is no randomness and no
// failure path.
func BuildPopulation(cfg PopulationConfig) []Model {
	models := make([]Model, 0, cfg.TrendCount+cfg.MeanReversionCount+cfg.PatternCount+cfg.StatisticalCount)

	for i := 0; i < cfg.TrendCount; i++ {
		models = append(models, Model{
			ID:        fmt.Sprintf("trend-%d", i),
			Family:    FamilyTrend,
			Weight:    trendShare / float64(cfg.TrendCount),
			Window:    5 + i%15,
			Threshold: 0.5 + 0.01*float64(i),
		})
	}

	for i := 0; i < cfg.MeanReversionCount; i++ {
		models = append(models, Model{
			ID:        fmt.Sprintf("meanrev-%d", i),
			Family:    FamilyMeanReversion,
			Weight:    meanReversionShare / float64(cfg.MeanReversionCount),
			Lookback:  10 + i%20,
			Deviation: 1.0 + 0.05*float64(i),
		})
	}

	for i := 0; i < cfg.PatternCount; i++ {
		models = append(models, Model{
			ID:            fmt.Sprintf("pattern-%d", i),
			Family:        FamilyPattern,
			Weight:        patternShare / float64(cfg.PatternCount),
			PatternLength: 3 + i%7,
		})
	}

	for i := 0; i < cfg.StatisticalCount; i++ {
		models = append(models, Model{
			ID:     fmt.Sprintf("stat-%d", i),
			Family: FamilyStatistical,
			Weight: statisticalShare / float64(cfg.StatisticalCount),
			Method: StatMethod(i % 4),
		})
	}

	return models
}
