package domain

import (
	"testing"
	"time"
)

func TestOutcomeFromNumber(t *testing.T) {
	cases := map[int]Outcome{
		0:  OutcomeSmall,
		49: OutcomeSmall,
		50: OutcomeBig,
		99: OutcomeBig,
	}
	for n, want := range cases {
		if got := OutcomeFromNumber(n); got != want {
			t.Errorf("OutcomeFromNumber(%d) = %s, want %s", n, got, want)
		}
	}
}

func TestDrawRecordFields(t *testing.T) {
	now := time.Now()
	r := DrawRecord{
		Issue:     "20260829001",
		ResultRaw: "73,12,48",
		Number:    73,
		Outcome:   OutcomeBig,
		Timestamp: now,
	}
	if r.Issue != "20260829001" || r.Number != 73 || r.Outcome != OutcomeBig {
		t.Errorf("DrawRecord fields not set correctly: %+v", r)
	}
}

func TestPredictionStatsZeroValue(t *testing.T) {
	var s PredictionStats
	if s.Wins != 0 || s.TotalPredictions != 0 || s.Accuracy != 0 {
		t.Errorf("zero-value stats should be empty: %+v", s)
	}
}
