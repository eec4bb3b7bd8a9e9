package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"drawsage/internal/service"

	tele "gopkg.in/telebot.v3"
)

func StartTelegramBot(predictions *service.PredictionService) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/predict", func(c tele.Context) error {
		snapshot, err := predictions.CurrentPrediction(context.Background())
		if err != nil {
			if errors.Is(err, service.ErrInsufficientHistory) {
				return c.Send("Still warming up, not enough draw history yet.")
			}
			return c.Send(fmt.Sprintf("Error fetching prediction: %v", err))
		}
		p := snapshot.Prediction
		msg := fmt.Sprintf(
			"Next draw %s\nPrediction: %s\nConfidence: %.1f%%\nTrend: %s (%.3f)\nStake: %.2f (%s, risk %s)",
			snapshot.NextIssue, p.Outcome, p.Confidence,
			p.TrendDirection, p.TrendStrength,
			p.SuggestedStake.Amount, p.SuggestedStake.Level, p.SuggestedStake.Risk,
		)
		return c.Send(msg)
	})

	b.Handle("/stats", func(c tele.Context) error {
		stats, err := predictions.Stats(context.Background())
		if err != nil {
			return c.Send(fmt.Sprintf("Error fetching stats: %v", err))
		}
		if stats.TotalPredictions == 0 {
			return c.Send("No settled predictions yet.")
		}
		msg := fmt.Sprintf(
			"Predictions: %d\nWins: %d\nAccuracy: %.1f%%\nWin streak: %d\nLoss streak: %d",
			stats.TotalPredictions, stats.Wins, stats.Accuracy,
			stats.WinStreak, stats.LossStreak,
		)
		return c.Send(msg)
	})

	b.Handle("/last", func(c tele.Context) error {
		settled, err := predictions.LastSettled(context.Background())
		if err != nil {
			return c.Send(fmt.Sprintf("Error fetching last result: %v", err))
		}
		if settled == nil {
			return c.Send("Nothing settled yet.")
		}
		verdict := "LOSS"
		if settled.Win {
			verdict = "WIN"
		}
		msg := fmt.Sprintf(
			"Issue %s: predicted %s, actual %s (%s)",
			settled.Issue, settled.Predicted, settled.Actual, verdict,
		)
		return c.Send(msg)
	})

	log.Println("Telegram bot started")
	go b.Start()
}
