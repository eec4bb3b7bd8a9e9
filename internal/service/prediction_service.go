package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"drawsage/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

const (
	predictionKey  = "draws:prediction"
	lastSettledKey = "draws:last_settled"
	statsKey       = "draws:stats"
)

const predictionCacheTTL = 5 * time.Minute

// ErrInsufficientHistory signals fewer records than the engine's required
// minimum. Callers skip prediction instead of treating it as a failure.
var ErrInsufficientHistory = errors.New("insufficient draw history")

type DrawProvider interface {
	FetchHistory(ctx context.Context, limit int) ([]domain.DrawRecord, error)
}

type DrawRepository interface {
	UpsertDraws(ctx context.Context, records []domain.DrawRecord) error
	GetLatest(ctx context.Context, limit int) ([]domain.DrawRecord, error)
}

type RedisClient interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
}

// Predictor is the ensemble engine boundary.
type Predictor interface {
	Predict(history []domain.DrawRecord) domain.PredictionResult
}

type Config struct {
	MinHistory int
	FetchLimit int
	StatsTTL   time.Duration
}

// PredictionService orchestrates draw ingestion, prediction, settlement,
// and the Redis-backed stats. The engine itself stays stateless; all
// cross-invocation state lives here behind explicit load/save calls.
type PredictionService struct {
	tracer    trace.Tracer
	provider  DrawProvider
	repo      DrawRepository
	redis     RedisClient
	predictor Predictor
	cfg       Config
}

func NewPredictionService(
	tracer trace.Tracer,
	provider DrawProvider,
	repo DrawRepository,
	redisClient RedisClient,
	predictor Predictor,
	cfg Config,
) *PredictionService {
	if cfg.MinHistory <= 0 {
		cfg.MinHistory = 50
	}
	if cfg.FetchLimit <= 0 {
		cfg.FetchLimit = 100
	}
	if cfg.StatsTTL <= 0 {
		cfg.StatsTTL = 24 * time.Hour
	}
	return &PredictionService{
		tracer:    tracer,
		provider:  provider,
		repo:      repo,
		redis:     redisClient,
		predictor: predictor,
		cfg:       cfg,
	}
}

// SyncDraws pulls the latest history, persists it, settles the previous
// prediction against the newest draw, and caches a fresh prediction.
// Repo and Redis failures are logged and tolerated; only a provider
// failure is surfaced.
func (s *PredictionService) SyncDraws(ctx context.Context) error {
	_, span := s.tracer.Start(ctx, "prediction-service.sync-draws")
	defer span.End()

	records, err := s.provider.FetchHistory(ctx, s.cfg.FetchLimit)
	if err != nil {
		return fmt.Errorf("sync draws: %w", err)
	}
	if len(records) == 0 {
		return nil
	}

	if s.repo != nil {
		if err := s.repo.UpsertDraws(ctx, records); err != nil {
			log.Printf("draw upsert error: %v", err)
		}
	}

	latest := records[0]
	s.settle(ctx, latest)

	history := s.bestHistory(ctx, records)
	if len(history) < s.cfg.MinHistory {
		log.Printf("skipping prediction: %d of %d required records", len(history), s.cfg.MinHistory)
		return nil
	}

	snapshot := domain.PredictionSnapshot{
		NextIssue:  nextIssueID(latest.Issue),
		Prediction: s.predictor.Predict(history),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.setJSON(ctx, predictionKey, snapshot, predictionCacheTTL); err != nil {
		log.Printf("prediction cache write error: %v", err)
	}
	return nil
}

// CurrentPrediction returns the cached snapshot, recomputing from stored
// history on a miss.
func (s *PredictionService) CurrentPrediction(ctx context.Context) (*domain.PredictionSnapshot, error) {
	_, span := s.tracer.Start(ctx, "prediction-service.current-prediction")
	defer span.End()

	var cached domain.PredictionSnapshot
	if ok, err := s.getJSON(ctx, predictionKey, &cached); err != nil {
		log.Printf("prediction cache read error: %v", err)
	} else if ok {
		return &cached, nil
	}

	history, err := s.History(ctx, s.cfg.FetchLimit)
	if err != nil {
		return nil, err
	}
	if len(history) < s.cfg.MinHistory {
		return nil, ErrInsufficientHistory
	}

	snapshot := domain.PredictionSnapshot{
		NextIssue:  nextIssueID(history[0].Issue),
		Prediction: s.predictor.Predict(history),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.setJSON(ctx, predictionKey, snapshot, predictionCacheTTL); err != nil {
		log.Printf("prediction cache write error: %v", err)
	}
	return &snapshot, nil
}

// History returns up to limit records, newest first, preferring Postgres
// and falling back to a live provider call.
func (s *PredictionService) History(ctx context.Context, limit int) ([]domain.DrawRecord, error) {
	_, span := s.tracer.Start(ctx, "prediction-service.history")
	defer span.End()

	if s.repo != nil {
		records, err := s.repo.GetLatest(ctx, limit)
		if err != nil {
			log.Printf("draw repo read error: %v", err)
		} else if len(records) > 0 {
			return records, nil
		}
	}
	return s.provider.FetchHistory(ctx, limit)
}

// Stats loads the rolling accuracy counters, zero-valued when absent.
func (s *PredictionService) Stats(ctx context.Context) (domain.PredictionStats, error) {
	var stats domain.PredictionStats
	_, err := s.getJSON(ctx, statsKey, &stats)
	return stats, err
}

// LastSettled returns the most recently settled prediction, nil when none.
func (s *PredictionService) LastSettled(ctx context.Context) (*domain.SettledPrediction, error) {
	var settled domain.SettledPrediction
	ok, err := s.getJSON(ctx, lastSettledKey, &settled)
	if err != nil || !ok {
		return nil, err
	}
	return &settled, nil
}

// settle scores the cached prediction against the newest draw and updates
// the rolling stats. Store failures only cost us the update.
func (s *PredictionService) settle(ctx context.Context, latest domain.DrawRecord) {
	var snapshot domain.PredictionSnapshot
	ok, err := s.getJSON(ctx, predictionKey, &snapshot)
	if err != nil {
		log.Printf("settlement cache read error: %v", err)
		return
	}
	if !ok || snapshot.NextIssue == "" || snapshot.NextIssue != latest.Issue {
		return
	}

	win := snapshot.Prediction.Outcome == latest.Outcome
	settled := domain.SettledPrediction{
		Issue:     latest.Issue,
		Predicted: snapshot.Prediction.Outcome,
		Actual:    latest.Outcome,
		Win:       win,
		SettledAt: time.Now().UTC(),
	}
	if err := s.setJSON(ctx, lastSettledKey, settled, s.cfg.StatsTTL); err != nil {
		log.Printf("settlement write error: %v", err)
	}

	var stats domain.PredictionStats
	if _, err := s.getJSON(ctx, statsKey, &stats); err != nil {
		log.Printf("stats read error: %v", err)
		return
	}
	stats.TotalPredictions++
	if win {
		stats.Wins++
		stats.WinStreak++
		stats.LossStreak = 0
	} else {
		stats.LossStreak++
		stats.WinStreak = 0
	}
	stats.Accuracy = float64(stats.Wins) / float64(stats.TotalPredictions) * 100
	if err := s.setJSON(ctx, statsKey, stats, s.cfg.StatsTTL); err != nil {
		log.Printf("stats write error: %v", err)
	}
}

// bestHistory prefers the repo window (which may be deeper than one fetch)
// over the records just fetched.
func (s *PredictionService) bestHistory(ctx context.Context, fetched []domain.DrawRecord) []domain.DrawRecord {
	if s.repo != nil {
		stored, err := s.repo.GetLatest(ctx, s.cfg.FetchLimit)
		if err == nil && len(stored) >= len(fetched) {
			return stored
		}
	}
	return fetched
}

// nextIssueID increments a numeric issue id, preserving its zero padding.
// Non-numeric ids yield an empty id, which disables settlement for that round.
func nextIssueID(issue string) string {
	n, err := strconv.ParseInt(issue, 10, 64)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%0*d", len(issue), n+1)
}

// AnalyzeDraws summarizes a newest-first history window.
func AnalyzeDraws(records []domain.DrawRecord) domain.HistoryAnalysis {
	var analysis domain.HistoryAnalysis
	if len(records) == 0 {
		return analysis
	}

	var numberSum int
	for _, rec := range records {
		numberSum += rec.Number
		if rec.Outcome == domain.OutcomeBig {
			analysis.BigCount++
		} else {
			analysis.SmallCount++
		}
	}
	analysis.BigRatio = float64(analysis.BigCount) / float64(len(records))
	analysis.AverageNumber = float64(numberSum) / float64(len(records))

	analysis.StreakOutcome = records[0].Outcome
	for _, rec := range records {
		if rec.Outcome != analysis.StreakOutcome {
			break
		}
		analysis.StreakLength++
	}
	return analysis
}

func (s *PredictionService) setJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	if s.redis == nil {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, key, data, ttl).Err()
}

// getJSON reports whether the key was present. A nil client and a cache
// miss both read as absent, not as errors.
func (s *PredictionService) getJSON(ctx context.Context, key string, value any) (bool, error) {
	if s.redis == nil {
		return false, nil
	}
	data, err := s.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, value); err != nil {
		return false, err
	}
	return true, nil
}
