package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"drawsage/internal/domain"
	"drawsage/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

func newTestHandler(reader PredictionReader) *Handler {
	gin.SetMode(gin.TestMode)
	return &Handler{
		tracer:      trace.NewNoopTracerProvider().Tracer("test"),
		predictions: reader,
	}
}

func serve(h *Handler, method, target string) *httptest.ResponseRecorder {
	r := gin.New()
	h.RegisterRoutes(r)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, target, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	h := newTestHandler(&readerStub{})
	w := serve(h, "GET", "/health")

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	body := w.Body.String()
	if body != "{\"status\":\"healthy\"}\n" && body != "{\"status\":\"healthy\"}" {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestGetPredictionSuccess(t *testing.T) {
	reader := &readerStub{
		snapshot: &domain.PredictionSnapshot{
			NextIssue: "20260829061",
			Prediction: domain.PredictionResult{
				Outcome:    domain.OutcomeBig,
				Confidence: 62.5,
			},
		},
		stats: domain.PredictionStats{TotalPredictions: 10, Wins: 6, Accuracy: 60},
		settled: &domain.SettledPrediction{
			Issue:     "20260829060",
			Predicted: domain.OutcomeBig,
			Actual:    domain.OutcomeBig,
			Win:       true,
		},
		history: []domain.DrawRecord{
			{Issue: "20260829060", Number: 73, Outcome: domain.OutcomeBig, Timestamp: time.Now().UTC()},
		},
	}
	w := serve(newTestHandler(reader), "GET", "/api/prediction")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body struct {
		Status     string `json:"status"`
		Prediction struct {
			NextIssue string `json:"next_issue"`
		} `json:"current_prediction"`
		Statistics struct {
			Wins int `json:"wins"`
		} `json:"statistics"`
		Settled struct {
			Win bool `json:"win"`
		} `json:"previous_prediction_result"`
		LastResult struct {
			Issue string `json:"issue"`
		} `json:"last_result"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if body.Status != "success" || body.Prediction.NextIssue != "20260829061" {
		t.Fatalf("unexpected payload: %s", w.Body.String())
	}
	if body.Statistics.Wins != 6 || !body.Settled.Win || body.LastResult.Issue != "20260829060" {
		t.Fatalf("unexpected payload: %s", w.Body.String())
	}
}

func TestGetPredictionInsufficientHistory(t *testing.T) {
	reader := &readerStub{snapshotErr: service.ErrInsufficientHistory}
	w := serve(newTestHandler(reader), "GET", "/api/prediction")

	// Warming up is reported in-band, not as a server error.
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if body.Status != "error" || body.Message == "" {
		t.Fatalf("unexpected payload: %s", w.Body.String())
	}
}

func TestGetPredictionServesDespiteStatsFailure(t *testing.T) {
	reader := &readerStub{
		snapshot: &domain.PredictionSnapshot{
			NextIssue:  "20260829061",
			Prediction: domain.PredictionResult{Outcome: domain.OutcomeBig, Confidence: 62.5},
		},
		statsErr: errors.New("redis: connection refused"),
	}
	w := serve(newTestHandler(reader), "GET", "/api/prediction")

	// The stats store is best-effort; an unreadable key costs us the
	// counters, never the prediction in hand.
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Status     string `json:"status"`
		Prediction struct {
			NextIssue string `json:"next_issue"`
		} `json:"current_prediction"`
		Statistics domain.PredictionStats `json:"statistics"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if body.Status != "success" || body.Prediction.NextIssue != "20260829061" {
		t.Fatalf("unexpected payload: %s", w.Body.String())
	}
	if body.Statistics != (domain.PredictionStats{}) {
		t.Fatalf("expected zero-valued statistics, got %+v", body.Statistics)
	}
}

func TestGetPredictionUpstreamFailure(t *testing.T) {
	reader := &readerStub{snapshotErr: errors.New("upstream down")}
	w := serve(newTestHandler(reader), "GET", "/api/prediction")

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestGetHistory(t *testing.T) {
	reader := &readerStub{
		history: []domain.DrawRecord{
			{Issue: "102", Number: 80, Outcome: domain.OutcomeBig},
			{Issue: "101", Number: 75, Outcome: domain.OutcomeBig},
			{Issue: "100", Number: 20, Outcome: domain.OutcomeSmall},
		},
	}
	w := serve(newTestHandler(reader), "GET", "/api/history?limit=3")

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Status   string              `json:"status"`
		Count    int                 `json:"count"`
		Data     []domain.DrawRecord `json:"data"`
		Analysis struct {
			BigCount     int `json:"big_count"`
			StreakLength int `json:"streak_length"`
		} `json:"analysis"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if body.Status != "success" || body.Count != 3 || len(body.Data) != 3 {
		t.Fatalf("unexpected payload: %s", w.Body.String())
	}
	if body.Analysis.BigCount != 2 || body.Analysis.StreakLength != 2 {
		t.Fatalf("unexpected analysis: %s", w.Body.String())
	}
	if reader.historyLimit != 3 {
		t.Fatalf("expected limit 3 passed through, got %d", reader.historyLimit)
	}
}

func TestGetHistoryLimitBounds(t *testing.T) {
	for _, raw := range []string{"0", "-5", "9999", "abc", ""} {
		reader := &readerStub{}
		serve(newTestHandler(reader), "GET", "/api/history?limit="+raw)
		if reader.historyLimit != 50 {
			t.Fatalf("limit %q: expected fallback to 50, got %d", raw, reader.historyLimit)
		}
	}
}

func TestGetHistoryError(t *testing.T) {
	reader := &readerStub{historyErr: errors.New("pg down")}
	w := serve(newTestHandler(reader), "GET", "/api/history")

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestAPIKeyAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(APIKeyAuth("sekret"))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	cases := []struct {
		name string
		key  string
		want int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong", "nope", http.StatusForbidden},
		{"valid", "sekret", http.StatusOK},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/ping", nil)
		if tc.key != "" {
			req.Header.Set("X-API-Key", tc.key)
		}
		r.ServeHTTP(w, req)
		if w.Code != tc.want {
			t.Errorf("%s: expected %d, got %d", tc.name, tc.want, w.Code)
		}
	}
}

func TestRegisterRoutesGuardsAPIOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := &Handler{
		tracer:      trace.NewNoopTracerProvider().Tracer("test"),
		predictions: &readerStub{},
		apiKey:      "sekret",
	}
	r := gin.New()
	h.RegisterRoutes(r)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/health", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("health must stay open, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/api/history", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", w.Code)
	}
}

func TestAPIKeyAuthDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(APIKeyAuth(""))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/ping", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected auth disabled, got %d", w.Code)
	}
}

type readerStub struct {
	snapshot    *domain.PredictionSnapshot
	snapshotErr error
	settled     *domain.SettledPrediction
	stats       domain.PredictionStats
	statsErr    error
	history     []domain.DrawRecord
	historyErr  error

	historyLimit int
}

func (r *readerStub) CurrentPrediction(ctx context.Context) (*domain.PredictionSnapshot, error) {
	if r.snapshotErr != nil {
		return nil, r.snapshotErr
	}
	return r.snapshot, nil
}

func (r *readerStub) LastSettled(ctx context.Context) (*domain.SettledPrediction, error) {
	return r.settled, nil
}

func (r *readerStub) Stats(ctx context.Context) (domain.PredictionStats, error) {
	if r.statsErr != nil {
		return domain.PredictionStats{}, r.statsErr
	}
	return r.stats, nil
}

func (r *readerStub) History(ctx context.Context, limit int) ([]domain.DrawRecord, error) {
	r.historyLimit = limit
	if r.historyErr != nil {
		return nil, r.historyErr
	}
	if limit < len(r.history) {
		return r.history[:limit], nil
	}
	return r.history, nil
}
