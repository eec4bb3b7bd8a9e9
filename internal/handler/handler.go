package handler

import (
	"context"

	"drawsage/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// PredictionReader is the slice of the prediction service the HTTP
// layer consumes.
type PredictionReader interface {
	CurrentPrediction(ctx context.Context) (*domain.PredictionSnapshot, error)
	LastSettled(ctx context.Context) (*domain.SettledPrediction, error)
	Stats(ctx context.Context) (domain.PredictionStats, error)
	History(ctx context.Context, limit int) ([]domain.DrawRecord, error)
}

type Handler struct {
	tracer      trace.Tracer
	predictions PredictionReader
	apiKey      string
}

func New(tracer trace.Tracer, predictions PredictionReader, apiKey string) *Handler {
	return &Handler{
		tracer:      tracer,
		predictions: predictions,
		apiKey:      apiKey,
	}
}

// RegisterRoutes wires up the HTTP surface. The health check stays
// open; the /api group is guarded by the API key when one is set.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	api := r.Group("/api", APIKeyAuth(h.apiKey))
	api.GET("/prediction", h.GetPrediction)
	api.GET("/history", h.GetHistory)
}
