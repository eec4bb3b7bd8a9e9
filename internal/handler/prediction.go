package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"drawsage/internal/domain"
	"drawsage/internal/service"

	"github.com/gin-gonic/gin"
)

// GetPrediction godoc
// @Summary      Get the current ensemble prediction
// @Description  Returns the prediction for the next draw along with the
// @Description  previous settled prediction, win/loss statistics, and the
// @Description  most recent draw result
// @Tags         prediction
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /api/prediction [get]
func (h *Handler) GetPrediction(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-prediction")
	defer span.End()

	snapshot, err := h.predictions.CurrentPrediction(ctx)
	if err != nil {
		// Not enough settled draws yet is an expected state, not a
		// server failure.
		if errors.Is(err, service.ErrInsufficientHistory) {
			c.JSON(http.StatusOK, gin.H{
				"status":    "error",
				"message":   err.Error(),
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}

	// Statistics, the settled result, and the latest draw all come from
	// the best-effort store; their absence never blocks the prediction
	// itself.
	stats, err := h.predictions.Stats(ctx)
	if err != nil {
		log.Printf("stats read error: %v", err)
		stats = domain.PredictionStats{}
	}

	settled, err := h.predictions.LastSettled(ctx)
	if err != nil {
		settled = nil
	}

	var lastResult *domain.DrawRecord
	if records, err := h.predictions.History(ctx, 1); err == nil && len(records) > 0 {
		lastResult = &records[0]
	}

	c.JSON(http.StatusOK, gin.H{
		"status":                     "success",
		"timestamp":                  time.Now().UTC().Format(time.RFC3339),
		"previous_prediction_result": settled,
		"statistics":                 stats,
		"current_prediction":         snapshot,
		"last_result":                lastResult,
	})
}
