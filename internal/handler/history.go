package handler

import (
	"net/http"
	"strconv"
	"time"

	"drawsage/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetHistory godoc
// @Summary      Get recent draw history
// @Description  Returns the most recent draws, newest first, with an
// @Description  aggregate BIG/SMALL analysis over the returned window
// @Tags         history
// @Produce      json
// @Param        limit  query  int  false  "Number of draws (default 50, max 200)"  default(50)
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /api/history [get]
func (h *Handler) GetHistory(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-history")
	defer span.End()

	limit := 50
	if l := c.Query("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	span.SetAttributes(attribute.Int("limit", limit))

	records, err := h.predictions.History(ctx, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"count":     len(records),
		"data":      records,
		"analysis":  service.AnalyzeDraws(records),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
