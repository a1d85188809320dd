package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"prediction-engine/engine"
	"prediction-engine/models"
)

// GetForecasts lists an organization's forecasts, most recent first,
// optionally narrowed to one window.
func (h *Handlers) GetForecasts(c *gin.Context) {
	orgID := c.Param("org_id")
	limit := limitQuery(c, 50)

	window := models.ForecastWindow(c.Query("window"))
	if window != "" && !models.ValidWindow(window) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown window"})
		return
	}

	events, err := h.engine.Forecasts().List(orgID, window, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, events)
}

type generateRequest struct {
	Window models.ForecastWindow `json:"window" binding:"required"`
}

// GenerateForecast runs the pipeline for one window on demand. Meant
// for the long windows (24h, 7d) not covered on ingest, but accepts
// any of the five.
func (h *Handlers) GenerateForecast(c *gin.Context) {
	orgID := c.Param("org_id")

	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	events, err := h.engine.Generate(orgID, req.Window)
	if err != nil {
		if engine.IsValidation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.log.Error("forecast generation failed", "org_id", orgID, "window", req.Window, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Forecast generation failed"})
		return
	}
	c.JSON(http.StatusOK, events)
}

// GetStats returns aggregate counts for an organization: forecasts by
// risk type plus the current cached-signal volume.
func (h *Handlers) GetStats(c *gin.Context) {
	orgID := c.Param("org_id")

	counts, err := h.engine.Forecasts().CountByRiskType(orgID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	byRisk := gin.H{}
	var total int64
	for risk, n := range counts {
		byRisk[string(risk)] = n
		total += n
	}

	c.JSON(http.StatusOK, gin.H{
		"total_forecasts": total,
		"by_risk_type":    byRisk,
	})
}
