package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"prediction-engine/engine"
	"prediction-engine/models"
)

type signalInput struct {
	SourceType models.SourceType `json:"source_type" binding:"required"`
	Payload    models.JSONMap    `json:"payload"`
	ReceivedAt *time.Time        `json:"received_at"`
}

type ingestRequest struct {
	Signals []signalInput `json:"signals" binding:"required"`
}

// IngestSignals accepts a batch of signals for one organization,
// caches them, and triggers short-window forecast generation. The
// batch succeeds or fails as a whole.
func (h *Handlers) IngestSignals(c *gin.Context) {
	orgID := c.Param("org_id")

	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	signals := make([]models.Signal, 0, len(req.Signals))
	for _, in := range req.Signals {
		s := models.Signal{
			SourceType: in.SourceType,
			Payload:    in.Payload,
		}
		if in.ReceivedAt != nil {
			s.ReceivedAt = in.ReceivedAt.UTC()
		}
		signals = append(signals, s)
	}

	stored, forecasts, err := h.engine.Ingest(orgID, signals)
	if err != nil {
		if engine.IsValidation(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.log.Error("ingest failed", "org_id", orgID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to ingest signals"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"stored":              stored,
		"forecasts_generated": len(forecasts),
	})
}

// GetSignals lists an organization's cached signals, newest first.
// Diagnostic use.
func (h *Handlers) GetSignals(c *gin.Context) {
	orgID := c.Param("org_id")
	limit := limitQuery(c, 50)

	signals, err := h.engine.Cache().Recent(orgID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, signals)
}

type purgeRequest struct {
	OlderThan time.Time `json:"older_than" binding:"required"`
}

// PurgeCache removes cached signals older than the given timestamp.
// Used manually alongside the background reaper.
func (h *Handlers) PurgeCache(c *gin.Context) {
	orgID := c.Param("org_id")

	var req purgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	purged, err := h.engine.Cache().Purge(orgID, req.OlderThan.UTC())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"purged": purged})
}
