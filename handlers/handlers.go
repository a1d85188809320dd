// Package handlers contains the HTTP handlers for the prediction
// engine's API.
package handlers

import (
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"

	"prediction-engine/engine"
)

// Handlers holds the engine the HTTP layer delegates to.
type Handlers struct {
	engine *engine.Engine
	log    *slog.Logger
}

// New creates handlers for the given engine.
func New(e *engine.Engine, log *slog.Logger) *Handlers {
	return &Handlers{engine: e, log: log}
}

// limitQuery parses the "limit" query parameter, falling back to def
// when the value is missing, malformed, or not positive.
func limitQuery(c *gin.Context, def int) int {
	raw := c.Query("limit")
	if raw == "" {
		return def
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return def
	}
	return limit
}
