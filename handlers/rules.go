package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"prediction-engine/models"
	"prediction-engine/policy"
)

// GetRules lists an organization's policy rules in evaluation order.
func (h *Handlers) GetRules(c *gin.Context) {
	orgID := c.Param("org_id")

	rules, err := h.engine.Rules().List(orgID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rules)
}

type createRuleRequest struct {
	RuleName          string                   `json:"rule_name" binding:"required"`
	RiskType          models.RiskType          `json:"risk_type"`
	SignalSource      models.SourceType        `json:"signal_source"`
	MinConfidence     int                      `json:"min_confidence"`
	RecommendedAction models.RecommendedAction `json:"recommended_action" binding:"required"`
	Enabled           *bool                    `json:"enabled"`
	Priority          int                      `json:"priority"`
}

// CreateRule stores a new policy rule for an organization.
func (h *Handlers) CreateRule(c *gin.Context) {
	orgID := c.Param("org_id")

	var req createRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if !models.ValidAction(req.RecommendedAction) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown recommended action"})
		return
	}
	if req.RiskType != "" && !models.ValidRiskType(req.RiskType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown risk type"})
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	rule := models.PolicyRule{
		OrganizationID:    orgID,
		RuleName:          req.RuleName,
		RiskType:          req.RiskType,
		SignalSource:      req.SignalSource,
		MinConfidence:     req.MinConfidence,
		RecommendedAction: req.RecommendedAction,
		Enabled:           enabled,
		Priority:          req.Priority,
	}
	if err := h.engine.Rules().Create(&rule); err != nil {
		if errors.Is(err, policy.ErrDuplicateRuleName) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create rule"})
		return
	}
	c.JSON(http.StatusCreated, rule)
}

// UpdateRule applies partial updates to an existing rule.
func (h *Handlers) UpdateRule(c *gin.Context) {
	ruleID := c.Param("rule_id")

	var upd policy.RuleUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if upd.RecommendedAction != nil && !models.ValidAction(*upd.RecommendedAction) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown recommended action"})
		return
	}

	rule, err := h.engine.Rules().Update(ruleID, upd)
	if err != nil {
		if errors.Is(err, policy.ErrRuleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Rule not found"})
			return
		}
		if errors.Is(err, policy.ErrDuplicateRuleName) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update rule"})
		return
	}
	c.JSON(http.StatusOK, rule)
}

// DeleteRule removes a rule.
func (h *Handlers) DeleteRule(c *gin.Context) {
	ruleID := c.Param("rule_id")

	if err := h.engine.Rules().Delete(ruleID); err != nil {
		if errors.Is(err, policy.ErrRuleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Rule not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete rule"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": ruleID})
}
