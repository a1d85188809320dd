package policy

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"prediction-engine/models"
)

// ErrRuleNotFound is returned when a rule ID does not exist.
var ErrRuleNotFound = errors.New("policy rule not found")

// ErrDuplicateRuleName is returned when a rule name is already taken
// within the organization. Names are unique per organization, not
// globally.
var ErrDuplicateRuleName = errors.New("rule name already exists for organization")

// RuleStore persists policy rules. Evaluation order is ascending
// Priority, ties broken by CreatedAt then ID, so operators control
// precedence explicitly and the order is stable across restarts.
type RuleStore struct {
	db *gorm.DB
}

// NewRuleStore creates a store backed by db.
func NewRuleStore(db *gorm.DB) *RuleStore {
	return &RuleStore{db: db}
}

// List returns the organization's rules in evaluation order, enabled
// and disabled alike. Callers filtering for evaluation rely on
// ApplyRules skipping disabled rules.
func (s *RuleStore) List(orgID string) ([]models.PolicyRule, error) {
	rules := []models.PolicyRule{}
	err := s.db.
		Where("organization_id = ?", orgID).
		Order("priority ASC, created_at ASC, id ASC").
		Find(&rules).Error
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	return rules, nil
}

// Create persists a new rule, assigning its ID. The rule name must be
// unused within the organization; a composite unique index backs the
// check.
func (s *RuleStore) Create(rule *models.PolicyRule) error {
	taken, err := s.nameTaken(rule.OrganizationID, rule.RuleName, "")
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: %q", ErrDuplicateRuleName, rule.RuleName)
	}
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = time.Now().UTC()
	}
	if err := s.db.Create(rule).Error; err != nil {
		return fmt.Errorf("create rule: %w", err)
	}
	return nil
}

// nameTaken reports whether another rule (excluding excludeID) already
// uses the name within the organization.
func (s *RuleStore) nameTaken(orgID, name, excludeID string) (bool, error) {
	var count int64
	query := s.db.Model(&models.PolicyRule{}).
		Where("organization_id = ? AND rule_name = ?", orgID, name)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("check rule name: %w", err)
	}
	return count > 0, nil
}

// Get returns one rule by ID.
func (s *RuleStore) Get(ruleID string) (*models.PolicyRule, error) {
	var rule models.PolicyRule
	err := s.db.Where("id = ?", ruleID).First(&rule).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRuleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get rule: %w", err)
	}
	return &rule, nil
}

// RuleUpdate carries the updatable rule fields. Nil pointers leave the
// stored value unchanged.
type RuleUpdate struct {
	RuleName          *string                   `json:"rule_name"`
	RiskType          *models.RiskType          `json:"risk_type"`
	SignalSource      *models.SourceType        `json:"signal_source"`
	MinConfidence     *int                      `json:"min_confidence"`
	RecommendedAction *models.RecommendedAction `json:"recommended_action"`
	Enabled           *bool                     `json:"enabled"`
	Priority          *int                      `json:"priority"`
}

// Update applies the given fields to a rule and returns the updated
// record.
func (s *RuleStore) Update(ruleID string, upd RuleUpdate) (*models.PolicyRule, error) {
	rule, err := s.Get(ruleID)
	if err != nil {
		return nil, err
	}
	if upd.RuleName != nil && *upd.RuleName != rule.RuleName {
		taken, err := s.nameTaken(rule.OrganizationID, *upd.RuleName, rule.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateRuleName, *upd.RuleName)
		}
		rule.RuleName = *upd.RuleName
	}
	if upd.RiskType != nil {
		rule.RiskType = *upd.RiskType
	}
	if upd.SignalSource != nil {
		rule.SignalSource = *upd.SignalSource
	}
	if upd.MinConfidence != nil {
		rule.MinConfidence = *upd.MinConfidence
	}
	if upd.RecommendedAction != nil {
		rule.RecommendedAction = *upd.RecommendedAction
	}
	if upd.Enabled != nil {
		rule.Enabled = *upd.Enabled
	}
	if upd.Priority != nil {
		rule.Priority = *upd.Priority
	}
	if err := s.db.Save(rule).Error; err != nil {
		return nil, fmt.Errorf("update rule: %w", err)
	}
	return rule, nil
}

// Delete removes a rule.
func (s *RuleStore) Delete(ruleID string) error {
	res := s.db.Where("id = ?", ruleID).Delete(&models.PolicyRule{})
	if res.Error != nil {
		return fmt.Errorf("delete rule: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRuleNotFound
	}
	return nil
}
