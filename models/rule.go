package models

import "time"

// PolicyRule is an operator-defined override of the default action
// recommendation. Predicate fields are optional: an empty RiskType or
// SignalSource and a zero MinConfidence match anything; all specified
// fields must match (AND semantics).
//
// Rules are evaluated in ascending Priority order, ties broken by
// CreatedAt and then ID, so operators control precedence explicitly.
// The first matching enabled rule wins.
//
// RuleName is unique within an organization, not globally.
type PolicyRule struct {
	ID                string            `json:"id" gorm:"primaryKey"`
	OrganizationID    string            `json:"organization_id" gorm:"index;uniqueIndex:idx_org_rule_name"`
	RuleName          string            `json:"rule_name" gorm:"uniqueIndex:idx_org_rule_name"`
	RiskType          RiskType          `json:"risk_type,omitempty"`
	SignalSource      SourceType        `json:"signal_source,omitempty"`
	MinConfidence     int               `json:"min_confidence,omitempty"`
	RecommendedAction RecommendedAction `json:"recommended_action"`
	Enabled           bool              `json:"enabled"`
	Priority          int               `json:"priority"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}
