package model

import "time"

// TextSegment is the input unit handed over by text preprocessing/OCR
type TextSegment struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// ContractInfo describes the insurance contract under dispute
type ContractInfo struct {
	IssueDate         time.Time `json:"issue_date"`
	WaitingPeriodDays int       `json:"waiting_period_days"` // ≥ 0
}

// WaitingPeriodEnd is the last day of the waiting period (inclusive)
func (c ContractInfo) WaitingPeriodEnd() time.Time {
	return c.IssueDate.AddDate(0, 0, c.WaitingPeriodDays)
}

// ClaimSpec describes the claim being disputed. A zero ClaimDate means
// the filing date is unknown.
type ClaimSpec struct {
	ClaimDate   time.Time `json:"claim_date"`
	BodySystems []string  `json:"body_systems,omitempty"` // Set of body-system codes
	Diagnosis   string    `json:"diagnosis,omitempty"`
}

// RuleAction is one action emitted by the external clinical-rule evaluator
type RuleAction struct {
	Type     string `json:"type"` // The analyzer reacts to "flag_disclosure_risk"
	Severity string `json:"severity,omitempty"`
}

// ActionResult wraps the actions of one rule evaluation
type ActionResult struct {
	Actions []RuleAction `json:"actions,omitempty"`
}

// RuleResult is the outcome of one external rule evaluation
type RuleResult struct {
	RuleID       string        `json:"rule_id"`
	Matched      bool          `json:"matched"`
	ActionResult *ActionResult `json:"action_result,omitempty"`
}
