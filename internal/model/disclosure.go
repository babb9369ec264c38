package model

import "time"

// DisclosureItemType classifies what kind of medical fact an item is
type DisclosureItemType string

const (
	ItemDiagnosis       DisclosureItemType = "diagnosis"
	ItemProcedure       DisclosureItemType = "procedure"
	ItemMedication      DisclosureItemType = "medication"
	ItemHospitalization DisclosureItemType = "hospitalization"
	ItemEmergency       DisclosureItemType = "emergency"
)

// Severity levels used by the disclosure dictionaries
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// RiskLevel buckets the overall risk score
type RiskLevel string

const (
	RiskHigh    RiskLevel = "high"
	RiskMedium  RiskLevel = "medium"
	RiskLow     RiskLevel = "low"
	RiskMinimal RiskLevel = "minimal"
)

// DisclosureItem is a medical fact identified as potentially required to
// have been disclosed at contract issuance.
type DisclosureItem struct {
	Type               DisclosureItemType `json:"type"`
	Text               string             `json:"text"`
	NormalizedText     string             `json:"normalized_text"`
	Category           string             `json:"category"`
	Severity           string             `json:"severity"` // high | medium | low
	DisclosureRequired bool               `json:"disclosure_required"`
	Confidence         float64            `json:"confidence"`
	Date               *time.Time         `json:"date,omitempty"`
	SourceEntityID     string             `json:"source_entity_id,omitempty"`
	SourceEventID      string             `json:"source_event_id,omitempty"`
}

// RiskAssessment is the aggregated risk over all disclosure items
type RiskAssessment struct {
	Score          float64            `json:"score"` // [0,1]
	Level          RiskLevel          `json:"level"`
	CategoryScores map[string]float64 `json:"category_scores,omitempty"`
	RuleSignals    []string           `json:"rule_signals,omitempty"` // Rule-engine flags applied
	RecencyBonus   float64            `json:"recency_bonus"`
}

// Recommendation is one prioritized action for the claim reviewer
type Recommendation struct {
	Type           string `json:"type"` // overall | category | item | review
	Priority       string `json:"priority"`
	ActionRequired bool   `json:"action_required"`
	Message        string `json:"message"`
	Category       string `json:"category,omitempty"`
	ItemText       string `json:"item_text,omitempty"`
}

// TreatmentPatterns summarizes ongoing treatment indicators
type TreatmentPatterns struct {
	ChronicMedications int      `json:"chronic_medications"`
	MedicationNames    []string `json:"medication_names,omitempty"`
}

// DetailedAnalysis is the optional second-pass breakdown of items
type DetailedAnalysis struct {
	RecentItems       []string            `json:"recent_items,omitempty"`  // ≤ recent window
	ChronicItems      []string            `json:"chronic_items,omitempty"` // Older or undated
	SeverityCounts    map[string]int      `json:"severity_counts,omitempty"`
	CategoryCounts    map[string]int      `json:"category_counts,omitempty"`
	ConfidenceBuckets map[string]int      `json:"confidence_buckets,omitempty"` // low/medium/high buckets
	CorrelationGroups map[string][]string `json:"correlation_groups,omitempty"` // Same-category item groups
	TreatmentPatterns TreatmentPatterns   `json:"treatment_patterns"`
}

// DisclosureResult is the primary output of the disclosure analyzer
type DisclosureResult struct {
	DisclosureRequired bool              `json:"disclosure_required"`
	OverallRiskScore   float64           `json:"overall_risk_score"`
	Items              []DisclosureItem  `json:"items"`
	RiskAssessment     RiskAssessment    `json:"risk_assessment"`
	Recommendations    []Recommendation  `json:"recommendations"`
	Detailed           *DetailedAnalysis `json:"detailed_analysis,omitempty"`
	Summary            string            `json:"summary"`
	ProcessingTimeMs   int64             `json:"processing_time_ms"`
	Metadata           map[string]any    `json:"metadata,omitempty"`
	Warnings           []string          `json:"warnings,omitempty"` // Degraded optional steps
}
