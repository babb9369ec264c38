package disclosure

import (
	"fmt"
	"strings"

	"github.com/nofnotg/anamnesis/internal/model"
)

// assessRisk aggregates per-item risks into one weighted score, then
// adjusts for rule-engine risk flags and item recency.
//
// Per item: baseRisk(type) × confidence × severityMultiplier, weighted by
// the item's category weight in the average. Adjustments: one additive
// bump per flag_disclosure_risk rule action (scaled by its severity) and
// a recency bonus per item dated within the recency window. Clamped to
// [0,1].
func (a *Analyzer) assessRisk(items []model.DisclosureItem, ruleResults []model.RuleResult) model.RiskAssessment {
	assessment := model.RiskAssessment{
		Level:          model.RiskMinimal,
		CategoryScores: make(map[string]float64),
	}
	if len(items) == 0 && len(ruleResults) == 0 {
		return assessment
	}

	var weightedSum, weightTotal float64
	categorySums := make(map[string]float64)
	categoryCounts := make(map[string]int)

	for _, item := range items {
		base := a.cfg.BaseRisk[string(item.Type)]
		mult, ok := a.cfg.SeverityMultiplier[strings.ToLower(item.Severity)]
		if !ok {
			mult = 1.0
		}
		risk := base * item.Confidence * mult

		weight := a.cfg.CategoryWeights[item.Category]
		if weight == 0 {
			weight = 1.0
		}
		weightedSum += risk * weight
		weightTotal += weight

		categorySums[item.Category] += risk
		categoryCounts[item.Category]++
	}

	score := 0.0
	if weightTotal > 0 {
		score = weightedSum / weightTotal
	}
	for cat, sum := range categorySums {
		assessment.CategoryScores[cat] = sum / float64(categoryCounts[cat])
	}

	// Rule-engine flagged risk signals
	for _, rr := range ruleResults {
		if rr.ActionResult == nil {
			continue
		}
		for _, action := range rr.ActionResult.Actions {
			if action.Type != "flag_disclosure_risk" {
				continue
			}
			adjust, ok := a.cfg.RuleAdjustment[strings.ToLower(action.Severity)]
			if !ok {
				adjust = a.cfg.RuleAdjustment[model.SeverityLow]
			}
			score += adjust
			assessment.RuleSignals = append(assessment.RuleSignals,
				fmt.Sprintf("%s: flag_disclosure_risk (%s, +%.2f)", rr.RuleID, action.Severity, adjust))
		}
	}

	// Recency bonus for items dated within the last RecencyDays
	cutoff := a.now().AddDate(0, 0, -a.cfg.RecencyDays)
	for _, item := range items {
		if item.Date != nil && !item.Date.Before(cutoff) {
			score += a.cfg.RecencyBonus
			assessment.RecencyBonus += a.cfg.RecencyBonus
		}
	}

	if score > 1.0 {
		score = 1.0
	}
	if score < 0 {
		score = 0
	}
	assessment.Score = score
	assessment.Level = a.riskLevel(score)
	return assessment
}

func (a *Analyzer) riskLevel(score float64) model.RiskLevel {
	switch {
	case score >= a.cfg.HighRiskThreshold:
		return model.RiskHigh
	case score >= a.cfg.MediumRiskThreshold:
		return model.RiskMedium
	case score >= a.cfg.LowRiskThreshold:
		return model.RiskLow
	default:
		return model.RiskMinimal
	}
}
