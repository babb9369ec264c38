package disclosure

import (
	"github.com/nofnotg/anamnesis/internal/model"
)

// performDetailedAnalysis produces the optional second-pass breakdown:
// recent vs chronic clustering, severity/category/confidence
// distributions, same-category correlation groups and a treatment-pattern
// summary. Pure over its inputs.
func (a *Analyzer) performDetailedAnalysis(items []model.DisclosureItem, entities []model.Entity) *model.DetailedAnalysis {
	detail := &model.DetailedAnalysis{
		SeverityCounts:    make(map[string]int),
		CategoryCounts:    make(map[string]int),
		ConfidenceBuckets: make(map[string]int),
		CorrelationGroups: make(map[string][]string),
	}

	recentCutoff := a.now().AddDate(0, 0, -a.cfg.RecentWindowDays)
	byCategory := make(map[string][]string)
	for _, item := range items {
		if item.Date != nil && !item.Date.Before(recentCutoff) {
			detail.RecentItems = append(detail.RecentItems, item.NormalizedText)
		} else {
			detail.ChronicItems = append(detail.ChronicItems, item.NormalizedText)
		}

		detail.SeverityCounts[item.Severity]++
		detail.CategoryCounts[item.Category]++

		switch {
		case item.Confidence >= 0.8:
			detail.ConfidenceBuckets["high"]++
		case item.Confidence >= 0.5:
			detail.ConfidenceBuckets["medium"]++
		default:
			detail.ConfidenceBuckets["low"]++
		}

		byCategory[item.Category] = append(byCategory[item.Category], item.NormalizedText)
	}

	// Only multi-item categories are interesting as correlations
	for cat, texts := range byCategory {
		if len(texts) >= 2 {
			detail.CorrelationGroups[cat] = texts
		}
	}

	for _, e := range entities {
		if e.Kind() != model.KindMedication {
			continue
		}
		if match, ok := a.dict.Lookup(model.KindMedication, e.Core().NormalizedText); ok && match.Term.Category == "chronic" {
			detail.TreatmentPatterns.ChronicMedications++
			detail.TreatmentPatterns.MedicationNames = append(detail.TreatmentPatterns.MedicationNames, e.Core().NormalizedText)
		}
	}

	return detail
}
