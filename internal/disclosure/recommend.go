package disclosure

import (
	"fmt"
	"sort"

	"github.com/nofnotg/anamnesis/internal/model"
)

// generateRecommendations turns the assessed risk into prioritized,
// reviewer-facing actions: one overall recommendation when the score
// crosses the configured threshold, one per hot category, one per
// high-severity high-confidence item, and an additional-review
// recommendation when the level is high.
func (a *Analyzer) generateRecommendations(items []model.DisclosureItem, risk model.RiskAssessment) []model.Recommendation {
	var recs []model.Recommendation

	if risk.Score >= a.cfg.RecommendThreshold {
		recs = append(recs, model.Recommendation{
			Type:           "overall",
			Priority:       model.SeverityHigh,
			ActionRequired: true,
			Message: fmt.Sprintf("계약 전 고지의무 검토 필요: 전체 위험도 %.2f (%s)",
				risk.Score, risk.Level),
		})
	}

	categories := make([]string, 0, len(risk.CategoryScores))
	for cat := range risk.CategoryScores {
		categories = append(categories, cat)
	}
	sort.Strings(categories)
	for _, cat := range categories {
		score := risk.CategoryScores[cat]
		if score < a.cfg.RecommendThreshold {
			continue
		}
		priority := model.SeverityMedium
		if score >= a.cfg.HighRiskThreshold {
			priority = model.SeverityHigh
		}
		recs = append(recs, model.Recommendation{
			Type:     "category",
			Priority: priority,
			Category: cat,
			Message:  fmt.Sprintf("%s 관련 이력의 고지 여부 확인 필요 (위험도 %.2f)", cat, score),
		})
	}

	for _, item := range items {
		if item.Severity != model.SeverityHigh || item.Confidence < 0.8 {
			continue
		}
		recs = append(recs, model.Recommendation{
			Type:           "item",
			Priority:       model.SeverityHigh,
			ActionRequired: item.DisclosureRequired,
			ItemText:       item.NormalizedText,
			Category:       item.Category,
			Message:        fmt.Sprintf("고위험 항목 확인: %s (%s)", item.NormalizedText, item.Type),
		})
	}

	if risk.Level == model.RiskHigh {
		recs = append(recs, model.Recommendation{
			Type:     "review",
			Priority: model.SeverityHigh,
			Message:  "위험도가 높습니다. 의료자문 등 추가 검토를 권장합니다.",
		})
	}

	sortRecommendations(recs)
	return recs
}

// Action-required first, then priority high > medium > low
func sortRecommendations(recs []model.Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].ActionRequired != recs[j].ActionRequired {
			return recs[i].ActionRequired
		}
		return severityRank(recs[i].Priority) > severityRank(recs[j].Priority)
	})
}
