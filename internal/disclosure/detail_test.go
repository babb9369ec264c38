package disclosure

import (
	"testing"

	"github.com/nofnotg/anamnesis/internal/model"
)

func TestDetailedAnalysis(t *testing.T) {
	a := testAnalyzer(nil)
	recent := fixedNow.AddDate(0, 0, -30)
	old := fixedNow.AddDate(0, -12, 0)

	items := []model.DisclosureItem{
		{NormalizedText: "갑상선암", Category: "cancer", Severity: model.SeverityHigh, Confidence: 0.9, Date: &recent},
		{NormalizedText: "항암치료", Category: "cancer", Severity: model.SeverityHigh, Confidence: 0.6, Date: &recent},
		{NormalizedText: "고혈압", Category: "chronic", Severity: model.SeverityMedium, Confidence: 0.3, Date: &old},
		{NormalizedText: "위염", Category: "general", Severity: model.SeverityLow, Confidence: 0.5}, // Undated → chronic
	}
	entities := []model.Entity{
		model.NewMedication(map[string]any{"normalized_text": "메트포르민"}),
		model.NewMedication(map[string]any{"normalized_text": "항암제"}), // cancer category, not chronic
	}

	detail := a.performDetailedAnalysis(items, entities)

	if len(detail.RecentItems) != 2 {
		t.Errorf("Expected 2 recent items, got %v", detail.RecentItems)
	}
	if len(detail.ChronicItems) != 2 {
		t.Errorf("Expected 2 chronic items (old + undated), got %v", detail.ChronicItems)
	}
	if detail.SeverityCounts[model.SeverityHigh] != 2 {
		t.Errorf("Expected 2 high-severity items, got %v", detail.SeverityCounts)
	}
	if detail.CategoryCounts["cancer"] != 2 {
		t.Errorf("Expected 2 cancer items, got %v", detail.CategoryCounts)
	}
	if detail.ConfidenceBuckets["high"] != 1 || detail.ConfidenceBuckets["medium"] != 2 || detail.ConfidenceBuckets["low"] != 1 {
		t.Errorf("Unexpected confidence buckets: %v", detail.ConfidenceBuckets)
	}

	// Only the multi-item cancer category forms a correlation group
	if _, ok := detail.CorrelationGroups["cancer"]; !ok {
		t.Error("Expected cancer correlation group")
	}
	if _, ok := detail.CorrelationGroups["chronic"]; ok {
		t.Error("Expected no single-item correlation group")
	}

	if detail.TreatmentPatterns.ChronicMedications != 1 {
		t.Errorf("Expected 1 chronic medication, got %d", detail.TreatmentPatterns.ChronicMedications)
	}
	if len(detail.TreatmentPatterns.MedicationNames) != 1 || detail.TreatmentPatterns.MedicationNames[0] != "메트포르민" {
		t.Errorf("Expected 메트포르민, got %v", detail.TreatmentPatterns.MedicationNames)
	}
}
