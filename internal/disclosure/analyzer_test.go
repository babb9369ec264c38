package disclosure

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/nofnotg/anamnesis/internal/dict"
	"github.com/nofnotg/anamnesis/internal/model"
)

var fixedNow = time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)

func testAnalyzer(scorer TagScorer) *Analyzer {
	a := NewAnalyzer(model.DefaultConfig().Disclosure, dict.Default(), scorer, zerolog.Nop())
	a.now = func() time.Time { return fixedNow }
	return a
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestAnalyzer_IdentifyItems(t *testing.T) {
	a := testAnalyzer(nil)

	diag := model.NewDiagnosis(map[string]any{"id": "d1", "normalized_text": "갑상선암", "confidence": 0.9})
	proc := model.NewProcedure(map[string]any{"id": "p1", "normalized_text": "갑상선 절제술", "confidence": 0.8})
	med := model.NewMedication(map[string]any{"id": "m1", "normalized_text": "스타틴 복용", "confidence": 0.7})
	miss := model.NewDiagnosis(map[string]any{"id": "d2", "normalized_text": "사전에 없는 병명", "confidence": 0.9})
	test := model.NewTest(map[string]any{"id": "t1", "normalized_text": "갑상선 기능검사"})

	eventDate := date(2023, 12, 1)
	timeline := &model.Timeline{
		Events: []model.TemporalEvent{
			{ID: "e1", Date: eventDate, EntityIDs: []string{"d1", "p1"}},
		},
		EventCount: 1,
	}

	items := a.identifyItems([]model.Entity{diag, proc, med, miss, test}, timeline)
	if len(items) != 3 {
		t.Fatalf("Expected 3 items, got %d: %+v", len(items), items)
	}

	// Sorted by severity: the high-severity cancer items lead
	if items[0].Severity != model.SeverityHigh {
		t.Errorf("Expected high-severity item first, got %s", items[0].Severity)
	}

	var found bool
	for _, item := range items {
		if item.SourceEntityID == "d1" {
			found = true
			if item.Type != model.ItemDiagnosis {
				t.Errorf("Expected diagnosis type, got %s", item.Type)
			}
			if item.Category != "cancer" {
				t.Errorf("Expected cancer category, got %s", item.Category)
			}
			if item.Date == nil || !item.Date.Equal(eventDate) {
				t.Errorf("Expected event date attached, got %v", item.Date)
			}
		}
	}
	if !found {
		t.Error("Expected item for diagnosis d1")
	}
}

func TestAnalyzer_SynthesizedEventItems(t *testing.T) {
	a := testAnalyzer(nil)
	timeline := &model.Timeline{
		Events: []model.TemporalEvent{
			{ID: "e1", Date: date(2023, 11, 1), AnchorType: model.AnchorAdmission, Description: "폐렴 치료 위해 입원"},
			{ID: "e2", Date: date(2023, 11, 20), AnchorType: model.AnchorVisit, Description: "응급실 내원"},
		},
		EventCount: 2,
	}

	items := a.identifyItems(nil, timeline)
	var hosp, emerg bool
	for _, item := range items {
		switch item.Type {
		case model.ItemHospitalization:
			hosp = true
			if item.Severity != model.SeverityHigh || !item.DisclosureRequired {
				t.Errorf("Expected high-severity required hospitalization, got %+v", item)
			}
			if item.SourceEventID != "e1" {
				t.Errorf("Expected source event e1, got %s", item.SourceEventID)
			}
		case model.ItemEmergency:
			emerg = true
			if item.Severity != model.SeverityMedium {
				t.Errorf("Expected medium-severity emergency, got %s", item.Severity)
			}
		}
	}
	if !hosp {
		t.Error("Expected hospitalization item")
	}
	if !emerg {
		t.Error("Expected emergency item")
	}
}

func TestAnalyzer_DedupeItems(t *testing.T) {
	a := testAnalyzer(nil)
	e1 := model.NewDiagnosis(map[string]any{"id": "d1", "normalized_text": "고혈압", "confidence": 0.9})
	e2 := model.NewDiagnosis(map[string]any{"id": "d2", "normalized_text": "고혈압", "confidence": 0.6})

	items := a.identifyItems([]model.Entity{e1, e2}, nil)
	if len(items) != 1 {
		t.Fatalf("Expected 1 item after dedup, got %d", len(items))
	}
}

func TestAnalyzer_RiskLevels(t *testing.T) {
	a := testAnalyzer(nil)

	// High: 0.7 base × 1.0 confidence × 1.2 high multiplier = 0.84
	high := []model.DisclosureItem{{
		Type: model.ItemDiagnosis, Category: "cancer",
		Severity: model.SeverityHigh, Confidence: 1.0,
	}}
	risk := a.assessRisk(high, nil)
	if risk.Score < 0.839 || risk.Score > 0.841 {
		t.Errorf("Expected score 0.84, got %v", risk.Score)
	}
	if risk.Level != model.RiskHigh {
		t.Errorf("Expected high level, got %s", risk.Level)
	}
	if risk.CategoryScores["cancer"] < 0.839 {
		t.Errorf("Expected cancer category score, got %v", risk.CategoryScores)
	}

	// Low-grade item: 0.5 × 0.5 × 0.8 = 0.2 → minimal
	minor := []model.DisclosureItem{{
		Type: model.ItemMedication, Category: "chronic",
		Severity: model.SeverityLow, Confidence: 0.5,
	}}
	risk = a.assessRisk(minor, nil)
	if risk.Level != model.RiskMinimal {
		t.Errorf("Expected minimal level for score %v, got %s", risk.Score, risk.Level)
	}

	// Empty input
	risk = a.assessRisk(nil, nil)
	if risk.Score != 0 || risk.Level != model.RiskMinimal {
		t.Errorf("Expected zero minimal assessment, got %+v", risk)
	}
}

func TestAnalyzer_RuleAdjustment(t *testing.T) {
	a := testAnalyzer(nil)
	rules := []model.RuleResult{
		{
			RuleID:  "rule-001",
			Matched: true,
			ActionResult: &model.ActionResult{Actions: []model.RuleAction{
				{Type: "flag_disclosure_risk", Severity: "high"},
				{Type: "notify", Severity: "high"}, // Ignored action type
			}},
		},
		{RuleID: "rule-002", Matched: false}, // No action result
	}

	risk := a.assessRisk(nil, rules)
	if risk.Score < 0.149 || risk.Score > 0.151 {
		t.Errorf("Expected +0.15 high-severity adjustment, got %v", risk.Score)
	}
	if len(risk.RuleSignals) != 1 {
		t.Errorf("Expected 1 rule signal, got %v", risk.RuleSignals)
	}
}

func TestAnalyzer_RecencyBonus(t *testing.T) {
	a := testAnalyzer(nil)
	recent := fixedNow.AddDate(0, 0, -10)
	old := fixedNow.AddDate(0, 0, -120)

	items := []model.DisclosureItem{
		{Type: model.ItemDiagnosis, Category: "chronic", Severity: model.SeverityLow, Confidence: 0.5, Date: &recent},
		{Type: model.ItemDiagnosis, Category: "chronic", Severity: model.SeverityLow, Confidence: 0.5, Date: &old},
	}
	risk := a.assessRisk(items, nil)
	if risk.RecencyBonus != 0.1 {
		t.Errorf("Expected recency bonus 0.1 for one recent item, got %v", risk.RecencyBonus)
	}
}

func TestAnalyzer_RiskScoreClamped(t *testing.T) {
	a := testAnalyzer(nil)
	recent := fixedNow.AddDate(0, 0, -1)
	var items []model.DisclosureItem
	for i := 0; i < 5; i++ {
		items = append(items, model.DisclosureItem{
			Type: model.ItemHospitalization, Category: "cancer",
			Severity: model.SeverityHigh, Confidence: 1.0, Date: &recent,
		})
	}
	risk := a.assessRisk(items, nil)
	if risk.Score > 1.0 {
		t.Errorf("Expected score clamped to 1.0, got %v", risk.Score)
	}
}

func TestAnalyzer_RecommendationOrdering(t *testing.T) {
	a := testAnalyzer(nil)
	items := []model.DisclosureItem{{
		Type: model.ItemDiagnosis, Category: "cancer", NormalizedText: "갑상선암",
		Severity: model.SeverityHigh, Confidence: 1.0, DisclosureRequired: true,
	}}
	risk := a.assessRisk(items, nil)
	recs := a.generateRecommendations(items, risk)
	if len(recs) < 3 {
		t.Fatalf("Expected overall, item and review recommendations, got %d", len(recs))
	}
	for i := 1; i < len(recs); i++ {
		if !recs[i-1].ActionRequired && recs[i].ActionRequired {
			t.Error("Expected action-required recommendations sorted first")
		}
	}
	if recs[0].Type != "overall" || !recs[0].ActionRequired {
		t.Errorf("Expected overall recommendation first, got %+v", recs[0])
	}
}

func TestAnalyzer_Analyze(t *testing.T) {
	a := testAnalyzer(nil)
	diag := model.NewDiagnosis(map[string]any{"id": "d1", "normalized_text": "갑상선암", "confidence": 0.9})
	timeline := &model.Timeline{
		Events:     []model.TemporalEvent{{ID: "e1", Date: date(2023, 12, 1), EntityIDs: []string{"d1"}}},
		EventCount: 1,
	}

	result, err := a.Analyze(context.Background(), Input{
		Entities: []model.Entity{diag},
		Timeline: timeline,
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(result.Items))
	}
	if result.OverallRiskScore != result.RiskAssessment.Score {
		t.Error("Expected overall score to mirror the assessment")
	}
	if result.Detailed == nil {
		t.Error("Expected detailed analysis when enabled")
	}
	if result.Summary == "" {
		t.Error("Expected a summary")
	}
	if result.Metadata["entity_count"] != 1 {
		t.Errorf("Expected entity count metadata, got %v", result.Metadata)
	}
	if result.ProcessingTimeMs < 0 {
		t.Errorf("Expected non-negative processing time, got %d", result.ProcessingTimeMs)
	}
}

func TestAnalyzer_AnalyzeCancelled(t *testing.T) {
	a := testAnalyzer(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := a.Analyze(ctx, Input{}); err == nil {
		t.Error("Expected error for cancelled context")
	}
}

type failScorer struct{}

func (failScorer) TagTimeline([]model.TemporalEvent, map[string]model.Entity,
	*model.ClaimSpec, *model.ContractInfo) ([]model.TemporalEvent, error) {
	return nil, errors.New("scorer unavailable")
}

type stubScorer struct{}

func (stubScorer) TagTimeline(events []model.TemporalEvent, _ map[string]model.Entity,
	_ *model.ClaimSpec, _ *model.ContractInfo) ([]model.TemporalEvent, error) {
	out := make([]model.TemporalEvent, len(events))
	for i, ev := range events {
		out[i] = ev
		out[i].Tag = &model.DisputeTag{Phase: model.PhaseCoveredPeriod, Role: model.RoleBackground}
	}
	return out, nil
}

func disputeInput() Input {
	return Input{
		Timeline: &model.Timeline{
			Events:     []model.TemporalEvent{{ID: "e1", Date: date(2024, 2, 1)}},
			EventCount: 1,
		},
		Contract: &model.ContractInfo{IssueDate: date(2024, 1, 1), WaitingPeriodDays: 90},
		Claim:    &model.ClaimSpec{ClaimDate: date(2024, 6, 1)},
	}
}

func TestAnalyzer_TaggingFailureDegrades(t *testing.T) {
	a := testAnalyzer(failScorer{})
	input := disputeInput()

	result, err := a.Analyze(context.Background(), input)
	if err != nil {
		t.Fatalf("Expected degraded success, got error %v", err)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("Expected 1 warning, got %v", result.Warnings)
	}
	if input.Timeline.Events[0].Tag != nil {
		t.Error("Expected timeline untagged after failed tagging")
	}
}

func TestAnalyzer_TaggingApplied(t *testing.T) {
	a := testAnalyzer(stubScorer{})
	input := disputeInput()

	result, err := a.Analyze(context.Background(), input)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", result.Warnings)
	}
	if input.Timeline.Events[0].Tag == nil {
		t.Error("Expected timeline events tagged")
	}
}
