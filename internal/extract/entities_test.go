package extract

import (
	"testing"
	"time"

	"github.com/nofnotg/anamnesis/internal/model"
)

func TestExtractor_Kinds(t *testing.T) {
	x := NewExtractor()
	segments := []model.TextSegment{
		{ID: "s1", Text: "갑상선암 진단 하에 갑상선절제술 시행, 항암제 처방, 위내시경 검사 예정"},
	}

	entities := x.Extract(segments, nil)

	kinds := make(map[model.EntityKind]int)
	for _, e := range entities {
		kinds[e.Kind()]++
	}
	if kinds[model.KindDiagnosis] == 0 {
		t.Error("Expected a diagnosis entity")
	}
	if kinds[model.KindProcedure] == 0 {
		t.Error("Expected a procedure entity")
	}
	if kinds[model.KindMedication] == 0 {
		t.Error("Expected a medication entity")
	}
	if kinds[model.KindTest] == 0 {
		t.Error("Expected a test entity")
	}
}

func TestExtractor_KCDCodeBoost(t *testing.T) {
	x := NewExtractor()
	coded := x.Extract([]model.TextSegment{{ID: "s1", Text: "갑상선암 (C73) 진단"}}, nil)
	if len(coded) == 0 {
		t.Fatal("Expected entities")
	}
	var diag model.Entity
	for _, e := range coded {
		if e.Kind() == model.KindDiagnosis {
			diag = e
			break
		}
	}
	if diag == nil {
		t.Fatal("Expected a diagnosis entity")
	}
	if len(diag.Core().Codes) != 1 || diag.Core().Codes[0] != "C73" {
		t.Errorf("Expected code C73 captured, got %v", diag.Core().Codes)
	}
	if diag.Core().Confidence != baseConfidence+codedBoost {
		t.Errorf("Expected boosted confidence %.2f, got %.2f",
			baseConfidence+codedBoost, diag.Core().Confidence)
	}

	plain := x.Extract([]model.TextSegment{{ID: "s2", Text: "갑상선암 진단"}}, nil)
	for _, e := range plain {
		if e.Kind() == model.KindDiagnosis && e.Core().Confidence != baseConfidence {
			t.Errorf("Expected base confidence without code, got %.2f", e.Core().Confidence)
		}
	}
}

func TestExtractor_DedupesWithinSegment(t *testing.T) {
	x := NewExtractor()
	entities := x.Extract([]model.TextSegment{
		{ID: "s1", Text: "고혈압 진단, 고혈압 약물 치료 중"},
	}, nil)

	count := 0
	for _, e := range entities {
		if e.Core().NormalizedText == "고혈압" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("Expected 1 deduplicated mention, got %d", count)
	}
}

func TestExtractor_LongerKeywordWins(t *testing.T) {
	// "당뇨병" should be extracted once as 당뇨병; the shorter 당뇨 still
	// matches the same span but is a separate dictionary key, so both
	// appear. The longer keyword must come first.
	x := NewExtractor()
	entities := x.Extract([]model.TextSegment{{ID: "s1", Text: "제2형 당뇨병 진단"}}, nil)
	if len(entities) == 0 {
		t.Fatal("Expected entities")
	}
	if entities[0].Core().NormalizedText != "당뇨병" {
		t.Errorf("Expected 당뇨병 extracted first, got %s", entities[0].Core().NormalizedText)
	}
}

func TestExtractor_AnchorLinking(t *testing.T) {
	x := NewExtractor()
	anchors := []model.Anchor{
		{ID: "a-near", SourceSegmentID: "s1", Offset: 0,
			Date: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{ID: "a-far", SourceSegmentID: "s1", Offset: 200,
			Date: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "a-other", SourceSegmentID: "s2", Offset: 1,
			Date: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)},
	}
	entities := x.Extract([]model.TextSegment{
		{ID: "s1", Text: "2024-03-15 위암 진단"},
	}, anchors)

	if len(entities) == 0 {
		t.Fatal("Expected entities")
	}
	links := entities[0].Core().AnchorLinks
	if len(links) != 1 {
		t.Fatalf("Expected 1 anchor link, got %d", len(links))
	}
	if links[0].AnchorID != "a-near" {
		t.Errorf("Expected nearest same-segment anchor, got %s", links[0].AnchorID)
	}
	if links[0].LinkType != "same_segment" {
		t.Errorf("Expected same_segment link, got %s", links[0].LinkType)
	}
	if links[0].Confidence < 0.3 || links[0].Confidence > 1.0 {
		t.Errorf("Expected link confidence in [0.3, 1.0], got %v", links[0].Confidence)
	}
}

func TestExtractor_NoAnchorsNoLinks(t *testing.T) {
	x := NewExtractor()
	entities := x.Extract([]model.TextSegment{{ID: "s1", Text: "위암 진단"}}, nil)
	if len(entities) == 0 {
		t.Fatal("Expected entities")
	}
	if len(entities[0].Core().AnchorLinks) != 0 {
		t.Errorf("Expected no links without anchors, got %v", entities[0].Core().AnchorLinks)
	}
}

func TestExtractor_ValidEntities(t *testing.T) {
	x := NewExtractor()
	entities := x.Extract([]model.TextSegment{
		{ID: "s1", Text: "심근경색 (I21.0) 으로 스텐트삽입술 시행 후 아스피린 복용"},
	}, nil)
	if len(entities) < 3 {
		t.Fatalf("Expected at least 3 entities, got %d", len(entities))
	}
	for _, e := range entities {
		if report := e.Validate(); !report.Valid {
			t.Errorf("Entity %s invalid: %v", e.Core().NormalizedText, report.Errors)
		}
		if e.Core().Status != "recorded" {
			t.Errorf("Expected recorded status, got %s", e.Core().Status)
		}
	}
}

func TestExtractor_EmptyInput(t *testing.T) {
	x := NewExtractor()
	if entities := x.Extract(nil, nil); len(entities) != 0 {
		t.Errorf("Expected no entities, got %d", len(entities))
	}
	if entities := x.Extract([]model.TextSegment{{ID: "s1", Text: "특이사항 없음"}}, nil); len(entities) != 0 {
		t.Errorf("Expected no entities for text without keywords, got %d", len(entities))
	}
}
