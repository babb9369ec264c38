package model

import (
	"testing"
	"time"
)

func TestAnchor_DedupKey(t *testing.T) {
	d := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	a := Anchor{ID: "a1", Date: d, Type: AnchorVisit}
	b := Anchor{ID: "a2", Date: d, Type: AnchorVisit}
	c := Anchor{ID: "a3", Date: d, Type: AnchorSurgery}

	if a.DedupKey() != b.DedupKey() {
		t.Error("Expected same key for same date and type")
	}
	if a.DedupKey() == c.DedupKey() {
		t.Error("Expected different key for different types")
	}
}

func TestAnchor_Validate(t *testing.T) {
	valid := Anchor{
		ID:         "a1",
		Date:       time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Type:       AnchorVisit,
		Confidence: 0.9, ProximityScore: 0.5,
	}
	if report := valid.Validate(); !report.Valid {
		t.Errorf("Expected valid, got %v", report.Errors)
	}

	invalid := Anchor{Confidence: 1.5, ProximityScore: -0.1}
	report := invalid.Validate()
	if report.Valid {
		t.Fatal("Expected invalid anchor")
	}
	if len(report.Errors) != 4 {
		t.Errorf("Expected 4 errors (date, confidence, proximity, type), got %v", report.Errors)
	}
}

func TestAnchor_Serialize(t *testing.T) {
	a := Anchor{
		ID:               "a1",
		Date:             time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		OriginalDateText: "2024년 3월 15일",
		Type:             AnchorSurgery,
		Confidence:       0.9,
	}
	out := a.Serialize()
	if out["date"] != "2024-03-15" {
		t.Errorf("Expected ISO date string, got %v", out["date"])
	}
	if out["type"] != "surgery" {
		t.Errorf("Expected plain type string, got %v", out["type"])
	}
	if out["original_date_text"] != "2024년 3월 15일" {
		t.Errorf("Expected original text preserved, got %v", out["original_date_text"])
	}
}
