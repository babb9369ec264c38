package model

import "testing"

func TestNewEntity_KindDispatch(t *testing.T) {
	cases := []struct {
		kind string
		want EntityKind
	}{
		{"diagnosis", KindDiagnosis},
		{"procedure", KindProcedure},
		{"medication", KindMedication},
		{"test", KindTest},
		{"finding", KindFinding},
		{"", KindFinding},        // Missing kind falls back
		{"unknown", KindFinding}, // Unknown kind falls back
	}
	for _, tc := range cases {
		e := NewEntity(map[string]any{"kind": tc.kind, "normalized_text": "text"})
		if e.Kind() != tc.want {
			t.Errorf("kind %q: expected %s, got %s", tc.kind, tc.want, e.Kind())
		}
	}
}

func TestNewEntity_Defaults(t *testing.T) {
	e := NewEntity(map[string]any{"kind": "diagnosis", "original_text": "갑상선암"})
	core := e.Core()
	if core.ID == "" {
		t.Error("Expected generated id")
	}
	if core.Confidence != 0.5 {
		t.Errorf("Expected default confidence 0.5, got %v", core.Confidence)
	}
	if core.NormalizedText != "갑상선암" {
		t.Errorf("Expected normalized fallback to original, got %q", core.NormalizedText)
	}
}

func TestNewEntity_ExplicitFields(t *testing.T) {
	e := NewEntity(map[string]any{
		"kind":            "diagnosis",
		"id":              "d1",
		"original_text":   "갑상선 유두암 (C73)",
		"normalized_text": "갑상선암",
		"confidence":      0.9,
		"codes":           []string{"C73"},
		"primary":         true,
		"anatomical_site": "갑상선",
	})
	d, ok := e.(*Diagnosis)
	if !ok {
		t.Fatalf("Expected *Diagnosis, got %T", e)
	}
	if d.ID != "d1" || d.Confidence != 0.9 {
		t.Errorf("Expected explicit core fields, got %+v", d.EntityCore)
	}
	if len(d.Codes) != 1 || d.Codes[0] != "C73" {
		t.Errorf("Expected codes, got %v", d.Codes)
	}
	if !d.Primary || d.AnatomicalSite != "갑상선" {
		t.Errorf("Expected variant fields, got %+v", d)
	}
}

func TestNewEntity_CodesFromAnySlice(t *testing.T) {
	e := NewEntity(map[string]any{
		"kind":            "diagnosis",
		"normalized_text": "심근경색",
		"codes":           []any{"I21.0", 42, "I25"},
	})
	codes := e.Core().Codes
	if len(codes) != 2 || codes[0] != "I21.0" || codes[1] != "I25" {
		t.Errorf("Expected string codes only, got %v", codes)
	}
}

func TestEntity_Validate(t *testing.T) {
	valid := NewEntity(map[string]any{"kind": "medication", "normalized_text": "아스피린"})
	if report := valid.Validate(); !report.Valid {
		t.Errorf("Expected valid, got %v", report.Errors)
	}

	empty := NewEntity(map[string]any{"kind": "diagnosis"})
	if report := empty.Validate(); report.Valid {
		t.Error("Expected empty text rejected")
	}

	outOfRange := NewEntity(map[string]any{"kind": "diagnosis", "normalized_text": "위염", "confidence": 1.7})
	if report := outOfRange.Validate(); report.Valid {
		t.Error("Expected out-of-range confidence rejected")
	}
}

func TestEntity_VariantSerialize(t *testing.T) {
	p := NewProcedure(map[string]any{
		"normalized_text": "위절제술",
		"approach":        "laparoscopic",
		"outcome":         "성공",
	})
	out := p.Serialize()
	if out["kind"] != "procedure" {
		t.Errorf("Expected kind procedure, got %v", out["kind"])
	}
	if out["approach"] != "laparoscopic" || out["outcome"] != "성공" {
		t.Errorf("Expected variant fields serialized, got %v", out)
	}

	m := NewMedication(map[string]any{"normalized_text": "인슐린", "dosage": "10IU", "route": "피하"})
	out = m.Serialize()
	if out["dosage"] != "10IU" || out["route"] != "피하" {
		t.Errorf("Expected medication fields, got %v", out)
	}

	// Empty optional fields stay out of the serialized map
	f := NewFinding(map[string]any{"normalized_text": "특이소견"})
	out = f.Serialize()
	if _, ok := out["codes"]; ok {
		t.Error("Expected no codes key for codeless entity")
	}
}

func TestEntity_SerializeAnchorLinks(t *testing.T) {
	e := NewEntity(map[string]any{"kind": "diagnosis", "normalized_text": "위암"})
	e.Core().AnchorLinks = []AnchorLink{{AnchorID: "a1", LinkType: "same_segment", Confidence: 0.9}}
	out := e.Serialize()
	links, ok := out["anchor_links"].([]map[string]any)
	if !ok || len(links) != 1 {
		t.Fatalf("Expected serialized anchor links, got %v", out["anchor_links"])
	}
	if links[0]["anchor_id"] != "a1" {
		t.Errorf("Expected anchor id a1, got %v", links[0]["anchor_id"])
	}
}
