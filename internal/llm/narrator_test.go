package llm

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/nofnotg/anamnesis/internal/model"
	"github.com/nofnotg/anamnesis/internal/worker"
)

// fakeProvider implements Provider for tests
type fakeProvider struct {
	text  string
	dates []string
	err   error
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Narrate(ctx context.Context, req NarrateRequest) (*NarrateResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &NarrateResponse{Text: f.text, CitedDates: f.dates, Model: "fake-model"}, nil
}

func (f *fakeProvider) IsAvailable(ctx context.Context) bool { return true }

func testNarrator(p Provider, strict bool) *Narrator {
	return &Narrator{
		provider: p,
		limiter:  worker.NewLimiter(100, 2),
		cfg:      model.LLMConfig{StrictDates: strict, MaxTokens: 500},
	}
}

func testReport() *model.Report {
	return &model.Report{
		DocumentID: "doc-1",
		Anchors: []model.Anchor{
			{Date: time.Date(2023, 11, 10, 0, 0, 0, 0, time.UTC)},
			{Date: time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)},
			{Date: time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)}, // Duplicate date
		},
	}
}

func TestNarrator_StrictDatesPass(t *testing.T) {
	p := &fakeProvider{
		text:  "환자는 2023-11-10 내원하여 2023-12-01 수술을 받았다.",
		dates: []string{"2023-11-10", "2023-12-01"},
	}
	n := testNarrator(p, true)

	narrative, err := n.Narrate(context.Background(), testReport())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if narrative.Text == "" || !narrative.StrictDates {
		t.Errorf("Expected strict narrative, got %+v", narrative)
	}
	if narrative.Provider != "fake" || narrative.Model != "fake-model" {
		t.Errorf("Expected provider metadata, got %+v", narrative)
	}
}

func TestNarrator_StrictDatesRejectLeak(t *testing.T) {
	p := &fakeProvider{
		text:  "환자는 2020-01-01 최초 진단되었다.",
		dates: []string{"2020-01-01"},
	}
	n := testNarrator(p, true)

	if _, err := n.Narrate(context.Background(), testReport()); err == nil {
		t.Fatal("Expected date-leak rejection")
	} else if !strings.Contains(err.Error(), "2020-01-01") {
		t.Errorf("Expected leaked date in error, got %v", err)
	}
}

func TestNarrator_LenientDates(t *testing.T) {
	p := &fakeProvider{
		text:  "환자는 2020-01-01 최초 진단되었다.",
		dates: []string{"2020-01-01"},
	}
	n := testNarrator(p, false)

	if _, err := n.Narrate(context.Background(), testReport()); err != nil {
		t.Errorf("Expected lenient mode to accept any date, got %v", err)
	}
}

func TestAllowedDates_Dedup(t *testing.T) {
	dates := allowedDates(testReport())
	if len(dates) != 2 {
		t.Fatalf("Expected 2 unique dates, got %v", dates)
	}
	if dates[0] != "2023-11-10" || dates[1] != "2023-12-01" {
		t.Errorf("Expected anchor-order dates, got %v", dates)
	}
}

func TestExtractDates(t *testing.T) {
	text := "내원 2023-11-10, 수술 2023-12-01, 재확인 2023-11-10"
	dates := extractDates(text)
	if len(dates) != 2 {
		t.Fatalf("Expected 2 unique dates, got %v", dates)
	}
	if extractDates("날짜 없음") != nil {
		t.Error("Expected nil for dateless text")
	}
}

func TestBuildPrompt(t *testing.T) {
	report := testReport()
	report.Episodes = []model.EpisodeSummary{
		{Summary: "[2023-11-10~2023-12-01] 갑상선암 (PRE_CONTRACT, POTENTIAL)"},
	}
	report.Disclosure = &model.DisclosureResult{
		OverallRiskScore: 0.84,
		RiskAssessment:   model.RiskAssessment{Level: model.RiskHigh},
	}

	prompt := BuildPrompt(report, allowedDates(report))
	for _, want := range []string{"2023-11-10", "2023-12-01", "doc-1", "갑상선암", "0.84", "Korean"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}
}

func TestBuildPrompt_EpisodeCap(t *testing.T) {
	report := testReport()
	for i := 0; i < 15; i++ {
		report.Episodes = append(report.Episodes, model.EpisodeSummary{Summary: "episode"})
	}
	prompt := BuildPrompt(report, nil)
	if !strings.Contains(prompt, "and 5 more episodes") {
		t.Error("Expected episode list capped at 10")
	}
	if !strings.Contains(prompt, "(no dates available)") {
		t.Error("Expected empty-date placeholder")
	}
}

func TestNewProvider(t *testing.T) {
	if p, err := NewProvider(model.LLMConfig{}); err != nil || p != nil {
		t.Errorf("Expected disabled provider for empty name, got %v, %v", p, err)
	}
	if _, err := NewProvider(model.LLMConfig{Provider: "unknown"}); err == nil {
		t.Error("Expected error for unknown provider")
	}
	p, err := NewProvider(model.LLMConfig{Provider: "ollama"})
	if err != nil {
		t.Fatalf("Expected ollama provider, got %v", err)
	}
	if p.Name() != "ollama" {
		t.Errorf("Expected ollama name, got %s", p.Name())
	}
}

func TestNewNarrator(t *testing.T) {
	if _, err := NewNarrator(model.LLMConfig{}); err == nil {
		t.Error("Expected error when no provider configured")
	}
	n, err := NewNarrator(model.LLMConfig{Provider: "ollama"})
	if err != nil {
		t.Fatalf("Expected narrator, got %v", err)
	}
	if n.provider == nil || n.limiter == nil {
		t.Error("Expected wired narrator")
	}
}
