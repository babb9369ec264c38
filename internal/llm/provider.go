package llm

import (
	"context"
	"fmt"

	"github.com/nofnotg/anamnesis/internal/model"
)

// Provider defines the interface for narrative LLM providers. The
// narrative is reviewer-facing prose generated after analysis; it never
// feeds back into any score.
type Provider interface {
	// Name returns the provider name
	Name() string

	// Narrate generates a reviewer summary of the report
	Narrate(ctx context.Context, req NarrateRequest) (*NarrateResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// NarrateRequest contains the input for narrative generation
type NarrateRequest struct {
	// Report is the completed analysis to narrate
	Report *model.Report

	// AllowedDates is the STRICT allowlist of ISO dates the narrative may
	// mention. Prevents hallucinated history: the model cannot reference
	// any date not present in the timeline.
	AllowedDates []string

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// NarrateResponse contains the provider's output
type NarrateResponse struct {
	// Text is the generated narrative
	Text string

	// CitedDates are the ISO dates the model actually mentioned
	CitedDates []string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// BuildPrompt constructs the default narration prompt with strict date
// grounding.
func BuildPrompt(report *model.Report, allowedDates []string) string {
	var riskLine string
	if report.Disclosure != nil {
		riskLine = fmt.Sprintf("- Overall disclosure risk: %.2f (%s)\n- Disclosure-relevant items: %d\n",
			report.Disclosure.OverallRiskScore, report.Disclosure.RiskAssessment.Level, len(report.Disclosure.Items))
	}

	prompt := fmt.Sprintf(`You are writing a short reviewer summary of an automated medical-history analysis for an insurance claim dispute. The analysis is already complete - you summarize it, you never re-judge it.

CRITICAL RULES:
1. You may ONLY mention calendar dates from this allowed list:
%s

2. DO NOT infer or invent events, diagnoses or dates beyond the report content.
3. Describe what the record shows, never whether the claim is valid.
4. If data is missing or uncertain, say so explicitly.

Report:
- Document: %s
- Anchors found: %d
%s
Episodes:
`, joinDates(allowedDates), report.DocumentID, len(report.Anchors), riskLine)

	for i, ep := range report.Episodes {
		if i >= 10 {
			prompt += fmt.Sprintf("... and %d more episodes\n", len(report.Episodes)-10)
			break
		}
		prompt += "- " + ep.Summary + "\n"
	}

	prompt += "\nWrite a 3-5 sentence summary in Korean focusing on the pre-contract medical history and its disclosure relevance."
	return prompt
}

func joinDates(dates []string) string {
	if len(dates) == 0 {
		return "(no dates available)"
	}
	result := ""
	for i, d := range dates {
		if i >= 40 { // Cap to avoid token bloat
			result += fmt.Sprintf("\n... and %d more dates", len(dates)-40)
			break
		}
		result += "\n- " + d
	}
	return result
}
