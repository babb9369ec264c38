package llm

import (
	"context"
	"fmt"
	"regexp"

	"github.com/nofnotg/anamnesis/internal/model"
	"github.com/nofnotg/anamnesis/internal/worker"
)

// datePattern matches ISO calendar dates in narrative text
var datePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// Narrator wraps a provider with rate limiting and the strict
// date-grounding check: the generated narrative may only cite dates that
// exist in the analyzed timeline.
type Narrator struct {
	provider Provider
	limiter  *worker.Limiter
	cfg      model.LLMConfig
}

// NewNarrator builds a narrator from configuration. Returns an error when
// the configured provider cannot be constructed.
func NewNarrator(cfg model.LLMConfig) (*Narrator, error) {
	provider, err := NewProvider(cfg)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, fmt.Errorf("no LLM provider configured")
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	return &Narrator{
		provider: provider,
		limiter:  worker.NewLimiter(rps, cfg.Burst),
		cfg:      cfg,
	}, nil
}

// Narrate generates the reviewer narrative for a completed report. The
// date allowlist comes from the report's anchors; with strict dates on,
// a narrative citing any other date is rejected.
func (n *Narrator) Narrate(ctx context.Context, report *model.Report) (*model.Narrative, error) {
	if err := n.limiter.Wait(ctx, n.provider.Name()); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	allowed := allowedDates(report)
	resp, err := n.provider.Narrate(ctx, NarrateRequest{
		Report:       report,
		AllowedDates: allowed,
		Model:        n.cfg.Model,
		MaxTokens:    n.cfg.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	narrative := &model.Narrative{
		Enabled:     true,
		Provider:    n.provider.Name(),
		Model:       resp.Model,
		StrictDates: n.cfg.StrictDates,
		Text:        resp.Text,
	}

	if n.cfg.StrictDates {
		allowSet := make(map[string]bool, len(allowed))
		for _, d := range allowed {
			allowSet[d] = true
		}
		for _, cited := range resp.CitedDates {
			if !allowSet[cited] {
				return nil, fmt.Errorf("date leak: narrative cited %s, which is not in the timeline", cited)
			}
		}
	}
	return narrative, nil
}

func allowedDates(report *model.Report) []string {
	seen := make(map[string]bool)
	var dates []string
	for _, a := range report.Anchors {
		d := a.Date.Format("2006-01-02")
		if !seen[d] {
			seen[d] = true
			dates = append(dates, d)
		}
	}
	return dates
}

// extractDates finds all ISO dates mentioned in text, deduplicated
func extractDates(text string) []string {
	matches := datePattern.FindAllString(text, -1)
	seen := make(map[string]bool, len(matches))
	var unique []string
	for _, m := range matches {
		if !seen[m] {
			seen[m] = true
			unique = append(unique, m)
		}
	}
	return unique
}
