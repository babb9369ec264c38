package disclosure

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/nofnotg/anamnesis/internal/dict"
	"github.com/nofnotg/anamnesis/internal/model"
)

// Lookup is the dictionary interface the analyzer consumes; both
// dict.Dictionary and dict.CachedDictionary satisfy it.
type Lookup interface {
	Lookup(kind model.EntityKind, normalizedText string) (dict.Match, bool)
}

// TagScorer is the optional injected dispute-tagging strategy. When nil,
// or when tagging fails, the analyzer proceeds without tags.
type TagScorer interface {
	TagTimeline(events []model.TemporalEvent, entitiesByID map[string]model.Entity,
		claim *model.ClaimSpec, contract *model.ContractInfo) ([]model.TemporalEvent, error)
}

// Analyzer matches entities against disclosure dictionaries, aggregates
// risk and emits prioritized recommendations.
type Analyzer struct {
	cfg    model.DisclosureConfig
	dict   Lookup
	scorer TagScorer // nil disables dispute tagging
	log    zerolog.Logger
	now    func() time.Time
}

// NewAnalyzer creates a disclosure analyzer. scorer may be nil.
func NewAnalyzer(cfg model.DisclosureConfig, lookup Lookup, scorer TagScorer, log zerolog.Logger) *Analyzer {
	return &Analyzer{
		cfg:    cfg,
		dict:   lookup,
		scorer: scorer,
		log:    log,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Input carries everything one disclosure analysis consumes. Contract
// and Claim are optional; without them dispute tagging is skipped.
type Input struct {
	RuleResults []model.RuleResult
	Entities    []model.Entity
	Timeline    *model.Timeline
	Contract    *model.ContractInfo
	Claim       *model.ClaimSpec
}

// Analyze runs identification, risk assessment, recommendations, the
// optional detailed analysis and the optional dispute tagging. Optional
// steps degrade to warnings; the primary result is always returned unless
// the context is cancelled.
func (a *Analyzer) Analyze(ctx context.Context, input Input) (*model.DisclosureResult, error) {
	started := a.now()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("disclosure analysis: %w", err)
	}

	result := &model.DisclosureResult{
		Metadata: map[string]any{
			"entity_count": len(input.Entities),
			"rule_count":   len(input.RuleResults),
		},
	}
	if input.Timeline != nil {
		result.Metadata["event_count"] = input.Timeline.EventCount
	}

	result.Items = a.identifyItems(input.Entities, input.Timeline)
	result.RiskAssessment = a.assessRisk(result.Items, input.RuleResults)
	result.OverallRiskScore = result.RiskAssessment.Score
	result.DisclosureRequired = result.RiskAssessment.Score >= a.cfg.RecommendThreshold
	result.Recommendations = a.generateRecommendations(result.Items, result.RiskAssessment)

	if a.cfg.DetailedAnalysis {
		result.Detailed = a.performDetailedAnalysis(result.Items, input.Entities)
	}

	// Dispute tagging is strictly best-effort: a failure here must never
	// abort the primary result.
	if a.scorer != nil && input.Contract != nil && input.Claim != nil &&
		input.Timeline != nil && input.Timeline.EventCount > 0 {
		tagged, err := a.scorer.TagTimeline(input.Timeline.Events, entityIndex(input.Entities), input.Claim, input.Contract)
		if err != nil {
			a.log.Warn().Err(err).Msg("dispute tagging failed, returning untagged timeline")
			result.Warnings = append(result.Warnings, fmt.Sprintf("dispute tagging skipped: %v", err))
		} else {
			input.Timeline.Events = tagged
		}
	}

	result.Summary = a.summarize(result)
	result.ProcessingTimeMs = a.now().Sub(started).Milliseconds()
	return result, nil
}

func (a *Analyzer) summarize(r *model.DisclosureResult) string {
	required := "no"
	if r.DisclosureRequired {
		required = "yes"
	}
	return fmt.Sprintf("%d disclosure-relevant items; overall risk %s (%.2f); disclosure required: %s",
		len(r.Items), r.RiskAssessment.Level, r.RiskAssessment.Score, required)
}

func entityIndex(entities []model.Entity) map[string]model.Entity {
	idx := make(map[string]model.Entity, len(entities))
	for _, e := range entities {
		idx[e.Core().ID] = e
	}
	return idx
}

func severityRank(severity string) int {
	switch strings.ToLower(severity) {
	case model.SeverityHigh:
		return 3
	case model.SeverityMedium:
		return 2
	case model.SeverityLow:
		return 1
	default:
		return 0
	}
}

func sortItems(items []model.DisclosureItem) {
	sort.SliceStable(items, func(i, j int) bool {
		ri, rj := severityRank(items[i].Severity), severityRank(items[j].Severity)
		if ri != rj {
			return ri > rj
		}
		return items[i].Confidence > items[j].Confidence
	})
}
