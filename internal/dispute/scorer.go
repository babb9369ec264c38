package dispute

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/nofnotg/anamnesis/internal/bodysystem"
	"github.com/nofnotg/anamnesis/internal/model"
)

// Scorer is a pure per-event classifier: phase, diagnosis match, severity
// and chain position combine into one importance score and a dispute tag.
// It holds no state beyond its configuration.
type Scorer struct {
	cfg model.ScoringConfig
}

// NewScorer creates a scorer with the given configuration
func NewScorer(cfg model.ScoringConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Phase partitions an event date against the contract: strictly before
// the issue date is PRE_CONTRACT; from the issue date through the end of
// the waiting period (both boundaries inclusive) is WAITING_PERIOD;
// everything after is COVERED_PERIOD. A missing date or contract defaults
// to COVERED_PERIOD — the conservative direction, which under-flags
// incomplete data; see DESIGN.md.
func (s *Scorer) Phase(eventDate time.Time, contract *model.ContractInfo) model.Phase {
	if eventDate.IsZero() || contract == nil || contract.IssueDate.IsZero() {
		return model.PhaseCoveredPeriod
	}
	if eventDate.Before(contract.IssueDate) {
		return model.PhasePreContract
	}
	if !eventDate.After(contract.WaitingPeriodEnd()) {
		return model.PhaseWaitingPeriod
	}
	return model.PhaseCoveredPeriod
}

func (s *Scorer) phaseWeight(phase model.Phase) float64 {
	switch phase {
	case model.PhasePreContract:
		return s.cfg.PreContractPhaseWeight
	case model.PhaseWaitingPeriod:
		return s.cfg.WaitingPeriodPhaseWeight
	default:
		return s.cfg.CoveredPeriodPhaseWeight
	}
}

// DiagnosisMatch is the Jaccard similarity between the event's mapped
// body systems and the claim's declared body systems; 0.0 when either
// side is empty or the claim is absent.
func (s *Scorer) DiagnosisMatch(eventSystems []string, claim *model.ClaimSpec) float64 {
	if claim == nil {
		return 0.0
	}
	return bodysystem.Similarity(eventSystems, claim.BodySystems)
}

// Severity markers looked for in procedure and medication text
var (
	surgeryMarkers   = []string{"수술", "시술", "절제술", "적출술", "surgery", "operation", "resection"}
	treatmentMarkers = []string{"항암", "화학요법", "방사선", "chemotherapy", "chemo", "radiation", "radiotherapy"}
)

// Severity is an additive keyword/field-based score: surgery +0.5,
// admission +0.3, chemotherapy/radiation-class treatment +0.2, capped at
// 1.0. Deliberately a simple auditable heuristic, not a classifier.
func (s *Scorer) Severity(event model.TemporalEvent, entities []model.Entity) (float64, []string) {
	var score float64
	var markers []string

	if event.AnchorType == model.AnchorSurgery || anyEntityMatches(entities, model.KindProcedure, surgeryMarkers) {
		score += s.cfg.SurgerySeverity
		markers = append(markers, "surgery")
	}
	if event.AnchorType == model.AnchorAdmission || strings.Contains(event.Description, "입원") {
		score += s.cfg.AdmissionSeverity
		markers = append(markers, "admission")
	}
	if anyEntityMatches(entities, model.KindProcedure, treatmentMarkers) ||
		anyEntityMatches(entities, model.KindMedication, treatmentMarkers) {
		score += s.cfg.TreatmentSeverity
		markers = append(markers, "treatment")
	}
	if score > 1.0 {
		score = 1.0
	}
	return score, markers
}

func anyEntityMatches(entities []model.Entity, kind model.EntityKind, markers []string) bool {
	for _, e := range entities {
		if e.Kind() != kind {
			continue
		}
		text := strings.ToLower(e.Core().NormalizedText + " " + e.Core().OriginalText)
		for _, m := range markers {
			if strings.Contains(text, m) {
				return true
			}
		}
	}
	return false
}

// ChainPosition buckets the distance to the claim's index event:
// ≤7 days → 1.0, ≤30 → 0.7, ≤180 → 0.4, ≤365 → 0.2, beyond → 0.1.
// 0.0 when no index date is known. Non-increasing in distance.
func (s *Scorer) ChainPosition(eventDate time.Time, indexDate time.Time) float64 {
	if eventDate.IsZero() || indexDate.IsZero() {
		return 0.0
	}
	days := int(math.Abs(eventDate.Sub(indexDate).Hours()) / 24)
	switch {
	case days <= 7:
		return 1.0
	case days <= 30:
		return 0.7
	case days <= 180:
		return 0.4
	case days <= 365:
		return 0.2
	default:
		return 0.1
	}
}

// EventBodySystems maps the event's diagnosis entities to body systems
func EventBodySystems(entities []model.Entity) []string {
	seen := make(map[string]bool)
	var systems []string
	for _, e := range entities {
		if e.Kind() != model.KindDiagnosis {
			continue
		}
		sys := bodysystem.Map(e.Core().NormalizedText, e.Core().Codes)
		if sys == bodysystem.Other || seen[sys] {
			continue
		}
		seen[sys] = true
		systems = append(systems, sys)
	}
	return systems
}

// ScoreEvent computes the importance score and the human-readable reasons
// explaining which thresholds were crossed. indexDate is zero when the
// claim's index event is unknown.
func (s *Scorer) ScoreEvent(event model.TemporalEvent, entities []model.Entity,
	claim *model.ClaimSpec, contract *model.ContractInfo, indexDate time.Time) (float64, model.Phase, []string) {

	phase := s.Phase(event.Date, contract)
	pw := s.phaseWeight(phase)
	diag := s.DiagnosisMatch(EventBodySystems(entities), claim)
	sev, markers := s.Severity(event, entities)
	chain := s.ChainPosition(event.Date, indexDate)

	importance := s.cfg.PhaseWeight*pw + s.cfg.DiagnosisWeight*diag +
		s.cfg.SeverityWeight*sev + s.cfg.ChainWeight*chain
	importance = clamp01(importance)

	reasons := []string{fmt.Sprintf("phase %s (weight %.2f)", phase, pw)}
	if diag > 0 {
		reasons = append(reasons, fmt.Sprintf("body-system overlap with claim %.2f", diag))
	}
	if sev > 0 {
		reasons = append(reasons, fmt.Sprintf("severity markers %s (%.2f)", strings.Join(markers, "+"), sev))
	}
	if chain > 0 {
		reasons = append(reasons, fmt.Sprintf("proximity to index event %.2f", chain))
	}
	return importance, phase, reasons
}

// NewTag packages the scored judgment into an immutable dispute tag.
// Disclosure duty attaches only to PRE_CONTRACT events: POTENTIAL at
// importance ≥ 0.5, VIOLATION_CANDIDATE at ≥ 0.8, otherwise NONE.
func (s *Scorer) NewTag(phase model.Phase, importance float64, reasons []string) model.DisputeTag {
	duty := model.DutyNone
	if phase == model.PhasePreContract {
		switch {
		case importance >= s.cfg.ViolationDutyThreshold:
			duty = model.DutyViolationCandidate
		case importance >= s.cfg.PotentialDutyThreshold:
			duty = model.DutyPotential
		}
	}

	var role model.Role
	switch {
	case importance >= s.cfg.ClaimCoreRoleThreshold:
		role = model.RoleClaimCore
	case importance >= s.cfg.EtiologyRoleThreshold:
		role = model.RoleEtiology
	case importance >= s.cfg.RiskFactorRoleThreshold:
		role = model.RoleRiskFactor
	default:
		role = model.RoleBackground
	}

	return model.DisputeTag{
		Phase:      phase,
		Role:       role,
		Duty:       duty,
		Importance: importance,
		Reasons:    append([]string(nil), reasons...),
	}
}

// FindIndexEvent returns the event whose date is nearest to the claim
// date. Nil when the events are empty or the claim date is unknown. An
// exact distance tie goes to the earlier event.
func (s *Scorer) FindIndexEvent(events []model.TemporalEvent, claim *model.ClaimSpec) *model.TemporalEvent {
	if len(events) == 0 || claim == nil || claim.ClaimDate.IsZero() {
		return nil
	}
	best := -1
	var bestDist time.Duration
	for i, ev := range events {
		if ev.Date.IsZero() {
			continue
		}
		dist := ev.Date.Sub(claim.ClaimDate)
		if dist < 0 {
			dist = -dist
		}
		if best == -1 || dist < bestDist ||
			(dist == bestDist && ev.Date.Before(events[best].Date)) {
			best = i
			bestDist = dist
		}
	}
	if best == -1 {
		return nil
	}
	return &events[best]
}

// TagTimeline scores and tags every untagged event, returning a new event
// slice. Already-tagged events keep their tags.
func (s *Scorer) TagTimeline(events []model.TemporalEvent, entitiesByID map[string]model.Entity,
	claim *model.ClaimSpec, contract *model.ContractInfo) ([]model.TemporalEvent, error) {

	if contract == nil {
		return nil, fmt.Errorf("dispute tagging requires contract info")
	}

	var indexDate time.Time
	if idx := s.FindIndexEvent(events, claim); idx != nil {
		indexDate = idx.Date
	}

	out := make([]model.TemporalEvent, len(events))
	for i, ev := range events {
		out[i] = ev
		if ev.Tag != nil {
			continue
		}
		entities := resolveEntities(ev.EntityIDs, entitiesByID)
		importance, phase, reasons := s.ScoreEvent(ev, entities, claim, contract, indexDate)
		tag := s.NewTag(phase, importance, reasons)
		out[i].Tag = &tag
	}
	return out, nil
}

func resolveEntities(ids []string, byID map[string]model.Entity) []model.Entity {
	var out []model.Entity
	for _, id := range ids {
		if e, ok := byID[id]; ok {
			out = append(out, e)
		}
	}
	return out
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
