package model

import (
	"fmt"

	"github.com/google/uuid"
)

// EntityKind discriminates the medical entity variants
type EntityKind string

const (
	KindDiagnosis  EntityKind = "diagnosis"
	KindProcedure  EntityKind = "procedure"
	KindMedication EntityKind = "medication"
	KindTest       EntityKind = "test"
	KindFinding    EntityKind = "finding" // Generic fallback
)

// AnchorLink ties an entity to an anchor by id. Relations are id-pairs
// resolved by lookup; entities never hold anchor pointers.
type AnchorLink struct {
	AnchorID   string  `json:"anchor_id"`
	LinkType   string  `json:"link_type"` // e.g. "same_segment"
	Confidence float64 `json:"confidence"`
}

// EntityRelation links two entities by id (e.g. a procedure treating a diagnosis)
type EntityRelation struct {
	TargetID string `json:"target_id"`
	Kind     string `json:"kind"` // e.g. "treats", "follows", "indicates"
}

// Entity is the common contract of all medical entity variants.
type Entity interface {
	Core() *EntityCore
	Kind() EntityKind
	Validate() ValidationReport
	Serialize() map[string]any
}

// EntityCore carries the fields shared by every variant
type EntityCore struct {
	ID             string           `json:"id"`
	OriginalText   string           `json:"original_text"`
	NormalizedText string           `json:"normalized_text"`
	EntityKind     EntityKind       `json:"kind"`
	Confidence     float64          `json:"confidence"`
	Codes          []string         `json:"codes,omitempty"` // KCD/ICD codes (e.g. C16, I20.0)
	Status         string           `json:"status,omitempty"`
	AnchorLinks    []AnchorLink     `json:"anchor_links,omitempty"`
	Relations      []EntityRelation `json:"relations,omitempty"`
}

func (c *EntityCore) Core() *EntityCore { return c }
func (c *EntityCore) Kind() EntityKind  { return c.EntityKind }

// Validate enforces the shared invariants: a non-empty normalized text and
// an in-range confidence. Invalid entities must be rejected before
// downstream use.
func (c *EntityCore) Validate() ValidationReport {
	var errs []string
	if c.NormalizedText == "" {
		errs = append(errs, "normalized text is empty")
	}
	if c.Confidence < 0 || c.Confidence > 1 {
		errs = append(errs, fmt.Sprintf("confidence %.3f out of range [0,1]", c.Confidence))
	}
	if c.EntityKind == "" {
		errs = append(errs, "entity kind is empty")
	}
	return ValidationReport{Valid: len(errs) == 0, Errors: errs}
}

func (c *EntityCore) serializeCore() map[string]any {
	out := map[string]any{
		"id":              c.ID,
		"original_text":   c.OriginalText,
		"normalized_text": c.NormalizedText,
		"kind":            string(c.EntityKind),
		"confidence":      c.Confidence,
		"status":          c.Status,
	}
	if len(c.Codes) > 0 {
		out["codes"] = append([]string(nil), c.Codes...)
	}
	if len(c.AnchorLinks) > 0 {
		links := make([]map[string]any, 0, len(c.AnchorLinks))
		for _, l := range c.AnchorLinks {
			links = append(links, map[string]any{
				"anchor_id":  l.AnchorID,
				"link_type":  l.LinkType,
				"confidence": l.Confidence,
			})
		}
		out["anchor_links"] = links
	}
	if len(c.Relations) > 0 {
		rels := make([]map[string]any, 0, len(c.Relations))
		for _, r := range c.Relations {
			rels = append(rels, map[string]any{"target_id": r.TargetID, "kind": r.Kind})
		}
		out["relations"] = rels
	}
	return out
}

// Diagnosis is a disease or condition mention
type Diagnosis struct {
	EntityCore
	Primary        bool   `json:"primary"` // Principal diagnosis of the document
	AnatomicalSite string `json:"anatomical_site,omitempty"`
}

func (d *Diagnosis) Serialize() map[string]any {
	out := d.serializeCore()
	out["primary"] = d.Primary
	if d.AnatomicalSite != "" {
		out["anatomical_site"] = d.AnatomicalSite
	}
	return out
}

// Procedure is a surgery, intervention or treatment mention
type Procedure struct {
	EntityCore
	Approach string `json:"approach,omitempty"` // e.g. laparoscopic, open
	Outcome  string `json:"outcome,omitempty"`
}

func (p *Procedure) Serialize() map[string]any {
	out := p.serializeCore()
	if p.Approach != "" {
		out["approach"] = p.Approach
	}
	if p.Outcome != "" {
		out["outcome"] = p.Outcome
	}
	return out
}

// Medication is a drug prescription or administration mention
type Medication struct {
	EntityCore
	Dosage string `json:"dosage,omitempty"`
	Route  string `json:"route,omitempty"`
}

func (m *Medication) Serialize() map[string]any {
	out := m.serializeCore()
	if m.Dosage != "" {
		out["dosage"] = m.Dosage
	}
	if m.Route != "" {
		out["route"] = m.Route
	}
	return out
}

// Test is an examination or lab mention
type Test struct {
	EntityCore
	Result     string `json:"result,omitempty"`
	ResultUnit string `json:"result_unit,omitempty"`
}

func (t *Test) Serialize() map[string]any {
	out := t.serializeCore()
	if t.Result != "" {
		out["result"] = t.Result
	}
	if t.ResultUnit != "" {
		out["result_unit"] = t.ResultUnit
	}
	return out
}

// Finding is the generic fallback for mentions that fit no specific variant
type Finding struct {
	EntityCore
}

func (f *Finding) Serialize() map[string]any { return f.serializeCore() }

// coreFromInput builds a defaulted EntityCore from loosely-typed input.
// Missing confidence defaults to 0.5; missing normalized text falls back
// to the original text.
func coreFromInput(kind EntityKind, input map[string]any) EntityCore {
	core := EntityCore{
		ID:         stringField(input, "id"),
		EntityKind: kind,
		Confidence: 0.5,
		Status:     stringField(input, "status"),
	}
	if core.ID == "" {
		core.ID = uuid.NewString()
	}
	core.OriginalText = stringField(input, "original_text")
	core.NormalizedText = stringField(input, "normalized_text")
	if core.NormalizedText == "" {
		core.NormalizedText = core.OriginalText
	}
	if v, ok := floatField(input, "confidence"); ok {
		core.Confidence = v
	}
	if codes, ok := input["codes"].([]string); ok {
		core.Codes = append([]string(nil), codes...)
	} else if raw, ok := input["codes"].([]any); ok {
		for _, c := range raw {
			if s, ok := c.(string); ok {
				core.Codes = append(core.Codes, s)
			}
		}
	}
	return core
}

// NewDiagnosis constructs a defaulted Diagnosis from loosely-typed input
func NewDiagnosis(input map[string]any) *Diagnosis {
	d := &Diagnosis{EntityCore: coreFromInput(KindDiagnosis, input)}
	if v, ok := input["primary"].(bool); ok {
		d.Primary = v
	}
	d.AnatomicalSite = stringField(input, "anatomical_site")
	return d
}

// NewProcedure constructs a defaulted Procedure from loosely-typed input
func NewProcedure(input map[string]any) *Procedure {
	p := &Procedure{EntityCore: coreFromInput(KindProcedure, input)}
	p.Approach = stringField(input, "approach")
	p.Outcome = stringField(input, "outcome")
	return p
}

// NewMedication constructs a defaulted Medication from loosely-typed input
func NewMedication(input map[string]any) *Medication {
	m := &Medication{EntityCore: coreFromInput(KindMedication, input)}
	m.Dosage = stringField(input, "dosage")
	m.Route = stringField(input, "route")
	return m
}

// NewTest constructs a defaulted Test from loosely-typed input
func NewTest(input map[string]any) *Test {
	t := &Test{EntityCore: coreFromInput(KindTest, input)}
	t.Result = stringField(input, "result")
	t.ResultUnit = stringField(input, "result_unit")
	return t
}

// NewFinding constructs the generic fallback entity
func NewFinding(input map[string]any) *Finding {
	return &Finding{EntityCore: coreFromInput(KindFinding, input)}
}

// NewEntity dispatches variant construction on the explicit "kind"
// discriminator in the input. Unknown kinds fall back to Finding.
func NewEntity(input map[string]any) Entity {
	switch EntityKind(stringField(input, "kind")) {
	case KindDiagnosis:
		return NewDiagnosis(input)
	case KindProcedure:
		return NewProcedure(input)
	case KindMedication:
		return NewMedication(input)
	case KindTest:
		return NewTest(input)
	default:
		return NewFinding(input)
	}
}

func stringField(input map[string]any, key string) string {
	if v, ok := input[key].(string); ok {
		return v
	}
	return ""
}

func floatField(input map[string]any, key string) (float64, bool) {
	switch v := input[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}
