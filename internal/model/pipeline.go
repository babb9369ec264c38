package model

import "time"

// Stage marks how far a document has progressed through the pipeline
type Stage string

const (
	StageIngest     Stage = "ingest"
	StageAnchors    Stage = "anchors"
	StageEntities   Stage = "entities"
	StageTimeline   Stage = "timeline"
	StageDispute    Stage = "dispute"
	StageEpisodes   Stage = "episodes"
	StageDisclosure Stage = "disclosure"
	StageComplete   Stage = "complete"
)

// Issue is a structured warning or error attached to a document run
type Issue struct {
	Stage   Stage  `json:"stage"`
	Message string `json:"message"`
}

// PipelineData is the transient per-document container. It is created at
// pipeline start, mutated by each stage in turn, marked complete at the
// end, and never shared across documents.
type PipelineData struct {
	DocumentID string        `json:"document_id"`
	SourcePath string        `json:"source_path,omitempty"`
	Text       string        `json:"-"`
	Segments   []TextSegment `json:"segments,omitempty"`

	// Flat indexed stores; events and entities cross-reference by id
	Anchors  []Anchor `json:"anchors,omitempty"`
	Entities []Entity `json:"-"`

	Timeline   *Timeline         `json:"timeline,omitempty"`
	Episodes   []Episode         `json:"episodes,omitempty"`
	Disclosure *DisclosureResult `json:"disclosure,omitempty"`

	Confidence map[string]float64 `json:"confidence,omitempty"` // Per-stage confidence scores

	Stage     Stage     `json:"stage"`
	Errors    []Issue   `json:"errors,omitempty"`
	Warnings  []Issue   `json:"warnings,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	DoneAt    time.Time `json:"done_at,omitempty"`
}

// NewPipelineData creates the container for one document run
func NewPipelineData(documentID, sourcePath string) *PipelineData {
	return &PipelineData{
		DocumentID: documentID,
		SourcePath: sourcePath,
		Confidence: make(map[string]float64),
		Stage:      StageIngest,
		CreatedAt:  time.Now().UTC(),
	}
}

// AddWarning records a non-fatal problem found by a stage
func (p *PipelineData) AddWarning(stage Stage, message string) {
	p.Warnings = append(p.Warnings, Issue{Stage: stage, Message: message})
}

// AddError records a fatal problem found by a stage
func (p *PipelineData) AddError(stage Stage, message string) {
	p.Errors = append(p.Errors, Issue{Stage: stage, Message: message})
}

// MarkStage advances the processing stage marker
func (p *PipelineData) MarkStage(stage Stage) {
	p.Stage = stage
	if stage == StageComplete {
		p.DoneAt = time.Now().UTC()
	}
}

// AnchorByID resolves an anchor from the flat store
func (p *PipelineData) AnchorByID(id string) (Anchor, bool) {
	for _, a := range p.Anchors {
		if a.ID == id {
			return a, true
		}
	}
	return Anchor{}, false
}

// EntityByID resolves an entity from the flat store
func (p *PipelineData) EntityByID(id string) (Entity, bool) {
	for _, e := range p.Entities {
		if e.Core().ID == id {
			return e, true
		}
	}
	return nil, false
}

// EntityIndex builds an id → entity lookup map
func (p *PipelineData) EntityIndex() map[string]Entity {
	idx := make(map[string]Entity, len(p.Entities))
	for _, e := range p.Entities {
		idx[e.Core().ID] = e
	}
	return idx
}
