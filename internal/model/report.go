package model

import "time"

// Report is the serialized per-document analysis handed to rendering and
// dashboard collaborators. It is plain data assembled from PipelineData.
type Report struct {
	DocumentID  string    `json:"document_id"`
	SourcePath  string    `json:"source_path,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`

	Contract *ContractInfo `json:"contract,omitempty"`
	Claim    *ClaimSpec    `json:"claim,omitempty"`

	Anchors    []Anchor          `json:"anchors"`
	Entities   []map[string]any  `json:"entities"` // Serialized entity variants
	Timeline   map[string]any    `json:"timeline"` // Serialized timeline
	Episodes   []EpisodeSummary  `json:"episodes"`
	Disclosure *DisclosureResult `json:"disclosure,omitempty"`

	Warnings []Issue `json:"warnings,omitempty"`

	// Narrative is the optional LLM-generated reviewer summary. It is
	// produced after analysis completes and never affects any score.
	Narrative *Narrative `json:"narrative,omitempty"`
}

// EpisodeSummary pairs an episode with its one-line rendering
type EpisodeSummary struct {
	Episode Episode `json:"episode"`
	Summary string  `json:"summary"`
}

// Narrative is the optional LLM output, clearly separated from analysis
type Narrative struct {
	Enabled     bool     `json:"enabled"`
	Provider    string   `json:"provider,omitempty"`
	Model       string   `json:"model,omitempty"`
	StrictDates bool     `json:"strict_dates"` // Whether date grounding was enforced
	Text        string   `json:"text,omitempty"`
	Warnings    []string `json:"warnings,omitempty"`
}
