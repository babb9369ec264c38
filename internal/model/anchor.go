package model

import (
	"fmt"
	"time"
)

// AnchorType classifies the clinical context of a dated reference point
type AnchorType string

const (
	AnchorVisit         AnchorType = "visit"          // Outpatient visit (내원, 외래)
	AnchorAdmission     AnchorType = "admission"      // Hospital admission (입원)
	AnchorDischarge     AnchorType = "discharge"      // Hospital discharge (퇴원)
	AnchorExamPerformed AnchorType = "exam_performed" // Examination performed (검사 시행)
	AnchorExamReported  AnchorType = "exam_reported"  // Examination read/reported (판독, 소견)
	AnchorSurgery       AnchorType = "surgery"        // Surgery or intervention (수술, 시술)
	AnchorGeneral       AnchorType = "general"        // Bare date with no typed context
)

// Anchor is a normalized calendar date extracted from text together with
// its clinical-event type and detection confidence.
type Anchor struct {
	ID               string     `json:"id"`
	Date             time.Time  `json:"date"`               // Normalized to UTC midnight
	OriginalDateText string     `json:"original_date_text"` // Date token as it appeared in text
	Type             AnchorType `json:"type"`
	ProximityScore   float64    `json:"proximity_score"` // Keyword proximity signal [0,1]
	Confidence       float64    `json:"confidence"`      // Detection confidence [0,1]
	SourceSegmentID  string     `json:"source_segment_id"`
	Offset           int        `json:"offset"`            // Rune offset of the date token in the segment
	Context          string     `json:"context,omitempty"` // Surrounding text window
}

// DedupKey identifies duplicate anchors: same normalized date, same type.
func (a Anchor) DedupKey() string {
	return a.Date.Format("2006-01-02") + "|" + string(a.Type)
}

// Validate checks anchor invariants. It never panics; problems come back
// as an error list on the report.
func (a Anchor) Validate() ValidationReport {
	var errs []string
	if a.Date.IsZero() {
		errs = append(errs, "anchor has no normalized date")
	}
	if a.Confidence < 0 || a.Confidence > 1 {
		errs = append(errs, fmt.Sprintf("confidence %.3f out of range [0,1]", a.Confidence))
	}
	if a.ProximityScore < 0 || a.ProximityScore > 1 {
		errs = append(errs, fmt.Sprintf("proximity score %.3f out of range [0,1]", a.ProximityScore))
	}
	if a.Type == "" {
		errs = append(errs, "anchor type is empty")
	}
	return ValidationReport{Valid: len(errs) == 0, Errors: errs}
}

// Serialize produces a plain nested structure with no behavior.
func (a Anchor) Serialize() map[string]any {
	return map[string]any{
		"id":                 a.ID,
		"date":               a.Date.Format("2006-01-02"),
		"original_date_text": a.OriginalDateText,
		"type":               string(a.Type),
		"proximity_score":    a.ProximityScore,
		"confidence":         a.Confidence,
		"source_segment_id":  a.SourceSegmentID,
		"offset":             a.Offset,
		"context":            a.Context,
	}
}

// ValidationReport is the pass/fail result of a structural validation.
// Validation collects problems instead of throwing; the caller decides
// whether to reject.
type ValidationReport struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}
