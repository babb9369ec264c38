package anchor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/nofnotg/anamnesis/internal/model"
)

const (
	baseConfidence   = 0.7
	strongBoost      = 0.2
	baseProximity    = 0.5
	keywordProximity = 0.2
	clinicianBoost   = 0.1

	contextWindow = 30 // Runes on each side of the date token
	tightWindow   = 10 // Strong co-occurrence window
)

// typeRule maps anchor types to their context vocabulary. Catalogue order
// matters: the first rule with a keyword in the window wins.
type typeRule struct {
	anchorType model.AnchorType
	keywords   []string
}

var typeRules = []typeRule{
	{model.AnchorSurgery, []string{"수술", "시술", "절제술", "적출술", "문합술", "성형술", "operation", "surgery", "resection"}},
	{model.AnchorAdmission, []string{"입원", "재원", "admission", "admitted", "hospitalized"}},
	{model.AnchorDischarge, []string{"퇴원", "discharge", "discharged"}},
	{model.AnchorExamReported, []string{"판독", "소견", "보고", "결과보고", "reported", "impression", "finding"}},
	{model.AnchorExamPerformed, []string{"검사", "시행", "촬영", "채취", "mri", "ct", "x-ray", "초음파", "내시경", "performed", "scan"}},
	{model.AnchorVisit, []string{"내원", "외래", "진료", "방문", "초진", "재진", "visit", "clinic", "outpatient"}},
}

var clinicianVocabulary = []string{
	"병원", "의원", "내과", "외과", "산부인과", "정형외과", "신경과", "교수", "주치의", "전문의",
	"dr.", "md", "department", "hospital",
}

// Detector extracts dated temporal reference points from text segments
type Detector struct{}

// NewDetector creates an anchor detector
func NewDetector() *Detector {
	return &Detector{}
}

// Detect applies the date-context rule catalogue to every segment and
// returns candidate anchors. A segment with no date pattern contributes
// zero anchors; that is not an error.
func (d *Detector) Detect(segments []model.TextSegment) []model.Anchor {
	var anchors []model.Anchor
	for _, seg := range segments {
		anchors = append(anchors, d.detectInSegment(seg)...)
	}
	return anchors
}

func (d *Detector) detectInSegment(seg model.TextSegment) []model.Anchor {
	tokens := FindDateTokens(seg.Text)
	if len(tokens) == 0 {
		return nil
	}

	runes := []rune(strings.ToLower(seg.Text))
	var anchors []model.Anchor
	for _, tok := range tokens {
		window := runeSlice(runes, tok.Start-contextWindow, tok.End+contextWindow)
		tight := runeSlice(runes, tok.Start-tightWindow, tok.End+tightWindow)

		anchorType := model.AnchorGeneral
		confidence := baseConfidence
		proximity := baseProximity

		for _, rule := range typeRules {
			hits := countKeywords(window, rule.keywords)
			if hits == 0 {
				continue
			}
			anchorType = rule.anchorType
			proximity += keywordProximity * float64(hits)
			if countKeywords(tight, rule.keywords) > 0 {
				confidence += strongBoost
			}
			break
		}

		if countKeywords(window, clinicianVocabulary) > 0 {
			proximity += clinicianBoost
		}
		if proximity > 1.0 {
			proximity = 1.0
		}
		if confidence > 1.0 {
			confidence = 1.0
		}

		anchors = append(anchors, model.Anchor{
			ID:               uuid.NewString(),
			Date:             tok.Date,
			OriginalDateText: tok.Raw,
			Type:             anchorType,
			ProximityScore:   proximity,
			Confidence:       confidence,
			SourceSegmentID:  seg.ID,
			Offset:           tok.Start,
			Context:          runeSlice([]rune(seg.Text), tok.Start-contextWindow, tok.End+contextWindow),
		})
	}
	return anchors
}

// SortAndDeduplicate sorts anchors by date ascending and drops
// (date, type) duplicates, keeping the higher-confidence instance.
// Tie-break beyond the dedup key is type name then confidence descending,
// so the result is a pure function of the input multiset and the pass is
// idempotent.
func SortAndDeduplicate(anchors []model.Anchor) []model.Anchor {
	sorted := append([]model.Anchor(nil), anchors...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}
		if sorted[i].Type != sorted[j].Type {
			return sorted[i].Type < sorted[j].Type
		}
		return sorted[i].Confidence > sorted[j].Confidence
	})

	seen := make(map[string]bool, len(sorted))
	out := sorted[:0]
	for _, a := range sorted {
		key := a.DedupKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, a)
	}
	return out
}

// ValidateChronology flags date-order reversals between consecutive
// anchors in document order. Free text is not guaranteed chronological,
// so reversals are warnings, never rejections.
func ValidateChronology(anchors []model.Anchor) []model.Issue {
	var issues []model.Issue
	for i := 1; i < len(anchors); i++ {
		if anchors[i].Date.Before(anchors[i-1].Date) {
			issues = append(issues, model.Issue{
				Stage: model.StageAnchors,
				Message: fmt.Sprintf("date order reversal: %s (%s) appears after %s (%s)",
					anchors[i].Date.Format("2006-01-02"), anchors[i].Type,
					anchors[i-1].Date.Format("2006-01-02"), anchors[i-1].Type),
			})
		}
	}
	return issues
}

func runeSlice(runes []rune, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(runes) {
		end = len(runes)
	}
	if start >= end {
		return ""
	}
	return string(runes[start:end])
}

func countKeywords(window string, keywords []string) int {
	count := 0
	for _, kw := range keywords {
		if strings.Contains(window, kw) {
			count++
		}
	}
	return count
}
