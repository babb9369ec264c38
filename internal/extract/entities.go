package extract

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/nofnotg/anamnesis/internal/model"
)

// kcdCodePattern matches KCD (Korean ICD variant) diagnostic codes,
// e.g. C16, I20.0, E11.9
var kcdCodePattern = regexp.MustCompile(`[A-Z]\d{2}(\.\d{1,2})?`)

const (
	baseConfidence  = 0.7
	codedBoost      = 0.1 // Keyword accompanied by a KCD code nearby
	codeWindow      = 20  // Runes after a keyword to look for a code
	maxLinkDistance = 300.0
)

// catalogue is the keyword vocabulary for one entity kind
type catalogue struct {
	kind     model.EntityKind
	keywords []string
}

// Catalogue order matters only across overlapping keywords within a
// segment; longer keywords are tried first inside each catalogue.
var catalogues = []catalogue{
	{model.KindDiagnosis, []string{
		"위암", "폐암", "대장암", "유방암", "간암", "갑상선암", "악성종양", "양성종양",
		"심근경색", "협심증", "심부전", "부정맥", "고혈압",
		"뇌경색", "뇌출혈", "뇌졸중",
		"당뇨병", "당뇨", "갑상선기능저하증", "고지혈증", "이상지질혈증",
		"간경화", "간염", "위궤양", "위염", "역류성식도염",
		"폐렴", "천식", "결핵", "신부전", "요로결석",
		"추간판탈출증", "디스크", "골절", "관절염", "골다공증",
		"우울증", "불안장애", "불면증", "치매", "뇌전증",
		"백내장", "녹내장",
		"gastric cancer", "lung cancer", "angina", "myocardial infarction",
		"diabetes", "hypertension", "hepatitis", "pneumonia",
	}},
	{model.KindProcedure, []string{
		"위절제술", "폐엽절제술", "담낭절제술", "충수절제술", "갑상선절제술",
		"관상동맥우회술", "스텐트삽입술", "인공관절치환술",
		"항암치료", "화학요법", "방사선치료", "투석",
		"수술", "시술", "수혈",
		"chemotherapy", "radiotherapy", "stent", "resection",
	}},
	{model.KindMedication, []string{
		"메트포르민", "인슐린", "아스피린", "와파린", "스타틴", "항응고제",
		"혈압약", "당뇨약", "항암제", "진통제", "항생제",
		"metformin", "insulin", "aspirin", "warfarin", "statin",
	}},
	{model.KindTest, []string{
		"위내시경", "대장내시경", "조직검사", "초음파", "심전도", "심초음파",
		"혈액검사", "소변검사", "내시경",
		"mri", "ct", "x-ray", "pet-ct",
	}},
}

// Extractor finds typed medical entities in text segments by keyword
// catalogue matching and KCD code capture, and links each entity to the
// nearest anchor in its segment.
type Extractor struct{}

// NewExtractor creates an entity extractor
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract scans every segment against each catalogue. Matched entities
// are built through the variant factory, so they come out fully
// defaulted; callers still validate before downstream use.
func (x *Extractor) Extract(segments []model.TextSegment, anchors []model.Anchor) []model.Entity {
	var entities []model.Entity
	for _, seg := range segments {
		entities = append(entities, x.extractFromSegment(seg, anchors)...)
	}
	return entities
}

func (x *Extractor) extractFromSegment(seg model.TextSegment, anchors []model.Anchor) []model.Entity {
	lower := strings.ToLower(seg.Text)
	lowerRunes := []rune(lower)
	segAnchors := anchorsForSegment(anchors, seg.ID)

	seen := make(map[string]bool)
	var entities []model.Entity
	for _, cat := range catalogues {
		keywords := append([]string(nil), cat.keywords...)
		sortByLengthDesc(keywords)
		for _, kw := range keywords {
			byteIdx := strings.Index(lower, strings.ToLower(kw))
			if byteIdx < 0 {
				continue
			}
			normalized := strings.ToLower(kw)
			key := string(cat.kind) + "|" + normalized
			if seen[key] {
				continue
			}
			seen[key] = true

			offset := utf8.RuneCountInString(lower[:byteIdx])
			confidence := baseConfidence
			var codes []string
			if cat.kind == model.KindDiagnosis {
				codes = codesNear(lowerRunes, offset+utf8.RuneCountInString(kw))
				if len(codes) > 0 {
					confidence += codedBoost
				}
			}

			input := map[string]any{
				"kind":            string(cat.kind),
				"original_text":   kw,
				"normalized_text": normalized,
				"confidence":      confidence,
				"status":          "recorded",
			}
			if len(codes) > 0 {
				input["codes"] = codes
			}
			entity := model.NewEntity(input)
			linkNearestAnchor(entity, segAnchors, offset)
			entities = append(entities, entity)
		}
	}
	return entities
}

// codesNear captures KCD codes within the window after a keyword match
func codesNear(runes []rune, from int) []string {
	to := from + codeWindow
	if from > len(runes) {
		return nil
	}
	if to > len(runes) {
		to = len(runes)
	}
	window := strings.ToUpper(string(runes[from:to]))
	return kcdCodePattern.FindAllString(window, -1)
}

// linkNearestAnchor attaches a same-segment link to the closest anchor,
// with confidence falling off linearly with rune distance.
func linkNearestAnchor(entity model.Entity, segAnchors []model.Anchor, offset int) {
	best := -1
	bestDist := 0
	for i, a := range segAnchors {
		dist := offset - a.Offset
		if dist < 0 {
			dist = -dist
		}
		if best == -1 || dist < bestDist {
			best = i
			bestDist = dist
		}
	}
	if best == -1 {
		return
	}
	confidence := 1.0 - float64(bestDist)/maxLinkDistance
	if confidence < 0.3 {
		confidence = 0.3
	}
	entity.Core().AnchorLinks = append(entity.Core().AnchorLinks, model.AnchorLink{
		AnchorID:   segAnchors[best].ID,
		LinkType:   "same_segment",
		Confidence: confidence,
	})
}

func anchorsForSegment(anchors []model.Anchor, segmentID string) []model.Anchor {
	var out []model.Anchor
	for _, a := range anchors {
		if a.SourceSegmentID == segmentID {
			out = append(out, a)
		}
	}
	return out
}

func sortByLengthDesc(keywords []string) {
	sort.SliceStable(keywords, func(i, j int) bool {
		return len(keywords[i]) > len(keywords[j])
	})
}
