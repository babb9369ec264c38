package dict

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nofnotg/anamnesis/internal/model"
)

// Term is the disclosure metadata attached to one dictionary keyword
type Term struct {
	Category           string `yaml:"category" json:"category"`
	Severity           string `yaml:"severity" json:"severity"` // high | medium | low
	DisclosureRequired bool   `yaml:"disclosure_required" json:"disclosure_required"`
}

// Dictionary maps clinical keywords to disclosure metadata, one section
// per entity kind. The built-in defaults cover common Korean/English
// clinical vocabulary; an external dictionary-management collaborator can
// override or extend them through a YAML file.
type Dictionary struct {
	Diagnoses   map[string]Term `yaml:"diagnoses"`
	Procedures  map[string]Term `yaml:"procedures"`
	Medications map[string]Term `yaml:"medications"`
}

// Match is one successful dictionary lookup
type Match struct {
	Keyword string
	Term    Term
}

// Default returns the embedded clinical defaults
func Default() *Dictionary {
	return &Dictionary{
		Diagnoses: map[string]Term{
			"위암":           {Category: "cancer", Severity: "high", DisclosureRequired: true},
			"폐암":           {Category: "cancer", Severity: "high", DisclosureRequired: true},
			"대장암":          {Category: "cancer", Severity: "high", DisclosureRequired: true},
			"유방암":          {Category: "cancer", Severity: "high", DisclosureRequired: true},
			"간암":           {Category: "cancer", Severity: "high", DisclosureRequired: true},
			"갑상선암":         {Category: "cancer", Severity: "high", DisclosureRequired: true},
			"악성종양":         {Category: "cancer", Severity: "high", DisclosureRequired: true},
			"cancer":       {Category: "cancer", Severity: "high", DisclosureRequired: true},
			"carcinoma":    {Category: "cancer", Severity: "high", DisclosureRequired: true},
			"심근경색":         {Category: "cardiovascular", Severity: "high", DisclosureRequired: true},
			"협심증":          {Category: "cardiovascular", Severity: "high", DisclosureRequired: true},
			"심부전":          {Category: "cardiovascular", Severity: "high", DisclosureRequired: true},
			"부정맥":          {Category: "cardiovascular", Severity: "medium", DisclosureRequired: true},
			"고혈압":          {Category: "chronic", Severity: "medium", DisclosureRequired: true},
			"hypertension": {Category: "chronic", Severity: "medium", DisclosureRequired: true},
			"뇌경색":          {Category: "cerebrovascular", Severity: "high", DisclosureRequired: true},
			"뇌출혈":          {Category: "cerebrovascular", Severity: "high", DisclosureRequired: true},
			"뇌졸중":          {Category: "cerebrovascular", Severity: "high", DisclosureRequired: true},
			"당뇨":           {Category: "chronic", Severity: "medium", DisclosureRequired: true},
			"당뇨병":          {Category: "chronic", Severity: "medium", DisclosureRequired: true},
			"diabetes":     {Category: "chronic", Severity: "medium", DisclosureRequired: true},
			"간염":           {Category: "chronic", Severity: "medium", DisclosureRequired: true},
			"간경화":          {Category: "chronic", Severity: "high", DisclosureRequired: true},
			"결핵":           {Category: "chronic", Severity: "medium", DisclosureRequired: true},
			"천식":           {Category: "chronic", Severity: "medium", DisclosureRequired: true},
			"신부전":          {Category: "chronic", Severity: "high", DisclosureRequired: true},
			"우울증":          {Category: "mental", Severity: "medium", DisclosureRequired: true},
			"고지혈증":         {Category: "chronic", Severity: "low", DisclosureRequired: true},
			"위염":           {Category: "general", Severity: "low", DisclosureRequired: false},
			"감기":           {Category: "general", Severity: "low", DisclosureRequired: false},
		},
		Procedures: map[string]Term{
			"수술":           {Category: "surgical", Severity: "high", DisclosureRequired: true},
			"절제술":          {Category: "surgical", Severity: "high", DisclosureRequired: true},
			"적출술":          {Category: "surgical", Severity: "high", DisclosureRequired: true},
			"스텐트":          {Category: "cardiovascular", Severity: "high", DisclosureRequired: true},
			"관상동맥우회술":      {Category: "cardiovascular", Severity: "high", DisclosureRequired: true},
			"항암치료":         {Category: "cancer", Severity: "high", DisclosureRequired: true},
			"화학요법":         {Category: "cancer", Severity: "high", DisclosureRequired: true},
			"방사선치료":        {Category: "cancer", Severity: "high", DisclosureRequired: true},
			"chemotherapy": {Category: "cancer", Severity: "high", DisclosureRequired: true},
			"투석":           {Category: "chronic", Severity: "high", DisclosureRequired: true},
			"시술":           {Category: "surgical", Severity: "medium", DisclosureRequired: true},
			"내시경":          {Category: "diagnostic", Severity: "low", DisclosureRequired: false},
			"조직검사":         {Category: "diagnostic", Severity: "medium", DisclosureRequired: true},
		},
		Medications: map[string]Term{
			"인슐린":       {Category: "chronic", Severity: "medium", DisclosureRequired: true},
			"insulin":   {Category: "chronic", Severity: "medium", DisclosureRequired: true},
			"메트포르민":     {Category: "chronic", Severity: "medium", DisclosureRequired: true},
			"metformin": {Category: "chronic", Severity: "medium", DisclosureRequired: true},
			"아스피린":      {Category: "cardiovascular", Severity: "low", DisclosureRequired: true},
			"와파린":       {Category: "cardiovascular", Severity: "medium", DisclosureRequired: true},
			"항응고제":      {Category: "cardiovascular", Severity: "medium", DisclosureRequired: true},
			"혈압약":       {Category: "chronic", Severity: "medium", DisclosureRequired: true},
			"항암제":       {Category: "cancer", Severity: "high", DisclosureRequired: true},
			"스타틴":       {Category: "chronic", Severity: "low", DisclosureRequired: true},
		},
	}
}

// LoadFile reads a YAML dictionary file
func LoadFile(path string) (*Dictionary, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}
	var d Dictionary
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("parse dictionary: %w", err)
	}
	return &d, nil
}

// Merge overlays another dictionary onto this one; overlapping keywords
// take the override's metadata.
func (d *Dictionary) Merge(override *Dictionary) {
	if override == nil {
		return
	}
	mergeSection(&d.Diagnoses, override.Diagnoses)
	mergeSection(&d.Procedures, override.Procedures)
	mergeSection(&d.Medications, override.Medications)
}

func mergeSection(dst *map[string]Term, src map[string]Term) {
	if len(src) == 0 {
		return
	}
	if *dst == nil {
		*dst = make(map[string]Term, len(src))
	}
	for k, v := range src {
		(*dst)[k] = v
	}
}

func (d *Dictionary) section(kind model.EntityKind) map[string]Term {
	switch kind {
	case model.KindDiagnosis:
		return d.Diagnoses
	case model.KindProcedure:
		return d.Procedures
	case model.KindMedication:
		return d.Medications
	default:
		return nil
	}
}

// Lookup matches normalized text against the section for the entity kind
// by bidirectional substring containment: the keyword appearing inside
// the text, or the text inside the keyword. The longest keyword wins;
// equal lengths break lexicographically so lookups are deterministic.
// A miss returns ok=false, never an error.
func (d *Dictionary) Lookup(kind model.EntityKind, normalizedText string) (Match, bool) {
	section := d.section(kind)
	if len(section) == 0 || normalizedText == "" {
		return Match{}, false
	}
	text := strings.ToLower(strings.TrimSpace(normalizedText))

	keys := make([]string, 0, len(section))
	for k := range section {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	for _, k := range keys {
		kw := strings.ToLower(k)
		if strings.Contains(text, kw) || strings.Contains(kw, text) {
			return Match{Keyword: k, Term: section[k]}, true
		}
	}
	return Match{}, false
}
