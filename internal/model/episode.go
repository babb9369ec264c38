package model

import "time"

// Episode is a time-windowed cluster of clinically related events
// summarized as one line. Folding never mutates a shared instance:
// each fold step produces a new Episode value.
type Episode struct {
	StartDate     time.Time   `json:"start_date"`
	EndDate       time.Time   `json:"end_date"`
	DateRange     string      `json:"date_range"`
	MainHospital  string      `json:"main_hospital,omitempty"`
	MainDiagnosis string      `json:"main_diagnosis,omitempty"`
	EventIDs      []string    `json:"event_ids"`
	Tag           *DisputeTag `json:"dispute_tag,omitempty"` // Highest-importance tag among members
}
