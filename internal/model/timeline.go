package model

import (
	"fmt"
	"sort"
	"time"
)

// Timeline is an ordered sequence of temporal events, kept sorted by
// anchor date ascending. Derived fields are recomputed on every add:
// per-document volumes are tens to low hundreds of events, so an
// O(n log n) resort per add is a correctness choice, not a cost.
type Timeline struct {
	Events     []TemporalEvent `json:"events"`
	StartDate  time.Time       `json:"start_date"`
	EndDate    time.Time       `json:"end_date"`
	EventCount int             `json:"event_count"`
}

// AddEvent inserts an event, re-sorts and recomputes derived fields
func (t *Timeline) AddEvent(ev TemporalEvent) {
	t.Events = append(t.Events, ev)
	sort.SliceStable(t.Events, func(i, j int) bool {
		return t.Events[i].Date.Before(t.Events[j].Date)
	})
	t.recompute()
}

func (t *Timeline) recompute() {
	t.EventCount = len(t.Events)
	if t.EventCount == 0 {
		t.StartDate, t.EndDate = time.Time{}, time.Time{}
		return
	}
	t.StartDate = t.Events[0].Date
	t.EndDate = t.Events[t.EventCount-1].Date
}

// Validate rejects out-of-order sequences and duplicate event ids
func (t *Timeline) Validate() ValidationReport {
	var errs []string
	seen := make(map[string]bool, len(t.Events))
	for i, ev := range t.Events {
		if ev.ID == "" {
			errs = append(errs, fmt.Sprintf("event %d has empty id", i))
			continue
		}
		if seen[ev.ID] {
			errs = append(errs, fmt.Sprintf("duplicate event id %s", ev.ID))
		}
		seen[ev.ID] = true
		if i > 0 && ev.Date.Before(t.Events[i-1].Date) {
			errs = append(errs, fmt.Sprintf("event %s dated %s precedes event %s dated %s",
				ev.ID, ev.Date.Format("2006-01-02"), t.Events[i-1].ID, t.Events[i-1].Date.Format("2006-01-02")))
		}
	}
	return ValidationReport{Valid: len(errs) == 0, Errors: errs}
}

// Serialize produces a plain nested structure with no behavior
func (t *Timeline) Serialize() map[string]any {
	events := make([]map[string]any, 0, len(t.Events))
	for _, ev := range t.Events {
		events = append(events, ev.Serialize())
	}
	out := map[string]any{
		"events":      events,
		"event_count": t.EventCount,
	}
	if !t.StartDate.IsZero() {
		out["start_date"] = t.StartDate.Format("2006-01-02")
		out["end_date"] = t.EndDate.Format("2006-01-02")
	}
	return out
}
