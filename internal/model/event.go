package model

import "time"

// TemporalEvent is one clinical occurrence: the entities that happened at
// one anchor. Anchor and entities are referenced by id (arena-style flat
// stores on PipelineData), never embedded, so the event graph has no
// ownership cycles.
type TemporalEvent struct {
	ID            string      `json:"id"`
	AnchorID      string      `json:"anchor_id"`
	AnchorType    AnchorType  `json:"anchor_type"`
	Date          time.Time   `json:"date"` // Denormalized from the anchor
	EntityIDs     []string    `json:"entity_ids,omitempty"`
	Hospital      string      `json:"hospital,omitempty"`
	Description   string      `json:"description,omitempty"`
	PrecedingIDs  []string    `json:"preceding_ids,omitempty"`
	FollowingIDs  []string    `json:"following_ids,omitempty"`
	ConcurrentIDs []string    `json:"concurrent_ids,omitempty"`
	Tag           *DisputeTag `json:"dispute_tag,omitempty"` // At most one, set once scored
}

// Serialize produces a plain nested structure with no behavior
func (e TemporalEvent) Serialize() map[string]any {
	out := map[string]any{
		"id":          e.ID,
		"anchor_id":   e.AnchorID,
		"anchor_type": string(e.AnchorType),
		"date":        e.Date.Format("2006-01-02"),
	}
	if len(e.EntityIDs) > 0 {
		out["entity_ids"] = append([]string(nil), e.EntityIDs...)
	}
	if e.Hospital != "" {
		out["hospital"] = e.Hospital
	}
	if e.Description != "" {
		out["description"] = e.Description
	}
	if len(e.PrecedingIDs) > 0 {
		out["preceding_ids"] = append([]string(nil), e.PrecedingIDs...)
	}
	if len(e.FollowingIDs) > 0 {
		out["following_ids"] = append([]string(nil), e.FollowingIDs...)
	}
	if len(e.ConcurrentIDs) > 0 {
		out["concurrent_ids"] = append([]string(nil), e.ConcurrentIDs...)
	}
	if e.Tag != nil {
		out["dispute_tag"] = map[string]any{
			"phase":            string(e.Tag.Phase),
			"role":             string(e.Tag.Role),
			"duty_to_disclose": string(e.Tag.Duty),
			"importance_score": e.Tag.Importance,
			"reasons":          append([]string(nil), e.Tag.Reasons...),
		}
	}
	return out
}
