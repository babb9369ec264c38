package timeline

import (
	"regexp"

	"github.com/google/uuid"

	"github.com/nofnotg/anamnesis/internal/model"
)

// hospitalPattern picks hospital/clinic names out of anchor context
var hospitalPattern = regexp.MustCompile(`[가-힣A-Za-z0-9]+(병원|의원|메디컬센터|보건소)`)

// Assembler turns anchors and anchor-linked entities into temporal
// events and a sorted timeline. One event per anchor: anchors without
// entities still yield events, so the visit history stays complete.
type Assembler struct{}

// NewAssembler creates a timeline assembler
func NewAssembler() *Assembler {
	return &Assembler{}
}

// Build groups entities by their strongest anchor link, emits one event
// per anchor, wires concurrent/preceding/following relations and returns
// the sorted timeline.
func (a *Assembler) Build(anchors []model.Anchor, entities []model.Entity) *model.Timeline {
	byAnchor := groupByAnchor(entities)

	timeline := &model.Timeline{}
	for _, anchor := range anchors {
		ev := model.TemporalEvent{
			ID:          uuid.NewString(),
			AnchorID:    anchor.ID,
			AnchorType:  anchor.Type,
			Date:        anchor.Date,
			EntityIDs:   byAnchor[anchor.ID],
			Description: anchor.Context,
			Hospital:    detectHospital(anchor.Context),
		}
		timeline.AddEvent(ev)
	}

	wireRelations(timeline.Events)
	return timeline
}

// groupByAnchor assigns each entity to the anchor of its
// highest-confidence link
func groupByAnchor(entities []model.Entity) map[string][]string {
	byAnchor := make(map[string][]string)
	for _, e := range entities {
		core := e.Core()
		best := -1
		for i, link := range core.AnchorLinks {
			if best == -1 || link.Confidence > core.AnchorLinks[best].Confidence {
				best = i
			}
		}
		if best == -1 {
			continue // Unanchored entities stay out of the timeline
		}
		anchorID := core.AnchorLinks[best].AnchorID
		byAnchor[anchorID] = append(byAnchor[anchorID], core.ID)
	}
	return byAnchor
}

// wireRelations links same-date events as concurrent and chains the rest
// in date order. Events arrive already sorted by the timeline.
func wireRelations(events []model.TemporalEvent) {
	for i := range events {
		for j := range events {
			if i == j {
				continue
			}
			if events[i].Date.Equal(events[j].Date) {
				events[i].ConcurrentIDs = append(events[i].ConcurrentIDs, events[j].ID)
			}
		}
		if i > 0 && !events[i-1].Date.Equal(events[i].Date) {
			events[i].PrecedingIDs = append(events[i].PrecedingIDs, events[i-1].ID)
		}
		if i < len(events)-1 && !events[i+1].Date.Equal(events[i].Date) {
			events[i].FollowingIDs = append(events[i].FollowingIDs, events[i+1].ID)
		}
	}
}

func detectHospital(context string) string {
	return hospitalPattern.FindString(context)
}
