package disclosure

import (
	"strings"
	"time"

	"github.com/nofnotg/anamnesis/internal/model"
)

// identifyItems collects disclosure-relevant facts from two sources:
// dictionary matches over diagnosis/procedure/medication entities, and
// hospitalization/emergency items synthesized from timeline events.
// Deduplicated by (type, normalized text), sorted by severity then
// confidence descending.
func (a *Analyzer) identifyItems(entities []model.Entity, timeline *model.Timeline) []model.DisclosureItem {
	var items []model.DisclosureItem

	dates := entityDates(timeline)
	for _, e := range entities {
		core := e.Core()
		var itemType model.DisclosureItemType
		switch e.Kind() {
		case model.KindDiagnosis:
			itemType = model.ItemDiagnosis
		case model.KindProcedure:
			itemType = model.ItemProcedure
		case model.KindMedication:
			itemType = model.ItemMedication
		default:
			continue
		}

		match, ok := a.dict.Lookup(e.Kind(), core.NormalizedText)
		if !ok {
			continue // Lookup miss is an empty result, not an error
		}
		item := model.DisclosureItem{
			Type:               itemType,
			Text:               core.OriginalText,
			NormalizedText:     core.NormalizedText,
			Category:           match.Term.Category,
			Severity:           match.Term.Severity,
			DisclosureRequired: match.Term.DisclosureRequired,
			Confidence:         core.Confidence,
			SourceEntityID:     core.ID,
		}
		if d, ok := dates[core.ID]; ok {
			item.Date = &d
		}
		items = append(items, item)
	}

	if timeline != nil {
		items = append(items, a.synthesizeEventItems(timeline.Events)...)
	}

	items = dedupeItems(items)
	sortItems(items)
	return items
}

// synthesizeEventItems derives hospitalization and emergency items from
// event descriptions and anchor types; these have no backing entity.
func (a *Analyzer) synthesizeEventItems(events []model.TemporalEvent) []model.DisclosureItem {
	var items []model.DisclosureItem
	for _, ev := range events {
		desc := strings.ToLower(ev.Description)
		date := ev.Date

		if ev.AnchorType == model.AnchorAdmission || strings.Contains(desc, "입원") {
			items = append(items, model.DisclosureItem{
				Type:               model.ItemHospitalization,
				Text:               ev.Description,
				NormalizedText:     "입원 " + date.Format("2006-01-02"),
				Category:           "hospitalization",
				Severity:           model.SeverityHigh,
				DisclosureRequired: true,
				Confidence:         0.8,
				Date:               &date,
				SourceEventID:      ev.ID,
			})
		}
		if strings.Contains(desc, "응급") || strings.Contains(desc, "emergency") {
			items = append(items, model.DisclosureItem{
				Type:               model.ItemEmergency,
				Text:               ev.Description,
				NormalizedText:     "응급 " + date.Format("2006-01-02"),
				Category:           "emergency",
				Severity:           model.SeverityMedium,
				DisclosureRequired: true,
				Confidence:         0.8,
				Date:               &date,
				SourceEventID:      ev.ID,
			})
		}
	}
	return items
}

// entityDates maps entity ids to the date of the event that owns them
func entityDates(timeline *model.Timeline) map[string]time.Time {
	dates := make(map[string]time.Time)
	if timeline == nil {
		return dates
	}
	for _, ev := range timeline.Events {
		for _, id := range ev.EntityIDs {
			if _, exists := dates[id]; !exists {
				dates[id] = ev.Date
			}
		}
	}
	return dates
}

func dedupeItems(items []model.DisclosureItem) []model.DisclosureItem {
	seen := make(map[string]bool, len(items))
	out := items[:0]
	for _, item := range items {
		key := string(item.Type) + "|" + strings.ToLower(item.NormalizedText)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}
