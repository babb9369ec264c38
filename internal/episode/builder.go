package episode

import (
	"fmt"
	"sort"
	"time"

	"github.com/nofnotg/anamnesis/internal/model"
)

// Builder clusters timeline events into clinically coherent episodes:
// events join the current episode while the gap to its end date stays
// within the window, otherwise a new episode starts.
type Builder struct {
	windowDays int
}

// NewBuilder creates a builder with the given grouping window in days
func NewBuilder(windowDays int) *Builder {
	if windowDays <= 0 {
		windowDays = 30
	}
	return &Builder{windowDays: windowDays}
}

// Group sorts events by date and greedily folds them into episodes.
// Each fold step produces a new Episode value from the previous one plus
// the next event; episodes are never mutated in place.
func (b *Builder) Group(events []model.TemporalEvent, entitiesByID map[string]model.Entity) []model.Episode {
	if len(events) == 0 {
		return nil
	}

	sorted := append([]model.TemporalEvent(nil), events...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	var episodes []model.Episode
	current := newEpisode(sorted[0], entitiesByID)
	for _, ev := range sorted[1:] {
		if withinWindow(current.EndDate, ev.Date, b.windowDays) {
			current = fold(current, ev, entitiesByID)
			continue
		}
		episodes = append(episodes, finalize(current))
		current = newEpisode(ev, entitiesByID)
	}
	return append(episodes, finalize(current))
}

func newEpisode(ev model.TemporalEvent, entitiesByID map[string]model.Entity) model.Episode {
	ep := model.Episode{
		StartDate: ev.Date,
		EndDate:   ev.Date,
		EventIDs:  []string{ev.ID},
	}
	ep.MainHospital = ev.Hospital
	ep.MainDiagnosis = firstDiagnosis(ev, entitiesByID)
	if ev.Tag != nil {
		tag := *ev.Tag
		ep.Tag = &tag
	}
	return ep
}

// fold returns a new episode extended by one event. MainHospital and
// MainDiagnosis stick with the first member that supplied them; the tag
// is replaced only by a strictly higher-importance tag.
func fold(ep model.Episode, ev model.TemporalEvent, entitiesByID map[string]model.Entity) model.Episode {
	next := ep
	next.EventIDs = append(append([]string(nil), ep.EventIDs...), ev.ID)
	if ev.Date.After(next.EndDate) {
		next.EndDate = ev.Date
	}
	if next.MainHospital == "" {
		next.MainHospital = ev.Hospital
	}
	if next.MainDiagnosis == "" {
		next.MainDiagnosis = firstDiagnosis(ev, entitiesByID)
	}
	if ev.Tag != nil && (next.Tag == nil || ev.Tag.Importance > next.Tag.Importance) {
		tag := *ev.Tag
		next.Tag = &tag
	}
	return next
}

func finalize(ep model.Episode) model.Episode {
	ep.DateRange = formatRange(ep.StartDate, ep.EndDate)
	return ep
}

func withinWindow(end, next time.Time, windowDays int) bool {
	return !next.After(end.AddDate(0, 0, windowDays))
}

func firstDiagnosis(ev model.TemporalEvent, entitiesByID map[string]model.Entity) string {
	for _, id := range ev.EntityIDs {
		if e, ok := entitiesByID[id]; ok && e.Kind() == model.KindDiagnosis {
			return e.Core().NormalizedText
		}
	}
	return ""
}

func formatRange(start, end time.Time) string {
	if start.Equal(end) {
		return start.Format("2006-01-02")
	}
	return start.Format("2006-01-02") + "~" + end.Format("2006-01-02")
}

// SummaryText renders the one-line episode summary:
// "[dateRange] mainDiagnosis (phase, duty)" when a tag exists.
func SummaryText(ep model.Episode) string {
	diagnosis := ep.MainDiagnosis
	if diagnosis == "" {
		diagnosis = "진단명 미상"
	}
	if ep.Tag != nil {
		return fmt.Sprintf("[%s] %s (%s, %s)", ep.DateRange, diagnosis, ep.Tag.Phase, ep.Tag.Duty)
	}
	return fmt.Sprintf("[%s] %s", ep.DateRange, diagnosis)
}
