package analyzers

import (
	"sort"

	"github.com/SAP-F-2025/learning-analytics-service/internal/models"
)

const (
	maxTopDistractors = 5
	// minCurveEvents is the minimum number of answers on a material before
	// a learning-curve fit is attempted.
	minCurveEvents = 3
	// curveSlopeGain maps a per-exposure OLS slope into the [-1,1] trend
	// range before clipping.
	curveSlopeGain = 10
)

// AnalyzeMaterials computes per-material effectiveness statistics from a set
// of normalized events. Only test_question events with a material id qualify.
// Never fails: sparse materials simply get neutral values.
func AnalyzeMaterials(events []*models.InteractionEvent) map[string]*models.MaterialStats {
	byMaterial := make(map[string][]*models.InteractionEvent)
	for _, ev := range events {
		if !ev.IsTestQuestion() || ev.MaterialID == nil || *ev.MaterialID == "" {
			continue
		}
		byMaterial[*ev.MaterialID] = append(byMaterial[*ev.MaterialID], ev)
	}

	stats := make(map[string]*models.MaterialStats, len(byMaterial))
	for id, evs := range byMaterial {
		stats[id] = analyzeMaterial(id, evs)
	}
	return stats
}

// CourseSuccessRate is the course-wide baseline: mean correctness over every
// qualifying test_question event, 0.0 when there are none.
func CourseSuccessRate(events []*models.InteractionEvent) float64 {
	var vals []float64
	for _, ev := range events {
		if ev.IsTestQuestion() {
			vals = append(vals, ev.Correctness)
		}
	}
	return mean(vals)
}

func analyzeMaterial(materialID string, evs []*models.InteractionEvent) *models.MaterialStats {
	st := &models.MaterialStats{MaterialID: materialID}

	correctness := make([]float64, len(evs))
	students := make(map[int64]struct{})
	for i, ev := range evs {
		correctness[i] = ev.Correctness
		students[ev.StudentID] = struct{}{}
	}
	st.SuccessRate = mean(correctness)
	st.DifficultyIndex = 1 - st.SuccessRate
	st.UniqueStudents = len(students)
	st.TopDistractors = topDistractors(evs)

	if len(evs) >= minCurveEvents {
		ordered := append([]*models.InteractionEvent(nil), evs...)
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].Timestamp.Before(ordered[j].Timestamp)
		})
		ys := make([]float64, len(ordered))
		for i, ev := range ordered {
			ys[i] = ev.Correctness
		}
		st.LearningCurve = clip(olsSlope(ys)*curveSlopeGain, -1, 1)
	}
	return st
}

// topDistractors ranks the distractors selected on incorrect answers by
// descending frequency, ties broken by first-seen order. The normalizer
// default "none" marks an absent field and is not a distractor.
func topDistractors(evs []*models.InteractionEvent) []string {
	counts := make(map[string]int)
	var firstSeen []string
	for _, ev := range evs {
		if ev.Correctness >= 1.0 {
			continue
		}
		d := ev.SelectedDistractor
		if d == "" || d == models.DistractorNone {
			continue
		}
		if _, ok := counts[d]; !ok {
			firstSeen = append(firstSeen, d)
		}
		counts[d]++
	}
	if len(firstSeen) == 0 {
		return nil
	}

	sort.SliceStable(firstSeen, func(i, j int) bool {
		return counts[firstSeen[i]] > counts[firstSeen[j]]
	})
	if len(firstSeen) > maxTopDistractors {
		firstSeen = firstSeen[:maxTopDistractors]
	}
	return firstSeen
}
