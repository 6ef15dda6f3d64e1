package analyzers

import (
	"sort"
	"time"

	"github.com/SAP-F-2025/learning-analytics-service/internal/models"
)

// Passive-score tiers: long material time with low accuracy reads as passive
// consumption rather than active practice.
const (
	passiveHighTimeSec = 600
	passiveMidTimeSec  = 300
	passiveHighCutoff  = 0.5
	passiveMidCutoff   = 0.7
)

// BuildProfiles computes an engagement profile per student from a set of
// normalized events. Grouping happens here, so callers can pass a single
// student's events or a whole cohort's. Students present in the input always
// get a profile; data-insufficiency resolves to the documented defaults and
// never to an error.
func BuildProfiles(events []*models.InteractionEvent) map[int64]*models.EngagementProfile {
	byStudent := make(map[int64][]*models.InteractionEvent)
	for _, ev := range events {
		byStudent[ev.StudentID] = append(byStudent[ev.StudentID], ev)
	}

	profiles := make(map[int64]*models.EngagementProfile, len(byStudent))
	for id, evs := range byStudent {
		sort.SliceStable(evs, func(i, j int) bool { return evs[i].Timestamp.Before(evs[j].Timestamp) })
		profiles[id] = buildProfile(id, evs)
	}
	return profiles
}

// BuildProfile computes the profile for a single student. A student with no
// events gets the all-default profile: zeroed learning metrics, passive score
// 1.0 and the neutral temporal defaults.
func BuildProfile(studentID int64, events []*models.InteractionEvent) *models.EngagementProfile {
	evs := append([]*models.InteractionEvent(nil), events...)
	sort.SliceStable(evs, func(i, j int) bool { return evs[i].Timestamp.Before(evs[j].Timestamp) })
	return buildProfile(studentID, evs)
}

func buildProfile(studentID int64, evs []*models.InteractionEvent) *models.EngagementProfile {
	p := &models.EngagementProfile{StudentID: studentID}
	p.Activity = activityMetrics(evs)
	p.Learning = learningPattern(evs)
	p.Temporal = temporalPattern(evs)
	return p
}

func activityMetrics(evs []*models.InteractionEvent) models.ActivityMetrics {
	var m models.ActivityMetrics
	if len(evs) == 0 {
		return m
	}
	m.FirstActivity = evs[0].Timestamp
	m.LastActivity = evs[len(evs)-1].Timestamp
	m.TotalEvents = len(evs)
	for _, ev := range evs {
		m.TotalTimeSec += ev.TimeSpentSec
	}
	// Day span + 1: same-day activity still counts as one full day.
	m.ActivityDurationDays = int(m.LastActivity.Sub(m.FirstActivity).Hours()/24) + 1
	if m.ActivityDurationDays < 1 {
		m.ActivityDurationDays = 1
	}
	m.EventsPerDay = float64(m.TotalEvents) / float64(m.ActivityDurationDays)
	return m
}

func learningPattern(evs []*models.InteractionEvent) models.LearningPattern {
	var lp models.LearningPattern
	var testTime float64
	var attempts, correctness []float64
	retries := 0

	for _, ev := range evs {
		lp.TotalTimeSec += ev.TimeSpentSec
		if !ev.IsTestQuestion() {
			continue
		}
		testTime += ev.TimeSpentSec
		attempts = append(attempts, float64(ev.Attempts))
		correctness = append(correctness, ev.Correctness)
		if ev.Attempts > 1 {
			retries++
		}
	}
	if len(evs) > 0 {
		lp.AvgSessionTime = lp.TotalTimeSec / float64(len(evs))
	}

	if len(attempts) == 0 {
		// No test answers at all: no evidence of active engagement.
		lp.PassiveScore = 1.0
		return lp
	}

	lp.RetryRate = float64(retries) / float64(len(attempts))
	lp.AvgAttempts = mean(attempts)
	lp.AvgCorrectness = mean(correctness)
	lp.PassiveScore = passiveScore(lp.TotalTimeSec-testTime, lp.AvgCorrectness)
	return lp
}

func passiveScore(timeOnMaterial, avgCorrectness float64) float64 {
	switch {
	case timeOnMaterial > passiveHighTimeSec && avgCorrectness < passiveHighCutoff:
		return 0.9
	case timeOnMaterial > passiveMidTimeSec && avgCorrectness < passiveMidCutoff:
		return 0.6
	default:
		return 0.1
	}
}

func temporalPattern(evs []*models.InteractionEvent) models.TemporalPattern {
	tp := models.TemporalPattern{
		PreferredHour:      12,
		ActivityRegularity: 0.5,
	}
	if len(evs) == 0 {
		return tp
	}

	hours := make([]int, len(evs))
	hoursF := make([]float64, len(evs))
	weekend := 0
	for i, ev := range evs {
		h := ev.Timestamp.Hour()
		hours[i] = h
		hoursF[i] = float64(h)
		if wd := ev.Timestamp.Weekday(); wd == time.Saturday || wd == time.Sunday {
			weekend++
		}
	}

	tp.PreferredHour = hourMode(hours, 12)
	tp.WeekendRatio = float64(weekend) / float64(len(evs))
	if len(evs) >= 2 {
		tp.ActivityRegularity = 1 - sampleStdDev(hoursF)/24
	}
	return tp
}
