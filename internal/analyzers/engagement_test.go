package analyzers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/SAP-F-2025/learning-analytics-service/internal/models"
)

func testEvent(studentID int64, ts time.Time, artifact models.ArtifactType, timeSpent, correctness float64, attempts int) *models.InteractionEvent {
	return &models.InteractionEvent{
		StudentID:    studentID,
		Timestamp:    ts,
		Artifact:     artifact,
		TimeSpentSec: timeSpent,
		Correctness:  correctness,
		Attempts:     attempts,
	}
}

func TestBuildProfile_NoEvents(t *testing.T) {
	p := BuildProfile(7, nil)

	assert.Equal(t, int64(7), p.StudentID)
	assert.Equal(t, 0, p.Activity.TotalEvents)
	assert.Equal(t, 0.0, p.Learning.AvgCorrectness)
	assert.Equal(t, 1.0, p.Learning.PassiveScore)
	assert.Equal(t, 12, p.Temporal.PreferredHour)
	assert.Equal(t, 0.5, p.Temporal.ActivityRegularity)
}

func TestBuildProfile_ActivityMetrics(t *testing.T) {
	base := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC) // a Monday
	evs := []*models.InteractionEvent{
		testEvent(1, base, models.ArtifactMaterialView, 100, 0, 1),
		testEvent(1, base.Add(1*time.Hour), models.ArtifactMaterialView, 50, 0, 1),
		testEvent(1, base.Add(25*time.Hour), models.ArtifactMaterialView, 30, 0, 1),
		testEvent(1, base.Add(26*time.Hour), models.ArtifactMaterialView, 20, 0, 1),
	}

	p := BuildProfile(1, evs)

	assert.Equal(t, 4, p.Activity.TotalEvents)
	assert.Equal(t, 200.0, p.Activity.TotalTimeSec)
	assert.Equal(t, base, p.Activity.FirstActivity)
	assert.Equal(t, base.Add(26*time.Hour), p.Activity.LastActivity)
	assert.Equal(t, 2, p.Activity.ActivityDurationDays)
	assert.Equal(t, 2.0, p.Activity.EventsPerDay)
}

func TestBuildProfile_UnsortedInput(t *testing.T) {
	base := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)
	evs := []*models.InteractionEvent{
		testEvent(1, base.Add(2*time.Hour), models.ArtifactMaterialView, 10, 0, 1),
		testEvent(1, base, models.ArtifactMaterialView, 10, 0, 1),
	}

	p := BuildProfile(1, evs)

	assert.Equal(t, base, p.Activity.FirstActivity)
	assert.Equal(t, base.Add(2*time.Hour), p.Activity.LastActivity)
}

func TestLearningPattern_NoTestEvents(t *testing.T) {
	base := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)
	evs := []*models.InteractionEvent{
		testEvent(1, base, models.ArtifactMaterialView, 500, 0, 1),
		testEvent(1, base.Add(time.Hour), models.ArtifactVideoWatch, 300, 0, 1),
	}

	p := BuildProfile(1, evs)

	assert.Equal(t, 1.0, p.Learning.PassiveScore)
	assert.Equal(t, 0.0, p.Learning.AvgCorrectness)
	assert.Equal(t, 0.0, p.Learning.RetryRate)
	assert.Equal(t, 400.0, p.Learning.AvgSessionTime)
}

func TestLearningPattern_RetriesAndAttempts(t *testing.T) {
	base := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)
	evs := []*models.InteractionEvent{
		testEvent(1, base, models.ArtifactTestQuestion, 60, 1.0, 1),
		testEvent(1, base.Add(time.Minute), models.ArtifactTestQuestion, 60, 0.5, 2),
		testEvent(1, base.Add(2*time.Minute), models.ArtifactTestQuestion, 60, 0.0, 3),
	}

	p := BuildProfile(1, evs)

	assert.InDelta(t, 2.0/3.0, p.Learning.RetryRate, 1e-9)
	assert.InDelta(t, 2.0, p.Learning.AvgAttempts, 1e-9)
	assert.InDelta(t, 0.5, p.Learning.AvgCorrectness, 1e-9)
}

func TestPassiveScore_Tiers(t *testing.T) {
	base := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)

	build := func(materialTime, correctness float64) float64 {
		evs := []*models.InteractionEvent{
			testEvent(1, base, models.ArtifactTestQuestion, 100, correctness, 1),
			testEvent(1, base.Add(time.Hour), models.ArtifactMaterialView, materialTime, 0, 1),
		}
		return BuildProfile(1, evs).Learning.PassiveScore
	}

	// Long passive consumption with poor accuracy.
	assert.Equal(t, 0.9, build(700, 0.4))
	// Moderate consumption with middling accuracy.
	assert.Equal(t, 0.6, build(400, 0.6))
	// Active engagement.
	assert.Equal(t, 0.1, build(400, 0.9))
	assert.Equal(t, 0.1, build(50, 0.2))
}

func TestTemporalPattern(t *testing.T) {
	// Saturday at 21:00 plus two weekday events at 21:00.
	sat := time.Date(2025, 3, 8, 21, 0, 0, 0, time.UTC)
	mon := time.Date(2025, 3, 10, 21, 0, 0, 0, time.UTC)
	tue := time.Date(2025, 3, 11, 21, 0, 0, 0, time.UTC)
	evs := []*models.InteractionEvent{
		testEvent(1, sat, models.ArtifactMaterialView, 10, 0, 1),
		testEvent(1, mon, models.ArtifactMaterialView, 10, 0, 1),
		testEvent(1, tue, models.ArtifactMaterialView, 10, 0, 1),
	}

	p := BuildProfile(1, evs)

	assert.Equal(t, 21, p.Temporal.PreferredHour)
	assert.InDelta(t, 1.0/3.0, p.Temporal.WeekendRatio, 1e-9)
	// Identical hours, perfectly regular.
	assert.Equal(t, 1.0, p.Temporal.ActivityRegularity)
}

func TestTemporalPattern_SingleEventKeepsDefaultRegularity(t *testing.T) {
	evs := []*models.InteractionEvent{
		testEvent(1, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), models.ArtifactMaterialView, 10, 0, 1),
	}

	p := BuildProfile(1, evs)

	assert.Equal(t, 9, p.Temporal.PreferredHour)
	assert.Equal(t, 0.5, p.Temporal.ActivityRegularity)
}

func TestBuildProfiles_GroupsByStudent(t *testing.T) {
	base := time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC)
	evs := []*models.InteractionEvent{
		testEvent(1, base, models.ArtifactMaterialView, 10, 0, 1),
		testEvent(2, base, models.ArtifactMaterialView, 20, 0, 1),
		testEvent(1, base.Add(time.Hour), models.ArtifactMaterialView, 30, 0, 1),
	}

	profiles := BuildProfiles(evs)

	assert.Len(t, profiles, 2)
	assert.Equal(t, 2, profiles[1].Activity.TotalEvents)
	assert.Equal(t, 1, profiles[2].Activity.TotalEvents)
	assert.Equal(t, 40.0, profiles[1].Activity.TotalTimeSec)
}
