package models

import (
	"time"
)

type ArtifactType string

const (
	ArtifactTestQuestion ArtifactType = "test_question"
	ArtifactMaterialView ArtifactType = "material_view"
	ArtifactVideoWatch   ArtifactType = "video_watch"
	ArtifactForumPost    ArtifactType = "forum_post"
)

// InteractionEvent is the canonical shape of a single learning interaction.
// All ingestion paths normalize into this schema before anything else touches
// the event; per-student ordering by Timestamp is load-bearing for the
// learning-curve and retry computations.
type InteractionEvent struct {
	ID        uint         `json:"id" gorm:"primaryKey"`
	StudentID int64        `json:"student_id" gorm:"not null;index:idx_student_time,priority:1" validate:"required,gt=0"`
	Timestamp time.Time    `json:"timestamp" gorm:"not null;index:idx_student_time,priority:2"`
	Artifact  ArtifactType `json:"artifact_type" gorm:"column:artifact_type;size:50;index"`

	// Nullable: non-material events (forum posts, session pings) carry no material.
	MaterialID *string `json:"material_id" gorm:"size:100;index"`

	TimeSpentSec float64 `json:"time_spent_sec" validate:"gte=0"`

	// Correctness is only meaningful for test_question events, in [0,1].
	Correctness        float64 `json:"correctness" validate:"gte=0,lte=1"`
	Attempts           int     `json:"attempts" gorm:"default:1" validate:"gte=1"`
	SelectedDistractor string  `json:"selected_distractor" gorm:"size:200;default:none"`

	// Per-event feature fields used by the behavior clusterer. The normalizer
	// backfills the time splits from TimeSpentSec when a producer omits them.
	TimeSpentOnQuestion float64 `json:"time_spent_on_question"`
	TimeSpentOnMaterial float64 `json:"time_spent_on_material"`
	DistractorFrequency float64 `json:"selected_distractor_freq"`
	StudyTimePreference float64 `json:"study_time_preference"`

	CreatedAt time.Time `json:"created_at"`
}

func (InteractionEvent) TableName() string {
	return "student_interactions"
}

// IsTestQuestion reports whether this event carries answer data.
func (e *InteractionEvent) IsTestQuestion() bool {
	return e.Artifact == ArtifactTestQuestion
}

// DistractorNone is the normalizer default for events where no distractor was
// recorded; it means "field absent", not "a distractor named none".
const DistractorNone = "none"
