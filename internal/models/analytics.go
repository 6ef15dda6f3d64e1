package models

import (
	"time"

	"gorm.io/datatypes"
)

// ClusterGroup is the semantic behavior label assigned by the density-based
// clusterer. new_student, analysis_failed and unknown are terminal outcomes,
// not errors: callers must treat every value here as a valid verdict.
type ClusterGroup string

const (
	ClusterNewStudent     ClusterGroup = "new_student"
	ClusterOutlier        ClusterGroup = "outlier"
	ClusterHighPerformer  ClusterGroup = "high_performer"
	ClusterAverage        ClusterGroup = "average"
	ClusterStruggling     ClusterGroup = "struggling"
	ClusterPassiveLearner ClusterGroup = "passive_learner"
	ClusterUnknown        ClusterGroup = "unknown"
	ClusterAnalysisFailed ClusterGroup = "analysis_failed"
)

// RiskFlag is the cohort-relative anomaly verdict. Undetermined means the
// cohort was too small to produce a verdict at all; it is distinct from
// normal and must stay distinct downstream.
type RiskFlag string

const (
	RiskAnomalous    RiskFlag = "anomalous"
	RiskNormal       RiskFlag = "normal"
	RiskUndetermined RiskFlag = "undetermined"
)

// ActivityMetrics aggregates raw event volume and span for one student.
type ActivityMetrics struct {
	FirstActivity        time.Time `json:"first_activity"`
	LastActivity         time.Time `json:"last_activity"`
	TotalEvents          int       `json:"total_events"`
	TotalTimeSec         float64   `json:"total_time_sec"`
	ActivityDurationDays int       `json:"activity_duration_days"` // day span + 1, floors at 1
	EventsPerDay         float64   `json:"events_per_day"`
}

// LearningPattern captures how a student answers test questions.
type LearningPattern struct {
	RetryRate      float64 `json:"retry_rate"`
	AvgAttempts    float64 `json:"avg_attempts"`
	AvgCorrectness float64 `json:"avg_correctness"`
	PassiveScore   float64 `json:"passive_score"` // [0,1], 1.0 = no evidence of active engagement
	TotalTimeSec   float64 `json:"total_time_sec"`
	AvgSessionTime float64 `json:"avg_session_time"`
}

// TemporalPattern captures when a student studies.
type TemporalPattern struct {
	PreferredHour      int     `json:"preferred_hour"` // [0,23], mode of event hour
	WeekendRatio       float64 `json:"weekend_ratio"`
	ActivityRegularity float64 `json:"activity_regularity"` // 1 - stddev(hour)/24
}

// EngagementProfile is the per-student output of the engagement metrics
// engine. It is built fresh for every analysis run and never persisted as-is;
// only the aggregated StudentAnalytics snapshot is stored.
type EngagementProfile struct {
	StudentID int64           `json:"student_id"`
	Activity  ActivityMetrics `json:"activity"`
	Learning  LearningPattern `json:"learning_pattern"`
	Temporal  TemporalPattern `json:"temporal_pattern"`
}

// MaterialStats describes how a single material performs across students.
type MaterialStats struct {
	MaterialID      string   `json:"material_id"`
	SuccessRate     float64  `json:"success_rate"`
	DifficultyIndex float64  `json:"difficulty_index"` // 1 - success_rate
	LearningCurve   float64  `json:"learning_curve"`   // [-1,1], positive = improving
	TopDistractors  []string `json:"top_distractors"`  // descending frequency, max 5
	UniqueStudents  int      `json:"unique_students"`
}

// StudentAnalytics is the persisted analysis snapshot, one row per student,
// superseded (upserted) on every analysis run.
type StudentAnalytics struct {
	ID        uint  `json:"id" gorm:"primaryKey"`
	StudentID int64 `json:"student_id" gorm:"not null;uniqueIndex"`

	ClusterGroup    ClusterGroup `json:"cluster_group" gorm:"size:50"`
	RiskFlag        RiskFlag     `json:"risk_flag" gorm:"size:20"`
	EngagementScore int          `json:"engagement_score"` // [0,100]
	SuccessRate     float64      `json:"success_rate"`     // [0,1]
	AvgTimePerTask  float64      `json:"avg_time_per_task"`

	TopicEfficiency datatypes.JSONType[map[string]float64] `json:"topic_efficiency" gorm:"type:jsonb"`
	Recommendations datatypes.JSONSlice[string]            `json:"recommendations" gorm:"type:jsonb"`

	AnalyzedAt time.Time `json:"analyzed_at"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (StudentAnalytics) TableName() string {
	return "student_analytics"
}

// RecNoData is the single recommendation returned for students with no
// recorded events; the request still succeeds with a well-formed result.
const (
	RecNoData       = "No data available yet"
	RecRiskDetected = "risk detected: abnormal learning pattern"
	RecFocusBasics  = "focus on basic materials"
	RecKeepPace     = "maintain current pace"
)
