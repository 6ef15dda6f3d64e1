package events

import (
	"time"

	"github.com/SAP-F-2025/learning-analytics-service/internal/models"
)

// EventType represents different types of analytics events
type EventType string

const (
	// Published after every successful analysis run.
	EventAnalysisCompleted EventType = "analysis.completed"

	// Published after an offline cohort model refresh.
	EventCohortRefreshed EventType = "cohort.refreshed"
)

// AnalyticsEvent is the base event structure for all published events
type AnalyticsEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// AnalysisCompletedEvent announces that a fresh snapshot exists for a student.
type AnalysisCompletedEvent struct {
	StudentID       int64               `json:"student_id"`
	ClusterGroup    models.ClusterGroup `json:"cluster_group"`
	RiskFlag        models.RiskFlag     `json:"risk_flag"`
	EngagementScore int                 `json:"engagement_score"`
	AnalyzedAt      time.Time           `json:"analyzed_at"`
}

// CohortRefreshedEvent announces a new population model.
type CohortRefreshedEvent struct {
	CohortSize  int       `json:"cohort_size"`
	Anomalous   int       `json:"anomalous"`
	RefreshedAt time.Time `json:"refreshed_at"`
}
