package repositories

import (
	"context"

	"github.com/SAP-F-2025/learning-analytics-service/internal/models"
)

// AnalysisRepository persists the analytics snapshot, one row per student.
// A new analysis supersedes the previous one via upsert; snapshots are never
// mutated in place.
type AnalysisRepository interface {
	Upsert(ctx context.Context, analysis *models.StudentAnalytics) error
	GetByStudent(ctx context.Context, studentID int64) (*models.StudentAnalytics, error)
	List(ctx context.Context, limit, offset int) ([]*models.StudentAnalytics, int64, error)
}
