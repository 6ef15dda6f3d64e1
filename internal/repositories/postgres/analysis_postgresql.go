package postgres

import (
	"context"

	"github.com/SAP-F-2025/learning-analytics-service/internal/models"
	"github.com/SAP-F-2025/learning-analytics-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnalysisPostgreSQL struct {
	db *gorm.DB
}

func NewAnalysisPostgreSQL(db *gorm.DB) repositories.AnalysisRepository {
	return &AnalysisPostgreSQL{db: db}
}

// Upsert writes the snapshot, replacing any previous row for the student.
func (r *AnalysisPostgreSQL) Upsert(ctx context.Context, analysis *models.StudentAnalytics) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "student_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"cluster_group", "risk_flag", "engagement_score", "success_rate",
				"avg_time_per_task", "topic_efficiency", "recommendations",
				"analyzed_at", "updated_at",
			}),
		}).
		Create(analysis).Error
}

func (r *AnalysisPostgreSQL) GetByStudent(ctx context.Context, studentID int64) (*models.StudentAnalytics, error) {
	var analysis models.StudentAnalytics
	if err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		First(&analysis).Error; err != nil {
		return nil, err
	}
	return &analysis, nil
}

func (r *AnalysisPostgreSQL) List(ctx context.Context, limit, offset int) ([]*models.StudentAnalytics, int64, error) {
	var analyses []*models.StudentAnalytics
	var total int64

	query := r.db.WithContext(ctx).Model(&models.StudentAnalytics{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Offset(offset).Order("student_id ASC").Find(&analyses).Error; err != nil {
		return nil, 0, err
	}
	return analyses, total, nil
}
